package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
	"github.com/custodia-labs/ragdesk/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages stored documents and keeps the vector index in
// step with them.
type DocumentService struct {
	corpus    *Corpus
	docStore  driven.DocumentStore
	artifacts driven.ArtifactStore
	pipeline  driven.PostProcessorPipeline
	embedder  driven.EmbeddingService
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	corpus *Corpus,
	docStore driven.DocumentStore,
	artifacts driven.ArtifactStore,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
) *DocumentService {
	return &DocumentService{
		corpus:    corpus,
		docStore:  docStore,
		artifacts: artifacts,
		pipeline:  pipeline,
		embedder:  embedder,
	}
}

// List returns all documents in ascending ID order.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	s.corpus.mu.RLock()
	defer s.corpus.mu.RUnlock()
	return s.docStore.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id int64) (*domain.Document, error) {
	s.corpus.mu.RLock()
	defer s.corpus.mu.RUnlock()
	return s.docStore.GetDocument(ctx, id)
}

// Download opens the raw artifact a document was ingested from.
func (s *DocumentService) Download(ctx context.Context, id int64) (string, io.ReadCloser, error) {
	s.corpus.mu.RLock()
	defer s.corpus.mu.RUnlock()

	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return "", nil, err
	}

	key := documentKey(doc)
	r, err := s.artifacts.Open(ctx, key)
	if err != nil {
		return "", nil, fmt.Errorf("opening artifact %q: %w", key, err)
	}
	return artifactKey(doc.Name), r, nil
}

// Delete removes a document and its artifact, then rebuilds the index.
func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	logger.Section("Delete")

	s.corpus.mu.Lock()
	defer s.corpus.mu.Unlock()

	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if doc.Protected {
		return fmt.Errorf("%w: %q", domain.ErrProtectedDocument, doc.Name)
	}

	if err := s.docStore.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDeletion, err)
	}
	logger.Debug("Deleted row %d (%q)", id, doc.Name)

	key := documentKey(doc)
	if err := s.artifacts.Remove(ctx, key); errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Artifact %q for document %d was already missing", key, id)
	} else if err != nil {
		logger.Warn("Removing artifact %q for document %d: %v", key, id, err)
	}

	if _, err := s.rebuild(ctx); err != nil {
		return err
	}
	return nil
}

// Rebuild reconstructs the vector index from every stored document.
func (s *DocumentService) Rebuild(ctx context.Context) (*domain.RebuildStats, error) {
	logger.Section("Rebuild")

	s.corpus.mu.Lock()
	defer s.corpus.mu.Unlock()
	return s.rebuild(ctx)
}

// rebuild requires the write lock to be held.
func (s *DocumentService) rebuild(ctx context.Context) (*domain.RebuildStats, error) {
	start := time.Now()

	if s.embedder == nil {
		return nil, fmt.Errorf("%w: embedding service: %w", domain.ErrRebuild, domain.ErrNotConfigured)
	}
	if err := s.corpus.index.Reset(ctx); err != nil {
		return nil, fmt.Errorf("%w: resetting index: %w", domain.ErrRebuild, err)
	}

	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing documents: %w", domain.ErrRebuild, err)
	}

	stats := &domain.RebuildStats{Documents: len(docs)}
	for i := range docs {
		doc := &docs[i]
		entries, err := embedDocument(ctx, s.pipeline, s.embedder, doc)
		if err != nil {
			return nil, fmt.Errorf("%w: document %d: %w", domain.ErrRebuild, doc.ID, err)
		}
		if len(entries) == 0 {
			continue
		}
		if err := s.corpus.index.Add(ctx, entries); err != nil {
			return nil, fmt.Errorf("%w: document %d: %w", domain.ErrRebuild, doc.ID, err)
		}
		stats.Vectors += len(entries)
		logger.Debug("Indexed document %d: %d vectors", doc.ID, len(entries))
	}

	stats.Duration = time.Since(start)
	logger.Info("Rebuilt index: %d documents, %d vectors in %s", stats.Documents, stats.Vectors, stats.Duration)
	return stats, nil
}

// IndexSize returns the number of vectors currently indexed.
func (s *DocumentService) IndexSize() int {
	return s.corpus.Len()
}
