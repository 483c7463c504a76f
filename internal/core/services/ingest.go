package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driving"
	"github.com/custodia-labs/ragdesk/internal/logger"
	"github.com/custodia-labs/ragdesk/internal/normalisers/clean"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService admits uploads into the document store and vector index.
type IngestService struct {
	corpus      *Corpus
	docStore    driven.DocumentStore
	artifacts   driven.ArtifactStore
	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	embedder    driven.EmbeddingService
	settings    domain.IngestSettings
	now         func() time.Time
}

// NewIngestService creates a new ingest service.
// The embedder may be nil, in which case every ingest fails with
// domain.ErrNotConfigured.
func NewIngestService(
	corpus *Corpus,
	docStore driven.DocumentStore,
	artifacts driven.ArtifactStore,
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	settings domain.IngestSettings,
) *IngestService {
	return &IngestService{
		corpus:      corpus,
		docStore:    docStore,
		artifacts:   artifacts,
		normalisers: normalisers,
		pipeline:    pipeline,
		embedder:    embedder,
		settings:    settings,
		now:         time.Now,
	}
}

// Ingest extracts, cleans, chunks and embeds an upload, then commits it.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.IngestResult, error) {
	logger.Section("Ingest")
	logger.Debug("Upload: name=%q type=%q bytes=%d", req.Name, req.DeclaredType, len(req.Content))

	result, err := s.ingest(ctx, req)
	if err != nil {
		logger.Debug("Ingest of %q rejected: %v", req.Name, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrIngestion, err)
	}

	logger.Info("Ingested %q as document %d (%d chunks)", result.Document.Name, result.Document.ID, result.Chunks)
	return result, nil
}

func (s *IngestService) ingest(ctx context.Context, req driving.IngestRequest) (*domain.IngestResult, error) {
	name := artifactKey(strings.TrimSpace(req.Name))
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("%w: document name is required", domain.ErrInvalidInput)
	}
	if strings.HasPrefix(name, protectedPrefix) {
		return nil, fmt.Errorf("%w: names starting with %q are reserved", domain.ErrInvalidInput, protectedPrefix)
	}

	declared := req.DeclaredType
	if declared == "" {
		declared = domain.FormatFromName(name)
	}
	format, err := domain.ParseFormat(declared)
	if err != nil || !s.settings.Accepts(format) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, declared)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("embedding service: %w", domain.ErrNotConfigured)
	}

	normalised, err := s.normalisers.Normalise(ctx, &domain.RawDocument{
		Name:     name,
		MIMEType: format.MIMEType(),
		Content:  req.Content,
	})
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		Name:       name,
		UploadedAt: s.now(),
		Content:    clean.Text(normalised.Document.Content, s.settings.Segment),
	}
	logger.Debug("Extracted %d runes from %q", len([]rune(doc.Content)), name)

	return s.admit(ctx, doc, req.Content)
}

// Bootstrap ingests the file at path once, raw and protected.
func (s *IngestService) Bootstrap(ctx context.Context, path string) (*domain.IngestResult, error) {
	if path == "" {
		path = s.settings.BootstrapPath
	}
	logger.Section("Bootstrap")

	if _, err := s.docStore.GetDocumentByName(ctx, path); err == nil {
		logger.Debug("Bootstrap document %q already present", path)
		return nil, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: checking %q: %w", domain.ErrIngestion, path, err)
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Bootstrap file %s not found, skipping", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", domain.ErrIngestion, path, err)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: embedding service: %w", domain.ErrIngestion, domain.ErrNotConfigured)
	}

	doc := &domain.Document{
		Name:       path,
		UploadedAt: s.now(),
		Content:    string(raw),
		Protected:  true,
	}
	result, err := s.admit(ctx, doc, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIngestion, err)
	}

	logger.Info("Bootstrapped %q as document %d (%d chunks)", path, result.Document.ID, result.Chunks)
	return result, nil
}

// admit embeds doc and commits row, artifact and vectors as one unit.
// Embedding happens before the lock is taken; a failure there mutates
// nothing. Each later step undoes the earlier ones when it fails.
func (s *IngestService) admit(ctx context.Context, doc *domain.Document, raw []byte) (*domain.IngestResult, error) {
	entries, err := embedDocument(ctx, s.pipeline, s.embedder, doc)
	if err != nil {
		return nil, err
	}

	s.corpus.mu.Lock()
	defer s.corpus.mu.Unlock()

	if _, err := s.docStore.GetDocumentByName(ctx, doc.Name); err == nil {
		return nil, fmt.Errorf("%w: document %q", domain.ErrAlreadyExists, doc.Name)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("checking name %q: %w", doc.Name, err)
	}

	key := documentKey(doc)
	exists, err := s.artifacts.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("checking artifact %q: %w", key, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: artifact %q", domain.ErrAlreadyExists, key)
	}

	if err := s.artifacts.Save(ctx, key, raw); err != nil {
		return nil, fmt.Errorf("saving artifact: %w", err)
	}

	if err := s.docStore.InsertDocument(ctx, doc); err != nil {
		s.discardArtifact(ctx, key)
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	tagEntries(entries, doc.ID)
	if len(entries) > 0 {
		if err := s.corpus.index.Add(ctx, entries); err != nil {
			if derr := s.docStore.DeleteDocument(ctx, doc.ID); derr != nil {
				logger.Error("Rollback of document %d failed: %v", doc.ID, derr)
			}
			s.discardArtifact(ctx, key)
			return nil, fmt.Errorf("indexing vectors: %w", err)
		}
	}

	return &domain.IngestResult{Document: *doc, Chunks: len(entries)}, nil
}

func (s *IngestService) discardArtifact(ctx context.Context, key string) {
	if err := s.artifacts.Remove(ctx, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Error("Rollback of artifact %q failed: %v", key, err)
	}
}
