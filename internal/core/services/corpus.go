package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
	"github.com/custodia-labs/ragdesk/internal/postprocessors/chunker"
)

// Corpus is the shared retrieval state: the vector index derived from the
// document store, guarded by a single reader/writer lock.
//
// Readers (Ask, Retrieve, List) hold the read lock. Anything that changes
// the row set or the index (Ingest, Delete, Rebuild, Bootstrap) holds the
// write lock, so a reader never sees vectors whose row is gone or a row
// whose vectors are missing.
type Corpus struct {
	mu    sync.RWMutex
	index driven.VectorIndex
}

// NewCorpus wraps an empty vector index.
// Callers populate it with Bootstrap and Rebuild at startup.
func NewCorpus(index driven.VectorIndex) *Corpus {
	return &Corpus{index: index}
}

// Index returns the underlying vector index.
func (c *Corpus) Index() driven.VectorIndex {
	return c.index
}

// Len returns the number of indexed vectors.
func (c *Corpus) Len() int {
	return c.index.Len()
}

// embedDocument chunks doc and embeds every chunk in one batch.
// The returned entries are tagged with doc.ID and keep chunk order.
// Nothing is mutated.
func embedDocument(
	ctx context.Context,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	doc *domain.Document,
) ([]driven.VectorEntry, error) {
	chunks, err := pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("chunking %q: %w", doc.Name, err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrEmbeddingFailure, len(vectors), len(texts))
	}

	dims := embedder.Dimensions()
	entries := make([]driven.VectorEntry, len(chunks))
	for i, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				domain.ErrEmbeddingFailure, i, len(v), dims)
		}
		entries[i] = driven.VectorEntry{
			DocumentID: doc.ID,
			Position:   chunks[i].Position,
			ChunkID:    chunks[i].ID,
			Content:    chunks[i].Content,
			Vector:     v,
		}
	}
	return entries, nil
}

// tagEntries assigns the owning document ID once the row exists.
// Chunk IDs derive from it, so they are reassigned too.
func tagEntries(entries []driven.VectorEntry, id int64) {
	for i := range entries {
		entries[i].DocumentID = id
		entries[i].ChunkID = chunker.ID(id, entries[i].Position)
	}
}

// protectedPrefix reserves artifact keys for protected documents, so an
// upload can never claim the key of the bootstrap file or be blocked by it.
const protectedPrefix = "_protected."

// documentKey is the artifact key doc's raw bytes are stored under.
func documentKey(doc *domain.Document) string {
	key := artifactKey(doc.Name)
	if doc.Protected {
		return protectedPrefix + key
	}
	return key
}

// artifactKey is the base file name of a document name.
func artifactKey(name string) string {
	return filepath.Base(strings.ReplaceAll(name, `\`, "/"))
}

// truncateRunes cuts s to at most n runes. A non-positive n leaves s intact.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
