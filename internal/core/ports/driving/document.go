package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// DocumentService manages stored documents and the derived vector index.
type DocumentService interface {
	// List returns all documents in ascending ID order.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id int64) (*domain.Document, error)

	// Download opens the raw uploaded artifact of a document.
	// The caller must close the reader.
	Download(ctx context.Context, id int64) (name string, r io.ReadCloser, err error)

	// Delete removes a document and its artifact, then rebuilds the index.
	// The bootstrap document is rejected with domain.ErrProtectedDocument.
	Delete(ctx context.Context, id int64) error

	// Rebuild reconstructs the vector index from every stored document.
	// It always starts from an empty index, so it is safe to retry.
	Rebuild(ctx context.Context) (*domain.RebuildStats, error)

	// IndexSize returns the number of vectors currently indexed.
	IndexSize() int
}
