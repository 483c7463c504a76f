package driven

import (
	"context"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// DocumentStore persists document rows.
// Backed by SQLite. It is the single source of truth the vector index is
// rebuilt from.
type DocumentStore interface {
	// InsertDocument stores a new document and assigns doc.ID.
	// Returns domain.ErrAlreadyExists if the name is taken.
	InsertDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if absent.
	GetDocument(ctx context.Context, id int64) (*domain.Document, error)

	// GetDocumentByName retrieves a document by its unique name.
	// Returns domain.ErrNotFound if absent.
	GetDocumentByName(ctx context.Context, name string) (*domain.Document, error)

	// DeleteDocument removes a document row.
	// Returns domain.ErrNotFound if absent.
	DeleteDocument(ctx context.Context, id int64) error

	// ListDocuments returns every document in ascending ID order.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)
}
