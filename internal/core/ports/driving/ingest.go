package driving

import (
	"context"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// IngestRequest describes an uploaded document.
type IngestRequest struct {
	// Name identifies the document and keys its artifact on disk.
	Name string

	// DeclaredType is a short format name ("pdf", "txt") or a MIME type.
	DeclaredType string

	// Content is the raw uploaded bytes.
	Content []byte
}

// IngestService admits documents into the store and vector index.
type IngestService interface {
	// Ingest extracts, cleans, chunks and embeds an upload, then commits
	// its row, artifact and vectors as one unit. Every failure wraps
	// domain.ErrIngestion and leaves no partial state behind.
	Ingest(ctx context.Context, req IngestRequest) (*domain.IngestResult, error)

	// Bootstrap ingests the well-known file at path once, if no document of
	// that name exists. The document is stored raw and marked protected.
	// Returns nil result when the document was already present or the file
	// is missing.
	Bootstrap(ctx context.Context, path string) (*domain.IngestResult, error)
}
