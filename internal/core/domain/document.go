package domain

import (
	"time"
)

// UploadDateLayout is the persisted format of Document.UploadedAt.
const UploadDateLayout = "2006-01-02 15:04:05"

// Document represents an ingested unit of knowledge.
// Documents are immutable once stored; an update is a delete followed by
// a fresh ingest.
type Document struct {
	// ID is assigned by the document store, monotonically increasing.
	ID int64

	// Name is unique across the store and keys the raw artifact on disk.
	Name string

	// UploadedAt is when the document was admitted.
	UploadedAt time.Time

	// Content is the full cleaned text. Chunks are derived from it.
	Content string

	// Protected marks the bootstrap document, which cannot be deleted.
	Protected bool
}

// FormatUploadDate renders the upload time in the persisted layout.
func (d Document) FormatUploadDate() string {
	return d.UploadedAt.Format(UploadDateLayout)
}

// Chunk is a contiguous slice of a document's content.
// Chunks are never persisted; they are re-derived on every rebuild.
type Chunk struct {
	// ID identifies the chunk by owning document and position.
	ID string

	// DocumentID links to the owning Document.
	DocumentID int64

	// Content is the text of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation, once computed.
	Embedding []float32
}

// IngestResult describes a successfully admitted document.
type IngestResult struct {
	Document Document
	Chunks   int
}

// RebuildStats summarises a full vector index rebuild.
type RebuildStats struct {
	Documents int
	Vectors   int
	Duration  time.Duration
}
