package driven

import "context"

// VectorIndex provides exact nearest-neighbour search over chunk embeddings.
// Vectors are kept in insertion order; each carries the id of its owning
// document and its position within that document.
type VectorIndex interface {
	// Add appends entries in order. Either every entry is added or none is.
	// Entries whose vector length differs from Dimension() are rejected.
	Add(ctx context.Context, entries []VectorEntry) error

	// Search finds the k nearest vectors to query by L2 distance.
	// Results are ordered by ascending distance, ties by ordinal.
	// Fewer than k results are returned when the index holds fewer vectors.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Reset discards every vector.
	Reset(ctx context.Context) error

	// Len returns the number of stored vectors.
	Len() int

	// Dimension returns the fixed vector size.
	Dimension() int

	// Close releases resources.
	Close() error
}

// VectorEntry is one chunk embedding with its ownership tag.
type VectorEntry struct {
	// DocumentID is the owning document.
	DocumentID int64

	// Position is the chunk position within the document.
	Position int

	// ChunkID is the chunk's stable identifier.
	ChunkID string

	// Content is the chunk text.
	Content string

	// Vector is the embedding.
	Vector []float32
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Ordinal is the vector's insertion position in the index.
	Ordinal int

	// Distance is the Euclidean distance to the query.
	Distance float64

	// Entry is the stored vector and its ownership tag.
	Entry VectorEntry
}
