package domain

// FallbackAnswer is shown whenever the answer pipeline fails.
const FallbackAnswer = "An error occurred while processing your query."

// AttributionMode selects how a matched vector is resolved to a document.
type AttributionMode string

// Available attribution modes.
const (
	// AttributionTagged uses the owning document id stored with each vector.
	AttributionTagged AttributionMode = "tagged"

	// AttributionPositional maps vector ordinal p to document id p+1.
	// It only holds while every document contributes exactly one vector
	// and ids are contiguous.
	AttributionPositional AttributionMode = "positional"
)

// IsValid returns true if the attribution mode is recognised.
func (m AttributionMode) IsValid() bool {
	return m == AttributionTagged || m == AttributionPositional
}

// String returns the string representation.
func (m AttributionMode) String() string {
	return string(m)
}

// RetrievalHit is a nearest-neighbour match resolved to its document.
type RetrievalHit struct {
	// Ordinal is the matched vector's position in the index.
	Ordinal int

	// Distance is the L2 distance to the query vector.
	Distance float64

	// Document is the resolved owning document.
	Document Document

	// Chunk is the matched chunk. Under positional attribution it holds
	// the document's content truncated to the context budget.
	Chunk Chunk
}

// Answer is the result of asking a question.
type Answer struct {
	// Text is the post-processed completion, or FallbackAnswer.
	Text string

	// Hits are the retrieval results used as context.
	Hits []RetrievalHit

	// Fallback is true when Text is FallbackAnswer.
	Fallback bool

	// Err is the cause of a fallback, for logging and diagnostics.
	Err error
}
