// Package domain defines the core business entities for ragdesk.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested document and its cleaned text
//   - Chunk: A retrieval unit derived from a document's content
//   - RawDocument: Uploaded bytes before extraction
//   - RetrievalHit: A nearest-neighbour match resolved to its document
//   - Answer: The outcome of a question, including the fallback flag
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
