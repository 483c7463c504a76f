package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates a required provider has not been set up.
	ErrNotConfigured = errors.New("not configured")

	// ErrRateLimited indicates a remote provider rejected a request for exceeding its quota.
	ErrRateLimited = errors.New("rate limited")

	// Pipeline Errors.

	// ErrUnsupportedFormat indicates the declared upload type is not accepted.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionFailure indicates text could not be read from the upload.
	ErrExtractionFailure = errors.New("extraction failure")

	// ErrEmbeddingFailure indicates the embedding service failed or returned
	// vectors that do not line up with its input.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrIngestion indicates a document was not admitted.
	// It wraps the underlying cause.
	ErrIngestion = errors.New("ingestion failed")

	// ErrCompletionService indicates the answer generation service failed.
	ErrCompletionService = errors.New("completion service error")

	// ErrProtectedDocument indicates an attempt to delete the bootstrap document.
	ErrProtectedDocument = errors.New("document is protected")

	// ErrDeletion indicates the document store rejected a delete.
	ErrDeletion = errors.New("deletion failed")

	// ErrRebuild indicates the vector index could not be rebuilt.
	// The index is left partial and the rebuild should be retried.
	ErrRebuild = errors.New("index rebuild failed")
)
