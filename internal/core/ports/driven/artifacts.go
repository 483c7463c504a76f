package driven

import (
	"context"
	"io"
)

// ArtifactStore keeps the raw uploaded bytes of each document.
// Artifacts are keyed by document name and returned verbatim on download.
type ArtifactStore interface {
	// Save writes the artifact, replacing any previous file of that name.
	Save(ctx context.Context, name string, content []byte) error

	// Open returns a reader over the artifact.
	// Returns domain.ErrNotFound if the file is missing.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Remove deletes the artifact.
	// Returns domain.ErrNotFound if the file is missing.
	Remove(ctx context.Context, name string) error

	// Exists reports whether an artifact is present.
	Exists(ctx context.Context, name string) (bool, error)
}
