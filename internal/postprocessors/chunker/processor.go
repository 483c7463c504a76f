// Package chunker provides a fixed-size text chunking processor.
//
// Chunks are measured in Unicode code points, never split a character, and
// never overlap: concatenating a document's chunks reproduces its content.
package chunker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// idNamespace scopes chunk IDs so they never collide with other SHA-1 UUIDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("ragdesk:chunk"))

// ID returns the stable identifier of the chunk at position within a
// document. The same document and position always give the same ID, so IDs
// survive an index rebuild.
func ID(documentID int64, position int) string {
	name := strconv.FormatInt(documentID, 10) + ":" + strconv.Itoa(position)
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

// Processor splits document content into fixed-size chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// New creates a new chunker processor with the given options.
// A chunk size below one is rejected.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, p.chunkSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	pieces := Split(doc.Content, p.chunkSize)
	if len(pieces) == 0 {
		// Empty content produces no chunks
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:         ID(doc.ID, i),
			DocumentID: doc.ID,
			Content:    piece,
			Position:   i,
		}
	}

	return chunks, nil
}

// Split cuts text into consecutive pieces of at most size characters.
// The result has ceil(n/size) pieces for n characters, and none for
// empty text or a non-positive size.
func Split(text string, size int) []string {
	if text == "" || size <= 0 {
		return nil
	}

	pieces := make([]string, 0, Count(text, size))
	start, runes := 0, 0
	for i := range text {
		if runes == size {
			pieces = append(pieces, text[start:i])
			start, runes = i, 0
		}
		runes++
	}
	return append(pieces, text[start:])
}

// Count returns how many pieces Split would produce.
func Count(text string, size int) int {
	if text == "" || size <= 0 {
		return 0
	}
	n := 0
	for range text {
		n++
	}
	return (n + size - 1) / size
}
