package flat

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an exact L2 nearest-neighbour index.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   []driven.VectorEntry
	closed    bool
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dimension)
	}
	return &Index{dimension: dimension}, nil
}

// Add appends entries in order. The batch is validated before anything is
// stored, so a bad vector leaves the index untouched.
func (i *Index) Add(_ context.Context, entries []driven.VectorEntry) error {
	for n, e := range entries {
		if len(e.Vector) != i.dimension {
			return fmt.Errorf("%w: entry %d has dimension %d, index expects %d",
				domain.ErrInvalidInput, n, len(e.Vector), i.dimension)
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return errIndexClosed
	}

	for _, e := range entries {
		e.Vector = slices.Clone(e.Vector)
		i.entries = append(i.entries, e)
	}
	return nil
}

// Search returns up to k nearest entries by ascending distance.
func (i *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != i.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			domain.ErrInvalidInput, len(query), i.dimension)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return nil, errIndexClosed
	}
	if k <= 0 || len(i.entries) == 0 {
		return []driven.VectorHit{}, nil
	}

	hits := make([]driven.VectorHit, len(i.entries))
	for n, e := range i.entries {
		hits[n] = driven.VectorHit{
			Ordinal:  n,
			Distance: l2(query, e.Vector),
			Entry:    e,
		}
	}

	slices.SortStableFunc(hits, func(a, b driven.VectorHit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return a.Ordinal - b.Ordinal
		}
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	for n := range hits {
		hits[n].Entry.Vector = slices.Clone(hits[n].Entry.Vector)
	}
	return hits, nil
}

// Reset discards every vector while keeping the dimension.
func (i *Index) Reset(_ context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return errIndexClosed
	}
	i.entries = nil
	return nil
}

// Len returns the number of stored vectors.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Dimension returns the fixed vector size.
func (i *Index) Dimension() int {
	return i.dimension
}

// Entries returns a copy of the stored entries in insertion order.
func (i *Index) Entries() []driven.VectorEntry {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make([]driven.VectorEntry, len(i.entries))
	copy(out, i.entries)
	return out
}

// Close releases the stored vectors. Further calls fail.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = nil
	i.closed = true
	return nil
}

// l2 computes the Euclidean distance, accumulating in float64.
func l2(a, b []float32) float64 {
	var sum float64
	for n := range a {
		d := float64(a[n]) - float64(b[n])
		sum += d * d
	}
	return math.Sqrt(sum)
}
