package postprocessors

import (
	"fmt"
	"maps"
	"slices"

	"github.com/custodia-labs/ragdesk/internal/core/domain"
	"github.com/custodia-labs/ragdesk/internal/core/ports/driven"
)

// BuilderFunc constructs a processor from the settings stored under its
// name in domain.PipelineConfig.ProcessorConfigs. cfg may be nil.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry resolves the processor names listed in a pipeline config.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry returns an empty registry. See NewDefaultRegistry for one
// that knows the built-in processors.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]BuilderFunc{}}
}

// Register binds name to builder, replacing any earlier binding.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build constructs the processor registered under name.
// An unknown name is domain.ErrInvalidInput, so a typo in the ingest
// configuration surfaces at startup rather than on the first upload.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %q (known: %v)", domain.ErrInvalidInput, name, r.Names())
	}
	return builder(cfg)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.builders))
}
