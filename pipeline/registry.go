package pipeline

import (
	"fmt"
	"sort"
	"sync"

	"github.com/YuminosukeSato/pipekit/core/stage"
	"github.com/YuminosukeSato/pipekit/pkg/errors"
)

// StageBuilder constructs a stage from the parameter block of a config
// entry.
type StageBuilder func(params map[string]any) (stage.Stage, error)

// Registry maps stage type names to builders so pipelines can be
// declared in configuration instead of code. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]StageBuilder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]StageBuilder)}
}

// Register installs a builder under a type name, replacing any previous
// registration.
func (r *Registry) Register(stageType string, builder StageBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[stageType] = builder
}

// Build constructs a stage of the named type.
func (r *Registry) Build(stageType string, params map[string]any) (stage.Stage, error) {
	r.mu.RLock()
	builder, ok := r.builders[stageType]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NewInvalidInputError("Registry", "Build",
			fmt.Sprintf("unknown stage type %q", stageType))
	}
	return builder(params)
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
