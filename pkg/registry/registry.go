// Package registry maps names to step bodies and to Go types, so that step
// sets described in data (see package pipeline) can be bound to code.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/stepwise/pkg/domain"
)

// ErrBodyNotFound is returned when a step has no registered body.
var ErrBodyNotFound = errors.New("step body not found")

// Registry manages the available step bodies.
// It implements ports.Invoker.
type Registry struct {
	mu     sync.RWMutex
	bodies map[string]domain.Body
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bodies: make(map[string]domain.Body),
	}
}

// Register adds a body to the registry.
// If a body with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn domain.Body) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies[name] = fn
}

// Lookup returns the body registered under name.
func (r *Registry) Lookup(name string) (domain.Body, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.bodies[name]
	return fn, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.bodies))
	for name := range r.bodies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the body registered under the step name, falling back to the
// step's own Body.
func (r *Registry) Invoke(ctx context.Context, step *domain.Step, args []any) (any, error) {
	if fn, ok := r.Lookup(step.Name); ok {
		return fn(ctx, args)
	}
	if step.Body != nil {
		return step.Body(ctx, args)
	}
	return nil, fmt.Errorf("%w: %s", ErrBodyNotFound, step.Name)
}
