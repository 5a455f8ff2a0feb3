package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// ErrUnknownType is returned when a type name is not registered.
var ErrUnknownType = errors.New("unknown type")

// Types maps type names used in pipeline files to Go types.
type Types struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewTypes creates a type registry preloaded with the builtin scalar types:
// string, int, int64, float64 and bool.
func NewTypes() *Types {
	t := &Types{types: make(map[string]reflect.Type)}
	for _, typ := range []reflect.Type{
		reflect.TypeOf(""),
		reflect.TypeOf(0),
		reflect.TypeOf(int64(0)),
		reflect.TypeOf(float64(0)),
		reflect.TypeOf(false),
	} {
		t.types[typ.Name()] = typ
	}
	return t
}

// Register adds typ under name. Registering a different type under an
// existing name is an error.
func (t *Types) Register(name string, typ reflect.Type) error {
	if name == "" || typ == nil {
		return fmt.Errorf("registry: empty type registration %q", name)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.types[name]; ok && existing != typ {
		return fmt.Errorf("registry: type %q already registered as %s", name, existing)
	}
	t.types[name] = typ
	return nil
}

// Resolve returns the type registered under name.
func (t *Types) Resolve(name string) (reflect.Type, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	typ, ok := t.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return typ, nil
}

// Names returns the registered names in sorted order.
func (t *Types) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.types))
	for name := range t.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
