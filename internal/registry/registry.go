package registry

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// Module is the interface that all built-in modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the named task functions of one application instance.
type Registry struct {
	funcs map[string]any
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{funcs: make(map[string]any)}
}

// Register adds fn under name. Registering a name twice, or something that
// is not a function, is a programming error and panics.
func (r *Registry) Register(name string, fn any) {
	if _, exists := r.funcs[name]; exists {
		panic(fmt.Sprintf("function with name '%s' already registered", name))
	}
	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		panic(fmt.Sprintf("function '%s' is not a func, got %T", name, fn))
	}
	r.funcs[name] = fn
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (any, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.funcs))
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	return len(r.funcs)
}
