// Package hostfunc provides the host-side callback table exposed to filter
// scripts, and the per-run log of callback invocations.
//
// The registry is a capability table: a filter script can only call the
// functions whose names were requested at initialization and found here.
// It is populated at process start and read-only thereafter, so lookups are
// safe from any goroutine.
package hostfunc

import (
	"sort"
	"sync"
)

// Context is passed to every callback invocation.
type Context struct {
	// Name is the callback name the script called.
	Name string

	// Data is the opaque per-engine user data supplied by the host at
	// engine creation, giving the callback access to host state.
	Data any
}

// Func is a host-provided callback. Arguments arrive as exported engine
// values (strings, float64, bool, maps, slices, nil). A returned error is
// raised inside the script as an exception.
type Func func(ctx *Context, args []any) (any, error)

// Registry maps callback names to host implementations.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	r.funcs[name] = fn
	r.mu.Unlock()
}

func (r *Registry) Get(name string) (Func, bool) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	return fn, ok
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
