package tool

import (
	"context"
	"sort"
	"sync"

	"github.com/leofalp/aimux/internal/jsonschema"
)

// Handler executes a tool with the arguments decoded from a model's tool
// call. The returned value is either an *Artifact, which ends the tool round
// trip, or anything else, which is coerced to a string and sent back to the
// model.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Definition is a registered tool.
type Definition struct {
	Name        string
	Description string
	// Parameters is forwarded to providers as-is; it is not validated here.
	Parameters *jsonschema.Schema
	Handler    Handler
}

// Registry maps tool names to definitions. A single Registry is shared by
// every provider adapter so that a tool registered once is callable from any
// of them. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Definition)}
}

// Register adds or replaces the tool called name. Names are case-sensitive
// and the last registration wins.
func (r *Registry) Register(name, description string, parameters *jsonschema.Schema, handler Handler) {
	r.Add(Definition{
		Name:        name,
		Description: description,
		Parameters:  parameters,
		Handler:     handler,
	})
}

// Add registers one or more prebuilt definitions, e.g. those produced by
// [NewTool].
func (r *Registry) Add(defs ...Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, def := range defs {
		r.tools[def.Name] = def
	}
}

// Resolve returns the handler registered under name.
func (r *Registry) Resolve(name string) (Handler, bool) {
	def, ok := r.Lookup(name)
	if !ok || def.Handler == nil {
		return nil, false
	}
	return def.Handler, true
}

// Lookup returns the full definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.tools[name]
	return def, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
