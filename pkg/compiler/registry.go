package compiler

import (
	"sort"
	"sync"

	"github.com/chazu/bst2groovy/pkg/ast"
)

// Handler translates one bst operation. It consumes operands from the
// frame's stack and pushes results or appends statements to the frame's
// output.
type Handler interface {
	Evaluate(fr *Frame, tok ast.Token) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(fr *Frame, tok ast.Token) error

// Evaluate calls f.
func (f HandlerFunc) Evaluate(fr *Frame, tok ast.Token) error {
	return f(fr, tok)
}

// Registry maps bst names to handlers. A registry may have a parent that
// is consulted when a name is not found locally; sessions layer their
// declared variables and functions over DefaultRegistry this way.
type Registry struct {
	handlers map[string]Handler
	parent   *Registry
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry with an optional parent.
func NewRegistry(parent *Registry) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		parent:   parent,
	}
}

// Register adds or replaces the handler for name.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// RegisterFunc registers a plain function as a handler.
func (r *Registry) RegisterFunc(name string, f func(fr *Frame, tok ast.Token) error) {
	r.Register(name, HandlerFunc(f))
}

// Lookup finds the handler for name, falling back to the parent.
// Returns nil if no handler is registered.
func (r *Registry) Lookup(name string) Handler {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()
	if ok {
		return h
	}
	if r.parent != nil {
		return r.parent.Lookup(name)
	}
	return nil
}

// Defines reports whether name is registered here or in a parent.
func (r *Registry) Defines(name string) bool {
	return r.Lookup(name) != nil
}

// ListHandlers returns every name visible through r, sorted.
func (r *Registry) ListHandlers() []string {
	seen := map[string]bool{}
	for reg := r; reg != nil; reg = reg.parent {
		reg.mu.RLock()
		for k := range reg.handlers {
			seen[k] = true
		}
		reg.mu.RUnlock()
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultRegistry holds the bst builtins.
var DefaultRegistry = NewRegistry(nil)

func init() {
	RegisterArithmeticHandlers(DefaultRegistry)
	RegisterStackHandlers(DefaultRegistry)
	RegisterStringHandlers(DefaultRegistry)
	RegisterOutputHandlers(DefaultRegistry)
	RegisterEntryHandlers(DefaultRegistry)
	RegisterControlHandlers(DefaultRegistry)
}
