package generator

import (
	"fmt"
	"sync"

	"github.com/leapstack-labs/pagegen/pkg/core"
)

// Namer turns a composite into an output file name.
type Namer interface {
	Name(index int, page core.Record) (string, error)
}

// Collection binds a data source to the renderer and naming hook used for
// its pages.
type Collection struct {
	Name     string
	Source   core.Source
	Renderer core.Renderer
	Namer    Namer // nil uses page-<index>.html
}

// Registry holds named collections in registration order.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Collection
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Collection)}
}

// Register adds a collection. Names are unique; registering a name twice
// returns core.ErrCollectionAlreadyRegistered and keeps the first entry.
func (r *Registry) Register(c *Collection) error {
	if c == nil || c.Name == "" {
		return fmt.Errorf("collection name is required")
	}
	if c.Source == nil {
		return fmt.Errorf("collection %q: source is required", c.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[c.Name]; ok {
		return fmt.Errorf("%w: %s", core.ErrCollectionAlreadyRegistered, c.Name)
	}
	r.byName[c.Name] = c
	r.order = append(r.order, c.Name)
	return nil
}

// Get returns the collection registered under name.
func (r *Registry) Get(name string) (*Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrCollectionNotFound, name)
	}
	return c, nil
}

// Names returns the registered collection names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered collections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
