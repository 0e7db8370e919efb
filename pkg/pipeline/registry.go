package pipeline

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages available pipeline modules.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]func() Module
}

// NewRegistry creates a new module registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]func() Module),
	}
}

// Register adds a module factory to the registry.
func (r *Registry) Register(name string, factory func() Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("module %s already registered", name)
	}

	r.modules[name] = factory
	return nil
}

// Get returns a new instance of the requested module.
func (r *Registry) Get(name string) (Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.modules[name]
	if !exists {
		return nil, fmt.Errorf("module %s not found", name)
	}

	return factory(), nil
}

// List returns all registered module names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global module registry.
var DefaultRegistry = NewRegistry()
