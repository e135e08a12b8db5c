// Package service implements the capability registry and the layered
// authorization gate.
package service

import (
	"fmt"
	"sort"
	"sync"

	capabilityDomain "github.com/allisson/entitygate/internal/capability/domain"
)

// Registry holds the capability descriptors exposed by this service.
// Registration happens during startup; lookups are concurrent-safe.
type Registry struct {
	mu           sync.RWMutex
	capabilities map[string]*capabilityDomain.Descriptor
}

// NewRegistry creates an empty capability registry.
func NewRegistry() *Registry {
	return &Registry{
		capabilities: make(map[string]*capabilityDomain.Descriptor),
	}
}

// Register adds a descriptor to the registry. Names must be unique.
func (r *Registry) Register(descriptor *capabilityDomain.Descriptor) error {
	if descriptor == nil || descriptor.Name == "" {
		return fmt.Errorf("capability descriptor requires a name")
	}
	if descriptor.Handler == nil {
		return fmt.Errorf("capability %q requires a handler", descriptor.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.capabilities[descriptor.Name]; exists {
		return fmt.Errorf("capability %q already registered", descriptor.Name)
	}
	r.capabilities[descriptor.Name] = descriptor

	return nil
}

// Get returns the descriptor for the given name.
func (r *Registry) Get(name string) (*capabilityDomain.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptor, ok := r.capabilities[name]
	return descriptor, ok
}

// List returns all registered descriptors ordered by name.
func (r *Registry) List() []*capabilityDomain.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]*capabilityDomain.Descriptor, 0, len(r.capabilities))
	for _, descriptor := range r.capabilities {
		descriptors = append(descriptors, descriptor)
	}
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Name < descriptors[j].Name
	})

	return descriptors
}
