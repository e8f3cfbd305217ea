// Package session holds the recordsets a CLI invocation works with.
// The shell and the query commands share one registry so a set loaded
// once can be addressed by name afterwards.
package session

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/leaprec/internal/loader"
)

// Registry is a named, concurrency-safe collection of loaded recordsets.
type Registry struct {
	mu   sync.RWMutex
	sets map[string]*loader.Set
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]*loader.Set)}
}

// Register adds a set under its name, replacing any previous entry.
func (r *Registry) Register(set *loader.Set) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[set.Name] = set
}

// Get returns the set registered under name.
func (r *Registry) Get(name string) (*loader.Set, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sets[name]
	return set, ok
}

// Names returns the registered set names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove drops the set registered under name.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sets, name)
}

// Clear drops all registered sets.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets = make(map[string]*loader.Set)
}

// Count returns the number of registered sets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sets)
}
