package ecs

import "fmt"

// Registry tracks all component stores by kind and supports bulk cleanup on entity destroy.
type Registry struct {
	stores []Store
	byKind map[Kind]Store
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]Store, 0, 16),
		byKind: make(map[Kind]Store, 16),
	}
}

// Register adds a component store to the registry. Registering two stores
// for the same kind is a programming error.
func (r *Registry) Register(store Store) {
	if _, dup := r.byKind[store.Kind()]; dup {
		panic(fmt.Sprintf("ecs: duplicate store for kind %d", store.Kind()))
	}
	r.stores = append(r.stores, store)
	r.byKind[store.Kind()] = store
}

// Store returns the table registered for kind.
func (r *Registry) Store(kind Kind) (Store, bool) {
	s, ok := r.byKind[kind]
	return s, ok
}

// RemoveAll clears the given entity from every registered component store.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}
