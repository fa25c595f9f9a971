package ecs

// Kind tags a component table. Concrete kinds are declared by the package
// that owns the component types.
type Kind uint8

// Store is implemented by all component stores so the Registry can answer
// membership questions and bulk-remove an entity's data on destroy.
type Store interface {
	Kind() Kind
	Has(id EntityID) bool
	Remove(id EntityID)
	Len() int
	IDs() []EntityID
}

// PtrComponentStore is a generic typed map store for ECS components.
// No reflect, no interface{} — pure generics.
type PtrComponentStore[T any] struct {
	kind Kind
	data map[EntityID]*T
}

func NewPtrComponentStore[T any](kind Kind) *PtrComponentStore[T] {
	return &PtrComponentStore[T]{
		kind: kind,
		data: make(map[EntityID]*T, 256),
	}
}

func (s *PtrComponentStore[T]) Kind() Kind { return s.kind }

// Set attaches c to id, replacing any component of the same kind.
func (s *PtrComponentStore[T]) Set(id EntityID, c *T) {
	s.data[id] = c
}

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *PtrComponentStore[T]) Remove(id EntityID) {
	delete(s.data, id)
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int {
	return len(s.data)
}

func (s *PtrComponentStore[T]) IDs() []EntityID {
	ids := make([]EntityID, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids
}
