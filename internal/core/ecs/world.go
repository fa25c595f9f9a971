package ecs

// World is the top-level ECS container. It owns the entity pool, the component
// registry, the set of deactivated entities, and a deferred destruction queue
// flushed by CleanupSystem each tick.
type World struct {
	pool         *EntityPool
	registry     *Registry
	inactive     map[EntityID]struct{}
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		inactive:     make(map[EntityID]struct{}),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Count returns the number of live entities.
func (w *World) Count() int { return w.pool.Live() }

// Active reports whether id is alive and has not been deactivated.
func (w *World) Active(id EntityID) bool {
	if !w.pool.Alive(id) {
		return false
	}
	_, off := w.inactive[id]
	return !off
}

// SetActive toggles the active flag. Inactive entities keep their components
// but are skipped by Query.
func (w *World) SetActive(id EntityID, active bool) {
	if !w.pool.Alive(id) {
		return
	}
	if active {
		delete(w.inactive, id)
	} else {
		w.inactive[id] = struct{}{}
	}
}

// Has reports whether id is alive and holds every requested kind.
func (w *World) Has(id EntityID, kinds ...Kind) bool {
	if !w.pool.Alive(id) {
		return false
	}
	for _, k := range kinds {
		s, ok := w.registry.Store(k)
		if !ok || !s.Has(id) {
			return false
		}
	}
	return true
}

// Destroy removes the entity and every attached component immediately.
// Destroying an unknown or already destroyed id is a no-op.
func (w *World) Destroy(id EntityID) {
	if !w.pool.Alive(id) {
		return
	}
	w.registry.RemoveAll(id)
	delete(w.inactive, id)
	w.pool.Destroy(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
// Called by CleanupSystem at the end of each tick.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, id := range w.destroyQueue {
		if w.pool.Alive(id) {
			n++
		}
		w.Destroy(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}
