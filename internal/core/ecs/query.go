package ecs

import (
	"iter"
	"slices"
)

// Each2 iterates over entities that have both component A and B.
// It iterates over the smaller store and checks the larger one.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for id, a := range sa.data {
			if b, ok := sb.data[id]; ok {
				fn(id, a, b)
			}
		}
	} else {
		for id, b := range sb.data {
			if a, ok := sa.data[id]; ok {
				fn(id, a, b)
			}
		}
	}
}

// Query returns the active entities holding every requested kind. The id
// list is captured when Query is called and sorted, so the sequence can be
// ranged over any number of times; later attaches or destroys do not show
// up in it. Callers that destroy entities while ranging must still check
// Alive on each id.
func (w *World) Query(kinds ...Kind) iter.Seq[EntityID] {
	ids := w.Snapshot(kinds...)
	return func(yield func(EntityID) bool) {
		for _, id := range ids {
			if !yield(id) {
				return
			}
		}
	}
}

// Snapshot is Query materialised as a slice.
func (w *World) Snapshot(kinds ...Kind) []EntityID {
	if len(kinds) == 0 {
		return nil
	}
	stores := make([]Store, 0, len(kinds))
	for _, k := range kinds {
		s, ok := w.registry.Store(k)
		if !ok {
			return nil
		}
		stores = append(stores, s)
	}
	// Drive from the smallest table.
	smallest := 0
	for i, s := range stores {
		if s.Len() < stores[smallest].Len() {
			smallest = i
		}
	}
	ids := stores[smallest].IDs()
	out := ids[:0]
	for _, id := range ids {
		if !w.Active(id) {
			continue
		}
		if hasAll(stores, id) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

func hasAll(stores []Store, id EntityID) bool {
	for _, s := range stores {
		if !s.Has(id) {
			return false
		}
	}
	return true
}
