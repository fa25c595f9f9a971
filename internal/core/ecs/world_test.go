package ecs

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	kindA Kind = iota
	kindB
)

type compA struct{ V int }
type compB struct{ S string }

func newTestWorld() (*World, *PtrComponentStore[compA], *PtrComponentStore[compB]) {
	w := NewWorld()
	a := NewPtrComponentStore[compA](kindA)
	b := NewPtrComponentStore[compB](kindB)
	w.Registry().Register(a)
	w.Registry().Register(b)
	return w, a, b
}

func TestCreateNeverReturnsZero(t *testing.T) {
	w, _, _ := newTestWorld()
	id := w.CreateEntity()
	assert.False(t, id.IsZero())
	assert.True(t, w.Alive(id))
	assert.False(t, w.Alive(0))
}

func TestDestroyRemovesEveryComponent(t *testing.T) {
	w, a, b := newTestWorld()
	id := w.CreateEntity()
	a.Set(id, &compA{V: 1})
	b.Set(id, &compB{S: "x"})
	require.True(t, w.Has(id, kindA, kindB))

	w.Destroy(id)

	_, ok := a.Get(id)
	assert.False(t, ok)
	_, ok = b.Get(id)
	assert.False(t, ok)
	assert.False(t, w.Has(id))
	assert.Equal(t, 0, w.Count())
}

func TestDestroyIsIdempotent(t *testing.T) {
	w, a, _ := newTestWorld()
	id := w.CreateEntity()
	w.Destroy(id)
	assert.NotPanics(t, func() {
		w.Destroy(id)
		w.Destroy(NewEntityID(999, 3))
	})

	// The recycled index gets a new generation; the stale id must not touch it.
	fresh := w.CreateEntity()
	require.Equal(t, id.Index(), fresh.Index())
	require.NotEqual(t, id, fresh)
	a.Set(fresh, &compA{V: 7})
	w.Destroy(id)
	got, ok := a.Get(fresh)
	require.True(t, ok)
	assert.Equal(t, 7, got.V)
}

func TestQuerySnapshotAndRestart(t *testing.T) {
	w, a, b := newTestWorld()
	both1 := w.CreateEntity()
	onlyA := w.CreateEntity()
	both2 := w.CreateEntity()
	for _, id := range []EntityID{both1, onlyA, both2} {
		a.Set(id, &compA{})
	}
	b.Set(both1, &compB{})
	b.Set(both2, &compB{})

	seq := w.Query(kindA, kindB)
	first := slices.Collect(seq)
	assert.Equal(t, []EntityID{both1, both2}, first)

	// Attaching after the call does not change the snapshot, and the
	// sequence can be consumed again.
	b.Set(onlyA, &compB{})
	assert.Equal(t, first, slices.Collect(seq))
	assert.Len(t, slices.Collect(w.Query(kindA, kindB)), 3)
}

func TestQuerySkipsInactive(t *testing.T) {
	w, a, _ := newTestWorld()
	id := w.CreateEntity()
	a.Set(id, &compA{})
	w.SetActive(id, false)
	assert.Empty(t, slices.Collect(w.Query(kindA)))
	assert.True(t, w.Has(id, kindA))
	w.SetActive(id, true)
	assert.Equal(t, []EntityID{id}, slices.Collect(w.Query(kindA)))
}

func TestQueryUnknownKind(t *testing.T) {
	w, _, _ := newTestWorld()
	assert.Empty(t, slices.Collect(w.Query(Kind(42))))
	assert.Empty(t, slices.Collect(w.Query()))
}

func TestDeferredDestroy(t *testing.T) {
	w, a, _ := newTestWorld()
	id := w.CreateEntity()
	a.Set(id, &compA{})
	w.MarkForDestruction(id)
	w.MarkForDestruction(id)
	assert.True(t, w.Alive(id))
	assert.Equal(t, 1, w.FlushDestroyQueue())
	assert.False(t, w.Alive(id))
	assert.Equal(t, 0, a.Len())
}

func TestEach2VisitsEntitiesHoldingBoth(t *testing.T) {
	_, a, b := newTestWorld()
	both := []EntityID{NewEntityID(1, 0), NewEntityID(2, 0)}
	for _, id := range both {
		a.Set(id, &compA{V: int(id.Index())})
		b.Set(id, &compB{S: "x"})
	}
	a.Set(NewEntityID(3, 0), &compA{})
	a.Set(NewEntityID(4, 0), &compA{})
	b.Set(NewEntityID(5, 0), &compB{})

	var seen []EntityID
	Each2(a, b, func(id EntityID, ca *compA, cb *compB) {
		assert.Equal(t, int(id.Index()), ca.V)
		cb.S = "seen"
		seen = append(seen, id)
	})
	slices.Sort(seen)
	assert.Equal(t, both, seen)
	for _, id := range both {
		c, _ := b.Get(id)
		assert.Equal(t, "seen", c.S)
	}

	seen = nil
	Each2(b, a, func(id EntityID, _ *compB, _ *compA) { seen = append(seen, id) })
	assert.Len(t, seen, 2, "either store may drive")
}

func TestDuplicateKindPanics(t *testing.T) {
	w, _, _ := newTestWorld()
	assert.Panics(t, func() {
		w.Registry().Register(NewPtrComponentStore[compA](kindA))
	})
}
