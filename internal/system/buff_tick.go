package system

import (
	"maps"
	"slices"
	"time"

	"github.com/l1jgo/cultivation/internal/component"
	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/core/event"
	coresys "github.com/l1jgo/cultivation/internal/core/system"
	"github.com/l1jgo/cultivation/internal/world"
)

// BuffTickSystem decrements buff and debuff durations by the elapsed real
// seconds and drops entries that reach zero, emitting state-expired for each.
// A zero delta leaves durations untouched. Phase 1 (Update).
type BuffTickSystem struct {
	world *world.World
	bus   *event.Bus
}

func NewBuffTickSystem(w *world.World, bus *event.Bus) *BuffTickSystem {
	return &BuffTickSystem{world: w, bus: bus}
}

func (s *BuffTickSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *BuffTickSystem) Update(dt time.Duration) error {
	secs := dt.Seconds()
	if secs <= 0 {
		return nil
	}
	for id := range s.world.Query(component.KindState) {
		st, ok := s.world.State.Get(id)
		if !ok {
			continue
		}
		if err := s.tick(id, st.Buffs, secs, false); err != nil {
			return err
		}
		if err := s.tick(id, st.Debuffs, secs, true); err != nil {
			return err
		}
	}
	return nil
}

func (s *BuffTickSystem) tick(id ecs.EntityID, effects map[string]*component.Effect, secs float64, debuff bool) error {
	if len(effects) == 0 {
		return nil
	}
	// Sorted so expiry notifications come out in a stable order.
	for _, key := range slices.Sorted(maps.Keys(effects)) {
		e := effects[key]
		e.Remaining -= secs
		if e.Remaining > 0 {
			continue
		}
		delete(effects, key)
		if err := s.bus.Emit(event.TopicStateExpired, event.StateExpired{Entity: id, StateID: key, Debuff: debuff}); err != nil {
			return err
		}
	}
	return nil
}
