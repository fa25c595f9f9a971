package system

import (
	"time"

	"github.com/l1jgo/cultivation/internal/component"
	"github.com/l1jgo/cultivation/internal/core/ecs"
	coresys "github.com/l1jgo/cultivation/internal/core/system"
	"github.com/l1jgo/cultivation/internal/world"
)

// Per-tick regeneration amounts.
const (
	RegenHealthPerTick = 1
	RegenManaPerTick   = 2
)

// RegenSystem restores health and mana on every tick, clamped to the maximums.
// It covers characters, entities holding both Attributes and State. Dead or
// inactive ones do not regenerate. Phase 2 (PostUpdate).
type RegenSystem struct {
	world *world.World
}

func NewRegenSystem(w *world.World) *RegenSystem {
	return &RegenSystem{world: w}
}

func (s *RegenSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *RegenSystem) Update(_ time.Duration) error {
	ecs.Each2(s.world.Attributes, s.world.State, func(id ecs.EntityID, attr *component.Attributes, _ *component.State) {
		if !s.world.Active(id) || attr.Dead || attr.Health <= 0 {
			return
		}
		if attr.Health < attr.MaxHealth {
			attr.Health += RegenHealthPerTick
		}
		if attr.Mana < attr.MaxMana {
			attr.Mana += RegenManaPerTick
		}
		attr.Clamp()
	})
	return nil
}
