package system

import (
	"github.com/l1jgo/cultivation/internal/component"
	"github.com/l1jgo/cultivation/internal/core/event"
	"github.com/l1jgo/cultivation/internal/scripting"
	"github.com/l1jgo/cultivation/internal/world"
)

// RecoverySystem is a day hook that heals living entities by their daily
// constitution recovery (scripts daily_recovery, default max(1, con/2)),
// once per elapsed day.
type RecoverySystem struct {
	world *world.World
	bus   *event.Bus
	lua   *scripting.Engine
}

func NewRecoverySystem(w *world.World, bus *event.Bus, lua *scripting.Engine) *RecoverySystem {
	return &RecoverySystem{world: w, bus: bus, lua: lua}
}

func (s *RecoverySystem) OnDayChanged(oldDay, newDay int) error {
	if newDay <= oldDay {
		return nil
	}
	days := newDay - oldDay
	for id := range s.world.Query(component.KindAttributes) {
		attr, ok := s.world.Attributes.Get(id)
		if !ok || attr.Dead || attr.Health <= 0 || attr.Health >= attr.MaxHealth {
			continue
		}
		before := attr.Health
		attr.Health += s.lua.DailyRecovery(attr.Constitution) * days
		attr.Clamp()
		healed := attr.Health - before
		if healed <= 0 {
			continue
		}
		if err := s.bus.Emit(event.TopicHealingDone, event.HealingDone{Target: id, Amount: healed}); err != nil {
			return err
		}
		if s.world.IsPlayer(id) {
			if err := s.bus.Message("体质强健，恢复了 %d 点生命值", healed); err != nil {
				return err
			}
		}
	}
	return nil
}
