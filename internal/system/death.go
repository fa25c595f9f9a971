package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/cultivation/internal/core/event"
	"github.com/l1jgo/cultivation/internal/world"
)

// DeathSystem reacts to entity-death. The player entity is kept (flagged
// Dead) so its final state can still be inspected; everything else is queued
// for destruction at the end of the tick.
type DeathSystem struct {
	world *world.World
	bus   *event.Bus
	log   *zap.Logger
}

func NewDeathSystem(w *world.World, bus *event.Bus, log *zap.Logger) *DeathSystem {
	return &DeathSystem{world: w, bus: bus, log: log}
}

// Subscribe hooks the system into the bus.
func (s *DeathSystem) Subscribe() {
	event.On(s.bus, event.TopicEntityDeath, s.onDeath)
}

func (s *DeathSystem) onDeath(ev event.EntityDeath) error {
	// 確保旗標已設（直接 emit 的死亡事件不經過 MarkDead）
	s.world.MarkDead(ev.Entity)
	if attr, ok := s.world.Attributes.Get(ev.Entity); ok {
		attr.Health = 0
	}

	s.log.Info("entity died",
		zap.Uint64("entity", uint64(ev.Entity)),
		zap.String("name", s.world.Name(ev.Entity)),
		zap.String("cause", string(ev.Cause)))

	if s.world.IsPlayer(ev.Entity) {
		if ev.Cause == event.CauseOldAge {
			return s.bus.Message("寿元耗尽，%s 坐化而去，修仙之路就此结束……", s.world.Name(ev.Entity))
		}
		return s.bus.Message("%s 身死道消，修仙之路就此结束……", s.world.Name(ev.Entity))
	}
	if _, isNPC := s.world.NPC.Get(ev.Entity); isNPC {
		if err := s.bus.Message("%s 离开了这个世界", s.world.Name(ev.Entity)); err != nil {
			return err
		}
	}
	s.world.MarkForDestruction(ev.Entity)
	return nil
}
