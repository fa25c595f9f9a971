package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/cultivation/internal/core/event"
	"github.com/l1jgo/cultivation/internal/data"
	"github.com/l1jgo/cultivation/internal/scripting"
	"github.com/l1jgo/cultivation/internal/world"
)

// ProgressionSystem owns leveling and realm breakthroughs.
//
// Experience accumulates on Attributes. Reaching the curve's requirement for
// the current level raises the level by one and resets experience to 0; max
// health and mana grow by the level-up gains and both refill.
type ProgressionSystem struct {
	world *world.World
	bus   *event.Bus
	data  *data.Provider
	lua   *scripting.Engine
	log   *zap.Logger
}

func NewProgressionSystem(w *world.World, bus *event.Bus, p *data.Provider, lua *scripting.Engine, log *zap.Logger) *ProgressionSystem {
	return &ProgressionSystem{world: w, bus: bus, data: p, lua: lua, log: log}
}

// Subscribe hooks the system into the bus.
func (s *ProgressionSystem) Subscribe() {
	event.On(s.bus, event.TopicExperienceGained, s.onExperience)
	event.On(s.bus, event.TopicRequestBreakthrough, s.onBreakthrough)
}

func (s *ProgressionSystem) onExperience(ev event.ExperienceGained) error {
	attr, ok := s.world.Attributes.Get(ev.Entity)
	if !ok || attr.Dead || ev.Amount <= 0 {
		return nil
	}
	if attr.Level < 1 {
		attr.Level = 1
	}
	attr.Experience += ev.Amount

	req := s.lua.ExpRequired(attr.Level)
	if req <= 0 || attr.Experience < req {
		return nil
	}
	attr.Level++
	attr.Experience = 0
	gains := s.lua.LevelUpGains(attr.Level)
	attr.MaxHealth += gains.Health
	attr.MaxMana += gains.Mana
	attr.Health = attr.MaxHealth
	attr.Mana = attr.MaxMana
	attr.Clamp()

	s.log.Info("level up",
		zap.Uint64("entity", uint64(ev.Entity)),
		zap.Int("level", attr.Level))
	if err := s.bus.Emit(event.TopicLevelUp, event.LevelUp{Entity: ev.Entity, Level: attr.Level}); err != nil {
		return err
	}
	if s.world.IsPlayer(ev.Entity) {
		return s.bus.Message("升级了！当前等级: %d", attr.Level)
	}
	return nil
}

func (s *ProgressionSystem) onBreakthrough(ev event.RequestBreakthrough) error {
	attr, ok := s.world.Attributes.Get(ev.Entity)
	if !ok || attr.Dead {
		return nil
	}
	st, ok := s.world.State.Get(ev.Entity)
	if !ok {
		return nil
	}
	cur, ok := s.data.Realm(st.Realm)
	if !ok {
		return s.bus.Message("未知境界: %s", st.Realm)
	}
	if cur.NextRealm == "" {
		return s.bus.Message("%s 已是当前最高境界", cur.Name)
	}
	next, ok := s.data.Realm(cur.NextRealm)
	if !ok {
		return s.bus.Message("未知境界: %s", cur.NextRealm)
	}

	req := cur.BreakthroughRequirements
	if attr.Comprehension < req.Comprehension {
		return s.bus.Message("悟性不足，突破需要悟性 %d（当前 %d）", req.Comprehension, attr.Comprehension)
	}
	if attr.Level < req.Level {
		return s.bus.Message("等级不足，突破需要等级 %d（当前 %d）", req.Level, attr.Level)
	}

	from := st.Realm
	st.Realm = next.ID
	if m := next.AttributeMultipliers.Health; m > 0 {
		attr.MaxHealth = int(float64(attr.MaxHealth) * m)
	}
	if m := next.AttributeMultipliers.Mana; m > 0 {
		attr.MaxMana = int(float64(attr.MaxMana) * m)
	}
	attr.Lifespan += next.LifespanBonus
	attr.Clamp()

	if err := s.bus.Emit(event.TopicRealmBreakthrough, event.RealmBreakthrough{Entity: ev.Entity, From: from, To: next.ID}); err != nil {
		return err
	}
	if err := s.bus.Emit(event.TopicEntityUpdated, event.EntityUpdated{Entity: ev.Entity}); err != nil {
		return err
	}
	return s.bus.Message("突破到 %s 境界！", next.Name)
}
