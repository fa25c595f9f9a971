package combat

import (
	"errors"

	"go.uber.org/zap"

	"github.com/l1jgo/cultivation/internal/component"
	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/core/event"
	"github.com/l1jgo/cultivation/internal/data"
	"github.com/l1jgo/cultivation/internal/randx"
	"github.com/l1jgo/cultivation/internal/world"
)

var (
	ErrNoSession        = errors.New("no such combat session")
	ErrNotAwaitingInput = errors.New("combat session is not waiting for input")
	ErrUnknownAction    = errors.New("unknown combat action")
	ErrNotCombatant     = errors.New("entity cannot fight")
)

// Debuffs with a built-in meaning.
const (
	StateSilence = "silence" // blocks ability casting
	StateFrozen  = "frozen"  // skips the entity's action
)

// Settings tune the resolver; see config [combat].
type Settings struct {
	MaxTurns     int
	SpecialCost  int // mana for the generic auto-combat special
	HealCap      int // max health restored by the heal action
	Auto         bool
	Intervention bool
	Strategy     Strategy
}

func DefaultSettings() Settings {
	return Settings{
		MaxTurns:     10,
		SpecialCost:  10,
		HealCap:      20,
		Auto:         true,
		Intervention: true,
		Strategy:     StrategyBalanced,
	}
}

// Stats is the running record across all finished sessions.
type Stats struct {
	Wins   int
	Losses int
	Draws  int
}

// WinRate is wins over decided fights, in percent.
func (s Stats) WinRate() float64 {
	total := s.Wins + s.Losses
	if total == 0 {
		return 0
	}
	return float64(s.Wins) / float64(total) * 100
}

// Resolver applies attacks and abilities and runs combat sessions.
// Single-goroutine access only (game loop).
type Resolver struct {
	world *world.World
	bus   *event.Bus
	data  *data.Provider
	rng   randx.Source
	log   *zap.Logger

	cfg      Settings
	sessions map[string]*Session
	stats    Stats
}

func NewResolver(w *world.World, bus *event.Bus, p *data.Provider, rng randx.Source, cfg Settings, log *zap.Logger) *Resolver {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultSettings().MaxTurns
	}
	if cfg.HealCap <= 0 {
		cfg.HealCap = DefaultSettings().HealCap
	}
	if !cfg.Strategy.Valid() {
		cfg.Strategy = StrategyBalanced
	}
	return &Resolver{
		world:    w,
		bus:      bus,
		data:     p,
		rng:      rng,
		log:      log,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Subscribe hooks the resolver's input topics and the death listener.
func (r *Resolver) Subscribe() {
	event.On(r.bus, event.TopicRequestAttack, func(ev event.RequestAttack) error {
		return r.Attack(ev.Attacker, ev.Target)
	})
	event.On(r.bus, event.TopicRequestCastAbility, func(ev event.RequestCastAbility) error {
		return r.CastAbility(ev.Caster, ev.AbilityID, ev.Target)
	})
	event.On(r.bus, event.TopicEntityDeath, r.onDeath)
}

func (r *Resolver) Settings() Settings { return r.cfg }
func (r *Resolver) Stats() Stats       { return r.stats }

// ==================== 設定 ====================

func (r *Resolver) SetAuto(on bool) error {
	r.cfg.Auto = on
	return r.bus.Message("半自动战斗%s", onOff(on))
}

func (r *Resolver) SetIntervention(on bool) error {
	r.cfg.Intervention = on
	return r.bus.Message("关键时刻干预%s", onOff(on))
}

func (r *Resolver) SetStrategy(s Strategy) error {
	if !s.Valid() {
		return r.bus.Message("未知战斗策略: %s", s)
	}
	r.cfg.Strategy = s
	return r.bus.Message("战斗策略设为：%s", s.Label())
}

func onOff(on bool) string {
	if on {
		return "开启"
	}
	return "关闭"
}

// ==================== 傷害 ====================

// ApplyDamage subtracts dmg from target's health, clamped at 0, and emits
// damage-dealt. Reaching 0 emits entity-death once.
func (r *Resolver) ApplyDamage(attacker, target ecs.EntityID, dmg int, crit bool, kind event.DamageKind, element string, cause event.DeathCause) error {
	attr, ok := r.world.Attributes.Get(target)
	if !ok || attr.Dead {
		return nil
	}
	dmg = max(dmg, 0)
	attr.Health -= dmg
	attr.Clamp()
	if err := r.bus.Emit(event.TopicDamageDealt, event.DamageDealt{
		Attacker: attacker,
		Target:   target,
		Damage:   dmg,
		Crit:     crit,
		Kind:     kind,
		Element:  element,
	}); err != nil {
		return err
	}
	if attr.Health == 0 && r.world.MarkDead(target) {
		return r.bus.Emit(event.TopicEntityDeath, event.EntityDeath{Entity: target, Cause: cause})
	}
	return nil
}

func (r *Resolver) heal(target ecs.EntityID, amount int) (int, error) {
	attr, ok := r.world.Attributes.Get(target)
	if !ok || attr.Dead || amount <= 0 {
		return 0, nil
	}
	before := attr.Health
	attr.Health += amount
	attr.Clamp()
	healed := attr.Health - before
	if healed <= 0 {
		return 0, nil
	}
	return healed, r.bus.Emit(event.TopicHealingDone, event.HealingDone{Target: target, Amount: healed})
}

func (r *Resolver) frozen(id ecs.EntityID) bool {
	st, ok := r.world.State.Get(id)
	return ok && st.HasDebuff(StateFrozen)
}

func (r *Resolver) combatants(a, b ecs.EntityID) (*component.Attributes, *component.Attributes, bool) {
	aa, ok := r.world.Attributes.Get(a)
	if !ok || aa.Dead {
		return nil, nil, false
	}
	ba, ok := r.world.Attributes.Get(b)
	if !ok || ba.Dead {
		return nil, nil, false
	}
	return aa, ba, true
}

// ==================== 攻擊與施法 ====================

// Attack is a standalone basic attack: base damage is the attacker's own
// physical attack.
func (r *Resolver) Attack(attacker, target ecs.EntityID) error {
	att, def, ok := r.combatants(attacker, target)
	if !ok {
		return nil
	}
	if r.frozen(attacker) {
		return r.bus.Message("%s 被冻结，无法行动", r.world.Name(attacker))
	}
	dmg, crit := PhysicalDamage(att, def, att.PhysicalAttack, r.rng.Float64())
	if err := r.ApplyDamage(attacker, target, dmg, crit, event.DamagePhysical, "", event.CauseCombat); err != nil {
		return err
	}
	return r.bus.Message("造成 %d 点物理伤害%s", dmg, critText(crit))
}

// CastAbility casts a learned ability. A zero target means the caster.
// Every check happens before mana is spent, so a rejected cast changes nothing.
func (r *Resolver) CastAbility(caster ecs.EntityID, abilityID string, target ecs.EntityID) error {
	attr, ok := r.world.Attributes.Get(caster)
	if !ok || attr.Dead {
		return nil
	}
	skills, ok := r.world.Skills.Get(caster)
	if !ok || !skills.KnowsAbility(abilityID) {
		return r.bus.Message("尚未习得法术: %s", abilityID)
	}
	ab, ok := r.data.Ability(abilityID)
	if !ok {
		return r.bus.Message("未知法术: %s", abilityID)
	}
	if st, ok := r.world.State.Get(caster); ok && st.HasDebuff(StateSilence) {
		return r.bus.Message("%s 被沉默，无法施法", r.world.Name(caster))
	}
	if r.frozen(caster) {
		return r.bus.Message("%s 被冻结，无法行动", r.world.Name(caster))
	}
	if attr.Mana < ab.Cost.Mana {
		return r.bus.Message("真气不足，施放 %s 需要 %d 点", ab.Name, ab.Cost.Mana)
	}
	attr.Mana -= ab.Cost.Mana
	attr.Clamp()
	if err := r.bus.Message("施放了 %s", ab.Name); err != nil {
		return err
	}

	if target.IsZero() {
		target = caster
	}
	fx := ab.Effects

	if fx.Damage > 0 && target != caster {
		if tattr, ok := r.world.Attributes.Get(target); ok && !tattr.Dead {
			res := 0.0
			if st, ok := r.world.State.Get(target); ok {
				res = st.Resistance(ab.Element)
			}
			dmg, crit := SpellDamage(attr, fx.Damage, res, r.rng.Float64())
			if err := r.ApplyDamage(caster, target, dmg, crit, event.DamageSpell, ab.Element, event.CauseAbility); err != nil {
				return err
			}
			if err := r.bus.Message("法术造成 %d 点%s伤害%s", dmg, ab.Element, critText(crit)); err != nil {
				return err
			}
		}
	}
	if fx.HealAmount > 0 {
		if _, err := r.heal(target, fx.HealAmount); err != nil {
			return err
		}
	}
	if fx.FreezeDuration > 0 {
		if err := r.applyState(target, StateFrozen, fx.FreezeDuration, nil); err != nil {
			return err
		}
	}
	if fx.StateID != "" {
		if err := r.applyState(target, fx.StateID, fx.StateDuration, nil); err != nil {
			return err
		}
	}
	return r.bus.Emit(event.TopicEntityUpdated, event.EntityUpdated{Entity: caster})
}

// applyState adds a debuff, replacing any running one with the same id.
func (r *Resolver) applyState(target ecs.EntityID, id string, duration float64, payload map[string]float64) error {
	st, ok := r.world.State.Get(target)
	if !ok || duration <= 0 {
		return nil
	}
	st.Debuffs[id] = &component.Effect{Remaining: duration, Payload: payload}
	return r.bus.Emit(event.TopicStateApplied, event.StateApplied{
		Entity:   target,
		StateID:  id,
		Debuff:   true,
		Duration: duration,
	})
}

func critText(crit bool) string {
	if crit {
		return " (暴击!)"
	}
	return ""
}

// Session returns a live session by id.
func (r *Resolver) Session(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Resolver) logSession(msg string, s *Session, fields ...zap.Field) {
	r.log.Debug(msg, append([]zap.Field{
		zap.String("session", s.ID),
		zap.Uint64("player", uint64(s.Player)),
		zap.Uint64("enemy", uint64(s.Enemy)),
	}, fields...)...)
}
