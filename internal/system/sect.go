package system

import (
	"maps"
	"slices"

	"github.com/l1jgo/cultivation/internal/component"
	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/core/event"
	"github.com/l1jgo/cultivation/internal/data"
	"github.com/l1jgo/cultivation/internal/world"
)

// SectSystem handles request-join-sect and request-learn-technique.
//
// An entity belongs to at most one sect for life. Techniques are open to
// anyone meeting their requirements; sect skills only to members of the
// owning sect with enough power, and are learned as abilities.
type SectSystem struct {
	world *world.World
	bus   *event.Bus
	data  *data.Provider
}

func NewSectSystem(w *world.World, bus *event.Bus, p *data.Provider) *SectSystem {
	return &SectSystem{world: w, bus: bus, data: p}
}

// Subscribe hooks the system into the bus.
func (s *SectSystem) Subscribe() {
	event.On(s.bus, event.TopicRequestJoinSect, s.onJoin)
	event.On(s.bus, event.TopicRequestLearn, s.onLearn)
}

// ==================== 門派 ====================

func (s *SectSystem) onJoin(ev event.RequestJoinSect) error {
	attr, ok := s.world.Attributes.Get(ev.Entity)
	if !ok || attr.Dead {
		return nil
	}
	st, ok := s.world.State.Get(ev.Entity)
	if !ok {
		return nil
	}
	sect, ok := s.data.Sect(ev.SectID)
	if !ok {
		return s.say(ev.Entity, "未知门派: %s", ev.SectID)
	}
	if st.Sect == sect.ID {
		return s.say(ev.Entity, "已是%s弟子", sect.Name)
	}
	if st.Sect != "" {
		return s.say(ev.Entity, "已有师门，不能改投%s", sect.Name)
	}
	if stat, need, ok := unmet(attr, sect.EntryRequirement); !ok {
		return s.say(ev.Entity, "不满足%s的入门条件：%s 需达到 %d", sect.Name, stat, need)
	}

	st.Sect = sect.ID
	applyEffects(attr, sect.Bonus)
	if err := s.bus.Emit(event.TopicSectJoined, event.SectJoined{Entity: ev.Entity, SectID: sect.ID}); err != nil {
		return err
	}
	if err := s.bus.Emit(event.TopicEntityUpdated, event.EntityUpdated{Entity: ev.Entity}); err != nil {
		return err
	}
	return s.say(ev.Entity, "加入了 %s！", sect.Name)
}

// ==================== 武學 ====================

func (s *SectSystem) onLearn(ev event.RequestLearn) error {
	attr, ok := s.world.Attributes.Get(ev.Entity)
	if !ok || attr.Dead {
		return nil
	}
	sk, ok := s.world.Skills.Get(ev.Entity)
	if !ok {
		return nil
	}
	if t, ok := s.data.Technique(ev.SkillID); ok {
		return s.learnTechnique(ev.Entity, attr, sk, t)
	}
	if ss, ok := s.data.SectSkill(ev.SkillID); ok {
		return s.learnSectSkill(ev.Entity, attr, sk, ss)
	}
	return s.say(ev.Entity, "未知功法: %s", ev.SkillID)
}

func (s *SectSystem) learnTechnique(id ecs.EntityID, attr *component.Attributes, sk *component.Skills, t *data.Technique) error {
	if sk.KnowsTechnique(t.ID) {
		return s.say(id, "已经学会了%s", t.Name)
	}
	if stat, need, ok := unmet(attr, t.Requirements); !ok {
		return s.say(id, "无法学习%s：%s 需达到 %d", t.Name, stat, need)
	}
	if t.Prerequisite != "" && !sk.KnowsTechnique(t.Prerequisite) {
		name := t.Prerequisite
		if pre, ok := s.data.Technique(t.Prerequisite); ok {
			name = pre.Name
		}
		return s.say(id, "学习%s需先学会%s", t.Name, name)
	}

	sk.LearnTechnique(t.ID)
	applyEffects(attr, t.Effects)
	return s.learned(id, t.ID, t.Name, true)
}

func (s *SectSystem) learnSectSkill(id ecs.EntityID, attr *component.Attributes, sk *component.Skills, ss *data.SectSkill) error {
	if st, ok := s.world.State.Get(id); !ok || st.Sect != ss.Sect {
		return s.say(id, "%s 是门派秘传，非本门弟子不可学", ss.Name)
	}
	if attr.Power() < ss.PowerRequirement {
		return s.say(id, "实力不足，学习%s需要实力 %d（当前 %d）", ss.Name, ss.PowerRequirement, attr.Power())
	}
	if !sk.LearnAbility(ss.ID) {
		return s.say(id, "已经学会了%s", ss.Name)
	}
	return s.learned(id, ss.ID, ss.Name, false)
}

func (s *SectSystem) learned(id ecs.EntityID, skill, name string, technique bool) error {
	if err := s.bus.Emit(event.TopicSkillLearned, event.SkillLearned{Entity: id, SkillID: skill, Technique: technique}); err != nil {
		return err
	}
	if err := s.bus.Emit(event.TopicEntityUpdated, event.EntityUpdated{Entity: id}); err != nil {
		return err
	}
	return s.say(id, "学会了%s！", name)
}

// say reports to the player only; NPC requests resolve silently.
func (s *SectSystem) say(id ecs.EntityID, format string, args ...any) error {
	if !s.world.IsPlayer(id) {
		return nil
	}
	return s.bus.Message(format, args...)
}

// unmet returns the first requirement, in name order, that attr falls short
// of. Unknown stat names are never met.
func unmet(attr *component.Attributes, req map[string]int) (string, int, bool) {
	for _, stat := range slices.Sorted(maps.Keys(req)) {
		if v, ok := attr.Value(stat); !ok || v < req[stat] {
			return stat, req[stat], false
		}
	}
	return "", 0, true
}

// applyEffects adds permanent stat changes. Raising a maximum raises the
// current value with it.
func applyEffects(attr *component.Attributes, fx map[string]int) {
	for _, stat := range slices.Sorted(maps.Keys(fx)) {
		v := fx[stat]
		switch stat {
		case "max_health", "health":
			attr.MaxHealth += v
			attr.Health += v
		case "max_mana", "mana":
			attr.MaxMana += v
			attr.Mana += v
		case "physical_attack":
			attr.PhysicalAttack += v
		case "spell_attack":
			attr.SpellAttack += v
		case "defense":
			attr.Defense += v
		default:
			if cur, ok := attr.Value(stat); ok {
				attr.SetBase(stat, cur+v)
			}
		}
	}
	attr.Clamp()
}
