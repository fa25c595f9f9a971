package encounter

import (
	"github.com/l1jgo/cultivation/internal/combat"
	"github.com/l1jgo/cultivation/internal/component"
	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/core/event"
	"github.com/l1jgo/cultivation/internal/data"
)

const defaultEnemyName = "未知敌人"

// apply carries out an outcome: message, rewards, then the nested fight if
// the outcome has one.
func (r *Resolver) apply(id ecs.EntityID, out *data.Outcome) error {
	if !r.world.Alive(id) {
		return nil
	}
	player := r.world.IsPlayer(id)
	if out.Message != "" && player {
		if err := r.bus.Message("%s", out.Message); err != nil {
			return err
		}
	}
	if err := r.reward(id, out.Rewards, player); err != nil {
		return err
	}
	if out.Combat == nil || r.combat == nil {
		return nil
	}
	name := out.Combat.Enemy
	if name == "" {
		name = defaultEnemyName
	}
	enemy := r.world.NewEnemy(name, out.Combat.Level)
	_, err := r.combat.StartCombat(id, enemy, combat.StartOptions{Transient: true})
	return err
}

func (r *Resolver) reward(id ecs.EntityID, rw data.Rewards, player bool) error {
	say := func(format string, args ...any) error {
		if !player {
			return nil
		}
		return r.bus.Message(format, args...)
	}
	changed := false

	if inv, ok := r.world.Inventory.Get(id); ok {
		for _, g := range rw.Items {
			if g.Count <= 0 {
				continue
			}
			name := g.ID
			if item, ok := r.data.Item(g.ID); ok {
				name = item.Name
			}
			if !inv.Add(g.ID, g.Count) {
				if err := say("背包已满，%s 无法收入", name); err != nil {
					return err
				}
				continue
			}
			changed = true
			if err := say("获得 %s x%d", name, g.Count); err != nil {
				return err
			}
		}
	}

	if rw.Experience > 0 {
		if err := r.bus.Emit(event.TopicExperienceGained, event.ExperienceGained{Entity: id, Amount: rw.Experience}); err != nil {
			return err
		}
	}

	if sk, ok := r.world.Skills.Get(id); ok {
		if rw.Technique != "" {
			if t, ok := r.data.Technique(rw.Technique); !ok {
				if err := say("未知功法: %s", rw.Technique); err != nil {
					return err
				}
			} else if sk.LearnTechnique(t.ID) {
				changed = true
				if err := r.learned(id, t.ID, true); err != nil {
					return err
				}
				if err := say("学会了功法：%s", t.Name); err != nil {
					return err
				}
			}
		}
		if rw.Ability != "" {
			if ab, ok := r.data.Ability(rw.Ability); !ok {
				if err := say("未知法术: %s", rw.Ability); err != nil {
					return err
				}
			} else if sk.LearnAbility(ab.ID) {
				changed = true
				if err := r.learned(id, ab.ID, false); err != nil {
					return err
				}
				if err := say("学会了法术：%s", ab.Name); err != nil {
					return err
				}
			}
		}
	}

	if rw.Heal > 0 || rw.Mana > 0 {
		if attr, ok := r.world.Attributes.Get(id); ok && !attr.Dead {
			healed := restore(attr, rw.Heal, rw.Mana)
			changed = true
			if healed > 0 {
				if err := r.bus.Emit(event.TopicHealingDone, event.HealingDone{Target: id, Amount: healed}); err != nil {
					return err
				}
			}
		}
	}

	if !changed {
		return nil
	}
	return r.bus.Emit(event.TopicEntityUpdated, event.EntityUpdated{Entity: id})
}

// restore adds health and mana, clamped at the maxima, and returns the
// health actually gained.
func restore(attr *component.Attributes, health, mana int) int {
	before := attr.Health
	attr.Health += max(health, 0)
	attr.Mana += max(mana, 0)
	attr.Clamp()
	return attr.Health - before
}

func (r *Resolver) learned(id ecs.EntityID, skill string, technique bool) error {
	return r.bus.Emit(event.TopicSkillLearned, event.SkillLearned{Entity: id, SkillID: skill, Technique: technique})
}
