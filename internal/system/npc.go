package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/cultivation/internal/component"
	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/core/event"
	"github.com/l1jgo/cultivation/internal/data"
	"github.com/l1jgo/cultivation/internal/randx"
	"github.com/l1jgo/cultivation/internal/world"
)

// NPCSystem spawns the supporting cast and runs their daily routine on
// npc-daily-actions: one draw per NPC picks train, adventure or interact by
// the template's behaviour probabilities (cumulative); the remainder idles.
type NPCSystem struct {
	world *world.World
	bus   *event.Bus
	data  *data.Provider
	rng   randx.Source
	log   *zap.Logger
}

func NewNPCSystem(w *world.World, bus *event.Bus, p *data.Provider, rng randx.Source, log *zap.Logger) *NPCSystem {
	return &NPCSystem{world: w, bus: bus, data: p, rng: rng, log: log}
}

// Subscribe hooks the system into the bus.
func (s *NPCSystem) Subscribe() {
	event.On(s.bus, event.TopicNpcDailyActions, s.onDaily)
}

// Spawn creates between lo and hi NPCs from random templates.
func (s *NPCSystem) Spawn(lo, hi int) ([]ecs.EntityID, error) {
	if hi <= 0 || len(s.data.NPCTemplateIDs()) == 0 {
		return nil, nil
	}
	n := randx.Range(s.rng, max(lo, 0), hi)
	out := make([]ecs.EntityID, 0, n)
	for range n {
		id, err := s.world.SpawnRandomNPC(s.data, s.rng)
		if err != nil {
			return out, err
		}
		out = append(out, id)
		s.log.Debug("npc spawned", zap.Uint64("entity", uint64(id)), zap.String("name", s.world.Name(id)))
		if err := s.bus.Message("%s 来到了这个世界", s.world.Name(id)); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (s *NPCSystem) onDaily(_ event.NpcDailyActions) error {
	for _, id := range s.world.NPCs() {
		npc, ok := s.world.NPC.Get(id)
		if !ok {
			continue
		}
		attr, ok := s.world.Attributes.Get(id)
		if !ok || attr.Dead {
			continue
		}
		if err := s.act(id, npc, attr); err != nil {
			return err
		}
	}
	return nil
}

func (s *NPCSystem) act(id ecs.EntityID, npc *component.NPC, attr *component.Attributes) error {
	r := s.rng.Float64()
	switch {
	case r < npc.TrainChance:
		return s.train(id, npc, attr)
	case r < npc.TrainChance+npc.AdventureChance:
		return s.adventure(id, npc, attr)
	case r < npc.TrainChance+npc.AdventureChance+npc.InteractChance:
		return s.interact(id, npc)
	}
	return nil
}

func (s *NPCSystem) train(id ecs.EntityID, npc *component.NPC, attr *component.Attributes) error {
	gain := randx.Range(s.rng, 1, 3) + attr.Comprehension/3
	npc.Power += gain
	attr.PhysicalAttack += gain / 2
	attr.SpellAttack += gain / 3
	if s.rng.Float64() < 0.3 {
		return s.bus.Message("%s 在静心修炼", s.world.Name(id))
	}
	return nil
}

func (s *NPCSystem) adventure(id ecs.EntityID, npc *component.NPC, attr *component.Attributes) error {
	name := s.world.Name(id)
	switch s.rng.Intn(4) {
	case 0:
		if inv, ok := s.world.Inventory.Get(id); ok {
			inv.Add("qi_gathering_pill", randx.Range(s.rng, 1, 3))
		}
		if s.rng.Float64() < 0.2 {
			return s.bus.Message("%s 历练归来，收获颇丰", name)
		}
	case 1:
		npc.Power += randx.Range(s.rng, 2, 5)
		if s.rng.Float64() < 0.2 {
			return s.bus.Message("%s 历练中有所感悟", name)
		}
	case 2:
		attr.Health = max(1, attr.Health-randx.Range(s.rng, 5, 15))
		attr.Clamp()
		if s.rng.Float64() < 0.3 {
			return s.bus.Message("%s 历练时受了些伤", name)
		}
	case 3:
		npc.Power += randx.Range(s.rng, 10, 20)
		if s.rng.Float64() < 0.5 {
			return s.bus.Message("%s 历练中突破了境界！", name)
		}
	}
	return nil
}

var (
	elderLines = []string{
		"年轻人，修仙之路漫漫，切勿急躁。",
		"我观你骨骼清奇，是个修仙的好苗子。",
		"修炼不仅要勤奋，更要有悟性。",
	}
	discipleLines = []string{
		"道友，可愿与我切磋一二？",
		"最近修炼遇到了瓶颈，不知道友有何见解？",
		"听闻道友天赋异禀，久仰大名！",
	}
	generalLines = []string{
		"道友，修仙路上多保重。",
		"这世道，修仙不易啊。",
		"道友面相不凡，必有大成就。",
	}
)

// interact talks to the player; elders may pass on insight and disciples may
// ask for a sparring match, both granting experience.
func (s *NPCSystem) interact(id ecs.EntityID, npc *component.NPC) error {
	player, ok := s.world.Player()
	if !ok {
		return nil
	}
	name := s.world.Name(id)
	switch npc.TemplateID {
	case "mysterious_elder":
		if s.rng.Float64() < 0.1 {
			if err := s.bus.Message("%s 传授了你一些修炼心得", name); err != nil {
				return err
			}
			return s.grant(player, randx.Range(s.rng, 20, 50))
		}
		return s.say(name, elderLines)
	case "sect_disciple":
		if err := s.say(name, discipleLines); err != nil {
			return err
		}
		if s.rng.Float64() < 0.2 {
			return s.spar(player, id, npc)
		}
		return nil
	default:
		return s.say(name, generalLines)
	}
}

func (s *NPCSystem) spar(player, id ecs.EntityID, npc *component.NPC) error {
	if err := s.bus.Message("与 %s 开始切磋……", s.world.Name(id)); err != nil {
		return err
	}
	power := playerPower(s.world, player)
	opp := float64(npc.Power)
	switch {
	case float64(power) > opp*1.2:
		if err := s.bus.Message("你轻松获胜，获得了修炼经验！"); err != nil {
			return err
		}
		return s.grant(player, randx.Range(s.rng, 10, 30))
	case float64(power) < opp*0.8:
		if err := s.bus.Message("你败下阵来，但也有所收获。"); err != nil {
			return err
		}
		return s.grant(player, randx.Range(s.rng, 5, 15))
	default:
		if err := s.bus.Message("势均力敌，平分秋色。"); err != nil {
			return err
		}
		return s.grant(player, randx.Range(s.rng, 8, 20))
	}
}

// playerPower approximates cultivation power for sparring comparisons.
func playerPower(w *world.World, id ecs.EntityID) int {
	attr, ok := w.Attributes.Get(id)
	if !ok {
		return 0
	}
	return attr.PhysicalAttack + attr.SpellAttack + attr.Level*5
}

func (s *NPCSystem) say(name string, lines []string) error {
	return s.bus.Message("%s: %s", name, lines[s.rng.Intn(len(lines))])
}

func (s *NPCSystem) grant(player ecs.EntityID, amount int) error {
	return s.bus.Emit(event.TopicExperienceGained, event.ExperienceGained{Entity: player, Amount: amount})
}
