package world

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/l1jgo/cultivation/internal/component"
	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/data"
	"github.com/l1jgo/cultivation/internal/randx"
)

var ErrUnknownTemplate = errors.New("unknown template")

// CreationPayload is the result of character creation, consumed once by
// NewPlayer. Attributes overrides base stats by content name
// ("constitution", "spiritual_root"...); unknown names are ignored.
type CreationPayload struct {
	Name       string
	Attributes map[string]int
	Traits     []string
}

// NewPlayer builds the player entity from a character template and the
// creation payload. The payload is copied; later changes to it have no effect.
func (w *World) NewPlayer(p *data.Provider, templateID string, payload CreationPayload) (ecs.EntityID, error) {
	tmpl, ok := p.CharacterTemplate(templateID)
	if !ok {
		return 0, fmt.Errorf("%w: character template %q", ErrUnknownTemplate, templateID)
	}

	attr := component.DefaultAttributes()
	applyBase(&attr, tmpl.BaseAttributes)
	applyStats(&attr, tmpl.InitialStats)
	for _, name := range slices.Sorted(maps.Keys(payload.Attributes)) {
		attr.SetBase(name, payload.Attributes[name])
	}
	attr.Clamp()

	skills := component.NewSkills()
	for _, id := range tmpl.StartingAbilities {
		skills.LearnAbility(id)
	}
	for _, id := range tmpl.StartingTechniques {
		skills.LearnTechnique(id)
	}

	inv := component.NewInventory(tmpl.InventoryCapacity)
	for _, id := range slices.Sorted(maps.Keys(tmpl.StartingItems)) {
		inv.Add(id, tmpl.StartingItems[id])
	}

	name := payload.Name
	if name == "" {
		name = tmpl.Name
	}

	id := w.CreateEntity()
	w.Attributes.Set(id, &attr)
	w.Skills.Set(id, skills)
	w.State.Set(id, component.NewState(tmpl.Realm))
	w.Inventory.Set(id, inv)
	w.Equipment.Set(id, component.NewEquipment())
	w.Identity.Set(id, &component.Identity{Name: name, Player: true, Traits: slices.Clone(payload.Traits)})
	w.Position.Set(id, &component.Position{Scene: tmpl.Scene})
	w.player = id
	return id, nil
}

func applyBase(a *component.Attributes, b data.BaseAttributes) {
	setIf(&a.Constitution, b.Constitution)
	setIf(&a.Comprehension, b.Comprehension)
	setIf(&a.Charm, b.Charm)
	setIf(&a.Luck, b.Luck)
	setIf(&a.Determination, b.Determination)
	setIf(&a.BoneRoot, b.BoneRoot)
	setIf(&a.SpiritualRoot, b.SpiritualRoot)
}

func applyStats(a *component.Attributes, s data.InitialStats) {
	if s.Health > 0 {
		a.Health, a.MaxHealth = s.Health, s.Health
	}
	if s.Mana > 0 {
		a.Mana, a.MaxMana = s.Mana, s.Mana
	}
	setIf(&a.Lifespan, s.Lifespan)
	setIf(&a.Age, s.Age)
	setIf(&a.PhysicalAttack, s.PhysicalAttack)
	setIf(&a.SpellAttack, s.SpellAttack)
	setIf(&a.Defense, s.Defense)
}

func setIf(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// SpawnNPC rolls a new NPC from the given template.
func (w *World) SpawnNPC(p *data.Provider, templateID string, rng randx.Source) (ecs.EntityID, error) {
	tmpl, ok := p.NPCTemplate(templateID)
	if !ok {
		return 0, fmt.Errorf("%w: npc template %q", ErrUnknownTemplate, templateID)
	}

	attr := component.DefaultAttributes()
	for _, stat := range slices.Sorted(maps.Keys(tmpl.BaseAttributes)) {
		r := tmpl.BaseAttributes[stat]
		attr.SetBase(stat, randx.Range(rng, r[0], r[1]))
	}
	st := tmpl.InitialStats
	if st.Health > 0 {
		attr.Health, attr.MaxHealth = st.Health, st.Health
	}
	if st.Mana > 0 {
		attr.Mana, attr.MaxMana = st.Mana, st.Mana
	}
	setIf(&attr.Lifespan, st.Lifespan)
	if st.AgeRange != (data.IntRange{}) {
		attr.Age = randx.Range(rng, st.AgeRange[0], st.AgeRange[1])
	}
	power := randx.Range(rng, st.PowerRange[0], st.PowerRange[1])
	attr.PhysicalAttack = power / 2
	attr.SpellAttack = power / 3

	name := tmpl.ID
	if len(tmpl.NamePool) > 0 {
		name = tmpl.NamePool[rng.Intn(len(tmpl.NamePool))]
	}

	id := w.CreateEntity()
	w.Attributes.Set(id, &attr)
	w.Skills.Set(id, component.NewSkills())
	w.State.Set(id, component.NewState(""))
	w.Inventory.Set(id, component.NewInventory(0))
	w.Identity.Set(id, &component.Identity{Name: name})
	w.NPC.Set(id, &component.NPC{
		TemplateID:      tmpl.ID,
		Personality:     tmpl.Personality,
		Power:           power,
		TrainChance:     tmpl.Behavior.TrainProbability,
		AdventureChance: tmpl.Behavior.AdventureProbability,
		InteractChance:  tmpl.Behavior.InteractProbability,
	})
	return id, nil
}

// SpawnRandomNPC picks a template uniformly and spawns it.
func (w *World) SpawnRandomNPC(p *data.Provider, rng randx.Source) (ecs.EntityID, error) {
	ids := p.NPCTemplateIDs()
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no npc templates loaded", ErrUnknownTemplate)
	}
	return w.SpawnNPC(p, ids[rng.Intn(len(ids))], rng)
}

// NewEnemy synthesizes a combat opponent scaled by level: health L*30,
// physical attack L*10, defense L*3. Callers destroy it when the fight ends.
func (w *World) NewEnemy(name string, level int) ecs.EntityID {
	if level < 1 {
		level = 1
	}
	attr := component.Attributes{
		Health:         level * 30,
		MaxHealth:      level * 30,
		PhysicalAttack: level * 10,
		Defense:        level * 3,
		Level:          level,
		Lifespan:       1 << 30,
	}
	id := w.CreateEntity()
	w.Attributes.Set(id, &attr)
	w.Skills.Set(id, component.NewSkills())
	w.State.Set(id, component.NewState(""))
	w.Identity.Set(id, &component.Identity{Name: name})
	return id
}
