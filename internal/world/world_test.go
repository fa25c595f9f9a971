package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/cultivation/internal/component"
	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/data"
	"github.com/l1jgo/cultivation/internal/randx"
)

const testTemplates = `
templates:
  - id: hero
    name: Hero
    realm: mortal
    scene: village
    inventory_capacity: 10
    base_attributes:
      constitution: 7
      luck: 4
    initial_stats:
      health: 120
      mana: 60
      age: 18
    starting_items:
      healing_pill: 2
    starting_abilities: [fireball]
    starting_techniques: [basic_breathing]
`

const testNPCs = `
npc_templates:
  - id: elder
    name_pool: [A, B]
    personality: wise
    base_attributes:
      constitution: [4, 8]
      luck: [2, 2]
    initial_stats:
      health: 150
      mana: 100
      lifespan: 300
      age_range: [120, 240]
      power_range: [40, 80]
    behavior:
      train_probability: 0.5
      adventure_probability: 0.1
      interact_probability: 0.2
`

func testProvider(t *testing.T) *data.Provider {
	t.Helper()
	p := data.NewProvider()
	require.NoError(t, p.LoadYAML(data.CategoryCharacterTemplate, []byte(testTemplates)))
	require.NoError(t, p.LoadYAML(data.CategoryNPCTemplate, []byte(testNPCs)))
	return p
}

func TestNewPlayerAppliesTemplateAndPayload(t *testing.T) {
	w := New()
	payload := CreationPayload{
		Name:       "Lin",
		Attributes: map[string]int{"comprehension": 9, "health": 1},
		Traits:     []string{"stubborn"},
	}
	id, err := w.NewPlayer(testProvider(t), "hero", payload)
	require.NoError(t, err)

	payload.Traits[0] = "changed"

	attr, ok := w.Attributes.Get(id)
	require.True(t, ok)
	assert.Equal(t, 120, attr.Health)
	assert.Equal(t, 120, attr.MaxHealth)
	assert.Equal(t, 60, attr.MaxMana)
	assert.Equal(t, 7, attr.Constitution)
	assert.Equal(t, 9, attr.Comprehension)
	assert.Equal(t, 5, attr.Charm, "unset stats keep defaults")
	assert.Equal(t, 18, attr.Age)
	assert.Equal(t, 80, attr.Lifespan)
	assert.Equal(t, 1, attr.Level)

	skills, _ := w.Skills.Get(id)
	assert.True(t, skills.KnowsAbility("fireball"))
	assert.True(t, skills.KnowsTechnique("basic_breathing"))

	inv, _ := w.Inventory.Get(id)
	assert.Equal(t, 2, inv.Count("healing_pill"))
	assert.Equal(t, 10, inv.Capacity)

	ident, _ := w.Identity.Get(id)
	assert.Equal(t, "Lin", ident.Name)
	assert.True(t, ident.Player)
	assert.Equal(t, []string{"stubborn"}, ident.Traits)

	pos, _ := w.Position.Get(id)
	assert.Equal(t, "village", pos.Scene)

	st, _ := w.State.Get(id)
	assert.Equal(t, "mortal", st.Realm)

	got, ok := w.Player()
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.True(t, w.IsPlayer(id))
}

func TestNewPlayerUnknownTemplate(t *testing.T) {
	w := New()
	_, err := w.NewPlayer(testProvider(t), "ghost", CreationPayload{})
	assert.ErrorIs(t, err, ErrUnknownTemplate)
	assert.Zero(t, w.Count())
}

func TestSpawnNPCRollsWithinRanges(t *testing.T) {
	w := New()
	rng := &randx.Fixed{Ints: []int{1}}
	id, err := w.SpawnNPC(testProvider(t), "elder", rng)
	require.NoError(t, err)

	attr, _ := w.Attributes.Get(id)
	assert.Equal(t, 5, attr.Constitution)
	assert.Equal(t, 2, attr.Luck)
	assert.Equal(t, 150, attr.MaxHealth)
	assert.Equal(t, 300, attr.Lifespan)
	assert.Equal(t, 121, attr.Age)

	npc, ok := w.NPC.Get(id)
	require.True(t, ok)
	assert.Equal(t, 41, npc.Power)
	assert.Equal(t, 20, attr.PhysicalAttack)
	assert.Equal(t, 13, attr.SpellAttack)
	assert.Equal(t, 0.5, npc.TrainChance)
	assert.Equal(t, "B", w.Name(id))
	assert.Equal(t, []ecs.EntityID{id}, w.NPCs())

	_, err = w.SpawnNPC(testProvider(t), "nobody", rng)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestNewEnemyScalesWithLevel(t *testing.T) {
	w := New()
	id := w.NewEnemy("bandit", 3)
	attr, ok := w.Attributes.Get(id)
	require.True(t, ok)
	assert.Equal(t, 90, attr.Health)
	assert.Equal(t, 90, attr.MaxHealth)
	assert.Equal(t, 30, attr.PhysicalAttack)
	assert.Equal(t, 9, attr.Defense)
	assert.Equal(t, "bandit", w.Name(id))
}

func TestDestroyRemovesEveryKind(t *testing.T) {
	w := New()
	id, err := w.NewPlayer(testProvider(t), "hero", CreationPayload{})
	require.NoError(t, err)
	w.NPC.Set(id, &component.NPC{TemplateID: "x"})
	for _, k := range component.AllKinds() {
		require.True(t, w.Has(id, k), "kind %s", component.KindName(k))
	}

	w.Destroy(id)

	for _, k := range component.AllKinds() {
		assert.False(t, w.Has(id, k), "kind %s", component.KindName(k))
	}
	_, ok := w.Attributes.Get(id)
	assert.False(t, ok)
	_, ok = w.Skills.Get(id)
	assert.False(t, ok)
	_, ok = w.State.Get(id)
	assert.False(t, ok)
	_, ok = w.Inventory.Get(id)
	assert.False(t, ok)
	_, ok = w.Equipment.Get(id)
	assert.False(t, ok)
	_, ok = w.Identity.Get(id)
	assert.False(t, ok)
	_, ok = w.Position.Get(id)
	assert.False(t, ok)
	_, ok = w.NPC.Get(id)
	assert.False(t, ok)

	_, ok = w.Player()
	assert.False(t, ok)

	assert.NotPanics(t, func() { w.Destroy(id) })
	assert.NotPanics(t, func() { w.Destroy(12345) })
}
