package encounter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/cultivation/internal/combat"
	"github.com/l1jgo/cultivation/internal/component"
	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/core/event"
	"github.com/l1jgo/cultivation/internal/data"
	"github.com/l1jgo/cultivation/internal/randx"
	"github.com/l1jgo/cultivation/internal/world"
)

const testContent = `
templates:
  - id: hero
    name: Hero
    realm: mortal
    scene: village
    initial_stats:
      health: 100
      mana: 100
`

const testEncounters = `
encounters:
  - id: cave
    name: Cave
    description: A dark cave.
    trigger_conditions:
      probability: 0.5
    choices:
      - text: Enter
        outcomes:
          - result: loot
            probability: 1.0
            message: Treasure!
            rewards:
              items:
                - id: herb
                  count: 2
              experience: 40
              technique: breath
              ability: spark
      - text: Rest
        outcomes:
          - result: rest
            probability: 1.0
            rewards:
              heal: 20
      - text: Soak
        outcomes:
          - result: soak
            probability: 1.0
            rewards:
              heal: 60
              mana: 500
      - text: Fight
        outcomes:
          - result: ambush
            probability: 1.0
            combat:
              enemy: Bandit
              level: 2
  - id: spring
    name: Spring
    trigger_conditions:
      probability: 0.5
      realm: qi
    choices:
      - text: Drink
        outcomes:
          - result: refreshed
            probability: 1.0
`

const testSkills = `
abilities:
  - id: spark
    name: Spark
techniques:
  - id: breath
    name: Breath
items:
  - id: herb
    name: Herb
    type: material
`

type combatStarterMock struct {
	mock.Mock
}

func (m *combatStarterMock) StartCombat(player, enemy ecs.EntityID, opts combat.StartOptions) (*combat.Session, error) {
	args := m.Called(player, enemy, opts)
	return nil, args.Error(0)
}

type fixture struct {
	world  *world.World
	bus    *event.Bus
	data   *data.Provider
	combat *combatStarterMock
	r      *Resolver
	player ecs.EntityID
	msgs   []string
}

func newFixture(t *testing.T, rng randx.Source, triggers ...Trigger) *fixture {
	t.Helper()
	p := data.NewProvider()
	require.NoError(t, p.LoadYAML(data.CategoryCharacterTemplate, []byte(testContent)))
	require.NoError(t, p.LoadYAML(data.CategoryEncounter, []byte(testEncounters)))
	require.NoError(t, p.LoadYAML(data.CategoryAbility, []byte(testSkills)))
	require.NoError(t, p.LoadYAML(data.CategoryTechnique, []byte(testSkills)))
	require.NoError(t, p.LoadYAML(data.CategoryItem, []byte(testSkills)))

	f := &fixture{world: world.New(), bus: event.NewBus(), data: p, combat: &combatStarterMock{}}
	var err error
	f.player, err = f.world.NewPlayer(p, "hero", world.CreationPayload{Name: "Lin"})
	require.NoError(t, err)

	cfg := DefaultSettings()
	if len(triggers) > 0 {
		cfg.Triggers = triggers
	}
	f.r = NewResolver(f.world, f.bus, p, f.combat, rng, cfg, zap.NewNop())
	f.r.Subscribe()
	event.On(f.bus, event.TopicMessage, func(m event.Message) error {
		f.msgs = append(f.msgs, m.Text)
		return nil
	})
	return f
}

func (f *fixture) attr(id ecs.EntityID) *component.Attributes {
	a, _ := f.world.Attributes.Get(id)
	return a
}

func record[T any](bus *event.Bus, topic event.Topic) *[]T {
	var got []T
	event.On(bus, topic, func(v T) error {
		got = append(got, v)
		return nil
	})
	return &got
}

func TestSelectOutcomeWalksCumulativeProbability(t *testing.T) {
	outcomes := []data.Outcome{
		{Result: "A", Probability: 0.3},
		{Result: "B", Probability: 0.3},
		{Result: "C", Probability: 0.4},
	}
	for draw, want := range map[float64]string{0.1: "A", 0.3: "A", 0.4: "B", 0.9: "C", 1.5: "C"} {
		got, ok := SelectOutcome(outcomes, draw)
		require.True(t, ok)
		assert.Equal(t, want, got.Result, "draw %v", draw)
	}

	_, ok := SelectOutcome(nil, 0.5)
	assert.False(t, ok)
}

func TestSelectOutcomeSkipsZeroProbability(t *testing.T) {
	outcomes := []data.Outcome{
		{Result: "never", Probability: 0},
		{Result: "A", Probability: 0.5},
		{Result: "B", Probability: 0.5},
		{Result: "also never", Probability: 0},
	}
	for draw, want := range map[float64]string{0: "A", 0.5: "A", 0.7: "B", 1.2: "B"} {
		got, ok := SelectOutcome(outcomes, draw)
		require.True(t, ok)
		assert.Equal(t, want, got.Result, "draw %v", draw)
	}

	got, ok := SelectOutcome([]data.Outcome{{Result: "only"}}, 0)
	require.True(t, ok)
	assert.Equal(t, "only", got.Result)
}

func TestTriggerVariants(t *testing.T) {
	attr := &component.Attributes{Health: 30, Luck: 8}

	assert.True(t, LocationTrigger("mountain").Satisfied(attr, Context{Location: "mountain"}))
	assert.False(t, LocationTrigger("mountain").Satisfied(attr, Context{Location: "village"}))
	assert.False(t, LocationTrigger("mountain").Satisfied(attr, Context{Day: 7}))

	assert.True(t, AttributeTrigger("health", 30, AtMost).Satisfied(attr, Context{}))
	assert.False(t, AttributeTrigger("health", 29, AtMost).Satisfied(attr, Context{}))
	assert.True(t, AttributeTrigger("luck", 8, AtLeast).Satisfied(attr, Context{}))
	assert.True(t, AttributeTrigger("luck", 8, Equal).Satisfied(attr, Context{}))
	assert.False(t, AttributeTrigger("luck", 9, Equal).Satisfied(attr, Context{}))
	assert.False(t, AttributeTrigger("aura", 0, AtLeast).Satisfied(attr, Context{}))

	assert.True(t, TimeTrigger(7).Satisfied(attr, Context{Day: 14}))
	assert.False(t, TimeTrigger(7).Satisfied(attr, Context{Day: 13}))
	assert.False(t, TimeTrigger(0).Satisfied(attr, Context{Day: 14}))

	assert.False(t, Trigger{}.Satisfied(attr, Context{Day: 7, Location: "mountain"}))
}

func TestTriggerValidate(t *testing.T) {
	for _, tr := range DefaultTriggers() {
		assert.NoError(t, tr.Validate())
	}
	assert.Error(t, LocationTrigger("").Validate())
	assert.Error(t, AttributeTrigger("aura", 1, AtLeast).Validate())
	assert.Error(t, AttributeTrigger("luck", 1, "~").Validate())
	assert.Error(t, TimeTrigger(0).Validate())
	assert.Error(t, Trigger{}.Validate())
}

func TestDailyCheckStartsEligibleEncounter(t *testing.T) {
	f := newFixture(t, &randx.Fixed{Floats: []float64{0.2}}, TimeTrigger(7))
	started := record[event.EncounterStarted](f.bus, event.TopicEncounterStarted)

	require.NoError(t, f.bus.Emit(event.TopicDayChanged, event.DayChanged{OldDay: 5, NewDay: 6}))
	assert.Empty(t, *started)

	require.NoError(t, f.bus.Emit(event.TopicDayChanged, event.DayChanged{OldDay: 6, NewDay: 7}))
	require.Len(t, *started, 1, "spring needs the qi realm")
	ev := (*started)[0]
	assert.Equal(t, "cave", ev.EncounterID)
	assert.Equal(t, f.player, ev.Entity)
	assert.Equal(t, []string{"Enter", "Rest", "Soak", "Fight"}, ev.Choices)
	assert.Contains(t, f.msgs, "奇遇：Cave")
	assert.Contains(t, f.msgs, "1. Enter")

	id, ok := f.r.Active(f.player)
	assert.True(t, ok)
	assert.Equal(t, "cave", id)

	require.NoError(t, f.r.DailyCheck(14))
	assert.Len(t, *started, 1, "an entity in an encounter is not offered another")
}

func TestDrawAboveProbabilityStartsNothing(t *testing.T) {
	f := newFixture(t, &randx.Fixed{Floats: []float64{0.6}}, TimeTrigger(1))
	started := record[event.EncounterStarted](f.bus, event.TopicEncounterStarted)

	require.NoError(t, f.r.DailyCheck(3))
	assert.Empty(t, *started)
}

func TestRealmAndLevelRequirements(t *testing.T) {
	f := newFixture(t, &randx.Fixed{Floats: []float64{0.2}, Ints: []int{1}}, TimeTrigger(1))
	started := record[event.EncounterStarted](f.bus, event.TopicEncounterStarted)
	st, _ := f.world.State.Get(f.player)
	st.Realm = "qi"

	require.NoError(t, f.r.DailyCheck(1))
	require.Len(t, *started, 1)
	assert.Equal(t, "spring", (*started)[0].EncounterID, "both eligible, the second is picked")

	enc, _ := f.data.Encounter("cave")
	enc.TriggerConditions.MinLevel = 5
	defer func() { enc.TriggerConditions.MinLevel = 0 }()
	assert.False(t, f.r.eligible(f.player, enc))
	f.attr(f.player).Level = 5
	assert.True(t, f.r.eligible(f.player, enc))
}

func TestLocationCheck(t *testing.T) {
	f := newFixture(t, &randx.Fixed{Floats: []float64{0.2}})
	started := record[event.EncounterStarted](f.bus, event.TopicEncounterStarted)

	require.NoError(t, f.bus.Emit(event.TopicLocationChanged, event.LocationChanged{Entity: f.player, Location: "village"}))
	assert.Empty(t, *started)

	require.NoError(t, f.bus.Emit(event.TopicLocationChanged, event.LocationChanged{Entity: f.player, Location: "mountain"}))
	assert.Len(t, *started, 1)
}

func TestChooseAppliesRewards(t *testing.T) {
	f := newFixture(t, &randx.Fixed{Floats: []float64{0.5}})
	xp := record[event.ExperienceGained](f.bus, event.TopicExperienceGained)
	learned := record[event.SkillLearned](f.bus, event.TopicSkillLearned)
	enc, _ := f.data.Encounter("cave")
	require.NoError(t, f.r.Start(f.player, enc))

	require.NoError(t, f.bus.Emit(event.TopicEncounterChoice, event.EncounterChoice{Entity: f.player, Index: 0}))

	inv, _ := f.world.Inventory.Get(f.player)
	assert.Equal(t, 2, inv.Count("herb"))
	require.Len(t, *xp, 1)
	assert.Equal(t, 40, (*xp)[0].Amount)
	sk, _ := f.world.Skills.Get(f.player)
	assert.True(t, sk.KnowsTechnique("breath"))
	assert.True(t, sk.KnowsAbility("spark"))
	assert.Len(t, *learned, 2)
	assert.Contains(t, f.msgs, "Treasure!")
	assert.Contains(t, f.msgs, "获得 Herb x2")

	_, active := f.r.Active(f.player)
	assert.False(t, active)
}

func TestHealOutcomeClampsAtMaximum(t *testing.T) {
	f := newFixture(t, &randx.Fixed{Floats: []float64{0.5}})
	enc, _ := f.data.Encounter("cave")
	a := f.attr(f.player)
	a.Health, a.Mana = 50, 10

	require.NoError(t, f.r.Start(f.player, enc))
	require.NoError(t, f.r.Choose(f.player, 1))
	assert.Equal(t, 70, a.Health)

	require.NoError(t, f.r.Start(f.player, enc))
	require.NoError(t, f.r.Choose(f.player, 2))
	assert.Equal(t, 100, a.Health)
	assert.Equal(t, 100, a.Mana)
}

func TestCombatOutcomeSynthesizesTransientEnemy(t *testing.T) {
	f := newFixture(t, &randx.Fixed{Floats: []float64{0.5}})
	var enemy ecs.EntityID
	f.combat.On("StartCombat", f.player, mock.Anything, combat.StartOptions{Transient: true}).
		Run(func(args mock.Arguments) { enemy = args.Get(1).(ecs.EntityID) }).
		Return(nil).Once()

	enc, _ := f.data.Encounter("cave")
	require.NoError(t, f.r.Start(f.player, enc))
	require.NoError(t, f.r.Choose(f.player, 3))

	f.combat.AssertExpectations(t)
	a := f.attr(enemy)
	require.NotNil(t, a)
	assert.Equal(t, 60, a.MaxHealth)
	assert.Equal(t, 20, a.PhysicalAttack)
	assert.Equal(t, 6, a.Defense)
	assert.Equal(t, "Bandit", f.world.Name(enemy))
}

func TestChooseOutOfRangeEndsEncounter(t *testing.T) {
	f := newFixture(t, &randx.Fixed{Floats: []float64{0.5}})
	enc, _ := f.data.Encounter("cave")
	require.NoError(t, f.r.Start(f.player, enc))

	require.NoError(t, f.r.Choose(f.player, 9))
	assert.Contains(t, f.msgs, "无效的选择")
	_, active := f.r.Active(f.player)
	assert.False(t, active)

	require.NoError(t, f.r.Choose(f.player, 0), "no active encounter is a no-op")
}

// npc adds a bare NPC entity at the given health out of 30.
func (f *fixture) npc(name string, health int) ecs.EntityID {
	id := f.world.CreateEntity()
	f.world.Attributes.Set(id, &component.Attributes{Health: health, MaxHealth: 30, Level: 1})
	f.world.Skills.Set(id, component.NewSkills())
	f.world.State.Set(id, component.NewState(""))
	f.world.Identity.Set(id, &component.Identity{Name: name})
	f.world.NPC.Set(id, &component.NPC{TemplateID: "wanderer"})
	return id
}

func TestNonPlayerResolvesImmediately(t *testing.T) {
	f := newFixture(t, &randx.Fixed{Floats: []float64{0.2}, Ints: []int{0, 1}}, AttributeTrigger("health", 30, AtMost))
	started := record[event.EncounterStarted](f.bus, event.TopicEncounterStarted)
	wolf := f.npc("Wolf", 10)

	require.NoError(t, f.r.DailyCheck(2))
	require.Len(t, *started, 1)
	assert.Equal(t, wolf, (*started)[0].Entity)
	_, active := f.r.Active(wolf)
	assert.False(t, active)
	assert.Equal(t, 30, f.attr(wolf).Health, "the rest choice healed it")
	assert.NotContains(t, f.msgs, "奇遇：Cave")
}

func TestSynthesizedEnemyHasNoEncounters(t *testing.T) {
	f := newFixture(t, &randx.Fixed{Floats: []float64{0.2}}, AttributeTrigger("health", 30, AtMost))
	started := record[event.EncounterStarted](f.bus, event.TopicEncounterStarted)
	bandit := f.world.NewEnemy("Bandit", 1)

	require.NoError(t, f.r.DailyCheck(2))
	require.NoError(t, f.r.LocationCheck(bandit, "mountain"))
	assert.Empty(t, *started)
}

const ambushEncounter = `
encounters:
  - id: ambush
    name: Ambush
    trigger_conditions:
      probability: 1.0
    choices:
      - text: Fight
        outcomes:
          - result: fight
            probability: 1.0
            combat:
              level: 1
`

func TestNPCCombatOutcomeResolvesWithoutInput(t *testing.T) {
	p := data.NewProvider()
	require.NoError(t, p.LoadYAML(data.CategoryCharacterTemplate, []byte(testContent)))
	require.NoError(t, p.LoadYAML(data.CategoryEncounter, []byte(ambushEncounter)))
	w, bus := world.New(), event.NewBus()
	player, err := w.NewPlayer(p, "hero", world.CreationPayload{Name: "Lin"})
	require.NoError(t, err)

	rng := &randx.Fixed{Floats: []float64{0.5}}
	cr := combat.NewResolver(w, bus, p, rng, combat.DefaultSettings(), zap.NewNop())
	cr.Subscribe()
	er := NewResolver(w, bus, p, cr, rng, Settings{Triggers: []Trigger{TimeTrigger(1)}}, zap.NewNop())
	er.Subscribe()
	starts := record[event.CombatStart](bus, event.TopicCombatStart)
	ends := record[event.CombatEnd](bus, event.TopicCombatEnd)

	npc := w.CreateEntity()
	w.Attributes.Set(npc, &component.Attributes{Health: 100, MaxHealth: 100, PhysicalAttack: 5, Defense: 100, Level: 1})
	w.State.Set(npc, component.NewState(""))
	w.Identity.Set(npc, &component.Identity{Name: "Chen"})
	w.NPC.Set(npc, &component.NPC{TemplateID: "wanderer"})

	require.NoError(t, er.DailyCheck(1))

	require.Len(t, *starts, 1)
	assert.Equal(t, npc, (*starts)[0].Player)
	assert.True(t, (*starts)[0].Auto, "an NPC always fights on auto")
	require.Len(t, *ends, 1)
	assert.False(t, w.Alive((*starts)[0].Enemy), "the synthesized enemy is disposed of")
	assert.Empty(t, cr.Awaiting())

	id, ok := er.Active(player)
	assert.True(t, ok, "the player still gets to choose")
	assert.Equal(t, "ambush", id)
	_, waiting := cr.AwaitingFor(player)
	assert.False(t, waiting)
}
