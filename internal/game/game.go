// Package game assembles the simulation: world, bus, content, systems,
// resolvers and the scheduler, wired from one config.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/cultivation/internal/combat"
	"github.com/l1jgo/cultivation/internal/config"
	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/core/event"
	coresys "github.com/l1jgo/cultivation/internal/core/system"
	"github.com/l1jgo/cultivation/internal/data"
	"github.com/l1jgo/cultivation/internal/encounter"
	"github.com/l1jgo/cultivation/internal/persist"
	"github.com/l1jgo/cultivation/internal/randx"
	"github.com/l1jgo/cultivation/internal/scheduler"
	"github.com/l1jgo/cultivation/internal/scripting"
	"github.com/l1jgo/cultivation/internal/system"
	"github.com/l1jgo/cultivation/internal/world"
)

// Options carry the pieces a caller may substitute. Zero values pick the
// production ones.
type Options struct {
	Clock    scheduler.Clock // nil: wall clock
	Rand     randx.Source    // nil: seeded from config, or from the clock
	Sink     persist.Sink    // nil: no chronicle
	History  persist.Reader  // nil: the chronicle cannot be read back
	Creation world.CreationPayload
}

// Game owns every long-lived part of one simulation. All methods must be
// called from the game loop goroutine.
type Game struct {
	Bus        *event.Bus
	World      *world.World
	Data       *data.Provider
	Combat     *combat.Resolver
	Encounters *encounter.Resolver
	Scheduler  *scheduler.Scheduler
	NPCs       *system.NPCSystem

	player   ecs.EntityID
	recorder *persist.Recorder
	history  persist.Reader
	log      *zap.Logger
}

func New(cfg *config.Config, p *data.Provider, lua *scripting.Engine, log *zap.Logger, opts Options) (*Game, error) {
	triggers, err := Triggers(cfg.Encounter.Triggers)
	if err != nil {
		return nil, err
	}

	rng := opts.Rand
	if rng == nil {
		seed := cfg.Sim.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = randx.New(seed)
		log.Debug("random source seeded", zap.Int64("seed", seed))
	}

	bus := event.NewBus()
	w := world.New()
	g := &Game{Bus: bus, World: w, Data: p, history: opts.History, log: log}

	// Passive systems run on every pump, in phase order.
	runner := coresys.NewRunner()
	runner.Register(system.NewBuffTickSystem(w, bus))
	runner.Register(system.NewRegenSystem(w))
	runner.Register(system.NewCleanupSystem(w, log))

	if opts.Sink != nil {
		// Subscribed first so death entries still see the entity's name.
		g.recorder = persist.NewRecorder(bus, opts.Sink, w, log)
		g.recorder.Subscribe()
	}

	system.NewDeathSystem(w, bus, log).Subscribe()
	system.NewProgressionSystem(w, bus, p, lua, log).Subscribe()
	system.NewItemSystem(w, bus, p).Subscribe()
	system.NewSectSystem(w, bus, p).Subscribe()

	g.Combat = combat.NewResolver(w, bus, p, rng, combat.Settings{
		MaxTurns:     cfg.Combat.MaxTurns,
		SpecialCost:  cfg.Combat.SpecialCost,
		HealCap:      cfg.Combat.HealCap,
		Auto:         cfg.Combat.Auto,
		Intervention: cfg.Combat.Intervention,
		Strategy:     combat.Strategy(cfg.Combat.Strategy),
	}, log)
	g.Combat.Subscribe()

	g.Encounters = encounter.NewResolver(w, bus, p, g.Combat, rng, encounter.Settings{
		DefaultProbability: cfg.Encounter.DefaultProbability,
		Triggers:           triggers,
	}, log)
	g.Encounters.Subscribe()

	g.NPCs = system.NewNPCSystem(w, bus, p, rng, log)
	g.NPCs.Subscribe()

	g.Scheduler = scheduler.New(bus, runner, opts.Clock, scheduler.Settings{
		DayLength: cfg.Sim.DayLength,
		Speed:     cfg.Sim.Speed,
	}, log)
	g.Scheduler.AddDayHook(system.NewAgingSystem(w, bus))
	g.Scheduler.AddDayHook(system.NewRecoverySystem(w, bus, lua))
	g.Scheduler.Subscribe()

	creation := opts.Creation
	if creation.Name == "" {
		creation.Name = cfg.World.PlayerName
	}
	g.player, err = w.NewPlayer(p, cfg.World.PlayerTemplate, creation)
	if err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}
	npcs, err := g.NPCs.Spawn(cfg.World.NPCMin, cfg.World.NPCMax)
	if err != nil {
		return nil, fmt.Errorf("spawn npcs: %w", err)
	}

	log.Info("world ready",
		zap.Uint64("player", uint64(g.player)),
		zap.String("name", w.Name(g.player)),
		zap.Int("npcs", len(npcs)))
	return g, nil
}

// Triggers converts [[encounter.triggers]] entries. An empty list keeps the
// stock triggers.
func Triggers(entries []config.TriggerConfig) ([]encounter.Trigger, error) {
	if len(entries) == 0 {
		return encounter.DefaultTriggers(), nil
	}
	out := make([]encounter.Trigger, 0, len(entries))
	for i, e := range entries {
		var t encounter.Trigger
		switch e.Kind {
		case "location":
			t = encounter.LocationTrigger(e.Location)
		case "attribute":
			cmp := encounter.Comparator(e.Comparator)
			if cmp == "" {
				cmp = encounter.AtMost
			}
			t = encounter.AttributeTrigger(e.Attribute, e.Threshold, cmp)
		case "time":
			t = encounter.TimeTrigger(e.Period)
		default:
			return nil, fmt.Errorf("encounter trigger %d: unknown kind %q", i, e.Kind)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("encounter trigger %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Player returns the player entity. It stays valid after death.
func (g *Game) Player() ecs.EntityID { return g.player }

// Start runs the clock.
func (g *Game) Start() error { return g.Scheduler.Start() }

// Pump advances the simulation; see scheduler.Scheduler.Pump.
func (g *Game) Pump() error { return g.Scheduler.Pump() }

// Stop halts the clock and flushes the chronicle.
func (g *Game) Stop() error {
	err := g.Scheduler.Stop()
	if g.recorder != nil {
		g.recorder.Close()
	}
	return err
}

// ErrNoChronicle is returned by Chronicle when no reader was configured.
var ErrNoChronicle = errors.New("chronicle not available")

// Chronicle flushes pending entries and returns the newest limit stored ones.
func (g *Game) Chronicle(ctx context.Context, limit int) ([]persist.ChronicleEntry, error) {
	if g.history == nil {
		return nil, ErrNoChronicle
	}
	if g.recorder != nil {
		g.recorder.Flush(ctx)
	}
	return g.history.Recent(ctx, limit)
}

// Travel moves the player to scene and announces it, which may trigger a
// location encounter.
func (g *Game) Travel(scene string) error {
	pos, ok := g.World.Position.Get(g.player)
	if !ok || g.dead() {
		return g.Bus.Message("无法移动")
	}
	if pos.Scene == scene {
		return nil
	}
	pos.Scene = scene
	if err := g.Bus.Message("%s 来到了 %s", g.World.Name(g.player), scene); err != nil {
		return err
	}
	return g.Bus.Emit(event.TopicLocationChanged, event.LocationChanged{Entity: g.player, Location: scene})
}

func (g *Game) dead() bool {
	attr, ok := g.World.Attributes.Get(g.player)
	return !ok || attr.Dead
}

// Status is a snapshot of the player and the clock.
type Status struct {
	Time       scheduler.TimeInfo
	Name       string
	Realm      string
	Sect       string // empty: none
	Scene      string
	Level      int
	Experience int
	Health     int
	MaxHealth  int
	Mana       int
	MaxMana    int
	Age        int
	Lifespan   int
	Dead       bool
	Combat     combat.Stats
	Encounter  string   // active encounter id
	Awaiting   []string // combat sessions waiting for input
}

func (g *Game) Status() Status {
	st := Status{
		Time:     g.Scheduler.TimeInfo(),
		Name:     g.World.Name(g.player),
		Combat:   g.Combat.Stats(),
		Awaiting: g.Combat.Awaiting(),
	}
	if attr, ok := g.World.Attributes.Get(g.player); ok {
		st.Level, st.Experience = attr.Level, attr.Experience
		st.Health, st.MaxHealth = attr.Health, attr.MaxHealth
		st.Mana, st.MaxMana = attr.Mana, attr.MaxMana
		st.Age, st.Lifespan = attr.Age, attr.Lifespan
		st.Dead = attr.Dead
	}
	if state, ok := g.World.State.Get(g.player); ok {
		st.Realm, st.Sect = state.Realm, state.Sect
	}
	if pos, ok := g.World.Position.Get(g.player); ok {
		st.Scene = pos.Scene
	}
	st.Encounter, _ = g.Encounters.Active(g.player)
	return st
}
