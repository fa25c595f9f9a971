// Package encounter rolls random encounters against entity state and
// applies the outcome of the choice made in them.
package encounter

import (
	"go.uber.org/zap"

	"github.com/l1jgo/cultivation/internal/combat"
	"github.com/l1jgo/cultivation/internal/component"
	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/core/event"
	"github.com/l1jgo/cultivation/internal/data"
	"github.com/l1jgo/cultivation/internal/randx"
	"github.com/l1jgo/cultivation/internal/world"
)

// DefaultProbability applies to encounters whose content leaves it out.
const DefaultProbability = 0.1

// CombatStarter runs the nested fight of an outcome.
type CombatStarter interface {
	StartCombat(player, enemy ecs.EntityID, opts combat.StartOptions) (*combat.Session, error)
}

type Settings struct {
	DefaultProbability float64
	Triggers           []Trigger
}

func DefaultSettings() Settings {
	return Settings{DefaultProbability: DefaultProbability, Triggers: DefaultTriggers()}
}

// Resolver owns the active encounters, one per entity at most.
// Single-goroutine access only (game loop).
type Resolver struct {
	world  *world.World
	bus    *event.Bus
	data   *data.Provider
	combat CombatStarter
	rng    randx.Source
	log    *zap.Logger

	cfg    Settings
	active map[ecs.EntityID]*data.Encounter
}

func NewResolver(w *world.World, bus *event.Bus, p *data.Provider, cs CombatStarter, rng randx.Source, cfg Settings, log *zap.Logger) *Resolver {
	if cfg.DefaultProbability <= 0 {
		cfg.DefaultProbability = DefaultProbability
	}
	return &Resolver{
		world:  w,
		bus:    bus,
		data:   p,
		combat: cs,
		rng:    rng,
		log:    log,
		cfg:    cfg,
		active: make(map[ecs.EntityID]*data.Encounter),
	}
}

// Subscribe hooks the resolver into the bus.
func (r *Resolver) Subscribe() {
	event.On(r.bus, event.TopicDayChanged, func(ev event.DayChanged) error {
		return r.DailyCheck(ev.NewDay)
	})
	event.On(r.bus, event.TopicLocationChanged, func(ev event.LocationChanged) error {
		return r.LocationCheck(ev.Entity, ev.Location)
	})
	event.On(r.bus, event.TopicEncounterChoice, func(ev event.EncounterChoice) error {
		return r.Choose(ev.Entity, ev.Index)
	})
}

// Active returns the encounter id entity is in, if any.
func (r *Resolver) Active(entity ecs.EntityID) (string, bool) {
	enc, ok := r.active[entity]
	if !ok {
		return "", false
	}
	return enc.ID, true
}

// DailyCheck runs the triggers for every entity holding Attributes and State.
func (r *Resolver) DailyCheck(day int) error {
	ctx := Context{Day: day}
	for id := range r.world.Query(component.KindAttributes, component.KindState) {
		if err := r.check(id, ctx); err != nil {
			return err
		}
	}
	return nil
}

// LocationCheck runs the triggers for an entity that just moved.
func (r *Resolver) LocationCheck(entity ecs.EntityID, location string) error {
	if !r.world.Has(entity, component.KindAttributes, component.KindState) {
		return nil
	}
	return r.check(entity, Context{Location: location})
}

// check makes one selection attempt on the first satisfied trigger. Only
// the player and NPCs have encounters; synthesized enemies never do.
func (r *Resolver) check(id ecs.EntityID, ctx Context) error {
	if !r.world.IsPlayer(id) && !r.world.NPC.Has(id) {
		return nil
	}
	if _, busy := r.active[id]; busy {
		return nil
	}
	attr, ok := r.world.Attributes.Get(id)
	if !ok || attr.Dead {
		return nil
	}
	for _, t := range r.cfg.Triggers {
		if t.Satisfied(attr, ctx) {
			return r.attempt(id)
		}
	}
	return nil
}

// attempt draws once per encounter, in id order, keeps those under their
// probability whose requirements pass, and starts one of them uniformly.
func (r *Resolver) attempt(id ecs.EntityID) error {
	var eligible []*data.Encounter
	for _, enc := range r.data.Encounters() {
		p := r.cfg.DefaultProbability
		if tc := enc.TriggerConditions.Probability; tc != nil {
			p = *tc
		}
		if r.rng.Float64() < p && r.eligible(id, enc) {
			eligible = append(eligible, enc)
		}
	}
	if len(eligible) == 0 {
		return nil
	}
	return r.Start(id, eligible[r.rng.Intn(len(eligible))])
}

func (r *Resolver) eligible(id ecs.EntityID, enc *data.Encounter) bool {
	req := enc.TriggerConditions
	if req.Realm != "" {
		st, ok := r.world.State.Get(id)
		if !ok || st.Realm != req.Realm {
			return false
		}
	}
	if req.MinLevel > 0 {
		attr, ok := r.world.Attributes.Get(id)
		if !ok || attr.Level < req.MinLevel {
			return false
		}
	}
	return true
}

// Start puts entity into enc and presents its choices. Entities other than
// the player cannot answer, so they pick a choice at random on the spot.
func (r *Resolver) Start(entity ecs.EntityID, enc *data.Encounter) error {
	r.active[entity] = enc
	choices := make([]string, len(enc.Choices))
	for i, c := range enc.Choices {
		choices[i] = c.Text
	}
	r.log.Debug("encounter started",
		zap.Uint64("entity", uint64(entity)),
		zap.String("encounter", enc.ID))

	if err := r.bus.Emit(event.TopicEncounterStarted, event.EncounterStarted{
		Entity:      entity,
		EncounterID: enc.ID,
		Name:        enc.Name,
		Description: enc.Description,
		Choices:     choices,
	}); err != nil {
		return err
	}

	if !r.world.IsPlayer(entity) {
		if len(enc.Choices) == 0 {
			delete(r.active, entity)
			return nil
		}
		return r.Choose(entity, r.rng.Intn(len(enc.Choices)))
	}

	if err := r.bus.Message("奇遇：%s", enc.Name); err != nil {
		return err
	}
	if enc.Description != "" {
		if err := r.bus.Message("%s", enc.Description); err != nil {
			return err
		}
	}
	for i, text := range choices {
		if err := r.bus.Message("%d. %s", i+1, text); err != nil {
			return err
		}
	}
	return nil
}

// Choose resolves the entity's active encounter with the choice at index.
// The encounter ends either way; an index out of range applies nothing.
func (r *Resolver) Choose(entity ecs.EntityID, index int) error {
	enc, ok := r.active[entity]
	if !ok {
		return nil
	}
	delete(r.active, entity)
	if index < 0 || index >= len(enc.Choices) {
		return r.bus.Message("无效的选择")
	}
	out, ok := SelectOutcome(enc.Choices[index].Outcomes, r.rng.Float64())
	if !ok {
		return nil
	}
	r.log.Debug("encounter outcome",
		zap.Uint64("entity", uint64(entity)),
		zap.String("encounter", enc.ID),
		zap.String("result", out.Result))
	return r.apply(entity, out)
}

// SelectOutcome walks outcomes accumulating probability and returns the
// first whose running total reaches draw. Outcomes without a positive
// probability are never picked unless none has one. The last eligible
// outcome catches any remainder left by rounding.
func SelectOutcome(outcomes []data.Outcome, draw float64) (*data.Outcome, bool) {
	if len(outcomes) == 0 {
		return nil, false
	}
	cum, last := 0.0, len(outcomes)-1
	for i := range outcomes {
		if outcomes[i].Probability <= 0 {
			continue
		}
		cum += outcomes[i].Probability
		last = i
		if cum >= draw {
			return &outcomes[i], true
		}
	}
	return &outcomes[last], true
}
