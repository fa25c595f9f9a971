package system

import (
	"github.com/l1jgo/cultivation/internal/component"
	"github.com/l1jgo/cultivation/internal/core/event"
	"github.com/l1jgo/cultivation/internal/world"
)

const (
	// DaysPerYearOfAge is how many game days age an entity by one year.
	DaysPerYearOfAge = 30
	// LifespanWarningYears is how close to the lifespan a warning is raised.
	LifespanWarningYears = 10
)

// AgingSystem is a day hook: every DaysPerYearOfAge elapsed days each living
// entity ages a year. Reaching the lifespan kills it (once); getting within
// LifespanWarningYears raises lifespan-warning.
type AgingSystem struct {
	world   *world.World
	bus     *event.Bus
	elapsed int
}

func NewAgingSystem(w *world.World, bus *event.Bus) *AgingSystem {
	return &AgingSystem{world: w, bus: bus}
}

// OnDayChanged runs after day-changed; several days may pass in one call.
func (s *AgingSystem) OnDayChanged(oldDay, newDay int) error {
	if newDay <= oldDay {
		return nil
	}
	s.elapsed += newDay - oldDay
	years := s.elapsed / DaysPerYearOfAge
	s.elapsed %= DaysPerYearOfAge
	for ; years > 0; years-- {
		if err := s.ageOneYear(); err != nil {
			return err
		}
	}
	return nil
}

func (s *AgingSystem) ageOneYear() error {
	for id := range s.world.Query(component.KindAttributes) {
		attr, ok := s.world.Attributes.Get(id)
		if !ok || attr.Dead {
			continue
		}
		attr.Age++
		if attr.Age >= attr.Lifespan {
			if !s.world.MarkDead(id) {
				continue
			}
			if err := s.bus.Emit(event.TopicEntityDeath, event.EntityDeath{Entity: id, Cause: event.CauseOldAge}); err != nil {
				return err
			}
			continue
		}
		if left := attr.Lifespan - attr.Age; left <= LifespanWarningYears {
			if err := s.bus.Emit(event.TopicLifespanWarning, event.LifespanWarning{
				Entity:    id,
				Age:       attr.Age,
				Lifespan:  attr.Lifespan,
				Remaining: left,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
