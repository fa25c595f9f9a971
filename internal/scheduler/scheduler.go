// Package scheduler turns real elapsed time into game time and drives
// everything that happens on the clock: calendar transitions, day hooks,
// recurring world ticks, one-shot events and the passive system runner.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/l1jgo/cultivation/internal/core/event"
	coresys "github.com/l1jgo/cultivation/internal/core/system"
)

// Run states.
const (
	StateStopped = "stopped"
	StateRunning = "running"
	StatePaused  = "paused"
)

const (
	evStart  = "start"
	evPause  = "pause"
	evResume = "resume"
	evStop   = "stop"
)

const (
	DefaultDayLength = 60.0 // real seconds per game day at speed 1
	DaysPerMonth     = 30
	MonthsPerYear    = 12
	DaysPerWeek      = 7

	MinSpeed = 0.1
	MaxSpeed = 10.0
)

// DayHook runs once per day-changed, after the notification. Several days
// can pass in one pump.
type DayHook interface {
	OnDayChanged(oldDay, newDay int) error
}

// DayHookFunc adapts a function to DayHook.
type DayHookFunc func(oldDay, newDay int) error

func (f DayHookFunc) OnDayChanged(oldDay, newDay int) error { return f(oldDay, newDay) }

type recurring struct {
	topic    event.Topic
	interval float64
	last     float64
	payload  func() any
}

type oneShot struct {
	at      float64
	topic   event.Topic
	payload any
}

// Settings configure a Scheduler; see config [sim].
type Settings struct {
	DayLength float64
	Speed     float64
}

// Scheduler owns game time. Single-goroutine access only (game loop).
type Scheduler struct {
	bus    *event.Bus
	runner *coresys.Runner
	clock  Clock
	log    *zap.Logger
	state  *fsm.FSM

	dayLength   float64
	speed       float64
	gameTime    float64
	realElapsed float64
	lastUpdate  time.Time

	day   int
	month int
	year  int

	hooks     []DayHook
	recurring []*recurring
	pending   []oneShot
}

func New(bus *event.Bus, runner *coresys.Runner, clock Clock, cfg Settings, log *zap.Logger) *Scheduler {
	if cfg.DayLength <= 0 {
		cfg.DayLength = DefaultDayLength
	}
	if cfg.Speed == 0 {
		cfg.Speed = 1
	}
	if clock == nil {
		clock = WallClock()
	}
	s := &Scheduler{
		bus:       bus,
		runner:    runner,
		clock:     clock,
		log:       log,
		dayLength: cfg.DayLength,
		speed:     clampSpeed(cfg.Speed),
		day:       1,
		month:     1,
		year:      1,
	}
	s.state = fsm.NewFSM(StateStopped,
		fsm.Events{
			{Name: evStart, Src: []string{StateStopped}, Dst: StateRunning},
			{Name: evPause, Src: []string{StateRunning}, Dst: StatePaused},
			{Name: evResume, Src: []string{StatePaused}, Dst: StateRunning},
			{Name: evStop, Src: []string{StateRunning, StatePaused}, Dst: StateStopped},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.log.Debug("scheduler state", zap.String("from", e.Src), zap.String("to", e.Dst))
			},
			"enter_" + StateRunning: func(_ context.Context, _ *fsm.Event) {
				// Time spent stopped or paused is not game time.
				s.lastUpdate = s.clock.Now()
			},
		},
	)
	s.addRecurring(event.TopicDailyCycle, 1, func() any { return event.DailyCycle{Day: s.day} })
	s.addRecurring(event.TopicMonthlyCycle, DaysPerMonth, func() any {
		return event.MonthlyCycle{Month: s.monthOfYear(), Year: s.year}
	})
	s.addRecurring(event.TopicWorldStateUpdate, DaysPerWeek, func() any {
		return event.WorldStateUpdate{Week: int(s.gameTime / (DaysPerWeek * s.dayLength))}
	})
	s.addRecurring(event.TopicNpcDailyActions, 1, func() any { return event.NpcDailyActions{Day: s.day} })
	return s
}

func (s *Scheduler) addRecurring(topic event.Topic, days float64, payload func() any) {
	s.recurring = append(s.recurring, &recurring{topic: topic, interval: days * s.dayLength, payload: payload})
}

// AddDayHook appends h to the hooks run on every day change.
func (s *Scheduler) AddDayHook(h DayHook) {
	s.hooks = append(s.hooks, h)
}

// Subscribe hooks the scheduler's input topics.
func (s *Scheduler) Subscribe() {
	event.On(s.bus, event.TopicSpeedChange, func(ev event.SpeedChange) error {
		return s.SetSpeed(ev.Speed)
	})
	event.On(s.bus, event.TopicPauseToggle, func(ev event.PauseToggle) error {
		paused := !s.state.Is(StatePaused)
		if ev.Paused != nil {
			paused = *ev.Paused
		}
		return s.SetPaused(paused)
	})
	event.On(s.bus, event.TopicScheduleEvent, func(ev event.ScheduleEvent) error {
		s.Schedule(ev.Topic, ev.Delay, ev.Payload)
		return nil
	})
}

// Start moves stopped → running and emits engine-started.
func (s *Scheduler) Start() error {
	if err := s.transition(evStart); err != nil {
		return err
	}
	s.log.Info("scheduler started", zap.Float64("day_length", s.dayLength), zap.Float64("speed", s.speed))
	return s.bus.Emit(event.TopicEngineStarted, event.EngineStarted{Day: s.day})
}

// Stop moves to stopped and emits engine-stopped.
func (s *Scheduler) Stop() error {
	if err := s.transition(evStop); err != nil {
		return err
	}
	s.log.Info("scheduler stopped", zap.Float64("game_time", s.gameTime), zap.Int("day", s.day))
	return s.bus.Emit(event.TopicEngineStopped, event.EngineStopped{Day: s.day, GameTime: s.gameTime})
}

// SetPaused pauses or resumes a started scheduler. Game time is kept.
func (s *Scheduler) SetPaused(paused bool) error {
	switch {
	case paused && s.state.Is(StateRunning):
		if err := s.transition(evPause); err != nil {
			return err
		}
		return s.bus.Message("游戏已暂停")
	case !paused && s.state.Is(StatePaused):
		if err := s.transition(evResume); err != nil {
			return err
		}
		return s.bus.Message("游戏继续")
	}
	return nil
}

// SetSpeed changes the game-time multiplier, clamped to [MinSpeed, MaxSpeed].
func (s *Scheduler) SetSpeed(v float64) error {
	if math.IsNaN(v) {
		return nil
	}
	s.speed = clampSpeed(v)
	return s.bus.Message("游戏速度设为 %.1fx", s.speed)
}

func clampSpeed(v float64) float64 {
	return min(max(v, MinSpeed), MaxSpeed)
}

// Schedule emits topic once, delay game seconds from now. Events due in the
// same pump go out in the order they were scheduled.
func (s *Scheduler) Schedule(topic event.Topic, delay float64, payload any) {
	s.pending = append(s.pending, oneShot{at: s.gameTime + max(delay, 0), topic: topic, payload: payload})
}

func (s *Scheduler) transition(name string) error {
	err := s.state.Event(context.Background(), name)
	var noop fsm.NoTransitionError
	if err != nil && !errors.As(err, &noop) {
		return fmt.Errorf("scheduler %s: %w", name, err)
	}
	return nil
}

// State returns the run state.
func (s *Scheduler) State() string { return s.state.Current() }

// Pump advances the simulation by the real time since the previous pump.
// An error is a failed bus handler; the scheduler stays usable.
func (s *Scheduler) Pump() error {
	now := s.clock.Now()
	delta := max(now.Sub(s.lastUpdate).Seconds(), 0)
	s.lastUpdate = now
	if !s.state.Is(StateRunning) {
		return nil
	}

	s.realElapsed += delta
	s.gameTime += delta * s.speed

	if err := s.advanceCalendar(); err != nil {
		return err
	}
	if err := s.fireRecurring(); err != nil {
		return err
	}
	if err := s.fireDue(); err != nil {
		return err
	}
	return s.runner.Tick(time.Duration(delta * float64(time.Second)))
}

func (s *Scheduler) advanceCalendar() error {
	day := int(math.Floor(s.gameTime/s.dayLength)) + 1
	if day <= s.day {
		return nil
	}
	oldDay, oldMonth, oldYear := s.day, s.month, s.year
	oldMonthOfYear := s.monthOfYear()
	s.day = day
	s.month = (day-1)/DaysPerMonth + 1
	s.year = (s.month-1)/MonthsPerYear + 1

	if err := s.bus.Emit(event.TopicDayChanged, event.DayChanged{OldDay: oldDay, NewDay: day}); err != nil {
		return err
	}
	for _, h := range s.hooks {
		if err := h.OnDayChanged(oldDay, day); err != nil {
			return fmt.Errorf("day hook %T: %w", h, err)
		}
	}
	if s.month > oldMonth {
		if err := s.bus.Emit(event.TopicMonthChanged, event.MonthChanged{
			OldMonth:    oldMonthOfYear,
			NewMonth:    s.monthOfYear(),
			Year:        s.year,
			TotalMonths: s.month,
		}); err != nil {
			return err
		}
	}
	if s.year > oldYear {
		if err := s.bus.Emit(event.TopicYearChanged, event.YearChanged{OldYear: oldYear, NewYear: s.year}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) fireRecurring() error {
	for _, r := range s.recurring {
		if s.gameTime-r.last < r.interval {
			continue
		}
		r.last = s.gameTime
		if err := s.bus.Emit(r.topic, r.payload()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) fireDue() error {
	if len(s.pending) == 0 {
		return nil
	}
	var due []oneShot
	var keep []oneShot
	for _, ev := range s.pending {
		if ev.at <= s.gameTime {
			due = append(due, ev)
		} else {
			keep = append(keep, ev)
		}
	}
	s.pending = keep
	for _, ev := range due {
		if err := s.bus.Emit(ev.topic, ev.payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) monthOfYear() int {
	return (s.month-1)%MonthsPerYear + 1
}

// TimeInfo is a snapshot of the clock.
type TimeInfo struct {
	Day         int
	Month       int // of the year, 1-12
	Year        int
	TotalMonths int
	GameTime    float64 // game seconds
	RealElapsed float64 // real seconds spent running
	Speed       float64
	Paused      bool
	Running     bool
}

func (s *Scheduler) TimeInfo() TimeInfo {
	return TimeInfo{
		Day:         s.day,
		Month:       s.monthOfYear(),
		Year:        s.year,
		TotalMonths: s.month,
		GameTime:    s.gameTime,
		RealElapsed: s.realElapsed,
		Speed:       s.speed,
		Paused:      s.state.Is(StatePaused),
		Running:     s.state.Is(StateRunning),
	}
}

// Pending returns how many one-shot events are waiting.
func (s *Scheduler) Pending() int { return len(s.pending) }
