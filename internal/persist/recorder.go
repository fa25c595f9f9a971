package persist

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/core/event"
)

// Chronicle entry kinds.
const (
	KindDeath        = "death"
	KindLevelUp      = "level_up"
	KindBreakthrough = "breakthrough"
	KindEncounter    = "encounter"
	KindCombat       = "combat"
	KindSkill        = "skill"
	KindSect         = "sect"
)

// DefaultBufferLimit caps how many unflushed entries the recorder holds
// when the sink keeps failing. The oldest are dropped first.
const DefaultBufferLimit = 1024

// Sink stores chronicle batches. ChronicleRepo is the production sink.
type Sink interface {
	Append(ctx context.Context, entries []ChronicleEntry) error
}

// Reader reads the stored chronicle back, newest first.
type Reader interface {
	Recent(ctx context.Context, limit int) ([]ChronicleEntry, error)
}

// Namer resolves entity display names; *world.World satisfies it.
type Namer interface {
	Name(id ecs.EntityID) string
}

// Recorder turns bus notifications into chronicle entries and writes them
// to a Sink in batches: on every world-state-update, on engine-stopped and
// on Close. Write failures are logged and the batch is retried on the next
// flush; the game never sees them.
type Recorder struct {
	bus   *event.Bus
	sink  Sink
	names Namer
	log   *zap.Logger
	now   func() time.Time

	day     int
	limit   int
	buf     []ChronicleEntry
	dropped int
}

func NewRecorder(bus *event.Bus, sink Sink, names Namer, log *zap.Logger) *Recorder {
	return &Recorder{
		bus:   bus,
		sink:  sink,
		names: names,
		log:   log,
		now:   time.Now,
		day:   1,
		limit: DefaultBufferLimit,
	}
}

// SetBufferLimit changes the unflushed entry cap. Values below 1 are ignored.
func (r *Recorder) SetBufferLimit(n int) {
	if n >= 1 {
		r.limit = n
	}
}

func (r *Recorder) Subscribe() {
	event.On(r.bus, event.TopicDayChanged, func(ev event.DayChanged) error {
		r.day = ev.NewDay
		return nil
	})
	event.On(r.bus, event.TopicEntityDeath, func(ev event.EntityDeath) error {
		r.add(KindDeath, ev.Entity, string(ev.Cause))
		return nil
	})
	event.On(r.bus, event.TopicLevelUp, func(ev event.LevelUp) error {
		r.add(KindLevelUp, ev.Entity, fmt.Sprintf("level %d", ev.Level))
		return nil
	})
	event.On(r.bus, event.TopicRealmBreakthrough, func(ev event.RealmBreakthrough) error {
		r.add(KindBreakthrough, ev.Entity, ev.From+" -> "+ev.To)
		return nil
	})
	event.On(r.bus, event.TopicEncounterStarted, func(ev event.EncounterStarted) error {
		r.add(KindEncounter, ev.Entity, ev.EncounterID)
		return nil
	})
	event.On(r.bus, event.TopicCombatEnd, func(ev event.CombatEnd) error {
		r.add(KindCombat, ev.Player, fmt.Sprintf("%s vs %s in %d turns", ev.Result, r.names.Name(ev.Enemy), ev.Turns))
		return nil
	})
	event.On(r.bus, event.TopicSkillLearned, func(ev event.SkillLearned) error {
		r.add(KindSkill, ev.Entity, ev.SkillID)
		return nil
	})
	event.On(r.bus, event.TopicSectJoined, func(ev event.SectJoined) error {
		r.add(KindSect, ev.Entity, ev.SectID)
		return nil
	})
	event.On(r.bus, event.TopicWorldStateUpdate, func(event.WorldStateUpdate) error {
		r.Flush(context.Background())
		return nil
	})
	event.On(r.bus, event.TopicEngineStopped, func(event.EngineStopped) error {
		r.Flush(context.Background())
		return nil
	})
}

func (r *Recorder) add(kind string, id ecs.EntityID, detail string) {
	r.buf = append(r.buf, ChronicleEntry{
		Day:    r.day,
		Kind:   kind,
		Entity: uint64(id),
		Name:   r.names.Name(id),
		Detail: detail,
		At:     r.now(),
	})
	if over := len(r.buf) - r.limit; over > 0 {
		r.buf = append(r.buf[:0], r.buf[over:]...)
		r.dropped += over
	}
}

// Pending returns the number of buffered entries.
func (r *Recorder) Pending() int { return len(r.buf) }

// Dropped returns how many entries were discarded because the buffer was full.
func (r *Recorder) Dropped() int { return r.dropped }

// Flush writes the buffer. On failure the entries stay buffered.
func (r *Recorder) Flush(ctx context.Context) {
	if len(r.buf) == 0 {
		return
	}
	if err := r.sink.Append(ctx, r.buf); err != nil {
		r.log.Warn("chronicle flush failed", zap.Int("pending", len(r.buf)), zap.Error(err))
		return
	}
	r.log.Debug("chronicle flushed", zap.Int("entries", len(r.buf)), zap.Int("day", r.day))
	r.buf = nil
}

// Close flushes what is left with a bounded wait.
func (r *Recorder) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.Flush(ctx)
	if n := len(r.buf); n > 0 {
		r.log.Error("chronicle entries lost on shutdown", zap.Int("entries", n))
	}
}
