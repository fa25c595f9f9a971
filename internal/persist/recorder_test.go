package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/cultivation/internal/core/ecs"
	"github.com/l1jgo/cultivation/internal/core/event"
)

type fakeSink struct {
	batches [][]ChronicleEntry
	err     error
}

func (s *fakeSink) Append(_ context.Context, entries []ChronicleEntry) error {
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, append([]ChronicleEntry(nil), entries...))
	return nil
}

type names map[ecs.EntityID]string

func (n names) Name(id ecs.EntityID) string { return n[id] }

func newRecorder(t *testing.T) (*event.Bus, *fakeSink, *Recorder) {
	t.Helper()
	bus := event.NewBus()
	sink := &fakeSink{}
	r := NewRecorder(bus, sink, names{1: "林动", 2: "山贼"}, zap.NewNop())
	r.Subscribe()
	return bus, sink, r
}

func TestRecorderBuffersUntilWeeklyUpdate(t *testing.T) {
	bus, sink, r := newRecorder(t)

	require.NoError(t, bus.Emit(event.TopicDayChanged, event.DayChanged{OldDay: 1, NewDay: 3}))
	require.NoError(t, bus.Emit(event.TopicLevelUp, event.LevelUp{Entity: 1, Level: 4}))
	require.NoError(t, bus.Emit(event.TopicCombatEnd, event.CombatEnd{Player: 1, Enemy: 2, Result: event.ResultVictory, Turns: 3}))
	require.NoError(t, bus.Emit(event.TopicEntityDeath, event.EntityDeath{Entity: 2, Cause: event.CauseCombat}))
	assert.Equal(t, 3, r.Pending())
	assert.Empty(t, sink.batches)

	require.NoError(t, bus.Emit(event.TopicWorldStateUpdate, event.WorldStateUpdate{Week: 1}))
	require.Len(t, sink.batches, 1)
	batch := sink.batches[0]
	require.Len(t, batch, 3)

	assert.Equal(t, KindLevelUp, batch[0].Kind)
	assert.Equal(t, "level 4", batch[0].Detail)
	assert.Equal(t, "林动", batch[0].Name)
	assert.Equal(t, 3, batch[0].Day)

	assert.Equal(t, KindCombat, batch[1].Kind)
	assert.Equal(t, "victory vs 山贼 in 3 turns", batch[1].Detail)

	assert.Equal(t, KindDeath, batch[2].Kind)
	assert.Equal(t, uint64(2), batch[2].Entity)
	assert.Equal(t, "combat", batch[2].Detail)
	assert.Zero(t, r.Pending())
}

func TestRecorderKeepsBatchOnSinkFailure(t *testing.T) {
	bus, sink, r := newRecorder(t)
	sink.err = errors.New("connection refused")

	require.NoError(t, bus.Emit(event.TopicRealmBreakthrough, event.RealmBreakthrough{Entity: 1, From: "mortal", To: "qi"}))
	require.NoError(t, bus.Emit(event.TopicWorldStateUpdate, event.WorldStateUpdate{Week: 1}))
	assert.Equal(t, 1, r.Pending(), "a failed flush is retried later")

	sink.err = nil
	require.NoError(t, bus.Emit(event.TopicEngineStopped, event.EngineStopped{Day: 8}))
	require.Len(t, sink.batches, 1)
	assert.Equal(t, "mortal -> qi", sink.batches[0][0].Detail)
}

func TestRecorderDropsOldestPastLimit(t *testing.T) {
	bus, sink, r := newRecorder(t)
	r.SetBufferLimit(2)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, bus.Emit(event.TopicSkillLearned, event.SkillLearned{Entity: 1, SkillID: id}))
	}
	assert.Equal(t, 2, r.Pending())
	assert.Equal(t, 1, r.Dropped())

	r.Close()
	require.Len(t, sink.batches, 1)
	assert.Equal(t, "b", sink.batches[0][0].Detail)
	assert.Equal(t, "c", sink.batches[0][1].Detail)
}

func TestRecorderSkipsEmptyFlush(t *testing.T) {
	bus, sink, _ := newRecorder(t)
	require.NoError(t, bus.Emit(event.TopicWorldStateUpdate, event.WorldStateUpdate{Week: 1}))
	assert.Empty(t, sink.batches)
}

func TestRecorderEncounterEntry(t *testing.T) {
	bus, sink, r := newRecorder(t)
	require.NoError(t, bus.Emit(event.TopicEncounterStarted, event.EncounterStarted{Entity: 1, EncounterID: "cave"}))
	r.Flush(context.Background())
	require.Len(t, sink.batches, 1)
	assert.Equal(t, KindEncounter, sink.batches[0][0].Kind)
	assert.Equal(t, "cave", sink.batches[0][0].Detail)
}

func TestRecorderSectEntry(t *testing.T) {
	bus, sink, r := newRecorder(t)
	require.NoError(t, bus.Emit(event.TopicSectJoined, event.SectJoined{Entity: 1, SectID: "azure_cloud"}))
	r.Flush(context.Background())
	require.Len(t, sink.batches, 1)
	assert.Equal(t, KindSect, sink.batches[0][0].Kind)
	assert.Equal(t, "azure_cloud", sink.batches[0][0].Detail)
}
