package traversal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/lanepath/internal/core/events/bus"
	"github.com/zeusync/lanepath/internal/core/observability/log"
	"github.com/zeusync/lanepath/internal/core/planner"
	"github.com/zeusync/lanepath/internal/core/systems/physics"
)

func seederConfig() planner.Config {
	return planner.Config{
		Strategy: planner.StrategySweep,
		Field:    planner.FieldSpec{Length: 4, Width: 2, RowSpacing: 1},
		Motion:   planner.MotionSpec{Speed: 2, MarkerInterval: 1},
	}
}

func newSystem(t *testing.T) (*System, *MarkerLedger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	ledger := NewMarkerLedger()
	s := NewSystem(log.NewWithCore(core, log.LevelDebug), bus.New(), ledger)
	require.NoError(t, s.Initialize(context.Background()))
	return s, ledger, logs
}

type failingSink struct{}

func (failingSink) Spawn(string, physics.Vec3, physics.Quaternion) error {
	return errors.New("prefab missing")
}

func TestUpdateRequiresInitialize(t *testing.T) {
	s := NewSystem(nil, nil, nil)
	assert.ErrorIs(t, s.Update(0.1), ErrNotInitialized)
	assert.False(t, s.IsInitialized())
}

func TestAddAgentRejectsInvalidConfig(t *testing.T) {
	s, _, _ := newSystem(t)
	cfg := seederConfig()
	cfg.Field.RowSpacing = 0

	_, err := s.AddAgent("bad", cfg, physics.Pose{})
	require.ErrorIs(t, err, planner.ErrInvalidConfig)
	assert.Empty(t, s.Agents())
}

func TestSweepAgentRunsToCompletion(t *testing.T) {
	s, ledger, logs := newSystem(t)

	var rows, completed []any
	_, _ = s.Bus().Subscribe(EventRowChanged, func(e bus.Event) error { rows = append(rows, e.Data()); return nil })
	_, _ = s.Bus().Subscribe(EventTraversalCompleted, func(e bus.Event) error { completed = append(completed, e.Data()); return nil })

	id, err := s.AddAgent("seeder", seederConfig(), physics.Pose{})
	require.NoError(t, err)
	assert.False(t, s.Done())

	// 1 unit per tick, two lanes of 4 units each
	for i := 0; i < 8; i++ {
		require.NoError(t, s.Update(0.5))
	}
	require.True(t, s.Done())

	a, err := s.Agent(id)
	require.NoError(t, err)
	assert.Equal(t, 8, a.Markers)
	assert.Equal(t, 1, a.State.Row)
	assert.Len(t, rows, 1)
	require.Len(t, completed, 1)
	assert.Equal(t, "seeder", completed[0].(TraversalCompleted).Name)

	require.Equal(t, 8, ledger.Len())
	for _, m := range ledger.Markers() {
		assert.Equal(t, physics.Identity, m.Rotation)
		assert.Equal(t, id, m.AgentID)
	}

	assert.Equal(t, 1, logs.FilterMessage("agent has covered the entire area").Len())
	assert.EqualValues(t, 8, s.GetMetrics().ExecutionCount)
	assert.EqualValues(t, 8, s.MarkersSpawned())

	// further updates leave the finished agent untouched
	require.NoError(t, s.Update(0.5))
	b, _ := s.Agent(id)
	assert.Equal(t, a.Pose, b.Pose)
}

func TestGridAgentEmitsNoMarkers(t *testing.T) {
	s, ledger, _ := newSystem(t)
	_, err := s.AddAgent("walker", planner.Config{
		Strategy: planner.StrategyGrid,
		Field:    planner.FieldSpec{Rows: 2, Columns: 2, CellSize: 1},
		Motion:   planner.MotionSpec{Speed: 1, RotationSpeed: 180, MarkerInterval: 1},
	}, physics.Pose{Heading: 90})
	require.NoError(t, err)

	for i := 0; i < 100 && !s.Done(); i++ {
		require.NoError(t, s.Update(0.25))
	}
	assert.True(t, s.Done())
	assert.Zero(t, ledger.Len())

	frames := s.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, "done", frames[0].Phase)
	assert.Equal(t, 1, frames[0].Row)
	assert.Equal(t, 0, frames[0].Column)
}

func TestSinkErrorsAreReturnedAfterTick(t *testing.T) {
	s := NewSystem(log.NewNop(), nil, failingSink{})
	require.NoError(t, s.Initialize(context.Background()))
	_, err := s.AddAgent("a", seederConfig(), physics.Pose{})
	require.NoError(t, err)
	_, err = s.AddAgent("b", seederConfig(), physics.Pose{})
	require.NoError(t, err)

	err = s.Update(0.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prefab missing")
	for _, a := range s.Agents() {
		assert.Equal(t, 1.0, a.State.DistanceTraveled, "both agents advance despite the failure")
	}
	assert.EqualValues(t, 1, s.GetMetrics().ErrorCount)
}

func TestBusHandlerErrorsDoNotAbortTick(t *testing.T) {
	s, ledger, logs := newSystem(t)
	_, _ = s.Bus().Subscribe(EventMarkerDropped, func(bus.Event) error { return errors.New("viewer gone") })
	_, err := s.AddAgent("seeder", seederConfig(), physics.Pose{})
	require.NoError(t, err)

	require.NoError(t, s.Update(0.5))
	assert.Equal(t, 1, ledger.Len())
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
}

func TestDisabledSystemSkipsUpdates(t *testing.T) {
	s, _, _ := newSystem(t)
	id, err := s.AddAgent("seeder", seederConfig(), physics.Pose{})
	require.NoError(t, err)

	s.SetEnabled(false)
	require.NoError(t, s.Update(0.5))
	a, _ := s.Agent(id)
	assert.Zero(t, a.State.DistanceTraveled)
	assert.Zero(t, s.Tick())
}

func TestAgentNotFound(t *testing.T) {
	s, _, _ := newSystem(t)
	_, err := s.Agent("nope")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestShutdownRejectsNewAgents(t *testing.T) {
	s, _, _ := newSystem(t)
	require.NoError(t, s.Shutdown(context.Background()))
	_, err := s.AddAgent("late", seederConfig(), physics.Pose{})
	assert.ErrorIs(t, err, ErrShutdown)
	assert.ErrorIs(t, s.Update(0.1), ErrNotInitialized)
}

func TestAgentTopicCarriesOnlyThatAgent(t *testing.T) {
	s, _, _ := newSystem(t)
	first, err := s.AddAgent("a", seederConfig(), physics.Pose{})
	require.NoError(t, err)
	_, err = s.AddAgent("b", seederConfig(), physics.Pose{Position: physics.V3(10, 0, 0)})
	require.NoError(t, err)

	var all, own []string
	_, err = s.Bus().Subscribe(EventMarkerDropped, func(e bus.Event) error {
		all = append(all, e.Data().(MarkerDropped).AgentID)
		return nil
	})
	require.NoError(t, err)
	_, err = s.Bus().SubscribeTopic(AgentTopic(first), EventMarkerDropped, func(e bus.Event) error {
		own = append(own, e.Data().(MarkerDropped).AgentID)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, s.Update(0.5))
	assert.Len(t, all, 2)
	assert.Equal(t, []string{first}, own)
}

func TestAgentEventsArriveInTickOrder(t *testing.T) {
	s, _, _ := newSystem(t)
	id, err := s.AddAgent("a", seederConfig(), physics.Pose{})
	require.NoError(t, err)

	var types []string
	topic := AgentTopic(id)
	for _, typ := range []string{EventMarkerDropped, EventRowChanged, EventTraversalCompleted} {
		_, err = s.Bus().SubscribeTopic(topic, typ, func(e bus.Event) error {
			types = append(types, e.Type())
			return nil
		})
		require.NoError(t, err)
	}

	for !s.Done() {
		require.NoError(t, s.Update(0.5))
	}
	require.NotEmpty(t, types)
	assert.Equal(t, EventMarkerDropped, types[0])
	assert.Contains(t, types, EventRowChanged)
	assert.Equal(t, EventTraversalCompleted, types[len(types)-1])
}
