// Package traversal hosts planner agents: it owns each agent's state and pose,
// advances them once per Update, hands marker events to a MarkerSink and announces
// progress on an event bus.
package traversal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/lanepath/internal/core/events/bus"
	"github.com/zeusync/lanepath/internal/core/observability/log"
	"github.com/zeusync/lanepath/internal/core/planner"
	"github.com/zeusync/lanepath/internal/core/systems"
	"github.com/zeusync/lanepath/internal/core/systems/physics"
)

const systemName = "traversal"

var (
	_ systems.System    = (*System)(nil)
	_ systems.Completer = (*System)(nil)
)

// Agent is one vehicle driven by the planner.
type Agent struct {
	ID      string
	Name    string
	State   planner.State
	Pose    physics.Pose
	Markers int
}

// Frame is a per-tick snapshot of one agent.
type Frame struct {
	Tick     uint64       `json:"tick"`
	AgentID  string       `json:"agent_id"`
	Name     string       `json:"name"`
	Position physics.Vec3 `json:"position"`
	Heading  float64      `json:"heading"`
	Phase    string       `json:"phase"`
	Row      int          `json:"row"`
	Column   int          `json:"column"`
	Done     bool         `json:"done"`
}

// System advances every registered agent once per Update. It is not safe for
// concurrent use; run independent systems for parallel simulations.
type System struct {
	logger log.Log
	bus    bus.EventBus
	sink   MarkerSink

	agents []*Agent
	byID   map[string]*Agent

	tick        uint64
	enabled     bool
	initialized bool
	shutdown    bool
	completed   int
	markers     uint64
	metrics     systems.Metrics
}

// NewSystem wires a traversal system. A nil bus or sink gets an in-memory default.
func NewSystem(logger log.Log, eventBus bus.EventBus, sink MarkerSink) *System {
	if logger == nil {
		logger = log.NewNop()
	}
	if eventBus == nil {
		eventBus = bus.New()
	}
	if sink == nil {
		sink = NewMarkerLedger()
	}
	return &System{
		logger:  logger.With(log.String("system", systemName)),
		bus:     eventBus,
		sink:    sink,
		byID:    make(map[string]*Agent),
		enabled: true,
	}
}

func (s *System) Name() string { return systemName }

func (s *System) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.shutdown {
		return ErrShutdown
	}
	s.initialized = true
	s.logger.Info("traversal system initialized", log.Int("agents", len(s.agents)))
	return nil
}

func (s *System) Shutdown(_ context.Context) error {
	s.shutdown = true
	s.initialized = false
	s.logger.Info("traversal system stopped",
		log.Uint64("ticks", s.tick),
		log.Int("completed", s.completed),
		log.Uint64("markers", s.markers),
	)
	return nil
}

func (s *System) IsEnabled() bool     { return s.enabled }
func (s *System) SetEnabled(v bool)   { s.enabled = v }
func (s *System) IsInitialized() bool { return s.initialized }

func (s *System) GetMetrics() systems.Metrics { return s.metrics }

// Bus exposes the event bus so hosts can subscribe to progress events.
func (s *System) Bus() bus.EventBus { return s.bus }

// Tick is the number of Updates that advanced agents.
func (s *System) Tick() uint64 { return s.tick }

// MarkersSpawned counts markers accepted by the sink.
func (s *System) MarkersSpawned() uint64 { return s.markers }

// AddAgent validates cfg, places the agent at its starting pose and returns its ID.
func (s *System) AddAgent(name string, cfg planner.Config, start physics.Pose) (string, error) {
	if s.shutdown {
		return "", ErrShutdown
	}
	state, pose, err := planner.Initialize(cfg, start)
	if err != nil {
		return "", fmt.Errorf("agent %q: %w", name, err)
	}

	a := &Agent{ID: uuid.NewString(), Name: name, State: state, Pose: pose}
	s.agents = append(s.agents, a)
	s.byID[a.ID] = a
	if state.IsComplete() {
		s.completed++
	}

	s.logger.Debug("agent added",
		log.String("agent", a.ID),
		log.String("name", name),
		log.String("strategy", string(cfg.Strategy)),
		log.Int("rows", state.TotalRows),
	)
	return a.ID, nil
}

// Agent returns a copy of the agent with the given ID.
func (s *System) Agent(id string) (Agent, error) {
	a, ok := s.byID[id]
	if !ok {
		return Agent{}, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	return *a, nil
}

// Agents returns copies of all agents in registration order.
func (s *System) Agents() []Agent {
	out := make([]Agent, len(s.agents))
	for i, a := range s.agents {
		out[i] = *a
	}
	return out
}

// Done reports whether every agent has finished its traversal.
func (s *System) Done() bool { return s.completed == len(s.agents) }

// Frames snapshots every agent for the current tick.
func (s *System) Frames() []Frame {
	out := make([]Frame, len(s.agents))
	for i, a := range s.agents {
		out[i] = Frame{
			Tick:     s.tick,
			AgentID:  a.ID,
			Name:     a.Name,
			Position: a.Pose.Position,
			Heading:  a.Pose.Heading,
			Phase:    a.State.Phase.String(),
			Row:      a.State.Row,
			Column:   a.State.Column,
			Done:     a.State.IsComplete(),
		}
	}
	return out
}

// Update advances every unfinished agent by deltaTime. Sink failures are returned
// after the whole tick ran; bus handler failures are only logged.
func (s *System) Update(deltaTime float64) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if !s.enabled {
		return nil
	}

	start := time.Now()
	s.tick++

	var sinkErr error
	processed := 0
	for _, a := range s.agents {
		if a.State.IsComplete() {
			continue
		}
		processed++
		if err := s.advance(a, deltaTime); err != nil {
			sinkErr = errors.Join(sinkErr, err)
		}
	}

	s.metrics.Observe(time.Since(start), processed, sinkErr)
	return sinkErr
}

func (s *System) advance(a *Agent, dt float64) error {
	prevRow := a.State.Row

	var markers []planner.MarkerEvent
	a.State, a.Pose, markers = planner.Advance(a.State, a.Pose, dt)

	var (
		sinkErr error
		events  []bus.Event
	)
	for _, m := range markers {
		if err := s.sink.Spawn(a.ID, m.Position, physics.Identity); err != nil {
			s.logger.Warn("marker spawn failed", log.String("agent", a.ID), log.Error(err))
			sinkErr = errors.Join(sinkErr, fmt.Errorf("agent %s: %w", a.ID, err))
			continue
		}
		a.Markers++
		s.markers++
		events = append(events, bus.NewEvent(EventMarkerDropped, systemName, MarkerDropped{
			AgentID:  a.ID,
			Position: m.Position,
			Row:      m.Row,
			Distance: m.Distance,
		}))
	}

	if a.State.Row != prevRow {
		s.logger.Debug("row changed", log.String("agent", a.ID), log.Int("row", a.State.Row))
		events = append(events, bus.NewEvent(EventRowChanged, systemName,
			RowChanged{AgentID: a.ID, Row: a.State.Row, Column: a.State.Column}))
	}

	if a.State.IsComplete() {
		s.completed++
		s.logger.Info("agent has covered the entire area",
			log.String("agent", a.ID),
			log.String("name", a.Name),
			log.Float64("distance", a.State.DistanceTraveled),
			log.Float64("elapsed", a.State.Elapsed),
			log.Int("markers", a.Markers),
		)
		events = append(events, bus.NewEvent(EventTraversalCompleted, systemName, TraversalCompleted{
			AgentID:  a.ID,
			Name:     a.Name,
			Distance: a.State.DistanceTraveled,
			Elapsed:  a.State.Elapsed,
			Markers:  a.Markers,
		}))
	}

	s.publish(a.ID, events)
	return sinkErr
}

// publish delivers one agent's events for this tick in order, on the default
// topic and on the agent's own topic.
func (s *System) publish(agentID string, events []bus.Event) {
	if len(events) == 0 {
		return
	}
	err := s.bus.PublishBatch(events...)
	topic := AgentTopic(agentID)
	for _, e := range events {
		err = errors.Join(err, s.bus.PublishToTopic(topic, e))
	}
	if err != nil {
		s.logger.Warn("event handler failed", log.String("agent", agentID), log.Error(err))
	}
}
