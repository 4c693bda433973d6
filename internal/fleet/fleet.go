// Package fleet runs every agent of a scenario as an independent simulation, in parallel.
package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/zeusync/lanepath/internal/config"
	"github.com/zeusync/lanepath/internal/core/events/bus"
	"github.com/zeusync/lanepath/internal/core/observability/log"
	"github.com/zeusync/lanepath/internal/core/planner"
	"github.com/zeusync/lanepath/internal/core/system"
	"github.com/zeusync/lanepath/internal/core/systems/traversal"
	"github.com/zeusync/lanepath/internal/server"
	"github.com/zeusync/lanepath/pkg/concurrent"
)

// Result summarizes one agent's run.
type Result struct {
	Name          string
	AgentID       string
	Strategy      planner.Strategy
	TotalRows     int
	Ticks         uint64
	Simulated     float64
	Wall          time.Duration
	Distance      float64
	Markers       int
	RowChanges    uint64
	// CompletedAt is the simulated time of the completion event; zero when the
	// agent had nothing to cover.
	CompletedAt   float64
	// Events counts bus events published on the agent's topic.
	Events        uint64
	// HandlerErrors counts deliveries where a subscriber failed.
	HandlerErrors uint64
	Complete      bool
	Fingerprint   uint64
}

// progress tallies the events of one agent topic by type.
type progress struct {
	topic  string
	byType map[string]uint64
	total  uint64
}

func newProgress(agentID string) *progress {
	return &progress{topic: traversal.AgentTopic(agentID), byType: make(map[string]uint64)}
}

func (p *progress) OnPublish(topic, eventType string, _ bus.Event) {
	if topic != p.topic {
		return
	}
	p.byType[eventType]++
	p.total++
}

func (p *progress) OnDelivered(string, string, int, error, int64) {}

// Runner executes scenarios.
type Runner struct {
	logger    log.Log
	telemetry *server.Telemetry
	// Workers caps parallel simulations; zero runs all at once.
	Workers int
}

func NewRunner(logger log.Log, telemetry *server.Telemetry) *Runner {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{logger: logger, telemetry: telemetry}
}

// Run simulates every agent in sc. Results are in scenario order; the first failing
// simulation cancels the others.
func (r *Runner) Run(ctx context.Context, sc *config.Scenario) ([]Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	if sc.Telemetry.Enabled && r.telemetry != nil {
		if err := r.telemetry.Start(ctx, sc.Telemetry.Addr); err != nil {
			return nil, fmt.Errorf("start telemetry: %w", err)
		}
		defer func() {
			if err := r.telemetry.Stop(context.WithoutCancel(ctx)); err != nil {
				r.logger.Warn("telemetry stop failed", log.Error(err))
			}
		}()
	}

	started := time.Now()
	results, err := concurrent.Map(ctx, sc.Agents, r.Workers, func(ctx context.Context, a config.AgentConfig) (Result, error) {
		return r.simulate(ctx, sc, a)
	})
	if err != nil {
		return results, err
	}

	r.logger.Info("scenario finished",
		log.Int("agents", len(results)),
		log.Duration("wall", time.Since(started)),
	)
	return results, nil
}

func (r *Runner) simulate(ctx context.Context, sc *config.Scenario, a config.AgentConfig) (Result, error) {
	logger := r.logger.With(log.String("agent_name", a.Name))
	ledger := traversal.NewMarkerLedger()
	sys := traversal.NewSystem(logger, bus.New(), ledger)

	id, err := sys.AddAgent(a.Name, a.Config, a.Start.Pose())
	if err != nil {
		return Result{}, err
	}

	events := sys.Bus()
	tally := newProgress(id)
	events.AddObserver(tally)
	defer events.RemoveObserver(tally)

	var summary traversal.TraversalCompleted
	sub, err := events.SubscribeTopic(traversal.AgentTopic(id), traversal.EventTraversalCompleted, func(e bus.Event) error {
		summary, _ = e.Data().(traversal.TraversalCompleted)
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = events.Unsubscribe(sub) }()

	loop := system.Loop{
		Tick:     sc.Loop.Tick,
		MaxTicks: sc.Loop.MaxTicks,
		RealTime: sc.Loop.RealTime,
		Logger:   logger,
	}
	if sc.Telemetry.Enabled && r.telemetry != nil {
		loop.OnTick = func(uint64) { r.telemetry.Broadcast(sys.Frames()) }
	}

	stats, err := loop.Run(ctx, sys)
	if err != nil {
		return Result{}, fmt.Errorf("agent %q: %w", a.Name, err)
	}

	agent, err := sys.Agent(id)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Name:          a.Name,
		AgentID:       id,
		Strategy:      a.Strategy,
		TotalRows:     agent.State.TotalRows,
		Ticks:         stats.Ticks,
		Simulated:     stats.Simulated,
		Wall:          stats.Wall,
		Distance:      agent.State.DistanceTraveled,
		Markers:       ledger.Len(),
		RowChanges:    tally.byType[traversal.EventRowChanged],
		CompletedAt:   summary.Elapsed,
		Events:        tally.total,
		HandlerErrors: events.GetMetrics().Errors,
		Complete:      agent.State.IsComplete(),
		Fingerprint:   planner.Fingerprint(agent.State, agent.Pose),
	}, nil
}
