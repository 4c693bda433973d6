// Package planner computes coverage paths over a rectangular field and advances an
// agent along them one tick at a time.
//
// The planner is a pure state machine: Initialize builds the starting State and Pose,
// Advance maps (State, Pose, dt) to a new (State, Pose) plus any marker events, and
// IsComplete reports whether the traversal has finished. Nothing is retained between
// calls, so a host owns exactly one State/Pose pair per agent and feeds it back on
// every tick.
package planner

import (
	"fmt"

	"github.com/zeusync/lanepath/internal/core/systems/physics"
)

// Initialize validates cfg and returns the starting state and the pose the agent
// should be placed at.
//
// Sweep lanes are laid out in world space: rows step along +X and the agent
// drives along world ±Z whatever its heading. The supplied heading is kept as is
// and never rotated. Grid cells are laid out the same way and the agent turns to
// face each move.
func Initialize(cfg Config, start physics.Pose) (State, physics.Pose, error) {
	if err := cfg.Validate(); err != nil {
		return State{}, start, err
	}
	cfg = cfg.withDefaults()

	switch cfg.Strategy {
	case StrategySweep:
		s, p := initSweep(cfg, start)
		return s, p, nil
	case StrategyGrid:
		s, p := initGrid(cfg, start)
		return s, p, nil
	default:
		return State{}, start, fmt.Errorf("%w: %q", ErrUnknownStrategy, cfg.Strategy)
	}
}

// Advance moves the traversal forward by dt seconds. A completed traversal or a
// non-positive dt returns its inputs unchanged.
func Advance(s State, pose physics.Pose, dt float64) (State, physics.Pose, []MarkerEvent) {
	if s.Phase == PhaseDone || !(dt > 0) {
		return s, pose, nil
	}
	s.Elapsed += dt

	switch s.Config.Strategy {
	case StrategySweep:
		return advanceSweep(s, pose, dt)
	case StrategyGrid:
		s, pose = advanceGrid(s, pose, dt)
		return s, pose, nil
	default:
		return s, pose, nil
	}
}

// IsComplete reports whether every row has been visited.
func IsComplete(s State) bool { return s.Phase == PhaseDone }

// IsComplete is the method form of IsComplete.
func (s State) IsComplete() bool { return IsComplete(s) }
