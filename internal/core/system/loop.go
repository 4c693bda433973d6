// Package system drives systems with a fixed timestep, standing in for a host
// engine's per-frame callback.
package system

import (
	"context"
	"fmt"
	"time"

	"github.com/zeusync/lanepath/internal/core/observability/log"
	"github.com/zeusync/lanepath/internal/core/systems"
)

// Runnable is a system that can report completion.
type Runnable interface {
	systems.System
	systems.Completer
}

// Loop calls Update with a fixed Tick until the system is done.
type Loop struct {
	// Tick is the simulated seconds per update.
	Tick float64
	// MaxTicks caps the run; zero means unlimited.
	MaxTicks uint64
	// RealTime paces updates with a wall-clock ticker.
	RealTime bool
	// OnTick runs after every successful update.
	OnTick func(tick uint64)

	Logger log.Log
}

// Stats summarizes a finished run.
type Stats struct {
	Ticks     uint64
	Simulated float64
	Wall      time.Duration
}

// Run initializes sys, drives it to completion and shuts it down. It returns
// ctx.Err() on cancellation and ErrTickLimit if MaxTicks runs out first.
func (l Loop) Run(ctx context.Context, sys Runnable) (stats Stats, err error) {
	if !(l.Tick > 0) {
		return stats, fmt.Errorf("%w: %v", ErrInvalidTick, l.Tick)
	}
	interval := time.Duration(l.Tick * float64(time.Second))
	if l.RealTime && interval <= 0 {
		return stats, fmt.Errorf("%w: %vs is below the real-time resolution of 1ns", ErrInvalidTick, l.Tick)
	}
	logger := l.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	if !sys.IsInitialized() {
		if err = sys.Initialize(ctx); err != nil {
			return stats, fmt.Errorf("initialize %s: %w", sys.Name(), err)
		}
	}
	defer func() {
		if shutdownErr := sys.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Warn("shutdown failed", log.String("system", sys.Name()), log.Error(shutdownErr))
		}
	}()

	var pace <-chan time.Time
	if l.RealTime {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		pace = ticker.C
	}

	started := time.Now()
	defer func() { stats.Wall = time.Since(started) }()

	for !sys.Done() {
		if l.MaxTicks > 0 && stats.Ticks >= l.MaxTicks {
			return stats, fmt.Errorf("%w: %d ticks", ErrTickLimit, stats.Ticks)
		}

		if pace != nil {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-pace:
			}
		} else if err = ctx.Err(); err != nil {
			return stats, err
		}

		if err = sys.Update(l.Tick); err != nil {
			return stats, fmt.Errorf("update %s at tick %d: %w", sys.Name(), stats.Ticks+1, err)
		}
		stats.Ticks++
		stats.Simulated += l.Tick

		if l.OnTick != nil {
			l.OnTick(stats.Ticks)
		}
	}

	logger.Debug("loop finished", log.String("system", sys.Name()), log.Uint64("ticks", stats.Ticks))
	return stats, nil
}
