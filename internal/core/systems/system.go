package systems

import (
	"context"
	"time"
)

// System is a game logic processor advanced once per frame by its host.
type System interface {
	Name() string

	// Lifecycle

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error

	// Execution

	Update(deltaTime float64) error

	// State management

	IsEnabled() bool
	SetEnabled(bool)
	IsInitialized() bool

	// Performance monitoring

	GetMetrics() Metrics
}

// Completer is implemented by systems that reach a terminal state.
type Completer interface {
	Done() bool
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
	LastExecutionTime    time.Time
	EntitiesProcessed    uint64
}

// Observe folds one execution into the metrics.
func (m *Metrics) Observe(took time.Duration, processed int, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += took
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if took > m.MaxExecutionTime {
		m.MaxExecutionTime = took
	}
	m.LastExecutionTime = time.Now()
	m.EntitiesProcessed += uint64(processed)
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}
