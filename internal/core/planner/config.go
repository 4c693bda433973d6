package planner

import (
	"fmt"
	"math"
)

// Upper bounds on the coverage plan; larger fields are rejected as invalid.
const (
	MaxRows  = 1 << 20
	MaxCells = 1 << 24
)

// Validate rejects configurations that would yield undefined row counts or motion.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategySweep:
		if err := c.Field.validateSweep(); err != nil {
			return err
		}
	case StrategyGrid:
		if err := c.Field.validateGrid(); err != nil {
			return err
		}
		if !(c.Motion.RotationSpeed > 0) {
			return fmt.Errorf("%w: rotation speed must be positive, got %v", ErrInvalidConfig, c.Motion.RotationSpeed)
		}
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, ErrUnknownStrategy, c.Strategy)
	}

	return c.Motion.validate()
}

func (f FieldSpec) validateSweep() error {
	if !(f.Length > 0) {
		return fmt.Errorf("%w: field length must be positive, got %v", ErrInvalidConfig, f.Length)
	}
	if !(f.Width > 0) {
		return fmt.Errorf("%w: field width must be positive, got %v", ErrInvalidConfig, f.Width)
	}
	if !(f.RowSpacing > 0) {
		return fmt.Errorf("%w: row spacing must be positive, got %v", ErrInvalidConfig, f.RowSpacing)
	}
	if rows := math.Ceil(f.Width / f.RowSpacing); !(rows <= MaxRows) {
		return fmt.Errorf("%w: width %v at spacing %v needs %v rows, limit is %d", ErrInvalidConfig, f.Width, f.RowSpacing, rows, MaxRows)
	}
	return nil
}

func (f FieldSpec) validateGrid() error {
	if f.Rows <= 0 {
		return fmt.Errorf("%w: grid rows must be positive, got %d", ErrInvalidConfig, f.Rows)
	}
	if f.Columns <= 0 {
		return fmt.Errorf("%w: grid columns must be positive, got %d", ErrInvalidConfig, f.Columns)
	}
	if f.Rows > MaxRows || f.Columns > MaxRows || int64(f.Rows)*int64(f.Columns) > MaxCells {
		return fmt.Errorf("%w: %dx%d grid exceeds %d cells", ErrInvalidConfig, f.Rows, f.Columns, MaxCells)
	}
	if !(f.CellSize > 0) {
		return fmt.Errorf("%w: cell size must be positive, got %v", ErrInvalidConfig, f.CellSize)
	}
	return nil
}

func (m MotionSpec) validate() error {
	if !(m.Speed > 0) {
		return fmt.Errorf("%w: speed must be positive, got %v", ErrInvalidConfig, m.Speed)
	}
	if m.RotationTolerance < 0 {
		return fmt.Errorf("%w: rotation tolerance must not be negative, got %v", ErrInvalidConfig, m.RotationTolerance)
	}
	if m.MarkerInterval < 0 {
		return fmt.Errorf("%w: marker interval must not be negative, got %v", ErrInvalidConfig, m.MarkerInterval)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Motion.RotationTolerance == 0 {
		c.Motion.RotationTolerance = DefaultRotationTolerance
	}
	return c
}

// TotalRows is the number of rows the configuration covers.
func (c Config) TotalRows() int {
	switch c.Strategy {
	case StrategySweep:
		return int(math.Ceil(c.Field.Width / c.Field.RowSpacing))
	case StrategyGrid:
		return c.Field.Rows
	default:
		return 0
	}
}
