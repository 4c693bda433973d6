package planner

import "github.com/zeusync/lanepath/internal/core/systems/physics"

// Strategy selects the coverage pattern used for a field.
type Strategy string

const (
	// StrategySweep moves continuously along Z, shifting one row along X at each end.
	StrategySweep Strategy = "sweep"
	// StrategyGrid walks cell centres, turning in place before each move.
	StrategyGrid Strategy = "grid"
)

// DefaultRotationTolerance is the angle in degrees below which a turn counts as finished.
const DefaultRotationTolerance = 0.1

// Headings used by the grid strategy.
const (
	HeadingForward = 0.0
	HeadingRight   = 90.0
	HeadingLeft    = 270.0
)

// FieldSpec describes the area to cover. Sweep uses Length, Width and RowSpacing;
// grid uses Rows, Columns and CellSize.
type FieldSpec struct {
	Length     float64 `json:"length,omitempty" yaml:"length,omitempty"`
	Width      float64 `json:"width,omitempty" yaml:"width,omitempty"`
	RowSpacing float64 `json:"row_spacing,omitempty" yaml:"row_spacing,omitempty"`
	Rows       int     `json:"rows,omitempty" yaml:"rows,omitempty"`
	Columns    int     `json:"columns,omitempty" yaml:"columns,omitempty"`
	CellSize   float64 `json:"cell_size,omitempty" yaml:"cell_size,omitempty"`
}

// MotionSpec holds speeds and the marker interval.
type MotionSpec struct {
	// Speed is units per second along the path.
	Speed float64 `json:"speed" yaml:"speed"`
	// RotationSpeed is degrees per second (grid only).
	RotationSpeed float64 `json:"rotation_speed,omitempty" yaml:"rotation_speed,omitempty"`
	// RotationTolerance is degrees; zero means DefaultRotationTolerance.
	RotationTolerance float64 `json:"rotation_tolerance,omitempty" yaml:"rotation_tolerance,omitempty"`
	// MarkerInterval is the travelled distance between marker drops (sweep only).
	// Zero disables drops entirely; it does not mean a drop on every tick.
	MarkerInterval float64 `json:"marker_interval,omitempty" yaml:"marker_interval,omitempty"`
}

// Config is the immutable input of a traversal.
type Config struct {
	Strategy Strategy   `json:"strategy" yaml:"strategy"`
	Field    FieldSpec  `json:"field" yaml:"field"`
	Motion   MotionSpec `json:"motion" yaml:"motion"`
}

// Phase is the current step of the per-tick state machine.
type Phase uint8

const (
	PhaseMoving Phase = iota
	PhaseRotating
	PhaseRowTransition
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseMoving:
		return "moving"
	case PhaseRotating:
		return "rotating"
	case PhaseRowTransition:
		return "row_transition"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Segment is a timed linear move between two points.
type Segment struct {
	From     physics.Vec3
	To       physics.Vec3
	Elapsed  float64
	Duration float64
}

// Heading is the yaw that faces from From to To.
func (g Segment) Heading() float64 { return physics.HeadingOf(g.To.Sub(g.From)) }

// State is the traversal state. It is a value: Advance returns a new one and never
// mutates the caller's copy.
type State struct {
	Config Config

	Phase        Phase
	Row          int
	Column       int
	TotalRows    int
	TotalColumns int

	// Forward is the sweep direction along Z.
	Forward bool
	// Lateral is the grid direction along X: +1 right, -1 left.
	Lateral int

	Origin        physics.Vec3
	TargetHeading float64
	Segment       Segment
	// Turning is set while a row transition is still rotating toward HeadingForward.
	Turning bool

	DistanceTraveled    float64
	DistanceSinceMarker float64
	Elapsed             float64
}

// MarkerEvent asks the host to place a marker. Orientation is always identity.
type MarkerEvent struct {
	Position physics.Vec3
	Row      int
	Distance float64
}

// Waypoint is one point of the coverage path and the heading held on arrival.
type Waypoint struct {
	Position physics.Vec3
	Heading  float64
	Row      int
	Column   int
}
