package planner

import "github.com/zeusync/lanepath/internal/core/systems/physics"

// Waypoints returns the ordered coverage path for cfg without simulating time.
// Sweep yields the two endpoints of every lane; grid yields every cell centre in
// serpentine order together with the heading held on arrival.
func Waypoints(cfg Config, start physics.Pose) ([]Waypoint, error) {
	s, pose, err := Initialize(cfg, start)
	if err != nil {
		return nil, err
	}

	switch s.Config.Strategy {
	case StrategySweep:
		return sweepWaypoints(s, pose), nil
	default:
		return gridWaypoints(s, pose), nil
	}
}

func sweepWaypoints(s State, pose physics.Pose) []Waypoint {
	half := s.Config.Field.Length / 2
	out := make([]Waypoint, 0, 2*s.TotalRows)
	for row := 0; row < s.TotalRows; row++ {
		x := s.laneX(row)
		from, to := s.Origin.Zv-half, s.Origin.Zv+half
		heading := HeadingForward
		if row%2 == 1 {
			from, to = to, from
			heading = 180
		}
		out = append(out,
			Waypoint{Position: physics.V3(x, pose.Position.Yv, from), Heading: heading, Row: row},
			Waypoint{Position: physics.V3(x, pose.Position.Yv, to), Heading: heading, Row: row},
		)
	}
	return out
}

func gridWaypoints(s State, pose physics.Pose) []Waypoint {
	out := make([]Waypoint, 0, s.TotalRows*s.TotalColumns)
	prev := Waypoint{Position: s.cellCenter(0, 0), Heading: pose.Heading}
	out = append(out, prev)
	visit := func(row, col int) {
		pos := s.cellCenter(row, col)
		prev = Waypoint{Position: pos, Heading: physics.HeadingOf(pos.Sub(prev.Position)), Row: row, Column: col}
		out = append(out, prev)
	}

	col, lateral := 0, 1
	for row := 0; row < s.TotalRows; row++ {
		if row > 0 {
			visit(row, col)
		}
		for next := col + lateral; next >= 0 && next < s.TotalColumns; next += lateral {
			col = next
			visit(row, col)
		}
		lateral = -lateral
	}
	return out
}
