package planner

import "github.com/zeusync/lanepath/internal/core/systems/physics"

func initSweep(cfg Config, start physics.Pose) (State, physics.Pose) {
	s := State{
		Config:    cfg,
		Phase:     PhaseMoving,
		TotalRows: cfg.TotalRows(),
		Forward:   true,
		Origin:    start.Position,
	}

	pose := start
	pose.Position = physics.V3(
		s.laneX(0),
		start.Position.Yv,
		s.Origin.Zv-cfg.Field.Length/2,
	)
	return s, pose
}

func (s State) laneX(row int) float64 {
	return s.Origin.Xv - s.Config.Field.Width/2 + float64(row)*s.Config.Field.RowSpacing
}

// advanceSweep moves, checks the lane end, then checks the marker accumulator, in that order.
func advanceSweep(s State, pose physics.Pose, dt float64) (State, physics.Pose, []MarkerEvent) {
	motion := s.Config.Motion
	step := motion.Speed * dt
	dir := 1.0
	if !s.Forward {
		dir = -1.0
	}
	pose.Position.Zv += step * dir

	s.DistanceTraveled += step
	if motion.MarkerInterval > 0 {
		s.DistanceSinceMarker += step
	}

	half := s.Config.Field.Length / 2
	if (s.Forward && pose.Position.Zv >= s.Origin.Zv+half) ||
		(!s.Forward && pose.Position.Zv <= s.Origin.Zv-half) {
		s, pose = shiftRow(s, pose)
	}

	var events []MarkerEvent
	if motion.MarkerInterval > 0 && s.DistanceSinceMarker >= motion.MarkerInterval {
		events = append(events, MarkerEvent{
			Position: pose.Position,
			Row:      s.Row,
			Distance: s.DistanceTraveled,
		})
		// Reset to zero, not to the overshoot.
		s.DistanceSinceMarker = 0
	}

	return s, pose, events
}

func shiftRow(s State, pose physics.Pose) (State, physics.Pose) {
	if s.Row+1 >= s.TotalRows {
		s.Phase = PhaseDone
		return s, pose
	}

	s.Row++
	s.Forward = !s.Forward

	z := s.Origin.Zv + s.Config.Field.Length/2
	if s.Forward {
		z = s.Origin.Zv - s.Config.Field.Length/2
	}
	pose.Position = physics.V3(s.laneX(s.Row), pose.Position.Yv, z)
	return s, pose
}
