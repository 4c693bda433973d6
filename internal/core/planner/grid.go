package planner

import "github.com/zeusync/lanepath/internal/core/systems/physics"

func initGrid(cfg Config, start physics.Pose) (State, physics.Pose) {
	s := State{
		Config:       cfg,
		TotalRows:    cfg.Field.Rows,
		TotalColumns: cfg.Field.Columns,
		Forward:      true,
		Lateral:      1,
		Origin:       start.Position,
	}
	pose := start
	pose.Heading = physics.NormalizeAngle(pose.Heading)
	return planGrid(s, pose), pose
}

// cellCenter maps (row, column) to world space; columns run along +X and rows along +Z.
func (s State) cellCenter(row, col int) physics.Vec3 {
	size := s.Config.Field.CellSize
	return physics.V3(
		s.Origin.Xv+float64(col)*size,
		s.Origin.Yv,
		s.Origin.Zv+float64(row)*size,
	)
}

func (s State) aligned(heading float64) bool {
	return physics.AngleBetween(heading, s.TargetHeading) < s.Config.Motion.RotationTolerance
}

func (s State) newSegment(from, to physics.Vec3) Segment {
	return Segment{
		From:     from,
		To:       to,
		Duration: physics.Distance3(from, to) / s.Config.Motion.Speed,
	}
}

// planGrid picks the next step once the agent rests on a cell centre.
func planGrid(s State, pose physics.Pose) State {
	next := s.Column + s.Lateral
	switch {
	case next >= 0 && next < s.TotalColumns:
		s.Segment = s.newSegment(pose.Position, s.cellCenter(s.Row, next))
		s.TargetHeading = s.Segment.Heading()
		s.Phase = PhaseRotating
		if s.aligned(pose.Heading) {
			s.Phase = PhaseMoving
		}
	case s.Row+1 < s.TotalRows:
		s.Segment = s.newSegment(pose.Position, s.cellCenter(s.Row+1, s.Column))
		s.TargetHeading = s.Segment.Heading()
		s.Phase = PhaseRowTransition
		s.Turning = !s.aligned(pose.Heading)
	default:
		s.Phase = PhaseDone
		s.Segment = Segment{}
	}
	return s
}

func advanceGrid(s State, pose physics.Pose, dt float64) (State, physics.Pose) {
	switch s.Phase {
	case PhaseRotating:
		var done bool
		pose.Heading, done = s.rotate(pose.Heading, dt)
		if done {
			s.Phase = PhaseMoving
		}

	case PhaseMoving:
		var done bool
		s, pose, done = s.translate(pose, dt)
		if done {
			s.Column += s.Lateral
			s = planGrid(s, pose)
		}

	case PhaseRowTransition:
		if s.Turning {
			var done bool
			pose.Heading, done = s.rotate(pose.Heading, dt)
			s.Turning = !done
			break
		}
		var done bool
		s, pose, done = s.translate(pose, dt)
		if done {
			s.Row++
			s.Lateral = -s.Lateral
			s = planGrid(s, pose)
		}
	}
	return s, pose
}

// rotate turns toward TargetHeading and snaps onto it once inside the tolerance.
func (s State) rotate(heading, dt float64) (float64, bool) {
	heading = physics.RotateTowards(heading, s.TargetHeading, s.Config.Motion.RotationSpeed*dt)
	if s.aligned(heading) {
		return s.TargetHeading, true
	}
	return heading, false
}

// translate interpolates along the current segment by elapsed time over duration.
func (s State) translate(pose physics.Pose, dt float64) (State, physics.Pose, bool) {
	seg := s.Segment
	seg.Elapsed += dt

	t := 1.0
	if seg.Duration > 0 {
		t = seg.Elapsed / seg.Duration
	}

	prev := pose.Position
	pose.Position = physics.Lerp(seg.From, seg.To, t)
	s.DistanceTraveled += physics.Distance3(prev, pose.Position)
	s.Segment = seg

	return s, pose, t >= 1
}
