package planner

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/lanepath/internal/core/systems/physics"
)

// Fingerprint hashes the traversal progress and pose. Two runs fed identical inputs
// produce identical fingerprints.
func Fingerprint(s State, pose physics.Pose) uint64 {
	buf := make([]byte, 0, 160)
	putF := func(v float64) { buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v)) }
	putI := func(v int) { buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(v))) }

	buf = append(buf, byte(s.Phase))
	if s.Forward {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	if s.Turning {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	putI(s.Row)
	putI(s.Column)
	putI(s.Lateral)
	putF(s.TargetHeading)
	putF(s.Segment.Elapsed)
	putF(s.DistanceTraveled)
	putF(s.DistanceSinceMarker)
	putF(s.Elapsed)
	putF(pose.Position.Xv)
	putF(pose.Position.Yv)
	putF(pose.Position.Zv)
	putF(pose.Heading)

	return xxhash.Sum64(buf)
}
