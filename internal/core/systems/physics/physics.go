// Package physics holds the vector and heading math shared by the planner and its
// hosts. Headings are degrees of yaw about the vertical (Y) axis: 0 faces +Z and
// 90 faces +X.
package physics

import "math"

// Vec3 is a plain 3D vector in world units.
type Vec3 struct {
	Xv float64 `json:"x" yaml:"x"`
	Yv float64 `json:"y" yaml:"y"`
	Zv float64 `json:"z" yaml:"z"`
}

func V3(x, y, z float64) Vec3 { return Vec3{Xv: x, Yv: y, Zv: z} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.Xv + o.Xv, v.Yv + o.Yv, v.Zv + o.Zv} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.Xv - o.Xv, v.Yv - o.Yv, v.Zv - o.Zv} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.Xv * s, v.Yv * s, v.Zv * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.Xv*v.Xv + v.Yv*v.Yv + v.Zv*v.Zv) }

// Pose is a position plus a heading about the vertical axis.
type Pose struct {
	Position Vec3    `json:"position" yaml:"position"`
	Heading  float64 `json:"heading" yaml:"heading"`
}

// Distance3 computes Euclidean distance between two points.
func Distance3(a, b Vec3) float64 { return b.Sub(a).Length() }

// Lerp interpolates from a to b; t is clamped to [0, 1].
func Lerp(a, b Vec3, t float64) Vec3 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return a.Add(b.Sub(a).Scale(t))
}

// NormalizeAngle wraps degrees into [0, 360).
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// DeltaAngle returns the signed shortest rotation in degrees from current to target,
// in the range (-180, 180]. An exact half turn resolves to +180.
func DeltaAngle(current, target float64) float64 {
	d := NormalizeAngle(target - current)
	if d > 180 {
		d -= 360
	}
	return d
}

// AngleBetween is the unsigned shortest angle between two headings.
func AngleBetween(a, b float64) float64 { return math.Abs(DeltaAngle(a, b)) }

// RotateTowards turns current toward target along the shortest path by at most maxDelta degrees.
func RotateTowards(current, target, maxDelta float64) float64 {
	d := DeltaAngle(current, target)
	if math.Abs(d) <= maxDelta {
		return NormalizeAngle(target)
	}
	return NormalizeAngle(current + math.Copysign(maxDelta, d))
}

// HeadingOf returns the yaw that faces along dir on the horizontal plane.
// Axis-aligned directions map exactly onto 0, 90, 180 and 270.
func HeadingOf(dir Vec3) float64 {
	switch {
	case dir.Xv == 0 && dir.Zv < 0:
		return 180
	case dir.Xv == 0:
		return 0
	case dir.Zv == 0 && dir.Xv > 0:
		return 90
	case dir.Zv == 0:
		return 270
	}
	return NormalizeAngle(math.Atan2(dir.Xv, dir.Zv) * 180 / math.Pi)
}

// Quaternion is a rotation; markers are always spawned with Identity.
type Quaternion struct {
	W, X, Y, Z float64
}

// Identity is the no-rotation quaternion.
var Identity = Quaternion{W: 1}
