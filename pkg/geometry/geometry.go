package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// Point is a face-mesh landmark. X and Y are normalized to [0,1] image space,
// Z is relative depth at roughly the same scale as X.
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
}

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

func (p Point) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

func (p Point) flat() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y}
}

func FromVector(v r3.Vector) Point {
	return Point{X: v.X, Y: v.Y, Z: v.Z}
}

func (p Point) IsFinite() bool {
	for _, v := range [...]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Distance returns the euclidean distance between a and b. Depth is only
// considered when use3D is set.
func Distance(a, b Point, use3D bool) float64 {
	if use3D {
		return a.Vector().Distance(b.Vector())
	}
	return a.flat().Distance(b.flat())
}

func Distance2D(a, b Point) float64 {
	return Distance(a, b, false)
}

func Distance3D(a, b Point) float64 {
	return Distance(a, b, true)
}

func Midpoint(a, b Point) Point {
	return FromVector(a.Vector().Add(b.Vector()).Mul(0.5))
}

// AngleDegrees returns the angle in degrees between the 2D vectors a->b and
// b->c. The result is NaN when either vector has zero length.
func AngleDegrees(a, b, c Point) float64 {
	ab := b.flat().Sub(a.flat())
	bc := c.flat().Sub(b.flat())

	den := ab.Norm() * bc.Norm()
	if den == 0 {
		return math.NaN()
	}

	cos := ab.Dot(bc) / den
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi
}

// AngleFromAxis returns the angle of the segment p1->p2 measured against the
// given axis, with the secondary component scaled by damping. The result lies
// in [0, 2π).
func AngleFromAxis(axis Axis, p1, p2 Point, damping float64) float64 {
	d := p2.Vector().Sub(p1.Vector())

	var angle float64
	switch axis {
	case AxisX:
		angle = math.Atan2(damping*d.Y, d.X)
	case AxisZ:
		angle = math.Atan2(damping*d.Z, d.X)
	case AxisY:
		angle = math.Atan2(d.Y, math.Abs(damping*d.Z))
	default:
		return math.NaN()
	}

	return NormalizeAngle(angle)
}

// NormalizeAngle maps any finite angle in radians into [0, 2π).
func NormalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	if angle >= 2*math.Pi {
		angle = 0
	}
	return angle
}
