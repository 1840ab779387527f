package vto

import (
	"math"

	"ProjectVTO/pkg/geometry"
)

const (
	positionYOffset = 0.05
	positionZ       = 0.05
	pitchOffset     = math.Pi/2 + math.Pi/8
)

type Viewport struct {
	Width  int `json:"width" msgpack:"width" validate:"gte=0"`
	Height int `json:"height" msgpack:"height" validate:"gte=0"`
}

func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

func (v Viewport) Aspect() float64 {
	return float64(v.Width) / float64(v.Height)
}

// TryOnInputs are the raw values a transform is resolved from. A nil field is
// unset.
type TryOnInputs struct {
	ScaleWidth  *float64
	NormalizedX *float64
	NormalizedY *float64
	RotationX   *float64
	RotationY   *float64
	RotationZ   *float64
	Depth       *float64
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type TryOnTransform struct {
	Visible    bool     `json:"visible"`
	ScaleWidth float64  `json:"scale_width"`
	Position   Position `json:"position"`
	RotationX  float64  `json:"rotation_x"`
	RotationY  float64  `json:"rotation_y"`
	RotationZ  float64  `json:"rotation_z"`
	Depth      float64  `json:"depth,omitempty"`
}

type AxisAngles struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func TempleAxisAngles(frame *FrameLandmarks, cfg Config) AxisAngles {
	left, right := frame.At(LeftTemple), frame.At(RightTemple)
	return AxisAngles{
		X: geometry.AngleFromAxis(geometry.AxisX, left, right, cfg.DampingX),
		Y: geometry.AngleFromAxis(geometry.AxisY, left, right, cfg.DampingY),
		Z: geometry.AngleFromAxis(geometry.AxisZ, left, right, cfg.DampingZ),
	}
}

// ComputeTryOnInputs derives the mesh inputs for one frame. An invalid
// viewport leaves every input unset. avgFactor of zero leaves Depth unset.
func ComputeTryOnInputs(frame *FrameLandmarks, pose HeadPose, viewport Viewport, cfg Config, avgFactor float64) TryOnInputs {
	if !viewport.Valid() {
		return TryOnInputs{}
	}

	aspect := viewport.Aspect()
	anchor := frame.At(Anchor)

	normalize := func(p Landmark) Landmark {
		return Landmark{X: (2*p.X - 1) * aspect, Y: -(2*p.Y - 1), Z: p.Z}
	}
	left := normalize(frame.At(LeftTemple))
	right := normalize(frame.At(RightTemple))
	mid := normalize(geometry.Midpoint(frame.At(LeftTemple), frame.At(RightTemple)))

	in := TryOnInputs{
		ScaleWidth:  finite((geometry.Distance3D(left, mid) + geometry.Distance3D(right, mid)) * cfg.SizeScale),
		NormalizedX: finite(2*anchor.X - 1),
		NormalizedY: finite(-(2*anchor.Y - 1)),
		RotationX:   finite(-math.Sin(pose.Pitch + pitchOffset)),
		RotationY:   finite(geometry.AngleFromAxis(geometry.AxisZ, frame.At(LeftTemple), frame.At(RightTemple), cfg.DampingZ)),
		RotationZ:   finite(math.Cos(pose.Roll)),
	}

	if den := math.Abs(anchor.Z) * avgFactor; den > 0 {
		in.Depth = finite(1 / den)
	}

	return in
}

// Resolve produces the mesh transform. The mesh is only visible when scale,
// both normalized coordinates and the roll rotation are all known; otherwise
// the zero transform is returned.
func Resolve(in TryOnInputs) TryOnTransform {
	if in.ScaleWidth == nil || in.NormalizedX == nil || in.NormalizedY == nil || in.RotationZ == nil {
		return TryOnTransform{}
	}

	t := TryOnTransform{
		Visible:    true,
		ScaleWidth: *in.ScaleWidth,
		Position: Position{
			X: *in.NormalizedX,
			Y: *in.NormalizedY/2 - positionYOffset,
			Z: positionZ,
		},
		RotationZ: *in.RotationZ,
	}
	if in.RotationX != nil {
		t.RotationX = *in.RotationX
	}
	if in.RotationY != nil {
		t.RotationY = *in.RotationY
	}
	if in.Depth != nil {
		t.Depth = *in.Depth
	}

	return t
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
