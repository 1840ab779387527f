package vto

import (
	"fmt"
	"math"
	"math/big"

	"ProjectVTO/pkg/geometry"
)

type FaceShape string

const (
	ShapeSquare       FaceShape = "Square"
	ShapeOblong       FaceShape = "Oblong"
	ShapeOval         FaceShape = "Oval"
	ShapeRound        FaceShape = "Round"
	ShapeHeart        FaceShape = "Heart"
	ShapeUnclassified FaceShape = "Unclassified"
)

type FaceSize string

const (
	SizePetite  FaceSize = "Petite"
	SizeSmall   FaceSize = "Small"
	SizeMedium  FaceSize = "Medium"
	SizeLarge   FaceSize = "Large"
	SizeUnknown FaceSize = ""
)

type shapeRule struct {
	shape              FaceShape
	minRatio, maxRatio float64
	minAngle, maxAngle float64
}

// Evaluated in order, first match wins. Gaps between rules are intentional
// and fall through to ShapeUnclassified.
var shapeRules = []shapeRule{
	{shape: ShapeSquare, minRatio: 0.63, maxRatio: 0.65, minAngle: 119, maxAngle: 121.99},
	{shape: ShapeOblong, minRatio: math.Inf(-1), maxRatio: 0.61, minAngle: 123, maxAngle: 128.99},
	{shape: ShapeOval, minRatio: 0.61, maxRatio: 0.63, minAngle: 121, maxAngle: 124.99},
	{shape: ShapeRound, minRatio: 0.68, maxRatio: math.Inf(1), minAngle: math.Inf(-1), maxAngle: 120.99},
	{shape: ShapeHeart, minRatio: 0.63, maxRatio: 0.66, minAngle: 121, maxAngle: 127.99},
}

var recommendations = map[FaceShape][]string{
	ShapeSquare: {"Round", "Oval"},
	ShapeOblong: {"Square"},
	ShapeRound:  {"Rectangle", "Square"},
	ShapeOval:   {"Cat Eye", "Rectangle"},
	ShapeHeart:  {"Cat Eye", "Oval"},
}

func ClassifyRatios(ratio, angle float64) FaceShape {
	for _, r := range shapeRules {
		if ratio >= r.minRatio && ratio <= r.maxRatio && angle >= r.minAngle && angle <= r.maxAngle {
			return r.shape
		}
	}
	return ShapeUnclassified
}

// FaceProportions returns the width/length ratio of the face and the jaw
// angle at the chin, both rounded to two decimals.
func FaceProportions(frame *FrameLandmarks) (ratio, angle float64, err error) {
	length := geometry.Distance2D(frame.At(Forehead), frame.At(Chin))
	width := geometry.Distance2D(frame.At(LeftCheek), frame.At(RightCheek))
	if length == 0 {
		return 0, 0, fmt.Errorf("%w: zero face length", ErrDegenerateGeometry)
	}

	angle = geometry.AngleDegrees(frame.At(LeftCheek), frame.At(Chin), frame.At(RightCheek))
	if math.IsNaN(angle) {
		return 0, 0, fmt.Errorf("%w: jaw angle undefined", ErrDegenerateGeometry)
	}

	ratio = round2(width / length)
	if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
		return 0, 0, fmt.Errorf("%w: ratio %v", ErrDegenerateGeometry, ratio)
	}

	return ratio, round2(angle), nil
}

func ClassifyFace(frame *FrameLandmarks) (FaceShape, error) {
	ratio, angle, err := FaceProportions(frame)
	if err != nil {
		return ShapeUnclassified, err
	}
	return ClassifyRatios(ratio, angle), nil
}

// Recommendations lists frame styles suited to the shape.
func Recommendations(shape FaceShape) []string {
	styles, ok := recommendations[shape]
	if !ok {
		return []string{"--"}
	}
	out := make([]string, len(styles))
	copy(out, styles)
	return out
}

// SizeFromWidth buckets a smoothed frame width in millimetres.
func SizeFromWidth(widthMM float64) FaceSize {
	switch {
	case widthMM <= 0 || math.IsNaN(widthMM) || math.IsInf(widthMM, 0):
		return SizeUnknown
	case widthMM < 108:
		return SizePetite
	case widthMM <= 113:
		return SizeSmall
	case widthMM <= 127:
		return SizeMedium
	default:
		return SizeLarge
	}
}

// round2 rounds the exact binary value of v to two decimals, breaking exact
// ties away from zero. 0.615 is stored below the midpoint and becomes 0.61.
func round2(v float64) float64 {
	exact := new(big.Rat).SetFloat64(math.Abs(v))
	if exact == nil {
		return v
	}

	exact.Mul(exact, big.NewRat(100, 1)).Add(exact, big.NewRat(1, 2))
	n := new(big.Int).Div(exact.Num(), exact.Denom())

	rounded, _ := new(big.Rat).SetFrac(n, big.NewInt(100)).Float64()
	return math.Copysign(rounded, v)
}
