package vto

import "math"

type Indicator string

const (
	IndicatorRed  Indicator = "red"
	IndicatorBlue Indicator = "blue"
)

type OrientationState struct {
	IsOriented bool      `json:"is_oriented"`
	Deviation  float64   `json:"deviation"`
	Left       Indicator `json:"left"`
	Right      Indicator `json:"right"`
}

// CompareDepth reports whether the face squarely faces the camera by comparing
// the depth of both temples. Both indicators are blue while oriented; otherwise
// the temple closer to the camera (larger z) is marked red.
func CompareDepth(frame *FrameLandmarks, threshold float64) OrientationState {
	left := frame.At(LeftTemple).Z
	right := frame.At(RightTemple).Z
	deviation := math.Abs(left - right)

	state := OrientationState{
		IsOriented: deviation <= threshold,
		Deviation:  deviation,
		Left:       IndicatorBlue,
		Right:      IndicatorBlue,
	}
	switch {
	case state.IsOriented:
	case left > right:
		state.Left = IndicatorRed
	default:
		state.Right = IndicatorRed
	}

	return state
}
