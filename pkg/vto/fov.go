package vto

import "math"

const (
	fovNarrow      = 40.0
	fovWide        = 87.0
	fovNarrowWidth = 1564.0
	fovWideWidth   = 288.0
)

type fovRange struct {
	min, max   float64
	start, end float64
}

// Empirical viewport-width to field-of-view segments. Adjacent segments share
// their boundary value.
var fovRanges = []fovRange{
	{min: 288, max: 388, start: 87, end: 85.95},
	{min: 388, max: 488, start: 85.95, end: 84.64},
	{min: 488, max: 588, start: 84.64, end: 86},
	{min: 588, max: 688, start: 86, end: 84},
	{min: 688, max: 788, start: 84, end: 78},
	{min: 788, max: 888, start: 78, end: 68},
	{min: 888, max: 988, start: 68, end: 80},
	{min: 988, max: 1031, start: 80, end: 60},
	{min: 1031, max: 1164, start: 60, end: 53},
	{min: 1164, max: 1231, start: 53, end: 52},
	{min: 1231, max: 1297, start: 52, end: 50},
	{min: 1297, max: 1364, start: 50, end: 47},
	{min: 1364, max: 1431, start: 47, end: 44},
	{min: 1431, max: 1497, start: 44, end: 42},
	{min: 1497, max: 1564, start: 42, end: 40},
}

// FieldOfView maps a viewport width in pixels to a vertical camera FOV in
// degrees.
func FieldOfView(width float64) float64 {
	switch {
	case math.IsNaN(width):
		return fovNarrow
	case width >= fovNarrowWidth:
		return fovNarrow
	case width <= fovWideWidth:
		return fovWide
	}

	for _, r := range fovRanges {
		if width > r.min && width <= r.max {
			m := (r.end - r.start) / (r.max - r.min)
			c := r.start - m*r.min
			return m*width + c
		}
	}

	return fovNarrow
}

// FOVBreakpoints returns the segment boundaries in ascending order.
func FOVBreakpoints() []float64 {
	points := make([]float64, 0, len(fovRanges)+1)
	for _, r := range fovRanges {
		points = append(points, r.min)
	}
	return append(points, fovRanges[len(fovRanges)-1].max)
}
