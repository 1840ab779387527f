package vto

import "errors"

var (
	ErrLandmarkCount      = errors.New("unexpected landmark count")
	ErrNonFiniteLandmark  = errors.New("landmark coordinate is not finite")
	ErrDegenerateIris     = errors.New("iris edge landmarks coincide")
	ErrDegenerateGeometry = errors.New("face outline landmarks are degenerate")
	ErrInvalidConfig      = errors.New("invalid vto config")
)
