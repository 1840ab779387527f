// Package vto turns face-mesh landmarks into eyewear measurements, head pose,
// face shape and the transform of a virtual try-on mesh.
package vto

import (
	"fmt"

	"ProjectVTO/pkg/geometry"
)

// Face-mesh landmark indices (refined mesh with iris points).
const (
	NoseTip          = 1
	Anchor           = 8
	Forehead         = 10
	LeftEyeOuter     = 33
	LeftTemple       = 143
	Chin             = 152
	LeftBridge       = 193
	LeftCheek        = 234
	RightEyeOuter    = 263
	RightTemple      = 372
	RightBridge      = 417
	RightCheek       = 454
	LeftIrisCenter   = 468
	LeftIrisInner    = 469
	LeftIrisOuter    = 471
	RightIrisCenter  = 473
	RightIrisOuter   = 474
	RightIrisInner   = 476
	NumLandmarks     = 478
	numMeshLandmarks = 468
)

type Landmark = geometry.Point

// FrameLandmarks holds the landmarks of one detected face in one frame.
type FrameLandmarks [NumLandmarks]Landmark

// NewFrameLandmarks validates a detector result and copies it into a frame.
func NewFrameLandmarks(points []Landmark) (*FrameLandmarks, error) {
	if len(points) != NumLandmarks {
		if len(points) == numMeshLandmarks {
			return nil, fmt.Errorf("%w: got %d points, iris refinement is required", ErrLandmarkCount, len(points))
		}
		return nil, fmt.Errorf("%w: got %d points, want %d", ErrLandmarkCount, len(points), NumLandmarks)
	}

	var frame FrameLandmarks
	for i, p := range points {
		if !p.IsFinite() {
			return nil, fmt.Errorf("%w: landmark %d", ErrNonFiniteLandmark, i)
		}
		frame[i] = p
	}

	return &frame, nil
}

func (f *FrameLandmarks) At(id int) Landmark {
	return f[id]
}
