package vto

import "math"

// HeadPose angles are in radians and are not smoothed.
type HeadPose struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

func EstimateHeadPose(frame *FrameLandmarks) HeadPose {
	nose := frame.At(NoseTip)
	chin := frame.At(Chin)
	leftEye := frame.At(LeftEyeOuter)
	rightEye := frame.At(RightEyeOuter)

	return HeadPose{
		Yaw:   math.Atan2(rightEye.X-leftEye.X, rightEye.Z-leftEye.Z),
		Pitch: math.Atan2(nose.Y-chin.Y, nose.Z-chin.Z),
		Roll:  math.Atan2(leftEye.X-rightEye.X, leftEye.Y-rightEye.Y),
	}
}
