package vto

import (
	"math"
	"testing"
)

const eps = 1e-6

func assertFloat(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// newTestFrame builds a symmetric, camera-facing face. With the default
// config it calibrates to 244 mm/unit on both sides, measures a PD of
// 63.44 mm and a frame width of 122 mm, and classifies as Round.
func newTestFrame() *FrameLandmarks {
	var f FrameLandmarks

	f[LeftIrisInner] = Landmark{X: 0.40, Y: 0.5}
	f[LeftIrisOuter] = Landmark{X: 0.45, Y: 0.5}
	f[RightIrisInner] = Landmark{X: 0.60, Y: 0.5}
	f[RightIrisOuter] = Landmark{X: 0.55, Y: 0.5}
	f[LeftIrisCenter] = Landmark{X: 0.37, Y: 0.5}
	f[RightIrisCenter] = Landmark{X: 0.63, Y: 0.5}

	f[LeftTemple] = Landmark{X: 0.25, Y: 0.45}
	f[RightTemple] = Landmark{X: 0.75, Y: 0.45}
	f[LeftBridge] = Landmark{X: 0.47, Y: 0.5}
	f[RightBridge] = Landmark{X: 0.53, Y: 0.5}

	f[Forehead] = Landmark{X: 0.5, Y: 0.2}
	f[Chin] = Landmark{X: 0.5, Y: 0.8}
	f[LeftCheek] = Landmark{X: 0.29, Y: 0.5}
	f[RightCheek] = Landmark{X: 0.71, Y: 0.5}

	f[NoseTip] = Landmark{X: 0.5, Y: 0.55, Z: -0.05}
	f[LeftEyeOuter] = Landmark{X: 0.35, Y: 0.45}
	f[RightEyeOuter] = Landmark{X: 0.65, Y: 0.45}
	f[Anchor] = Landmark{X: 0.5, Y: 0.4, Z: -0.05}

	return &f
}
