package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestMidpoint(t *testing.T) {
	got := Midpoint(Point{X: 0, Y: 0, Z: 0}, Point{X: 2, Y: 4, Z: 6})
	want := Point{X: 1, Y: 2, Z: 3}

	if got != want {
		t.Errorf("Midpoint() = %+v, want %+v", got, want)
	}

	rev := Midpoint(Point{X: 2, Y: 4, Z: 6}, Point{X: 0, Y: 0, Z: 0})
	if rev != got {
		t.Errorf("Midpoint() is not symmetric: %+v vs %+v", rev, got)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Point
		use3D bool
		want  float64
	}{
		{
			name: "3-4-5 triangle in the plane",
			a:    Point{X: 0, Y: 0, Z: 0},
			b:    Point{X: 3, Y: 4, Z: 0},
			want: 5,
		},
		{
			name:  "2-1-2 box diagonal",
			a:     Point{X: 0, Y: 0, Z: 0},
			b:     Point{X: 2, Y: 1, Z: 2},
			use3D: true,
			want:  3,
		},
		{
			name: "depth ignored in 2D",
			a:    Point{X: 0, Y: 0, Z: 0},
			b:    Point{X: 0, Y: 0, Z: 9},
			want: 0,
		},
		{
			name:  "coincident points",
			a:     Point{X: 0.4, Y: 0.2, Z: 0.1},
			b:     Point{X: 0.4, Y: 0.2, Z: 0.1},
			use3D: true,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b, tt.use3D)
			if !almostEqual(got, tt.want) {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
			if back := Distance(tt.b, tt.a, tt.use3D); !almostEqual(back, got) {
				t.Errorf("Distance() not symmetric: %v vs %v", back, got)
			}
		})
	}

	if !almostEqual(Distance2D(Point{}, Point{X: 3, Y: 4, Z: 7}), 5) {
		t.Error("Distance2D() should default to planar distance")
	}
}

func TestAngleDegrees(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c Point
		want    float64
	}{
		{
			name: "straight line",
			a:    Point{X: 0, Y: 0},
			b:    Point{X: 1, Y: 0},
			c:    Point{X: 2, Y: 0},
			want: 0,
		},
		{
			name: "right turn",
			a:    Point{X: 0, Y: 0},
			b:    Point{X: 1, Y: 0},
			c:    Point{X: 1, Y: 1},
			want: 90,
		},
		{
			name: "reversal",
			a:    Point{X: 0, Y: 0},
			b:    Point{X: 1, Y: 0},
			c:    Point{X: 0, Y: 0},
			want: 180,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngleDegrees(tt.a, tt.b, tt.c)
			if !almostEqual(got, tt.want) {
				t.Errorf("AngleDegrees() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := AngleDegrees(Point{X: 1}, Point{X: 1}, Point{X: 2}); !math.IsNaN(got) {
		t.Errorf("AngleDegrees() with zero-length vector = %v, want NaN", got)
	}
}

func TestAngleFromAxis(t *testing.T) {
	p1 := Point{X: 0, Y: 0, Z: 0}

	if got := AngleFromAxis(AxisX, p1, Point{X: 1}, 1); !almostEqual(got, 0) {
		t.Errorf("AngleFromAxis(x) along +x = %v, want 0", got)
	}

	if got := AngleFromAxis(AxisX, p1, Point{X: 0, Y: 1}, 1); !almostEqual(got, math.Pi/2) {
		t.Errorf("AngleFromAxis(x) along +y = %v, want π/2", got)
	}

	got := AngleFromAxis(AxisX, p1, Point{X: 1, Y: -1}, 1)
	if !almostEqual(got, 7*math.Pi/4) {
		t.Errorf("AngleFromAxis(x) below axis = %v, want 7π/4", got)
	}

	got = AngleFromAxis(AxisZ, p1, Point{X: 1, Z: 1}, 0.5)
	if !almostEqual(got, math.Atan2(0.5, 1)) {
		t.Errorf("AngleFromAxis(z) damped = %v, want %v", got, math.Atan2(0.5, 1))
	}

	got = AngleFromAxis(AxisY, p1, Point{Y: 1, Z: -2}, 0.5)
	if !almostEqual(got, math.Pi/4) {
		t.Errorf("AngleFromAxis(y) = %v, want π/4", got)
	}

	for _, axis := range []Axis{AxisX, AxisY, AxisZ} {
		v := AngleFromAxis(axis, Point{X: 0.3, Y: 0.7, Z: -0.2}, Point{X: -0.1, Y: -0.4, Z: 0.5}, 0.6)
		if v < 0 || v >= 2*math.Pi {
			t.Errorf("AngleFromAxis(%s) = %v, outside [0, 2π)", axis, v)
		}
	}
}
