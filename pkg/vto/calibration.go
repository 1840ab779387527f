package vto

import (
	"fmt"
	"math"

	"ProjectVTO/pkg/geometry"
	"ProjectVTO/pkg/rolling"
)

// CalibrationConstants are the per-frame millimetre-per-unit factors derived
// from the apparent iris diameter of each eye.
type CalibrationConstants struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
	Avg   float64 `json:"avg"`
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
}

func Calibrate(frame *FrameLandmarks, irisSizeMM float64) (CalibrationConstants, error) {
	leftIris := geometry.Distance2D(frame.At(LeftIrisInner), frame.At(LeftIrisOuter))
	rightIris := geometry.Distance2D(frame.At(RightIrisInner), frame.At(RightIrisOuter))

	if leftIris == 0 || rightIris == 0 {
		return CalibrationConstants{}, fmt.Errorf("%w: left=%v right=%v", ErrDegenerateIris, leftIris, rightIris)
	}

	left := irisSizeMM / leftIris
	right := irisSizeMM / rightIris
	if !allFinite(left, right) || left <= 0 || right <= 0 {
		return CalibrationConstants{}, fmt.Errorf("%w: left=%v right=%v", ErrDegenerateIris, leftIris, rightIris)
	}

	return CalibrationConstants{
		Left:  left,
		Right: right,
		Avg:   (left + right) / 2,
		Max:   math.Max(left, right),
		Min:   math.Min(left, right),
	}, nil
}

// Measurements are the smoothed values reported after a frame update.
type Measurements struct {
	DetectedPD float64 `json:"detected_pd"`
	PDLeft     float64 `json:"pd_left"`
	PDRight    float64 `json:"pd_right"`
	Width      float64 `json:"width"`
	Bridge     float64 `json:"bridge"`
	Height     float64 `json:"height"`
}

// Engine feeds raw per-frame measurements into a rolling store.
type Engine struct {
	cfg         Config
	store       *rolling.Store
	calibration CalibrationConstants
	last        Measurements
	samples     int
}

func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:   cfg,
		store: rolling.NewStore(),
	}
}

// Update calibrates the frame and pushes its raw measurements into the store.
// A frame whose iris edges coincide, or whose measurements are not finite,
// leaves every channel untouched.
func (e *Engine) Update(frame *FrameLandmarks) (Measurements, error) {
	c, err := Calibrate(frame, e.cfg.IrisSizeMM)
	if err != nil {
		return e.last, fmt.Errorf("calibrate frame: %w", err)
	}

	irisMid := geometry.Midpoint(frame.At(LeftIrisCenter), frame.At(RightIrisCenter))
	pdLeft := c.Left * geometry.Distance3D(frame.At(LeftIrisCenter), irisMid) * 2
	pdRight := c.Right * geometry.Distance3D(frame.At(RightIrisCenter), irisMid) * 2

	templeMid := geometry.Midpoint(frame.At(LeftTemple), frame.At(RightTemple))
	width := geometry.Distance3D(frame.At(LeftTemple), templeMid)*c.Left +
		geometry.Distance3D(frame.At(RightTemple), templeMid)*c.Right

	bridge := geometry.Distance3D(frame.At(LeftBridge), frame.At(RightBridge)) * c.Avg
	height := geometry.Distance3D(frame.At(Forehead), frame.At(Chin)) * c.Avg

	if !allFinite(pdLeft, pdRight, width, bridge, height) {
		return e.last, fmt.Errorf("%w: measurements out of range", ErrDegenerateGeometry)
	}

	maxLen := e.cfg.MeasurementMaxLen
	m := Measurements{
		PDLeft:     e.store.AddSample(rolling.ChannelPDLeft, pdLeft, maxLen),
		PDRight:    e.store.AddSample(rolling.ChannelPDRight, pdRight, maxLen),
		DetectedPD: e.store.AddSample(rolling.ChannelPD, (pdLeft+pdRight)/2, maxLen),
		Width:      e.store.AddSample(rolling.ChannelWidth, width, maxLen),
		Bridge:     e.store.AddSample(rolling.ChannelBridge, bridge, e.cfg.DefaultMaxLen),
		Height:     e.store.AddSample(rolling.ChannelHeight, height, e.cfg.DefaultMaxLen),
	}

	e.calibration = c
	e.last = m
	e.samples++

	return m, nil
}

func (e *Engine) Last() Measurements {
	return e.last
}

// Calibration returns the constants of the last accepted frame.
func (e *Engine) Calibration() CalibrationConstants {
	return e.calibration
}

func (e *Engine) Samples() int {
	return e.samples
}

func (e *Engine) Store() *rolling.Store {
	return e.store
}

func (e *Engine) Reset() {
	e.store.Reset()
	e.calibration = CalibrationConstants{}
	e.last = Measurements{}
	e.samples = 0
}

func allFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
