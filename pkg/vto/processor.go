package vto

import "github.com/sirupsen/logrus"

type FrameOptions struct {
	Viewport      Viewport
	ClassifyShape bool
	TryOn         bool
}

type FrameResult struct {
	FrameIndex      int                  `json:"frame_index"`
	FaceDetected    bool                 `json:"face_detected"`
	Stale           bool                 `json:"stale"`
	Samples         int                  `json:"samples"`
	SkipReason      string               `json:"skip_reason,omitempty"`
	DetectedPD      float64              `json:"detected_pd"`
	PDLeft          float64              `json:"pd_left"`
	PDRight         float64              `json:"pd_right"`
	Width           float64              `json:"width"`
	Bridge          float64              `json:"bridge"`
	Height          float64              `json:"height"`
	Calibration     CalibrationConstants `json:"calibration"`
	HeadPose        HeadPose             `json:"head_pose"`
	FaceShape       FaceShape            `json:"face_shape,omitempty"`
	FaceSize        FaceSize             `json:"face_size,omitempty"`
	Recommendations []string             `json:"recommendations,omitempty"`
	TryOn           TryOnTransform       `json:"try_on"`
	AxisAngles      AxisAngles           `json:"axis_angles"`
	Orientation     OrientationState     `json:"orientation"`
	FOV             float64              `json:"fov"`
}

// HasMeasurement reports whether at least one frame was accepted by the
// measurement engine.
func (r FrameResult) HasMeasurement() bool {
	return r.Samples > 0
}

type ProcessorOption func(*Processor)

func WithLogger(logger *logrus.Entry) ProcessorOption {
	return func(p *Processor) {
		p.log = logger
	}
}

// Processor owns the state of one measurement session. It is not safe for
// concurrent use.
type Processor struct {
	cfg    Config
	engine *Engine
	log    *logrus.Entry

	frames      int
	pose        HeadPose
	shape       FaceShape
	inputs      TryOnInputs
	axisAngles  AxisAngles
	orientation OrientationState
	last        FrameResult
}

func NewProcessor(cfg Config, opts ...ProcessorOption) *Processor {
	p := &Processor{
		cfg:    cfg,
		engine: NewEngine(cfg),
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs every stage for one frame. A nil frame means no face was
// detected, in which case the last known state is re-emitted as stale.
func (p *Processor) Process(frame *FrameLandmarks, opts FrameOptions) FrameResult {
	p.frames++

	if frame == nil {
		return p.result(false, true, "no face detected", opts)
	}

	stale := false
	reason := ""
	if _, err := p.engine.Update(frame); err != nil {
		stale = true
		reason = err.Error()
		p.log.WithFields(logrus.Fields{
			"frame": p.frames,
			"error": err,
		}).Debug("Skipping measurement update")
	}

	p.pose = EstimateHeadPose(frame)

	if opts.ClassifyShape {
		shape, err := ClassifyFace(frame)
		if err != nil {
			p.log.WithFields(logrus.Fields{
				"frame": p.frames,
				"error": err,
			}).Debug("Keeping previous face shape")
		} else {
			p.shape = shape
		}
	}

	p.inputs = ComputeTryOnInputs(frame, p.pose, opts.Viewport, p.cfg, p.engine.Calibration().Avg)
	p.axisAngles = TempleAxisAngles(frame, p.cfg)
	p.orientation = CompareDepth(frame, p.cfg.OrientationThreshold)

	return p.result(true, stale, reason, opts)
}

func (p *Processor) result(detected, stale bool, reason string, opts FrameOptions) FrameResult {
	m := p.engine.Last()

	r := FrameResult{
		FrameIndex:   p.frames,
		FaceDetected: detected,
		Stale:        stale,
		Samples:      p.engine.Samples(),
		SkipReason:   reason,
		DetectedPD:   m.DetectedPD,
		PDLeft:       m.PDLeft,
		PDRight:      m.PDRight,
		Width:        m.Width,
		Bridge:       m.Bridge,
		Height:       m.Height,
		Calibration:  p.engine.Calibration(),
		HeadPose:     p.pose,
		AxisAngles:   p.axisAngles,
		Orientation:  p.orientation,
		FOV:          FieldOfView(float64(opts.Viewport.Width)),
	}

	if opts.ClassifyShape && p.shape != "" {
		r.FaceShape = p.shape
		r.FaceSize = SizeFromWidth(m.Width)
		r.Recommendations = Recommendations(p.shape)
	}

	if opts.TryOn {
		r.TryOn = Resolve(p.inputs)
	}

	p.last = r
	return r
}

// Last returns the most recent result without processing a frame.
func (p *Processor) Last() FrameResult {
	return p.last
}

func (p *Processor) Frames() int {
	return p.frames
}

func (p *Processor) Reset() {
	p.engine.Reset()
	p.frames = 0
	p.pose = HeadPose{}
	p.shape = ""
	p.inputs = TryOnInputs{}
	p.axisAngles = AxisAngles{}
	p.orientation = OrientationState{}
	p.last = FrameResult{}
}
