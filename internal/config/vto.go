package config

import (
	"os"
	"strconv"
	"time"

	measurementService "ProjectVTO/internal/api/measurement/service"
	"ProjectVTO/pkg/vto"

	"github.com/sirupsen/logrus"
)

// LoadMeasurementConfig reads engine and session tunables from the
// environment. Unset variables keep their defaults; unparsable or invalid
// values are logged and replaced by defaults.
func LoadMeasurementConfig(log *logrus.Logger) measurementService.Config {
	cfg := measurementService.DefaultConfig()
	env := envReader{log: log}

	engine := vto.Config{
		IrisSizeMM:           env.float("VTO_IRIS_SIZE_MM", cfg.VTO.IrisSizeMM),
		MeasurementMaxLen:    env.int("VTO_MEASUREMENT_MAX_LEN", cfg.VTO.MeasurementMaxLen),
		DefaultMaxLen:        env.int("VTO_DEFAULT_MAX_LEN", cfg.VTO.DefaultMaxLen),
		SizeScale:            env.float("VTO_SIZE_SCALE", cfg.VTO.SizeScale),
		DampingX:             env.float("VTO_DAMPING_X", cfg.VTO.DampingX),
		DampingY:             env.float("VTO_DAMPING_Y", cfg.VTO.DampingY),
		DampingZ:             env.float("VTO_DAMPING_Z", cfg.VTO.DampingZ),
		OrientationThreshold: env.float("VTO_ORIENTATION_THRESHOLD", cfg.VTO.OrientationThreshold),
	}
	if err := engine.Validate(); err != nil {
		log.WithField("error", err.Error()).Warn("Invalid engine configuration, using defaults")
	} else {
		cfg.VTO = engine
	}

	cfg.IdleTimeout = env.duration("SESSION_IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.SnapshotTTL = env.duration("SNAPSHOT_TTL", cfg.SnapshotTTL)
	cfg.SnapshotInterval = env.duration("SNAPSHOT_INTERVAL", cfg.SnapshotInterval)
	cfg.MaxSessions = env.int("MAX_SESSIONS", cfg.MaxSessions)

	return cfg
}

type envReader struct {
	log *logrus.Logger
}

func (e envReader) warn(key, value string, err error) {
	e.log.WithFields(logrus.Fields{
		"key":   key,
		"value": value,
		"error": err.Error(),
	}).Warn("Ignoring invalid environment value")
}

func (e envReader) float(key string, def float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		e.warn(key, raw, err)
		return def
	}
	return v
}

func (e envReader) int(key string, def int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.warn(key, raw, err)
		return def
	}
	return v
}

func (e envReader) duration(key string, def time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.warn(key, raw, err)
		return def
	}
	return v
}
