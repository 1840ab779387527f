package config

import (
	"io"
	"strings"
	"testing"
	"time"

	"ProjectVTO/pkg/vto"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestLoadMeasurementConfig(t *testing.T) {
	t.Setenv("VTO_IRIS_SIZE_MM", "11.7")
	t.Setenv("VTO_DAMPING_Z", "0.5")
	t.Setenv("VTO_MEASUREMENT_MAX_LEN", "not-a-number")
	t.Setenv("SESSION_IDLE_TIMEOUT", "2m")
	t.Setenv("SNAPSHOT_TTL", "forever")

	cfg := LoadMeasurementConfig(quietLogger())

	if cfg.VTO.IrisSizeMM != 11.7 {
		t.Errorf("IrisSizeMM = %v, want 11.7", cfg.VTO.IrisSizeMM)
	}
	if cfg.VTO.DampingZ != 0.5 {
		t.Errorf("DampingZ = %v, want 0.5", cfg.VTO.DampingZ)
	}
	if cfg.VTO.MeasurementMaxLen != vto.DefaultConfig().MeasurementMaxLen {
		t.Errorf("MeasurementMaxLen = %d, want default", cfg.VTO.MeasurementMaxLen)
	}
	if cfg.IdleTimeout != 2*time.Minute {
		t.Errorf("IdleTimeout = %v, want 2m", cfg.IdleTimeout)
	}
	if cfg.SnapshotTTL != 30*time.Minute {
		t.Errorf("SnapshotTTL = %v, want default", cfg.SnapshotTTL)
	}
}

func TestLoadMeasurementConfigRejectsInvalidEngine(t *testing.T) {
	t.Setenv("VTO_IRIS_SIZE_MM", "-1")
	t.Setenv("VTO_DAMPING_X", "0.2")

	cfg := LoadMeasurementConfig(quietLogger())

	if cfg.VTO != vto.DefaultConfig() {
		t.Errorf("VTO = %+v, want defaults", cfg.VTO)
	}
}

func TestNewValidatorUsesJSONNames(t *testing.T) {
	type request struct {
		SessionID string `json:"session_id" validate:"required"`
	}

	err := NewValidator().Struct(request{})
	if err == nil || !strings.Contains(err.Error(), "session_id") {
		t.Errorf("Struct() error = %v, want the json field name", err)
	}
}
