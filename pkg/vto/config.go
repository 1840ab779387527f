package vto

import (
	"fmt"

	"ProjectVTO/pkg/rolling"
)

const (
	IrisSizeMM                  = 12.2
	DefaultSizeScale            = 1.1
	DefaultDampingX             = 0.8
	DefaultDampingY             = 0.6
	DefaultDampingZ             = 0.6
	DefaultOrientationThreshold = 0.01
)

type Config struct {
	IrisSizeMM           float64
	MeasurementMaxLen    int
	DefaultMaxLen        int
	SizeScale            float64
	DampingX             float64
	DampingY             float64
	DampingZ             float64
	OrientationThreshold float64
}

func DefaultConfig() Config {
	return Config{
		IrisSizeMM:           IrisSizeMM,
		MeasurementMaxLen:    rolling.MeasurementMaxLen,
		DefaultMaxLen:        rolling.DefaultMaxLen,
		SizeScale:            DefaultSizeScale,
		DampingX:             DefaultDampingX,
		DampingY:             DefaultDampingY,
		DampingZ:             DefaultDampingZ,
		OrientationThreshold: DefaultOrientationThreshold,
	}
}

func (c Config) Validate() error {
	if c.IrisSizeMM <= 0 {
		return fmt.Errorf("%w: iris size must be positive, got %v", ErrInvalidConfig, c.IrisSizeMM)
	}
	if c.MeasurementMaxLen <= 0 || c.DefaultMaxLen <= 0 {
		return fmt.Errorf("%w: window lengths must be positive, got %d/%d", ErrInvalidConfig, c.MeasurementMaxLen, c.DefaultMaxLen)
	}
	if c.SizeScale <= 0 {
		return fmt.Errorf("%w: size scale must be positive, got %v", ErrInvalidConfig, c.SizeScale)
	}
	if c.OrientationThreshold < 0 {
		return fmt.Errorf("%w: orientation threshold must not be negative, got %v", ErrInvalidConfig, c.OrientationThreshold)
	}
	return nil
}
