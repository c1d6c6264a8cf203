package monitor

import (
	"errors"
	"fmt"

	"github.com/itohio/greenmon/pkg/display"
	"github.com/itohio/greenmon/pkg/sensor"
)

// Reference timing, in milliseconds.
const (
	DefaultReadPeriodMs     = 0              // read on every pass
	DefaultScreenIntervalMs = 2000           // 2 seconds
	DefaultLogIntervalMs    = 10 * 60 * 1000 // 10 minutes
	DefaultSensorTimeoutMs  = 5500           // 5.5 seconds
)

// Settings is the immutable configuration of a monitor.
type Settings struct {
	ReadPeriodMs     uint32
	ScreenIntervalMs uint32
	LogIntervalMs    uint32
	SensorTimeoutMs  uint32

	Layout display.Layout
	Soil   display.SoilScale
	Limits sensor.Limits
}

// DefaultSettings returns the reference configuration.
func DefaultSettings() Settings {
	return Settings{
		ReadPeriodMs:     DefaultReadPeriodMs,
		ScreenIntervalMs: DefaultScreenIntervalMs,
		LogIntervalMs:    DefaultLogIntervalMs,
		SensorTimeoutMs:  DefaultSensorTimeoutMs,
		Layout:           display.DefaultLayout(),
		Soil:             display.DefaultSoilScale(),
		Limits:           sensor.DefaultLimits(),
	}
}

// Validate checks that the settings describe a runnable monitor.
func (s Settings) Validate() error {
	var errs []error
	if s.ScreenIntervalMs == 0 {
		errs = append(errs, errors.New("screen interval must be positive"))
	}
	if s.LogIntervalMs == 0 {
		errs = append(errs, errors.New("log interval must be positive"))
	}
	if s.SensorTimeoutMs == 0 {
		errs = append(errs, errors.New("sensor timeout must be positive"))
	}
	if s.Layout.Width <= 0 {
		errs = append(errs, fmt.Errorf("layout width must be positive, got %d", s.Layout.Width))
	}
	if s.Layout.LineHeight <= 0 || s.Layout.StatsRowHeight <= 0 {
		errs = append(errs, errors.New("layout row heights must be positive"))
	}
	return errors.Join(errs...)
}
