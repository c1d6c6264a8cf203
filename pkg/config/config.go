package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/itohio/greenmon/pkg/display"
	"github.com/itohio/greenmon/pkg/monitor"
	"github.com/itohio/greenmon/pkg/sensor"
	"gopkg.in/yaml.v3"
)

// Config represents the host application configuration.
type Config struct {
	Serial    SerialConfig      `yaml:"serial"`
	Intervals IntervalsConfig   `yaml:"intervals"`
	Layout    display.Layout    `yaml:"layout"`
	Soil      display.SoilScale `yaml:"soil"`
	Limits    sensor.Limits     `yaml:"limits"`
	Storage   StorageConfig     `yaml:"storage"`
	Mock      sensor.SimConfig  `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// IntervalsConfig contains the scheduler timing.
type IntervalsConfig struct {
	ReadPeriod    time.Duration `yaml:"read_period"` // 0 = read on every pass
	Screen        time.Duration `yaml:"screen"`
	Log           time.Duration `yaml:"log"`
	SensorTimeout time.Duration `yaml:"sensor_timeout"`
}

// StorageConfig contains the sample database configuration.
type StorageConfig struct {
	Path      string `yaml:"path"`
	QueueSize int    `yaml:"queue_size"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	s := monitor.DefaultSettings()
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0", // "COM3" on Windows
			BaudRate: 115200,
		},
		Intervals: IntervalsConfig{
			ReadPeriod:    ms(s.ReadPeriodMs),
			Screen:        ms(s.ScreenIntervalMs),
			Log:           ms(s.LogIntervalMs),
			SensorTimeout: ms(s.SensorTimeoutMs),
		},
		Layout: s.Layout,
		Soil:   s.Soil,
		Limits: s.Limits,
		Storage: StorageConfig{
			Path:      "greenhouse.db",
			QueueSize: 100,
		},
		Mock: sensor.DefaultSimConfig(),
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports intervals that do not fit the monitor's millisecond
// clock and settings the monitor rejects.
func (c *Config) Validate() error {
	var errs []error
	intervals := []struct {
		name string
		d    time.Duration
	}{
		{"read_period", c.Intervals.ReadPeriod},
		{"screen", c.Intervals.Screen},
		{"log", c.Intervals.Log},
		{"sensor_timeout", c.Intervals.SensorTimeout},
	}
	for _, iv := range intervals {
		if _, err := Millis(iv.d); err != nil {
			errs = append(errs, fmt.Errorf("interval %s: %w", iv.name, err))
		}
	}
	if c.Mock.DayLengthMs == 0 {
		errs = append(errs, errors.New("mock day length must be positive"))
	}
	if err := c.Settings().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Millis converts d to the monitor's millisecond units. Durations that would
// truncate to zero or wrap are rejected.
func Millis(d time.Duration) (uint32, error) {
	switch {
	case d < 0:
		return 0, fmt.Errorf("%s is negative", d)
	case d > 0 && d < time.Millisecond:
		return 0, fmt.Errorf("%s is shorter than 1ms", d)
	case d.Milliseconds() > math.MaxUint32:
		return 0, fmt.Errorf("%s exceeds %s", d, ms(math.MaxUint32))
	}
	return uint32(d.Milliseconds()), nil
}

// Settings converts the configuration into monitor settings.
func (c *Config) Settings() monitor.Settings {
	return monitor.Settings{
		ReadPeriodMs:     uint32(c.Intervals.ReadPeriod.Milliseconds()),
		ScreenIntervalMs: uint32(c.Intervals.Screen.Milliseconds()),
		LogIntervalMs:    uint32(c.Intervals.Log.Milliseconds()),
		SensorTimeoutMs:  uint32(c.Intervals.SensorTimeout.Milliseconds()),
		Layout:           c.Layout,
		Soil:             c.Soil,
		Limits:           c.Limits,
	}
}

// ensureDefaults replaces explicit zero values that would leave the monitor
// unusable. Zero layout coordinates are legitimate and kept.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Intervals.Screen == 0 {
		c.Intervals.Screen = def.Intervals.Screen
	}
	if c.Intervals.Log == 0 {
		c.Intervals.Log = def.Intervals.Log
	}
	if c.Intervals.SensorTimeout == 0 {
		c.Intervals.SensorTimeout = def.Intervals.SensorTimeout
	}

	if c.Layout.Width == 0 {
		c.Layout.Width = def.Layout.Width
	}
	if c.Layout.LineHeight == 0 {
		c.Layout.LineHeight = def.Layout.LineHeight
	}
	if c.Layout.StatsRowHeight == 0 {
		c.Layout.StatsRowHeight = def.Layout.StatsRowHeight
	}

	if c.Soil.Dry == c.Soil.Wet {
		c.Soil = def.Soil
	}

	if c.Limits.CO2 == (sensor.Range{}) {
		c.Limits.CO2 = def.Limits.CO2
	}
	if c.Limits.Temperature == (sensor.Range{}) {
		c.Limits.Temperature = def.Limits.Temperature
	}
	if c.Limits.Humidity == (sensor.Range{}) {
		c.Limits.Humidity = def.Limits.Humidity
	}

	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	if c.Storage.QueueSize == 0 {
		c.Storage.QueueSize = def.Storage.QueueSize
	}

	if c.Mock.DayLengthMs == 0 {
		c.Mock.DayLengthMs = def.Mock.DayLengthMs
	}
	if c.Mock.ResponseMs == 0 {
		c.Mock.ResponseMs = def.Mock.ResponseMs
	}
}

func ms(v uint32) time.Duration {
	return time.Duration(v) * time.Millisecond
}
