package config

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/itohio/greenmon/pkg/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp(t.TempDir(), "test_config_*.yaml")
	require.NoError(t, err)
	_, err = tmpfile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())
	return tmpfile.Name()
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, time.Duration(0), cfg.Intervals.ReadPeriod)
	assert.Equal(t, 2*time.Second, cfg.Intervals.Screen)
	assert.Equal(t, 10*time.Minute, cfg.Intervals.Log)
	assert.Equal(t, 5500*time.Millisecond, cfg.Intervals.SensorTimeout)
	assert.Equal(t, int16(40), cfg.Layout.LabelsY)
	assert.Equal(t, int16(170), cfg.Layout.StatsY)
	assert.Equal(t, int16(210), cfg.Layout.SoilValueX)
	assert.Equal(t, "greenhouse.db", cfg.Storage.Path)
}

func TestDefault_MatchesMonitorSettings(t *testing.T) {
	assert.Equal(t, monitor.DefaultSettings(), Default().Settings())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	name := writeTemp(t, `
serial:
  port: "/dev/ttyUSB1"
  baud_rate: 57600

intervals:
  read_period: 5s
  screen: 1s
  log: 15m
  sensor_timeout: 6s

layout:
  title_y: 4
  labels_y: 30
  stats_y: 150
  labels_x: 2
  values_x: 80
  soil_label_x: 150
  soil_value_x: 200
  line_height: 18
  stats_row_height: 12
  width: 320

soil:
  dry: 900
  wet: 300

limits:
  co2: {min: 300, max: 5000}

storage:
  path: "/var/lib/greenmon/samples.db"
  queue_size: 10
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)

	s := cfg.Settings()
	assert.Equal(t, uint32(5000), s.ReadPeriodMs)
	assert.Equal(t, uint32(1000), s.ScreenIntervalMs)
	assert.Equal(t, uint32(15*60*1000), s.LogIntervalMs)
	assert.Equal(t, uint32(6000), s.SensorTimeoutMs)

	assert.Equal(t, int16(4), s.Layout.TitleY)
	assert.Equal(t, int16(80), s.Layout.ValuesX)
	assert.Equal(t, int16(320), s.Layout.Width)
	assert.Equal(t, uint16(900), s.Soil.Dry)
	assert.Equal(t, float32(5000), s.Limits.CO2.Max)
	// Unspecified limits keep defaults
	assert.Equal(t, float32(100), s.Limits.Humidity.Max)

	assert.Equal(t, "/var/lib/greenmon/samples.db", cfg.Storage.Path)
	assert.Equal(t, 10, cfg.Storage.QueueSize)
}

func TestLoad_InvalidYAML(t *testing.T) {
	name := writeTemp(t, "invalid: yaml: content: [")

	cfg, err := Load(name)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	name := writeTemp(t, `
serial:
  port: "/dev/ttyACM1"
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM1", cfg.Serial.Port)

	// Should use defaults for missing fields
	assert.Equal(t, 2*time.Second, cfg.Intervals.Screen)
	assert.Equal(t, int16(90), cfg.Layout.ValuesX)
	assert.Equal(t, float32(40000), cfg.Limits.CO2.Max)
	assert.Equal(t, uint32(500), cfg.Mock.ResponseMs)
}

func TestLoad_ExplicitZerosFallBack(t *testing.T) {
	name := writeTemp(t, `
intervals:
  screen: 0s
  log: 0s
layout:
  width: 0
soil:
  dry: 0
  wet: 0
`)

	cfg, err := Load(name)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Intervals.Screen)
	assert.Equal(t, 10*time.Minute, cfg.Intervals.Log)
	assert.Equal(t, int16(240), cfg.Layout.Width)
	assert.Equal(t, uint16(800), cfg.Soil.Dry)
}

func TestLoad_InvalidLayout(t *testing.T) {
	name := writeTemp(t, `
layout:
  line_height: -4
`)

	cfg, err := Load(name)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Intervals.Screen = 3 * time.Second
	cfg.Layout.ValuesX = 100

	name := writeTemp(t, "")
	require.NoError(t, cfg.Save(name))

	loaded, err := Load(name)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 3*time.Second, loaded.Intervals.Screen)
	assert.Equal(t, int16(100), loaded.Layout.ValuesX)
	assert.Equal(t, cfg.Settings(), loaded.Settings())
}

func TestMillis(t *testing.T) {
	tests := []struct {
		name    string
		d       time.Duration
		want    uint32
		wantErr bool
	}{
		{name: "zero", d: 0, want: 0},
		{name: "one millisecond", d: time.Millisecond, want: 1},
		{name: "ten minutes", d: 10 * time.Minute, want: 600000},
		{name: "sub-millisecond fraction truncates", d: 1500 * time.Microsecond, want: 1},
		{name: "max", d: time.Duration(math.MaxUint32) * time.Millisecond, want: math.MaxUint32},
		{name: "below one millisecond", d: 500 * time.Microsecond, wantErr: true},
		{name: "negative", d: -time.Second, wantErr: true},
		{name: "wraps", d: 50 * 24 * time.Hour, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Millis(tt.d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_Intervals(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	next := *cfg
	next.Intervals.Screen = 500 * time.Microsecond
	err := next.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval screen")

	next = *cfg
	next.Intervals.Log = 60 * 24 * time.Hour
	assert.Error(t, next.Validate())

	// Validating a copy leaves the original untouched
	assert.Equal(t, 2*time.Second, cfg.Intervals.Screen)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_SubMillisecondInterval(t *testing.T) {
	name := writeTemp(t, `
intervals:
  screen: 500us
`)

	cfg, err := Load(name)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
