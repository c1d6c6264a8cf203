package sensor

import (
	"errors"

	"github.com/chewxy/math32"
)

// SoilMax is the upper bound of the raw soil value (10-bit analog domain).
const SoilMax = 1023

// ErrNotReady is returned by FetchResult when no measurement is available.
var ErrNotReady = errors.New("measurement not ready")

// SoilSensor is the synchronous soil moisture capability.
type SoilSensor interface {
	ReadSoilRaw() uint16
}

// EnvSensor is the CO2/temperature/humidity capability.
// It is driven as a request/response exchange: StartMeasurement, then IsReady
// polled without blocking, then FetchResult once IsReady reports true.
type EnvSensor interface {
	StartMeasurement() error
	IsReady() bool
	FetchResult() (EnvResult, error)
}

// EnvResult is one environmental measurement.
type EnvResult struct {
	CO2         float32 // ppm
	Temperature float32 // °C
	Humidity    float32 // %RH
}

// Status is the outcome of the environmental part of a read.
type Status uint8

const (
	StatusOK Status = iota
	StatusTimeout
	StatusFailed
	StatusImplausible
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTimeout:
		return "timeout"
	case StatusFailed:
		return "failed"
	case StatusImplausible:
		return "implausible"
	default:
		return "unknown"
	}
}

// Reading is the result of one ReadAll call. Soil is always populated;
// CO2, Temperature and Humidity carry meaning only when Valid is true.
type Reading struct {
	TimestampMs uint32
	SoilRaw     uint16
	CO2         float32
	Temperature float32
	Humidity    float32
	Valid       bool
	Status      Status
}

// Env returns the environmental values and whether they are present.
func (r Reading) Env() (EnvResult, bool) {
	if !r.Valid {
		return EnvResult{}, false
	}
	return EnvResult{CO2: r.CO2, Temperature: r.Temperature, Humidity: r.Humidity}, true
}

// Range is an inclusive plausibility interval.
type Range struct {
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

// Contains reports whether v is a number inside the range.
func (r Range) Contains(v float32) bool {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return false
	}
	return v >= r.Min && v <= r.Max
}

// Limits bounds the values a healthy environmental sensor can report.
type Limits struct {
	CO2         Range `yaml:"co2"`
	Temperature Range `yaml:"temperature"`
	Humidity    Range `yaml:"humidity"`
}

// DefaultLimits matches the SCD4x datasheet operating ranges.
func DefaultLimits() Limits {
	return Limits{
		CO2:         Range{Min: 0, Max: 40000},
		Temperature: Range{Min: -10, Max: 60},
		Humidity:    Range{Min: 0, Max: 100},
	}
}

// Accepts reports whether every field of res is plausible.
func (l Limits) Accepts(res EnvResult) bool {
	return l.CO2.Contains(res.CO2) &&
		l.Temperature.Contains(res.Temperature) &&
		l.Humidity.Contains(res.Humidity)
}
