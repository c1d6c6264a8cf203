package stats

import (
	"math"

	"github.com/itohio/greenmon/pkg/sensor"
)

// Metric identifies a tracked quantity.
type Metric uint8

const (
	Soil Metric = iota
	CO2
	Temperature
	Humidity

	NumMetrics
)

// Metrics lists all tracked metrics in display order.
var Metrics = [NumMetrics]Metric{Soil, CO2, Temperature, Humidity}

func (m Metric) String() string {
	switch m {
	case Soil:
		return "soil"
	case CO2:
		return "co2"
	case Temperature:
		return "temperature"
	case Humidity:
		return "humidity"
	default:
		return "unknown"
	}
}

// Aggregate holds lifetime statistics of one metric.
// Min <= Mean <= Max holds whenever Count > 0.
type Aggregate struct {
	Min   float64
	Max   float64
	Mean  float64
	Count uint64
}

// Snapshot is a copy of all aggregates, indexed by Metric.
type Snapshot [NumMetrics]Aggregate

// Get returns the aggregate of m.
func (s Snapshot) Get(m Metric) Aggregate {
	if m >= NumMetrics {
		return Aggregate{}
	}
	return s[m]
}

// Accumulator maintains running statistics fed by readings.
// It is owned by a single loop and does no locking.
type Accumulator struct {
	aggs [NumMetrics]Aggregate
}

// New creates an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{}
}

// Record adds the values present in r. Soil is always recorded; the
// environmental metrics only when the reading carries them.
func (a *Accumulator) Record(r sensor.Reading) {
	a.Add(Soil, float64(r.SoilRaw))

	env, ok := r.Env()
	if !ok {
		return
	}
	a.Add(CO2, float64(env.CO2))
	a.Add(Temperature, float64(env.Temperature))
	a.Add(Humidity, float64(env.Humidity))
}

// Add records one value for m. The aggregate is computed aside and stored
// as a whole so no reader can observe a partial update. Non-finite values
// are ignored.
func (a *Accumulator) Add(m Metric, v float64) {
	if m >= NumMetrics || math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}

	next := a.aggs[m]
	next.Count++
	if next.Count == 1 {
		next.Min, next.Max, next.Mean = v, v, v
		a.aggs[m] = next
		return
	}

	if v < next.Min {
		next.Min = v
	}
	if v > next.Max {
		next.Max = v
	}

	// Welford incremental mean
	next.Mean += (v - next.Mean) / float64(next.Count)

	// Rounding can push the mean a hair outside the observed range
	if next.Mean < next.Min {
		next.Mean = next.Min
	} else if next.Mean > next.Max {
		next.Mean = next.Max
	}

	a.aggs[m] = next
}

// Snapshot returns a copy of the current aggregates.
func (a *Accumulator) Snapshot() Snapshot {
	return Snapshot(a.aggs)
}
