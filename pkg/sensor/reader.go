package sensor

import (
	"github.com/itohio/greenmon/pkg/clock"
)

// Reader acquires soil and environmental values within a time budget.
type Reader struct {
	soil   SoilSensor
	env    EnvSensor
	clock  clock.Clock
	limits Limits

	// OnPoll is called on every iteration of the readiness poll, e.g. to
	// yield the bus or feed a watchdog while an exchange is pending.
	OnPoll func()
}

// NewReader creates a Reader. A zero Limits value disables plausibility checks.
func NewReader(soil SoilSensor, env EnvSensor, clk clock.Clock, limits Limits) *Reader {
	return &Reader{
		soil:   soil,
		env:    env,
		clock:  clk,
		limits: limits,
	}
}

// ReadAll reads the soil sensor, then runs the environmental exchange for at
// most budgetMs milliseconds. A sensor that does not answer in time yields a
// Reading with Valid=false; this is an expected outcome, not an error.
func (r *Reader) ReadAll(budgetMs uint32) Reading {
	start := r.clock.Now()

	soil := r.soil.ReadSoilRaw()
	if soil > SoilMax {
		soil = SoilMax
	}

	reading := Reading{
		TimestampMs: start,
		SoilRaw:     soil,
	}

	res, status := r.exchange(start, budgetMs)
	reading.Status = status
	if status == StatusOK {
		reading.CO2 = res.CO2
		reading.Temperature = res.Temperature
		reading.Humidity = res.Humidity
		reading.Valid = true
	}

	return reading
}

// exchange runs start/poll/fetch. The poll itself never sleeps; it is
// bounded by the clock alone.
func (r *Reader) exchange(start, budgetMs uint32) (EnvResult, Status) {
	if err := r.env.StartMeasurement(); err != nil {
		return EnvResult{}, StatusFailed
	}

	for !r.env.IsReady() {
		if clock.Elapsed(r.clock.Now(), start) >= budgetMs {
			return EnvResult{}, StatusTimeout
		}
		if r.OnPoll != nil {
			r.OnPoll()
		}
	}

	res, err := r.env.FetchResult()
	if err != nil {
		return EnvResult{}, StatusFailed
	}

	if r.limits != (Limits{}) && !r.limits.Accepts(res) {
		return EnvResult{}, StatusImplausible
	}

	return res, StatusOK
}
