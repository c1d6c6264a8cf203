package sensor

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/itohio/greenmon/pkg/clock"
)

// SimConfig parameterizes the simulated greenhouse.
type SimConfig struct {
	SoilBase      float32 `yaml:"soil_base"`      // raw soil value around which moisture drifts
	SoilSwing     float32 `yaml:"soil_swing"`     // amplitude of the moisture cycle
	CO2Base       float32 `yaml:"co2_base"`       // ppm
	CO2Swing      float32 `yaml:"co2_swing"`      // ppm
	TempBase      float32 `yaml:"temp_base"`      // °C
	TempSwing     float32 `yaml:"temp_swing"`     // °C
	HumidityBase  float32 `yaml:"humidity_base"`  // %RH
	HumiditySwing float32 `yaml:"humidity_swing"` // %RH
	Noise         float32 `yaml:"noise"`          // relative noise, 0.01 = 1%
	DayLengthMs   uint32  `yaml:"day_length_ms"`  // period of the simulated day
	ResponseMs    uint32  `yaml:"response_ms"`    // time until a started measurement is ready
	DropoutRate   float64 `yaml:"dropout_rate"`   // probability an exchange never completes
	Seed          int64   `yaml:"seed"`
}

// DefaultSimConfig returns a plausible greenhouse day compressed into ten minutes.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		SoilBase:      520,
		SoilSwing:     180,
		CO2Base:       650,
		CO2Swing:      250,
		TempBase:      24,
		TempSwing:     6,
		HumidityBase:  65,
		HumiditySwing: 15,
		Noise:         0.01,
		DayLengthMs:   10 * 60 * 1000,
		ResponseMs:    500,
		DropoutRate:   0.1,
		Seed:          1,
	}
}

// Greenhouse simulates both sensors for development without hardware.
type Greenhouse struct {
	cfg   SimConfig
	clock clock.Clock
	rng   *rand.Rand

	pending   bool
	startedAt uint32
	dropout   bool
}

var (
	_ SoilSensor = (*Greenhouse)(nil)
	_ EnvSensor  = (*Greenhouse)(nil)
)

// NewGreenhouse creates a simulated greenhouse driven by clk.
func NewGreenhouse(cfg SimConfig, clk clock.Clock) *Greenhouse {
	if cfg.DayLengthMs == 0 {
		cfg.DayLengthMs = DefaultSimConfig().DayLengthMs
	}
	return &Greenhouse{
		cfg:   cfg,
		clock: clk,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}
}

// ReadSoilRaw returns a slowly drifting raw moisture value.
func (g *Greenhouse) ReadSoilRaw() uint16 {
	phase := g.phase(g.clock.Now())
	v := g.cfg.SoilBase + g.cfg.SoilSwing*math32.Cos(phase)
	v = g.noisy(v)
	if v < 0 {
		v = 0
	} else if v > SoilMax {
		v = SoilMax
	}
	return uint16(v)
}

// StartMeasurement begins an exchange. Starting while one is pending keeps
// the pending one, the same way the SCD4x ignores a second start.
func (g *Greenhouse) StartMeasurement() error {
	if g.pending {
		return nil
	}
	g.pending = true
	g.startedAt = g.clock.Now()
	g.dropout = g.rng.Float64() < g.cfg.DropoutRate
	return nil
}

// IsReady reports whether the pending exchange completed.
func (g *Greenhouse) IsReady() bool {
	if !g.pending {
		return false
	}
	if g.dropout {
		// A silent sensor self-resets once it would have answered twice over.
		if clock.Elapsed(g.clock.Now(), g.startedAt) >= 2*g.cfg.ResponseMs+1 {
			g.pending = false
		}
		return false
	}
	return clock.Elapsed(g.clock.Now(), g.startedAt) >= g.cfg.ResponseMs
}

// FetchResult returns the measurement of a completed exchange.
func (g *Greenhouse) FetchResult() (EnvResult, error) {
	if !g.pending || g.dropout {
		return EnvResult{}, ErrNotReady
	}
	g.pending = false

	// CO2 drops during the day (photosynthesis) while temperature rises and
	// humidity falls.
	phase := g.phase(g.startedAt)
	day := math32.Sin(phase)
	return EnvResult{
		CO2:         g.noisy(g.cfg.CO2Base - g.cfg.CO2Swing*day),
		Temperature: g.noisy(g.cfg.TempBase + g.cfg.TempSwing*day),
		Humidity:    g.noisy(g.cfg.HumidityBase - g.cfg.HumiditySwing*day),
	}, nil
}

func (g *Greenhouse) phase(ms uint32) float32 {
	return 2 * math32.Pi * float32(ms%g.cfg.DayLengthMs) / float32(g.cfg.DayLengthMs)
}

func (g *Greenhouse) noisy(v float32) float32 {
	if g.cfg.Noise == 0 {
		return v
	}
	return v * (1 + g.cfg.Noise*(2*g.rng.Float32()-1))
}
