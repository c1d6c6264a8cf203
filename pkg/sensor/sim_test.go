package sensor

import (
	"testing"

	"github.com/itohio/greenmon/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreenhouse_Responds(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.DropoutRate = 0
	clk := clock.NewFake(0)
	clk.Step = 1
	g := NewGreenhouse(cfg, clk)

	reading := NewReader(g, g, clk, DefaultLimits()).ReadAll(5500)
	require.True(t, reading.Valid, "status: %s", reading.Status)
	assert.LessOrEqual(t, reading.SoilRaw, uint16(SoilMax))
	assert.InDelta(t, cfg.CO2Base, reading.CO2, float64((cfg.CO2Swing+cfg.CO2Base)*(1+cfg.Noise)))
	assert.InDelta(t, cfg.TempBase, reading.Temperature, float64((cfg.TempSwing+cfg.TempBase)*(1+cfg.Noise)))
	assert.InDelta(t, cfg.HumidityBase, reading.Humidity, float64((cfg.HumiditySwing+cfg.HumidityBase)*(1+cfg.Noise)))
}

func TestGreenhouse_Dropout(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.DropoutRate = 1
	clk := clock.NewFake(0)
	clk.Step = 1
	g := NewGreenhouse(cfg, clk)
	r := NewReader(g, g, clk, DefaultLimits())

	for range 3 {
		reading := r.ReadAll(5500)
		assert.False(t, reading.Valid)
		assert.Equal(t, StatusTimeout, reading.Status)
	}

	_, err := g.FetchResult()
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestGreenhouse_NotStarted(t *testing.T) {
	g := NewGreenhouse(DefaultSimConfig(), clock.NewFake(0))
	assert.False(t, g.IsReady())
	_, err := g.FetchResult()
	assert.ErrorIs(t, err, ErrNotReady)
}
