package main

import (
	"image/color"
	"machine"

	"github.com/itohio/greenmon/pkg/display"
	"github.com/itohio/greenmon/pkg/sensor"
	"tinygo.org/x/drivers/scd4x"
	"tinygo.org/x/drivers/st7789"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// soilSensor reads the analog moisture sensor.
type soilSensor struct {
	adc machine.ADC
}

func (p *soilSensor) ReadSoilRaw() uint16 {
	return p.adc.Get() >> SOIL_ADC_SHIFT
}

// envSensor drives an SCD4x in periodic mode. The sensor produces a new
// measurement every 5 s, so starting an exchange only needs to start periodic
// mode once; readiness is the sensor's data-ready flag.
type envSensor struct {
	dev     *scd4x.Device
	running bool
}

func (s *envSensor) StartMeasurement() error {
	if s.running {
		return nil
	}
	if err := s.dev.StartPeriodicMeasurement(); err != nil {
		return err
	}
	s.running = true
	return nil
}

func (s *envSensor) IsReady() bool {
	ready, err := s.dev.DataReady()
	return err == nil && ready
}

func (s *envSensor) FetchResult() (sensor.EnvResult, error) {
	co2, err := s.dev.ReadCO2()
	if err != nil {
		// A failed read may mean the sensor reset; start periodic mode again
		s.running = false
		return sensor.EnvResult{}, err
	}
	t, err := s.dev.ReadTemperature()
	if err != nil {
		s.running = false
		return sensor.EnvResult{}, err
	}
	h, err := s.dev.ReadHumidity()
	if err != nil {
		s.running = false
		return sensor.EnvResult{}, err
	}

	// Driver units: t = milli-°C, h = milli-%RH
	return sensor.EnvResult{
		CO2:         float32(co2),
		Temperature: float32(t) / 1000.0,
		Humidity:    float32(h) / 1000.0,
	}, nil
}

var (
	background = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	foreground = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// fontAscent moves layout row tops to the font baseline.
const fontAscent = 10

// panel draws text on the ST7789.
type panel struct {
	dev  *st7789.Device
	font *tinyfont.Font
}

var _ display.Display = (*panel)(nil)

func (p *panel) DrawText(x, y int16, s string) error {
	tinyfont.WriteLine(p.dev, p.font, x, y+fontAscent, s, foreground)
	return nil
}

func (p *panel) ClearRect(x, y, w, h int16) error {
	return p.dev.FillRectangle(x, y, w, h, background)
}

func newPanel(dev *st7789.Device) *panel {
	return &panel{dev: dev, font: &proggy.TinySZ8pt7b}
}
