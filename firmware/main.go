//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"

	"github.com/itohio/greenmon/pkg/clock"
	"github.com/itohio/greenmon/pkg/display"
	"github.com/itohio/greenmon/pkg/logsink"
	"github.com/itohio/greenmon/pkg/monitor"
	"github.com/itohio/greenmon/pkg/sensor"
	"tinygo.org/x/drivers/scd4x"
	"tinygo.org/x/drivers/st7789"
)

func main() {
	// Configure UART for the sample log
	machine.Serial.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Configure soil ADC
	PIN_SOIL.Configure(machine.PinConfig{Mode: machine.PinInput})
	machine.InitADC()
	soilADC := machine.ADC{Pin: PIN_SOIL}
	soilADC.Configure(machine.ADCConfig{})

	// Configure I2C for the SCD4x
	i2c := machine.I2C0
	if err := i2c.Configure(machine.I2CConfig{Frequency: I2C_FREQUENCY}); err != nil {
		halt("I2C configure error", err)
	}
	co2 := scd4x.New(i2c)
	if err := co2.Configure(); err != nil {
		// The monitor keeps running and shows placeholders until the sensor answers
		println("SCD4x configure error:", err.Error())
	}

	// Configure SPI and the panel
	spi := machine.SPI0
	if err := spi.Configure(machine.SPIConfig{Frequency: SPI_FREQUENCY, Mode: 3}); err != nil {
		halt("SPI configure error", err)
	}
	tft := st7789.New(spi, PIN_TFT_RESET, PIN_TFT_DC, PIN_TFT_CS, PIN_TFT_BACKLIGHT)
	tft.Configure(st7789.Config{
		Width:  TFT_WIDTH,
		Height: TFT_HEIGHT,
	})
	tft.FillScreen(background)

	settings := monitor.DefaultSettings()
	clk := clock.NewSystem()

	reader := sensor.NewReader(&soilSensor{adc: soilADC}, &envSensor{dev: co2}, clk, settings.Limits)
	// The SCD4x data-ready flag changes once per 5 s measurement, so polling
	// it every 10 ms keeps I2C traffic low. The read budget is still enforced
	// against the clock, not by counting polls.
	reader.OnPoll = func() { time.Sleep(10 * time.Millisecond) }

	renderer := display.NewRenderer(newPanel(&tft), settings.Layout, settings.Soil)
	logger := logsink.NewLogger(logsink.NewWriterSink(machine.Serial))

	m := monitor.New(settings, clk, reader, renderer, logger)

	// Main loop
	for {
		m.Step()
	}
}

// halt reports a fatal setup error forever.
func halt(msg string, err error) {
	for {
		println(msg+":", err.Error())
		time.Sleep(time.Second)
	}
}
