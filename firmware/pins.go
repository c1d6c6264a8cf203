package main

import "machine"

const (
	// Soil moisture sensor, analog
	PIN_SOIL = machine.A0

	// SCD4x CO2/temperature/humidity sensor on the default I2C pins
	I2C_FREQUENCY = 100 * machine.KHz

	// ST7789 240x240 panel on SPI0
	PIN_TFT_RESET     = machine.D1
	PIN_TFT_DC        = machine.D2
	PIN_TFT_CS        = machine.D3
	PIN_TFT_BACKLIGHT = machine.D6
	SPI_FREQUENCY     = 16 * machine.MHz
	TFT_WIDTH         = 240
	TFT_HEIGHT        = 240

	// Soil ADC readings are reduced to 10 bits (0-1023)
	SOIL_ADC_SHIFT = 6

	// Serial configuration
	// Format: "ts_ms,soil,co2,temperature,humidity\n"
	// Example: "4294967295,1023,40000,-10.00,100.00\n" = ~36 bytes per line, once per log interval
	UART_BAUD_RATE = 115200
)
