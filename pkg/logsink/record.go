package logsink

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/itohio/greenmon/pkg/sensor"
)

// Unavailable marks a field the sensor did not deliver.
const Unavailable = "NA"

// Record is one logged sample.
type Record struct {
	TimestampMs uint32
	SoilRaw     uint16
	CO2         float32
	Temperature float32
	Humidity    float32
	Valid       bool // environmental fields are present
}

// FromReading converts a reading into a record.
func FromReading(r sensor.Reading) Record {
	rec := Record{
		TimestampMs: r.TimestampMs,
		SoilRaw:     r.SoilRaw,
	}
	if env, ok := r.Env(); ok {
		rec.CO2 = env.CO2
		rec.Temperature = env.Temperature
		rec.Humidity = env.Humidity
		rec.Valid = true
	}
	return rec
}

// Reading converts the record back into a reading.
func (r Record) Reading() sensor.Reading {
	reading := sensor.Reading{
		TimestampMs: r.TimestampMs,
		SoilRaw:     r.SoilRaw,
		Status:      sensor.StatusTimeout,
	}
	if r.Valid {
		reading.CO2 = r.CO2
		reading.Temperature = r.Temperature
		reading.Humidity = r.Humidity
		reading.Valid = true
		reading.Status = sensor.StatusOK
	}
	return reading
}

// AppendLine appends the record as a line without the trailing newline.
// Format: ts_ms,soil,co2,temperature,humidity
// Example: 600000,512,645,23.41,61.20 or 600000,512,NA,NA,NA
func (r Record) AppendLine(dst []byte) []byte {
	dst = strconv.AppendUint(dst, uint64(r.TimestampMs), 10)
	dst = append(dst, ',')
	dst = strconv.AppendUint(dst, uint64(r.SoilRaw), 10)
	for i, v := range [3]float32{r.CO2, r.Temperature, r.Humidity} {
		dst = append(dst, ',')
		if !r.Valid {
			dst = append(dst, Unavailable...)
			continue
		}
		prec := 2
		if i == 0 {
			prec = 0
		}
		dst = strconv.AppendFloat(dst, float64(v), 'f', prec, 32)
	}
	return dst
}

// String returns the record line.
func (r Record) String() string {
	return string(r.AppendLine(nil))
}

// Parse parses a record line produced by AppendLine.
// A line with some but not all environmental fields present is rejected,
// as is a non-finite value.
func Parse(line string) (Record, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 5 {
		return Record{}, fmt.Errorf("invalid line format: expected 5 comma-separated values, got %d", len(parts))
	}

	ts, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	soil, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return Record{}, fmt.Errorf("invalid soil value: %w", err)
	}
	if soil > sensor.SoilMax {
		return Record{}, fmt.Errorf("soil value out of range: %d (max %d)", soil, sensor.SoilMax)
	}

	rec := Record{
		TimestampMs: uint32(ts),
		SoilRaw:     uint16(soil),
	}

	missing := 0
	for _, p := range parts[2:] {
		if p == Unavailable {
			missing++
		}
	}
	switch missing {
	case 3:
		return rec, nil
	case 0:
	default:
		return Record{}, fmt.Errorf("partial environmental fields: %d of 3 unavailable", missing)
	}

	var values [3]float32
	names := [3]string{"co2", "temperature", "humidity"}
	for i, p := range parts[2:] {
		v, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return Record{}, fmt.Errorf("invalid %s: %w", names[i], err)
		}
		f := float32(v)
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return Record{}, fmt.Errorf("invalid %s: %q is not finite", names[i], p)
		}
		values[i] = f
	}

	rec.CO2, rec.Temperature, rec.Humidity = values[0], values[1], values[2]
	rec.Valid = true
	return rec, nil
}
