package display

import (
	"fmt"

	"github.com/itohio/greenmon/pkg/sensor"
	"github.com/itohio/greenmon/pkg/stats"
)

const (
	// Title is the headline drawn at the top of the screen.
	Title = "Greenhouse Monitor"
	// Placeholder replaces a value the sensor did not deliver.
	Placeholder = "--"
)

// Display is the text drawing capability of a screen.
type Display interface {
	DrawText(x, y int16, s string) error
	ClearRect(x, y, w, h int16) error
}

// SoilScale converts the raw soil value to a moisture percentage.
// Capacitive sensors read high when dry, so Dry is usually above Wet.
type SoilScale struct {
	Dry uint16 `yaml:"dry"`
	Wet uint16 `yaml:"wet"`
}

// DefaultSoilScale is a typical capacitive sensor on a 10-bit ADC.
func DefaultSoilScale() SoilScale {
	return SoilScale{Dry: 800, Wet: 350}
}

// Percent returns moisture in 0..100, or false if the scale is degenerate.
func (s SoilScale) Percent(raw uint16) (int, bool) {
	if s.Dry == s.Wet {
		return 0, false
	}
	p := (float64(s.Dry) - float64(raw)) / (float64(s.Dry) - float64(s.Wet)) * 100
	if p < 0 {
		p = 0
	} else if p > 100 {
		p = 100
	}
	return int(p + 0.5), true
}

// row describes one metric on screen.
type row struct {
	metric stats.Metric
	label  string
	live   string // format of the live value
	stat   string // format of a statistics cell
}

var rows = [...]row{
	{metric: stats.CO2, label: "CO2", live: "%.0f ppm", stat: "%.0f"},
	{metric: stats.Temperature, label: "Temp", live: "%.1f C", stat: "%.1f"},
	{metric: stats.Humidity, label: "Hum", live: "%.0f %%", stat: "%.0f"},
	{metric: stats.Soil, label: "Soil", stat: "%.0f"},
}

// Renderer draws the current reading and the statistics table.
type Renderer struct {
	display Display
	layout  Layout
	soil    SoilScale

	drawn  bool
	errors uint64
}

// NewRenderer creates a Renderer for a display.
func NewRenderer(d Display, layout Layout, soil SoilScale) *Renderer {
	return &Renderer{
		display: d,
		layout:  layout,
		soil:    soil,
	}
}

// Errors returns the number of failed draw operations.
func (r *Renderer) Errors() uint64 {
	return r.errors
}

// Invalidate forces the static parts to be drawn again on the next Render.
func (r *Renderer) Invalidate() {
	r.drawn = false
}

// Render draws the screen. Environmental values that the reading does not
// carry are shown as Placeholder; the statistics keep their last aggregates.
// Draw failures are counted and otherwise ignored.
func (r *Renderer) Render(reading sensor.Reading, snap stats.Snapshot) {
	if !r.drawn {
		r.drawStatic()
	}
	r.drawLive(reading)
	r.drawStats(snap)
}

func (r *Renderer) drawStatic() {
	l := r.layout
	ok := r.clear(0, 0, l.Width, l.Height())
	ok = r.text(l.LabelsX, l.TitleY, Title) && ok

	for i, rw := range rows[:3] {
		ok = r.text(l.LabelsX, l.row(i), rw.label) && ok
	}
	ok = r.text(l.SoilLabelX, l.row(0), "Soil") && ok
	ok = r.text(l.SoilLabelX, l.row(1), "Wet") && ok

	ok = r.text(l.ValuesX, l.statsRow(0), fmt.Sprintf("%6s %6s %6s", "min", "max", "avg")) && ok
	for i, rw := range rows {
		ok = r.text(l.LabelsX, l.statsRow(i+1), rw.label) && ok
	}

	// A failed static pass is repeated on the next render.
	r.drawn = ok
}

func (r *Renderer) drawLive(reading sensor.Reading) {
	l := r.layout
	env, valid := reading.Env()
	values := [3]float32{env.CO2, env.Temperature, env.Humidity}

	valueWidth := l.SoilLabelX - l.ValuesX
	for i, rw := range rows[:3] {
		s := Placeholder
		if valid {
			s = fmt.Sprintf(rw.live, values[i])
		}
		r.clear(l.ValuesX, l.row(i), valueWidth, l.LineHeight)
		r.text(l.ValuesX, l.row(i), s)
	}

	soilWidth := l.Width - l.SoilValueX
	r.clear(l.SoilValueX, l.row(0), soilWidth, 2*l.LineHeight)
	r.text(l.SoilValueX, l.row(0), fmt.Sprintf("%d", reading.SoilRaw))
	pct := Placeholder
	if p, ok := r.soil.Percent(reading.SoilRaw); ok {
		pct = fmt.Sprintf("%d%%", p)
	}
	r.text(l.SoilValueX, l.row(1), pct)
}

func (r *Renderer) drawStats(snap stats.Snapshot) {
	l := r.layout
	width := l.Width - l.ValuesX
	for i, rw := range rows {
		y := l.statsRow(i + 1)
		r.clear(l.ValuesX, y, width, l.StatsRowHeight)
		r.text(l.ValuesX, y, StatsCells(snap.Get(rw.metric), rw.stat))
	}
}

// StatsCells formats min, max and mean of agg in fixed-width columns.
func StatsCells(agg stats.Aggregate, format string) string {
	if agg.Count == 0 {
		return fmt.Sprintf("%6s %6s %6s", Placeholder, Placeholder, Placeholder)
	}
	return fmt.Sprintf("%6s %6s %6s",
		fmt.Sprintf(format, agg.Min),
		fmt.Sprintf(format, agg.Max),
		fmt.Sprintf(format, agg.Mean),
	)
}

func (r *Renderer) text(x, y int16, s string) bool {
	if err := r.display.DrawText(x, y, s); err != nil {
		r.errors++
		return false
	}
	return true
}

func (r *Renderer) clear(x, y, w, h int16) bool {
	if err := r.display.ClearRect(x, y, w, h); err != nil {
		r.errors++
		return false
	}
	return true
}
