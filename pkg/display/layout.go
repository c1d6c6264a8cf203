package display

// Layout maps every screen element to pixel coordinates.
// It is fixed at startup; y values are the top of a text row.
type Layout struct {
	TitleY     int16 `yaml:"title_y"`      // headline
	LabelsY    int16 `yaml:"labels_y"`     // first live-value row
	StatsY     int16 `yaml:"stats_y"`      // top of the statistics table
	LabelsX    int16 `yaml:"labels_x"`     // left margin for labels
	ValuesX    int16 `yaml:"values_x"`     // live values and stats columns
	SoilLabelX int16 `yaml:"soil_label_x"` // soil label column
	SoilValueX int16 `yaml:"soil_value_x"` // soil value column

	LineHeight     int16 `yaml:"line_height"`      // spacing of live-value rows
	StatsRowHeight int16 `yaml:"stats_row_height"` // spacing of statistics rows
	Width          int16 `yaml:"width"`            // screen width, used to clear rows
}

// DefaultLayout is the layout of a 240x240 panel.
func DefaultLayout() Layout {
	return Layout{
		TitleY:     0,
		LabelsY:    40,
		StatsY:     170,
		LabelsX:    0,
		ValuesX:    90,
		SoilLabelX: 160,
		SoilValueX: 210,

		LineHeight:     20,
		StatsRowHeight: 14,
		Width:          240,
	}
}

// row returns the y coordinate of live-value row i.
func (l Layout) row(i int) int16 {
	return l.LabelsY + int16(i)*l.LineHeight
}

// statsRow returns the y coordinate of statistics row i; row 0 is the header.
func (l Layout) statsRow(i int) int16 {
	return l.StatsY + int16(i)*l.StatsRowHeight
}

// Height returns the bottom edge of the statistics table.
func (l Layout) Height() int16 {
	return l.statsRow(len(rows) + 1)
}
