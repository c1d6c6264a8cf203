package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/greenmon/pkg/config"
	"github.com/itohio/greenmon/pkg/link"
)

// showSettingsDialog displays a settings dialog with tabs for the configuration.
// Valid changes are saved immediately and apply on the next connect.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createIntervalsTab(state),
		createSoilTab(state),
		createStorageTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(500, 400))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(500, 400))
	d.Show()
}

// saveConfig validates next and only then makes it the active configuration.
func saveConfig(state *appState, next config.Config) {
	if err := next.Validate(); err != nil {
		dialog.ShowError(fmt.Errorf("invalid settings: %w", err), state.window)
		return
	}
	*state.cfg = next
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := link.Ports()
	portOptions := []string{}
	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == currentPort {
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentPort != "" {
		portSelect.SetSelected(currentPort)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			next := *state.cfg
			if portSelect.Selected != "" {
				next.Serial.Port = portSelect.Selected
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				next.Serial.BaudRate = baud
			}
			saveConfig(state, next)
		},
	}

	return container.NewTabItem("Serial", form)
}

// createIntervalsTab creates the scheduler timing tab.
func createIntervalsTab(state *appState) *container.TabItem {
	readEntry := widget.NewEntry()
	readEntry.SetText(state.cfg.Intervals.ReadPeriod.String())

	screenEntry := widget.NewEntry()
	screenEntry.SetText(state.cfg.Intervals.Screen.String())

	logEntry := widget.NewEntry()
	logEntry.SetText(state.cfg.Intervals.Log.String())

	timeoutEntry := widget.NewEntry()
	timeoutEntry.SetText(state.cfg.Intervals.SensorTimeout.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Read Period (0 = every pass)", Widget: readEntry},
			{Text: "Screen Refresh", Widget: screenEntry},
			{Text: "Log Interval", Widget: logEntry},
			{Text: "Sensor Timeout", Widget: timeoutEntry},
		},
		OnSubmit: func() {
			next := *state.cfg
			if d, err := time.ParseDuration(readEntry.Text); err == nil && d >= 0 {
				next.Intervals.ReadPeriod = d
			}
			if d, err := time.ParseDuration(screenEntry.Text); err == nil && d > 0 {
				next.Intervals.Screen = d
			}
			if d, err := time.ParseDuration(logEntry.Text); err == nil && d > 0 {
				next.Intervals.Log = d
			}
			if d, err := time.ParseDuration(timeoutEntry.Text); err == nil && d > 0 {
				next.Intervals.SensorTimeout = d
			}
			saveConfig(state, next)
		},
	}

	return container.NewTabItem("Intervals", form)
}

// createSoilTab creates the soil calibration tab.
func createSoilTab(state *appState) *container.TabItem {
	dryEntry := widget.NewEntry()
	dryEntry.SetText(strconv.Itoa(int(state.cfg.Soil.Dry)))

	wetEntry := widget.NewEntry()
	wetEntry.SetText(strconv.Itoa(int(state.cfg.Soil.Wet)))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Dry Reading", Widget: dryEntry},
			{Text: "Wet Reading", Widget: wetEntry},
		},
		OnSubmit: func() {
			next := *state.cfg
			dry, errDry := strconv.ParseUint(dryEntry.Text, 10, 16)
			wet, errWet := strconv.ParseUint(wetEntry.Text, 10, 16)
			if errDry == nil && errWet == nil && dry != wet {
				next.Soil.Dry = uint16(dry)
				next.Soil.Wet = uint16(wet)
			}
			saveConfig(state, next)
		},
	}

	return container.NewTabItem("Soil", form)
}

// createStorageTab creates the sample storage tab.
func createStorageTab(state *appState) *container.TabItem {
	pathEntry := widget.NewEntry()
	pathEntry.SetText(state.cfg.Storage.Path)

	queueEntry := widget.NewEntry()
	queueEntry.SetText(strconv.Itoa(state.cfg.Storage.QueueSize))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Database (restart to apply)", Widget: pathEntry},
			{Text: "Queue Size", Widget: queueEntry},
		},
		OnSubmit: func() {
			next := *state.cfg
			if pathEntry.Text != "" {
				next.Storage.Path = pathEntry.Text
			}
			if n, err := strconv.Atoi(queueEntry.Text); err == nil && n > 0 {
				next.Storage.QueueSize = n
			}
			saveConfig(state, next)
		},
	}

	return container.NewTabItem("Storage", form)
}

// createMockTab creates the simulated greenhouse tab.
func createMockTab(state *appState) *container.TabItem {
	dayEntry := widget.NewEntry()
	dayEntry.SetText((time.Duration(state.cfg.Mock.DayLengthMs) * time.Millisecond).String())

	responseEntry := widget.NewEntry()
	responseEntry.SetText((time.Duration(state.cfg.Mock.ResponseMs) * time.Millisecond).String())

	dropoutEntry := widget.NewEntry()
	dropoutEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.DropoutRate))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.Noise))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Day Length", Widget: dayEntry},
			{Text: "Sensor Response", Widget: responseEntry},
			{Text: "Dropout Rate (0..1)", Widget: dropoutEntry},
			{Text: "Noise (relative)", Widget: noiseEntry},
		},
		OnSubmit: func() {
			next := *state.cfg
			if d, err := time.ParseDuration(dayEntry.Text); err == nil {
				if v, err := config.Millis(d); err == nil && v > 0 {
					next.Mock.DayLengthMs = v
				}
			}
			if d, err := time.ParseDuration(responseEntry.Text); err == nil {
				if v, err := config.Millis(d); err == nil && v > 0 {
					next.Mock.ResponseMs = v
				}
			}
			if v, err := strconv.ParseFloat(dropoutEntry.Text, 64); err == nil && v >= 0 && v <= 1 {
				next.Mock.DropoutRate = v
			}
			if v, err := strconv.ParseFloat(noiseEntry.Text, 32); err == nil && v >= 0 {
				next.Mock.Noise = float32(v)
			}
			saveConfig(state, next)
		},
	}

	return container.NewTabItem("Mock", form)
}
