package monitor

import (
	"context"
	"log"
	"strings"

	"github.com/itohio/greenmon/pkg/clock"
	"github.com/itohio/greenmon/pkg/sensor"
	"github.com/itohio/greenmon/pkg/stats"
)

// Reader performs one bounded acquisition of all sensors.
type Reader interface {
	ReadAll(budgetMs uint32) sensor.Reading
}

// Renderer draws a reading and statistics.
type Renderer interface {
	Render(reading sensor.Reading, snap stats.Snapshot)
}

// Logger records a reading and reports whether it was accepted.
type Logger interface {
	Log(reading sensor.Reading) bool
}

// Activity is a set of scheduled activities.
type Activity uint8

const (
	ActivityRead Activity = 1 << iota
	ActivityDisplay
	ActivityLog
)

// Has reports whether every activity in b is in a.
func (a Activity) Has(b Activity) bool {
	return a&b == b
}

func (a Activity) String() string {
	if a == 0 {
		return "idle"
	}
	var parts []string
	if a.Has(ActivityRead) {
		parts = append(parts, "read")
	}
	if a.Has(ActivityDisplay) {
		parts = append(parts, "display")
	}
	if a.Has(ActivityLog) {
		parts = append(parts, "log")
	}
	return strings.Join(parts, "|")
}

// ScheduleState holds the time each activity last fired.
type ScheduleState struct {
	LastReadMs    uint32
	LastDisplayMs uint32
	LastLogMs     uint32
}

// Counters summarize what the monitor did since start.
type Counters struct {
	Passes       uint64
	Reads        uint64
	EnvFailures  uint64 // reads without environmental data
	Renders      uint64
	Logs         uint64
	LogsRejected uint64
}

// Monitor multiplexes reading, rendering and logging over one loop.
// All its state is touched only from Step; it does no locking.
type Monitor struct {
	settings Settings
	clock    clock.Clock
	reader   Reader
	renderer Renderer
	logger   Logger
	stats    *stats.Accumulator

	state      ScheduleState
	latest     sensor.Reading
	hasReading bool
	envDown    bool
	counters   Counters

	// Idle is called by Run between passes.
	Idle func()
}

// New creates a Monitor. The display and log intervals start counting now,
// so the first render happens one screen interval after start.
func New(settings Settings, clk clock.Clock, reader Reader, renderer Renderer, logger Logger) *Monitor {
	now := clk.Now()
	return &Monitor{
		settings: settings,
		clock:    clk,
		reader:   reader,
		renderer: renderer,
		logger:   logger,
		stats:    stats.New(),
		state: ScheduleState{
			LastReadMs:    now,
			LastDisplayMs: now,
			LastLogMs:     now,
		},
	}
}

// Step runs one pass and returns the activities it dispatched.
// Due checks use a single clock read taken at the start of the pass and are
// evaluated in the fixed order read, display, log.
func (m *Monitor) Step() Activity {
	now := m.clock.Now()
	m.counters.Passes++

	var fired Activity

	if !m.hasReading || clock.Due(now, m.state.LastReadMs, m.settings.ReadPeriodMs) {
		m.read()
		m.state.LastReadMs = now
		fired |= ActivityRead
	}

	if clock.Due(now, m.state.LastDisplayMs, m.settings.ScreenIntervalMs) {
		m.renderer.Render(m.latest, m.stats.Snapshot())
		m.counters.Renders++
		m.state.LastDisplayMs = now
		fired |= ActivityDisplay
	}

	if clock.Due(now, m.state.LastLogMs, m.settings.LogIntervalMs) {
		if m.logger.Log(m.latest) {
			m.counters.Logs++
		} else {
			m.counters.LogsRejected++
		}
		m.state.LastLogMs = now
		fired |= ActivityLog
	}

	return fired
}

func (m *Monitor) read() {
	reading := m.reader.ReadAll(m.settings.SensorTimeoutMs)
	m.latest = reading
	m.hasReading = true
	m.stats.Record(reading)
	m.counters.Reads++

	if !reading.Valid {
		m.counters.EnvFailures++
		if !m.envDown {
			log.Printf("Environmental sensor %s, showing placeholders", reading.Status)
			m.envDown = true
		}
		return
	}
	if m.envDown {
		log.Printf("Environmental sensor recovered")
		m.envDown = false
	}
}

// Run calls Step until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		m.Step()

		if m.Idle != nil {
			m.Idle()
		}
	}
}

// Latest returns the most recent reading, if any.
func (m *Monitor) Latest() (sensor.Reading, bool) {
	return m.latest, m.hasReading
}

// Snapshot returns the current statistics.
func (m *Monitor) Snapshot() stats.Snapshot {
	return m.stats.Snapshot()
}

// State returns the schedule timestamps.
func (m *Monitor) State() ScheduleState {
	return m.state
}

// Counters returns the activity counters.
func (m *Monitor) Counters() Counters {
	return m.counters
}

// Settings returns the settings the monitor runs with.
func (m *Monitor) Settings() Settings {
	return m.settings
}
