package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/itohio/greenmon/pkg/clock"
	"github.com/itohio/greenmon/pkg/display"
	"github.com/itohio/greenmon/pkg/link"
	"github.com/itohio/greenmon/pkg/logsink"
	"github.com/itohio/greenmon/pkg/monitor"
	"github.com/itohio/greenmon/pkg/screen"
	"github.com/itohio/greenmon/pkg/sensor"
	"github.com/itohio/greenmon/pkg/stats"
)

const (
	// idleInterval paces the host monitor loop; the device loop spins freely.
	idleInterval = 10 * time.Millisecond
	// statusInterval throttles status line updates.
	statusInterval = time.Second
)

// session is a running data source feeding the screen.
type session interface {
	// Stop stops the session and waits for its goroutines to finish.
	Stop()
}

// flushRenderer pushes a finished frame to the window.
type flushRenderer struct {
	renderer *display.Renderer
	screen   *screen.ScreenWidget
}

func (r *flushRenderer) Render(reading sensor.Reading, snap stats.Snapshot) {
	r.renderer.Render(reading, snap)
	r.screen.Flush()
}

// newStorageSink wraps the sample store in a bounded queue so a slow database
// never stalls the loop. It returns nil when storage is disabled.
func newStorageSink(state *appState) *logsink.Async {
	if state.store == nil {
		return nil
	}
	return logsink.NewAsync(state.store, state.cfg.Storage.QueueSize)
}

// mockSession runs the monitor core on the host against simulated sensors.
type mockSession struct {
	cancel  context.CancelFunc
	done    chan struct{}
	storage *logsink.Async
}

func startMock(state *appState) (session, error) {
	settings := state.cfg.Settings()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	clk := clock.NewSystem()
	greenhouse := sensor.NewGreenhouse(state.cfg.Mock, clk)
	reader := sensor.NewReader(greenhouse, greenhouse, clk, settings.Limits)
	// Yield while waiting for the simulated sensor
	reader.OnPoll = func() { time.Sleep(time.Millisecond) }

	renderer := &flushRenderer{
		renderer: display.NewRenderer(state.screen, settings.Layout, settings.Soil),
		screen:   state.screen,
	}

	s := &mockSession{
		done:    make(chan struct{}),
		storage: newStorageSink(state),
	}

	sinks := logsink.MultiSink{logsink.NewWriterSink(os.Stdout)}
	if s.storage != nil {
		sinks = append(sinks, s.storage)
	}
	logger := logsink.NewLogger(sinks)

	m := monitor.New(settings, clk, reader, renderer, logger)

	var lastStatus time.Time
	m.Idle = func() {
		time.Sleep(idleInterval)
		if time.Since(lastStatus) < statusInterval {
			return
		}
		lastStatus = time.Now()
		setStatus(state, monitorStatus(m.Counters(), logger))
	}

	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())

	go func() {
		defer close(s.done)
		if err := m.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Monitor stopped: %v", err)
		}
	}()

	return s, nil
}

func (s *mockSession) Stop() {
	s.cancel()
	<-s.done
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			log.Printf("Error closing sample storage: %v", err)
		}
	}
}

func monitorStatus(c monitor.Counters, logger *logsink.Logger) string {
	return fmt.Sprintf("Passes: %d   Reads: %d   Sensor failures: %d   Logged: %d   Dropped: %d",
		c.Passes, c.Reads, c.EnvFailures, logger.Written(), logger.Dropped())
}

// serialSession renders records received from the device.
type serialSession struct {
	link    link.Link
	done    chan struct{}
	storage *logsink.Async
}

func startSerial(state *appState) (session, error) {
	l := link.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, link.DefaultBufferSize)
	if err := l.Connect(); err != nil {
		return nil, err
	}
	return runLink(state, l), nil
}

// runLink consumes records from l until it closes. The device only sends
// logged samples, so the screen and statistics advance once per log interval.
func runLink(state *appState, l link.Link) *serialSession {
	s := &serialSession{
		link:    l,
		done:    make(chan struct{}),
		storage: newStorageSink(state),
	}

	renderer := &flushRenderer{
		renderer: display.NewRenderer(state.screen, state.cfg.Layout, state.cfg.Soil),
		screen:   state.screen,
	}
	acc := stats.New()
	limits := state.cfg.Limits

	go func() {
		defer close(s.done)

		var received, stored uint64
		for rec := range l.Records() {
			received++
			if s.storage != nil {
				if err := s.storage.Append(rec); err != nil {
					log.Printf("Dropping sample at %d ms: %v", rec.TimestampMs, err)
				} else {
					stored++
				}
			}

			reading := checkReading(rec, limits)
			acc.Record(reading)
			renderer.Render(reading, acc.Snapshot())

			setStatus(state, fmt.Sprintf("Received: %d   Stored: %d   Last: %s", received, stored, rec))
		}
	}()

	return s
}

// checkReading converts rec and applies the same plausibility limits the
// device applies to its own reads.
func checkReading(rec logsink.Record, limits sensor.Limits) sensor.Reading {
	reading := rec.Reading()
	env, ok := reading.Env()
	if ok && limits != (sensor.Limits{}) && !limits.Accepts(env) {
		reading.CO2, reading.Temperature, reading.Humidity = 0, 0, 0
		reading.Valid = false
		reading.Status = sensor.StatusImplausible
	}
	return reading
}

func (s *serialSession) Stop() {
	if err := s.link.Close(); err != nil {
		log.Printf("Error closing link: %v", err)
	}
	<-s.done
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			log.Printf("Error closing sample storage: %v", err)
		}
	}
}
