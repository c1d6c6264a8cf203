package logsink

import (
	"errors"
	"io"
	"log"
	"sync"

	"github.com/itohio/greenmon/pkg/sensor"
)

var (
	// ErrQueueFull is returned by Async when the queue has no room.
	ErrQueueFull = errors.New("log queue full")
	// ErrClosed is returned by a sink after Close.
	ErrClosed = errors.New("log sink closed")
)

// Sink stores records. Append must return quickly; slow media are wrapped
// in Async.
type Sink interface {
	Append(rec Record) error
}

// Logger writes readings to a sink on a best-effort basis.
type Logger struct {
	sink Sink

	written uint64
	dropped uint64
	failing bool
}

// NewLogger creates a Logger writing to sink.
func NewLogger(sink Sink) *Logger {
	return &Logger{sink: sink}
}

// Log appends the reading and reports whether the sink accepted it.
// A failing sink skips the record; only the transitions are logged.
func (l *Logger) Log(r sensor.Reading) bool {
	err := l.sink.Append(FromReading(r))
	if err != nil {
		l.dropped++
		if !l.failing {
			log.Printf("Log sink unavailable, skipping samples: %v", err)
			l.failing = true
		}
		return false
	}

	if l.failing {
		log.Printf("Log sink recovered after %d dropped samples", l.dropped)
		l.failing = false
	}
	l.written++
	return true
}

// Written returns the number of records accepted by the sink.
func (l *Logger) Written() uint64 {
	return l.written
}

// Dropped returns the number of records the sink refused.
func (l *Logger) Dropped() uint64 {
	return l.dropped
}

// WriterSink writes record lines to an io.Writer such as a UART or a file.
type WriterSink struct {
	w   io.Writer
	buf []byte
}

// NewWriterSink creates a WriterSink.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w, buf: make([]byte, 0, 64)}
}

// Append writes one line.
func (s *WriterSink) Append(rec Record) error {
	s.buf = rec.AppendLine(s.buf[:0])
	s.buf = append(s.buf, '\n')
	_, err := s.w.Write(s.buf)
	return err
}

// MultiSink fans a record out to several sinks. It fails only if every
// sink fails.
type MultiSink []Sink

// Append appends to all sinks.
func (m MultiSink) Append(rec Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(rec); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 && len(errs) == len(m) {
		return errors.Join(errs...)
	}
	return nil
}

// Async decouples a slow sink from the caller with a bounded queue drained
// by one goroutine.
type Async struct {
	sink Sink
	q    chan Record

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
	failed uint64
}

// NewAsync starts draining into sink. size <= 0 selects a queue of 100.
func NewAsync(sink Sink, size int) *Async {
	if size <= 0 {
		size = 100
	}
	a := &Async{
		sink: sink,
		q:    make(chan Record, size),
		done: make(chan struct{}),
	}
	go a.run()
	return a
}

// Append enqueues rec without blocking.
func (a *Async) Append(rec Record) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}

	select {
	case a.q <- rec:
		return nil
	default:
		return ErrQueueFull
	}
}

// Failed returns the number of records the underlying sink rejected.
func (a *Async) Failed() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.failed
}

// Close stops accepting records and waits until the queue is drained.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.q)
	a.mu.Unlock()

	<-a.done
	return nil
}

func (a *Async) run() {
	defer close(a.done)

	for rec := range a.q {
		if err := a.sink.Append(rec); err != nil {
			log.Printf("Failed to store record %s: %v", rec, err)
			a.mu.Lock()
			a.failed++
			a.mu.Unlock()
		}
	}
}
