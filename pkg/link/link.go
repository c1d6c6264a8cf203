package link

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/itohio/greenmon/pkg/logsink"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate matches the firmware UART configuration.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size of the records channel.
	DefaultBufferSize = 100
)

// ErrNotConnected is returned when the link is used before Connect.
var ErrNotConnected = errors.New("not connected")

// Link is a source of records sent by the monitor.
type Link interface {
	Connect() error
	Close() error
	Records() <-chan logsink.Record
	IsConnected() bool
}

var (
	_ Link = (*Serial)(nil)
	_ Link = (*Stream)(nil)
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(names))
	for _, name := range names {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Serial receives records from the monitor over a serial port.
type Serial struct {
	port     string
	baudRate int

	stream *Stream
	conn   serial.Port
	mu     sync.Mutex
}

// New creates a Serial link for port.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &Serial{
		port:     port,
		baudRate: baudRate,
		stream:   newStream(bufSize),
	}
}

// Connect opens the port and starts reading records.
func (s *Serial) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return fmt.Errorf("already connected")
	}

	conn, err := serial.Open(s.port, &serial.Mode{BaudRate: s.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}
	s.conn = conn

	return s.stream.start(conn)
}

// Close closes the port and the records channel.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	// Closing the port unblocks the reader goroutine
	if err := s.conn.Close(); err != nil {
		log.Printf("Error closing serial port: %v", err)
	}
	s.conn = nil

	return s.stream.Close()
}

// Records returns the channel of received records.
func (s *Serial) Records() <-chan logsink.Record {
	return s.stream.Records()
}

// IsConnected returns whether the port is open.
func (s *Serial) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Stream parses record lines from any reader. It backs Serial and lets the
// host replay captured logs.
type Stream struct {
	r       io.Reader
	records chan logsink.Record

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	skipped uint64
}

// NewStream creates a Stream over r. Records become available after Connect.
func NewStream(r io.Reader, bufSize int) *Stream {
	s := newStream(bufSize)
	s.r = r
	return s
}

func newStream(bufSize int) *Stream {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Stream{
		records: make(chan logsink.Record, bufSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Connect starts reading.
func (s *Stream) Connect() error {
	if s.r == nil {
		return ErrNotConnected
	}
	return s.start(s.r)
}

func (s *Stream) start(r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("already connected")
	}
	s.started = true
	go s.read(r)
	return nil
}

// Close stops reading and closes the records channel once the reader exits.
// A reader passed to NewStream is closed if it implements io.Closer, which
// unblocks a pending Read. Any other reader must return from Read on its own.
func (s *Stream) Close() error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	s.cancel()
	var err error
	if c, ok := s.r.(io.Closer); ok {
		err = c.Close()
	}
	if started {
		<-s.done
	}
	return err
}

// Records returns the channel of parsed records.
func (s *Stream) Records() <-chan logsink.Record {
	return s.records
}

// IsConnected reports whether the reader is running.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Skipped returns the number of lines that could not be parsed.
func (s *Stream) Skipped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// read parses lines until EOF, error, or Close. The firmware may print
// diagnostics on the same UART; such lines are skipped.
func (s *Stream) read(r io.Reader) {
	defer close(s.done)
	defer close(s.records)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if s.ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rec, err := logsink.Parse(line)
		if err != nil {
			s.mu.Lock()
			s.skipped++
			s.mu.Unlock()
			log.Printf("Skipping line '%s': %v", line, err)
			continue
		}

		select {
		case s.records <- rec:
		case <-s.ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil && s.ctx.Err() == nil {
		log.Printf("Error reading records: %v", err)
	}
}
