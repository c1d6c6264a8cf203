package link

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/itohio/greenmon/pkg/logsink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan logsink.Record) []logsink.Record {
	t.Helper()
	var got []logsink.Record
	timeout := time.After(2 * time.Second)
	for {
		select {
		case rec, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, rec)
		case <-timeout:
			t.Fatal("timeout waiting for records channel to close")
			return got
		}
	}
}

func TestStream_ParsesRecords(t *testing.T) {
	input := strings.Join([]string{
		"600000,512,645,23.41,61.20",
		"",
		"SCD4x ready",
		"1200000,498,NA,NA,NA",
		"1800000,2048,645,23.41,61.20",
		"  2400000,480,700,22.00,58.50  ",
	}, "\n")

	s := NewStream(strings.NewReader(input), 10)
	assert.False(t, s.IsConnected())
	require.NoError(t, s.Connect())

	got := collect(t, s.Records())
	require.Len(t, got, 3)

	assert.Equal(t, uint32(600000), got[0].TimestampMs)
	assert.True(t, got[0].Valid)
	assert.Equal(t, float32(645), got[0].CO2)

	assert.Equal(t, uint32(1200000), got[1].TimestampMs)
	assert.False(t, got[1].Valid)
	assert.Equal(t, uint16(498), got[1].SoilRaw)

	assert.Equal(t, uint32(2400000), got[2].TimestampMs)
	assert.Equal(t, float32(58.5), got[2].Humidity)

	// The banner and the out-of-range soil value
	assert.Equal(t, uint64(2), s.Skipped())
	assert.NoError(t, s.Close())
	assert.False(t, s.IsConnected())
}

func TestStream_ConnectTwice(t *testing.T) {
	s := NewStream(strings.NewReader(""), 0)
	require.NoError(t, s.Connect())
	assert.Error(t, s.Connect())
	require.NoError(t, s.Close())
}

func TestStream_NoReader(t *testing.T) {
	s := newStream(1)
	assert.ErrorIs(t, s.Connect(), ErrNotConnected)
	assert.NoError(t, s.Close())
}

func TestStream_CloseWhileBlocked(t *testing.T) {
	pr, pw := io.Pipe()
	s := NewStream(pr, 1)
	require.NoError(t, s.Connect())

	go func() {
		for i := 0; i < 5; i++ {
			if _, err := pw.Write([]byte("600000,512,NA,NA,NA\n")); err != nil {
				return
			}
		}
	}()

	// Wait for the buffered record, then the reader is blocked on a full channel
	select {
	case <-s.Records():
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for first record")
	}

	done := make(chan struct{})
	go func() {
		_ = s.Close()
		close(done)
	}()

	// Drain so the reader can observe cancellation regardless of where it blocks
	go func() {
		for range s.Records() {
		}
	}()
	// Unblock a pending Scan
	_ = pw.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
}

func TestStream_CloseUnblocksRead(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	s := NewStream(pr, 1)
	require.NoError(t, s.Connect())

	// Nothing is ever written, so the reader stays blocked in Read
	done := make(chan struct{})
	go func() {
		assert.NoError(t, s.Close())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
	assert.Empty(t, collect(t, s.Records()))

	_, err := pw.Write([]byte("600000,512,NA,NA,NA\n"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestSerial_NotConnected(t *testing.T) {
	s := New("/dev/does-not-exist", 0, 0)
	assert.False(t, s.IsConnected())
	assert.Equal(t, DefaultBaudRate, s.baudRate)
	assert.NoError(t, s.Close())
	assert.Error(t, s.Connect())
	assert.False(t, s.IsConnected())
}
