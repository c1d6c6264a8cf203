package clock

import (
	"sync"
	"time"
)

// Clock is a monotonically non-decreasing millisecond counter.
// The counter is 32 bits wide and wraps around after ~49.7 days, so callers
// must compare timestamps only through Elapsed or Due.
type Clock interface {
	Now() uint32
}

// Elapsed returns the number of milliseconds from last to now.
// Unsigned subtraction keeps the result correct across a single wrap.
func Elapsed(now, last uint32) uint32 {
	return now - last
}

// Due reports whether at least period milliseconds passed since last.
func Due(now, last, period uint32) bool {
	return Elapsed(now, last) >= period
}

// System is a Clock backed by the monotonic runtime clock.
type System struct {
	start time.Time
}

var _ Clock = (*System)(nil)

// NewSystem creates a System clock that starts counting at zero.
func NewSystem() *System {
	return &System{start: time.Now()}
}

// Now returns milliseconds since the clock was created, truncated to 32 bits.
func (s *System) Now() uint32 {
	return uint32(time.Since(s.start).Milliseconds())
}

// Fake is a manually driven Clock for tests.
// When Step is non-zero every call to Now advances the counter by Step after
// reading it, which lets bounded polls terminate without real time passing.
type Fake struct {
	mu   sync.Mutex
	now  uint32
	Step uint32
}

var _ Clock = (*Fake)(nil)

// NewFake creates a Fake clock starting at start.
func NewFake(start uint32) *Fake {
	return &Fake{now: start}
}

// Now returns the current counter value.
func (f *Fake) Now() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now
	f.now += f.Step
	return now
}

// Set moves the counter to an absolute value.
func (f *Fake) Set(ms uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = ms
}

// Advance moves the counter forward by d milliseconds, wrapping if needed.
func (f *Fake) Advance(d uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += d
}

// Peek returns the counter without applying Step.
func (f *Fake) Peek() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}
