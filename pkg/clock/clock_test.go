package clock

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElapsed(t *testing.T) {
	tests := []struct {
		name string
		now  uint32
		last uint32
		want uint32
	}{
		{name: "zero", now: 100, last: 100, want: 0},
		{name: "forward", now: 2500, last: 500, want: 2000},
		{name: "across wrap", now: 5, last: math.MaxUint32 - 4, want: 10},
		{name: "wrap to zero", now: 0, last: math.MaxUint32, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Elapsed(tt.now, tt.last))
		})
	}
}

func TestDue(t *testing.T) {
	assert.False(t, Due(1999, 0, 2000))
	assert.True(t, Due(2000, 0, 2000))
	assert.True(t, Due(2001, 0, 2000))
	assert.True(t, Due(7, 7, 0), "zero period is always due")

	// Small delta across the wrap must not look like a huge one
	last := uint32(math.MaxUint32 - 100)
	assert.False(t, Due(50, last, 2000))
	assert.True(t, Due(1899, last, 2000))
}

func TestFake_Step(t *testing.T) {
	c := NewFake(10)
	assert.Equal(t, uint32(10), c.Now())
	assert.Equal(t, uint32(10), c.Now())

	c.Step = 5
	assert.Equal(t, uint32(10), c.Now())
	assert.Equal(t, uint32(15), c.Now())
	assert.Equal(t, uint32(20), c.Peek())

	c.Advance(100)
	assert.Equal(t, uint32(120), c.Peek())

	c.Set(math.MaxUint32)
	c.Step = 0
	c.Advance(2)
	assert.Equal(t, uint32(1), c.Now())
}

func TestSystem_NonDecreasing(t *testing.T) {
	c := NewSystem()
	a := c.Now()
	b := c.Now()
	assert.GreaterOrEqual(t, b, a)
}
