package display

import (
	"sort"
	"strings"
)

// Canvas is an in-memory Display that keeps every string at the position it
// was drawn. It backs headless runs and tests.
type Canvas struct {
	items []item

	// Err, when set, is returned by every draw call.
	Err error
}

type item struct {
	x, y int16
	s    string
}

var _ Display = (*Canvas)(nil)

// NewCanvas creates an empty Canvas.
func NewCanvas() *Canvas {
	return &Canvas{}
}

// DrawText places s at (x, y), replacing text drawn at the same origin.
func (c *Canvas) DrawText(x, y int16, s string) error {
	if c.Err != nil {
		return c.Err
	}
	for i := range c.items {
		if c.items[i].x == x && c.items[i].y == y {
			c.items[i].s = s
			return nil
		}
	}
	c.items = append(c.items, item{x: x, y: y, s: s})
	return nil
}

// ClearRect removes text whose origin lies in [x, x+w) x [y, y+h).
func (c *Canvas) ClearRect(x, y, w, h int16) error {
	if c.Err != nil {
		return c.Err
	}
	kept := c.items[:0]
	for _, it := range c.items {
		inside := it.x >= x && it.x < x+w && it.y >= y && it.y < y+h
		if !inside {
			kept = append(kept, it)
		}
	}
	c.items = kept
	return nil
}

// TextAt returns the text drawn at (x, y).
func (c *Canvas) TextAt(x, y int16) (string, bool) {
	for _, it := range c.items {
		if it.x == x && it.y == y {
			return it.s, true
		}
	}
	return "", false
}

// Text is a string drawn at a position.
type Text struct {
	X, Y int16
	S    string
}

// Items returns a copy of the text on the canvas in drawing order.
func (c *Canvas) Items() []Text {
	out := make([]Text, len(c.items))
	for i, it := range c.items {
		out[i] = Text{X: it.x, Y: it.y, S: it.s}
	}
	return out
}

// Len returns the number of text items on the canvas.
func (c *Canvas) Len() int {
	return len(c.items)
}

// String renders the canvas top to bottom, one line per y coordinate.
func (c *Canvas) String() string {
	sorted := make([]item, len(c.items))
	copy(sorted, c.items)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].y != sorted[j].y {
			return sorted[i].y < sorted[j].y
		}
		return sorted[i].x < sorted[j].x
	})

	var b strings.Builder
	for i, it := range sorted {
		if i > 0 {
			if sorted[i-1].y != it.y {
				b.WriteByte('\n')
			} else {
				b.WriteString("  ")
			}
		}
		b.WriteString(it.s)
	}
	return b.String()
}
