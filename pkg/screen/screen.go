package screen

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/greenmon/pkg/display"
)

// DefaultScale is the number of window units per device pixel.
const DefaultScale = 2

// ScreenWidget is a Fyne widget that shows the monitor screen with the same
// pixel layout as the device panel. It implements display.Display and may be
// drawn to from any goroutine.
type ScreenWidget struct {
	widget.BaseWidget

	layout display.Layout
	scale  float32

	// Screen contents (protected by mu)
	mu     sync.RWMutex
	canvas *display.Canvas
	dirty  bool
}

var _ display.Display = (*ScreenWidget)(nil)

// New creates a new ScreenWidget for layout.
func New(layout display.Layout, scale float32) *ScreenWidget {
	if scale <= 0 {
		scale = DefaultScale
	}
	s := &ScreenWidget{
		layout: layout,
		scale:  scale,
		canvas: display.NewCanvas(),
	}
	s.ExtendBaseWidget(s)
	return s
}

// DrawText implements display.Display. The change becomes visible on Flush.
func (s *ScreenWidget) DrawText(x, y int16, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
	return s.canvas.DrawText(x, y, text)
}

// ClearRect implements display.Display.
func (s *ScreenWidget) ClearRect(x, y, w, h int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
	return s.canvas.ClearRect(x, y, w, h)
}

// Items returns the text currently on the screen.
func (s *ScreenWidget) Items() []display.Text {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canvas.Items()
}

// Flush schedules a refresh on the Fyne main thread if anything was drawn
// since the last flush.
func (s *ScreenWidget) Flush() {
	s.mu.Lock()
	dirty := s.dirty
	s.dirty = false
	s.mu.Unlock()

	if dirty {
		fyne.Do(s.Refresh)
	}
}

// CreateRenderer creates the widget renderer.
func (s *ScreenWidget) CreateRenderer() fyne.WidgetRenderer {
	return newRenderer(s)
}
