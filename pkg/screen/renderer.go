package screen

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/greenmon/pkg/display"
)

var (
	backgroundColor  = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	textColor        = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	titleColor       = color.RGBA{R: 120, G: 200, B: 90, A: 255}
	placeholderColor = color.RGBA{R: 200, G: 80, B: 60, A: 255}
)

// screenRenderer renders the screen widget.
type screenRenderer struct {
	screen *ScreenWidget

	// Panel background
	panel *canvas.Rectangle

	// One text object per drawn string, reused across refreshes
	texts []*canvas.Text

	// Objects list for Fyne
	objects []fyne.CanvasObject
}

func newRenderer(s *ScreenWidget) *screenRenderer {
	panel := canvas.NewRectangle(backgroundColor)
	return &screenRenderer{
		screen:  s,
		panel:   panel,
		objects: []fyne.CanvasObject{panel},
	}
}

// MinSize returns the device panel size in window units.
func (r *screenRenderer) MinSize() fyne.Size {
	l := r.screen.layout
	return fyne.NewSize(float32(l.Width)*r.screen.scale, float32(l.Height())*r.screen.scale)
}

// Layout arranges the widget components.
func (r *screenRenderer) Layout(size fyne.Size) {
	r.panel.Resize(r.MinSize())
}

// Refresh rebuilds the text objects from the screen contents.
func (r *screenRenderer) Refresh() {
	items := r.screen.Items()
	scale := r.screen.scale
	rowHeight := r.screen.layout.StatsRowHeight

	for len(r.texts) < len(items) {
		t := canvas.NewText("", textColor)
		t.TextStyle = fyne.TextStyle{Monospace: true}
		r.texts = append(r.texts, t)
	}
	r.texts = r.texts[:len(items)]

	r.objects = r.objects[:1]
	for i, it := range items {
		t := r.texts[i]
		t.Text = it.S
		t.TextSize = float32(rowHeight) * scale * 0.8
		t.Color = colorFor(r.screen.layout, it)
		t.Move(fyne.NewPos(float32(it.X)*scale, float32(it.Y)*scale))
		r.objects = append(r.objects, t)
	}

	r.panel.Refresh()
	for _, t := range r.texts {
		t.Refresh()
	}
}

func colorFor(l display.Layout, it display.Text) color.Color {
	switch {
	case it.Y == l.TitleY && it.S == display.Title:
		return titleColor
	case it.S == display.Placeholder:
		return placeholderColor
	}
	return textColor
}

// Objects returns all canvas objects.
func (r *screenRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up renderer resources.
func (r *screenRenderer) Destroy() {}
