package screen

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"github.com/itohio/greenmon/pkg/display"
	"github.com/itohio/greenmon/pkg/sensor"
	"github.com/itohio/greenmon/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenWidget_Display(t *testing.T) {
	test.NewTempApp(t)

	s := New(display.DefaultLayout(), 0)
	assert.Equal(t, float32(DefaultScale), s.scale)

	require.NoError(t, s.DrawText(10, 20, "a"))
	require.NoError(t, s.DrawText(10, 20, "b"))
	require.NoError(t, s.DrawText(100, 20, "c"))
	require.NoError(t, s.ClearRect(90, 0, 50, 50))

	assert.Equal(t, []display.Text{{X: 10, Y: 20, S: "b"}}, s.Items())
}

func TestScreenWidget_MinSize(t *testing.T) {
	test.NewTempApp(t)

	s := New(display.DefaultLayout(), 2)
	r := test.WidgetRenderer(s)
	assert.Equal(t, fyne.NewSize(480, 480), r.MinSize())
}

func TestScreenWidget_Refresh(t *testing.T) {
	test.NewTempApp(t)

	l := display.DefaultLayout()
	s := New(l, 2)
	r := test.WidgetRenderer(s)

	renderer := display.NewRenderer(s, l, display.DefaultSoilScale())
	renderer.Render(sensor.Reading{SoilRaw: 575}, stats.Snapshot{})
	r.Refresh()

	items := s.Items()
	objects := r.Objects()
	require.Len(t, objects, len(items)+1)

	var title *canvas.Text
	for _, o := range objects[1:] {
		txt, ok := o.(*canvas.Text)
		require.True(t, ok)
		if txt.Text == display.Title {
			title = txt
		}
	}
	require.NotNil(t, title)
	assert.Equal(t, fyne.NewPos(float32(l.LabelsX)*2, float32(l.TitleY)*2), title.Position())
	assert.Equal(t, titleColor, title.Color)

	// Fewer items after a refresh shrink the object list
	require.NoError(t, s.ClearRect(0, 0, l.Width, l.Height()))
	r.Refresh()
	assert.Len(t, r.Objects(), 1)
}

func TestScreenWidget_Flush(t *testing.T) {
	test.NewTempApp(t)

	s := New(display.DefaultLayout(), 1)
	require.NoError(t, s.DrawText(0, 0, "x"))
	assert.True(t, s.dirty)

	s.Flush()
	assert.False(t, s.dirty)

	// Nothing drawn, nothing scheduled
	s.Flush()
	assert.False(t, s.dirty)
}

func TestColorFor(t *testing.T) {
	l := display.DefaultLayout()
	assert.Equal(t, titleColor, colorFor(l, display.Text{X: 0, Y: l.TitleY, S: display.Title}))
	assert.Equal(t, placeholderColor, colorFor(l, display.Text{X: 90, Y: 40, S: display.Placeholder}))
	assert.Equal(t, textColor, colorFor(l, display.Text{X: 90, Y: 40, S: "612 ppm"}))
}
