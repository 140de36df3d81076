package canvas

import (
	"math"
	"testing"

	"defect-review/pkg/geometry"

	"github.com/stretchr/testify/assert"
)

func fittedViewport() *Viewport {
	v := NewViewport()
	v.Reset(geometry.NewSize(1000, 1000))
	v.FitToContainer(500, 500)
	return v
}

func TestFitToContainer(t *testing.T) {
	v := NewViewport()
	v.Reset(geometry.NewSize(2000, 1000))
	v.FitToContainer(500, 500)
	assert.InDelta(t, 0.25, v.Zoom(), 1e-9)
	assert.Equal(t, geometry.Point2D{}, v.Pan())
}

func TestFitToContainerClampsZoom(t *testing.T) {
	v := NewViewport()
	v.Reset(geometry.NewSize(10, 10))
	v.FitToContainer(5000, 5000)
	assert.InDelta(t, maxZoom, v.Zoom(), 1e-9)

	v.Reset(geometry.NewSize(100000, 100000))
	v.FitToContainer(100, 100)
	assert.InDelta(t, minZoom, v.Zoom(), 1e-9)
}

func TestZoomStaysBoundedUnderAnyGestureSequence(t *testing.T) {
	v := fittedViewport()
	for i := 0; i < 300; i++ {
		v.ZoomIn()
	}
	assert.LessOrEqual(t, v.Zoom(), maxZoom)
	for i := 0; i < 800; i++ {
		v.ZoomOut()
	}
	assert.GreaterOrEqual(t, v.Zoom(), minZoom)
}

func TestScreenToNormalizedRoundTrip(t *testing.T) {
	v := fittedViewport()
	v.PanBy(13, -7)

	n := v.ScreenToNormalized(120, 340)
	back := v.NormalizedToScreen(n.X, n.Y)
	assert.InDelta(t, 120, back.X, 1e-9)
	assert.InDelta(t, 340, back.Y, 1e-9)
}

func TestScreenToNormalizedCenter(t *testing.T) {
	v := fittedViewport()
	n := v.ScreenToNormalized(250, 250)
	assert.InDelta(t, 0.5, n.X, 1e-9)
	assert.InDelta(t, 0.5, n.Y, 1e-9)
}

func TestScreenToNormalizedNonFiniteInput(t *testing.T) {
	v := fittedViewport()
	n := v.ScreenToNormalized(math.NaN(), math.Inf(1))
	assert.Equal(t, geometry.Point2D{X: 0.5, Y: 0.5}, n)
}

func TestScreenToNormalizedWithoutImage(t *testing.T) {
	v := NewViewport()
	n := v.ScreenToNormalized(50, 50)
	assert.Equal(t, geometry.Point2D{X: 0.5, Y: 0.5}, n)
}

func TestPanShiftsMapping(t *testing.T) {
	v := fittedViewport()
	before := v.NormalizedToScreen(0.5, 0.5)
	v.PanBy(40, 25)
	after := v.NormalizedToScreen(0.5, 0.5)
	assert.InDelta(t, before.X+40, after.X, 1e-9)
	assert.InDelta(t, before.Y+25, after.Y, 1e-9)
}

func TestScreenRect(t *testing.T) {
	v := fittedViewport()
	r := v.ScreenRect(geometry.NewRect(0.2, 0.4, 0.1, 0.2))
	assert.InDelta(t, 100, r.X, 1e-9)
	assert.InDelta(t, 200, r.Y, 1e-9)
	assert.InDelta(t, 50, r.Width, 1e-9)
	assert.InDelta(t, 100, r.Height, 1e-9)
}
