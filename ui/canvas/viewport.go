// Package canvas provides the interactive annotation canvas: pan, zoom,
// region selection and editing, and label layout.
package canvas

import (
	"math"

	"defect-review/pkg/geometry"
)

const (
	minZoom = 0.15
	maxZoom = 5.0

	zoomStepIn  = 1.08
	zoomStepOut = 0.92

	// zoomEpsilon guards the screen-to-image division against a
	// degenerate zoom value.
	zoomEpsilon = 1e-6
)

// Viewport owns the zoom and pan state of the canvas and maps between
// screen (pixel) coordinates and normalized image coordinates.
type Viewport struct {
	zoom      float64
	pan       geometry.Point2D // screen px
	imageSize geometry.Size    // natural photo size in px
	container geometry.Size    // widget size in px
}

// NewViewport creates a viewport at 1:1 zoom with no pan.
func NewViewport() *Viewport {
	return &Viewport{zoom: 1}
}

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 { return v.zoom }

// Pan returns the current pan offset in screen pixels.
func (v *Viewport) Pan() geometry.Point2D { return v.pan }

// ImageSize returns the natural size of the current photo.
func (v *Viewport) ImageSize() geometry.Size { return v.imageSize }

// ContainerSize returns the last known widget size.
func (v *Viewport) ContainerSize() geometry.Size { return v.container }

// Reset installs a new photo's natural size and clears pan and zoom.
// Called once per photo change; FitToContainer follows when the widget
// size is known.
func (v *Viewport) Reset(imageSize geometry.Size) {
	v.imageSize = imageSize
	v.pan = geometry.Point2D{}
	v.zoom = 1
}

// SetContainerSize records the widget size without touching zoom or pan.
func (v *Viewport) SetContainerSize(w, h float64) {
	v.container = geometry.Size{Width: w, Height: h}
}

// FitToContainer sets the zoom so the whole photo is visible and
// recenters it.
func (v *Viewport) FitToContainer(containerW, containerH float64) {
	v.container = geometry.Size{Width: containerW, Height: containerH}
	if v.imageSize.Width <= 0 || v.imageSize.Height <= 0 ||
		containerW <= 0 || containerH <= 0 {
		return
	}
	fit := math.Min(containerW/v.imageSize.Width, containerH/v.imageSize.Height)
	v.zoom = geometry.Clamp(fit, minZoom, maxZoom)
	v.pan = geometry.Point2D{}
}

// SetZoom sets an absolute zoom factor, clamped to the allowed range.
func (v *Viewport) SetZoom(z float64) {
	v.zoom = geometry.Clamp(z, minZoom, maxZoom)
}

// ZoomIn multiplies the zoom by the inward step, clamped.
func (v *Viewport) ZoomIn() {
	v.zoom = geometry.Clamp(v.zoom*zoomStepIn, minZoom, maxZoom)
}

// ZoomOut multiplies the zoom by the outward step, clamped.
func (v *Viewport) ZoomOut() {
	v.zoom = geometry.Clamp(v.zoom*zoomStepOut, minZoom, maxZoom)
}

// PanBy accumulates a screen-space pan delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.pan.X += dx
	v.pan.Y += dy
}

// SetPan replaces the pan offset (used by the pan gesture, which works
// from a snapshot of the offset at press time).
func (v *Viewport) SetPan(p geometry.Point2D) {
	v.pan = p
}

// ScreenToNormalized maps a pointer position (relative to the widget's
// top-left) to normalized image coordinates. Non-finite input maps to the
// image center as a safe fallback.
func (v *Viewport) ScreenToNormalized(px, py float64) geometry.Point2D {
	if math.IsNaN(px) || math.IsInf(px, 0) || math.IsNaN(py) || math.IsInf(py, 0) {
		return geometry.Point2D{X: 0.5, Y: 0.5}
	}
	zoom := v.zoom
	if zoom < zoomEpsilon {
		zoom = zoomEpsilon
	}
	iw := v.imageSize.Width
	ih := v.imageSize.Height
	if iw <= 0 || ih <= 0 {
		return geometry.Point2D{X: 0.5, Y: 0.5}
	}
	nx := ((px-v.container.Width/2)-v.pan.X)/(iw*zoom) + 0.5
	ny := ((py-v.container.Height/2)-v.pan.Y)/(ih*zoom) + 0.5
	if math.IsNaN(nx) || math.IsInf(nx, 0) {
		nx = 0.5
	}
	if math.IsNaN(ny) || math.IsInf(ny, 0) {
		ny = 0.5
	}
	return geometry.Point2D{X: nx, Y: ny}
}

// NormalizedToScreen maps normalized image coordinates back to a position
// relative to the widget's top-left.
func (v *Viewport) NormalizedToScreen(nx, ny float64) geometry.Point2D {
	return geometry.Point2D{
		X: (nx-0.5)*v.imageSize.Width*v.zoom + v.pan.X + v.container.Width/2,
		Y: (ny-0.5)*v.imageSize.Height*v.zoom + v.pan.Y + v.container.Height/2,
	}
}

// ScreenRect maps a normalized rectangle to screen pixels.
func (v *Viewport) ScreenRect(r geometry.Rect) geometry.Rect {
	tl := v.NormalizedToScreen(r.X, r.Y)
	return geometry.Rect{
		X:      tl.X,
		Y:      tl.Y,
		Width:  r.Width * v.imageSize.Width * v.zoom,
		Height: r.Height * v.imageSize.Height * v.zoom,
	}
}
