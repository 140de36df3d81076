package canvas

import (
	"image"
	"image/color"

	"defect-review/internal/region"
	"defect-review/pkg/colorutil"
	"defect-review/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// AnnotationCanvas displays the current photo with its region overlays
// and routes pointer and key events to the interaction controller.
type AnnotationCanvas struct {
	widget.BaseWidget

	viewport *Viewport
	ctrl     *Controller
	keys     *Keyboard

	photo  image.Image
	raster *fynecanvas.Raster
	labels []PlacedLabel

	shiftHeld bool
	focused   bool

	// pendingFit defers fit-to-view until the widget has a size.
	pendingFit bool
	lastSize   fyne.Size

	onCommit     func([]region.Region)
	onSelect     func(id string)
	onReveal     func(id string)
	onZoomChange func(zoom float64)
}

var (
	_ fyne.Widget       = (*AnnotationCanvas)(nil)
	_ fyne.Draggable    = (*AnnotationCanvas)(nil)
	_ fyne.Scrollable   = (*AnnotationCanvas)(nil)
	_ desktop.Mouseable = (*AnnotationCanvas)(nil)
	_ desktop.Keyable   = (*AnnotationCanvas)(nil)
)

// NewAnnotationCanvas creates an empty annotation canvas.
func NewAnnotationCanvas() *AnnotationCanvas {
	a := &AnnotationCanvas{
		viewport: NewViewport(),
	}
	a.ctrl = NewController(a.viewport)
	a.keys = NewKeyboard(a.ctrl)

	a.raster = fynecanvas.NewRaster(a.draw)
	a.raster.ScaleMode = fynecanvas.ImageScalePixels

	a.ctrl.OnCommit(func(regions []region.Region) {
		a.relayout()
		a.Refresh()
		if a.onCommit != nil {
			a.onCommit(regions)
		}
	})
	a.ctrl.OnSelect(func(id string) {
		a.Refresh()
		if a.onSelect != nil {
			a.onSelect(id)
		}
	})
	a.ctrl.OnReveal(func(id string) {
		if a.onReveal != nil {
			a.onReveal(id)
		}
	})

	a.ExtendBaseWidget(a)
	return a
}

// OnCommit sets the callback receiving the full region list after every
// committed edit.
func (a *AnnotationCanvas) OnCommit(fn func([]region.Region)) { a.onCommit = fn }

// OnSelect sets the callback for selection changes ("" = none).
func (a *AnnotationCanvas) OnSelect(fn func(id string)) { a.onSelect = fn }

// OnReveal sets the callback asking the host UI to scroll a region's
// list entry into view.
func (a *AnnotationCanvas) OnReveal(fn func(id string)) { a.onReveal = fn }

// OnZoomChange sets a callback for zoom changes.
func (a *AnnotationCanvas) OnZoomChange(fn func(zoom float64)) { a.onZoomChange = fn }

// SetPhoto installs a new photo and its regions, resetting the view. A
// nil image clears the canvas.
func (a *AnnotationCanvas) SetPhoto(img image.Image, regions []region.Region) {
	a.photo = img
	var size geometry.Size
	if img != nil {
		b := img.Bounds()
		size = geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
	}
	a.viewport.Reset(size)
	a.pendingFit = img != nil
	a.lastSize = fyne.Size{}
	a.ctrl.SetRegions(regions)
	a.relayout()
	a.Refresh()
}

// SetRegions replaces the region list from outside (list edits, detector
// proposals). Any gesture in progress is abandoned.
func (a *AnnotationCanvas) SetRegions(regions []region.Region) {
	a.ctrl.SetRegions(regions)
	a.relayout()
	a.Refresh()
}

// Regions returns the canvas's working copy of the region list.
func (a *AnnotationCanvas) Regions() []region.Region { return a.ctrl.Regions() }

// Select sets the selected region from outside (e.g. the region list).
func (a *AnnotationCanvas) Select(id string) {
	a.ctrl.Select(id)
	a.Refresh()
}

// SelectedID returns the selected region id, or "".
func (a *AnnotationCanvas) SelectedID() string { return a.ctrl.SelectedID() }

// AddRegion creates a default-sized region in the view center.
func (a *AnnotationCanvas) AddRegion(cls string) { a.ctrl.AddDefault(cls) }

// DuplicateSelected clones the selected region.
func (a *AnnotationCanvas) DuplicateSelected() { a.ctrl.DuplicateSelected() }

// DeleteSelected removes the selected region.
func (a *AnnotationCanvas) DeleteSelected() { a.ctrl.DeleteSelected() }

// Zoom returns the current zoom factor.
func (a *AnnotationCanvas) Zoom() float64 { return a.viewport.Zoom() }

// ZoomIn increases the zoom one step.
func (a *AnnotationCanvas) ZoomIn() {
	a.viewport.ZoomIn()
	a.zoomChanged()
}

// ZoomOut decreases the zoom one step.
func (a *AnnotationCanvas) ZoomOut() {
	a.viewport.ZoomOut()
	a.zoomChanged()
}

// FitToView zooms so the whole photo is visible.
func (a *AnnotationCanvas) FitToView() {
	size := a.Size()
	a.viewport.FitToContainer(float64(size.Width), float64(size.Height))
	a.zoomChanged()
}

// ActualSize resets to 1:1 zoom.
func (a *AnnotationCanvas) ActualSize() {
	a.viewport.SetZoom(1)
	a.viewport.SetPan(geometry.Point2D{})
	a.zoomChanged()
}

func (a *AnnotationCanvas) zoomChanged() {
	a.relayout()
	a.Refresh()
	if a.onZoomChange != nil {
		a.onZoomChange(a.viewport.Zoom())
	}
}

// relayout recomputes label placement for the current regions, photo
// size, and zoom.
func (a *AnnotationCanvas) relayout() {
	a.labels = LayoutLabels(a.ctrl.Regions(), a.viewport.ImageSize(), a.viewport.Zoom())
	a.ctrl.SetLabels(a.labels)
}

// MouseDown starts a gesture. Alt duplicates on drag, Ctrl pans with the
// primary button; the secondary button always pans.
func (a *AnnotationCanvas) MouseDown(ev *desktop.MouseEvent) {
	a.requestFocus()

	btn := ButtonPrimary
	if ev.Button == desktop.MouseButtonSecondary {
		btn = ButtonSecondary
	}
	mods := Modifiers{
		Duplicate: ev.Modifier&fyne.KeyModifierAlt != 0,
		Pan:       ev.Modifier&fyne.KeyModifierControl != 0,
	}
	a.ctrl.Press(float64(ev.Position.X), float64(ev.Position.Y), btn, mods)
	a.Refresh()
}

// MouseUp ends any gesture.
func (a *AnnotationCanvas) MouseUp(*desktop.MouseEvent) {
	a.ctrl.Release()
	a.Refresh()
}

// Dragged advances the gesture in progress.
func (a *AnnotationCanvas) Dragged(ev *fyne.DragEvent) {
	a.ctrl.Move(float64(ev.Position.X), float64(ev.Position.Y))
	a.Refresh()
}

// DragEnd ends any gesture. Fyne delivers this even when the pointer is
// released outside the widget.
func (a *AnnotationCanvas) DragEnd() {
	a.ctrl.Release()
	a.Refresh()
}

// Scrolled zooms on the mouse wheel instead of scrolling.
func (a *AnnotationCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		a.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		a.ZoomOut()
	}
}

// TypedKey dispatches shortcuts to the keyboard controller.
func (a *AnnotationCanvas) TypedKey(ev *fyne.KeyEvent) {
	if a.keys.HandleKey(ev.Name, Modifiers{Fast: a.shiftHeld}) {
		a.Refresh()
	}
}

// TypedRune implements fyne.Focusable; runes are ignored.
func (a *AnnotationCanvas) TypedRune(rune) {}

// KeyDown tracks Shift for the fast nudge step.
func (a *AnnotationCanvas) KeyDown(ev *fyne.KeyEvent) {
	if ev.Name == desktop.KeyShiftLeft || ev.Name == desktop.KeyShiftRight {
		a.shiftHeld = true
	}
}

// KeyUp tracks Shift release.
func (a *AnnotationCanvas) KeyUp(ev *fyne.KeyEvent) {
	if ev.Name == desktop.KeyShiftLeft || ev.Name == desktop.KeyShiftRight {
		a.shiftHeld = false
	}
}

// FocusGained implements fyne.Focusable.
func (a *AnnotationCanvas) FocusGained() {
	a.focused = true
	a.Refresh()
}

// FocusLost drops the Shift state so a stale modifier cannot stick.
func (a *AnnotationCanvas) FocusLost() {
	a.focused = false
	a.shiftHeld = false
}

func (a *AnnotationCanvas) requestFocus() {
	if c := fyne.CurrentApp().Driver().CanvasForObject(a); c != nil {
		c.Focus(a)
	}
}

// CreateRenderer implements fyne.Widget.
func (a *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(a.raster)
}

// draw is the raster drawing function. The raster may render at a higher
// pixel density than the widget's logical size, so screen-space values
// from the viewport are scaled up before plotting.
func (a *AnnotationCanvas) draw(w, h int) image.Image {
	size := a.Size()
	if size.Width > 0 && size.Height > 0 && size != a.lastSize {
		a.lastSize = size
		if a.pendingFit {
			a.pendingFit = false
			a.viewport.FitToContainer(float64(size.Width), float64(size.Height))
		} else {
			a.viewport.SetContainerSize(float64(size.Width), float64(size.Height))
		}
		a.relayout()
	}

	scale := 1.0
	if size.Width > 0 {
		scale = float64(w) / float64(size.Width)
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRect(out, 0, 0, w-1, h-1, color.RGBA{R: 24, G: 24, B: 24, A: 255})

	a.drawPhoto(out, w, h, scale)

	selected := a.ctrl.SelectedID()
	for _, r := range a.ctrl.Regions() {
		a.drawRegion(out, r, r.ID == selected, scale)
	}
	a.drawLabels(out, scale)

	return out
}

// drawPhoto samples the photo nearest-neighbor through the viewport
// transform.
func (a *AnnotationCanvas) drawPhoto(out *image.RGBA, w, h int, scale float64) {
	if a.photo == nil {
		return
	}
	b := a.photo.Bounds()
	iw := float64(b.Dx())
	ih := float64(b.Dy())
	zoom := a.viewport.Zoom()
	if iw <= 0 || ih <= 0 || zoom < zoomEpsilon {
		return
	}
	pan := a.viewport.Pan()
	cont := a.viewport.ContainerSize()

	for y := 0; y < h; y++ {
		sy := float64(y) / scale
		ny := ((sy-cont.Height/2)-pan.Y)/(ih*zoom) + 0.5
		if ny < 0 || ny >= 1 {
			continue
		}
		srcY := b.Min.Y + int(ny*ih)
		for x := 0; x < w; x++ {
			sx := float64(x) / scale
			nx := ((sx-cont.Width/2)-pan.X)/(iw*zoom) + 0.5
			if nx < 0 || nx >= 1 {
				continue
			}
			srcX := b.Min.X + int(nx*iw)
			cr, cg, cb, _ := a.photo.At(srcX, srcY).RGBA()
			out.SetRGBA(x, y, color.RGBA{
				R: uint8(cr >> 8),
				G: uint8(cg >> 8),
				B: uint8(cb >> 8),
				A: 255,
			})
		}
	}
}

// drawRegion draws one region outline; the selected region gets a tint,
// a thicker border, and corner grips.
func (a *AnnotationCanvas) drawRegion(out *image.RGBA, r region.Region, selected bool, scale float64) {
	sr := a.viewport.ScreenRect(r.Rect())
	x1 := int(sr.X * scale)
	y1 := int(sr.Y * scale)
	x2 := int((sr.X + sr.Width) * scale)
	y2 := int((sr.Y + sr.Height) * scale)

	col := colorutil.ClassColor(r.Cls)
	thickness := 2
	if selected {
		thickness = 3
		blendRect(out, x1, y1, x2, y2, col, 0.15)
	}
	drawRectOutline(out, x1, y1, x2, y2, col, thickness)

	if selected {
		for _, h := range []region.Handle{region.HandleNW, region.HandleNE, region.HandleSW, region.HandleSE} {
			corner := r.Corner(h)
			p := a.viewport.NormalizedToScreen(corner.X, corner.Y)
			drawHandleGrip(out, int(p.X*scale), int(p.Y*scale), col)
		}
	}
}

// drawLabels draws the placed label chips with centered text.
func (a *AnnotationCanvas) drawLabels(out *image.RGBA, scale float64) {
	const textScale = 2

	for _, l := range a.labels {
		sr := a.viewport.ScreenRect(l.Rect)
		x1 := int(sr.X * scale)
		y1 := int(sr.Y * scale)
		x2 := int((sr.X + sr.Width) * scale)
		y2 := int((sr.Y + sr.Height) * scale)
		if x2 <= x1 || y2 <= y1 {
			continue
		}

		var col color.RGBA = colorutil.Yellow
		if i := region.Find(a.ctrl.Regions(), l.RegionID); i >= 0 {
			col = colorutil.ClassColor(a.ctrl.Regions()[i].Cls)
		}

		blendRect(out, x1, y1, x2, y2, color.RGBA{R: 16, G: 16, B: 16, A: 255}, 0.85)
		drawRectOutline(out, x1, y1, x2, y2, col, 1)

		tw := textWidth(l.Text, textScale)
		tx := x1 + ((x2-x1)-tw)/2
		ty := y1 + ((y2-y1)-5*textScale)/2
		drawText(out, l.Text, tx, ty, colorutil.White, textScale)
	}
}
