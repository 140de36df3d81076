package canvas

import (
	"defect-review/internal/region"
	"defect-review/pkg/geometry"
)

// handleHitRadius is the pick distance for corner grips, in screen px.
const handleHitRadius = 8.0

// defaultRegionSize is the normalized size of a region created by the
// explicit add action.
const defaultRegionSize = 0.12

// Button identifies the pointer button of a press.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Modifiers carries the modifier keys held during a pointer or keyboard
// event.
type Modifiers struct {
	Duplicate bool // clone-on-drag
	Pan       bool // pan with the primary button
	Fast      bool // larger nudge step
}

// dragState is the tagged interaction state. Each variant carries only
// the fields relevant to it.
type dragState interface {
	isDragState()
}

type idle struct{}

type moving struct {
	regionID     string
	startPointer geometry.Point2D // screen px at press time
	startRect    region.Region    // snapshot at press time
}

type resizing struct {
	regionID     string
	handle       region.Handle
	startPointer geometry.Point2D
	startRect    region.Region
}

type panning struct {
	startPointer geometry.Point2D
	startPan     geometry.Point2D
}

func (idle) isDragState()     {}
func (moving) isDragState()   {}
func (resizing) isDragState() {}
func (panning) isDragState()  {}

// Controller is the pointer-driven state machine for the annotation
// canvas. It edits a working copy of the region list and emits the full
// replacement list to the owner on every committed mutation.
type Controller struct {
	viewport *Viewport

	regions    []region.Region
	selectedID string
	labels     []PlacedLabel

	state dragState

	onCommit func([]region.Region)
	onSelect func(id string)
	onReveal func(id string)
}

// NewController creates a controller in the Idle state.
func NewController(viewport *Viewport) *Controller {
	return &Controller{
		viewport: viewport,
		state:    idle{},
	}
}

// OnCommit sets the callback receiving the full replacement region list
// after every committed mutation.
func (c *Controller) OnCommit(fn func([]region.Region)) { c.onCommit = fn }

// OnSelect sets the callback receiving the selection id ("" = none).
func (c *Controller) OnSelect(fn func(id string)) { c.onSelect = fn }

// OnReveal sets the callback asking the host UI to scroll a region into
// view after add, duplicate, or select.
func (c *Controller) OnReveal(fn func(id string)) { c.onReveal = fn }

// SetRegions replaces the working copy wholesale (photo change or an
// external edit). Any in-progress gesture is abandoned.
func (c *Controller) SetRegions(regions []region.Region) {
	c.regions = region.SanitizeList(regions)
	c.state = idle{}
	if c.selectedID != "" && region.Find(c.regions, c.selectedID) < 0 {
		c.setSelected("")
	}
}

// Regions returns the working copy.
func (c *Controller) Regions() []region.Region {
	return c.regions
}

// SelectedID returns the current selection, or "".
func (c *Controller) SelectedID() string {
	return c.selectedID
}

// Select sets the selection externally (e.g. from a sibling list view).
func (c *Controller) Select(id string) {
	if id != "" && region.Find(c.regions, id) < 0 {
		id = ""
	}
	c.setSelected(id)
}

// SetLabels installs the current label layout; placed labels double as
// selection hit targets.
func (c *Controller) SetLabels(labels []PlacedLabel) {
	c.labels = labels
}

// Dragging reports whether a gesture is in progress.
func (c *Controller) Dragging() bool {
	_, ok := c.state.(idle)
	return !ok
}

// Press starts a gesture at a pointer position relative to the widget.
func (c *Controller) Press(px, py float64, btn Button, mods Modifiers) {
	p := geometry.Point2D{X: px, Y: py}

	if btn == ButtonSecondary || mods.Pan {
		c.state = panning{startPointer: p, startPan: c.viewport.Pan()}
		return
	}

	// Corner grips of the selected region take priority.
	if i := region.Find(c.regions, c.selectedID); i >= 0 {
		if h, ok := c.hitHandle(c.regions[i], p); ok {
			c.state = resizing{
				regionID:     c.selectedID,
				handle:       h,
				startPointer: p,
				startRect:    c.regions[i],
			}
			return
		}
	}

	// Labels select their owning region but start no drag.
	if id, ok := c.hitLabel(p); ok {
		c.setSelected(id)
		c.reveal(id)
		return
	}

	if i, ok := c.hitBody(p); ok {
		r := c.regions[i]
		if mods.Duplicate {
			clone := r.Duplicated()
			c.regions = region.SanitizeList(append(c.regions, clone))
			r = c.regions[len(c.regions)-1]
			c.commit()
		}
		c.setSelected(r.ID)
		c.reveal(r.ID)
		c.state = moving{regionID: r.ID, startPointer: p, startRect: r}
		return
	}

	// Background press deselects.
	c.setSelected("")
}

// Move advances an in-progress gesture. Deltas are always applied to the
// press-time snapshot, never incrementally, to avoid drift.
func (c *Controller) Move(px, py float64) {
	p := geometry.Point2D{X: px, Y: py}

	switch s := c.state.(type) {
	case moving:
		i := region.Find(c.regions, s.regionID)
		if i < 0 {
			c.state = idle{}
			return
		}
		d := c.normalizedDelta(s.startPointer, p)
		c.regions[i] = s.startRect.Moved(d.X, d.Y)
		c.commit()
	case resizing:
		i := region.Find(c.regions, s.regionID)
		if i < 0 {
			c.state = idle{}
			return
		}
		d := c.normalizedDelta(s.startPointer, p)
		c.regions[i] = s.startRect.Resized(s.handle, d.X, d.Y)
		c.commit()
	case panning:
		c.viewport.SetPan(s.startPan.Add(p.Sub(s.startPointer)))
	}
}

// Release ends any gesture and returns to Idle. Safe to call repeatedly
// and after a release outside the widget bounds.
func (c *Controller) Release() {
	switch c.state.(type) {
	case moving, resizing:
		c.commit()
	}
	c.state = idle{}
}

// AddDefault creates a new centered region with the given class and
// selects it.
func (c *Controller) AddDefault(cls string) {
	r := region.Region{
		ID:     region.NewManualID(),
		Cls:    cls,
		X:      0.5 - defaultRegionSize/2,
		Y:      0.5 - defaultRegionSize/2,
		W:      defaultRegionSize,
		H:      defaultRegionSize,
		Origin: region.OriginManual,
	}.Sanitized()
	c.regions = region.SanitizeList(append(c.regions, r))
	c.commit()
	c.setSelected(r.ID)
	c.reveal(r.ID)
}

// DuplicateSelected clones the selected region, selects the clone, and
// asks the host to reveal it. Same semantics as drag-duplicate.
func (c *Controller) DuplicateSelected() {
	i := region.Find(c.regions, c.selectedID)
	if i < 0 {
		return
	}
	clone := c.regions[i].Duplicated()
	c.regions = region.SanitizeList(append(c.regions, clone))
	id := c.regions[len(c.regions)-1].ID
	c.commit()
	c.setSelected(id)
	c.reveal(id)
}

// DeleteSelected removes the selected region.
func (c *Controller) DeleteSelected() {
	i := region.Find(c.regions, c.selectedID)
	if i < 0 {
		return
	}
	c.regions = append(c.regions[:i], c.regions[i+1:]...)
	c.commit()
	c.setSelected("")
}

// NudgeSelected shifts the selected region by a normalized delta through
// the clamp path.
func (c *Controller) NudgeSelected(dx, dy float64) {
	i := region.Find(c.regions, c.selectedID)
	if i < 0 {
		return
	}
	c.regions[i] = c.regions[i].Moved(dx, dy)
	c.commit()
}

// Deselect clears the selection.
func (c *Controller) Deselect() {
	c.setSelected("")
}

func (c *Controller) normalizedDelta(start, cur geometry.Point2D) geometry.Point2D {
	a := c.viewport.ScreenToNormalized(start.X, start.Y)
	b := c.viewport.ScreenToNormalized(cur.X, cur.Y)
	return b.Sub(a)
}

func (c *Controller) hitHandle(r region.Region, p geometry.Point2D) (region.Handle, bool) {
	for _, h := range []region.Handle{region.HandleNW, region.HandleNE, region.HandleSW, region.HandleSE} {
		corner := r.Corner(h)
		screen := c.viewport.NormalizedToScreen(corner.X, corner.Y)
		if screen.Distance(p) <= handleHitRadius {
			return h, true
		}
	}
	return 0, false
}

func (c *Controller) hitLabel(p geometry.Point2D) (string, bool) {
	for i := len(c.labels) - 1; i >= 0; i-- {
		if c.viewport.ScreenRect(c.labels[i].Rect).Contains(p) {
			return c.labels[i].RegionID, true
		}
	}
	return "", false
}

// hitBody returns the topmost region whose body contains the point.
func (c *Controller) hitBody(p geometry.Point2D) (int, bool) {
	for i := len(c.regions) - 1; i >= 0; i-- {
		if c.viewport.ScreenRect(c.regions[i].Rect()).Contains(p) {
			return i, true
		}
	}
	return -1, false
}

// commit hands the owner a fresh copy of the full region list.
func (c *Controller) commit() {
	if c.onCommit == nil {
		return
	}
	out := make([]region.Region, len(c.regions))
	copy(out, c.regions)
	c.onCommit(out)
}

// reveal asks the host UI to bring a region's list entry into view.
func (c *Controller) reveal(id string) {
	if c.onReveal != nil {
		c.onReveal(id)
	}
}

func (c *Controller) setSelected(id string) {
	if c.selectedID == id {
		return
	}
	c.selectedID = id
	if c.onSelect != nil {
		c.onSelect(id)
	}
}
