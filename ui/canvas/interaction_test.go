package canvas

import (
	"testing"

	"defect-review/internal/region"
	"defect-review/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testController returns a controller over a 1000x1000 photo fitted into
// a 500x500 widget, so screen px = 500 * normalized.
func testController(regions ...region.Region) (*Controller, *[]([]region.Region), *[]string) {
	v := fittedViewport()
	c := NewController(v)

	var commits [][]region.Region
	var selects []string
	c.OnCommit(func(rs []region.Region) { commits = append(commits, rs) })
	c.OnSelect(func(id string) { selects = append(selects, id) })

	c.SetRegions(regions)
	return c, &commits, &selects
}

func body() region.Region {
	return region.Region{ID: "r1", Cls: "crack", X: 0.2, Y: 0.2, W: 0.2, H: 0.2}
}

func TestPressOnBackgroundDeselects(t *testing.T) {
	c, _, selects := testController(body())
	c.Select("r1")

	c.Press(450, 450, ButtonPrimary, Modifiers{})
	assert.Empty(t, c.SelectedID())
	assert.False(t, c.Dragging())
	assert.Equal(t, []string{"r1", ""}, *selects)
}

func TestMoveDragCommitsFromSnapshot(t *testing.T) {
	c, commits, _ := testController(body())

	// Press in the body center, drag right and down.
	c.Press(150, 150, ButtonPrimary, Modifiers{})
	require.Equal(t, "r1", c.SelectedID())
	require.True(t, c.Dragging())

	c.Move(200, 175) // +0.1, +0.05 normalized
	c.Move(200, 175) // repeated move must not accumulate
	c.Release()

	require.NotEmpty(t, *commits)
	got := (*commits)[len(*commits)-1]
	require.Len(t, got, 1)
	assert.InDelta(t, 0.3, got[0].X, 1e-9)
	assert.InDelta(t, 0.25, got[0].Y, 1e-9)
	assert.InDelta(t, 0.2, got[0].W, 1e-9)
	assert.False(t, c.Dragging())
}

func TestResizeViaSEHandle(t *testing.T) {
	c, commits, _ := testController(body())
	c.Select("r1")

	// SE corner of the selected region is at (200, 200) on screen.
	c.Press(200, 200, ButtonPrimary, Modifiers{})
	require.True(t, c.Dragging())

	c.Move(250, 250) // +0.1, +0.1 normalized
	c.Release()

	got := (*commits)[len(*commits)-1]
	assert.InDelta(t, 0.2, got[0].X, 1e-9)
	assert.InDelta(t, 0.2, got[0].Y, 1e-9)
	assert.InDelta(t, 0.3, got[0].W, 1e-9)
	assert.InDelta(t, 0.3, got[0].H, 1e-9)
}

func TestResizeViaNWHandleKeepsBottomRightFixed(t *testing.T) {
	c, commits, _ := testController(body())
	c.Select("r1")

	c.Press(100, 100, ButtonPrimary, Modifiers{}) // NW corner
	c.Move(125, 125)                              // +0.05, +0.05
	c.Release()

	got := (*commits)[len(*commits)-1]
	assert.InDelta(t, 0.25, got[0].X, 1e-9)
	assert.InDelta(t, 0.25, got[0].Y, 1e-9)
	assert.InDelta(t, 0.4, got[0].X+got[0].W, 1e-9)
	assert.InDelta(t, 0.4, got[0].Y+got[0].H, 1e-9)
}

func TestDuplicateDragClonesAndMovesClone(t *testing.T) {
	c, commits, _ := testController(body())

	var revealed []string
	c.OnReveal(func(id string) { revealed = append(revealed, id) })

	c.Press(150, 150, ButtonPrimary, Modifiers{Duplicate: true})
	require.Len(t, c.Regions(), 2)

	clone := c.Regions()[1]
	assert.NotEqual(t, "r1", clone.ID)
	assert.Equal(t, clone.ID, c.SelectedID())
	assert.Equal(t, []string{clone.ID}, revealed)
	assert.InDelta(t, 0.21, clone.X, 1e-9)
	assert.InDelta(t, 0.21, clone.Y, 1e-9)

	c.Move(250, 150) // drag the clone, not the source
	c.Release()

	got := (*commits)[len(*commits)-1]
	require.Len(t, got, 2)
	assert.InDelta(t, 0.2, got[0].X, 1e-9, "source untouched")
	assert.InDelta(t, 0.41, got[1].X, 1e-9)
}

func TestPanWithSecondaryButton(t *testing.T) {
	c, commits, _ := testController(body())

	c.Press(100, 100, ButtonSecondary, Modifiers{})
	c.Move(140, 130)
	c.Release()

	assert.Equal(t, geometry.Point2D{X: 40, Y: 30}, c.viewport.Pan())
	assert.Empty(t, *commits, "panning must not commit regions")
}

func TestPanWithModifier(t *testing.T) {
	c, _, _ := testController(body())

	c.Press(150, 150, ButtonPrimary, Modifiers{Pan: true})
	c.Move(170, 150)
	c.Release()

	assert.Equal(t, geometry.Point2D{X: 20, Y: 0}, c.viewport.Pan())
	assert.Empty(t, c.SelectedID(), "pan press must not select")
}

func TestReleaseIsIdempotent(t *testing.T) {
	c, _, _ := testController(body())

	c.Press(150, 150, ButtonPrimary, Modifiers{})
	c.Release()
	c.Release()
	assert.False(t, c.Dragging())

	// Moves after release are ignored.
	c.Move(400, 400)
	assert.InDelta(t, 0.2, c.Regions()[0].X, 1e-9)
}

func TestLabelHitSelectsOwningRegion(t *testing.T) {
	c, _, _ := testController(body())

	var revealed []string
	c.OnReveal(func(id string) { revealed = append(revealed, id) })

	c.SetLabels([]PlacedLabel{{
		RegionID: "r1",
		Text:     "crack",
		Rect:     geometry.NewRect(0.6, 0.6, 0.2, 0.05),
	}})

	c.Press(355, 310, ButtonPrimary, Modifiers{})
	assert.Equal(t, "r1", c.SelectedID())
	assert.Equal(t, []string{"r1"}, revealed)
	assert.False(t, c.Dragging(), "label press starts no drag")
}

func TestPressOnBodyRevealsSelection(t *testing.T) {
	c, _, _ := testController(body())

	var revealed []string
	c.OnReveal(func(id string) { revealed = append(revealed, id) })

	c.Press(150, 150, ButtonPrimary, Modifiers{})
	assert.Equal(t, "r1", c.SelectedID())
	assert.Equal(t, []string{"r1"}, revealed)
	c.Release()

	// Background press deselects without a reveal.
	c.Press(450, 450, ButtonPrimary, Modifiers{})
	assert.Equal(t, []string{"r1"}, revealed)
}

func TestRevealFiresOnAddAndDuplicate(t *testing.T) {
	c, _, _ := testController()

	var revealed []string
	c.OnReveal(func(id string) { revealed = append(revealed, id) })

	c.AddDefault("crack")
	added := c.Regions()[0].ID
	assert.Equal(t, []string{added}, revealed)

	c.DuplicateSelected()
	require.Len(t, c.Regions(), 2)
	clone := c.Regions()[1].ID
	assert.Equal(t, []string{added, clone}, revealed)
}

func TestAddDefault(t *testing.T) {
	c, commits, _ := testController()

	c.AddDefault("scratch")
	require.Len(t, c.Regions(), 1)
	r := c.Regions()[0]
	assert.Equal(t, region.OriginManual, r.Origin)
	assert.Equal(t, "scratch", r.Cls)
	assert.Equal(t, r.ID, c.SelectedID())
	assert.InDelta(t, 0.5, r.X+r.W/2, 1e-9)
	require.NotEmpty(t, *commits)
}

func TestDeleteSelected(t *testing.T) {
	c, commits, _ := testController(body())
	c.Select("r1")

	c.DeleteSelected()
	assert.Empty(t, c.Regions())
	assert.Empty(t, c.SelectedID())
	require.NotEmpty(t, *commits)
	assert.Empty(t, (*commits)[len(*commits)-1])
}

func TestNudgeSelectedClampsAtEdge(t *testing.T) {
	c, _, _ := testController(region.Region{ID: "r1", X: 0, Y: 0.4, W: 0.2, H: 0.2})
	c.Select("r1")

	c.NudgeSelected(-nudgeStepFast, 0)
	assert.Equal(t, 0.0, c.Regions()[0].X)
}

func TestSetRegionsAbandonsGestureAndPrunesSelection(t *testing.T) {
	c, _, _ := testController(body())

	c.Press(150, 150, ButtonPrimary, Modifiers{})
	require.True(t, c.Dragging())

	c.SetRegions([]region.Region{{ID: "other", X: 0.5, Y: 0.5, W: 0.1, H: 0.1}})
	assert.False(t, c.Dragging())
	assert.Empty(t, c.SelectedID())
}
