package canvas

import (
	"testing"

	"defect-review/internal/region"

	"fyne.io/fyne/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyboardNudge(t *testing.T) {
	c, _, _ := testController(body())
	c.Select("r1")
	k := NewKeyboard(c)

	assert.True(t, k.HandleKey(fyne.KeyRight, Modifiers{}))
	assert.InDelta(t, 0.2+nudgeStep, c.Regions()[0].X, 1e-9)

	assert.True(t, k.HandleKey(fyne.KeyDown, Modifiers{Fast: true}))
	assert.InDelta(t, 0.2+nudgeStepFast, c.Regions()[0].Y, 1e-9)
}

func TestKeyboardNudgeClampsAtEdge(t *testing.T) {
	c, _, _ := testController(region.Region{ID: "r1", X: 0, Y: 0.4, W: 0.2, H: 0.2})
	c.Select("r1")
	k := NewKeyboard(c)

	require.True(t, k.HandleKey(fyne.KeyLeft, Modifiers{Fast: true}))
	assert.Equal(t, 0.0, c.Regions()[0].X)
}

func TestKeyboardDuplicateAndDeselect(t *testing.T) {
	c, _, _ := testController(body())
	c.Select("r1")
	k := NewKeyboard(c)

	require.True(t, k.HandleKey(fyne.KeyD, Modifiers{}))
	require.Len(t, c.Regions(), 2)
	assert.NotEqual(t, "r1", c.SelectedID())

	require.True(t, k.HandleKey(fyne.KeyEscape, Modifiers{}))
	assert.Empty(t, c.SelectedID())
}

func TestKeyboardDelete(t *testing.T) {
	c, _, _ := testController(body())
	c.Select("r1")
	k := NewKeyboard(c)

	require.True(t, k.HandleKey(fyne.KeyDelete, Modifiers{}))
	assert.Empty(t, c.Regions())
}

func TestKeyboardInactiveDuringDrag(t *testing.T) {
	c, _, _ := testController(body())
	k := NewKeyboard(c)

	c.Press(150, 150, ButtonPrimary, Modifiers{})
	assert.False(t, k.HandleKey(fyne.KeyRight, Modifiers{}))
	assert.InDelta(t, 0.2, c.Regions()[0].X, 1e-9)
	c.Release()
}

func TestKeyboardIgnoresUnknownKeys(t *testing.T) {
	c, _, _ := testController(body())
	k := NewKeyboard(c)
	assert.False(t, k.HandleKey(fyne.KeyF1, Modifiers{}))
}
