package region

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizedClampsToCanvas(t *testing.T) {
	r := Region{ID: "a", X: 0.9, Y: 0.95, W: 0.3, H: 0.2}.Sanitized()
	assert.InDelta(t, 0.7, r.X, 1e-9)
	assert.InDelta(t, 0.8, r.Y, 1e-9)
	assert.InDelta(t, 0.3, r.W, 1e-9)
	assert.InDelta(t, 0.2, r.H, 1e-9)
}

func TestSanitizedReplacesNonFiniteFields(t *testing.T) {
	r := Region{
		ID:         "a",
		X:          math.NaN(),
		Y:          math.Inf(1),
		W:          math.NaN(),
		H:          -5,
		Confidence: math.Inf(-1),
	}.Sanitized()

	assert.GreaterOrEqual(t, r.X, 0.0)
	assert.LessOrEqual(t, r.X+r.W, 1.0)
	assert.LessOrEqual(t, r.Y+r.H, 1.0)
	assert.GreaterOrEqual(t, r.W, MinWidth)
	assert.GreaterOrEqual(t, r.H, MinHeight)
	assert.GreaterOrEqual(t, r.Confidence, 0.0)
	assert.LessOrEqual(t, r.Confidence, 1.0)
}

func TestSanitizedAssignsMissingID(t *testing.T) {
	r := Region{X: 0.1, Y: 0.1, W: 0.1, H: 0.1}.Sanitized()
	require.NotEmpty(t, r.ID)
	assert.Equal(t, OriginManual, Region{ID: "x", Origin: "manual"}.Sanitized().Origin)
	assert.Equal(t, OriginExternal, Region{ID: "x", Origin: "yolo"}.Sanitized().Origin)
}

func TestMovedClampsAtLeftEdge(t *testing.T) {
	r := Region{ID: "a", X: 0, Y: 0.4, W: 0.2, H: 0.2}
	moved := r.Moved(-0.02, 0) // fast nudge step
	assert.Equal(t, 0.0, moved.X)
	assert.InDelta(t, 0.2, moved.W, 1e-9)
}

func TestResizedSEOnlyChangesSize(t *testing.T) {
	r := Region{ID: "a", X: 0.35, Y: 0.35, W: 0.25, H: 0.18}
	out := r.Resized(HandleSE, 0.10, 0.10)
	assert.InDelta(t, 0.35, out.X, 1e-9)
	assert.InDelta(t, 0.35, out.Y, 1e-9)
	assert.InDelta(t, 0.35, out.W, 1e-9)
	assert.InDelta(t, 0.28, out.H, 1e-9)
}

func TestResizedNWKeepsBottomRightFixed(t *testing.T) {
	r := Region{ID: "a", X: 0.3, Y: 0.3, W: 0.2, H: 0.2}
	out := r.Resized(HandleNW, 0.05, 0.08)
	assert.InDelta(t, 0.35, out.X, 1e-9)
	assert.InDelta(t, 0.38, out.Y, 1e-9)
	assert.InDelta(t, 0.5, out.X+out.W, 1e-9)
	assert.InDelta(t, 0.5, out.Y+out.H, 1e-9)
}

func TestResizedSticksAtMinimumSize(t *testing.T) {
	r := Region{ID: "a", X: 0.3, Y: 0.3, W: 0.1, H: 0.1}

	// Drag the SE corner far past the NW corner.
	out := r.Resized(HandleSE, -0.5, -0.5)
	assert.InDelta(t, MinWidth, out.W, 1e-9)
	assert.InDelta(t, MinHeight, out.H, 1e-9)
	assert.InDelta(t, 0.3, out.X, 1e-9)
	assert.InDelta(t, 0.3, out.Y, 1e-9)

	// Drag the NW corner far past the SE corner: bottom-right anchored.
	out = r.Resized(HandleNW, 0.5, 0.5)
	assert.InDelta(t, MinWidth, out.W, 1e-9)
	assert.InDelta(t, MinHeight, out.H, 1e-9)
	assert.InDelta(t, 0.4, out.X+out.W, 1e-9)
	assert.InDelta(t, 0.4, out.Y+out.H, 1e-9)
}

func TestDuplicatedOffsetsAndMintsNewID(t *testing.T) {
	src := Region{ID: "det-1", Cls: "crack", X: 0.5, Y: 0.5, W: 0.1, H: 0.1, Origin: OriginExternal}
	dup := src.Duplicated()

	require.NotEqual(t, src.ID, dup.ID)
	assert.Contains(t, dup.ID, "man-")
	assert.Equal(t, OriginManual, dup.Origin)
	assert.InDelta(t, 0.51, dup.X, 1e-9)
	assert.InDelta(t, 0.51, dup.Y, 1e-9)
	assert.InDelta(t, 0.1, dup.W, 1e-9)
	assert.Equal(t, "crack", dup.Cls)

	// Source unchanged by the duplication itself.
	assert.Equal(t, "det-1", src.ID)
	assert.InDelta(t, 0.5, src.X, 1e-9)
}

func TestSanitizeListDeduplicatesIDs(t *testing.T) {
	in := []Region{
		{ID: "dup", X: 0.1, Y: 0.1, W: 0.1, H: 0.1},
		{ID: "dup", X: 0.5, Y: 0.5, W: 0.1, H: 0.1},
		{ID: "", X: 0.7, Y: 0.7, W: 0.1, H: 0.1},
	}
	out := SanitizeList(in)
	require.Len(t, out, 3)

	ids := map[string]bool{}
	for _, r := range out {
		require.NotEmpty(t, r.ID)
		require.False(t, ids[r.ID], "id %q repeated", r.ID)
		ids[r.ID] = true
	}
	assert.Equal(t, "dup", out[0].ID)
	assert.NotEqual(t, "dup", out[1].ID)
}

func TestSanitizeListInvariantsHoldForArbitraryInput(t *testing.T) {
	in := []Region{
		{ID: "a", X: -3, Y: 2, W: 9, H: 0},
		{ID: "b", X: 0.99, Y: 0.99, W: 0.5, H: 0.5},
		{ID: "c", X: math.NaN(), Y: math.NaN(), W: math.NaN(), H: math.NaN()},
	}
	for _, r := range SanitizeList(in) {
		assert.GreaterOrEqual(t, r.X, 0.0)
		assert.GreaterOrEqual(t, r.Y, 0.0)
		assert.LessOrEqual(t, r.X+r.W, 1.0)
		assert.LessOrEqual(t, r.Y+r.H, 1.0)
		assert.GreaterOrEqual(t, r.W, MinWidth)
		assert.GreaterOrEqual(t, r.H, MinHeight)
	}
}

func TestFind(t *testing.T) {
	rs := []Region{{ID: "a"}, {ID: "b"}}
	assert.Equal(t, 1, Find(rs, "b"))
	assert.Equal(t, -1, Find(rs, "missing"))
}
