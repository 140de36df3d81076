package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointArithmetic(t *testing.T) {
	p := Point2D{X: 1, Y: 2}
	q := Point2D{X: 4, Y: 6}

	assert.Equal(t, Point2D{X: 5, Y: 8}, p.Add(q))
	assert.Equal(t, Point2D{X: 3, Y: 4}, q.Sub(p))
	assert.Equal(t, Point2D{X: 2, Y: 4}, p.Scale(2))
	assert.InDelta(t, 5.0, p.Distance(q), 1e-9)
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 0.2, Y: 0.2, Width: 0.4, Height: 0.3}

	assert.True(t, r.Contains(Point2D{X: 0.4, Y: 0.3}))
	assert.True(t, r.Contains(Point2D{X: 0.2, Y: 0.2}), "edges are inclusive")
	assert.True(t, r.Contains(Point2D{X: 0.6, Y: 0.5}))
	assert.False(t, r.Contains(Point2D{X: 0.1, Y: 0.3}))
	assert.False(t, r.Contains(Point2D{X: 0.4, Y: 0.6}))
}

func TestRectIntersects(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 0.5, Height: 0.5}
	b := Rect{X: 0.4, Y: 0.4, Width: 0.5, Height: 0.5}
	c := Rect{X: 0.6, Y: 0.6, Width: 0.2, Height: 0.2}

	assert.True(t, a.Intersects(b))
	assert.True(t, b.Intersects(a))
	assert.False(t, a.Intersects(c))

	// Touching edges do not count as intersecting.
	d := Rect{X: 0.5, Y: 0, Width: 0.2, Height: 0.5}
	assert.False(t, a.Intersects(d))
}

func TestRectUnionAndCenter(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 1, Height: 1}
	b := Rect{X: 2, Y: 3, Width: 1, Height: 1}

	u := a.Union(b)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 3, Height: 4}, u)
	assert.Equal(t, Point2D{X: 1.5, Y: 2}, u.Center())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
	assert.Equal(t, 0.0, Clamp(-2, 0, 1))
	assert.Equal(t, 1.0, Clamp(7, 0, 1))
	assert.Equal(t, 1.0, Clamp01(1.5))
	assert.Equal(t, 0.0, Clamp01(-0.1))
}
