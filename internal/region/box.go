package region

import (
	"defect-review/pkg/geometry"
)

// Handle identifies one of the four corner grips used to resize a region.
type Handle int

const (
	HandleNW Handle = iota
	HandleNE
	HandleSW
	HandleSE
)

func (h Handle) String() string {
	switch h {
	case HandleNW:
		return "nw"
	case HandleNE:
		return "ne"
	case HandleSW:
		return "sw"
	case HandleSE:
		return "se"
	default:
		return "unknown"
	}
}

// Corner returns the normalized position of the given corner.
func (r Region) Corner(h Handle) geometry.Point2D {
	switch h {
	case HandleNW:
		return geometry.Point2D{X: r.X, Y: r.Y}
	case HandleNE:
		return geometry.Point2D{X: r.X + r.W, Y: r.Y}
	case HandleSW:
		return geometry.Point2D{X: r.X, Y: r.Y + r.H}
	default:
		return geometry.Point2D{X: r.X + r.W, Y: r.Y + r.H}
	}
}

// Resized returns the region with the given corner dragged by a
// normalized delta. The opposite corner stays anchored. The size floor is
// applied before the position is reconciled, so a box dragged past its
// own opposite edge sticks at minimum size instead of inverting.
func (r Region) Resized(h Handle, dx, dy float64) Region {
	out := r
	switch h {
	case HandleSE:
		out.W += dx
		out.H += dy
	case HandleSW:
		out.X += dx
		out.W -= dx
		out.H += dy
	case HandleNE:
		out.Y += dy
		out.W += dx
		out.H -= dy
	case HandleNW:
		out.X += dx
		out.Y += dy
		out.W -= dx
		out.H -= dy
	}

	if out.W < MinWidth {
		if h == HandleSW || h == HandleNW {
			// Right edge is the anchor.
			out.X = r.X + r.W - MinWidth
		}
		out.W = MinWidth
	}
	if out.H < MinHeight {
		if h == HandleNW || h == HandleNE {
			// Bottom edge is the anchor.
			out.Y = r.Y + r.H - MinHeight
		}
		out.H = MinHeight
	}

	return out.Sanitized()
}
