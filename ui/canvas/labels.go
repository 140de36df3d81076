package canvas

import (
	"fmt"
	"sort"

	"defect-review/internal/region"
	"defect-review/pkg/geometry"
)

const (
	labelMinWidthPx = 120
	labelMaxWidthPx = 320
	labelHeightPx   = 36
	labelCharPx     = 9 // rough per-character width estimate
	labelBasePx     = 30

	labelPad = 0.01  // canvas padding, normalized
	labelGap = 0.005 // gap between a label and its region or neighbor

	// labelMaxPasses caps the greedy push loop; under pathological
	// density residual overlap is accepted.
	labelMaxPasses = 64
)

// PlacedLabel is one positioned text label. Its rectangle doubles as a
// selection hit target for the owning region.
type PlacedLabel struct {
	RegionID string
	Text     string
	Rect     geometry.Rect // normalized
}

// labelText renders the display text for a region.
func labelText(r region.Region) string {
	cls := r.Cls
	if cls == "" {
		cls = "region"
	}
	if r.Confidence > 0 {
		return fmt.Sprintf("%s %.2f", cls, r.Confidence)
	}
	return cls
}

// LayoutLabels computes a non-overlapping label rectangle per region for
// the current image size and zoom. It is a pure function of its inputs
// and is recomputed whenever the region set, image size, or zoom changes.
func LayoutLabels(regions []region.Region, imageSize geometry.Size, zoom float64) []PlacedLabel {
	if len(regions) == 0 || imageSize.Width <= 0 || imageSize.Height <= 0 || zoom < zoomEpsilon {
		return nil
	}

	labels := make([]PlacedLabel, 0, len(regions))
	anchors := make([]float64, 0, len(regions))

	for _, r := range regions {
		text := labelText(r)

		widthPx := geometry.Clamp(float64(len(text))*labelCharPx+labelBasePx,
			labelMinWidthPx, labelMaxWidthPx)
		w := widthPx / (imageSize.Width * zoom)
		h := labelHeightPx / (imageSize.Height * zoom)

		x := geometry.Clamp(r.X+r.W/2-w/2, labelPad, 1-labelPad-w)

		// Prefer just above the region, below when the region hugs the
		// canvas top.
		y := r.Y - h - labelGap
		if r.Y < 0.1 {
			y = r.Y + r.H + labelGap
		}

		labels = append(labels, PlacedLabel{
			RegionID: r.ID,
			Text:     text,
			Rect:     geometry.Rect{X: x, Y: y, Width: w, Height: h},
		})
		anchors = append(anchors, y)
	}

	// Place top-down so each label only has to dodge the ones above it.
	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return anchors[order[a]] < anchors[order[b]]
	})

	var placed []geometry.Rect
	for _, idx := range order {
		l := &labels[idx]
		l.Rect.Y = resolveVertical(l.Rect, anchors[idx], placed)
		placed = append(placed, l.Rect)
	}

	// Return in the regions' order.
	return labels
}

// resolveVertical pushes a label down past already-placed labels until it
// no longer overlaps. If it would run off the bottom it retries from the
// original anchor pushing upward instead.
func resolveVertical(r geometry.Rect, anchorY float64, placed []geometry.Rect) float64 {
	bottom := 1 - labelPad

	y := geometry.Clamp(anchorY, labelPad, bottom-r.Height)
	for pass := 0; pass < labelMaxPasses; pass++ {
		hit, ok := firstOverlap(r, y, placed)
		if !ok {
			return y
		}
		y = hit.Y + hit.Height + labelGap
		if y+r.Height > bottom {
			return resolveUpward(r, anchorY, placed)
		}
	}
	return y
}

func resolveUpward(r geometry.Rect, anchorY float64, placed []geometry.Rect) float64 {
	y := geometry.Clamp(anchorY, labelPad, 1-labelPad-r.Height)
	for pass := 0; pass < labelMaxPasses; pass++ {
		hit, ok := firstOverlap(r, y, placed)
		if !ok {
			return y
		}
		y = hit.Y - r.Height - labelGap
		if y < labelPad {
			// Out of room in both directions; residual overlap accepted.
			return labelPad
		}
	}
	return y
}

func firstOverlap(r geometry.Rect, y float64, placed []geometry.Rect) (geometry.Rect, bool) {
	probe := geometry.Rect{X: r.X, Y: y, Width: r.Width, Height: r.Height}
	for _, p := range placed {
		if probe.Intersects(p) {
			return p, true
		}
	}
	return geometry.Rect{}, false
}
