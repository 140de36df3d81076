// Package region provides the annotated-rectangle model and the sanitize
// path every mutation funnels through.
package region

import (
	"math"

	"defect-review/pkg/geometry"

	"github.com/google/uuid"
)

const (
	// MinWidth and MinHeight are the size floor for a region in
	// normalized units. Enforced with priority over pointer tracking.
	MinWidth  = 0.015
	MinHeight = 0.015

	// DuplicateOffset is the shift applied to a cloned region so it does
	// not sit exactly on top of its source.
	DuplicateOffset = 0.01
)

// Origin records where a region came from.
type Origin string

const (
	// OriginManual marks regions created by the operator (add, duplicate).
	OriginManual Origin = "manual"
	// OriginExternal marks regions supplied by an upstream producer such
	// as a detector.
	OriginExternal Origin = "external"
)

// Region is a rectangular annotation over a photo. Coordinates and sizes
// are normalized fractions of the image dimensions.
type Region struct {
	ID         string  `json:"id"`
	Cls        string  `json:"cls"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	W          float64 `json:"w"`
	H          float64 `json:"h"`
	Confidence float64 `json:"conf"`
	Origin     Origin  `json:"source"`
}

// NewManualID mints an id for a region created by this tool. The prefix
// distinguishes operator-created regions from externally supplied ids.
func NewManualID() string {
	return "man-" + uuid.NewString()
}

// Rect returns the region's rectangle in normalized coordinates.
func (r Region) Rect() geometry.Rect {
	return geometry.Rect{X: r.X, Y: r.Y, Width: r.W, Height: r.H}
}

// safeFloat replaces non-finite values with a default. Upstream producers
// of regions are not trusted.
func safeFloat(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// Sanitized returns the region with every invariant restored: finite
// fields, coordinates in [0,1], size at least the minimum floor, and the
// box fully inside the canvas. Malformed input degrades to a valid region
// rather than an error.
func (r Region) Sanitized() Region {
	out := r

	out.X = geometry.Clamp01(safeFloat(out.X, 0))
	out.Y = geometry.Clamp01(safeFloat(out.Y, 0))
	out.W = geometry.Clamp(safeFloat(out.W, MinWidth), MinWidth, 1)
	out.H = geometry.Clamp(safeFloat(out.H, MinHeight), MinHeight, 1)

	// Keep the box inside the canvas, preserving size.
	if out.X+out.W > 1 {
		out.X = 1 - out.W
	}
	if out.Y+out.H > 1 {
		out.Y = 1 - out.H
	}

	out.Confidence = geometry.Clamp01(safeFloat(out.Confidence, 0))

	if out.Origin != OriginManual {
		out.Origin = OriginExternal
	}
	if out.ID == "" {
		out.ID = NewManualID()
	}
	return out
}

// Moved returns the region shifted by a normalized delta, clamped.
func (r Region) Moved(dx, dy float64) Region {
	out := r
	out.X += dx
	out.Y += dy
	return out.Sanitized()
}

// Duplicated returns a clone of the region with a fresh manual id,
// offset slightly from the source. The source is untouched.
func (r Region) Duplicated() Region {
	out := r
	out.ID = NewManualID()
	out.Origin = OriginManual
	out.X += DuplicateOffset
	out.Y += DuplicateOffset
	return out.Sanitized()
}

// SanitizeList sanitizes every region and defensively de-duplicates ids.
// A region whose id collides with an earlier one gets a fresh manual id.
// The input slice is not modified.
func SanitizeList(regions []Region) []Region {
	out := make([]Region, 0, len(regions))
	seen := make(map[string]bool, len(regions))
	for _, r := range regions {
		s := r.Sanitized()
		if seen[s.ID] {
			s.ID = NewManualID()
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out
}

// Find returns the index of the region with the given id, or -1.
func Find(regions []Region, id string) int {
	for i := range regions {
		if regions[i].ID == id {
			return i
		}
	}
	return -1
}
