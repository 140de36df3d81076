//go:build !gocv
// +build !gocv

// Package detect proposes candidate defect regions for a photo. Without
// the gocv build tag this is a stub that reports the feature as
// unavailable.
package detect

import (
	"errors"
	"image"

	"defect-review/internal/region"
)

// Detector finds high-contrast contours and turns their bounding boxes
// into candidate regions for the operator to review.
type Detector struct {
	MinAreaRatio float64
	MaxProposals int
	CannyLow     float32
	CannyHigh    float32
}

// NewDetector creates a detector with conservative defaults.
func NewDetector() *Detector {
	return &Detector{
		MinAreaRatio: 0.001,
		MaxProposals: 20,
		CannyLow:     50,
		CannyHigh:    150,
	}
}

// Available reports whether region proposals are supported by this build.
func Available() bool { return false }

// Propose always fails in builds without the gocv tag.
func (d *Detector) Propose(img image.Image) ([]region.Region, error) {
	return nil, errors.New("region proposals require a build with the gocv tag")
}
