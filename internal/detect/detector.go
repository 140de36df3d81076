//go:build gocv
// +build gocv

// Package detect proposes candidate defect regions for a photo. The real
// implementation requires OpenCV and is selected with the gocv build tag.
package detect

import (
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"

	"defect-review/internal/region"
)

// Detector finds high-contrast contours and turns their bounding boxes
// into candidate regions for the operator to review.
type Detector struct {
	MinAreaRatio float64 // minimum contour area as a fraction of the image
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
func Available() bool { return true }

// Propose returns candidate regions, largest first, in normalized
// coordinates with external origin.
func (d *Detector) Propose(img image.Image) ([]region.Region, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert photo: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("empty photo")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, d.CannyLow, d.CannyHigh)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(5, 5))
	defer kernel.Close()
	gocv.Dilate(edges, &edges, kernel)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	iw := float64(mat.Cols())
	ih := float64(mat.Rows())
	minArea := d.MinAreaRatio * iw * ih

	type candidate struct {
		r    region.Region
		area float64
	}
	var candidates []candidate

	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		area := float64(rect.Dx() * rect.Dy())
		if area < minArea {
			continue
		}
		candidates = append(candidates, candidate{
			r: region.Region{
				ID:     "det-" + region.NewManualID()[4:],
				X:      float64(rect.Min.X) / iw,
				Y:      float64(rect.Min.Y) / ih,
				W:      float64(rect.Dx()) / iw,
				H:      float64(rect.Dy()) / ih,
				Origin: region.OriginExternal,
			}.Sanitized(),
			area: area,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].area > candidates[j].area
	})
	if d.MaxProposals > 0 && len(candidates) > d.MaxProposals {
		candidates = candidates[:d.MaxProposals]
	}

	out := make([]region.Region, len(candidates))
	for i, c := range candidates {
		out[i] = c.r
	}
	return out, nil
}
