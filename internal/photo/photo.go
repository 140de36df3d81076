// Package photo provides photo loading for review sessions.
package photo

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"defect-review/pkg/geometry"

	_ "golang.org/x/image/tiff"
)

// Photo is a loaded photo under review.
type Photo struct {
	Path     string      // original file path
	Filename string      // base name, shown in lists
	Image    image.Image // decoded image data
}

// Load decodes the image at path.
func Load(path string) (*Photo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open photo: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w", err)
	}

	return &Photo{
		Path:     path,
		Filename: filepath.Base(path),
		Image:    img,
	}, nil
}

// Width returns the natural width in pixels.
func (p *Photo) Width() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dx()
}

// Height returns the natural height in pixels.
func (p *Photo) Height() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dy()
}

// Size returns the natural dimensions.
func (p *Photo) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(p.Width()),
		Height: float64(p.Height()),
	}
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// FileFilter returns a file filter string for use in file dialogs.
func FileFilter() string {
	return "Photos (*.tiff, *.tif, *.png, *.jpg, *.jpeg)"
}
