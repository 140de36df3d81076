package canvas

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextWidth(t *testing.T) {
	assert.Equal(t, 0, textWidth("", 2))
	assert.Equal(t, 4*2, textWidth("a", 2))
	assert.Equal(t, 5*4*3, textWidth("crack", 3))
}

func TestGetCharPattern(t *testing.T) {
	// Case-insensitive letters.
	assert.Equal(t, getCharPattern('A'), getCharPattern('a'))

	// Digits come from the digit table.
	assert.Equal(t, digitPatterns[7], getCharPattern('7'))

	// Unknown characters render blank instead of panicking.
	assert.Equal(t, [5]uint8{}, getCharPattern('@'))
}

func TestFillRectClipsToBounds(t *testing.T) {
	out := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{R: 255, A: 255}

	fillRect(out, -5, -5, 15, 15, red)

	assert.Equal(t, red, out.RGBAAt(0, 0))
	assert.Equal(t, red, out.RGBAAt(9, 9))
}

func TestDrawRectOutlineLeavesInteriorUntouched(t *testing.T) {
	out := image.NewRGBA(image.Rect(0, 0, 20, 20))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	drawRectOutline(out, 2, 2, 17, 17, white, 2)

	assert.Equal(t, white, out.RGBAAt(2, 2))
	assert.Equal(t, white, out.RGBAAt(17, 17))
	assert.Equal(t, white, out.RGBAAt(3, 10))
	assert.Equal(t, color.RGBA{}, out.RGBAAt(10, 10))
}

func TestBlendRectMixesColors(t *testing.T) {
	out := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fillRect(out, 0, 0, 3, 3, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	blendRect(out, 0, 0, 3, 3, color.RGBA{A: 255}, 0.5)

	got := out.RGBAAt(1, 1)
	assert.InDelta(t, 100, int(got.R), 1)
	assert.Equal(t, uint8(255), got.A)
}
