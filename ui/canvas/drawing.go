package canvas

import (
	"image"
	"image/color"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// letterPatterns contains 3x5 pixel patterns for letters A-Z and common symbols.
var letterPatterns = map[rune][5]uint8{
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'F': {0b111, 0b100, 0b110, 0b100, 0b100},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'I': {0b111, 0b010, 0b010, 0b010, 0b111},
	'J': {0b001, 0b001, 0b001, 0b101, 0b010},
	'K': {0b101, 0b101, 0b110, 0b101, 0b101},
	'L': {0b100, 0b100, 0b100, 0b100, 0b111},
	'M': {0b101, 0b111, 0b101, 0b101, 0b101},
	'N': {0b101, 0b111, 0b111, 0b101, 0b101},
	'O': {0b010, 0b101, 0b101, 0b101, 0b010},
	'P': {0b110, 0b101, 0b110, 0b100, 0b100},
	'Q': {0b010, 0b101, 0b101, 0b111, 0b011},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'T': {0b111, 0b010, 0b010, 0b010, 0b010},
	'U': {0b101, 0b101, 0b101, 0b101, 0b111},
	'V': {0b101, 0b101, 0b101, 0b101, 0b010},
	'W': {0b101, 0b101, 0b101, 0b111, 0b101},
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y': {0b101, 0b101, 0b010, 0b010, 0b010},
	'Z': {0b111, 0b001, 0b010, 0b100, 0b111},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	'+': {0b000, 0b010, 0b111, 0b010, 0b000},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

// getCharPattern returns the 3x5 pixel pattern for a character.
// Returns a zero pattern for unsupported characters.
func getCharPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	if pattern, ok := letterPatterns[ch]; ok {
		return pattern
	}
	return [5]uint8{}
}

// textWidth returns the drawn width of text at the given scale.
func textWidth(text string, scale int) int {
	return len([]rune(text)) * 4 * scale
}

// drawText draws text with its top-left at (x, y) using the 3x5 bitmap
// font scaled up by scale.
func drawText(out *image.RGBA, text string, x, y int, col color.RGBA, scale int) {
	bounds := out.Bounds()
	cx := x
	for _, ch := range text {
		pattern := getCharPattern(ch)
		for row := 0; row < 5; row++ {
			for bit := 0; bit < 3; bit++ {
				if pattern[row]&(1<<(2-bit)) == 0 {
					continue
				}
				for sy := 0; sy < scale; sy++ {
					for sx := 0; sx < scale; sx++ {
						px := cx + bit*scale + sx
						py := y + row*scale + sy
						if px >= bounds.Min.X && px < bounds.Max.X &&
							py >= bounds.Min.Y && py < bounds.Max.Y {
							out.SetRGBA(px, py, col)
						}
					}
				}
			}
		}
		cx += 4 * scale
	}
}

// fillRect fills the rectangle [x1,x2]x[y1,y2], clipped to the image.
func fillRect(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := out.Bounds()
	for y := y1; y <= y2; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := x1; x <= x2; x++ {
			if x >= bounds.Min.X && x < bounds.Max.X {
				out.SetRGBA(x, y, col)
			}
		}
	}
}

// blendRect fills the rectangle with col at the given opacity.
func blendRect(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, opacity float64) {
	bounds := out.Bounds()
	inv := 1 - opacity
	for y := y1; y <= y2; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := x1; x <= x2; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dst := out.RGBAAt(x, y)
			out.SetRGBA(x, y, color.RGBA{
				R: uint8(float64(col.R)*opacity + float64(dst.R)*inv),
				G: uint8(float64(col.G)*opacity + float64(dst.G)*inv),
				B: uint8(float64(col.B)*opacity + float64(dst.B)*inv),
				A: 255,
			})
		}
	}
}

// drawRectOutline draws a rectangle outline with the given thickness.
func drawRectOutline(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		hline(out, x1, x2, y1+t, col)
		hline(out, x1, x2, y2-t, col)
		vline(out, y1, y2, x1+t, col)
		vline(out, y1, y2, x2-t, col)
	}
}

func hline(out *image.RGBA, x1, x2, y int, col color.RGBA) {
	bounds := out.Bounds()
	if y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	for x := x1; x <= x2; x++ {
		if x >= bounds.Min.X && x < bounds.Max.X {
			out.SetRGBA(x, y, col)
		}
	}
}

func vline(out *image.RGBA, y1, y2, x int, col color.RGBA) {
	bounds := out.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X {
		return
	}
	for y := y1; y <= y2; y++ {
		if y >= bounds.Min.Y && y < bounds.Max.Y {
			out.SetRGBA(x, y, col)
		}
	}
}

// drawHandleGrip draws one corner grip centered at (cx, cy).
func drawHandleGrip(out *image.RGBA, cx, cy int, col color.RGBA) {
	const half = 4
	fillRect(out, cx-half, cy-half, cx+half, cy+half, col)
	drawRectOutline(out, cx-half, cy-half, cx+half, cy+half, color.RGBA{255, 255, 255, 255}, 1)
}
