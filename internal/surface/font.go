package surface

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// numericGlyphs are 3x5 bitmaps, one row per byte, bit 2 is the leftmost
// pixel.
var numericGlyphs = map[rune][5]byte{
	'0': {0b111, 0b101, 0b101, 0b101, 0b111},
	'1': {0b010, 0b110, 0b010, 0b010, 0b111},
	'2': {0b111, 0b001, 0b111, 0b100, 0b111},
	'3': {0b111, 0b001, 0b111, 0b001, 0b111},
	'4': {0b101, 0b101, 0b111, 0b001, 0b001},
	'5': {0b111, 0b100, 0b111, 0b001, 0b111},
	'6': {0b111, 0b100, 0b111, 0b101, 0b111},
	'7': {0b111, 0b001, 0b010, 0b010, 0b010},
	'8': {0b111, 0b101, 0b111, 0b101, 0b111},
	'9': {0b111, 0b101, 0b111, 0b001, 0b111},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	'+': {0b000, 0b010, 0b111, 0b010, 0b000},
	'e': {0b000, 0b111, 0b111, 0b100, 0b111},
	':': {0b000, 0b010, 0b000, 0b010, 0b000},
	' ': {},
}

// numericFont is a tinyfont.Fonter for knob values. Unknown runes draw as
// blanks. Not safe for concurrent use: the glyph is reused.
type numericFont struct {
	scale int16
	g     numericGlyph
}

type numericGlyph struct {
	r     rune
	scale int16
}

// NumericFont returns the value font magnified scale times.
func NumericFont(scale int) tinyfont.Fonter {
	s := int16(max(scale, 1))
	return &numericFont{scale: s, g: numericGlyph{scale: s}}
}

func (f *numericFont) GetGlyph(r rune) tinyfont.Glypher {
	f.g.r = r
	return &f.g
}

func (f *numericFont) GetYAdvance() uint8 { return uint8(6 * f.scale) }

func (g *numericGlyph) Draw(display drivers.Displayer, x, y int16, c color.RGBA) {
	rows := numericGlyphs[g.r]
	top := y - 5*g.scale
	for row, bits := range rows {
		for col := int16(0); col < 3; col++ {
			if bits&(0b100>>col) == 0 {
				continue
			}
			for dy := int16(0); dy < g.scale; dy++ {
				for dx := int16(0); dx < g.scale; dx++ {
					display.SetPixel(x+col*g.scale+dx, top+int16(row)*g.scale+dy, c)
				}
			}
		}
	}
}

func (g *numericGlyph) Info() tinyfont.GlyphInfo {
	return tinyfont.GlyphInfo{
		Rune:     g.r,
		Width:    uint8(3 * g.scale),
		Height:   uint8(5 * g.scale),
		XAdvance: uint8(4 * g.scale),
		XOffset:  0,
		YOffset:  int8(-5 * g.scale),
	}
}
