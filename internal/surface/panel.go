package surface

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Framebuffer is a drivers.Displayer backed by an RGBA image. It stands in
// for a panel driver in headless rendering and tests.
type Framebuffer struct {
	img      *image.RGBA
	Displays int
}

func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (f *Framebuffer) Size() (x, y int16) {
	b := f.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (f *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	if !(image.Point{X: int(x), Y: int(y)}).In(f.img.Bounds()) {
		return
	}
	f.img.SetRGBA(int(x), int(y), c)
}

func (f *Framebuffer) Display() error {
	f.Displays++
	return nil
}

// Fill paints every pixel with c.
func (f *Framebuffer) Fill(c color.RGBA) {
	b := f.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			f.img.SetRGBA(x, y, c)
		}
	}
}

func (f *Framebuffer) Image() *image.RGBA { return f.img }

var _ drivers.Displayer = (*Framebuffer)(nil)

// Blit copies img onto d with its top-left corner at (x, y). Displayers
// cannot be read back, so translucent pixels are blended over bg.
// Fully transparent pixels are left untouched.
func Blit(d drivers.Displayer, img image.Image, x, y int16, bg color.RGBA) {
	w, h := d.Size()
	b := img.Bounds()
	for iy := b.Min.Y; iy < b.Max.Y; iy++ {
		dy := y + int16(iy-b.Min.Y)
		if dy < 0 || dy >= h {
			continue
		}
		for ix := b.Min.X; ix < b.Max.X; ix++ {
			dx := x + int16(ix-b.Min.X)
			if dx < 0 || dx >= w {
				continue
			}
			c := color.NRGBAModel.Convert(img.At(ix, iy)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			d.SetPixel(dx, dy, blend(c, bg))
		}
	}
}

func blend(c color.NRGBA, bg color.RGBA) color.RGBA {
	a := uint32(c.A)
	mix := func(s, d uint8) uint8 {
		return uint8((uint32(s)*a + uint32(d)*(0xff-a) + 0x7f) / 0xff)
	}
	return color.RGBA{R: mix(c.R, bg.R), G: mix(c.G, bg.G), B: mix(c.B, bg.B), A: 0xff}
}

// Label writes text centered on (cx, cy) with the numeric font at the given
// pixel scale.
func Label(d drivers.Displayer, text string, cx, cy int16, scale int, c color.RGBA) {
	if text == "" {
		return
	}
	scale = max(scale, 1)
	f := NumericFont(scale)
	_, w := tinyfont.LineWidth(f, text)
	h := int16(5 * scale)
	tinyfont.WriteLine(d, f, cx-int16(w)/2, cy+h/2, text, c)
}

// LabelScale picks the font scale for a knob label of the given font size
// in pixels.
func LabelScale(fontSize int) int {
	return max(fontSize/7, 1)
}
