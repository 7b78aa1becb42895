// Package surface provides knob.Surface implementations: an ebiten offscreen
// image for the interactive board, a gogpu/gg raster for headless rendering,
// and a drivers.Displayer framebuffer for small panels.
package surface

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/knob/internal/knob"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Vector draws knob arcs into an offscreen ebiten image with vector paths.
type Vector struct {
	img    *ebiten.Image
	sx, sy float64
	path   *vector.Path
	stroke color.NRGBA
	width  float64
	cap    knob.LineCap
}

func NewVector() *Vector {
	return &Vector{sx: 1, sy: 1, path: &vector.Path{}}
}

// SetSize reallocates the image when the size changes and clears it
// otherwise. The scale is reset.
func (v *Vector) SetSize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if v.img != nil && v.img.Bounds().Dx() == width && v.img.Bounds().Dy() == height {
		v.img.Clear()
	} else {
		if v.img != nil {
			v.img.Deallocate()
		}
		v.img = ebiten.NewImage(width, height)
	}
	v.sx, v.sy = 1, 1
	v.path = &vector.Path{}
}

func (v *Vector) Scale(sx, sy float64) {
	v.sx *= sx
	v.sy *= sy
}

func (v *Vector) BeginPath() {
	v.path = &vector.Path{}
}

func (v *Vector) Arc(cx, cy, r, start, end float64, anticlockwise bool) {
	dir := vector.Clockwise
	if anticlockwise {
		dir = vector.CounterClockwise
	}
	v.path.Arc(float32(cx*v.sx), float32(cy*v.sy), float32(r*v.sx), float32(start), float32(end), dir)
}

// SetStrokeColor ignores nil, keeping the previous color.
func (v *Vector) SetStrokeColor(c color.Color) {
	if c == nil {
		return
	}
	v.stroke = color.NRGBAModel.Convert(c).(color.NRGBA)
}

func (v *Vector) SetLineWidth(w float64) { v.width = w }

func (v *Vector) SetLineCap(lc knob.LineCap) { v.cap = lc }

func (v *Vector) Stroke() {
	if v.img == nil {
		return
	}
	opts := &vector.StrokeOptions{
		Width:    float32(v.width * v.sx),
		LineJoin: vector.LineJoinRound,
	}
	switch v.cap {
	case knob.LineCapRound:
		opts.LineCap = vector.LineCapRound
	default:
		opts.LineCap = vector.LineCapButt
	}

	vs, is := v.path.AppendVerticesAndIndicesForStroke(nil, nil, opts)
	r := float32(v.stroke.R) / 0xff
	g := float32(v.stroke.G) / 0xff
	b := float32(v.stroke.B) / 0xff
	a := float32(v.stroke.A) / 0xff
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = r
		vs[i].ColorG = g
		vs[i].ColorB = b
		vs[i].ColorA = a
	}
	v.img.DrawTriangles(vs, is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// DrawTo composites the knob onto dst with its top-left corner at (x, y),
// undoing the pixel scale.
func (v *Vector) DrawTo(dst *ebiten.Image, x, y float64) {
	if v.img == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(1/v.sx, 1/v.sy)
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(v.img, op)
}

// Dispose releases the offscreen image.
func (v *Vector) Dispose() {
	if v.img != nil {
		v.img.Deallocate()
		v.img = nil
	}
}
