package surface

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/gogpu/gg"

	"github.com/iburimskiy/knob/internal/knob"
)

// Raster draws knob arcs on a CPU gg.Context. gg does not scale arc radii
// with the context transform, so the scale is applied here instead.
type Raster struct {
	dc     *gg.Context
	sx, sy float64
	stroke color.Color
	width  float64
	cap    knob.LineCap
}

func NewRaster() *Raster {
	return &Raster{dc: gg.NewContext(1, 1), sx: 1, sy: 1, stroke: color.Black}
}

// SetSize resizes the context, or clears it when the size is unchanged.
func (r *Raster) SetSize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if r.dc.Width() == width && r.dc.Height() == height {
		r.dc.Clear()
	} else if err := r.dc.Resize(width, height); err != nil {
		knob.Logger().Warn("surface: raster resize failed", "width", width, "height", height, "err", err)
	}
	r.dc.ClearPath()
	r.sx, r.sy = 1, 1
}

func (r *Raster) Scale(sx, sy float64) {
	r.sx *= sx
	r.sy *= sy
}

func (r *Raster) BeginPath() {
	r.dc.ClearPath()
}

// Arc follows canvas semantics: a span of a full turn or more draws a
// circle, shorter spans wrap modulo 2π in the drawing direction. gg only
// draws in increasing angle, so anticlockwise arcs are issued from end to
// start.
func (r *Raster) Arc(cx, cy, rad, start, end float64, anticlockwise bool) {
	from, sweep := start, end-start
	if anticlockwise {
		from, sweep = end, start-end
	}
	if sweep >= 2*math.Pi {
		sweep = 2 * math.Pi
	} else if sweep = math.Mod(sweep, 2*math.Pi); sweep < 0 {
		sweep += 2 * math.Pi
	}
	if sweep == 0 || math.IsNaN(sweep) {
		return
	}
	r.dc.DrawArc(cx*r.sx, cy*r.sy, rad*r.sx, from, from+sweep)
}

// SetStrokeColor ignores nil, keeping the previous color.
func (r *Raster) SetStrokeColor(c color.Color) {
	if c != nil {
		r.stroke = c
	}
}

func (r *Raster) SetLineWidth(w float64) { r.width = w }

func (r *Raster) SetLineCap(lc knob.LineCap) { r.cap = lc }

func (r *Raster) Stroke() {
	r.dc.SetColor(r.stroke)
	r.dc.SetLineWidth(r.width * r.sx)
	switch r.cap {
	case knob.LineCapRound:
		r.dc.SetLineCap(gg.LineCapRound)
	default:
		r.dc.SetLineCap(gg.LineCapButt)
	}
	if err := r.dc.Stroke(); err != nil {
		knob.Logger().Warn("surface: raster stroke failed", "err", err)
	}
}

func (r *Raster) Image() image.Image { return r.dc.Image() }

func (r *Raster) EncodePNG(w io.Writer) error { return r.dc.EncodePNG(w) }

func (r *Raster) Close() error { return r.dc.Close() }
