package knob

import (
	"image/color"
	"math"
)

// Surface is the raster target of a knob. Arcs follow the HTML canvas
// convention: angles in radians from 3 o'clock, increasing clockwise on a
// y-down surface.
type Surface interface {
	// SetSize sets the backing pixel size and clears prior drawing and
	// transforms.
	SetSize(width, height int)
	Scale(sx, sy float64)
	BeginPath()
	Arc(cx, cy, r, start, end float64, anticlockwise bool)
	SetStrokeColor(c color.Color)
	SetLineWidth(w float64)
	SetLineCap(lc LineCap)
	Stroke()
}

// PixelRatio reports the device pixel density of the host display.
type PixelRatio interface {
	DeviceScaleFactor() float64
}

// FixedRatio is a constant PixelRatio.
type FixedRatio float64

func (r FixedRatio) DeviceScaleFactor() float64 { return float64(r) }

func pixelScale(r PixelRatio) float64 {
	if r == nil {
		return 1
	}
	s := r.DeviceScaleFactor()
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return 1
	}
	return s
}

// CenterKind selects what the host shows inside the ring.
type CenterKind int

const (
	CenterNone CenterKind = iota
	CenterInput
	CenterCustom
)

// Center describes the center content left for the host to draw.
type Center struct {
	Kind CenterKind
	// Text and Label are set for CenterInput.
	Text     string
	Label    Label
	Editable bool
}

// Render draws the knob: background ring, connector, then cursors or the
// foreground arc. The resize in SetSize is what clears the previous frame.
func Render(s Surface, cfg Config, geo Geometry, scale float64) Center {
	s.SetSize(int(geo.Width*scale), int(geo.Height*scale))
	s.Scale(scale, scale)

	xy, radius, lineWidth := DrawLayout(geo, cfg.Thickness)
	s.SetLineWidth(lineWidth)
	s.SetLineCap(cfg.LineCap)

	s.BeginPath()
	s.SetStrokeColor(cfg.BgColor)
	s.Arc(xy, xy, radius, geo.EndAngle-arcNudge, geo.StartAngle+arcNudge, true)
	s.Stroke()

	if a, ok := ConnectorArc(cfg, geo); ok {
		w := cfg.Connector.Width
		if w == 0 {
			w = lineWidth
		}
		s.BeginPath()
		s.SetStrokeColor(cfg.Connector.Color)
		s.SetLineWidth(w)
		s.Arc(xy, xy, radius, a.Start, a.End, a.Anticlockwise)
		s.Stroke()
	}

	switch cfg.Cursor.Mode() {
	case ModeList:
		specs := cfg.Cursor.Specs()
		for i := len(specs) - 1; i >= 0; i-- {
			spec := specs[i]
			a := ValueToAngle(cfg, geo, cfg.specValue(spec), ArcCursor, spec)
			c := spec.Color
			if c == nil {
				c = cfg.FgColor
			}
			s.BeginPath()
			s.SetStrokeColor(c)
			s.SetLineWidth(lineWidth * widthMultiplier(spec))
			s.Arc(xy, xy, radius, a.Start, a.End, a.Anticlockwise)
			s.Stroke()
		}
	case ModeSingle:
		a := ValueToAngle(cfg, geo, cfg.Value, ArcForeground, CursorSpec{})
		s.BeginPath()
		s.SetStrokeColor(cfg.FgColor)
		s.SetLineWidth(lineWidth)
		s.Arc(xy, xy, radius, a.Start, a.End, a.Anticlockwise)
		s.Stroke()
	}

	switch {
	case cfg.DisplayInput:
		return Center{
			Kind:     CenterInput,
			Text:     formatNumber(cfg.Value),
			Label:    LabelLayout(cfg, geo),
			Editable: !cfg.ReadOnly && !cfg.DisableTextInput,
		}
	case cfg.DisplayCustom != nil:
		cfg.DisplayCustom()
		return Center{Kind: CenterCustom}
	}
	return Center{}
}
