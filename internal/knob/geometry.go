package knob

import (
	"errors"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// arcNudge keeps a zero-length arc from being closed into a full circle by
// the raster arc primitive.
const arcNudge = 0.00001

// ArcMode selects the widening applied by ValueToAngle.
type ArcMode int

const (
	ArcForeground ArcMode = iota
	ArcCursor
	ArcConnector
)

// Geometry is the state derived from a Config. It is rebuilt from scratch
// whenever the configuration changes and never patched in place.
type Geometry struct {
	Width  float64
	Height float64

	// AngleArc and AngleOffset are the configured angles in radians.
	AngleArc    float64
	AngleOffset float64

	// StartAngle and EndAngle bound the full arc in canvas space, where
	// angle zero is 3 o'clock and 1.5π is 12 o'clock.
	StartAngle float64
	EndAngle   float64

	// Digits is the label width hint.
	Digits int
}

// Derive computes the geometry for cfg.
func Derive(cfg Config) Geometry {
	w := cfg.Width
	if w == 0 {
		w = 200
	}
	h := cfg.Height
	if h == 0 {
		h = w
	}
	arc := cfg.AngleArc * math.Pi / 180
	off := cfg.AngleOffset * math.Pi / 180
	return Geometry{
		Width:       w,
		Height:      h,
		AngleArc:    arc,
		AngleOffset: off,
		StartAngle:  1.5*math.Pi + off,
		EndAngle:    1.5*math.Pi + off + arc,
		Digits:      max(len(formatNumber(math.Abs(cfg.Min))), len(formatNumber(math.Abs(cfg.Max))), 2) + 2,
	}
}

// Arc is a span for the raster arc primitive.
type Arc struct {
	Start         float64
	End           float64
	Anticlockwise bool
}

// sweep is the unclamped angle of v measured from the start of the arc.
// Logarithmic mode requires Min > 0; otherwise the result is NaN.
func sweep(cfg Config, geo Geometry, v float64) float64 {
	if !cfg.Log {
		return (v - cfg.Min) * geo.AngleArc / (cfg.Max - cfg.Min)
	}
	return math.Log(math.Pow(v/cfg.Min, geo.AngleArc)) / math.Log(cfg.Max/cfg.Min)
}

// ValueToAngle maps v onto the arc. Cursor mode widens the arc end by the
// spec's width multiplier in hundredths of a radian on each side; connector
// mode expects v to be the midpoint of the first two markers and widens by
// a length derived from their distance.
//
// The anticlockwise flag is only set when no cursor decoration is active;
// cursor arcs are always issued clockwise.
func ValueToAngle(cfg Config, geo Geometry, v float64, mode ArcMode, spec CursorSpec) Arc {
	angle := sweep(cfg, geo, v)

	var a Arc
	if cfg.Clockwise {
		a.Start = geo.StartAngle - arcNudge
		a.End = a.Start + angle + arcNudge
	} else {
		a.Start = geo.EndAngle + arcNudge
		a.End = a.Start - angle - arcNudge
	}

	switch {
	case mode == ArcConnector && cfg.hasConnector():
		specs := cfg.Cursor.specs
		multiplier := cfg.AngleArc/(cfg.Max-cfg.Min) - 1
		length := multiplier * (cfg.specValue(specs[1]) - cfg.specValue(specs[0]))
		ext := length / 100
		a.Start = a.End - ext
		a.End += ext
	case mode == ArcCursor && cfg.Cursor.Enabled():
		ext := widthMultiplier(spec) / 100
		a.Start = a.End - ext
		a.End += ext
	}

	a.Anticlockwise = !cfg.Clockwise && !cfg.Cursor.Enabled()
	return a
}

// ConnectorArc returns the arc bridging the first two cursor markers, or
// false when no connector applies.
func ConnectorArc(cfg Config, geo Geometry) (Arc, bool) {
	if !cfg.hasConnector() {
		return Arc{}, false
	}
	specs := cfg.Cursor.specs
	mid := (cfg.specValue(specs[0]) + cfg.specValue(specs[1])) / 2
	return ValueToAngle(cfg, geo, mid, ArcConnector, CursorSpec{}), true
}

func widthMultiplier(s CursorSpec) float64 {
	if s.WidthMultiplier == 0 {
		return 1
	}
	return s.WidthMultiplier
}

// ScreenToValue maps a surface-local point to a step-aligned value.
func ScreenToValue(cfg Config, geo Geometry, x, y float64) float64 {
	// Arguments are swapped so zero sits at 12 o'clock.
	a := math.Atan2(x-geo.Width/2, geo.Width/2-y) - geo.AngleOffset
	if !cfg.Clockwise {
		a = geo.AngleArc - a - 2*math.Pi
	}
	if geo.AngleArc != math.Pi*2 && a < 0 && a > -0.5 {
		a = 0
	} else if a < 0 {
		a += math.Pi * 2
	}

	var v float64
	if !cfg.Log {
		v = a*(cfg.Max-cfg.Min)/geo.AngleArc + cfg.Min
	} else {
		v = math.Pow(cfg.Max/cfg.Min, a/geo.AngleArc) * cfg.Min
	}
	return CoerceToStep(cfg, v)
}

// CoerceToStep snaps v to the step grid (in log space when Log is set),
// clamps it to [Min, Max] and rounds to three decimals. It never fails:
// a configuration that yields NaN produces 0.
func CoerceToStep(cfg Config, v float64) float64 {
	var val float64
	if !cfg.Log {
		half := 0.5
		if v < 0 {
			half = -0.5
		}
		val = toInt32(half+v/cfg.Step) * cfg.Step
	} else {
		half := 0.5
		if math.Abs(v) < 1 {
			half = -0.5
		}
		val = math.Pow(cfg.Step, toInt32(half+math.Log(v)/math.Log(cfg.Step)))
	}
	val = math.Max(math.Min(val, cfg.Max), cfg.Min)
	if math.IsNaN(val) {
		val = 0
	}
	return math.Floor(val*1000+0.5) / 1000
}

// toInt32 truncates x with 32-bit wraparound; NaN and infinities become 0.
func toInt32(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	const two32, two31 = 1 << 32, 1 << 31
	t := math.Mod(math.Trunc(x), two32)
	switch {
	case t >= two31:
		t -= two32
	case t < -two31:
		t += two32
	}
	return t
}

// StepUp returns v moved one step up: additive in linear mode,
// multiplicative in log mode.
func StepUp(cfg Config, v float64) float64 {
	if !cfg.Log {
		return CoerceToStep(cfg, v+cfg.Step)
	}
	return CoerceToStep(cfg, v*cfg.Step)
}

// StepDown is the inverse of StepUp.
func StepDown(cfg Config, v float64) float64 {
	if !cfg.Log {
		return CoerceToStep(cfg, v-cfg.Step)
	}
	return CoerceToStep(cfg, v/cfg.Step)
}

// ParseEntry converts direct text entry into a value. The result is clamped
// but not snapped to the step grid; unparsable text and a zero result fall
// back to Min.
func ParseEntry(cfg Config, text string) float64 {
	v := math.Max(math.Min(parseNumber(strings.TrimSpace(text)), cfg.Max), cfg.Min)
	if v == 0 || math.IsNaN(v) {
		return cfg.Min
	}
	return v
}

// parseNumber reads trimmed text the way a browser converts a form field to
// a number: empty is zero, only "Infinity" spells infinity, and unsigned
// 0x, 0o and 0b prefixes select an integer base.
func parseNumber(s string) float64 {
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if errors.Is(err, strconv.ErrRange) {
				return math.Inf(1)
			}
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// DrawLayout returns the per-draw center coordinate, arc radius and line
// width.
func DrawLayout(geo Geometry, thickness float64) (xy, radius, lineWidth float64) {
	xy = geo.Width / 2
	lineWidth = xy * thickness
	radius = xy - lineWidth/2
	return xy, radius, lineWidth
}

// Label is the box of the numeric field centered in the knob, in the knob's
// local pixel frame.
type Label struct {
	X, Y          int
	Width, Height int
	FontSize      int
	Font          string
	FontWeight    string
	Color         color.Color
}

// LabelLayout sizes the center field to the knob width and digit count.
func LabelLayout(cfg Config, geo Geometry) Label {
	w := geo.Width
	c := cfg.InputColor
	if c == nil {
		c = cfg.FgColor
	}
	return Label{
		X:          int(w) - int(w*3/4+2),
		Y:          int(w / 3),
		Width:      int(w/2 + 4),
		Height:     int(w / 3),
		FontSize:   int(w / float64(geo.Digits)),
		Font:       cfg.Font,
		FontWeight: cfg.FontWeight,
		Color:      c,
	}
}

// Tooltip is the hover text of a knob.
func Tooltip(cfg Config) string {
	if cfg.Title != "" {
		return cfg.Title + ": " + formatNumber(cfg.Value)
	}
	return formatNumber(cfg.Value)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
