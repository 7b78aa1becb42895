package knob

import "image/color"

// LineCap selects the end shape of every stroked arc.
type LineCap int

const (
	LineCapButt LineCap = iota
	LineCapRound
)

// CursorMode is the resolved shape of a Cursor.
type CursorMode int

const (
	// ModeOff draws no foreground or cursor arc.
	ModeOff CursorMode = iota
	// ModeSingle draws one foreground arc at the live value.
	ModeSingle
	// ModeList draws one short arc per CursorSpec.
	ModeList
)

// CursorSpec describes one marker of a cursor list. A nil Value tracks the
// live value of the knob.
type CursorSpec struct {
	Value           *float64
	WidthMultiplier float64
	Color           color.Color
}

// Cursor is the cursor decoration of a knob. The zero value is off.
type Cursor struct {
	on    bool
	specs []CursorSpec
	list  bool
}

func CursorOff() Cursor { return Cursor{} }

func CursorOn() Cursor { return Cursor{on: true} }

// CursorList builds a list of markers. The first spec is painted last so it
// ends up on top.
func CursorList(specs ...CursorSpec) Cursor {
	return Cursor{on: true, list: true, specs: specs}
}

// CursorWidth maps the numeric form of the cursor setting: zero is off and
// any other number is a single implicit cursor.
func CursorWidth(n float64) Cursor {
	if n == 0 || n != n {
		return Cursor{}
	}
	return Cursor{on: true}
}

// Mode resolves the cursor variant. An empty list still counts as an
// enabled cursor and draws the single foreground arc.
func (c Cursor) Mode() CursorMode {
	switch {
	case !c.on:
		return ModeOff
	case c.list && len(c.specs) > 0:
		return ModeList
	default:
		return ModeSingle
	}
}

// Specs returns the markers of a list cursor.
func (c Cursor) Specs() []CursorSpec { return c.specs }

// Enabled reports whether any cursor decoration is configured.
func (c Cursor) Enabled() bool { return c.on }

// Connector links the first two markers of a cursor list with an extra arc.
// Width 0 uses the knob's line width.
type Connector struct {
	Width float64
	Color color.Color
}

// Config is the host-supplied configuration of a knob for one render cycle.
// The knob never mutates it; interaction only requests a new Value through
// the change callbacks.
type Config struct {
	Value float64
	Min   float64
	Max   float64
	Step  float64

	// Log selects logarithmic interpolation and requires Min > 0.
	Log       bool
	Clockwise bool

	// AngleArc and AngleOffset are in degrees.
	AngleArc    float64
	AngleOffset float64

	// Thickness is a fraction of the radius.
	Thickness float64
	Width     float64
	Height    float64
	LineCap   LineCap

	BgColor    color.Color
	FgColor    color.Color
	InputColor color.Color
	Font       string
	FontWeight string

	Cursor    Cursor
	Connector *Connector

	ReadOnly          bool
	Stopper           bool
	DisableTextInput  bool
	DisplayInput      bool
	DisableMouseWheel bool

	// DisplayCustom renders the center when DisplayInput is off.
	DisplayCustom func()
	Title         string
}

var (
	defaultBgColor = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	defaultFgColor = color.RGBA{R: 0xee, G: 0xaa, B: 0x22, A: 0xff}
)

// DefaultConfig returns a 200px clockwise 0..100 knob with a full circle
// arc and no cursor decoration.
func DefaultConfig() Config {
	return Config{
		Min:          0,
		Max:          100,
		Step:         1,
		Clockwise:    true,
		AngleArc:     360,
		AngleOffset:  0,
		Thickness:    0.35,
		Width:        200,
		Height:       200,
		LineCap:      LineCapButt,
		BgColor:      defaultBgColor,
		FgColor:      defaultFgColor,
		Font:         "Arial",
		FontWeight:   "bold",
		Stopper:      true,
		DisplayInput: true,
	}
}

// hasConnector reports whether the connector arc applies: a connector is set
// and the cursor is a list of at least two markers.
func (c Config) hasConnector() bool {
	return c.Connector != nil && c.Cursor.list && len(c.Cursor.specs) > 1
}

// specValue returns the marker's own value or the live value.
func (c Config) specValue(s CursorSpec) float64 {
	if s.Value != nil {
		return *s.Value
	}
	return c.Value
}

// Float returns a pointer to v, for CursorSpec.Value literals.
func Float(v float64) *float64 { return &v }
