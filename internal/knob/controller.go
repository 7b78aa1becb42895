package knob

import (
	"log/slog"
	"sync"
)

// State is the interaction state of a controller.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateTouchDragging
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateTouchDragging:
		return "touch-dragging"
	}
	return "unknown"
}

// session holds the document listeners of one drag. release detaches them
// exactly once no matter how many exit paths fire.
type session struct {
	removes []func()
	once    sync.Once
}

func (s *session) release() {
	s.once.Do(func() {
		for _, remove := range s.removes {
			remove()
		}
		s.removes = nil
	})
}

// Option configures a Controller.
type Option func(*Controller)

// WithOnChange sets the callback invoked on every interactive change.
func WithOnChange(fn func(float64)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithOnChangeEnd sets the callback invoked once when a drag completes.
func WithOnChangeEnd(fn func(float64)) Option {
	return func(c *Controller) { c.onChangeEnd = fn }
}

// WithPixelRatio sets the device pixel ratio query used by Draw.
func WithPixelRatio(r PixelRatio) Option {
	return func(c *Controller) { c.ratio = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller turns input events into value requests and draws the knob.
// It never changes its configuration on its own: callbacks report the
// requested value and the host answers with SetConfig.
type Controller struct {
	cfg Config
	geo Geometry
	doc *Target

	// originX and originY locate the surface's top-left corner in client
	// coordinates.
	originX, originY float64

	onChange    func(float64)
	onChangeEnd func(float64)
	ratio       PixelRatio
	log         *slog.Logger

	state      State
	session    *session
	touchIndex int
	last       float64
	scale      float64
}

// NewController creates a controller whose drag listeners attach to doc.
func NewController(cfg Config, doc *Target, opts ...Option) *Controller {
	c := &Controller{
		cfg:   cfg,
		geo:   Derive(cfg),
		doc:   doc,
		scale: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = Logger()
	}
	return c
}

// SetConfig installs the next configuration supplied by the host.
func (c *Controller) SetConfig(cfg Config) {
	c.cfg = cfg
	c.geo = Derive(cfg)
}

func (c *Controller) Config() Config { return c.cfg }

func (c *Controller) Geometry() Geometry { return c.geo }

// SetOrigin moves the surface's top-left corner in client coordinates.
func (c *Controller) SetOrigin(x, y float64) {
	c.originX, c.originY = x, y
}

func (c *Controller) State() State { return c.state }

// TouchIndex is the tracked touch slot. It is only meaningful while the
// state is StateTouchDragging.
func (c *Controller) TouchIndex() int { return c.touchIndex }

// Scale is the pixel scale used by the last Draw.
func (c *Controller) Scale() float64 { return c.scale }

func (c *Controller) valueAt(x, y float64) float64 {
	return ScreenToValue(c.cfg, c.geo, x-c.originX, y-c.originY)
}

func (c *Controller) emit(v float64) {
	c.last = v
	if c.onChange != nil {
		c.onChange(v)
	}
}

func (c *Controller) commit(v float64) {
	c.last = v
	if c.onChangeEnd != nil {
		c.onChangeEnd(v)
	}
}

func (c *Controller) open(state State, handlers map[EventKind]Handler) {
	s := &session{}
	for kind, fn := range handlers {
		s.removes = append(s.removes, c.doc.Listen(kind, fn))
	}
	c.session = s
	c.state = state
	c.log.Debug("knob: session opened", "state", state)
}

func (c *Controller) close() {
	if c.session == nil {
		return
	}
	c.session.release()
	c.session = nil
	c.log.Debug("knob: session closed", "state", c.state, "value", c.last)
	c.state = StateIdle
}

// PointerDown starts a pointer drag. The pressed position is reported
// before the session opens.
func (c *Controller) PointerDown(ev *Event) {
	if c.cfg.ReadOnly || c.state != StateIdle {
		return
	}
	c.emit(c.valueAt(ev.X, ev.Y))
	c.open(StateDragging, map[EventKind]Handler{
		EventPointerMove: c.pointerMove,
		EventPointerUp:   c.pointerUp,
		EventKeyUp:       c.escape,
	})
}

func (c *Controller) pointerMove(ev *Event) {
	ev.PreventDefault()
	c.emit(c.valueAt(ev.X, ev.Y))
}

func (c *Controller) pointerUp(ev *Event) {
	c.commit(c.valueAt(ev.X, ev.Y))
	c.close()
}

// escape ends any drag, committing the last reported value.
func (c *Controller) escape(ev *Event) {
	if ev.Key != KeyEscape {
		return
	}
	ev.PreventDefault()
	c.commit(c.last)
	c.close()
}

// TouchStart starts a touch drag tracking the last touch in the list for
// the rest of the session. A touchstart during a touch drag moves the
// tracked index to the newest last touch and reports its value, keeping the
// open session. The index is reused verbatim on later events, so a host that
// reorders its touch list mid-drag will track a different finger.
func (c *Controller) TouchStart(ev *Event) {
	if c.cfg.ReadOnly || (c.state != StateIdle && c.state != StateTouchDragging) {
		return
	}
	ev.PreventDefault()
	if len(ev.Touches) == 0 {
		return
	}
	c.touchIndex = len(ev.Touches) - 1
	p := ev.Touches[c.touchIndex]
	c.emit(c.valueAt(p.X, p.Y))
	if c.state == StateTouchDragging {
		c.log.Debug("knob: touch retargeted", "index", c.touchIndex)
		return
	}
	c.open(StateTouchDragging, map[EventKind]Handler{
		EventTouchMove:   c.touchMove,
		EventTouchEnd:    c.touchEnd,
		EventTouchCancel: c.touchEnd,
		EventKeyUp:       c.escape,
	})
}

func (c *Controller) touchMove(ev *Event) {
	ev.PreventDefault()
	if c.touchIndex >= len(ev.Touches) {
		c.abort(ev)
		return
	}
	p := ev.Touches[c.touchIndex]
	c.emit(c.valueAt(p.X, p.Y))
}

func (c *Controller) touchEnd(ev *Event) {
	if c.touchIndex >= len(ev.ChangedTouches) {
		c.abort(ev)
		return
	}
	p := ev.ChangedTouches[c.touchIndex]
	c.commit(c.valueAt(p.X, p.Y))
	c.close()
}

// abort closes the session without reporting a value.
func (c *Controller) abort(ev *Event) {
	c.log.Debug("knob: touch index out of range, aborting session",
		"event", ev.Kind, "index", c.touchIndex)
	c.close()
}

// Wheel moves the value one step per event.
func (c *Controller) Wheel(ev *Event) {
	if c.cfg.ReadOnly || c.cfg.DisableMouseWheel {
		return
	}
	ev.PreventDefault()
	switch {
	case ev.DeltaX > 0 || ev.DeltaY > 0:
		c.emit(StepUp(c.cfg, c.cfg.Value))
	case ev.DeltaX < 0 || ev.DeltaY < 0:
		c.emit(StepDown(c.cfg, c.cfg.Value))
	}
}

// KeyDown handles the arrow keys: left and down decrement, right and up
// increment. A read-only knob ignores them like every other input.
func (c *Controller) KeyDown(ev *Event) {
	if c.cfg.ReadOnly {
		return
	}
	switch ev.Key {
	case KeyArrowLeft, KeyArrowDown:
		ev.PreventDefault()
		c.emit(StepDown(c.cfg, c.cfg.Value))
	case KeyArrowRight, KeyArrowUp:
		ev.PreventDefault()
		c.emit(StepUp(c.cfg, c.cfg.Value))
	}
}

// TextInput reports directly entered text as a value. It is not snapped
// to the step grid.
func (c *Controller) TextInput(text string) {
	if c.cfg.ReadOnly || c.cfg.DisableTextInput {
		return
	}
	c.emit(ParseEntry(c.cfg, text))
}

// Draw renders the current configuration onto s.
func (c *Controller) Draw(s Surface) Center {
	c.scale = pixelScale(c.ratio)
	return Render(s, c.cfg, c.geo, c.scale)
}

// Close releases any open session. The controller stays usable.
func (c *Controller) Close() {
	c.close()
}
