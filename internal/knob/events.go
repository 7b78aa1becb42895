package knob

// EventKind identifies an input event.
type EventKind int

const (
	EventPointerDown EventKind = iota
	EventPointerMove
	EventPointerUp
	EventTouchStart
	EventTouchMove
	EventTouchEnd
	EventTouchCancel
	EventWheel
	EventKeyDown
	EventKeyUp
)

var eventNames = [...]string{
	EventPointerDown: "pointerdown",
	EventPointerMove: "pointermove",
	EventPointerUp:   "pointerup",
	EventTouchStart:  "touchstart",
	EventTouchMove:   "touchmove",
	EventTouchEnd:    "touchend",
	EventTouchCancel: "touchcancel",
	EventWheel:       "wheel",
	EventKeyDown:     "keydown",
	EventKeyUp:       "keyup",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// Key is a keyboard key relevant to the knob.
type Key int

const (
	KeyUnknown Key = iota
	KeyArrowLeft
	KeyArrowUp
	KeyArrowRight
	KeyArrowDown
	KeyEscape
)

// Point is a position in client coordinates.
type Point struct {
	X, Y float64
}

// Event carries one input event. X and Y are client coordinates for pointer
// events. Touches lists the active touch points on the target in host order;
// ChangedTouches lists the points that ended for touchend and touchcancel.
// DeltaX and DeltaY follow the DOM wheel convention: positive scrolls down.
type Event struct {
	Kind           EventKind
	X, Y           float64
	Touches        []Point
	ChangedTouches []Point
	Key            Key
	DeltaX, DeltaY float64

	defaultPrevented bool
}

// PreventDefault suppresses the host's default action (scrolling,
// selection, page navigation).
func (e *Event) PreventDefault() { e.defaultPrevented = true }

func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Handler receives dispatched events.
type Handler func(*Event)

type listener struct {
	id int
	fn Handler
}

// Target is an input surface that handlers can be attached to. Hosts keep one
// document-wide Target so drags keep resolving outside a knob's bounds.
// A Target is not safe for concurrent use.
type Target struct {
	nextID    int
	listeners map[EventKind][]listener
}

func NewTarget() *Target {
	return &Target{listeners: make(map[EventKind][]listener)}
}

// Listen attaches fn for kind. The returned function detaches it and may be
// called any number of times.
func (t *Target) Listen(kind EventKind, fn Handler) (remove func()) {
	t.nextID++
	id := t.nextID
	t.listeners[kind] = append(t.listeners[kind], listener{id: id, fn: fn})
	return func() {
		ls := t.listeners[kind]
		for i, l := range ls {
			if l.id == id {
				t.listeners[kind] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers ev to every handler attached for ev.Kind at the time of
// the call. Handlers may detach themselves while running.
func (t *Target) Dispatch(ev *Event) {
	ls := t.listeners[ev.Kind]
	if len(ls) == 0 {
		return
	}
	snapshot := make([]listener, len(ls))
	copy(snapshot, ls)
	for _, l := range snapshot {
		l.fn(ev)
	}
}

// Listeners returns the number of handlers attached for kind.
func (t *Target) Listeners(kind EventKind) int {
	return len(t.listeners[kind])
}
