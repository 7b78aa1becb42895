package knob

import "testing"

type recorder struct {
	changes []float64
	commits []float64
}

func (r *recorder) options() []Option {
	return []Option{
		WithOnChange(func(v float64) { r.changes = append(r.changes, v) }),
		WithOnChangeEnd(func(v float64) { r.commits = append(r.commits, v) }),
	}
}

func (r *recorder) lastChange() float64 {
	if len(r.changes) == 0 {
		return -1
	}
	return r.changes[len(r.changes)-1]
}

func newTestController(cfg Config) (*Controller, *Target, *recorder) {
	doc := NewTarget()
	rec := &recorder{}
	return NewController(cfg, doc, rec.options()...), doc, rec
}

func sessionListeners(doc *Target) int {
	n := 0
	for _, k := range []EventKind{EventPointerMove, EventPointerUp, EventKeyUp, EventTouchMove, EventTouchEnd, EventTouchCancel} {
		n += doc.Listeners(k)
	}
	return n
}

func TestPointerDrag(t *testing.T) {
	c, doc, rec := newTestController(linearConfig())

	c.PointerDown(&Event{Kind: EventPointerDown, X: 150, Y: 50})
	if c.State() != StateDragging {
		t.Fatalf("State = %v, want dragging", c.State())
	}
	if len(rec.changes) != 1 || rec.changes[0] != 13 {
		t.Fatalf("press changes = %v, want [13]", rec.changes)
	}
	if got := sessionListeners(doc); got != 3 {
		t.Fatalf("listeners after press = %d, want 3", got)
	}

	move := &Event{Kind: EventPointerMove, X: 190, Y: 100}
	doc.Dispatch(move)
	if !move.DefaultPrevented() {
		t.Error("move did not prevent default")
	}
	if rec.lastChange() != 25 {
		t.Errorf("move value = %v, want 25", rec.lastChange())
	}

	doc.Dispatch(&Event{Kind: EventPointerUp, X: 100, Y: 190})
	if len(rec.commits) != 1 || rec.commits[0] != 50 {
		t.Errorf("commits = %v, want [50]", rec.commits)
	}
	if c.State() != StateIdle {
		t.Errorf("State after release = %v, want idle", c.State())
	}
	if got := sessionListeners(doc); got != 0 {
		t.Errorf("listeners after release = %d, want 0", got)
	}

	// Events after release reach nobody.
	doc.Dispatch(&Event{Kind: EventPointerMove, X: 10, Y: 10})
	if len(rec.changes) != 2 {
		t.Errorf("changes after release = %v", rec.changes)
	}
}

func TestRepeatedDragsDoNotLeakListeners(t *testing.T) {
	c, doc, rec := newTestController(linearConfig())
	for i := 0; i < 10; i++ {
		c.PointerDown(&Event{X: 150, Y: 50})
		doc.Dispatch(&Event{Kind: EventPointerMove, X: 150, Y: 60})
		doc.Dispatch(&Event{Kind: EventPointerUp, X: 150, Y: 60})
	}
	if got := sessionListeners(doc); got != 0 {
		t.Errorf("listeners = %d, want 0", got)
	}
	if len(rec.commits) != 10 {
		t.Errorf("commits = %d, want 10", len(rec.commits))
	}
}

func TestEscapeCommitsLastValue(t *testing.T) {
	c, doc, rec := newTestController(linearConfig())
	c.PointerDown(&Event{X: 150, Y: 50})
	doc.Dispatch(&Event{Kind: EventPointerMove, X: 190, Y: 100})

	other := &Event{Kind: EventKeyUp, Key: KeyArrowLeft}
	doc.Dispatch(other)
	if c.State() != StateDragging || other.DefaultPrevented() {
		t.Fatal("non-escape keyup ended the drag")
	}

	esc := &Event{Kind: EventKeyUp, Key: KeyEscape}
	doc.Dispatch(esc)
	if !esc.DefaultPrevented() {
		t.Error("escape did not prevent default")
	}
	if len(rec.commits) != 1 || rec.commits[0] != 25 {
		t.Errorf("commits = %v, want [25]", rec.commits)
	}
	if c.State() != StateIdle || sessionListeners(doc) != 0 {
		t.Errorf("escape left state %v with %d listeners", c.State(), sessionListeners(doc))
	}

	doc.Dispatch(&Event{Kind: EventPointerUp, X: 150, Y: 50})
	if len(rec.commits) != 1 {
		t.Errorf("release after escape committed again: %v", rec.commits)
	}
}

func TestSessionReleaseOnce(t *testing.T) {
	calls := 0
	s := &session{removes: []func(){func() { calls++ }}}
	s.release()
	s.release()
	if calls != 1 {
		t.Errorf("remove called %d times, want 1", calls)
	}
}

func TestTouchDragTracksLastTouch(t *testing.T) {
	c, doc, rec := newTestController(linearConfig())

	start := &Event{Kind: EventTouchStart, Touches: []Point{{10, 100}, {100, 190}, {150, 50}}}
	c.TouchStart(start)
	if !start.DefaultPrevented() {
		t.Error("touchstart did not prevent default")
	}
	if c.State() != StateTouchDragging || c.TouchIndex() != 2 {
		t.Fatalf("state %v index %d, want touch-dragging 2", c.State(), c.TouchIndex())
	}
	if rec.lastChange() != 13 {
		t.Errorf("start value = %v, want 13", rec.lastChange())
	}

	doc.Dispatch(&Event{Kind: EventTouchMove, Touches: []Point{{150, 50}, {150, 50}, {190, 100}}})
	if rec.lastChange() != 25 {
		t.Errorf("move value = %v, want 25 from index 2", rec.lastChange())
	}

	doc.Dispatch(&Event{Kind: EventTouchEnd, ChangedTouches: []Point{{0, 0}, {0, 0}, {100, 190}}})
	if len(rec.commits) != 1 || rec.commits[0] != 50 {
		t.Errorf("commits = %v, want [50]", rec.commits)
	}
	if c.State() != StateIdle || sessionListeners(doc) != 0 {
		t.Errorf("touchend left state %v with %d listeners", c.State(), sessionListeners(doc))
	}
}

func TestTouchStartDuringDragRetargets(t *testing.T) {
	c, doc, rec := newTestController(linearConfig())

	c.TouchStart(&Event{Kind: EventTouchStart, Touches: []Point{{10, 100}}})
	c.TouchStart(&Event{Kind: EventTouchStart, Touches: []Point{{10, 100}, {100, 190}}})
	c.TouchStart(&Event{Kind: EventTouchStart, Touches: []Point{{10, 100}, {100, 190}, {150, 50}}})

	if c.State() != StateTouchDragging || c.TouchIndex() != 2 {
		t.Fatalf("state %v index %d, want touch-dragging 2", c.State(), c.TouchIndex())
	}
	if want := []float64{75, 50, 13}; len(rec.changes) != 3 || rec.changes[0] != want[0] || rec.changes[1] != want[1] || rec.changes[2] != want[2] {
		t.Errorf("changes = %v, want %v", rec.changes, want)
	}
	if n := doc.Listeners(EventTouchMove); n != 1 {
		t.Errorf("touchmove listeners = %d, want one session", n)
	}

	doc.Dispatch(&Event{Kind: EventTouchMove, Touches: []Point{{10, 100}, {100, 190}, {190, 100}}})
	if rec.lastChange() != 25 {
		t.Errorf("move value = %v, want 25 from index 2", rec.lastChange())
	}
	doc.Dispatch(&Event{Kind: EventTouchEnd, ChangedTouches: []Point{{10, 100}, {100, 190}, {190, 100}}})
	if len(rec.commits) != 1 || rec.commits[0] != 25 || sessionListeners(doc) != 0 {
		t.Errorf("commits = %v with %d listeners left", rec.commits, sessionListeners(doc))
	}
}

func TestTouchCancelEndsSession(t *testing.T) {
	c, doc, rec := newTestController(linearConfig())
	c.TouchStart(&Event{Touches: []Point{{150, 50}}})
	doc.Dispatch(&Event{Kind: EventTouchCancel, ChangedTouches: []Point{{190, 100}}})
	if len(rec.commits) != 1 || rec.commits[0] != 25 {
		t.Errorf("commits = %v, want [25]", rec.commits)
	}
	if c.State() != StateIdle {
		t.Errorf("State = %v, want idle", c.State())
	}
}

func TestTouchIndexOutOfRangeAborts(t *testing.T) {
	c, doc, rec := newTestController(linearConfig())
	c.TouchStart(&Event{Touches: []Point{{150, 50}, {150, 50}}})

	doc.Dispatch(&Event{Kind: EventTouchMove, Touches: []Point{{190, 100}}})
	if c.State() != StateIdle {
		t.Fatalf("State = %v, want idle after abort", c.State())
	}
	if len(rec.changes) != 1 || len(rec.commits) != 0 {
		t.Errorf("abort reported values: changes %v commits %v", rec.changes, rec.commits)
	}
	if got := sessionListeners(doc); got != 0 {
		t.Errorf("listeners after abort = %d, want 0", got)
	}

	c.TouchStart(&Event{Touches: []Point{{150, 50}, {150, 50}}})
	doc.Dispatch(&Event{Kind: EventTouchEnd, ChangedTouches: []Point{{190, 100}}})
	if c.State() != StateIdle || len(rec.commits) != 0 {
		t.Errorf("short touchend: state %v commits %v", c.State(), rec.commits)
	}
}

func TestTouchStartWithoutTouches(t *testing.T) {
	c, doc, rec := newTestController(linearConfig())
	c.TouchStart(&Event{})
	if c.State() != StateIdle || len(rec.changes) != 0 || sessionListeners(doc) != 0 {
		t.Errorf("empty touchstart opened a session")
	}
}

func TestPressWhileDraggingIgnored(t *testing.T) {
	c, doc, rec := newTestController(linearConfig())
	c.PointerDown(&Event{X: 150, Y: 50})
	c.PointerDown(&Event{X: 190, Y: 100})
	c.TouchStart(&Event{Touches: []Point{{190, 100}}})
	if len(rec.changes) != 1 || sessionListeners(doc) != 3 {
		t.Errorf("second press: changes %v listeners %d", rec.changes, sessionListeners(doc))
	}
}

func TestOrigin(t *testing.T) {
	c, _, rec := newTestController(linearConfig())
	c.SetOrigin(300, 40)
	c.PointerDown(&Event{X: 450, Y: 90})
	if rec.lastChange() != 13 {
		t.Errorf("value with origin = %v, want 13", rec.lastChange())
	}
}

func TestWheel(t *testing.T) {
	cfg := linearConfig()
	cfg.Value = 40
	c, _, rec := newTestController(cfg)

	down := &Event{Kind: EventWheel, DeltaY: 3}
	c.Wheel(down)
	if !down.DefaultPrevented() || rec.lastChange() != 41 {
		t.Errorf("wheel down: value %v prevented %v", rec.lastChange(), down.DefaultPrevented())
	}
	c.Wheel(&Event{DeltaY: -1})
	if rec.lastChange() != 39 {
		t.Errorf("wheel up = %v, want 39", rec.lastChange())
	}
	c.Wheel(&Event{DeltaX: 1})
	if rec.lastChange() != 41 {
		t.Errorf("horizontal wheel = %v, want 41", rec.lastChange())
	}
	c.Wheel(&Event{})
	if len(rec.changes) != 3 {
		t.Errorf("zero delta emitted: %v", rec.changes)
	}

	cfg.DisableMouseWheel = true
	c.SetConfig(cfg)
	ev := &Event{DeltaY: 1}
	c.Wheel(ev)
	if len(rec.changes) != 3 || ev.DefaultPrevented() {
		t.Errorf("disabled wheel handled the event")
	}
}

func TestWheelLog(t *testing.T) {
	cfg := logConfig()
	cfg.Value = 10
	c, _, rec := newTestController(cfg)
	c.Wheel(&Event{DeltaY: 1})
	c.Wheel(&Event{DeltaY: -1})
	if len(rec.changes) != 2 || rec.changes[0] != 100 || rec.changes[1] != 1 {
		t.Errorf("log wheel = %v, want [100 1]", rec.changes)
	}
}

func TestKeyDown(t *testing.T) {
	cfg := linearConfig()
	cfg.Value = 10
	c, _, rec := newTestController(cfg)

	tests := []struct {
		key  Key
		want float64
	}{
		{KeyArrowLeft, 9},
		{KeyArrowDown, 9},
		{KeyArrowRight, 11},
		{KeyArrowUp, 11},
	}
	for _, tt := range tests {
		ev := &Event{Kind: EventKeyDown, Key: tt.key}
		c.KeyDown(ev)
		if rec.lastChange() != tt.want || !ev.DefaultPrevented() {
			t.Errorf("key %v: value %v prevented %v, want %v", tt.key, rec.lastChange(), ev.DefaultPrevented(), tt.want)
		}
	}

	ev := &Event{Kind: EventKeyDown, Key: KeyEscape}
	c.KeyDown(ev)
	if len(rec.changes) != len(tests) || ev.DefaultPrevented() {
		t.Error("escape keydown was handled as an arrow")
	}
}

func TestTextInput(t *testing.T) {
	cfg := linearConfig()
	cfg.Min = 5
	c, _, rec := newTestController(cfg)

	c.TextInput("abc")
	c.TextInput("12.345")
	if len(rec.changes) != 2 || rec.changes[0] != 5 || rec.changes[1] != 12.345 {
		t.Errorf("text changes = %v, want [5 12.345]", rec.changes)
	}

	cfg.DisableTextInput = true
	c.SetConfig(cfg)
	c.TextInput("50")
	if len(rec.changes) != 2 {
		t.Errorf("disabled text input emitted %v", rec.changes)
	}
}

func TestReadOnlyIgnoresInput(t *testing.T) {
	cfg := linearConfig()
	cfg.ReadOnly = true
	c, doc, rec := newTestController(cfg)

	c.PointerDown(&Event{X: 150, Y: 50})
	c.TouchStart(&Event{Touches: []Point{{150, 50}}})
	c.Wheel(&Event{DeltaY: 1})
	c.KeyDown(&Event{Key: KeyArrowUp})
	c.TextInput("42")

	if len(rec.changes) != 0 || c.State() != StateIdle || sessionListeners(doc) != 0 {
		t.Errorf("read-only knob reacted: changes %v state %v", rec.changes, c.State())
	}
}

// Arrow keys step an editable knob but not a read-only one, even though a
// read-only text field still receives key events.
func TestReadOnlyIgnoresArrowKeys(t *testing.T) {
	cfg := linearConfig()
	cfg.Value = 10
	cfg.ReadOnly = true
	c, _, rec := newTestController(cfg)

	for _, k := range []Key{KeyArrowLeft, KeyArrowUp, KeyArrowRight, KeyArrowDown} {
		ev := &Event{Kind: EventKeyDown, Key: k}
		c.KeyDown(ev)
		if ev.DefaultPrevented() {
			t.Errorf("key %v prevented default on a read-only knob", k)
		}
	}
	if len(rec.changes) != 0 {
		t.Errorf("read-only arrows emitted %v", rec.changes)
	}

	cfg.ReadOnly = false
	c.SetConfig(cfg)
	c.KeyDown(&Event{Kind: EventKeyDown, Key: KeyArrowUp})
	if rec.lastChange() != 11 {
		t.Errorf("editable arrow = %v, want 11", rec.lastChange())
	}
}

func TestCloseReleasesSession(t *testing.T) {
	c, doc, rec := newTestController(linearConfig())
	c.TouchStart(&Event{Touches: []Point{{150, 50}}})
	c.Close()
	if c.State() != StateIdle || sessionListeners(doc) != 0 {
		t.Errorf("Close left state %v with %d listeners", c.State(), sessionListeners(doc))
	}
	if len(rec.commits) != 0 {
		t.Errorf("Close committed %v", rec.commits)
	}
	c.Close()
}

func TestSetConfigRebuildsGeometry(t *testing.T) {
	c, _, _ := newTestController(linearConfig())
	cfg := linearConfig()
	cfg.Width = 400
	c.SetConfig(cfg)
	if g := c.Geometry(); g.Width != 400 || g.Height != 200 {
		t.Errorf("geometry = %vx%v, want 400x200", g.Width, g.Height)
	}
}
