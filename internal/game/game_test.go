package game

import (
	"log/slog"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/knob/internal/config"
	"github.com/iburimskiy/knob/internal/knob"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	b := NewBoard(slog.New(slog.DiscardHandler))
	t.Cleanup(b.Close)
	return b
}

func TestBoardLayout(t *testing.T) {
	b := newTestBoard(t)
	if len(b.knobs) != 4 {
		t.Fatalf("knobs = %d, want 4", len(b.knobs))
	}
	for i, s := range b.knobs {
		if s.cfg.Width != config.KnobSize || s.cfg.Title != s.name {
			t.Errorf("knob %d = %+v", i, s.cfg)
		}
		cx := int(s.x) + config.KnobSize/2
		cy := int(s.y) + config.KnobSize/2
		if b.knobAt(cx, cy) != s {
			t.Errorf("knobAt center of %s missed", s.name)
		}
	}
	if b.knobAt(0, 0) != nil {
		t.Error("knobAt(0, 0) hit a knob")
	}
	// corner of the bounding box is outside the circle
	s := b.knobs[0]
	if b.knobAt(int(s.x)+1, int(s.y)+1) != nil {
		t.Error("knobAt hit the bounding box corner")
	}
}

func TestBoardPointerDragUpdatesModel(t *testing.T) {
	b := newTestBoard(t)
	s := b.knobs[0] // volume
	cx := s.x + config.KnobSize/2
	cy := s.y + config.KnobSize/2

	s.ctrl.PointerDown(&knob.Event{Kind: knob.EventPointerDown, X: cx + 40, Y: cy - 40})
	if s.cfg.Value != 13 || s.ctrl.Config().Value != 13 {
		t.Fatalf("value = %v / %v, want 13", s.cfg.Value, s.ctrl.Config().Value)
	}
	if b.player.gain != 0.13 {
		t.Errorf("gain = %v, want 0.13", b.player.gain)
	}

	b.doc.Dispatch(&knob.Event{Kind: knob.EventPointerUp, X: cx, Y: cy + 40})
	if s.cfg.Value != 50 {
		t.Errorf("value after release = %v, want 50", s.cfg.Value)
	}
	if s.ctrl.State() != knob.StateIdle {
		t.Errorf("state = %v, want idle", s.ctrl.State())
	}
}

func TestBoardLevelMeterIsReadOnly(t *testing.T) {
	b := newTestBoard(t)
	s := b.level
	if s.cfg.Cursor.Mode() != knob.ModeList || len(s.cfg.Cursor.Specs()) != 2 {
		t.Fatalf("level cursor = %+v", s.cfg.Cursor)
	}
	s.ctrl.PointerDown(&knob.Event{Kind: knob.EventPointerDown, X: s.x + 150, Y: s.y + 80})
	if s.ctrl.State() != knob.StateIdle || s.cfg.Value != 0 {
		t.Errorf("read-only meter reacted: state %v value %v", s.ctrl.State(), s.cfg.Value)
	}
	if got := b.positionCaption(); got != "--:--" {
		t.Errorf("caption = %q", got)
	}
}

func TestBoardSettersReachPlayer(t *testing.T) {
	b := newTestBoard(t)
	b.knobs[1].set(2)
	b.knobs[2].set(-0.5)
	if b.player.speed != 2 || b.player.balance != -0.5 {
		t.Errorf("speed %v balance %v", b.player.speed, b.player.balance)
	}
}

func TestBoardFocusCycleCancelsEdit(t *testing.T) {
	b := newTestBoard(t)
	b.cycleFocus()
	if b.focus != b.knobs[0] {
		t.Fatalf("focus = %v", b.focus)
	}
	b.focus.editing, b.focus.edit = true, "4"
	if !b.typing() {
		t.Fatal("typing = false")
	}
	for range b.knobs {
		b.cycleFocus()
	}
	if b.focus != b.knobs[0] {
		t.Errorf("focus did not wrap")
	}
	if b.knobs[0].editing || b.knobs[0].edit != "" {
		t.Error("edit survived focus change")
	}
}

// Volume knob: origin (92, 180), center (172, 260).
var (
	touchLeft     = knob.Point{X: 110, Y: 260}
	touchBottom   = knob.Point{X: 172, Y: 330}
	touchTopRight = knob.Point{X: 212, Y: 220}
)

func touchPositions(pts ...knob.Point) map[ebiten.TouchID]knob.Point {
	pos := map[ebiten.TouchID]knob.Point{}
	for i, p := range pts {
		pos[ebiten.TouchID(i+1)] = p
	}
	return pos
}

func TestBoardTouchesPressedTogetherTrackLast(t *testing.T) {
	b := newTestBoard(t)
	s := b.knobs[0]
	b.applyTouches(touchFrame{
		pos:     touchPositions(touchLeft, touchBottom, touchTopRight),
		pressed: []ebiten.TouchID{1, 2, 3},
	})
	if s.ctrl.State() != knob.StateTouchDragging || s.ctrl.TouchIndex() != 2 {
		t.Fatalf("state %v index %d, want touch-dragging at 2", s.ctrl.State(), s.ctrl.TouchIndex())
	}
	if s.cfg.Value != 13 {
		t.Errorf("value = %v, want 13", s.cfg.Value)
	}
	if b.in.touchOwner != s || b.focus != s {
		t.Error("volume knob does not own the touches")
	}
}

func TestBoardTouchesAcrossTicks(t *testing.T) {
	b := newTestBoard(t)
	s := b.knobs[0]

	pts := []knob.Point{touchLeft, touchBottom, touchTopRight}
	want := []float64{75, 50, 13}
	for i := range pts {
		b.applyTouches(touchFrame{
			pos:     touchPositions(pts[:i+1]...),
			pressed: []ebiten.TouchID{ebiten.TouchID(i + 1)},
		})
		if s.cfg.Value != want[i] || s.ctrl.TouchIndex() != i {
			t.Fatalf("after touch %d: value %v index %d, want %v at %d",
				i+1, s.cfg.Value, s.ctrl.TouchIndex(), want[i], i)
		}
	}

	b.applyTouches(touchFrame{pos: touchPositions(touchLeft, touchBottom, knob.Point{X: 252, Y: 260})})
	if s.cfg.Value != 25 {
		t.Fatalf("value after move = %v, want 25", s.cfg.Value)
	}

	b.applyTouches(touchFrame{pos: map[ebiten.TouchID]knob.Point{}, released: []ebiten.TouchID{1, 2, 3}})
	if s.ctrl.State() != knob.StateIdle {
		t.Errorf("state after release = %v, want idle", s.ctrl.State())
	}
	if s.cfg.Value != 25 || b.player.gain != 0.25 {
		t.Errorf("committed value %v gain %v, want 25", s.cfg.Value, b.player.gain)
	}
	if b.in.touchOwner != nil || len(b.in.touchIDs) != 0 || len(b.in.touchPos) != 0 {
		t.Errorf("touch state not cleared: %+v", b.in)
	}
}

func TestBoardTouchesElsewhereIgnored(t *testing.T) {
	b := newTestBoard(t)
	vol, speed := b.knobs[0], b.knobs[1]

	b.applyTouches(touchFrame{pos: touchPositions(knob.Point{X: 5, Y: 5}), pressed: []ebiten.TouchID{1}})
	if b.in.touchOwner != nil || vol.ctrl.State() != knob.StateIdle {
		t.Fatal("touch outside every knob started a drag")
	}

	b.applyTouches(touchFrame{pos: touchPositions(touchLeft), pressed: []ebiten.TouchID{1}})
	onSpeed := knob.Point{X: speed.x + config.KnobSize/2, Y: speed.y + config.KnobSize/2}
	b.applyTouches(touchFrame{pos: touchPositions(touchLeft, onSpeed), pressed: []ebiten.TouchID{2}})
	if speed.ctrl.State() != knob.StateIdle {
		t.Errorf("second knob state = %v, want idle", speed.ctrl.State())
	}
	if b.in.touchOwner != vol || len(b.in.touchIDs) != 1 || vol.ctrl.TouchIndex() != 0 {
		t.Errorf("owner %v ids %v index %d", b.in.touchOwner, b.in.touchIDs, vol.ctrl.TouchIndex())
	}
}
