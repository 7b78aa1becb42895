package game

import (
	"errors"
	"slices"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/knob/internal/config"
	"github.com/iburimskiy/knob/internal/knob"
)

// inputState turns ebiten's polled input into knob events. Only one knob
// is touch dragged at a time: touches that start elsewhere are ignored
// until every finger on it is lifted.
type inputState struct {
	mouseX, mouseY int

	touchOwner *knobSlot
	touchIDs   []ebiten.TouchID
	touchPos   map[ebiten.TouchID]knob.Point
	touchBuf   []ebiten.TouchID
}

func newInputState() inputState {
	return inputState{touchPos: map[ebiten.TouchID]knob.Point{}}
}

var arrowKeys = map[ebiten.Key]knob.Key{
	ebiten.KeyArrowLeft:  knob.KeyArrowLeft,
	ebiten.KeyArrowUp:    knob.KeyArrowUp,
	ebiten.KeyArrowRight: knob.KeyArrowRight,
	ebiten.KeyArrowDown:  knob.KeyArrowDown,
}

func (b *Board) handleInput() error {
	b.handleMouse()
	b.handleTouches()
	b.handleWheel()

	if inpututil.IsKeyJustReleased(ebiten.KeyEscape) {
		b.cancelEdit()
		b.doc.Dispatch(&knob.Event{Kind: knob.EventKeyUp, Key: knob.KeyEscape})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) && !b.typing() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		b.player.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		b.cycleFocus()
	}
	b.handleFocusedKeys()
	return nil
}

func (b *Board) handleMouse() {
	mx, my := ebiten.CursorPosition()
	moved := mx != b.in.mouseX || my != b.in.mouseY
	b.in.mouseX, b.in.mouseY = mx, my

	b.buttonHovered = mx >= config.ButtonX && mx <= config.ButtonX+config.ButtonWidth &&
		my >= config.ButtonY && my <= config.ButtonY+config.ButtonHeight

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if s := b.knobAt(mx, my); s != nil {
			b.setFocus(s)
			s.ctrl.PointerDown(&knob.Event{Kind: knob.EventPointerDown, X: float64(mx), Y: float64(my)})
		} else if b.buttonHovered {
			b.buttonPressed = true
		}
	}
	if moved && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		b.doc.Dispatch(&knob.Event{Kind: knob.EventPointerMove, X: float64(mx), Y: float64(my)})
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		b.doc.Dispatch(&knob.Event{Kind: knob.EventPointerUp, X: float64(mx), Y: float64(my)})
		if b.buttonPressed && b.buttonHovered {
			if err := b.player.OpenDialog(); err != nil {
				b.log.Warn("audio: open failed", "err", err)
				b.lastErr = err
			} else {
				b.lastErr = nil
			}
		}
		b.buttonPressed = false
	}
}

// ownerTouches lists the positions of the owner's touches in press order.
func (b *Board) ownerTouches() []knob.Point {
	pts := make([]knob.Point, 0, len(b.in.touchIDs))
	for _, id := range b.in.touchIDs {
		pts = append(pts, b.in.touchPos[id])
	}
	return pts
}

// touchFrame is one tick of polled touch input: the positions of every
// active touch and the IDs pressed and released since the previous tick.
type touchFrame struct {
	pos      map[ebiten.TouchID]knob.Point
	pressed  []ebiten.TouchID
	released []ebiten.TouchID
}

func (b *Board) handleTouches() {
	f := touchFrame{pos: map[ebiten.TouchID]knob.Point{}}
	b.in.touchBuf = ebiten.AppendTouchIDs(b.in.touchBuf[:0])
	for _, id := range b.in.touchBuf {
		x, y := ebiten.TouchPosition(id)
		f.pos[id] = knob.Point{X: float64(x), Y: float64(y)}
	}
	f.pressed = inpututil.AppendJustPressedTouchIDs(nil)
	f.released = inpututil.AppendJustReleasedTouchIDs(nil)
	b.applyTouches(f)
}

// applyTouches sends one touchmove, touchend or touchstart per kind and
// tick. Touches pressed in the same tick arrive together in one touchstart
// whose list holds every finger on the owner knob.
func (b *Board) applyTouches(f touchFrame) {
	moved := false
	for _, id := range b.in.touchIDs {
		if p, ok := f.pos[id]; ok && p != b.in.touchPos[id] {
			b.in.touchPos[id] = p
			moved = true
		}
	}

	var ended []knob.Point
	for _, id := range f.released {
		i := slices.Index(b.in.touchIDs, id)
		if i < 0 {
			continue
		}
		ended = append(ended, b.in.touchPos[id])
		b.in.touchIDs = slices.Delete(b.in.touchIDs, i, i+1)
		delete(b.in.touchPos, id)
	}

	if moved && len(ended) == 0 && b.in.touchOwner != nil {
		b.doc.Dispatch(&knob.Event{Kind: knob.EventTouchMove, Touches: b.ownerTouches()})
	}
	if len(ended) > 0 {
		b.doc.Dispatch(&knob.Event{Kind: knob.EventTouchEnd, Touches: b.ownerTouches(), ChangedTouches: ended})
		if len(b.in.touchIDs) == 0 {
			b.in.touchOwner = nil
		}
	}

	added := false
	for _, id := range f.pressed {
		p, ok := f.pos[id]
		if !ok {
			continue
		}
		s := b.knobAt(int(p.X), int(p.Y))
		if s == nil || (b.in.touchOwner != nil && b.in.touchOwner != s) {
			continue
		}
		b.in.touchOwner = s
		b.in.touchIDs = append(b.in.touchIDs, id)
		b.in.touchPos[id] = p
		added = true
	}
	if added {
		s := b.in.touchOwner
		b.setFocus(s)
		s.ctrl.TouchStart(&knob.Event{Kind: knob.EventTouchStart, Touches: b.ownerTouches()})
	}
}

// handleWheel sends wheel motion to the knob under the cursor. ebiten
// reports positive offsets for scrolling up, the DOM for scrolling down.
func (b *Board) handleWheel() {
	xoff, yoff := ebiten.Wheel()
	if xoff == 0 && yoff == 0 {
		return
	}
	if s := b.knobAt(b.in.mouseX, b.in.mouseY); s != nil {
		s.ctrl.Wheel(&knob.Event{Kind: knob.EventWheel, DeltaX: -xoff, DeltaY: -yoff})
	}
}

func (b *Board) setFocus(s *knobSlot) {
	if b.focus != s {
		b.cancelEdit()
	}
	b.focus = s
}

func (b *Board) cycleFocus() {
	i := slices.Index(b.knobs, b.focus)
	b.setFocus(b.knobs[(i+1)%len(b.knobs)])
}

func (b *Board) typing() bool {
	return b.focus != nil && b.focus.editing
}

func (b *Board) cancelEdit() {
	if b.focus != nil {
		b.focus.editing = false
		b.focus.edit = ""
	}
}

func (b *Board) handleFocusedKeys() {
	s := b.focus
	if s == nil {
		return
	}
	for k, key := range arrowKeys {
		if inpututil.IsKeyJustPressed(k) || repeating(k) {
			s.ctrl.KeyDown(&knob.Event{Kind: knob.EventKeyDown, Key: key})
		}
	}

	if !s.center.Editable {
		return
	}
	changed := false
	for _, r := range ebiten.AppendInputChars(nil) {
		if strings.ContainsRune("0123456789.-+e", r) {
			s.edit += string(r)
			s.editing = true
			changed = true
		}
	}
	if s.editing && inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && s.edit != "" {
		s.edit = s.edit[:len(s.edit)-1]
		changed = true
	}
	if changed {
		s.ctrl.TextInput(s.edit)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		if s.editing {
			b.cancelEdit()
			return
		}
		b.promptValue(s)
	}
}

// repeating reports key repeat after a short hold, at 60 TPS.
func repeating(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d >= 30 && (d-30)%4 == 0
}

// promptValue asks for a value in a dialog.
func (b *Board) promptValue(s *knobSlot) {
	text, err := zenity.Entry("Value for "+s.name,
		zenity.Title(s.name),
		zenity.EntryText(s.center.Text),
	)
	if err != nil {
		if !errors.Is(err, zenity.ErrCanceled) {
			b.log.Warn("knob: entry dialog failed", "knob", s.name, "err", err)
			b.lastErr = err
		}
		return
	}
	s.ctrl.TextInput(text)
}
