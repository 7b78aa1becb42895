// Package game hosts a board of knobs in an ebiten window. The knobs drive
// an audio player and a read-only meter follows its output level.
package game

import (
	"image/color"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/knob/internal/config"
	"github.com/iburimskiy/knob/internal/knob"
	"github.com/iburimskiy/knob/internal/surface"
)

// ebitenutil debug font cell
const (
	charWidth  = 6
	charHeight = 16
)

// monitorRatio reports the device scale factor of the current monitor.
type monitorRatio struct{}

func (monitorRatio) DeviceScaleFactor() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

// knobSlot is one knob on the board. cfg is the host-owned model: the
// controller only requests values and set hands them back.
type knobSlot struct {
	name string
	cfg  knob.Config
	ctrl *knob.Controller
	surf *surface.Vector
	x, y float64

	center  knob.Center
	caption string

	// pending text entry
	edit    string
	editing bool

	apply func(float64)
}

func (s *knobSlot) set(v float64) {
	s.cfg.Value = v
	s.ctrl.SetConfig(s.cfg)
	if s.apply != nil {
		s.apply(v)
	}
}

func (s *knobSlot) hit(x, y int) bool {
	r := s.cfg.Width / 2
	dx := float64(x) - (s.x + r)
	dy := float64(y) - (s.y + r)
	return dx*dx+dy*dy <= r*r
}

type Board struct {
	doc    *knob.Target
	knobs  []*knobSlot
	focus  *knobSlot
	level  *knobSlot
	player *Player
	in     inputState

	levelValue float64
	peakValue  float64

	buttonHovered bool
	buttonPressed bool

	lastErr error
	log     *slog.Logger
}

var (
	boardBg     = color.RGBA{R: 18, G: 20, B: 28, A: 255}
	ringBg      = color.RGBA{R: 48, G: 54, B: 70, A: 255}
	peakColor   = color.RGBA{R: 235, G: 70, B: 60, A: 255}
	notchColor  = color.RGBA{R: 230, G: 230, B: 240, A: 255}
	linkColor   = color.RGBA{R: 120, G: 130, B: 150, A: 160}
	speedColor  = color.RGBA{R: 90, G: 170, B: 235, A: 255}
	volumeColor = color.RGBA{R: 0xee, G: 0xaa, B: 0x22, A: 255}
)

func NewBoard(log *slog.Logger) *Board {
	b := &Board{
		doc:    knob.NewTarget(),
		player: NewPlayer(log),
		in:     newInputState(),
		log:    log,
	}

	volume := knob.DefaultConfig()
	volume.Value = 100
	volume.Cursor = knob.CursorOn()
	volume.BgColor, volume.FgColor = ringBg, volumeColor
	b.addKnob("Volume", volume, b.player.SetVolume)

	speed := knob.DefaultConfig()
	speed.Log = true
	speed.Min, speed.Max, speed.Step = 0.25, 4, 2
	speed.Value = 1
	speed.Clockwise = false
	speed.Cursor = knob.CursorOn()
	speed.LineCap = knob.LineCapRound
	speed.BgColor, speed.FgColor = ringBg, speedColor
	b.addKnob("Speed", speed, b.player.SetSpeed)

	pan := knob.DefaultConfig()
	pan.Min, pan.Max, pan.Step = -1, 1, 0.05
	pan.AngleArc, pan.AngleOffset = 270, -135
	pan.Thickness = 0.1
	pan.Cursor = knob.CursorList(knob.CursorSpec{WidthMultiplier: 3, Color: notchColor})
	pan.BgColor, pan.FgColor = ringBg, notchColor
	b.addKnob("Pan", pan, b.player.SetPan)

	level := knob.DefaultConfig()
	level.ReadOnly = true
	level.DisplayInput = false
	level.Thickness = 0.15
	level.AngleArc, level.AngleOffset = 270, -135
	level.Connector = &knob.Connector{Width: 4, Color: linkColor}
	level.BgColor = ringBg
	b.level = b.addKnob("Level", level, nil)
	b.level.cfg.DisplayCustom = func() { b.level.caption = b.positionCaption() }
	b.updateLevel()

	return b
}

func (b *Board) addKnob(name string, cfg knob.Config, apply func(float64)) *knobSlot {
	i := len(b.knobs)
	cfg.Width, cfg.Height = config.KnobSize, config.KnobSize
	cfg.Title = name
	s := &knobSlot{
		name:  name,
		cfg:   cfg,
		surf:  surface.NewVector(),
		x:     float64(config.KnobFirstX + i*(config.KnobSize+config.KnobGap)),
		y:     config.KnobRowY,
		apply: apply,
	}
	s.ctrl = knob.NewController(cfg, b.doc,
		knob.WithOnChange(s.set),
		knob.WithOnChangeEnd(func(v float64) {
			s.set(v)
			b.log.Debug("knob: value committed", "knob", name, "value", v)
		}),
		knob.WithPixelRatio(monitorRatio{}),
		knob.WithLogger(b.log.With("knob", name)),
	)
	s.ctrl.SetOrigin(s.x, s.y)
	b.knobs = append(b.knobs, s)
	return s
}

func (b *Board) knobAt(x, y int) *knobSlot {
	for _, s := range b.knobs {
		if s.hit(x, y) {
			return s
		}
	}
	return nil
}

// updateLevel feeds the meter from the player's tap: the live level as
// the first marker and a slowly falling peak as the second, joined by the
// connector.
func (b *Board) updateLevel() {
	rms, peak := b.player.Level()
	// compress for display
	mag := 100 * clamp01(math.Pow(rms, 0.3))
	b.levelValue = config.LevelSmoothing*b.levelValue + (1-config.LevelSmoothing)*mag

	if p := 100 * clamp01(math.Pow(peak, 0.3)); p > b.peakValue {
		b.peakValue = p
	} else {
		b.peakValue = math.Max(b.peakValue-config.PeakFalloff, b.levelValue)
	}

	cfg := b.level.cfg
	cfg.Cursor = knob.CursorList(
		knob.CursorSpec{Value: knob.Float(b.levelValue), WidthMultiplier: 1, Color: levelColor(b.levelValue/100, config.LevelHueSpan)},
		knob.CursorSpec{Value: knob.Float(b.peakValue), WidthMultiplier: 2, Color: peakColor},
	)
	cfg.Value = knob.CoerceToStep(cfg, b.levelValue)
	b.level.cfg = cfg
	b.level.ctrl.SetConfig(cfg)
}

func (b *Board) positionCaption() string {
	if !b.player.Loaded() {
		return "--:--"
	}
	pos, total := b.player.Position()
	return formatDuration(pos) + " / " + formatDuration(total)
}

func (b *Board) Update() error {
	if err := b.handleInput(); err != nil {
		return err
	}
	b.player.Reap()
	b.updateLevel()
	return nil
}

func (b *Board) Draw(screen *ebiten.Image) {
	screen.Fill(boardBg)
	b.drawButton(screen)
	for _, s := range b.knobs {
		b.drawKnob(screen, s)
	}
	b.drawTooltip(screen)

	status := ""
	switch {
	case !b.player.Loaded():
		status = "Click the button above to open an audio file"
	case b.player.Paused():
		status = "Paused - Space to play, click button to open another"
	default:
		status = "Playing - Space to pause, click button to open another"
	}
	status += " | Arrows/wheel adjust, Enter types a value, Q quits"
	if b.lastErr != nil {
		status += " | Error: " + b.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 12, 12)
}

func (b *Board) drawKnob(screen *ebiten.Image, s *knobSlot) {
	s.center = s.ctrl.Draw(s.surf)
	s.surf.DrawTo(screen, s.x, s.y)

	switch s.center.Kind {
	case knob.CenterInput:
		text := s.center.Text
		if s.editing {
			text = s.edit + "_"
		}
		l := s.center.Label
		tx := int(s.x) + l.X + (l.Width-len(text)*charWidth)/2
		ty := int(s.y) + l.Y + (l.Height-charHeight)/2
		ebitenutil.DebugPrintAt(screen, text, tx, ty)
	case knob.CenterCustom:
		tx := int(s.x) + (int(s.cfg.Width)-len(s.caption)*charWidth)/2
		ty := int(s.y) + (int(s.cfg.Height)-charHeight)/2
		ebitenutil.DebugPrintAt(screen, s.caption, tx, ty)
	}

	name := s.name
	if b.focus == s {
		name = "[" + name + "]"
	}
	nx := int(s.x) + (int(s.cfg.Width)-len(name)*charWidth)/2
	ebitenutil.DebugPrintAt(screen, name, nx, int(s.y+s.cfg.Height)+config.CaptionGap)
}

func (b *Board) drawTooltip(screen *ebiten.Image) {
	mx, my := ebiten.CursorPosition()
	s := b.knobAt(mx, my)
	if s == nil || s.ctrl.State() != knob.StateIdle {
		return
	}
	text := knob.Tooltip(s.cfg)
	w := len(text)*charWidth + 10
	x := min(max(mx-w/2, 0), config.WindowWidth-w)
	y := my - 25
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), 20, color.RGBA{A: 200}, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), 20, 1, color.RGBA{R: 100, G: 110, B: 130, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, text, x+5, y+2)
}

func (b *Board) drawButton(screen *ebiten.Image) {
	var bgColor color.Color
	switch {
	case b.buttonPressed:
		bgColor = color.RGBA{R: 60, G: 80, B: 120, A: 255}
	case b.buttonHovered:
		bgColor = color.RGBA{R: 80, G: 100, B: 140, A: 255}
	default:
		bgColor = color.RGBA{R: 100, G: 120, B: 160, A: 255}
	}
	vector.DrawFilledRect(screen, config.ButtonX, config.ButtonY, config.ButtonWidth, config.ButtonHeight, bgColor, false)
	vector.StrokeRect(screen, config.ButtonX, config.ButtonY, config.ButtonWidth, config.ButtonHeight, 2, color.RGBA{R: 150, G: 170, B: 200, A: 255}, false)

	text := "Open File"
	textX := config.ButtonX + (config.ButtonWidth-len(text)*charWidth)/2
	textY := config.ButtonY + (config.ButtonHeight-charHeight)/2
	ebitenutil.DebugPrintAt(screen, text, textX, textY)
}

func (b *Board) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.WindowWidth, config.WindowHeight
}

// Close releases every drag session, offscreen image and the audio file.
func (b *Board) Close() {
	for _, s := range b.knobs {
		s.ctrl.Close()
		s.surf.Dispose()
	}
	b.player.Close()
}
