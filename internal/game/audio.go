package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/knob/internal/config"
)

// Player plays one file through the chain
// decoder -> levelTap -> resampler -> pan -> volume -> ctrl -> speaker.
// The knobs drive the resampler, pan and volume stages.
type Player struct {
	currentFile *os.File
	streamer    beep.StreamSeekCloser
	format      beep.Format
	tap         *levelTap
	resampler   *beep.Resampler
	pan         *effects.Pan
	volume      *effects.Volume
	ctrl        *beep.Ctrl

	initDone bool
	paused   bool
	ended    atomic.Bool

	// Knob values, kept so a newly loaded file starts with them.
	gain    float64
	speed   float64
	balance float64

	log *slog.Logger
}

func NewPlayer(log *slog.Logger) *Player {
	return &Player{gain: 1, speed: 1, log: log}
}

func (p *Player) Loaded() bool { return p.ctrl != nil }

func (p *Player) Paused() bool { return p.paused }

// OpenDialog asks for a file and plays it. Cancelling is not an error.
func (p *Player) OpenDialog() error {
	filename, err := zenity.SelectFile(
		zenity.Title("Open Audio File"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	return p.Load(filename)
}

func decode(f *os.File, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(ext) {
	case ".wav":
		return wav.Decode(f)
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	}
	return nil, beep.Format{}, errors.New("unsupported file type: " + ext)
}

// Load stops the current file and starts playing path.
func (p *Player) Load(path string) error {
	p.stop()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	streamer, format, err := decode(f, filepath.Ext(path))
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	tap := newLevelTap(streamer, config.TapRingSize)
	resampler := beep.ResampleRatio(config.ResampleQuality, p.speed, tap)
	pan := &effects.Pan{Streamer: resampler, Pan: p.balance}
	volume := &effects.Volume{Streamer: pan, Base: 2}
	applyGain(volume, p.gain)
	ctrl := &beep.Ctrl{Streamer: volume, Paused: false}

	// speaker.Init closes a previous output, so it must not run under speaker.Lock.
	if !p.initDone || p.format.SampleRate != format.SampleRate {
		bufferSize := format.SampleRate.N(time.Second / 20)
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			_ = f.Close()
			return fmt.Errorf("speaker init: %w", err)
		}
		p.initDone = true
	}

	p.currentFile = f
	p.streamer = streamer
	p.format = format
	p.tap = tap
	p.resampler = resampler
	p.pan = pan
	p.volume = volume
	p.ctrl = ctrl
	p.paused = false
	p.ended.Store(false)

	p.log.Info("audio: playing", "path", path, "rate", int(format.SampleRate), "channels", format.NumChannels)
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		p.ended.Store(true)
	})))
	return nil
}

// Reap releases the file once the speaker reports the end of the stream.
// It runs on the game goroutine.
func (p *Player) Reap() {
	if p.ended.Swap(false) {
		p.log.Debug("audio: stream ended")
		p.stop()
	}
}

func (p *Player) stop() {
	if p.ctrl == nil {
		return
	}
	speaker.Clear()
	if p.streamer != nil {
		_ = p.streamer.Close()
	}
	if p.currentFile != nil {
		_ = p.currentFile.Close()
	}
	p.currentFile, p.streamer = nil, nil
	p.tap, p.resampler, p.pan, p.volume, p.ctrl = nil, nil, nil, nil, nil
}

func (p *Player) Close() { p.stop() }

func (p *Player) TogglePause() {
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.paused = !p.paused
	p.ctrl.Paused = p.paused
	speaker.Unlock()
}

// applyGain maps a linear gain in [0, 1] onto a base-2 volume stage.
func applyGain(v *effects.Volume, gain float64) {
	if gain <= 0 {
		v.Silent = true
		return
	}
	v.Silent = false
	v.Volume = math.Log2(gain)
}

// SetVolume takes a knob value in percent.
func (p *Player) SetVolume(percent float64) {
	p.gain = clamp01(percent / 100)
	if p.volume == nil {
		return
	}
	speaker.Lock()
	applyGain(p.volume, p.gain)
	speaker.Unlock()
}

// SetSpeed sets the playback rate; 1 is the original speed.
func (p *Player) SetSpeed(ratio float64) {
	if ratio <= 0 {
		return
	}
	p.speed = ratio
	if p.resampler == nil {
		return
	}
	speaker.Lock()
	p.resampler.SetRatio(ratio)
	speaker.Unlock()
}

// SetPan moves the balance between -1 (left) and 1 (right).
func (p *Player) SetPan(balance float64) {
	p.balance = math.Max(-1, math.Min(1, balance))
	if p.pan == nil {
		return
	}
	speaker.Lock()
	p.pan.Pan = p.balance
	speaker.Unlock()
}

// Level reports the RMS and peak of the most recent samples.
func (p *Player) Level() (rms, peak float64) {
	if p.tap == nil {
		return 0, 0
	}
	return p.tap.level(config.TapWindow)
}

// Position returns the playback position and the length of the file.
func (p *Player) Position() (pos, total time.Duration) {
	if p.streamer == nil {
		return 0, 0
	}
	speaker.Lock()
	n, l := p.streamer.Position(), p.streamer.Len()
	speaker.Unlock()
	return p.format.SampleRate.D(n), p.format.SampleRate.D(l)
}
