// Command knob-render draws a single knob to a PNG without a window.
//
// Usage:
//
//	knob-render -value 42 -cursor list -marks 20,70 -connector -arc 270 -offset -135 -scale 2 -out knob.png
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/gg"

	"github.com/iburimskiy/knob/internal/knob"
	"github.com/iburimskiy/knob/internal/surface"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run renders one knob and returns the exit code: 2 for bad usage, 1 when
// rendering or writing fails.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("knob-render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	value := fs.Float64("value", 50, "Knob value")
	minV := fs.Float64("min", 0, "Minimum value")
	maxV := fs.Float64("max", 100, "Maximum value")
	step := fs.Float64("step", 1, "Step (a ratio in log mode)")
	logScale := fs.Bool("log", false, "Logarithmic scale")
	ccw := fs.Bool("ccw", false, "Counter-clockwise")
	arc := fs.Float64("arc", 360, "Arc span in degrees")
	offset := fs.Float64("offset", 0, "Arc offset in degrees")
	thickness := fs.Float64("thickness", 0.35, "Ring thickness as a fraction of the radius")
	size := fs.Float64("size", 200, "Knob size in pixels")
	round := fs.Bool("round", false, "Round line caps")
	cursor := fs.String("cursor", "single", "Cursor: off, single or list")
	marks := fs.String("marks", "", "Comma separated marker values for -cursor list")
	markWidth := fs.Float64("mark-width", 3, "Marker width multiplier")
	connector := fs.Bool("connector", false, "Join the first two markers")
	scale := fs.Float64("scale", 1, "Pixel ratio")
	bg := fs.String("bg", "#EEE", "Ring color")
	fg := fs.String("fg", "#EA2", "Value color")
	panel := fs.String("panel", "#222", "Panel color behind the knob")
	label := fs.Bool("label", true, "Draw the value label; without it the PNG keeps transparency")
	out := fs.String("out", "knob.png", "Output PNG path")
	verbose := fs.Bool("v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	knob.SetLogger(log)
	gg.SetLogger(log)

	cfg := knob.DefaultConfig()
	cfg.Value, cfg.Min, cfg.Max, cfg.Step = *value, *minV, *maxV, *step
	cfg.Log = *logScale
	cfg.Clockwise = !*ccw
	cfg.AngleArc, cfg.AngleOffset = *arc, *offset
	cfg.Thickness = *thickness
	cfg.Width, cfg.Height = *size, *size
	cfg.BgColor = gg.Hex(*bg).Color()
	cfg.FgColor = gg.Hex(*fg).Color()
	cfg.DisplayInput = *label
	if *round {
		cfg.LineCap = knob.LineCapRound
	}

	switch *cursor {
	case "off":
		cfg.Cursor = knob.CursorOff()
	case "single":
		cfg.Cursor = knob.CursorOn()
	case "list":
		specs, err := parseMarks(*marks, *markWidth)
		if err != nil {
			fmt.Fprintf(stderr, "error: -marks: %v\n", err)
			return 2
		}
		cfg.Cursor = knob.CursorList(specs...)
	default:
		fmt.Fprintf(stderr, "error: unknown -cursor %q\n", *cursor)
		return 2
	}
	if *connector {
		cfg.Connector = &knob.Connector{Color: cfg.FgColor}
	}

	r := surface.NewRaster()
	defer r.Close()
	center := knob.Render(r, cfg, knob.Derive(cfg), *scale)

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(stderr, "error creating %s: %v\n", *out, err)
		return 1
	}
	defer f.Close()

	if center.Kind != knob.CenterInput {
		if err := r.EncodePNG(f); err != nil {
			fmt.Fprintf(stderr, "error encoding PNG: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "knob → %s\n", *out)
		return 0
	}

	b := r.Image().Bounds()
	fb := surface.NewFramebuffer(b.Dx(), b.Dy())
	bgc := rgba(gg.Hex(*panel).Color())
	fb.Fill(bgc)
	surface.Blit(fb, r.Image(), 0, 0, bgc)

	l := center.Label
	cx := int16(float64(l.X+l.Width/2) * *scale)
	cy := int16(float64(l.Y+l.Height/2) * *scale)
	fontSize := int(float64(l.FontSize) * *scale)
	surface.Label(fb, center.Text, cx, cy, surface.LabelScale(fontSize), rgba(l.Color))
	if err := fb.Display(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if err := png.Encode(f, fb.Image()); err != nil {
		fmt.Fprintf(stderr, "error encoding PNG: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "knob %s → %s\n", center.Text, *out)
	return 0
}

func parseMarks(s string, width float64) ([]knob.CursorSpec, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var specs []knob.CursorSpec
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		specs = append(specs, knob.CursorSpec{Value: knob.Float(v), WidthMultiplier: width})
	}
	return specs, nil
}

func rgba(c color.Color) color.RGBA {
	if c == nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBAModel.Convert(c).(color.RGBA)
}
