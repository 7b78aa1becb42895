package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/gogpu/gg"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/knob/internal/config"
	"github.com/iburimskiy/knob/internal/game"
	"github.com/iburimskiy/knob/internal/knob"
)

func main() {
	verbose := flag.Bool("v", false, "log knob sessions and audio events")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	knob.SetLogger(log)
	gg.SetLogger(log)

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowTitle("Knobs - open a file, drag or scroll the knobs, Space: Play/Pause, Q: Quit")

	b := game.NewBoard(log)
	err := ebiten.RunGame(b)
	b.Close()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error("game exited", "err", err)
		os.Exit(1)
	}
}
