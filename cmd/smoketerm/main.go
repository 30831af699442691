// Smoke in a terminal: the software device solves the fluid and tcell draws it
// with half-block cells. Drag with the mouse to stir.
//
// Usage: go run ./cmd/smoketerm -scale 2
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"slices"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/fluid"
	"github.com/pthm-cable/smoke/gpu/software"
	"github.com/pthm-cable/smoke/term"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	scale := flag.Int("scale", 2, "Surface pixels per half cell")
	logPath := flag.String("log", "", "JSON log file (empty = discard)")
	seed := flag.Int64("seed", 0, "RNG seed for random splats (0 = time-based)")
	flag.Parse()

	if err := run(*configPath, *scale, *logPath, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "smoketerm: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, scale int, logPath string, seed int64) error {
	var w io.Writer = io.Discard
	if logPath != "" {
		f, err := os.Create(logPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	logger := slog.New(slog.NewJSONHandler(w, nil))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	surface := term.New(screen, scale)
	update := config.Full(cfg.Fluid)
	engine, err := fluid.New(software.New(), surface, fluid.Options{
		Config:              &update,
		DisableRandomSplats: &cfg.Input.DisableRandomSplats,
		MovementThreshold:   cfg.Input.MovementThreshold,
		Rand:                rand.New(rand.NewSource(seed)),
		Logger:              logger,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	ctl := &term.Controls{RandomBurst: cfg.Input.RandomBurst, Lookup: cfg.Palettes}
	for name := range cfg.Palettes {
		ctl.Palettes = append(ctl.Palettes, name)
	}
	slices.Sort(ctl.Palettes)

	ticker := time.NewTicker(33 * time.Millisecond) // ~30 FPS
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if !surface.Handle(engine, ev, ctl) {
				return nil
			}

		case <-ticker.C:
			engine.Update()
			px, err := engine.ReadScreen()
			if err != nil {
				logger.Error("read screen failed", "error", err)
				continue
			}
			surface.Draw(px)
		}
	}
}
