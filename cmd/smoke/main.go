package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run on the software device without a window")
	outputDir := flag.String("telemetry-dir", "", "Output directory for CSV logs and config snapshot")
	wsAddr := flag.String("ws", "", "Websocket control address, e.g. :8080 (empty = config remote.address)")
	seed := flag.Int64("seed", 0, "RNG seed for random splats (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	touch := flag.Bool("touch", false, "Forward touch points (raylib also reports the mouse as a touch)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	addr := *wsAddr
	if addr == "" {
		addr = cfg.Remote.Address
	}

	opts := game.Options{
		Config:     cfg,
		Seed:       rngSeed,
		OutputDir:  *outputDir,
		RemoteAddr: addr,
		Headless:   *headless,
		Touch:      *touch,
		Logger:     logger,
	}

	if *headless {
		g, err := game.NewGame(opts)
		if err != nil {
			slog.Error("failed to start", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"width", cfg.Window.Width,
			"height", cfg.Window.Height,
			"max_frames", *maxFrames,
		)
		for *maxFrames == 0 || g.Frame() < int64(*maxFrames) {
			g.UpdateHeadless()
		}
		slog.Info("max frames reached", "frame", g.Frame())
		return
	}

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagVsyncHint)
	rl.InitWindow(int32(cfg.Window.Width), int32(cfg.Window.Height), cfg.Window.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Window.TargetFPS))

	g, err := game.NewGame(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxFrames > 0 && g.Frame() >= int64(*maxFrames) {
			break
		}
	}
}
