// Package game runs the smoke simulation in a raylib window: it owns the
// engine, forwards window input, serves remote commands and writes telemetry.
// A headless Game runs the same loop on the software device.
package game

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"slices"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/fluid"
	"github.com/pthm-cable/smoke/gpu"
	"github.com/pthm-cable/smoke/gpu/rlgpu"
	"github.com/pthm-cable/smoke/gpu/software"
	"github.com/pthm-cable/smoke/remote"
	"github.com/pthm-cable/smoke/telemetry"
	"github.com/pthm-cable/smoke/ui"
)

// DT is the simulated time per headless frame.
const DT = 1.0 / 60.0

// Options configures a Game.
type Options struct {
	Config     *config.Config
	Seed       int64
	OutputDir  string     // CSV and config snapshot, empty disables
	RemoteAddr string     // websocket listen address, empty disables
	Headless   bool       // software device, no window
	Touch      bool       // forward raylib touch points
	Device     gpu.Device // overrides the device picked by Headless
	Logger     *slog.Logger
}

// Game holds the running simulation and its host state.
type Game struct {
	cfg      *config.Config
	log      *slog.Logger
	dev      gpu.Device
	engine   *fluid.Engine
	headless bool
	touch    bool

	frame   int64
	simTime float64
	start   time.Time

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	lastStats        telemetry.WindowStats

	// Remote control
	server     *remote.Server
	dispatcher *remote.Dispatcher
	cancel     context.CancelFunc

	// UI
	controls  *ui.ControlsPanel
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	showPerf  bool
	palettes  []string
	palette   int

	touches []fluid.Touch // contacts seen last frame
}

// NewGame creates the engine and its host services. Without Headless the
// raylib window must already be open.
func NewGame(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(""); err != nil {
			return nil, err
		}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	g := &Game{
		cfg:              cfg,
		log:              log,
		headless:         opts.Headless,
		touch:            opts.Touch,
		start:            time.Now(),
		collector:        telemetry.NewCollector(cfg.Telemetry.Window),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.Window),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		hud:              ui.NewHUD(),
		perfPanel:        ui.NewPerfPanel(10, 10),
	}
	for name := range cfg.Palettes {
		g.palettes = append(g.palettes, name)
	}
	slices.Sort(g.palettes)
	g.controls = ui.NewControlsPanel(10, 10, 300, g.palettes)

	var surface fluid.Surface = windowSurface{}
	if opts.Headless {
		surface = fixedSurface{cfg.Window.Width, cfg.Window.Height}
	}
	switch {
	case opts.Device != nil:
		g.dev = opts.Device
	case opts.Headless:
		g.dev = software.New()
	default:
		g.dev = rlgpu.New(log.With("component", "raylib"))
	}

	update := config.Full(cfg.Fluid)
	engineOpts := fluid.Options{
		Config:              &update,
		DisableRandomSplats: &cfg.Input.DisableRandomSplats,
		MovementThreshold:   cfg.Input.MovementThreshold,
		Rand:                rand.New(rand.NewSource(opts.Seed)),
		Logger:              log.With("component", "fluid"),
		Perf:                g.perfCollector,
		Events:              g.collector,
	}
	if opts.Headless {
		engineOpts.Now = g.simClock
	}

	engine, err := fluid.New(g.dev, surface, engineOpts)
	if err != nil {
		g.closeDevice()
		return nil, err
	}
	g.engine = engine
	g.dispatcher = &remote.Dispatcher{
		Engine:      engine,
		Palettes:    cfg.Palettes,
		RandomBurst: cfg.Input.RandomBurst,
		Log:         log.With("component", "remote"),
	}

	caps := engine.Capabilities()
	w, h := engine.FieldSize()
	log.Info("engine ready",
		"format", caps.RGBA.String(),
		"linear_filtering", caps.SupportLinearFiltering,
		"field_width", w,
		"field_height", h,
	)
	for _, note := range caps.Notes {
		log.Warn("capability fallback", "note", note)
	}

	if g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir); err != nil {
		g.Unload()
		return nil, err
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		log.Error("failed to write config", "error", err)
	}

	if opts.RemoteAddr != "" {
		g.startRemote(opts.RemoteAddr)
	}
	return g, nil
}

// simClock advances by DT per frame so headless runs are reproducible.
func (g *Game) simClock() time.Time {
	return g.start.Add(time.Duration(float64(g.frame) * DT * float64(time.Second)))
}

func (g *Game) startRemote(addr string) {
	g.server = remote.NewServer(g.cfg.Remote.Buffer, g.log.With("component", "remote"))
	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	go func() {
		if err := g.server.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.log.Error("remote server stopped", "error", err)
		}
	}()
}

// Engine returns the simulation engine.
func (g *Game) Engine() *fluid.Engine {
	return g.engine
}

// Frame returns the number of frames solved so far.
func (g *Game) Frame() int64 {
	return g.frame
}

// Update handles window input and pending remote commands.
func (g *Game) Update() {
	if !g.headless {
		g.handleInput()
		if err := g.engine.Resize(); err != nil {
			g.log.Error("resize failed", "error", err)
		}
	}
	if g.server != nil {
		g.dispatcher.Drain(g.server.Commands())
	}
}

// Draw solves one frame into the window and draws the UI over it.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.step(float64(rl.GetFrameTime()))

	act := g.controls.Draw(g.engine.Config())
	g.applyAction(act)

	w, h := g.engine.FieldSize()
	caps := g.engine.Capabilities()
	g.hud.Draw(ui.HUDData{
		Title:   g.cfg.Window.Title,
		FPS:     rl.GetFPS(),
		FieldW:  w,
		FieldH:  h,
		Format:  caps.RGBA.String(),
		Notes:   caps.Notes,
		Pending: g.engine.PendingBatches(),
		Stats:   g.lastStats,
	}, int32(rl.GetScreenWidth()))
	if g.showPerf {
		g.perfPanel.SetPosition(10, int32(rl.GetScreenHeight())-180)
		g.perfPanel.Draw(g.perfCollector.Stats())
	}
	g.hud.DrawControls(int32(rl.GetScreenHeight()), "[F1] controls  [F2] perf  [R] random  [A] additive  [P] palette")

	rl.EndDrawing()
}

// UpdateHeadless drains remote commands and solves one frame on the
// software device.
func (g *Game) UpdateHeadless() {
	g.Update()
	g.step(DT)
}

func (g *Game) step(dt float64) {
	g.engine.Update()
	g.perfCollector.RecordFrame()
	g.frame++
	g.simTime += dt
	g.flushTelemetry()
}

// applyAction applies what the controls panel asked for.
func (g *Game) applyAction(act ui.Action) {
	for _, u := range act.Updates {
		g.engine.SetConfig(u)
	}
	if act.Palette != "" {
		g.apply(remote.Command{Kind: remote.KindPalette, Palette: act.Palette})
	}
	if act.Random {
		g.apply(remote.Command{Kind: remote.KindRandom})
	}
}

// apply runs a local command through the same path as remote ones.
func (g *Game) apply(cmd remote.Command) {
	if err := g.dispatcher.Apply(cmd); err != nil {
		g.log.Warn("command failed", "type", string(cmd.Kind), "error", err)
	}
}

// Unload releases the engine, the remote server and the output files.
func (g *Game) Unload() {
	if g.cancel != nil {
		g.cancel()
	}
	if g.engine != nil {
		g.engine.Close()
	}
	g.closeDevice()
	if err := g.outputManager.Close(); err != nil {
		g.log.Error("failed to close output", "error", err)
	}
}

// closeDevice releases devices that own native resources.
func (g *Game) closeDevice() {
	if c, ok := g.dev.(interface{ Close() }); ok {
		c.Close()
	}
}

// windowSurface is the raylib drawing buffer.
type windowSurface struct{}

func (windowSurface) Size() (int, int) {
	return rl.GetRenderWidth(), rl.GetRenderHeight()
}

// fixedSurface is a headless surface of constant size.
type fixedSurface struct{ w, h int }

func (s fixedSurface) Size() (int, int) { return s.w, s.h }
