package game

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/fluid"
	"github.com/pthm-cable/smoke/gpu"
	"github.com/pthm-cable/smoke/gpu/software"
	"github.com/pthm-cable/smoke/remote"
	"github.com/pthm-cable/smoke/shaders"
)

func headlessConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	cfg.Window.Width, cfg.Window.Height = 32, 24
	cfg.Telemetry.Window = 5
	return cfg
}

func TestHeadlessRun(t *testing.T) {
	dir := t.TempDir()
	g, err := NewGame(Options{
		Config:    headlessConfig(t),
		Seed:      1,
		OutputDir: dir,
		Headless:  true,
		Logger:    slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	g.apply(remoteRandom())
	for range 10 {
		g.UpdateHeadless()
	}
	if g.Frame() != 10 {
		t.Errorf("frame = %d, want 10", g.Frame())
	}
	if g.lastStats.WindowEnd != 10 {
		t.Errorf("last window end = %d, want 10", g.lastStats.WindowEnd)
	}
	if w, h := g.Engine().FieldSize(); w != 16 || h != 12 {
		t.Errorf("field = %dx%d, want 16x12", w, h)
	}
	g.Unload()

	for _, name := range []string{"telemetry.csv", "perf.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestHeadlessClockAdvancesPerFrame(t *testing.T) {
	g, err := NewGame(Options{Config: headlessConfig(t), Headless: true, Logger: slog.New(slog.DiscardHandler)})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	defer g.Unload()

	t0 := g.simClock()
	g.UpdateHeadless()
	g.UpdateHeadless()
	if got := g.simClock().Sub(t0).Seconds(); got < 2*DT-1e-9 || got > 2*DT+1e-9 {
		t.Errorf("clock advanced %v s, want %v", got, 2*DT)
	}
}

// closeCounter is a software device that records Close calls.
type closeCounter struct {
	*software.Device
	closed int
}

func (d *closeCounter) Close() { d.closed++ }

func TestNewGameClosesDeviceOnEngineError(t *testing.T) {
	dev := &closeCounter{Device: software.New(software.WithCompileFailure(shaders.Display))}
	_, err := NewGame(Options{
		Config:   headlessConfig(t),
		Headless: true,
		Device:   dev,
		Logger:   slog.New(slog.DiscardHandler),
	})
	var cerr *gpu.CompileError
	if !errors.As(err, &cerr) {
		t.Fatalf("NewGame error = %v, want CompileError", err)
	}
	if dev.closed != 1 {
		t.Errorf("device closed %d times, want 1", dev.closed)
	}
}

func TestUnloadClosesDevice(t *testing.T) {
	dev := &closeCounter{Device: software.New()}
	g, err := NewGame(Options{
		Config:   headlessConfig(t),
		Headless: true,
		Device:   dev,
		Logger:   slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	g.UpdateHeadless()
	g.Unload()
	if dev.closed != 1 {
		t.Errorf("device closed %d times, want 1", dev.closed)
	}
}

func TestDiffTouches(t *testing.T) {
	tests := []struct {
		name        string
		prev, cur   []int64
		wantStarted []int64
		wantEnded   bool
	}{
		{"none", nil, nil, nil, false},
		{"first contact", nil, []int64{1}, []int64{1}, false},
		{"held", []int64{1}, []int64{1}, nil, false},
		{"second finger", []int64{1}, []int64{1, 2}, []int64{2}, false},
		{"lift one", []int64{1, 2}, []int64{2}, nil, true},
		{"swap", []int64{1}, []int64{3}, []int64{3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			started, ended := diffTouches(touches(tt.prev), touches(tt.cur))
			if ended != tt.wantEnded {
				t.Errorf("ended = %v, want %v", ended, tt.wantEnded)
			}
			if len(started) != len(tt.wantStarted) {
				t.Fatalf("started %d touches, want %d", len(started), len(tt.wantStarted))
			}
			for i, s := range started {
				if s.ID != tt.wantStarted[i] {
					t.Errorf("started[%d] = %d, want %d", i, s.ID, tt.wantStarted[i])
				}
			}
		})
	}
}

func touches(ids []int64) []fluid.Touch {
	out := make([]fluid.Touch, len(ids))
	for i, id := range ids {
		out[i] = fluid.Touch{ID: id}
	}
	return out
}

func remoteRandom() remote.Command {
	return remote.Command{Kind: remote.KindRandom, Count: 3}
}
