package term

import (
	"math/rand"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/fluid"
	"github.com/pthm-cable/smoke/gpu"
	"github.com/pthm-cable/smoke/gpu/software"
)

func newSimScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	screen.SetSize(cols, rows)
	t.Cleanup(screen.Fini)
	return screen
}

func TestSize(t *testing.T) {
	s := New(newSimScreen(t, 20, 5), 3)
	if w, h := s.Size(); w != 60 || h != 30 {
		t.Errorf("size = %dx%d, want 60x30", w, h)
	}
	if x, y := s.PixelAt(2, 1); x != 7.5 || y != 9 {
		t.Errorf("PixelAt(2, 1) = (%v, %v), want (7.5, 9)", x, y)
	}
}

func TestDrawHalfBlocks(t *testing.T) {
	screen := newSimScreen(t, 2, 1)
	s := New(screen, 2)

	px := gpu.Pixels{Width: 4, Height: 4, Channels: 4, Data: make([]float32, 4*4*4)}
	copy(px.At(1, 2), []float32{1, 0, 0, 1}) // top half of cell 0
	copy(px.At(1, 0), []float32{0, 0, 2, 1}) // bottom half, over-range
	s.Draw(px)

	tests := []struct {
		col    int
		fg, bg [3]int32
	}{
		{0, [3]int32{255, 0, 0}, [3]int32{0, 0, 255}},
		{1, [3]int32{0, 0, 0}, [3]int32{0, 0, 0}},
	}
	for _, tt := range tests {
		r, _, style, _ := screen.GetContent(tt.col, 0)
		if r != halfBlock {
			t.Errorf("cell %d rune = %q", tt.col, r)
		}
		fg, bg, _ := style.Decompose()
		if r, g, b := fg.RGB(); [3]int32{r, g, b} != tt.fg {
			t.Errorf("cell %d fg = %v, want %v", tt.col, [3]int32{r, g, b}, tt.fg)
		}
		if r, g, b := bg.RGB(); [3]int32{r, g, b} != tt.bg {
			t.Errorf("cell %d bg = %v, want %v", tt.col, [3]int32{r, g, b}, tt.bg)
		}
	}
}

func newEngine(t *testing.T, s *Screen) *fluid.Engine {
	t.Helper()
	e, err := fluid.New(software.New(), s, fluid.Options{
		Now:  func() time.Time { return time.Unix(0, 0) },
		Rand: rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestHandleMouse(t *testing.T) {
	s := New(newSimScreen(t, 10, 5), 2)
	e := newEngine(t, s)
	ctl := &Controls{}

	s.Handle(e, tcell.NewEventMouse(3, 2, tcell.Button1, tcell.ModNone), ctl)
	p := e.Pointers()[0]
	if !p.Down || !p.Active || p.X != 7 || p.Y != 10 {
		t.Fatalf("pointer after press = %+v", p)
	}

	s.Handle(e, tcell.NewEventMouse(4, 2, tcell.Button1, tcell.ModNone), ctl)
	if p := e.Pointers()[0]; p.X != 9 || p.DX != 20 {
		t.Errorf("pointer after drag = %+v", p)
	}

	s.Handle(e, tcell.NewEventMouse(4, 2, tcell.ButtonNone, tcell.ModNone), ctl)
	if e.Pointers()[0].Down {
		t.Error("pointer still down after release")
	}
}

func TestHandleKeys(t *testing.T) {
	s := New(newSimScreen(t, 10, 5), 2)
	e := newEngine(t, s)
	ctl := &Controls{
		RandomBurst: 3,
		Palettes:    []string{"default", "warm"},
		Lookup:      map[string][]config.RGB{"warm": {{30, 0, 0}}},
	}

	if !s.Handle(e, tcell.NewEventKey(tcell.KeyRune, KeyRandom, tcell.ModNone), ctl) {
		t.Fatal("random key quit")
	}
	if e.PendingBatches() != 1 {
		t.Errorf("pending = %d, want 1", e.PendingBatches())
	}

	s.Handle(e, tcell.NewEventKey(tcell.KeyRune, KeyAdditive, tcell.ModNone), ctl)
	if !e.Config().AdditiveMode {
		t.Error("additive mode not toggled")
	}

	s.Handle(e, tcell.NewEventKey(tcell.KeyRune, KeyPalette, tcell.ModNone), ctl)
	if c := e.Config().Colors; len(c) != 1 || c[0] != (config.RGB{30, 0, 0}) {
		t.Errorf("colors = %v", c)
	}

	if s.Handle(e, tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), ctl) {
		t.Error("escape should quit")
	}
	if s.Handle(e, tcell.NewEventKey(tcell.KeyRune, KeyQuit, tcell.ModNone), ctl) {
		t.Error("q should quit")
	}
}

func TestHandleResize(t *testing.T) {
	screen := newSimScreen(t, 10, 5)
	s := New(screen, 2)
	e := newEngine(t, s)

	screen.SetSize(20, 5)
	if !s.Handle(e, tcell.NewEventResize(20, 5), &Controls{}) {
		t.Fatal("resize quit")
	}
	if w, h := e.FieldSize(); w != 20 || h != 10 {
		t.Errorf("field size = %dx%d, want 20x10", w, h)
	}
}
