package remote

import (
	"math/rand"
	"testing"
	"time"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/fluid"
	"github.com/pthm-cable/smoke/gpu/software"
	"github.com/pthm-cable/smoke/splat"
)

type surface struct{}

func (surface) Size() (int, int) { return 64, 64 }

func newDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	e, err := fluid.New(software.New(), surface{}, fluid.Options{
		Now:  func() time.Time { return time.Unix(0, 0) },
		Rand: rand.New(rand.NewSource(3)),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	return &Dispatcher{
		Engine:      e,
		Palettes:    map[string][]config.RGB{"warm": {{30, 0, 0}, {30, 15, 0}}},
		RandomBurst: 5,
	}
}

func TestDispatcherApply(t *testing.T) {
	d := newDispatcher(t)
	e := d.Engine

	if err := d.Apply(Command{Kind: KindSplat, Splats: splat.Batch{{X: 1, Y: 1}}}); err != nil {
		t.Fatal(err)
	}
	if err := d.Apply(Command{Kind: KindRandom}); err != nil {
		t.Fatal(err)
	}
	if e.PendingBatches() != 2 {
		t.Errorf("pending = %d, want 2", e.PendingBatches())
	}

	if err := d.Apply(Command{Kind: KindConfig, Config: config.Update{Curl: config.Ptr(7.0)}}); err != nil {
		t.Fatal(err)
	}
	if e.Config().Curl != 7 {
		t.Errorf("curl = %v", e.Config().Curl)
	}

	if err := d.Apply(Command{Kind: KindPalette, Palette: "warm"}); err != nil {
		t.Fatal(err)
	}
	if c := e.Config().Colors; len(c) != 2 || c[1] != (config.RGB{30, 15, 0}) {
		t.Errorf("colors = %v", c)
	}
	if err := d.Apply(Command{Kind: KindPalette, Palette: "nope"}); err == nil {
		t.Error("unknown palette accepted")
	}

	d.Apply(Command{Kind: KindPointer, Pointer: PointerEvent{Action: ActionDown}})
	d.Apply(Command{Kind: KindPointer, Pointer: PointerEvent{Action: ActionMove, X: 10, Y: 10}})
	if p := e.Pointers()[0]; !p.Down || !p.Active || p.X != 10 {
		t.Errorf("pointer = %+v", p)
	}
	d.Apply(Command{Kind: KindPointer, Pointer: PointerEvent{Action: ActionUp}})
	if e.Pointers()[0].Down {
		t.Error("pointer still down")
	}
}

func TestDispatcherDrain(t *testing.T) {
	d := newDispatcher(t)
	cmds := make(chan Command, 4)
	cmds <- Command{Kind: KindRandom, Count: 2}
	cmds <- Command{Kind: KindPalette, Palette: "missing"}
	cmds <- Command{Kind: KindRandom, Count: 3}

	if n := d.Drain(cmds); n != 2 {
		t.Errorf("applied = %d, want 2", n)
	}
	if len(cmds) != 0 {
		t.Error("commands left undrained")
	}
	if d.Engine.PendingBatches() != 2 {
		t.Errorf("pending = %d", d.Engine.PendingBatches())
	}
}
