package fluid

import (
	"testing"

	"github.com/pthm-cable/smoke/gpu/software"
)

func TestMouseHoverSplatsOnce(t *testing.T) {
	e, _, ev := newTestEngine(t, Options{})

	e.OnMouseMove(MouseEvent{X: 50, Y: 50})
	p := e.Pointers()[0]
	if !p.Active || p.Down {
		t.Fatalf("hover pointer = %+v", p)
	}
	if p.DX != 500 || p.DY != 500 {
		t.Errorf("velocity = (%v, %v), want (500, 500)", p.DX, p.DY)
	}

	e.Update()
	if ev.pointerSplats != 1 {
		t.Errorf("pointer splats = %d, want 1 for the hover move", ev.pointerSplats)
	}
	if e.Pointers()[0].Active {
		t.Error("hover pointer stayed active after its splat")
	}

	e.Update()
	if ev.pointerSplats != 1 {
		t.Errorf("pointer splats = %d after a still frame, want 1", ev.pointerSplats)
	}
}

func TestMouseHeldKeepsSplatting(t *testing.T) {
	e, _, ev := newTestEngine(t, Options{})

	e.OnMouseDown(MouseEvent{X: 20, Y: 20})
	if p := e.Pointers()[0]; !p.Down || p.X != 0 || p.Y != 0 {
		t.Fatalf("mouse down must not move the pointer: %+v", p)
	}
	e.OnMouseMove(MouseEvent{X: 20, Y: 20})
	e.Update()
	e.Update()
	e.Update()
	if ev.pointerSplats != 3 {
		t.Errorf("pointer splats while held = %d, want 3", ev.pointerSplats)
	}

	e.OnMouseUp(MouseEvent{})
	e.Update()
	e.Update()
	if ev.pointerSplats != 4 {
		t.Errorf("pointer splats after release = %d, want 4", ev.pointerSplats)
	}
}

func TestMovementThreshold(t *testing.T) {
	e, _, ev := newTestEngine(t, Options{MovementThreshold: 1000})

	e.OnMouseMove(MouseEvent{X: 10, Y: 10})
	if e.Pointers()[0].Active {
		t.Fatal("slow move activated pointer")
	}
	e.Update()
	if ev.pointerSplats != 0 {
		t.Errorf("pointer splats = %d, want 0", ev.pointerSplats)
	}
}

func TestTouchLifecycle(t *testing.T) {
	dev := software.New()
	ev := &recordedEvents{}
	surf := &offsetSurface{fixedSurface: fixedSurface{100, 100}, ox: 10, oy: 20}
	e, err := New(dev, surf, Options{Events: ev})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if !e.OnTouchStart(TouchEvent{Touches: []Touch{{ID: 7, ClientX: 60, ClientY: 70}}}) {
		t.Error("touch start must request default suppression")
	}
	ps := e.Pointers()
	if len(ps) != 2 {
		t.Fatalf("pointers = %d, want mouse + 1 touch", len(ps))
	}
	if tp := ps[1]; tp.ID != 7 || !tp.Down || tp.X != 50 || tp.Y != 50 || tp.Active {
		t.Fatalf("touch pointer = %+v", tp)
	}

	if !e.OnTouchMove(TouchEvent{Touches: []Touch{{ID: 7, ClientX: 70, ClientY: 70}, {ID: 99, ClientX: 0, ClientY: 0}}}) {
		t.Error("touch move must request default suppression")
	}
	tp := e.Pointers()[1]
	if !tp.Active || tp.DX != 100 || tp.DY != 0 {
		t.Errorf("moved touch = %+v", tp)
	}
	if len(e.Pointers()) != 2 {
		t.Error("unknown touch identifier allocated a slot")
	}

	if !e.OnTouchEnd(TouchEvent{}) {
		t.Error("touch end must request default suppression")
	}
	if e.Pointers()[1].Down {
		t.Error("ended touch still down")
	}
	e.Update()
	if ev.pointerSplats != 0 {
		t.Errorf("pointer splats = %d, want 0 after lift", ev.pointerSplats)
	}

	e.OnTouchStart(TouchEvent{Touches: []Touch{{ID: 7, ClientX: 20, ClientY: 30}}})
	if len(e.Pointers()) != 2 {
		t.Error("returning identifier must reuse its slot")
	}
	if e.Pointers()[0].Down {
		t.Error("touch must not press the mouse pointer")
	}
}
