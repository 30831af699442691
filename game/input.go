package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/fluid"
	"github.com/pthm-cable/smoke/remote"
)

// handleInput forwards keyboard, mouse and touch input for this frame.
func (g *Game) handleInput() {
	g.handleKeys()

	mouse := rl.GetMousePosition()
	if g.controls.Contains(mouse.X, mouse.Y) {
		return
	}
	g.handleMouse(mouse)
	if g.touch {
		g.handleTouch()
	}
}

func (g *Game) handleKeys() {
	if rl.IsKeyPressed(rl.KeyF1) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF2) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.apply(remote.Command{Kind: remote.KindRandom})
	}
	if rl.IsKeyPressed(rl.KeyA) {
		g.engine.SetConfig(toggleAdditive(g.engine.Config().AdditiveMode))
	}
	if rl.IsKeyPressed(rl.KeyP) && len(g.palettes) > 0 {
		g.palette = (g.palette + 1) % len(g.palettes)
		g.apply(remote.Command{Kind: remote.KindPalette, Palette: g.palettes[g.palette]})
	}
}

// handleMouse converts window coordinates to drawing buffer pixels.
func (g *Game) handleMouse(mouse rl.Vector2) {
	ev := g.toBuffer(mouse)

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		g.engine.OnMouseDown(ev)
	}
	if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
		g.engine.OnMouseMove(ev)
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		g.engine.OnMouseUp(ev)
	}
}

func (g *Game) toBuffer(p rl.Vector2) fluid.MouseEvent {
	sx := float32(rl.GetRenderWidth()) / float32(max(rl.GetScreenWidth(), 1))
	sy := float32(rl.GetRenderHeight()) / float32(max(rl.GetScreenHeight(), 1))
	return fluid.MouseEvent{X: float64(p.X * sx), Y: float64(p.Y * sy)}
}

// handleTouch diffs raylib's touch points against the previous frame and
// emits start, move and end events.
func (g *Game) handleTouch() {
	n := int(rl.GetTouchPointCount())
	current := make([]fluid.Touch, 0, n)
	for i := range n {
		pos := g.toBuffer(rl.GetTouchPosition(int32(i)))
		current = append(current, fluid.Touch{
			ID:      int64(rl.GetTouchPointId(int32(i))),
			ClientX: pos.X,
			ClientY: pos.Y,
		})
	}

	started, ended := diffTouches(g.touches, current)
	if len(started) > 0 {
		g.engine.OnTouchStart(fluid.TouchEvent{Touches: started})
	}
	if len(current) > 0 {
		g.engine.OnTouchMove(fluid.TouchEvent{Touches: current})
	}
	if ended {
		g.engine.OnTouchEnd(fluid.TouchEvent{Touches: current})
	}
	g.touches = current
}

// diffTouches returns the contacts in cur that were not in prev, and whether
// any contact of prev is gone.
func diffTouches(prev, cur []fluid.Touch) (started []fluid.Touch, ended bool) {
	seen := make(map[int64]bool, len(prev))
	for _, t := range prev {
		seen[t.ID] = true
	}
	for _, t := range cur {
		if !seen[t.ID] {
			started = append(started, t)
		}
		delete(seen, t.ID)
	}
	return started, len(seen) > 0
}

func toggleAdditive(on bool) config.Update {
	return config.Update{AdditiveMode: config.Ptr(!on)}
}
