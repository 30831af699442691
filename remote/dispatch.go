package remote

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/fluid"
)

// Dispatcher applies commands to an engine. Use it on the frame thread.
type Dispatcher struct {
	Engine      *fluid.Engine
	Palettes    map[string][]config.RGB
	RandomBurst int // used when a random command carries no count
	Log         *slog.Logger
}

// Apply executes one command.
func (d *Dispatcher) Apply(cmd Command) error {
	e := d.Engine
	switch cmd.Kind {
	case KindSplat:
		e.AddSplats(cmd.Splats)
	case KindRandom:
		n := cmd.Count
		if n == 0 {
			n = d.RandomBurst
		}
		if n > 0 {
			e.AddRandomSplats(n)
		}
	case KindConfig:
		e.SetConfig(cmd.Config)
	case KindPalette:
		colors, ok := d.Palettes[cmd.Palette]
		if !ok {
			return fmt.Errorf("remote: unknown palette %q", cmd.Palette)
		}
		colors = append([]config.RGB(nil), colors...)
		e.SetConfig(config.Update{Colors: &colors})
	case KindPointer:
		ev := fluid.MouseEvent{X: cmd.Pointer.X, Y: cmd.Pointer.Y}
		switch cmd.Pointer.Action {
		case ActionDown:
			e.OnMouseDown(ev)
		case ActionMove:
			e.OnMouseMove(ev)
		case ActionUp:
			e.OnMouseUp(ev)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, cmd.Kind)
	}
	return nil
}

// Drain applies every command already waiting on cmds without blocking and
// returns how many were applied. Failed commands are logged and skipped.
func (d *Dispatcher) Drain(cmds <-chan Command) int {
	var n int
	for {
		select {
		case cmd := <-cmds:
			if err := d.Apply(cmd); err != nil {
				if d.Log != nil {
					d.Log.Warn("remote command failed", "type", string(cmd.Kind), "error", err)
				}
				continue
			}
			n++
		default:
			return n
		}
	}
}
