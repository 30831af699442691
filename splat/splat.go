// Package splat holds dye/velocity impulses and the queue that feeds them to the solver.
package splat

import (
	"math"

	"github.com/pthm-cable/smoke/config"
)

// Splat is an impulse at (X, Y) in surface pixels, y growing downward, with
// velocity (DX, DY) and dye Color.
type Splat struct {
	X, Y   float64
	DX, DY float64
	Color  config.RGB
}

// Valid reports whether every field is finite.
func (s Splat) Valid() bool {
	for _, v := range []float64{s.X, s.Y, s.DX, s.DY, s.Color[0], s.Color[1], s.Color[2]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Batch is a set of splats injected in the same frame.
type Batch []Splat

// Wire is a splat as received from a remote client. Any missing field makes it invalid.
type Wire struct {
	X     *float64    `json:"x"`
	Y     *float64    `json:"y"`
	DX    *float64    `json:"dx"`
	DY    *float64    `json:"dy"`
	Color *config.RGB `json:"color"`
}

// Splat converts w, reporting false when a field is missing or not finite.
func (w Wire) Splat() (Splat, bool) {
	if w.X == nil || w.Y == nil || w.DX == nil || w.DY == nil || w.Color == nil {
		return Splat{}, false
	}
	s := Splat{X: *w.X, Y: *w.Y, DX: *w.DX, DY: *w.DY, Color: *w.Color}
	return s, s.Valid()
}

// FromWire converts a wire batch, dropping invalid entries.
func FromWire(ws []Wire) Batch {
	b := make(Batch, 0, len(ws))
	for _, w := range ws {
		if s, ok := w.Splat(); ok {
			b = append(b, s)
		}
	}
	return b
}
