// Package pointer tracks mouse and touch pointers and assigns their dye colors.
package pointer

import (
	"math"

	"github.com/pthm-cable/smoke/config"
)

// NoID marks a pointer that is not bound to a touch identifier.
const NoID int64 = -1

// Sensitivity scales a position delta into a splat velocity.
const Sensitivity = 10.0

// defaultColor is the color of a pointer that has never been colored.
var defaultColor = config.RGB{30, 0, 300}

// Pointer is one input contact in surface pixels, y growing downward.
type Pointer struct {
	ID           int64
	X, Y         float64
	PrevX, PrevY float64
	DX, DY       float64 // velocity, pixels per event scaled by Sensitivity
	Down         bool
	Active       bool // moved past the threshold since the last splat
	Color        config.RGB
}

// New returns an unbound pointer at the origin.
func New() *Pointer {
	return &Pointer{ID: NoID, Color: defaultColor}
}

// MoveTo records a move to (x, y). Active is set only when the velocity magnitude
// is strictly greater than threshold.
func (p *Pointer) MoveTo(x, y, threshold float64) {
	p.PrevX, p.PrevY = p.X, p.Y
	p.X, p.Y = x, y
	p.DX = (p.X - p.PrevX) * Sensitivity
	p.DY = (p.Y - p.PrevY) * Sensitivity
	p.Active = math.Hypot(p.DX, p.DY) > threshold
}

// Place puts the pointer at (x, y) with no motion history.
func (p *Pointer) Place(x, y float64) {
	p.X, p.Y = x, y
	p.PrevX, p.PrevY = x, y
}

// Release lifts the pointer and drops any motion not yet splatted.
func (p *Pointer) Release() {
	p.Down = false
	p.Active = false
}
