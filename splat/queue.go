package splat

import (
	"math/rand"
	"time"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/pointer"
)

// Queue is a LIFO stack of batches. The solver pops one batch per frame, so
// bursts queued faster than that drain over later frames, newest first.
type Queue struct {
	batches []Batch
}

// Push queues a batch.
func (q *Queue) Push(b Batch) {
	q.batches = append(q.batches, b)
}

// Pop removes and returns the most recently pushed batch.
func (q *Queue) Pop() (Batch, bool) {
	n := len(q.batches)
	if n == 0 {
		return nil, false
	}
	b := q.batches[n-1]
	q.batches[n-1] = nil
	q.batches = q.batches[:n-1]
	return b, true
}

// Len returns the number of pending batches.
func (q *Queue) Len() int {
	return len(q.batches)
}

// Generator synthesizes random splats.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator returns a generator drawing from rng and coloring splats at now().
func NewGenerator(rng *rand.Rand, now func() time.Time) *Generator {
	return &Generator{rng: rng, now: now}
}

// Random returns n splats placed uniformly over a width x height surface with
// velocity components in [-500, 500]. Each color comes from an unassigned pointer.
func (g *Generator) Random(n, width, height int, palette []config.RGB, cycleSpeed float64) Batch {
	b := make(Batch, 0, max(n, 0))
	for range n {
		p := pointer.New()
		p.Recolor(g.now(), palette, cycleSpeed)
		b = append(b, Splat{
			X:     float64(width) * g.rng.Float64(),
			Y:     float64(height) * g.rng.Float64(),
			DX:    1000 * (g.rng.Float64() - 0.5),
			DY:    1000 * (g.rng.Float64() - 0.5),
			Color: p.Color,
		})
	}
	return b
}
