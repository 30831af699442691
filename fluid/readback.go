package fluid

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/smoke/gpu"
)

// ReadDensity copies the dye field to the CPU. Row 0 is the bottom of the surface.
func (e *Engine) ReadDensity() (gpu.Pixels, error) {
	if e.closed {
		return gpu.Pixels{}, ErrClosed
	}
	return e.dev.ReadPixels(e.density.Read().Target)
}

// ReadVelocity copies the velocity field to the CPU.
func (e *Engine) ReadVelocity() (gpu.Pixels, error) {
	if e.closed {
		return gpu.Pixels{}, ErrClosed
	}
	return e.dev.ReadPixels(e.velocity.Read().Target)
}

// ReadScreen copies the last composited frame to the CPU.
func (e *Engine) ReadScreen() (gpu.Pixels, error) {
	if e.closed {
		return gpu.Pixels{}, ErrClosed
	}
	return e.dev.ReadPixels(gpu.Screen)
}

// Intensities returns the brightest color channel of every texel, in texel order.
func Intensities(px gpu.Pixels) []float64 {
	out := make([]float64, px.Width*px.Height)
	ch := min(px.Channels, 3)
	for i := range out {
		texel := px.Data[i*px.Channels : i*px.Channels+ch]
		m := float64(texel[0])
		for _, c := range texel[1:] {
			m = math.Max(m, float64(c))
		}
		out[i] = m
	}
	return out
}

// FieldStats summarizes dye intensity over the whole field.
type FieldStats struct {
	Max   float64
	Mean  float64
	Total float64
}

// DensityStats reads the dye field back and summarizes it.
func (e *Engine) DensityStats() (FieldStats, error) {
	px, err := e.ReadDensity()
	if err != nil {
		return FieldStats{}, err
	}
	v := Intensities(px)
	if len(v) == 0 {
		return FieldStats{}, nil
	}
	total := floats.Sum(v)
	return FieldStats{
		Max:   floats.Max(v),
		Mean:  total / float64(len(v)),
		Total: total,
	}, nil
}

// DensityAt returns the dye intensity under surface pixel (x, y).
func (e *Engine) DensityAt(x, y float64) (float64, error) {
	px, err := e.ReadDensity()
	if err != nil {
		return 0, err
	}
	return IntensityAt(px, x/float64(e.Width()), 1-y/float64(e.Height())), nil
}

// IntensityAt returns the brightest channel of the texel at uv, clamped to the edge.
func IntensityAt(px gpu.Pixels, u, v float64) float64 {
	if px.Width == 0 || px.Height == 0 {
		return 0
	}
	tx := max(0, min(px.Width-1, int(u*float64(px.Width))))
	ty := max(0, min(px.Height-1, int(v*float64(px.Height))))
	texel := px.At(tx, ty)
	m := float64(texel[0])
	for _, c := range texel[1:min(len(texel), 3)] {
		m = math.Max(m, float64(c))
	}
	return m
}
