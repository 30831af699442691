package pointer

import (
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/smoke/config"
)

// HSB parameters of the hue cycle used when no palette is configured.
const (
	hueRate    = 0.15
	saturation = 0.6
	brightness = 0.6
	hueGain    = 10 // match the emissive range of palette colors
)

// ColorAt returns the dye color for time now.
//
// With a palette, entries are visited at cycleSpeed entries per second and every
// channel is shifted by a slow sine of amplitude 2, clamped at zero. Without one,
// the hue turns at 0.15*cycleSpeed revolutions per second.
func ColorAt(now time.Time, palette []config.RGB, cycleSpeed float64) config.RGB {
	secs := float64(now.UnixMilli()) * 0.001

	if len(palette) > 0 {
		i := int(math.Floor(math.Mod(secs*cycleSpeed, float64(len(palette)))))
		i = max(0, min(len(palette)-1, i))
		variation := math.Sin(secs*0.3*cycleSpeed) * 2
		c := palette[i]
		for k := range c {
			c[k] = math.Max(0, c[k]+variation)
		}
		return c
	}

	hue := math.Mod(secs*hueRate*cycleSpeed, 1)
	if hue < 0 {
		hue++
	}
	rgb := colorful.Hsv(hue*360, saturation, brightness)
	return config.RGB{rgb.R * hueGain, rgb.G * hueGain, rgb.B * hueGain}
}

// Recolor sets p's color for time now.
func (p *Pointer) Recolor(now time.Time, palette []config.RGB, cycleSpeed float64) {
	p.Color = ColorAt(now, palette, cycleSpeed)
}
