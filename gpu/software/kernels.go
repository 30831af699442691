package software

import (
	"math"

	"github.com/pthm-cable/smoke/shaders"
)

type vec4 [4]float32

// kernel resolves uniforms once per draw and returns the per-fragment function.
type kernel func(s *shade) func(u, v float32) vec4

var kernels = map[string]kernel{
	shaders.Clear:            clearKernel,
	shaders.Display:          display,
	shaders.Splat:            splat,
	shaders.Advection:        advection,
	shaders.AdvectionManual:  advectionManual,
	shaders.Divergence:       divergence,
	shaders.Curl:             curl,
	shaders.Vorticity:        vorticity,
	shaders.Pressure:         pressure,
	shaders.GradientSubtract: gradientSubtract,
}

func clearKernel(s *shade) func(u, v float32) vec4 {
	src := s.sampler("uTexture")
	value := s.float("value")
	return func(u, v float32) vec4 {
		c := src.sample(u, v)
		return vec4{value * c[0], value * c[1], value * c[2], 1}
	}
}

func display(s *shade) func(u, v float32) vec4 {
	src := s.sampler("uTexture")
	bg := s.vec("uBackgroundColor")
	additive := s.float("uAdditiveMode") >= 0.5
	threshold := s.float("uAdditiveThreshold")
	return func(u, v float32) vec4 {
		c := src.sample(u, v)
		intensity := max(c[0], c[1], c[2])
		if intensity <= 0 {
			return bg
		}
		hue := [3]float32{c[0] / intensity, c[1] / intensity, c[2] / intensity}

		if !additive {
			adj := (1 - exp(-intensity*1.5)) * 0.8
			return vec4{
				mix(bg[0], hue[0], adj),
				mix(bg[1], hue[1], adj),
				mix(bg[2], hue[2], adj),
				bg[3] + adj*0.8*(1-bg[3]),
			}
		}
		white := 1 - exp(-intensity/threshold)
		w2 := white * white
		scale := min(intensity, 1.5)
		return vec4{
			mix(hue[0], 1, w2) * scale,
			mix(hue[1], 1, w2) * scale,
			mix(hue[2], 1, w2) * scale,
			min(intensity, 1),
		}
	}
}

func splat(s *shade) func(u, v float32) vec4 {
	target := s.sampler("uTarget")
	aspect := s.float("aspectRatio")
	color := s.vec("color")
	point := s.vec("point")
	radius := s.float("radius")
	additive := s.float("uAdditiveMode") >= 0.5
	maxCap := 50 * s.float("uAdditiveThreshold")
	return func(u, v float32) vec4 {
		px := (u - point[0]) * aspect
		py := v - point[1]
		g := exp(-(px*px + py*py) / radius)
		base := target.sample(u, v)
		r := vec4{base[0] + g*color[0], base[1] + g*color[1], base[2] + g*color[2], 1}
		if additive {
			if m := max(r[0], r[1], r[2]); m > maxCap {
				k := maxCap / m
				r[0], r[1], r[2] = r[0]*k, r[1]*k, r[2]*k
			}
		}
		return r
	}
}

func advection(s *shade) func(u, v float32) vec4 {
	vel := s.sampler("uVelocity")
	src := s.sampler("uSource")
	ts := s.vec("texelSize")
	dt := s.float("dt")
	diss := s.float("dissipation")
	return func(u, v float32) vec4 {
		w := vel.sample(u, v)
		c := src.sample(u-dt*w[0]*ts[0], v-dt*w[1]*ts[1])
		return vec4{diss * c[0], diss * c[1], diss * c[2], 1}
	}
}

func advectionManual(s *shade) func(u, v float32) vec4 {
	vel := s.sampler("uVelocity")
	src := s.sampler("uSource")
	ts := s.vec("texelSize")
	dt := s.float("dt")
	diss := s.float("dissipation")
	return func(u, v float32) vec4 {
		w := vel.sample(u, v)
		x := u/ts[0] - dt*w[0]
		y := v/ts[1] - dt*w[1]
		c := bilerp(src, ts, x, y)
		return vec4{diss * c[0], diss * c[1], diss * c[2], 1}
	}
}

// bilerp filters four texel-center samples by hand; x and y are in texels.
func bilerp(t *texture, ts vec4, x, y float32) vec4 {
	sx := floor(x-0.5) + 0.5
	sy := floor(y-0.5) + 0.5
	a := t.sample(sx*ts[0], sy*ts[1])
	b := t.sample((sx+1)*ts[0], sy*ts[1])
	c := t.sample(sx*ts[0], (sy+1)*ts[1])
	d := t.sample((sx+1)*ts[0], (sy+1)*ts[1])
	return mix4(mix4(a, b, x-sx), mix4(c, d, x-sx), y-sy)
}

func divergence(s *shade) func(u, v float32) vec4 {
	vel := s.sampler("uVelocity")
	ts := s.vec("texelSize")
	return func(u, v float32) vec4 {
		L := vel.sample(u-ts[0], v)[0]
		R := vel.sample(u+ts[0], v)[0]
		T := vel.sample(u, v+ts[1])[1]
		B := vel.sample(u, v-ts[1])[1]
		c := vel.sample(u, v)
		if u-ts[0] < 0 {
			L = -c[0]
		}
		if u+ts[0] > 1 {
			R = -c[0]
		}
		if v+ts[1] > 1 {
			T = -c[1]
		}
		if v-ts[1] < 0 {
			B = -c[1]
		}
		return vec4{0.5 * (R - L + T - B), 0, 0, 1}
	}
}

func curl(s *shade) func(u, v float32) vec4 {
	vel := s.sampler("uVelocity")
	ts := s.vec("texelSize")
	return func(u, v float32) vec4 {
		L := vel.sample(u-ts[0], v)[1]
		R := vel.sample(u+ts[0], v)[1]
		T := vel.sample(u, v+ts[1])[0]
		B := vel.sample(u, v-ts[1])[0]
		return vec4{0.5 * (R - L - T + B), 0, 0, 1}
	}
}

func vorticity(s *shade) func(u, v float32) vec4 {
	vel := s.sampler("uVelocity")
	cu := s.sampler("uCurl")
	ts := s.vec("texelSize")
	strength := s.float("curl")
	dt := s.float("dt")
	return func(u, v float32) vec4 {
		L := cu.sample(u-ts[0], v)[0]
		R := cu.sample(u+ts[0], v)[0]
		T := cu.sample(u, v+ts[1])[0]
		B := cu.sample(u, v-ts[1])[0]
		C := cu.sample(u, v)[0]

		fx := 0.5 * (abs(T) - abs(B))
		fy := 0.5 * (abs(R) - abs(L))
		n := float32(math.Hypot(float64(fx), float64(fy))) + 0.0001
		fx, fy = fx/n*strength*C, -fy/n*strength*C

		w := vel.sample(u, v)
		vx := max(-1000, min(1000, w[0]+fx*dt))
		vy := max(-1000, min(1000, w[1]+fy*dt))
		return vec4{vx, vy, 0, 1}
	}
}

func pressure(s *shade) func(u, v float32) vec4 {
	p := s.sampler("uPressure")
	div := s.sampler("uDivergence")
	ts := s.vec("texelSize")
	return func(u, v float32) vec4 {
		L := p.sample(u-ts[0], v)[0]
		R := p.sample(u+ts[0], v)[0]
		T := p.sample(u, v+ts[1])[0]
		B := p.sample(u, v-ts[1])[0]
		d := div.sample(u, v)[0]
		return vec4{(L + R + B + T - d) * 0.25, 0, 0, 1}
	}
}

func gradientSubtract(s *shade) func(u, v float32) vec4 {
	p := s.sampler("uPressure")
	vel := s.sampler("uVelocity")
	ts := s.vec("texelSize")
	return func(u, v float32) vec4 {
		L := p.sample(u-ts[0], v)[0]
		R := p.sample(u+ts[0], v)[0]
		T := p.sample(u, v+ts[1])[0]
		B := p.sample(u, v-ts[1])[0]
		w := vel.sample(u, v)
		return vec4{w[0] - (R - L), w[1] - (T - B), 0, 1}
	}
}

func mix(a, b, t float32) float32 { return a + (b-a)*t }

func mix4(a, b vec4, t float32) vec4 {
	return vec4{mix(a[0], b[0], t), mix(a[1], b[1], t), mix(a[2], b[2], t), mix(a[3], b[3], t)}
}

func exp(x float32) float32   { return float32(math.Exp(float64(x))) }
func floor(x float32) float32 { return float32(math.Floor(float64(x))) }
func abs(x float32) float32   { return float32(math.Abs(float64(x))) }
