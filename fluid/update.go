package fluid

import (
	"math"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/gpu"
	"github.com/pthm-cable/smoke/pointer"
	"github.com/pthm-cable/smoke/shaders"
	"github.com/pthm-cable/smoke/splat"
	"github.com/pthm-cable/smoke/telemetry"
)

// maxStep caps the timestep so a stalled frame does not blow up the solve.
const maxStep = 0.016

// Dye scale of splats, lower in additive mode where dye accumulates toward white.
const (
	densityScale         = 0.15
	densityScaleAdditive = 0.12
)

// Update runs one frame: inject at most one queued batch, advect, apply pointer
// splats, confine vorticity, project out divergence and draw the density to the
// screen target.
func (e *Engine) Update() {
	if e.closed {
		return
	}
	e.perf.StartTick()
	defer e.perf.EndTick()

	now := e.now()
	dt := float32(min(max(now.Sub(e.last).Seconds(), 0), maxStep))
	e.last = now
	e.colorCycle = math.Mod(e.colorCycle+float64(dt)*e.cfg.ColorCycleSpeed*5, 1)

	iw, ih := 1/float32(e.texW), 1/float32(e.texH)
	e.dev.Viewport(e.texW, e.texH)

	e.perf.StartPhase(telemetry.PhaseSplats)
	if b, ok := e.queue.Pop(); ok {
		e.events.RecordBatch(len(b))
		e.inject(b)
	}

	e.perf.StartPhase(telemetry.PhaseAdvection)
	adv := e.advection
	adv.Bind()
	adv.SetVec2("texelSize", iw, ih)
	adv.SetSampler("uVelocity", e.velocity.Read().Attach())
	adv.SetSampler("uSource", e.velocity.Read().Attach())
	adv.SetFloat("dt", dt)
	adv.SetFloat("dissipation", float32(e.cfg.VelocityDissipation))
	e.dev.Blit(e.velocity.Write().Target)
	e.velocity.Swap()

	adv.SetSampler("uVelocity", e.velocity.Read().Attach())
	adv.SetSampler("uSource", e.density.Read().Attach())
	adv.SetFloat("dissipation", float32(e.cfg.DensityDissipation))
	e.dev.Blit(e.density.Write().Target)
	e.density.Swap()

	e.perf.StartPhase(telemetry.PhasePointers)
	e.pointers.Each(func(p *pointer.Pointer) {
		if !p.Active {
			return
		}
		p.Recolor(now, e.cfg.Colors, e.cfg.ColorCycleSpeed)
		e.splat(p.X, p.Y, p.DX, p.DY, p.Color)
		e.events.RecordPointerSplat()
		if !p.Down {
			p.Active = false
		}
	})

	e.perf.StartPhase(telemetry.PhaseCurl)
	curl := e.programs[shaders.Curl]
	curl.Bind()
	curl.SetVec2("texelSize", iw, ih)
	curl.SetSampler("uVelocity", e.velocity.Read().Attach())
	e.dev.Blit(e.curl.Target)

	e.perf.StartPhase(telemetry.PhaseVorticity)
	vort := e.programs[shaders.Vorticity]
	vort.Bind()
	vort.SetVec2("texelSize", iw, ih)
	vort.SetSampler("uVelocity", e.velocity.Read().Attach())
	vort.SetSampler("uCurl", e.curl.Attach())
	vort.SetFloat("curl", float32(e.cfg.Curl))
	vort.SetFloat("dt", dt)
	e.dev.Blit(e.velocity.Write().Target)
	e.velocity.Swap()

	e.perf.StartPhase(telemetry.PhaseDivergence)
	div := e.programs[shaders.Divergence]
	div.Bind()
	div.SetVec2("texelSize", iw, ih)
	div.SetSampler("uVelocity", e.velocity.Read().Attach())
	e.dev.Blit(e.divergence.Target)

	e.perf.StartPhase(telemetry.PhasePressure)
	clr := e.programs[shaders.Clear]
	clr.Bind()
	clr.SetSampler("uTexture", e.pressure.Read().Attach())
	clr.SetFloat("value", float32(e.cfg.PressureDissipation))
	e.dev.Blit(e.pressure.Write().Target)
	e.pressure.Swap()

	pr := e.programs[shaders.Pressure]
	pr.Bind()
	pr.SetVec2("texelSize", iw, ih)
	pr.SetSampler("uDivergence", e.divergence.Attach())
	for range e.cfg.PressureIterations {
		pr.SetSampler("uPressure", e.pressure.Read().Attach())
		e.dev.Blit(e.pressure.Write().Target)
		e.pressure.Swap()
	}

	e.perf.StartPhase(telemetry.PhaseGradient)
	grad := e.programs[shaders.GradientSubtract]
	grad.Bind()
	grad.SetVec2("texelSize", iw, ih)
	grad.SetSampler("uPressure", e.pressure.Read().Attach())
	grad.SetSampler("uVelocity", e.velocity.Read().Attach())
	e.dev.Blit(e.velocity.Write().Target)
	e.velocity.Swap()

	e.perf.StartPhase(telemetry.PhaseDisplay)
	w, h := e.surface.Size()
	e.dev.Viewport(w, h)
	disp := e.programs[shaders.Display]
	disp.Bind()
	disp.SetSampler("uTexture", e.density.Read().Attach())
	disp.SetVec4("uBackgroundColor", 0, 0, 0, 0)
	e.setAdditive(disp)
	e.dev.Blit(gpu.Screen)
}

// inject splats every valid entry of a batch. Invalid entries are dropped.
func (e *Engine) inject(b splat.Batch) {
	for _, s := range b {
		if !s.Valid() {
			e.events.RecordDroppedSplat()
			e.log.Debug("dropping invalid splat", "x", s.X, "y", s.Y, "dx", s.DX, "dy", s.DY)
			continue
		}
		e.splat(s.X, s.Y, s.DX, s.DY, s.Color)
		e.events.RecordSplat()
	}
}

// splat adds velocity (dx, dy) and dye color around surface pixel (x, y).
func (e *Engine) splat(x, y, dx, dy float64, color config.RGB) {
	w, h := e.surface.Size()
	if w <= 0 || h <= 0 {
		return
	}

	p := e.programs[shaders.Splat]
	p.Bind()
	p.SetSampler("uTarget", e.velocity.Read().Attach())
	p.SetFloat("aspectRatio", float32(w)/float32(h))
	p.SetVec2("point", float32(x/float64(w)), float32(1-y/float64(h)))
	p.SetVec3("color", float32(dx), float32(-dy), 1)
	p.SetFloat("radius", float32(e.cfg.SplatRadius))
	e.setAdditive(p)
	e.dev.Blit(e.velocity.Write().Target)
	e.velocity.Swap()

	k := densityScale
	if e.cfg.AdditiveMode {
		k = densityScaleAdditive
	}
	p.SetSampler("uTarget", e.density.Read().Attach())
	p.SetVec3("color", float32(color[0]*k), float32(color[1]*k), float32(color[2]*k))
	e.dev.Blit(e.density.Write().Target)
	e.density.Swap()
}

func (e *Engine) setAdditive(p *gpu.Program) {
	mode := float32(0)
	if e.cfg.AdditiveMode {
		mode = 1
	}
	p.SetFloat("uAdditiveMode", mode)
	p.SetFloat("uAdditiveThreshold", float32(e.cfg.AdditiveThreshold))
}
