// Package fluid is a 2D smoke simulation that runs on a gpu.Device.
//
// The Engine owns every GPU resource it uses. Hosts create it over a Surface,
// forward input events to it and call Update once per displayed frame on the
// thread that owns the graphics context. Nothing in this package is safe for
// concurrent use.
package fluid

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/gpu"
	"github.com/pthm-cable/smoke/pointer"
	"github.com/pthm-cable/smoke/shaders"
	"github.com/pthm-cable/smoke/splat"
)

// Surface is the drawing area the engine renders into.
type Surface interface {
	// Size returns the drawing buffer size in pixels.
	Size() (width, height int)
}

// ClientOrigin is implemented by surfaces whose touch coordinates arrive in
// client space; the origin is subtracted to get surface coordinates.
type ClientOrigin interface {
	ClientOrigin() (x, y float64)
}

// PerfRecorder receives per-phase timings of Update.
type PerfRecorder interface {
	StartTick()
	StartPhase(phase string)
	EndTick()
}

// EventRecorder counts engine activity.
type EventRecorder interface {
	RecordBatch(size int)
	RecordSplat()
	RecordDroppedSplat()
	RecordPointerSplat()
}

// Options configures an Engine. The zero value is valid.
type Options struct {
	Config              *config.Update // merged over config.DefaultFluid
	DisableRandomSplats *bool          // informational, defaults to true
	MovementThreshold   float64

	Now    func() time.Time // defaults to time.Now
	Rand   *rand.Rand       // random splat source, defaults to a time-seeded source
	Logger *slog.Logger     // defaults to discarding
	Perf   PerfRecorder
	Events EventRecorder
}

// Texture units of the fields.
const (
	unitVelocity   = 0 // and 1
	unitDensity    = 2 // and 3
	unitDivergence = 4
	unitCurl       = 5
	unitPressure   = 6 // and 7
)

// Engine is a running smoke simulation.
type Engine struct {
	dev     gpu.Device
	surface Surface
	caps    gpu.Capabilities
	log     *slog.Logger
	perf    PerfRecorder
	events  EventRecorder
	now     func() time.Time
	gen     *splat.Generator

	cfg                 config.Fluid
	disableRandomSplats bool
	movementThreshold   float64

	programs  map[string]*gpu.Program
	advection *gpu.Program // linear or manual filtering variant

	width, height int // surface size the fields were sized for
	texW, texH    int

	velocity   *gpu.DoubleFramebuffer
	density    *gpu.DoubleFramebuffer
	pressure   *gpu.DoubleFramebuffer
	divergence *gpu.Framebuffer
	curl       *gpu.Framebuffer

	queue      splat.Queue
	pointers   *pointer.Table
	last       time.Time
	colorCycle float64
	closed     bool
}

// ErrClosed is returned by operations on a closed engine.
var ErrClosed = errors.New("fluid: engine closed")

// New negotiates capabilities, compiles every program and allocates the fields
// for the surface's current size.
func New(dev gpu.Device, surface Surface, opts Options) (*Engine, error) {
	if dev == nil {
		return nil, gpu.ErrNoDevice
	}
	if surface == nil {
		return nil, errors.New("fluid: nil surface")
	}

	e := &Engine{
		dev:                 dev,
		surface:             surface,
		log:                 opts.Logger,
		perf:                opts.Perf,
		events:              opts.Events,
		now:                 opts.Now,
		cfg:                 config.DefaultFluid(),
		disableRandomSplats: true,
		movementThreshold:   opts.MovementThreshold,
		programs:            make(map[string]*gpu.Program),
		pointers:            pointer.NewTable(),
	}
	if e.log == nil {
		e.log = newNopLogger()
	}
	if e.perf == nil {
		e.perf = nopPerf{}
	}
	if e.events == nil {
		e.events = nopEvents{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.gen = splat.NewGenerator(rng, e.now)
	if opts.Config != nil {
		e.cfg = e.cfg.Merge(*opts.Config)
	}
	if opts.DisableRandomSplats != nil {
		e.disableRandomSplats = *opts.DisableRandomSplats
	}

	caps, err := gpu.Negotiate(dev)
	if err != nil {
		return nil, err
	}
	e.caps = caps
	for _, note := range caps.Notes {
		e.log.Warn("capability fallback", "note", note)
	}
	e.log.Info("capabilities negotiated",
		"texel_type", caps.TexelType.String(),
		"rgba", caps.RGBA.String(),
		"rg", caps.RG.String(),
		"r", caps.R.String(),
		"linear_filtering", caps.SupportLinearFiltering,
	)

	if err := e.initPrograms(); err != nil {
		e.closePrograms()
		return nil, err
	}
	if err := e.Resize(); err != nil {
		e.closePrograms()
		return nil, err
	}
	e.pushAdditive()
	e.last = e.now()
	return e, nil
}

func (e *Engine) initPrograms() error {
	vs := shaders.Vertex()
	for _, name := range shaders.Names() {
		fs, err := shaders.Fragment(name)
		if err != nil {
			return err
		}
		p, err := gpu.NewProgram(e.dev, name, vs, fs)
		if err != nil {
			return err
		}
		e.programs[name] = p
	}

	e.advection = e.programs[shaders.Advection]
	if !e.caps.SupportLinearFiltering {
		e.advection = e.programs[shaders.AdvectionManual]
	}
	e.log.Debug("programs compiled", "count", len(e.programs), "advection", e.advection.Name())
	return nil
}

// Resize reallocates the fields when the surface size changed since the last
// allocation. Field contents are discarded. Calling it again with an unchanged
// size does nothing.
func (e *Engine) Resize() error {
	if e.closed {
		return ErrClosed
	}
	w, h := e.surface.Size()
	if w == e.width && h == e.height && e.velocity != nil {
		return nil
	}
	if err := e.initFramebuffers(w, h); err != nil {
		return err
	}
	e.width, e.height = w, h
	return nil
}

// initFramebuffers allocates a complete set of fields before releasing the
// current one. On error the current fields stay in place.
func (e *Engine) initFramebuffers(w, h int) error {
	shift := e.cfg.TextureDownsample
	texW, texH := max(1, w>>shift), max(1, h>>shift)
	field := e.caps.FieldFilter()

	var (
		density, velocity, pressure *gpu.DoubleFramebuffer
		divergence, curl            *gpu.Framebuffer
		err                         error
	)
	release := func() {
		density.Close()
		velocity.Close()
		pressure.Close()
		divergence.Close()
		curl.Close()
	}
	if density, err = gpu.NewDoubleFramebuffer(e.dev, unitDensity, texW, texH, e.caps.RGBA, field); err != nil {
		return fmt.Errorf("allocating density: %w", err)
	}
	if velocity, err = gpu.NewDoubleFramebuffer(e.dev, unitVelocity, texW, texH, e.caps.RG, field); err != nil {
		release()
		return fmt.Errorf("allocating velocity: %w", err)
	}
	if divergence, err = gpu.NewFramebuffer(e.dev, unitDivergence, texW, texH, e.caps.R, gpu.FilterNearest); err != nil {
		release()
		return fmt.Errorf("allocating divergence: %w", err)
	}
	if curl, err = gpu.NewFramebuffer(e.dev, unitCurl, texW, texH, e.caps.R, gpu.FilterNearest); err != nil {
		release()
		return fmt.Errorf("allocating curl: %w", err)
	}
	if pressure, err = gpu.NewDoubleFramebuffer(e.dev, unitPressure, texW, texH, e.caps.R, gpu.FilterNearest); err != nil {
		release()
		return fmt.Errorf("allocating pressure: %w", err)
	}

	e.closeFramebuffers()
	e.density, e.velocity, e.pressure = density, velocity, pressure
	e.divergence, e.curl = divergence, curl
	e.texW, e.texH = texW, texH
	e.log.Debug("fields allocated", "surface_w", w, "surface_h", h, "field_w", texW, "field_h", texH)
	return nil
}

func (e *Engine) closeFramebuffers() {
	e.velocity.Close()
	e.density.Close()
	e.pressure.Close()
	e.divergence.Close()
	e.curl.Close()
	e.velocity, e.density, e.pressure = nil, nil, nil
	e.divergence, e.curl = nil, nil
}

func (e *Engine) closePrograms() {
	for name, p := range e.programs {
		p.Close()
		delete(e.programs, name)
	}
	e.advection = nil
}

// Close releases every GPU resource. The engine is unusable afterwards.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closeFramebuffers()
	e.closePrograms()
	e.closed = true
}

// Config returns a copy of the current simulation parameters.
func (e *Engine) Config() config.Fluid {
	return e.cfg.Clone()
}

// SetConfig merges u into the current parameters.
//
// A change of AdditiveMode or AdditiveThreshold is uploaded to the display and
// splat programs before SetConfig returns. Every other parameter is read by the
// next Update; TextureDownsample applies at the next size change.
func (e *Engine) SetConfig(u config.Update) {
	prev := e.cfg
	e.cfg = e.cfg.Merge(u)
	if e.closed {
		return
	}
	if prev.AdditiveMode != e.cfg.AdditiveMode || prev.AdditiveThreshold != e.cfg.AdditiveThreshold {
		e.pushAdditive()
	}
}

// pushAdditive uploads the additive blending uniforms to the programs that use them.
func (e *Engine) pushAdditive() {
	for _, name := range []string{shaders.Display, shaders.Splat} {
		p := e.programs[name]
		p.Bind()
		e.setAdditive(p)
	}
}

// DisableRandomSplats reports the informational random splat flag. The engine
// never adds random splats on its own.
func (e *Engine) DisableRandomSplats() bool { return e.disableRandomSplats }

// SetDisableRandomSplats sets the informational random splat flag.
func (e *Engine) SetDisableRandomSplats(v bool) { e.disableRandomSplats = v }

// MovementThreshold returns the pointer speed a move must exceed to splat.
func (e *Engine) MovementThreshold() float64 { return e.movementThreshold }

// SetMovementThreshold sets the pointer speed a move must exceed to splat.
func (e *Engine) SetMovementThreshold(v float64) { e.movementThreshold = v }

// Width returns the surface width in pixels.
func (e *Engine) Width() int {
	w, _ := e.surface.Size()
	return w
}

// Height returns the surface height in pixels.
func (e *Engine) Height() int {
	_, h := e.surface.Size()
	return h
}

// FieldSize returns the size of the simulation fields.
func (e *Engine) FieldSize() (width, height int) {
	return e.texW, e.texH
}

// Capabilities returns the negotiated device capabilities.
func (e *Engine) Capabilities() gpu.Capabilities {
	return e.caps
}

// ColorPhase returns the color cycle phase in [0, 1).
func (e *Engine) ColorPhase() float64 {
	return e.colorCycle
}

// AddSplat queues a batch holding one splat.
func (e *Engine) AddSplat(s splat.Splat) {
	e.queue.Push(splat.Batch{s})
}

// AddSplats queues splats as one batch.
func (e *Engine) AddSplats(splats []splat.Splat) {
	e.queue.Push(splat.Batch(splats))
}

// AddRandomSplats queues n random splats as one batch.
func (e *Engine) AddRandomSplats(n int) {
	e.queue.Push(e.gen.Random(n, e.Width(), e.Height(), e.cfg.Colors, e.cfg.ColorCycleSpeed))
}

// PendingBatches returns the number of queued batches.
func (e *Engine) PendingBatches() int {
	return e.queue.Len()
}

// Pointers returns copies of the tracked pointers, the mouse first.
func (e *Engine) Pointers() []pointer.Pointer {
	return e.pointers.Snapshot()
}

// Program returns a compiled program by name.
func (e *Engine) Program(name string) (*gpu.Program, bool) {
	p, ok := e.programs[name]
	return p, ok
}
