// Package software is a gpu.Device that evaluates the fluid programs on the CPU.
//
// It keeps GL semantics where the solver depends on them: per-program uniform
// state, samplers that refer to texture units, clamp-to-edge sampling at texel
// centers, and channel loss for narrow or 8-bit formats. Programs are matched
// by name against a table of Go kernels that mirror the embedded GLSL.
package software

import (
	"fmt"
	"maps"
	"math"

	"github.com/pthm-cable/smoke/gpu"
)

const maxUnits = 16

// Option configures a Device.
type Option func(*Device)

// WithoutTexelTypes makes textures of the given types unavailable.
func WithoutTexelTypes(types ...gpu.TexelType) Option {
	return func(d *Device) {
		for _, t := range types {
			d.unsupported[t] = true
		}
	}
}

// WithoutLinearFiltering disables linear filtering for every texel type.
func WithoutLinearFiltering() Option {
	return func(d *Device) { d.noLinear = true }
}

// WithUnrenderable makes render targets of the given formats incomplete.
func WithUnrenderable(formats ...gpu.Format) Option {
	return func(d *Device) {
		for _, f := range formats {
			d.unrenderable[f] = true
		}
	}
}

// WithCompileFailure makes CompileProgram fail for the named programs.
func WithCompileFailure(names ...string) Option {
	return func(d *Device) {
		for _, n := range names {
			d.failCompile[n] = true
		}
	}
}

// Stats counts device activity.
type Stats struct {
	TexturesCreated  int
	TexturesDeleted  int
	TargetsCreated   int
	ProgramsCompiled int
	Clears           int
	Draws            map[string]int // Blits per program name
}

// Device is a CPU implementation of gpu.Device. Not safe for concurrent use.
type Device struct {
	unsupported  map[gpu.TexelType]bool
	noLinear     bool
	unrenderable map[gpu.Format]bool
	failCompile  map[string]bool

	nextID   uint32
	textures map[gpu.Texture]*texture
	targets  map[gpu.Target]gpu.Texture
	programs map[gpu.ProgramHandle]*program
	units    [maxUnits]gpu.Texture
	current  *program

	viewW, viewH int
	screen       *texture

	stats Stats
}

// New returns a device with every format renderable and linear filtering available.
func New(opts ...Option) *Device {
	d := &Device{
		unsupported:  make(map[gpu.TexelType]bool),
		unrenderable: make(map[gpu.Format]bool),
		failCompile:  make(map[string]bool),
		textures:     make(map[gpu.Texture]*texture),
		targets:      make(map[gpu.Target]gpu.Texture),
		programs:     make(map[gpu.ProgramHandle]*program),
		stats:        Stats{Draws: make(map[string]int)},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Stats returns a snapshot of the activity counters.
func (d *Device) Stats() Stats {
	s := d.stats
	s.Draws = maps.Clone(d.stats.Draws)
	return s
}

// ResetStats zeroes the activity counters.
func (d *Device) ResetStats() {
	d.stats = Stats{Draws: make(map[string]int)}
}

// LiveTextures returns the number of textures not yet deleted.
func (d *Device) LiveTextures() int {
	return len(d.textures)
}

// LivePrograms returns the number of programs not yet deleted.
func (d *Device) LivePrograms() int {
	return len(d.programs)
}

// Uniform returns the values last stored in a uniform of p, or nil when it was never set.
func (d *Device) Uniform(p gpu.ProgramHandle, name string) []float32 {
	prog, ok := d.programs[p]
	if !ok {
		return nil
	}
	loc, ok := prog.locs[name]
	if !ok {
		return nil
	}
	return append([]float32(nil), prog.values[loc]...)
}

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Device) SupportsTexelType(t gpu.TexelType) bool {
	return !d.unsupported[t]
}

func (d *Device) SupportsLinearFiltering(t gpu.TexelType) bool {
	return !d.noLinear && !d.unsupported[t]
}

func (d *Device) CreateTexture(unit, width, height int, format gpu.Format, filter gpu.Filter) (gpu.Texture, error) {
	if d.unsupported[format.Type] {
		return 0, fmt.Errorf("%w: %s", gpu.ErrUnsupportedFormat, format)
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("software: invalid texture size %dx%d", width, height)
	}
	if unit < 0 || unit >= maxUnits {
		return 0, fmt.Errorf("software: texture unit %d out of range", unit)
	}
	if filter == gpu.FilterLinear && !d.SupportsLinearFiltering(format.Type) {
		filter = gpu.FilterNearest
	}

	tex := gpu.Texture(d.id())
	d.textures[tex] = newTexture(width, height, format, filter)
	d.units[unit] = tex
	d.stats.TexturesCreated++
	return tex, nil
}

func (d *Device) CreateTarget(tex gpu.Texture) (gpu.Target, error) {
	t, ok := d.textures[tex]
	if !ok {
		return 0, fmt.Errorf("software: unknown texture %d", tex)
	}
	if d.unrenderable[t.format] {
		return 0, fmt.Errorf("%w: %s", gpu.ErrIncomplete, t.format)
	}
	target := gpu.Target(d.id())
	d.targets[target] = tex
	d.stats.TargetsCreated++
	return target, nil
}

func (d *Device) DeleteTexture(tex gpu.Texture) {
	if _, ok := d.textures[tex]; !ok {
		return
	}
	delete(d.textures, tex)
	for i, u := range d.units {
		if u == tex {
			d.units[i] = 0
		}
	}
	d.stats.TexturesDeleted++
}

func (d *Device) DeleteTarget(t gpu.Target) {
	delete(d.targets, t)
}

func (d *Device) BindTexture(unit int, tex gpu.Texture) {
	if unit >= 0 && unit < maxUnits {
		d.units[unit] = tex
	}
}

func (d *Device) Clear(t gpu.Target) {
	if tex := d.resolve(t); tex != nil {
		clear(tex.data)
		d.stats.Clears++
	}
}

func (d *Device) CompileProgram(name, vertexSource, fragmentSource string) (gpu.ProgramHandle, error) {
	if d.failCompile[name] {
		return 0, &gpu.CompileError{Program: name, Stage: "fragment", Log: "forced failure"}
	}
	k, ok := kernels[name]
	if !ok {
		return 0, &gpu.CompileError{Program: name, Stage: "link", Log: "no software kernel"}
	}
	if vertexSource == "" || fragmentSource == "" {
		return 0, &gpu.CompileError{Program: name, Stage: "vertex", Log: "empty source"}
	}

	p := &program{
		name:     name,
		kernel:   k,
		locs:     make(map[string]int32),
		values:   make(map[int32][]float32),
		samplers: make(map[int32]int),
	}
	for i, u := range gpu.ParseUniforms(vertexSource, fragmentSource) {
		p.locs[u] = int32(i)
	}
	h := gpu.ProgramHandle(d.id())
	d.programs[h] = p
	d.stats.ProgramsCompiled++
	return h, nil
}

func (d *Device) UniformLocation(p gpu.ProgramHandle, name string) int32 {
	prog, ok := d.programs[p]
	if !ok {
		return -1
	}
	if loc, ok := prog.locs[name]; ok {
		return loc
	}
	return -1
}

func (d *Device) DeleteProgram(p gpu.ProgramHandle) {
	if prog, ok := d.programs[p]; ok && prog == d.current {
		d.current = nil
	}
	delete(d.programs, p)
}

func (d *Device) UseProgram(p gpu.ProgramHandle) {
	d.current = d.programs[p]
}

func (d *Device) SetUniform(p gpu.ProgramHandle, loc int32, values ...float32) {
	if prog, ok := d.programs[p]; ok && loc >= 0 {
		prog.values[loc] = append([]float32(nil), values...)
	}
}

func (d *Device) SetSampler(p gpu.ProgramHandle, loc int32, unit int) {
	if prog, ok := d.programs[p]; ok && loc >= 0 {
		prog.samplers[loc] = unit
	}
}

func (d *Device) Viewport(width, height int) {
	d.viewW, d.viewH = width, height
}

// Blit evaluates the current program for every pixel of the viewport inside dst.
// Output is buffered so a pass may sample the texture it draws into.
func (d *Device) Blit(dst gpu.Target) {
	if d.current == nil || d.viewW <= 0 || d.viewH <= 0 {
		return
	}
	if dst == gpu.Screen && (d.screen == nil || d.screen.w != d.viewW || d.screen.h != d.viewH) {
		d.screen = newTexture(d.viewW, d.viewH, gpu.Format{Layout: gpu.LayoutRGBA, Type: gpu.TexelUnsignedByte}, gpu.FilterNearest)
	}
	out := d.resolve(dst)
	if out == nil {
		return
	}

	w, h := min(d.viewW, out.w), min(d.viewH, out.h)
	frag := d.current.kernel(&shade{d: d, p: d.current})
	buf := make([]vec4, w*h)
	for j := range h {
		v := (float32(j) + 0.5) / float32(d.viewH)
		for i := range w {
			u := (float32(i) + 0.5) / float32(d.viewW)
			buf[j*w+i] = frag(u, v)
		}
	}
	for j := range h {
		for i := range w {
			out.store(j*out.w+i, buf[j*w+i])
		}
	}
	d.stats.Draws[d.current.name]++
}

func (d *Device) ReadPixels(t gpu.Target) (gpu.Pixels, error) {
	tex := d.resolve(t)
	if tex == nil {
		return gpu.Pixels{}, fmt.Errorf("software: unknown target %d", t)
	}
	ch := tex.format.Layout.Channels()
	px := gpu.Pixels{Width: tex.w, Height: tex.h, Channels: ch, Data: make([]float32, tex.w*tex.h*ch)}
	for i := range tex.w * tex.h {
		copy(px.Data[i*ch:(i+1)*ch], tex.data[i*4:i*4+ch])
	}
	return px, nil
}

func (d *Device) resolve(t gpu.Target) *texture {
	if t == gpu.Screen {
		return d.screen
	}
	tex, ok := d.targets[t]
	if !ok {
		return nil
	}
	return d.textures[tex]
}

// program is a compiled kernel with GL-style uniform state.
type program struct {
	name     string
	kernel   kernel
	locs     map[string]int32
	values   map[int32][]float32
	samplers map[int32]int
}

// shade gives kernels read access to the uniforms of the program being drawn.
type shade struct {
	d *Device
	p *program
}

func (s *shade) float(name string) float32 {
	return s.vec(name)[0]
}

func (s *shade) vec(name string) vec4 {
	var v vec4
	if loc, ok := s.p.locs[name]; ok {
		copy(v[:], s.p.values[loc])
	}
	return v
}

// sampler returns the texture bound to the unit a sampler uniform points at.
// Unset samplers read unit 0, as in GL.
func (s *shade) sampler(name string) *texture {
	unit := 0
	if loc, ok := s.p.locs[name]; ok {
		unit = s.p.samplers[loc]
	}
	if unit < 0 || unit >= maxUnits {
		return nil
	}
	return s.d.textures[s.d.units[unit]]
}

// texture stores RGBA texels whatever its format; store drops what the format cannot hold.
type texture struct {
	w, h   int
	format gpu.Format
	filter gpu.Filter
	data   []float32
}

func newTexture(w, h int, format gpu.Format, filter gpu.Filter) *texture {
	return &texture{w: w, h: h, format: format, filter: filter, data: make([]float32, w*h*4)}
}

func (t *texture) store(i int, c vec4) {
	switch t.format.Layout {
	case gpu.LayoutR:
		c = vec4{c[0], 0, 0, 1}
	case gpu.LayoutRG:
		c = vec4{c[0], c[1], 0, 1}
	}
	for k := range c {
		c[k] = quantize(c[k], t.format.Type)
	}
	copy(t.data[i*4:i*4+4], c[:])
}

func (t *texture) texel(x, y int) vec4 {
	x = max(0, min(t.w-1, x))
	y = max(0, min(t.h-1, y))
	i := (y*t.w + x) * 4
	var c vec4
	copy(c[:], t.data[i:i+4])
	return c
}

// sample reads the texture at uv with clamp-to-edge wrapping. A nil texture reads
// as opaque black, like an incomplete GL texture.
func (t *texture) sample(u, v float32) vec4 {
	if t == nil {
		return vec4{0, 0, 0, 1}
	}
	x := u*float32(t.w) - 0.5
	y := v*float32(t.h) - 0.5
	if t.filter == gpu.FilterNearest {
		return t.texel(int(math.Floor(float64(x)+0.5)), int(math.Floor(float64(y)+0.5)))
	}
	x0 := float32(math.Floor(float64(x)))
	y0 := float32(math.Floor(float64(y)))
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)
	a, b := t.texel(ix, iy), t.texel(ix+1, iy)
	c, e := t.texel(ix, iy+1), t.texel(ix+1, iy+1)
	return mix4(mix4(a, b, fx), mix4(c, e, fx), fy)
}

// quantize rounds a channel to the precision of its texel type.
func quantize(f float32, typ gpu.TexelType) float32 {
	switch typ {
	case gpu.TexelUnsignedByte:
		f = max(0, min(1, f))
		return float32(math.Round(float64(f)*255)) / 255
	case gpu.TexelHalfFloat:
		if math.IsNaN(float64(f)) {
			return f
		}
		f = max(-65504, min(65504, f))
		bits := math.Float32bits(f)
		bits = (bits + 1<<12) &^ (1<<13 - 1) // 10 mantissa bits
		return math.Float32frombits(bits)
	}
	return f
}
