// Package rlgpu is a gpu.Device backed by raylib's rlgl layer.
//
// The device must be created after rl.InitWindow and used on the thread that
// owns the window. It routes raylib's trace log into slog and reports shader
// compile failures with the captured driver log.
package rlgpu

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoke/gpu"
)

const maxUnits = 16

type texture struct {
	tex    rl.Texture2D
	format gpu.Format
}

type program struct {
	id   uint32
	name string
	mvp  int32
}

// Device drives the GPU through rlgl.
type Device struct {
	log *slog.Logger

	textures map[gpu.Texture]*texture
	targets  map[gpu.Target]uint32 // framebuffer id
	attached map[gpu.Target]gpu.Texture
	programs map[gpu.ProgramHandle]*program
	units    [maxUnits]gpu.Texture
	current  gpu.ProgramHandle
	nextID   uint32

	viewW, viewH int32

	capturing bool
	captured  []string
}

// New returns a device for the current raylib window and installs a trace log
// callback that forwards raylib messages to log. A nil log discards them.
func New(log *slog.Logger) *Device {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	d := &Device{
		log:      log,
		textures: make(map[gpu.Texture]*texture),
		targets:  make(map[gpu.Target]uint32),
		attached: make(map[gpu.Target]gpu.Texture),
		programs: make(map[gpu.ProgramHandle]*program),
	}
	rl.SetTraceLogCallback(d.trace)
	return d
}

// trace forwards a raylib log line and keeps warnings while a program compiles.
func (d *Device) trace(level int, msg string) {
	switch {
	case level >= int(rl.LogError):
		d.log.Error(msg, "source", "raylib")
	case level >= int(rl.LogWarning):
		d.log.Warn(msg, "source", "raylib")
	case level >= int(rl.LogInfo):
		d.log.Info(msg, "source", "raylib")
	default:
		d.log.Debug(msg, "source", "raylib")
	}
	if d.capturing && level >= int(rl.LogWarning) {
		d.captured = append(d.captured, msg)
	}
}

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

// SupportsTexelType reports float and 8-bit textures. raylib exposes no
// half-float pixel formats.
func (d *Device) SupportsTexelType(t gpu.TexelType) bool {
	return t != gpu.TexelHalfFloat
}

// SupportsLinearFiltering reports linear filtering of float textures on desktop
// GL only.
func (d *Device) SupportsLinearFiltering(t gpu.TexelType) bool {
	switch t {
	case gpu.TexelUnsignedByte:
		return true
	case gpu.TexelFloat:
		return rl.GetVersion() != rl.OpenglEs20
	}
	return false
}

// pixelFormat maps a storage format to a raylib pixel format. RG layouts have
// no raylib format that samples as (r, g) and are reported unsupported.
func pixelFormat(f gpu.Format) (rl.PixelFormat, bool) {
	switch f {
	case gpu.Format{Layout: gpu.LayoutRGBA, Type: gpu.TexelFloat}:
		return rl.UncompressedR32g32b32a32, true
	case gpu.Format{Layout: gpu.LayoutR, Type: gpu.TexelFloat}:
		return rl.UncompressedR32, true
	case gpu.Format{Layout: gpu.LayoutRGBA, Type: gpu.TexelUnsignedByte}:
		return rl.UncompressedR8g8b8a8, true
	case gpu.Format{Layout: gpu.LayoutR, Type: gpu.TexelUnsignedByte}:
		return rl.UncompressedGrayscale, true
	}
	return 0, false
}

func (d *Device) CreateTexture(unit, width, height int, format gpu.Format, filter gpu.Filter) (gpu.Texture, error) {
	pf, ok := pixelFormat(format)
	if !ok {
		return 0, fmt.Errorf("%w: %s", gpu.ErrUnsupportedFormat, format)
	}
	if unit < 0 || unit >= maxUnits {
		return 0, fmt.Errorf("rlgpu: texture unit %d out of range", unit)
	}

	img := rl.GenImageColor(width, height, rl.Blank)
	rl.ImageFormat(img, pf)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	if tex.ID == 0 {
		return 0, fmt.Errorf("%w: %s", gpu.ErrUnsupportedFormat, format)
	}

	mode := rl.FilterPoint
	if filter == gpu.FilterLinear {
		mode = rl.FilterBilinear
	}
	rl.SetTextureFilter(tex, mode)
	rl.SetTextureWrap(tex, rl.WrapClamp)

	h := gpu.Texture(d.id())
	d.textures[h] = &texture{tex: tex, format: format}
	d.BindTexture(unit, h)
	return h, nil
}

func (d *Device) CreateTarget(tex gpu.Texture) (gpu.Target, error) {
	t, ok := d.textures[tex]
	if !ok {
		return 0, fmt.Errorf("rlgpu: unknown texture %d", tex)
	}
	fbo := rl.LoadFramebuffer()
	rl.FramebufferAttach(fbo, t.tex.ID, rl.AttachmentColorChannel0, rl.AttachmentTexture2d, 0)
	complete := rl.FramebufferComplete(fbo)
	rl.DisableFramebuffer()
	if !complete {
		rl.UnloadFramebuffer(fbo)
		return 0, fmt.Errorf("%w: %s", gpu.ErrIncomplete, t.format)
	}

	target := gpu.Target(d.id())
	d.targets[target] = fbo
	d.attached[target] = tex
	return target, nil
}

func (d *Device) DeleteTexture(tex gpu.Texture) {
	t, ok := d.textures[tex]
	if !ok {
		return
	}
	rl.UnloadTexture(t.tex)
	delete(d.textures, tex)
	for i, u := range d.units {
		if u == tex {
			d.units[i] = 0
		}
	}
}

func (d *Device) DeleteTarget(t gpu.Target) {
	if fbo, ok := d.targets[t]; ok {
		rl.UnloadFramebuffer(fbo)
		delete(d.targets, t)
		delete(d.attached, t)
	}
}

// BindTexture records the unit binding. Units are bound on the GPU at Blit,
// after raylib's own batch drawing may have changed them.
func (d *Device) BindTexture(unit int, tex gpu.Texture) {
	if unit >= 0 && unit < maxUnits {
		d.units[unit] = tex
	}
}

func (d *Device) Clear(t gpu.Target) {
	rl.DrawRenderBatchActive()
	d.bindTarget(t)
	rl.ClearColor(0, 0, 0, 0)
	rl.ClearScreenBuffers()
	rl.DisableFramebuffer()
}

func (d *Device) CompileProgram(name, vertexSource, fragmentSource string) (gpu.ProgramHandle, error) {
	d.capturing, d.captured = true, nil
	id := rl.LoadShaderCode(vertexSource, fragmentSource)
	d.capturing = false

	if id == 0 || id == rl.GetShaderIdDefault() {
		return 0, &gpu.CompileError{Program: name, Stage: stage(d.captured), Log: strings.Join(d.captured, "\n")}
	}

	h := gpu.ProgramHandle(d.id())
	d.programs[h] = &program{id: id, name: name, mvp: rl.GetLocationUniform(id, "mvp")}
	d.log.Debug("program compiled", "name", name, "id", id)
	return h, nil
}

// stage guesses the failing stage from rlgl's diagnostics.
func stage(log []string) string {
	for _, l := range log {
		switch {
		case strings.Contains(l, "Failed to compile vertex"):
			return "vertex"
		case strings.Contains(l, "Failed to compile fragment"):
			return "fragment"
		}
	}
	return "link"
}

func (d *Device) UniformLocation(p gpu.ProgramHandle, name string) int32 {
	prog, ok := d.programs[p]
	if !ok {
		return -1
	}
	return rl.GetLocationUniform(prog.id, name)
}

func (d *Device) DeleteProgram(p gpu.ProgramHandle) {
	prog, ok := d.programs[p]
	if !ok {
		return
	}
	rl.UnloadShaderProgram(prog.id)
	delete(d.programs, p)
	if d.current == p {
		d.current = 0
	}
}

func (d *Device) UseProgram(p gpu.ProgramHandle) {
	d.current = p
}

// withProgram runs fn with p bound, since GL uniform writes target the bound program.
func (d *Device) withProgram(p gpu.ProgramHandle, fn func()) {
	prog, ok := d.programs[p]
	if !ok {
		return
	}
	rl.EnableShader(prog.id)
	fn()
	rl.DisableShader()
}

var uniformTypes = [...]int32{
	int32(rl.ShaderUniformFloat),
	int32(rl.ShaderUniformVec2),
	int32(rl.ShaderUniformVec3),
	int32(rl.ShaderUniformVec4),
}

func (d *Device) SetUniform(p gpu.ProgramHandle, loc int32, values ...float32) {
	if loc < 0 || len(values) == 0 || len(values) > 4 {
		return
	}
	d.withProgram(p, func() {
		rl.SetUniform(loc, values, uniformTypes[len(values)-1])
	})
}

func (d *Device) SetSampler(p gpu.ProgramHandle, loc int32, unit int) {
	if loc < 0 {
		return
	}
	d.withProgram(p, func() {
		// rlSetUniform passes int uniforms through the same pointer as floats.
		rl.SetUniform(loc, []float32{math.Float32frombits(uint32(unit))}, int32(rl.ShaderUniformSampler2d))
	})
}

func (d *Device) Viewport(width, height int) {
	d.viewW, d.viewH = int32(width), int32(height)
}

func (d *Device) bindTarget(t gpu.Target) {
	if t == gpu.Screen {
		rl.DisableFramebuffer()
		return
	}
	rl.EnableFramebuffer(d.targets[t])
}

// Blit draws a fullscreen quad with the current program into dst.
func (d *Device) Blit(dst gpu.Target) {
	prog, ok := d.programs[d.current]
	if !ok {
		return
	}
	rl.DrawRenderBatchActive()

	d.bindTarget(dst)
	rl.Viewport(0, 0, d.viewW, d.viewH)
	rl.EnableShader(prog.id)
	if prog.mvp >= 0 {
		rl.SetUniformMatrix(prog.mvp, rl.MatrixIdentity())
	}
	for unit, h := range d.units {
		if t, ok := d.textures[h]; ok {
			rl.ActiveTextureSlot(int32(unit))
			rl.EnableTexture(t.tex.ID)
		}
	}

	rl.LoadDrawQuad()

	rl.ActiveTextureSlot(0)
	rl.DisableShader()
	rl.DisableFramebuffer()
	rl.Viewport(0, 0, int32(rl.GetRenderWidth()), int32(rl.GetRenderHeight()))
}

// ReadPixels reads a field target back, or the window for gpu.Screen.
func (d *Device) ReadPixels(t gpu.Target) (gpu.Pixels, error) {
	rl.DrawRenderBatchActive()
	if t == gpu.Screen {
		return readScreen(), nil
	}

	tex, ok := d.textures[d.attached[t]]
	if !ok {
		return gpu.Pixels{}, fmt.Errorf("rlgpu: unknown target %d", t)
	}
	img := rl.LoadImageFromTexture(tex.tex)
	defer rl.UnloadImage(img)

	w, h := int(img.Width), int(img.Height)
	ch := tex.format.Layout.Channels()
	px := gpu.Pixels{Width: w, Height: h, Channels: ch, Data: make([]float32, w*h*ch)}
	switch tex.format.Type {
	case gpu.TexelFloat:
		copy(px.Data, unsafe.Slice((*float32)(img.Data), w*h*ch))
	default:
		for i, b := range unsafe.Slice((*uint8)(img.Data), w*h*ch) {
			px.Data[i] = float32(b) / 255
		}
	}
	return px, nil
}

// readScreen returns the window contents, bottom row first.
func readScreen() gpu.Pixels {
	img := rl.LoadImageFromScreen()
	defer rl.UnloadImage(img)

	colors := rl.LoadImageColors(img)
	defer rl.UnloadImageColors(colors)

	w, h := int(img.Width), int(img.Height)
	px := gpu.Pixels{Width: w, Height: h, Channels: 4, Data: make([]float32, w*h*4)}
	for y := range h {
		row := h - 1 - y
		for x := range w {
			c := colors[row*w+x]
			i := (y*w + x) * 4
			px.Data[i] = float32(c.R) / 255
			px.Data[i+1] = float32(c.G) / 255
			px.Data[i+2] = float32(c.B) / 255
			px.Data[i+3] = float32(c.A) / 255
		}
	}
	return px
}

// Close unloads every GPU resource the device still holds.
func (d *Device) Close() {
	for t := range d.targets {
		d.DeleteTarget(t)
	}
	for tex := range d.textures {
		d.DeleteTexture(tex)
	}
	for p := range d.programs {
		d.DeleteProgram(p)
	}
	rl.SetTraceLogCallback(func(int, string) {})
}

var _ gpu.Device = (*Device)(nil)
