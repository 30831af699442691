// Package gpu holds the graphics-device abstraction the fluid solver runs on:
// capability negotiation, shader programs and framebuffer pairs.
//
// A Device is a thin, GL-shaped command surface. Backends live in sub-packages:
// gpu/rlgpu drives a real GPU through raylib, gpu/software evaluates the same
// programs on the CPU.
package gpu

import "errors"

// Texture, Target and ProgramHandle are opaque device handles. Zero is never a valid
// texture or program; the zero Target is the screen.
type (
	Texture       uint32
	Target        uint32
	ProgramHandle uint32
)

// Screen is the default render target (the host's drawing surface).
const Screen Target = 0

// TexelType is the numeric type of texture channels.
type TexelType int

const (
	TexelHalfFloat TexelType = iota
	TexelFloat
	TexelUnsignedByte
)

func (t TexelType) String() string {
	switch t {
	case TexelHalfFloat:
		return "half-float"
	case TexelFloat:
		return "float"
	case TexelUnsignedByte:
		return "unsigned-byte"
	}
	return "unknown"
}

// Layout is a channel layout.
type Layout int

const (
	LayoutR Layout = iota
	LayoutRG
	LayoutRGBA
)

// Channels returns the channel count of the layout.
func (l Layout) Channels() int {
	switch l {
	case LayoutR:
		return 1
	case LayoutRG:
		return 2
	default:
		return 4
	}
}

func (l Layout) String() string {
	switch l {
	case LayoutR:
		return "R"
	case LayoutRG:
		return "RG"
	default:
		return "RGBA"
	}
}

// Format is a texture storage format.
type Format struct {
	Layout Layout
	Type   TexelType
}

func (f Format) String() string {
	return f.Layout.String() + "/" + f.Type.String()
}

// Filter is a texture sampling filter.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
)

// Device errors.
var (
	ErrNoDevice          = errors.New("gpu: no graphics device")
	ErrUnsupportedFormat = errors.New("gpu: unsupported texture format")
	ErrIncomplete        = errors.New("gpu: render target incomplete")
)

// Device is the graphics context the engine drives. Implementations are not safe for
// concurrent use; every call happens on the host's frame thread.
type Device interface {
	// SupportsTexelType reports whether textures of the given type can be created.
	SupportsTexelType(t TexelType) bool
	// SupportsLinearFiltering reports whether textures of the given type can be sampled
	// with FilterLinear.
	SupportsLinearFiltering(t TexelType) bool

	// CreateTexture allocates a texture and binds it to the given texture unit.
	CreateTexture(unit, width, height int, format Format, filter Filter) (Texture, error)
	// CreateTarget creates a render target drawing into tex. Returns ErrIncomplete when
	// the combination cannot be rendered to.
	CreateTarget(tex Texture) (Target, error)
	DeleteTexture(tex Texture)
	DeleteTarget(t Target)
	// BindTexture binds tex to a texture unit; samplers refer to units.
	BindTexture(unit int, tex Texture)
	// Clear zeroes every texel of a render target.
	Clear(t Target)

	// CompileProgram compiles and links a vertex/fragment pair. The name identifies the
	// program in diagnostics.
	CompileProgram(name, vertexSource, fragmentSource string) (ProgramHandle, error)
	// UniformLocation returns the location of a uniform or -1 when it is not active.
	UniformLocation(p ProgramHandle, name string) int32
	DeleteProgram(p ProgramHandle)
	// UseProgram makes p the program used by Blit.
	UseProgram(p ProgramHandle)
	// SetUniform stores 1 to 4 float components in a uniform of p.
	SetUniform(p ProgramHandle, loc int32, values ...float32)
	// SetSampler points a sampler uniform of p at a texture unit.
	SetSampler(p ProgramHandle, loc int32, unit int)

	// Viewport sets the size of the area Blit covers.
	Viewport(width, height int)
	// Blit draws a fullscreen quad with the current program into dst.
	Blit(dst Target)
	// ReadPixels copies a target's texels to the CPU. Row 0 is the bottom row.
	ReadPixels(t Target) (Pixels, error)
}

// Pixels is a CPU copy of a render target.
type Pixels struct {
	Width, Height int
	Channels      int
	Data          []float32 // row-major, bottom row first
}

// At returns the channels of texel (x, y), with y counted from the bottom.
// Out-of-range coordinates return nil.
func (p Pixels) At(x, y int) []float32 {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return nil
	}
	i := (y*p.Width + x) * p.Channels
	return p.Data[i : i+p.Channels]
}
