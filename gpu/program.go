package gpu

import (
	"fmt"
	"regexp"
	"slices"
)

// CompileError reports a shader that failed to compile or link.
type CompileError struct {
	Program string
	Stage   string // "vertex", "fragment" or "link"
	Log     string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("gpu: %s %s failed: %s", e.Program, e.Stage, e.Log)
}

// Program is a compiled shader pair with its uniform locations resolved once.
// Programs are immutable after construction.
type Program struct {
	dev      Device
	name     string
	handle   ProgramHandle
	uniforms map[string]int32
}

// NewProgram compiles and links a program and resolves the locations of every uniform
// declared in either source.
func NewProgram(dev Device, name, vertexSource, fragmentSource string) (*Program, error) {
	h, err := dev.CompileProgram(name, vertexSource, fragmentSource)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}

	p := &Program{
		dev:      dev,
		name:     name,
		handle:   h,
		uniforms: make(map[string]int32),
	}
	for _, u := range ParseUniforms(vertexSource, fragmentSource) {
		if loc := dev.UniformLocation(h, u); loc >= 0 {
			p.uniforms[u] = loc
		}
	}
	return p, nil
}

// Name returns the program name.
func (p *Program) Name() string { return p.name }

// Handle returns the device handle.
func (p *Program) Handle() ProgramHandle { return p.handle }

// Uniform returns the location of a uniform and whether it is active.
func (p *Program) Uniform(name string) (int32, bool) {
	loc, ok := p.uniforms[name]
	return loc, ok
}

// Uniforms returns the active uniform names, sorted.
func (p *Program) Uniforms() []string {
	names := make([]string, 0, len(p.uniforms))
	for n := range p.uniforms {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Bind makes the program current.
func (p *Program) Bind() {
	p.dev.UseProgram(p.handle)
}

// SetFloat sets a float uniform. Unknown names are ignored, like inactive GL uniforms.
func (p *Program) SetFloat(name string, v float32) {
	p.set(name, v)
}

// SetVec2 sets a vec2 uniform.
func (p *Program) SetVec2(name string, x, y float32) {
	p.set(name, x, y)
}

// SetVec3 sets a vec3 uniform.
func (p *Program) SetVec3(name string, x, y, z float32) {
	p.set(name, x, y, z)
}

// SetVec4 sets a vec4 uniform.
func (p *Program) SetVec4(name string, x, y, z, w float32) {
	p.set(name, x, y, z, w)
}

// SetSampler points a sampler uniform at a texture unit.
func (p *Program) SetSampler(name string, unit int) {
	if loc, ok := p.uniforms[name]; ok {
		p.dev.SetSampler(p.handle, loc, unit)
	}
}

func (p *Program) set(name string, values ...float32) {
	if loc, ok := p.uniforms[name]; ok {
		p.dev.SetUniform(p.handle, loc, values...)
	}
}

// Close deletes the program.
func (p *Program) Close() {
	if p.handle != 0 {
		p.dev.DeleteProgram(p.handle)
		p.handle = 0
	}
}

var uniformRe = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?\w+\s+(\w+)\s*(?:\[\s*\d+\s*\])?\s*;`)

// ParseUniforms returns the uniform names declared in GLSL sources, in declaration
// order and without duplicates.
func ParseUniforms(sources ...string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, src := range sources {
		for _, m := range uniformRe.FindAllStringSubmatch(src, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}
	return names
}
