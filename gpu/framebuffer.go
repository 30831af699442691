package gpu

import "fmt"

// Framebuffer is a texture with a render target drawing into it. The texture lives on
// a fixed texture unit so several fields can be sampled by one pass.
type Framebuffer struct {
	dev     Device
	Texture Texture
	Target  Target
	Unit    int
	Width   int
	Height  int
}

// NewFramebuffer allocates a cleared texture + render target on unit.
func NewFramebuffer(dev Device, unit, width, height int, format Format, filter Filter) (*Framebuffer, error) {
	tex, err := dev.CreateTexture(unit, width, height, format, filter)
	if err != nil {
		return nil, fmt.Errorf("creating %s texture %dx%d: %w", format, width, height, err)
	}
	t, err := dev.CreateTarget(tex)
	if err != nil {
		dev.DeleteTexture(tex)
		return nil, fmt.Errorf("creating %s target: %w", format, err)
	}
	dev.Viewport(width, height)
	dev.Clear(t)

	return &Framebuffer{
		dev:     dev,
		Texture: tex,
		Target:  t,
		Unit:    unit,
		Width:   width,
		Height:  height,
	}, nil
}

// Attach binds the texture to its unit and returns the unit for a sampler uniform.
func (f *Framebuffer) Attach() int {
	f.dev.BindTexture(f.Unit, f.Texture)
	return f.Unit
}

// Close releases the GPU handles. Safe to call twice.
func (f *Framebuffer) Close() {
	if f == nil || f.Texture == 0 {
		return
	}
	f.dev.DeleteTarget(f.Target)
	f.dev.DeleteTexture(f.Texture)
	f.Texture, f.Target = 0, 0
}

// DoubleFramebuffer is a ping-pong pair: passes sample Read and draw into Write, then
// Swap. Swap exchanges the roles of the two slots without touching texel data.
type DoubleFramebuffer struct {
	slots [2]*Framebuffer
	read  int
}

// NewDoubleFramebuffer allocates two framebuffers on unit and unit+1.
func NewDoubleFramebuffer(dev Device, unit, width, height int, format Format, filter Filter) (*DoubleFramebuffer, error) {
	a, err := NewFramebuffer(dev, unit, width, height, format, filter)
	if err != nil {
		return nil, err
	}
	b, err := NewFramebuffer(dev, unit+1, width, height, format, filter)
	if err != nil {
		a.Close()
		return nil, err
	}
	return &DoubleFramebuffer{slots: [2]*Framebuffer{a, b}}, nil
}

// Read returns the framebuffer holding the current field.
func (d *DoubleFramebuffer) Read() *Framebuffer { return d.slots[d.read] }

// Write returns the framebuffer the next pass draws into.
func (d *DoubleFramebuffer) Write() *Framebuffer { return d.slots[1-d.read] }

// Swap exchanges Read and Write.
func (d *DoubleFramebuffer) Swap() { d.read = 1 - d.read }

// Close releases both framebuffers.
func (d *DoubleFramebuffer) Close() {
	if d == nil {
		return
	}
	d.slots[0].Close()
	d.slots[1].Close()
}
