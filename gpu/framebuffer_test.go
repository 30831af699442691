package gpu_test

import (
	"testing"

	"github.com/pthm-cable/smoke/gpu"
	"github.com/pthm-cable/smoke/gpu/software"
	"github.com/pthm-cable/smoke/shaders"
)

var rgbaFloat = gpu.Format{Layout: gpu.LayoutRGBA, Type: gpu.TexelFloat}

// splatInto draws a unit splat of color into fb.Write() and swaps.
func splatInto(t *testing.T, dev gpu.Device, p *gpu.Program, fb *gpu.DoubleFramebuffer, color float32) {
	t.Helper()
	p.Bind()
	p.SetSampler("uTarget", fb.Read().Attach())
	p.SetFloat("aspectRatio", 1)
	p.SetVec2("point", 0.5, 0.5)
	p.SetVec3("color", color, 0, 0)
	p.SetFloat("radius", 1000)
	dev.Viewport(fb.Write().Width, fb.Write().Height)
	dev.Blit(fb.Write().Target)
	fb.Swap()
}

func TestDoubleFramebufferSwap(t *testing.T) {
	dev := software.New()
	fb, err := gpu.NewDoubleFramebuffer(dev, 0, 4, 4, rgbaFloat, gpu.FilterNearest)
	if err != nil {
		t.Fatal(err)
	}
	defer fb.Close()

	a, b := fb.Read(), fb.Write()
	if a == b {
		t.Fatal("read and write share a framebuffer")
	}
	if a.Unit != 0 || b.Unit != 1 {
		t.Errorf("units = %d/%d, want 0/1", a.Unit, b.Unit)
	}

	fb.Swap()
	if fb.Read() != b || fb.Write() != a {
		t.Error("swap did not exchange roles")
	}
	fb.Swap()
	if fb.Read() != a || fb.Write() != b {
		t.Error("two swaps should restore the original roles")
	}

	if n := testing.AllocsPerRun(100, fb.Swap); n != 0 {
		t.Errorf("Swap allocates %v times", n)
	}
}

func TestPassesReadWhatThePreviousWrote(t *testing.T) {
	dev := software.New()
	fb, err := gpu.NewDoubleFramebuffer(dev, 2, 4, 4, rgbaFloat, gpu.FilterNearest)
	if err != nil {
		t.Fatal(err)
	}
	defer fb.Close()
	p := newProgram(t, dev, shaders.Splat)
	defer p.Close()

	// radius is huge so the gaussian is ~1 everywhere
	for range 3 {
		splatInto(t, dev, p, fb, 1)
	}

	px, err := dev.ReadPixels(fb.Read().Target)
	if err != nil {
		t.Fatal(err)
	}
	if got := px.At(0, 0)[0]; got < 2.99 || got > 3.0 {
		t.Errorf("expected three accumulated splats, got %v", got)
	}
}

func TestNewFramebufferClears(t *testing.T) {
	dev := software.New()
	f, err := gpu.NewFramebuffer(dev, 4, 3, 2, rgbaFloat, gpu.FilterNearest)
	if err != nil {
		t.Fatal(err)
	}
	px, _ := dev.ReadPixels(f.Target)
	for _, v := range px.Data {
		if v != 0 {
			t.Fatal("new framebuffer not cleared")
		}
	}
	f.Close()
	f.Close()
	if dev.LiveTextures() != 0 {
		t.Errorf("leaked %d textures", dev.LiveTextures())
	}
}

func TestNewFramebufferIncomplete(t *testing.T) {
	dev := software.New(software.WithUnrenderable(rgbaFloat))
	if _, err := gpu.NewFramebuffer(dev, 0, 2, 2, rgbaFloat, gpu.FilterNearest); err == nil {
		t.Fatal("expected error for unrenderable format")
	}
	if dev.LiveTextures() != 0 {
		t.Error("failed framebuffer leaked its texture")
	}
}
