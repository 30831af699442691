package gpu_test

import (
	"errors"
	"testing"

	"github.com/pthm-cable/smoke/gpu"
	"github.com/pthm-cable/smoke/gpu/software"
)

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name     string
		opts     []software.Option
		wantType gpu.TexelType
		wantRG   gpu.Layout
		wantR    gpu.Layout
		linear   bool
		degraded bool
	}{
		{
			name:     "full support",
			wantType: gpu.TexelHalfFloat,
			wantRG:   gpu.LayoutRG,
			wantR:    gpu.LayoutR,
			linear:   true,
		},
		{
			name:     "no half float",
			opts:     []software.Option{software.WithoutTexelTypes(gpu.TexelHalfFloat)},
			wantType: gpu.TexelFloat,
			wantRG:   gpu.LayoutRG,
			wantR:    gpu.LayoutR,
			linear:   true,
			degraded: true,
		},
		{
			name:     "no float at all",
			opts:     []software.Option{software.WithoutTexelTypes(gpu.TexelHalfFloat, gpu.TexelFloat)},
			wantType: gpu.TexelUnsignedByte,
			wantRG:   gpu.LayoutRG,
			wantR:    gpu.LayoutR,
			linear:   true,
			degraded: true,
		},
		{
			name: "narrow layouts widen",
			opts: []software.Option{software.WithUnrenderable(
				gpu.Format{Layout: gpu.LayoutR, Type: gpu.TexelHalfFloat},
				gpu.Format{Layout: gpu.LayoutRG, Type: gpu.TexelHalfFloat},
			)},
			wantType: gpu.TexelHalfFloat,
			wantRG:   gpu.LayoutRGBA,
			wantR:    gpu.LayoutRGBA,
			linear:   true,
			degraded: true,
		},
		{
			name: "R widens to RG",
			opts: []software.Option{software.WithUnrenderable(
				gpu.Format{Layout: gpu.LayoutR, Type: gpu.TexelHalfFloat},
			)},
			wantType: gpu.TexelHalfFloat,
			wantRG:   gpu.LayoutRG,
			wantR:    gpu.LayoutRG,
			linear:   true,
			degraded: true,
		},
		{
			name: "RGBA half float unrenderable",
			opts: []software.Option{software.WithUnrenderable(
				gpu.Format{Layout: gpu.LayoutRGBA, Type: gpu.TexelHalfFloat},
			)},
			wantType: gpu.TexelFloat,
			wantRG:   gpu.LayoutRG,
			wantR:    gpu.LayoutR,
			linear:   true,
			degraded: true,
		},
		{
			name:     "no linear filtering",
			opts:     []software.Option{software.WithoutLinearFiltering()},
			wantType: gpu.TexelHalfFloat,
			wantRG:   gpu.LayoutRG,
			wantR:    gpu.LayoutR,
			degraded: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dev := software.New(tc.opts...)
			caps, err := gpu.Negotiate(dev)
			if err != nil {
				t.Fatalf("Negotiate: %v", err)
			}
			if caps.TexelType != tc.wantType {
				t.Errorf("texel type = %s, want %s", caps.TexelType, tc.wantType)
			}
			if caps.RGBA.Layout != gpu.LayoutRGBA || caps.RGBA.Type != tc.wantType {
				t.Errorf("RGBA slot = %s", caps.RGBA)
			}
			if caps.RG.Layout != tc.wantRG {
				t.Errorf("RG slot = %s, want layout %s", caps.RG, tc.wantRG)
			}
			if caps.R.Layout != tc.wantR {
				t.Errorf("R slot = %s, want layout %s", caps.R, tc.wantR)
			}
			if caps.SupportLinearFiltering != tc.linear {
				t.Errorf("linear filtering = %v, want %v", caps.SupportLinearFiltering, tc.linear)
			}
			if caps.Degraded() != tc.degraded {
				t.Errorf("degraded = %v (notes %v), want %v", caps.Degraded(), caps.Notes, tc.degraded)
			}
			if dev.LiveTextures() != 0 {
				t.Errorf("negotiation leaked %d probe textures", dev.LiveTextures())
			}
		})
	}
}

func TestNegotiateFieldFilter(t *testing.T) {
	caps, _ := gpu.Negotiate(software.New())
	if caps.FieldFilter() != gpu.FilterLinear {
		t.Error("expected linear field filter")
	}
	caps, _ = gpu.Negotiate(software.New(software.WithoutLinearFiltering()))
	if caps.FieldFilter() != gpu.FilterNearest {
		t.Error("expected nearest field filter")
	}
}

func TestNegotiateNoDevice(t *testing.T) {
	if _, err := gpu.Negotiate(nil); !errors.Is(err, gpu.ErrNoDevice) {
		t.Errorf("expected ErrNoDevice, got %v", err)
	}

	dev := software.New(software.WithoutTexelTypes(gpu.TexelHalfFloat, gpu.TexelFloat, gpu.TexelUnsignedByte))
	if _, err := gpu.Negotiate(dev); !errors.Is(err, gpu.ErrNoDevice) {
		t.Errorf("expected ErrNoDevice when nothing renders, got %v", err)
	}
}
