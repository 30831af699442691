package shaders

import (
	"strings"
	"testing"

	"github.com/pthm-cable/smoke/gpu"
)

func TestEveryProgramHasSource(t *testing.T) {
	for _, name := range Names() {
		src, err := Fragment(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !strings.HasPrefix(src, "#version 330") {
			t.Errorf("%s: missing version directive", name)
		}
		if !strings.Contains(src, "finalColor") {
			t.Errorf("%s: fragment stage never writes finalColor", name)
		}
	}
	if len(Names()) != 10 {
		t.Errorf("expected 10 programs, got %d", len(Names()))
	}
}

func TestUnknownProgram(t *testing.T) {
	if _, err := Fragment("nope"); err == nil {
		t.Error("expected error for unknown program")
	}
}

func TestUniformDeclarations(t *testing.T) {
	tests := []struct {
		program string
		want    []string
	}{
		{Splat, []string{"uTarget", "aspectRatio", "color", "point", "radius", "uAdditiveMode", "uAdditiveThreshold"}},
		{Advection, []string{"uVelocity", "uSource", "texelSize", "dt", "dissipation"}},
		{Display, []string{"uTexture", "uBackgroundColor", "uAdditiveMode", "uAdditiveThreshold"}},
		{Pressure, []string{"uPressure", "uDivergence"}},
	}
	for _, tc := range tests {
		t.Run(tc.program, func(t *testing.T) {
			fs, err := Fragment(tc.program)
			if err != nil {
				t.Fatal(err)
			}
			got := gpu.ParseUniforms(fs)
			if strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Errorf("uniforms = %v, want %v", got, tc.want)
			}
		})
	}

	vs := gpu.ParseUniforms(Vertex())
	if strings.Join(vs, ",") != "mvp,texelSize" {
		t.Errorf("vertex uniforms = %v", vs)
	}
}
