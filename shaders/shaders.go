// Package shaders embeds the GLSL programs of the fluid solver.
//
// Every program shares the vertex stage in base.vs, which passes the texel
// neighbourhood (vL, vR, vT, vB) to the fragment stages.
package shaders

import (
	"embed"
	"fmt"
	"slices"
)

//go:embed *.vs *.fs
var files embed.FS

// Program names.
const (
	Clear            = "clear"
	Display          = "display"
	Splat            = "splat"
	Advection        = "advection"
	AdvectionManual  = "advectionManualFiltering"
	Divergence       = "divergence"
	Curl             = "curl"
	Vorticity        = "vorticity"
	Pressure         = "pressure"
	GradientSubtract = "gradientSubtract"
)

var fragmentFiles = map[string]string{
	Clear:            "clear.fs",
	Display:          "display.fs",
	Splat:            "splat.fs",
	Advection:        "advection.fs",
	AdvectionManual:  "advection_manual.fs",
	Divergence:       "divergence.fs",
	Curl:             "curl.fs",
	Vorticity:        "vorticity.fs",
	Pressure:         "pressure.fs",
	GradientSubtract: "gradient_subtract.fs",
}

// Names returns every program name, sorted.
func Names() []string {
	names := make([]string, 0, len(fragmentFiles))
	for n := range fragmentFiles {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Vertex returns the shared vertex stage.
func Vertex() string {
	return mustRead("base.vs")
}

// Fragment returns the fragment stage of a named program.
func Fragment(name string) (string, error) {
	file, ok := fragmentFiles[name]
	if !ok {
		return "", fmt.Errorf("shaders: unknown program %q", name)
	}
	return mustRead(file), nil
}

func mustRead(file string) string {
	b, err := files.ReadFile(file)
	if err != nil {
		panic(err) // embedded at build time
	}
	return string(b)
}
