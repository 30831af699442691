// Package ui draws the raylib control panel and HUD for the smoke simulation.
// Tunable parameters are described by Param metadata rather than hard-coded
// widgets, so new config fields only need a descriptor.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/smoke/config"
)

// FieldRange defines the value range for sliders.
type FieldRange struct {
	Min float32
	Max float32
}

// Param describes one tunable fluid parameter.
type Param struct {
	ID      string // config key
	Label   string
	Format  string // Printf format for the value
	Range   FieldRange
	Integer bool // round slider values

	Get func(config.Fluid) float64
	Set func(float64) config.Update
}

// Params returns the slider descriptors of the control panel, in display order.
func Params() []Param {
	return []Param{
		{
			ID: "texture_downsample", Label: "Downsample", Format: "%.0f", Integer: true,
			Range: FieldRange{config.MinTextureDownsample, config.MaxTextureDownsample},
			Get:   func(f config.Fluid) float64 { return float64(f.TextureDownsample) },
			Set:   func(v float64) config.Update { return config.Update{TextureDownsample: config.Ptr(int(v))} },
		},
		{
			ID: "density_dissipation", Label: "Density diss.", Format: "%.3f",
			Range: FieldRange{0.9, 1},
			Get:   func(f config.Fluid) float64 { return f.DensityDissipation },
			Set:   func(v float64) config.Update { return config.Update{DensityDissipation: config.Ptr(v)} },
		},
		{
			ID: "velocity_dissipation", Label: "Velocity diss.", Format: "%.3f",
			Range: FieldRange{0.9, 1},
			Get:   func(f config.Fluid) float64 { return f.VelocityDissipation },
			Set:   func(v float64) config.Update { return config.Update{VelocityDissipation: config.Ptr(v)} },
		},
		{
			ID: "pressure_dissipation", Label: "Pressure diss.", Format: "%.2f",
			Range: FieldRange{0, 1},
			Get:   func(f config.Fluid) float64 { return f.PressureDissipation },
			Set:   func(v float64) config.Update { return config.Update{PressureDissipation: config.Ptr(v)} },
		},
		{
			ID: "pressure_iterations", Label: "Iterations", Format: "%.0f", Integer: true,
			Range: FieldRange{config.MinPressureIterations, config.MaxPressureIterations},
			Get:   func(f config.Fluid) float64 { return float64(f.PressureIterations) },
			Set:   func(v float64) config.Update { return config.Update{PressureIterations: config.Ptr(int(v))} },
		},
		{
			ID: "curl", Label: "Vorticity", Format: "%.0f", Integer: true,
			Range: FieldRange{0, config.MaxCurl},
			Get:   func(f config.Fluid) float64 { return f.Curl },
			Set:   func(v float64) config.Update { return config.Update{Curl: config.Ptr(v)} },
		},
		{
			ID: "splat_radius", Label: "Splat radius", Format: "%.4f",
			Range: FieldRange{config.MinSplatRadius, 0.05},
			Get:   func(f config.Fluid) float64 { return f.SplatRadius },
			Set:   func(v float64) config.Update { return config.Update{SplatRadius: config.Ptr(v)} },
		},
		{
			ID: "additive_threshold", Label: "Additive at", Format: "%.2f",
			Range: FieldRange{config.MinAdditiveThreshold, config.MaxAdditiveThreshold},
			Get:   func(f config.Fluid) float64 { return f.AdditiveThreshold },
			Set:   func(v float64) config.Update { return config.Update{AdditiveThreshold: config.Ptr(v)} },
		},
		{
			ID: "color_cycle_speed", Label: "Color cycle", Format: "%.2f",
			Range: FieldRange{config.MinColorCycleSpeed, config.MaxColorCycleSpeed},
			Get:   func(f config.Fluid) float64 { return f.ColorCycleSpeed },
			Set:   func(v float64) config.Update { return config.Update{ColorCycleSpeed: config.Ptr(v)} },
		},
	}
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	WarnColor      rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	SliderHeight   int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		WarnColor:      rl.Color{R: 230, G: 160, B: 80, A: 255},
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     96,
		SliderHeight:   14,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
