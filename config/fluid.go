package config

import (
	"math"
	"slices"
)

// Fluid holds the simulation parameters owned by the engine.
type Fluid struct {
	TextureDownsample   int     `yaml:"texture_downsample" json:"textureDownsample"`     // Field size = surface size >> this
	DensityDissipation  float64 `yaml:"density_dissipation" json:"densityDissipation"`   // Dye kept per advection
	VelocityDissipation float64 `yaml:"velocity_dissipation" json:"velocityDissipation"` // Velocity kept per advection
	PressureDissipation float64 `yaml:"pressure_dissipation" json:"pressureDissipation"` // Jacobi warm start factor
	PressureIterations  int     `yaml:"pressure_iterations" json:"pressureIterations"`
	Curl                float64 `yaml:"curl" json:"curl"`                  // Vorticity confinement strength
	SplatRadius         float64 `yaml:"splat_radius" json:"splatRadius"`   // Gaussian falloff in uv^2 units
	AdditiveMode        bool    `yaml:"additive_mode" json:"additiveMode"` // Blend dense regions toward white
	AdditiveThreshold   float64 `yaml:"additive_threshold" json:"additiveThreshold"`
	ColorCycleSpeed     float64 `yaml:"color_cycle_speed" json:"colorCycleSpeed"`
	Colors              []RGB   `yaml:"colors" json:"colors"`
}

// Parameter ranges.
const (
	MinTextureDownsample  = 0
	MaxTextureDownsample  = 2
	MinPressureIterations = 1
	MaxPressureIterations = 60
	MaxCurl               = 50
	MinSplatRadius        = 0.0001
	MaxSplatRadius        = 0.9999
	MinAdditiveThreshold  = 0.5
	MaxAdditiveThreshold  = 10
	MinColorCycleSpeed    = 0.01
	MaxColorCycleSpeed    = 5
)

// DefaultFluid returns the built-in simulation parameters.
func DefaultFluid() Fluid {
	return Fluid{
		TextureDownsample:   1,
		DensityDissipation:  0.95,
		VelocityDissipation: 0.98,
		PressureDissipation: 0.8,
		PressureIterations:  25,
		Curl:                30,
		SplatRadius:         0.005,
		AdditiveMode:        false,
		AdditiveThreshold:   1.0,
		ColorCycleSpeed:     0.1,
		Colors: []RGB{
			{5, 0, 15}, // purple
			{0, 13, 5}, // green
			{10, 5, 0}, // orange
			{0, 5, 15}, // blue
			{15, 0, 5}, // red
		},
	}
}

// Clone returns a deep copy.
func (f Fluid) Clone() Fluid {
	f.Colors = slices.Clone(f.Colors)
	return f
}

// Merge returns f with every set field of u applied, clamped into range.
func (f Fluid) Merge(u Update) Fluid {
	out := f.Clone()
	if u.TextureDownsample != nil {
		out.TextureDownsample = *u.TextureDownsample
	}
	if u.DensityDissipation != nil {
		out.DensityDissipation = *u.DensityDissipation
	}
	if u.VelocityDissipation != nil {
		out.VelocityDissipation = *u.VelocityDissipation
	}
	if u.PressureDissipation != nil {
		out.PressureDissipation = *u.PressureDissipation
	}
	if u.PressureIterations != nil {
		out.PressureIterations = *u.PressureIterations
	}
	if u.Curl != nil {
		out.Curl = *u.Curl
	}
	if u.SplatRadius != nil {
		out.SplatRadius = *u.SplatRadius
	}
	if u.AdditiveMode != nil {
		out.AdditiveMode = *u.AdditiveMode
	}
	if u.AdditiveThreshold != nil {
		out.AdditiveThreshold = *u.AdditiveThreshold
	}
	if u.ColorCycleSpeed != nil {
		out.ColorCycleSpeed = *u.ColorCycleSpeed
	}
	if u.Colors != nil {
		out.Colors = slices.Clone(*u.Colors)
	}
	return out.normalized()
}

// normalized clamps numeric fields into their documented ranges.
// A zero additive threshold falls back to 1 before clamping.
func (f Fluid) normalized() Fluid {
	f.TextureDownsample = clampInt(f.TextureDownsample, MinTextureDownsample, MaxTextureDownsample)
	f.DensityDissipation = clamp(f.DensityDissipation, 0, 1)
	f.VelocityDissipation = clamp(f.VelocityDissipation, 0, 1)
	f.PressureDissipation = clamp(f.PressureDissipation, 0, 1)
	f.PressureIterations = clampInt(f.PressureIterations, MinPressureIterations, MaxPressureIterations)
	f.Curl = clamp(f.Curl, 0, MaxCurl)
	f.SplatRadius = clamp(f.SplatRadius, MinSplatRadius, MaxSplatRadius)
	if f.AdditiveThreshold == 0 {
		f.AdditiveThreshold = 1.0
	}
	f.AdditiveThreshold = clamp(f.AdditiveThreshold, MinAdditiveThreshold, MaxAdditiveThreshold)
	if f.ColorCycleSpeed == 0 {
		f.ColorCycleSpeed = 0.1
	}
	f.ColorCycleSpeed = clamp(f.ColorCycleSpeed, MinColorCycleSpeed, MaxColorCycleSpeed)
	return f
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
