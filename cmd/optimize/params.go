package main

import (
	"github.com/pthm-cable/smoke/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "density_dissipation", Path: "fluid.density_dissipation", Min: 0.9, Max: 1.0, Default: 0.95},
			{Name: "velocity_dissipation", Path: "fluid.velocity_dissipation", Min: 0.9, Max: 1.0, Default: 0.98},
			{Name: "pressure_dissipation", Path: "fluid.pressure_dissipation", Min: 0.0, Max: 1.0, Default: 0.8},
			{Name: "curl", Path: "fluid.curl", Min: 0, Max: config.MaxCurl, Default: 30},
			{Name: "splat_radius", Path: "fluid.splat_radius", Min: 0.001, Max: 0.02, Default: 0.005},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = max(spec.Min, min(spec.Max, v[i]))
	}
	return clamped
}

// Update returns the fluid patch for a parameter vector. Order matches Specs.
func (pv *ParamVector) Update(values []float64) config.Update {
	c := pv.Clamp(values)
	return config.Update{
		DensityDissipation:  config.Ptr(c[0]),
		VelocityDissipation: config.Ptr(c[1]),
		PressureDissipation: config.Ptr(c[2]),
		Curl:                config.Ptr(c[3]),
		SplatRadius:         config.Ptr(c[4]),
	}
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	cfg.Fluid = cfg.Fluid.Merge(pv.Update(values))
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	f := cfg.Fluid
	return []float64{
		f.DensityDissipation,
		f.VelocityDissipation,
		f.PressureDissipation,
		f.Curl,
		f.SplatRadius,
	}
}
