package config

// Update is a partial Fluid configuration. Nil fields keep their current value.
// It decodes from YAML patch files and from JSON remote commands.
type Update struct {
	TextureDownsample   *int     `yaml:"texture_downsample,omitempty" json:"textureDownsample,omitempty"`
	DensityDissipation  *float64 `yaml:"density_dissipation,omitempty" json:"densityDissipation,omitempty"`
	VelocityDissipation *float64 `yaml:"velocity_dissipation,omitempty" json:"velocityDissipation,omitempty"`
	PressureDissipation *float64 `yaml:"pressure_dissipation,omitempty" json:"pressureDissipation,omitempty"`
	PressureIterations  *int     `yaml:"pressure_iterations,omitempty" json:"pressureIterations,omitempty"`
	Curl                *float64 `yaml:"curl,omitempty" json:"curl,omitempty"`
	SplatRadius         *float64 `yaml:"splat_radius,omitempty" json:"splatRadius,omitempty"`
	AdditiveMode        *bool    `yaml:"additive_mode,omitempty" json:"additiveMode,omitempty"`
	AdditiveThreshold   *float64 `yaml:"additive_threshold,omitempty" json:"additiveThreshold,omitempty"`
	ColorCycleSpeed     *float64 `yaml:"color_cycle_speed,omitempty" json:"colorCycleSpeed,omitempty"`
	Colors              *[]RGB   `yaml:"colors,omitempty" json:"colors,omitempty"`
}

// Ptr returns a pointer to v, for building Update literals.
func Ptr[T any](v T) *T {
	return &v
}

// Full returns an Update that sets every field of f.
func Full(f Fluid) Update {
	colors := f.Clone().Colors
	return Update{
		TextureDownsample:   Ptr(f.TextureDownsample),
		DensityDissipation:  Ptr(f.DensityDissipation),
		VelocityDissipation: Ptr(f.VelocityDissipation),
		PressureDissipation: Ptr(f.PressureDissipation),
		PressureIterations:  Ptr(f.PressureIterations),
		Curl:                Ptr(f.Curl),
		SplatRadius:         Ptr(f.SplatRadius),
		AdditiveMode:        Ptr(f.AdditiveMode),
		AdditiveThreshold:   Ptr(f.AdditiveThreshold),
		ColorCycleSpeed:     Ptr(f.ColorCycleSpeed),
		Colors:              &colors,
	}
}

// Empty reports whether u sets nothing.
func (u Update) Empty() bool {
	return u == Update{}
}
