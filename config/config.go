// Package config provides configuration loading and access for the smoke simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// RGB is a color triple. Channels are emissive intensities and are not clamped to [0,1].
type RGB [3]float64

// Config holds all host and simulation configuration.
type Config struct {
	Window    WindowConfig     `yaml:"window"`
	Fluid     Fluid            `yaml:"fluid"`
	Input     InputConfig      `yaml:"input"`
	Telemetry TelemetryConfig  `yaml:"telemetry"`
	Remote    RemoteConfig     `yaml:"remote"`
	Palettes  map[string][]RGB `yaml:"palettes"`
}

// WindowConfig holds display settings for windowed hosts.
type WindowConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// InputConfig holds pointer tracking parameters.
type InputConfig struct {
	MovementThreshold   float64 `yaml:"movement_threshold"`
	DisableRandomSplats bool    `yaml:"disable_random_splats"`
	RandomBurst         int     `yaml:"random_burst"` // Splats per random burst request
}

// TelemetryConfig holds frame timing parameters.
type TelemetryConfig struct {
	Window int `yaml:"window"` // Frames per stats window
}

// RemoteConfig holds the websocket control server settings.
type RemoteConfig struct {
	Address string `yaml:"address"` // Empty disables the server
	Buffer  int    `yaml:"buffer"`  // Pending command capacity
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Fluid = cfg.Fluid.normalized()
	return cfg, nil
}

func defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return cfg, nil
}

// Palette returns the named palette preset and whether it exists.
func (c *Config) Palette(name string) ([]RGB, bool) {
	p, ok := c.Palettes[name]
	if !ok {
		return nil, false
	}
	return append([]RGB(nil), p...), true
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
