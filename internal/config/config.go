package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Reference chamber geometry and gas parameters, in cm / cgs-flavoured
// units matching the reference model.
const (
	DefaultSpacing       = 1.0
	DefaultChamberWidth  = 50.0
	DefaultChamberHeight = 30.0
	DefaultDiffusivity   = 0.1
	DefaultField         = 1e5
	DefaultMobility      = 50.0
	DefaultDt            = 1e-6
	DefaultSteps         = 200
	DefaultDampingMargin = 2.0
	DefaultIonization    = 94.0
)

type Config struct {
	Spacing       float64     `yaml:"spacing"`
	ChamberWidth  float64     `yaml:"chamber_width"`
	ChamberHeight float64     `yaml:"chamber_height"`
	Diffusivity   float64     `yaml:"diffusivity"`
	Field         float64     `yaml:"field"`
	Mobility      float64     `yaml:"mobility"`
	Dt            float64     `yaml:"dt"`
	Steps         int         `yaml:"steps"`
	DampingMargin float64     `yaml:"damping_margin"`
	Ionization    float64     `yaml:"ionization"`
	Seed          int64       `yaml:"seed"`
	MaxAttempts   int         `yaml:"max_attempts"`
	ZenithBound   float64     `yaml:"zenith_bound"`
	Plane         PlaneConfig `yaml:"plane"`
}

// PlaneConfig is the muon generation plane above the chamber.
type PlaneConfig struct {
	Width  float64 `yaml:"width"`
	Length float64 `yaml:"length"`
	Height float64 `yaml:"height"`
}

func DefaultConfig() *Config {
	return &Config{
		Spacing:       DefaultSpacing,
		ChamberWidth:  DefaultChamberWidth,
		ChamberHeight: DefaultChamberHeight,
		Diffusivity:   DefaultDiffusivity,
		Field:         DefaultField,
		Mobility:      DefaultMobility,
		Dt:            DefaultDt,
		Steps:         DefaultSteps,
		DampingMargin: DefaultDampingMargin,
		Ionization:    DefaultIonization,
		Plane: PlaneConfig{
			Width:  100,
			Length: 80,
			Height: 60,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate catches configurations the core would reject anyway, with
// friendlier messages for the CLI layer.
func (c *Config) Validate() error {
	switch {
	case c.Spacing <= 0:
		return fmt.Errorf("config: spacing must be positive, got %v", c.Spacing)
	case c.ChamberWidth <= 0 || c.ChamberHeight <= 0:
		return fmt.Errorf("config: chamber %vx%v must have positive extents", c.ChamberWidth, c.ChamberHeight)
	case c.Diffusivity <= 0:
		return fmt.Errorf("config: diffusivity must be positive, got %v", c.Diffusivity)
	case c.Mobility <= 0:
		return fmt.Errorf("config: mobility must be positive, got %v", c.Mobility)
	case c.Dt <= 0:
		return fmt.Errorf("config: dt must be positive, got %v", c.Dt)
	case c.Steps < 0:
		return fmt.Errorf("config: steps must be non-negative, got %d", c.Steps)
	case c.DampingMargin < 0:
		return fmt.Errorf("config: damping margin must be non-negative, got %v", c.DampingMargin)
	case c.ZenithBound < 0:
		return fmt.Errorf("config: zenith bound must be non-negative, got %v", c.ZenithBound)
	case c.Plane.Height < c.ChamberHeight:
		return fmt.Errorf("config: plane height %v below chamber top %v", c.Plane.Height, c.ChamberHeight)
	}
	return nil
}
