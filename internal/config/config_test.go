package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Spacing != 1.0 {
		t.Errorf("expected spacing 1.0, got %v", cfg.Spacing)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("fine")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Spacing != 0.5 {
		t.Errorf("expected spacing 0.5, got %v", cfg.Spacing)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != 3 {
		t.Errorf("expected 3 presets, got %d", len(presets))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero spacing", func(c *Config) { c.Spacing = 0 }},
		{"negative diffusivity", func(c *Config) { c.Diffusivity = -1 }},
		{"zero mobility", func(c *Config) { c.Mobility = 0 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative steps", func(c *Config) { c.Steps = -1 }},
		{"negative margin", func(c *Config) { c.DampingMargin = -1 }},
		{"low plane", func(c *Config) { c.Plane.Height = 10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if cfg.Validate() == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chamber.yaml")
	cfg := DefaultConfig()
	cfg.Spacing = 0.5
	cfg.Seed = 99

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Spacing != 0.5 || loaded.Seed != 99 {
		t.Errorf("round trip lost values: spacing %v seed %d", loaded.Spacing, loaded.Seed)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
