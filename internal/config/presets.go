package config

// Presets are the grid resolutions the reference chamber exposes; finer
// spacing means a larger stencil system per step.
var Presets = map[string]*Config{
	"coarse": {
		Spacing: 1.0, ChamberWidth: 50, ChamberHeight: 30,
		Diffusivity: 0.1, Field: 1e5, Mobility: 50, Dt: 1e-6,
		Steps: 200, DampingMargin: 2, Ionization: 94,
		Plane: PlaneConfig{Width: 100, Length: 80, Height: 60},
	},
	"fine": {
		Spacing: 0.5, ChamberWidth: 50, ChamberHeight: 30,
		Diffusivity: 0.1, Field: 1e5, Mobility: 50, Dt: 1e-6,
		Steps: 400, DampingMargin: 2, Ionization: 94,
		Plane: PlaneConfig{Width: 100, Length: 80, Height: 60},
	},
	"reference": {
		Spacing: 0.1, ChamberWidth: 50, ChamberHeight: 30,
		Diffusivity: 0.1, Field: 1e5, Mobility: 50, Dt: 1e-6,
		Steps: 1000, DampingMargin: 2, Ionization: 94,
		Plane: PlaneConfig{Width: 100, Length: 80, Height: 60},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
