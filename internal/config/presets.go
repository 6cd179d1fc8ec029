package config

import "sort"

// Presets are edits applied on top of DefaultConfig, grouped by the part
// of the configuration they change.
var Presets = map[string]map[string]func(*Config){
	"engine": {
		"sea-level": func(c *Config) {
			c.Engine.ExitRadius = 0.035
			c.Engine.NozzleLength = 0.08
		},
		"vacuum": func(c *Config) {
			c.Engine.ExitRadius = 0.09
			c.Engine.NozzleLength = 0.22
			c.Engine.AmbientPressure = 0
			c.Engine.Stations = 120
		},
		"overexpanded": func(c *Config) {
			c.Engine.ExitRadius = 0.07
			c.Engine.NozzleLength = 0.16
			c.Engine.ChamberPressure = 1.5e6
		},
		"thruster": func(c *Config) {
			c.Engine.ChamberRadius = 0.015
			c.Engine.ChamberLength = 0.03
			c.Engine.ConvergentLength = 0.015
			c.Engine.ThroatRadius = 0.005
			c.Engine.ExitRadius = 0.02
			c.Engine.NozzleLength = 0.04
			c.Engine.WallThickness = 0.002
			c.Engine.ChamberPressure = 1e6
			c.Engine.Injector.Rings = 2
			c.Engine.Injector.ElementsBase = 4
			c.Engine.Injector.FuelDiameter = 0.0005
			c.Engine.Injector.OxDiameter = 0.0006
			c.Cooling.Channels = 16
			c.Cooling.Width = 0.0008
			c.Cooling.RibWidth = 0.0006
			c.Cooling.Height = 0.001
		},
	},
	"cooling": {
		"dense": func(c *Config) {
			c.Cooling.Channels = 120
			c.Cooling.Width = 0.0008
			c.Cooling.RibWidth = 0.0006
		},
		"sparse": func(c *Config) {
			c.Cooling.Channels = 12
			c.Cooling.Width = 0.004
			c.Cooling.RibWidth = 0.003
		},
		"tapered": func(c *Config) {
			c.Cooling.HeightCP = [3]float64{0.003, 0.0012, 0.0025}
		},
	},
	"view": {
		"thermal":  func(c *Config) { c.Mode = "thermal" },
		"stress":   func(c *Config) { c.Mode = "stress" },
		"flow":     func(c *Config) { c.Mode = "flow" },
		"throttle": func(c *Config) { c.Thrust = 0.4 },
		"cooling": func(c *Config) {
			c.Mode = "cooling"
			c.CrossSection = 40
		},
		"lowpoly": func(c *Config) {
			c.Segments = 16
			c.Particles = ParticleConfig{Plume: 800, Flow: 400}
		},
	},
}

// GetPreset returns a fresh default configuration with the named preset
// applied, or nil.
func GetPreset(group, preset string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	edit, ok := groupPresets[preset]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	edit(cfg)
	return cfg
}

// Apply runs the named preset on an existing configuration.
func (c *Config) Apply(group, preset string) bool {
	edit, ok := Presets[group][preset]
	if ok {
		edit(c)
	}
	return ok
}

func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListGroups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}
