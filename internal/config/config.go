package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rocketviz/internal/cooling"
	"github.com/san-kum/rocketviz/internal/overlay"
	"github.com/san-kum/rocketviz/internal/tick"
)

const (
	DefaultSegments       = 64
	DefaultPlumeParticles = 4000
	DefaultFlowParticles  = 2000
	DefaultTickRate       = 10.0
	DefaultFrameRate      = 60.0
	DefaultMaterial       = "cucrzr"
	MinSegments           = 3
)

type Config struct {
	Segments     int            `yaml:"segments"`
	Mode         string         `yaml:"mode"`
	Material     string         `yaml:"material"`
	CrossSection int            `yaml:"cross_section_station"`
	Thrust       float64        `yaml:"thrust"`
	TickRate     float64        `yaml:"tick_rate"`
	FrameRate    float64        `yaml:"frame_rate"`
	Seed         uint64         `yaml:"seed"`
	LogLevel     string         `yaml:"log_level"`
	Particles    ParticleConfig `yaml:"particles"`
	Cooling      cooling.Config `yaml:"cooling"`
	Engine       tick.Engine    `yaml:"engine"`
}

type ParticleConfig struct {
	Plume int `yaml:"plume"`
	Flow  int `yaml:"flow"`
}

func DefaultConfig() *Config {
	return &Config{
		Segments:  DefaultSegments,
		Mode:      "none",
		Material:  DefaultMaterial,
		Thrust:    1,
		TickRate:  DefaultTickRate,
		FrameRate: DefaultFrameRate,
		Seed:      1,
		LogLevel:  "info",
		Particles: ParticleConfig{
			Plume: DefaultPlumeParticles,
			Flow:  DefaultFlowParticles,
		},
		Cooling: cooling.DefaultConfig(),
		Engine:  tick.DefaultEngine(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
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

// Validate checks every field and resolves the material so Engine.Material
// is set for synthesis.
func (c *Config) Validate() error {
	if c.Segments < MinSegments {
		return fmt.Errorf("segments %d below %d", c.Segments, MinSegments)
	}
	if _, err := c.OverlayMode(); err != nil {
		return err
	}
	m, err := tick.LookupMaterial(c.Material)
	if err != nil {
		return err
	}
	c.Engine.Material = m
	if c.Thrust < 0 || c.Thrust > 1 {
		return fmt.Errorf("thrust %g outside [0,1]", c.Thrust)
	}
	if c.TickRate <= 0 || c.FrameRate <= 0 {
		return fmt.Errorf("tick and frame rates must be positive")
	}
	if c.Particles.Plume < 0 || c.Particles.Flow < 0 {
		return fmt.Errorf("particle counts must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if err := c.Cooling.Validate(); err != nil {
		return err
	}
	return c.Engine.Validate()
}

func (c *Config) OverlayMode() (overlay.Mode, error) {
	return overlay.ParseMode(c.Mode)
}

// Level parses LogLevel. The empty string means info.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(c.LogLevel)
}

// TickInterval is the nominal time between solver ticks in seconds.
func (c *Config) TickInterval() float64 {
	return 1 / c.TickRate
}

// FrameInterval is the nominal time between rendered frames in seconds.
func (c *Config) FrameInterval() float64 {
	return 1 / c.FrameRate
}

// ApplyParams overlays UI parameter maps on the engine and cooling
// sections.
func (c *Config) ApplyParams(p tick.Params) {
	c.Engine = c.Engine.WithParams(p)
	c.Cooling = cooling.ConfigFromParams(c.Cooling, p)
}
