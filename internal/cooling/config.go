// Package cooling renders the regenerative cooling jacket: a clipped
// half-section of the wall, a cross-section ring at one station, and the
// animated channel shading of the outer wall.
package cooling

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rocketviz/internal/station"
	"github.com/san-kum/rocketviz/internal/tick"
)

var ErrConfig = errors.New("cooling: invalid channel configuration")

const (
	// HotWallFraction is the share of the wall between the hot gas and the
	// channel floor.
	HotWallFraction = 0.30
	// MinCloseout is the thinnest closeout kept above the channels, in meters.
	MinCloseout = 0.0003
)

// Config is the channel layout shared by every cooling view. HeightCP, when
// non-zero, gives channel heights at the first, middle and last station.
type Config struct {
	Channels int        `yaml:"channels"`
	Width    float64    `yaml:"width"`
	Height   float64    `yaml:"height"`
	RibWidth float64    `yaml:"rib_width"`
	HeightCP [3]float64 `yaml:"height_cp,flow"`
}

func DefaultConfig() Config {
	return Config{
		Channels: 40,
		Width:    0.0015,
		Height:   0.002,
		RibWidth: 0.001,
	}
}

// ConfigFromParams overlays the UI's cooling keys on cfg.
func ConfigFromParams(cfg Config, p tick.Params) Config {
	cfg.Channels = p.Int("n_channels", cfg.Channels)
	cfg.Width = p.Get("channel_width", cfg.Width)
	cfg.Height = p.Get("channel_height", cfg.Height)
	cfg.RibWidth = p.Get("rib_width", cfg.RibWidth)
	for i := range cfg.HeightCP {
		cfg.HeightCP[i] = p.Get(fmt.Sprintf("ch_height_cp%d", i), cfg.HeightCP[i])
	}
	return cfg
}

func (c Config) Validate() error {
	switch {
	case c.Channels < 2:
		return fmt.Errorf("%w: need at least 2 channels, got %d", ErrConfig, c.Channels)
	case !(c.Width > 0) || math.IsInf(c.Width, 0):
		return fmt.Errorf("%w: channel width %g", ErrConfig, c.Width)
	case !(c.Height > 0) || math.IsInf(c.Height, 0):
		return fmt.Errorf("%w: channel height %g", ErrConfig, c.Height)
	case !(c.RibWidth > 0) || math.IsInf(c.RibWidth, 0):
		return fmt.Errorf("%w: rib width %g", ErrConfig, c.RibWidth)
	}
	for i, h := range c.HeightCP {
		if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return fmt.Errorf("%w: height control point %d is %g", ErrConfig, i, h)
		}
	}
	return nil
}

func (c Config) hasControlPoints() bool {
	return c.HeightCP[0] > 0 && c.HeightCP[1] > 0 && c.HeightCP[2] > 0
}

// Heights returns the channel height at each of n stations, interpolating
// the control points over the normalized station index.
func (c Config) Heights(n int) station.Array {
	h := make(station.Array, n)
	if !c.hasControlPoints() || n < 2 {
		for i := range h {
			h[i] = c.Height
		}
		return h
	}
	cpX := station.Array{0, 0.5, 1}
	cpH := station.Array{c.HeightCP[0], c.HeightCP[1], c.HeightCP[2]}
	for i := range h {
		h[i] = station.Interp(cpX, cpH, float64(i)/float64(n-1))
	}
	return h
}

// Pitch is the angular period of one channel plus one rib.
func (c Config) Pitch() float64 {
	return 2 * math.Pi / float64(c.Channels)
}

// RibSpan is the rib's angular width at radius r, capped at half the pitch.
func (c Config) RibSpan(r float64) float64 {
	if r <= 0 {
		return c.Pitch() / 2
	}
	return math.Min(c.RibWidth/r, c.Pitch()/2)
}

// ChannelSpan is the channel's angular width at radius r, never wider than
// the pitch less one rib.
func (c Config) ChannelSpan(r float64) float64 {
	limit := c.Pitch() - c.RibSpan(r)
	if r <= 0 {
		return limit
	}
	return math.Min(c.Width/r, limit)
}

// OpenFraction is the share of the circumference occupied by channels.
func (c Config) OpenFraction(r float64) float64 {
	return c.ChannelSpan(r) / c.Pitch()
}
