// Package colormap maps station scalars to colors for overlays, particles
// and legends.
package colormap

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/station"
)

// Epsilon replaces (max-min) when normalizing a constant array.
const Epsilon = 1e-9

// Stop pins a color at a normalized position in [0,1].
type Stop struct {
	At    float64
	Color colorful.Color
}

// Ramp is a piecewise-linear color scale over [0,1].
type Ramp struct {
	Name  string
	Stops []Stop
}

func hex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func stops(hexes ...string) []Stop {
	out := make([]Stop, len(hexes))
	for i, h := range hexes {
		out[i] = Stop{At: float64(i) / float64(len(hexes)-1), Color: hex(h)}
	}
	return out
}

var (
	Thermal = Ramp{Name: "thermal", Stops: stops("#0d0887", "#7e03a8", "#cc4778", "#f89540", "#f0f921")}
	Stress  = Ramp{Name: "stress", Stops: stops("#1a9850", "#a6d96a", "#fee08b", "#f46d43", "#a50026")}
	Coolant = Ramp{Name: "coolant", Stops: stops("#08306b", "#2171b5", "#6baed6", "#c6dbef", "#f7fbff")}
	Plume   = Ramp{Name: "plume", Stops: stops("#3b0a0a", "#b22222", "#ff7f00", "#ffd27f", "#fff8e7")}
)

// At returns the color at t, clamped to [0,1]. Endpoints return the exact
// stop colors.
func (r Ramp) At(t float64) colorful.Color {
	n := len(r.Stops)
	if n == 0 {
		return colorful.Color{}
	}
	if math.IsNaN(t) || t <= r.Stops[0].At {
		return r.Stops[0].Color
	}
	if t >= r.Stops[n-1].At {
		return r.Stops[n-1].Color
	}
	for i := 1; i < n; i++ {
		a, b := r.Stops[i-1], r.Stops[i]
		if t > b.At {
			continue
		}
		span := b.At - a.At
		if span <= 0 {
			return b.Color
		}
		return a.Color.BlendRgb(b.Color, (t-a.At)/span)
	}
	return r.Stops[n-1].Color
}

// Low and High are the ramp's endpoint colors.
func (r Ramp) Low() colorful.Color  { return r.At(0) }
func (r Ramp) High() colorful.Color { return r.At(1) }

// Normalize maps v into [0,1] over [lo,hi], falling back to Epsilon when
// the range is degenerate.
func Normalize(v, lo, hi float64) float64 {
	span := hi - lo
	if span < Epsilon {
		span = Epsilon
	}
	t := (v - lo) / span
	return math.Max(0, math.Min(1, t))
}

// Map colors every sample against the array's own range.
func (r Ramp) Map(values station.Array) []colorful.Color {
	lo, hi := values.Range()
	return r.MapRange(values, lo, hi)
}

// MapRange colors every sample against a fixed range.
func (r Ramp) MapRange(values station.Array, lo, hi float64) []colorful.Color {
	out := make([]colorful.Color, len(values))
	for i, v := range values {
		out[i] = r.At(Normalize(v, lo, hi))
	}
	return out
}

// Components returns the color as float32 RGB clamped to [0,1], the layout
// vertex color buffers use.
func Components(c colorful.Color) (r, g, b float32) {
	c = c.Clamped()
	return float32(c.R), float32(c.G), float32(c.B)
}

// ParseOr parses a hex color, returning def on failure.
func ParseOr(s string, def colorful.Color) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return def
	}
	return c
}
