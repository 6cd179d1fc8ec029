package colormap

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/station"
)

// MachRamp splits the scale at M = 1 so the sonic line always reads as the
// same color regardless of the array's range.
type MachRamp struct {
	Subsonic   Ramp
	Supersonic Ramp
}

var Mach = MachRamp{
	Subsonic:   Ramp{Name: "subsonic", Stops: stops("#1d4ed8", "#06b6d4", "#f5f5f4")},
	Supersonic: Ramp{Name: "supersonic", Stops: stops("#f5f5f4", "#f59e0b", "#dc2626")},
}

func (m MachRamp) SubsonicEnd() colorful.Color   { return m.Subsonic.Low() }
func (m MachRamp) Sonic() colorful.Color         { return m.Subsonic.High() }
func (m MachRamp) SupersonicEnd() colorful.Color { return m.Supersonic.High() }

// At colors a Mach number. The subsonic half spans [lo,1] and the
// supersonic half spans [1,hi].
func (m MachRamp) At(mach, lo, hi float64) colorful.Color {
	if mach <= 1 {
		return m.Subsonic.At(Normalize(mach, lo, 1))
	}
	return m.Supersonic.At(Normalize(mach, 1, hi))
}

func (m MachRamp) Map(values station.Array) []colorful.Color {
	lo, hi := values.Range()
	out := make([]colorful.Color, len(values))
	for i, v := range values {
		out[i] = m.At(v, lo, hi)
	}
	return out
}
