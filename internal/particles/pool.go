package particles

import (
	"math"
	"math/rand/v2"
)

// Particle is one pool slot. Azimuth, Radial and Speed are fixed at
// construction; only Life changes.
type Particle struct {
	Azimuth float64 // fraction of a turn
	Radial  float64 // fraction of the local radius
	Speed   float64 // lifetime rate multiplier
	Life    float64
}

// wrap folds l into [0,1). Non-finite input restarts the particle.
func wrap(l float64) float64 {
	if math.IsNaN(l) || math.IsInf(l, 0) {
		return 0
	}
	l -= math.Floor(l)
	if l < 0 || l >= 1 {
		return 0
	}
	return l
}

// seed fills n particles from a deterministic stream. Radial fractions are
// drawn with sqrt so the cross-section is uniformly covered.
func seed(n int, s uint64) []Particle {
	rng := rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
	out := make([]Particle, n)
	for i := range out {
		out[i] = Particle{
			Azimuth: rng.Float64(),
			Radial:  math.Sqrt(rng.Float64()),
			Speed:   0.8 + 0.4*rng.Float64(),
			Life:    rng.Float64(),
		}
	}
	return out
}

func advance(ps []Particle, rate func(p *Particle) float64, dt float64) {
	for i := range ps {
		p := &ps[i]
		p.Life = wrap(p.Life + dt*rate(p))
	}
}
