package particles

import "math"

// trigTable is a sin/cos lookup with linear interpolation between entries.
// Particle azimuths are fixed, so the table only replaces per-frame calls.
type trigTable struct {
	sin []float64
	cos []float64
	n   int
}

// 4096 entries is about 0.0015 rad resolution.
var azimuths = newTrigTable(4096)

func newTrigTable(n int) *trigTable {
	t := &trigTable{
		sin: make([]float64, n),
		cos: make([]float64, n),
		n:   n,
	}
	for i := 0; i < n; i++ {
		t.sin[i], t.cos[i] = math.Sincos(float64(i) * 2 * math.Pi / float64(n))
	}
	return t
}

// sincos takes the angle as a fraction of a full turn.
func (t *trigTable) sincos(turns float64) (sin, cos float64) {
	turns -= math.Floor(turns)
	idx := turns * float64(t.n)
	i := int(idx)
	frac := idx - float64(i)

	i0 := i % t.n
	i1 := (i + 1) % t.n
	sin = t.sin[i0]*(1-frac) + t.sin[i1]*frac
	cos = t.cos[i0]*(1-frac) + t.cos[i1]*frac
	return
}
