package cooling

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/colormap"
	"github.com/san-kum/rocketviz/internal/render"
	"github.com/san-kum/rocketviz/internal/station"
)

const (
	// LUTSize is the number of axial samples in the coolant lookup table.
	LUTSize = 64

	ribShade     = 0.35
	pulseFloor   = 0.55
	pulseSpeed   = 0.35 // engine lengths per second
	pulsesAlong  = 3.0
	defaultSpeed = 1.0
)

// Animator shades the outer wall: channels glow with the coolant color and
// a brightness pulse travels upstream, ribs stay dark. The lookup table is
// rebuilt once per tick; Shade runs every frame.
type Animator struct {
	cfg   Config
	lut   [LUTSize]colorful.Color
	x0    float64
	x1    float64
	mid   station.Array
	time  float64
	Speed float64

	buf []float32
}

func NewAnimator(cfg Config) *Animator {
	a := &Animator{cfg: cfg, Speed: defaultSpeed}
	for i := range a.lut {
		a.lut[i] = NeutralColor
	}
	return a
}

// Rebuild resamples the coolant temperature onto the lookup table and
// caches the channel radii that drive the rib phase test.
func (a *Animator) Rebuild(cfg Config, bands Bands, temp station.Array) {
	a.cfg = cfg
	a.mid = bands.ChannelMid()
	n := bands.Len()
	if n == 0 {
		return
	}
	a.x0, a.x1 = bands.X[0], bands.X[n-1]

	if !temp.Aligned(n) {
		for i := range a.lut {
			a.lut[i] = NeutralColor
		}
		return
	}
	lo, hi := temp.Range()
	for i := range a.lut {
		x := a.x0 + (a.x1-a.x0)*float64(i)/float64(LUTSize-1)
		t := station.Interp(bands.X, temp, x)
		a.lut[i] = colormap.Coolant.At(colormap.Normalize(t, lo, hi))
	}
}

// LUT returns a copy of the lookup table.
func (a *Animator) LUT() [LUTSize]colorful.Color { return a.lut }

func (a *Animator) Advance(dt float64) {
	period := 1 / (pulseSpeed * pulsesAlong)
	a.time = math.Mod(a.time+dt*a.Speed, period)
	if a.time < 0 {
		a.time += period
	}
}

func (a *Animator) Time() float64 { return a.time }

func (a *Animator) lookup(x float64) colorful.Color {
	u := colormap.Normalize(x, a.x0, a.x1)
	return a.lut[int(math.Round(u*(LUTSize-1)))]
}

// Pulse is the brightness multiplier at normalized axial position u. The
// wave moves toward u = 0 (the injector) as time advances.
func (a *Animator) Pulse(u float64) float64 {
	phase := 2 * math.Pi * pulsesAlong * (u + pulseSpeed*a.time)
	return pulseFloor + (1-pulseFloor)*(0.5+0.5*math.Cos(phase))
}

// IsChannel reports whether angle theta at radius r falls inside a channel
// rather than on a rib.
func (a *Animator) IsChannel(theta, r float64) bool {
	pitch := a.cfg.Pitch()
	half := a.cfg.ChannelSpan(r) / 2
	phase := math.Mod(theta+half, pitch)
	if phase < 0 {
		phase += pitch
	}
	return phase < 2*half
}

// Shade writes per-vertex colors for a revolved outer wall of
// len(xs) stations by segments+1 columns into g.
func (a *Animator) Shade(g *render.Geometry, xs station.Array, segments int) error {
	n := len(xs)
	cols := segments + 1
	if g.VertexCount() != n*cols || len(a.mid) != n {
		return render.ErrAttributeSize
	}
	if cap(a.buf) < 3*n*cols {
		a.buf = make([]float32, 3*n*cols)
	}
	a.buf = a.buf[:3*n*cols]

	for i, x := range xs {
		base := a.lookup(x)
		pulse := a.Pulse(colormap.Normalize(x, a.x0, a.x1))
		chR, chG, chB := colormap.Components(scale(base, pulse))
		ribR, ribG, ribB := colormap.Components(scale(base, ribShade))
		for j := 0; j < cols; j++ {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			k := 3 * (i*cols + j)
			if a.IsChannel(theta, a.mid[i]) {
				a.buf[k], a.buf[k+1], a.buf[k+2] = chR, chG, chB
			} else {
				a.buf[k], a.buf[k+1], a.buf[k+2] = ribR, ribG, ribB
			}
		}
	}
	return g.SetColors(a.buf)
}

func scale(c colorful.Color, f float64) colorful.Color {
	return colorful.Color{R: c.R * f, G: c.G * f, B: c.B * f}
}
