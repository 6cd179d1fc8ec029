package particles

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/colormap"
	"github.com/san-kum/rocketviz/internal/geometry"
	"github.com/san-kum/rocketviz/internal/render"
	"github.com/san-kum/rocketviz/internal/station"
)

const (
	DefaultFlowParticles = 2000
	LUTWidth             = 256

	flowTickRate  = 1.5  // lifetimes per second at peak velocity
	flowFrameRate = 0.25 // fixed lifetimes per second between ticks
	flowFill      = 0.92 // particles stay inside this fraction of the wall
)

// FlowStations are the per-station arrays the internal flow is drawn from.
type FlowStations struct {
	X           station.Array
	RInner      station.Array
	Velocity    station.Array
	Temperature station.Array
}

func (s FlowStations) Validate() error {
	n := len(s.X)
	if n < 2 {
		return station.ErrTooFewStations
	}
	fields := []struct {
		name string
		arr  station.Array
	}{{"r_inner", s.RInner}, {"velocity", s.Velocity}, {"temperature", s.Temperature}}
	for _, f := range fields {
		if len(f.arr) != n {
			return fmt.Errorf("%s: %w", f.name, station.ErrLengthMismatch)
		}
		if !f.arr.IsValid() {
			return fmt.Errorf("%s: %w", f.name, station.ErrNonFinite)
		}
	}
	if !s.X.IsValid() {
		return fmt.Errorf("x: %w", station.ErrNonFinite)
	}
	return nil
}

// LUT is the station data resampled at LUTWidth evenly spaced axial
// positions.
type LUT struct {
	X0, X1      float64
	Radius      [LUTWidth]float64
	Velocity    [LUTWidth]float64
	Temperature [LUTWidth]float64
	MaxVelocity float64
	TempLo      float64
	TempHi      float64
}

// Resample builds the lookup table from validated station arrays.
func Resample(s FlowStations) LUT {
	var l LUT
	l.X0, l.X1 = s.X[0], s.X[len(s.X)-1]
	for i := 0; i < LUTWidth; i++ {
		x := l.X0 + (l.X1-l.X0)*float64(i)/(LUTWidth-1)
		l.Radius[i] = station.Interp(s.X, s.RInner, x)
		l.Velocity[i] = station.Interp(s.X, s.Velocity, x)
		l.Temperature[i] = station.Interp(s.X, s.Temperature, x)
		l.MaxVelocity = max(l.MaxVelocity, l.Velocity[i])
	}
	l.TempLo, l.TempHi = station.Array(l.Temperature[:]).Range()
	return l
}

// index maps a lifetime to the nearest table column.
func (l *LUT) index(u float64) int {
	i := int(u*(LUTWidth-1) + 0.5)
	return min(max(i, 0), LUTWidth-1)
}

// Texels packs the table as RGBA rows: radius, velocity, temperature, 1.
func (l *LUT) Texels() []float32 {
	out := make([]float32, 4*LUTWidth)
	for i := 0; i < LUTWidth; i++ {
		out[4*i] = float32(l.Radius[i])
		out[4*i+1] = float32(l.Velocity[i])
		out[4*i+2] = float32(l.Temperature[i])
		out[4*i+3] = 1
	}
	return out
}

// Flow is the internal gas-flow particle system. Particle lifetime is the
// normalized axial position from the first to the last station.
type Flow struct {
	particles []Particle
	lut       LUT
	ready     bool

	texture  *render.Texture
	geometry *render.Geometry
	material *render.Material
}

func NewFlow(dev *render.Device, n int, s uint64) *Flow {
	if n <= 0 {
		n = DefaultFlowParticles
	}
	tex := dev.NewDataTexture("flow-lut", LUTWidth, 1)
	mat := dev.NewVertexColorMaterial("flow")
	mat.Map = tex
	return &Flow{
		particles: seed(n, s),
		texture:   tex,
		geometry:  dev.NewGeometry("flow", geometry.BuildPoints(n)),
		material:  mat,
	}
}

func (f *Flow) Particles() []Particle    { return f.particles }
func (f *Flow) LUT() *LUT                { return &f.lut }
func (f *Flow) Texture() *render.Texture { return f.texture }
func (f *Flow) Ready() bool              { return f.ready }

func (f *Flow) Solid() *render.Solid {
	return render.NewSolid("flow", f.geometry, f.material)
}

// SetStations resamples the lookup table and uploads it. It runs once per
// data tick.
func (f *Flow) SetStations(s FlowStations) error {
	if err := s.Validate(); err != nil {
		return err
	}
	f.lut = Resample(s)
	if err := f.texture.Upload(f.lut.Texels()); err != nil {
		return err
	}
	f.ready = true
	return nil
}

// Tick advances each particle by the velocity at its own axial position,
// so particles speed up through the throat.
func (f *Flow) Tick(dt float64) {
	if !f.ready || f.lut.MaxVelocity <= 0 {
		return
	}
	advance(f.particles, func(q *Particle) float64 {
		v := f.lut.Velocity[f.lut.index(q.Life)]
		return flowTickRate * q.Speed * v / f.lut.MaxVelocity
	}, dt)
}

// Advance is the per-frame step between ticks: a fixed rate with no table
// lookup.
func (f *Flow) Advance(dt float64) {
	advance(f.particles, func(q *Particle) float64 { return flowFrameRate * q.Speed }, dt)
}

func (f *Flow) Position(q Particle) (x, y, z float64) {
	i := f.lut.index(q.Life)
	x = f.lut.X0 + q.Life*(f.lut.X1-f.lut.X0)
	r := flowFill * q.Radial * f.lut.Radius[i]
	s, c := azimuths.sincos(q.Azimuth)
	return x, r * c, r * s
}

func (f *Flow) Color(q Particle) colorful.Color {
	t := f.lut.Temperature[f.lut.index(q.Life)]
	return colormap.Thermal.At(colormap.Normalize(t, f.lut.TempLo, f.lut.TempHi))
}

// Sync writes positions and colors into the point cloud and uploads it.
func (f *Flow) Sync() error {
	pos, col := f.geometry.Positions, f.geometry.Colors
	if pos == nil {
		return render.ErrDisposed
	}
	if !f.ready {
		return nil
	}
	for i, q := range f.particles {
		x, y, z := f.Position(q)
		pos[3*i], pos[3*i+1], pos[3*i+2] = float32(x), float32(y), float32(z)
		col[3*i], col[3*i+1], col[3*i+2] = colormap.Components(f.Color(q))
	}
	return f.geometry.Update()
}

func (f *Flow) Dispose() error {
	return errors.Join(f.geometry.Dispose(), f.material.Dispose(), f.texture.Dispose())
}
