package particles

import (
	"errors"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/colormap"
	"github.com/san-kum/rocketviz/internal/geometry"
	"github.com/san-kum/rocketviz/internal/render"
)

const (
	DefaultPlumeParticles = 4000

	// MaxHalfAngle bounds the cone so a grossly underexpanded plume stays
	// a cone. Angles above halfAngleKnee approach it smoothly.
	MaxHalfAngle  = 1.45
	halfAngleKnee = 1.0

	plumeRate      = 1.2  // lifetimes per second at full thrust
	pressureWeight = 0.6  // half-angle factor spans (1-w, 1+w)
	shockAmplitude = 0.35 // brightness modulation at the exit
	machGrowth     = 1.5  // local Mach at the plume tip is Me*(1+machGrowth)
	vacuumRatio    = 1e9  // pressure ratio used against vacuum
)

var ErrPlumeInputs = errors.New("particles: invalid plume inputs")

// PlumeInputs is the nozzle exit state the plume is drawn from.
type PlumeInputs struct {
	ExitMach        float64
	ExitPressure    float64 // Pa
	AmbientPressure float64 // Pa
	ExitTemp        float64 // K
	Gamma           float64
	ExitX           float64
	ExitRadius      float64
	Thrust          float64 // commanded fraction in [0,1]
}

func (in PlumeInputs) Validate() error {
	for _, v := range []float64{in.ExitMach, in.ExitPressure, in.AmbientPressure, in.ExitTemp, in.Gamma, in.ExitX, in.ExitRadius, in.Thrust} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrPlumeInputs
		}
	}
	if in.ExitRadius <= 0 || in.ExitPressure < 0 || in.AmbientPressure < 0 {
		return ErrPlumeInputs
	}
	return nil
}

// PlumeShape holds the quantities derived from PlumeInputs.
type PlumeShape struct {
	PressureRatio float64 // exit over ambient
	HalfAngle     float64 // rad
	ShockSpacing  float64 // m, zero when the exit is not supersonic
	Length        float64 // m
	StagnationT   float64 // K
	TipTemp       float64 // K
}

// PressureFactor scales the Mach-angle cone by exit/ambient pressure
// ratio. It is 1 at ratio 1 and strictly increasing.
func PressureFactor(ratio float64) float64 {
	return 1 + pressureWeight*math.Tanh(0.5*math.Log(ratio))
}

// boundAngle is the identity up to halfAngleKnee and saturates towards
// MaxHalfAngle above it. It is strictly increasing with a continuous slope.
func boundAngle(a float64) float64 {
	if a <= halfAngleKnee {
		return a
	}
	span := MaxHalfAngle - halfAngleKnee
	return halfAngleKnee + span*math.Tanh((a-halfAngleKnee)/span)
}

// DerivePlume computes the plume shape. It depends only on in.
func DerivePlume(in PlumeInputs) PlumeShape {
	m := math.Max(in.ExitMach, 1)
	gamma := in.Gamma
	if gamma <= 1 {
		gamma = 1.2
	}

	ratio := vacuumRatio
	if in.AmbientPressure > 0 {
		ratio = math.Max(in.ExitPressure, 0) / in.AmbientPressure
	}

	de := 2 * in.ExitRadius
	s := PlumeShape{
		PressureRatio: ratio,
		HalfAngle:     boundAngle(math.Asin(1/m) * PressureFactor(ratio)),
		Length:        de * (4 + 2*m) * math.Min(math.Max(math.Pow(ratio, 0.25), 0.5), 2),
	}
	if in.ExitMach > 1 {
		s.ShockSpacing = 1.22 * de * math.Sqrt(in.ExitMach*in.ExitMach-1)
	}

	s.StagnationT = in.ExitTemp * (1 + 0.5*(gamma-1)*m*m)
	tip := m * (1 + machGrowth)
	s.TipTemp = s.StagnationT / (1 + 0.5*(gamma-1)*tip*tip)
	return s
}

// ConeRadius is the plume boundary radius at axial distance d past the
// exit.
func (s PlumeShape) ConeRadius(exitRadius, d float64) float64 {
	return exitRadius + d*math.Tan(s.HalfAngle)
}

// Brightness modulates shading at the shock-cell spacing, decaying
// downstream. It is 1 without shock cells.
func (s PlumeShape) Brightness(d float64) float64 {
	if s.ShockSpacing <= 0 || s.Length <= 0 {
		return 1
	}
	decay := math.Exp(-2 * d / s.Length)
	return 1 + shockAmplitude*decay*math.Cos(2*math.Pi*d/s.ShockSpacing)
}

// LocalTemp is the stylized static temperature at fraction u of the plume
// length: isentropic from the exit stagnation state with Mach growing
// linearly downstream.
func (s PlumeShape) LocalTemp(in PlumeInputs, u float64) float64 {
	gamma := in.Gamma
	if gamma <= 1 {
		gamma = 1.2
	}
	m := math.Max(in.ExitMach, 1) * (1 + machGrowth*u)
	return s.StagnationT / (1 + 0.5*(gamma-1)*m*m)
}

// Plume is the exhaust particle system.
type Plume struct {
	particles []Particle
	inputs    PlumeInputs
	shape     PlumeShape
	ready     bool

	geometry *render.Geometry
	material *render.Material
}

func NewPlume(dev *render.Device, n int, s uint64) *Plume {
	if n <= 0 {
		n = DefaultPlumeParticles
	}
	mat := dev.NewVertexColorMaterial("plume")
	mat.Emissive = 1
	return &Plume{
		particles: seed(n, s),
		geometry:  dev.NewGeometry("plume", geometry.BuildPoints(n)),
		material:  mat,
	}
}

func (p *Plume) Particles() []Particle { return p.particles }
func (p *Plume) Shape() PlumeShape    { return p.shape }
func (p *Plume) Inputs() PlumeInputs  { return p.inputs }

// Ready reports whether valid inputs have been set.
func (p *Plume) Ready() bool { return p.ready }

func (p *Plume) Solid() *render.Solid {
	return render.NewSolid("plume", p.geometry, p.material)
}

// SetInputs re-derives the shape when in differs from the current inputs.
func (p *Plume) SetInputs(in PlumeInputs) error {
	if err := in.Validate(); err != nil {
		return err
	}
	in.Thrust = clamp01(in.Thrust)
	if p.ready && in == p.inputs {
		return nil
	}
	p.inputs = in
	p.shape = DerivePlume(in)
	p.ready = true
	return nil
}

// SetThrust changes the commanded thrust fraction, which scales the
// lifetime rate only.
func (p *Plume) SetThrust(f float64) {
	p.inputs.Thrust = clamp01(f)
}

// Advance moves every lifetime forward by dt seconds at full-thrust rate
// scaled by the thrust fraction.
func (p *Plume) Advance(dt float64) {
	rate := plumeRate * p.inputs.Thrust
	advance(p.particles, func(q *Particle) float64 { return rate * q.Speed }, dt)
}

// Position returns the world position of particle q.
func (p *Plume) Position(q Particle) (x, y, z float64) {
	d := q.Life * p.shape.Length
	r := q.Radial * p.shape.ConeRadius(p.inputs.ExitRadius, d)
	s, c := azimuths.sincos(q.Azimuth)
	return p.inputs.ExitX + d, r * c, r * s
}

// Color returns the shaded color at fraction u of the plume length.
func (p *Plume) Color(u float64) colorful.Color {
	t := colormap.Normalize(p.shape.LocalTemp(p.inputs, u), p.shape.TipTemp, p.inputs.ExitTemp)
	c := colormap.Plume.At(t)
	b := p.shape.Brightness(u * p.shape.Length)
	return colorful.Color{R: c.R * b, G: c.G * b, B: c.B * b}.Clamped()
}

// Sync writes positions and colors into the point cloud and uploads it.
// Particles collapse onto the exit plane while thrust is zero or no inputs
// are set.
func (p *Plume) Sync() error {
	pos, col := p.geometry.Positions, p.geometry.Colors
	if pos == nil {
		return render.ErrDisposed
	}
	visible := p.ready && p.inputs.Thrust > 0
	for i, q := range p.particles {
		if !visible {
			pos[3*i], pos[3*i+1], pos[3*i+2] = float32(p.inputs.ExitX), 0, 0
			col[3*i], col[3*i+1], col[3*i+2] = 0, 0, 0
			continue
		}
		x, y, z := p.Position(q)
		pos[3*i], pos[3*i+1], pos[3*i+2] = float32(x), float32(y), float32(z)
		col[3*i], col[3*i+1], col[3*i+2] = colormap.Components(p.Color(q.Life))
	}
	return p.geometry.Update()
}

func (p *Plume) Dispose() error {
	return errors.Join(p.geometry.Dispose(), p.material.Dispose())
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
