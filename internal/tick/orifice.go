package tick

import (
	"fmt"
	"math"
)

type Fluid int

const (
	Fuel Fluid = iota
	Oxidizer
)

func (f Fluid) String() string {
	if f == Oxidizer {
		return "oxidizer"
	}
	return "fuel"
}

func (f Fluid) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Fluid) UnmarshalText(b []byte) error {
	switch string(b) {
	case "fuel":
		*f = Fuel
	case "oxidizer", "ox":
		*f = Oxidizer
	default:
		return fmt.Errorf("tick: unknown orifice type %q", b)
	}
	return nil
}

// Orifice is one injector hole, positioned by its lateral offset on the face.
type Orifice struct {
	Y      float64 `json:"y_center"`
	Z      float64 `json:"z_center"`
	Radius float64 `json:"radius"`
	Type   Fluid   `json:"orifice_type"`
}

// Offset is the orifice center's distance from the axis.
func (o Orifice) Offset() float64 {
	return math.Hypot(o.Y, o.Z)
}

// Intersects reports whether any part of the orifice lies inside a disc of
// the given radius.
func (o Orifice) Intersects(faceRadius float64) bool {
	return o.Offset()-o.Radius < faceRadius
}

// Contains reports whether the lateral point (y, z) is inside the orifice.
func (o Orifice) Contains(y, z float64) bool {
	dy, dz := y-o.Y, z-o.Z
	return dy*dy+dz*dz < o.Radius*o.Radius
}

type InjectorLayout struct {
	Rings           int     `yaml:"rings"`
	ElementsBase    int     `yaml:"elements_base"`
	FuelDiameter    float64 `yaml:"fuel_diameter"`
	OxDiameter      float64 `yaml:"ox_diameter"`
	FirstRingFrac   float64 `yaml:"first_ring_frac"`
	RingSpacingFrac float64 `yaml:"ring_spacing_frac"`
}

func DefaultInjectorLayout() InjectorLayout {
	return InjectorLayout{
		Rings:           3,
		ElementsBase:    6,
		FuelDiameter:    0.001,
		OxDiameter:      0.0012,
		FirstRingFrac:   0.25,
		RingSpacingFrac: 0.20,
	}
}

// Orifices lays out unlike-doublet elements in concentric rings: a fuel hole
// on the ring and an oxidizer hole offset radially inward. Odd rings are
// staggered by half an element pitch.
func (l InjectorLayout) Orifices(faceRadius float64) []Orifice {
	rFuel := l.FuelDiameter / 2
	rOx := l.OxDiameter / 2
	radialOffset := 1.5 * math.Max(l.FuelDiameter, l.OxDiameter)
	margin := math.Max(rFuel, rOx) + 0.0003

	var out []Orifice
	for k := 0; k < l.Rings; k++ {
		ring := l.FirstRingFrac * faceRadius
		if l.Rings > 1 {
			ring = (l.FirstRingFrac + float64(k)*l.RingSpacingFrac) * faceRadius
		}
		ring = math.Min(ring, faceRadius-margin)
		if ring < margin {
			continue
		}

		n := l.ElementsBase * (k + 1)
		stagger := 0.0
		if k%2 == 1 {
			stagger = math.Pi / float64(n)
		}
		ox := math.Max(ring-radialOffset, margin)
		for j := 0; j < n; j++ {
			theta := 2*math.Pi*float64(j)/float64(n) + stagger
			s, c := math.Sincos(theta)
			out = append(out,
				Orifice{Y: ring * c, Z: ring * s, Radius: rFuel, Type: Fuel},
				Orifice{Y: ox * c, Z: ox * s, Radius: rOx, Type: Oxidizer},
			)
		}
	}
	return out
}
