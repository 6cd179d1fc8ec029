package geometry

import (
	"math"

	"cogentcore.org/core/math32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/colormap"
	"github.com/san-kum/rocketviz/internal/tick"
)

const (
	// MinMarkerFraction keeps markers visible on large faces.
	MinMarkerFraction = 0.012
	markerSegments    = 16
	// markerLift moves markers upstream of the face, as a fraction of its radius.
	markerLift = 1e-3
)

var (
	FuelColor     = colormap.ParseOr("#ff7a1a", colorful.Color{R: 1, G: 0.5})
	OxidizerColor = colormap.ParseOr("#38bdf8", colorful.Color{G: 0.7, B: 1})
)

func FluidColor(f tick.Fluid) colorful.Color {
	if f == tick.Oxidizer {
		return OxidizerColor
	}
	return FuelColor
}

// BuildOrificeMarkers places one flat vertex-colored disc per orifice that
// touches the face. Markers are identification only and are independent of
// the face mesh.
func BuildOrificeMarkers(x, faceRadius float64, orifices []tick.Orifice) *Mesh {
	m := &Mesh{}
	if faceRadius <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return m
	}
	minR := MinMarkerFraction * faceRadius
	xm := x - markerLift*faceRadius
	nrm := FacingUpstream.normal()

	for _, o := range orifices {
		if o.Radius <= 0 || !o.Intersects(faceRadius) {
			continue
		}
		r := math.Max(o.Radius, minR)
		cr, cg, cb := colormap.Components(FluidColor(o.Type))

		center := m.addVertex(math32.Vec3(float32(xm), float32(o.Y), float32(o.Z)), nrm)
		m.addColor(cr, cg, cb)
		for j := 0; j < markerSegments; j++ {
			s, c := math.Sincos(2 * math.Pi * float64(j) / markerSegments)
			p := math32.Vec3(float32(xm), float32(o.Y+r*c), float32(o.Z+r*s))
			m.addVertex(p, nrm)
			m.addColor(cr, cg, cb)
		}
		for j := 0; j < markerSegments; j++ {
			next := (j + 1) % markerSegments
			m.addTri(center, center+1+uint32(next), center+1+uint32(j))
		}
	}
	return m
}
