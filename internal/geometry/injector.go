package geometry

import (
	"math"

	"github.com/san-kum/rocketviz/internal/station"
	"github.com/san-kum/rocketviz/internal/tick"
)

// Polar grid bounds for the injector face.
const (
	MinRadialCells  = 40
	MaxRadialCells  = 120
	MaxAngularCells = 512
)

// InjectorResolution picks radial and angular cell counts so that no cell is
// larger than the smallest orifice that touches the face. Orifices entirely
// outside the face are ignored.
func InjectorResolution(faceRadius float64, orifices []tick.Orifice, segments int) (radial, angular int) {
	minR := math.Inf(1)
	for _, o := range orifices {
		if o.Radius > 0 && o.Intersects(faceRadius) {
			minR = math.Min(minR, o.Radius)
		}
	}

	radial, angular = MinRadialCells, segments
	if !math.IsInf(minR, 1) {
		radial = int(math.Ceil(faceRadius / minR))
		angular = int(math.Ceil(2 * math.Pi * faceRadius / minR))
	}
	radial = clamp(radial, MinRadialCells, MaxRadialCells)
	angular = clamp(angular, segments, max(segments, MaxAngularCells))
	return radial, angular
}

// BuildInjectorFace builds the injector disc at axial position x with a void
// wherever a grid cell's center falls inside an orifice. The face points
// upstream (-X). The innermost ring is a triangle fan about the center.
func BuildInjectorFace(x, faceRadius float64, orifices []tick.Orifice, segments int) (*Mesh, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(faceRadius) || math.IsInf(faceRadius, 0) {
		return &Mesh{}, station.ErrNonFinite
	}
	if faceRadius <= 0 {
		return &Mesh{}, ErrDegenerate
	}
	if segments < MinSegments {
		return &Mesh{}, ErrSegments
	}

	var active []tick.Orifice
	for _, o := range orifices {
		if o.Radius > 0 && o.Intersects(faceRadius) {
			active = append(active, o)
		}
	}
	radial, angular := InjectorResolution(faceRadius, active, segments)

	nrm := FacingUpstream.normal()
	m := &Mesh{}
	center := m.addVertex(ring(x, 0, 0), nrm)
	for k := 1; k <= radial; k++ {
		r := faceRadius * float64(k) / float64(radial)
		for j := 0; j < angular; j++ {
			m.addVertex(ring(x, r, 2*math.Pi*float64(j)/float64(angular)), nrm)
		}
	}
	at := func(k, j int) uint32 {
		return uint32(1 + (k-1)*angular + j%angular)
	}

	dTheta := 2 * math.Pi / float64(angular)
	for k := 0; k < radial; k++ {
		rMid := faceRadius * (float64(k) + 0.5) / float64(radial)
		for j := 0; j < angular; j++ {
			s, c := math.Sincos((float64(j) + 0.5) * dTheta)
			if insideAny(active, rMid*c, rMid*s) {
				continue
			}
			if k == 0 {
				m.addTri(center, at(1, j+1), at(1, j))
				continue
			}
			annulusQuad(m, at(k, j), at(k, j+1), at(k+1, j), at(k+1, j+1), FacingUpstream)
		}
	}
	return m, nil
}

func insideAny(orifices []tick.Orifice, y, z float64) bool {
	for _, o := range orifices {
		if o.Contains(y, z) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
