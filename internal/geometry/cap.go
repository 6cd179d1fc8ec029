package geometry

import (
	"math"

	"cogentcore.org/core/math32"

	"github.com/san-kum/rocketviz/internal/station"
)

// Orientation is the axial direction an end cap faces.
type Orientation int

const (
	// FacingUpstream faces -X, for the chamber (injector) end.
	FacingUpstream Orientation = iota
	// FacingDownstream faces +X, for the nozzle exit.
	FacingDownstream
)

func (o Orientation) normal() math32.Vector3 {
	if o == FacingDownstream {
		return math32.Vec3(1, 0, 0)
	}
	return math32.Vec3(-1, 0, 0)
}

// BuildEndCap bridges the wall between rInner and rOuter at axial position
// x with 2*(segments+1) vertices and 2*segments triangles.
func BuildEndCap(x, rInner, rOuter float64, segments int, o Orientation) (*Mesh, error) {
	if segments < MinSegments {
		return &Mesh{}, ErrSegments
	}
	return BuildAnnularSector(x, rInner, rOuter, 0, 2*math.Pi, segments, o)
}

// BuildAnnularSector builds the planar ring sector between rInner and rOuter
// spanning [theta0, theta1] in the plane at axial position x.
func BuildAnnularSector(x, rInner, rOuter, theta0, theta1 float64, segments int, o Orientation) (*Mesh, error) {
	for _, v := range []float64{x, rInner, rOuter, theta0, theta1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &Mesh{}, station.ErrNonFinite
		}
	}
	if rInner < 0 {
		return &Mesh{}, station.ErrNegativeRadius
	}
	if rOuter <= rInner || theta1 <= theta0 {
		return &Mesh{}, ErrDegenerate
	}
	if segments < 1 {
		return &Mesh{}, ErrSegments
	}

	nrm := o.normal()
	m := &Mesh{}
	span := theta1 - theta0
	for j := 0; j <= segments; j++ {
		theta := theta0 + span*float64(j)/float64(segments)
		m.addVertex(ring(x, rInner, theta), nrm)
		m.addVertex(ring(x, rOuter, theta), nrm)
	}
	for j := 0; j < segments; j++ {
		ai, co := uint32(2*j), uint32(2*j+1)
		bi, do := uint32(2*j+2), uint32(2*j+3)
		annulusQuad(m, ai, bi, co, do, o)
	}
	return m, nil
}

// annulusQuad emits the two triangles of a planar ring cell. ai/bi lie on
// the inner radius and co/do on the outer, with bi and do one step further
// in angle.
func annulusQuad(m *Mesh, ai, bi, co, do uint32, o Orientation) {
	if o == FacingUpstream {
		m.addTri(ai, bi, co)
		m.addTri(bi, do, co)
		return
	}
	m.addTri(ai, co, bi)
	m.addTri(bi, co, do)
}
