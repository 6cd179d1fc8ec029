package geometry

import (
	"math"

	"cogentcore.org/core/math32"

	"github.com/san-kum/rocketviz/internal/station"
)

// Facing selects which side of a revolved surface is the front face.
type Facing int

const (
	// Outward faces away from the axis (outer wall).
	Outward Facing = iota
	// Inward faces the axis (hot-gas wall, seen from inside the nozzle).
	Inward
)

const tangentEpsilon = 1e-12

// BuildRevolvedSurface sweeps the curve around the X axis. It emits
// len(c)*(segments+1) vertices (the seam is duplicated so attributes can
// differ across it) and 2*(len(c)-1)*segments triangles.
func BuildRevolvedSurface(c station.Curve, segments int, facing Facing) (*Mesh, error) {
	if err := c.Validate("curve"); err != nil {
		return &Mesh{}, err
	}
	if segments < MinSegments {
		return &Mesh{}, ErrSegments
	}

	n := len(c)
	cols := segments + 1
	m := &Mesh{
		Positions: make([]float32, 0, 3*n*cols),
		Normals:   make([]float32, 0, 3*n*cols),
		Indices:   make([]uint32, 0, 6*(n-1)*segments),
	}

	for i, p := range c {
		nx, nr := profileNormal(c, i)
		if facing == Inward {
			nx, nr = -nx, -nr
		}
		for j := 0; j < cols; j++ {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			s, co := math.Sincos(theta)
			pos := math32.Vec3(float32(p.X), float32(p.R*co), float32(p.R*s))
			nrm := math32.Vec3(float32(nx), float32(nr*co), float32(nr*s))
			m.addVertex(pos, nrm)
		}
	}

	for i := 0; i < n-1; i++ {
		for j := 0; j < segments; j++ {
			a := uint32(i*cols + j)
			b := a + 1
			cc := uint32((i+1)*cols + j)
			d := cc + 1
			if facing == Outward {
				m.addTri(a, b, cc)
				m.addTri(b, d, cc)
			} else {
				m.addTri(a, cc, b)
				m.addTri(b, cc, d)
			}
		}
	}
	return m, nil
}

// profileNormal returns the outward unit normal (axial, radial) of the curve
// at station i, from the forward difference (backward at the last station).
func profileNormal(c station.Curve, i int) (nx, nr float64) {
	dx, dr := tangent(c, i)
	l := math.Hypot(dx, dr)
	if l < tangentEpsilon {
		return 0, 1
	}
	return -dr / l, dx / l
}

func tangent(c station.Curve, i int) (dx, dr float64) {
	diff := func(a, b int) (float64, float64) {
		return c[b].X - c[a].X, c[b].R - c[a].R
	}
	last := len(c) - 1
	if i < last {
		dx, dr = diff(i, i+1)
	} else {
		dx, dr = diff(i-1, i)
	}
	if math.Hypot(dx, dr) >= tangentEpsilon {
		return dx, dr
	}
	// repeated station: fall back to the opposite difference
	if i > 0 && i < last {
		return diff(i-1, i)
	}
	return dx, dr
}
