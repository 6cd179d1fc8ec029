package geometry

import (
	"cogentcore.org/core/math32"
)

// BuildPolyline joins consecutive points with line segments.
func BuildPolyline(points []math32.Vector3) *Mesh {
	m := &Mesh{Primitive: Lines}
	for i, p := range points {
		m.addVertex(p, math32.Vector3{})
		if i > 0 {
			m.addLine(uint32(i-1), uint32(i))
		}
	}
	return m
}

// Arrow is a line arrow from Tail to Tip with a fixed-size head.
type Arrow struct {
	Tail math32.Vector3
	Tip  math32.Vector3
	Head float32
	// Side orients the head barbs; it should not be parallel to the shaft.
	Side math32.Vector3
}

// BuildArrows emits all arrows as one line mesh. Zero-length arrows are
// skipped.
func BuildArrows(arrows []Arrow) *Mesh {
	m := &Mesh{Primitive: Lines}
	for _, a := range arrows {
		appendArrow(m, a)
	}
	return m
}

func appendArrow(m *Mesh, a Arrow) {
	shaft := a.Tip.Sub(a.Tail)
	if shaft.Length() < 1e-9 {
		return
	}
	dir := shaft.Normal()
	side := a.Side.Sub(dir.MulScalar(a.Side.Dot(dir)))
	if side.Length() < 1e-9 {
		side = perpendicular(dir)
	}
	side = side.Normal()

	back := a.Tip.Sub(dir.MulScalar(a.Head))
	var zero math32.Vector3
	tail := m.addVertex(a.Tail, zero)
	tip := m.addVertex(a.Tip, zero)
	left := m.addVertex(back.Add(side.MulScalar(a.Head*0.5)), zero)
	right := m.addVertex(back.Sub(side.MulScalar(a.Head*0.5)), zero)
	m.addLine(tail, tip)
	m.addLine(tip, left)
	m.addLine(tip, right)
}

func perpendicular(v math32.Vector3) math32.Vector3 {
	axis := math32.Vec3(0, 0, 1)
	if math32.Abs(v.Z) > 0.9 {
		axis = math32.Vec3(0, 1, 0)
	}
	return v.Cross(axis)
}

// BuildPoints creates a point cloud of n vertices with a color slot each.
// Positions and colors are rewritten every frame by the particle systems.
func BuildPoints(n int) *Mesh {
	return &Mesh{
		Primitive: Points,
		Positions: make([]float32, 3*n),
		Normals:   make([]float32, 3*n),
		Colors:    make([]float32, 3*n),
	}
}
