package geometry

import (
	"errors"

	"cogentcore.org/core/math32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/colormap"
)

var (
	ErrSegments   = errors.New("geometry: at least 3 circumferential segments required")
	ErrDegenerate = errors.New("geometry: degenerate annulus (outer radius must exceed inner)")
)

const MinSegments = 3

type Primitive int

const (
	Triangles Primitive = iota
	Lines
	Points
)

// Mesh holds flat vertex attributes. Colors is either empty or holds one RGB
// triple per vertex.
type Mesh struct {
	Primitive Primitive
	Positions []float32
	Normals   []float32
	Colors    []float32
	Indices   []uint32
}

func (m *Mesh) VertexCount() int { return len(m.Positions) / 3 }

// TriangleCount returns the number of indexed triangles. Line and point
// meshes report zero.
func (m *Mesh) TriangleCount() int {
	if m.Primitive != Triangles {
		return 0
	}
	return len(m.Indices) / 3
}

func (m *Mesh) IsEmpty() bool { return len(m.Positions) == 0 }

func (m *Mesh) Vertex(i int) math32.Vector3 {
	return math32.Vec3(m.Positions[3*i], m.Positions[3*i+1], m.Positions[3*i+2])
}

func (m *Mesh) Normal(i int) math32.Vector3 {
	return math32.Vec3(m.Normals[3*i], m.Normals[3*i+1], m.Normals[3*i+2])
}

// Triangle returns the vertex indices of triangle t.
func (m *Mesh) Triangle(t int) (a, b, c uint32) {
	return m.Indices[3*t], m.Indices[3*t+1], m.Indices[3*t+2]
}

// FaceNormal is the unit normal implied by triangle t's winding.
func (m *Mesh) FaceNormal(t int) math32.Vector3 {
	a, b, c := m.Triangle(t)
	va, vb, vc := m.Vertex(int(a)), m.Vertex(int(b)), m.Vertex(int(c))
	return vb.Sub(va).Cross(vc.Sub(va)).Normal()
}

// Centroid of triangle t.
func (m *Mesh) Centroid(t int) math32.Vector3 {
	a, b, c := m.Triangle(t)
	return m.Vertex(int(a)).Add(m.Vertex(int(b))).Add(m.Vertex(int(c))).MulScalar(1.0 / 3)
}

func (m *Mesh) addVertex(p, n math32.Vector3) uint32 {
	idx := uint32(m.VertexCount())
	m.Positions = append(m.Positions, p.X, p.Y, p.Z)
	m.Normals = append(m.Normals, n.X, n.Y, n.Z)
	return idx
}

func (m *Mesh) addColor(r, g, b float32) {
	m.Colors = append(m.Colors, r, g, b)
}

func (m *Mesh) addTri(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

func (m *Mesh) addLine(a, b uint32) {
	m.Indices = append(m.Indices, a, b)
}

// Append merges o into m, offsetting its indices. Both meshes must share a
// primitive and either both carry colors or neither.
func (m *Mesh) Append(o *Mesh) {
	base := uint32(m.VertexCount())
	m.Positions = append(m.Positions, o.Positions...)
	m.Normals = append(m.Normals, o.Normals...)
	m.Colors = append(m.Colors, o.Colors...)
	for _, i := range o.Indices {
		m.Indices = append(m.Indices, base+i)
	}
}

// Bounds returns the axis-aligned extent of the mesh.
func (m *Mesh) Bounds() math32.Box3 {
	var b math32.Box3
	b.SetEmpty()
	for i := 0; i < m.VertexCount(); i++ {
		b.ExpandByPoint(m.Vertex(i))
	}
	return b
}

// ring returns the point at radius r and angle theta in the plane x.
func ring(x, r, theta float64) math32.Vector3 {
	s, c := math32.Sincos(float32(theta))
	return math32.Vec3(float32(x), float32(r)*c, float32(r)*s)
}

// Paint sets every vertex to one color.
func (m *Mesh) Paint(c colorful.Color) {
	r, g, b := colormap.Components(c)
	m.Colors = m.Colors[:0]
	for i := 0; i < m.VertexCount(); i++ {
		m.addColor(r, g, b)
	}
}
