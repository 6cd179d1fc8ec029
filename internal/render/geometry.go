package render

import (
	"github.com/san-kum/rocketviz/internal/geometry"
)

// Geometry is an uploaded vertex buffer set. Colors is optional and, when
// present, holds one RGB triple per vertex.
type Geometry struct {
	handle
	Name      string
	Primitive geometry.Primitive
	Positions []float32
	Normals   []float32
	Colors    []float32
	Indices   []uint32
	Version   int
}

// NewGeometry uploads the mesh. The geometry takes ownership of the mesh's
// slices.
func (d *Device) NewGeometry(name string, m *geometry.Mesh) *Geometry {
	g := &Geometry{
		handle:    d.register(KindGeometry),
		Name:      name,
		Primitive: m.Primitive,
		Positions: m.Positions,
		Normals:   m.Normals,
		Colors:    m.Colors,
		Indices:   m.Indices,
	}
	d.upload(g.byteSize())
	return g
}

func (g *Geometry) byteSize() int {
	return 4 * (len(g.Positions) + len(g.Normals) + len(g.Colors) + len(g.Indices))
}

func (g *Geometry) VertexCount() int { return len(g.Positions) / 3 }

func (g *Geometry) HasColors() bool { return len(g.Colors) > 0 }

// SetColors replaces the per-vertex color attribute. A nil slice removes it.
func (g *Geometry) SetColors(rgb []float32) error {
	if g.disposed {
		return ErrDisposed
	}
	if rgb != nil && len(rgb) != len(g.Positions) {
		return ErrAttributeSize
	}
	g.Colors = rgb
	g.Version++
	g.dev.upload(4 * len(rgb))
	return nil
}

// Update marks Positions and Colors as rewritten in place and re-uploads
// them in one batch.
func (g *Geometry) Update() error {
	if g.disposed {
		return ErrDisposed
	}
	g.Version++
	g.dev.upload(4 * (len(g.Positions) + len(g.Colors)))
	return nil
}

func (g *Geometry) Dispose() error {
	if err := g.release(); err != nil {
		return err
	}
	g.Positions, g.Normals, g.Colors, g.Indices = nil, nil, nil, nil
	return nil
}
