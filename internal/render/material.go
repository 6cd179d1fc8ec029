package render

import (
	"cogentcore.org/core/math32"
	"github.com/lucasb-eyer/go-colorful"
)

type Side int

const (
	FrontSide Side = iota
	DoubleSide
)

// Plane is a clipping plane. Points with a negative signed distance are
// clipped away.
type Plane struct {
	Normal   math32.Vector3
	Constant float32
}

func (p Plane) Distance(v math32.Vector3) float32 {
	return p.Normal.Dot(v) + p.Constant
}

func (p Plane) Clips(v math32.Vector3) bool {
	return p.Distance(v) < 0
}

// Material describes surface appearance. With VertexColors set the geometry's
// color attribute replaces Color.
type Material struct {
	handle
	Name         string
	Color        colorful.Color
	Emissive     float64
	Opacity      float64
	VertexColors bool
	Side         Side
	ClipPlanes   []Plane
	Map          *Texture
	Version      int
}

func (d *Device) NewMaterial(name string, c colorful.Color) *Material {
	return &Material{
		handle:  d.register(KindMaterial),
		Name:    name,
		Color:   c,
		Opacity: 1,
	}
}

// NewVertexColorMaterial creates a material that shades from the
// geometry's per-vertex colors.
func (d *Device) NewVertexColorMaterial(name string) *Material {
	m := d.NewMaterial(name, colorful.Color{R: 1, G: 1, B: 1})
	m.VertexColors = true
	return m
}

// SetClipPlanes replaces the clipping set. The slice is copied.
func (m *Material) SetClipPlanes(planes []Plane) {
	if len(planes) == 0 {
		m.ClipPlanes = nil
	} else {
		m.ClipPlanes = append([]Plane(nil), planes...)
	}
	m.Version++
}

// Visible reports whether v survives every clipping plane.
func (m *Material) Visible(v math32.Vector3) bool {
	for _, p := range m.ClipPlanes {
		if p.Clips(v) {
			return false
		}
	}
	return true
}

func (m *Material) Dispose() error {
	if err := m.release(); err != nil {
		return err
	}
	m.Map = nil
	m.ClipPlanes = nil
	return nil
}
