package gui

import (
	"cogentcore.org/core/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/geometry"
	"github.com/san-kum/rocketviz/internal/render"
)

// particleSize is the cube edge for one particle, in view units.
const particleSize = 0.04

func toColor(c colorful.Color, alpha float64) rl.Color {
	r, g, b := c.Clamped().RGB255()
	return rl.NewColor(r, g, b, uint8(math32.Clamp(float32(alpha), 0, 1)*255))
}

func shaded(c rl.Color, k float32) rl.Color {
	return rl.NewColor(uint8(float32(c.R)*k), uint8(float32(c.G)*k), uint8(float32(c.B)*k), c.A)
}

// drawGroups draws every visible solid. The hot-gas wall and the cutaway
// bands are double sided, so culling is off for the pass.
func (a *App) drawGroups(groups []*render.Group) {
	rl.DisableBackfaceCulling()
	defer rl.EnableBackfaceCulling()
	for _, g := range groups {
		g.Walk(a.drawSolid)
	}
}

func (a *App) drawSolid(s *render.Solid) {
	g, m := s.Geometry, s.Material
	if !s.Visible || g == nil || m == nil || g.Disposed() || m.Disposed() {
		return
	}
	n := g.VertexCount()
	pos := make([]rl.Vector3, n)
	keep := make([]bool, n)
	for i := range n {
		v := vertex(g, i)
		keep[i] = m.Visible(v)
		pos[i] = a.world(v)
	}
	base := toColor(m.Color, m.Opacity)
	color := func(i int) rl.Color {
		if m.VertexColors && g.HasColors() {
			return toColor(colorful.Color{
				R: float64(g.Colors[3*i]),
				G: float64(g.Colors[3*i+1]),
				B: float64(g.Colors[3*i+2]),
			}, m.Opacity)
		}
		return base
	}

	switch g.Primitive {
	case geometry.Points:
		for i := range n {
			if keep[i] {
				rl.DrawCube(pos[i], particleSize, particleSize, particleSize, color(i))
			}
		}
	case geometry.Lines:
		for k := 0; k+1 < len(g.Indices); k += 2 {
			ia, ib := g.Indices[k], g.Indices[k+1]
			if keep[ia] && keep[ib] {
				rl.DrawLine3D(pos[ia], pos[ib], color(int(ia)))
			}
		}
	default:
		eye := a.View.Eye()
		lit := m.Emissive == 0 && len(g.Normals) == len(g.Positions)
		for k := 0; k+2 < len(g.Indices); k += 3 {
			ia, ib, ic := g.Indices[k], g.Indices[k+1], g.Indices[k+2]
			if !keep[ia] || !keep[ib] || !keep[ic] {
				continue
			}
			c := color(int(ia))
			if lit {
				p := pos[ia]
				toEye := math32.Vec3(eye.X-p.X, eye.Y-p.Y, eye.Z-p.Z).Normal()
				c = shaded(c, 0.3+0.7*math32.Abs(normal(g, int(ia)).Dot(toEye)))
			}
			rl.DrawTriangle3D(pos[ia], pos[ib], pos[ic], c)
		}
	}
}

func vertex(g *render.Geometry, i int) math32.Vector3 {
	return math32.Vec3(g.Positions[3*i], g.Positions[3*i+1], g.Positions[3*i+2])
}

func normal(g *render.Geometry, i int) math32.Vector3 {
	return math32.Vec3(g.Normals[3*i], g.Normals[3*i+1], g.Normals[3*i+2])
}
