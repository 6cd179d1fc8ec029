package viz

import (
	"math"

	"cogentcore.org/core/math32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/geometry"
	"github.com/san-kum/rocketviz/internal/render"
)

// Camera orbits a target point. Yaw turns about the vertical axis, pitch
// tilts toward it; the engine axis lies along +X.
type Camera struct {
	Target     math32.Vector3
	Distance   float32
	Yaw, Pitch float32
	FOV, Near  float32
	Zoom       float32
}

func NewCamera() *Camera {
	return &Camera{Distance: 1, Yaw: -0.6, Pitch: 0.35, FOV: math.Pi / 4, Near: 1e-3, Zoom: 1}
}

func (c *Camera) Orbit(yaw, pitch float32) {
	c.Yaw += yaw
	c.Pitch = math32.Clamp(c.Pitch+pitch, -1.5, 1.5)
}

func (c *Camera) ZoomIn()  { c.Zoom = math32.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math32.Max(0.1, c.Zoom/1.2) }

// Fit centers the camera on b at a distance that keeps it in view.
func (c *Camera) Fit(b math32.Box3) {
	if b.IsEmpty() {
		return
	}
	c.Target = b.Center()
	radius := b.Size().Length() / 2
	c.Distance = math32.Max(radius/math32.Tan(c.FOV/2), 4*c.Near)
}

// Eye is the camera position in world space, pulled in by Zoom.
func (c *Camera) Eye() math32.Vector3 {
	d := c.Distance / c.Zoom
	sy, cy := math32.Sincos(c.Yaw)
	sp, cp := math32.Sincos(c.Pitch)
	return c.Target.Add(math32.Vec3(-d*cp*sy, d*sp, d*cp*cy))
}

// toView rotates a world-space offset into camera space. The camera looks
// down -Z from +Z.
func (c *Camera) toView(v math32.Vector3) math32.Vector3 {
	sy, cy := math32.Sincos(c.Yaw)
	x, z := v.X*cy+v.Z*sy, -v.X*sy+v.Z*cy
	sp, cp := math32.Sincos(c.Pitch)
	y, z := v.Y*cp-z*sp, v.Y*sp+z*cp
	return math32.Vec3(x, y, z)
}

// Project maps a world point onto a w×h dot grid. It returns the dot
// coordinates, the distance in front of the camera and whether the point
// lies in front of the near plane.
func (c *Camera) Project(p math32.Vector3, w, h int) (x, y int, depth float32, ok bool) {
	v := c.toView(p.Sub(c.Target))
	depth = c.Distance - v.Z
	if depth <= c.Near {
		return 0, 0, depth, false
	}
	focal := float32(min(w, h)) / 2 / math32.Tan(c.FOV/2) * c.Zoom
	x = int(float32(w)/2 + v.X*focal/depth)
	y = int(float32(h)/2 - v.Y*focal/depth)
	return x, y, depth, true
}

// Bounds is the union of every visible solid's vertex bounds.
func Bounds(groups []*render.Group) math32.Box3 {
	var b math32.Box3
	b.SetEmpty()
	for _, g := range groups {
		g.Walk(func(s *render.Solid) {
			if !s.Visible || s.Geometry == nil || s.Geometry.Primitive == geometry.Points {
				return
			}
			p := s.Geometry.Positions
			for i := 0; i+2 < len(p); i += 3 {
				b.ExpandByPoint(math32.Vec3(p[i], p[i+1], p[i+2]))
			}
		})
	}
	return b
}

// bayer is a 4x4 ordered-dither threshold map.
var bayer = [4][4]float32{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

func dither(x, y int, shade float32) bool {
	return shade*16 > bayer[y&3][x&3]
}

// Draw rasterizes every visible solid into the canvas. Triangles are filled
// with a dithered headlight shade, lines and points are plotted as dots.
// Geometry behind an active clip plane is skipped.
func Draw(cv *Canvas, cam *Camera, groups []*render.Group) {
	for _, g := range groups {
		g.Walk(func(s *render.Solid) { drawSolid(cv, cam, s) })
	}
}

type projected struct {
	x, y  int
	depth float32
	ok    bool
}

func drawSolid(cv *Canvas, cam *Camera, s *render.Solid) {
	g, m := s.Geometry, s.Material
	if !s.Visible || g == nil || m == nil || g.Disposed() || m.Disposed() {
		return
	}
	w, h := cv.Dots()
	n := g.VertexCount()
	pts := make([]projected, n)
	for i := range pts {
		v := vertex(g, i)
		if !m.Visible(v) {
			continue
		}
		pts[i].x, pts[i].y, pts[i].depth, pts[i].ok = cam.Project(v, w, h)
	}
	color := func(i int) colorful.Color {
		if m.VertexColors && g.HasColors() {
			return colorful.Color{R: float64(g.Colors[3*i]), G: float64(g.Colors[3*i+1]), B: float64(g.Colors[3*i+2])}
		}
		return m.Color
	}

	switch g.Primitive {
	case geometry.Points:
		for i, p := range pts {
			if p.ok {
				cv.Set(p.x, p.y, p.depth, color(i))
			}
		}
	case geometry.Lines:
		for k := 0; k+1 < len(g.Indices); k += 2 {
			a, b := pts[g.Indices[k]], pts[g.Indices[k+1]]
			if a.ok && b.ok {
				cv.DrawLine(a.x, a.y, a.depth, b.x, b.y, b.depth, color(int(g.Indices[k])))
			}
		}
	default:
		for k := 0; k+2 < len(g.Indices); k += 3 {
			ia, ib, ic := g.Indices[k], g.Indices[k+1], g.Indices[k+2]
			a, b, c := pts[ia], pts[ib], pts[ic]
			if !a.ok || !b.ok || !c.ok {
				continue
			}
			shade := float32(1)
			if m.Emissive == 0 && len(g.Normals) == len(g.Positions) {
				nv := cam.toView(normal(g, int(ia)))
				shade = 0.3 + 0.7*math32.Abs(nv.Z)
			}
			fillTriangle(cv, a, b, c, shade, color(int(ia)))
		}
	}
}

func fillTriangle(cv *Canvas, a, b, c projected, shade float32, col colorful.Color) {
	w, h := cv.Dots()
	minX, maxX := max(min(a.x, b.x, c.x), 0), min(max(a.x, b.x, c.x), w-1)
	minY, maxY := max(min(a.y, b.y, c.y), 0), min(max(a.y, b.y, c.y), h-1)
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		cv.DrawLine(a.x, a.y, a.depth, b.x, b.y, b.depth, col)
		cv.DrawLine(b.x, b.y, b.depth, c.x, c.y, c.depth, col)
		return
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := edge(b, c, x, y) / area
			w1 := edge(c, a, x, y) / area
			w2 := edge(a, b, x, y) / area
			if w0 < 0 || w1 < 0 || w2 < 0 || !dither(x, y, shade) {
				continue
			}
			cv.Set(x, y, w0*a.depth+w1*b.depth+w2*c.depth, col)
		}
	}
}

func edge(a, b projected, x, y int) float32 {
	return float32((b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x))
}

func vertex(g *render.Geometry, i int) math32.Vector3 {
	return math32.Vec3(g.Positions[3*i], g.Positions[3*i+1], g.Positions[3*i+2])
}

func normal(g *render.Geometry, i int) math32.Vector3 {
	return math32.Vec3(g.Normals[3*i], g.Normals[3*i+1], g.Normals[3*i+2])
}
