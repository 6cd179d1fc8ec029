package geometry

import (
	"math"

	"cogentcore.org/core/math32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/colormap"
	"github.com/san-kum/rocketviz/internal/station"
)

// BuildRadialBand builds a flat strip in the z = 0 plane between the radius
// curves lo and hi, on the +Y half when side > 0 and the -Y half otherwise.
// The strip faces +Z. Each axial cell is a separate quad colored by
// color(cell midpoint x), so colors step between cells instead of blending.
func BuildRadialBand(xs, lo, hi station.Array, side float64, color func(x float64) colorful.Color) (*Mesh, error) {
	if len(xs) != len(lo) || len(xs) != len(hi) {
		return &Mesh{}, station.ErrLengthMismatch
	}
	if len(xs) < 2 {
		return &Mesh{}, station.ErrTooFewStations
	}
	if !xs.IsValid() || !lo.IsValid() || !hi.IsValid() {
		return &Mesh{}, station.ErrNonFinite
	}

	sign := float32(1)
	if side < 0 {
		sign = -1
	}
	nrm := math32.Vec3(0, 0, 1)
	m := &Mesh{}
	for i := 0; i < len(xs)-1; i++ {
		x0, x1 := float32(xs[i]), float32(xs[i+1])
		a := m.addVertex(math32.Vec3(x0, sign*float32(lo[i]), 0), nrm)
		b := m.addVertex(math32.Vec3(x0, sign*float32(hi[i]), 0), nrm)
		c := m.addVertex(math32.Vec3(x1, sign*float32(lo[i+1]), 0), nrm)
		d := m.addVertex(math32.Vec3(x1, sign*float32(hi[i+1]), 0), nrm)
		if sign > 0 {
			m.addTri(a, c, b)
			m.addTri(c, d, b)
		} else {
			m.addTri(a, b, c)
			m.addTri(c, b, d)
		}
		if color != nil {
			r, g, bl := colormap.Components(color((xs[i] + xs[i+1]) / 2))
			for k := 0; k < 4; k++ {
				m.addColor(r, g, bl)
			}
		}
	}
	return m, nil
}

// AxialArrows places count arrows along the band midline, pointing toward
// decreasing x (from the nozzle exit toward the chamber).
func AxialArrows(xs, mid station.Array, side float64, count int, head float32) []Arrow {
	n := len(xs)
	if n < 2 || len(mid) != n || count < 1 {
		return nil
	}
	sign := float32(1)
	if side < 0 {
		sign = -1
	}
	length := (xs[n-1] - xs[0]) / float64(count) * 0.6
	arrows := make([]Arrow, 0, count)
	for k := 0; k < count; k++ {
		xTail := xs[0] + (float64(k)+0.8)*(xs[n-1]-xs[0])/float64(count)
		xTip := math.Max(xs[0], xTail-length)
		rTail := station.Interp(xs, mid, xTail)
		rTip := station.Interp(xs, mid, xTip)
		arrows = append(arrows, Arrow{
			Tail: math32.Vec3(float32(xTail), sign*float32(rTail), 0),
			Tip:  math32.Vec3(float32(xTip), sign*float32(rTip), 0),
			Head: head,
			Side: math32.Vec3(0, 1, 0),
		})
	}
	return arrows
}
