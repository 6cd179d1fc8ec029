package export

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/cooling"
	"github.com/san-kum/rocketviz/internal/station"
	"github.com/san-kum/rocketviz/internal/viz"
)

const background = "#0a0a0a"

var ErrStation = errors.New("export: station out of range")

func header(sb *strings.Builder, w, h float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, background)
}

func hex(c colorful.Color) string { return c.Clamped().Hex() }

// CanvasToSVG draws every lit Braille dot as a circle in its own color.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	w, h := canvas.Dots()
	var sb strings.Builder
	header(&sb, float64(w)*scale, float64(h)*scale)
	r := scale * 0.4
	for _, p := range canvas.Pixels() {
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, float64(p.X)*scale+scale/2, float64(p.Y)*scale+scale/2, r, hex(p.Color))
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// ProfileToSVG draws the axial half-section of the wall on both sides of
// the axis. When colors holds one entry per station the hot-gas edge is
// stroked with them segment by segment.
func ProfileToSVG(p station.Profile, colors []colorful.Color, wall colorful.Color, width, height int) string {
	n := p.Len()
	if n < 2 {
		return ""
	}
	x0, x1 := p.Inner[0].X, p.Inner[n-1].X
	rMax := 0.0
	for _, pt := range p.Outer {
		rMax = math.Max(rMax, pt.R)
	}
	spanX := x1 - x0
	if spanX == 0 {
		spanX = 1
	}
	if rMax == 0 {
		rMax = 1
	}
	pad := 0.05 * float64(width)
	sx := (float64(width) - 2*pad) / spanX
	sr := (float64(height)/2 - pad) / rMax
	sx, sr = math.Min(sx, sr), math.Min(sx, sr)
	cy := float64(height) / 2
	px := func(x float64) float64 { return pad + (x-x0)*sx }

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444" stroke-dasharray="6 4"/>
`, cy, width, cy)

	for _, side := range []float64{-1, 1} {
		var d strings.Builder
		for i, pt := range p.Outer {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&d, "%s%.1f,%.1f ", cmd, px(pt.X), cy-side*pt.R*sr)
		}
		for i := n - 1; i >= 0; i-- {
			fmt.Fprintf(&d, "L%.1f,%.1f ", px(p.Inner[i].X), cy-side*p.Inner[i].R*sr)
		}
		fmt.Fprintf(&sb, `<path class="wall" d="%sZ" fill="%s" stroke="none"/>
`, d.String(), hex(wall))

		if len(colors) != n {
			continue
		}
		for i := 0; i+1 < n; i++ {
			a, b := p.Inner[i], p.Inner[i+1]
			fmt.Fprintf(&sb, `<line class="hot-edge" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="3"/>
`, px(a.X), cy-side*a.R*sr, px(b.X), cy-side*b.R*sr, hex(colors[i]))
		}
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// SectionToSVG draws the wall cross-section at station i: hot wall and
// closeout rings with one annular sector per coolant channel, filled with
// the coolant color.
func SectionToSVG(b cooling.Bands, i int, cfg cooling.Config, coolant, wall colorful.Color, size int) (string, error) {
	if i < 0 || i >= b.Len() {
		return "", fmt.Errorf("%w: %d not in [0,%d)", ErrStation, i, b.Len())
	}
	c := float64(size) / 2
	scale := 0.9 * c / b.Outer[i]
	rIn, rHot, rCh, rOut := b.Inner[i]*scale, b.HotWall[i]*scale, b.Channel[i]*scale, b.Outer[i]*scale

	var sb strings.Builder
	header(&sb, float64(size), float64(size))
	// the wall is one annulus; channels are painted over it
	fmt.Fprintf(&sb, `<path class="wall" d="%s" fill="%s" fill-rule="evenodd"/>
`, annulus(c, rIn, rOut), hex(wall))

	if rCh > rHot {
		mid := (b.HotWall[i] + b.Channel[i]) / 2
		for _, a := range cfg.RingArcs(mid) {
			fmt.Fprintf(&sb, `<path class="channel" d="%s" fill="%s"/>
`, sector(c, rHot, rCh, a.Theta0, a.Theta1), hex(coolant))
		}
	}
	fmt.Fprintf(&sb, `<text x="%.0f" y="%.0f" fill="#888" font-family="monospace" font-size="12" text-anchor="middle">station %d  x=%.4f m</text>
`, c, float64(size)-6, i, b.X[i])
	sb.WriteString("</svg>")
	return sb.String(), nil
}

func polar(c, r, theta float64) (float64, float64) {
	return c + r*math.Cos(theta), c - r*math.Sin(theta)
}

func annulus(c, r0, r1 float64) string {
	circle := func(r float64) string {
		return fmt.Sprintf("M%.2f,%.2f A%.2f,%.2f 0 1 0 %.2f,%.2f A%.2f,%.2f 0 1 0 %.2f,%.2f Z ",
			c+r, c, r, r, c-r, c, r, r, c+r, c)
	}
	return circle(r1) + circle(r0)
}

func sector(c, r0, r1, t0, t1 float64) string {
	large := 0
	if t1-t0 > math.Pi {
		large = 1
	}
	ax, ay := polar(c, r1, t0)
	bx, by := polar(c, r1, t1)
	cx, cy := polar(c, r0, t1)
	dx, dy := polar(c, r0, t0)
	return fmt.Sprintf("M%.2f,%.2f A%.2f,%.2f 0 %d 0 %.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d 1 %.2f,%.2f Z",
		ax, ay, r1, r1, large, bx, by, cx, cy, r0, r0, large, dx, dy)
}
