package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a Braille dot buffer with one depth and color sample per dot.
// Each cell is drawn in the color of its nearest dot.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	depth  []float32
	colors []colorful.Color
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		depth:  make([]float32, w*2*h*4),
		colors: make([]colorful.Color, w*2*h*4),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Dots is the canvas size in sub-pixels.
func (c *Canvas) Dots() (w, h int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at (x, y) when it is nearer than what is already
// there. Coordinates are in sub-pixels.
func (c *Canvas) Set(x, y int, depth float32, col colorful.Color) bool {
	if x < 0 || y < 0 {
		return false
	}
	cx, row := x/2, y/4
	if cx >= c.Width || row >= c.Height {
		return false
	}
	i := y*c.Width*2 + x
	if depth >= c.depth[i] {
		return false
	}
	c.depth[i] = depth
	c.colors[i] = col
	c.Grid[row][cx] |= rune(pixelMap[y%4][x%2])
	return true
}

// Lit reports whether the dot at (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 || x >= c.Width*2 || y >= c.Height*4 {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	for i := range c.depth {
		c.depth[i] = math.MaxFloat32
	}
}

// DrawLine draws a line using Bresenham's algorithm, interpolating depth
// between the end points.
func (c *Canvas) DrawLine(x0, y0 int, d0 float32, x1, y1 int, d1 float32, col colorful.Color) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	steps := max(dx, dy)
	for k := 0; ; k++ {
		d := d0
		if steps > 0 {
			d = d0 + (d1-d0)*float32(k)/float32(steps)
		}
		c.Set(x0, y0, d, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// cellColor picks the color of the nearest lit dot in the cell.
func (c *Canvas) cellColor(row, col int) (colorful.Color, bool) {
	best := float32(math.MaxFloat32)
	var out colorful.Color
	for dy := 0; dy < 4; dy++ {
		for dx := 0; dx < 2; dx++ {
			i := (row*4+dy)*c.Width*2 + col*2 + dx
			if c.depth[i] < best {
				best = c.depth[i]
				out = c.colors[i]
			}
		}
	}
	return out, best < math.MaxFloat32
}

// String renders the bare Braille pattern.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render draws the canvas with each cell colored, merging runs of cells
// that share a color into one styled span.
func (c *Canvas) Render() string {
	var b strings.Builder
	for row := range c.Grid {
		var run []rune
		var runHex string
		flush := func() {
			if len(run) == 0 {
				return
			}
			if runHex == "" {
				b.WriteString(string(run))
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runHex)).Render(string(run)))
			}
			run = run[:0]
		}
		for col, r := range c.Grid[row] {
			hex := ""
			if cc, ok := c.cellColor(row, col); ok {
				hex = cc.Clamped().Hex()
			}
			if hex != runHex {
				flush()
				runHex = hex
			}
			run = append(run, r)
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

// Pixels returns every lit dot with its color, in row-major order.
func (c *Canvas) Pixels() []Pixel {
	var out []Pixel
	w, h := c.Dots()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if c.Lit(x, y) {
				out = append(out, Pixel{X: x, Y: y, Color: c.colors[y*w+x]})
			}
		}
	}
	return out
}

// Pixel is one lit Braille dot.
type Pixel struct {
	X, Y  int
	Color colorful.Color
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
