package cooling

import (
	"errors"
	"fmt"

	"cogentcore.org/core/math32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/colormap"
	"github.com/san-kum/rocketviz/internal/geometry"
	"github.com/san-kum/rocketviz/internal/render"
	"github.com/san-kum/rocketviz/internal/station"
)

var (
	HotWallColor  = colormap.ParseOr("#c2410c", colorful.Color{R: 0.76, G: 0.25})
	CloseoutColor = colormap.ParseOr("#6b7280", colorful.Color{R: 0.42, G: 0.45, B: 0.5})
	NeutralColor  = colormap.ParseOr("#60a5fa", colorful.Color{R: 0.38, G: 0.65, B: 0.98})
	ArrowColor    = colormap.ParseOr("#f8fafc", colorful.Color{R: 1, G: 1, B: 1})
)

// SectionPlane hides the +Z half of the engine so the cut face at z = 0 is
// visible.
var SectionPlane = render.Plane{Normal: math32.Vec3(0, 0, -1)}

const (
	arrowsPerHalf = 6
	arcSegments   = 4
	ringSegments  = 64
	// ringLift separates coplanar ring layers along the axis, in meters.
	ringLift = 5e-5
)

// Field is the per-station coolant state a view is built from. Temp may be
// nil, which degrades every coolant color to NeutralColor.
type Field struct {
	Profile station.Profile
	Temp    station.Array
	Heights station.Array
}

func (f Field) hasTemp() bool {
	return f.Temp.Aligned(f.Profile.Len())
}

// Colors maps every station's coolant temperature onto the coolant ramp,
// or returns nil when no temperature is available.
func (f Field) Colors() []colorful.Color {
	if !f.hasTemp() {
		return nil
	}
	return colormap.Coolant.Map(f.Temp)
}

// Builder owns the cutaway and ring resources.
type Builder struct {
	dev *render.Device
	cfg Config

	field   Field
	colors  []colorful.Color
	bands   Bands
	station int

	target  *render.Group
	saved   map[*render.Material][]render.Plane
	cutaway *render.Group
	ring    *render.Group
	arcs    []Arc
}

func NewBuilder(dev *render.Device, cfg Config) *Builder {
	return &Builder{dev: dev, cfg: cfg}
}

func (b *Builder) Config() Config { return b.cfg }

// SetConfig changes the layout used by the next Apply.
func (b *Builder) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.cfg = cfg
	return nil
}

func (b *Builder) Active() bool { return b.cutaway != nil }

func (b *Builder) Bands() Bands { return b.bands }

func (b *Builder) Field() Field { return b.field }

// Station is the index of the cross-section ring.
func (b *Builder) Station() int { return b.station }

// Arcs are the channel arcs of the current ring.
func (b *Builder) Arcs() []Arc { return b.arcs }

// Groups returns the live cutaway and ring groups for drawing.
func (b *Builder) Groups() []*render.Group {
	var out []*render.Group
	if b.cutaway != nil {
		out = append(out, b.cutaway)
	}
	if b.ring != nil {
		out = append(out, b.ring)
	}
	return out
}

// Apply clips every material in target and builds the half-section and the
// ring. Any previous build is cleared first.
func (b *Builder) Apply(target *render.Group, f Field) error {
	if err := b.Clear(); err != nil {
		return err
	}
	if err := b.cfg.Validate(); err != nil {
		return err
	}
	if err := f.Profile.Validate(); err != nil {
		return err
	}

	b.field = f
	b.colors = f.Colors()
	b.bands = ComputeBands(f.Profile, b.cfg, f.Heights)
	b.target = target
	b.saved = make(map[*render.Material][]render.Plane)
	for _, m := range target.Materials() {
		b.saved[m] = m.ClipPlanes
		m.SetClipPlanes(append(append([]render.Plane(nil), m.ClipPlanes...), SectionPlane))
	}

	cut, err := b.buildCutaway()
	if err != nil {
		return errors.Join(err, b.Clear())
	}
	b.cutaway = cut
	b.station = min(max(b.station, 0), b.bands.Len()-1)
	return b.rebuildRing()
}

// SetStation moves the cross-section ring. Only the ring is rebuilt.
func (b *Builder) SetStation(i int) error {
	if b.cutaway == nil {
		b.station = max(i, 0)
		return nil
	}
	if i < 0 || i >= b.bands.Len() {
		return fmt.Errorf("cooling: station %d out of range [0,%d)", i, b.bands.Len())
	}
	b.station = i
	return b.rebuildRing()
}

// Clear restores every clipped material and disposes the cutaway and ring.
// It is safe to call when nothing is built.
func (b *Builder) Clear() error {
	for m, planes := range b.saved {
		if !m.Disposed() {
			m.SetClipPlanes(planes)
		}
	}
	b.saved = nil
	b.target = nil

	var errs []error
	if b.cutaway != nil {
		errs = append(errs, b.cutaway.Dispose())
		b.cutaway = nil
	}
	if b.ring != nil {
		errs = append(errs, b.ring.Dispose())
		b.ring = nil
	}
	b.arcs = nil
	b.colors = nil
	return errors.Join(errs...)
}

// stationColor is the coolant color at station i, or NeutralColor.
func (b *Builder) stationColor(i int) colorful.Color {
	if i < 0 || i >= len(b.colors) {
		return NeutralColor
	}
	return b.colors[i]
}

func (b *Builder) buildCutaway() (*render.Group, error) {
	bd := b.bands
	xs := bd.X

	var chanColor func(x float64) colorful.Color
	if b.colors != nil {
		chanColor = func(x float64) colorful.Color {
			return b.stationColor(xs.Nearest(x))
		}
	}
	layers := []struct {
		name   string
		lo, hi station.Array
		color  func(float64) colorful.Color
	}{
		{"hot-wall", bd.Inner, bd.HotWall, nil},
		{"channel", bd.HotWall, bd.Channel, chanColor},
		{"closeout", bd.Channel, bd.Outer, nil},
	}

	type part struct {
		name  string
		layer int
		mesh  *geometry.Mesh
	}
	var parts []part
	var arrows []geometry.Arrow
	head := float32(0.25 * meanThickness(bd))
	for _, side := range []float64{1, -1} {
		for li, l := range layers {
			m, err := geometry.BuildRadialBand(xs, l.lo, l.hi, side, l.color)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part{fmt.Sprintf("%s%+.0f", l.name, side), li, m})
		}
		arrows = append(arrows, geometry.AxialArrows(xs, bd.ChannelMid(), side, arrowsPerHalf, head)...)
	}

	mats := []*render.Material{
		b.dev.NewMaterial("cutaway-hot-wall", HotWallColor),
		b.dev.NewMaterial("cutaway-channel", NeutralColor),
		b.dev.NewMaterial("cutaway-closeout", CloseoutColor),
	}
	mats[1].VertexColors = chanColor != nil
	g := render.NewGroup("cooling-cutaway")
	for _, p := range parts {
		mat := mats[p.layer]
		mat.Side = render.DoubleSide
		g.Add(render.NewSolid(p.name, b.dev.NewGeometry(p.name, p.mesh), mat))
	}
	arrowMat := b.dev.NewMaterial("cutaway-arrows", ArrowColor)
	g.Add(render.NewSolid("flow-arrows", b.dev.NewGeometry("flow-arrows", geometry.BuildArrows(arrows)), arrowMat))
	return g, nil
}

func meanThickness(bd Bands) float64 {
	if bd.Len() == 0 {
		return 0
	}
	sum := 0.0
	for i := range bd.X {
		sum += bd.Outer[i] - bd.Inner[i]
	}
	return sum / float64(bd.Len())
}

// Arc is one channel's angular extent in the cross-section ring.
type Arc struct {
	Theta0 float64
	Theta1 float64
}

func (a Arc) Span() float64 { return a.Theta1 - a.Theta0 }

// RingArcs lays out one arc per channel centered on its pitch slot, sized
// at radius r.
func (c Config) RingArcs(r float64) []Arc {
	pitch := c.Pitch()
	span := c.ChannelSpan(r)
	arcs := make([]Arc, c.Channels)
	for k := range arcs {
		mid := float64(k) * pitch
		arcs[k] = Arc{Theta0: mid - span/2, Theta1: mid + span/2}
	}
	return arcs
}

func (b *Builder) rebuildRing() error {
	if b.ring != nil {
		err := b.ring.Dispose()
		b.ring = nil
		if err != nil {
			return err
		}
	}

	i := b.station
	bd := b.bands
	x := bd.X[i]
	g := render.NewGroup("cooling-ring")

	add := func(name string, m *geometry.Mesh, mat *render.Material) {
		g.Add(render.NewSolid(name, b.dev.NewGeometry(name, m), mat))
	}

	wall, err := geometry.BuildEndCap(x, bd.Inner[i], bd.Outer[i], ringSegments, geometry.FacingDownstream)
	if err != nil {
		return err
	}
	add("ring-wall", wall, b.dev.NewMaterial("ring-wall", CloseoutColor))

	if bd.HotWall[i] > bd.Inner[i] {
		hot, err := geometry.BuildEndCap(x+ringLift, bd.Inner[i], bd.HotWall[i], ringSegments, geometry.FacingDownstream)
		if err != nil {
			g.Dispose()
			return err
		}
		add("ring-hot-gas", hot, b.dev.NewMaterial("ring-hot-gas", HotWallColor))
	}

	rMid := (bd.HotWall[i] + bd.Channel[i]) / 2
	b.arcs = b.cfg.RingArcs(rMid)
	if bd.Channel[i] > bd.HotWall[i] {
		arcMesh := &geometry.Mesh{}
		for _, a := range b.arcs {
			m, err := geometry.BuildAnnularSector(x+2*ringLift, bd.HotWall[i], bd.Channel[i], a.Theta0, a.Theta1, arcSegments, geometry.FacingDownstream)
			if err != nil {
				g.Dispose()
				return err
			}
			arcMesh.Append(m)
		}
		arcMesh.Paint(b.stationColor(i))
		add("ring-channels", arcMesh, b.dev.NewVertexColorMaterial("ring-channels"))
	}

	b.ring = g
	return nil
}
