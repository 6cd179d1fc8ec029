package overlay

import (
	"errors"
	"math"

	"cogentcore.org/core/math32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/colormap"
	"github.com/san-kum/rocketviz/internal/cooling"
	"github.com/san-kum/rocketviz/internal/geometry"
	"github.com/san-kum/rocketviz/internal/render"
	"github.com/san-kum/rocketviz/internal/station"
)

// DefaultColor stands in for a missing station array.
var DefaultColor = colormap.ParseOr("#9ca3af", colorful.Color{R: 0.6, G: 0.6, B: 0.6})

// Target is the live engine mesh overlays act on.
type Target struct {
	Group    *render.Group
	Outer    *render.Solid
	Inner    *render.Solid
	Profile  station.Profile
	Segments int
}

func (t *Target) cols() int { return t.Segments + 1 }

// Inputs are the per-tick arrays overlays color from. Overlays never
// modify them.
type Inputs struct {
	WallTemp       station.Array
	VonMises       station.Array
	Mach           station.Array
	CoolantTemp    station.Array
	ChannelHeights station.Array
	YieldMPa       float64
}

type overlay interface {
	apply(dev *render.Device, t *Target, in *Inputs) error
	clear() error
}

type noOverlay struct{}

func (noOverlay) apply(*render.Device, *Target, *Inputs) error { return nil }
func (noOverlay) clear() error                                 { return nil }

// scalarOverlay colors the outer wall from one station array.
type scalarOverlay struct {
	swap   materialSwap
	colors func(in *Inputs, n int) []colorful.Color
}

func (o *scalarOverlay) apply(dev *render.Device, t *Target, in *Inputs) error {
	colors := o.colors(in, t.Profile.Len())
	return o.swap.apply(dev, t.Outer, broadcast(colors, t.cols()))
}

func (o *scalarOverlay) clear() error { return o.swap.clear() }

func thermalColors(in *Inputs, n int) []colorful.Color {
	if !in.WallTemp.Aligned(n) {
		return flat(DefaultColor, n)
	}
	return colormap.Thermal.Map(in.WallTemp)
}

// stressColors scales von Mises stress by yield strength, so red means the
// wall is at or past yield.
func stressColors(in *Inputs, n int) []colorful.Color {
	if !in.VonMises.Aligned(n) {
		return flat(DefaultColor, n)
	}
	if in.YieldMPa <= 0 {
		return colormap.Stress.Map(in.VonMises)
	}
	ratio := make(station.Array, n)
	for i, v := range in.VonMises {
		ratio[i] = v / in.YieldMPa
	}
	return colormap.Stress.MapRange(ratio, 0, 1)
}

// Flow arrow layout.
const (
	flowArrowCount   = 6
	flowArrowSamples = 16
	flowArrowLift    = 1.06
	FlowArrowHead    = 0.005
)

type flowOverlay struct {
	swap   materialSwap
	arrows *render.Group
	parent *render.Group
}

func (o *flowOverlay) apply(dev *render.Device, t *Target, in *Inputs) error {
	n := t.Profile.Len()
	colors := flat(DefaultColor, n)
	if in.Mach.Aligned(n) {
		colors = colormap.Mach.Map(in.Mach)
	}
	if err := o.swap.apply(dev, t.Inner, broadcast(colors, t.cols())); err != nil {
		return err
	}

	mesh := streamlines(t.Profile.Outer)
	o.arrows = render.NewGroup("flow-arrows")
	o.arrows.Add(render.NewSolid("streamlines", dev.NewGeometry("streamlines", mesh), dev.NewMaterial("streamlines", colormap.Mach.Sonic())))
	o.parent = t.Group
	t.Group.AddGroup(o.arrows)
	return nil
}

func (o *flowOverlay) clear() error {
	var errs []error
	if o.arrows != nil {
		if o.parent != nil {
			o.parent.RemoveGroup(o.arrows)
		}
		errs = append(errs, o.arrows.Dispose())
		o.arrows, o.parent = nil, nil
	}
	errs = append(errs, o.swap.clear())
	return errors.Join(errs...)
}

// streamlines samples the outer wall at fixed angles, slightly lifted off
// the surface, and ends each line with an arrowhead oriented along its last
// two samples.
func streamlines(outer station.Curve) *geometry.Mesh {
	xs, rs := outer.Xs(), outer.Rs()
	x0, x1 := xs[0], xs[len(xs)-1]

	out := &geometry.Mesh{Primitive: geometry.Lines}
	for k := 0; k < flowArrowCount; k++ {
		theta := 2 * math.Pi * float64(k) / flowArrowCount
		s, c := math.Sincos(theta)
		pts := make([]math32.Vector3, flowArrowSamples)
		for i := range pts {
			x := x0 + (x1-x0)*float64(i)/float64(flowArrowSamples-1)
			r := flowArrowLift * station.Interp(xs, rs, x)
			pts[i] = math32.Vec3(float32(x), float32(r*c), float32(r*s))
		}
		out.Append(geometry.BuildPolyline(pts))
		out.Append(geometry.BuildArrows([]geometry.Arrow{{
			Tail: pts[len(pts)-2],
			Tip:  pts[len(pts)-1],
			Head: FlowArrowHead,
			Side: math32.Vec3(0, float32(c), float32(s)),
		}}))
	}
	return out
}

// coolingOverlay clips the mesh open, shows the channel cross-sections and
// animates the outer wall.
type coolingOverlay struct {
	swap     materialSwap
	builder  *cooling.Builder
	animator *cooling.Animator
	target   *Target
}

func (o *coolingOverlay) apply(dev *render.Device, t *Target, in *Inputs) error {
	cols := t.cols()
	base := broadcast(flat(cooling.NeutralColor, t.Profile.Len()), cols)
	if err := o.swap.apply(dev, t.Outer, base); err != nil {
		return err
	}
	field := cooling.Field{Profile: t.Profile, Temp: in.CoolantTemp, Heights: in.ChannelHeights}
	if err := o.builder.Apply(t.Group, field); err != nil {
		return err
	}
	o.target = t
	o.animator.Rebuild(o.builder.Config(), o.builder.Bands(), in.CoolantTemp)
	return o.animator.Shade(t.Outer.Geometry, t.Profile.Inner.Xs(), t.Segments)
}

// refresh rebuilds the coolant lookup table for a new tick.
func (o *coolingOverlay) refresh(in *Inputs) {
	if o.target == nil {
		return
	}
	o.animator.Rebuild(o.builder.Config(), o.builder.Bands(), in.CoolantTemp)
}

func (o *coolingOverlay) frame(dt float64) error {
	if o.target == nil {
		return nil
	}
	o.animator.Advance(dt)
	return o.animator.Shade(o.target.Outer.Geometry, o.target.Profile.Inner.Xs(), o.target.Segments)
}

func (o *coolingOverlay) clear() error {
	o.target = nil
	return errors.Join(o.builder.Clear(), o.swap.clear())
}
