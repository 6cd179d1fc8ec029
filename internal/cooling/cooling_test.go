package cooling

import (
	"math"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rocketviz/internal/colormap"
	"github.com/san-kum/rocketviz/internal/geometry"
	"github.com/san-kum/rocketviz/internal/render"
	"github.com/san-kum/rocketviz/internal/station"
	"github.com/san-kum/rocketviz/internal/tick"
)

func testProfile(n int) station.Profile {
	p := station.Profile{Inner: make(station.Curve, n), Outer: make(station.Curve, n)}
	for i := 0; i < n; i++ {
		x := 0.2 * float64(i) / float64(n-1)
		r := 0.03 + 0.01*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		p.Inner[i] = station.Point{X: x, R: r}
		p.Outer[i] = station.Point{X: x, R: r + 0.004}
	}
	return p
}

func rampTemps(n int) station.Array {
	t := make(station.Array, n)
	for i := range t {
		t[i] = 300 - 200*float64(i)/float64(n-1)
	}
	return t
}

func meshGroup(t *testing.T, dev *render.Device, p station.Profile) *render.Group {
	t.Helper()
	g := render.NewGroup("engine")
	outer, err := geometry.BuildRevolvedSurface(p.Outer, 32, geometry.Outward)
	require.NoError(t, err)
	inner, err := geometry.BuildRevolvedSurface(p.Inner, 32, geometry.Inward)
	require.NoError(t, err)
	g.Add(render.NewSolid("outer", dev.NewGeometry("outer", outer), dev.NewMaterial("outer", colorful.Color{R: 0.7})))
	g.Add(render.NewSolid("inner", dev.NewGeometry("inner", inner), dev.NewMaterial("inner", colorful.Color{R: 0.5})))
	return g
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := []Config{
		{Channels: 1, Width: 1e-3, Height: 1e-3, RibWidth: 1e-3},
		{Channels: 10, Width: 0, Height: 1e-3, RibWidth: 1e-3},
		{Channels: 10, Width: 1e-3, Height: math.NaN(), RibWidth: 1e-3},
		{Channels: 10, Width: 1e-3, Height: 1e-3, RibWidth: -1},
		{Channels: 10, Width: 1e-3, Height: 1e-3, RibWidth: 1e-3, HeightCP: [3]float64{-1, 0, 0}},
	}
	for _, c := range bad {
		assert.ErrorIs(t, c.Validate(), ErrConfig)
	}
}

func TestConfigFromParams(t *testing.T) {
	cfg := ConfigFromParams(DefaultConfig(), tick.Params{
		"n_channels":    60,
		"rib_width":     0.0008,
		"ch_height_cp1": 0.001,
	})
	assert.Equal(t, 60, cfg.Channels)
	assert.Equal(t, 0.0008, cfg.RibWidth)
	assert.Equal(t, 0.001, cfg.HeightCP[1])
	assert.Equal(t, DefaultConfig().Width, cfg.Width)
}

func TestHeights(t *testing.T) {
	cfg := DefaultConfig()
	for _, h := range cfg.Heights(5) {
		assert.Equal(t, cfg.Height, h)
	}

	cfg.HeightCP = [3]float64{0.003, 0.001, 0.002}
	h := cfg.Heights(5)
	assert.InDelta(t, 0.003, h[0], 1e-12)
	assert.InDelta(t, 0.002, h[1], 1e-12)
	assert.InDelta(t, 0.001, h[2], 1e-12)
	assert.InDelta(t, 0.002, h[4], 1e-12)
}

func TestRingSpansLeaveRoomForRibs(t *testing.T) {
	for _, channels := range []int{2, 3, 10, 40, 200} {
		for _, rib := range []float64{1e-7, 0.0008, 0.05, 10} {
			for _, width := range []float64{1e-4, 0.002, 1} {
				for _, r := range []float64{0.005, 0.02, 0.1} {
					cfg := Config{Channels: channels, Width: width, Height: 0.002, RibWidth: rib}
					arcs := cfg.RingArcs(r)
					require.Len(t, arcs, channels)

					sum := 0.0
					for _, a := range arcs {
						assert.Positive(t, a.Span())
						sum += a.Span()
					}
					assert.Less(t, sum, 2*math.Pi-cfg.RibSpan(r),
						"channels=%d rib=%g width=%g r=%g", channels, rib, width, r)

					for k := 1; k < len(arcs); k++ {
						gap := arcs[k].Theta0 - arcs[k-1].Theta1
						assert.GreaterOrEqual(t, gap, cfg.RibSpan(r)-1e-12)
					}
				}
			}
		}
	}
}

func TestComputeBands(t *testing.T) {
	p := testProfile(20)
	b := ComputeBands(p, DefaultConfig(), nil)
	require.Equal(t, 20, b.Len())

	for i := 0; i < b.Len(); i++ {
		wall := b.Outer[i] - b.Inner[i]
		assert.InDelta(t, HotWallFraction*wall, b.HotWall[i]-b.Inner[i], 1e-12)
		assert.GreaterOrEqual(t, b.Outer[i]-b.Channel[i], MinCloseout-1e-12)
		assert.GreaterOrEqual(t, b.Channel[i], b.HotWall[i])
	}

	thin := station.Profile{
		Inner: station.Curve{{X: 0, R: 0.01}, {X: 1, R: 0.01}},
		Outer: station.Curve{{X: 0, R: 0.0102}, {X: 1, R: 0.0102}},
	}
	tb := ComputeBands(thin, DefaultConfig(), nil)
	assert.Equal(t, tb.HotWall[0], tb.Channel[0])
}

func TestBuilderClipsAndRestores(t *testing.T) {
	dev := render.NewDevice()
	p := testProfile(30)
	mesh := meshGroup(t, dev, p)

	existing := render.Plane{Normal: math32.Vec3(1, 0, 0), Constant: 1}
	inner := mesh.Find("inner").Material
	inner.SetClipPlanes([]render.Plane{existing})
	baseline := dev.Live()

	b := NewBuilder(dev, DefaultConfig())
	require.NoError(t, b.Apply(mesh, Field{Profile: p, Temp: rampTemps(30)}))
	assert.True(t, b.Active())
	assert.Len(t, b.Groups(), 2)

	for _, m := range mesh.Materials() {
		assert.Contains(t, m.ClipPlanes, SectionPlane)
	}
	assert.Equal(t, []render.Plane{existing, SectionPlane}, inner.ClipPlanes)

	require.NoError(t, b.Clear())
	assert.False(t, b.Active())
	assert.Equal(t, baseline, dev.Live())
	assert.Equal(t, []render.Plane{existing}, inner.ClipPlanes)
	assert.Empty(t, mesh.Find("outer").Material.ClipPlanes)

	require.NoError(t, b.Clear())
	assert.Equal(t, baseline, dev.Live())
}

func TestBuilderFailedApplyRestoresClipping(t *testing.T) {
	dev := render.NewDevice()
	p := testProfile(30)
	mesh := meshGroup(t, dev, p)
	baseline := dev.Live()

	heights := DefaultConfig().Heights(30)
	heights[7] = math.NaN()

	b := NewBuilder(dev, DefaultConfig())
	err := b.Apply(mesh, Field{Profile: p, Heights: heights})
	assert.ErrorIs(t, err, station.ErrNonFinite)
	assert.False(t, b.Active())
	assert.Empty(t, b.Groups())
	assert.Equal(t, baseline, dev.Live())
	for _, m := range mesh.Materials() {
		assert.Empty(t, m.ClipPlanes)
	}

	require.NoError(t, b.Apply(mesh, Field{Profile: p}))
	require.NoError(t, b.Clear())
	assert.Equal(t, baseline, dev.Live())
}

func TestBuilderRepeatedApplyDoesNotLeak(t *testing.T) {
	dev := render.NewDevice()
	p := testProfile(30)
	mesh := meshGroup(t, dev, p)
	baseline := dev.Live()

	b := NewBuilder(dev, DefaultConfig())
	require.NoError(t, b.Apply(mesh, Field{Profile: p}))
	live := dev.Live()
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Apply(mesh, Field{Profile: p}))
		assert.Equal(t, live, dev.Live())
		assert.Len(t, mesh.Find("outer").Material.ClipPlanes, 1)
	}
	require.NoError(t, b.Clear())
	assert.Equal(t, baseline, dev.Live())
}

func TestSetStationRebuildsOnlyRing(t *testing.T) {
	dev := render.NewDevice()
	p := testProfile(30)
	b := NewBuilder(dev, DefaultConfig())
	require.NoError(t, b.Apply(meshGroup(t, dev, p), Field{Profile: p, Temp: rampTemps(30)}))

	cut := b.Groups()[0]
	cutGeom := cut.Find("channel+1").Geometry
	ringGeom := b.Groups()[1].Find("ring-wall").Geometry
	live := dev.Live()

	require.NoError(t, b.SetStation(12))
	assert.Equal(t, 12, b.Station())
	assert.Same(t, cut, b.Groups()[0])
	assert.Same(t, cutGeom, cut.Find("channel+1").Geometry)
	assert.False(t, cutGeom.Disposed())
	assert.True(t, ringGeom.Disposed())
	assert.Equal(t, live, dev.Live())

	ring := b.Groups()[1].Find("ring-wall").Geometry
	assert.InDelta(t, p.Inner[12].X, ring.Positions[0], 1e-6)

	assert.Error(t, b.SetStation(30))
	assert.Error(t, b.SetStation(-1))
}

func TestRingChannelColor(t *testing.T) {
	dev := render.NewDevice()
	p := testProfile(30)
	temps := rampTemps(30)
	b := NewBuilder(dev, DefaultConfig())
	require.NoError(t, b.SetStation(0))
	require.NoError(t, b.Apply(meshGroup(t, dev, p), Field{Profile: p, Temp: temps}))

	arcs := b.Groups()[1].Find("ring-channels")
	require.NotNil(t, arcs)
	assert.True(t, arcs.Material.VertexColors)
	want := colormap.Coolant.High()
	r, g, bl := colormap.Components(want)
	assert.Equal(t, []float32{r, g, bl}, arcs.Geometry.Colors[:3])
	assert.Len(t, b.Arcs(), DefaultConfig().Channels)

	require.NoError(t, b.Apply(meshGroup(t, dev, p), Field{Profile: p}))
	arcs = b.Groups()[1].Find("ring-channels")
	r, g, bl = colormap.Components(NeutralColor)
	assert.Equal(t, []float32{r, g, bl}, arcs.Geometry.Colors[:3])
}

func TestCutawayChannelUsesNearestStation(t *testing.T) {
	dev := render.NewDevice()
	p := testProfile(10)
	temps := rampTemps(10)
	b := NewBuilder(dev, DefaultConfig())
	require.NoError(t, b.Apply(meshGroup(t, dev, p), Field{Profile: p, Temp: temps}))

	band := b.Groups()[0].Find("channel+1")
	require.NotNil(t, band)
	assert.True(t, band.Material.VertexColors)

	colors := colormap.Coolant.Map(temps)
	xs := p.Inner.Xs()
	cells := len(xs) - 1
	for c := 0; c < cells; c++ {
		want := colors[xs.Nearest((xs[c]+xs[c+1])/2)]
		r, g, bl := colormap.Components(want)
		k := 3 * 4 * c
		assert.Equal(t, []float32{r, g, bl}, band.Geometry.Colors[k:k+3], "cell %d", c)
	}
}

func TestCutawayWithoutCoolantIsFlat(t *testing.T) {
	dev := render.NewDevice()
	p := testProfile(10)
	b := NewBuilder(dev, DefaultConfig())
	require.NoError(t, b.Apply(meshGroup(t, dev, p), Field{Profile: p, Temp: station.Array{1, 2}}))

	band := b.Groups()[0].Find("channel-1")
	require.NotNil(t, band)
	assert.False(t, band.Material.VertexColors)
	assert.False(t, band.Geometry.HasColors())
	assert.Equal(t, NeutralColor, band.Material.Color)
}

func TestCutawayArrowsPointUpstream(t *testing.T) {
	dev := render.NewDevice()
	p := testProfile(10)
	b := NewBuilder(dev, DefaultConfig())
	require.NoError(t, b.Apply(meshGroup(t, dev, p), Field{Profile: p}))

	arrows := b.Groups()[0].Find("flow-arrows").Geometry
	require.Equal(t, geometry.Lines, arrows.Primitive)
	// each arrow is tail, tip, two barbs
	for k := 0; k < arrows.VertexCount(); k += 4 {
		tail, tip := arrows.Positions[3*k], arrows.Positions[3*(k+1)]
		assert.Less(t, tip, tail)
	}
	assert.Equal(t, 2*arrowsPerHalf*4, arrows.VertexCount())
}

func TestApplyRejectsInvalidInput(t *testing.T) {
	dev := render.NewDevice()
	p := testProfile(10)
	mesh := meshGroup(t, dev, p)
	baseline := dev.Live()

	b := NewBuilder(dev, Config{Channels: 1, Width: 1, Height: 1, RibWidth: 1})
	assert.ErrorIs(t, b.Apply(mesh, Field{Profile: p}), ErrConfig)
	assert.Equal(t, baseline, dev.Live())

	b = NewBuilder(dev, DefaultConfig())
	short := station.Profile{Inner: p.Inner[:1], Outer: p.Outer[:1]}
	assert.ErrorIs(t, b.Apply(mesh, Field{Profile: short}), station.ErrTooFewStations)
	assert.Empty(t, mesh.Find("outer").Material.ClipPlanes)
}

func TestAnimator(t *testing.T) {
	p := testProfile(20)
	cfg := DefaultConfig()
	bands := ComputeBands(p, cfg, nil)
	temps := rampTemps(20)

	a := NewAnimator(cfg)
	assert.Equal(t, NeutralColor, a.LUT()[0])

	a.Rebuild(cfg, bands, temps)
	lut := a.LUT()
	assert.Equal(t, colormap.Coolant.High(), lut[0])
	assert.Equal(t, colormap.Coolant.Low(), lut[LUTSize-1])

	a.Rebuild(cfg, bands, nil)
	assert.Equal(t, NeutralColor, a.LUT()[LUTSize/2])
}

func TestAnimatorPulseTravelsUpstream(t *testing.T) {
	a := NewAnimator(DefaultConfig())
	a.Advance(0.05)
	v := a.Pulse(0.5)

	// the feature seen at u = 0.5 moves toward the injector
	a.Advance(0.1)
	assert.InDelta(t, v, a.Pulse(0.5-pulseSpeed*0.1), 1e-9)
	assert.NotEqual(t, v, a.Pulse(0.5))

	for i := 0; i < 1000; i++ {
		a.Advance(0.7)
		assert.GreaterOrEqual(t, a.Time(), 0.0)
		assert.Less(t, a.Time(), 1/(pulseSpeed*pulsesAlong))
	}
}

func TestAnimatorShade(t *testing.T) {
	dev := render.NewDevice()
	p := testProfile(12)
	cfg := DefaultConfig()
	bands := ComputeBands(p, cfg, nil)
	outer, err := geometry.BuildRevolvedSurface(p.Outer, 80, geometry.Outward)
	require.NoError(t, err)
	g := dev.NewGeometry("outer", outer)

	a := NewAnimator(cfg)
	a.Rebuild(cfg, bands, rampTemps(12))
	require.NoError(t, a.Shade(g, bands.X, 80))
	require.True(t, g.HasColors())

	assert.True(t, a.IsChannel(0, bands.ChannelMid()[0]))
	assert.False(t, a.IsChannel(cfg.Pitch()/2, bands.ChannelMid()[0]))

	// column 0 sits on a channel, the half-pitch column on a rib
	channel := g.Colors[0] + g.Colors[1] + g.Colors[2]
	ribCol := int(math.Round(float64(80) / float64(cfg.Channels) / 2))
	rib := g.Colors[3*ribCol] + g.Colors[3*ribCol+1] + g.Colors[3*ribCol+2]
	assert.Greater(t, channel, rib)

	assert.ErrorIs(t, a.Shade(g, bands.X[:5], 80), render.ErrAttributeSize)
}
