package scene

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rocketviz/internal/config"
	"github.com/san-kum/rocketviz/internal/cooling"
	"github.com/san-kum/rocketviz/internal/geometry"
	"github.com/san-kum/rocketviz/internal/overlay"
	"github.com/san-kum/rocketviz/internal/render"
	"github.com/san-kum/rocketviz/internal/station"
	"github.com/san-kum/rocketviz/internal/tick"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Segments = 24
	cfg.Particles = config.ParticleConfig{Plume: 300, Flow: 200}
	cfg.Engine.Stations = 40
	return cfg
}

func newScene(t *testing.T, cfg *config.Config) *Scene {
	t.Helper()
	s, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func synth(t *testing.T, edit func(*tick.Engine)) *tick.Payload {
	t.Helper()
	e := tick.DefaultEngine()
	e.Stations = 40
	if edit != nil {
		edit(&e)
	}
	p, err := tick.Synthesize(e)
	require.NoError(t, err)
	return p
}

// idle is the live count with no mesh and no overlay: both particle
// geometries and materials plus the flow lookup texture.
const idle = 5

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = "xray"
	_, err := New(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewDoesNotRetainConfig(t *testing.T) {
	cfg := testConfig()
	s := newScene(t, cfg)
	cfg.Segments = 3
	assert.Equal(t, 24, s.Config().Segments)
}

func TestRebuildMesh(t *testing.T) {
	s := newScene(t, testConfig())
	assert.Equal(t, idle, s.Device().Live())

	p := synth(t, nil)
	require.NoError(t, s.RebuildMesh(p))

	md := s.Metadata()
	assert.Equal(t, 40, md.Stations)
	assert.Equal(t, 24, md.Segments)

	m := s.Mesh()
	require.NotNil(t, m)
	assert.Equal(t, 40*25, m.Outer.Geometry.VertexCount())
	for _, name := range []string{SolidOuter, SolidInner, SolidChamber, SolidNozzle, SolidInjector, SolidMarkers} {
		assert.NotNil(t, m.Group.Find(name), name)
	}
	assert.Equal(t, geometry.Points, s.Plume().Solid().Geometry.Primitive)
}

func TestRebuildDisposesPreviousMesh(t *testing.T) {
	s := newScene(t, testConfig())
	p := synth(t, nil)
	require.NoError(t, s.RebuildMesh(p))
	live := s.Device().Live()
	first := s.Mesh()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RebuildMesh(p))
	}
	assert.Equal(t, live, s.Device().Live())
	assert.True(t, first.Outer.Geometry.Disposed())
}

func TestRebuildWithoutOrificesHasNoMarkers(t *testing.T) {
	s := newScene(t, testConfig())
	p := synth(t, nil)
	p.Orifices = nil
	require.NoError(t, s.RebuildMesh(p))
	assert.Nil(t, s.Mesh().Group.Find(SolidMarkers))
}

func TestRebuildWithTooFewStationsLeavesNoMesh(t *testing.T) {
	s := newScene(t, testConfig())
	require.NoError(t, s.RebuildMesh(synth(t, nil)))

	bad := &tick.Payload{Stations: tick.Stations{
		X:      station.Array{0},
		RInner: station.Array{0.02},
		ROuter: station.Array{0.025},
	}}
	err := s.RebuildMesh(bad)
	assert.ErrorIs(t, err, station.ErrTooFewStations)
	assert.Nil(t, s.Mesh())
	assert.Equal(t, idle, s.Device().Live())
	assert.Zero(t, s.Metadata().Stations)

	require.NoError(t, s.SetMode(overlay.Thermal))
	assert.False(t, s.Metadata().Applied)
	assert.NoError(t, s.Reapply())
}

func TestRebuildRejectsInvertedWall(t *testing.T) {
	s := newScene(t, testConfig())

	bad := &tick.Payload{Stations: tick.Stations{
		X:      station.Array{0, 0.1, 0.2},
		RInner: station.Array{0.02, 0.03, 0.02},
		ROuter: station.Array{0.025, 0.01, 0.025},
	}}
	err := s.RebuildMesh(bad)
	assert.ErrorIs(t, err, station.ErrInvertedWall)
	assert.Nil(t, s.Mesh())
	assert.Equal(t, idle, s.Device().Live())

	p, err := station.NewProfile(bad.Stations.X, bad.Stations.RInner, bad.Stations.ROuter)
	require.NoError(t, err)
	_, err = BuildEngineMesh(s.Device(), p, nil, 8, HotGasColor)
	assert.ErrorIs(t, err, station.ErrInvertedWall)
	assert.Equal(t, idle, s.Device().Live())
}

func TestApplyTickRebuildsOnlyOnProfileChange(t *testing.T) {
	s := newScene(t, testConfig())
	require.NoError(t, s.ApplyTick(synth(t, nil)))
	first := s.Mesh()

	require.NoError(t, s.ApplyTick(synth(t, func(e *tick.Engine) { e.ChamberPressure = 4e6 })))
	assert.Same(t, first, s.Mesh())

	require.NoError(t, s.ApplyTick(synth(t, func(e *tick.Engine) { e.ExitRadius = 0.06 })))
	assert.NotSame(t, first, s.Mesh())
}

func TestApplyTickRejectsMisalignedArrays(t *testing.T) {
	s := newScene(t, testConfig())
	p := synth(t, nil)
	p.Stations.Mach = p.Stations.Mach[:10]
	assert.ErrorIs(t, s.ApplyTick(p), station.ErrLengthMismatch)
	assert.Nil(t, s.Mesh())
}

func TestOverlayNeedsExplicitReapplyAfterRebuild(t *testing.T) {
	s := newScene(t, testConfig())
	require.NoError(t, s.ApplyTick(synth(t, nil)))
	require.NoError(t, s.SetMode(overlay.Thermal))
	assert.True(t, s.Metadata().Applied)
	assert.True(t, s.Mesh().Outer.Material.VertexColors)

	require.NoError(t, s.ApplyTick(synth(t, func(e *tick.Engine) { e.ExitRadius = 0.06 })))
	assert.Equal(t, overlay.Thermal, s.Mode())
	assert.False(t, s.Metadata().Applied)
	assert.False(t, s.Mesh().Outer.Material.VertexColors)

	require.NoError(t, s.Reapply())
	assert.True(t, s.Metadata().Applied)
	assert.True(t, s.Mesh().Outer.Material.VertexColors)
}

func TestOverlayRecolorsOnUnchangedMesh(t *testing.T) {
	s := newScene(t, testConfig())
	require.NoError(t, s.ApplyTick(synth(t, nil)))
	require.NoError(t, s.SetMode(overlay.Stress))
	before := append([]float32(nil), s.Mesh().Outer.Geometry.Colors...)
	live := s.Device().Live()

	require.NoError(t, s.ApplyTick(synth(t, func(e *tick.Engine) { e.ChamberPressure = 6e6 })))
	assert.True(t, s.Metadata().Applied)
	assert.Equal(t, live, s.Device().Live())
	assert.NotEqual(t, before, s.Mesh().Outer.Geometry.Colors)
}

func TestModeSwitchingDoesNotLeak(t *testing.T) {
	s := newScene(t, testConfig())
	require.NoError(t, s.ApplyTick(synth(t, nil)))
	live := s.Device().Live()

	for i := 0; i < 3; i++ {
		for _, m := range overlay.Modes() {
			require.NoError(t, s.SetMode(m))
			require.NoError(t, s.Frame(1.0/60))
		}
	}
	require.NoError(t, s.SetMode(overlay.None))
	assert.Equal(t, live, s.Device().Live())
}

func TestCoolingView(t *testing.T) {
	cfg := testConfig()
	cfg.CrossSection = 12
	s := newScene(t, cfg)
	require.NoError(t, s.ApplyTick(synth(t, nil)))
	require.NoError(t, s.SetMode(overlay.Cooling))

	assert.Len(t, s.Groups(), 4)
	assert.Equal(t, 12, s.Cooling().Station())
	for _, m := range s.Mesh().Group.Materials() {
		assert.Contains(t, m.ClipPlanes, cooling.SectionPlane)
	}

	require.NoError(t, s.SetCrossSectionStation(30))
	assert.Equal(t, 30, s.Config().CrossSection)
	assert.Error(t, s.SetCrossSectionStation(40))

	next := cooling.DefaultConfig()
	next.Channels = 12
	require.NoError(t, s.SetCoolingConfig(next))
	assert.Len(t, s.Cooling().Arcs(), 12)

	_, ok := s.Legend()
	assert.True(t, ok)
}

func TestSetMaterial(t *testing.T) {
	s := newScene(t, testConfig())
	require.NoError(t, s.ApplyTick(synth(t, nil)))
	require.NoError(t, s.SetMaterial("inconel718"))
	assert.Equal(t, 1034.0, s.Material().YieldMPa)
	assert.Equal(t, "#8c8c8c", s.Mesh().Wall.Color.Hex())
	assert.Error(t, s.SetMaterial("wood"))
}

func TestFrameAdvancesParticles(t *testing.T) {
	s := newScene(t, testConfig())
	require.NoError(t, s.ApplyTick(synth(t, nil)))
	assert.True(t, s.Plume().Ready())
	assert.True(t, s.Flow().Ready())

	before := s.Plume().Particles()[0].Life
	require.NoError(t, s.Frame(0.01))
	assert.NotEqual(t, before, s.Plume().Particles()[0].Life)
	assert.Equal(t, int64(1), s.Frames())
	assert.Error(t, s.Frame(-1))
}

func TestSetThrustClamps(t *testing.T) {
	s := newScene(t, testConfig())
	s.SetThrust(3)
	assert.Equal(t, 1.0, s.Thrust())
	s.SetThrust(-1)
	assert.Equal(t, 0.0, s.Thrust())
	assert.Equal(t, 0.0, s.Plume().Inputs().Thrust)
}

func TestVacuumPlumeIsWider(t *testing.T) {
	sea := newScene(t, testConfig())
	require.NoError(t, sea.ApplyTick(synth(t, nil)))

	cfg := testConfig()
	cfg.Engine.AmbientPressure = 0
	vac := newScene(t, cfg)
	require.NoError(t, vac.ApplyTick(synth(t, nil)))

	assert.Greater(t, vac.Plume().Shape().HalfAngle, sea.Plume().Shape().HalfAngle)
}

func TestCloseReleasesEverything(t *testing.T) {
	s, err := New(testConfig(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.ApplyTick(synth(t, nil)))
	require.NoError(t, s.SetMode(overlay.Flow))

	require.NoError(t, s.Close())
	assert.Zero(t, s.Device().Live())
	assert.Zero(t, s.Device().LiveOf(render.KindTexture))
	assert.NoError(t, s.Close())
	assert.ErrorIs(t, s.Frame(0.1), ErrClosed)
	assert.ErrorIs(t, s.ApplyTick(synth(t, nil)), ErrClosed)
}
