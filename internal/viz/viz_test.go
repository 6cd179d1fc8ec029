package viz

import (
	"math"
	"strings"
	"testing"
	"time"

	"cogentcore.org/core/math32"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rocketviz/internal/config"
	"github.com/san-kum/rocketviz/internal/geometry"
	"github.com/san-kum/rocketviz/internal/overlay"
	"github.com/san-kum/rocketviz/internal/render"
	"github.com/san-kum/rocketviz/internal/scene"
	"github.com/san-kum/rocketviz/internal/tick"
)

var (
	red  = colorful.Color{R: 1}
	blue = colorful.Color{B: 1}
)

func TestCanvasDepthTest(t *testing.T) {
	c := NewCanvas(4, 2)
	w, h := c.Dots()
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)

	assert.True(t, c.Set(3, 5, 2, red))
	assert.True(t, c.Lit(3, 5))
	assert.True(t, c.Set(3, 5, 1, blue), "nearer dot wins")
	assert.False(t, c.Set(3, 5, 3, red), "farther dot is hidden")
	assert.Equal(t, []Pixel{{X: 3, Y: 5, Color: blue}}, c.Pixels())

	assert.False(t, c.Set(-1, 0, 0, red))
	assert.False(t, c.Set(8, 0, 0, red))
	assert.False(t, c.Lit(100, 100))

	c.Clear()
	assert.Empty(t, c.Pixels())
	assert.Equal(t, strings.Repeat(string(rune(blank)), 4)+"\n", strings.SplitAfter(c.String(), "\n")[0])
}

func TestCanvasBraillePattern(t *testing.T) {
	c := NewCanvas(1, 1)
	c.Set(0, 0, 1, red)
	c.Set(1, 3, 1, red)
	assert.Equal(t, rune(0x2800|0x1|0x80), c.Grid[0][0])
}

func TestDrawLineInterpolatesDepth(t *testing.T) {
	c := NewCanvas(10, 1)
	c.DrawLine(0, 0, 1, 10, 0, 2, red)
	for x := 0; x <= 10; x++ {
		assert.True(t, c.Lit(x, 0), "x=%d", x)
	}
	// a nearer dot at the far end still wins, a farther one at the near end
	// does not
	assert.True(t, c.Set(10, 0, 1.5, blue))
	assert.False(t, c.Set(0, 0, 1.5, blue))
}

func TestCameraProjectsTargetToCenter(t *testing.T) {
	cam := NewCamera()
	cam.Target = math32.Vec3(1, 2, 3)
	cam.Distance = 5

	x, y, depth, ok := cam.Project(cam.Target, 100, 60)
	require.True(t, ok)
	assert.Equal(t, 50, x)
	assert.Equal(t, 30, y)
	assert.InDelta(t, 5, depth, 1e-5)

	cam.Yaw, cam.Pitch = 0, 0
	_, _, _, ok = cam.Project(math32.Vec3(1, 2, 9), 100, 60)
	assert.False(t, ok, "behind the camera")

	xr, _, _, _ := cam.Project(math32.Vec3(2, 2, 3), 100, 60)
	_, yu, _, _ := cam.Project(math32.Vec3(1, 3, 3), 100, 60)
	assert.Greater(t, xr, 50, "+X is to the right")
	assert.Less(t, yu, 30, "+Y is up")
}

func TestCameraControls(t *testing.T) {
	cam := NewCamera()
	cam.Orbit(0, 10)
	assert.InDelta(t, 1.5, cam.Pitch, 1e-6)
	for i := 0; i < 50; i++ {
		cam.ZoomIn()
	}
	assert.InDelta(t, 10, cam.Zoom, 1e-5)
	for i := 0; i < 50; i++ {
		cam.ZoomOut()
	}
	assert.InDelta(t, 0.1, cam.Zoom, 1e-5)

	var b math32.Box3
	b.SetEmpty()
	cam.Fit(b)
	assert.Equal(t, float32(1), cam.Distance, "empty box leaves the camera alone")

	cam.Fit(math32.B3(0, -1, -1, 4, 1, 1))
	assert.Equal(t, math32.Vec3(2, 0, 0), cam.Target)
	assert.Greater(t, cam.Distance, float32(2))
}

func TestCameraEyeLooksAtTarget(t *testing.T) {
	cam := NewCamera()
	cam.Target = math32.Vec3(1, 0, 0)
	cam.Distance = 4
	cam.Yaw, cam.Pitch = 0, 0
	assert.Equal(t, math32.Vec3(1, 0, 4), cam.Eye())

	cam.Yaw, cam.Pitch = 0.7, -0.4
	v := cam.toView(cam.Eye().Sub(cam.Target))
	assert.InDelta(t, 0, v.X, 1e-5)
	assert.InDelta(t, 0, v.Y, 1e-5)
	assert.InDelta(t, 4, v.Z, 1e-5)

	cam.Zoom = 2
	assert.InDelta(t, 2, cam.Eye().Sub(cam.Target).Length(), 1e-5)
}

func TestDrawFillsAnnulus(t *testing.T) {
	dev := render.NewDevice()
	mesh, err := geometry.BuildEndCap(0, 0.5, 1, 32, geometry.FacingUpstream)
	require.NoError(t, err)
	g := render.NewGroup("cap")
	g.Add(render.NewSolid("cap", dev.NewGeometry("cap", mesh), dev.NewMaterial("cap", red)))

	cam := NewCamera()
	cam.Yaw, cam.Pitch = math.Pi/2, 0
	cam.Fit(Bounds([]*render.Group{g}))

	c := NewCanvas(30, 15)
	Draw(c, cam, []*render.Group{g})
	w, h := c.Dots()

	assert.NotEmpty(t, c.Pixels())
	assert.False(t, c.Lit(w/2, h/2), "the bore stays empty")
	for _, p := range c.Pixels() {
		assert.Equal(t, red, p.Color)
	}

	g.Solids[0].Visible = false
	c.Clear()
	Draw(c, cam, []*render.Group{g})
	assert.Empty(t, c.Pixels())
}

func TestDrawSkipsClippedGeometry(t *testing.T) {
	dev := render.NewDevice()
	mesh, err := geometry.BuildEndCap(0, 0.5, 1, 32, geometry.FacingUpstream)
	require.NoError(t, err)
	mat := dev.NewMaterial("cap", red)
	g := render.NewGroup("cap")
	g.Add(render.NewSolid("cap", dev.NewGeometry("cap", mesh), mat))

	cam := NewCamera()
	cam.Yaw, cam.Pitch = math.Pi/2, 0
	cam.Fit(Bounds([]*render.Group{g}))

	full := NewCanvas(30, 15)
	Draw(full, cam, []*render.Group{g})

	mat.SetClipPlanes([]render.Plane{{Normal: math32.Vec3(0, 0, 1)}})
	half := NewCanvas(30, 15)
	Draw(half, cam, []*render.Group{g})

	assert.NotEmpty(t, half.Pixels())
	assert.Less(t, len(half.Pixels()), len(full.Pixels()))
}

func TestDrawPoints(t *testing.T) {
	dev := render.NewDevice()
	mesh := geometry.BuildPoints(2)
	mesh.Positions[3] = 1
	mesh.Colors = []float32{1, 0, 0, 0, 0, 1}
	g := render.NewGroup("pts")
	g.Add(render.NewSolid("pts", dev.NewGeometry("pts", mesh), dev.NewVertexColorMaterial("pts")))

	cam := NewCamera()
	cam.Yaw, cam.Pitch = 0, 0
	cam.Target = math32.Vec3(0.5, 0, 0)
	cam.Distance = 3

	c := NewCanvas(20, 10)
	Draw(c, cam, []*render.Group{g})
	px := c.Pixels()
	require.Len(t, px, 2)
	assert.Equal(t, red, px[0].Color)
	assert.Equal(t, blue, px[1].Color)
}

func TestSparklineAndBars(t *testing.T) {
	assert.Equal(t, "▁▁█", Sparkline([]float64{0, 0, 1}, 3))
	assert.Equal(t, "───", Sparkline(nil, 3))
	assert.Len(t, []rune(Sparkline([]float64{1, 2}, 6)), 6)
	assert.Equal(t, 10, strings.Count(ProgressBar(1.5, 10, ThemeMono), "█"))
	assert.Equal(t, 0, strings.Count(ProgressBar(-1, 10, ThemeMono), "█"))
}

func TestThemes(t *testing.T) {
	assert.Equal(t, "blueprint", GetTheme("blueprint").Name)
	assert.Equal(t, Themes[0].Name, GetTheme("nope").Name)
	assert.Equal(t, Themes[0].Name, NextTheme(Themes[len(Themes)-1]).Name)
	assert.Equal(t, []string{"exhaust", "blueprint", "mono"}, ThemeNames())
}

func newModel(t *testing.T, src tick.Source) (Model, *scene.Scene) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Segments = 16
	cfg.Engine.Stations = 30
	cfg.Particles = config.ParticleConfig{Plume: 100, Flow: 100}
	cfg.Mode = "thermal"
	sc, err := scene.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sc.Close() })
	return NewModel(sc, src, zerolog.Nop()), sc
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelAppliesTicksAndReappliesAfterRebuild(t *testing.T) {
	e := tick.DefaultEngine()
	e.Stations = 30
	m, sc := newModel(t, tick.NewSweep(e))

	m, cmd := update(t, m, dataMsg(time.Now()))
	assert.NotNil(t, cmd)
	require.NotNil(t, sc.Mesh())
	assert.Equal(t, 30, sc.Metadata().Stations)
	assert.True(t, sc.Metadata().Applied, "overlay re-applied after the first rebuild")
	assert.Equal(t, 1, m.driver.Ticks)
	assert.Len(t, m.thrust, 1)

	mesh := sc.Mesh()
	m, _ = update(t, m, dataMsg(time.Now()))
	assert.Same(t, mesh, sc.Mesh(), "unchanged profile keeps the mesh")
	assert.Equal(t, 2, m.driver.Ticks)
}

func TestModelKeys(t *testing.T) {
	e := tick.DefaultEngine()
	e.Stations = 30
	m, sc := newModel(t, tick.NewSweep(e))
	m, _ = update(t, m, dataMsg(time.Now()))

	m, _ = update(t, m, key("m"))
	assert.Equal(t, overlay.Stress, sc.Mode())
	m, _ = update(t, m, key("tab"))
	assert.Equal(t, overlay.Flow, sc.Mode())
	m, _ = update(t, m, key("4"))
	assert.Equal(t, overlay.Cooling, sc.Mode())
	require.NoError(t, m.err)

	station := sc.Cooling().Station()
	m, _ = update(t, m, key("]"))
	assert.Equal(t, station+1, sc.Cooling().Station())
	m, _ = update(t, m, key("["))
	assert.Equal(t, station, sc.Cooling().Station())

	before := sc.Thrust()
	m, _ = update(t, m, key("j"))
	assert.InDelta(t, max(before-0.05, 0), sc.Thrust(), 1e-9)

	m, _ = update(t, m, key(" "))
	assert.False(t, m.running)
	m, _ = update(t, m, dataMsg(time.Now()))
	assert.Equal(t, 1, m.driver.Ticks, "paused viewer does not pull")

	m, _ = update(t, m, key("p"))
	assert.Equal(t, 1, m.plot)
	m, _ = update(t, m, key("t"))
	assert.Equal(t, Themes[1].Name, m.theme.Name)

	_, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelFrameAdvancesScene(t *testing.T) {
	e := tick.DefaultEngine()
	e.Stations = 30
	m, sc := newModel(t, tick.NewSweep(e))
	m, _ = update(t, m, dataMsg(time.Now()))

	start := time.Now()
	m, cmd := update(t, m, frameMsg(start))
	assert.NotNil(t, cmd)
	m, _ = update(t, m, frameMsg(start.Add(16*time.Millisecond)))
	assert.Equal(t, int64(2), sc.Frames())
	assert.NotEmpty(t, m.canvas.Pixels())

	view := m.View()
	assert.Contains(t, view, "thermal")
	assert.Contains(t, view, "Wall temperature")
}

func TestModelStopsWhenReplayEnds(t *testing.T) {
	e := tick.DefaultEngine()
	e.Stations = 30
	p, err := tick.Synthesize(e)
	require.NoError(t, err)
	m, _ := newModel(t, tick.NewReplay([]*tick.Payload{p}, false))

	m, cmd := update(t, m, dataMsg(time.Now()))
	assert.NotNil(t, cmd)
	m, cmd = update(t, m, dataMsg(time.Now()))
	assert.Nil(t, cmd)
	assert.True(t, m.exhausted)
	assert.Equal(t, 1, m.driver.Ticks)
}

func TestModelResizesCanvas(t *testing.T) {
	m, _ := newModel(t, tick.NewReplay(nil, false))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 150, Height: 40})
	assert.Equal(t, 150-panelWidth-6, m.canvas.Width)
	assert.Equal(t, 36, m.canvas.Height)
}
