package viz

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"

	"github.com/san-kum/rocketviz/internal/metrics"
	"github.com/san-kum/rocketviz/internal/overlay"
	"github.com/san-kum/rocketviz/internal/render"
	"github.com/san-kum/rocketviz/internal/scene"
	"github.com/san-kum/rocketviz/internal/station"
	"github.com/san-kum/rocketviz/internal/tick"
)

const (
	canvasWidth     = 72
	canvasHeight    = 26
	panelWidth      = 44
	historyCapacity = 300
	maxFrameStep    = 0.1
)

type frameMsg time.Time

type dataMsg time.Time

type plotField struct {
	name string
	get  func(*tick.Payload) station.Array
}

var plotFields = []plotField{
	{"Wall temperature [K]", func(p *tick.Payload) station.Array { return p.Stations.WallTemp }},
	{"von Mises [MPa]", func(p *tick.Payload) station.Array { return p.Stations.VonMises }},
	{"Mach", func(p *tick.Payload) station.Array { return p.Stations.Mach }},
	{"Pressure [Pa]", func(p *tick.Payload) station.Array { return p.Stations.Pressure }},
	{"Coolant temperature [K]", func(p *tick.Payload) station.Array { return p.CoolantTemp() }},
}

// Model drives a scene from a tick source and draws it into a Braille
// canvas next to a telemetry panel.
type Model struct {
	scene  *scene.Scene
	driver *scene.Driver
	log    zerolog.Logger

	canvas *Canvas
	camera *Camera
	theme  Theme
	styles Styles
	budget *metrics.FrameBudget

	frameEvery time.Duration
	tickEvery  time.Duration
	lastFrame  time.Time

	running   bool
	exhausted bool
	showHelp  bool
	plot      int
	thrust    []float64
	err       error
}

func NewModel(sc *scene.Scene, src tick.Source, log zerolog.Logger) Model {
	cfg := sc.Config()
	return Model{
		scene:      sc,
		driver:     scene.NewDriver(sc, src),
		log:        log.With().Str("component", "viewer").Logger(),
		canvas:     NewCanvas(canvasWidth, canvasHeight),
		camera:     NewCamera(),
		theme:      Themes[0],
		styles:     NewStyles(Themes[0]),
		budget:     metrics.NewFrameBudget(cfg.FrameRate),
		frameEvery: seconds(cfg.FrameInterval()),
		tickEvery:  seconds(cfg.TickInterval()),
		running:    true,
		thrust:     make([]float64, 0, historyCapacity),
	}
}

// SetTheme picks the panel colors by name.
func (m *Model) SetTheme(name string) {
	m.theme = GetTheme(name)
	m.styles = NewStyles(m.theme)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return dataMsg(time.Now()) },
		m.nextFrame(),
	)
}

func (m Model) nextFrame() tea.Cmd {
	return tea.Tick(m.frameEvery, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) nextData() tea.Cmd {
	return tea.Tick(m.tickEvery, func(t time.Time) tea.Msg { return dataMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		w := max(msg.Width-panelWidth-6, 20)
		h := max(msg.Height-4, 8)
		m.canvas = NewCanvas(w, h)
	case dataMsg:
		if m.exhausted {
			return m, nil
		}
		if m.running {
			m.pull()
		}
		if m.exhausted {
			return m, nil
		}
		return m, m.nextData()
	case frameMsg:
		now := time.Time(msg)
		dt := 0.0
		if !m.lastFrame.IsZero() {
			dt = min(now.Sub(m.lastFrame).Seconds(), maxFrameStep)
		}
		m.lastFrame = now
		if m.running {
			if err := m.budget.Time(func() error { return m.scene.Frame(dt) }); err != nil {
				m.err = err
			}
		}
		m.draw()
		return m, m.nextFrame()
	}
	return m, nil
}

// pull fetches one tick and applies it. The camera is refitted whenever
// the tick rebuilt the mesh.
func (m *Model) pull() {
	p, rebuilt, err := m.driver.Pull()
	if errors.Is(err, io.EOF) {
		m.exhausted = true
		m.log.Info().Int("ticks", m.driver.Ticks).Msg("tick source exhausted")
		return
	}
	if rebuilt {
		m.fit()
	}
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	if len(m.thrust) == historyCapacity {
		m.thrust = m.thrust[1:]
	}
	m.thrust = append(m.thrust, p.Performance.ThrustN)
}

func (m *Model) fit() {
	if mesh := m.scene.Mesh(); mesh != nil {
		m.camera.Fit(Bounds([]*render.Group{mesh.Group}))
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "m", "tab":
		m.setMode(m.scene.Mode().Next())
	case "0", "1", "2", "3", "4":
		m.setMode(overlay.Mode(key[0] - '0'))
	case "[":
		m.moveSection(-1)
	case "]":
		m.moveSection(1)
	case "up", "k":
		m.scene.SetThrust(m.scene.Thrust() + 0.05)
	case "down", "j":
		m.scene.SetThrust(m.scene.Thrust() - 0.05)
	case "left", "h":
		m.camera.Orbit(-0.1, 0)
	case "right", "l":
		m.camera.Orbit(0.1, 0)
	case "w":
		m.camera.Orbit(0, 0.1)
	case "s":
		m.camera.Orbit(0, -0.1)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "f":
		m.fit()
	case "p":
		m.plot = (m.plot + 1) % len(plotFields)
	case "t":
		m.theme = NextTheme(m.theme)
		m.styles = NewStyles(m.theme)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) setMode(mode overlay.Mode) {
	m.err = m.scene.SetMode(mode)
}

func (m *Model) moveSection(step int) {
	b := m.scene.Cooling()
	if !b.Active() {
		return
	}
	m.err = m.scene.SetCrossSectionStation(b.Station() + step)
}

func (m *Model) draw() {
	m.canvas.Clear()
	Draw(m.canvas, m.camera, m.scene.Groups())
}

func (m Model) View() string {
	view := m.styles.Panel.Render(m.canvas.Render())
	return lipgloss.JoinHorizontal(lipgloss.Top, view, m.panel())
}

func (m Model) panel() string {
	s := m.styles
	md := m.scene.Metadata()
	var b strings.Builder

	b.WriteString(GradientText("ROCKETVIZ", m.theme.Primary, m.theme.Secondary) + "  ")
	switch {
	case m.exhausted:
		b.WriteString(s.Paused.Render("● END"))
	case m.running:
		b.WriteString(s.Running.Render("● LIVE"))
	default:
		b.WriteString(s.Paused.Render("❚❚ PAUSED"))
	}
	b.WriteString("\n\n")

	mode := md.Mode.String()
	if !md.Applied && md.Mode != overlay.None {
		mode += " (pending)"
	}
	fmt.Fprintln(&b, s.Metric("mode", "%s", mode))
	fmt.Fprintln(&b, s.Metric("mesh", "%d × %d", md.Stations, md.Segments))
	fmt.Fprintln(&b, s.Metric("material", "%s", m.scene.Material().Name))
	fmt.Fprintln(&b, s.Label.Render("thrust")+ProgressBar(m.scene.Thrust(), 20, m.theme))
	if c := m.scene.Cooling(); c.Active() {
		fmt.Fprintln(&b, s.Metric("section", "station %d", c.Station()))
	}
	vals := m.budget.Values()
	fmt.Fprintln(&b, s.Metric("frame", "%.2f ms (p95 %.2f)", vals["mean_frame_ms"], vals["p95_frame_ms"]))
	b.WriteString(Separator(panelWidth-4, m.theme) + "\n")

	if p := m.scene.Payload(); p != nil {
		fmt.Fprintln(&b, s.Metric("F", "%.0f N", p.Performance.ThrustN))
		fmt.Fprintln(&b, s.Metric("Isp", "%.1f s", p.Performance.Isp))
		fmt.Fprintln(&b, s.Metric("exit M", "%.2f", p.Performance.ExitMach))
		fmt.Fprintln(&b, s.Metric("min SF", "%.2f @ %d", p.Structural.MinSafetyFactor, p.Structural.MinSFStation))
		fmt.Fprintln(&b, s.Metric("max Tw", "%.0f K", p.Structural.MaxWallTemp))
		if len(m.thrust) > 1 {
			fmt.Fprintln(&b, s.Label.Render("history")+s.Graph.Render(Sparkline(m.thrust, 24)))
		}

		field := plotFields[m.plot]
		if data := field.get(p); len(data) > 1 {
			graph := asciigraph.Plot(data,
				asciigraph.Height(6),
				asciigraph.Width(panelWidth-14),
				asciigraph.Caption(field.name))
			b.WriteString(s.Graph.Render(graph) + "\n")
		}
		for _, w := range p.Warnings {
			fmt.Fprintln(&b, s.Warning.Render("⚠ "+w))
		}
	} else {
		fmt.Fprintln(&b, s.KeyHint.Render("waiting for first tick"))
	}

	if l, ok := m.scene.Legend(); ok {
		b.WriteString("\n" + l.Render(panelWidth-6) + "\n")
	}
	if m.err != nil {
		fmt.Fprintln(&b, s.Error.Render(m.err.Error()))
	}

	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(s.KeyHint.Render(strings.Join([]string{
			"space pause   m/tab next view   0-4 view",
			"[ ] section   ↑↓ thrust   ←→ w s orbit",
			"+/- zoom   f fit   p plot   t theme   q quit",
		}, "\n")))
	} else {
		b.WriteString(s.KeyHint.Render("? help"))
	}
	return s.Panel.Width(panelWidth).Render(b.String())
}
