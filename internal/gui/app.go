package gui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"cogentcore.org/core/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/rs/zerolog"

	"github.com/san-kum/rocketviz/internal/overlay"
	"github.com/san-kum/rocketviz/internal/render"
	"github.com/san-kum/rocketviz/internal/scene"
	"github.com/san-kum/rocketviz/internal/tick"
	"github.com/san-kum/rocketviz/internal/viz"
)

// Theme Colors (Monochrome, the overlays bring the color)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(30, 30, 30, 255)
	ColWarn    = rl.NewColor(230, 160, 40, 255)
)

const (
	screenWidth  = 1280
	screenHeight = 720
	fontPath     = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"

	// worldSize is the length the engine is scaled to in view units.
	worldSize    = 10
	maxHistory   = 200
	thrustStep   = 0.25
	orbitRate    = 0.4
	dragRate     = 0.01
	maxFrameStep = 0.1
)

type App struct {
	Scene     *scene.Scene
	Driver    *scene.Driver
	Camera    rl.Camera3D
	View      *viz.Camera
	Font      rl.Font
	Running   bool
	Orbit     bool
	ShowHelp  bool
	Telemetry []float64 // Ring buffer of thrust [N]

	log       zerolog.Logger
	center    math32.Vector3
	scale     float32
	tickEvery float64
	sinceTick float64
	exhausted bool
	quit      bool
	err       error
}

// initWindow opens a 1280×720 window titled "rocketviz" with MSAA, caps the
// frame rate at the configured rate and disables the default exit key.
func initWindow(fps float64) {
	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(screenWidth, screenHeight, "rocketviz")
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

// loadFont loads Liberation Mono when it is installed and falls back to
// raylib's built-in font otherwise.
func loadFont() rl.Font {
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	if font.Texture.ID == 0 {
		return rl.GetFontDefault()
	}
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func NewApp(sc *scene.Scene, src tick.Source, log zerolog.Logger) *App {
	view := viz.NewCamera()
	view.Distance = worldSize / 2 / math32.Tan(view.FOV/2)
	a := &App{
		Scene:  sc,
		Driver: scene.NewDriver(sc, src),
		Camera: rl.NewCamera3D(
			rl.NewVector3(0, 0, worldSize),
			rl.NewVector3(0, 0, 0),
			rl.NewVector3(0, 1, 0),
			math32.RadToDeg(view.FOV),
			rl.CameraPerspective,
		),
		View:      view,
		Font:      loadFont(),
		Running:   true,
		Telemetry: make([]float64, 0, maxHistory),
		log:       log.With().Str("component", "gui").Logger(),
		scale:     1,
		tickEvery: sc.Config().TickInterval(),
	}
	a.syncCamera()
	return a
}

// Run opens the window and blocks until it is closed. The scene is not
// closed; that stays with the caller.
func Run(sc *scene.Scene, src tick.Source, log zerolog.Logger) error {
	initWindow(sc.Config().FrameRate)
	defer rl.CloseWindow()
	app := NewApp(sc, src, log)
	app.pull()
	app.RunLoop()
	return app.err
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && !a.quit {
		a.Update()
		a.Draw()
	}
}

// pull applies one tick, refitting the view when the mesh was rebuilt.
func (a *App) pull() {
	p, rebuilt, err := a.Driver.Pull()
	if errors.Is(err, io.EOF) {
		a.exhausted = true
		a.log.Info().Int("ticks", a.Driver.Ticks).Msg("tick source exhausted")
		return
	}
	if rebuilt {
		a.fit()
	}
	if err != nil {
		a.err = err
		a.log.Error().Err(err).Msg("tick rejected")
		return
	}
	a.err = nil
	if len(a.Telemetry) == maxHistory {
		a.Telemetry = a.Telemetry[1:]
	}
	a.Telemetry = append(a.Telemetry, p.Performance.ThrustN)
}

// fit centers the engine at the origin and scales it to worldSize.
func (a *App) fit() {
	mesh := a.Scene.Mesh()
	if mesh == nil {
		return
	}
	b := viz.Bounds([]*render.Group{mesh.Group})
	if b.IsEmpty() {
		return
	}
	a.center = b.Center()
	a.scale = worldSize / max(b.Size().Length(), 1e-6)
	a.View.Zoom = 1
	a.syncCamera()
}

// syncCamera moves the raylib camera to the orbit camera's eye.
func (a *App) syncCamera() {
	eye, target := a.View.Eye(), a.View.Target
	a.Camera.Position = rl.NewVector3(eye.X, eye.Y, eye.Z)
	a.Camera.Target = rl.NewVector3(target.X, target.Y, target.Z)
}

// steer orbits on left drag and the arrow keys and zooms on the wheel.
func (a *App) steer(dt float32) {
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		a.View.Orbit(-d.X*dragRate, d.Y*dragRate)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		a.View.Orbit(-orbitRate*2*dt, 0)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		a.View.Orbit(orbitRate*2*dt, 0)
	}
	if a.Orbit {
		a.View.Orbit(orbitRate*dt, 0)
	}
	switch wheel := rl.GetMouseWheelMove(); {
	case wheel > 0:
		a.View.ZoomIn()
	case wheel < 0:
		a.View.ZoomOut()
	}
	a.syncCamera()
}

// world maps a scene position into view units.
func (a *App) world(v math32.Vector3) rl.Vector3 {
	w := v.Sub(a.center).MulScalar(a.scale)
	return rl.NewVector3(w.X, w.Y, w.Z)
}

func (a *App) setMode(m overlay.Mode) {
	if err := a.Scene.SetMode(m); err != nil {
		a.err = err
		return
	}
	a.log.Debug().Str("mode", m.String()).Msg("view changed")
}

func (a *App) moveSection(d int) {
	md := a.Scene.Metadata()
	if md.Stations == 0 {
		return
	}
	i := min(max(a.Scene.Cooling().Station()+d, 0), md.Stations-1)
	if err := a.Scene.SetCrossSectionStation(i); err != nil {
		a.err = err
	}
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		a.quit = true
		return
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyM) || rl.IsKeyPressed(rl.KeyTab) {
		a.setMode(a.Scene.Mode().Next())
	}
	for i, key := range []int32{rl.KeyZero, rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour} {
		if rl.IsKeyPressed(key) {
			a.setMode(overlay.Mode(i))
		}
	}
	if rl.IsKeyPressed(rl.KeyLeftBracket) {
		a.moveSection(-1)
	}
	if rl.IsKeyPressed(rl.KeyRightBracket) {
		a.moveSection(1)
	}
	if rl.IsKeyPressed(rl.KeyO) {
		a.Orbit = !a.Orbit
	}
	if rl.IsKeyPressed(rl.KeyF) {
		a.fit()
	}
	if rl.IsKeyPressed(rl.KeySlash) {
		a.ShowHelp = !a.ShowHelp
	}

	frame := rl.GetFrameTime()
	a.steer(frame)
	dt := float64(frame)
	if rl.IsKeyDown(rl.KeyUp) {
		a.Scene.SetThrust(a.Scene.Thrust() + thrustStep*dt)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		a.Scene.SetThrust(a.Scene.Thrust() - thrustStep*dt)
	}

	if !a.Running {
		return
	}
	a.sinceTick += dt
	for !a.exhausted && a.sinceTick >= a.tickEvery {
		a.sinceTick -= a.tickEvery
		a.pull()
	}
	if err := a.Scene.Frame(min(dt, maxFrameStep)); err != nil {
		a.err = err
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.CustomGrid(20, worldSize/10)
	rl.BeginMode3D(a.Camera)
	a.drawGroups(a.Scene.Groups())
	rl.EndMode3D()
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	md := a.Scene.Metadata()
	a.drawText("rocketviz", 30, 30, 24, ColSelect)
	mode := md.Mode.String()
	if md.Mode != overlay.None && !md.Applied {
		mode += " (pending)"
	}
	a.drawText(fmt.Sprintf(":: %s", mode), 180, 34, 16, ColText)

	status, col := "RUNNING", ColSelect
	switch {
	case a.exhausted:
		status, col = "REPLAY DONE", ColTextDim
	case !a.Running:
		status, col = "PAUSED", ColTextDim
	}
	a.drawText(status, int(rl.GetScreenWidth())-160, 30, 16, col)

	y := 70
	line := func(format string, args ...any) {
		a.drawText(fmt.Sprintf(format, args...), 30, y, 14, ColText)
		y += 20
	}
	line("mesh      %d x %d", md.Stations, md.Segments)
	line("material  %s", a.Scene.Material().Name)
	line("throttle  %3.0f%%", a.Scene.Thrust()*100)
	if md.Mode == overlay.Cooling {
		line("section   station %d", a.Scene.Cooling().Station())
	}
	if p := a.Scene.Payload(); p != nil {
		line("thrust    %.1f kN", p.Performance.ThrustN/1e3)
		line("Isp       %.1f s", p.Performance.Isp)
		line("min SF    %.2f", p.Structural.MinSafetyFactor)
		for _, w := range p.Warnings {
			a.drawText("! "+w, 30, y, 14, ColWarn)
			y += 20
		}
	}
	if a.err != nil {
		a.drawText(a.err.Error(), 30, y, 14, rl.Red)
	}

	a.DrawLegend()
	a.DrawTelemetry()

	h := int(rl.GetScreenHeight())
	a.drawText("[SPACE] PAUSE  [M] VIEW  [0-4] SELECT  [ ] SECTION  [O] ORBIT  [?] HELP  [Q] QUIT", 460, h-40, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 30, h-40, 14, ColTextDim)
	if a.ShowHelp {
		a.drawHelp()
	}
}

func (a *App) drawHelp() {
	help := []string{
		"SPACE     pause / resume",
		"M TAB     next view",
		"0-4       none thermal stress flow cooling",
		"[ ]       move cross-section",
		"UP DOWN   throttle",
		"O         auto orbit",
		"LEFT RIGHT orbit",
		"F         refit",
		"drag      orbit",
		"wheel     zoom",
	}
	x, y := int(rl.GetScreenWidth())-420, 80
	rl.DrawRectangle(int32(x-10), int32(y-10), 400, int32(len(help)*20+20), rl.NewColor(0, 0, 0, 200))
	for i, h := range help {
		a.drawText(h, x, y+i*20, 14, ColAccent)
	}
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// CustomGrid draws a floor grid just below the engine.
func (a *App) CustomGrid(slices int, spacing float32) {
	halfSize := float32(slices) * spacing / 2
	floor := float32(-worldSize / 4)
	rl.BeginMode3D(a.Camera)
	for i := -slices / 2; i <= slices/2; i++ {
		pos := float32(i) * spacing
		rl.DrawLine3D(rl.NewVector3(pos, floor, -halfSize), rl.NewVector3(pos, floor, halfSize), ColGrid)
		rl.DrawLine3D(rl.NewVector3(-halfSize, floor, pos), rl.NewVector3(halfSize, floor, pos), ColGrid)
	}
	rl.EndMode3D()
}

// DrawLegend draws the active overlay's color bar with its range labels.
func (a *App) DrawLegend() {
	l, ok := a.Scene.Legend()
	if !ok {
		return
	}
	x := int32(rl.GetScreenWidth()) - 330
	y := int32(rl.GetScreenHeight()) - 150
	const width, height = 300, 14
	sw := l.Swatches(width / 2)
	for i, c := range sw {
		rl.DrawRectangle(x+int32(i*2), y, 2, height, toColor(c, 1))
	}
	title := l.Title
	if l.Unit != "" {
		title += " [" + l.Unit + "]"
	}
	a.drawText(title, int(x), int(y)-22, 14, ColText)
	a.drawText(strings.TrimSpace(fmt.Sprintf("%.4g", l.Lo)), int(x), int(y)+height+4, 12, ColText)
	hi := fmt.Sprintf("%.4g", l.Hi)
	a.drawText(hi, int(x)+width-8*len(hi), int(y)+height+4, 12, ColText)
}

// DrawTelemetry plots the thrust history as a line strip.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, int(rl.GetScreenHeight())-130
	width, height := 400, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("F: %.3g N", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}
