package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/rocketviz/internal/automation"
	"github.com/san-kum/rocketviz/internal/colormap"
	"github.com/san-kum/rocketviz/internal/config"
	"github.com/san-kum/rocketviz/internal/export"
	"github.com/san-kum/rocketviz/internal/gui"
	"github.com/san-kum/rocketviz/internal/metrics"
	"github.com/san-kum/rocketviz/internal/overlay"
	"github.com/san-kum/rocketviz/internal/scene"
	"github.com/san-kum/rocketviz/internal/station"
	"github.com/san-kum/rocketviz/internal/storage"
	"github.com/san-kum/rocketviz/internal/tick"
	"github.com/san-kum/rocketviz/internal/viz"
)

var (
	dataDir     string
	configFile  string
	presetNames []string
	params      []string
	logLevel    string
	logFile     string
	mode        string
	runID       string
	payloadFile string
	loop        bool
	// view
	theme string
	// record / bench
	ticks  int
	frames int
	name   string
	// export-svg
	kind     string
	outFile  string
	scale    float64
	size     int
	stationI int
	// inspect
	fields []string
	// sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

// main registers the rocketviz commands and flags, opens the window viewer
// when no subcommand is given and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "rocketviz",
		Short:        "rocket engine visualization core",
		SilenceUsage: true,
		RunE:         runGUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".rocketviz", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringSliceVar(&presetNames, "preset", nil, "presets to apply, as group/name")
	pf.StringArrayVar(&params, "set", nil, "engine or cooling parameter, as key=value")
	pf.StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	pf.StringVar(&mode, "mode", "", "analysis view: none, thermal, stress, flow, cooling")
	pf.StringVar(&runID, "run", "", "replay a recorded run instead of synthesizing ticks")
	pf.StringVar(&payloadFile, "payload", "", "replay a single solver payload file (json)")
	pf.BoolVar(&loop, "loop", true, "loop replays")

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "terminal viewer",
		RunE:  runView,
	}
	viewCmd.Flags().StringVar(&theme, "theme", "exhaust", "color theme")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "window viewer",
		RunE:  runGUI,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "print one tick's summary and station plots",
		RunE:  inspect,
	}
	inspectCmd.Flags().StringSliceVar(&fields, "plot", []string{"wall", "stress", "mach"},
		"station arrays to plot: wall, stress, mach, pressure, temperature, velocity, coolant")

	synthCmd := &cobra.Command{
		Use:   "synth",
		Short: "write a synthetic solver payload as json",
		RunE:  synth,
	}
	synthCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "record a chamber-pressure sweep for replay",
		RunE:  record,
	}
	recordCmd.Flags().IntVar(&ticks, "ticks", 100, "number of ticks")
	recordCmd.Flags().StringVar(&name, "name", "sweep", "recording name")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recordings",
		RunE:  listRuns,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list preset groups, or the presets in one group",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	materialsCmd := &cobra.Command{
		Use:   "materials",
		Short: "list wall materials",
		RunE:  listMaterials,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg",
		Short: "export the scene, the wall profile or a cross-section as svg",
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&kind, "kind", "section", "canvas, profile or section")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().Float64Var(&scale, "scale", 4, "pixels per dot (canvas)")
	exportSVGCmd.Flags().IntVar(&size, "size", 600, "image width in pixels (profile, section)")
	exportSVGCmd.Flags().IntVar(&stationI, "station", -1, "cross-section station (default from config)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure frame cost against the frame budget",
		RunE:  bench,
	}
	benchCmd.Flags().IntVar(&frames, "frames", 600, "frames to run")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario (yaml)",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one engine or cooling parameter",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "chamber_pressure_Pa", "parameter key")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 1e6, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 6e6, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 20, "number of values")

	rootCmd.AddCommand(viewCmd, guiCmd, inspectCmd, synthCmd, recordCmd, listCmd,
		presetsCmd, materialsCmd, exportSVGCmd, benchCmd, scenarioCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers the config file, presets, --set params and --mode over
// the defaults, in that order.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	for _, p := range presetNames {
		group, preset, ok := strings.Cut(p, "/")
		if !ok || !cfg.Apply(group, preset) {
			return nil, fmt.Errorf("unknown preset: %s (groups: %v)", p, config.ListGroups())
		}
	}
	if len(params) > 0 {
		kv := tick.Params{}
		for _, s := range params {
			if err := kv.Set(s); err != nil {
				return nil, err
			}
		}
		cfg.ApplyParams(kv)
	}
	if mode != "" {
		cfg.Mode = mode
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes human-readable logs to stderr, or to --log-file. Full
// screen viewers discard logs unless a file is given.
func newLogger(cfg *config.Config, fullscreen bool) (zerolog.Logger, func(), error) {
	lvl, err := cfg.Level()
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	var out io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		out, closeFn = f, func() { f.Close() }
	case fullscreen:
		return zerolog.Nop(), closeFn, nil
	}
	w := zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: logFile != ""}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), closeFn, nil
}

// newSource replays --run or --payload when given, and sweeps the
// configured engine otherwise.
func newSource(cfg *config.Config) (tick.Source, error) {
	switch {
	case runID != "":
		st := storage.New(dataDir)
		recorded, err := st.LoadTicks(runID)
		if err != nil {
			return nil, err
		}
		return tick.NewReplay(recorded, loop), nil
	case payloadFile != "":
		p, err := readPayload(payloadFile)
		if err != nil {
			return nil, err
		}
		return tick.NewReplay([]*tick.Payload{p}, loop), nil
	default:
		return tick.NewSweep(cfg.Engine), nil
	}
}

func readPayload(path string) (*tick.Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return tick.Decode(f)
}

// firstTick returns one payload from the configured source.
func firstTick(cfg *config.Config) (*tick.Payload, error) {
	src, err := newSource(cfg)
	if err != nil {
		return nil, err
	}
	return src.Next()
}

type session struct {
	cfg   *config.Config
	log   zerolog.Logger
	scene *scene.Scene
	src   tick.Source
	close func()
}

func openSession(fullscreen bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, closeLog, err := newLogger(cfg, fullscreen)
	if err != nil {
		return nil, err
	}
	src, err := newSource(cfg)
	if err != nil {
		closeLog()
		return nil, err
	}
	sc, err := scene.New(cfg, log)
	if err != nil {
		closeLog()
		return nil, err
	}
	return &session{
		cfg:   cfg,
		log:   log,
		scene: sc,
		src:   src,
		close: func() {
			if err := sc.Close(); err != nil {
				log.Warn().Err(err).Msg("scene close")
			}
			closeLog()
		},
	}, nil
}

func runView(cmd *cobra.Command, args []string) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.close()

	m := viz.NewModel(s.scene, s.src, s.log)
	m.SetTheme(theme)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func runGUI(cmd *cobra.Command, args []string) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.close()
	return gui.Run(s.scene, s.src, s.log)
}

var plotFields = map[string]struct {
	caption string
	get     func(*tick.Payload) station.Array
}{
	"wall":        {"wall temperature [K]", func(p *tick.Payload) station.Array { return p.Stations.WallTemp }},
	"stress":      {"von Mises [MPa]", func(p *tick.Payload) station.Array { return p.Stations.VonMises }},
	"mach":        {"Mach", func(p *tick.Payload) station.Array { return p.Stations.Mach }},
	"pressure":    {"pressure [Pa]", func(p *tick.Payload) station.Array { return p.Stations.Pressure }},
	"temperature": {"gas temperature [K]", func(p *tick.Payload) station.Array { return p.Stations.Temperature }},
	"velocity":    {"velocity [m/s]", func(p *tick.Payload) station.Array { return p.Stations.Velocity }},
	"coolant":     {"coolant temperature [K]", func(p *tick.Payload) station.Array { return p.CoolantTemp() }},
}

func inspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := firstTick(cfg)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	perf, st := p.Performance, p.Structural
	fmt.Printf("stations: %d  orifices: %d\n", p.Stations.Len(), len(p.Orifices))
	fmt.Println("\nperformance:")
	fmt.Printf("  thrust:     %.1f N\n", perf.ThrustN)
	fmt.Printf("  Isp:        %.1f s\n", perf.Isp)
	fmt.Printf("  mass flow:  %.3f kg/s\n", perf.MassFlow)
	fmt.Printf("  exit Mach:  %.2f\n", perf.ExitMach)
	fmt.Printf("  c*:         %.0f m/s\n", perf.CStar)
	fmt.Println("\nstructural:")
	fmt.Printf("  max von Mises: %.1f MPa\n", st.MaxVonMises)
	fmt.Printf("  min safety:    %.2f (station %d)\n", st.MinSafetyFactor, st.MinSFStation)
	fmt.Printf("  max wall temp: %.0f K\n", st.MaxWallTemp)
	if len(p.Warnings) > 0 {
		fmt.Println("\nwarnings:")
		for _, w := range p.Warnings {
			fmt.Printf("  %s\n", w)
		}
	}

	for _, f := range fields {
		pf, ok := plotFields[f]
		if !ok {
			return fmt.Errorf("unknown plot field: %s", f)
		}
		values := pf.get(p)
		if len(values) < 2 {
			fmt.Printf("\n%s: no data\n", pf.caption)
			continue
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(values,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption(pf.caption)))
	}
	return nil
}

// output opens --out, or stdout when it is empty.
func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	if err := os.MkdirAll(filepath.Dir(outFile), 0755); err != nil {
		return nil, err
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func synth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := tick.Synthesize(cfg.Engine)
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	return tick.Encode(w, p)
}

func record(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", ticks)
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sweep := tick.NewSweep(cfg.Engine)
	rec := &storage.Recording{Name: name, Material: cfg.Material, TickRate: cfg.TickRate}
	fmt.Printf("recording %d ticks...\n", ticks)
	start := time.Now()
	for range ticks {
		p, err := sweep.Next()
		if err != nil {
			return err
		}
		rec.Ticks = append(rec.Ticks, p)
	}
	id, err := st.Save(rec)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", id)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recordings")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTICKS\tSTATIONS\tMATERIAL\tTHRUST [N]\tMIN SF\tTIME")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%.1f\t%.2f\t%s\n",
			r.ID, r.Name, r.Ticks, r.Stations, r.Material,
			r.Performance.ThrustN, r.Structural.MinSafetyFactor,
			r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		for _, g := range config.ListGroups() {
			fmt.Printf("%s: %s\n", g, strings.Join(config.ListPresets(g), ", "))
		}
		return nil
	}
	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Printf("no presets in group: %s\n", args[0])
		return nil
	}
	fmt.Printf("presets for %s:\n", args[0])
	for _, p := range presets {
		fmt.Printf("  %s/%s\n", args[0], p)
	}
	return nil
}

func listMaterials(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOLOR\tYIELD [MPa]")
	for _, id := range tick.ListMaterials() {
		m, err := tick.LookupMaterial(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\n", m.ID, m.Name, m.ColorHex, m.YieldMPa)
	}
	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.close()

	p, _, err := scene.NewDriver(s.scene, s.src).Pull()
	if err != nil {
		return err
	}

	var svg string
	switch kind {
	case "canvas":
		svg, err = canvasSVG(s.scene)
	case "profile":
		svg, err = profileSVG(s.scene, p)
	case "section":
		svg, err = sectionSVG(s.scene)
	default:
		return fmt.Errorf("unknown svg kind: %s (canvas, profile, section)", kind)
	}
	if err != nil {
		return err
	}

	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = io.WriteString(w, svg)
	return err
}

func canvasSVG(sc *scene.Scene) (string, error) {
	if err := sc.Frame(sc.Config().FrameInterval()); err != nil {
		return "", err
	}
	cv := viz.NewCanvas(120, 40)
	cam := viz.NewCamera()
	cam.Fit(viz.Bounds(sc.Groups()))
	viz.Draw(cv, cam, sc.Groups())
	return export.CanvasToSVG(cv, scale), nil
}

func profileSVG(sc *scene.Scene, p *tick.Payload) (string, error) {
	prof, err := p.Stations.Profile()
	if err != nil {
		return "", err
	}
	colors := colormap.Thermal.Map(p.Stations.WallTemp)
	if len(p.Stations.WallTemp) != prof.Len() {
		colors = nil
	}
	wall := colormap.ParseOr(sc.Material().ColorHex, colormap.Thermal.Low())
	return export.ProfileToSVG(prof, colors, wall, size, size/2), nil
}

// sectionSVG switches the scene to the cooling view to get its bands.
func sectionSVG(sc *scene.Scene) (string, error) {
	if err := sc.SetMode(overlay.Cooling); err != nil {
		return "", err
	}
	if err := sc.Reapply(); err != nil {
		return "", err
	}
	b := sc.Cooling()
	if !b.Active() {
		return "", errors.New("cooling view unavailable: no mesh")
	}
	i := b.Station()
	if stationI >= 0 {
		i = stationI
	}
	wall := colormap.ParseOr(sc.Material().ColorHex, colormap.Thermal.Low())
	return export.SectionToSVG(b.Bands(), i, b.Config(), colormap.Coolant.At(0.3), wall, size)
}

func bench(cmd *cobra.Command, args []string) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.close()

	d := scene.NewDriver(s.scene, s.src)
	if _, _, err := d.Pull(); err != nil {
		return err
	}

	budget := metrics.NewFrameBudget(s.cfg.FrameRate)
	dt := s.cfg.FrameInterval()
	ticksPerFrame := s.cfg.TickRate / s.cfg.FrameRate
	pending := 0.0

	fmt.Printf("running %d frames at %.0f fps (%s view)...\n", frames, s.cfg.FrameRate, s.scene.Mode())
	start := time.Now()
	for range frames {
		err := budget.Time(func() error {
			pending += ticksPerFrame
			for ; pending >= 1; pending-- {
				if _, _, err := d.Pull(); err != nil {
					return err
				}
			}
			return s.scene.Frame(dt)
		})
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("frames: %d  ticks: %d\n", s.scene.Frames(), d.Ticks)
	fmt.Println("\nmetrics:")
	for name, val := range budget.Values() {
		fmt.Printf("  %s: %.4f\n", name, val)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running scenario %s (%d steps)...\n", sc.Name, len(sc.Steps))
	start := time.Now()
	results, err := automation.RunScenario(context.Background(), sc, cfg, st, log)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tTICKS\tREBUILDS\tTHRUST [N]\tMIN SF\tWARNINGS\tRUN ID")
	for _, r := range results {
		thrust, sf, warns := 0.0, 0.0, 0
		if r.Last != nil {
			thrust, sf, warns = r.Last.Performance.ThrustN, r.Last.Structural.MinSafetyFactor, len(r.Last.Warnings)
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%.1f\t%.2f\t%d\t%s\n", r.Step, r.Ticks, r.Rebuilds, thrust, sf, warns, r.RunID)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	results, err := automation.RunSweep(context.Background(), &automation.ParameterSweep{
		Param:    sweepParam,
		ParamMin: sweepMin,
		ParamMax: sweepMax,
		NumSteps: sweepSteps,
	}, cfg)
	if err != nil {
		return err
	}

	thrust := make([]float64, len(results))
	sf := make([]float64, len(results))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tTHRUST [N]\tISP [s]\tMIN SF\tMAX WALL [K]\n", strings.ToUpper(sweepParam))
	for i, r := range results {
		thrust[i], sf[i] = r.Performance.ThrustN, r.Structural.MinSafetyFactor
		fmt.Fprintf(w, "%.4g\t%.1f\t%.1f\t%.2f\t%.0f\n",
			r.ParamValue, r.Performance.ThrustN, r.Performance.Isp, r.Structural.MinSafetyFactor, r.Structural.MaxWallTemp)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(thrust,
		asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("thrust [N]")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(sf,
		asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("min safety factor")))
	return nil
}
