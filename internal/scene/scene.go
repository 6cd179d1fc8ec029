package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"github.com/san-kum/rocketviz/internal/colormap"
	"github.com/san-kum/rocketviz/internal/config"
	"github.com/san-kum/rocketviz/internal/cooling"
	"github.com/san-kum/rocketviz/internal/overlay"
	"github.com/san-kum/rocketviz/internal/particles"
	"github.com/san-kum/rocketviz/internal/render"
	"github.com/san-kum/rocketviz/internal/tick"
)

var ErrClosed = errors.New("scene: closed")

// Metadata is what code outside the core needs to know about the mesh.
type Metadata struct {
	Stations int
	Segments int
	Mode     overlay.Mode
	Applied  bool
}

// Scene owns exactly one engine mesh, one overlay slot and one of each
// particle system. It is not safe for concurrent use.
type Scene struct {
	cfg      config.Config
	log      zerolog.Logger
	dev      *render.Device
	material tick.Material

	mesh     *EngineMesh
	overlays *overlay.Controller
	plume    *particles.Plume
	flow     *particles.Flow
	effects  *render.Group
	payload  *tick.Payload
	thrust   float64
	frames   int64
	closed   bool
}

func New(cfg *config.Config, log zerolog.Logger) (*Scene, error) {
	c := *cfg
	if err := c.Validate(); err != nil {
		return nil, err
	}
	mode, _ := c.OverlayMode()

	dev := render.NewDevice()
	s := &Scene{
		cfg:      c,
		log:      log.With().Str("component", "scene").Logger(),
		dev:      dev,
		material: c.Engine.Material,
		overlays: overlay.NewController(dev, c.Cooling, log.With().Str("component", "overlay").Logger()),
		plume:    particles.NewPlume(dev, c.Particles.Plume, c.Seed),
		flow:     particles.NewFlow(dev, c.Particles.Flow, c.Seed+1),
		thrust:   c.Thrust,
	}
	s.plume.SetThrust(c.Thrust)
	s.effects = render.NewGroup("effects")
	s.effects.Add(s.plume.Solid())
	s.effects.Add(s.flow.Solid())

	if err := s.overlays.Set(mode); err != nil {
		return nil, err
	}
	if err := s.overlays.SetCrossSection(c.CrossSection); err != nil {
		return nil, err
	}
	s.log.Debug().
		Int("segments", c.Segments).
		Int("plume", len(s.plume.Particles())).
		Int("flow", len(s.flow.Particles())).
		Msg("scene created")
	return s, nil
}

func (s *Scene) Device() *render.Device    { return s.dev }
func (s *Scene) Mesh() *EngineMesh         { return s.mesh }
func (s *Scene) Plume() *particles.Plume   { return s.plume }
func (s *Scene) Flow() *particles.Flow     { return s.flow }
func (s *Scene) Payload() *tick.Payload    { return s.payload }
func (s *Scene) Cooling() *cooling.Builder { return s.overlays.Cooling() }
func (s *Scene) Mode() overlay.Mode        { return s.overlays.Mode() }
func (s *Scene) Material() tick.Material   { return s.material }
func (s *Scene) Config() config.Config     { return s.cfg }
func (s *Scene) Frames() int64             { return s.frames }

// Legend describes the colors of the applied overlay.
func (s *Scene) Legend() (colormap.Legend, bool) { return s.overlays.Legend() }

func (s *Scene) Metadata() Metadata {
	md := Metadata{Mode: s.overlays.Mode(), Applied: s.overlays.Applied()}
	if s.mesh != nil {
		md.Stations = s.mesh.Profile.Len()
		md.Segments = s.mesh.Segments
	}
	return md
}

// Groups returns everything to draw: the engine, overlay extras and the
// particle clouds.
func (s *Scene) Groups() []*render.Group {
	var out []*render.Group
	if s.mesh != nil {
		out = append(out, s.mesh.Group)
	}
	out = append(out, s.overlays.Groups()...)
	return append(out, s.effects)
}

// RebuildMesh disposes the current mesh, then builds a new one from the
// payload's profile and orifices. The overlay is detached and stays off
// until Reapply.
func (s *Scene) RebuildMesh(p *tick.Payload) error {
	if s.closed {
		return ErrClosed
	}
	var errs []error
	errs = append(errs, s.overlays.Detach())
	if s.mesh != nil {
		errs = append(errs, s.mesh.Dispose())
		s.mesh = nil
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	profile, err := p.Stations.Profile()
	if err != nil {
		s.log.Warn().Err(err).Int("stations", p.Stations.Len()).Msg("mesh rebuild skipped")
		return err
	}
	m, err := BuildEngineMesh(s.dev, profile, p.Orifices, s.cfg.Segments, s.wallColor())
	if err != nil {
		s.log.Warn().Err(err).Msg("mesh rebuild failed")
		return err
	}
	s.mesh = m
	s.overlays.Attach(&overlay.Target{
		Group:    m.Group,
		Outer:    m.Outer,
		Inner:    m.Inner,
		Profile:  profile,
		Segments: m.Segments,
	})
	s.log.Info().
		Int("stations", profile.Len()).
		Int("orifices", len(p.Orifices)).
		Int("live", s.dev.Live()).
		Msg("mesh rebuilt")
	return nil
}

// ApplyTick feeds one solver result into the scene. The mesh is rebuilt
// only when the profile or injector layout changed; a rebuilt mesh comes
// back without an overlay until Reapply. An overlay already showing on an
// unchanged mesh is recolored from the new data.
func (s *Scene) ApplyTick(p *tick.Payload) error {
	if s.closed {
		return ErrClosed
	}
	if err := p.Validate(); err != nil {
		s.log.Warn().Err(err).Msg("tick rejected")
		return err
	}

	rebuilt := false
	profile, _ := p.Stations.Profile()
	if s.mesh == nil || !s.mesh.Matches(profile, p.Orifices) {
		if err := s.RebuildMesh(p); err != nil {
			return err
		}
		rebuilt = true
	}
	prev := s.payload
	s.payload = p

	s.overlays.Update(s.inputs(p))
	if !rebuilt && s.overlays.Applied() {
		if err := s.overlays.Reapply(); err != nil {
			return err
		}
	}

	s.updatePlume(p)
	if err := s.flow.SetStations(particles.FlowStations{
		X:           p.Stations.X,
		RInner:      p.Stations.RInner,
		Velocity:    p.Stations.Velocity,
		Temperature: p.Stations.Temperature,
	}); err != nil {
		s.log.Warn().Err(err).Msg("internal flow data unavailable")
	} else {
		s.flow.Tick(s.cfg.TickInterval())
	}

	if prev == nil || !slices.Equal(prev.Warnings, p.Warnings) {
		for _, w := range p.Warnings {
			s.log.Warn().Str("source", "solver").Msg(w)
		}
	}
	return nil
}

func (s *Scene) inputs(p *tick.Payload) overlay.Inputs {
	in := overlay.Inputs{
		WallTemp:    p.Stations.WallTemp,
		VonMises:    p.Stations.VonMises,
		Mach:        p.Stations.Mach,
		CoolantTemp: p.CoolantTemp(),
		YieldMPa:    s.material.YieldMPa,
	}
	if p.Cooling != nil {
		in.ChannelHeights = p.Cooling.ChannelHeight
	}
	return in
}

func (s *Scene) updatePlume(p *tick.Payload) {
	x, radius, mach, pressure, temp := p.Exit()
	err := s.plume.SetInputs(particles.PlumeInputs{
		ExitMach:        mach,
		ExitPressure:    pressure,
		AmbientPressure: s.cfg.Engine.AmbientPressure,
		ExitTemp:        temp,
		Gamma:           s.cfg.Engine.Gamma,
		ExitX:           x,
		ExitRadius:      radius,
		Thrust:          s.thrust,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("plume inputs rejected")
	}
}

// SetMode clears every overlay and applies m. Without a mesh the mode is
// remembered and applied by the next Reapply.
func (s *Scene) SetMode(m overlay.Mode) error {
	if s.closed {
		return ErrClosed
	}
	prev := s.overlays.Mode()
	if err := s.overlays.Set(m); err != nil {
		return err
	}
	s.log.Info().Stringer("from", prev).Stringer("to", m).Bool("applied", s.overlays.Applied()).Msg("mode changed")
	return nil
}

// Reapply re-runs the current mode on the current mesh.
func (s *Scene) Reapply() error {
	if s.closed {
		return ErrClosed
	}
	if s.mesh == nil {
		s.log.Debug().Msg("no mesh, overlay not applied")
		return nil
	}
	return s.overlays.Reapply()
}

// SetCrossSectionStation moves the cooling ring.
func (s *Scene) SetCrossSectionStation(i int) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.overlays.SetCrossSection(i); err != nil {
		return err
	}
	s.cfg.CrossSection = i
	return nil
}

// SetCoolingConfig changes the channel layout and re-applies the cooling
// view when it is showing.
func (s *Scene) SetCoolingConfig(cfg cooling.Config) error {
	if err := s.overlays.SetCoolingConfig(cfg); err != nil {
		return err
	}
	s.cfg.Cooling = cfg
	if s.overlays.Applied() && s.overlays.Mode() == overlay.Cooling {
		return s.overlays.Reapply()
	}
	return nil
}

// SetMaterial switches the wall alloy: display color and yield strength.
func (s *Scene) SetMaterial(id string) error {
	m, err := tick.LookupMaterial(id)
	if err != nil {
		return err
	}
	s.material = m
	s.cfg.Material = id
	if s.mesh != nil {
		s.mesh.SetWallColor(s.wallColor())
	}
	if s.payload != nil {
		s.overlays.Update(s.inputs(s.payload))
		if s.overlays.Applied() && s.overlays.Mode() == overlay.Stress {
			return s.overlays.Reapply()
		}
	}
	return nil
}

// SetThrust sets the commanded thrust fraction, clamped to [0,1].
func (s *Scene) SetThrust(f float64) {
	s.thrust = min(max(f, 0), 1)
	s.plume.SetThrust(s.thrust)
}

func (s *Scene) Thrust() float64 { return s.thrust }

// Frame advances both particle systems and animated shading by dt seconds
// and uploads the particle buffers.
func (s *Scene) Frame(dt float64) error {
	if s.closed {
		return ErrClosed
	}
	if dt < 0 {
		return fmt.Errorf("scene: negative frame step %g", dt)
	}
	s.frames++
	s.plume.Advance(dt)
	s.flow.Advance(dt)
	return errors.Join(s.overlays.Frame(dt), s.plume.Sync(), s.flow.Sync())
}

// Close releases every device resource. It is safe to call twice.
func (s *Scene) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	errs := []error{s.overlays.Detach()}
	if s.mesh != nil {
		errs = append(errs, s.mesh.Dispose())
		s.mesh = nil
	}
	errs = append(errs, s.plume.Dispose(), s.flow.Dispose())
	s.effects = render.NewGroup("effects")
	err := errors.Join(errs...)
	s.log.Debug().Int("live", s.dev.Live()).Err(err).Msg("scene closed")
	return err
}

func (s *Scene) wallColor() colorful.Color {
	return colormap.ParseOr(s.material.ColorHex, colorful.Color{R: 0.72, G: 0.45, B: 0.2})
}
