// Package overlay switches the engine mesh between analysis views. Every
// transition clears all overlays, then applies the requested one.
package overlay

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/rocketviz/internal/colormap"
	"github.com/san-kum/rocketviz/internal/cooling"
	"github.com/san-kum/rocketviz/internal/render"
)

// Controller owns the single overlay slot of one scene.
type Controller struct {
	dev      *render.Device
	log      zerolog.Logger
	mode     Mode
	applied  bool
	target   *Target
	inputs   Inputs
	overlays [numModes]overlay
	cooling  *coolingOverlay
}

func NewController(dev *render.Device, coolingCfg cooling.Config, log zerolog.Logger) *Controller {
	c := &Controller{dev: dev, log: log}
	c.cooling = &coolingOverlay{
		swap:     materialSwap{name: "cooling-wall"},
		builder:  cooling.NewBuilder(dev, coolingCfg),
		animator: cooling.NewAnimator(coolingCfg),
	}
	c.overlays = [numModes]overlay{
		None:    noOverlay{},
		Thermal: &scalarOverlay{swap: materialSwap{name: "thermal-wall"}, colors: thermalColors},
		Stress:  &scalarOverlay{swap: materialSwap{name: "stress-wall"}, colors: stressColors},
		Flow:    &flowOverlay{swap: materialSwap{name: "flow-wall"}},
		Cooling: c.cooling,
	}
	return c
}

// Mode is the requested mode, which may not be applied while no mesh is
// attached.
func (c *Controller) Mode() Mode { return c.mode }

// Applied reports whether the requested mode is currently on the mesh.
func (c *Controller) Applied() bool { return c.applied }

func (c *Controller) Cooling() *cooling.Builder { return c.cooling.builder }

// Attach sets the mesh overlays act on. It does not apply the current mode;
// call Reapply once the new mesh should show it.
func (c *Controller) Attach(t *Target) {
	c.target = t
	for _, o := range c.overlays {
		if s := swapOf(o); s != nil {
			s.forget()
		}
	}
}

// Detach clears every overlay and drops the mesh. The requested mode is
// kept.
func (c *Controller) Detach() error {
	err := c.clearAll()
	c.target = nil
	return err
}

// Update stores the latest tick arrays. The cooling lookup table is rebuilt
// immediately; colors of the other overlays refresh on the next Set or
// Reapply.
func (c *Controller) Update(in Inputs) {
	c.inputs = in
	if c.applied && c.mode == Cooling {
		c.cooling.refresh(&c.inputs)
	}
}

// SetCoolingConfig changes the channel layout used by the next cooling
// apply.
func (c *Controller) SetCoolingConfig(cfg cooling.Config) error {
	return c.cooling.builder.SetConfig(cfg)
}

// Set clears every overlay and applies m. Without an attached mesh the mode
// is recorded and nothing is applied.
func (c *Controller) Set(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("overlay: invalid mode %d", int(m))
	}
	if err := c.clearAll(); err != nil {
		return err
	}
	c.mode = m
	if c.target == nil {
		c.log.Debug().Stringer("mode", m).Msg("no mesh attached, overlay deferred")
		return nil
	}

	if err := c.overlays[m].apply(c.dev, c.target, &c.inputs); err != nil {
		c.log.Warn().Err(err).Stringer("mode", m).Msg("overlay apply failed")
		return errors.Join(fmt.Errorf("overlay %s: %w", m, err), c.overlays[m].clear())
	}
	c.applied = true
	c.log.Debug().Stringer("mode", m).Msg("overlay applied")
	return nil
}

// Reapply re-runs the current mode against the attached mesh.
func (c *Controller) Reapply() error {
	return c.Set(c.mode)
}

// SetCrossSection moves the cooling ring to station i.
func (c *Controller) SetCrossSection(i int) error {
	return c.cooling.builder.SetStation(i)
}

// Frame advances animated overlay shading.
func (c *Controller) Frame(dt float64) error {
	if !c.applied || c.mode != Cooling {
		return nil
	}
	return c.cooling.frame(dt)
}

// Groups returns overlay-owned groups drawn outside the mesh group.
func (c *Controller) Groups() []*render.Group {
	if !c.applied || c.mode != Cooling {
		return nil
	}
	return c.cooling.builder.Groups()
}

func (c *Controller) clearAll() error {
	var errs []error
	for _, o := range c.overlays {
		errs = append(errs, o.clear())
	}
	c.applied = false
	return errors.Join(errs...)
}

// Legend describes the colors of the applied overlay.
func (c *Controller) Legend() (colormap.Legend, bool) {
	if !c.applied || c.target == nil {
		return colormap.Legend{}, false
	}
	n := c.target.Profile.Len()
	in := c.inputs
	switch c.mode {
	case Thermal:
		if !in.WallTemp.Aligned(n) {
			return colormap.Legend{}, false
		}
		lo, hi := in.WallTemp.Range()
		return colormap.NewLegend("Wall temperature", "K", lo, hi, colormap.Thermal), true
	case Stress:
		if !in.VonMises.Aligned(n) {
			return colormap.Legend{}, false
		}
		if in.YieldMPa > 0 {
			return colormap.NewLegend("von Mises / yield", "", 0, 1, colormap.Stress), true
		}
		lo, hi := in.VonMises.Range()
		return colormap.NewLegend("von Mises stress", "MPa", lo, hi, colormap.Stress), true
	case Flow:
		if !in.Mach.Aligned(n) {
			return colormap.Legend{}, false
		}
		lo, hi := in.Mach.Range()
		return colormap.MachLegend(lo, hi), true
	case Cooling:
		if !in.CoolantTemp.Aligned(n) {
			return colormap.Legend{}, false
		}
		lo, hi := in.CoolantTemp.Range()
		return colormap.NewLegend("Coolant temperature", "K", lo, hi, colormap.Coolant), true
	}
	return colormap.Legend{}, false
}

func swapOf(o overlay) *materialSwap {
	switch v := o.(type) {
	case *scalarOverlay:
		return &v.swap
	case *flowOverlay:
		return &v.swap
	case *coolingOverlay:
		return &v.swap
	}
	return nil
}
