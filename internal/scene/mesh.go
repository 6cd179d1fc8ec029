// Package scene owns the live engine mesh, the overlay slot and both
// particle systems, and drives them from data ticks and frames.
package scene

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/colormap"
	"github.com/san-kum/rocketviz/internal/geometry"
	"github.com/san-kum/rocketviz/internal/render"
	"github.com/san-kum/rocketviz/internal/station"
	"github.com/san-kum/rocketviz/internal/tick"
)

var (
	HotGasColor   = colormap.ParseOr("#4b5563", colorful.Color{R: 0.3, G: 0.33, B: 0.38})
	InjectorColor = colormap.ParseOr("#d1d5db", colorful.Color{R: 0.82, G: 0.84, B: 0.86})
)

// Solid names inside the mesh group.
const (
	SolidOuter    = "outer-wall"
	SolidInner    = "inner-wall"
	SolidChamber  = "chamber-cap"
	SolidNozzle   = "nozzle-cap"
	SolidInjector = "injector-face"
	SolidMarkers  = "orifice-markers"
)

// EngineMesh is the revolved engine body as device resources.
type EngineMesh struct {
	Group    *render.Group
	Outer    *render.Solid
	Inner    *render.Solid
	Wall     *render.Material
	Profile  station.Profile
	Segments int
	Orifices []tick.Orifice
}

type meshParts struct {
	outer, inner, chamber, nozzle, injector, markers *geometry.Mesh
}

// buildParts runs every builder before any device resource is created, so
// a failure leaves nothing to clean up.
func buildParts(p station.Profile, orifices []tick.Orifice, segments int) (meshParts, error) {
	var (
		parts meshParts
		err   error
	)
	n := p.Len()
	x0, xn := p.Inner[0].X, p.Inner[n-1].X
	ri0, ro0 := p.Inner[0].R, p.Outer[0].R
	rin, ron := p.Inner[n-1].R, p.Outer[n-1].R

	if parts.outer, err = geometry.BuildRevolvedSurface(p.Outer, segments, geometry.Outward); err != nil {
		return parts, err
	}
	if parts.inner, err = geometry.BuildRevolvedSurface(p.Inner, segments, geometry.Inward); err != nil {
		return parts, err
	}
	if parts.chamber, err = geometry.BuildEndCap(x0, ri0, ro0, segments, geometry.FacingUpstream); err != nil {
		return parts, err
	}
	if parts.nozzle, err = geometry.BuildEndCap(xn, rin, ron, segments, geometry.FacingDownstream); err != nil {
		return parts, err
	}
	if parts.injector, err = geometry.BuildInjectorFace(x0, ri0, orifices, segments); err != nil {
		return parts, err
	}
	parts.markers = geometry.BuildOrificeMarkers(x0, ri0, orifices)
	return parts, nil
}

// BuildEngineMesh validates the profile and creates the engine body. The
// wall material takes the alloy's display color.
func BuildEngineMesh(dev *render.Device, p station.Profile, orifices []tick.Orifice, segments int, wall colorful.Color) (*EngineMesh, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	parts, err := buildParts(p, orifices, segments)
	if err != nil {
		return nil, err
	}

	wallMat := dev.NewMaterial("wall", wall)
	hotMat := dev.NewMaterial("hot-gas", HotGasColor)
	hotMat.Side = render.DoubleSide

	g := render.NewGroup("engine")
	m := &EngineMesh{
		Group:    g,
		Outer:    g.Add(render.NewSolid(SolidOuter, dev.NewGeometry(SolidOuter, parts.outer), wallMat)),
		Inner:    g.Add(render.NewSolid(SolidInner, dev.NewGeometry(SolidInner, parts.inner), hotMat)),
		Wall:     wallMat,
		Profile:  p,
		Segments: segments,
		Orifices: append([]tick.Orifice(nil), orifices...),
	}
	g.Add(render.NewSolid(SolidChamber, dev.NewGeometry(SolidChamber, parts.chamber), wallMat))
	g.Add(render.NewSolid(SolidNozzle, dev.NewGeometry(SolidNozzle, parts.nozzle), wallMat))
	g.Add(render.NewSolid(SolidInjector, dev.NewGeometry(SolidInjector, parts.injector), dev.NewMaterial("injector", InjectorColor)))
	if !parts.markers.IsEmpty() {
		g.Add(render.NewSolid(SolidMarkers, dev.NewGeometry(SolidMarkers, parts.markers), dev.NewVertexColorMaterial("orifices")))
	}
	return m, nil
}

// SetWallColor recolors the wall material shared by the outer wall and
// both end caps.
func (m *EngineMesh) SetWallColor(c colorful.Color) {
	m.Wall.Color = c
	m.Wall.Version++
}

// Matches reports whether the mesh was built from the same profile and
// orifices.
func (m *EngineMesh) Matches(p station.Profile, orifices []tick.Orifice) bool {
	if m.Profile.Len() != p.Len() || len(m.Orifices) != len(orifices) {
		return false
	}
	for i := range p.Inner {
		if m.Profile.Inner[i] != p.Inner[i] || m.Profile.Outer[i] != p.Outer[i] {
			return false
		}
	}
	for i := range orifices {
		if m.Orifices[i] != orifices[i] {
			return false
		}
	}
	return true
}

func (m *EngineMesh) Dispose() error {
	return m.Group.Dispose()
}
