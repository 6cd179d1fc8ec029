package overlay

import (
	"errors"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/rocketviz/internal/colormap"
	"github.com/san-kum/rocketviz/internal/render"
)

// materialSwap replaces a solid's material with a vertex-color material.
// The original reference is captured on the first apply to a solid and put
// back by clear.
type materialSwap struct {
	name        string
	solid       *render.Solid
	original    *render.Material
	replacement *render.Material
}

func (s *materialSwap) apply(dev *render.Device, solid *render.Solid, colors []float32) error {
	if s.solid != solid {
		s.solid = solid
		s.original = solid.Material
	}
	if s.replacement == nil {
		s.replacement = dev.NewVertexColorMaterial(s.name)
		s.replacement.Side = s.original.Side
	}
	if err := solid.Geometry.SetColors(colors); err != nil {
		return err
	}
	solid.Material = s.replacement
	return nil
}

// clear is idempotent. It never touches a solid it did not swap.
func (s *materialSwap) clear() error {
	var errs []error
	if s.solid != nil && s.replacement != nil {
		if s.solid.Material == s.replacement {
			s.solid.Material = s.original
		}
		if g := s.solid.Geometry; g != nil && !g.Disposed() && g.HasColors() {
			errs = append(errs, g.SetColors(nil))
		}
	}
	if s.replacement != nil {
		errs = append(errs, s.replacement.Dispose())
		s.replacement = nil
	}
	return errors.Join(errs...)
}

// forget drops the captured solid after the mesh it belonged to is gone.
func (s *materialSwap) forget() {
	s.solid = nil
	s.original = nil
}

// broadcast repeats one color per station across every circumferential
// vertex of a revolved surface with cols vertices per station.
func broadcast(colors []colorful.Color, cols int) []float32 {
	out := make([]float32, 0, 3*len(colors)*cols)
	for _, c := range colors {
		r, g, b := colormap.Components(c)
		for j := 0; j < cols; j++ {
			out = append(out, r, g, b)
		}
	}
	return out
}

func flat(c colorful.Color, n int) []colorful.Color {
	out := make([]colorful.Color, n)
	for i := range out {
		out[i] = c
	}
	return out
}
