package render

import "errors"

// Solid pairs one geometry with one material.
type Solid struct {
	Name     string
	Geometry *Geometry
	Material *Material
	Visible  bool
}

func NewSolid(name string, g *Geometry, m *Material) *Solid {
	return &Solid{Name: name, Geometry: g, Material: m, Visible: true}
}

// Group is a node of the scene tree.
type Group struct {
	Name   string
	Solids []*Solid
	Groups []*Group
}

func NewGroup(name string) *Group {
	return &Group{Name: name}
}

func (g *Group) Add(s *Solid) *Solid {
	g.Solids = append(g.Solids, s)
	return s
}

func (g *Group) AddGroup(c *Group) *Group {
	g.Groups = append(g.Groups, c)
	return c
}

// RemoveGroup detaches c without disposing it.
func (g *Group) RemoveGroup(c *Group) bool {
	for i, child := range g.Groups {
		if child == c {
			g.Groups = append(g.Groups[:i], g.Groups[i+1:]...)
			return true
		}
	}
	return false
}

// Walk visits every solid depth-first.
func (g *Group) Walk(fn func(*Solid)) {
	for _, s := range g.Solids {
		fn(s)
	}
	for _, c := range g.Groups {
		c.Walk(fn)
	}
}

func (g *Group) Find(name string) *Solid {
	var found *Solid
	g.Walk(func(s *Solid) {
		if found == nil && s.Name == name {
			found = s
		}
	})
	return found
}

// Materials lists each distinct material in the tree once.
func (g *Group) Materials() []*Material {
	seen := make(map[*Material]bool)
	var out []*Material
	g.Walk(func(s *Solid) {
		if s.Material != nil && !seen[s.Material] {
			seen[s.Material] = true
			out = append(out, s.Material)
		}
	})
	return out
}

func (g *Group) Len() int {
	n := 0
	g.Walk(func(*Solid) { n++ })
	return n
}

// Dispose releases every distinct geometry and material in the tree and
// empties it.
func (g *Group) Dispose() error {
	var errs []error
	geoms := make(map[*Geometry]bool)
	mats := make(map[*Material]bool)
	g.Walk(func(s *Solid) {
		if s.Geometry != nil && !geoms[s.Geometry] {
			geoms[s.Geometry] = true
			errs = append(errs, s.Geometry.Dispose())
		}
		if s.Material != nil && !mats[s.Material] {
			mats[s.Material] = true
			errs = append(errs, s.Material.Dispose())
		}
		s.Geometry, s.Material = nil, nil
	})
	g.Solids, g.Groups = nil, nil
	return errors.Join(errs...)
}
