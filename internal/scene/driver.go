package scene

import "github.com/san-kum/rocketviz/internal/tick"

// Driver feeds a scene from a tick source. It is the caller ApplyTick
// expects: after every mesh rebuild it re-applies the current overlay.
type Driver struct {
	Scene  *Scene
	Source tick.Source
	Ticks  int
	mesh   *EngineMesh
}

func NewDriver(s *Scene, src tick.Source) *Driver {
	return &Driver{Scene: s, Source: src}
}

// Pull applies the next tick and reports whether it rebuilt the mesh.
// Source errors, io.EOF included, are returned unchanged.
func (d *Driver) Pull() (p *tick.Payload, rebuilt bool, err error) {
	p, err = d.Source.Next()
	if err != nil {
		return nil, false, err
	}
	if err := d.Scene.ApplyTick(p); err != nil {
		return p, false, err
	}
	d.Ticks++
	if m := d.Scene.Mesh(); m != d.mesh {
		d.mesh = m
		return p, true, d.Scene.Reapply()
	}
	return p, false, nil
}
