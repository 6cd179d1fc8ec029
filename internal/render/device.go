package render

import (
	"errors"
	"fmt"
)

var (
	ErrDisposed      = errors.New("render: resource already disposed")
	ErrAttributeSize = errors.New("render: attribute length does not match vertex count")
)

type Kind int

const (
	KindGeometry Kind = iota
	KindMaterial
	KindTexture
	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindGeometry:
		return "geometry"
	case KindMaterial:
		return "material"
	case KindTexture:
		return "texture"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Device tracks every resource created through it.
type Device struct {
	nextID   uint64
	live     [numKinds]int
	created  [numKinds]int
	uploaded int64
}

func NewDevice() *Device {
	return &Device{}
}

type Stats struct {
	Geometries int
	Materials  int
	Textures   int
	Created    int
	Uploaded   int64
}

func (d *Device) Stats() Stats {
	return Stats{
		Geometries: d.live[KindGeometry],
		Materials:  d.live[KindMaterial],
		Textures:   d.live[KindTexture],
		Created:    d.created[KindGeometry] + d.created[KindMaterial] + d.created[KindTexture],
		Uploaded:   d.uploaded,
	}
}

// Live is the number of resources not yet disposed.
func (d *Device) Live() int {
	n := 0
	for _, c := range d.live {
		n += c
	}
	return n
}

func (d *Device) LiveOf(k Kind) int { return d.live[k] }

// Uploaded is the total number of bytes sent to the device.
func (d *Device) Uploaded() int64 { return d.uploaded }

func (d *Device) register(k Kind) handle {
	d.nextID++
	d.live[k]++
	d.created[k]++
	return handle{dev: d, id: d.nextID, kind: k}
}

func (d *Device) upload(bytes int) {
	d.uploaded += int64(bytes)
}

type handle struct {
	dev      *Device
	id       uint64
	kind     Kind
	disposed bool
}

func (h *handle) ID() uint64 { return h.id }

func (h *handle) Disposed() bool { return h.disposed }

func (h *handle) release() error {
	if h.disposed || h.dev == nil {
		return fmt.Errorf("%s %d: %w", h.kind, h.id, ErrDisposed)
	}
	h.disposed = true
	h.dev.live[h.kind]--
	return nil
}
