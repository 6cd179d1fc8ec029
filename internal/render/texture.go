package render

// Texture is an RGBA float data texture, used as a lookup table indexed by
// normalized axial position.
type Texture struct {
	handle
	Name    string
	Width   int
	Height  int
	Data    []float32
	Version int
}

func (d *Device) NewDataTexture(name string, width, height int) *Texture {
	return &Texture{
		handle: d.register(KindTexture),
		Name:   name,
		Width:  width,
		Height: height,
		Data:   make([]float32, 4*width*height),
	}
}

// Upload replaces the texel data, which must be 4*Width*Height floats.
func (t *Texture) Upload(data []float32) error {
	if t.disposed {
		return ErrDisposed
	}
	if len(data) != 4*t.Width*t.Height {
		return ErrAttributeSize
	}
	copy(t.Data, data)
	t.Version++
	t.dev.upload(4 * len(data))
	return nil
}

// Texel returns the RGBA value at column i of the first row.
func (t *Texture) Texel(i int) [4]float32 {
	return [4]float32{t.Data[4*i], t.Data[4*i+1], t.Data[4*i+2], t.Data[4*i+3]}
}

func (t *Texture) Dispose() error {
	if err := t.release(); err != nil {
		return err
	}
	t.Data = nil
	return nil
}
