package scene

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rocketviz/internal/overlay"
	"github.com/san-kum/rocketviz/internal/tick"
)

func TestDriverReappliesAfterRebuild(t *testing.T) {
	s := newScene(t, testConfig())
	require.NoError(t, s.SetMode(overlay.Thermal))
	d := NewDriver(s, tick.NewReplay([]*tick.Payload{
		synth(t, nil),
		synth(t, func(e *tick.Engine) { e.ChamberPressure = 4e6 }),
		synth(t, func(e *tick.Engine) { e.ExitRadius = 0.06 }),
	}, false))

	_, rebuilt, err := d.Pull()
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.True(t, s.Metadata().Applied)

	_, rebuilt, err = d.Pull()
	require.NoError(t, err)
	assert.False(t, rebuilt)
	assert.True(t, s.Metadata().Applied)

	_, rebuilt, err = d.Pull()
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.True(t, s.Metadata().Applied)
	assert.True(t, s.Mesh().Outer.Material.VertexColors)

	_, _, err = d.Pull()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 3, d.Ticks)
}
