package station

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurveValidate(t *testing.T) {
	tests := []struct {
		name  string
		curve Curve
		want  error
	}{
		{"ok", Curve{{0, 1}, {1, 0.5}}, nil},
		{"single", Curve{{0, 1}}, ErrTooFewStations},
		{"empty", nil, ErrTooFewStations},
		{"nan radius", Curve{{0, 1}, {1, math.NaN()}}, ErrNonFinite},
		{"inf axial", Curve{{math.Inf(1), 1}, {1, 1}}, ErrNonFinite},
		{"negative", Curve{{0, 1}, {1, -0.1}}, ErrNegativeRadius},
		{"decreasing", Curve{{0, 1}, {1, 1}, {0.5, 1}}, ErrNotMonotonic},
		{"repeated axial", Curve{{0, 1}, {0, 2}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.curve.Validate("r_outer")
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCurveValidateReportsIndex(t *testing.T) {
	err := Curve{{0, 1}, {1, 1}, {2, math.NaN()}}.Validate("r_inner")

	var serr *Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 2, serr.Index)
	assert.Equal(t, "r_inner", serr.Field)
}

func TestNewProfile(t *testing.T) {
	p, err := NewProfile(Array{0, 1, 2}, Array{1, 0.5, 0.8}, Array{1.2, 0.7, 1.0})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 1, p.Throat())
	assert.NoError(t, p.Validate())

	_, err = NewProfile(Array{0, 1}, Array{1}, Array{1, 2})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestProfileRejectsInvertedWall(t *testing.T) {
	p, err := NewProfile(Array{0, 1, 2}, Array{0.02, 0.03, 0.02}, Array{0.025, 0.01, 0.025})
	require.NoError(t, err)

	err = p.Validate()
	require.ErrorIs(t, err, ErrInvertedWall)
	var serr *Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 1, serr.Index)
	assert.Equal(t, "r_outer", serr.Field)

	touching, err := NewProfile(Array{0, 1}, Array{0.02, 0.02}, Array{0.02, 0.03})
	require.NoError(t, err)
	assert.NoError(t, touching.Validate(), "zero wall thickness is allowed")
}

func TestArrayRange(t *testing.T) {
	lo, hi := Array{3, -1, math.NaN(), 7}.Range()
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 7.0, hi)

	lo, hi = Array{}.Range()
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}

func TestArrayNearest(t *testing.T) {
	xs := Array{0, 0.1, 0.2, 0.4}

	assert.Equal(t, 0, xs.Nearest(-5))
	assert.Equal(t, 0, xs.Nearest(0.04))
	assert.Equal(t, 1, xs.Nearest(0.06))
	assert.Equal(t, 2, xs.Nearest(0.29))
	assert.Equal(t, 3, xs.Nearest(0.31))
	assert.Equal(t, 3, xs.Nearest(9))
	assert.Equal(t, -1, Array{}.Nearest(1))
}

func TestInterp(t *testing.T) {
	xs := Array{0, 1, 2}
	ys := Array{10, 20, 40}

	assert.InDelta(t, 10, Interp(xs, ys, -1), 1e-12)
	assert.InDelta(t, 15, Interp(xs, ys, 0.5), 1e-12)
	assert.InDelta(t, 30, Interp(xs, ys, 1.5), 1e-12)
	assert.InDelta(t, 40, Interp(xs, ys, 3), 1e-12)
}

func TestCloneIsIndependent(t *testing.T) {
	a := Array{1, 2, 3}
	c := a.Clone()
	c[0] = 99
	assert.Equal(t, 1.0, a[0])
}
