package station

import (
	"fmt"
	"math"
	"sort"
)

// Point is one (axial position, radius) sample of a wall curve.
type Point struct {
	X float64
	R float64
}

// Curve is an ordered polyline in the axial-radial plane.
type Curve []Point

func (c Curve) Len() int { return len(c) }

// Validate checks that the curve has at least two finite stations with
// non-decreasing axial position and non-negative radius.
func (c Curve) Validate(field string) error {
	if len(c) < 2 {
		return fmt.Errorf("%s: %w", field, ErrTooFewStations)
	}
	for i, p := range c {
		if !finite(p.X) || !finite(p.R) {
			return &Error{Field: field, Index: i, Wrapped: ErrNonFinite}
		}
		if p.R < 0 {
			return &Error{Field: field, Index: i, Wrapped: ErrNegativeRadius}
		}
		if i > 0 && p.X < c[i-1].X {
			return &Error{Field: field, Index: i, Wrapped: ErrNotMonotonic}
		}
	}
	return nil
}

// Xs returns the axial coordinates as an Array.
func (c Curve) Xs() Array {
	xs := make(Array, len(c))
	for i, p := range c {
		xs[i] = p.X
	}
	return xs
}

// Rs returns the radii as an Array.
func (c Curve) Rs() Array {
	rs := make(Array, len(c))
	for i, p := range c {
		rs[i] = p.R
	}
	return rs
}

// Profile holds the inner (hot-gas) and outer wall curves of one engine.
type Profile struct {
	Inner Curve
	Outer Curve
}

// NewProfile zips parallel arrays into a profile.
func NewProfile(x, rInner, rOuter Array) (Profile, error) {
	if len(x) != len(rInner) || len(x) != len(rOuter) {
		return Profile{}, fmt.Errorf("profile x=%d r_inner=%d r_outer=%d: %w",
			len(x), len(rInner), len(rOuter), ErrLengthMismatch)
	}
	p := Profile{Inner: make(Curve, len(x)), Outer: make(Curve, len(x))}
	for i := range x {
		p.Inner[i] = Point{X: x[i], R: rInner[i]}
		p.Outer[i] = Point{X: x[i], R: rOuter[i]}
	}
	return p, nil
}

func (p Profile) Len() int { return len(p.Inner) }

// Validate checks both curves and that the outer wall never dips below the
// inner one.
func (p Profile) Validate() error {
	if len(p.Inner) != len(p.Outer) {
		return fmt.Errorf("profile inner=%d outer=%d: %w", len(p.Inner), len(p.Outer), ErrLengthMismatch)
	}
	if err := p.Inner.Validate("r_inner"); err != nil {
		return err
	}
	if err := p.Outer.Validate("r_outer"); err != nil {
		return err
	}
	for i := range p.Outer {
		if p.Outer[i].R < p.Inner[i].R {
			return &Error{Field: "r_outer", Index: i, Wrapped: ErrInvertedWall}
		}
	}
	return nil
}

// Throat returns the index of the minimum inner radius.
func (p Profile) Throat() int {
	return p.Inner.Rs().ArgMin()
}

// Array is a scalar sampled at every station.
type Array []float64

func (a Array) Clone() Array {
	c := make(Array, len(a))
	copy(c, a)
	return c
}

func (a Array) IsValid() bool {
	for _, v := range a {
		if !finite(v) {
			return false
		}
	}
	return true
}

// Aligned reports whether a has exactly n finite samples.
func (a Array) Aligned(n int) bool {
	return len(a) == n && a.IsValid()
}

// Range returns the minimum and maximum finite samples. An empty array
// yields (0, 0).
func (a Array) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range a {
		if !finite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

func (a Array) ArgMin() int {
	idx := -1
	for i, v := range a {
		if !finite(v) {
			continue
		}
		if idx < 0 || v < a[idx] {
			idx = i
		}
	}
	if idx < 0 {
		return 0
	}
	return idx
}

// Nearest returns the index whose value is closest to x. The array must be
// sorted ascending, as axial positions are.
func (a Array) Nearest(x float64) int {
	if len(a) == 0 {
		return -1
	}
	i := sort.SearchFloat64s(a, x)
	switch {
	case i == 0:
		return 0
	case i >= len(a):
		return len(a) - 1
	}
	if x-a[i-1] <= a[i]-x {
		return i - 1
	}
	return i
}

// Interp linearly interpolates ys over the ascending abscissa xs at x,
// clamping outside the sampled range.
func Interp(xs, ys Array, x float64) float64 {
	n := min(len(xs), len(ys))
	if n == 0 {
		return 0
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	i := sort.SearchFloat64s(xs[:n], x)
	x0, x1 := xs[i-1], xs[i]
	if x1-x0 <= 0 {
		return ys[i]
	}
	t := (x - x0) / (x1 - x0)
	return ys[i-1] + t*(ys[i]-ys[i-1])
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
