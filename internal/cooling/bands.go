package cooling

import (
	"math"

	"github.com/san-kum/rocketviz/internal/station"
)

// Bands are the radial boundaries of the wall layers at each station:
// hot wall [Inner, HotWall], channel [HotWall, Channel], closeout
// [Channel, Outer].
type Bands struct {
	X       station.Array
	Inner   station.Array
	HotWall station.Array
	Channel station.Array
	Outer   station.Array
}

// ComputeBands splits the wall at every station. heights overrides the
// configured channel heights when it is aligned with the profile.
func ComputeBands(p station.Profile, cfg Config, heights station.Array) Bands {
	n := p.Len()
	if len(heights) != n {
		heights = cfg.Heights(n)
	}
	b := Bands{
		X:       make(station.Array, n),
		Inner:   make(station.Array, n),
		HotWall: make(station.Array, n),
		Channel: make(station.Array, n),
		Outer:   make(station.Array, n),
	}
	for i := 0; i < n; i++ {
		ri, ro := p.Inner[i].R, p.Outer[i].R
		t := math.Max(ro-ri, 0)
		hot := HotWallFraction * t
		ch := math.Max(0, math.Min(heights[i], t-hot-MinCloseout))

		b.X[i] = p.Inner[i].X
		b.Inner[i] = ri
		b.HotWall[i] = ri + hot
		b.Channel[i] = ri + hot + ch
		b.Outer[i] = ri + t
	}
	return b
}

func (b Bands) Len() int { return len(b.X) }

// ChannelMid is the radius halfway through the channel layer.
func (b Bands) ChannelMid() station.Array {
	mid := make(station.Array, len(b.X))
	for i := range mid {
		mid[i] = (b.HotWall[i] + b.Channel[i]) / 2
	}
	return mid
}
