package tick

import (
	"errors"
	"io"
	"math"
)

var ErrNoTicks = errors.New("tick: source has no ticks")

// Source yields solver results one tick at a time. Next returns io.EOF when
// a finite source is exhausted.
type Source interface {
	Next() (*Payload, error)
}

// Replay plays back recorded ticks in order, wrapping when Loop is set.
type Replay struct {
	Ticks []*Payload
	Loop  bool
	pos   int
}

func NewReplay(ticks []*Payload, loop bool) *Replay {
	return &Replay{Ticks: ticks, Loop: loop}
}

func (r *Replay) Next() (*Payload, error) {
	if len(r.Ticks) == 0 {
		return nil, ErrNoTicks
	}
	if r.pos >= len(r.Ticks) {
		if !r.Loop {
			return nil, io.EOF
		}
		r.pos = 0
	}
	p := r.Ticks[r.pos]
	r.pos++
	return p, nil
}

// Sweep synthesizes ticks from one engine while the chamber pressure
// oscillates by Depth around its nominal value with the given period in
// ticks. The profile never changes, so consumers only recolor.
type Sweep struct {
	Engine Engine
	Depth  float64
	Period int
	n      int
}

func NewSweep(e Engine) *Sweep {
	return &Sweep{Engine: e, Depth: 0.1, Period: 100}
}

func (s *Sweep) Next() (*Payload, error) {
	e := s.Engine
	if s.Period > 0 && s.Depth != 0 {
		phase := 2 * math.Pi * float64(s.n%s.Period) / float64(s.Period)
		e.ChamberPressure *= 1 + s.Depth*math.Sin(phase)
	}
	s.n++
	return Synthesize(e)
}

// Count is the number of ticks produced so far.
func (s *Sweep) Count() int { return s.n }
