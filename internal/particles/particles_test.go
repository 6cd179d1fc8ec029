package particles

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rocketviz/internal/colormap"
	"github.com/san-kum/rocketviz/internal/render"
	"github.com/san-kum/rocketviz/internal/station"
)

func seaLevel() PlumeInputs {
	return PlumeInputs{
		ExitMach:        3,
		ExitPressure:    101325,
		AmbientPressure: 101325,
		ExitTemp:        1500,
		Gamma:           1.22,
		ExitX:           0.3,
		ExitRadius:      0.045,
		Thrust:          1,
	}
}

func nozzleStations(n int) FlowStations {
	s := FlowStations{
		X:           make(station.Array, n),
		RInner:      make(station.Array, n),
		Velocity:    make(station.Array, n),
		Temperature: make(station.Array, n),
	}
	for i := 0; i < n; i++ {
		u := float64(i) / float64(n-1)
		s.X[i] = 0.3 * u
		s.RInner[i] = 0.015 + 0.025*math.Abs(2*u-1)
		s.Velocity[i] = 100 + 2400*u*u
		s.Temperature[i] = 3400 - 1900*u
	}
	return s
}

func expectLifetimesInRange(ps []Particle) {
	for _, p := range ps {
		Expect(p.Life).To(BeNumerically(">=", 0))
		Expect(p.Life).To(BeNumerically("<", 1))
	}
}

var _ = Describe("wrap", func() {
	DescribeTable("folds into [0,1)",
		func(in, want float64) {
			Expect(wrap(in)).To(BeNumerically("~", want, 1e-12))
		},
		Entry("inside", 0.25, 0.25),
		Entry("exactly one", 1.0, 0.0),
		Entry("overflow", 2.75, 0.75),
		Entry("negative", -0.25, 0.75),
		Entry("tiny negative", -1e-18, 0.0),
		Entry("NaN", math.NaN(), 0.0),
		Entry("infinite", math.Inf(1), 0.0),
	)
})

var _ = Describe("trigTable", func() {
	It("tracks math.Sincos", func() {
		for _, turns := range []float64{0, 0.1, 0.25, 0.5, 0.77, 1.3, -0.2} {
			s, c := azimuths.sincos(turns)
			ws, wc := math.Sincos(2 * math.Pi * turns)
			Expect(s).To(BeNumerically("~", ws, 1e-5))
			Expect(c).To(BeNumerically("~", wc, 1e-5))
		}
	})
})

var _ = Describe("DerivePlume", func() {
	It("matches the Mach angle for a matched nozzle", func() {
		s := DerivePlume(seaLevel())
		Expect(s.PressureRatio).To(BeNumerically("~", 1, 1e-12))
		Expect(s.HalfAngle).To(BeNumerically("~", math.Asin(1.0/3), 1e-12))
		Expect(s.ShockSpacing).To(BeNumerically("~", 1.22*0.09*math.Sqrt(8), 1e-12))
		Expect(s.Length).To(BeNumerically("~", 0.09*10, 1e-12))
	})

	DescribeTable("widens strictly with pressure ratio at fixed Mach",
		func(mach float64) {
			in := seaLevel()
			in.ExitMach = mach
			prev := -1.0
			for _, ratio := range []float64{0.2, 0.5, 0.9, 1, 1.1, 2, 2.5, 3, 5, 10, 20, 1000, 2000, 3000, 1e4} {
				in.ExitPressure = ratio * in.AmbientPressure
				s := DerivePlume(in)
				Expect(s.HalfAngle).To(BeNumerically(">", prev), "ratio %v", ratio)
				Expect(s.HalfAngle).To(BeNumerically("<", MaxHalfAngle), "ratio %v", ratio)
				prev = s.HalfAngle
			}
		},
		Entry("near sonic", 1.05),
		Entry("slightly supersonic", 1.1),
		Entry("supersonic", 3.0),
	)

	It("widens when underexpanded and narrows when overexpanded", func() {
		base := DerivePlume(seaLevel()).HalfAngle
		under, over := seaLevel(), seaLevel()
		under.ExitPressure *= 3
		over.ExitPressure /= 3
		Expect(DerivePlume(under).HalfAngle).To(BeNumerically(">", base))
		Expect(DerivePlume(over).HalfAngle).To(BeNumerically("<", base))
	})

	It("treats vacuum as a very large ratio and bounds the cone", func() {
		in := seaLevel()
		in.AmbientPressure = 0
		in.ExitMach = 1.01
		s := DerivePlume(in)
		Expect(s.PressureRatio).To(Equal(vacuumRatio))
		Expect(s.HalfAngle).To(BeNumerically("<", MaxHalfAngle))

		in.AmbientPressure = 101325
		in.ExitPressure = 1e4 * in.AmbientPressure
		Expect(s.HalfAngle).To(BeNumerically(">", DerivePlume(in).HalfAngle))
	})

	It("has no shock cells without a supersonic exit", func() {
		in := seaLevel()
		in.ExitMach = 0.8
		s := DerivePlume(in)
		Expect(s.ShockSpacing).To(BeZero())
		Expect(s.Brightness(0.1)).To(Equal(1.0))
	})

	It("is a pure function of its inputs", func() {
		Expect(DerivePlume(seaLevel())).To(Equal(DerivePlume(seaLevel())))
	})

	It("cools downstream", func() {
		in := seaLevel()
		s := DerivePlume(in)
		Expect(s.LocalTemp(in, 0)).To(BeNumerically("~", in.ExitTemp, 1e-9))
		Expect(s.LocalTemp(in, 1)).To(BeNumerically("~", s.TipTemp, 1e-9))
		Expect(s.TipTemp).To(BeNumerically("<", in.ExitTemp))
	})

	It("damps the shock-cell modulation downstream", func() {
		s := DerivePlume(seaLevel())
		Expect(s.Brightness(0) - 1).To(BeNumerically("~", shockAmplitude, 1e-12))
		Expect(s.Brightness(s.ShockSpacing*2) - 1).To(BeNumerically("<", shockAmplitude))
	})
})

var _ = Describe("Plume", func() {
	var (
		dev   *render.Device
		plume *Plume
	)

	BeforeEach(func() {
		dev = render.NewDevice()
		plume = NewPlume(dev, 0, 7)
	})

	It("defaults to the standard pool size", func() {
		Expect(plume.Particles()).To(HaveLen(DefaultPlumeParticles))
		Expect(dev.LiveOf(render.KindGeometry)).To(Equal(1))
	})

	It("rejects invalid inputs", func() {
		in := seaLevel()
		in.ExitRadius = 0
		Expect(plume.SetInputs(in)).To(MatchError(ErrPlumeInputs))
		in = seaLevel()
		in.ExitMach = math.NaN()
		Expect(plume.SetInputs(in)).To(MatchError(ErrPlumeInputs))
		Expect(plume.Ready()).To(BeFalse())
	})

	It("re-derives the shape when inputs change", func() {
		Expect(plume.SetInputs(seaLevel())).To(Succeed())
		before := plume.Shape()
		in := seaLevel()
		in.ExitPressure *= 2
		Expect(plume.SetInputs(in)).To(Succeed())
		Expect(plume.Shape().HalfAngle).To(BeNumerically(">", before.HalfAngle))
	})

	It("keeps lifetimes in [0,1) over many steps", func() {
		Expect(plume.SetInputs(seaLevel())).To(Succeed())
		for i := 0; i < 2000; i++ {
			plume.Advance(1.0 / 60)
		}
		plume.Advance(123.456)
		expectLifetimesInRange(plume.Particles())
	})

	It("freezes at zero thrust", func() {
		in := seaLevel()
		in.Thrust = 0
		Expect(plume.SetInputs(in)).To(Succeed())
		before := append([]Particle(nil), plume.Particles()...)
		plume.Advance(0.5)
		Expect(plume.Particles()).To(Equal(before))
	})

	It("advances faster with more thrust", func() {
		Expect(plume.SetInputs(seaLevel())).To(Succeed())
		plume.SetThrust(0.5)
		p0 := plume.Particles()[0]
		plume.Advance(0.01)
		half := plume.Particles()[0].Life - p0.Life

		plume.SetThrust(1)
		p1 := plume.Particles()[0]
		plume.Advance(0.01)
		full := plume.Particles()[0].Life - p1.Life
		if half > 0 && full > 0 {
			Expect(full).To(BeNumerically("~", 2*half, 1e-9))
		}
	})

	It("places particles inside the cone", func() {
		in := seaLevel()
		Expect(plume.SetInputs(in)).To(Succeed())
		s := plume.Shape()
		for _, q := range plume.Particles()[:200] {
			x, y, z := plume.Position(q)
			d := x - in.ExitX
			Expect(d).To(BeNumerically(">=", 0))
			Expect(d).To(BeNumerically("<=", s.Length))
			Expect(math.Hypot(y, z)).To(BeNumerically("<=", s.ConeRadius(in.ExitRadius, d)+1e-9))
		}
	})

	It("uploads positions and colors in one batch per sync", func() {
		Expect(plume.SetInputs(seaLevel())).To(Succeed())
		g := dev.Stats()
		Expect(plume.Sync()).To(Succeed())
		Expect(dev.Stats().Uploaded).To(BeNumerically(">", g.Uploaded))
		Expect(plume.Solid().Geometry.Version).To(Equal(1))
	})

	It("collapses onto the exit when idle", func() {
		in := seaLevel()
		in.Thrust = 0
		Expect(plume.SetInputs(in)).To(Succeed())
		Expect(plume.Sync()).To(Succeed())
		pos := plume.Solid().Geometry.Positions
		Expect(pos[0]).To(BeNumerically("~", in.ExitX, 1e-6))
		Expect(pos[1]).To(BeZero())
	})

	It("releases everything on dispose", func() {
		Expect(plume.Dispose()).To(Succeed())
		Expect(dev.Live()).To(BeZero())
		Expect(plume.Sync()).To(MatchError(render.ErrDisposed))
		Expect(plume.Dispose()).To(HaveOccurred())
	})
})

var _ = Describe("Flow", func() {
	var (
		dev  *render.Device
		flow *Flow
	)

	BeforeEach(func() {
		dev = render.NewDevice()
		flow = NewFlow(dev, 0, 11)
	})

	It("defaults to the standard pool size", func() {
		Expect(flow.Particles()).To(HaveLen(DefaultFlowParticles))
		Expect(dev.LiveOf(render.KindTexture)).To(Equal(1))
	})

	It("rejects misaligned or short station arrays", func() {
		s := nozzleStations(20)
		s.Velocity = s.Velocity[:10]
		Expect(flow.SetStations(s)).To(MatchError(station.ErrLengthMismatch))
		Expect(flow.SetStations(nozzleStations(1))).To(MatchError(station.ErrTooFewStations))
		s = nozzleStations(20)
		s.Temperature[3] = math.Inf(1)
		Expect(flow.SetStations(s)).To(MatchError(station.ErrNonFinite))
		Expect(flow.Ready()).To(BeFalse())
	})

	It("resamples to the table width and uploads it", func() {
		s := nozzleStations(40)
		Expect(flow.SetStations(s)).To(Succeed())
		lut := flow.LUT()
		Expect(lut.X0).To(Equal(0.0))
		Expect(lut.X1).To(BeNumerically("~", 0.3, 1e-12))
		Expect(lut.Velocity[0]).To(BeNumerically("~", 100, 1e-9))
		Expect(lut.Velocity[LUTWidth-1]).To(BeNumerically("~", 2500, 1e-9))
		Expect(lut.MaxVelocity).To(BeNumerically("~", 2500, 1e-9))

		tex := flow.Texture()
		Expect(tex.Version).To(Equal(1))
		Expect(tex.Texel(LUTWidth - 1)[1]).To(BeNumerically("~", 2500, 1e-3))
		Expect(tex.Texel(0)[3]).To(Equal(float32(1)))
	})

	It("moves faster where the gas is faster", func() {
		Expect(flow.SetStations(nozzleStations(40))).To(Succeed())
		ps := flow.Particles()
		ps[0] = Particle{Speed: 1, Life: 0.01}
		ps[1] = Particle{Speed: 1, Life: 0.9}
		flow.Tick(0.01)
		Expect(ps[1].Life - 0.9).To(BeNumerically(">", ps[0].Life-0.01))
	})

	It("steps at a fixed rate between ticks", func() {
		ps := flow.Particles()
		ps[0] = Particle{Speed: 1, Life: 0.01}
		ps[1] = Particle{Speed: 1, Life: 0.5}
		flow.Advance(0.1)
		Expect(ps[0].Life - 0.01).To(BeNumerically("~", ps[1].Life-0.5, 1e-12))
	})

	It("does not tick before station data arrives", func() {
		before := append([]Particle(nil), flow.Particles()...)
		flow.Tick(1)
		Expect(flow.Particles()).To(Equal(before))
	})

	It("keeps lifetimes in [0,1) over many steps", func() {
		Expect(flow.SetStations(nozzleStations(40))).To(Succeed())
		for i := 0; i < 500; i++ {
			flow.Advance(1.0 / 60)
			if i%6 == 0 {
				flow.Tick(0.1)
			}
		}
		flow.Tick(77.7)
		expectLifetimesInRange(flow.Particles())
	})

	It("keeps particles inside the wall and colors by temperature", func() {
		s := nozzleStations(40)
		Expect(flow.SetStations(s)).To(Succeed())
		for _, q := range flow.Particles()[:200] {
			x, y, z := flow.Position(q)
			Expect(math.Hypot(y, z)).To(BeNumerically("<", station.Interp(s.X, s.RInner, x)+1e-3))
		}
		hot := flow.Color(Particle{Life: 0})
		Expect(hot.Hex()).To(Equal(colormap.Thermal.High().Hex()))
		Expect(flow.Sync()).To(Succeed())
	})

	It("releases everything on dispose", func() {
		Expect(flow.Dispose()).To(Succeed())
		Expect(dev.Live()).To(BeZero())
	})
})
