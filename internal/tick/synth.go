package tick

import (
	"fmt"
	"math"

	"github.com/san-kum/rocketviz/internal/station"
)

const (
	g0         = 9.80665
	universalR = 8.314462618
	density    = 8900.0
)

// Engine describes a parametric converging-diverging chamber used to
// synthesize ticks without a remote solver.
type Engine struct {
	Stations         int     `yaml:"stations"`
	ChamberRadius    float64 `yaml:"chamber_radius"`
	ChamberLength    float64 `yaml:"chamber_length"`
	ConvergentLength float64 `yaml:"convergent_length"`
	ThroatRadius     float64 `yaml:"throat_radius"`
	ExitRadius       float64 `yaml:"exit_radius"`
	NozzleLength     float64 `yaml:"nozzle_length"`
	WallThickness    float64 `yaml:"wall_thickness"`

	Gamma           float64 `yaml:"gamma"`
	MolecularWeight float64 `yaml:"molecular_weight"`
	ChamberPressure float64 `yaml:"chamber_pressure_pa"`
	ChamberTemp     float64 `yaml:"chamber_temperature_k"`
	AmbientPressure float64 `yaml:"ambient_pressure_pa"`

	CoolantInletTemp float64 `yaml:"coolant_inlet_temp_k"`
	CoolantRise      float64 `yaml:"coolant_rise_k"`

	Injector InjectorLayout `yaml:"injector"`
	Material Material       `yaml:"-"`
}

func DefaultEngine() Engine {
	return Engine{
		Stations:         80,
		ChamberRadius:    0.04,
		ChamberLength:    0.08,
		ConvergentLength: 0.04,
		ThroatRadius:     0.015,
		ExitRadius:       0.045,
		NozzleLength:     0.10,
		WallThickness:    0.004,
		Gamma:            1.22,
		MolecularWeight:  0.022,
		ChamberPressure:  3e6,
		ChamberTemp:      3300,
		AmbientPressure:  101325,
		CoolantInletTemp: 110,
		CoolantRise:      180,
		Injector:         DefaultInjectorLayout(),
		Material:         Materials["cucrzr"],
	}
}

// EngineFromParams overlays UI geometry and propellant keys on the defaults.
func EngineFromParams(p Params) Engine {
	return DefaultEngine().WithParams(p)
}

// WithParams returns e with every key present in p applied.
func (e Engine) WithParams(p Params) Engine {
	e.Stations = p.Int("n_stations", e.Stations)
	e.ChamberRadius = p.Get("chamber_radius", e.ChamberRadius)
	e.ChamberLength = p.Get("chamber_length", e.ChamberLength)
	e.ConvergentLength = p.Get("convergent_length", e.ConvergentLength)
	e.ThroatRadius = p.Get("throat_radius", e.ThroatRadius)
	e.ExitRadius = p.Get("exit_radius", e.ExitRadius)
	e.NozzleLength = p.Get("nozzle_length", e.NozzleLength)
	e.WallThickness = p.Get("wall_thickness", e.WallThickness)
	e.Gamma = p.Get("gamma", e.Gamma)
	e.MolecularWeight = p.Get("molecular_weight", e.MolecularWeight)
	e.ChamberPressure = p.Get("chamber_pressure_Pa", e.ChamberPressure)
	e.ChamberTemp = p.Get("chamber_temperature_K", e.ChamberTemp)
	e.AmbientPressure = p.Get("ambient_pressure_Pa", e.AmbientPressure)
	e.Injector.Rings = p.Int("n_rings", e.Injector.Rings)
	e.Injector.ElementsBase = p.Int("elements_per_ring_base", e.Injector.ElementsBase)
	e.Injector.FuelDiameter = p.Get("fuel_orifice_diameter", e.Injector.FuelDiameter)
	e.Injector.OxDiameter = p.Get("ox_orifice_diameter", e.Injector.OxDiameter)
	return e
}

func (e Engine) Validate() error {
	switch {
	case e.Stations < 2:
		return fmt.Errorf("engine: %w", station.ErrTooFewStations)
	case e.ThroatRadius <= 0 || e.ThroatRadius >= e.ChamberRadius:
		return fmt.Errorf("engine: throat radius %g must be in (0, %g)", e.ThroatRadius, e.ChamberRadius)
	case e.ExitRadius < e.ThroatRadius:
		return fmt.Errorf("engine: exit radius %g below throat radius %g", e.ExitRadius, e.ThroatRadius)
	case e.WallThickness <= 0:
		return fmt.Errorf("engine: wall thickness must be positive")
	case e.Gamma <= 1:
		return fmt.Errorf("engine: gamma must exceed 1")
	}
	return nil
}

// Length is the injector-to-exit distance.
func (e Engine) Length() float64 {
	return e.ChamberLength + e.ConvergentLength + e.NozzleLength
}

func (e Engine) radiusAt(x float64) float64 {
	switch {
	case x <= e.ChamberLength:
		return e.ChamberRadius
	case x <= e.ChamberLength+e.ConvergentLength:
		t := (x - e.ChamberLength) / e.ConvergentLength
		blend := 0.5 - 0.5*math.Cos(math.Pi*t)
		return e.ChamberRadius + (e.ThroatRadius-e.ChamberRadius)*blend
	default:
		t := (x - e.ChamberLength - e.ConvergentLength) / e.NozzleLength
		return e.ThroatRadius + (e.ExitRadius-e.ThroatRadius)*(1-(1-t)*(1-t))
	}
}

// Synthesize produces a self-consistent tick from quasi-1D isentropic flow,
// thin-wall hoop stress and a counter-flow coolant temperature rise.
func Synthesize(e Engine) (*Payload, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	n := e.Stations
	s := Stations{
		X:           make(station.Array, n),
		RInner:      make(station.Array, n),
		ROuter:      make(station.Array, n),
		Mach:        make(station.Array, n),
		Pressure:    make(station.Array, n),
		Temperature: make(station.Array, n),
		Velocity:    make(station.Array, n),
		WallTemp:    make(station.Array, n),
		VonMises:    make(station.Array, n),
	}

	length := e.Length()
	throatX := e.ChamberLength + e.ConvergentLength
	for i := 0; i < n; i++ {
		x := length * float64(i) / float64(n-1)
		s.X[i] = x
		s.RInner[i] = e.radiusAt(x)
		s.ROuter[i] = s.RInner[i] + e.WallThickness
	}
	throat := s.RInner.ArgMin()

	g := e.Gamma
	rGas := universalR / e.MolecularWeight
	heat := make(station.Array, n)
	for i := 0; i < n; i++ {
		ratio := (s.RInner[i] / e.ThroatRadius) * (s.RInner[i] / e.ThroatRadius)
		switch {
		case i == throat:
			s.Mach[i] = 1
		case s.X[i] < throatX:
			s.Mach[i] = MachFromAreaRatio(ratio, g, false)
		default:
			s.Mach[i] = MachFromAreaRatio(ratio, g, true)
		}
		m := s.Mach[i]
		s.Temperature[i] = e.ChamberTemp / (1 + (g-1)/2*m*m)
		s.Pressure[i] = e.ChamberPressure * math.Pow(s.Temperature[i]/e.ChamberTemp, g/(g-1))
		s.Velocity[i] = m * math.Sqrt(g*rGas*s.Temperature[i])

		heat[i] = math.Pow(e.ThroatRadius/s.RInner[i], 1.8)
		s.WallTemp[i] = 500 + 0.35*(e.ChamberTemp-500)*heat[i]

		hoop := s.Pressure[i] * s.RInner[i] / e.WallThickness / 1e6
		thermal := 0.08 * (s.WallTemp[i] - 300)
		s.VonMises[i] = hoop + thermal
	}

	// coolant enters at the nozzle exit and flows toward the injector
	coolant := make(station.Array, n)
	total := 0.0
	for i := n - 1; i > 0; i-- {
		total += heat[i] * (s.X[i] - s.X[i-1])
	}
	acc := 0.0
	coolant[n-1] = e.CoolantInletTemp
	for i := n - 2; i >= 0; i-- {
		acc += heat[i+1] * (s.X[i+1] - s.X[i])
		coolant[i] = e.CoolantInletTemp + e.CoolantRise*acc/total
	}

	p := &Payload{
		Stations: s,
		Cooling: &Cooling{
			CoolantTemp:  coolant,
			PressureDrop: 0.15 * e.ChamberPressure,
			ExitTemp:     coolant[0],
		},
		Orifices: e.Injector.Orifices(s.RInner[0]),
	}
	p.Performance = e.performance(s, throat)
	p.Performance.CoolantPressDrop = p.Cooling.PressureDrop
	p.Structural = e.structural(s)
	p.Warnings = e.warnings(p.Structural)
	return p, nil
}

func (e Engine) performance(s Stations, throat int) Performance {
	g := e.Gamma
	rGas := universalR / e.MolecularWeight
	last := s.Len() - 1
	at := math.Pi * s.RInner[throat] * s.RInner[throat]
	ae := math.Pi * s.RInner[last] * s.RInner[last]

	gammaFn := math.Sqrt(g * math.Pow(2/(g+1), (g+1)/(g-1)))
	cStar := math.Sqrt(rGas*e.ChamberTemp) / gammaFn
	mdot := e.ChamberPressure * at / cStar
	thrust := mdot*s.Velocity[last] + (s.Pressure[last]-e.AmbientPressure)*ae

	mass := 0.0
	for i := 1; i <= last; i++ {
		dx := s.X[i] - s.X[i-1]
		ro := (s.ROuter[i] + s.ROuter[i-1]) / 2
		ri := (s.RInner[i] + s.RInner[i-1]) / 2
		mass += math.Pi * (ro*ro - ri*ri) * dx * density
	}

	perf := Performance{
		ThrustN:      thrust,
		MassFlow:     mdot,
		ExitVelocity: s.Velocity[last],
		ExitPressure: s.Pressure[last],
		ExitMach:     s.Mach[last],
		CStar:        cStar,
		ThrustCoeff:  thrust / (e.ChamberPressure * at),
		TotalMass:    mass,
	}
	if mdot > 0 {
		perf.Isp = thrust / (mdot * g0)
	}
	if mass > 0 {
		perf.ThrustToWeight = thrust / (mass * g0)
	}
	return perf
}

func (e Engine) structural(s Stations) Structural {
	st := Structural{MinSafetyFactor: math.Inf(1)}
	for i, vm := range s.VonMises {
		if vm > st.MaxVonMises {
			st.MaxVonMises = vm
		}
		if s.WallTemp[i] > st.MaxWallTemp {
			st.MaxWallTemp = s.WallTemp[i]
		}
		if vm <= 0 {
			continue
		}
		if sf := e.Material.YieldMPa / vm; sf < st.MinSafetyFactor {
			st.MinSafetyFactor = sf
			st.MinSFStation = i
		}
	}
	if math.IsInf(st.MinSafetyFactor, 1) {
		st.MinSafetyFactor = 0
	}
	st.ThermalMargin = st.MaxWallTemp / 1356
	return st
}

func (e Engine) warnings(st Structural) []string {
	var w []string
	if st.ThermalMargin > 0.8 {
		w = append(w, fmt.Sprintf("Wall temperature reaches %.0f%% of melting point", st.ThermalMargin*100))
	}
	if st.ThermalMargin > 1 {
		w = append(w, "CRITICAL: Wall temperature exceeds melting point")
	}
	if st.MinSafetyFactor < 1.5 {
		w = append(w, fmt.Sprintf("Low safety factor: %.2f at station %d", st.MinSafetyFactor, st.MinSFStation))
	}
	if st.MinSafetyFactor < 1 {
		w = append(w, "CRITICAL: Safety factor below 1.0")
	}
	return w
}

// MachFromAreaRatio inverts the isentropic area-Mach relation by bisection.
func MachFromAreaRatio(ratio, gamma float64, supersonic bool) float64 {
	if ratio <= 1 {
		return 1
	}
	areaRatio := func(m float64) float64 {
		t := 2 / (gamma + 1) * (1 + (gamma-1)/2*m*m)
		return math.Pow(t, (gamma+1)/(2*(gamma-1))) / m
	}
	lo, hi := 1e-6, 1.0
	if supersonic {
		lo, hi = 1.0, 50.0
	}
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		above := areaRatio(mid) > ratio
		// area ratio falls with M below 1 and rises above it
		if above != supersonic {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
