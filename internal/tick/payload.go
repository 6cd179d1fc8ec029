package tick

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/san-kum/rocketviz/internal/station"
)

var ErrUnknownMessage = errors.New("tick: unknown message type")

// Payload is one solver result: station-indexed arrays plus summaries.
type Payload struct {
	Performance Performance `json:"performance"`
	Stations    Stations    `json:"stations"`
	Structural  Structural  `json:"structural_summary"`
	Cooling     *Cooling    `json:"cooling,omitempty"`
	Orifices    []Orifice   `json:"injector_orifices,omitempty"`
	Warnings    []string    `json:"warnings"`
}

type Performance struct {
	ThrustN          float64 `json:"thrust_N"`
	Isp              float64 `json:"specific_impulse_s"`
	MassFlow         float64 `json:"mass_flow_kg_s"`
	ExitVelocity     float64 `json:"exit_velocity_m_s"`
	ExitPressure     float64 `json:"exit_pressure_Pa"`
	ExitMach         float64 `json:"exit_mach"`
	CStar            float64 `json:"characteristic_velocity_m_s"`
	ThrustCoeff      float64 `json:"thrust_coefficient"`
	TotalMass        float64 `json:"total_mass_kg"`
	ThrustToWeight   float64 `json:"thrust_to_weight"`
	CoolantPressDrop float64 `json:"coolant_pressure_drop_Pa,omitempty"`
}

type Stations struct {
	X           station.Array `json:"x"`
	RInner      station.Array `json:"r_inner"`
	ROuter      station.Array `json:"r_outer"`
	Mach        station.Array `json:"mach"`
	Pressure    station.Array `json:"pressure_Pa"`
	Temperature station.Array `json:"temperature_K"`
	Velocity    station.Array `json:"velocity_m_s"`
	WallTemp    station.Array `json:"wall_temp_inner_K"`
	VonMises    station.Array `json:"von_mises_stress_MPa"`
}

type Structural struct {
	MinSafetyFactor float64 `json:"min_safety_factor"`
	MinSFStation    int     `json:"min_sf_station_index"`
	MaxVonMises     float64 `json:"max_von_mises_MPa"`
	MaxWallTemp     float64 `json:"max_wall_temp_K"`
	ThermalMargin   float64 `json:"thermal_margin"`
}

type Cooling struct {
	CoolantTemp   station.Array `json:"T_coolant_K"`
	PressureDrop  float64       `json:"coolant_pressure_drop_Pa"`
	ExitTemp      float64       `json:"coolant_exit_temp_K"`
	ChannelHeight station.Array `json:"channel_height_profile,omitempty"`
}

func (s Stations) Len() int { return len(s.X) }

// Profile builds the wall curves from the geometric arrays.
func (s Stations) Profile() (station.Profile, error) {
	p, err := station.NewProfile(s.X, s.RInner, s.ROuter)
	if err != nil {
		return station.Profile{}, err
	}
	if err := p.Validate(); err != nil {
		return station.Profile{}, err
	}
	return p, nil
}

// Validate checks that the geometric arrays form a valid profile and every
// non-empty optional array is index-aligned with it.
func (p *Payload) Validate() error {
	if _, err := p.Stations.Profile(); err != nil {
		return err
	}
	n := p.Stations.Len()
	type field struct {
		name string
		arr  station.Array
	}
	optional := []field{
		{"mach", p.Stations.Mach},
		{"pressure_Pa", p.Stations.Pressure},
		{"temperature_K", p.Stations.Temperature},
		{"velocity_m_s", p.Stations.Velocity},
		{"wall_temp_inner_K", p.Stations.WallTemp},
		{"von_mises_stress_MPa", p.Stations.VonMises},
	}
	if p.Cooling != nil {
		optional = append(optional, field{"T_coolant_K", p.Cooling.CoolantTemp})
	}
	for _, o := range optional {
		if len(o.arr) != 0 && len(o.arr) != n {
			return fmt.Errorf("%s has %d samples, want %d: %w", o.name, len(o.arr), n, station.ErrLengthMismatch)
		}
	}
	return nil
}

// CoolantTemp returns the per-station coolant temperature, or nil when the
// tick carries none.
func (p *Payload) CoolantTemp() station.Array {
	if p.Cooling == nil || len(p.Cooling.CoolantTemp) != p.Stations.Len() {
		return nil
	}
	return p.Cooling.CoolantTemp
}

// Exit returns the state at the last station.
func (p *Payload) Exit() (x, radius, mach, pressure, temperature float64) {
	s := p.Stations
	n := s.Len()
	if n == 0 {
		return
	}
	at := func(a station.Array) float64 {
		if len(a) != n {
			return 0
		}
		return a[n-1]
	}
	mach = p.Performance.ExitMach
	if mach == 0 {
		mach = at(s.Mach)
	}
	pressure = p.Performance.ExitPressure
	if pressure == 0 {
		pressure = at(s.Pressure)
	}
	return s.X[n-1], at(s.RInner), mach, pressure, at(s.Temperature)
}

// Message is the transport envelope around a payload.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

const MessageSimTick = "sim_tick"

// Decode reads either a bare payload or a sim_tick message.
func Decode(r io.Reader) (*Payload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err == nil && msg.Type != "" {
		if msg.Type != MessageSimTick {
			return nil, fmt.Errorf("%q: %w", msg.Type, ErrUnknownMessage)
		}
		data = msg.Payload
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode tick: %w", err)
	}
	return &p, nil
}

// Encode writes the payload as indented JSON.
func Encode(w io.Writer, p *Payload) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}
