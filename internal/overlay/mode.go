package overlay

import (
	"fmt"
	"strings"
)

// Mode is the active analysis overlay. At most one is applied at a time.
type Mode int

const (
	None Mode = iota
	Thermal
	Stress
	Flow
	Cooling
	numModes
)

var modeNames = [numModes]string{"none", "thermal", "stress", "flow", "cooling"}

func (m Mode) String() string {
	if m < 0 || m >= numModes {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

func (m Mode) Valid() bool { return m >= 0 && m < numModes }

// ParseMode maps a UI token to a Mode. The empty token means None.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return None, nil
	}
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return None, fmt.Errorf("overlay: unknown mode %q (want one of %s)", s, strings.Join(modeNames[:], ", "))
}

func Modes() []Mode {
	out := make([]Mode, numModes)
	for i := range out {
		out[i] = Mode(i)
	}
	return out
}

// Next cycles through the modes, wrapping after Cooling.
func (m Mode) Next() Mode {
	return (m + 1) % numModes
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
