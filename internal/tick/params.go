package tick

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Params is a flat numeric configuration map as sent by the UI, e.g.
// {"n_channels": 40, "channel_width": 0.0015}.
type Params map[string]float64

// Get returns the value at key, or def when the key is absent or non-finite.
func (p Params) Get(key string, def float64) float64 {
	v, ok := p[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return int(math.Round(v))
}

// Set parses "key=value" and stores it.
func (p Params) Set(kv string) error {
	key, val, ok := strings.Cut(kv, "=")
	if !ok {
		return fmt.Errorf("tick: expected key=value, got %q", kv)
	}
	var f float64
	if _, err := fmt.Sscanf(strings.TrimSpace(val), "%g", &f); err != nil {
		return fmt.Errorf("tick: param %s: %w", key, err)
	}
	p[strings.TrimSpace(key)] = f
	return nil
}

func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
