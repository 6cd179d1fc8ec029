package tick

import (
	"fmt"
	"sort"
)

// Material is the display metadata the UI sends for the selected wall alloy.
type Material struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	ColorHex string  `json:"color_hex" yaml:"color_hex"`
	YieldMPa float64 `json:"yield_strength_MPa" yaml:"yield_strength_mpa"`
}

var Materials = map[string]Material{
	"cucrzr":     {ID: "cucrzr", Name: "CuCrZr", ColorHex: "#b87333", YieldMPa: 350},
	"grcop84":    {ID: "grcop84", Name: "GRCop-84", ColorHex: "#c8804a", YieldMPa: 207},
	"inconel718": {ID: "inconel718", Name: "Inconel 718", ColorHex: "#8c8c8c", YieldMPa: 1034},
	"ss316":      {ID: "ss316", Name: "Stainless 316L", ColorHex: "#a8a9ad", YieldMPa: 290},
	"c103":       {ID: "c103", Name: "Niobium C103", ColorHex: "#6e7b8b", YieldMPa: 255},
}

func LookupMaterial(id string) (Material, error) {
	m, ok := Materials[id]
	if !ok {
		return Material{}, fmt.Errorf("tick: unknown material %q", id)
	}
	return m, nil
}

func ListMaterials() []string {
	ids := make([]string, 0, len(Materials))
	for id := range Materials {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
