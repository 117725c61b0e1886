// Package yield estimates expected crop yield.
//
// Estimates come from, in order: an external provider, the administrator
// maintained crop_yield_configs table, and a static multiplicative model
// held in a Table. The static model always answers, so estimation never
// fails.
package yield

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Default figures used by the static model when a key is unknown.
const (
	DefaultBaseYield = 5.0
	DefaultFactor    = 1.0
)

// Table is the static yield model: a base yield per crop in quintals per
// acre, scaled by soil, season and irrigation factors. A Table is never
// modified after construction and is safe for concurrent use.
type Table struct {
	defaultBase float64
	base        map[string]float64
	soil        map[string]float64
	season      map[string]float64
	irrigation  map[string]float64
}

// TableSpec is the serializable form of a Table. It is also the layout of the
// YAML override file.
type TableSpec struct {
	DefaultBaseYield  *float64           `yaml:"default_base_yield"`
	BaseYield         map[string]float64 `yaml:"base_yield"`
	SoilFactors       map[string]float64 `yaml:"soil_factors"`
	SeasonFactors     map[string]float64 `yaml:"season_factors"`
	IrrigationFactors map[string]float64 `yaml:"irrigation_factors"`
}

// DefaultTableSpec returns the built-in figures.
func DefaultTableSpec() TableSpec {
	def := DefaultBaseYield
	return TableSpec{
		DefaultBaseYield: &def,
		BaseYield: map[string]float64{
			"Ragi":             5.6,
			"Paddy":            8.2,
			"Maize":            9.7,
			"Tur":              3.2,
			"Horse Gram":       2.4,
			"Cowpea":           2.8,
			"Groundnut":        3.2,
			"Pulses":           2.6,
			"Sugarcane":        360.0,
			"Tomato":           100.0,
			"Potato":           100.0,
			"Onion":            80.0,
			"Beans":            32.0,
			"Cabbage":          92.0,
			"Cauliflower":      76.0,
			"Brinjal":          72.0,
			"Chilli":           12.0,
			"Carrot":           100.0,
			"Radish":           80.0,
			"Capsicum":         120.0,
			"Leafy Vegetables": 60.0,
		},
		SoilFactors: map[string]float64{
			"Alluvial":   1.05,
			"Black":      1.05,
			"Red":        1.0,
			"Laterite":   0.9,
			"Desert":     0.7,
			"Mountain":   0.85,
			"Sandy Loam": 0.95,
			"Clay Loam":  1.0,
		},
		SeasonFactors: map[string]float64{
			"Kharif (Monsoon)":     1.0,
			"Rabi (Winter)":        1.05,
			"Zaid (Summer)":        0.9,
			"Perennial (All Year)": 1.0,
		},
		IrrigationFactors: map[string]float64{
			"Rainfed":   0.85,
			"Canal":     1.05,
			"Tube well": 1.0,
			"Drip":      1.1,
			"Sprinkler": 1.05,
		},
	}
}

// NewTable builds a Table from spec. The maps are copied.
func NewTable(spec TableSpec) (*Table, error) {
	t := &Table{
		defaultBase: DefaultBaseYield,
		base:        make(map[string]float64, len(spec.BaseYield)),
		soil:        make(map[string]float64, len(spec.SoilFactors)),
		season:      make(map[string]float64, len(spec.SeasonFactors)),
		irrigation:  make(map[string]float64, len(spec.IrrigationFactors)),
	}
	if spec.DefaultBaseYield != nil {
		if *spec.DefaultBaseYield < 0 {
			return nil, fmt.Errorf("default_base_yield must not be negative")
		}
		t.defaultBase = *spec.DefaultBaseYield
	}

	groups := []struct {
		name string
		src  map[string]float64
		dst  map[string]float64
	}{
		{"base_yield", spec.BaseYield, t.base},
		{"soil_factors", spec.SoilFactors, t.soil},
		{"season_factors", spec.SeasonFactors, t.season},
		{"irrigation_factors", spec.IrrigationFactors, t.irrigation},
	}
	for _, g := range groups {
		for k, v := range g.src {
			if v < 0 {
				return nil, fmt.Errorf("%s[%q] must not be negative", g.name, k)
			}
			g.dst[k] = v
		}
	}
	return t, nil
}

// DefaultTable returns the built-in table.
func DefaultTable() *Table {
	t, err := NewTable(DefaultTableSpec())
	if err != nil {
		panic(fmt.Sprintf("built-in yield table is invalid: %v", err))
	}
	return t
}

// LoadTable returns the built-in table overlaid with the YAML file at path.
// Keys present in the file replace built-in ones; other keys are kept. An
// empty path returns the built-in table.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read yield table %s: %w", path, err)
	}
	var overlay TableSpec
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return nil, fmt.Errorf("parse yield table %s: %w", path, err)
	}
	return NewTable(mergeSpec(DefaultTableSpec(), overlay))
}

func mergeSpec(base, overlay TableSpec) TableSpec {
	if overlay.DefaultBaseYield != nil {
		base.DefaultBaseYield = overlay.DefaultBaseYield
	}
	for k, v := range overlay.BaseYield {
		base.BaseYield[k] = v
	}
	for k, v := range overlay.SoilFactors {
		base.SoilFactors[k] = v
	}
	for k, v := range overlay.SeasonFactors {
		base.SeasonFactors[k] = v
	}
	for k, v := range overlay.IrrigationFactors {
		base.IrrigationFactors[k] = v
	}
	return base
}

// BaseYield returns the base yield of crop, or the table default.
func (t *Table) BaseYield(crop string) float64 {
	if v, ok := t.base[crop]; ok {
		return v
	}
	return t.defaultBase
}

// SoilFactor returns the multiplier for soil, or 1.
func (t *Table) SoilFactor(soil string) float64 {
	return factor(t.soil, soil)
}

// SeasonFactor returns the multiplier for season, or 1.
func (t *Table) SeasonFactor(season string) float64 {
	return factor(t.season, season)
}

// IrrigationFactor returns the multiplier for irrigation, or 1.
func (t *Table) IrrigationFactor(irrigation string) float64 {
	return factor(t.irrigation, irrigation)
}

// YieldPerAcre evaluates the static model.
func (t *Table) YieldPerAcre(crop, soil, season, irrigation string) float64 {
	return t.BaseYield(crop) * t.SoilFactor(soil) * t.SeasonFactor(season) * t.IrrigationFactor(irrigation)
}

// Crops lists the crops with a known base yield, sorted.
func (t *Table) Crops() []string {
	out := make([]string, 0, len(t.base))
	for k := range t.base {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func factor(m map[string]float64, key string) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return DefaultFactor
}
