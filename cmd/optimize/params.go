package main

import (
	"math"

	"github.com/pthm-cable/planisuss/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

func floatParam(name, path string, lo, hi float64, field func(*config.Config) *float64) ParamSpec {
	return ParamSpec{
		Name: name, Path: path, Min: lo, Max: hi,
		get: func(c *config.Config) float64 { return *field(c) },
		set: func(c *config.Config, v float64) { *field(c) = v },
	}
}

func intParam(name, path string, lo, hi float64, field func(*config.Config) *int) ParamSpec {
	return ParamSpec{
		Name: name, Path: path, Min: lo, Max: hi,
		get: func(c *config.Config) float64 { return float64(*field(c)) },
		set: func(c *config.Config, v float64) { *field(c) = int(math.Round(v)) },
	}
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Movement - herbivores
			floatParam("herb_danger_weight", "ranking.herbivore.danger_weight", 0, 5,
				func(c *config.Config) *float64 { return &c.Ranking.Herbivore.DangerWeight }),
			floatParam("herb_social_weight", "ranking.herbivore.social_weight", 0, 3,
				func(c *config.Config) *float64 { return &c.Ranking.Herbivore.SocialWeight }),
			floatParam("herb_vegetation_weight", "ranking.herbivore.vegetation_weight", 0, 3,
				func(c *config.Config) *float64 { return &c.Ranking.Herbivore.VegetationWeight }),
			floatParam("herb_escape_weight", "ranking.herbivore.escape_weight", 0, 3,
				func(c *config.Config) *float64 { return &c.Ranking.Herbivore.EscapeWeight }),
			floatParam("herb_loyalty_weight", "ranking.herbivore.loyalty_weight", 0, 2,
				func(c *config.Config) *float64 { return &c.Ranking.Herbivore.LoyaltyWeight }),
			// Movement - carnivores
			floatParam("carn_prey_weight", "ranking.carnivore.prey_weight", 0, 5,
				func(c *config.Config) *float64 { return &c.Ranking.Carnivore.PreyWeight }),
			floatParam("carn_social_weight", "ranking.carnivore.social_weight", 0, 3,
				func(c *config.Config) *float64 { return &c.Ranking.Carnivore.SocialWeight }),
			floatParam("carn_loyalty_weight", "ranking.carnivore.loyalty_weight", 0, 2,
				func(c *config.Config) *float64 { return &c.Ranking.Carnivore.LoyaltyWeight }),
			// Energy
			intParam("herb_move_cost", "herbivore.move_cost", 1, 15,
				func(c *config.Config) *int { return &c.Herbivore.MoveCost }),
			intParam("carn_move_cost", "carnivore.move_cost", 1, 15,
				func(c *config.Config) *int { return &c.Carnivore.MoveCost }),
			intParam("graze_rate", "grazing.rate", 5, 50,
				func(c *config.Config) *int { return &c.Grazing.Rate }),
			intParam("veg_growing", "vegetation.growing", 1, 10,
				func(c *config.Config) *int { return &c.Vegetation.Growing }),
			// Carnivore society
			floatParam("join_threshold", "struggle.join_threshold", 0.2, 1.8,
				func(c *config.Config) *float64 { return &c.Struggle.JoinThreshold }),
			floatParam("form_ratio", "struggle.form_ratio", 0.1, 0.9,
				func(c *config.Config) *float64 { return &c.Struggle.FormRatio }),
			// Hunting
			floatParam("hunt_steepness", "hunt.steepness", 0.01, 0.5,
				func(c *config.Config) *float64 { return &c.Hunt.Steepness }),
			intParam("hunt_failure_cost", "hunt.failure_cost", 0, 20,
				func(c *config.Config) *int { return &c.Hunt.FailureCost }),
			floatParam("hunt_sociality_shift", "hunt.sociality_shift", 0, 0.1,
				func(c *config.Config) *float64 { return &c.Hunt.SocialityShift }),
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and refreshes its
// derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) *config.Config {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
	return cfg.Clone()
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}
