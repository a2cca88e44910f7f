package types

import (
	"maps"
	"math"
)

// PositionSizingMethod selects how raw signal confidence is scaled into a
// position size.
type PositionSizingMethod string

const (
	PositionSizingEqualWeight        PositionSizingMethod = "equal_weight"
	PositionSizingVolatilityAdjusted PositionSizingMethod = "volatility_adjusted"
	PositionSizingKelly              PositionSizingMethod = "kelly"
)

// AllPositionSizingMethods lists the supported sizing methods for schema generation.
var AllPositionSizingMethods = []any{
	PositionSizingEqualWeight,
	PositionSizingVolatilityAdjusted,
	PositionSizingKelly,
}

// RebalanceFrequency tags how often a strategy intends to rebalance.
type RebalanceFrequency string

const (
	RebalanceDaily   RebalanceFrequency = "daily"
	RebalanceWeekly  RebalanceFrequency = "weekly"
	RebalanceMonthly RebalanceFrequency = "monthly"
)

// ParameterSpec describes one numeric strategy parameter and its search bounds.
type ParameterSpec struct {
	// Type is the parameter value type ("int" or "float").
	Type string `yaml:"type" json:"type" validate:"required,oneof=int float"`
	// Min is the inclusive lower search bound.
	Min float64 `yaml:"min" json:"min"`
	// Max is the inclusive upper search bound.
	Max float64 `yaml:"max" json:"max" validate:"gtefield=Min"`
	// Step is the grid step size.
	Step float64 `yaml:"step" json:"step" validate:"gt=0"`
	// Default is the value used when the optimizer is skipped.
	Default float64 `yaml:"default" json:"default"`
}

// GridSize returns the number of grid points between Min and Max by Step.
func (p ParameterSpec) GridSize() int {
	if p.Step <= 0 || p.Max < p.Min {
		return 1
	}

	return int(math.Floor((p.Max-p.Min)/p.Step)) + 1
}

// StrategyDefinition describes a trading-signal strategy. It is an immutable
// input: parameter overrides produce a new snapshot via WithParameters.
type StrategyDefinition struct {
	// Name is the human-readable strategy name.
	Name string `yaml:"name" json:"name" validate:"required"`
	// SignalTypes lists the signal families the strategy consumes.
	SignalTypes []SignalType `yaml:"signal_types" json:"signal_types" validate:"min=1"`
	// Parameters maps parameter name to its spec and search bounds.
	Parameters map[string]ParameterSpec `yaml:"parameters" json:"parameters"`
	// Overrides holds the currently applied parameter values, if any.
	Overrides map[string]float64 `yaml:"overrides,omitempty" json:"overrides,omitempty"`
	// PositionSizing selects the sizing method.
	PositionSizing PositionSizingMethod `yaml:"position_sizing" json:"position_sizing" validate:"required,oneof=equal_weight volatility_adjusted kelly"`
	// RebalanceFrequency tags the intended rebalance cadence.
	RebalanceFrequency RebalanceFrequency `yaml:"rebalance_frequency" json:"rebalance_frequency"`
}

// WithParameters returns a copy of the strategy with the given parameter
// values applied on top of any existing overrides. The receiver is not mutated.
func (s StrategyDefinition) WithParameters(params map[string]float64) StrategyDefinition {
	overrides := make(map[string]float64, len(s.Overrides)+len(params))
	maps.Copy(overrides, s.Overrides)
	maps.Copy(overrides, params)

	snapshot := s
	snapshot.Overrides = overrides

	return snapshot
}

// ParameterValue resolves a parameter to its override if set, falling back to
// the declared default. The second return reports whether the parameter exists.
func (s StrategyDefinition) ParameterValue(name string) (float64, bool) {
	if v, ok := s.Overrides[name]; ok {
		return v, true
	}

	spec, ok := s.Parameters[name]
	if !ok {
		return 0, false
	}

	return spec.Default, true
}

// HasNumericParameters reports whether the strategy exposes any searchable parameters.
func (s StrategyDefinition) HasNumericParameters() bool {
	return len(s.Parameters) > 0
}
