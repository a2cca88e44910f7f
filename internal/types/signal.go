package types

import "time"

type SignalType string

const (
	// SignalTypeUtilitiesSpy compares a utilities sector proxy against the broad market.
	SignalTypeUtilitiesSpy SignalType = "utilities_spy"
	// SignalTypeLumberGold compares lumber against gold as a growth/defense gauge.
	SignalTypeLumberGold SignalType = "lumber_gold"
	// SignalTypeMovingAverage is the canonical trailing moving-average cross rule.
	SignalTypeMovingAverage SignalType = "moving_average"
)

// SignalDirection is the directional label of a signal.
type SignalDirection string

const (
	// SignalRiskOn indicates the rule favors growth exposure.
	SignalRiskOn SignalDirection = "risk_on"
	// SignalRiskOff indicates the rule favors defensive exposure.
	SignalRiskOff SignalDirection = "risk_off"
)

// SignalStrength is the qualitative magnitude label of a signal.
type SignalStrength string

const (
	SignalStrong   SignalStrength = "strong"
	SignalModerate SignalStrength = "moderate"
)

// Signal is one directional reading derived from a trailing price window.
// One signal is emitted per bar once enough history exists.
type Signal struct {
	// Date is the bar date the signal was generated on.
	Date time.Time `yaml:"date" json:"date"`
	// Type is the signal family that produced this reading.
	Type SignalType `yaml:"type" json:"type"`
	// Direction is the directional label.
	Direction SignalDirection `yaml:"direction" json:"direction"`
	// Strength is the qualitative magnitude label.
	Strength SignalStrength `yaml:"strength" json:"strength"`
	// Confidence is in [0, 1].
	Confidence float64 `yaml:"confidence" json:"confidence"`
	// RawValue is the numeric deviation the labels were derived from.
	RawValue float64 `yaml:"raw_value" json:"raw_value"`
}
