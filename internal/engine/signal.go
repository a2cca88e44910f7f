package engine

import (
	"math"

	"github.com/quantfolio/walkforward/internal/types"
	"github.com/quantfolio/walkforward/pkg/errors"
)

const (
	// defaultLookback is the minimum history before a signal is emitted.
	defaultLookback = 20
	// strongDeviationThreshold separates strong from moderate signals.
	strongDeviationThreshold = 0.02
	// maxConfidence caps the confidence score.
	maxConfidence = 0.9
)

// SignalGenerator derives directional signals from a price series using a
// trailing moving-average cross rule. A concrete strategy carries its own
// rule text, but the simulation core evaluates this single canonical rule.
type SignalGenerator struct {
	strategy types.StrategyDefinition
	lookback int
}

// NewSignalGenerator creates a generator for the given strategy snapshot.
// The lookback follows the strategy's ma_period parameter when defined.
func NewSignalGenerator(strategy types.StrategyDefinition) *SignalGenerator {
	lookback := defaultLookback
	if v, ok := strategy.ParameterValue("ma_period"); ok && v >= 2 {
		lookback = int(v)
	}

	return &SignalGenerator{
		strategy: strategy,
		lookback: lookback,
	}
}

// Lookback returns the number of bars required before the first signal.
func (g *SignalGenerator) Lookback() int {
	return g.lookback
}

// Generate emits one signal per bar at index >= lookback. No signal is
// emitted before the lookback is satisfied.
func (g *SignalGenerator) Generate(series []types.MarketDataPoint) ([]types.Signal, error) {
	if len(series) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyPriceSlice, "cannot generate signals from an empty price slice")
	}

	signalType := types.SignalTypeMovingAverage
	if len(g.strategy.SignalTypes) > 0 {
		signalType = g.strategy.SignalTypes[0]
	}

	signals := make([]types.Signal, 0, max(0, len(series)-g.lookback))

	for i := g.lookback; i < len(series); i++ {
		ma := trailingMean(series, i, g.lookback)
		if ma == 0 {
			return nil, errors.Newf(errors.ErrCodeSignalGeneration,
				"zero moving average at bar %d", i)
		}

		deviation := (series[i].Close - ma) / ma

		direction := types.SignalRiskOff
		if series[i].Close > ma {
			direction = types.SignalRiskOn
		}

		strength := types.SignalModerate
		if math.Abs(deviation) > strongDeviationThreshold {
			strength = types.SignalStrong
		}

		signals = append(signals, types.Signal{
			Date:       series[i].Date,
			Type:       signalType,
			Direction:  direction,
			Strength:   strength,
			Confidence: math.Min(maxConfidence, 10*math.Abs(deviation)),
			RawValue:   deviation,
		})
	}

	return signals, nil
}

// trailingMean averages the period closes ending at (and excluding) bar i.
func trailingMean(series []types.MarketDataPoint, i, period int) float64 {
	sum := 0.0
	for j := i - period; j < i; j++ {
		sum += series[j].Close
	}

	return sum / float64(period)
}
