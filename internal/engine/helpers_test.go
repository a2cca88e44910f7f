package engine

import (
	"math"
	"time"

	"github.com/quantfolio/walkforward/internal/types"
)

// testSeries builds a deterministic oscillating price series so moving-average
// crossings occur throughout the history.
func testSeries(symbol string, bars int) []types.MarketDataPoint {
	start := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make([]types.MarketDataPoint, bars)

	for i := 0; i < bars; i++ {
		series[i] = types.MarketDataPoint{
			Date:   start.AddDate(0, 0, i),
			Symbol: symbol,
			Close:  100 + 10*math.Sin(float64(i)/7) + 0.02*float64(i),
			Volume: 1_000_000,
		}
	}

	return series
}

// flatThenRisingSeries builds a series that stays flat for warm bars and then
// steps up, producing risk-on signals with known deviations.
func flatThenRisingSeries(warm int, closes ...float64) []types.MarketDataPoint {
	start := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	series := make([]types.MarketDataPoint, 0, warm+len(closes))

	for i := 0; i < warm; i++ {
		series = append(series, types.MarketDataPoint{
			Date:   start.AddDate(0, 0, i),
			Symbol: "SPY",
			Close:  100,
			Volume: 1_000_000,
		})
	}

	for i, close := range closes {
		series = append(series, types.MarketDataPoint{
			Date:   start.AddDate(0, 0, warm+i),
			Symbol: "SPY",
			Close:  close,
			Volume: 1_000_000,
		})
	}

	return series
}

// maCrossStrategy is the canonical searchable test strategy.
func maCrossStrategy() types.StrategyDefinition {
	return types.StrategyDefinition{
		Name:        "ma-cross",
		SignalTypes: []types.SignalType{types.SignalTypeMovingAverage},
		Parameters: map[string]types.ParameterSpec{
			"ma_period": {Type: "int", Min: 10, Max: 30, Step: 10, Default: 20},
		},
		PositionSizing:     types.PositionSizingEqualWeight,
		RebalanceFrequency: types.RebalanceDaily,
	}
}

// staticStrategy has no searchable parameters and uses the default lookback.
func staticStrategy() types.StrategyDefinition {
	return types.StrategyDefinition{
		Name:               "static",
		SignalTypes:        []types.SignalType{types.SignalTypeMovingAverage},
		PositionSizing:     types.PositionSizingEqualWeight,
		RebalanceFrequency: types.RebalanceDaily,
	}
}
