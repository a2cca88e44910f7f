package engine

import (
	"time"

	"github.com/quantfolio/walkforward/internal/engine/cost"
	"github.com/quantfolio/walkforward/internal/logger"
	"github.com/quantfolio/walkforward/internal/types"
	"github.com/quantfolio/walkforward/pkg/errors"
	"go.uber.org/zap"
)

// directionSymbols is the fixed lookup from signal direction to the traded
// instrument: growth exposure when risk is on, defensive exposure otherwise.
var directionSymbols = map[types.SignalDirection]string{
	types.SignalRiskOn:  "SPY",
	types.SignalRiskOff: "XLU",
}

// sizingScale returns the position-size multiplier for a sizing method.
func sizingScale(method types.PositionSizingMethod) float64 {
	switch method {
	case types.PositionSizingVolatilityAdjusted:
		return 0.8
	case types.PositionSizingKelly:
		return 0.6
	default:
		return 1.0
	}
}

// SimulationResult is the output of one simulator run over a price slice.
type SimulationResult struct {
	// Metrics are the performance metrics of the slice's return series.
	Metrics types.PerformanceMetrics
	// Trades are the closed round trips, in close order.
	Trades []types.Trade
	// Positions are the daily position snapshots while a position was open.
	Positions []types.Position
	// Returns is the daily return series, one entry per bar.
	Returns []float64
}

// PositionSimulator replays a signal sequence against price data, holding at
// most one position at a time and applying commission and slippage on close.
// Each run constructs its state from scratch; a simulator value is safe to
// reuse across slices but not across goroutines.
type PositionSimulator struct {
	strategy  types.StrategyDefinition
	config    BacktestConfig
	costModel cost.Model
	log       *logger.Logger
}

// NewPositionSimulator creates a simulator for one parameterized strategy snapshot.
func NewPositionSimulator(strategy types.StrategyDefinition, config BacktestConfig, costModel cost.Model, log *logger.Logger) *PositionSimulator {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &PositionSimulator{
		strategy:  strategy,
		config:    config,
		costModel: costModel,
		log:       log,
	}
}

// Run simulates the strategy over the price slice and returns the resulting
// metrics, trades, position snapshots, and raw return series.
func (s *PositionSimulator) Run(series []types.MarketDataPoint) (*SimulationResult, error) {
	if len(series) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyPriceSlice, "cannot simulate an empty price slice")
	}

	generator := NewSignalGenerator(s.strategy)

	signals, err := generator.Generate(series)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSimulationFailed, "signal generation failed", err)
	}

	lookback := generator.Lookback()

	var (
		open      *types.Position
		trades    []types.Trade
		positions []types.Position
	)

	capital := s.config.InitialCapital
	returns := make([]float64, len(series))

	for i := 1; i < len(series); i++ {
		bar := series[i]

		// Accrue the day's return and refresh the snapshot while a position is open.
		if open != nil {
			priceReturn := bar.Close/series[i-1].Close - 1
			returns[i] = priceReturn * open.Weight

			refreshed := open.Refresh(bar.Date, bar.Close, capital)
			open = &refreshed
			positions = append(positions, refreshed)
		}

		if i < lookback {
			continue
		}

		signal := signals[i-lookback]

		targetSymbol, ok := directionSymbols[signal.Direction]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeSimulationFailed,
				"no symbol mapping for signal direction %q", signal.Direction)
		}

		// A signal mapping to a different instrument than the held one
		// closes the current position and opens a new one.
		if open != nil && open.Symbol == targetSymbol {
			continue
		}

		if open != nil {
			trade := s.close(*open, bar.Date, bar.Close)
			trades = append(trades, trade)
			capital += trade.PnL
			open = nil
		}

		opened := s.open(signal, targetSymbol, bar, capital)
		if opened != nil {
			open = opened
			positions = append(positions, *opened)
		}
	}

	// Force-close any open position against the final bar.
	if open != nil {
		last := series[len(series)-1]
		trade := s.close(*open, last.Date, last.Close)
		trades = append(trades, trade)
		capital += trade.PnL
	}

	metrics := CalculatePerformance(returns, trades, s.config)

	s.log.Debug("Simulation finished",
		zap.String("strategy", s.strategy.Name),
		zap.Int("bars", len(series)),
		zap.Int("trades", len(trades)),
		zap.Float64("total_return", metrics.TotalReturn),
	)

	return &SimulationResult{
		Metrics:   metrics,
		Trades:    trades,
		Positions: positions,
		Returns:   returns,
	}, nil
}

// open sizes and opens a new position for the signal. Returns nil when the
// computed size is too small to hold.
func (s *PositionSimulator) open(signal types.Signal, symbol string, bar types.MarketDataPoint, capital float64) *types.Position {
	size := capital * s.config.MaxPositionSize * signal.Confidence * sizingScale(s.strategy.PositionSizing)
	if size <= 0 || bar.Close <= 0 {
		return nil
	}

	quantity := size / bar.Close

	weight := 0.0
	if capital > 0 {
		weight = size / capital
	}

	return &types.Position{
		Date:        bar.Date,
		Symbol:      symbol,
		Quantity:    quantity,
		Price:       bar.Close,
		MarketValue: size,
		Weight:      weight,
		SignalType:  signal.Type,
		Confidence:  signal.Confidence,
		EntryDate:   bar.Date,
		EntryPrice:  bar.Close,
	}
}

// close books the closing trade for a position at the given bar.
func (s *PositionSimulator) close(pos types.Position, date time.Time, price float64) types.Trade {
	commission := s.costModel.Commission(price, pos.Quantity)
	slippage := s.costModel.Slippage(price, pos.Quantity)

	return types.NewTrade(pos, date, price, commission, slippage)
}
