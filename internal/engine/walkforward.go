package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/quantfolio/walkforward/internal/engine/cost"
	"github.com/quantfolio/walkforward/internal/logger"
	"github.com/quantfolio/walkforward/internal/types"
	"github.com/quantfolio/walkforward/pkg/errors"
)

// OnWindowCallback reports progress after each window completes or is skipped.
type OnWindowCallback func(completed, total int)

// windowEvaluator runs one optimize/validate window pair. It is a field
// rather than a method so window failures can be injected in tests.
type windowEvaluator func(ctx context.Context, optimizer *Optimizer, strategy types.StrategyDefinition, series []types.MarketDataPoint, seq, cursor int) (*types.WalkForwardPeriod, error)

// WalkForward slides an optimization/validation window pair across the price
// history, optimizing parameters in-sample and validating them out-of-sample,
// then aggregates the out-of-sample trajectory into run-level statistics.
type WalkForward struct {
	config    BacktestConfig
	costModel cost.Model
	log       *logger.Logger
	evaluate  windowEvaluator
}

// NewWalkForward creates the orchestrator. The logger is passed explicitly;
// the cost model follows the config.
func NewWalkForward(config BacktestConfig, log *logger.Logger) *WalkForward {
	if log == nil {
		log = logger.NewNopLogger()
	}

	w := &WalkForward{
		config:    config,
		costModel: cost.GetModel(config.CostModel, config.CommissionRate, config.SlippageRate),
		log:       log,
	}
	w.evaluate = w.evaluateWindow

	return w
}

// Run executes the full walk-forward analysis for the strategy over the
// supplied price data and returns the run-level result. Window-level
// failures are logged and skipped; the run fails only when the data cannot
// host a single window or every window fails.
func (w *WalkForward) Run(ctx context.Context, strategy types.StrategyDefinition, data map[string][]types.MarketDataPoint, onWindow optional.Option[OnWindowCallback]) (*types.BacktestResult, error) {
	if err := w.config.Validate(); err != nil {
		return nil, err
	}

	series, err := w.selectSeries(data)
	if err != nil {
		return nil, err
	}

	if err := w.config.ValidateWindows(len(series)); err != nil {
		return nil, err
	}

	wf := w.config.WalkForward
	totalWindows := (len(series)-wf.OptimizationWindow-wf.ValidationWindow)/wf.StepSize + 1

	w.log.Info("Starting walk-forward run",
		zap.String("strategy", strategy.Name),
		zap.Int("bars", len(series)),
		zap.Int("windows", totalWindows),
		zap.Int("optimization_window", wf.OptimizationWindow),
		zap.Int("validation_window", wf.ValidationWindow),
		zap.Int("step_size", wf.StepSize),
	)

	optimizer := NewOptimizer(w.config, w.costModel, w.log)

	var periods []types.WalkForwardPeriod

	for seq := 0; seq < totalWindows; seq++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeWindowFailed, "walk-forward run canceled", err)
		}

		cursor := seq * wf.StepSize

		period, err := w.evaluate(ctx, optimizer, strategy, series, seq, cursor)
		if err != nil {
			// A failed window contributes no data; the cursor still advances.
			w.log.Warn("Skipping failed walk-forward window",
				zap.Int("sequence", seq),
				zap.Int("cursor", cursor),
				zap.Error(err),
			)
		} else {
			periods = append(periods, *period)
		}

		if onWindow.IsSome() {
			onWindow.Unwrap()(seq+1, totalWindows)
		}
	}

	if len(periods) == 0 {
		return nil, errors.Newf(errors.ErrCodeAllWindowsFailed,
			"all %d walk-forward windows failed", totalWindows)
	}

	return w.aggregate(strategy, periods), nil
}

// evaluateWindow optimizes on the in-sample slice and validates the winning
// parameters on the immediately following out-of-sample slice.
func (w *WalkForward) evaluateWindow(ctx context.Context, optimizer *Optimizer, strategy types.StrategyDefinition, series []types.MarketDataPoint, seq, cursor int) (*types.WalkForwardPeriod, error) {
	wf := w.config.WalkForward

	optBounds := types.WindowBounds{Start: cursor, End: cursor + wf.OptimizationWindow}
	valBounds := types.WindowBounds{Start: optBounds.End, End: optBounds.End + wf.ValidationWindow}

	optResult, err := optimizer.Optimize(ctx, strategy, series[optBounds.Start:optBounds.End])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeWindowFailed, err, "optimization failed for window %d", seq)
	}

	validated := strategy.WithParameters(optResult.Parameters)
	simulator := NewPositionSimulator(validated, w.config, w.costModel, w.log)

	valResult, err := simulator.Run(series[valBounds.Start:valBounds.End])
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeWindowFailed, err, "validation failed for window %d", seq)
	}

	inSample := optResult.Simulation.Metrics
	outOfSample := valResult.Metrics

	return &types.WalkForwardPeriod{
		Sequence:               seq,
		Optimization:           optBounds,
		Validation:             valBounds,
		Parameters:             optResult.Parameters,
		InSampleReturn:         inSample.TotalReturn,
		InSampleSharpe:         inSample.SharpeRatio,
		InSampleMaxDrawdown:    inSample.MaxDrawdown,
		OutOfSampleReturn:      outOfSample.TotalReturn,
		OutOfSampleSharpe:      outOfSample.SharpeRatio,
		OutOfSampleMaxDrawdown: outOfSample.MaxDrawdown,
		Trades:                 valResult.Trades,
		Positions:              valResult.Positions,
		Returns:                valResult.Returns,
		RobustnessScore:        optResult.RobustnessScore,
		Overfit: IsOverfit(inSample.TotalReturn, outOfSample.TotalReturn,
			inSample.SharpeRatio, outOfSample.SharpeRatio),
	}, nil
}

// aggregate concatenates every window's out-of-sample series in window order
// and computes the run-level statistics.
func (w *WalkForward) aggregate(strategy types.StrategyDefinition, periods []types.WalkForwardPeriod) *types.BacktestResult {
	var (
		returns   []float64
		trades    []types.Trade
		positions []types.Position
	)

	inSampleSum := 0.0
	outOfSampleSum := 0.0

	for _, period := range periods {
		returns = append(returns, period.Returns...)
		trades = append(trades, period.Trades...)
		positions = append(positions, period.Positions...)
		inSampleSum += period.InSampleReturn
		outOfSampleSum += period.OutOfSampleReturn
	}

	result := &types.BacktestResult{
		ID:                   uuid.New().String(),
		Timestamp:            time.Now().UTC(),
		StrategyName:         strategy.Name,
		Returns:              returns,
		Trades:               trades,
		Positions:            positions,
		Performance:          CalculatePerformance(returns, trades, w.config),
		Risk:                 CalculateRisk(returns),
		WindowCount:          len(periods),
		AvgInSampleReturn:    inSampleSum / float64(len(periods)),
		AvgOutOfSampleReturn: outOfSampleSum / float64(len(periods)),
		Stability:            AnalyzeStability(periods),
		Degradation:          AnalyzeDegradation(periods),
		Periods:              periods,
	}

	w.log.Info("Walk-forward run finished",
		zap.String("run_id", result.ID),
		zap.Int("windows", result.WindowCount),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("total_return", result.Performance.TotalReturn),
		zap.Float64("sharpe", result.Performance.SharpeRatio),
		zap.Int("overfit_windows", result.Degradation.OverfitWindowCount),
	)

	return result
}

// selectSeries picks the primary price series from the supplied data and
// applies the configured date bounds. With multiple symbols the series are
// ranked by symbol name for determinism, preferring SPY when present.
func (w *WalkForward) selectSeries(data map[string][]types.MarketDataPoint) ([]types.MarketDataPoint, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeDataNotFound, "no price data supplied")
	}

	symbol := ""

	if _, ok := data["SPY"]; ok {
		symbol = "SPY"
	} else {
		symbols := make([]string, 0, len(data))
		for s := range data {
			symbols = append(symbols, s)
		}

		sort.Strings(symbols)
		symbol = symbols[0]
	}

	series := data[symbol]
	if len(series) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "empty price series for symbol %s", symbol)
	}

	if err := types.ValidateSeries(series); err != nil {
		return nil, err
	}

	series = w.applyDateBounds(series)
	if len(series) == 0 {
		return nil, errors.New(errors.ErrCodeDataNotFound, "configured date bounds exclude all bars")
	}

	return series, nil
}

// applyDateBounds trims the series to the configured start/end dates.
func (w *WalkForward) applyDateBounds(series []types.MarketDataPoint) []types.MarketDataPoint {
	start := 0
	end := len(series)

	if w.config.StartDate.IsSome() {
		from := w.config.StartDate.Unwrap()
		for start < end && series[start].Date.Before(from) {
			start++
		}
	}

	if w.config.EndDate.IsSome() {
		until := w.config.EndDate.Unwrap()
		for end > start && series[end-1].Date.After(until) {
			end--
		}
	}

	return series[start:end]
}
