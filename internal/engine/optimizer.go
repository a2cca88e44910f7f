package engine

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/quantfolio/walkforward/internal/engine/cost"
	"github.com/quantfolio/walkforward/internal/logger"
	"github.com/quantfolio/walkforward/internal/types"
	"github.com/quantfolio/walkforward/pkg/errors"
)

const (
	// maxCombinations bounds the grid-search runtime.
	maxCombinations = 100
	// robustSharpeThreshold and robustDrawdownThreshold tag a winning
	// combination as robust.
	robustSharpeThreshold   = 0.5
	robustDrawdownThreshold = 0.20
)

// OptimizationResult is the outcome of one in-sample grid search.
type OptimizationResult struct {
	// Parameters is the winning combination.
	Parameters map[string]float64
	// Simulation is the in-sample run of the winning combination.
	Simulation *SimulationResult
	// Fitness is the winning in-sample Sharpe ratio.
	Fitness float64
	// Robust is true when the winner clears the Sharpe and drawdown thresholds.
	Robust bool
	// RobustnessScore grades the winner: 1 when both thresholds clear,
	// 0.5 when exactly one does, 0 otherwise.
	RobustnessScore float64
	// Combinations is the number of combinations evaluated.
	Combinations int
	// FailedTrials is the number of combinations discarded due to errors.
	FailedTrials int
}

// trialRunner evaluates one parameterized strategy snapshot over a price
// slice. It is a field rather than a method so trial failures can be
// injected in tests.
type trialRunner func(trial types.StrategyDefinition, series []types.MarketDataPoint) (*SimulationResult, error)

// Optimizer enumerates a bounded grid of parameter combinations, evaluates
// each with the position simulator, and selects the combination maximizing
// the in-sample Sharpe ratio.
type Optimizer struct {
	config    BacktestConfig
	costModel cost.Model
	log       *logger.Logger
	runTrial  trialRunner
}

// NewOptimizer creates an optimizer. The logger is an explicit dependency so
// the optimizer stays testable in isolation.
func NewOptimizer(config BacktestConfig, costModel cost.Model, log *logger.Logger) *Optimizer {
	if log == nil {
		log = logger.NewNopLogger()
	}

	o := &Optimizer{
		config:    config,
		costModel: costModel,
		log:       log,
	}

	o.runTrial = func(trial types.StrategyDefinition, series []types.MarketDataPoint) (*SimulationResult, error) {
		return NewPositionSimulator(trial, o.config, o.costModel, logger.NewNopLogger()).Run(series)
	}

	return o
}

// Optimize runs the grid search over the in-sample slice. A strategy without
// numeric parameters is evaluated once with its defaults. Individual trial
// failures are discarded; the search fails only when no combination produces
// a result.
func (o *Optimizer) Optimize(ctx context.Context, strategy types.StrategyDefinition, series []types.MarketDataPoint) (*OptimizationResult, error) {
	if !strategy.HasNumericParameters() {
		simulator := NewPositionSimulator(strategy, o.config, o.costModel, o.log)

		result, err := simulator.Run(series)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeOptimizationFailed, "default-parameter simulation failed", err)
		}

		return o.outcome(map[string]float64{}, result, 1, 0), nil
	}

	combinations := ParameterGrid(strategy.Parameters, maxCombinations)
	if len(combinations) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyParameterGrid, "strategy produced an empty parameter grid")
	}

	trials, failed := o.evaluate(ctx, strategy, series, combinations)

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeOptimizationFailed, "optimization canceled", err)
	}

	best := -1

	for i, trial := range trials {
		if trial == nil {
			continue
		}

		if best == -1 || trial.Metrics.SharpeRatio > trials[best].Metrics.SharpeRatio {
			best = i
		}
	}

	if best == -1 {
		return nil, errors.Newf(errors.ErrCodeNoValidCombination,
			"all %d parameter combinations failed", len(combinations))
	}

	o.log.Debug("Grid search finished",
		zap.String("strategy", strategy.Name),
		zap.Int("combinations", len(combinations)),
		zap.Int("failed_trials", failed),
		zap.Float64("best_sharpe", trials[best].Metrics.SharpeRatio),
	)

	return o.outcome(combinations[best], trials[best], len(combinations), failed), nil
}

// evaluate runs every combination through its own simulator. Trials share no
// mutable state, so they run on a bounded worker pool.
func (o *Optimizer) evaluate(ctx context.Context, strategy types.StrategyDefinition, series []types.MarketDataPoint, combinations []map[string]float64) ([]*SimulationResult, int) {
	workers := o.config.MaxTrialParallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	if workers > len(combinations) {
		workers = len(combinations)
	}

	results := make([]*SimulationResult, len(combinations))
	indexes := make(chan int)

	var (
		wg     sync.WaitGroup
		failMu sync.Mutex
	)

	failed := 0

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range indexes {
				trial := strategy.WithParameters(combinations[i])

				result, err := o.runTrial(trial, series)
				if err != nil {
					o.log.Warn("Discarding failed grid-search trial",
						zap.Int("combination", i),
						zap.Error(err),
					)

					failMu.Lock()
					failed++
					failMu.Unlock()

					continue
				}

				results[i] = result
			}
		}()
	}

	for i := range combinations {
		select {
		case <-ctx.Done():
			close(indexes)
			wg.Wait()

			return results, failed
		case indexes <- i:
		}
	}

	close(indexes)
	wg.Wait()

	return results, failed
}

func (o *Optimizer) outcome(params map[string]float64, sim *SimulationResult, combinations, failed int) *OptimizationResult {
	sharpeOK := sim.Metrics.SharpeRatio > robustSharpeThreshold
	drawdownOK := sim.Metrics.MaxDrawdown < robustDrawdownThreshold

	score := 0.0

	switch {
	case sharpeOK && drawdownOK:
		score = 1.0
	case sharpeOK || drawdownOK:
		score = 0.5
	}

	return &OptimizationResult{
		Parameters:      params,
		Simulation:      sim,
		Fitness:         sim.Metrics.SharpeRatio,
		Robust:          sharpeOK && drawdownOK,
		RobustnessScore: score,
		Combinations:    combinations,
		FailedTrials:    failed,
	}
}

// ParameterGrid builds the explicit Cartesian product of every numeric
// parameter's range and caps it at limit combinations. The cap is enforced
// after generation by deterministic stride-sampling so no parameter's low
// values are favored over another's.
func ParameterGrid(params map[string]types.ParameterSpec, limit int) []map[string]float64 {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	sort.Strings(names)

	combinations := []map[string]float64{{}}

	for _, name := range names {
		spec := params[name]
		values := gridValues(spec)

		expanded := make([]map[string]float64, 0, len(combinations)*len(values))

		for _, combo := range combinations {
			for _, v := range values {
				next := make(map[string]float64, len(combo)+1)
				for k, cv := range combo {
					next[k] = cv
				}

				next[name] = v
				expanded = append(expanded, next)
			}
		}

		combinations = expanded
	}

	return strideSample(combinations, limit)
}

// gridValues steps from min to max by the parameter's step size.
func gridValues(spec types.ParameterSpec) []float64 {
	size := spec.GridSize()
	values := make([]float64, 0, size)

	for i := 0; i < size; i++ {
		values = append(values, spec.Min+float64(i)*spec.Step)
	}

	return values
}

// strideSample reduces a combination list to at most limit entries by taking
// evenly strided elements.
func strideSample(combinations []map[string]float64, limit int) []map[string]float64 {
	if limit <= 0 || len(combinations) <= limit {
		return combinations
	}

	stride := float64(len(combinations)) / float64(limit)
	sampled := make([]map[string]float64, 0, limit)

	for i := 0; i < limit; i++ {
		idx := int(math.Floor(float64(i) * stride))
		sampled = append(sampled, combinations[idx])
	}

	return sampled
}
