package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// WindowBounds are half-open index bounds [Start, End) into the price series.
type WindowBounds struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// WalkForwardPeriod records one advance of the rolling window pair.
// Immutable once recorded; the orchestrator owns the full list for a run.
type WalkForwardPeriod struct {
	// Sequence is the zero-based window number.
	Sequence int `yaml:"sequence" json:"sequence"`
	// Optimization is the in-sample window bounds.
	Optimization WindowBounds `yaml:"optimization" json:"optimization"`
	// Validation is the out-of-sample window bounds.
	Validation WindowBounds `yaml:"validation" json:"validation"`
	// Parameters is the optimized parameter set for the window.
	Parameters map[string]float64 `yaml:"parameters" json:"parameters"`
	// InSampleReturn is the total return over the optimization window.
	InSampleReturn float64 `yaml:"in_sample_return" json:"in_sample_return"`
	// InSampleSharpe is the Sharpe ratio over the optimization window.
	InSampleSharpe float64 `yaml:"in_sample_sharpe" json:"in_sample_sharpe"`
	// InSampleMaxDrawdown is the max drawdown over the optimization window.
	InSampleMaxDrawdown float64 `yaml:"in_sample_max_drawdown" json:"in_sample_max_drawdown"`
	// OutOfSampleReturn is the total return over the validation window.
	OutOfSampleReturn float64 `yaml:"out_of_sample_return" json:"out_of_sample_return"`
	// OutOfSampleSharpe is the Sharpe ratio over the validation window.
	OutOfSampleSharpe float64 `yaml:"out_of_sample_sharpe" json:"out_of_sample_sharpe"`
	// OutOfSampleMaxDrawdown is the max drawdown over the validation window.
	OutOfSampleMaxDrawdown float64 `yaml:"out_of_sample_max_drawdown" json:"out_of_sample_max_drawdown"`
	// Trades are the validation-window trades.
	Trades []Trade `yaml:"trades" json:"trades"`
	// Positions are the validation-window position snapshots.
	Positions []Position `yaml:"positions" json:"positions"`
	// Returns is the validation-window daily return series.
	Returns []float64 `yaml:"returns" json:"returns"`
	// RobustnessScore is the optimizer's robustness tag for the winning combination.
	RobustnessScore float64 `yaml:"robustness_score" json:"robustness_score"`
	// Overfit is true when in-sample-to-out-of-sample degradation of return
	// or Sharpe exceeds 50%.
	Overfit bool `yaml:"overfit" json:"overfit"`
}

// ParameterStability summarizes the drift of one optimized parameter across windows.
type ParameterStability struct {
	// Values are the optimized values in window order.
	Values []float64 `yaml:"values" json:"values"`
	// Stability is 1/CV normalized to [0, 1]; zero variance maps to 1.
	Stability float64 `yaml:"stability" json:"stability"`
	// Drift is the absolute Pearson correlation between window index and value.
	Drift float64 `yaml:"drift" json:"drift"`
}

// StabilityReport aggregates parameter stability across the run.
type StabilityReport struct {
	// Parameters maps parameter name to its stability summary.
	Parameters map[string]ParameterStability `yaml:"parameters" json:"parameters"`
	// OverallStability is the mean per-parameter stability.
	OverallStability float64 `yaml:"overall_stability" json:"overall_stability"`
}

// DegradationReport summarizes in-sample to out-of-sample performance decay.
type DegradationReport struct {
	// MeanReturnDegradation is the mean per-window (in - out)/|in| on returns.
	MeanReturnDegradation float64 `yaml:"mean_return_degradation" json:"mean_return_degradation"`
	// MeanSharpeDegradation is the mean per-window (in - out)/|in| on Sharpe.
	MeanSharpeDegradation float64 `yaml:"mean_sharpe_degradation" json:"mean_sharpe_degradation"`
	// DegradationTrend is the Pearson correlation of return degradation
	// against window index.
	DegradationTrend float64 `yaml:"degradation_trend" json:"degradation_trend"`
	// OverfitWindowCount is the number of windows flagged overfit.
	OverfitWindowCount int `yaml:"overfit_window_count" json:"overfit_window_count"`
	// ConsistentOverperformance is true when out-of-sample beats in-sample in
	// more than 70% of windows. Suspicious rather than good news.
	ConsistentOverperformance bool `yaml:"consistent_overperformance" json:"consistent_overperformance"`
}

// BacktestResult is the run-level output of the walk-forward engine.
type BacktestResult struct {
	// ID is the unique identifier of this run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when the run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// StrategyName is the strategy that was evaluated.
	StrategyName string `yaml:"strategy_name" json:"strategy_name"`
	// Returns is the concatenated out-of-sample daily return series.
	Returns []float64 `yaml:"returns" json:"returns"`
	// Trades is the concatenated out-of-sample trade list.
	Trades []Trade `yaml:"trades" json:"trades"`
	// Positions is the concatenated out-of-sample position list.
	Positions []Position `yaml:"positions" json:"positions"`
	// Performance holds run-level performance metrics over Returns.
	Performance PerformanceMetrics `yaml:"performance" json:"performance"`
	// Risk holds run-level tail-risk metrics over Returns.
	Risk RiskMetrics `yaml:"risk" json:"risk"`
	// WindowCount is the number of windows that completed.
	WindowCount int `yaml:"window_count" json:"window_count"`
	// AvgInSampleReturn is the mean in-sample return across windows.
	AvgInSampleReturn float64 `yaml:"avg_in_sample_return" json:"avg_in_sample_return"`
	// AvgOutOfSampleReturn is the mean out-of-sample return across windows.
	AvgOutOfSampleReturn float64 `yaml:"avg_out_of_sample_return" json:"avg_out_of_sample_return"`
	// Stability is the parameter-stability report.
	Stability StabilityReport `yaml:"stability" json:"stability"`
	// Degradation is the performance-degradation report.
	Degradation DegradationReport `yaml:"degradation" json:"degradation"`
	// Periods is the full per-window breakdown.
	Periods []WalkForwardPeriod `yaml:"periods" json:"periods"`
}

// WriteResult writes the result to a YAML file.
func WriteResult(path string, result *BacktestResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest result to file: %w", err)
	}

	return nil
}
