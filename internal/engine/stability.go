package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/quantfolio/walkforward/internal/types"
)

const (
	// overfitDegradationThreshold flags a window as overfit when in-sample to
	// out-of-sample degradation of return or Sharpe exceeds it.
	overfitDegradationThreshold = 0.5
	// overperformanceShare flags a run when out-of-sample beats in-sample in
	// more than this share of windows.
	overperformanceShare = 0.7
)

// IsOverfit reports whether a window's out-of-sample performance degraded by
// more than 50% relative to in-sample, on either return or Sharpe.
func IsOverfit(inReturn, outReturn, inSharpe, outSharpe float64) bool {
	return degradation(inReturn, outReturn) > overfitDegradationThreshold ||
		degradation(inSharpe, outSharpe) > overfitDegradationThreshold
}

// degradation is (in - out) / |in|; zero in-sample means no baseline to
// degrade from.
func degradation(in, out float64) float64 {
	if in == 0 {
		return 0
	}

	return (in - out) / math.Abs(in)
}

// AnalyzeStability post-processes the per-window records into parameter
// stability and drift diagnostics.
func AnalyzeStability(periods []types.WalkForwardPeriod) types.StabilityReport {
	report := types.StabilityReport{
		Parameters: make(map[string]types.ParameterStability),
	}

	if len(periods) == 0 {
		return report
	}

	for name := range periods[0].Parameters {
		values := make([]float64, len(periods))
		indexes := make([]float64, len(periods))

		for i, period := range periods {
			values[i] = period.Parameters[name]
			indexes[i] = float64(i)
		}

		report.Parameters[name] = types.ParameterStability{
			Values:    values,
			Stability: parameterStability(values),
			Drift:     parameterDrift(indexes, values),
		}
	}

	if len(report.Parameters) > 0 {
		sum := 0.0
		for _, p := range report.Parameters {
			sum += p.Stability
		}

		report.OverallStability = sum / float64(len(report.Parameters))
	}

	return report
}

// parameterStability is the inverse coefficient of variation normalized to
// [0, 1]: |mean| / (|mean| + stdev). Zero variance yields maximal stability.
func parameterStability(values []float64) float64 {
	if len(values) < 2 {
		return 1
	}

	mean := stat.Mean(values, nil)
	stdev := stat.StdDev(values, nil)

	if stdev == 0 {
		return 1
	}

	absMean := math.Abs(mean)
	if absMean == 0 {
		return 0
	}

	return absMean / (absMean + stdev)
}

// parameterDrift is the absolute Pearson correlation between window index
// and parameter value: directional drift over time, not just noise.
func parameterDrift(indexes, values []float64) float64 {
	corr := stat.Correlation(indexes, values, nil)
	if math.IsNaN(corr) {
		return 0
	}

	return math.Abs(corr)
}

// AnalyzeDegradation post-processes the per-window records into run-level
// performance-degradation diagnostics.
func AnalyzeDegradation(periods []types.WalkForwardPeriod) types.DegradationReport {
	report := types.DegradationReport{}
	if len(periods) == 0 {
		return report
	}

	returnDegradations := make([]float64, len(periods))
	indexes := make([]float64, len(periods))

	sharpeSum := 0.0
	overperforming := 0

	for i, period := range periods {
		returnDegradations[i] = degradation(period.InSampleReturn, period.OutOfSampleReturn)
		indexes[i] = float64(i)
		sharpeSum += degradation(period.InSampleSharpe, period.OutOfSampleSharpe)

		if period.Overfit {
			report.OverfitWindowCount++
		}

		if period.OutOfSampleReturn > period.InSampleReturn {
			overperforming++
		}
	}

	report.MeanReturnDegradation = stat.Mean(returnDegradations, nil)
	report.MeanSharpeDegradation = sharpeSum / float64(len(periods))

	if len(periods) > 1 {
		if trend := stat.Correlation(indexes, returnDegradations, nil); !math.IsNaN(trend) {
			report.DegradationTrend = trend
		}
	}

	// Out-of-sample consistently beating in-sample is a suspicious pattern
	// worth surfacing, not good news to accept silently.
	report.ConsistentOverperformance = float64(overperforming)/float64(len(periods)) > overperformanceShare

	return report
}
