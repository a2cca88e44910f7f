package engine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/quantfolio/walkforward/internal/types"
)

// CalculateRisk converts a return series into tail-risk statistics. All
// values are deterministic given the same series and have no lookback
// dependency beyond the series itself. Skewness and kurtosis need more than
// three observations; on shorter series they are left at zero, meaning
// "not computed" rather than "symmetric".
func CalculateRisk(returns []float64) types.RiskMetrics {
	if len(returns) == 0 {
		return types.RiskMetrics{}
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	var95, es95 := empiricalVaR(sorted, 0.05)
	var99, es99 := empiricalVaR(sorted, 0.01)

	metrics := types.RiskMetrics{
		VaR95:               var95,
		VaR99:               var99,
		ExpectedShortfall95: es95,
		ExpectedShortfall99: es99,
		TailRatio:           tailRatio(sorted),
	}

	if len(returns) > 3 {
		metrics.Skewness = stat.Skew(returns, nil)
		metrics.Kurtosis = stat.ExKurtosis(returns, nil)
	}

	return metrics
}

// empiricalVaR returns the VaR magnitude at the given tail probability and
// the expected shortfall: the mean magnitude of returns at or below the
// cutoff. The input must be sorted ascending.
func empiricalVaR(sorted []float64, tail float64) (varValue, shortfall float64) {
	idx := int(math.Floor(float64(len(sorted)) * tail))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	varValue = math.Abs(sorted[idx])

	sum := 0.0
	for i := 0; i <= idx; i++ {
		sum += sorted[i]
	}

	shortfall = math.Abs(sum / float64(idx+1))

	return varValue, shortfall
}

// tailRatio is the mean magnitude of the bottom 5% of returns over the mean
// magnitude of the top 5%. The input must be sorted ascending.
func tailRatio(sorted []float64) float64 {
	count := int(math.Floor(float64(len(sorted)) * 0.05))
	if count < 1 {
		count = 1
	}

	bottom := 0.0
	for i := 0; i < count; i++ {
		bottom += sorted[i]
	}

	top := 0.0
	for i := len(sorted) - count; i < len(sorted); i++ {
		top += sorted[i]
	}

	if top == 0 {
		return 0
	}

	return math.Abs(bottom / float64(count)) / math.Abs(top/float64(count))
}
