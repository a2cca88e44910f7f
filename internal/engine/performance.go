package engine

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/quantfolio/walkforward/internal/types"
)

const (
	// tradingPeriodsPerYear is the annualization factor for daily returns.
	tradingPeriodsPerYear = 252
	// drawdownFloor avoids a division blow-up in the Calmar ratio.
	drawdownFloor = 0.01
	// sortinoCompatFactor is the legacy Sortino approximation factor.
	sortinoCompatFactor = 1.2
)

// CalculatePerformance converts a return series (and optionally its trade
// list) into return, drawdown, and streak statistics. It is a pure function
// of its inputs: no state survives between calls.
func CalculatePerformance(returns []float64, trades []types.Trade, config BacktestConfig) types.PerformanceMetrics {
	if len(returns) == 0 {
		return types.PerformanceMetrics{}
	}

	totalReturn := compound(returns) - 1
	annualizedReturn := math.Pow(1+totalReturn, tradingPeriodsPerYear/float64(len(returns))) - 1

	volatility := 0.0
	if len(returns) > 1 {
		volatility = stat.StdDev(returns, nil) * math.Sqrt(tradingPeriodsPerYear)
	}

	dailyRiskFree := config.RiskFreeRate / tradingPeriodsPerYear

	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - dailyRiskFree
	}

	sharpe := 0.0

	if len(excess) > 1 {
		excessVol := stat.StdDev(excess, nil) * math.Sqrt(tradingPeriodsPerYear)
		if excessVol > 0 {
			sharpe = stat.Mean(excess, nil) * tradingPeriodsPerYear / excessVol
		}
	}

	sortino := sortinoRatio(excess, sharpe, config.SortinoCompat)

	maxDrawdown := MaxDrawdown(returns)

	calmar := annualizedReturn / math.Max(maxDrawdown, drawdownFloor)

	metrics := types.PerformanceMetrics{
		TotalReturn:      totalReturn,
		AnnualizedReturn: annualizedReturn,
		Volatility:       volatility,
		SharpeRatio:      sharpe,
		SortinoRatio:     sortino,
		CalmarRatio:      calmar,
		MaxDrawdown:      maxDrawdown,
	}

	applyTradeStatistics(&metrics, trades)

	return metrics
}

// compound folds a return series into the final equity multiple.
func compound(returns []float64) float64 {
	equity := 1.0
	for _, r := range returns {
		equity *= 1 + r
	}

	return equity
}

// MaxDrawdown walks the compounded equity curve and returns the largest
// peak-to-trough relative decline.
func MaxDrawdown(returns []float64) float64 {
	equity := 1.0
	peak := 1.0
	maxDrawdown := 0.0

	for _, r := range returns {
		equity *= 1 + r
		if equity > peak {
			peak = equity
		}

		if drawdown := (peak - equity) / peak; drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown
}

// sortinoRatio computes the Sortino ratio from excess returns using true
// downside deviation. In compatibility mode it reproduces the legacy
// Sharpe-based approximation instead.
func sortinoRatio(excess []float64, sharpe float64, compat bool) float64 {
	if compat {
		return sharpe * sortinoCompatFactor
	}

	if len(excess) < 2 {
		return 0
	}

	downsideSum := 0.0

	for _, r := range excess {
		if r < 0 {
			downsideSum += r * r
		}
	}

	downsideDev := math.Sqrt(downsideSum/float64(len(excess))) * math.Sqrt(tradingPeriodsPerYear)
	if downsideDev == 0 {
		return 0
	}

	return stat.Mean(excess, nil) * tradingPeriodsPerYear / downsideDev
}

// applyTradeStatistics fills win/loss statistics from the trade list. With no
// trades the fields stay at their zero values.
func applyTradeStatistics(metrics *types.PerformanceMetrics, trades []types.Trade) {
	if len(trades) == 0 {
		return
	}

	var (
		wins, losses           int
		grossProfit, grossLoss float64
		winStreak, lossStreak  int
		maxWinStreak           int
		maxLossStreak          int
	)

	for _, trade := range trades {
		if trade.PnL > 0 {
			wins++
			grossProfit += trade.PnL

			winStreak++
			lossStreak = 0

			if winStreak > maxWinStreak {
				maxWinStreak = winStreak
			}
		} else {
			losses++
			grossLoss += -trade.PnL

			lossStreak++
			winStreak = 0

			if lossStreak > maxLossStreak {
				maxLossStreak = lossStreak
			}
		}
	}

	metrics.TradeCount = len(trades)
	metrics.WinRate = float64(wins) / float64(len(trades))
	metrics.MaxWinStreak = maxWinStreak
	metrics.MaxLossStreak = maxLossStreak

	if wins > 0 {
		metrics.AverageWin = grossProfit / float64(wins)
	}

	if losses > 0 {
		metrics.AverageLoss = -grossLoss / float64(losses)
	}

	if grossLoss > 0 {
		metrics.ProfitFactor = grossProfit / grossLoss
	}
}
