package types

// PerformanceMetrics is a stateless value object derived from a return
// series (and optionally the trade list). It is never stored independently of
// the series that produced it.
type PerformanceMetrics struct {
	// TotalReturn is the compounded return over the series.
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// AnnualizedReturn assumes 252 trading periods per year.
	AnnualizedReturn float64 `yaml:"annualized_return" json:"annualized_return"`
	// Volatility is the annualized standard deviation of returns.
	Volatility float64 `yaml:"volatility" json:"volatility"`
	// SharpeRatio is the annualized mean excess return over the annualized
	// volatility of excess returns.
	SharpeRatio float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	// SortinoRatio uses downside deviation as the risk denominator.
	SortinoRatio float64 `yaml:"sortino_ratio" json:"sortino_ratio"`
	// CalmarRatio is annualized return over max drawdown.
	CalmarRatio float64 `yaml:"calmar_ratio" json:"calmar_ratio"`
	// MaxDrawdown is the largest peak-to-trough decline of the equity curve.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// WinRate is winning trades over total trades.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// AverageWin is the mean PnL of winning trades.
	AverageWin float64 `yaml:"average_win" json:"average_win"`
	// AverageLoss is the mean PnL of losing trades (negative).
	AverageLoss float64 `yaml:"average_loss" json:"average_loss"`
	// ProfitFactor is gross profit over gross loss.
	ProfitFactor float64 `yaml:"profit_factor" json:"profit_factor"`
	// MaxWinStreak is the longest run of consecutive winning trades.
	MaxWinStreak int `yaml:"max_win_streak" json:"max_win_streak"`
	// MaxLossStreak is the longest run of consecutive losing trades.
	MaxLossStreak int `yaml:"max_loss_streak" json:"max_loss_streak"`
	// TradeCount is the number of closed trades considered.
	TradeCount int `yaml:"trade_count" json:"trade_count"`
}

// RiskMetrics is a stateless value object of tail-risk statistics derived
// from a return series.
type RiskMetrics struct {
	// VaR95 is the 5th-percentile loss magnitude.
	VaR95 float64 `yaml:"var_95" json:"var_95"`
	// VaR99 is the 1st-percentile loss magnitude.
	VaR99 float64 `yaml:"var_99" json:"var_99"`
	// ExpectedShortfall95 is the mean loss magnitude at or below the VaR95 cutoff.
	ExpectedShortfall95 float64 `yaml:"expected_shortfall_95" json:"expected_shortfall_95"`
	// ExpectedShortfall99 is the mean loss magnitude at or below the VaR99 cutoff.
	ExpectedShortfall99 float64 `yaml:"expected_shortfall_99" json:"expected_shortfall_99"`
	// Skewness is the bias-corrected sample skewness.
	Skewness float64 `yaml:"skewness" json:"skewness"`
	// Kurtosis is the bias-corrected sample excess kurtosis.
	Kurtosis float64 `yaml:"kurtosis" json:"kurtosis"`
	// TailRatio is |mean of the bottom 5% of returns| over |mean of the top 5%|.
	TailRatio float64 `yaml:"tail_ratio" json:"tail_ratio"`
}
