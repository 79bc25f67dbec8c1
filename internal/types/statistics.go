package types

// PerformanceMetrics holds the scalar performance statistics of a backtest
// run. All percentage and ratio fields are rounded to 2 decimal places.
type PerformanceMetrics struct {
	// Total return over the whole period, in percent.
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// Annualized return, in percent, using the 252 trading-days-per-year convention.
	AnnualizedReturn float64 `yaml:"annualized_return" json:"annualized_return"`
	// Annualized volatility of daily portfolio returns, in percent.
	Volatility float64 `yaml:"volatility" json:"volatility"`
	// Risk-adjusted return against a fixed 2% risk-free rate.
	SharpeRatio float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	// Largest percentage decline from a running peak, reported as a
	// non-negative magnitude.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// Percentage of profitable buy/sell round-trips.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// Count of all executed trades (buys and sells).
	TotalTrades int `yaml:"total_trades" json:"total_trades"`
	// Count of profitable round-trips.
	ProfitableTrades int `yaml:"profitable_trades" json:"profitable_trades"`
}
