package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// BacktestResult aggregates everything a single backtest run produced:
// the echoed request configuration, the trade log, both snapshot sequences,
// and the computed performance metrics. It is assembled once at the end of a
// run and never mutated after being returned.
type BacktestResult struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Ticker of the backtested symbol.
	Ticker string `yaml:"ticker" json:"ticker"`
	// Strategy identifier, e.g. "sma_crossover".
	Strategy string `yaml:"strategy" json:"strategy"`
	// Parameters echoes the resolved strategy parameters.
	Parameters map[string]any `yaml:"parameters" json:"parameters"`
	StartDate  Date           `yaml:"start_date" json:"start_date"`
	EndDate    Date           `yaml:"end_date" json:"end_date"`
	// InitialCapital is the starting cash of the run.
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital"`
	// FinalValue is cash plus stock value at the last bar.
	FinalValue float64 `yaml:"final_value" json:"final_value"`
	// Trades is the ordered trade log.
	Trades []Trade `yaml:"trades" json:"trades"`
	// Performance holds the aggregate statistics.
	Performance PerformanceMetrics `yaml:"performance" json:"performance"`
	// PortfolioHistory has exactly one snapshot per input bar.
	PortfolioHistory []PortfolioSnapshot `yaml:"portfolio_history" json:"portfolio_history"`
	// BenchmarkHistory is the buy-and-hold benchmark, one snapshot per bar.
	BenchmarkHistory []BenchmarkSnapshot `yaml:"benchmark_history" json:"benchmark_history"`
}

// WriteBacktestResult serializes the result to YAML at the given path.
func WriteBacktestResult(path string, result *BacktestResult) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result to YAML: %w", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest result to file: %w", err)
	}

	return nil
}
