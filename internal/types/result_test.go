package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type ResultTestSuite struct {
	suite.Suite
}

func TestResultSuite(t *testing.T) {
	suite.Run(t, new(ResultTestSuite))
}

func sampleResult() *BacktestResult {
	start, _ := ParseDate("2023-01-02")
	end, _ := ParseDate("2023-12-29")

	return &BacktestResult{
		ID:             "d2c1a1a6-0000-0000-0000-000000000000",
		Timestamp:      time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
		Ticker:         "AAPL",
		Strategy:       "sma_crossover",
		Parameters:     map[string]any{"shortPeriod": 20, "longPeriod": 50},
		StartDate:      start,
		EndDate:        end,
		InitialCapital: 10000,
		FinalValue:     11234.56,
		Trades: []Trade{
			{Date: start, Action: TradeActionBuy, Price: 130.25, Shares: 76, Value: 9899.0},
		},
		Performance: PerformanceMetrics{
			TotalReturn: 12.35,
			TotalTrades: 1,
		},
		PortfolioHistory: []PortfolioSnapshot{
			{Date: start, PortfolioValue: 10000, StockValue: 0, Cash: 10000},
		},
		BenchmarkHistory: []BenchmarkSnapshot{
			{Date: start, Value: 10000},
		},
	}
}

func (suite *ResultTestSuite) TestWriteBacktestResult() {
	path := filepath.Join(suite.T().TempDir(), "result.yaml")

	suite.NoError(WriteBacktestResult(path, sampleResult()))

	data, err := os.ReadFile(path)
	suite.NoError(err)

	var loaded BacktestResult
	suite.NoError(yaml.Unmarshal(data, &loaded))

	suite.Equal("AAPL", loaded.Ticker)
	suite.Equal("sma_crossover", loaded.Strategy)
	suite.Equal("2023-01-02", loaded.StartDate.String())
	suite.Equal(11234.56, loaded.FinalValue)
	suite.Len(loaded.Trades, 1)
	suite.Equal(TradeActionBuy, loaded.Trades[0].Action)
	suite.Equal(12.35, loaded.Performance.TotalReturn)
}

func (suite *ResultTestSuite) TestWriteBacktestResultBadPath() {
	err := WriteBacktestResult("/nonexistent-dir/result.yaml", sampleResult())

	suite.Error(err)
}
