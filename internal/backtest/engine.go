package backtest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rxtech-lab/strategy-backtest/internal/backtest/commission_fee"
	"github.com/rxtech-lab/strategy-backtest/internal/logger"
	"github.com/rxtech-lab/strategy-backtest/internal/strategy"
	"github.com/rxtech-lab/strategy-backtest/internal/types"
	"github.com/rxtech-lab/strategy-backtest/internal/utils"
	"github.com/rxtech-lab/strategy-backtest/pkg/errors"
)

// DataSource supplies daily bars for a symbol over a closed date range, in
// strictly ascending time order.
type DataSource interface {
	GetDailyBars(ctx context.Context, ticker string, start, end types.Date) ([]types.MarketData, error)
}

// RunParams is one complete backtest request after validation.
type RunParams struct {
	Ticker         string
	StartDate      types.Date
	EndDate        types.Date
	InitialCapital float64
	Strategy       strategy.Config
	FeeModel       commission_fee.FeeModel
}

// Engine orchestrates a full backtest run: fetch history, generate signals,
// simulate the portfolio, compute metrics, and assemble the result. It holds
// no per-run state, so a single Engine serves concurrent requests.
type Engine struct {
	source DataSource
	log    *logger.Logger
}

// NewEngine creates an Engine reading price history from the given source.
func NewEngine(source DataSource, log *logger.Logger) *Engine {
	return &Engine{
		source: source,
		log:    log,
	}
}

// Run executes a single backtest. Data and strategy-configuration failures
// are terminal: the run produces no partial result.
func (e *Engine) Run(ctx context.Context, params RunParams) (*types.BacktestResult, error) {
	if err := params.Strategy.Validate(); err != nil {
		return nil, err
	}

	bars, err := e.source.GetDailyBars(ctx, params.Ticker, params.StartDate, params.EndDate)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "failed to fetch history for %s", params.Ticker)
	}

	bars = completeBars(bars)
	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataUnavailable,
			"no price data found for ticker %s between %s and %s",
			params.Ticker, params.StartDate, params.EndDate)
	}

	signals, err := params.Strategy.GenerateSignals(bars)
	if err != nil {
		return nil, err
	}

	simulator := NewSimulator(commission_fee.GetCommissionFeeHandler(params.FeeModel), e.log)

	simulation, err := simulator.Run(bars, signals, params.InitialCapital)
	if err != nil {
		return nil, err
	}

	metrics := CalculateMetrics(simulation.PortfolioHistory, simulation.Trades, params.InitialCapital)

	result := &types.BacktestResult{
		ID:               uuid.New().String(),
		Timestamp:        time.Now().UTC(),
		Ticker:           params.Ticker,
		Strategy:         string(params.Strategy.Type),
		Parameters:       params.Strategy.Parameters(),
		StartDate:        params.StartDate,
		EndDate:          params.EndDate,
		InitialCapital:   utils.RoundMoney(params.InitialCapital),
		FinalValue:       simulation.FinalValue,
		Trades:           simulation.Trades,
		Performance:      metrics,
		PortfolioHistory: simulation.PortfolioHistory,
		BenchmarkHistory: simulation.BenchmarkHistory,
	}

	e.log.Info("backtest completed",
		zap.String("id", result.ID),
		zap.String("ticker", params.Ticker),
		zap.String("strategy", result.Strategy),
		zap.Int("bars", len(bars)),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("final_value", result.FinalValue),
	)

	return result, nil
}

// completeBars drops bars that cannot be simulated. The provider can return
// placeholder rows on halted days; passing one through as the first bar would
// divide by zero when sizing the benchmark.
func completeBars(bars []types.MarketData) []types.MarketData {
	complete := make([]types.MarketData, 0, len(bars))
	for _, bar := range bars {
		if bar.IsComplete() {
			complete = append(complete, bar)
		}
	}

	return complete
}
