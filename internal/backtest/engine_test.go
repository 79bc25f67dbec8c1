package backtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/strategy-backtest/internal/backtest/commission_fee"
	"github.com/rxtech-lab/strategy-backtest/internal/logger"
	"github.com/rxtech-lab/strategy-backtest/internal/strategy"
	"github.com/rxtech-lab/strategy-backtest/internal/types"
	"github.com/rxtech-lab/strategy-backtest/pkg/errors"
)

// stubSource serves a fixed bar slice or a fixed error.
type stubSource struct {
	bars []types.MarketData
	err  error
}

func (s *stubSource) GetDailyBars(ctx context.Context, ticker string, start, end types.Date) ([]types.MarketData, error) {
	if s.err != nil {
		return nil, s.err
	}

	return s.bars, nil
}

type EngineTestSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func testRunParams() RunParams {
	start, _ := types.ParseDate("2023-01-02")
	end, _ := types.ParseDate("2023-01-31")

	return RunParams{
		Ticker:         "TEST",
		StartDate:      start,
		EndDate:        end,
		InitialCapital: 10000,
		Strategy: strategy.Config{
			Type:         strategy.StrategyTypeSMACrossover,
			SMACrossover: &strategy.SMACrossoverParams{ShortPeriod: 2, LongPeriod: 3},
		},
		FeeModel: commission_fee.FeeModelZero,
	}
}

func (suite *EngineTestSuite) TestRunProducesCompleteResult() {
	source := &stubSource{bars: testBars([]float64{10, 10, 10, 14, 14, 8, 8})}
	engine := NewEngine(source, logger.NewNopLogger())

	result, err := engine.Run(context.Background(), testRunParams())

	suite.NoError(err)
	suite.NotEmpty(result.ID)
	suite.False(result.Timestamp.IsZero())
	suite.Equal("TEST", result.Ticker)
	suite.Equal("sma_crossover", result.Strategy)
	suite.Equal(map[string]any{"shortPeriod": 2, "longPeriod": 3}, result.Parameters)
	suite.Equal(10000.0, result.InitialCapital)
	suite.Len(result.PortfolioHistory, 7)
	suite.Len(result.BenchmarkHistory, 7)
	suite.Len(result.Trades, 2)
	suite.Greater(result.FinalValue, 0.0)
}

func (suite *EngineTestSuite) TestRunIsRepeatableExceptForIdentity() {
	source := &stubSource{bars: testBars([]float64{10, 10, 10, 14, 14, 8, 8})}
	engine := NewEngine(source, logger.NewNopLogger())

	first, err := engine.Run(context.Background(), testRunParams())
	suite.NoError(err)

	second, err := engine.Run(context.Background(), testRunParams())
	suite.NoError(err)

	suite.NotEqual(first.ID, second.ID)
	suite.Equal(first.Trades, second.Trades)
	suite.Equal(first.Performance, second.Performance)
	suite.Equal(first.PortfolioHistory, second.PortfolioHistory)
}

func (suite *EngineTestSuite) TestFlatSeriesYieldsNoTradesAndZeroReturn() {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 100
	}

	engine := NewEngine(&stubSource{bars: testBars(closes)}, logger.NewNopLogger())

	params := testRunParams()
	params.Strategy.SMACrossover = &strategy.SMACrossoverParams{ShortPeriod: 5, LongPeriod: 10}

	result, err := engine.Run(context.Background(), params)

	suite.NoError(err)
	suite.Empty(result.Trades)
	suite.Equal(0.0, result.Performance.TotalReturn)
	suite.Equal(10000.0, result.FinalValue)
}

func (suite *EngineTestSuite) TestEmptyHistoryAborts() {
	engine := NewEngine(&stubSource{bars: nil}, logger.NewNopLogger())

	_, err := engine.Run(context.Background(), testRunParams())

	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataUnavailable))
}

func (suite *EngineTestSuite) TestIncompleteBarsAreDropped() {
	bars := testBars([]float64{10, 10, 10, 14})
	bars[1].Close = 0 // halted day placeholder

	engine := NewEngine(&stubSource{bars: bars}, logger.NewNopLogger())

	result, err := engine.Run(context.Background(), testRunParams())

	suite.NoError(err)
	suite.Len(result.PortfolioHistory, 3)
}

func (suite *EngineTestSuite) TestSourceErrorMapsToDataUnavailable() {
	sourceErr := errors.New(errors.ErrCodeMarketDataFetchFailed, "upstream down")
	engine := NewEngine(&stubSource{err: sourceErr}, logger.NewNopLogger())

	_, err := engine.Run(context.Background(), testRunParams())

	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataUnavailable))
}

func (suite *EngineTestSuite) TestInvalidStrategyAbortsBeforeFetch() {
	engine := NewEngine(&stubSource{err: errors.New(errors.ErrCodeMarketDataFetchFailed, "should not be called")}, logger.NewNopLogger())

	params := testRunParams()
	params.Strategy.SMACrossover = &strategy.SMACrossoverParams{ShortPeriod: 3, LongPeriod: 2}

	_, err := engine.Run(context.Background(), params)

	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidStrategyConfig))
}
