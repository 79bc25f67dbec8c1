package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/strategy-backtest/internal/backtest/commission_fee"
	"github.com/rxtech-lab/strategy-backtest/internal/logger"
	"github.com/rxtech-lab/strategy-backtest/internal/types"
	"github.com/rxtech-lab/strategy-backtest/pkg/errors"
)

type SimulatorTestSuite struct {
	suite.Suite
}

func TestSimulatorSuite(t *testing.T) {
	suite.Run(t, new(SimulatorTestSuite))
}

func testBars(closes []float64) []types.MarketData {
	bars := make([]types.MarketData, len(closes))
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	for i, c := range closes {
		bars[i] = types.MarketData{
			Symbol: "TEST",
			Time:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}

	return bars
}

func testSignals(bars []types.MarketData, kinds ...types.SignalType) []types.Signal {
	signals := make([]types.Signal, len(bars))
	for i, bar := range bars {
		signals[i] = types.Signal{
			Time: bar.Time,
			Type: kinds[i],
			Name: "test",
		}
	}

	return signals
}

func percentageSimulator() *Simulator {
	return NewSimulator(commission_fee.GetCommissionFeeHandler(commission_fee.FeeModelPercentage), logger.NewNopLogger())
}

func zeroFeeSimulator() *Simulator {
	return NewSimulator(commission_fee.GetCommissionFeeHandler(commission_fee.FeeModelZero), logger.NewNopLogger())
}

func (suite *SimulatorTestSuite) TestBuyThenSell() {
	bars := testBars([]float64{10.5, 10.5, 12, 12})
	signals := testSignals(bars, types.SignalTypeHold, types.SignalTypeBuy, types.SignalTypeSell, types.SignalTypeHold)

	output, err := percentageSimulator().Run(bars, signals, 1000)

	suite.NoError(err)
	suite.Len(output.Trades, 2)

	buy := output.Trades[0]
	suite.Equal(types.TradeActionBuy, buy.Action)
	suite.Equal(int64(95), buy.Shares)
	suite.Equal(10.5, buy.Price)
	suite.Equal(997.5, buy.Value)

	sell := output.Trades[1]
	suite.Equal(types.TradeActionSell, sell.Action)
	suite.Equal(int64(95), sell.Shares)
	suite.Equal(12.0, sell.Price)
	suite.Equal(1140.0, sell.Value)

	// 1000 - 997.5 - 0.9975 cash after buy, + 1140 - 1.14 after sell.
	suite.Equal(1140.36, output.FinalValue)
}

func (suite *SimulatorTestSuite) TestSnapshotPerBar() {
	bars := testBars([]float64{10.5, 10.5, 12, 12})
	signals := testSignals(bars, types.SignalTypeHold, types.SignalTypeBuy, types.SignalTypeSell, types.SignalTypeHold)

	output, err := percentageSimulator().Run(bars, signals, 1000)

	suite.NoError(err)
	suite.Len(output.PortfolioHistory, len(bars))
	suite.Len(output.BenchmarkHistory, len(bars))

	first := output.PortfolioHistory[0]
	suite.Equal(1000.0, first.Cash)
	suite.Equal(0.0, first.StockValue)
	suite.Equal(1000.0, first.PortfolioValue)

	// Snapshot reflects the position held after the same-bar trade.
	afterBuy := output.PortfolioHistory[1]
	suite.Equal(1.5, afterBuy.Cash)
	suite.Equal(997.5, afterBuy.StockValue)
	suite.Equal(999.0, afterBuy.PortfolioValue)

	for _, snapshot := range output.PortfolioHistory {
		suite.Equal(snapshot.Cash+snapshot.StockValue, snapshot.PortfolioValue)
	}
}

func (suite *SimulatorTestSuite) TestBenchmarkTracksFirstClose() {
	bars := testBars([]float64{10.5, 10.5, 12, 12})
	signals := testSignals(bars, types.SignalTypeHold, types.SignalTypeHold, types.SignalTypeHold, types.SignalTypeHold)

	output, err := percentageSimulator().Run(bars, signals, 1000)

	suite.NoError(err)
	suite.Equal(1000.0, output.BenchmarkHistory[0].Value)
	suite.Equal(1142.86, output.BenchmarkHistory[2].Value)
}

func (suite *SimulatorTestSuite) TestBuySkippedWhenCommissionUnaffordable() {
	// Cash divides evenly into shares, so the commission on the full-size
	// order cannot be paid and the buy is skipped rather than sized down.
	bars := testBars([]float64{100, 100, 100})
	signals := testSignals(bars, types.SignalTypeBuy, types.SignalTypeHold, types.SignalTypeHold)

	output, err := percentageSimulator().Run(bars, signals, 10000)

	suite.NoError(err)
	suite.Empty(output.Trades)
	suite.Equal(10000.0, output.FinalValue)

	for _, snapshot := range output.PortfolioHistory {
		suite.Equal(10000.0, snapshot.Cash)
		suite.Equal(0.0, snapshot.StockValue)
	}
}

func (suite *SimulatorTestSuite) TestZeroFeeExecutesFullSizeOrder() {
	bars := testBars([]float64{100, 100, 100})
	signals := testSignals(bars, types.SignalTypeBuy, types.SignalTypeHold, types.SignalTypeHold)

	output, err := zeroFeeSimulator().Run(bars, signals, 10000)

	suite.NoError(err)
	suite.Len(output.Trades, 1)
	suite.Equal(int64(100), output.Trades[0].Shares)
	suite.Equal(0.0, output.PortfolioHistory[0].Cash)
	suite.Equal(10000.0, output.PortfolioHistory[0].StockValue)
}

func (suite *SimulatorTestSuite) TestRedundantSignalsAreIgnored() {
	bars := testBars([]float64{10.5, 10.5, 10.5, 12, 12})
	signals := testSignals(bars,
		types.SignalTypeSell, // flat, ignored
		types.SignalTypeBuy,
		types.SignalTypeBuy, // already holding, ignored
		types.SignalTypeSell,
		types.SignalTypeSell, // flat again, ignored
	)

	output, err := percentageSimulator().Run(bars, signals, 1000)

	suite.NoError(err)
	suite.Len(output.Trades, 2)
	suite.Equal(types.TradeActionBuy, output.Trades[0].Action)
	suite.Equal(types.TradeActionSell, output.Trades[1].Action)
}

func (suite *SimulatorTestSuite) TestOpenPositionValuedAtLastClose() {
	bars := testBars([]float64{10.5, 10.5, 12})
	signals := testSignals(bars, types.SignalTypeHold, types.SignalTypeBuy, types.SignalTypeHold)

	output, err := percentageSimulator().Run(bars, signals, 1000)

	suite.NoError(err)
	suite.Len(output.Trades, 1)

	// 95 shares at the final close of 12 plus leftover cash.
	suite.Equal(1141.5, output.FinalValue)
}

func (suite *SimulatorTestSuite) TestCommissionConservation() {
	bars := testBars([]float64{10.5, 12})
	signals := testSignals(bars, types.SignalTypeBuy, types.SignalTypeSell)

	output, err := percentageSimulator().Run(bars, signals, 1000)

	suite.Require().NoError(err)
	suite.Require().Len(output.Trades, 2)

	// A buy decreases cash by value plus 0.1% commission; a sell increases
	// it by value minus the same rate.
	buyValue := output.Trades[0].Value
	cashAfterBuy := 1000 - buyValue - buyValue*0.001
	suite.InDelta(cashAfterBuy, 1000-buyValue*1.001, 1e-9)

	sellValue := output.Trades[1].Value
	expectedFinal := cashAfterBuy + sellValue - sellValue*0.001
	suite.InDelta(expectedFinal, output.FinalValue, 0.005)
}

func (suite *SimulatorTestSuite) TestEmptySeries() {
	output, err := percentageSimulator().Run(nil, nil, 5000)

	suite.NoError(err)
	suite.Empty(output.Trades)
	suite.Empty(output.PortfolioHistory)
	suite.Empty(output.BenchmarkHistory)
	suite.Equal(5000.0, output.FinalValue)
}

func (suite *SimulatorTestSuite) TestLengthMismatchRejected() {
	bars := testBars([]float64{10, 11})
	signals := testSignals(bars[:1], types.SignalTypeHold)

	_, err := percentageSimulator().Run(bars, signals, 1000)

	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeSignalLengthMismatch))
}
