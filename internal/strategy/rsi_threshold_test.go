package strategy

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/strategy-backtest/internal/types"
)

type RSIThresholdTestSuite struct {
	suite.Suite
}

func TestRSIThresholdSuite(t *testing.T) {
	suite.Run(t, new(RSIThresholdTestSuite))
}

func (suite *RSIThresholdTestSuite) TestBuyThenSellCycle() {
	// Two gains push the RSI to 100, a sharp drop crosses below the oversold
	// threshold, and a rally crosses back above the overbought threshold.
	bars := barsFromCloses([]float64{100, 101, 102, 90, 91, 102, 103})
	params := RSIThresholdParams{Period: 2, Overbought: 70, Oversold: 30}

	signals := generateRSIThresholdSignals(bars, params)

	suite.Equal([]types.SignalType{
		types.SignalTypeHold,
		types.SignalTypeHold,
		types.SignalTypeHold,
		types.SignalTypeBuy,
		types.SignalTypeHold,
		types.SignalTypeSell,
		types.SignalTypeHold,
	}, signalTypes(signals))

	suite.Contains(signals[3].Reason, "RSI crossed below oversold")
	suite.Contains(signals[5].Reason, "RSI crossed above overbought")
}

func (suite *RSIThresholdTestSuite) TestOverboughtCrossWithoutPositionIsIgnored() {
	// The RSI crosses above the overbought threshold without a prior buy, so
	// the strategy stays unarmed and emits nothing.
	bars := barsFromCloses([]float64{100, 99, 98, 110, 111})
	params := RSIThresholdParams{Period: 2, Overbought: 70, Oversold: 30}

	signals := generateRSIThresholdSignals(bars, params)

	for _, s := range signals {
		suite.Equal(types.SignalTypeHold, s.Type)
	}
}

func (suite *RSIThresholdTestSuite) TestConstantPricesSaturateAtHundred() {
	bars := barsFromCloses([]float64{100, 100, 100, 100, 100})

	rsi, defined := relativeStrengthIndex(bars, 2)

	for i := 2; i < len(bars); i++ {
		suite.True(defined[i])
		suite.Equal(100.0, rsi[i])
	}
}

func (suite *RSIThresholdTestSuite) TestAllLossesGiveZero() {
	bars := barsFromCloses([]float64{100, 90, 80, 70})

	rsi, defined := relativeStrengthIndex(bars, 2)

	suite.True(defined[2])
	suite.Equal(0.0, rsi[2])
	suite.True(defined[3])
	suite.Equal(0.0, rsi[3])
}

func (suite *RSIThresholdTestSuite) TestDefinedStartsAtPeriod() {
	bars := barsFromCloses([]float64{100, 101, 102, 103})

	_, defined := relativeStrengthIndex(bars, 2)

	suite.False(defined[0])
	suite.False(defined[1])
	suite.True(defined[2])
	suite.True(defined[3])
}

func (suite *RSIThresholdTestSuite) TestSeriesShorterThanWindow() {
	bars := barsFromCloses([]float64{100, 101})
	params := RSIThresholdParams{Period: 2, Overbought: 70, Oversold: 30}

	signals := generateRSIThresholdSignals(bars, params)

	suite.Len(signals, 2)

	for _, s := range signals {
		suite.Equal(types.SignalTypeHold, s.Type)
		suite.Equal("rsi_threshold", s.Name)
	}
}
