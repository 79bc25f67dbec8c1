package strategy

import (
	"fmt"

	"github.com/rxtech-lab/strategy-backtest/internal/types"
)

// generateRSIThresholdSignals emits Buy when the RSI crosses below the
// oversold threshold and Sell when it crosses back above the overbought
// threshold. An armed/unarmed flag (initially unarmed) enforces strict
// buy/sell alternation: a Buy arms the strategy, a Sell unarms it, and no
// signal repeats while the flag is unchanged.
func generateRSIThresholdSignals(bars []types.MarketData, params RSIThresholdParams) []types.Signal {
	name := string(StrategyTypeRSIThreshold)

	if len(bars) < params.Period+1 {
		return allHold(bars, name)
	}

	rsi, defined := relativeStrengthIndex(bars, params.Period)

	signals := make([]types.Signal, len(bars))
	armed := false

	for i, bar := range bars {
		signals[i] = types.Signal{
			Time:   bar.Time,
			Type:   types.SignalTypeHold,
			Name:   name,
			Reason: "",
		}

		if i == 0 || !defined[i] || !defined[i-1] {
			continue
		}

		switch {
		case !armed && rsi[i] < params.Oversold && rsi[i-1] >= params.Oversold:
			signals[i].Type = types.SignalTypeBuy
			signals[i].Reason = fmt.Sprintf("RSI crossed below oversold (value=%.2f)", rsi[i])
			armed = true
		case armed && rsi[i] > params.Overbought && rsi[i-1] <= params.Overbought:
			signals[i].Type = types.SignalTypeSell
			signals[i].Reason = fmt.Sprintf("RSI crossed above overbought (value=%.2f)", rsi[i])
			armed = false
		}
	}

	return signals
}

// relativeStrengthIndex computes the RSI series using simple rolling means of
// gains and losses over the window. This is a deliberate design choice over
// Wilder's exponential smoothing: results stay reproducible from any
// subsequence of the input. The returned defined slice marks indices where
// the window is full; the first defined index is period.
//
// When the average loss is exactly zero the RSI saturates to 100 instead of
// propagating an undefined ratio.
func relativeStrengthIndex(bars []types.MarketData, period int) ([]float64, []bool) {
	rsi := make([]float64, len(bars))
	defined := make([]bool, len(bars))

	var gainSum, lossSum float64

	for i := 1; i < len(bars); i++ {
		delta := bars[i].Close - bars[i-1].Close
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum += -delta
		}

		// Slide the window once it holds period deltas.
		if i > period {
			oldDelta := bars[i-period].Close - bars[i-period-1].Close
			if oldDelta > 0 {
				gainSum -= oldDelta
			} else {
				lossSum -= -oldDelta
			}
		}

		if i < period {
			continue
		}

		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)

		if avgLoss == 0 {
			rsi[i] = 100
		} else {
			rs := avgGain / avgLoss
			rsi[i] = 100 - (100 / (1 + rs))
		}

		defined[i] = true
	}

	return rsi, defined
}
