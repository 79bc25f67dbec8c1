package strategy

import (
	"fmt"

	"github.com/rxtech-lab/strategy-backtest/internal/types"
)

// generateSMACrossoverSignals emits Buy when the short moving average crosses
// above the long one between consecutive bars, Sell on the opposite cross,
// and Hold everywhere else. Indices where either mean is undefined (window
// not yet full) are Hold.
func generateSMACrossoverSignals(bars []types.MarketData, params SMACrossoverParams) []types.Signal {
	name := string(StrategyTypeSMACrossover)

	if len(bars) < params.LongPeriod {
		return allHold(bars, name)
	}

	shortMA := rollingMean(bars, params.ShortPeriod)
	longMA := rollingMean(bars, params.LongPeriod)

	signals := make([]types.Signal, len(bars))
	for i, bar := range bars {
		signals[i] = types.Signal{
			Time:   bar.Time,
			Type:   types.SignalTypeHold,
			Name:   name,
			Reason: "",
		}

		// Both means must be defined at i and i-1 to detect a cross.
		// The long mean is first defined at index LongPeriod-1.
		if i < params.LongPeriod {
			continue
		}

		switch {
		case shortMA[i] > longMA[i] && shortMA[i-1] <= longMA[i-1]:
			signals[i].Type = types.SignalTypeBuy
			signals[i].Reason = fmt.Sprintf("SMA(%d) crossed above SMA(%d)", params.ShortPeriod, params.LongPeriod)
		case shortMA[i] < longMA[i] && shortMA[i-1] >= longMA[i-1]:
			signals[i].Type = types.SignalTypeSell
			signals[i].Reason = fmt.Sprintf("SMA(%d) crossed below SMA(%d)", params.ShortPeriod, params.LongPeriod)
		}
	}

	return signals
}

// rollingMean computes the arithmetic mean of closing prices over a trailing
// window. Entries before the window is full are left as zero and must not be
// read; the first defined index is period-1.
func rollingMean(bars []types.MarketData, period int) []float64 {
	means := make([]float64, len(bars))

	var windowSum float64

	for i, bar := range bars {
		windowSum += bar.Close
		if i >= period {
			windowSum -= bars[i-period].Close
		}

		if i >= period-1 {
			means[i] = windowSum / float64(period)
		}
	}

	return means
}
