package backtest

import (
	"math"

	"github.com/rxtech-lab/strategy-backtest/internal/types"
	"github.com/rxtech-lab/strategy-backtest/internal/utils"
)

// tradingDaysPerYear is the annualization basis. Calendar time is never
// consulted: the elapsed period is always snapshot count over this constant.
const tradingDaysPerYear = 252.0

// riskFreeRate is the annual rate subtracted in the Sharpe ratio numerator.
const riskFreeRate = 0.02

// CalculateMetrics derives the performance summary from a completed
// simulation. An empty portfolio history yields the zero value of
// PerformanceMetrics. All percentage fields are rounded to two decimals.
func CalculateMetrics(history []types.PortfolioSnapshot, trades []types.Trade, initialCapital float64) types.PerformanceMetrics {
	if len(history) == 0 {
		return types.PerformanceMetrics{}
	}

	finalValue := history[len(history)-1].PortfolioValue

	totalReturn := (finalValue - initialCapital) / initialCapital * 100

	annualizedReturn := 0.0

	years := float64(len(history)) / tradingDaysPerYear
	if years > 0 {
		annualizedReturn = (math.Pow(finalValue/initialCapital, 1/years) - 1) * 100
	}

	volatility := annualizedVolatility(history)

	sharpe := 0.0
	if volatility > 0 {
		sharpe = (annualizedReturn/100 - riskFreeRate) / (volatility / 100)
	}

	profitable, total := pairTrades(trades)

	winRate := 0.0
	if total >= 2 {
		winRate = float64(profitable) / float64(total/2) * 100
	}

	return types.PerformanceMetrics{
		TotalReturn:      utils.RoundMoney(totalReturn),
		AnnualizedReturn: utils.RoundMoney(annualizedReturn),
		Volatility:       utils.RoundMoney(volatility),
		SharpeRatio:      utils.RoundMoney(sharpe),
		MaxDrawdown:      utils.RoundMoney(maxDrawdown(history)),
		WinRate:          utils.RoundMoney(winRate),
		TotalTrades:      total,
		ProfitableTrades: profitable,
	}
}

// annualizedVolatility is the sample standard deviation of day-over-day
// percentage changes in portfolio value, scaled by the square root of the
// trading year. Fewer than two changes (three snapshots would give two) means
// the sample deviation is undefined and the result is zero.
func annualizedVolatility(history []types.PortfolioSnapshot) float64 {
	returns := make([]float64, 0, len(history))

	for i := 1; i < len(history); i++ {
		prev := history[i-1].PortfolioValue
		if prev == 0 {
			continue
		}

		returns = append(returns, (history[i].PortfolioValue-prev)/prev)
	}

	if len(returns) < 2 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var sumSq float64
	for _, r := range returns {
		d := r - mean
		sumSq += d * d
	}

	stdev := math.Sqrt(sumSq / float64(len(returns)-1))

	return stdev * math.Sqrt(tradingDaysPerYear) * 100
}

// maxDrawdown is the largest percentage decline from any running peak of the
// portfolio value series. Always non-negative.
func maxDrawdown(history []types.PortfolioSnapshot) float64 {
	var peak, worst float64

	for _, snapshot := range history {
		if snapshot.PortfolioValue > peak {
			peak = snapshot.PortfolioValue
		}

		if peak <= 0 {
			continue
		}

		drawdown := (peak - snapshot.PortfolioValue) / peak * 100
		if drawdown > worst {
			worst = drawdown
		}
	}

	return worst
}

// pairTrades walks the trade log pairing each buy with the immediately
// following sell into a round trip, counting the profitable ones. Trades that
// do not form such a pair (a trailing buy with the position still open) are
// skipped one at a time.
func pairTrades(trades []types.Trade) (profitable, total int) {
	total = len(trades)

	i := 0
	for i < len(trades)-1 {
		if trades[i].Action == types.TradeActionBuy && trades[i+1].Action == types.TradeActionSell {
			if trades[i+1].Price > trades[i].Price {
				profitable++
			}

			i += 2

			continue
		}

		i++
	}

	return profitable, total
}
