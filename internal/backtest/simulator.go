package backtest

import (
	"go.uber.org/zap"

	"github.com/rxtech-lab/strategy-backtest/internal/backtest/commission_fee"
	"github.com/rxtech-lab/strategy-backtest/internal/logger"
	"github.com/rxtech-lab/strategy-backtest/internal/types"
	"github.com/rxtech-lab/strategy-backtest/internal/utils"
	"github.com/rxtech-lab/strategy-backtest/pkg/errors"
)

// simulationState is the accumulator threaded through the per-bar fold.
// Invariants: cash never goes negative (affordability is checked before any
// buy) and shares is zero or the quantity of the single open position.
type simulationState struct {
	cash   float64
	shares int64
}

// SimulationOutput is everything one forward pass over the price series
// produces: the trade log, one portfolio snapshot per bar, the matching
// buy-and-hold benchmark, and the final portfolio value.
type SimulationOutput struct {
	Trades           []types.Trade
	PortfolioHistory []types.PortfolioSnapshot
	BenchmarkHistory []types.BenchmarkSnapshot
	FinalValue       float64
}

// Simulator turns a signal series into trades and snapshots under a
// commission model. Each Run owns a private accumulator, so concurrent runs
// share no state.
type Simulator struct {
	commission commission_fee.CommissionFee
	log        *logger.Logger
}

// NewSimulator creates a Simulator charging the given commission model.
func NewSimulator(commission commission_fee.CommissionFee, log *logger.Logger) *Simulator {
	return &Simulator{
		commission: commission,
		log:        log,
	}
}

// Run executes a single chronological pass over the bars. Signals must align
// 1:1 by position with the bars. An empty input yields empty outputs with no
// error; Buy-while-holding and Sell-while-flat are no-ops, never errors.
func (s *Simulator) Run(bars []types.MarketData, signals []types.Signal, initialCapital float64) (SimulationOutput, error) {
	if len(bars) != len(signals) {
		return SimulationOutput{}, errors.Newf(errors.ErrCodeSignalLengthMismatch,
			"signal series length (%d) does not match price series length (%d)", len(signals), len(bars))
	}

	output := SimulationOutput{
		Trades:           []types.Trade{},
		PortfolioHistory: []types.PortfolioSnapshot{},
		BenchmarkHistory: []types.BenchmarkSnapshot{},
		FinalValue:       initialCapital,
	}

	if len(bars) == 0 {
		return output, nil
	}

	state := simulationState{
		cash:   initialCapital,
		shares: 0,
	}

	// The benchmark holds a fixed fractional position sized once from the
	// first close, with no commission and no rebalancing.
	benchmarkShares := initialCapital / bars[0].Close

	for i, bar := range bars {
		price := bar.Close

		switch {
		case signals[i].Type == types.SignalTypeBuy && state.shares == 0:
			state = s.executeBuy(state, bar, &output)
		case signals[i].Type == types.SignalTypeSell && state.shares > 0:
			state = s.executeSell(state, bar, &output)
		}

		stockValue := utils.RoundMoney(float64(state.shares) * price)
		cash := utils.RoundMoney(state.cash)

		output.PortfolioHistory = append(output.PortfolioHistory, types.PortfolioSnapshot{
			Date:           types.NewDate(bar.Time),
			PortfolioValue: cash + stockValue,
			StockValue:     stockValue,
			Cash:           cash,
		})

		output.BenchmarkHistory = append(output.BenchmarkHistory, types.BenchmarkSnapshot{
			Date:  types.NewDate(bar.Time),
			Value: utils.RoundMoney(benchmarkShares * price),
		})
	}

	output.FinalValue = utils.RoundMoney(state.cash + float64(state.shares)*bars[len(bars)-1].Close)

	return output, nil
}

// executeBuy attempts to open a position with all available cash. The
// quantity is the whole number of shares affordable before commission; when
// adding the commission pushes the total cost past available cash, the trade
// is skipped entirely rather than sized down. Do not "fix" this: reducing the
// quantity here changes recorded backtest results.
func (s *Simulator) executeBuy(state simulationState, bar types.MarketData, output *SimulationOutput) simulationState {
	price := bar.Close

	qty := utils.MaxAffordableShares(state.cash, price)
	if qty <= 0 {
		return state
	}

	tradeValue := float64(qty) * price
	commissionCost := s.commission.Calculate(tradeValue)

	if state.cash < tradeValue+commissionCost {
		s.log.Debug("buy skipped: commission exceeds remaining cash",
			zap.Time("time", bar.Time),
			zap.Int64("qty", qty),
			zap.Float64("trade_value", tradeValue),
			zap.Float64("commission", commissionCost),
			zap.Float64("cash", state.cash),
		)

		return state
	}

	state.shares = qty
	state.cash -= tradeValue + commissionCost

	output.Trades = append(output.Trades, types.Trade{
		Date:   types.NewDate(bar.Time),
		Action: types.TradeActionBuy,
		Price:  utils.RoundMoney(price),
		Shares: qty,
		Value:  utils.RoundMoney(tradeValue),
	})

	return state
}

// executeSell closes the open position at the bar's close price.
func (s *Simulator) executeSell(state simulationState, bar types.MarketData, output *SimulationOutput) simulationState {
	price := bar.Close

	tradeValue := float64(state.shares) * price
	commissionCost := s.commission.Calculate(tradeValue)

	state.cash += tradeValue - commissionCost

	output.Trades = append(output.Trades, types.Trade{
		Date:   types.NewDate(bar.Time),
		Action: types.TradeActionSell,
		Price:  utils.RoundMoney(price),
		Shares: state.shares,
		Value:  utils.RoundMoney(tradeValue),
	})

	state.shares = 0

	return state
}
