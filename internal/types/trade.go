package types

type TradeAction string

const (
	TradeActionBuy  TradeAction = "buy"
	TradeActionSell TradeAction = "sell"
)

// Trade records one executed transition of the portfolio state machine.
// Trades are immutable once recorded and strictly ordered by date.
type Trade struct {
	Date   Date        `yaml:"date" json:"date"`
	Action TradeAction `yaml:"action" json:"action" validate:"required,oneof=buy sell"`
	Price  float64     `yaml:"price" json:"price" validate:"gt=0"`
	Shares int64       `yaml:"shares" json:"shares" validate:"gt=0"`
	// Value is shares * price, before commission.
	Value float64 `yaml:"value" json:"value"`
}

// PortfolioSnapshot is the end-of-bar portfolio state. Exactly one snapshot
// is recorded per input bar, and PortfolioValue = Cash + StockValue always.
type PortfolioSnapshot struct {
	Date           Date    `yaml:"date" json:"date"`
	PortfolioValue float64 `yaml:"portfolio_value" json:"portfolio_value"`
	StockValue     float64 `yaml:"stock_value" json:"stock_value"`
	Cash           float64 `yaml:"cash" json:"cash"`
}

// BenchmarkSnapshot is the end-of-bar value of a fixed buy-and-hold position
// sized from the first close, charged no commission and never rebalanced.
type BenchmarkSnapshot struct {
	Date  Date    `yaml:"date" json:"date"`
	Value float64 `yaml:"value" json:"value"`
}
