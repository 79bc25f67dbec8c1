package commission_fee

import "github.com/shopspring/decimal"

// DefaultCommissionRate is the proportional commission charged on both buys
// and sells: 0.1% of the trade value.
const DefaultCommissionRate = 0.001

// PercentageCommissionFee charges a fixed proportion of the trade value.
type PercentageCommissionFee struct {
	rate decimal.Decimal
}

// NewPercentageCommissionFee creates a percentage commission fee with the
// given rate, e.g. 0.001 for 0.1%.
func NewPercentageCommissionFee(rate float64) CommissionFee {
	return &PercentageCommissionFee{
		rate: decimal.NewFromFloat(rate),
	}
}

// Calculate returns tradeValue * rate.
func (c *PercentageCommissionFee) Calculate(tradeValue float64) float64 {
	fee, _ := decimal.NewFromFloat(tradeValue).Mul(c.rate).Float64()

	return fee
}
