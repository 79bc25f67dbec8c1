package commission_fee

type CommissionFee interface {
	// Calculate the commission fee for a given trade value and returns the fee in USD
	Calculate(tradeValue float64) float64
}

type FeeModel string

const (
	FeeModelPercentage FeeModel = "percentage"
	FeeModelZero       FeeModel = "zero"
)

var AllFeeModels = []any{
	FeeModelPercentage,
	FeeModelZero,
}

// GetCommissionFeeHandler returns the commission fee implementation for the
// given model. Unknown models fall back to the default percentage fee.
func GetCommissionFeeHandler(model FeeModel) CommissionFee {
	switch model {
	case FeeModelPercentage:
		return NewPercentageCommissionFee(DefaultCommissionRate)
	case FeeModelZero:
		return NewZeroCommissionFee()
	default:
		return NewPercentageCommissionFee(DefaultCommissionRate)
	}
}
