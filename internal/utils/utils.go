package utils

import "github.com/shopspring/decimal"

// RoundMoney rounds a monetary value to 2 decimal places.
func RoundMoney(value float64) float64 {
	return RoundToDecimalPlaces(value, 2)
}

// RoundToDecimalPlaces rounds a value to the given number of decimal places
// using decimal arithmetic to avoid float accumulation artifacts.
func RoundToDecimalPlaces(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// MaxAffordableShares returns the whole number of shares purchasable with the
// given cash at the given price, ignoring commission. Commission is checked
// separately by the simulator; the quantity is deliberately not reduced when
// the commission makes it unaffordable.
func MaxAffordableShares(cash float64, price float64) int64 {
	if price <= 0 || cash <= 0 {
		return 0
	}

	return int64(cash / price)
}
