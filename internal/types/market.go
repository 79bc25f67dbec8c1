package types

import "time"

// MarketData is a single daily OHLCV bar for one symbol.
type MarketData struct {
	Symbol string    `yaml:"symbol" json:"symbol"`
	Time   time.Time `yaml:"time" json:"time"`
	Open   float64   `yaml:"open" json:"open"`
	High   float64   `yaml:"high" json:"high"`
	Low    float64   `yaml:"low" json:"low"`
	Close  float64   `yaml:"close" json:"close"`
	Volume float64   `yaml:"volume" json:"volume"`
}

// IsComplete reports whether the bar carries the fields the simulation
// requires. Bars with a zero timestamp or a non-positive close cannot be
// simulated or used to size the buy-and-hold benchmark.
func (m MarketData) IsComplete() bool {
	return !m.Time.IsZero() && m.Close > 0
}
