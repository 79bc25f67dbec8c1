// Package provider contains the upstream market data integrations. Each
// provider fetches daily OHLCV bars for one symbol over a closed date range
// and returns them in ascending time order.
package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/strategy-backtest/internal/types"
	"github.com/rxtech-lab/strategy-backtest/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

type Provider interface {
	// Name returns the provider identifier, e.g. "polygon".
	Name() string
	// GetDailyBars fetches daily bars for the ticker between startDate and
	// endDate inclusive. The context can be used to cancel the fetch.
	GetDailyBars(ctx context.Context, ticker string, startDate time.Time, endDate time.Time) ([]types.MarketData, error)
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, apiKey string) (Provider, error) {
	switch providerType {
	case ProviderPolygon:
		return NewPolygonProvider(apiKey)
	case ProviderBinance:
		return NewBinanceProvider()
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}
