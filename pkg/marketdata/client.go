// Package marketdata exposes a single read path for daily price history:
// a provider-backed client with an optional DuckDB read-through cache.
package marketdata

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rxtech-lab/strategy-backtest/internal/logger"
	"github.com/rxtech-lab/strategy-backtest/internal/types"
	"github.com/rxtech-lab/strategy-backtest/pkg/errors"
	"github.com/rxtech-lab/strategy-backtest/pkg/marketdata/cache"
	"github.com/rxtech-lab/strategy-backtest/pkg/marketdata/provider"
)

// DefaultFetchTimeout bounds a single upstream fetch when the config leaves
// FetchTimeout unset.
const DefaultFetchTimeout = 30 * time.Second

// ClientConfig holds the configuration for the market data client.
// DataPath is optional; when empty the client runs without a cache.
type ClientConfig struct {
	ProviderType  provider.ProviderType `validate:"required,oneof=polygon binance"`
	PolygonApiKey string                `validate:"required_if=ProviderType polygon"`
	DataPath      string                `validate:"omitempty"`
	FetchTimeout  time.Duration         `validate:"omitempty,min=0"`
}

// Client fetches daily bars from the configured provider, consulting the
// cache first when one is configured. It satisfies the engine's DataSource.
type Client struct {
	provider provider.Provider
	cache    *cache.DuckDBCache
	timeout  time.Duration
	log      *logger.Logger
}

// NewClient creates a market data client with the given configuration.
func NewClient(config ClientConfig, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid market data client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, config.PolygonApiKey)
	if err != nil {
		return nil, err
	}

	var barCache *cache.DuckDBCache
	if config.DataPath != "" {
		barCache, err = cache.NewDuckDBCache(config.DataPath)
		if err != nil {
			return nil, err
		}
	}

	timeout := config.FetchTimeout
	if timeout == 0 {
		timeout = DefaultFetchTimeout
	}

	return &Client{
		provider: marketProvider,
		cache:    barCache,
		timeout:  timeout,
		log:      log,
	}, nil
}

// GetDailyBars returns the daily bars for the ticker between start and end
// inclusive, in ascending time order.
func (c *Client) GetDailyBars(ctx context.Context, ticker string, start, end types.Date) ([]types.MarketData, error) {
	// Daily bar timestamps carry provider-specific intraday offsets, so the
	// range end covers the whole final calendar day.
	startTime := start.Time
	endTime := end.Time.Add(24*time.Hour - time.Nanosecond)

	if c.cache != nil {
		bars, hit, err := c.cache.Get(ctx, ticker, startTime, endTime)
		if err != nil {
			return nil, err
		}

		if hit {
			c.log.Debug("market data cache hit",
				zap.String("ticker", ticker),
				zap.String("start", start.String()),
				zap.String("end", end.String()),
				zap.Int("bars", len(bars)),
			)

			return bars, nil
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	bars, err := c.provider.GetDailyBars(fetchCtx, ticker, startTime, endTime)
	if err != nil {
		return nil, err
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})

	if c.cache != nil {
		if err := c.cache.Put(ctx, ticker, startTime, endTime, bars); err != nil {
			// A cache write failure degrades to uncached operation.
			c.log.Warn("failed to cache market data",
				zap.String("ticker", ticker),
				zap.Error(err),
			)
		}
	}

	c.log.Info("fetched market data",
		zap.String("provider", c.provider.Name()),
		zap.String("ticker", ticker),
		zap.String("start", start.String()),
		zap.String("end", end.String()),
		zap.Int("bars", len(bars)),
	)

	return bars, nil
}

// Close releases the cache database if one is open.
func (c *Client) Close() error {
	if c.cache != nil {
		return c.cache.Close()
	}

	return nil
}
