package provider

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/rxtech-lab/strategy-backtest/internal/types"
	"github.com/rxtech-lab/strategy-backtest/pkg/errors"
)

// binancePageSize is the maximum number of klines Binance returns per
// request; a short page marks the end of the range.
const binancePageSize = 500

type BinanceProvider struct {
	client *binance.Client
}

// NewBinanceProvider creates a provider for Binance spot klines. Historical
// kline data needs no API credentials.
func NewBinanceProvider() (Provider, error) {
	return &BinanceProvider{
		client: binance.NewClient("", ""),
	}, nil
}

func (p *BinanceProvider) Name() string {
	return string(ProviderBinance)
}

// GetDailyBars fetches daily klines, paginating by the close time of the
// last kline in each page.
func (p *BinanceProvider) GetDailyBars(ctx context.Context, ticker string, startDate time.Time, endDate time.Time) ([]types.MarketData, error) {
	startMillis := startDate.UnixMilli()
	endMillis := endDate.UnixMilli()

	bars := []types.MarketData{}
	currentStart := startMillis

	for {
		klines, err := p.client.NewKlinesService().
			Symbol(ticker).
			Interval("1d").
			StartTime(currentStart).
			EndTime(endMillis).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err,
				"failed to fetch klines from binance for %s", ticker)
		}

		bars = append(bars, convertKlines(ticker, klines)...)

		if len(klines) < binancePageSize {
			break
		}

		// Resume from the close time of the last kline + 1ms to avoid duplicates.
		currentStart = klines[len(klines)-1].CloseTime + 1
		if currentStart >= endMillis {
			break
		}
	}

	return bars, nil
}

func convertKlines(ticker string, klines []*binance.Kline) []types.MarketData {
	bars := make([]types.MarketData, 0, len(klines))

	for _, k := range klines {
		open, _ := strconv.ParseFloat(k.Open, 64)
		high, _ := strconv.ParseFloat(k.High, 64)
		low, _ := strconv.ParseFloat(k.Low, 64)
		closePrice, _ := strconv.ParseFloat(k.Close, 64)
		volume, _ := strconv.ParseFloat(k.Volume, 64)

		bars = append(bars, types.MarketData{
			Symbol: ticker,
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	return bars
}
