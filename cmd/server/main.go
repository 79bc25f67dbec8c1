package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/strategy-backtest/internal/api"
	"github.com/rxtech-lab/strategy-backtest/internal/backtest"
	"github.com/rxtech-lab/strategy-backtest/internal/logger"
	"github.com/rxtech-lab/strategy-backtest/pkg/marketdata"
	"github.com/rxtech-lab/strategy-backtest/pkg/marketdata/provider"
)

// serveAction wires the market data client, engine, and HTTP server, then
// blocks until the process receives an interrupt.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	appLogger, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	clientConfig := marketdata.ClientConfig{
		ProviderType:  provider.ProviderType(cmd.String("provider")),
		PolygonApiKey: os.Getenv("POLYGON_API_KEY"),
		DataPath:      cmd.String("data"),
	}

	client, err := marketdata.NewClient(clientConfig, appLogger)
	if err != nil {
		return err
	}
	defer client.Close()

	engine := backtest.NewEngine(client, appLogger)
	handlers := api.NewHandlers(engine, client, appLogger)
	server := api.NewServer(cmd.String("addr"), handlers, appLogger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLogger.Info("shutting down", zap.String("reason", "signal received"))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func main() {
	cmd := &cli.Command{
		Name:  "server",
		Usage: "Serve the trading strategy backtesting API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "addr",
				Aliases:  []string{"a"},
				Usage:    "Listen address",
				Value:    ":8000",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "provider",
				Aliases:  []string{"p"},
				Usage:    "Market data provider (polygon, binance)",
				Value:    string(provider.ProviderPolygon),
				Required: false,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the DuckDB cache file. Empty disables caching.",
				Value:    "",
				Required: false,
			},
		},
		Action: serveAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
