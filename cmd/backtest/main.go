package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/strategy-backtest/internal/backtest"
	"github.com/rxtech-lab/strategy-backtest/internal/backtest/commission_fee"
	"github.com/rxtech-lab/strategy-backtest/internal/logger"
	"github.com/rxtech-lab/strategy-backtest/internal/strategy"
	"github.com/rxtech-lab/strategy-backtest/internal/types"
	"github.com/rxtech-lab/strategy-backtest/pkg/marketdata"
	"github.com/rxtech-lab/strategy-backtest/pkg/marketdata/provider"
)

// progressSource decorates a data source with a progress bar tick so the
// fetch stage is visible on long date ranges.
type progressSource struct {
	source backtest.DataSource
	bar    *progressbar.ProgressBar
}

func (p *progressSource) GetDailyBars(ctx context.Context, ticker string, start, end types.Date) ([]types.MarketData, error) {
	p.bar.Describe(fmt.Sprintf("Fetching %s", ticker))

	bars, err := p.source.GetDailyBars(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	p.bar.Add(1)

	return bars, nil
}

func buildStrategyConfig(cmd *cli.Command) (strategy.Config, error) {
	switch strategy.StrategyType(cmd.String("strategy")) {
	case strategy.StrategyTypeSMACrossover:
		return strategy.Config{
			Type: strategy.StrategyTypeSMACrossover,
			SMACrossover: &strategy.SMACrossoverParams{
				ShortPeriod: int(cmd.Int("short-period")),
				LongPeriod:  int(cmd.Int("long-period")),
			},
		}, nil
	case strategy.StrategyTypeRSIThreshold:
		return strategy.Config{
			Type: strategy.StrategyTypeRSIThreshold,
			RSIThreshold: &strategy.RSIThresholdParams{
				Period:     int(cmd.Int("period")),
				Overbought: cmd.Float("overbought"),
				Oversold:   cmd.Float("oversold"),
			},
		}, nil
	default:
		return strategy.Config{}, fmt.Errorf("unsupported strategy: %s", cmd.String("strategy"))
	}
}

// loadConfig reads an engine configuration YAML file.
func loadConfig(path string) (backtest.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return backtest.Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	config := backtest.DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return backtest.Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return config, nil
}

// runAction executes a single backtest from the command line and writes the
// full result as YAML next to a printed summary.
func runAction(ctx context.Context, cmd *cli.Command) error {
	appLogger := logger.NewNopLogger()

	clientConfig := marketdata.ClientConfig{
		ProviderType:  provider.ProviderType(cmd.String("provider")),
		PolygonApiKey: os.Getenv("POLYGON_API_KEY"),
		DataPath:      cmd.String("data"),
	}

	client, err := marketdata.NewClient(clientConfig, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}
	defer client.Close()

	strategyConfig, err := buildStrategyConfig(cmd)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(2,
		progressbar.OptionSetDescription("Running backtest"),
		progressbar.OptionShowCount(),
	)

	engine := backtest.NewEngine(&progressSource{source: client, bar: bar}, appLogger)

	params := backtest.RunParams{
		Ticker:         cmd.String("ticker"),
		StartDate:      types.NewDate(cmd.Timestamp("start")),
		EndDate:        types.NewDate(cmd.Timestamp("end")),
		InitialCapital: cmd.Float("capital"),
		Strategy:       strategyConfig,
		FeeModel:       commission_fee.FeeModel(cmd.String("fee-model")),
	}

	// A config file overrides capital, fee model, and the date range clip.
	if configPath := cmd.String("config"); configPath != "" {
		engineConfig, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		params.InitialCapital = engineConfig.InitialCapital
		params.FeeModel = engineConfig.FeeModel

		if engineConfig.StartTime.IsSome() {
			params.StartDate = types.NewDate(engineConfig.StartTime.Unwrap())
		}

		if engineConfig.EndTime.IsSome() {
			params.EndDate = types.NewDate(engineConfig.EndTime.Unwrap())
		}
	}

	result, err := engine.Run(ctx, params)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	bar.Add(1)
	bar.Finish()
	fmt.Println()

	outputPath := cmd.String("output")
	if outputPath != "" {
		if err := types.WriteBacktestResult(outputPath, result); err != nil {
			return err
		}

		fmt.Printf("Result written to %s\n", outputPath)
	}

	printSummary(result)

	return nil
}

func printSummary(result *types.BacktestResult) {
	fmt.Printf("Backtest %s (%s, %s to %s)\n", result.ID, result.Ticker, result.StartDate, result.EndDate)
	fmt.Printf("  Strategy:          %s %v\n", result.Strategy, result.Parameters)
	fmt.Printf("  Initial capital:   %.2f\n", result.InitialCapital)
	fmt.Printf("  Final value:       %.2f\n", result.FinalValue)
	fmt.Printf("  Total return:      %.2f%%\n", result.Performance.TotalReturn)
	fmt.Printf("  Annualized return: %.2f%%\n", result.Performance.AnnualizedReturn)
	fmt.Printf("  Volatility:        %.2f%%\n", result.Performance.Volatility)
	fmt.Printf("  Sharpe ratio:      %.2f\n", result.Performance.SharpeRatio)
	fmt.Printf("  Max drawdown:      %.2f%%\n", result.Performance.MaxDrawdown)
	fmt.Printf("  Win rate:          %.2f%%\n", result.Performance.WinRate)
	fmt.Printf("  Trades:            %d (%d profitable round trips)\n",
		result.Performance.TotalTrades, result.Performance.ProfitableTrades)
}

// schemaAction prints the JSON schema of the engine configuration, used by
// the frontend to render the settings form.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	config := &backtest.Config{}

	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schemaJSON)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Run a trading strategy backtest from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Stock ticker symbol",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: false,
			},
			&cli.StringFlag{
				Name:     "strategy",
				Usage:    "Strategy to run (sma_crossover, rsi_threshold)",
				Value:    string(strategy.StrategyTypeSMACrossover),
				Required: false,
			},
			&cli.IntFlag{
				Name:  "short-period",
				Usage: "Short moving average window (sma_crossover)",
				Value: 20,
			},
			&cli.IntFlag{
				Name:  "long-period",
				Usage: "Long moving average window (sma_crossover)",
				Value: 50,
			},
			&cli.IntFlag{
				Name:  "period",
				Usage: "RSI window (rsi_threshold)",
				Value: 14,
			},
			&cli.FloatFlag{
				Name:  "overbought",
				Usage: "RSI overbought threshold (rsi_threshold)",
				Value: 70,
			},
			&cli.FloatFlag{
				Name:  "oversold",
				Usage: "RSI oversold threshold (rsi_threshold)",
				Value: 30,
			},
			&cli.FloatFlag{
				Name:    "capital",
				Aliases: []string{"c"},
				Usage:   "Initial capital in USD",
				Value:   10000,
			},
			&cli.StringFlag{
				Name:  "fee-model",
				Usage: "Commission model (percentage, zero)",
				Value: string(commission_fee.FeeModelPercentage),
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
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the full result as YAML to this path",
				Value:   "",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Engine configuration YAML. Overrides capital, fee model, and date range.",
				Value: "",
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Print the engine configuration JSON schema",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
