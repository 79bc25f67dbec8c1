// Package strategy generates buy/sell/hold signal series from daily price
// history. Strategies form a small closed set modeled as a tagged variant:
// exactly one of the parameter structs is set, selected by Type, and all
// variants dispatch through a single GenerateSignals operation.
package strategy

import (
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/strategy-backtest/internal/types"
	"github.com/rxtech-lab/strategy-backtest/pkg/errors"
)

type StrategyType string

const (
	StrategyTypeSMACrossover StrategyType = "sma_crossover"
	StrategyTypeRSIThreshold StrategyType = "rsi_threshold"
)

var AllStrategyTypes = []any{
	StrategyTypeSMACrossover,
	StrategyTypeRSIThreshold,
}

// SMACrossoverParams configures the simple-moving-average crossover strategy.
type SMACrossoverParams struct {
	ShortPeriod int `yaml:"short_period" json:"shortPeriod" validate:"required,gt=0"`
	LongPeriod  int `yaml:"long_period" json:"longPeriod" validate:"required,gtfield=ShortPeriod"`
}

// RSIThresholdParams configures the RSI threshold strategy.
type RSIThresholdParams struct {
	Period     int     `yaml:"period" json:"period" validate:"required,gt=0"`
	Overbought float64 `yaml:"overbought" json:"overbought" validate:"required,gtfield=Oversold"`
	Oversold   float64 `yaml:"oversold" json:"oversold" validate:"required,gt=0"`
}

// Config is the tagged strategy variant. Exactly one parameter struct must be
// set, matching Type.
type Config struct {
	Type         StrategyType        `yaml:"type" json:"type"`
	SMACrossover *SMACrossoverParams `yaml:"sma_crossover,omitempty" json:"sma_crossover,omitempty"`
	RSIThreshold *RSIThresholdParams `yaml:"rsi_threshold,omitempty" json:"rsi_threshold,omitempty"`
}

// Validate re-checks the parameter constraints defensively. Upstream request
// validation is expected to have already enforced them, but a violated
// ordering constraint would silently corrupt a whole backtest, so the
// generator rejects it again here.
func (c Config) Validate() error {
	validate := validator.New()

	switch c.Type {
	case StrategyTypeSMACrossover:
		if c.SMACrossover == nil {
			return errors.New(errors.ErrCodeMissingParameter, "sma_crossover parameters are required")
		}

		if err := validate.Struct(c.SMACrossover); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidStrategyConfig, "invalid sma_crossover parameters", err)
		}

		if c.SMACrossover.ShortPeriod >= c.SMACrossover.LongPeriod {
			return errors.Newf(errors.ErrCodeInvalidStrategyConfig,
				"short period (%d) must be less than long period (%d)",
				c.SMACrossover.ShortPeriod, c.SMACrossover.LongPeriod)
		}
	case StrategyTypeRSIThreshold:
		if c.RSIThreshold == nil {
			return errors.New(errors.ErrCodeMissingParameter, "rsi_threshold parameters are required")
		}

		if err := validate.Struct(c.RSIThreshold); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidStrategyConfig, "invalid rsi_threshold parameters", err)
		}

		if c.RSIThreshold.Oversold >= c.RSIThreshold.Overbought {
			return errors.Newf(errors.ErrCodeInvalidStrategyConfig,
				"oversold threshold (%.2f) must be less than overbought threshold (%.2f)",
				c.RSIThreshold.Oversold, c.RSIThreshold.Overbought)
		}
	default:
		return errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy: %s", c.Type)
	}

	return nil
}

// GenerateSignals maps the price series to a signal series of identical
// length and ordering. It is a pure function: no state survives the call.
func (c Config) GenerateSignals(bars []types.MarketData) ([]types.Signal, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.Type {
	case StrategyTypeSMACrossover:
		return generateSMACrossoverSignals(bars, *c.SMACrossover), nil
	case StrategyTypeRSIThreshold:
		return generateRSIThresholdSignals(bars, *c.RSIThreshold), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy: %s", c.Type)
	}
}

// Parameters returns the resolved parameters in the wire format used by the
// HTTP API, for echoing into the backtest result.
func (c Config) Parameters() map[string]any {
	switch c.Type {
	case StrategyTypeSMACrossover:
		if c.SMACrossover == nil {
			return map[string]any{}
		}

		return map[string]any{
			"shortPeriod": c.SMACrossover.ShortPeriod,
			"longPeriod":  c.SMACrossover.LongPeriod,
		}
	case StrategyTypeRSIThreshold:
		if c.RSIThreshold == nil {
			return map[string]any{}
		}

		return map[string]any{
			"period":     c.RSIThreshold.Period,
			"overbought": c.RSIThreshold.Overbought,
			"oversold":   c.RSIThreshold.Oversold,
		}
	default:
		return map[string]any{}
	}
}

// allHold returns a same-length series of hold signals. Emitted whenever the
// price history is too short for the strategy's window.
func allHold(bars []types.MarketData, name string) []types.Signal {
	signals := make([]types.Signal, len(bars))
	for i, bar := range bars {
		signals[i] = types.Signal{
			Time:   bar.Time,
			Type:   types.SignalTypeHold,
			Name:   name,
			Reason: "",
		}
	}

	return signals
}
