package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rxtech-lab/strategy-backtest/internal/backtest"
	"github.com/rxtech-lab/strategy-backtest/internal/backtest/commission_fee"
	"github.com/rxtech-lab/strategy-backtest/internal/logger"
	"github.com/rxtech-lab/strategy-backtest/internal/strategy"
	"github.com/rxtech-lab/strategy-backtest/internal/types"
	"github.com/rxtech-lab/strategy-backtest/pkg/errors"
)

// tickerLookbackDays is how far back the ticker validation probe reaches.
// Wide enough to always contain a trading day.
const tickerLookbackDays = 7

// BacktestRequest is the wire format of POST /api/backtest. Parameters is a
// loose map resolved into a typed strategy configuration after validation.
type BacktestRequest struct {
	Ticker         string         `json:"ticker" validate:"required,min=1,max=10"`
	StartDate      string         `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        string         `json:"end_date" validate:"required,datetime=2006-01-02"`
	Strategy       string         `json:"strategy" validate:"required,oneof=sma_crossover rsi_threshold"`
	Parameters     map[string]any `json:"parameters" validate:"required"`
	InitialCapital float64        `json:"initial_capital" validate:"required,gte=1000"`
}

// TickerInfo is the response of GET /api/validate-ticker/{ticker}.
type TickerInfo struct {
	Ticker      string  `json:"ticker"`
	Valid       bool    `json:"valid"`
	CompanyName string  `json:"company_name"`
	LastPrice   float64 `json:"last_price"`
	LastDate    string  `json:"last_date"`
}

// errorResponse mirrors the {"detail": ...} error body the frontend expects.
type errorResponse struct {
	Detail string `json:"detail"`
}

// Handlers wires the HTTP surface to the backtest engine and data source.
type Handlers struct {
	engine   *backtest.Engine
	source   backtest.DataSource
	validate *validator.Validate
	log      *logger.Logger
}

// NewHandlers creates the handler set for the API server.
func NewHandlers(engine *backtest.Engine, source backtest.DataSource, log *logger.Logger) *Handlers {
	return &Handlers{
		engine:   engine,
		source:   source,
		validate: validator.New(),
		log:      log,
	}
}

// Root handles GET /.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Trading Strategy Backtester API",
		"status":  "running",
	})
}

// Health handles GET /api/health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// RunBacktest handles POST /api/backtest.
func (h *Handlers) RunBacktest(w http.ResponseWriter, r *http.Request) {
	var request BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())

		return
	}

	params, err := h.resolveParams(request)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	result, err := h.engine.Run(r.Context(), params)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.IsValidation(err) || errors.IsDataUnavailable(err) || errors.HasCode(err, errors.ErrCodeUnsupportedStrategy) {
			status = http.StatusBadRequest
		}

		h.log.Error("backtest failed",
			zap.String("ticker", request.Ticker),
			zap.String("strategy", request.Strategy),
			zap.Int("status", status),
			zap.Error(err),
		)
		writeError(w, status, err.Error())

		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ValidateTicker handles GET /api/validate-ticker/{ticker}. Any failure to
// fetch recent data maps to 404: an unknown symbol and an unreachable
// provider are indistinguishable to the caller.
func (h *Handlers) ValidateTicker(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	now := time.Now().UTC()
	end := types.NewDate(now)
	start := types.NewDate(now.AddDate(0, 0, -tickerLookbackDays))

	bars, err := h.source.GetDailyBars(r.Context(), ticker, start, end)
	if err != nil {
		writeError(w, http.StatusNotFound, "invalid ticker or data unavailable: "+err.Error())

		return
	}

	last := lastCompleteBar(bars)
	if last == nil {
		writeError(w, http.StatusNotFound, "no data found for ticker: "+ticker)

		return
	}

	writeJSON(w, http.StatusOK, TickerInfo{
		Ticker:      ticker,
		Valid:       true,
		CompanyName: ticker,
		LastPrice:   last.Close,
		LastDate:    types.NewDate(last.Time).String(),
	})
}

// resolveParams turns the loose wire request into validated engine
// parameters. All date and parameter ordering rules are enforced here so the
// engine only ever sees well-formed input.
func (h *Handlers) resolveParams(request BacktestRequest) (backtest.RunParams, error) {
	if err := h.validate.Struct(request); err != nil {
		return backtest.RunParams{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request", err)
	}

	startDate, err := types.ParseDate(request.StartDate)
	if err != nil {
		return backtest.RunParams{}, errors.Wrap(errors.ErrCodeInvalidDateRange, "invalid start date", err)
	}

	endDate, err := types.ParseDate(request.EndDate)
	if err != nil {
		return backtest.RunParams{}, errors.Wrap(errors.ErrCodeInvalidDateRange, "invalid end date", err)
	}

	if !startDate.Before(endDate.Time) {
		return backtest.RunParams{}, errors.New(errors.ErrCodeInvalidDateRange, "start date must be before end date")
	}

	if endDate.After(time.Now()) {
		return backtest.RunParams{}, errors.New(errors.ErrCodeInvalidDateRange, "end date cannot be in the future")
	}

	strategyConfig, err := resolveStrategy(request.Strategy, request.Parameters)
	if err != nil {
		return backtest.RunParams{}, err
	}

	return backtest.RunParams{
		Ticker:         strings.ToUpper(request.Ticker),
		StartDate:      startDate,
		EndDate:        endDate,
		InitialCapital: request.InitialCapital,
		Strategy:       strategyConfig,
		FeeModel:       commission_fee.FeeModelPercentage,
	}, nil
}

// resolveStrategy maps the wire parameter names onto the typed strategy
// configuration and re-runs its validation.
func resolveStrategy(name string, parameters map[string]any) (strategy.Config, error) {
	var config strategy.Config

	switch strategy.StrategyType(name) {
	case strategy.StrategyTypeSMACrossover:
		shortPeriod, ok := intParameter(parameters, "shortPeriod")
		if !ok {
			return config, errors.New(errors.ErrCodeMissingParameter, "sma_crossover strategy requires shortPeriod and longPeriod parameters")
		}

		longPeriod, ok := intParameter(parameters, "longPeriod")
		if !ok {
			return config, errors.New(errors.ErrCodeMissingParameter, "sma_crossover strategy requires shortPeriod and longPeriod parameters")
		}

		config = strategy.Config{
			Type: strategy.StrategyTypeSMACrossover,
			SMACrossover: &strategy.SMACrossoverParams{
				ShortPeriod: shortPeriod,
				LongPeriod:  longPeriod,
			},
		}
	case strategy.StrategyTypeRSIThreshold:
		period, okPeriod := intParameter(parameters, "period")
		overbought, okOverbought := floatParameter(parameters, "overbought")
		oversold, okOversold := floatParameter(parameters, "oversold")

		if !okPeriod || !okOverbought || !okOversold {
			return config, errors.New(errors.ErrCodeMissingParameter, "rsi_threshold strategy requires period, overbought, and oversold parameters")
		}

		config = strategy.Config{
			Type: strategy.StrategyTypeRSIThreshold,
			RSIThreshold: &strategy.RSIThresholdParams{
				Period:     period,
				Overbought: overbought,
				Oversold:   oversold,
			},
		}
	default:
		return config, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy: %s", name)
	}

	if err := config.Validate(); err != nil {
		return strategy.Config{}, err
	}

	return config, nil
}

// intParameter reads a numeric parameter, tolerating the float64 every JSON
// number decodes to.
func intParameter(parameters map[string]any, key string) (int, bool) {
	value, ok := parameters[key]
	if !ok {
		return 0, false
	}

	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func floatParameter(parameters map[string]any, key string) (float64, bool) {
	value, ok := parameters[key]
	if !ok {
		return 0, false
	}

	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func lastCompleteBar(bars []types.MarketData) *types.MarketData {
	for i := len(bars) - 1; i >= 0; i-- {
		if bars[i].IsComplete() {
			return &bars[i]
		}
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
