package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter      ErrorCode = 100
	ErrCodeInvalidConfiguration  ErrorCode = 101
	ErrCodeMissingParameter      ErrorCode = 102
	ErrCodeInvalidDateRange      ErrorCode = 103
	ErrCodeInvalidStrategyConfig ErrorCode = 104
	ErrCodeInvalidTicker         ErrorCode = 105

	// Data/Resource errors (200-299)
	ErrCodeDataUnavailable ErrorCode = 200
	ErrCodeQueryFailed     ErrorCode = 201
	ErrCodeNoDataFound     ErrorCode = 202

	// Strategy errors (300-399)
	ErrCodeUnsupportedStrategy ErrorCode = 300
	ErrCodeSignalGeneration    ErrorCode = 301

	// Backtest errors (400-499)
	ErrCodeSimulationFailed     ErrorCode = 400
	ErrCodeSignalLengthMismatch ErrorCode = 401

	// Market data errors (500-599)
	ErrCodeMarketDataFetchFailed ErrorCode = 500
	ErrCodeMarketDataWriteFailed ErrorCode = 501
	ErrCodeInvalidProvider       ErrorCode = 502
)
