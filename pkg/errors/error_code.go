package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInsufficientData     ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeMissingParameter     ErrorCode = 104
	ErrCodeInvalidStrategy      ErrorCode = 105

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound     ErrorCode = 200
	ErrCodeDataNotOrdered   ErrorCode = 201
	ErrCodeDuplicateBarDate ErrorCode = 202
	ErrCodeDataParseFailed  ErrorCode = 203

	// Signal errors (300-399)
	ErrCodeSignalGeneration ErrorCode = 300

	// Simulation errors (400-499)
	ErrCodeSimulationFailed ErrorCode = 400
	ErrCodeEmptyPriceSlice  ErrorCode = 401
	ErrCodePositionNotOpen  ErrorCode = 402

	// Optimization errors (500-599)
	ErrCodeOptimizationFailed ErrorCode = 500
	ErrCodeNoValidCombination ErrorCode = 501
	ErrCodeEmptyParameterGrid ErrorCode = 502

	// Walk-forward errors (600-699)
	ErrCodeWindowTooLarge   ErrorCode = 600
	ErrCodeAllWindowsFailed ErrorCode = 601
	ErrCodeWindowFailed     ErrorCode = 602

	// Analysis errors (700-799)
	ErrCodeEmptyReturnSeries ErrorCode = 700
	ErrCodeAnalysisFailed    ErrorCode = 701
)
