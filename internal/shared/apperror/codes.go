package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"

	// Server errors (5xx)
	CodeInternalError   = "INTERNAL_ERROR"
	CodeNoPeriodDefined = "NO_PERIOD_DEFINED"
)
