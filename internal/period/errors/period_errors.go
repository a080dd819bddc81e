package perioderrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	// ErrNoPeriodDefined signals a configuration gap: no period contains the
	// given date. It is fatal to the operation, never retried by the caller.
	ErrNoPeriodDefined = apperror.New(
		apperror.CodeNoPeriodDefined,
		"no fiscal period is defined for this date",
		http.StatusInternalServerError,
	)
)
