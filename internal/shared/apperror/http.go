package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the wire shape handlers write through the response envelope.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP maps any error coming out of a service to its HTTP representation.
// Unknown errors are masked as internal failures.
func ToHTTP(err error) HTTPError {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return HTTPError{
			Status:  http.StatusBadRequest,
			Code:    CodeValidation,
			Message: "One or more fields are invalid",
			Details: vErr.Fields,
		}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: ErrInternal.Message,
	}
}
