package apperror

import (
	"strings"
)

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the full list of field-level failures for one
// request so the caller can correct all of them at once. It is a client
// error, never logged as a system failure.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return strings.Join(msgs, "; ")
}

// Validation builds a ValidationError from field messages.
func Validation(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}
