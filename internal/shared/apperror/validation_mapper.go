package apperror

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	caser := cases.Title(language.English)
	return caser.String(s)
}

// MapValidationError converts a gin binding error into field-level messages.
func MapValidationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]FieldError, 0, len(errs))
		for _, e := range errs {
			// e.Field() is the json tag name, see Init.
			name := formatFieldName(e.Field())
			switch e.Tag() {
			case "required":
				fields = append(fields, FieldError{Field: e.Field(), Message: name + " is required"})
			default:
				fields = append(fields, FieldError{Field: e.Field(), Message: name + " is invalid"})
			}
		}
		return Validation(fields...)
	}

	// Malformed body rather than a tagged field failure.
	return ErrInvalidInput
}
