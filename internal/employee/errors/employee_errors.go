package employeeerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrNoCallerIdentity = apperror.New(
		apperror.CodeUnauthorized,
		"no authenticated caller in request context",
		http.StatusUnauthorized,
	)
)
