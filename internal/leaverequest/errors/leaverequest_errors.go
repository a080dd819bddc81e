package leaverequesterrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrNotRequestOwner = apperror.New(
		apperror.CodeForbidden,
		"only the owning employee may cancel this request",
		http.StatusForbidden,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid leave request status transition",
		http.StatusBadRequest,
	)
)
