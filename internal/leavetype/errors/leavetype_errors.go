package leavetypeerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrLeaveTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave type not found",
		http.StatusNotFound,
	)
	ErrDuplicateName = apperror.New(
		apperror.CodeConflict,
		"a leave type with this name already exists",
		http.StatusConflict,
	)
	ErrNegativeDefaultDays = apperror.New(
		apperror.CodeInvalidInput,
		"default_days must not be negative",
		http.StatusBadRequest,
	)
)
