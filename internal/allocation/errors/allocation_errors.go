package allocationerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidAllocationID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid allocation id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrAllocationNotFound = apperror.New(
		apperror.CodeNotFound,
		"allocation not found",
		http.StatusNotFound,
	)
	ErrAlreadyAllocated = apperror.New(
		apperror.CodeConflict,
		"a concurrent allocation run already created this allocation",
		http.StatusConflict,
	)
	ErrNegativeDays = apperror.New(
		apperror.CodeInvalidInput,
		"days must not be negative",
		http.StatusBadRequest,
	)
)
