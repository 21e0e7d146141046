package booking

import (
	"net/http"

	"go-travel-desk/internal/shared/apperror"
)

var (
	ErrNegativeAmount = apperror.New(
		apperror.CodeInvalidInput,
		"cost and agent fee must not be negative",
		http.StatusBadRequest,
	)
	ErrInvalidHotelStatus = apperror.New(
		apperror.CodeInvalidInput,
		"hotel booking status must be Confirmed or Book Later",
		http.StatusBadRequest,
	)
)
