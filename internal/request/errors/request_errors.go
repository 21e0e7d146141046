package requesterrors

import (
	"net/http"

	"go-travel-desk/internal/shared/apperror"
)

var (
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid travel request id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrDestinationRequired = apperror.New(
		apperror.CodeInvalidInput,
		"destination must not be blank",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"travel request not found",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid travel request status transition",
		http.StatusBadRequest,
	)
	ErrRequestClosed = apperror.New(
		apperror.CodeInvalidState,
		"travel request is already Booked or Rejected",
		http.StatusBadRequest,
	)
	ErrActorNotAllowed = apperror.New(
		apperror.CodeForbidden,
		"this role is not allowed to perform the transition",
		http.StatusForbidden,
	)
	ErrNotRequestOwner = apperror.New(
		apperror.CodeForbidden,
		"only the requesting employee may act on this request",
		http.StatusForbidden,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection_reason is required when status is Rejected",
		http.StatusBadRequest,
	)
	ErrAgentOptionsRequired = apperror.New(
		apperror.CodeInvalidInput,
		"notes with travel options are required when sending options",
		http.StatusBadRequest,
	)
	ErrEmployeeReplyRequired = apperror.New(
		apperror.CodeInvalidInput,
		"notes with the employee reply are required when responding to options",
		http.StatusBadRequest,
	)
	ErrBookingDetailsRequired = apperror.New(
		apperror.CodeInvalidInput,
		"booking_details are required when status is Booked",
		http.StatusBadRequest,
	)
	ErrAmountMismatch = apperror.New(
		apperror.CodeInvalidInput,
		"amount does not match the aggregated booking total",
		http.StatusBadRequest,
	)
	ErrVersionConflict = apperror.New(
		apperror.CodeConflict,
		"travel request was modified concurrently, reload and retry",
		http.StatusConflict,
	)
	ErrMultiCityOriginRequired = apperror.New(
		apperror.CodeInvalidInput,
		"multi-city trips need at least one leg with origin and destination",
		http.StatusBadRequest,
	)
)
