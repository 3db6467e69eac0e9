// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package) and the translation of service errors
// into those responses. Codes give clients a stable, machine-readable error taxonomy
// that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes (e.g., bad_request, not_found, conflict) mirror common HTTP
//     status semantics to aid interoperability.
//   - Domain-specific codes (e.g., validation_failed, cow_archived) are reserved for
//     business rules that cannot be conveyed by status alone.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "validation_failed",
//	  "message": "gender: breeding records can only be added to female cows"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mashamba/dairy-backend/internal/services"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeValidation       = "validation_failed"
	ErrCodeCowArchived      = "cow_archived"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeUpdateFailed     = "update_failed"
	ErrCodeReportFailed     = "report_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// failService maps a service error onto the response envelope. Unknown
// errors become a 500 carrying fallbackCode and a fixed message; the error
// itself is only logged.
func failService(c *gin.Context, err error, fallbackCode string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, ErrCodeValidation, verr.Error())
	case errors.Is(err, services.ErrFarmNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "farm not found")
	case errors.Is(err, services.ErrCowNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "cow not found")
	case errors.Is(err, services.ErrDuplicateFarmName):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrCowArchived):
		fail(c, http.StatusConflict, ErrCodeCowArchived, err.Error())
	default:
		failWith(c, http.StatusInternalServerError, fallbackCode, "internal server error", err)
	}
}
