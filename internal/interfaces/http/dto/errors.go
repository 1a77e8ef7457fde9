package dto

import (
	"net/http"

	"github.com/pms/backend/internal/domain/shared"
)

// API-level error codes used outside the domain error taxonomy
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Conflicts (availability, duplicate period, concurrent modification)
// map to 409; illegal lifecycle transitions to 422.
var errorCodeHTTPStatus = map[string]int{
	shared.CodeValidation:    http.StatusBadRequest,
	shared.CodeInvalidState:  http.StatusUnprocessableEntity,
	shared.CodeConflict:      http.StatusConflict,
	shared.CodeNotFound:      http.StatusNotFound,
	shared.CodeConfiguration: http.StatusUnprocessableEntity,

	"ALREADY_EXISTS":          http.StatusConflict,
	"CONCURRENT_MODIFICATION": http.StatusConflict,
	"CONCURRENCY_CONFLICT":    http.StatusConflict,

	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code, defaulting
// to 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
