package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Stock take error codes
const (
	ErrCodeSessionClosed        = "ERR_SESSION_CLOSED"
	ErrCodeNothingToFinalize    = "ERR_NOTHING_TO_FINALIZE"
	ErrCodeConfirmationRequired = "ERR_CONFIRMATION_REQUIRED"
	ErrCodeProductNotInSession  = "ERR_PRODUCT_NOT_IN_SESSION"
	ErrCodeSessionAlreadyActive = "ERR_SESSION_ALREADY_ACTIVE"
	ErrCodeFinalizeInProgress   = "ERR_FINALIZE_IN_PROGRESS"
	ErrCodeInvalidState         = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock    = "ERR_INSUFFICIENT_STOCK"
	ErrCodePersistenceFailure   = "ERR_PERSISTENCE_FAILURE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeProductNotInSession: http.StatusNotFound,

	ErrCodeAlreadyExists:        http.StatusConflict,
	ErrCodeConcurrencyConflict:  http.StatusConflict,
	ErrCodeSessionAlreadyActive: http.StatusConflict,
	ErrCodeFinalizeInProgress:   http.StatusConflict,

	ErrCodeSessionClosed:        http.StatusUnprocessableEntity,
	ErrCodeNothingToFinalize:    http.StatusUnprocessableEntity,
	ErrCodeConfirmationRequired: http.StatusUnprocessableEntity,
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:    http.StatusUnprocessableEntity,

	ErrCodePersistenceFailure: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unlisted ERR_INVALID_* codes are 400 and any other unlisted code is 422.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "ERR_INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

// domainCodeMapping lists domain codes whose API code is not simply ERR_<code>
var domainCodeMapping = map[string]string{
	"CONCURRENT_MODIFICATION": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":        ErrCodeValidation,
	"INTERNAL_ERROR":          ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to its ERR_ prefixed API form
func NormalizeErrorCode(code string) string {
	if mapped, ok := domainCodeMapping[code]; ok {
		return mapped
	}
	if code == "" {
		return ErrCodeUnknown
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
