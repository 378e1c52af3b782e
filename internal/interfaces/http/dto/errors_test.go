package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"SESSION_CLOSED", ErrCodeSessionClosed},
		{"NOTHING_TO_FINALIZE", ErrCodeNothingToFinalize},
		{"CONFIRMATION_REQUIRED", ErrCodeConfirmationRequired},
		{"FINALIZE_IN_PROGRESS", ErrCodeFinalizeInProgress},
		{"PERSISTENCE_FAILURE", ErrCodePersistenceFailure},
		{"CONCURRENT_MODIFICATION", ErrCodeConcurrencyConflict},
		{"ERR_NOT_FOUND", ErrCodeNotFound},
		{"", ErrCodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeErrorCode(tt.in))
		})
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeProductNotInSession, http.StatusNotFound},
		{ErrCodeSessionClosed, http.StatusUnprocessableEntity},
		{ErrCodeNothingToFinalize, http.StatusUnprocessableEntity},
		{ErrCodeConfirmationRequired, http.StatusUnprocessableEntity},
		{ErrCodeSessionAlreadyActive, http.StatusConflict},
		{ErrCodeFinalizeInProgress, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodePersistenceFailure, http.StatusServiceUnavailable},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"ERR_INVALID_LOCATION_CODE", http.StatusBadRequest},
		{"ERR_SNAPSHOT_MISMATCH", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 2, 20)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, 2, resp.Meta.Page)

	empty := NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestErrorResponses(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Stock take not found", "req-1")
	assert.False(t, resp.Success)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Nil(t, resp.Data)

	v := NewValidationErrorResponse("Request validation failed", "req-2", []ValidationDetail{
		{Field: "location_id", Message: "This field is required"},
	})
	assert.Equal(t, ErrCodeValidation, v.Error.Code)
	assert.Len(t, v.Error.Details, 1)

	plain := NewErrorResponse(ErrCodeInternal, "boom")
	assert.Empty(t, plain.Error.RequestID)
}
