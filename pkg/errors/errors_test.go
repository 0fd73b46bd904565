package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrUnauthorized,
		ErrForbidden, ErrInternal, ErrConflict, ErrServiceUnavail,
		ErrWrongRole,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "db connection lost")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "product not found"}
	assert.Equal(t, "NOT_FOUND: product not found", appErr.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "nope", Err: ErrNotFound}
	assert.True(t, errors.Is(appErr, ErrNotFound))
}

// --- Constructor functions ---

func TestNotFound(t *testing.T) {
	err := NotFound("product", "42")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "product")
	assert.Contains(t, err.Message, "42")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAlreadyExists(t *testing.T) {
	err := AlreadyExists("variant", "sku", "WM-BLK")
	require.NotNil(t, err)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Contains(t, err.Message, `"WM-BLK"`)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestWrongRole(t *testing.T) {
	err := WrongRole("staff", "customer")
	require.NotNil(t, err)
	assert.Equal(t, "WRONG_ROLE", err.Code)
	assert.Equal(t, http.StatusForbidden, err.Status)
	assert.Contains(t, err.Message, "staff")
	assert.Contains(t, err.Message, "customer")
	assert.True(t, errors.Is(err, ErrWrongRole))
}

// --- HTTPStatus mapping ---

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error carries its own status", Unauthorized("nope"), http.StatusUnauthorized},
		{"wrapped app error", fmt.Errorf("outer: %w", NotFound("product", "1")), http.StatusNotFound},
		{"bare not found sentinel", ErrNotFound, http.StatusNotFound},
		{"wrapped invalid input", fmt.Errorf("create: %w", ErrInvalidInput), http.StatusBadRequest},
		{"wrong role sentinel", ErrWrongRole, http.StatusForbidden},
		{"conflict sentinel", ErrConflict, http.StatusConflict},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
