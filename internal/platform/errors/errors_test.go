package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name       string
		err        *Error
		wantType   ErrorType
		wantStatus int
		wantCause  error
	}{
		{"validation", ValidationError("bad id"), TypeValidation, http.StatusBadRequest, nil},
		{"not found", NotFoundError("element not found"), TypeNotFound, http.StatusNotFound, nil},
		{"conflict", ConflictError("service stopped", cause), TypeConflict, http.StatusConflict, cause},
		{"rate limited", RateLimitedError("too many connection attempts"), TypeRateLimited, http.StatusTooManyRequests, nil},
		{"internal", InternalError("render failed", cause), TypeInternal, http.StatusInternalServerError, cause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus())
			assert.Equal(t, tt.wantCause, tt.err.Cause)
			assert.NotNil(t, tt.err.Context)
			assert.Contains(t, tt.err.Error(), string(tt.wantType))
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := fmt.Errorf("handler: %w", InternalError("wrapped", sentinel))

	assert.ErrorIs(t, err, sentinel)

	var structured *Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, "wrapped", structured.Message)
}

func TestWithField(t *testing.T) {
	err := NotFoundError("element not found").WithField("element_id", "3").WithField("marker", "disturb")

	resp := err.ToResponse()
	assert.Equal(t, "element not found", resp.Error)
	assert.Equal(t, TypeNotFound, resp.Type)
	assert.Equal(t, map[string]any{"element_id": "3", "marker": "disturb"}, resp.Context)

	var zero Error
	zero.WithField("k", "v")
	assert.Equal(t, "v", zero.Context["k"])
}

func TestAsStructuredError(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))

	original := ValidationError("bad")
	assert.Same(t, original, AsStructuredError(original))

	plain := errors.New("plain")
	wrapped := AsStructuredError(plain)
	assert.Equal(t, TypeInternal, wrapped.Type)
	assert.ErrorIs(t, wrapped, plain)
}
