package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripweave/tripweave-backend/logger"
)

func init() {
	logger.IsTest = true
}

func TestNew(t *testing.T) {
	err := New(ValidationError, "invalid input", "field required")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "field required", err.Detail)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, "VALIDATION_ERROR: invalid input (field required)", err.Error())
}

func TestWrap(t *testing.T) {
	raw := fmt.Errorf("connection reset")
	wrapped := Wrap(raw, UpstreamError, "forecast provider unavailable")

	assert.Equal(t, UpstreamError, wrapped.Type)
	assert.Equal(t, "connection reset", wrapped.Detail)
	assert.Equal(t, http.StatusBadGateway, wrapped.HTTPStatus)
	assert.True(t, stderrors.Is(wrapped, raw))

	assert.Nil(t, Wrap(nil, ServerError, "nothing"))
}

func TestTripErrors(t *testing.T) {
	notFound := TripNotFound("trip-1")
	assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)
	assert.Equal(t, "Trip ID: trip-1", notFound.Detail)

	gated := TripNotSubmitted("trip-1")
	assert.Equal(t, TripNotSubmittedError, gated.Type)
	assert.Equal(t, http.StatusConflict, gated.HTTPStatus)

	conflict := NewConflictError("Trip was modified", "expected version 3")
	assert.Equal(t, http.StatusConflict, conflict.HTTPStatus)
}

func TestPersistenceFailedKeepsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := PersistenceFailed(cause)

	assert.Equal(t, PersistenceError, err.Type)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.NotContains(t, err.Detail, "disk full")
	assert.ErrorIs(t, err, cause)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", ValidationFailed("bad", ""), http.StatusBadRequest},
		{"wrapped app error", fmt.Errorf("load: %w", TripNotFound("x")), http.StatusNotFound},
		{"rate limited", RateLimitExceeded("slow down", 60), http.StatusTooManyRequests},
		{"status from type", &AppError{Type: PayloadTooLargeError}, http.StatusRequestEntityTooLarge},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}
