package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFromStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind ErrorKind
		sentinel error
	}{
		{"unauthorized", http.StatusUnauthorized, KindUnauthenticated, ErrUnauthenticated},
		{"forbidden", http.StatusForbidden, KindUnauthenticated, ErrUnauthenticated},
		{"not found", http.StatusNotFound, KindNotFound, ErrNotFound},
		{"bad request", http.StatusBadRequest, KindValidation, ErrValidation},
		{"unprocessable", http.StatusUnprocessableEntity, KindValidation, ErrValidation},
		{"rate limited", http.StatusTooManyRequests, KindNetwork, ErrNetworkFailure},
		{"server error", http.StatusBadGateway, KindNetwork, ErrNetworkFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ErrorFromStatus(tt.status, "")
			assert.Equal(t, tt.wantKind, err.Kind)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, http.StatusText(tt.status), err.Message)
		})
	}
}

func TestRemoteError_UnwrapsCauseAndKind(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("listing cart: %w", NewNetworkError("GET /cart", cause))

	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Equal(t, "network: GET /cart request failed (connection refused)", errors.Unwrap(err).Error())
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, KindNetwork, KindOf(errors.New("boom")))
	assert.Equal(t, KindValidation, KindOf(NewValidationError("quantity", "must be at least 1")))
	assert.Equal(t, KindUnauthenticated, KindOf(NewUnauthenticatedError("no token")))
}

func TestUserMessage(t *testing.T) {
	err := fmt.Errorf("adding line: %w", ErrorFromStatus(http.StatusBadRequest, "unknown product 99"))
	assert.Equal(t, "unknown product 99", UserMessage(err))
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
}
