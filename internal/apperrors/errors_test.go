package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors_StatusAndSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		status   int
		sentinel error
	}{
		{"not found", NotFound("movie", 42), http.StatusNotFound, ErrNotFound},
		{"invalid", InvalidInput("bad"), http.StatusBadRequest, ErrInvalidInput},
		{"validation", Validation(map[string]string{"Title": "is required"}), http.StatusBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("login"), http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("nope"), http.StatusForbidden, ErrForbidden},
		{"conflict", Conflict("dup"), http.StatusConflict, ErrConflict},
		{"upstream", Upstream(errors.New("timeout")), http.StatusBadGateway, ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound("movie", 42)
	assert.Equal(t, "movie with id 42 not found", err.Message)
	assert.Equal(t, "NOT_FOUND: movie with id 42 not found: resource not found", err.Error())
}

func TestUpstream_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream(cause)
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("delete movie: %w", NotFound("movie", 1))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(fmt.Errorf("x: %w", ErrForbidden)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}
