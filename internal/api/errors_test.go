package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/worktodo-api/internal/domain"
	"github.com/phrazzld/worktodo-api/internal/service/auth"
	"github.com/phrazzld/worktodo-api/internal/service/upload"
	"github.com/phrazzld/worktodo-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid refresh token", auth.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"file not found", store.ErrFileNotFound, http.StatusNotFound},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("getting task: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{"username exists", store.ErrUsernameExists, http.StatusUnprocessableEntity},
		{"validation error", domain.NewValidationError("title", "is too short", nil), http.StatusUnprocessableEntity},
		{"task title bounds", domain.ErrInvalidTaskTitle, http.StatusUnprocessableEntity},
		{"task status variant", domain.ErrInvalidTaskStatus, http.StatusUnprocessableEntity},
		{"username bounds", domain.ErrInvalidUsername, http.StatusUnprocessableEntity},
		{"password bounds", fmt.Errorf("creating user: %w", domain.ErrPasswordTooLong), http.StatusUnprocessableEntity},
		{"empty filename", upload.ErrEmptyFilename, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"invalid ID", domain.ErrInvalidID, http.StatusBadRequest},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("internal details never surface", func(t *testing.T) {
		t.Parallel()
		internal := errors.New("pq: connection refused on 10.0.0.3:5432")
		msg := GetSafeErrorMessage(internal)
		assert.Equal(t, "An unexpected error occurred", msg)
		assert.NotContains(t, msg, "10.0.0.3")
	})

	t.Run("validation errors name the field", func(t *testing.T) {
		t.Parallel()
		err := domain.NewValidationError("title", "is too short", nil)
		assert.Equal(t, "Invalid title: is too short", GetSafeErrorMessage(err))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	})

	t.Run("expired and invalid access tokens share a message", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t,
			GetSafeErrorMessage(auth.ErrInvalidToken),
			GetSafeErrorMessage(auth.ErrExpiredToken))
	})
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	t.Run("extracts field and tag", func(t *testing.T) {
		t.Parallel()
		raw := errors.New(
			"Key: 'LoginRequest.Username' Error:Field validation for 'Username' failed on the 'required' tag")
		assert.Equal(t, "Invalid Username: required field", SanitizeValidationError(raw))
	})

	t.Run("eqfield reports mismatch", func(t *testing.T) {
		t.Parallel()
		raw := errors.New(
			"Key: 'RegisterRequest.PasswordConfirm' Error:Field validation for 'PasswordConfirm' failed on the 'eqfield' tag")
		assert.Equal(t, "Invalid PasswordConfirm: fields do not match", SanitizeValidationError(raw))
	})

	t.Run("unrecognized error falls back", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
	})
}
