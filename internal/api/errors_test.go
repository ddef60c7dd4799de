package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studyloop/mastery-api/internal/domain/sm2"
	"github.com/studyloop/mastery-api/internal/service"
	"github.com/studyloop/mastery-api/internal/service/auth"
	"github.com/studyloop/mastery-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"mastery not found", service.ErrMasteryNotFound, http.StatusNotFound},
		{"store not found", store.ErrMasteryRecordNotFound, http.StatusNotFound},
		{"duplicate record", store.ErrMasteryRecordExists, http.StatusConflict},
		{"invalid score", sm2.ErrInvalidScore, http.StatusBadRequest},
		{"invalid quality", sm2.ErrInvalidQuality, http.StatusBadRequest},
		{"invalid limit", service.ErrInvalidLimit, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{
			"wrapped not found",
			fmt.Errorf("failed to get: %w", store.ErrMasteryRecordNotFound),
			http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "Score must be between 0 and 100", GetSafeErrorMessage(sm2.ErrInvalidScore))
	assert.Equal(t, "Mastery record not found", GetSafeErrorMessage(service.ErrMasteryNotFound))

	// Internal details never leak into the safe message.
	internal := errors.New("pq: duplicate key value violates unique constraint")
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(internal))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	validationErr := errors.New(
		"Key: 'SubmitAssessmentRequest.Quality' Error:Field validation for 'Quality' failed on the 'max' tag",
	)
	assert.Equal(t, "Invalid Quality: too large", SanitizeValidationError(validationErr))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
}
