package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/studyloop/mastery-api/internal/domain/sm2"
	"github.com/studyloop/mastery-api/internal/service"
	"github.com/studyloop/mastery-api/internal/service/auth"
	"github.com/studyloop/mastery-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, service.ErrMasteryNotFound),
		errors.Is(err, store.ErrMasteryRecordNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrMasteryRecordExists):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, sm2.ErrInvalidScore),
		errors.Is(err, sm2.ErrInvalidQuality),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, service.ErrMasteryNotFound),
		errors.Is(err, store.ErrMasteryRecordNotFound):
		return "Mastery record not found"

	case errors.Is(err, store.ErrMasteryRecordExists):
		return "Mastery record already exists"

	case errors.Is(err, sm2.ErrInvalidScore):
		return "Score must be between 0 and 100"

	case errors.Is(err, sm2.ErrInvalidQuality):
		return "Quality rating must be between 0 and 5"

	case errors.Is(err, service.ErrInvalidLimit):
		return "Limit must be at least 1"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Validator errors look like:
	// "Key: 'SubmitAssessmentRequest.Quality' Error:Field validation for 'Quality' failed on the 'max' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too small"
	case "max":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
