package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/praxislab/praxis-api/internal/service/auth"
	"github.com/praxislab/praxis-api/internal/service/practice"
	"github.com/praxislab/praxis-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes by error
// type, so handlers never leak internal error taxonomy to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Rate guard: the learner resubmitted inside the cooldown window
	case errors.Is(err, practice.ErrRateLimited):
		return http.StatusTooManyRequests

	// Not found errors
	case errors.Is(err, practice.ErrExerciseNotFound),
		errors.Is(err, practice.ErrNoExercises),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, practice.ErrInvalidSubmission),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. Internal details stay in the logs.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, practice.ErrRateLimited):
		return "You are submitting too quickly, try again in a moment"

	case errors.Is(err, practice.ErrExerciseNotFound):
		return "Exercise not found"

	case errors.Is(err, practice.ErrNoExercises):
		return "No exercises available"

	case errors.Is(err, practice.ErrInvalidSubmission):
		return "Invalid submission"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		var svcErr *practice.ServiceError
		if errors.As(err, &svcErr) {
			switch svcErr.Operation {
			case "submit":
				return "Failed to process submission"
			case "review_queue":
				return "Failed to build review queue"
			case "next_exercise":
				return "Failed to pick next exercise"
			}
		}
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a user-friendly
// message without echoing submitted values back.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example: "Key: 'SubmitRequest.ExerciseID' Error:Field validation for
	// 'ExerciseID' failed on the 'required' tag"
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
	case "gt":
		return "must be positive"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
