package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidExerciseType is returned when an exercise type is not recognized.
	ErrInvalidExerciseType = errors.New("invalid exercise type")

	// ErrInvalidConfidence is returned when a confidence value is not valid.
	ErrInvalidConfidence = errors.New("invalid confidence value")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)
