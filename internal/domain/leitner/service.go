package leitner

import (
	"errors"
	"time"

	"github.com/praxislab/praxis-api/internal/domain"
)

// Common errors
var (
	ErrNilMastery        = errors.New("mastery cannot be nil")
	ErrInvalidConfidence = errors.New("invalid confidence value")
	ErrInvalidAttempts   = errors.New("attempts must be at least 1")
	ErrNegativeHints     = errors.New("hints used cannot be negative")
)

// Review carries the per-submission inputs to the bump policy.
type Review struct {
	Correct    bool
	Confidence domain.Confidence
	HintsUsed  int
	Attempts   int // Attempt count including this submission, >= 1
}

// Service defines the interface for bump policy operations.
type Service interface {
	// Bump computes the successor mastery state for a review. The returned
	// record is a new instance; the input is not modified. The transition is
	// deterministic given (mastery, review, now).
	Bump(m *domain.Mastery, review Review, now time.Time) (*domain.Mastery, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new bump service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a new bump service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// Bump implements the Service interface.
func (s *defaultService) Bump(m *domain.Mastery, review Review, now time.Time) (*domain.Mastery, error) {
	if m == nil {
		return nil, ErrNilMastery
	}

	if !review.Confidence.Valid() {
		return nil, ErrInvalidConfidence
	}

	if review.Attempts < 1 {
		return nil, ErrInvalidAttempts
	}

	if review.HintsUsed < 0 {
		return nil, ErrNegativeHints
	}

	return nextMastery(m, review, now, s.params), nil
}
