package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MinResubmitInterval is the shortest allowed gap between two accepted
// submissions of the same exercise by the same user. A resubmission inside
// this window is rejected before any state changes.
const MinResubmitInterval = 1500 * time.Millisecond

// Common validation errors for AttemptProgress
var (
	ErrEmptyAttemptUserID     = errors.New("attempt progress user ID cannot be empty")
	ErrInvalidAttemptExercise = errors.New("attempt progress exercise ID must be positive")
	ErrNegativeAttempts       = errors.New("attempt count cannot be negative")
)

// AttemptProgress records a user's history with a single exercise: how many
// submissions have been accepted, the last submitted answer, and whether the
// exercise has ever been answered correctly. Completed is monotonic: once
// true it is never reset by the core.
type AttemptProgress struct {
	UserID        uuid.UUID       `json:"user_id"`
	ExerciseID    int64           `json:"exercise_id"`
	Attempts      int             `json:"attempts"`
	LastAttemptAt time.Time       `json:"last_attempt_at"`
	Completed     bool            `json:"completed"`
	UserAnswer    json.RawMessage `json:"user_answer,omitempty"` // Opaque beyond evaluation
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewAttemptProgress creates an empty progress record for a user and
// exercise. Attempts start at zero; RecordSubmission is what counts them.
func NewAttemptProgress(userID uuid.UUID, exerciseID int64, now time.Time) (*AttemptProgress, error) {
	p := &AttemptProgress{
		UserID:     userID,
		ExerciseID: exerciseID,
		Attempts:   0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Throttled reports whether a submission arriving at now falls inside the
// minimum resubmit window after the previous accepted attempt.
func (p *AttemptProgress) Throttled(now time.Time) bool {
	if p.LastAttemptAt.IsZero() {
		return false
	}
	return now.Sub(p.LastAttemptAt) < MinResubmitInterval
}

// RecordSubmission applies an accepted submission: increments the attempt
// count, stores the answer, and stamps the attempt time. Completed flips to
// true on a correct answer and stays true thereafter.
//
// Callers must check Throttled first; this method does not re-check the
// rate guard.
func (p *AttemptProgress) RecordSubmission(answer json.RawMessage, correct bool, now time.Time) {
	p.Attempts++
	p.UserAnswer = answer
	p.LastAttemptAt = now
	if correct {
		p.Completed = true
	}
	p.UpdatedAt = now
}

// Validate checks if the AttemptProgress has valid data.
// Returns an error if any field fails validation.
func (p *AttemptProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyAttemptUserID
	}

	if p.ExerciseID <= 0 {
		return ErrInvalidAttemptExercise
	}

	if p.Attempts < 0 {
		return ErrNegativeAttempts
	}

	return nil
}
