// Package practice implements the scheduling core of the API: it accepts
// answer submissions, keeps per-skill mastery up to date, and recommends
// what a learner should work on next.
package practice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/praxislab/praxis-api/internal/domain"
)

// Submission carries a learner's answer to an exercise together with the
// optional self-assessment inputs that feed the mastery policy.
type Submission struct {
	ExerciseID int64             `json:"exercise_id"`
	Answer     json.RawMessage   `json:"answer"`
	Confidence domain.Confidence `json:"confidence,omitempty"`
	HintsUsed  int               `json:"hints_used,omitempty"`
}

// SubmissionResult is the outcome of processing a submission: the verdict
// and feedback from the evaluator plus the learner's updated attempt count,
// XP delta, and mastery state for the exercise's skill.
type SubmissionResult struct {
	Correct     bool      `json:"correct"`
	Attempts    int       `json:"attempts"`
	Feedback    string    `json:"feedback"`
	XPDelta     int       `json:"xp_delta"`
	Proficiency int       `json:"proficiency"`
	DueAt       time.Time `json:"due_at"`
}

// ReviewItem is one entry in the review queue: a skill whose due date has
// passed, paired with the exercise chosen to re-practice it.
type ReviewItem struct {
	Skill       string              `json:"skill"`
	ExerciseID  int64               `json:"exercise_id"`
	Question    string              `json:"question"`
	Type        domain.ExerciseType `json:"type"`
	DueAt       time.Time           `json:"due_at"`
	Proficiency int                 `json:"proficiency"`
}

// Reason explains why NextExercise chose a particular exercise.
type Reason string

// Recommendation reasons, in the priority order NextExercise applies them.
const (
	ReasonReviewDue Reason = "review_due"
	ReasonRemediate Reason = "remediate"
	ReasonFresh     Reason = "fresh"
	ReasonFallback  Reason = "fallback"
)

// Recommendation is the result of NextExercise: which exercise to serve and
// why it was chosen.
type Recommendation struct {
	ExerciseID int64  `json:"exercise_id"`
	Reason     Reason `json:"reason"`
}

// Service provides the three practice operations: submitting an answer,
// listing due reviews, and recommending the next exercise.
type Service interface {
	// Submit processes a learner's answer to an exercise.
	//
	// Within a single transaction it applies the resubmission rate guard,
	// evaluates the answer, records the attempt, bumps the mastery record
	// for the exercise's category, and computes the XP delta.
	//
	// Returns:
	//   - (*SubmissionResult, nil) on success, correct or not; a wrong
	//     answer is a normal outcome, not an error
	//   - (nil, ErrExerciseNotFound) if the exercise does not exist
	//   - (nil, ErrRateLimited) if the previous submission for this
	//     (user, exercise) was less than domain.MinResubmitInterval ago;
	//     nothing is mutated in this case
	//   - (nil, ErrInvalidSubmission) if the confidence value is unknown
	//     or hints_used is negative
	Submit(ctx context.Context, userID uuid.UUID, sub Submission) (*SubmissionResult, error)

	// ReviewQueue returns the learner's due skills ordered by due date
	// ascending, each paired with the easiest matching exercise (lowest
	// difficulty, then lowest ID). Skills with no matching exercise are
	// skipped. An empty queue is a normal result, not an error.
	ReviewQueue(ctx context.Context, userID uuid.UUID, now time.Time) ([]ReviewItem, error)

	// NextExercise recommends what the learner should do next, in priority
	// order: the head of the review queue; the last exercise again if it
	// was just answered incorrectly; the first uncompleted exercise by
	// difficulty then ID; and finally the most recently created exercise.
	//
	// lastExerciseID and lastCorrect are optional and nil when the caller
	// has no preceding submission to report.
	//
	// Returns (nil, ErrNoExercises) when the catalog is empty.
	NextExercise(ctx context.Context, userID uuid.UUID, lastExerciseID *int64, lastCorrect *bool) (*Recommendation, error)
}

// Common error types for the practice Service
var (
	// ErrRateLimited indicates a resubmission inside the minimum interval.
	// No state was mutated.
	ErrRateLimited = errors.New("resubmitted too soon")

	// ErrExerciseNotFound indicates the submitted exercise does not exist.
	ErrExerciseNotFound = errors.New("exercise not found")

	// ErrNoExercises indicates the exercise catalog is empty.
	ErrNoExercises = errors.New("no exercises available")

	// ErrInvalidSubmission indicates a malformed submission envelope
	// (unknown confidence or negative hint count). Malformed answer
	// payloads are NOT this error; they evaluate as incorrect.
	ErrInvalidSubmission = errors.New("invalid submission")
)

// ServiceError wraps errors from the practice service with additional
// context, so consumers can differentiate failures with errors.As instead
// of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g. "submit", "review_queue")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewSubmitError returns a new ServiceError for the submit operation.
func NewSubmitError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "submit", Message: message, Err: err}
}

// NewReviewQueueError returns a new ServiceError for the review_queue operation.
func NewReviewQueueError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "review_queue", Message: message, Err: err}
}

// NewNextExerciseError returns a new ServiceError for the next_exercise operation.
func NewNextExerciseError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "next_exercise", Message: message, Err: err}
}
