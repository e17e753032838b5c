package api

import (
	"encoding/json"
	"time"
)

// SubmitRequest is the payload for answering an exercise.
type SubmitRequest struct {
	ExerciseID int64           `json:"exercise_id" validate:"required,gt=0"`
	Answer     json.RawMessage `json:"answer"      validate:"required"`
	Confidence string          `json:"confidence,omitempty" validate:"omitempty,oneof=low medium high"`
	HintsUsed  int             `json:"hints_used,omitempty" validate:"omitempty,min=0"`
}

// SubmitResponse reports the outcome of a submission.
type SubmitResponse struct {
	Correct     bool      `json:"correct"`
	Attempts    int       `json:"attempts"`
	Feedback    string    `json:"feedback"`
	XPDelta     int       `json:"xp_delta"`
	Proficiency int       `json:"proficiency"`
	DueAt       time.Time `json:"due_at"`
}

// ReviewItemResponse is one due skill in the review queue.
type ReviewItemResponse struct {
	Skill       string    `json:"skill"`
	ExerciseID  int64     `json:"exercise_id"`
	Question    string    `json:"question"`
	Type        string    `json:"type"`
	DueAt       time.Time `json:"due_at"`
	Proficiency int       `json:"proficiency"`
}

// ReviewQueueResponse lists the due skills with their chosen exercises.
type ReviewQueueResponse struct {
	Due   []ReviewItemResponse `json:"due"`
	Count int                  `json:"count"`
}

// NextExerciseRequest optionally reports the outcome of the learner's
// previous submission so an incorrect answer can be remediated.
type NextExerciseRequest struct {
	LastExerciseID *int64 `json:"last_exercise_id,omitempty" validate:"omitempty,gt=0"`
	LastCorrect    *bool  `json:"last_correct,omitempty"`
}

// NextExerciseResponse is the recommendation for what to practice next.
type NextExerciseResponse struct {
	ExerciseID int64  `json:"exercise_id"`
	Reason     string `json:"reason"`
}
