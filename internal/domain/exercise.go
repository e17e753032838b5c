package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// ExerciseType identifies which evaluation strategy applies to an exercise.
type ExerciseType string

// Known exercise types. Types without a specialized evaluator fall back to
// structural comparison of the submitted answer against CorrectAnswer.
const (
	ExerciseTypeMultipleChoice   ExerciseType = "multiple_choice"
	ExerciseTypeDragAndDrop      ExerciseType = "drag_and_drop"
	ExerciseTypeNumeric          ExerciseType = "numeric"
	ExerciseTypeBudgetAllocation ExerciseType = "budget_allocation"
)

// Exercise-specific validation errors
var (
	// ErrExerciseIDInvalid is returned when an exercise ID is not positive.
	ErrExerciseIDInvalid = errors.New("exercise ID must be positive")

	// ErrExerciseQuestionEmpty is returned when an exercise has no question text.
	ErrExerciseQuestionEmpty = errors.New("exercise question cannot be empty")

	// ErrExerciseCategoryEmpty is returned when an exercise has no category.
	// The category doubles as the skill key for mastery tracking, so it is required.
	ErrExerciseCategoryEmpty = errors.New("exercise category cannot be empty")

	// ErrExerciseAnswerInvalid is returned when the correct answer is not valid JSON.
	ErrExerciseAnswerInvalid = errors.New("exercise correct answer must be valid JSON")
)

// Exercise is a practice item served to learners. The core treats it as
// read-only reference data: authoring and versioning live elsewhere.
//
// Data holds a type-dependent payload (tolerances for numeric exercises,
// income and target constraints for budget allocation) stored as JSONB.
// CorrectAnswer holds the reference answer whose shape depends on Type.
// Both may be malformed for a given Type; the evaluator degrades to
// "incorrect" rather than failing.
type Exercise struct {
	ID            int64           `json:"id"`
	Type          ExerciseType    `json:"type"`
	Question      string          `json:"question"`
	Data          json.RawMessage `json:"data,omitempty"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
	Category      string          `json:"category"`
	Difficulty    int             `json:"difficulty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NumericData is the expected shape of Exercise.Data for numeric exercises.
// Every field is optional; missing fields get conservative defaults.
type NumericData struct {
	ExpectedValue json.Number `json:"expected_value,omitempty"`
	Tolerance     float64     `json:"tolerance,omitempty"`
	Unit          string      `json:"unit,omitempty"`
	PeriodHint    string      `json:"period_hint,omitempty"`
}

// BudgetTarget is a minimum-allocation constraint for one category.
type BudgetTarget struct {
	Category string      `json:"category"`
	Min      json.Number `json:"min"`
}

// BudgetData is the expected shape of Exercise.Data for budget-allocation
// exercises.
type BudgetData struct {
	Income     json.Number   `json:"income,omitempty"`
	Categories []string      `json:"categories,omitempty"`
	Target     *BudgetTarget `json:"target,omitempty"`
}

// Skill returns the mastery-tracking key for this exercise. Many exercises
// share one skill; mastery is tracked per (user, skill), not per exercise.
func (e *Exercise) Skill() string {
	return e.Category
}

// Validate checks if the Exercise has valid data.
// Returns an error if any field fails validation.
func (e *Exercise) Validate() error {
	if e.ID <= 0 {
		return ErrExerciseIDInvalid
	}

	if e.Question == "" {
		return ErrExerciseQuestionEmpty
	}

	if e.Category == "" {
		return ErrExerciseCategoryEmpty
	}

	if len(e.CorrectAnswer) > 0 {
		var js json.RawMessage
		if err := json.Unmarshal(e.CorrectAnswer, &js); err != nil {
			return ErrExerciseAnswerInvalid
		}
	}

	return nil
}
