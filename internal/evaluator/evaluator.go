// Package evaluator compares submitted answers against an exercise's
// reference answer. Evaluation is pure and total: for any (exercise, answer)
// pair, including nil answers and malformed exercise payloads, it returns a
// correctness verdict with feedback and never panics or errors. A learner's
// malformed input is a pedagogical event, not a system fault.
package evaluator

import (
	"github.com/praxislab/praxis-api/internal/domain"
)

// Result is the outcome of evaluating a single submission.
type Result struct {
	Correct  bool
	Feedback string
}

// strategy evaluates answers for one exercise type.
type strategy interface {
	Evaluate(ex *domain.Exercise, answer []byte) Result
}

// Evaluator routes submissions to the strategy for their exercise type.
// Types without a specialized strategy fall back to structural comparison.
type Evaluator struct {
	strategies map[domain.ExerciseType]strategy
	fallback   strategy
}

// New creates an Evaluator with the built-in strategies installed.
func New() *Evaluator {
	return &Evaluator{
		strategies: map[domain.ExerciseType]strategy{
			domain.ExerciseTypeNumeric:          numericStrategy{},
			domain.ExerciseTypeBudgetAllocation: budgetStrategy{},
		},
		fallback: structuralStrategy{},
	}
}

// Evaluate compares answer against ex's reference answer.
func (e *Evaluator) Evaluate(ex *domain.Exercise, answer []byte) Result {
	if ex == nil {
		return Result{Correct: false, Feedback: feedbackNoExercise}
	}

	s, ok := e.strategies[ex.Type]
	if !ok {
		s = e.fallback
	}
	return s.Evaluate(ex, answer)
}

// User-facing feedback strings. These are shown to learners verbatim, so
// they stay actionable and never leak internals.
const (
	feedbackNoExercise = "This exercise could not be evaluated."
	feedbackCorrect    = "Correct!"
	feedbackIncorrect  = "That's not the expected answer. Review the material and try again."
)
