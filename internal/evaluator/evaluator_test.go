package evaluator_test

import (
	"encoding/json"
	"testing"

	"github.com/praxislab/praxis-api/internal/domain"
	"github.com/praxislab/praxis-api/internal/evaluator"
	"github.com/stretchr/testify/assert"
)

func numericExercise(correctAnswer, data string) *domain.Exercise {
	ex := &domain.Exercise{
		ID:       1,
		Type:     domain.ExerciseTypeNumeric,
		Question: "What is the monthly loan payment?",
		Category: "loans",
	}
	if correctAnswer != "" {
		ex.CorrectAnswer = json.RawMessage(correctAnswer)
	}
	if data != "" {
		ex.Data = json.RawMessage(data)
	}
	return ex
}

func TestNumericEvaluation(t *testing.T) {
	t.Parallel()

	e := evaluator.New()

	tests := []struct {
		name         string
		exercise     *domain.Exercise
		answer       string
		wantCorrect  bool
		wantFeedback string
	}{
		{
			name:        "within tolerance band",
			exercise:    numericExercise(`1628.89`, `{"tolerance": 0.05}`),
			answer:      `1629`,
			wantCorrect: true,
		},
		{
			name:        "exact match",
			exercise:    numericExercise(`1628.89`, `{"tolerance": 0.05}`),
			answer:      `1628.89`,
			wantCorrect: true,
		},
		{
			name:        "numeric string accepted",
			exercise:    numericExercise(`1628.89`, `{"tolerance": 0.05}`),
			answer:      `"1,628.89"`,
			wantCorrect: true,
		},
		{
			name:        "percent string scales to decimal",
			exercise:    numericExercise(`0.30`, `{"tolerance": 0}`),
			answer:      `"30%"`,
			wantCorrect: true,
		},
		{
			name:        "zero tolerance rejects near miss",
			exercise:    numericExercise(`1628.89`, `{"tolerance": 0}`),
			answer:      `1629`,
			wantCorrect: false,
		},
		{
			name:        "zero tolerance zero expected requires exact zero",
			exercise:    numericExercise(`0`, `{"tolerance": 0}`),
			answer:      `0.0001`,
			wantCorrect: false,
		},
		{
			name:        "zero expected exact match passes",
			exercise:    numericExercise(`0`, `{"tolerance": 0}`),
			answer:      `0`,
			wantCorrect: true,
		},
		{
			name:        "expected value from exercise data",
			exercise:    numericExercise("", `{"expected_value": 42, "tolerance": 0.01}`),
			answer:      `42`,
			wantCorrect: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := e.Evaluate(tt.exercise, json.RawMessage(tt.answer))
			assert.Equal(t, tt.wantCorrect, res.Correct)
			assert.NotEmpty(t, res.Feedback)
		})
	}
}

func TestNumericDiagnostics(t *testing.T) {
	t.Parallel()

	e := evaluator.New()

	t.Run("monthly value for annual question", func(t *testing.T) {
		t.Parallel()

		ex := numericExercise(`1628.89`, `{"tolerance": 0.05, "period_hint": "annual"}`)
		res := e.Evaluate(ex, json.RawMessage(`135.74`)) // = expected / 12
		assert.False(t, res.Correct)
		assert.Contains(t, res.Feedback, "monthly/annual")
	})

	t.Run("annual value for annual question hints the same way", func(t *testing.T) {
		t.Parallel()

		ex := numericExercise(`135.74`, `{"tolerance": 0.05, "period_hint": "annual"}`)
		res := e.Evaluate(ex, json.RawMessage(`1628.88`)) // = expected * 12
		assert.False(t, res.Correct)
		assert.Contains(t, res.Feedback, "monthly/annual")
	})

	t.Run("near miss flags early rounding", func(t *testing.T) {
		t.Parallel()

		ex := numericExercise(`1000`, `{"tolerance": 0.001}`)
		res := e.Evaluate(ex, json.RawMessage(`1015`)) // ratio 1.015
		assert.False(t, res.Correct)
		assert.Contains(t, res.Feedback, "rounding")
	})

	t.Run("factor of 100 flags unconverted percent", func(t *testing.T) {
		t.Parallel()

		ex := numericExercise(`0.3`, `{"tolerance": 0.001}`)
		res := e.Evaluate(ex, json.RawMessage(`30`))
		assert.False(t, res.Correct)
		assert.Contains(t, res.Feedback, "percentage")
	})

	t.Run("otherwise a generic hint", func(t *testing.T) {
		t.Parallel()

		ex := numericExercise(`1000`, `{"tolerance": 0.001}`)
		res := e.Evaluate(ex, json.RawMessage(`755`))
		assert.False(t, res.Correct)
		assert.Contains(t, res.Feedback, "compounding")
	})

	t.Run("unparsable answer gets explanatory feedback", func(t *testing.T) {
		t.Parallel()

		ex := numericExercise(`1000`, `{"tolerance": 0.05}`)
		for _, answer := range []string{`"about a thousand"`, `null`, `""`, `{}`} {
			res := e.Evaluate(ex, json.RawMessage(answer))
			assert.False(t, res.Correct, "answer %s", answer)
			assert.NotEmpty(t, res.Feedback, "answer %s", answer)
		}
	})
}

func budgetExercise(correctAnswer, data string) *domain.Exercise {
	ex := &domain.Exercise{
		ID:       2,
		Type:     domain.ExerciseTypeBudgetAllocation,
		Question: "Split your income across the categories.",
		Category: "budgeting",
	}
	if correctAnswer != "" {
		ex.CorrectAnswer = json.RawMessage(correctAnswer)
	}
	if data != "" {
		ex.Data = json.RawMessage(data)
	}
	return ex
}

func TestBudgetEvaluation(t *testing.T) {
	t.Parallel()

	e := evaluator.New()

	data := `{"income": 4000, "categories": ["Needs", "Wants", "Savings"], "target": {"category": "Savings", "min": 800}}`
	reference := `{"Needs": 2000, "Wants": 1200, "Savings": 800}`

	t.Run("all constraints satisfied", func(t *testing.T) {
		t.Parallel()

		res := e.Evaluate(budgetExercise(reference, data),
			json.RawMessage(`{"Needs": 2000, "Wants": 1200, "Savings": 800}`))
		assert.True(t, res.Correct)
	})

	t.Run("sum mismatch and target violation both reported", func(t *testing.T) {
		t.Parallel()

		// Totals 3900 (not 4000) and puts only 300 into Savings.
		res := e.Evaluate(budgetExercise(reference, data),
			json.RawMessage(`{"Needs": 2400, "Wants": 1200, "Savings": 300}`))
		assert.False(t, res.Correct)
		assert.Contains(t, res.Feedback, "add up to your income")
		assert.Contains(t, res.Feedback, "below the required minimum")
	})

	t.Run("constraints met but reference mismatch", func(t *testing.T) {
		t.Parallel()

		// Sums to 4000 and meets the Savings minimum, but differs from the
		// stored reference split.
		res := e.Evaluate(budgetExercise(reference, data),
			json.RawMessage(`{"Needs": 1900, "Wants": 1200, "Savings": 900}`))
		assert.False(t, res.Correct)
		assert.Contains(t, res.Feedback, "recommended allocation")
	})

	t.Run("no reference accepts any satisfying split", func(t *testing.T) {
		t.Parallel()

		res := e.Evaluate(budgetExercise("", data),
			json.RawMessage(`{"Needs": 1900, "Wants": 1200, "Savings": 900}`))
		assert.True(t, res.Correct)
	})

	t.Run("unparsable entry fails immediately", func(t *testing.T) {
		t.Parallel()

		res := e.Evaluate(budgetExercise(reference, data),
			json.RawMessage(`{"Needs": "most of it", "Wants": 1200, "Savings": 800}`))
		assert.False(t, res.Correct)
		assert.Contains(t, res.Feedback, "valid number")
	})

	t.Run("non-object answer fails immediately", func(t *testing.T) {
		t.Parallel()

		res := e.Evaluate(budgetExercise(reference, data), json.RawMessage(`[2000, 1200, 800]`))
		assert.False(t, res.Correct)
		assert.Contains(t, res.Feedback, "valid number")
	})
}

func TestStructuralEvaluation(t *testing.T) {
	t.Parallel()

	e := evaluator.New()

	mc := &domain.Exercise{
		ID:            3,
		Type:          domain.ExerciseTypeMultipleChoice,
		Question:      "Pick one.",
		Category:      "basics",
		CorrectAnswer: json.RawMessage(`{"choice": "b", "label": "Index funds"}`),
	}

	t.Run("key order is irrelevant", func(t *testing.T) {
		t.Parallel()

		res := e.Evaluate(mc, json.RawMessage(`{"label": "Index funds", "choice": "b"}`))
		assert.True(t, res.Correct)
	})

	t.Run("different value is incorrect", func(t *testing.T) {
		t.Parallel()

		res := e.Evaluate(mc, json.RawMessage(`{"choice": "a", "label": "Bonds"}`))
		assert.False(t, res.Correct)
		assert.NotEmpty(t, res.Feedback)
	})

	t.Run("array order matters for drag and drop", func(t *testing.T) {
		t.Parallel()

		dd := &domain.Exercise{
			ID:            4,
			Type:          domain.ExerciseTypeDragAndDrop,
			Question:      "Order the steps.",
			Category:      "basics",
			CorrectAnswer: json.RawMessage(`["earn", "save", "invest"]`),
		}
		assert.True(t, e.Evaluate(dd, json.RawMessage(`["earn", "save", "invest"]`)).Correct)
		assert.False(t, e.Evaluate(dd, json.RawMessage(`["save", "earn", "invest"]`)).Correct)
	})

	t.Run("unknown type falls back to structural comparison", func(t *testing.T) {
		t.Parallel()

		other := &domain.Exercise{
			ID:            5,
			Type:          "matching",
			Question:      "Match them.",
			Category:      "basics",
			CorrectAnswer: json.RawMessage(`{"a": 1}`),
		}
		assert.True(t, e.Evaluate(other, json.RawMessage(`{"a": 1}`)).Correct)
	})
}

// The evaluator must be total: no (exercise, answer) pair may panic.
func TestEvaluateNeverPanics(t *testing.T) {
	t.Parallel()

	e := evaluator.New()

	exercises := []*domain.Exercise{
		nil,
		{ID: 1, Type: domain.ExerciseTypeNumeric, Category: "x"},
		{ID: 2, Type: domain.ExerciseTypeNumeric, Category: "x", Data: json.RawMessage(`{broken`)},
		{ID: 3, Type: domain.ExerciseTypeBudgetAllocation, Category: "x", Data: json.RawMessage(`"wrong shape"`)},
		{ID: 4, Type: domain.ExerciseTypeBudgetAllocation, Category: "x", CorrectAnswer: json.RawMessage(`17`)},
		{ID: 5, Type: domain.ExerciseTypeMultipleChoice, Category: "x"},
	}
	answers := []json.RawMessage{
		nil,
		json.RawMessage(``),
		json.RawMessage(`null`),
		json.RawMessage(`{}`),
		json.RawMessage(`{not json`),
		json.RawMessage(`"42"`),
	}

	for _, ex := range exercises {
		for _, answer := range answers {
			assert.NotPanics(t, func() {
				res := e.Evaluate(ex, answer)
				_ = res
			})
		}
	}
}
