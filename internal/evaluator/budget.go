package evaluator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/praxislab/praxis-api/internal/domain"
)

// Budget feedback strings.
const (
	feedbackBudgetNumbers = "Please enter a valid number for every category."
	feedbackBudgetRef     = "Your split doesn't match the recommended allocation for this plan."
)

// budgetStrategy evaluates budget-allocation answers against up to three
// constraints: the allocations must sum to the stated income, any targeted
// category must meet its minimum, and when a reference allocation is
// configured the answer must match it value for value. Every violated
// constraint contributes its own feedback message; correctness is the
// conjunction.
type budgetStrategy struct{}

func (budgetStrategy) Evaluate(ex *domain.Exercise, answer []byte) Result {
	alloc, ok := parseAllocation(answer)
	if !ok {
		return Result{Correct: false, Feedback: feedbackBudgetNumbers}
	}

	var data domain.BudgetData
	if len(ex.Data) > 0 {
		_ = json.Unmarshal(ex.Data, &data)
	}

	var problems []string

	if data.Income != "" {
		if income, err := decimal.NewFromString(data.Income.String()); err == nil {
			total := decimal.Zero
			for _, amount := range alloc {
				total = total.Add(amount)
			}
			if !total.Equal(income) {
				problems = append(problems, fmt.Sprintf(
					"Your allocations total %s but should add up to your income of %s.",
					total.String(), income.String()))
			}
		}
	}

	if data.Target != nil && data.Target.Category != "" {
		if min, err := decimal.NewFromString(data.Target.Min.String()); err == nil {
			// A missing category counts as allocating nothing to it.
			amount := alloc[data.Target.Category]
			if amount.LessThan(min) {
				problems = append(problems, fmt.Sprintf(
					"Your %s allocation of %s is below the required minimum of %s.",
					data.Target.Category, amount.String(), min.String()))
			}
		}
	}

	if reference, ok := parseAllocation(ex.CorrectAnswer); ok && len(reference) > 0 {
		if !allocationsEqual(alloc, reference) {
			problems = append(problems, feedbackBudgetRef)
		}
	}

	if len(problems) > 0 {
		return Result{Correct: false, Feedback: strings.Join(problems, " ")}
	}
	return Result{Correct: true, Feedback: feedbackCorrect}
}

// parseAllocation reads a JSON object mapping category names to numeric
// amounts. Returns false if the input is not an object or any entry is not
// readable as a number.
func parseAllocation(raw []byte) (map[string]decimal.Decimal, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}

	alloc := make(map[string]decimal.Decimal, len(entries))
	for category, value := range entries {
		amount, ok := parseNumber(value)
		if !ok {
			return nil, false
		}
		alloc[category] = amount
	}
	return alloc, true
}

// allocationsEqual reports whether two allocations assign equal amounts to
// exactly the same categories.
func allocationsEqual(a, b map[string]decimal.Decimal) bool {
	if len(a) != len(b) {
		return false
	}
	for category, amount := range a {
		other, ok := b[category]
		if !ok || !amount.Equal(other) {
			return false
		}
	}
	return true
}
