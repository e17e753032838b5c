package evaluator

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/praxislab/praxis-api/internal/domain"
)

// Numeric feedback strings.
const (
	feedbackNotANumber = "We couldn't read that as a number. Enter a numeric value such as 1628.89 (or a percentage like 5%)."
	feedbackPeriodMix  = "Your value looks like a monthly/annual mix-up. Check whether the question asks for a monthly or an annual figure."
	feedbackRounding   = "Very close; you may be rounding too early. Keep full precision until the final step."
	feedbackPercent    = "Your answer is off by a factor of 100. Did you forget to convert the percentage to a decimal?"
	feedbackNumericGen = "Not quite. Check your compounding periods and base values, then try again."
)

var (
	twelve     = decimal.NewFromInt(12)
	oneHundred = decimal.NewFromInt(100)
	ratioLow   = decimal.RequireFromString("0.98")
	ratioHigh  = decimal.RequireFromString("1.02")
)

// numericStrategy evaluates numeric answers with a tolerance band and, on a
// miss, runs misconception diagnostics to produce targeted feedback.
type numericStrategy struct{}

func (numericStrategy) Evaluate(ex *domain.Exercise, answer []byte) Result {
	// Data is best-effort: a malformed payload degrades to zero values.
	var data domain.NumericData
	if len(ex.Data) > 0 {
		_ = json.Unmarshal(ex.Data, &data)
	}

	expected, ok := expectedValue(ex, data)
	if !ok {
		return Result{Correct: false, Feedback: feedbackNoExercise}
	}

	user, ok := parseNumber(answer)
	if !ok {
		return Result{Correct: false, Feedback: feedbackNotANumber}
	}

	tol := data.Tolerance
	if tol < 0 {
		tol = 0
	}

	if withinTolerance(user, expected, tol) {
		return Result{Correct: true, Feedback: feedbackCorrect}
	}

	return Result{Correct: false, Feedback: diagnose(user, expected, data, tol)}
}

// expectedValue resolves the reference value from the correct answer, or
// from the exercise data's expected_value when the correct answer is absent
// or unreadable.
func expectedValue(ex *domain.Exercise, data domain.NumericData) (decimal.Decimal, bool) {
	if v, ok := parseNumber(ex.CorrectAnswer); ok {
		return v, true
	}
	if data.ExpectedValue != "" {
		if v, err := decimal.NewFromString(data.ExpectedValue.String()); err == nil {
			return v, true
		}
	}
	return decimal.Zero, false
}

// withinTolerance checks |user - expected| <= max(tol, |expected| * tol).
// The configured tolerance serves as both the relative fraction and the
// absolute floor. With tol 0 only an exact match passes, including when
// expected is 0 (the relative band collapses to zero, no division occurs).
func withinTolerance(user, expected decimal.Decimal, tol float64) bool {
	band := decimal.NewFromFloat(tol)
	if rel := expected.Abs().Mul(band); rel.GreaterThan(band) {
		band = rel
	}
	return user.Sub(expected).Abs().LessThanOrEqual(band)
}

// diagnose runs misconception heuristics in priority order and returns the
// first applicable hint, else a generic one.
func diagnose(user, expected decimal.Decimal, data domain.NumericData, tol float64) string {
	// Monthly/annual confusion: the submitted value matches the expected
	// figure divided or multiplied across twelve periods.
	if data.PeriodHint == "annual" && !expected.IsZero() {
		monthly := expected.Div(twelve)
		annual := expected.Mul(twelve)
		if withinTolerance(user, monthly, tol) || withinTolerance(user, annual, tol) {
			return feedbackPeriodMix
		}
	}

	if !expected.IsZero() {
		ratio := user.Div(expected)

		// A near-miss ratio points at premature rounding.
		if ratio.GreaterThanOrEqual(ratioLow) && ratio.LessThanOrEqual(ratioHigh) {
			return feedbackRounding
		}

		// A ratio of exactly 100 points at a percent left unconverted.
		if ratio.Round(0).Equal(oneHundred) {
			return feedbackPercent
		}
	}

	return feedbackNumericGen
}

// parseNumber extracts a decimal from a JSON value that is either a number
// or a numeric string. Percentage-suffixed strings are scaled: "30%" parses
// as 0.30. Returns false for anything unreadable, including null, empty
// input, and non-numeric strings.
func parseNumber(raw []byte) (decimal.Decimal, bool) {
	if len(raw) == 0 {
		return decimal.Zero, false
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if v, err := decimal.NewFromString(num.String()); err == nil {
			return v, true
		}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseNumberString(s)
	}

	return decimal.Zero, false
}

// parseNumberString parses a free-form numeric string: surrounding
// whitespace and thousands separators are dropped, and a trailing percent
// sign divides the value by 100.
func parseNumberString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	percent := strings.HasSuffix(s, "%")
	if percent {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}
	s = strings.ReplaceAll(s, ",", "")

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	if percent {
		v = v.Div(oneHundred)
	}
	return v, true
}
