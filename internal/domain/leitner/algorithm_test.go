package leitner_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/praxislab/praxis-api/internal/domain"
	"github.com/praxislab/praxis-api/internal/domain/leitner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newMastery(t *testing.T, proficiency int) *domain.Mastery {
	t.Helper()

	m, err := domain.NewMastery(uuid.New(), "compound-interest", testNow.Add(-48*time.Hour))
	require.NoError(t, err)
	m.Proficiency = proficiency
	return m
}

func TestBumpCorrect(t *testing.T) {
	t.Parallel()

	svc := leitner.NewDefaultService()

	tests := []struct {
		name             string
		proficiency      int
		review           leitner.Review
		wantProficiency  int
		wantIntervalDays int
	}{
		{
			name:             "base gain, no confidence, no hints",
			proficiency:      40,
			review:           leitner.Review{Correct: true, Attempts: 1},
			wantProficiency:  52, // +12, band 2
			wantIntervalDays: 2,
		},
		{
			name:             "high confidence bonus",
			proficiency:      40,
			review:           leitner.Review{Correct: true, Confidence: domain.ConfidenceHigh, Attempts: 1},
			wantProficiency:  58, // +12+6
			wantIntervalDays: 2,
		},
		{
			name:             "low confidence reduces gain",
			proficiency:      40,
			review:           leitner.Review{Correct: true, Confidence: domain.ConfidenceLow, Attempts: 1},
			wantProficiency:  49, // +12-3
			wantIntervalDays: 2,
		},
		{
			name:             "hint penalty is capped at 10",
			proficiency:      40,
			review:           leitner.Review{Correct: true, HintsUsed: 8, Attempts: 1},
			wantProficiency:  42, // +12-min(10,16)
			wantIntervalDays: 2,
		},
		{
			name:             "band 0 reviews after one day",
			proficiency:      0,
			review:           leitner.Review{Correct: true, Confidence: domain.ConfidenceLow, HintsUsed: 5, Attempts: 1},
			wantProficiency:  0, // +12-3-10 = -1, clamped
			wantIntervalDays: 1,
		},
		{
			name:             "top band reviews after a week",
			proficiency:      80,
			review:           leitner.Review{Correct: true, Attempts: 1},
			wantProficiency:  92,
			wantIntervalDays: 7,
		},
		{
			name:             "gain clamps at 100",
			proficiency:      100,
			review:           leitner.Review{Correct: true, Confidence: domain.ConfidenceHigh, Attempts: 1},
			wantProficiency:  100,
			wantIntervalDays: 7,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newMastery(t, tt.proficiency)
			next, err := svc.Bump(m, tt.review, testNow)
			require.NoError(t, err)

			assert.Equal(t, tt.wantProficiency, next.Proficiency)
			assert.Equal(t, testNow.AddDate(0, 0, tt.wantIntervalDays), next.DueAt)
			assert.Equal(t, testNow, next.LastReviewedAt)

			// Input record must be untouched.
			assert.Equal(t, tt.proficiency, m.Proficiency)
		})
	}
}

func TestBumpIncorrect(t *testing.T) {
	t.Parallel()

	svc := leitner.NewDefaultService()

	tests := []struct {
		name            string
		proficiency     int
		attempts        int
		wantProficiency int
	}{
		{name: "early drop", proficiency: 50, attempts: 1, wantProficiency: 35},
		{name: "second attempt still early drop", proficiency: 50, attempts: 2, wantProficiency: 35},
		{name: "third attempt resets to zero", proficiency: 95, attempts: 3, wantProficiency: 0},
		{name: "later attempts stay at zero", proficiency: 20, attempts: 5, wantProficiency: 0},
		{name: "drop clamps at zero", proficiency: 5, attempts: 1, wantProficiency: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newMastery(t, tt.proficiency)
			next, err := svc.Bump(m, leitner.Review{Correct: false, Attempts: tt.attempts}, testNow)
			require.NoError(t, err)

			assert.Equal(t, tt.wantProficiency, next.Proficiency)
			// Incorrect answers are due for immediate re-review.
			assert.Equal(t, testNow, next.DueAt)
		})
	}
}

// Three consecutive correct high-confidence answers from proficiency 50:
// gains of 18 each, clamped at 100 on the third.
func TestBumpConsecutiveCorrectRun(t *testing.T) {
	t.Parallel()

	svc := leitner.NewDefaultService()
	m := newMastery(t, 50)

	want := []int{68, 86, 100}
	now := testNow
	for i, expected := range want {
		next, err := svc.Bump(m, leitner.Review{
			Correct:    true,
			Confidence: domain.ConfidenceHigh,
			Attempts:   1,
		}, now)
		require.NoError(t, err)
		assert.Equal(t, expected, next.Proficiency, "step %d", i+1)

		m = next
		now = next.DueAt
	}
}

func TestBumpDeterministic(t *testing.T) {
	t.Parallel()

	svc := leitner.NewDefaultService()
	m := newMastery(t, 37)
	review := leitner.Review{Correct: true, Confidence: domain.ConfidenceLow, HintsUsed: 1, Attempts: 2}

	first, err := svc.Bump(m, review, testNow)
	require.NoError(t, err)
	second, err := svc.Bump(m, review, testNow)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBumpProficiencyStaysBounded(t *testing.T) {
	t.Parallel()

	svc := leitner.NewDefaultService()
	m := newMastery(t, 50)

	// An arbitrary mixed sequence never escapes [0,100].
	reviews := []leitner.Review{
		{Correct: true, Confidence: domain.ConfidenceHigh, Attempts: 1},
		{Correct: false, Attempts: 1},
		{Correct: true, Attempts: 2},
		{Correct: false, Attempts: 3},
		{Correct: true, Confidence: domain.ConfidenceHigh, Attempts: 1},
		{Correct: true, Confidence: domain.ConfidenceHigh, Attempts: 1},
		{Correct: false, Attempts: 4},
	}

	now := testNow
	for i, review := range reviews {
		next, err := svc.Bump(m, review, now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, next.Proficiency, domain.MinProficiency, "step %d", i)
		assert.LessOrEqual(t, next.Proficiency, domain.MaxProficiency, "step %d", i)
		m = next
		now = now.Add(time.Hour)
	}
}

func TestBumpValidation(t *testing.T) {
	t.Parallel()

	svc := leitner.NewDefaultService()
	m := newMastery(t, 50)

	t.Run("nil mastery", func(t *testing.T) {
		t.Parallel()

		_, err := svc.Bump(nil, leitner.Review{Correct: true, Attempts: 1}, testNow)
		assert.ErrorIs(t, err, leitner.ErrNilMastery)
	})

	t.Run("unknown confidence", func(t *testing.T) {
		t.Parallel()

		_, err := svc.Bump(m, leitner.Review{Correct: true, Confidence: "certain", Attempts: 1}, testNow)
		assert.ErrorIs(t, err, leitner.ErrInvalidConfidence)
	})

	t.Run("zero attempts", func(t *testing.T) {
		t.Parallel()

		_, err := svc.Bump(m, leitner.Review{Correct: true}, testNow)
		assert.ErrorIs(t, err, leitner.ErrInvalidAttempts)
	})

	t.Run("negative hints", func(t *testing.T) {
		t.Parallel()

		_, err := svc.Bump(m, leitner.Review{Correct: true, HintsUsed: -1, Attempts: 1}, testNow)
		assert.ErrorIs(t, err, leitner.ErrNegativeHints)
	})
}
