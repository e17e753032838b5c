package leitner

import (
	"time"

	"github.com/praxislab/praxis-api/internal/domain"
)

// clampProficiency bounds p into [MinProficiency, MaxProficiency].
func clampProficiency(p int) int {
	if p < domain.MinProficiency {
		return domain.MinProficiency
	}
	if p > domain.MaxProficiency {
		return domain.MaxProficiency
	}
	return p
}

// gain computes the proficiency gain for a correct answer: the base gain
// adjusted by the confidence bonus, minus the capped hint penalty.
func gain(review Review, params *Params) int {
	bonus := params.ConfidenceBonus[review.Confidence]

	penalty := review.HintsUsed * params.HintPenaltyPerHint
	if penalty > params.MaxHintPenalty {
		penalty = params.MaxHintPenalty
	}

	return params.CorrectGain + bonus - penalty
}

// drop computes the proficiency loss for an incorrect answer. The loss
// doubles once the learner has failed the exercise repeatedly.
func drop(review Review, params *Params) int {
	if review.Attempts >= params.RepeatResetAttempts {
		return params.RepeatedDrop
	}
	return params.EarlyDrop
}

// band maps a proficiency value to its interval band.
func band(proficiency int, params *Params) int {
	b := proficiency / params.BandWidth
	if b > bandCount-1 {
		b = bandCount - 1
	}
	return b
}

// nextMastery computes the successor mastery state for a review. It follows
// the immutable-update pattern: the input is never modified and a fresh
// record is returned.
//
// Policy, applied in order:
//  1. Correct answers gain CorrectGain adjusted by confidence bonus and
//     capped hint penalty, clamped to [0,100].
//  2. Incorrect answers drop EarlyDrop (or RepeatedDrop from the third
//     attempt on), clamped to [0,100]; at RepeatResetAttempts or more the
//     proficiency is reset to zero outright, overriding the drop.
//  3. Correct answers are due again after the band interval; incorrect
//     answers are due immediately.
//  4. LastReviewedAt always moves to now.
func nextMastery(m *domain.Mastery, review Review, now time.Time, params *Params) *domain.Mastery {
	next := &domain.Mastery{
		UserID:         m.UserID,
		Skill:          m.Skill,
		Proficiency:    m.Proficiency,
		DueAt:          m.DueAt,
		LastReviewedAt: m.LastReviewedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}

	if review.Correct {
		next.Proficiency = clampProficiency(m.Proficiency + gain(review, params))
		interval := params.BandIntervals[band(next.Proficiency, params)]
		next.DueAt = now.AddDate(0, 0, interval)
	} else {
		next.Proficiency = clampProficiency(m.Proficiency - drop(review, params))
		if review.Attempts >= params.RepeatResetAttempts {
			// Repeated failure wipes mastery entirely.
			next.Proficiency = domain.MinProficiency
		}
		next.DueAt = now
	}

	next.LastReviewedAt = now
	next.UpdatedAt = now

	return next
}
