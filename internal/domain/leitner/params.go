// Package leitner implements the spaced-repetition bump policy that moves a
// user's skill proficiency after each exercise submission and schedules the
// next review. Proficiency is partitioned into five bands of width 20, each
// mapping to a review interval in days.
package leitner

import (
	"github.com/praxislab/praxis-api/internal/domain"
)

// Number of proficiency bands. Band 0 covers [0,20), band 4 covers [80,100].
const bandCount = 5

// Params defines all configurable parameters for the bump policy.
type Params struct {
	// CorrectGain is the base proficiency gain for a correct answer,
	// before confidence bonus and hint penalty.
	CorrectGain int

	// ConfidenceBonus adjusts the gain on a correct answer by the learner's
	// self-reported confidence. Unreported confidence maps to zero.
	ConfidenceBonus map[domain.Confidence]int

	// HintPenaltyPerHint and MaxHintPenalty bound the deduction for hints
	// used: min(MaxHintPenalty, hints * HintPenaltyPerHint).
	HintPenaltyPerHint int
	MaxHintPenalty     int

	// EarlyDrop is the proficiency loss for an incorrect answer before
	// RepeatResetAttempts attempts; RepeatedDrop applies from then on.
	EarlyDrop    int
	RepeatedDrop int

	// RepeatResetAttempts is the attempt count at which an incorrect answer
	// resets proficiency to zero outright.
	RepeatResetAttempts int

	// BandWidth is the proficiency span of one band.
	BandWidth int

	// BandIntervals maps each band to a review interval in days, applied
	// after a correct answer. Incorrect answers are due immediately.
	BandIntervals [bandCount]int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		CorrectGain: 12,

		ConfidenceBonus: map[domain.Confidence]int{
			domain.ConfidenceLow:    -3,
			domain.ConfidenceMedium: 0,
			domain.ConfidenceHigh:   6,
		},

		HintPenaltyPerHint: 2,
		MaxHintPenalty:     10,

		EarlyDrop:           15,
		RepeatedDrop:        30,
		RepeatResetAttempts: 3,

		BandWidth: 20,

		// Bands 0 and 1 both review after one day; higher bands spread out.
		BandIntervals: [bandCount]int{1, 1, 2, 4, 7},
	}
}
