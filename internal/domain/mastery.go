package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Confidence is the learner's self-reported confidence in an answer.
type Confidence string

// Possible confidence values. An empty Confidence means the learner did not
// report one and is treated the same as medium.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Valid reports whether c is a known confidence value. The empty string is
// accepted since confidence is optional on submission.
func (c Confidence) Valid() bool {
	switch c {
	case "", ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	default:
		return false
	}
}

// Proficiency bounds. Proficiency is always clamped into this range.
const (
	MinProficiency = 0
	MaxProficiency = 100
)

// Common validation errors for Mastery
var (
	ErrEmptyMasteryUserID    = errors.New("mastery user ID cannot be empty")
	ErrEmptyMasterySkill     = errors.New("mastery skill cannot be empty")
	ErrProficiencyOutOfRange = errors.New("proficiency must be between 0 and 100")
)

// Mastery tracks a user's proficiency in a single skill (an exercise
// category). It is the unit of spaced-repetition scheduling: DueAt says when
// the skill should next be reviewed, and the bump policy in the leitner
// package is the only thing that mutates it.
type Mastery struct {
	UserID         uuid.UUID `json:"user_id"`
	Skill          string    `json:"skill"`
	Proficiency    int       `json:"proficiency"` // Clamped to [0,100]
	DueAt          time.Time `json:"due_at"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewMastery creates a mastery record for a user and skill with default
// values: zero proficiency, due immediately. Records are created lazily on
// the first bump for a (user, skill) pair.
func NewMastery(userID uuid.UUID, skill string, now time.Time) (*Mastery, error) {
	m := &Mastery{
		UserID:         userID,
		Skill:          skill,
		Proficiency:    MinProficiency,
		DueAt:          now,
		LastReviewedAt: time.Time{}, // Zero time: never reviewed
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks if the Mastery has valid data.
// Returns an error if any field fails validation.
func (m *Mastery) Validate() error {
	if m.UserID == uuid.Nil {
		return ErrEmptyMasteryUserID
	}

	if m.Skill == "" {
		return ErrEmptyMasterySkill
	}

	if m.Proficiency < MinProficiency || m.Proficiency > MaxProficiency {
		return ErrProficiencyOutOfRange
	}

	return nil
}
