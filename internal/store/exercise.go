package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/praxislab/praxis-api/internal/domain"
)

// ExerciseStore defines the interface for exercise catalog persistence.
// The core only reads exercises; writing is reserved for seeding tooling.
type ExerciseStore interface {
	// GetByID retrieves an exercise by its unique ID.
	// Returns ErrExerciseNotFound if the exercise does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Exercise, error)

	// EasiestByCategory retrieves the exercise in the given category with
	// the lowest difficulty, ties broken by lowest ID.
	// Returns ErrExerciseNotFound if the category has no exercises.
	EasiestByCategory(ctx context.Context, category string) (*domain.Exercise, error)

	// FirstUncompleted retrieves the first exercise, ordered by difficulty
	// then ID, that the user has not completed yet.
	// Returns ErrExerciseNotFound if every exercise is completed or the
	// catalog is empty.
	FirstUncompleted(ctx context.Context, userID uuid.UUID) (*domain.Exercise, error)

	// MostRecent retrieves the most recently created exercise.
	// Returns ErrExerciseNotFound if the catalog is empty.
	MostRecent(ctx context.Context) (*domain.Exercise, error)

	// Create saves a new exercise. Used by seeding, not by the core.
	// Returns validation errors from the domain Exercise if data is invalid.
	Create(ctx context.Context, ex *domain.Exercise) error

	// WithTx returns an ExerciseStore bound to the provided transaction.
	// The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ExerciseStore
}
