package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/praxislab/praxis-api/internal/domain"
)

// AttemptStore defines the interface for per-(user, exercise) attempt
// progress persistence.
type AttemptStore interface {
	// Get retrieves the attempt progress for a user and exercise.
	// Returns ErrAttemptNotFound if no record exists.
	Get(ctx context.Context, userID uuid.UUID, exerciseID int64) (*domain.AttemptProgress, error)

	// GetForUpdate retrieves the attempt progress with a row-level lock via
	// SELECT ... FOR UPDATE. The rate guard depends on this: two
	// near-simultaneous submissions for the same (user, exercise) must not
	// both pass the minimum-interval check.
	// Returns ErrAttemptNotFound if no record exists.
	GetForUpdate(ctx context.Context, userID uuid.UUID, exerciseID int64) (*domain.AttemptProgress, error)

	// CreateIfAbsent inserts the record if none exists for its
	// (user, exercise) key and leaves an existing row untouched. Call it
	// inside a transaction before GetForUpdate so the locked read always
	// finds a row; SELECT ... FOR UPDATE on a missing row takes no lock.
	CreateIfAbsent(ctx context.Context, p *domain.AttemptProgress) error

	// Upsert creates the progress record if absent, else overwrites its
	// mutable fields. Handles domain validation internally.
	Upsert(ctx context.Context, p *domain.AttemptProgress) error

	// CompletedIDs returns the set of exercise IDs the user has completed.
	CompletedIDs(ctx context.Context, userID uuid.UUID) (map[int64]bool, error)

	// WithTx returns an AttemptStore bound to the provided transaction.
	WithTx(tx *sql.Tx) AttemptStore
}
