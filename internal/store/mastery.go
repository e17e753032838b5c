package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/praxislab/praxis-api/internal/domain"
)

// MasteryStore defines the interface for per-(user, skill) mastery
// persistence.
type MasteryStore interface {
	// Get retrieves the mastery record for a user and skill.
	// Returns ErrMasteryNotFound if no record exists.
	// This method takes no row lock; do not use it when you intend to
	// update the row under concurrency.
	Get(ctx context.Context, userID uuid.UUID, skill string) (*domain.Mastery, error)

	// GetForUpdate retrieves the mastery record with a row-level lock via
	// SELECT ... FOR UPDATE. Use inside a transaction when the row will be
	// updated, so concurrent bumps for the same (user, skill) are applied
	// as sequential transitions rather than racing from stale reads.
	// Returns ErrMasteryNotFound if no record exists.
	GetForUpdate(ctx context.Context, userID uuid.UUID, skill string) (*domain.Mastery, error)

	// CreateIfAbsent inserts the record if none exists for its (user, skill)
	// key and leaves an existing row untouched. Call it inside a transaction
	// before GetForUpdate so the locked read always finds a row; SELECT ...
	// FOR UPDATE on a missing row takes no lock.
	CreateIfAbsent(ctx context.Context, m *domain.Mastery) error

	// Upsert creates the mastery record if absent, else overwrites its
	// mutable fields. Handles domain validation internally.
	Upsert(ctx context.Context, m *domain.Mastery) error

	// ListDue retrieves all of the user's mastery records with DueAt <= now,
	// ordered by DueAt ascending.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Mastery, error)

	// WithTx returns a MasteryStore bound to the provided transaction.
	WithTx(tx *sql.Tx) MasteryStore
}
