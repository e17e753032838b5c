package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/praxislab/praxis-api/internal/domain"
	"github.com/praxislab/praxis-api/internal/platform/logger"
	"github.com/praxislab/praxis-api/internal/store"
)

const attemptSelect = `
	SELECT user_id, exercise_id, attempts, last_attempt_at, completed, user_answer, created_at, updated_at
	FROM attempt_progress
	WHERE user_id = $1 AND exercise_id = $2
`

// PostgresAttemptStore implements the store.AttemptStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAttemptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAttemptStore creates a new PostgreSQL implementation of the
// AttemptStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, the default logger is used.
func NewPostgresAttemptStore(db store.DBTX, logger *slog.Logger) *PostgresAttemptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAttemptStore{
		db:     db,
		logger: logger.With(slog.String("component", "attempt_store")),
	}
}

// Ensure PostgresAttemptStore implements store.AttemptStore
var _ store.AttemptStore = (*PostgresAttemptStore)(nil)

// WithTx implements store.AttemptStore.WithTx
func (s *PostgresAttemptStore) WithTx(tx *sql.Tx) store.AttemptStore {
	return &PostgresAttemptStore{db: tx, logger: s.logger}
}

// Get implements store.AttemptStore.Get
func (s *PostgresAttemptStore) Get(ctx context.Context, userID uuid.UUID, exerciseID int64) (*domain.AttemptProgress, error) {
	return s.get(ctx, userID, exerciseID, attemptSelect)
}

// GetForUpdate implements store.AttemptStore.GetForUpdate
// The row lock makes the rate-guard check and the subsequent upsert atomic
// per (user, exercise): two near-simultaneous submissions cannot both pass
// the minimum-interval check.
func (s *PostgresAttemptStore) GetForUpdate(ctx context.Context, userID uuid.UUID, exerciseID int64) (*domain.AttemptProgress, error) {
	return s.get(ctx, userID, exerciseID, attemptSelect+" FOR UPDATE")
}

func (s *PostgresAttemptStore) get(ctx context.Context, userID uuid.UUID, exerciseID int64, query string) (*domain.AttemptProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var p domain.AttemptProgress
	var lastAttempt sql.NullTime
	var answer []byte

	err := s.db.QueryRowContext(ctx, query, userID, exerciseID).Scan(
		&p.UserID,
		&p.ExerciseID,
		&p.Attempts,
		&lastAttempt,
		&p.Completed,
		&answer,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrAttemptNotFound
		}
		log.Error("failed to get attempt progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int64("exercise_id", exerciseID))
		return nil, mapError(err)
	}

	p.LastAttemptAt = timeOrZero(lastAttempt)
	p.UserAnswer = answer
	return &p, nil
}

// CreateIfAbsent implements store.AttemptStore.CreateIfAbsent
// ON CONFLICT DO NOTHING keeps an existing row untouched while still making
// a concurrent inserter block until this transaction resolves, so the
// GetForUpdate that follows always lands on a committed, lockable row.
func (s *PostgresAttemptStore) CreateIfAbsent(ctx context.Context, p *domain.AttemptProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		log.Warn("attempt progress validation failed during seed insert",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()),
			slog.Int64("exercise_id", p.ExerciseID))
		return err
	}

	query := `
		INSERT INTO attempt_progress (user_id, exercise_id, attempts, last_attempt_at, completed, user_answer, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, exercise_id) DO NOTHING
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		p.UserID,
		p.ExerciseID,
		p.Attempts,
		nullTime(p.LastAttemptAt),
		p.Completed,
		nullJSON(p.UserAnswer),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to seed attempt progress",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()),
			slog.Int64("exercise_id", p.ExerciseID))
		return mapError(err)
	}

	return nil
}

// Upsert implements store.AttemptStore.Upsert
func (s *PostgresAttemptStore) Upsert(ctx context.Context, p *domain.AttemptProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		log.Warn("attempt progress validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()),
			slog.Int64("exercise_id", p.ExerciseID))
		return err
	}

	query := `
		INSERT INTO attempt_progress (user_id, exercise_id, attempts, last_attempt_at, completed, user_answer, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, exercise_id) DO UPDATE SET
			attempts = EXCLUDED.attempts,
			last_attempt_at = EXCLUDED.last_attempt_at,
			completed = attempt_progress.completed OR EXCLUDED.completed,
			user_answer = EXCLUDED.user_answer,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		p.UserID,
		p.ExerciseID,
		p.Attempts,
		nullTime(p.LastAttemptAt),
		p.Completed,
		nullJSON(p.UserAnswer),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert attempt progress",
			slog.String("error", err.Error()),
			slog.String("user_id", p.UserID.String()),
			slog.Int64("exercise_id", p.ExerciseID))
		return mapError(err)
	}

	log.Debug("attempt progress upserted",
		slog.String("user_id", p.UserID.String()),
		slog.Int64("exercise_id", p.ExerciseID),
		slog.Int("attempts", p.Attempts),
		slog.Bool("completed", p.Completed))
	return nil
}

// CompletedIDs implements store.AttemptStore.CompletedIDs
func (s *PostgresAttemptStore) CompletedIDs(ctx context.Context, userID uuid.UUID) (map[int64]bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT exercise_id
		FROM attempt_progress
		WHERE user_id = $1 AND completed
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list completed exercise IDs",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	completed := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, mapError(err)
		}
		completed[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return completed, nil
}
