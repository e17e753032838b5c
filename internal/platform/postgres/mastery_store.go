package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/praxislab/praxis-api/internal/domain"
	"github.com/praxislab/praxis-api/internal/platform/logger"
	"github.com/praxislab/praxis-api/internal/store"
)

const masterySelect = `
	SELECT user_id, skill, proficiency, due_at, last_reviewed_at, created_at, updated_at
	FROM skill_mastery
	WHERE user_id = $1 AND skill = $2
`

// PostgresMasteryStore implements the store.MasteryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMasteryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMasteryStore creates a new PostgreSQL implementation of the
// MasteryStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, the default logger is used.
func NewPostgresMasteryStore(db store.DBTX, logger *slog.Logger) *PostgresMasteryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMasteryStore{
		db:     db,
		logger: logger.With(slog.String("component", "mastery_store")),
	}
}

// Ensure PostgresMasteryStore implements store.MasteryStore
var _ store.MasteryStore = (*PostgresMasteryStore)(nil)

// WithTx implements store.MasteryStore.WithTx
func (s *PostgresMasteryStore) WithTx(tx *sql.Tx) store.MasteryStore {
	return &PostgresMasteryStore{db: tx, logger: s.logger}
}

// Get implements store.MasteryStore.Get
func (s *PostgresMasteryStore) Get(ctx context.Context, userID uuid.UUID, skill string) (*domain.Mastery, error) {
	return s.get(ctx, userID, skill, masterySelect)
}

// GetForUpdate implements store.MasteryStore.GetForUpdate
// It takes a row-level lock so concurrent bumps for the same (user, skill)
// serialize instead of computing from stale reads.
func (s *PostgresMasteryStore) GetForUpdate(ctx context.Context, userID uuid.UUID, skill string) (*domain.Mastery, error) {
	return s.get(ctx, userID, skill, masterySelect+" FOR UPDATE")
}

func (s *PostgresMasteryStore) get(ctx context.Context, userID uuid.UUID, skill, query string) (*domain.Mastery, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var m domain.Mastery
	var lastReviewed sql.NullTime

	err := s.db.QueryRowContext(ctx, query, userID, skill).Scan(
		&m.UserID,
		&m.Skill,
		&m.Proficiency,
		&m.DueAt,
		&lastReviewed,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrMasteryNotFound
		}
		log.Error("failed to get mastery",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("skill", skill))
		return nil, mapError(err)
	}

	m.LastReviewedAt = timeOrZero(lastReviewed)
	return &m, nil
}

// CreateIfAbsent implements store.MasteryStore.CreateIfAbsent
// ON CONFLICT DO NOTHING keeps an existing row untouched while still making
// a concurrent inserter block until this transaction resolves, so the
// GetForUpdate that follows always lands on a committed, lockable row.
func (s *PostgresMasteryStore) CreateIfAbsent(ctx context.Context, m *domain.Mastery) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := m.Validate(); err != nil {
		log.Warn("mastery validation failed during seed insert",
			slog.String("error", err.Error()),
			slog.String("user_id", m.UserID.String()),
			slog.String("skill", m.Skill))
		return err
	}

	query := `
		INSERT INTO skill_mastery (user_id, skill, proficiency, due_at, last_reviewed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, skill) DO NOTHING
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		m.UserID,
		m.Skill,
		m.Proficiency,
		m.DueAt,
		nullTime(m.LastReviewedAt),
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to seed mastery",
			slog.String("error", err.Error()),
			slog.String("user_id", m.UserID.String()),
			slog.String("skill", m.Skill))
		return mapError(err)
	}

	return nil
}

// Upsert implements store.MasteryStore.Upsert
func (s *PostgresMasteryStore) Upsert(ctx context.Context, m *domain.Mastery) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := m.Validate(); err != nil {
		log.Warn("mastery validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("user_id", m.UserID.String()),
			slog.String("skill", m.Skill))
		return err
	}

	query := `
		INSERT INTO skill_mastery (user_id, skill, proficiency, due_at, last_reviewed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, skill) DO UPDATE SET
			proficiency = EXCLUDED.proficiency,
			due_at = EXCLUDED.due_at,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		m.UserID,
		m.Skill,
		m.Proficiency,
		m.DueAt,
		nullTime(m.LastReviewedAt),
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert mastery",
			slog.String("error", err.Error()),
			slog.String("user_id", m.UserID.String()),
			slog.String("skill", m.Skill))
		return mapError(err)
	}

	log.Debug("mastery upserted",
		slog.String("user_id", m.UserID.String()),
		slog.String("skill", m.Skill),
		slog.Int("proficiency", m.Proficiency),
		slog.Time("due_at", m.DueAt))
	return nil
}

// ListDue implements store.MasteryStore.ListDue
func (s *PostgresMasteryStore) ListDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Mastery, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, skill, proficiency, due_at, last_reviewed_at, created_at, updated_at
		FROM skill_mastery
		WHERE user_id = $1 AND due_at <= $2
		ORDER BY due_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		log.Error("failed to list due mastery records",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	var due []*domain.Mastery
	for rows.Next() {
		var m domain.Mastery
		var lastReviewed sql.NullTime
		if err := rows.Scan(
			&m.UserID,
			&m.Skill,
			&m.Proficiency,
			&m.DueAt,
			&lastReviewed,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, mapError(err)
		}
		m.LastReviewedAt = timeOrZero(lastReviewed)
		due = append(due, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return due, nil
}
