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

// exerciseColumns is the column list shared by every exercise query.
const exerciseColumns = "id, type, question, data, correct_answer, category, difficulty, created_at"

// PostgresExerciseStore implements the store.ExerciseStore interface
// using a PostgreSQL database as the storage backend.
type PostgresExerciseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresExerciseStore creates a new PostgreSQL implementation of the
// ExerciseStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, the default logger is used.
func NewPostgresExerciseStore(db store.DBTX, logger *slog.Logger) *PostgresExerciseStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresExerciseStore{
		db:     db,
		logger: logger.With(slog.String("component", "exercise_store")),
	}
}

// Ensure PostgresExerciseStore implements store.ExerciseStore
var _ store.ExerciseStore = (*PostgresExerciseStore)(nil)

// WithTx implements store.ExerciseStore.WithTx
func (s *PostgresExerciseStore) WithTx(tx *sql.Tx) store.ExerciseStore {
	return &PostgresExerciseStore{db: tx, logger: s.logger}
}

// GetByID implements store.ExerciseStore.GetByID
func (s *PostgresExerciseStore) GetByID(ctx context.Context, id int64) (*domain.Exercise, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + exerciseColumns + `
		FROM exercises
		WHERE id = $1
	`

	ex, err := scanExercise(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFound(err) {
			log.Debug("exercise not found", slog.Int64("exercise_id", id))
			return nil, store.ErrExerciseNotFound
		}
		log.Error("failed to get exercise by ID",
			slog.String("error", err.Error()),
			slog.Int64("exercise_id", id))
		return nil, mapError(err)
	}

	return ex, nil
}

// EasiestByCategory implements store.ExerciseStore.EasiestByCategory
func (s *PostgresExerciseStore) EasiestByCategory(ctx context.Context, category string) (*domain.Exercise, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + exerciseColumns + `
		FROM exercises
		WHERE category = $1
		ORDER BY difficulty ASC, id ASC
		LIMIT 1
	`

	ex, err := scanExercise(s.db.QueryRowContext(ctx, query, category))
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrExerciseNotFound
		}
		log.Error("failed to get easiest exercise for category",
			slog.String("error", err.Error()),
			slog.String("category", category))
		return nil, mapError(err)
	}

	return ex, nil
}

// FirstUncompleted implements store.ExerciseStore.FirstUncompleted
func (s *PostgresExerciseStore) FirstUncompleted(ctx context.Context, userID uuid.UUID) (*domain.Exercise, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT e.id, e.type, e.question, e.data, e.correct_answer, e.category, e.difficulty, e.created_at
		FROM exercises e
		LEFT JOIN attempt_progress ap
			ON ap.exercise_id = e.id AND ap.user_id = $1 AND ap.completed
		WHERE ap.exercise_id IS NULL
		ORDER BY e.difficulty ASC, e.id ASC
		LIMIT 1
	`

	ex, err := scanExercise(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrExerciseNotFound
		}
		log.Error("failed to get first uncompleted exercise",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, mapError(err)
	}

	return ex, nil
}

// MostRecent implements store.ExerciseStore.MostRecent
func (s *PostgresExerciseStore) MostRecent(ctx context.Context) (*domain.Exercise, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + exerciseColumns + `
		FROM exercises
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	ex, err := scanExercise(s.db.QueryRowContext(ctx, query))
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrExerciseNotFound
		}
		log.Error("failed to get most recent exercise", slog.String("error", err.Error()))
		return nil, mapError(err)
	}

	return ex, nil
}

// Create implements store.ExerciseStore.Create
// The exercise ID and creation timestamp are assigned by the database and
// written back into ex.
func (s *PostgresExerciseStore) Create(ctx context.Context, ex *domain.Exercise) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if ex.Question == "" {
		return domain.ErrExerciseQuestionEmpty
	}
	if ex.Category == "" {
		return domain.ErrExerciseCategoryEmpty
	}

	query := `
		INSERT INTO exercises (type, question, data, correct_answer, category, difficulty)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(
		ctx,
		query,
		string(ex.Type),
		ex.Question,
		nullJSON(ex.Data),
		nullJSON(ex.CorrectAnswer),
		ex.Category,
		ex.Difficulty,
	).Scan(&ex.ID, &ex.CreatedAt)

	if err != nil {
		log.Error("failed to create exercise",
			slog.String("error", err.Error()),
			slog.String("category", ex.Category))
		return mapError(err)
	}

	log.Info("exercise created",
		slog.Int64("exercise_id", ex.ID),
		slog.String("category", ex.Category),
		slog.String("type", string(ex.Type)))
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanExercise maps one exercise row into a domain entity.
func scanExercise(row rowScanner) (*domain.Exercise, error) {
	var ex domain.Exercise
	var typ string
	var data, correctAnswer []byte

	err := row.Scan(
		&ex.ID,
		&typ,
		&ex.Question,
		&data,
		&correctAnswer,
		&ex.Category,
		&ex.Difficulty,
		&ex.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	ex.Type = domain.ExerciseType(typ)
	ex.Data = data
	ex.CorrectAnswer = correctAnswer
	return &ex, nil
}
