package practice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/praxislab/praxis-api/internal/domain"
	"github.com/praxislab/praxis-api/internal/domain/leitner"
	"github.com/praxislab/praxis-api/internal/evaluator"
	"github.com/praxislab/praxis-api/internal/platform/logger"
	"github.com/praxislab/praxis-api/internal/store"
)

// XP delta parameters. The delta is zero when the exercise was already
// completed before the submission and the new answer is also correct.
const (
	xpBaseCorrect        = 15
	xpBaseIncorrect      = -5
	xpFirstAttemptBonus  = 5
	xpPerHintPenalty     = 2
	xpLowConfidenceBonus = 2
	xpHighConfidencePain = 2
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	exercises store.ExerciseStore
	masteries store.MasteryStore
	attempts  store.AttemptStore
	eval      *evaluator.Evaluator
	bumper    leitner.Service
	logger    *slog.Logger
	now       func() time.Time

	// runInTx wraps store.RunInTransaction over the service's database
	// handle. Tests swap it for a pass-through runner.
	runInTx func(ctx context.Context, fn store.TxFn) error
}

// NewService creates a new practice Service implementation backed by the
// given database and stores. If logger is nil, the default logger is used.
func NewService(
	db *sql.DB,
	exercises store.ExerciseStore,
	masteries store.MasteryStore,
	attempts store.AttemptStore,
	eval *evaluator.Evaluator,
	bumper leitner.Service,
	logger *slog.Logger,
) Service {
	if db == nil {
		panic("db cannot be nil")
	}
	if exercises == nil {
		panic("exercises cannot be nil")
	}
	if masteries == nil {
		panic("masteries cannot be nil")
	}
	if attempts == nil {
		panic("attempts cannot be nil")
	}
	if eval == nil {
		panic("eval cannot be nil")
	}
	if bumper == nil {
		panic("bumper cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		exercises: exercises,
		masteries: masteries,
		attempts:  attempts,
		eval:      eval,
		bumper:    bumper,
		logger:    logger.With(slog.String("component", "practice_service")),
		now:       func() time.Time { return time.Now().UTC() },
		runInTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}
}

// Submit implements Service.Submit.
func (s *serviceImpl) Submit(
	ctx context.Context,
	userID uuid.UUID,
	sub Submission,
) (*SubmissionResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing submission",
		slog.String("user_id", userID.String()),
		slog.Int64("exercise_id", sub.ExerciseID),
		slog.String("confidence", string(sub.Confidence)),
		slog.Int("hints_used", sub.HintsUsed))

	if !sub.Confidence.Valid() {
		log.Warn("unknown confidence value",
			slog.String("user_id", userID.String()),
			slog.String("confidence", string(sub.Confidence)))
		return nil, fmt.Errorf("%w: unknown confidence %q", ErrInvalidSubmission, sub.Confidence)
	}
	if sub.HintsUsed < 0 {
		return nil, fmt.Errorf("%w: hints_used cannot be negative", ErrInvalidSubmission)
	}

	ex, err := s.exercises.GetByID(ctx, sub.ExerciseID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("submission for unknown exercise",
				slog.String("user_id", userID.String()),
				slog.Int64("exercise_id", sub.ExerciseID))
			return nil, ErrExerciseNotFound
		}
		return nil, NewSubmitError("failed to load exercise", err)
	}

	now := s.now()
	var result *SubmissionResult

	err = s.runInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		attempts := s.attempts.WithTx(tx)
		masteries := s.masteries.WithTx(tx)

		// Seed the row before locking it. SELECT ... FOR UPDATE on a missing
		// row takes no lock, so two first submissions could otherwise both
		// pass the rate guard; the insert gives every transaction a row to
		// contend on, and a rolled-back transaction takes the seed with it.
		seed, err := domain.NewAttemptProgress(userID, ex.ID, now)
		if err != nil {
			return fmt.Errorf("failed to create attempt progress: %w", err)
		}
		if err := attempts.CreateIfAbsent(ctx, seed); err != nil {
			return fmt.Errorf("failed to seed attempt progress: %w", err)
		}

		// The row lock serializes the rate-guard check and the update per
		// (user, exercise); see store.AttemptStore.GetForUpdate.
		progress, err := attempts.GetForUpdate(ctx, userID, ex.ID)
		if err != nil {
			return fmt.Errorf("failed to load attempt progress: %w", err)
		}

		if progress.Throttled(now) {
			return ErrRateLimited
		}

		wasCompleted := progress.Completed
		firstAttempt := progress.Attempts == 0

		verdict := s.eval.Evaluate(ex, sub.Answer)

		progress.RecordSubmission(sub.Answer, verdict.Correct, now)
		if err := attempts.Upsert(ctx, progress); err != nil {
			return fmt.Errorf("failed to save attempt progress: %w", err)
		}

		// Same seed-then-lock dance for the skill row, so two concurrent
		// submissions in a brand-new skill bump sequentially instead of both
		// computing from proficiency zero.
		fresh, err := domain.NewMastery(userID, ex.Skill(), now)
		if err != nil {
			return fmt.Errorf("failed to create mastery: %w", err)
		}
		if err := masteries.CreateIfAbsent(ctx, fresh); err != nil {
			return fmt.Errorf("failed to seed mastery: %w", err)
		}

		mastery, err := masteries.GetForUpdate(ctx, userID, ex.Skill())
		if err != nil {
			return fmt.Errorf("failed to load mastery: %w", err)
		}

		bumped, err := s.bumper.Bump(mastery, leitner.Review{
			Correct:    verdict.Correct,
			Confidence: sub.Confidence,
			HintsUsed:  sub.HintsUsed,
			Attempts:   progress.Attempts,
		}, now)
		if err != nil {
			return fmt.Errorf("failed to bump mastery: %w", err)
		}
		if err := masteries.Upsert(ctx, bumped); err != nil {
			return fmt.Errorf("failed to save mastery: %w", err)
		}

		result = &SubmissionResult{
			Correct:     verdict.Correct,
			Attempts:    progress.Attempts,
			Feedback:    verdict.Feedback,
			XPDelta:     xpDelta(verdict.Correct, firstAttempt, wasCompleted, sub.Confidence, sub.HintsUsed),
			Proficiency: bumped.Proficiency,
			DueAt:       bumped.DueAt,
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			log.Debug("submission rate limited",
				slog.String("user_id", userID.String()),
				slog.Int64("exercise_id", ex.ID))
			return nil, ErrRateLimited
		}

		log.Error("failed to process submission",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int64("exercise_id", ex.ID))
		return nil, NewSubmitError("failed to process submission", err)
	}

	log.Debug("submission processed",
		slog.String("user_id", userID.String()),
		slog.Int64("exercise_id", ex.ID),
		slog.Bool("correct", result.Correct),
		slog.Int("attempts", result.Attempts),
		slog.Int("xp_delta", result.XPDelta),
		slog.Int("proficiency", result.Proficiency))

	return result, nil
}

// ReviewQueue implements Service.ReviewQueue.
func (s *serviceImpl) ReviewQueue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]ReviewItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	due, err := s.masteries.ListDue(ctx, userID, now)
	if err != nil {
		log.Error("failed to list due masteries",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewReviewQueueError("failed to list due skills", err)
	}

	queue := make([]ReviewItem, 0, len(due))
	for _, m := range due {
		ex, err := s.exercises.EasiestByCategory(ctx, m.Skill)
		if err != nil {
			if store.IsNotFoundError(err) {
				// A skill can outlive its source exercises; skip it.
				log.Debug("due skill has no exercises",
					slog.String("user_id", userID.String()),
					slog.String("skill", m.Skill))
				continue
			}
			return nil, NewReviewQueueError("failed to pick review exercise", err)
		}

		queue = append(queue, ReviewItem{
			Skill:       m.Skill,
			ExerciseID:  ex.ID,
			Question:    ex.Question,
			Type:        ex.Type,
			DueAt:       m.DueAt,
			Proficiency: m.Proficiency,
		})
	}

	log.Debug("review queue built",
		slog.String("user_id", userID.String()),
		slog.Int("due_skills", len(due)),
		slog.Int("queue_length", len(queue)))

	return queue, nil
}

// NextExercise implements Service.NextExercise.
func (s *serviceImpl) NextExercise(
	ctx context.Context,
	userID uuid.UUID,
	lastExerciseID *int64,
	lastCorrect *bool,
) (*Recommendation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	queue, err := s.ReviewQueue(ctx, userID, s.now())
	if err != nil {
		return nil, NewNextExerciseError("failed to check review queue", err)
	}
	if len(queue) > 0 {
		return &Recommendation{ExerciseID: queue[0].ExerciseID, Reason: ReasonReviewDue}, nil
	}

	if lastCorrect != nil && !*lastCorrect && lastExerciseID != nil {
		ex, err := s.exercises.GetByID(ctx, *lastExerciseID)
		switch {
		case err == nil:
			return &Recommendation{ExerciseID: ex.ID, Reason: ReasonRemediate}, nil
		case store.IsNotFoundError(err):
			// The missed exercise is gone; fall through to a fresh one.
		default:
			return nil, NewNextExerciseError("failed to load last exercise", err)
		}
	}

	ex, err := s.exercises.FirstUncompleted(ctx, userID)
	switch {
	case err == nil:
		return &Recommendation{ExerciseID: ex.ID, Reason: ReasonFresh}, nil
	case store.IsNotFoundError(err):
		// Everything completed, or the catalog is empty.
	default:
		return nil, NewNextExerciseError("failed to find fresh exercise", err)
	}

	ex, err = s.exercises.MostRecent(ctx)
	switch {
	case err == nil:
		return &Recommendation{ExerciseID: ex.ID, Reason: ReasonFallback}, nil
	case store.IsNotFoundError(err):
		log.Debug("exercise catalog is empty", slog.String("user_id", userID.String()))
		return nil, ErrNoExercises
	default:
		return nil, NewNextExerciseError("failed to find fallback exercise", err)
	}
}

// xpDelta computes the XP change for a submission. firstAttempt and
// wasCompleted describe the attempt record as it stood BEFORE this
// submission was applied.
func xpDelta(correct, firstAttempt, wasCompleted bool, confidence domain.Confidence, hintsUsed int) int {
	if wasCompleted && correct {
		// Re-answering an already-completed exercise earns nothing.
		return 0
	}

	delta := xpBaseIncorrect
	if correct {
		delta = xpBaseCorrect
		if firstAttempt {
			delta += xpFirstAttemptBonus
		}
	}

	delta -= xpPerHintPenalty * hintsUsed

	if correct && confidence == domain.ConfidenceLow {
		delta += xpLowConfidenceBonus
	}
	if !correct && confidence == domain.ConfidenceHigh {
		delta -= xpHighConfidencePain
	}

	return delta
}
