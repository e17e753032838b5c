package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/praxislab/praxis-api/internal/api"
	"github.com/praxislab/praxis-api/internal/api/shared"
	"github.com/praxislab/praxis-api/internal/service/practice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPracticeService is a configurable practice.Service for handler tests.
type mockPracticeService struct {
	submitFn      func(ctx context.Context, userID uuid.UUID, sub practice.Submission) (*practice.SubmissionResult, error)
	reviewQueueFn func(ctx context.Context, userID uuid.UUID, now time.Time) ([]practice.ReviewItem, error)
	nextFn        func(ctx context.Context, userID uuid.UUID, lastID *int64, lastCorrect *bool) (*practice.Recommendation, error)
}

func (m *mockPracticeService) Submit(ctx context.Context, userID uuid.UUID, sub practice.Submission) (*practice.SubmissionResult, error) {
	return m.submitFn(ctx, userID, sub)
}

func (m *mockPracticeService) ReviewQueue(ctx context.Context, userID uuid.UUID, now time.Time) ([]practice.ReviewItem, error) {
	return m.reviewQueueFn(ctx, userID, now)
}

func (m *mockPracticeService) NextExercise(ctx context.Context, userID uuid.UUID, lastID *int64, lastCorrect *bool) (*practice.Recommendation, error) {
	return m.nextFn(ctx, userID, lastID, lastCorrect)
}

func authedRequest(t *testing.T, method, target string, body []byte, userID uuid.UUID) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func TestSubmitAnswer(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	dueAt := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		svc := &mockPracticeService{
			submitFn: func(_ context.Context, gotUser uuid.UUID, sub practice.Submission) (*practice.SubmissionResult, error) {
				assert.Equal(t, userID, gotUser)
				assert.Equal(t, int64(7), sub.ExerciseID)
				return &practice.SubmissionResult{
					Correct:     true,
					Attempts:    1,
					Feedback:    "Correct, well done!",
					XPDelta:     20,
					Proficiency: 12,
					DueAt:       dueAt,
				}, nil
			},
		}
		handler := api.NewPracticeHandler(svc, slog.Default())

		body := []byte(`{"exercise_id": 7, "answer": "1629", "confidence": "high"}`)
		req := authedRequest(t, http.MethodPost, "/practice/submit", body, userID)
		rec := httptest.NewRecorder()

		handler.SubmitAnswer(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.SubmitResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Correct)
		assert.Equal(t, 1, resp.Attempts)
		assert.Equal(t, 20, resp.XPDelta)
		assert.Equal(t, 12, resp.Proficiency)
		assert.True(t, dueAt.Equal(resp.DueAt))
	})

	t.Run("rate limited", func(t *testing.T) {
		t.Parallel()

		svc := &mockPracticeService{
			submitFn: func(context.Context, uuid.UUID, practice.Submission) (*practice.SubmissionResult, error) {
				return nil, practice.ErrRateLimited
			},
		}
		handler := api.NewPracticeHandler(svc, slog.Default())

		body := []byte(`{"exercise_id": 7, "answer": "1629"}`)
		req := authedRequest(t, http.MethodPost, "/practice/submit", body, userID)
		rec := httptest.NewRecorder()

		handler.SubmitAnswer(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotContains(t, rec.Body.String(), "resubmitted too soon",
			"internal error strings must not leak")
	})

	t.Run("exercise not found", func(t *testing.T) {
		t.Parallel()

		svc := &mockPracticeService{
			submitFn: func(context.Context, uuid.UUID, practice.Submission) (*practice.SubmissionResult, error) {
				return nil, practice.ErrExerciseNotFound
			},
		}
		handler := api.NewPracticeHandler(svc, slog.Default())

		body := []byte(`{"exercise_id": 999, "answer": "1629"}`)
		req := authedRequest(t, http.MethodPost, "/practice/submit", body, userID)
		rec := httptest.NewRecorder()

		handler.SubmitAnswer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		handler := api.NewPracticeHandler(&mockPracticeService{}, slog.Default())

		req := authedRequest(t, http.MethodPost, "/practice/submit", []byte(`{not json`), userID)
		rec := httptest.NewRecorder()

		handler.SubmitAnswer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing exercise id", func(t *testing.T) {
		t.Parallel()

		handler := api.NewPracticeHandler(&mockPracticeService{}, slog.Default())

		req := authedRequest(t, http.MethodPost, "/practice/submit", []byte(`{"answer": "1629"}`), userID)
		rec := httptest.NewRecorder()

		handler.SubmitAnswer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown confidence", func(t *testing.T) {
		t.Parallel()

		handler := api.NewPracticeHandler(&mockPracticeService{}, slog.Default())

		body := []byte(`{"exercise_id": 7, "answer": "1629", "confidence": "certain"}`)
		req := authedRequest(t, http.MethodPost, "/practice/submit", body, userID)
		rec := httptest.NewRecorder()

		handler.SubmitAnswer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		handler := api.NewPracticeHandler(&mockPracticeService{}, slog.Default())

		req := httptest.NewRequest(http.MethodPost, "/practice/submit", bytes.NewReader([]byte(`{}`)))
		rec := httptest.NewRecorder()

		handler.SubmitAnswer(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetReviewQueue(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		dueAt := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
		svc := &mockPracticeService{
			reviewQueueFn: func(_ context.Context, gotUser uuid.UUID, _ time.Time) ([]practice.ReviewItem, error) {
				assert.Equal(t, userID, gotUser)
				return []practice.ReviewItem{
					{
						Skill:       "budgeting",
						ExerciseID:  3,
						Question:    "Allocate your income",
						Type:        "budget_allocation",
						DueAt:       dueAt,
						Proficiency: 40,
					},
				}, nil
			},
		}
		handler := api.NewPracticeHandler(svc, slog.Default())

		req := authedRequest(t, http.MethodGet, "/practice/review-queue", nil, userID)
		rec := httptest.NewRecorder()

		handler.GetReviewQueue(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.ReviewQueueResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
		require.Len(t, resp.Due, 1)
		assert.Equal(t, "budgeting", resp.Due[0].Skill)
		assert.Equal(t, int64(3), resp.Due[0].ExerciseID)
	})

	t.Run("empty queue", func(t *testing.T) {
		t.Parallel()

		svc := &mockPracticeService{
			reviewQueueFn: func(context.Context, uuid.UUID, time.Time) ([]practice.ReviewItem, error) {
				return nil, nil
			},
		}
		handler := api.NewPracticeHandler(svc, slog.Default())

		req := authedRequest(t, http.MethodGet, "/practice/review-queue", nil, userID)
		rec := httptest.NewRecorder()

		handler.GetReviewQueue(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.ReviewQueueResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Count)
		assert.Empty(t, resp.Due)
	})

	t.Run("now parameter forwarded", func(t *testing.T) {
		t.Parallel()

		want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		svc := &mockPracticeService{
			reviewQueueFn: func(_ context.Context, _ uuid.UUID, now time.Time) ([]practice.ReviewItem, error) {
				assert.True(t, want.Equal(now))
				return nil, nil
			},
		}
		handler := api.NewPracticeHandler(svc, slog.Default())

		req := authedRequest(t, http.MethodGet, "/practice/review-queue?now=2026-04-01T00:00:00Z", nil, userID)
		rec := httptest.NewRecorder()

		handler.GetReviewQueue(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid now parameter", func(t *testing.T) {
		t.Parallel()

		handler := api.NewPracticeHandler(&mockPracticeService{}, slog.Default())

		req := authedRequest(t, http.MethodGet, "/practice/review-queue?now=yesterday", nil, userID)
		rec := httptest.NewRecorder()

		handler.GetReviewQueue(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetNextExercise(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("remediation inputs forwarded", func(t *testing.T) {
		t.Parallel()

		svc := &mockPracticeService{
			nextFn: func(_ context.Context, _ uuid.UUID, lastID *int64, lastCorrect *bool) (*practice.Recommendation, error) {
				require.NotNil(t, lastID)
				require.NotNil(t, lastCorrect)
				assert.Equal(t, int64(5), *lastID)
				assert.False(t, *lastCorrect)
				return &practice.Recommendation{ExerciseID: 5, Reason: practice.ReasonRemediate}, nil
			},
		}
		handler := api.NewPracticeHandler(svc, slog.Default())

		body := []byte(`{"last_exercise_id": 5, "last_correct": false}`)
		req := authedRequest(t, http.MethodPost, "/practice/next", body, userID)
		rec := httptest.NewRecorder()

		handler.GetNextExercise(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.NextExerciseResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(5), resp.ExerciseID)
		assert.Equal(t, "remediate", resp.Reason)
	})

	t.Run("empty body allowed", func(t *testing.T) {
		t.Parallel()

		svc := &mockPracticeService{
			nextFn: func(_ context.Context, _ uuid.UUID, lastID *int64, lastCorrect *bool) (*practice.Recommendation, error) {
				assert.Nil(t, lastID)
				assert.Nil(t, lastCorrect)
				return &practice.Recommendation{ExerciseID: 1, Reason: practice.ReasonFresh}, nil
			},
		}
		handler := api.NewPracticeHandler(svc, slog.Default())

		req := authedRequest(t, http.MethodPost, "/practice/next", nil, userID)
		rec := httptest.NewRecorder()

		handler.GetNextExercise(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.NextExerciseResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "fresh", resp.Reason)
	})

	t.Run("empty catalog", func(t *testing.T) {
		t.Parallel()

		svc := &mockPracticeService{
			nextFn: func(context.Context, uuid.UUID, *int64, *bool) (*practice.Recommendation, error) {
				return nil, practice.ErrNoExercises
			},
		}
		handler := api.NewPracticeHandler(svc, slog.Default())

		req := authedRequest(t, http.MethodPost, "/practice/next", nil, userID)
		rec := httptest.NewRecorder()

		handler.GetNextExercise(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "No exercises available", resp.Error)
	})
}
