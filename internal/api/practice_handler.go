// Package api provides HTTP handlers for the API.
package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/praxislab/praxis-api/internal/api/shared"
	"github.com/praxislab/praxis-api/internal/domain"
	"github.com/praxislab/praxis-api/internal/platform/logger"
	"github.com/praxislab/praxis-api/internal/service/practice"
)

// PracticeHandler handles practice-related HTTP requests
type PracticeHandler struct {
	practiceService practice.Service
	logger          *slog.Logger
}

// NewPracticeHandler creates a new PracticeHandler
func NewPracticeHandler(practiceService practice.Service, logger *slog.Logger) *PracticeHandler {
	if practiceService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("practiceService cannot be nil for PracticeHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PracticeHandler")
	}

	return &PracticeHandler{
		practiceService: practiceService,
		logger:          logger.With(slog.String("component", "practice_handler")),
	}
}

// authenticatedUserID extracts the user ID set by the auth middleware, or
// writes a 401 and returns false.
func authenticatedUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// SubmitAnswer handles POST /practice/submit requests.
// It evaluates the learner's answer, records the attempt, and returns the
// verdict with the updated mastery state.
func (h *PracticeHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(w, r, log)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("failed to decode submit request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.practiceService.Submit(r.Context(), userID, practice.Submission{
		ExerciseID: req.ExerciseID,
		Answer:     req.Answer,
		Confidence: domain.Confidence(req.Confidence),
		HintsUsed:  req.HintsUsed,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitResponse{
		Correct:     result.Correct,
		Attempts:    result.Attempts,
		Feedback:    result.Feedback,
		XPDelta:     result.XPDelta,
		Proficiency: result.Proficiency,
		DueAt:       result.DueAt,
	})
}

// GetReviewQueue handles GET /practice/review-queue requests.
// An optional "now" query parameter (RFC 3339) overrides the evaluation
// time, which lets clients preview upcoming reviews.
func (h *PracticeHandler) GetReviewQueue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(w, r, log)
	if !ok {
		return
	}

	now := time.Now().UTC()
	if raw := r.URL.Query().Get("now"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid now parameter, expected RFC 3339")
			return
		}
		now = parsed.UTC()
	}

	queue, err := h.practiceService.ReviewQueue(r.Context(), userID, now)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	items := make([]ReviewItemResponse, 0, len(queue))
	for _, item := range queue {
		items = append(items, ReviewItemResponse{
			Skill:       item.Skill,
			ExerciseID:  item.ExerciseID,
			Question:    item.Question,
			Type:        string(item.Type),
			DueAt:       item.DueAt,
			Proficiency: item.Proficiency,
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReviewQueueResponse{
		Due:   items,
		Count: len(items),
	})
}

// GetNextExercise handles POST /practice/next requests.
// The body is optional; without it the recommendation ignores the learner's
// previous submission.
func (h *PracticeHandler) GetNextExercise(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(w, r, log)
	if !ok {
		return
	}

	var req NextExerciseRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		log.Debug("failed to decode next exercise request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	rec, err := h.practiceService.NextExercise(r.Context(), userID, req.LastExerciseID, req.LastCorrect)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NextExerciseResponse{
		ExerciseID: rec.ExerciseID,
		Reason:     string(rec.Reason),
	})
}
