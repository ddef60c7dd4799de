// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/studyloop/mastery-api/internal/api/shared"
	"github.com/studyloop/mastery-api/internal/domain"
	"github.com/studyloop/mastery-api/internal/domain/sm2"
	"github.com/studyloop/mastery-api/internal/platform/logger"
	"github.com/studyloop/mastery-api/internal/redact"
	"github.com/studyloop/mastery-api/internal/service"
)

// defaultDueReviewLimit applies when GET /reviews/due omits the limit query
// parameter.
const defaultDueReviewLimit = 20

// SubmitAssessmentRequest represents the request body for recording a
// completed assessment. Quality, when present, overrides the rating derived
// from the score.
type SubmitAssessmentRequest struct {
	Score   decimal.Decimal `json:"score"`
	Passed  bool            `json:"passed"`
	Quality *int            `json:"quality,omitempty" validate:"omitempty,min=0,max=5"`
}

// MasteryResponse represents the response data for a mastery record. Decimal
// fields are serialized as strings to preserve their fixed precision.
type MasteryResponse struct {
	StudentID            string     `json:"student_id"`
	SkillTopic           string     `json:"skill_topic"`
	MasteryLevel         string     `json:"mastery_level"`
	EaseFactor           string     `json:"ease_factor"`
	RepetitionCount      int        `json:"repetition_count"`
	CurrentIntervalDays  int        `json:"current_interval_days"`
	LastQualityRating    *int       `json:"last_quality_rating"`
	NextReviewAt         time.Time  `json:"next_review_at"`
	LastAssessedAt       *time.Time `json:"last_assessed_at"`
	AssessmentsCompleted int        `json:"assessments_completed"`
	AssessmentsPassed    int        `json:"assessments_passed"`
	BestScore            string     `json:"best_score"`
	AverageScore         string     `json:"average_score"`
	RetentionEstimate    string     `json:"retention_estimate"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// AssessmentHandler handles assessment and mastery HTTP requests.
type AssessmentHandler struct {
	assessmentService service.AssessmentService
	logger            *slog.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(
	assessmentService service.AssessmentService,
	logger *slog.Logger,
) *AssessmentHandler {
	if assessmentService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("assessmentService cannot be nil for AssessmentHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AssessmentHandler")
	}

	return &AssessmentHandler{
		assessmentService: assessmentService,
		logger:            logger.With(slog.String("component", "assessment_handler")),
	}
}

// SubmitAssessment handles POST /skills/{topic}/assessments requests.
// It records a completed assessment for the authenticated student and returns
// the updated mastery record.
func (h *AssessmentHandler) SubmitAssessment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	skillTopic := chi.URLParam(r, "topic")
	if skillTopic == "" {
		log.Warn("skill topic not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Skill topic is required")
		return
	}

	studentID, ok := r.Context().Value(shared.StudentIDContextKey).(uuid.UUID)
	if !ok || studentID == uuid.Nil {
		log.Warn("student ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Student ID not found or invalid")
		return
	}

	var req SubmitAssessmentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("student_id", studentID.String()),
			slog.String("skill_topic", skillTopic))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error",
			slog.String("error", redact.Error(err)),
			slog.String("student_id", studentID.String()),
			slog.String("skill_topic", skillTopic))
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	record, err := h.assessmentService.SubmitAssessment(r.Context(), studentID, skillTopic,
		sm2.Assessment{
			Score:   req.Score,
			Passed:  req.Passed,
			Quality: req.Quality,
		})
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to record assessment"
		}

		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("assessment recorded",
		slog.String("student_id", studentID.String()),
		slog.String("skill_topic", skillTopic),
		slog.String("mastery_level", string(record.MasteryLevel)))
	shared.RespondWithJSON(w, r, http.StatusOK, masteryToResponse(record))
}

// GetMastery handles GET /skills/{topic}/mastery requests.
// It returns the authenticated student's mastery record for the topic.
func (h *AssessmentHandler) GetMastery(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	skillTopic := chi.URLParam(r, "topic")
	if skillTopic == "" {
		log.Warn("skill topic not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Skill topic is required")
		return
	}

	studentID, ok := r.Context().Value(shared.StudentIDContextKey).(uuid.UUID)
	if !ok || studentID == uuid.Nil {
		log.Warn("student ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Student ID not found or invalid")
		return
	}

	record, err := h.assessmentService.GetMastery(r.Context(), studentID, skillTopic)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get mastery record"
		}

		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, masteryToResponse(record))
}

// ListDueReviews handles GET /reviews/due requests.
// It returns the topics due for review for the authenticated student,
// soonest first. The limit query parameter caps the result size.
func (h *AssessmentHandler) ListDueReviews(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := r.Context().Value(shared.StudentIDContextKey).(uuid.UUID)
	if !ok || studentID == uuid.Nil {
		log.Warn("student ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Student ID not found or invalid")
		return
	}

	limit := defaultDueReviewLimit
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil {
			log.Warn("invalid limit parameter", slog.String("limit", rawLimit))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	records, err := h.assessmentService.ListDueReviews(r.Context(), studentID, time.Now().UTC(), limit)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to list due reviews"
		}

		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	responses := make([]MasteryResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, masteryToResponse(record))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// masteryToResponse transforms a domain mastery record into its API
// representation.
func masteryToResponse(record *domain.MasteryRecord) MasteryResponse {
	var lastAssessedAt *time.Time
	if !record.LastAssessedAt.IsZero() {
		lastAssessedAt = &record.LastAssessedAt
	}

	return MasteryResponse{
		StudentID:            record.StudentID.String(),
		SkillTopic:           record.SkillTopic,
		MasteryLevel:         string(record.MasteryLevel),
		EaseFactor:           record.EaseFactor.String(),
		RepetitionCount:      record.RepetitionCount,
		CurrentIntervalDays:  record.CurrentIntervalDays,
		LastQualityRating:    record.LastQualityRating,
		NextReviewAt:         record.NextReviewAt,
		LastAssessedAt:       lastAssessedAt,
		AssessmentsCompleted: record.AssessmentsCompleted,
		AssessmentsPassed:    record.AssessmentsPassed,
		BestScore:            record.BestScore.String(),
		AverageScore:         record.AverageScore.String(),
		RetentionEstimate:    record.RetentionEstimate.String(),
		CreatedAt:            record.CreatedAt,
		UpdatedAt:            record.UpdatedAt,
	}
}
