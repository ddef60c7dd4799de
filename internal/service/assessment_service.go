// Package service hosts the application services that sit between the HTTP
// layer and the stores.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/mastery-api/internal/domain"
	"github.com/studyloop/mastery-api/internal/domain/sm2"
	"github.com/studyloop/mastery-api/internal/platform/logger"
	"github.com/studyloop/mastery-api/internal/store"
)

// maxDueReviewLimit caps a single due-items scan.
const maxDueReviewLimit = 100

// AssessmentService records completed assessments against mastery records
// and answers review-scheduling questions.
type AssessmentService interface {
	// SubmitAssessment records one completed assessment for a student/topic
	// pair and returns the updated mastery record. A record is created on
	// first engagement. Assessments for the same pair are serialized through
	// a row-level lock; the scheduling update itself performs no I/O.
	SubmitAssessment(
		ctx context.Context,
		studentID uuid.UUID,
		skillTopic string,
		assessment sm2.Assessment,
	) (*domain.MasteryRecord, error)

	// GetMastery returns the mastery record for a student/topic pair.
	// Returns ErrMasteryNotFound if the student has never engaged the topic.
	GetMastery(
		ctx context.Context,
		studentID uuid.UUID,
		skillTopic string,
	) (*domain.MasteryRecord, error)

	// ListDueReviews returns up to limit topics due for review at the given
	// time, soonest first.
	ListDueReviews(
		ctx context.Context,
		studentID uuid.UUID,
		now time.Time,
		limit int,
	) ([]*domain.MasteryRecord, error)
}

// Verify interface compliance at compile time
var _ AssessmentService = (*assessmentServiceImpl)(nil)

// assessmentServiceImpl implements the AssessmentService interface.
type assessmentServiceImpl struct {
	db           *sql.DB
	masteryStore store.MasteryStore
	scheduler    sm2.Service
	logger       *slog.Logger

	// runInTx defaults to store.RunInTransaction; tests substitute a stub
	// that skips the real database.
	runInTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewAssessmentService creates a new AssessmentService implementation.
func NewAssessmentService(
	db *sql.DB,
	masteryStore store.MasteryStore,
	scheduler sm2.Service,
	logger *slog.Logger,
) AssessmentService {
	if db == nil {
		panic("db cannot be nil")
	}
	if masteryStore == nil {
		panic("masteryStore cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &assessmentServiceImpl{
		db:           db,
		masteryStore: masteryStore,
		scheduler:    scheduler,
		logger:       logger.With(slog.String("component", "assessment_service")),
		runInTx:      store.RunInTransaction,
	}
}

// SubmitAssessment implements AssessmentService.SubmitAssessment.
func (s *assessmentServiceImpl) SubmitAssessment(
	ctx context.Context,
	studentID uuid.UUID,
	skillTopic string,
	assessment sm2.Assessment,
) (*domain.MasteryRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("recording assessment",
		slog.String("student_id", studentID.String()),
		slog.String("skill_topic", skillTopic),
		slog.String("score", assessment.Score.String()),
		slog.Bool("passed", assessment.Passed))

	var updatedRecord *domain.MasteryRecord
	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		masteryStore := s.masteryStore.WithTx(tx)
		created := false

		// Load with a row lock so concurrent submissions for the same
		// student/topic pair are serialized by the database.
		record, err := masteryStore.GetForUpdate(ctx, studentID, skillTopic)
		if err != nil {
			if !errors.Is(err, store.ErrMasteryRecordNotFound) {
				return fmt.Errorf("failed to load mastery record: %w", err)
			}
			// First engagement with this topic.
			record, err = domain.NewMasteryRecord(studentID, skillTopic)
			if err != nil {
				return fmt.Errorf("failed to create mastery record: %w", err)
			}
			created = true
		}

		newRecord, err := s.scheduler.RecordAssessment(record, assessment, time.Now().UTC())
		if err != nil {
			// Validation failures (invalid score or quality) propagate
			// unwrapped so the API can map them to a client error.
			return err
		}

		if created {
			if err := masteryStore.Create(ctx, newRecord); err != nil {
				return fmt.Errorf("failed to save mastery record: %w", err)
			}
		} else {
			if err := masteryStore.Update(ctx, newRecord); err != nil {
				return fmt.Errorf("failed to update mastery record: %w", err)
			}
		}

		updatedRecord = newRecord
		return nil
	})
	if err != nil {
		if errors.Is(err, sm2.ErrInvalidScore) || errors.Is(err, sm2.ErrInvalidQuality) {
			return nil, err
		}

		log.Error("failed to record assessment",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()),
			slog.String("skill_topic", skillTopic))
		return nil, fmt.Errorf("failed to record assessment: %w", err)
	}

	log.Debug("assessment recorded",
		slog.String("student_id", studentID.String()),
		slog.String("skill_topic", skillTopic),
		slog.String("ease_factor", updatedRecord.EaseFactor.String()),
		slog.Int("interval_days", updatedRecord.CurrentIntervalDays),
		slog.Time("next_review_at", updatedRecord.NextReviewAt))

	return updatedRecord, nil
}

// GetMastery implements AssessmentService.GetMastery.
func (s *assessmentServiceImpl) GetMastery(
	ctx context.Context,
	studentID uuid.UUID,
	skillTopic string,
) (*domain.MasteryRecord, error) {
	record, err := s.masteryStore.Get(ctx, studentID, skillTopic)
	if err != nil {
		if errors.Is(err, store.ErrMasteryRecordNotFound) {
			return nil, ErrMasteryNotFound
		}
		return nil, fmt.Errorf("failed to get mastery record: %w", err)
	}

	return record, nil
}

// ListDueReviews implements AssessmentService.ListDueReviews.
func (s *assessmentServiceImpl) ListDueReviews(
	ctx context.Context,
	studentID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.MasteryRecord, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	if limit > maxDueReviewLimit {
		limit = maxDueReviewLimit
	}

	records, err := s.masteryStore.ListDue(ctx, studentID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reviews: %w", err)
	}

	return records, nil
}

