package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/mastery-api/internal/domain"
	"github.com/studyloop/mastery-api/internal/store"
)

// MasteryStore implements the store.MasteryStore interface using a
// PostgreSQL database as the storage backend.
type MasteryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewMasteryStore creates a new PostgreSQL implementation of the
// MasteryStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewMasteryStore(db store.DBTX, logger *slog.Logger) *MasteryStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &MasteryStore{
		db:     db,
		logger: logger.With(slog.String("component", "mastery_store")),
	}
}

// Ensure MasteryStore implements store.MasteryStore interface
var _ store.MasteryStore = (*MasteryStore)(nil)

const masteryColumns = `
	student_id, skill_topic, ease_factor, repetition_count,
	current_interval_days, last_quality_rating, next_review_at,
	last_assessed_at, assessments_completed, assessments_passed,
	best_score, average_score, mastery_level, retention_estimate,
	created_at, updated_at`

// Create implements store.MasteryStore.Create
func (s *MasteryStore) Create(ctx context.Context, record *domain.MasteryRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO mastery_records (` + masteryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.StudentID,
		record.SkillTopic,
		record.EaseFactor,
		record.RepetitionCount,
		record.CurrentIntervalDays,
		nullQuality(record.LastQualityRating),
		record.NextReviewAt,
		nullTime(record.LastAssessedAt),
		record.AssessmentsCompleted,
		record.AssessmentsPassed,
		record.BestScore,
		record.AverageScore,
		string(record.MasteryLevel),
		record.RetentionEstimate,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrMasteryRecordExists
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		s.logger.Error("failed to create mastery record",
			"student_id", record.StudentID,
			"skill_topic", record.SkillTopic,
			"error", err)
		return fmt.Errorf("failed to create mastery record: %w", err)
	}

	return nil
}

// Get implements store.MasteryStore.Get
func (s *MasteryStore) Get(
	ctx context.Context,
	studentID uuid.UUID,
	skillTopic string,
) (*domain.MasteryRecord, error) {
	query := `
		SELECT ` + masteryColumns + `
		FROM mastery_records
		WHERE student_id = $1 AND skill_topic = $2
	`

	return s.getOne(ctx, query, studentID, skillTopic)
}

// GetForUpdate implements store.MasteryStore.GetForUpdate
func (s *MasteryStore) GetForUpdate(
	ctx context.Context,
	studentID uuid.UUID,
	skillTopic string,
) (*domain.MasteryRecord, error) {
	query := `
		SELECT ` + masteryColumns + `
		FROM mastery_records
		WHERE student_id = $1 AND skill_topic = $2
		FOR UPDATE
	`

	return s.getOne(ctx, query, studentID, skillTopic)
}

func (s *MasteryStore) getOne(
	ctx context.Context,
	query string,
	studentID uuid.UUID,
	skillTopic string,
) (*domain.MasteryRecord, error) {
	row := s.db.QueryRowContext(ctx, query, studentID, skillTopic)

	record, err := scanMasteryRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMasteryRecordNotFound
		}
		s.logger.Error("failed to get mastery record",
			"student_id", studentID,
			"skill_topic", skillTopic,
			"error", err)
		return nil, fmt.Errorf("failed to get mastery record: %w", err)
	}

	return record, nil
}

// Update implements store.MasteryStore.Update
func (s *MasteryStore) Update(ctx context.Context, record *domain.MasteryRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE mastery_records
		SET ease_factor = $3,
		    repetition_count = $4,
		    current_interval_days = $5,
		    last_quality_rating = $6,
		    next_review_at = $7,
		    last_assessed_at = $8,
		    assessments_completed = $9,
		    assessments_passed = $10,
		    best_score = $11,
		    average_score = $12,
		    mastery_level = $13,
		    retention_estimate = $14,
		    updated_at = $15
		WHERE student_id = $1 AND skill_topic = $2
	`

	result, err := s.db.ExecContext(ctx, query,
		record.StudentID,
		record.SkillTopic,
		record.EaseFactor,
		record.RepetitionCount,
		record.CurrentIntervalDays,
		nullQuality(record.LastQualityRating),
		record.NextReviewAt,
		nullTime(record.LastAssessedAt),
		record.AssessmentsCompleted,
		record.AssessmentsPassed,
		record.BestScore,
		record.AverageScore,
		string(record.MasteryLevel),
		record.RetentionEstimate,
		record.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		s.logger.Error("failed to update mastery record",
			"student_id", record.StudentID,
			"skill_topic", record.SkillTopic,
			"error", err)
		return fmt.Errorf("failed to update mastery record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrMasteryRecordNotFound
	}

	return nil
}

// ListDue implements store.MasteryStore.ListDue
func (s *MasteryStore) ListDue(
	ctx context.Context,
	studentID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.MasteryRecord, error) {
	query := `
		SELECT ` + masteryColumns + `
		FROM mastery_records
		WHERE student_id = $1 AND next_review_at <= $2
		ORDER BY next_review_at ASC, skill_topic ASC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, studentID, now, limit)
	if err != nil {
		s.logger.Error("failed to query due mastery records",
			"student_id", studentID,
			"error", err)
		return nil, fmt.Errorf("failed to query due mastery records: %w", err)
	}
	defer rows.Close()

	var records []*domain.MasteryRecord
	for rows.Next() {
		record, err := scanMasteryRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mastery record row: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mastery record rows: %w", err)
	}

	return records, nil
}

// WithTx implements store.MasteryStore.WithTx
func (s *MasteryStore) WithTx(tx *sql.Tx) store.MasteryStore {
	return &MasteryStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMasteryRecord(row rowScanner) (*domain.MasteryRecord, error) {
	var (
		record       domain.MasteryRecord
		quality      sql.NullInt16
		assessedAt   sql.NullTime
		masteryLevel string
	)

	err := row.Scan(
		&record.StudentID,
		&record.SkillTopic,
		&record.EaseFactor,
		&record.RepetitionCount,
		&record.CurrentIntervalDays,
		&quality,
		&record.NextReviewAt,
		&assessedAt,
		&record.AssessmentsCompleted,
		&record.AssessmentsPassed,
		&record.BestScore,
		&record.AverageScore,
		&masteryLevel,
		&record.RetentionEstimate,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if quality.Valid {
		q := int(quality.Int16)
		record.LastQualityRating = &q
	}
	if assessedAt.Valid {
		record.LastAssessedAt = assessedAt.Time
	}
	record.MasteryLevel = domain.MasteryLevel(masteryLevel)

	return &record, nil
}

func nullQuality(quality *int) sql.NullInt16 {
	if quality == nil {
		return sql.NullInt16{}
	}
	return sql.NullInt16{Int16: int16(*quality), Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
