package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MasteryLevel is a coarse classification of a student's command of a skill
// topic, derived from the average historical assessment score.
type MasteryLevel string

// Possible mastery level values
const (
	MasteryLevelNovice     MasteryLevel = "novice"
	MasteryLevelDeveloping MasteryLevel = "developing"
	MasteryLevelProficient MasteryLevel = "proficient"
	MasteryLevelExpert     MasteryLevel = "expert"
)

// Common validation errors for MasteryRecord
var (
	ErrEmptyStudentID     = errors.New("mastery record student ID cannot be empty")
	ErrEmptySkillTopic    = errors.New("mastery record skill topic cannot be empty")
	ErrInvalidInterval    = errors.New("current interval must be at least 1 day")
	ErrInvalidEaseFactor  = errors.New("ease factor must be within [1.30, 2.50]")
	ErrInvalidRepetitions = errors.New("repetition count cannot be negative")
)

// Bounds shared between the record and the scheduling algorithm.
var (
	MinEaseFactor       = decimal.RequireFromString("1.30")
	MaxEaseFactor       = decimal.RequireFromString("2.50")
	DefaultEaseFactor   = decimal.RequireFromString("2.50")
	FullRetention       = decimal.RequireFromString("1.00")
	expertThreshold     = decimal.NewFromInt(80)
	proficientThreshold = decimal.NewFromInt(60)
	developingThreshold = decimal.NewFromInt(40)
)

// MasteryRecord tracks one student's mastery of one skill topic over time.
// It carries the SM-2 scheduling state (ease factor, repetition count,
// interval) together with running aggregate statistics. Each record is
// exclusively owned by its student/topic pair; the record itself performs
// no I/O and is mutated only through the sm2 scheduling service.
type MasteryRecord struct {
	StudentID            uuid.UUID       `json:"student_id"`
	SkillTopic           string          `json:"skill_topic"`
	EaseFactor           decimal.Decimal `json:"ease_factor"`           // Always within [1.30, 2.50]
	RepetitionCount      int             `json:"repetition_count"`      // Consecutive successful reviews
	CurrentIntervalDays  int             `json:"current_interval_days"` // Always >= 1
	LastQualityRating    *int            `json:"last_quality_rating"`   // 0..5, nil before first assessment
	NextReviewAt         time.Time       `json:"next_review_at"`        // When the topic should be reviewed next
	LastAssessedAt       time.Time       `json:"last_assessed_at"`      // Zero before first assessment
	AssessmentsCompleted int             `json:"assessments_completed"`
	AssessmentsPassed    int             `json:"assessments_passed"`
	BestScore            decimal.Decimal `json:"best_score"`
	AverageScore         decimal.Decimal `json:"average_score"`      // Running mean over all recorded scores
	MasteryLevel         MasteryLevel    `json:"mastery_level"`      // Derived purely from AverageScore
	RetentionEstimate    decimal.Decimal `json:"retention_estimate"` // Reset to 1.00 after each assessment
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// NewMasteryRecord creates a fresh record for a student engaging a topic for
// the first time. The topic is available for review immediately.
func NewMasteryRecord(studentID uuid.UUID, skillTopic string) (*MasteryRecord, error) {
	now := time.Now().UTC()
	record := &MasteryRecord{
		StudentID:            studentID,
		SkillTopic:           skillTopic,
		EaseFactor:           DefaultEaseFactor,
		RepetitionCount:      0,
		CurrentIntervalDays:  1,
		LastQualityRating:    nil,
		NextReviewAt:         now,
		LastAssessedAt:       time.Time{},
		AssessmentsCompleted: 0,
		AssessmentsPassed:    0,
		BestScore:            decimal.Zero,
		AverageScore:         decimal.Zero,
		MasteryLevel:         MasteryLevelNovice,
		RetentionEstimate:    FullRetention,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the MasteryRecord has valid data.
// Returns an error if any field fails validation.
func (r *MasteryRecord) Validate() error {
	if r.StudentID == uuid.Nil {
		return ErrEmptyStudentID
	}

	if r.SkillTopic == "" {
		return ErrEmptySkillTopic
	}

	if r.CurrentIntervalDays < 1 {
		return ErrInvalidInterval
	}

	if r.EaseFactor.Cmp(MinEaseFactor) < 0 || r.EaseFactor.Cmp(MaxEaseFactor) > 0 {
		return ErrInvalidEaseFactor
	}

	if r.RepetitionCount < 0 {
		return ErrInvalidRepetitions
	}

	return nil
}

// NeedsReview reports whether the topic is due for review at the given time.
// It is a pure read and safe to call at arbitrary frequency, e.g. from a
// due-items scan across many records.
func (r *MasteryRecord) NeedsReview(now time.Time) bool {
	return !now.Before(r.NextReviewAt)
}

// MasteryLevelFromAverage classifies an average score into a mastery tier.
// The tier is always derived fresh from the running average rather than
// adjusted incrementally, so repeated classification of the same average can
// never drift.
func MasteryLevelFromAverage(average decimal.Decimal) MasteryLevel {
	switch {
	case average.Cmp(expertThreshold) >= 0:
		return MasteryLevelExpert
	case average.Cmp(proficientThreshold) >= 0:
		return MasteryLevelProficient
	case average.Cmp(developingThreshold) >= 0:
		return MasteryLevelDeveloping
	default:
		return MasteryLevelNovice
	}
}
