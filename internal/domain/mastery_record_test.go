package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMasteryRecordDefaults(t *testing.T) {
	t.Parallel()

	studentID := uuid.New()
	record, err := NewMasteryRecord(studentID, "geometry.triangles")
	require.NoError(t, err)

	assert.Equal(t, studentID, record.StudentID)
	assert.Equal(t, "geometry.triangles", record.SkillTopic)
	assert.True(t, record.EaseFactor.Equal(DefaultEaseFactor))
	assert.Equal(t, 0, record.RepetitionCount)
	assert.Equal(t, 1, record.CurrentIntervalDays)
	assert.Nil(t, record.LastQualityRating)
	assert.Zero(t, record.AssessmentsCompleted)
	assert.Zero(t, record.AssessmentsPassed)
	assert.True(t, record.BestScore.IsZero())
	assert.True(t, record.AverageScore.IsZero())
	assert.Equal(t, MasteryLevelNovice, record.MasteryLevel)
	assert.True(t, record.RetentionEstimate.Equal(FullRetention))
	assert.True(t, record.LastAssessedAt.IsZero())

	// A freshly created record is available for review immediately.
	assert.True(t, record.NeedsReview(record.NextReviewAt))
}

func TestNewMasteryRecordValidation(t *testing.T) {
	t.Parallel()

	_, err := NewMasteryRecord(uuid.Nil, "geometry.triangles")
	assert.ErrorIs(t, err, ErrEmptyStudentID)

	_, err = NewMasteryRecord(uuid.New(), "")
	assert.ErrorIs(t, err, ErrEmptySkillTopic)
}

func TestMasteryRecordValidate(t *testing.T) {
	t.Parallel()

	newValid := func() *MasteryRecord {
		record, err := NewMasteryRecord(uuid.New(), "geometry.triangles")
		require.NoError(t, err)
		return record
	}

	testCases := []struct {
		name     string
		mutate   func(*MasteryRecord)
		expected error
	}{
		{
			name:     "interval below one day",
			mutate:   func(r *MasteryRecord) { r.CurrentIntervalDays = 0 },
			expected: ErrInvalidInterval,
		},
		{
			name:     "ease factor below floor",
			mutate:   func(r *MasteryRecord) { r.EaseFactor = decimal.RequireFromString("1.29") },
			expected: ErrInvalidEaseFactor,
		},
		{
			name:     "ease factor above ceiling",
			mutate:   func(r *MasteryRecord) { r.EaseFactor = decimal.RequireFromString("2.51") },
			expected: ErrInvalidEaseFactor,
		},
		{
			name:     "negative repetition count",
			mutate:   func(r *MasteryRecord) { r.RepetitionCount = -1 },
			expected: ErrInvalidRepetitions,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			record := newValid()
			tc.mutate(record)
			assert.ErrorIs(t, record.Validate(), tc.expected)
		})
	}
}

func TestNeedsReview(t *testing.T) {
	t.Parallel()

	record, err := NewMasteryRecord(uuid.New(), "geometry.triangles")
	require.NoError(t, err)

	due := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	record.NextReviewAt = due

	assert.False(t, record.NeedsReview(due.Add(-time.Second)))
	assert.True(t, record.NeedsReview(due))
	assert.True(t, record.NeedsReview(due.Add(time.Hour)))

	// Repeated calls never mutate the record.
	before := *record
	for i := 0; i < 100; i++ {
		record.NeedsReview(due.Add(time.Duration(i) * time.Minute))
	}
	assert.Equal(t, before, *record)
}
