package sm2

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/studyloop/mastery-api/internal/domain"
)

// Common errors
var (
	ErrNilRecord      = errors.New("mastery record cannot be nil")
	ErrInvalidScore   = errors.New("score must be within [0, 100]")
	ErrInvalidQuality = errors.New("quality rating must be within [0, 5]")
)

var (
	minScore = decimal.Zero
	maxScore = decimal.NewFromInt(100)
)

// Assessment carries the inputs of a single completed assessment event.
// Quality, when non-nil, overrides the score-derived quality rating.
type Assessment struct {
	Score   decimal.Decimal
	Passed  bool
	Quality *int
}

// Service defines the interface for mastery scheduling operations.
type Service interface {
	// RecordAssessment computes a new mastery record for a completed
	// assessment. The input record is never modified; validation failures
	// are reported before any derived state is computed, so a rejected call
	// leaves nothing to roll back.
	RecordAssessment(
		record *domain.MasteryRecord,
		assessment Assessment,
		now time.Time,
	) (*domain.MasteryRecord, error)

	// ScoreToQuality maps a percentage score onto the 0..5 quality scale.
	// Exposed on the service so reporting collaborators can reuse the exact
	// mapping without constructing an assessment.
	ScoreToQuality(score decimal.Decimal) (int, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// RecordAssessment implements the Service interface.
func (s *defaultService) RecordAssessment(
	record *domain.MasteryRecord,
	assessment Assessment,
	now time.Time,
) (*domain.MasteryRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}

	if assessment.Score.Cmp(minScore) < 0 || assessment.Score.Cmp(maxScore) > 0 {
		return nil, ErrInvalidScore
	}

	if assessment.Quality != nil && (*assessment.Quality < 0 || *assessment.Quality > 5) {
		return nil, ErrInvalidQuality
	}

	// Resolve the effective quality: an explicit rating from the caller wins
	// over the score-derived one.
	quality := ScoreToQuality(assessment.Score)
	if assessment.Quality != nil {
		quality = *assessment.Quality
	}

	newRecord := calculateNextRecord(
		record,
		assessment.Score,
		assessment.Passed,
		quality,
		now,
		s.params,
	)

	return newRecord, nil
}

// ScoreToQuality implements the Service interface.
func (s *defaultService) ScoreToQuality(score decimal.Decimal) (int, error) {
	if score.Cmp(minScore) < 0 || score.Cmp(maxScore) > 0 {
		return 0, ErrInvalidScore
	}

	return ScoreToQuality(score), nil
}
