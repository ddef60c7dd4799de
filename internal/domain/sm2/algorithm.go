package sm2

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/studyloop/mastery-api/internal/domain"
)

// Quality rating boundaries in the 0..100 score space.
var (
	perfectThreshold    = decimal.NewFromInt(95)
	hesitationThreshold = decimal.NewFromInt(80)
	effortfulThreshold  = decimal.NewFromInt(60)
	easyRecallThreshold = decimal.NewFromInt(40)
	hintedThreshold     = decimal.NewFromInt(20)
)

// Coefficients of the SM-2 ease factor adjustment.
var (
	efBonus            = decimal.RequireFromString("0.1")
	efLinearPenalty    = decimal.RequireFromString("0.08")
	efQuadraticPenalty = decimal.RequireFromString("0.02")
)

// The quality rating below which a review counts as a failure.
const passingQuality = 3

// ScoreToQuality maps a percentage score onto the 0..5 SM-2 quality scale.
// The mapping is total over [0, 100]:
//
//	>= 95        5 (perfect recall)
//	80 .. 94.99  4 (correct with hesitation)
//	60 .. 79.99  3 (correct with effort)
//	40 .. 59.99  2 (incorrect, easy recall of the answer)
//	20 .. 39.99  1 (incorrect, recalled after a hint)
//	<  20        0 (complete blackout)
//
// Scores outside [0, 100] are a caller precondition violation; the Service
// validates ranges before reaching this function.
func ScoreToQuality(score decimal.Decimal) int {
	switch {
	case score.Cmp(perfectThreshold) >= 0:
		return 5
	case score.Cmp(hesitationThreshold) >= 0:
		return 4
	case score.Cmp(effortfulThreshold) >= 0:
		return 3
	case score.Cmp(easyRecallThreshold) >= 0:
		return 2
	case score.Cmp(hintedThreshold) >= 0:
		return 1
	default:
		return 0
	}
}

// calculateNewEaseFactor applies the SM-2 ease factor formula for the given
// quality rating:
//
//	EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// The same formula runs on both the success and failure branches; only the
// interval and repetition handling differ between them. The result is clamped
// to [params.MinEaseFactor, params.MaxEaseFactor]. Notable consequences:
// q=4 leaves the ease factor exactly unchanged, q=5 adds 0.1 before clamping,
// and q=0 subtracts 0.8, which reaches the floor quickly under repeated
// failure. All arithmetic is exact decimal arithmetic, so the q=4 identity
// holds bit for bit across any number of updates.
func calculateNewEaseFactor(currentEF decimal.Decimal, quality int, params *Params) decimal.Decimal {
	lapse := decimal.NewFromInt(int64(5 - quality))
	adjustment := efBonus.Sub(lapse.Mul(efLinearPenalty.Add(lapse.Mul(efQuadraticPenalty))))

	newEF := currentEF.Add(adjustment)

	if newEF.Cmp(params.MinEaseFactor) < 0 {
		newEF = params.MinEaseFactor
	}
	if newEF.Cmp(params.MaxEaseFactor) > 0 {
		newEF = params.MaxEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the next review interval in days on the
// success path, keyed by the post-increment repetition count:
//
//	r = 1   first interval (1 day)
//	r = 2   second interval (6 days)
//	r >= 3  round(previousInterval * EF'), using the just-updated ease factor
//
// Rounding is half-away-from-zero (conventional round-half-up for the
// positive values in play here); see DESIGN.md for the rationale.
func calculateNewInterval(
	previousInterval int,
	repetitionCount int,
	easeFactor decimal.Decimal,
	params *Params,
) int {
	switch {
	case repetitionCount <= 1:
		return params.FirstIntervalDays
	case repetitionCount == 2:
		return params.SecondIntervalDays
	default:
		grown := decimal.NewFromInt(int64(previousInterval)).Mul(easeFactor)
		return int(grown.Round(0).IntPart())
	}
}

// calculateNextRecord creates a new MasteryRecord with all derived state
// updated for a completed assessment. It follows the immutable update
// pattern: the input record is never modified, a fully populated copy is
// returned instead.
//
// The steps run in a fixed order:
//  1. Increment completion counters.
//  2. Update best and running-average scores.
//  3. Store the effective quality rating.
//  4. Branch on quality: failures reset repetition and interval, successes
//     grow the interval; both branches apply the ease factor formula.
//  5. Reclassify the mastery tier from the new average.
//  6. Reset the retention estimate to 1.00.
//  7. Stamp the assessment time.
func calculateNextRecord(
	record *domain.MasteryRecord,
	score decimal.Decimal,
	passed bool,
	quality int,
	now time.Time,
	params *Params,
) *domain.MasteryRecord {
	newRecord := &domain.MasteryRecord{
		StudentID:            record.StudentID,
		SkillTopic:           record.SkillTopic,
		EaseFactor:           record.EaseFactor,
		RepetitionCount:      record.RepetitionCount,
		CurrentIntervalDays:  record.CurrentIntervalDays,
		LastQualityRating:    record.LastQualityRating,
		NextReviewAt:         record.NextReviewAt,
		LastAssessedAt:       record.LastAssessedAt,
		AssessmentsCompleted: record.AssessmentsCompleted,
		AssessmentsPassed:    record.AssessmentsPassed,
		BestScore:            record.BestScore,
		AverageScore:         record.AverageScore,
		MasteryLevel:         record.MasteryLevel,
		RetentionEstimate:    record.RetentionEstimate,
		CreatedAt:            record.CreatedAt,
		UpdatedAt:            record.UpdatedAt,
	}

	// Step 1: completion counters
	newRecord.AssessmentsCompleted++
	if passed {
		newRecord.AssessmentsPassed++
	}

	// Step 2: best score and running mean over all assessments including this one
	if score.Cmp(newRecord.BestScore) > 0 {
		newRecord.BestScore = score
	}
	previousCount := decimal.NewFromInt(int64(record.AssessmentsCompleted))
	newCount := decimal.NewFromInt(int64(newRecord.AssessmentsCompleted))
	newRecord.AverageScore = record.AverageScore.
		Mul(previousCount).
		Add(score).
		Div(newCount).
		Round(2)

	// Step 3: effective quality
	newRecord.LastQualityRating = &quality

	// Step 4: ease factor, repetition count, interval
	newRecord.EaseFactor = calculateNewEaseFactor(record.EaseFactor, quality, params)

	if quality < passingQuality {
		newRecord.RepetitionCount = 0
		newRecord.CurrentIntervalDays = params.FailureIntervalDays
	} else {
		newRecord.RepetitionCount++
		newRecord.CurrentIntervalDays = calculateNewInterval(
			record.CurrentIntervalDays,
			newRecord.RepetitionCount,
			newRecord.EaseFactor,
			params,
		)
	}
	newRecord.NextReviewAt = now.AddDate(0, 0, newRecord.CurrentIntervalDays)

	// Step 5: mastery tier, derived fresh from the new average
	newRecord.MasteryLevel = domain.MasteryLevelFromAverage(newRecord.AverageScore)

	// Step 6: retention resets after every assessment; decay between
	// assessments is computed by an external collaborator
	newRecord.RetentionEstimate = domain.FullRetention

	// Step 7: timestamps
	newRecord.LastAssessedAt = now
	newRecord.UpdatedAt = now

	return newRecord
}
