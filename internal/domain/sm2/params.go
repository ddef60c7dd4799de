package sm2

import (
	"github.com/shopspring/decimal"

	"github.com/studyloop/mastery-api/internal/domain"
)

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Ease factor limits
	MinEaseFactor decimal.Decimal
	MaxEaseFactor decimal.Decimal

	// Fixed intervals for the first two successful repetitions
	FirstIntervalDays  int
	SecondIntervalDays int

	// Interval applied whenever a review fails (quality < 3)
	FailureIntervalDays int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values leave the corresponding default untouched.
type ParamsConfig struct {
	MinEaseFactor float64
	MaxEaseFactor float64

	FirstIntervalDays  int
	SecondIntervalDays int
}

// NewDefaultParams creates a new Params instance with the standard SM-2
// values: ease factor bounded to [1.30, 2.50] and the 1/6-day opening
// interval ladder.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: domain.MinEaseFactor,
		MaxEaseFactor: domain.MaxEaseFactor,

		FirstIntervalDays:  1,
		SecondIntervalDays: 6,

		FailureIntervalDays: 1,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = decimal.NewFromFloat(config.MinEaseFactor).Round(2)
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = decimal.NewFromFloat(config.MaxEaseFactor).Round(2)
	}

	if config.FirstIntervalDays > 0 {
		params.FirstIntervalDays = config.FirstIntervalDays
	}
	if config.SecondIntervalDays > 0 {
		params.SecondIntervalDays = config.SecondIntervalDays
	}

	return params
}
