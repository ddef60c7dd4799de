package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/mastery-api/internal/domain"
)

// MasteryStore defines the interface for mastery record persistence.
type MasteryStore interface {
	// Create saves a new mastery record.
	// Returns ErrMasteryRecordExists if a record already exists for the
	// student/topic pair, and domain validation errors for invalid data.
	Create(ctx context.Context, record *domain.MasteryRecord) error

	// Get retrieves the record for a student/topic pair.
	// Returns ErrMasteryRecordNotFound if no record exists.
	// NOTE: this method takes no row lock; use GetForUpdate when the caller
	// intends to write the row back.
	Get(ctx context.Context, studentID uuid.UUID, skillTopic string) (*domain.MasteryRecord, error)

	// GetForUpdate retrieves the record with a row-level lock using
	// SELECT ... FOR UPDATE. Assessments for the same pair must be serialized,
	// so any load-modify-store cycle goes through this method inside a
	// transaction.
	// Returns ErrMasteryRecordNotFound if no record exists.
	GetForUpdate(ctx context.Context, studentID uuid.UUID, skillTopic string) (*domain.MasteryRecord, error)

	// Update modifies an existing record, identified by its student/topic pair.
	// Returns ErrMasteryRecordNotFound if no record exists.
	Update(ctx context.Context, record *domain.MasteryRecord) error

	// ListDue returns up to limit records for the student whose next review
	// time is at or before now, ordered soonest first.
	ListDue(ctx context.Context, studentID uuid.UUID, now time.Time, limit int) ([]*domain.MasteryRecord, error)

	// WithTx returns a MasteryStore bound to the provided transaction so that
	// multiple operations can share one atomic scope. The transaction is
	// created and managed by the caller.
	WithTx(tx *sql.Tx) MasteryStore
}
