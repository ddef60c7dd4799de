package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	uniqueErr := &pgconn.PgError{Code: uniqueViolationCode}
	assert.True(t, isUniqueViolation(uniqueErr))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert failed: %w", uniqueErr)))

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: checkViolationCode}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}

func TestIsCheckViolation(t *testing.T) {
	t.Parallel()

	checkErr := &pgconn.PgError{Code: checkViolationCode}
	assert.True(t, isCheckViolation(checkErr))
	assert.True(t, isCheckViolation(fmt.Errorf("update failed: %w", checkErr)))

	assert.False(t, isCheckViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, isCheckViolation(errors.New("boom")))
}
