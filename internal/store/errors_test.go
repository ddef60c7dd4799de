package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityErrorsWrapBaseErrors(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ErrMasteryRecordNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrMasteryRecordExists, ErrDuplicate)
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		err         error
		isNotFound  bool
		isDuplicate bool
	}{
		{
			name:       "base not found",
			err:        ErrNotFound,
			isNotFound: true,
		},
		{
			name:       "entity not found",
			err:        ErrMasteryRecordNotFound,
			isNotFound: true,
		},
		{
			name:       "wrapped entity not found",
			err:        fmt.Errorf("failed to get: %w", ErrMasteryRecordNotFound),
			isNotFound: true,
		},
		{
			name:        "entity duplicate",
			err:         ErrMasteryRecordExists,
			isDuplicate: true,
		},
		{
			name: "unrelated error",
			err:  errors.New("boom"),
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.isNotFound, IsNotFoundError(tc.err))
			assert.Equal(t, tc.isDuplicate, IsDuplicateError(tc.err))
		})
	}
}
