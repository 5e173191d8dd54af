package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/stemsi/admissions-backend/internal/repository"
)

func TestTxRetrier_RetriesConflictsUntilSuccess(t *testing.T) {
	r := newTxRetrier(3, zerolog.Nop())
	calls := 0

	err := r.do(context.Background(), "op", func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("commit: %w", repository.ErrConflict)
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestTxRetrier_DoesNotRetryBusinessErrors(t *testing.T) {
	r := newTxRetrier(5, zerolog.Nop())
	calls := 0

	err := r.do(context.Background(), "op", func() error {
		calls++
		return &QuotaExceededError{Limit: 2, Active: 2}
	})

	var qe *QuotaExceededError
	assert.ErrorAs(t, err, &qe)
	assert.Equal(t, 1, calls)
}

func TestTxRetrier_Exhaustion(t *testing.T) {
	r := newTxRetrier(2, zerolog.Nop())
	calls := 0

	err := r.do(context.Background(), "submit application", func() error {
		calls++
		return repository.ErrConflict
	})

	assert.ErrorIs(t, err, ErrConcurrentModification)
	assert.NotErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, 2, calls)
}

func TestTxRetrier_StopsOnCancel(t *testing.T) {
	r := newTxRetrier(10, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := r.do(ctx, "op", func() error {
		calls++
		cancel()
		return repository.ErrConflict
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
