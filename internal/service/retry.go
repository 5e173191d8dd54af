package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/admissions-backend/internal/repository"
)

const (
	retryInitialDelay = 5 * time.Millisecond
	retryMaxDelay     = 200 * time.Millisecond
)

// txRetrier re-runs a unit of work that lost a transaction conflict.
// Business-rule errors pass straight through; only repository.ErrConflict is retried.
type txRetrier struct {
	maxAttempts int
	log         zerolog.Logger
}

func newTxRetrier(maxAttempts int, log zerolog.Logger) txRetrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return txRetrier{maxAttempts: maxAttempts, log: log}
}

func (r txRetrier) do(ctx context.Context, op string, fn func() error) error {
	delay := retryInitialDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, repository.ErrConflict) {
			return err
		}

		if attempt >= r.maxAttempts {
			r.log.Warn().Err(err).Str("op", op).Int("attempts", attempt).Msg("Transaction conflict persisted")
			return fmt.Errorf("%s: %w", op, ErrConcurrentModification)
		}

		r.log.Debug().Err(err).Str("op", op).Int("attempt", attempt).Msg("Transaction conflict, retrying")

		// full jitter
		wait := time.Duration(rand.Int64N(int64(delay))) + time.Millisecond
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay = min(delay*2, retryMaxDelay)
	}
}
