// Package retry implements the bounded, fixed-delay retry loop used by
// scrapers whose portals fail transiently. There is no backoff curve on
// purpose: these portals either recover within seconds or not at all, and
// the empirically chosen delay lives with each scraper.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Config defines the retry behavior.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Delay is the fixed pause between attempts.
	Delay time.Duration
}

// Permanent wraps an error that must not be retried (e.g. rejected
// credentials: hammering a login form only gets the account locked).
type Permanent struct {
	Err error
}

func (p Permanent) Error() string { return p.Err.Error() }
func (p Permanent) Unwrap() error { return p.Err }

// Do runs fn up to cfg.MaxAttempts times, pausing cfg.Delay between
// attempts. It stops early on success, on a Permanent error, or when ctx is
// done.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				log.Debug().Int("attempts", attempt).Msg("Retry succeeded")
			}
			return nil
		}
		lastErr = err

		var perm Permanent
		if errors.As(err, &perm) {
			log.Debug().Err(err).Msg("Error is not retryable")
			return perm.Err
		}

		if attempt < cfg.MaxAttempts {
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_attempts", cfg.MaxAttempts).
				Dur("delay", cfg.Delay).
				Msg("Attempt failed, retrying after delay")

			select {
			case <-time.After(cfg.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	log.Warn().Int("attempts", cfg.MaxAttempts).Err(lastErr).Msg("All attempts exhausted")
	return fmt.Errorf("failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
