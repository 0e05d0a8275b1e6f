package service

import (
	"errors"
	"time"

	"github.com/spec-kit/civic-report-service/internal/store"
)

const retryBackoff = 25 * time.Millisecond

// retryTransient runs fn up to attempts times, backing off between
// tries. Lookup misses and fingerprint conflicts are outcomes, not
// failures, so they return immediately; only infrastructure errors
// consume the retry budget.
func retryTransient(attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if errors.Is(err, store.ErrTicketNotFound) || errors.Is(err, store.ErrFingerprintConflict) {
			return err
		}
		time.Sleep(retryBackoff * time.Duration(i+1))
	}
	return err
}
