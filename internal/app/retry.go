package app

import (
	"time"

	"github.com/jaakkos/blackboard/internal/domain"
)

// Busy-retry policy applied at the dispatch layer only. Core operations
// fail fast; adapters wrap their calls in Retry.
const (
	retryAttempts = 3
	retryBase     = 50 * time.Millisecond
)

// Retry runs fn, retrying with exponential backoff while it fails with
// DatabaseBusy. Every other failure kind surfaces immediately.
func Retry(fn func() error) error {
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(retryBase << (attempt - 1))
		}
		err = fn()
		if err == nil || !domain.IsBusy(err) {
			return err
		}
	}
	return err
}
