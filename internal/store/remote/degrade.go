package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/loopjournal/loop/internal/common"
	"github.com/loopjournal/loop/internal/datex"
	"github.com/loopjournal/loop/internal/logging"
	"github.com/loopjournal/loop/internal/models"
	"github.com/loopjournal/loop/internal/store"
)

// Store wraps the raw repository with the best-effort contract of the remote
// backend: transient failures are retried with exponential backoff, and read
// failures that survive the retry budget degrade to an empty result instead
// of an error. Mutations surface common.ErrStoreUnavailable so callers can
// tell an outage from a missing entry.
type Store struct {
	inner      store.EntryStore
	log        logging.Logger
	maxRetries uint64
	baseDelay  time.Duration
}

// NewStore wraps inner with the degradation policy.
func NewStore(inner store.EntryStore, log logging.Logger) *Store {
	return &Store{
		inner:      inner,
		log:        log.With("store", "remote"),
		maxRetries: 2,
		baseDelay:  100 * time.Millisecond,
	}
}

// withRetry runs fn under the retry budget. Validation and not-found errors
// are terminal: retrying cannot change them.
func (s *Store) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewExponential(s.baseDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrDateRange) {
			return err
		}
		return retry.RetryableError(err)
	})
}

func (s *Store) FetchEntriesByDay(ctx context.Context, day time.Time) ([]models.Entry, error) {
	return s.FetchEntriesInRange(ctx, datex.DayRange(day))
}

func (s *Store) FetchEntriesInRange(ctx context.Context, r datex.Range) ([]models.Entry, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var result []models.Entry
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = s.inner.FetchEntriesInRange(ctx, r)
		return innerErr
	})
	if err != nil {
		s.log.Warn(ctx, "remote read degraded to empty result", "op", "FetchEntriesInRange", "error", err)
		return nil, nil
	}
	return result, nil
}

func (s *Store) FetchRecentActiveDays(ctx context.Context, before *time.Time, limit int) ([]time.Time, error) {
	var result []time.Time
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = s.inner.FetchRecentActiveDays(ctx, before, limit)
		return innerErr
	})
	if err != nil {
		s.log.Warn(ctx, "remote read degraded to empty result", "op", "FetchRecentActiveDays", "error", err)
		return nil, nil
	}
	return result, nil
}

func (s *Store) CountDistinctActiveDays(ctx context.Context) (int, error) {
	var count int
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var innerErr error
		count, innerErr = s.inner.CountDistinctActiveDays(ctx)
		return innerErr
	})
	if err != nil {
		s.log.Warn(ctx, "remote read degraded to zero count", "op", "CountDistinctActiveDays", "error", err)
		return 0, nil
	}
	return count, nil
}

func (s *Store) InsertEntry(ctx context.Context, e *models.Entry) error {
	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.inner.InsertEntry(ctx, e)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) UpdateTranscript(ctx context.Context, id, transcript string) (bool, error) {
	var found bool
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var innerErr error
		found, innerErr = s.inner.UpdateTranscript(ctx, id, transcript)
		return innerErr
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return found, nil
}

func (s *Store) SetLastRetrieved(ctx context.Context, id string, t time.Time) (bool, error) {
	var found bool
	err := s.withRetry(ctx, func(ctx context.Context) error {
		var innerErr error
		found, innerErr = s.inner.SetLastRetrieved(ctx, id, t)
		return innerErr
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return found, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.inner.DeleteEntry(ctx, id)
	})
	if err == nil || errors.Is(err, common.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
}
