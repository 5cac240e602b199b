// Package fanout issues the local and remote store queries concurrently and
// feeds both result sets to the reconciler. It is the only component that
// reads from both backends directly; scoring and streak computation always
// consume already-merged data.
package fanout

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/loopjournal/loop/internal/datex"
	"github.com/loopjournal/loop/internal/logging"
	"github.com/loopjournal/loop/internal/models"
	"github.com/loopjournal/loop/internal/reconcile"
	"github.com/loopjournal/loop/internal/store"
	"github.com/loopjournal/loop/internal/store/router"
)

// activeDayPageSize bounds a single distinct-day query when walking a
// store's full history.
const activeDayPageSize = 512

// Coordinator fans a merged read out to both backends, joins the results and
// merges them. A failed remote read arrives here already degraded to an
// empty slice, so the merge simply sees fewer entries.
//
// Repeated day reads are served from an in-memory cache that any mutation
// must invalidate.
type Coordinator struct {
	router *router.Router
	log    logging.Logger

	mu         sync.RWMutex
	dayEntries map[int64][]models.Entry
}

func New(r *router.Router, log logging.Logger) *Coordinator {
	return &Coordinator{
		router:     r,
		log:        log.With("component", "fanout"),
		dayEntries: make(map[int64][]models.Entry),
	}
}

// fanOut runs the local and remote legs concurrently and joins them. The
// remote leg is skipped entirely when sync is disabled. Only the local leg
// can fail the operation.
func (c *Coordinator) fanOut(ctx context.Context,
	localFn func(ctx context.Context, s store.EntryStore) error,
	remoteFn func(ctx context.Context, s store.EntryStore) error) error {

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return localFn(ctx, c.router.Local())
	})

	if remote := c.router.Remote(); remote != nil {
		g.Go(func() error {
			return remoteFn(ctx, remote)
		})
	}

	return g.Wait()
}

// MergedEntriesByDay returns the reconciled entries for one calendar day.
// The result is the caller's to mutate; the cache keeps its own copy.
func (c *Coordinator) MergedEntriesByDay(ctx context.Context, day time.Time) ([]models.Entry, error) {
	key := datex.DayStart(day).Unix()

	c.mu.RLock()
	cached, ok := c.dayEntries[key]
	c.mu.RUnlock()
	if ok {
		return cloneEntries(cached), nil
	}

	merged, err := c.MergedEntriesInRange(ctx, datex.DayRange(day))
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.dayEntries[key] = merged
	c.mu.Unlock()
	return cloneEntries(merged), nil
}

func cloneEntries(entries []models.Entry) []models.Entry {
	if entries == nil {
		return nil
	}
	out := make([]models.Entry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].LastRetrieved != nil {
			t := *out[i].LastRetrieved
			out[i].LastRetrieved = &t
		}
	}
	return out
}

// MergedEntriesInRange returns the reconciled entries with timestamps in
// [From, To), newest first.
func (c *Coordinator) MergedEntriesInRange(ctx context.Context, r datex.Range) ([]models.Entry, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var localEntries, remoteEntries []models.Entry
	err := c.fanOut(ctx,
		func(ctx context.Context, s store.EntryStore) error {
			var err error
			localEntries, err = s.FetchEntriesInRange(ctx, r)
			return err
		},
		func(ctx context.Context, s store.EntryStore) error {
			var err error
			remoteEntries, err = s.FetchEntriesInRange(ctx, r)
			return err
		})
	if err != nil {
		return nil, err
	}

	return reconcile.Merge(localEntries, remoteEntries), nil
}

// MergedRecentActiveDays returns up to limit distinct active calendar days
// across both backends, most recent first.
func (c *Coordinator) MergedRecentActiveDays(ctx context.Context, before *time.Time, limit int) ([]time.Time, error) {
	var localDays, remoteDays []time.Time
	err := c.fanOut(ctx,
		func(ctx context.Context, s store.EntryStore) error {
			var err error
			localDays, err = s.FetchRecentActiveDays(ctx, before, limit)
			return err
		},
		func(ctx context.Context, s store.EntryStore) error {
			var err error
			remoteDays, err = s.FetchRecentActiveDays(ctx, before, limit)
			return err
		})
	if err != nil {
		return nil, err
	}

	merged := reconcile.MergeDays(localDays, remoteDays)
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// MergedDistinctDayCount counts calendar days with at least one entry in
// either backend. A day present in both counts once, so the per-store count
// queries cannot simply be added; instead the full day sets are walked in
// pages and unioned.
func (c *Coordinator) MergedDistinctDayCount(ctx context.Context) (int, error) {
	var localDays, remoteDays []time.Time
	err := c.fanOut(ctx,
		func(ctx context.Context, s store.EntryStore) error {
			var err error
			localDays, err = fetchAllActiveDays(ctx, s)
			return err
		},
		func(ctx context.Context, s store.EntryStore) error {
			var err error
			remoteDays, err = fetchAllActiveDays(ctx, s)
			return err
		})
	if err != nil {
		return 0, err
	}

	return len(reconcile.MergeDays(localDays, remoteDays)), nil
}

// fetchAllActiveDays pages backward through a store's distinct active days.
func fetchAllActiveDays(ctx context.Context, s store.EntryStore) ([]time.Time, error) {
	var all []time.Time
	var before *time.Time
	for {
		page, err := s.FetchRecentActiveDays(ctx, before, activeDayPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < activeDayPageSize {
			return all, nil
		}
		last := page[len(page)-1]
		before = &last
	}
}

// Invalidate drops the day cache. Every mutation path must call it.
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	c.dayEntries = make(map[int64][]models.Entry)
	c.mu.Unlock()
}
