// Package streak derives activity-streak statistics from the merged entry
// set. Both streak values come from a single backward day walk over the
// union of active days, so a day recorded on only one backend still counts,
// and a gap covered by neither backend still breaks the run.
package streak

import (
	"context"
	"time"

	"github.com/loopjournal/loop/internal/datex"
	"github.com/loopjournal/loop/internal/logging"
	"github.com/loopjournal/loop/internal/models"
)

// DefaultWalkBound caps the backward walk at one year. Runs that extend
// beyond the bound are truncated there, which makes CurrentStreak and
// LongestStreak approximate for histories longer than the bound. This is a
// deliberate cost cap, not silent data loss: DistinctDays still covers the
// whole history.
const DefaultWalkBound = 365

// DaySource supplies merged distinct-day data. The fanout coordinator
// satisfies it.
type DaySource interface {
	MergedRecentActiveDays(ctx context.Context, before *time.Time, limit int) ([]time.Time, error)
	MergedDistinctDayCount(ctx context.Context) (int, error)
}

// Calculator computes LoopingStreak aggregates.
type Calculator struct {
	src       DaySource
	walkBound int
	log       logging.Logger
}

func NewCalculator(src DaySource, walkBound int, log logging.Logger) *Calculator {
	if walkBound <= 0 {
		walkBound = DefaultWalkBound
	}
	return &Calculator{src: src, walkBound: walkBound, log: log.With("component", "streak")}
}

// activeDaysWithinBound collects the merged active-day set no older than the
// walk bound, paging backward until the bound or the history is exhausted.
func (c *Calculator) activeDaysWithinBound(ctx context.Context, now time.Time) (map[int64]struct{}, error) {
	boundStart := datex.DayStart(now).AddDate(0, 0, -c.walkBound)
	active := make(map[int64]struct{})

	var before *time.Time
	for {
		page, err := c.src.MergedRecentActiveDays(ctx, before, c.walkBound)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return active, nil
		}
		for _, d := range page {
			if d.Before(boundStart) {
				return active, nil
			}
			active[datex.DayStart(d).Unix()] = struct{}{}
		}
		last := page[len(page)-1]
		before = &last
	}
}

// Compute returns the streak aggregates as of now.
//
// CurrentStreak counts consecutive active days ending at today when today is
// active, or at yesterday otherwise: an unbroken run keeps its streak until
// the current day closes without an entry.
func (c *Calculator) Compute(ctx context.Context, now time.Time) (models.LoopingStreak, error) {
	active, err := c.activeDaysWithinBound(ctx, now)
	if err != nil {
		return models.LoopingStreak{}, err
	}

	distinct, err := c.src.MergedDistinctDayCount(ctx)
	if err != nil {
		return models.LoopingStreak{}, err
	}

	today := datex.DayStart(now)
	isActive := func(daysAgo int) bool {
		_, ok := active[today.AddDate(0, 0, -daysAgo).Unix()]
		return ok
	}

	current := 0
	start := 0
	if !isActive(0) {
		// Today has no entry yet; a run ending yesterday still counts.
		start = 1
	}
	for i := start; i <= c.walkBound && isActive(i); i++ {
		current++
	}

	longest := 0
	run := 0
	for i := 0; i <= c.walkBound; i++ {
		if isActive(i) {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	return models.LoopingStreak{
		CurrentStreak: current,
		LongestStreak: longest,
		DistinctDays:  distinct,
	}, nil
}
