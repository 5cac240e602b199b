package streak

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopjournal/loop/internal/datex"
	"github.com/loopjournal/loop/internal/logging"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)

// fakeDays serves a fixed active-day set with the same paging contract as
// the fanout coordinator.
type fakeDays struct {
	days []time.Time // sorted most recent first
}

func (f *fakeDays) MergedRecentActiveDays(_ context.Context, before *time.Time, limit int) ([]time.Time, error) {
	var out []time.Time
	for _, d := range f.days {
		if before != nil && !d.Before(datex.DayStart(*before)) {
			continue
		}
		out = append(out, d)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeDays) MergedDistinctDayCount(_ context.Context) (int, error) {
	return len(f.days), nil
}

func daysAgo(n ...int) []time.Time {
	today := datex.DayStart(now)
	out := make([]time.Time, 0, len(n))
	for _, d := range n {
		out = append(out, today.AddDate(0, 0, -d))
	}
	return out
}

func compute(t *testing.T, src DaySource) (current, longest, distinct int) {
	t.Helper()
	c := NewCalculator(src, DefaultWalkBound, logging.NewNopLogger())
	s, err := c.Compute(context.Background(), now)
	require.NoError(t, err)
	return s.CurrentStreak, s.LongestStreak, s.DistinctDays
}

func TestCompute_TodayCountsTowardCurrentStreak(t *testing.T) {
	// Active on D, D-1, D-2; nothing on D-3.
	current, longest, distinct := compute(t, &fakeDays{days: daysAgo(0, 1, 2)})

	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
	assert.Equal(t, 3, distinct)
}

func TestCompute_RunEndingYesterdayStillCounts(t *testing.T) {
	// No entry yet today: the streak holds until the day closes.
	current, _, _ := compute(t, &fakeDays{days: daysAgo(1, 2, 3)})
	assert.Equal(t, 3, current)
}

func TestCompute_GapBreaksCurrentStreak(t *testing.T) {
	// Last activity two days ago.
	current, longest, _ := compute(t, &fakeDays{days: daysAgo(2, 3, 4, 5)})
	assert.Equal(t, 0, current)
	assert.Equal(t, 4, longest)
}

func TestCompute_LongestRunMayPredateCurrentRun(t *testing.T) {
	// Current run of 2, older run of 5.
	current, longest, _ := compute(t, &fakeDays{days: daysAgo(0, 1, 10, 11, 12, 13, 14)})
	assert.Equal(t, 2, current)
	assert.Equal(t, 5, longest)
}

func TestCompute_EmptyHistory(t *testing.T) {
	current, longest, distinct := compute(t, &fakeDays{})
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, longest)
	assert.Equal(t, 0, distinct)
}

func TestCompute_WalkBoundTruncatesRuns(t *testing.T) {
	// Ten consecutive active days, but the walk is bounded at five.
	src := &fakeDays{days: daysAgo(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)}
	c := NewCalculator(src, 5, logging.NewNopLogger())

	s, err := c.Compute(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 6, s.CurrentStreak) // days 0..5 inclusive
	assert.Equal(t, 6, s.LongestStreak)
	assert.Equal(t, 10, s.DistinctDays) // distinct days ignore the bound
}

func TestCompute_PagesThroughLongHistories(t *testing.T) {
	// More active days than one page; make sure paging walks on.
	var days []int
	for i := 0; i < 7; i++ {
		days = append(days, i)
	}
	src := &fakeDays{days: daysAgo(days...)}
	c := NewCalculator(src, 3, logging.NewNopLogger())

	s, err := c.Compute(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 4, s.CurrentStreak) // bounded at walkBound 3: days 0..3
}
