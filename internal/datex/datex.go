// Package datex provides the calendar arithmetic shared by reconciliation,
// scoring and streak computation. All day-level operations normalize to local
// midnight so that two entries recorded on the same local day always collapse
// to the same key.
package datex

import (
	"time"

	"github.com/loopjournal/loop/internal/common"
)

// DayStart truncates t to midnight in t's location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayStart(a).Equal(DayStart(b))
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return dayNumber(b) - dayNumber(a)
}

// dayNumber maps t's calendar day to a DST-independent ordinal. Dividing a
// local-midnight difference by 24h would come up one short across a
// spring-forward transition.
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// MonthsElapsed returns the number of whole calendar months from `from` to
// `to`. A month counts only once the day-of-month has been reached, so an
// entry from Jan 15 is 1 month old on Feb 15 and 0 months old on Feb 14.
func MonthsElapsed(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// SameDayOfMonth reports whether a and b share a day-of-month, the anniversary
// condition used by scoring.
func SameDayOfMonth(a, b time.Time) bool {
	return a.Day() == b.Day()
}

// Range is a half-open interval [From, To) over entry timestamps.
type Range struct {
	From time.Time
	To   time.Time
}

// Validate checks that the bounds are set and ordered.
func (r Range) Validate() error {
	if r.From.IsZero() || r.To.IsZero() || !r.From.Before(r.To) {
		return common.ErrDateRange
	}
	return nil
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// DayRange returns the range covering the single calendar day of t.
func DayRange(t time.Time) Range {
	start := DayStart(t)
	return Range{From: start, To: start.AddDate(0, 0, 1)}
}
