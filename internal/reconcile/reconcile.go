// Package reconcile merges query results from the local and remote backends
// into one consistent, deduplicated view. Merge is a pure function of its two
// labeled inputs: given the same local and remote slices it always produces
// the same output, no matter which backend answered first.
package reconcile

import (
	"sort"
	"time"

	"github.com/loopjournal/loop/internal/datex"
	"github.com/loopjournal/loop/internal/models"
)

// Merge deduplicates entries from both backends by id. When the same id
// appears in both, the copy with the strictly greater LastRetrieved survives
// (nil counts as the earliest possible time). On a tie, including both nil,
// the local copy wins. The result is ordered newest first; equal timestamps
// fall back to id order so the output is deterministic.
func Merge(local, remote []models.Entry) []models.Entry {
	byID := make(map[string]models.Entry, len(local)+len(remote))

	for _, e := range local {
		keep(byID, e)
	}
	for _, e := range remote {
		keep(byID, e)
	}

	result := make([]models.Entry, 0, len(byID))
	for _, e := range byID {
		result = append(result, e)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].Id < result[j].Id
	})
	return result
}

// keep replaces a prior copy only when the candidate's LastRetrieved is
// strictly greater. First writer wins ties, which is why Merge feeds local
// entries first.
func keep(byID map[string]models.Entry, e models.Entry) {
	prior, ok := byID[e.Id]
	if !ok || e.RetrievedAfter(&prior) {
		byID[e.Id] = e
	}
}

// MergeDays unions two day lists into one set of normalized day starts,
// most recent first. Days are deduplicated by calendar day, not by entry id.
func MergeDays(local, remote []time.Time) []time.Time {
	seen := make(map[int64]time.Time, len(local)+len(remote))
	for _, d := range local {
		day := datex.DayStart(d)
		seen[day.Unix()] = day
	}
	for _, d := range remote {
		day := datex.DayStart(d)
		seen[day.Unix()] = day
	}

	result := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].After(result[j]) })
	return result
}

// GroupByDay reduces merged entries to per-day activity counts, most recent
// day first.
func GroupByDay(entries []models.Entry) []models.ActivityDay {
	counts := make(map[int64]*models.ActivityDay)
	for _, e := range entries {
		day := datex.DayStart(e.Timestamp)
		key := day.Unix()
		if a, ok := counts[key]; ok {
			a.EntryCount++
			continue
		}
		counts[key] = &models.ActivityDay{Day: day, EntryCount: 1}
	}

	result := make([]models.ActivityDay, 0, len(counts))
	for _, a := range counts {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Day.After(result[j].Day) })
	return result
}

// SummarizeMonths reduces merged entries to per-month summaries, most recent
// month first.
func SummarizeMonths(entries []models.Entry) []models.MonthSummary {
	type key struct {
		year  int
		month time.Month
	}

	summaries := make(map[key]*models.MonthSummary)
	activeDays := make(map[key]map[int]struct{})

	for _, e := range entries {
		k := key{year: e.Timestamp.Year(), month: e.Timestamp.Month()}
		s, ok := summaries[k]
		if !ok {
			s = &models.MonthSummary{Year: k.year, Month: k.month}
			summaries[k] = s
			activeDays[k] = make(map[int]struct{})
		}
		s.EntryCount++
		activeDays[k][e.Timestamp.Day()] = struct{}{}
	}

	result := make([]models.MonthSummary, 0, len(summaries))
	for k, s := range summaries {
		s.ActiveDays = len(activeDays[k])
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].Month > result[j].Month
	})
	return result
}
