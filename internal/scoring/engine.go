// Package scoring ranks merged entries as resurfacing candidates using a
// weighted, spaced-repetition-style heuristic: prefer thematically and
// temporally significant past entries, actively avoid repeating anything
// shown recently, and prefer an honest "no memory available" over a poor
// match.
package scoring

import (
	"context"
	"time"

	"github.com/loopjournal/loop/internal/common"
	"github.com/loopjournal/loop/internal/datex"
	"github.com/loopjournal/loop/internal/logging"
	"github.com/loopjournal/loop/internal/models"
)

// Window is a day-bounded candidate window [MinDaysAgo, MaxDaysAgo] relative
// to now. MaxDaysAgo <= 0 means unbounded.
type Window struct {
	MinDaysAgo int
	MaxDaysAgo int
}

// Unbounded reports whether the window has no far edge.
func (w Window) Unbounded() bool { return w.MaxDaysAgo <= 0 }

// Validate rejects malformed bounds.
func (w Window) Validate() error {
	if w.MinDaysAgo < 0 {
		return common.ErrDateRange
	}
	if !w.Unbounded() && w.MaxDaysAgo <= w.MinDaysAgo {
		return common.ErrDateRange
	}
	return nil
}

// unboundedLookbackDays caps the "unrestricted" pass so the range query
// stays finite. Twenty years of journaling is treated as all of history.
const unboundedLookbackDays = 20 * 365

// Range converts the window into a timestamp range relative to now.
func (w Window) Range(now time.Time) datex.Range {
	maxDays := w.MaxDaysAgo
	if w.Unbounded() {
		maxDays = unboundedLookbackDays
	}
	return datex.Range{
		From: now.AddDate(0, 0, -maxDays),
		To:   now.AddDate(0, 0, -w.MinDaysAgo),
	}
}

// Request carries one resurfacing query.
type Request struct {
	Window            Window
	EligiblePrompts   map[string]struct{}
	CategoryFrequency map[models.Category]float64
	Now               time.Time

	// AnniversaryOnly restricts candidates to anniversary entries and
	// raises the acceptance threshold.
	AnniversaryOnly bool
}

// threshold returns the acceptance bar for this request.
func (r Request) threshold() float64 {
	if r.AnniversaryOnly {
		return AnniversaryThreshold
	}
	return DefaultThreshold
}

// History answers when an entry was last shown to the user, independent of
// the LastRetrieved column (the persisted history cache survives entry
// edits and store failover).
type History interface {
	LastShown(id string) (time.Time, bool)
}

// CandidateSource supplies merged entries for a timestamp range. The fanout
// coordinator satisfies it.
type CandidateSource interface {
	MergedEntriesInRange(ctx context.Context, r datex.Range) ([]models.Entry, error)
}

// Engine scores and selects resurfacing candidates. Scoring is pure; the
// caller owns the acceptance side effects (marking LastRetrieved and
// appending to history).
type Engine struct {
	log logging.Logger
}

func NewEngine(log logging.Logger) *Engine {
	return &Engine{log: log.With("component", "scoring")}
}

// isAnniversary reports whether the entry shares now's day-of-month and is
// at least one whole month old.
func isAnniversary(e *models.Entry, now time.Time) bool {
	return datex.SameDayOfMonth(e.Timestamp, now) && datex.MonthsElapsed(e.Timestamp, now) >= 1
}

// lastShown returns the most recent of the entry's LastRetrieved and the
// history cache's record for it.
func lastShown(e *models.Entry, history History) (time.Time, bool) {
	var best time.Time
	found := false
	if e.LastRetrieved != nil {
		best = *e.LastRetrieved
		found = true
	}
	if history != nil {
		if t, ok := history.LastShown(e.Id); ok && (!found || t.After(best)) {
			best = t
			found = true
		}
	}
	return best, found
}

// Score computes the clamped additive score for one candidate. The
// anniversary bonus stacks with the time-window bonus when both match,
// mirroring the reference policy.
func (eng *Engine) Score(e *models.Entry, req Request, history History) float64 {
	score := 0.0
	now := req.Now

	if _, ok := req.EligiblePrompts[e.PromptText]; ok {
		score += promptMatchBonus
	}

	if f, ok := req.CategoryFrequency[e.Category]; ok {
		score += categoryAffinityWeight * f
	}
	if e.Category == models.CategoryFreeForm {
		score -= freeFormPenalty
	}

	months := datex.MonthsElapsed(e.Timestamp, now)
	if isAnniversary(e, now) {
		if isMilestoneMonth(months) {
			score += milestoneAnniversaryBonus
		} else {
			score += genericAnniversaryBonus
		}
	}
	score += timeWindowBonus(months)

	if shown, ok := lastShown(e, history); ok {
		score -= recencyPenalty(datex.DaysBetween(shown, now))
	}

	return clamp01(score)
}

// Selection is one accepted candidate with its score.
type Selection struct {
	Entry models.Entry
	Score float64
}

// best scores every candidate and returns the maximum. Ties keep the first
// candidate in input order, which Merge already made deterministic.
func (eng *Engine) best(candidates []models.Entry, req Request, history History) (*Selection, bool) {
	var top *Selection
	for i := range candidates {
		e := &candidates[i]
		if req.AnniversaryOnly && !isAnniversary(e, req.Now) {
			continue
		}
		s := eng.Score(e, req, history)
		if top == nil || s > top.Score {
			top = &Selection{Entry: *e, Score: s}
		}
	}
	if top == nil {
		return nil, false
	}
	return top, true
}

// fallbackWindows is the widening chain tried before concluding that no
// memory is available: the requested window, an older window of twice the
// span, then an unrestricted one.
func fallbackWindows(w Window) []Window {
	if w.Unbounded() {
		return []Window{w}
	}
	older := Window{MinDaysAgo: w.MaxDaysAgo, MaxDaysAgo: w.MaxDaysAgo * 2}
	open := Window{MinDaysAgo: w.MinDaysAgo}
	return []Window{w, older, open}
}

// Select walks the fallback chain, scores each window's merged candidates
// and returns the first selection that clears the acceptance threshold.
// Returns common.ErrNoMemory when every pass comes up empty.
func (eng *Engine) Select(ctx context.Context, src CandidateSource, req Request, history History) (*Selection, error) {
	if err := req.Window.Validate(); err != nil {
		return nil, err
	}
	threshold := req.threshold()

	for _, w := range fallbackWindows(req.Window) {
		pass := req
		pass.Window = w

		candidates, err := src.MergedEntriesInRange(ctx, w.Range(req.Now))
		if err != nil {
			return nil, err
		}

		top, ok := eng.best(candidates, pass, history)
		if !ok {
			continue
		}
		if top.Score > threshold {
			eng.log.Debug(ctx, "candidate accepted",
				"entry", top.Entry.Id, "score", top.Score,
				"window_min_days", w.MinDaysAgo, "window_max_days", w.MaxDaysAgo)
			return top, nil
		}
		eng.log.Debug(ctx, "best candidate below threshold",
			"score", top.Score, "threshold", threshold,
			"window_min_days", w.MinDaysAgo, "window_max_days", w.MaxDaysAgo)
	}

	return nil, common.ErrNoMemory
}
