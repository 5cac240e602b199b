package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/loopjournal/loop/internal/common"
	"github.com/loopjournal/loop/internal/datex"
	"github.com/loopjournal/loop/internal/models"
	"github.com/loopjournal/loop/internal/scoring"
	"github.com/loopjournal/loop/internal/services"
)

func (a *App) printEntries(entries []models.Entry) {
	if len(entries) == 0 {
		printlnFn("No entries.")
		return
	}
	for _, e := range entries {
		line := e.Timestamp.Format("2006-01-02 15:04") + "  " + e.Id + "  [" + string(e.Category) + "] " + e.PromptText
		if e.Transcript != "" {
			line += "  " + e.Transcript
		}
		printlnFn(line)
	}
}

// Today lists the merged entries for the current day.
func (a *App) Today(ctx context.Context) {
	entries, err := a.journal.FetchMergedEntriesByDay(ctx, time.Now())
	if err != nil {
		printlnFn("Error:", err)
		return
	}
	a.printEntries(entries)
}

// List lists the merged entries for the given day (yyyy-mm-dd).
func (a *App) List(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: list <yyyy-mm-dd>")
		return
	}
	day, err := time.ParseInLocation("2006-01-02", args[0], time.Local)
	if err != nil {
		printlnFn("Invalid date:", args[0])
		return
	}
	entries, err := a.journal.FetchMergedEntriesByDay(ctx, day)
	if err != nil {
		printlnFn("Error:", err)
		return
	}
	a.printEntries(entries)
}

// Resurface asks the engine for a memory, starting from the default
// three-to-twelve-month window.
func (a *App) Resurface(ctx context.Context, anniversaryOnly bool) {
	entry, err := a.journal.ResurfaceCandidate(ctx, services.ResurfaceParams{
		Window:          scoring.Window{MinDaysAgo: 90, MaxDaysAgo: 365},
		AnniversaryOnly: anniversaryOnly,
	})
	switch {
	case errors.Is(err, common.ErrNoMemory):
		printlnFn("No memory available for now.")
	case errors.Is(err, common.ErrNotEntitled):
		printlnFn("This feature requires an active subscription.")
	case err != nil:
		printlnFn("Something went wrong, try again later.")
	default:
		printlnFn("Remember this?")
		a.printEntries([]models.Entry{*entry})
	}
}

// Streak shows the activity aggregates.
func (a *App) Streak(ctx context.Context) {
	s, err := a.journal.ComputeStreak(ctx)
	if err != nil {
		printlnFn("Error:", err)
		return
	}
	printlnFn("Current streak:", s.CurrentStreak, "days")
	printlnFn("Longest streak:", s.LongestStreak, "days")
	printlnFn("Days journaled:", s.DistinctDays)
}

// Months shows per-month activity for the last year.
func (a *App) Months(ctx context.Context) {
	now := time.Now()
	summaries, err := a.journal.MonthSummaries(ctx, datex.Range{
		From: now.AddDate(-1, 0, 0),
		To:   now,
	})
	if err != nil {
		printlnFn("Error:", err)
		return
	}
	if len(summaries) == 0 {
		printlnFn("No activity in the last year.")
		return
	}
	for _, m := range summaries {
		printlnFn(m.Month.String(), m.Year, "-", m.EntryCount, "entries across", m.ActiveDays, "days")
	}
}

// Capture records a new text-only entry with the given prompt.
func (a *App) Capture(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: capture <prompt text>")
		return
	}
	entry, err := a.journal.CaptureEntry(ctx, services.CaptureParams{
		PromptText: strings.Join(args, " "),
		Category:   models.CategoryFreeForm,
		IsUnguided: true,
	})
	if err != nil {
		printlnFn("Error:", err)
		return
	}
	printlnFn("Captured", entry.Id)
}

// Edit replaces an entry's transcript.
func (a *App) Edit(ctx context.Context, args []string) {
	if len(args) < 2 {
		printlnFn("Usage: edit <id> <new transcript>")
		return
	}
	err := a.journal.EditTranscript(ctx, args[0], strings.Join(args[1:], " "))
	switch {
	case errors.Is(err, common.ErrNotFound):
		printlnFn("Entry not found:", args[0])
	case err != nil:
		printlnFn("Error:", err)
	default:
		printlnFn("Updated.")
	}
}

// Delete removes an entry from every backend holding it.
func (a *App) Delete(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: delete <id>")
		return
	}
	err := a.journal.DeleteEntry(ctx, args[0])
	switch {
	case errors.Is(err, common.ErrNotFound):
		printlnFn("Entry not found:", args[0])
	case err != nil:
		printlnFn("Error:", err)
	default:
		printlnFn("Deleted.")
	}
}
