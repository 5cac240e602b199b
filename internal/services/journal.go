// Package services wires the reconciliation, scoring and streak components
// into the operations the surrounding feature code consumes, and declares
// the external collaborators the core depends on but does not implement.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/loopjournal/loop/internal/common"
	"github.com/loopjournal/loop/internal/datex"
	"github.com/loopjournal/loop/internal/fanout"
	"github.com/loopjournal/loop/internal/history"
	"github.com/loopjournal/loop/internal/logging"
	"github.com/loopjournal/loop/internal/media"
	"github.com/loopjournal/loop/internal/models"
	"github.com/loopjournal/loop/internal/reconcile"
	"github.com/loopjournal/loop/internal/scoring"
	"github.com/loopjournal/loop/internal/store/router"
	"github.com/loopjournal/loop/internal/streak"
)

// ResurfaceParams describe one resurfacing request.
type ResurfaceParams struct {
	Window            scoring.Window
	EligiblePrompts   []string
	CategoryFrequency map[models.Category]float64

	// AnniversaryOnly runs the stricter anniversary-only pass.
	AnniversaryOnly bool
}

// CaptureParams describe one newly recorded entry. Media carries raw bytes
// to upload through the object store; MediaReference carries the key of an
// already uploaded object instead.
type CaptureParams struct {
	When           time.Time
	PromptText     string
	Category       models.Category
	Media          []byte
	MediaReference string

	IsDailyEntry   bool
	IsFollowUp     bool
	IsSuccessEntry bool
	IsUnguided     bool
}

// JournalService is the facade over the dual-source engine.
type JournalService struct {
	coordinator *fanout.Coordinator
	router      *router.Router
	engine      *scoring.Engine
	streaks     *streak.Calculator
	history     *history.Cache
	media       *media.Storage
	entitlement EntitlementService
	transcriber TranscriptionService
	log         logging.Logger

	// now is a test seam.
	now func() time.Time
}

// Options carries the optional collaborators.
type Options struct {
	Media       *media.Storage
	Transcriber TranscriptionService
}

func NewJournalService(
	coordinator *fanout.Coordinator,
	r *router.Router,
	engine *scoring.Engine,
	streaks *streak.Calculator,
	hist *history.Cache,
	entitlement EntitlementService,
	log logging.Logger,
	opts Options,
) *JournalService {
	return &JournalService{
		coordinator: coordinator,
		router:      r,
		engine:      engine,
		streaks:     streaks,
		history:     hist,
		media:       opts.Media,
		entitlement: entitlement,
		transcriber: opts.Transcriber,
		log:         log.With("component", "journal"),
		now:         time.Now,
	}
}

// FetchMergedEntriesByDay returns the reconciled entries for one calendar
// day.
func (s *JournalService) FetchMergedEntriesByDay(ctx context.Context, day time.Time) ([]models.Entry, error) {
	return s.coordinator.MergedEntriesByDay(ctx, day)
}

// FetchMergedEntriesInRange returns the reconciled entries for a range.
func (s *JournalService) FetchMergedEntriesInRange(ctx context.Context, r datex.Range) ([]models.Entry, error) {
	return s.coordinator.MergedEntriesInRange(ctx, r)
}

// ResurfaceCandidate picks the past entry to present back to the user.
//
// Outcomes: the chosen entry; common.ErrNotEntitled when the premium gate is
// closed; common.ErrNoMemory when no candidate clears the threshold anywhere
// in the fallback chain; common.ErrInternal for anything else.
//
// Acceptance is deliberately not idempotent: the chosen entry's
// LastRetrieved is stamped in every backend holding it and the event is
// appended to the resurfacing history, both of which feed the next round's
// recency penalty.
func (s *JournalService) ResurfaceCandidate(ctx context.Context, params ResurfaceParams) (*models.Entry, error) {
	if !s.entitlement.IsEntitled(ctx) {
		return nil, common.ErrNotEntitled
	}

	prompts := make(map[string]struct{}, len(params.EligiblePrompts))
	for _, p := range params.EligiblePrompts {
		prompts[p] = struct{}{}
	}

	req := scoring.Request{
		Window:            params.Window,
		EligiblePrompts:   prompts,
		CategoryFrequency: params.CategoryFrequency,
		Now:               s.now(),
		AnniversaryOnly:   params.AnniversaryOnly,
	}

	sel, err := s.engine.Select(ctx, s.coordinator, req, s.history)
	if err != nil {
		if errors.Is(err, common.ErrNoMemory) || errors.Is(err, common.ErrDateRange) {
			return nil, err
		}
		s.log.Error(ctx, "resurfacing failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	// Side effects of acceptance. A failed LastRetrieved stamp is logged but
	// does not revoke the selection: the history append below still guards
	// against repeats.
	shown := req.Now
	if err := s.router.MarkRetrieved(ctx, sel.Entry.Id, shown); err != nil {
		s.log.Warn(ctx, "failed to stamp last_retrieved", "entry", sel.Entry.Id, "error", err)
	}
	if err := s.history.Append(sel.Entry.Id, shown); err != nil {
		s.log.Warn(ctx, "failed to append resurfacing history", "entry", sel.Entry.Id, "error", err)
	}
	s.coordinator.Invalidate()

	chosen := sel.Entry
	chosen.LastRetrieved = &shown
	return &chosen, nil
}

// ComputeStreak derives the activity aggregates from the merged entry set.
func (s *JournalService) ComputeStreak(ctx context.Context) (models.LoopingStreak, error) {
	return s.streaks.Compute(ctx, s.now())
}

// EditTranscript updates the transcript wherever the entry lives. Returns
// common.ErrNotFound when the entry is absent from every backend.
func (s *JournalService) EditTranscript(ctx context.Context, id, text string) error {
	if err := s.router.UpdateTranscript(ctx, id, text); err != nil {
		return err
	}
	s.coordinator.Invalidate()
	return nil
}

// DeleteEntry removes the entry from every backend holding it. Returns
// common.ErrNotFound when none did.
func (s *JournalService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.router.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.coordinator.Invalidate()
	return nil
}

// CaptureEntry stores a new recording in the routed capture backend. When
// media bytes are provided and an object store is configured, the media is
// uploaded first; when a transcriber is configured, the transcript is filled
// in best-effort.
func (s *JournalService) CaptureEntry(ctx context.Context, params CaptureParams) (*models.Entry, error) {
	when := params.When
	if when.IsZero() {
		when = s.now()
	}

	e := models.NewEntry(when, params.PromptText, params.Category)
	e.IsDailyEntry = params.IsDailyEntry
	e.IsFollowUp = params.IsFollowUp
	e.IsSuccessEntry = params.IsSuccessEntry
	e.IsUnguided = params.IsUnguided
	if e.Category == "" {
		e.Category = models.CategoryFreeForm
	}
	e.MediaReference = params.MediaReference

	if len(params.Media) > 0 && s.media != nil {
		key, url, err := s.media.PresignedPutURL(ctx, when)
		if err != nil {
			return nil, fmt.Errorf("failed to presign media upload: %w", err)
		}
		if err := media.UploadToPresignedURL(ctx, url, params.Media); err != nil {
			return nil, fmt.Errorf("failed to upload media: %w", err)
		}
		e.MediaReference = key
	}

	if e.MediaReference != "" && s.transcriber != nil {
		text, err := s.transcriber.Transcribe(ctx, e.MediaReference)
		if err != nil {
			s.log.Warn(ctx, "saving entry without transcript",
				"entry", e.Id, "error", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err))
		} else {
			e.Transcript = text
		}
	}

	if err := s.router.CaptureEntry(ctx, e); err != nil {
		return nil, err
	}
	s.coordinator.Invalidate()
	return e, nil
}

// ResolveMediaURL returns a short-lived playback URL for the entry's media.
func (s *JournalService) ResolveMediaURL(ctx context.Context, e *models.Entry) (string, error) {
	if s.media == nil || e.MediaReference == "" {
		return "", common.ErrNotFound
	}
	return s.media.PresignedGetURL(ctx, e.MediaReference)
}

// MonthSummaries aggregates merged activity per calendar month over the
// range.
func (s *JournalService) MonthSummaries(ctx context.Context, r datex.Range) ([]models.MonthSummary, error) {
	entries, err := s.coordinator.MergedEntriesInRange(ctx, r)
	if err != nil {
		return nil, err
	}
	return reconcile.SummarizeMonths(entries), nil
}

// ActivityDays aggregates merged activity per calendar day over the range.
func (s *JournalService) ActivityDays(ctx context.Context, r datex.Range) ([]models.ActivityDay, error) {
	entries, err := s.coordinator.MergedEntriesInRange(ctx, r)
	if err != nil {
		return nil, err
	}
	return reconcile.GroupByDay(entries), nil
}
