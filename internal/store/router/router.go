// Package router centralizes every decision about which backend(s) an
// operation touches. Nothing else in the codebase branches on the sync
// preference.
package router

import (
	"context"
	"errors"
	"time"

	"github.com/loopjournal/loop/internal/common"
	"github.com/loopjournal/loop/internal/models"
	"github.com/loopjournal/loop/internal/store"
)

// Router routes operations between the local and remote backends according
// to the user-level sync preference.
type Router struct {
	local       store.EntryStore
	remote      store.EntryStore
	syncEnabled bool
}

func New(local, remote store.EntryStore, syncEnabled bool) *Router {
	return &Router{local: local, remote: remote, syncEnabled: syncEnabled}
}

// Local returns the always-available backend.
func (r *Router) Local() store.EntryStore { return r.local }

// Remote returns the best-effort backend, or nil when sync is disabled.
func (r *Router) Remote() store.EntryStore {
	if !r.syncEnabled {
		return nil
	}
	return r.remote
}

// SyncEnabled reports the user-level sync preference.
func (r *Router) SyncEnabled() bool { return r.syncEnabled }

// WriteTarget returns the single backend that receives newly captured
// entries: the synchronized store when sync is on, the device store
// otherwise.
func (r *Router) WriteTarget() store.EntryStore {
	if r.syncEnabled {
		return r.remote
	}
	return r.local
}

// mutationSequence is the ordered list of backends a mutation tries: local
// first, then remote when sync is enabled.
func (r *Router) mutationSequence() []store.EntryStore {
	seq := []store.EntryStore{r.local}
	if r.syncEnabled {
		seq = append(seq, r.remote)
	}
	return seq
}

// UpdateTranscript edits the transcript wherever the entry lives, trying the
// local backend first and short-circuiting on the first hit. Returns
// common.ErrNotFound only when the entry is absent from every attempted
// backend.
func (r *Router) UpdateTranscript(ctx context.Context, id, transcript string) error {
	for _, s := range r.mutationSequence() {
		found, err := s.UpdateTranscript(ctx, id, transcript)
		if err != nil {
			return err
		}
		if found {
			return nil
		}
	}
	return common.ErrNotFound
}

// DeleteEntry removes the entry from every backend that holds it. It
// succeeds when at least one backend held the record and returns
// common.ErrNotFound when none did.
func (r *Router) DeleteEntry(ctx context.Context, id string) error {
	deleted := false
	for _, s := range r.mutationSequence() {
		err := s.DeleteEntry(ctx, id)
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, common.ErrNotFound):
			// keep trying the next backend
		default:
			return err
		}
	}
	if !deleted {
		return common.ErrNotFound
	}
	return nil
}

// MarkRetrieved records the resurfacing side effect in every backend that
// holds the entry. A remote outage is reported but does not undo the local
// mark.
func (r *Router) MarkRetrieved(ctx context.Context, id string, t time.Time) error {
	found := false
	var firstErr error
	for _, s := range r.mutationSequence() {
		ok, err := s.SetLastRetrieved(ctx, id, t)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			found = true
		}
	}
	if found {
		return nil
	}
	if firstErr != nil {
		return firstErr
	}
	return common.ErrNotFound
}

// CaptureEntry writes a new entry to the single routed capture backend.
func (r *Router) CaptureEntry(ctx context.Context, e *models.Entry) error {
	return r.WriteTarget().InsertEntry(ctx, e)
}
