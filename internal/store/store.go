// Package store defines the EntryStore contract both backends implement.
//
// The two implementations deliberately differ in failure semantics: the local
// SQLite store is treated as always-available, so its errors propagate as hard
// failures; the remote store is best-effort, and its adapter converts read
// failures into empty results so a remote outage degrades the merged view to
// local-only data instead of failing the operation.
package store

import (
	"context"
	"time"

	"github.com/loopjournal/loop/internal/datex"
	"github.com/loopjournal/loop/internal/models"
)

// EntryStore is a queryable, mutable collection of journal entries.
type EntryStore interface {
	// FetchEntriesByDay returns all entries whose timestamp falls on the
	// calendar day of `day`.
	FetchEntriesByDay(ctx context.Context, day time.Time) ([]models.Entry, error)

	// FetchEntriesInRange returns all entries with timestamp in [From, To).
	FetchEntriesInRange(ctx context.Context, r datex.Range) ([]models.Entry, error)

	// FetchRecentActiveDays returns up to limit distinct calendar days that
	// contain at least one entry, most recent first. When before is non-nil,
	// only days strictly earlier than it are considered.
	FetchRecentActiveDays(ctx context.Context, before *time.Time, limit int) ([]time.Time, error)

	// CountDistinctActiveDays returns the number of distinct calendar days
	// with at least one entry.
	CountDistinctActiveDays(ctx context.Context) (int, error)

	// InsertEntry writes a newly captured entry. A replayed capture with an
	// id already present replaces the stored row.
	InsertEntry(ctx context.Context, e *models.Entry) error

	// UpdateTranscript replaces the transcript of the given entry. The bool
	// reports whether the entry was found in this store.
	UpdateTranscript(ctx context.Context, id, transcript string) (bool, error)

	// SetLastRetrieved records that the entry was resurfaced at t. The bool
	// reports whether the entry was found in this store.
	SetLastRetrieved(ctx context.Context, id string, t time.Time) (bool, error)

	// DeleteEntry removes the entry. Returns common.ErrNotFound when the
	// entry is absent from this store.
	DeleteEntry(ctx context.Context, id string) error
}
