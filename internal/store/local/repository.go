// Package local implements the always-available on-device EntryStore over
// SQLite. Errors from this store propagate to the caller as hard failures.
package local

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/loopjournal/loop/internal/common"
	"github.com/loopjournal/loop/internal/datex"
	"github.com/loopjournal/loop/internal/dbx"
	"github.com/loopjournal/loop/internal/models"
)

// Store implements store.EntryStore over the on-device database.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store bound to the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const entryColumns = `id, ts, day_start, last_retrieved, prompt_text, category, transcript, media_ref,
	is_daily, is_follow_up, is_success, is_unguided`

func scanEntry(rows *sql.Rows) (models.Entry, error) {
	var (
		e             models.Entry
		ts, dayStart  int64
		lastRetrieved sql.NullInt64
	)
	if err := rows.Scan(&e.Id, &ts, &dayStart, &lastRetrieved,
		&e.PromptText, &e.Category, &e.Transcript, &e.MediaReference,
		&e.IsDailyEntry, &e.IsFollowUp, &e.IsSuccessEntry, &e.IsUnguided); err != nil {
		return models.Entry{}, err
	}
	e.Timestamp = time.Unix(ts, 0)
	if lastRetrieved.Valid {
		t := time.Unix(lastRetrieved.Int64, 0)
		e.LastRetrieved = &t
	}
	return e, nil
}

func collectEntries(rows *sql.Rows) ([]models.Entry, error) {
	defer rows.Close()

	var result []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// InsertEntry writes a newly captured entry; a replayed capture with the same
// id replaces the stored row. Delete and insert run in one transaction so a
// replay can never drop the old row without landing the new one. The
// day_start column is derived here so distinct-day queries stay a plain
// GROUP BY.
func (s *Store) InsertEntry(ctx context.Context, e *models.Entry) error {
	query := `INSERT INTO entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var lastRetrieved any
	if e.LastRetrieved != nil {
		lastRetrieved = e.LastRetrieved.Unix()
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, e.Id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, query,
			e.Id, e.Timestamp.Unix(), datex.DayStart(e.Timestamp).Unix(), lastRetrieved,
			e.PromptText, e.Category, e.Transcript, e.MediaReference,
			e.IsDailyEntry, e.IsFollowUp, e.IsSuccessEntry, e.IsUnguided)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

// FetchEntriesByDay returns all entries recorded on the calendar day of day.
func (s *Store) FetchEntriesByDay(ctx context.Context, day time.Time) ([]models.Entry, error) {
	return s.FetchEntriesInRange(ctx, datex.DayRange(day))
}

// FetchEntriesInRange returns all entries with timestamp in [From, To),
// newest first.
func (s *Store) FetchEntriesInRange(ctx context.Context, r datex.Range) ([]models.Entry, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	query := `SELECT ` + entryColumns + ` FROM entries WHERE ts >= ? AND ts < ? ORDER BY ts DESC`
	rows, err := s.db.QueryContext(ctx, query, r.From.Unix(), r.To.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	return collectEntries(rows)
}

// FetchRecentActiveDays returns distinct active calendar days, most recent
// first.
func (s *Store) FetchRecentActiveDays(ctx context.Context, before *time.Time, limit int) ([]time.Time, error) {
	query := `SELECT DISTINCT day_start FROM entries WHERE day_start < ? ORDER BY day_start DESC LIMIT ?`

	cutoff := int64(1<<62 - 1)
	if before != nil {
		cutoff = datex.DayStart(*before).Unix()
	}

	rows, err := s.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select active days: %w", err)
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var day int64
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		result = append(result, time.Unix(day, 0))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountDistinctActiveDays returns the number of calendar days holding at
// least one entry.
func (s *Store) CountDistinctActiveDays(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT day_start) FROM entries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active days: %w", err)
	}
	return count, nil
}

// UpdateTranscript replaces the transcript. The bool reports whether the
// entry exists in this store.
func (s *Store) UpdateTranscript(ctx context.Context, id, transcript string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE entries SET transcript = ? WHERE id = ?`, transcript, id)
	if err != nil {
		return false, fmt.Errorf("failed to update transcript: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

// SetLastRetrieved records the resurfacing side effect.
func (s *Store) SetLastRetrieved(ctx context.Context, id string, t time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE entries SET last_retrieved = ? WHERE id = ?`, t.Unix(), id)
	if err != nil {
		return false, fmt.Errorf("failed to set last_retrieved: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

// DeleteEntry removes the entry, returning common.ErrNotFound when this store
// does not hold it.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}
