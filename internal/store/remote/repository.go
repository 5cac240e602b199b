// Package remote implements the best-effort synchronized EntryStore against
// the hosted Postgres database. The raw repository here reports failures; the
// Store wrapper in degrade.go applies the retry budget and converts read
// failures into empty results.
package remote

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

// PostgresRepository implements entry storage over the hosted database.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs a repository bound to the given handle.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
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

// InsertEntry writes a newly captured entry; a replayed capture with the same
// id replaces the stored row, in one transaction, mirroring the local store.
func (r *PostgresRepository) InsertEntry(ctx context.Context, e *models.Entry) error {
	query := `INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	var lastRetrieved any
	if e.LastRetrieved != nil {
		lastRetrieved = e.LastRetrieved.Unix()
	}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, e.Id); err != nil {
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

func (r *PostgresRepository) FetchEntriesByDay(ctx context.Context, day time.Time) ([]models.Entry, error) {
	return r.FetchEntriesInRange(ctx, datex.DayRange(day))
}

func (r *PostgresRepository) FetchEntriesInRange(ctx context.Context, rng datex.Range) ([]models.Entry, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	query := `SELECT ` + entryColumns + ` FROM entries WHERE ts >= $1 AND ts < $2 ORDER BY ts DESC`
	rows, err := r.db.QueryContext(ctx, query, rng.From.Unix(), rng.To.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
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

func (r *PostgresRepository) FetchRecentActiveDays(ctx context.Context, before *time.Time, limit int) ([]time.Time, error) {
	query := `SELECT DISTINCT day_start FROM entries WHERE day_start < $1 ORDER BY day_start DESC LIMIT $2`

	cutoff := int64(1<<62 - 1)
	if before != nil {
		cutoff = datex.DayStart(*before).Unix()
	}

	rows, err := r.db.QueryContext(ctx, query, cutoff, limit)
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

func (r *PostgresRepository) CountDistinctActiveDays(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT day_start) FROM entries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active days: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) UpdateTranscript(ctx context.Context, id, transcript string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE entries SET transcript = $1 WHERE id = $2`, transcript, id)
	if err != nil {
		return false, fmt.Errorf("failed to update transcript: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

func (r *PostgresRepository) SetLastRetrieved(ctx context.Context, id string, t time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE entries SET last_retrieved = $1 WHERE id = $2`, t.Unix(), id)
	if err != nil {
		return false, fmt.Errorf("failed to set last_retrieved: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

func (r *PostgresRepository) DeleteEntry(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id)
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
