package remote

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/loopjournal/loop/internal/common"
	"github.com/loopjournal/loop/internal/datex"
	"github.com/loopjournal/loop/internal/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func entryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "ts", "day_start", "last_retrieved", "prompt_text", "category",
		"transcript", "media_ref", "is_daily", "is_follow_up", "is_success", "is_unguided",
	})
}

func TestInsertEntry_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	e := &models.Entry{
		Id:         "e1",
		Timestamp:  time.Date(2024, 6, 10, 15, 0, 0, 0, time.Local),
		PromptText: "prompt",
		Category:   models.CategoryGratitude,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM entries WHERE id = \$1`).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO entries`).
		WithArgs(
			"e1", e.Timestamp.Unix(), datex.DayStart(e.Timestamp).Unix(), nil,
			"prompt", models.CategoryGratitude, "", "",
			false, false, false, false,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.InsertEntry(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertEntry_RollsBackWhenInsertFails(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	e := &models.Entry{Id: "e1", Timestamp: time.Date(2024, 6, 10, 15, 0, 0, 0, time.Local)}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM entries WHERE id = \$1`).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO entries`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	if err := repo.InsertEntry(context.Background(), e); err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFetchEntriesInRange_ScansRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ts := time.Date(2024, 6, 10, 15, 0, 0, 0, time.Local)
	retrieved := ts.AddDate(0, 1, 0)

	rows := entryRows().
		AddRow("e1", ts.Unix(), datex.DayStart(ts).Unix(), retrieved.Unix(),
			"prompt", "gratitude", "text", "media/key", true, false, false, false)

	mock.ExpectQuery(`SELECT .* FROM entries WHERE ts >= \$1 AND ts < \$2`).
		WillReturnRows(rows)

	got, err := repo.FetchEntriesInRange(context.Background(), datex.Range{
		From: ts.AddDate(0, 0, -1),
		To:   ts.AddDate(0, 0, 1),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	e := got[0]
	if e.Id != "e1" || !e.Timestamp.Equal(ts) || e.Transcript != "text" || !e.IsDailyEntry {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.LastRetrieved == nil || !e.LastRetrieved.Equal(retrieved) {
		t.Fatalf("unexpected last_retrieved: %v", e.LastRetrieved)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFetchRecentActiveDays_AppliesCursorAndLimit(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	day := time.Date(2024, 6, 9, 0, 0, 0, 0, time.Local)
	before := time.Date(2024, 6, 10, 13, 0, 0, 0, time.Local)

	rows := sqlmock.NewRows([]string{"day_start"}).AddRow(day.Unix())

	mock.ExpectQuery(`SELECT DISTINCT day_start FROM entries WHERE day_start < \$1`).
		WithArgs(datex.DayStart(before).Unix(), 5).
		WillReturnRows(rows)

	got, err := repo.FetchRecentActiveDays(context.Background(), &before, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || !got[0].Equal(day) {
		t.Fatalf("unexpected days: %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateTranscript_ReportsFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE entries SET transcript = \$1 WHERE id = \$2`).
		WithArgs("edited", "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	found, err := repo.UpdateTranscript(context.Background(), "e1", "edited")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatalf("expected found")
	}

	mock.ExpectExec(`UPDATE entries SET transcript = \$1 WHERE id = \$2`).
		WithArgs("edited", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err = repo.UpdateTranscript(context.Background(), "missing", "edited")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatalf("expected not found")
	}
}

func TestDeleteEntry_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM entries WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteEntry(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
