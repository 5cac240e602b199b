package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopjournal/loop/internal/common"
	"github.com/loopjournal/loop/internal/datex"
	"github.com/loopjournal/loop/internal/models"
)

// recordingStore tracks mutation calls and answers with canned results.
type recordingStore struct {
	name string

	holds         bool
	updateErr     error
	deleteErr     error
	retrieveErr   error
	insertErr     error
	updateCalls   int
	deleteCalls   int
	retrieveCalls int
	inserted      []models.Entry
}

func (s *recordingStore) FetchEntriesByDay(context.Context, time.Time) ([]models.Entry, error) {
	return nil, nil
}

func (s *recordingStore) FetchEntriesInRange(context.Context, datex.Range) ([]models.Entry, error) {
	return nil, nil
}

func (s *recordingStore) FetchRecentActiveDays(context.Context, *time.Time, int) ([]time.Time, error) {
	return nil, nil
}

func (s *recordingStore) CountDistinctActiveDays(context.Context) (int, error) {
	return 0, nil
}

func (s *recordingStore) InsertEntry(_ context.Context, e *models.Entry) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, *e)
	return nil
}

func (s *recordingStore) UpdateTranscript(context.Context, string, string) (bool, error) {
	s.updateCalls++
	return s.holds, s.updateErr
}

func (s *recordingStore) SetLastRetrieved(context.Context, string, time.Time) (bool, error) {
	s.retrieveCalls++
	return s.holds, s.retrieveErr
}

func (s *recordingStore) DeleteEntry(context.Context, string) error {
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if !s.holds {
		return common.ErrNotFound
	}
	return nil
}

func TestRemote_NilWhenSyncDisabled(t *testing.T) {
	local := &recordingStore{name: "local"}
	remote := &recordingStore{name: "remote"}

	r := New(local, remote, false)
	assert.Nil(t, r.Remote())
	assert.False(t, r.SyncEnabled())

	r = New(local, remote, true)
	assert.NotNil(t, r.Remote())
	assert.True(t, r.SyncEnabled())
}

func TestWriteTarget(t *testing.T) {
	local := &recordingStore{name: "local"}
	remote := &recordingStore{name: "remote"}

	assert.Same(t, local, New(local, remote, false).WriteTarget().(*recordingStore))
	assert.Same(t, remote, New(local, remote, true).WriteTarget().(*recordingStore))
}

func TestCaptureEntry_RoutesToWriteTarget(t *testing.T) {
	local := &recordingStore{}
	remote := &recordingStore{}
	r := New(local, remote, true)

	e := &models.Entry{Id: "a", Timestamp: time.Now()}
	require.NoError(t, r.CaptureEntry(context.Background(), e))

	assert.Len(t, remote.inserted, 1)
	assert.Empty(t, local.inserted)
}

func TestUpdateTranscript_LocalHitShortCircuits(t *testing.T) {
	local := &recordingStore{holds: true}
	remote := &recordingStore{holds: true}
	r := New(local, remote, true)

	require.NoError(t, r.UpdateTranscript(context.Background(), "a", "text"))
	assert.Equal(t, 1, local.updateCalls)
	assert.Zero(t, remote.updateCalls)
}

func TestUpdateTranscript_FallsThroughToRemote(t *testing.T) {
	local := &recordingStore{holds: false}
	remote := &recordingStore{holds: true}
	r := New(local, remote, true)

	require.NoError(t, r.UpdateTranscript(context.Background(), "a", "text"))
	assert.Equal(t, 1, local.updateCalls)
	assert.Equal(t, 1, remote.updateCalls)
}

func TestUpdateTranscript_NotFoundAnywhere(t *testing.T) {
	local := &recordingStore{holds: false}
	remote := &recordingStore{holds: false}
	r := New(local, remote, true)

	err := r.UpdateTranscript(context.Background(), "a", "text")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateTranscript_SyncDisabledSkipsRemote(t *testing.T) {
	local := &recordingStore{holds: false}
	remote := &recordingStore{holds: true}
	r := New(local, remote, false)

	err := r.UpdateTranscript(context.Background(), "a", "text")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Zero(t, remote.updateCalls)
}

func TestUpdateTranscript_BackendErrorStopsSequence(t *testing.T) {
	boom := errors.New("disk error")
	local := &recordingStore{updateErr: boom}
	remote := &recordingStore{holds: true}
	r := New(local, remote, true)

	err := r.UpdateTranscript(context.Background(), "a", "text")
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, remote.updateCalls)
}

func TestDeleteEntry_RemovesFromEveryHolder(t *testing.T) {
	local := &recordingStore{holds: true}
	remote := &recordingStore{holds: true}
	r := New(local, remote, true)

	require.NoError(t, r.DeleteEntry(context.Background(), "a"))
	assert.Equal(t, 1, local.deleteCalls)
	assert.Equal(t, 1, remote.deleteCalls)
}

func TestDeleteEntry_SucceedsWhenOnlyOneBackendHolds(t *testing.T) {
	local := &recordingStore{holds: false}
	remote := &recordingStore{holds: true}
	r := New(local, remote, true)

	require.NoError(t, r.DeleteEntry(context.Background(), "a"))
}

func TestDeleteEntry_NotFoundWhenNoBackendHolds(t *testing.T) {
	local := &recordingStore{holds: false}
	remote := &recordingStore{holds: false}
	r := New(local, remote, true)

	err := r.DeleteEntry(context.Background(), "a")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteEntry_OutageError(t *testing.T) {
	local := &recordingStore{holds: true}
	remote := &recordingStore{deleteErr: common.ErrStoreUnavailable}
	r := New(local, remote, true)

	err := r.DeleteEntry(context.Background(), "a")
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestMarkRetrieved_StampsEveryHolder(t *testing.T) {
	local := &recordingStore{holds: true}
	remote := &recordingStore{holds: true}
	r := New(local, remote, true)

	require.NoError(t, r.MarkRetrieved(context.Background(), "a", time.Now()))
	assert.Equal(t, 1, local.retrieveCalls)
	assert.Equal(t, 1, remote.retrieveCalls)
}

func TestMarkRetrieved_ToleratesRemoteOutageWhenLocalHolds(t *testing.T) {
	local := &recordingStore{holds: true}
	remote := &recordingStore{retrieveErr: common.ErrStoreUnavailable}
	r := New(local, remote, true)

	require.NoError(t, r.MarkRetrieved(context.Background(), "a", time.Now()))
}

func TestMarkRetrieved_ReportsErrorWhenNoBackendHolds(t *testing.T) {
	local := &recordingStore{holds: false}
	remote := &recordingStore{retrieveErr: common.ErrStoreUnavailable}
	r := New(local, remote, true)

	err := r.MarkRetrieved(context.Background(), "a", time.Now())
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestMarkRetrieved_NotFound(t *testing.T) {
	local := &recordingStore{holds: false}
	remote := &recordingStore{holds: false}
	r := New(local, remote, true)

	err := r.MarkRetrieved(context.Background(), "a", time.Now())
	assert.ErrorIs(t, err, common.ErrNotFound)
}
