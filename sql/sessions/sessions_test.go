package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/esgf/solrsync/sql"
)

func TestSessionLifecycle(t *testing.T) {
	db := sql.InMemory()
	defer db.Close()

	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, Start(db, "s1", "http://src/solr", "http://dst/solr", started))
	require.ErrorIs(t, Start(db, "s1", "a", "b", started), sql.ErrObjectExists)

	s, err := Get(db, "s1")
	require.NoError(t, err)
	require.Equal(t, StatusRunning, s.Status)
	require.True(t, s.Finished.IsZero())
	require.Empty(t, s.Cores)

	require.NoError(t, AddCore(db, "s1", Core{Name: "datasets", WindowsExamined: 10, WindowsRepaired: 2, Migrated: 120, Skipped: 1}))
	require.NoError(t, AddCore(db, "s1", Core{Name: "files", WindowsExamined: 3, InSync: true}))
	require.NoError(t, Finish(db, "s1", started.Add(time.Minute), true, StatusCompleted))

	s, err = Get(db, "s1")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, s.Status)
	require.True(t, s.Dirty)
	require.Equal(t, started.Add(time.Minute), s.Finished)
	require.Equal(t, []Core{
		{Name: "datasets", WindowsExamined: 10, WindowsRepaired: 2, Migrated: 120, Skipped: 1},
		{Name: "files", WindowsExamined: 3, InSync: true},
	}, s.Cores)

	require.ErrorIs(t, Finish(db, "missing", started, false, StatusFailed), sql.ErrNotFound)
	_, err = Get(db, "missing")
	require.ErrorIs(t, err, sql.ErrNotFound)
}

func TestRecordIsAtomic(t *testing.T) {
	db := sql.InMemory()
	defer db.Close()

	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cores := []Core{{Name: "datasets", Migrated: 4}, {Name: "files", InSync: true}}
	// the session was never started
	require.Error(t, Record(context.Background(), db, "missing", cores, started, true, StatusCompleted))
	rows, err := db.Exec("select core from session_cores", nil, nil)
	require.NoError(t, err)
	require.Zero(t, rows)

	require.NoError(t, Start(db, "s1", "src", "dst", started))
	require.NoError(t, Record(context.Background(), db, "s1", cores, started.Add(time.Minute), true, StatusFailed))
	s, err := Get(db, "s1")
	require.NoError(t, err)
	require.Equal(t, StatusFailed, s.Status)
	require.Equal(t, cores, s.Cores)
}

func TestLatest(t *testing.T) {
	db := sql.InMemory()
	defer db.Close()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, Start(db, id, "src", "dst", base.Add(time.Duration(i)*time.Hour)))
	}
	latest, err := Latest(db, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	require.Equal(t, "c", latest[0].ID)
	require.Equal(t, "b", latest[1].ID)
}
