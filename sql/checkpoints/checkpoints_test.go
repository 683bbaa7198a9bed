package checkpoints

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/esgf/solrsync/sql"
)

func TestCheckpoints(t *testing.T) {
	db := sql.InMemory()
	defer db.Close()

	key := Key{Target: "http://target/solr", Core: "datasets", Filter: "project:CMIP5"}
	_, err := Get(db, key)
	require.ErrorIs(t, err, sql.ErrNotFound)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	first := time.Date(2016, 3, 17, 13, 0, 0, 0, time.UTC)
	require.NoError(t, Save(db, key, first, 1, now))
	second := first.Add(-time.Hour)
	require.NoError(t, Save(db, key, second, 2, now.Add(time.Minute)))

	cp, err := Get(db, key)
	require.NoError(t, err)
	require.Equal(t, second, cp.Boundary)
	require.Equal(t, 2, cp.Windows)
	require.Equal(t, now.Add(time.Minute), cp.Updated)

	other := key
	other.Core = "files"
	require.NoError(t, Save(db, other, first, 5, now))

	all, err := All(db)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "datasets", all[0].Core)
	require.Equal(t, "files", all[1].Core)

	require.NoError(t, Clear(db, key))
	require.NoError(t, Clear(db, key))
	_, err = Get(db, key)
	require.ErrorIs(t, err, sql.ErrNotFound)

	n, err := ClearTarget(db, key.Target)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	all, err = All(db)
	require.NoError(t, err)
	require.Empty(t, all)
}
