package checkpoints

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/esgf/solrsync/sql"
)

func TestStore(t *testing.T) {
	db := sql.InMemory()
	defer db.Close()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	store := NewStore(db, "http://target/solr", clock)
	other := NewStore(db, "http://other/solr", clock)

	_, ok, err := store.Load("datasets", "*:*")
	require.NoError(t, err)
	require.False(t, ok)

	boundary := time.Date(2016, 3, 17, 13, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save("datasets", "*:*", boundary, 3))
	got, ok, err := store.Load("datasets", "*:*")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, boundary.Equal(got))

	_, ok, err = other.Load("datasets", "*:*")
	require.NoError(t, err)
	require.False(t, ok, "checkpoints are scoped to the target")
	_, ok, err = store.Load("datasets", "project:CMIP5")
	require.NoError(t, err)
	require.False(t, ok, "checkpoints are scoped to the filter")

	cp, err := Get(db, Key{Target: "http://target/solr", Core: "datasets", Filter: "*:*"})
	require.NoError(t, err)
	require.Equal(t, clock.Now(), cp.Updated)
	require.Equal(t, 3, cp.Windows)

	require.NoError(t, store.Clear("datasets", "*:*"))
	_, ok, err = store.Load("datasets", "*:*")
	require.NoError(t, err)
	require.False(t, ok)
}
