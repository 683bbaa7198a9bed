package sql

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationsApplied(t *testing.T) {
	db := InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	version, err := Version(db)
	require.NoError(t, err)
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.Equal(t, migrations[len(migrations)-1].order, version)

	var tables []string
	_, err = db.Exec("select name from sqlite_master where type = 'table' order by name", nil,
		func(stmt *Statement) bool {
			tables = append(tables, stmt.ColumnText(0))
			return true
		})
	require.NoError(t, err)
	require.Equal(t, []string{"checkpoints", "session_cores", "sessions"}, tables)
}

func TestReopenKeepsVersion(t *testing.T) {
	uri := "file:" + filepath.Join(t.TempDir(), "state.sql")
	db, err := Open(uri)
	require.NoError(t, err)
	_, err = db.Exec("insert into sessions (id, source, target, started) values ('a', 's', 't', 1)", nil, nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(uri)
	require.NoError(t, err)
	defer db.Close()
	rows, err := db.Exec("select id from sessions", nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, rows)
}

func TestTxRollback(t *testing.T) {
	db := InMemory()
	defer db.Close()

	insert := func(tx Executor) error {
		_, err := tx.Exec("insert into sessions (id, source, target, started) values ('a', 's', 't', 1)", nil, nil)
		return err
	}
	failure := errors.New("test")
	err := db.WithTx(context.Background(), func(tx *Tx) error {
		require.NoError(t, insert(tx))
		return failure
	})
	require.ErrorIs(t, err, failure)

	rows, err := db.Exec("select id from sessions", nil, nil)
	require.NoError(t, err)
	require.Zero(t, rows)

	require.NoError(t, db.WithTx(context.Background(), func(tx *Tx) error {
		return insert(tx)
	}))
	require.ErrorIs(t, insert(db), ErrObjectExists)
}
