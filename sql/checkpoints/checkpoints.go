// Package checkpoints stores resume points of interrupted reconciliation walks.
//
// A checkpoint is the start of the lowest leaf window repaired so far for a
// (target, core, filter) triple. Walks go backward in time, so every window
// starting at or after the boundary is already repaired.
package checkpoints

import (
	"fmt"
	"time"

	"github.com/esgf/solrsync/sql"
)

// Key identifies a walk.
type Key struct {
	Target string
	Core   string
	Filter string
}

// Checkpoint is a stored resume point.
type Checkpoint struct {
	Key
	Boundary time.Time
	// Windows is the number of leaf windows repaired before the boundary was saved.
	Windows int
	Updated time.Time
}

// Save records boundary for key, replacing the previous value.
func Save(db sql.Executor, key Key, boundary time.Time, windows int, now time.Time) error {
	_, err := db.Exec(`insert into checkpoints
	(target, core, filter, boundary, windows, updated) values (?1, ?2, ?3, ?4, ?5, ?6)
	on conflict(target, core, filter) do update set boundary = ?4, windows = ?5, updated = ?6;`,
		func(stmt *sql.Statement) {
			stmt.BindText(1, key.Target)
			stmt.BindText(2, key.Core)
			stmt.BindText(3, key.Filter)
			stmt.BindInt64(4, boundary.Unix())
			stmt.BindInt64(5, int64(windows))
			stmt.BindInt64(6, now.Unix())
		}, nil)
	if err != nil {
		return fmt.Errorf("save checkpoint %s/%s: %w", key.Target, key.Core, err)
	}
	return nil
}

// Get returns the boundary for key or sql.ErrNotFound.
func Get(db sql.Executor, key Key) (Checkpoint, error) {
	cp := Checkpoint{Key: key}
	rows, err := db.Exec(`select boundary, windows, updated from checkpoints
	where target = ?1 and core = ?2 and filter = ?3;`,
		func(stmt *sql.Statement) {
			stmt.BindText(1, key.Target)
			stmt.BindText(2, key.Core)
			stmt.BindText(3, key.Filter)
		}, func(stmt *sql.Statement) bool {
			cp.Boundary = time.Unix(stmt.ColumnInt64(0), 0).UTC()
			cp.Windows = int(stmt.ColumnInt64(1))
			cp.Updated = time.Unix(stmt.ColumnInt64(2), 0).UTC()
			return true
		})
	if err != nil {
		return cp, fmt.Errorf("get checkpoint %s/%s: %w", key.Target, key.Core, err)
	}
	if rows == 0 {
		return cp, fmt.Errorf("%w: checkpoint %s/%s", sql.ErrNotFound, key.Target, key.Core)
	}
	return cp, nil
}

// Clear removes the checkpoint for key. Missing checkpoints are not an error.
func Clear(db sql.Executor, key Key) error {
	_, err := db.Exec(`delete from checkpoints where target = ?1 and core = ?2 and filter = ?3;`,
		func(stmt *sql.Statement) {
			stmt.BindText(1, key.Target)
			stmt.BindText(2, key.Core)
			stmt.BindText(3, key.Filter)
		}, nil)
	if err != nil {
		return fmt.Errorf("clear checkpoint %s/%s: %w", key.Target, key.Core, err)
	}
	return nil
}

// ClearTarget removes all checkpoints of a target and returns how many were removed.
func ClearTarget(db sql.Executor, target string) (int, error) {
	n, err := db.Exec(`delete from checkpoints where target = ?1 returning core;`,
		func(stmt *sql.Statement) {
			stmt.BindText(1, target)
		}, nil)
	if err != nil {
		return 0, fmt.Errorf("clear checkpoints of %s: %w", target, err)
	}
	return n, nil
}

// All lists every stored checkpoint ordered by target and core.
func All(db sql.Executor) ([]Checkpoint, error) {
	var all []Checkpoint
	_, err := db.Exec(`select target, core, filter, boundary, windows, updated from checkpoints
	order by target, core, filter;`, nil,
		func(stmt *sql.Statement) bool {
			all = append(all, Checkpoint{
				Key: Key{
					Target: stmt.ColumnText(0),
					Core:   stmt.ColumnText(1),
					Filter: stmt.ColumnText(2),
				},
				Boundary: time.Unix(stmt.ColumnInt64(3), 0).UTC(),
				Windows:  int(stmt.ColumnInt64(4)),
				Updated:  time.Unix(stmt.ColumnInt64(5), 0).UTC(),
			})
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	return all, nil
}
