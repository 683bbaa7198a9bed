package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/esgf/solrsync/sql"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Session is one stored run.
type Session struct {
	ID       string
	Source   string
	Target   string
	Started  time.Time
	Finished time.Time
	Dirty    bool
	Status   string
	Cores    []Core
}

// Core is the stored outcome of one core in a session.
type Core struct {
	Name            string
	WindowsExamined int
	WindowsRepaired int
	Migrated        int
	Skipped         int
	InSync          bool
}

func Start(db sql.Executor, id, source, target string, started time.Time) error {
	_, err := db.Exec(`insert into sessions (id, source, target, started, status)
	values (?1, ?2, ?3, ?4, ?5);`,
		func(stmt *sql.Statement) {
			stmt.BindText(1, id)
			stmt.BindText(2, source)
			stmt.BindText(3, target)
			stmt.BindInt64(4, started.Unix())
			stmt.BindText(5, StatusRunning)
		}, nil)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", id, err)
	}
	return nil
}

func Finish(db sql.Executor, id string, finished time.Time, dirty bool, status string) error {
	rows, err := db.Exec(`update sessions set finished = ?2, dirty = ?3, status = ?4
	where id = ?1 returning id;`,
		func(stmt *sql.Statement) {
			stmt.BindText(1, id)
			stmt.BindInt64(2, finished.Unix())
			stmt.BindBool(3, dirty)
			stmt.BindText(4, status)
		}, nil)
	if err != nil {
		return fmt.Errorf("finish session %s: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: session %s", sql.ErrNotFound, id)
	}
	return nil
}

func AddCore(db sql.Executor, id string, core Core) error {
	_, err := db.Exec(`insert into session_cores
	(session_id, core, windows_examined, windows_repaired, migrated, skipped, in_sync)
	values (?1, ?2, ?3, ?4, ?5, ?6, ?7);`,
		func(stmt *sql.Statement) {
			stmt.BindText(1, id)
			stmt.BindText(2, core.Name)
			stmt.BindInt64(3, int64(core.WindowsExamined))
			stmt.BindInt64(4, int64(core.WindowsRepaired))
			stmt.BindInt64(5, int64(core.Migrated))
			stmt.BindInt64(6, int64(core.Skipped))
			stmt.BindBool(7, core.InSync)
		}, nil)
	if err != nil {
		return fmt.Errorf("insert core %s of session %s: %w", core.Name, id, err)
	}
	return nil
}

// Record stores the cores and the final status of a session in one
// transaction, so a session is never finished with part of its cores.
func Record(ctx context.Context, db *sql.Database, id string, cores []Core,
	finished time.Time, dirty bool, status string,
) error {
	return db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, core := range cores {
			if err := AddCore(tx, id, core); err != nil {
				return err
			}
		}
		return Finish(tx, id, finished, dirty, status)
	})
}

// Get loads a session together with its cores.
func Get(db sql.Executor, id string) (*Session, error) {
	var s *Session
	_, err := db.Exec(`select id, source, target, started, finished, dirty, status
	from sessions where id = ?1;`,
		func(stmt *sql.Statement) {
			stmt.BindText(1, id)
		}, func(stmt *sql.Statement) bool {
			s = decodeSession(stmt)
			return false
		})
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: session %s", sql.ErrNotFound, id)
	}
	if s.Cores, err = cores(db, id); err != nil {
		return nil, err
	}
	return s, nil
}

// Latest returns up to n most recent sessions, newest first.
func Latest(db sql.Executor, n int) ([]*Session, error) {
	var all []*Session
	_, err := db.Exec(`select id, source, target, started, finished, dirty, status
	from sessions order by started desc, rowid desc limit ?1;`,
		func(stmt *sql.Statement) {
			stmt.BindInt64(1, int64(n))
		}, func(stmt *sql.Statement) bool {
			all = append(all, decodeSession(stmt))
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	for _, s := range all {
		if s.Cores, err = cores(db, s.ID); err != nil {
			return nil, err
		}
	}
	return all, nil
}

func decodeSession(stmt *sql.Statement) *Session {
	s := &Session{
		ID:      stmt.ColumnText(0),
		Source:  stmt.ColumnText(1),
		Target:  stmt.ColumnText(2),
		Started: time.Unix(stmt.ColumnInt64(3), 0).UTC(),
		Dirty:   stmt.ColumnInt(5) != 0,
		Status:  stmt.ColumnText(6),
	}
	if !sql.IsNull(stmt, 4) {
		s.Finished = time.Unix(stmt.ColumnInt64(4), 0).UTC()
	}
	return s
}

func cores(db sql.Executor, id string) ([]Core, error) {
	var all []Core
	_, err := db.Exec(`select core, windows_examined, windows_repaired, migrated, skipped, in_sync
	from session_cores where session_id = ?1 order by rowid;`,
		func(stmt *sql.Statement) {
			stmt.BindText(1, id)
		}, func(stmt *sql.Statement) bool {
			all = append(all, Core{
				Name:            stmt.ColumnText(0),
				WindowsExamined: stmt.ColumnInt(1),
				WindowsRepaired: stmt.ColumnInt(2),
				Migrated:        stmt.ColumnInt(3),
				Skipped:         stmt.ColumnInt(4),
				InSync:          stmt.ColumnInt(5) != 0,
			})
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("select cores of session %s: %w", id, err)
	}
	return all, nil
}
