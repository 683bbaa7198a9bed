package checkpoints

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/esgf/solrsync/sql"
)

// Store keeps the checkpoints of one target.
type Store struct {
	db     sql.Executor
	target string
	clock  clockwork.Clock
}

// NewStore binds checkpoints to target. A nil clock uses the wall clock.
func NewStore(db sql.Executor, target string, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{db: db, target: target, clock: clock}
}

func (s *Store) key(core, filter string) Key {
	return Key{Target: s.target, Core: core, Filter: filter}
}

// Load returns the saved boundary, if any.
func (s *Store) Load(core, filter string) (time.Time, bool, error) {
	cp, err := Get(s.db, s.key(core, filter))
	switch {
	case errors.Is(err, sql.ErrNotFound):
		return time.Time{}, false, nil
	case err != nil:
		return time.Time{}, false, err
	}
	return cp.Boundary, true, nil
}

func (s *Store) Save(core, filter string, boundary time.Time, windows int) error {
	return Save(s.db, s.key(core, filter), boundary, windows, s.clock.Now())
}

func (s *Store) Clear(core, filter string) error {
	return Clear(s.db, s.key(core, filter))
}
