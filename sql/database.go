// Package sql is the sqlite state database of solrsync. It keeps resume
// checkpoints and the history of finished sessions.
package sql

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	sqlite "github.com/go-llsqlite/crawshaw"
	"github.com/go-llsqlite/crawshaw/sqlitex"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	// ErrNoConnection is returned when the pool is closed or the context ends
	// before a connection is free.
	ErrNoConnection = errors.New("database: no free connection")
	// ErrNotFound is returned if requested record is not found.
	ErrNotFound = errors.New("database: not found")
	// ErrObjectExists is returned when a primary key or unique constraint fails.
	ErrObjectExists = errors.New("database: object exists")
)

// Executor runs one statement. Both *Database and *Tx implement it.
type Executor interface {
	Exec(string, Encoder, Decoder) (int, error)
}

// Statement is an sqlite statement.
type Statement = sqlite.Stmt

// Encoder binds parameters, positional (?1) or named (@core).
type Encoder func(*Statement)

// Decoder reads one row. Returning false stops the iteration.
type Decoder func(*Statement) bool

type conf struct {
	connections   int
	inMemory      bool
	enableLatency bool
	logger        *zap.Logger
}

// Opt for configuring database.
type Opt func(c *conf)

// WithLogger specifies logger for the database.
func WithLogger(logger *zap.Logger) Opt {
	return func(c *conf) {
		c.logger = logger
	}
}

// WithLatencyMetering records the duration of every statement.
func WithLatencyMetering(enable bool) Opt {
	return func(c *conf) {
		c.enableLatency = enable
	}
}

// InMemory creates a migrated in-memory database with a single connection
// and panics if that fails. It is meant for tests.
func InMemory(opts ...Opt) *Database {
	opts = append(opts, func(c *conf) {
		c.connections = 1
		c.inMemory = true
	})
	db, err := Open("file::memory:?mode=memory", opts...)
	if err != nil {
		panic(err)
	}
	return db
}

// Open opens the database at uri in WAL mode, creating it if it does not
// exist, and applies pending migrations.
func Open(uri string, opts ...Opt) (*Database, error) {
	cfg := &conf{connections: 2, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	pool, err := openPool(uri, cfg)
	if err != nil {
		return nil, err
	}
	db := &Database{pool: pool}
	if cfg.enableLatency {
		db.latency = queryDuration
	}
	before, after, err := migrate(db)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("migrate %s: %w", uri, err), db.Close())
	}
	if before != after {
		cfg.logger.Info("state database migrated",
			zap.String("uri", uri),
			zap.Int("from", before),
			zap.Int("to", after),
		)
	}
	return db, nil
}

func openPool(uri string, cfg *conf) (*sqlitex.Pool, error) {
	if cfg.inMemory {
		pool, err := sqlitex.Open(uri, 0, cfg.connections)
		if err != nil {
			return nil, fmt.Errorf("open db %s: %w", uri, err)
		}
		return pool, nil
	}
	flags := sqlite.SQLITE_OPEN_READWRITE |
		sqlite.SQLITE_OPEN_WAL |
		sqlite.SQLITE_OPEN_URI |
		sqlite.SQLITE_OPEN_NOMUTEX
	pool, err := sqlitex.Open(uri, flags, cfg.connections)
	if err == nil {
		return pool, nil
	}
	if sqlite.ErrCode(err) != sqlite.SQLITE_CANTOPEN {
		return nil, fmt.Errorf("open db %s: %w", uri, err)
	}
	pool, err = sqlitex.Open(uri, flags|sqlite.SQLITE_OPEN_CREATE, cfg.connections)
	if err != nil {
		return nil, fmt.Errorf("create db %s: %w", uri, err)
	}
	return pool, nil
}

// Database is a pool of connections to one sqlite database.
type Database struct {
	pool *sqlitex.Pool

	closeMu sync.Mutex
	closed  bool

	latency *prometheus.HistogramVec
}

func (db *Database) conn(ctx context.Context) (*sqlite.Conn, error) {
	start := time.Now()
	conn := db.pool.Get(ctx)
	if conn == nil {
		return nil, ErrNoConnection
	}
	connWaitLatency.Observe(time.Since(start).Seconds())
	return conn, nil
}

// WithTx runs exec in an immediate transaction and commits it if exec
// returns nil. Otherwise the transaction is rolled back.
func (db *Database) WithTx(ctx context.Context, exec func(*Tx) error) error {
	conn, err := db.conn(ctx)
	if err != nil {
		return err
	}
	defer db.pool.Put(conn)
	tx := &Tx{db: db, conn: conn}
	if _, err := conn.Prep("BEGIN IMMEDIATE;").Step(); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := exec(tx); err != nil {
		if _, rerr := conn.Prep("ROLLBACK;").Step(); rerr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rerr))
		}
		return err
	}
	if _, err := conn.Prep("COMMIT;").Step(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Exec runs query on a pooled connection. It blocks until a connection is
// free or the database is closed.
func (db *Database) Exec(query string, encoder Encoder, decoder Decoder) (int, error) {
	conn, err := db.conn(context.Background())
	if err != nil {
		return 0, err
	}
	defer db.pool.Put(conn)
	return db.exec(conn, query, encoder, decoder)
}

// Close closes all pooled connections. Closing twice is a no-op.
func (db *Database) Close() error {
	db.closeMu.Lock()
	defer db.closeMu.Unlock()
	if db.closed {
		return nil
	}
	if err := db.pool.Close(); err != nil {
		return fmt.Errorf("close pool: %w", err)
	}
	db.closed = true
	return nil
}

func (db *Database) exec(conn *sqlite.Conn, query string, encoder Encoder, decoder Decoder) (int, error) {
	if db.latency != nil {
		defer func(start time.Time) {
			db.latency.WithLabelValues(query).Observe(float64(time.Since(start)))
		}(time.Now())
	}
	stmt, err := conn.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("prepare %s: %w", query, err)
	}
	if encoder != nil {
		encoder(stmt)
	}
	defer stmt.ClearBindings()

	rows := 0
	for {
		row, err := stmt.Step()
		if err != nil {
			code := sqlite.ErrCode(err)
			if code == sqlite.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite.SQLITE_CONSTRAINT_UNIQUE {
				return 0, ErrObjectExists
			}
			return 0, fmt.Errorf("step %d: %w", rows, err)
		}
		if !row {
			return rows, nil
		}
		rows++
		if decoder != nil && !decoder(stmt) {
			if err := stmt.Reset(); err != nil {
				return rows, fmt.Errorf("statement reset: %w", err)
			}
			return rows, nil
		}
	}
}

// Tx is an open transaction, valid only inside WithTx.
type Tx struct {
	db   *Database
	conn *sqlite.Conn
}

// Exec runs query inside the transaction.
func (tx *Tx) Exec(query string, encoder Encoder, decoder Decoder) (int, error) {
	return tx.db.exec(tx.conn, query, encoder, decoder)
}

// IsNull returns true if the specified result column is null.
func IsNull(stmt *Statement, col int) bool {
	return stmt.ColumnType(col) == sqlite.SQLITE_NULL
}
