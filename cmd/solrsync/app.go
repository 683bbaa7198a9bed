package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/jonboulle/clockwork"
	"github.com/natefinch/atomic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/esgf/solrsync/common/types"
	"github.com/esgf/solrsync/config"
	"github.com/esgf/solrsync/filesystem"
	"github.com/esgf/solrsync/log"
	"github.com/esgf/solrsync/metrics"
	"github.com/esgf/solrsync/reconcile"
	"github.com/esgf/solrsync/solr"
	"github.com/esgf/solrsync/sql"
	"github.com/esgf/solrsync/sql/checkpoints"
	"github.com/esgf/solrsync/sql/sessions"
)

// Logger names.
const (
	AppLogger       = "app"
	ReconcileLogger = "reconcile"
	SolrLogger      = "solr"
	SQLLogger       = "sql"
)

// errNotInSync is returned by check when any core diverges.
var errNotInSync = errors.New("indexes are not in sync")

// index is the record index used by sessions.
type index interface {
	Stats(ctx context.Context, q types.Query) (types.Signature, error)
	Fetch(ctx context.Context, q types.Query, start, rows int) (types.Page, error)
	BulkWrite(ctx context.Context, core string, records []types.Record, commit bool) error
	DeleteByQuery(ctx context.Context, q types.Query, commit bool) error
	Commit(ctx context.Context, core string) error
	Optimize(ctx context.Context, core string) error
}

// IndexFactory connects to the index described by cfg.
type IndexFactory func(cfg solr.Config, logger *zap.Logger) (index, error)

func newSolrIndex(cfg solr.Config, logger *zap.Logger) (index, error) {
	return solr.NewClient(cfg, solr.WithLogger(logger))
}

// Option to modify an App instance.
type Option func(app *App)

// WithIndexFactory replaces the Solr client.
func WithIndexFactory(f IndexFactory) Option {
	return func(app *App) {
		app.newIndex = f
	}
}

func WithClock(clock clockwork.Clock) Option {
	return func(app *App) {
		app.clock = clock
	}
}

// WithLogWriter sets where logs are written.
func WithLogWriter(w io.Writer) Option {
	return func(app *App) {
		app.logWriter = w
	}
}

// WithGatherer sets the registry pushed to the pushgateway.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(app *App) {
		app.gatherer = g
	}
}

// App runs one command against the configured indexes.
type App struct {
	conf      *config.Config
	fs        afero.Fs
	clock     clockwork.Clock
	out       io.Writer
	logWriter io.Writer
	gatherer  prometheus.Gatherer
	newIndex  IndexFactory

	log      *zap.Logger
	loggers  map[string]*zap.Logger
	db       *sql.Database
	fileLock *flock.Flock
}

// New creates an App. Output meant for the user goes to out.
func New(conf *config.Config, out io.Writer, opts ...Option) *App {
	app := &App{
		conf:      conf,
		fs:        afero.NewOsFs(),
		clock:     clockwork.NewRealClock(),
		out:       out,
		logWriter: os.Stderr,
		gatherer:  prometheus.DefaultGatherer,
		newIndex:  newSolrIndex,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Initialize sets up logging and the data directory.
func (app *App) Initialize() error {
	enc, err := log.Encoder(app.conf.Logging.Encoder)
	if err != nil {
		return err
	}
	levels := map[string]string{
		AppLogger:       app.conf.Logging.AppLoggerLevel,
		ReconcileLogger: app.conf.Logging.ReconcileLoggerLevel,
		SolrLogger:      app.conf.Logging.SolrLoggerLevel,
		SQLLogger:       app.conf.Logging.SQLLoggerLevel,
	}
	app.loggers = make(map[string]*zap.Logger, len(levels))
	for name, level := range levels {
		lvl, err := log.Level(level)
		if err != nil {
			return fmt.Errorf("logger %s: %w", name, err)
		}
		app.loggers[name] = log.NewWithWriter(app.logWriter, name, lvl, enc)
	}
	app.log = app.loggers[AppLogger]

	if _, err := filesystem.EnsureDir(app.fs, app.conf.DataDirParent); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	return nil
}

func (app *App) addLogger(name string) *zap.Logger {
	if l, ok := app.loggers[name]; ok {
		return l
	}
	return app.log.Named(name)
}

// Lock takes the lock of the target. Only one session may write to a target.
func (app *App) Lock() error {
	path := app.conf.LockFile()
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("flock %s: %w", path, err)
	} else if !locked {
		return fmt.Errorf("another session is writing to %s (locking file %s)", app.conf.Target.URL, fl.Path())
	}
	app.fileLock = fl
	return nil
}

// Unlock unlocks the app. It is a no-op if the app is not locked.
func (app *App) Unlock() {
	if app.fileLock == nil {
		return
	}
	if err := app.fileLock.Unlock(); err != nil {
		app.log.Error("failed to unlock file",
			zap.String("path", app.fileLock.Path()),
			zap.Error(err),
		)
	}
	app.fileLock = nil
}

// OpenState opens the database with checkpoints and session history.
func (app *App) OpenState() error {
	db, err := sql.Open("file:"+app.conf.DatabaseFile(),
		sql.WithLogger(app.addLogger(SQLLogger)),
		sql.WithLatencyMetering(true),
	)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	app.db = db
	return nil
}

// Cleanup releases the lock and the database.
func (app *App) Cleanup() {
	app.Unlock()
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.log.Error("failed to close state database", zap.Error(err))
	}
	app.db = nil
}

// Run executes one session in the given mode. Check sessions do not take
// the target lock and return errNotInSync if any core diverges.
func (app *App) Run(ctx context.Context, mode string, localize bool) error {
	if err := app.conf.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if mode != reconcile.ModeCheck {
		if err := app.Lock(); err != nil {
			return err
		}
	}
	if !app.conf.NoCheckpoints {
		if err := app.OpenState(); err != nil {
			return err
		}
	}

	solrLogger := app.addLogger(SolrLogger)
	source, err := app.newIndex(app.conf.Source, solrLogger.Named("source"))
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	target, err := app.newIndex(app.conf.Target, solrLogger.Named("target"))
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}

	opts := []reconcile.Opt{
		reconcile.WithLogger(app.addLogger(ReconcileLogger)),
		reconcile.WithClock(app.clock),
	}
	if app.db != nil && mode == reconcile.ModeSync {
		opts = append(opts, reconcile.WithCheckpoints(checkpoints.NewStore(app.db, app.conf.Target.URL, app.clock)))
	}
	session, err := reconcile.New(source, target, app.conf.Sync, opts...)
	if err != nil {
		return err
	}
	if app.db != nil {
		if err := sessions.Start(app.db, session.ID(), app.conf.Source.URL, app.conf.Target.URL, app.clock.Now()); err != nil {
			return err
		}
	}

	report, runErr := app.runSession(ctx, session, mode, localize)
	if report != nil {
		app.record(ctx, report, runErr)
		app.render(report)
		if err := app.writeReport(report); err != nil {
			app.log.Error("failed to write report", zap.String("path", app.conf.Report), zap.Error(err))
		}
	}
	app.pushMetrics(ctx, mode)
	if runErr != nil {
		return runErr
	}
	if mode == reconcile.ModeCheck && !report.InSync() {
		return errNotInSync
	}
	return nil
}

// runSession runs the session next to the metrics server, if enabled.
func (app *App) runSession(
	ctx context.Context,
	session *reconcile.Session,
	mode string,
	localize bool,
) (*reconcile.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	if addr := app.conf.Metrics.Listen; addr != "" {
		eg.Go(func() error {
			return metrics.Serve(ctx, app.log, addr)
		})
	}

	var report *reconcile.Report
	eg.Go(func() error {
		defer cancel()
		var err error
		switch mode {
		case reconcile.ModeSync:
			report, err = session.Sync(ctx)
		case reconcile.ModeMigrate:
			report, err = session.Migrate(ctx)
		case reconcile.ModeHarvest:
			report, err = session.Harvest(ctx)
		case reconcile.ModeCheck:
			report, err = session.Check(ctx, localize)
		default:
			err = fmt.Errorf("unknown mode %q", mode)
		}
		return err
	})
	return report, eg.Wait()
}

// record stores the report in the session history.
func (app *App) record(ctx context.Context, report *reconcile.Report, runErr error) {
	if app.db == nil {
		return
	}
	status := sessions.StatusCompleted
	if runErr != nil {
		status = sessions.StatusFailed
	}
	cores := make([]sessions.Core, 0, len(report.Cores))
	for _, cr := range report.Cores {
		cores = append(cores, sessions.Core{
			Name:            cr.Core,
			WindowsExamined: cr.WindowsExamined,
			WindowsRepaired: cr.WindowsRepaired,
			Migrated:        cr.Migrated,
			Skipped:         cr.Skipped,
			InSync:          cr.InSync,
		})
	}
	// an interrupted session is still recorded
	ctx = context.WithoutCancel(ctx)
	if err := sessions.Record(ctx, app.db, report.ID, cores, report.Finished, report.Dirty, status); err != nil {
		app.log.Error("failed to record session", zap.String("id", report.ID), zap.Error(err))
	}
}

func (app *App) writeReport(report *reconcile.Report) error {
	if app.conf.Report == "" {
		return nil
	}
	path := filesystem.ExpandPath(app.conf.Report)
	if _, err := filesystem.EnsureDir(app.fs, filepath.Dir(path)); err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

func (app *App) pushMetrics(ctx context.Context, mode string) {
	if app.conf.Metrics.Push.URL == "" {
		return
	}
	// the session context may be canceled already
	ctx = context.WithoutCancel(ctx)
	err := metrics.Push(ctx, app.conf.Metrics.Push, app.gatherer, map[string]string{
		"mode":   mode,
		"target": app.conf.Target.URL,
	})
	if err != nil {
		app.log.Warn("failed to push metrics", zap.Error(err))
	}
}
