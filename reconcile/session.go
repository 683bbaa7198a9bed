package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/esgf/solrsync/common/types"
	"github.com/esgf/solrsync/log"
)

// Session modes.
const (
	ModeSync    = "sync"
	ModeMigrate = "migrate"
	ModeHarvest = "harvest"
	ModeCheck   = "check"
)

type Opt func(*Session)

func WithLogger(logger *zap.Logger) Opt {
	return func(s *Session) {
		s.logger = logger
	}
}

func WithClock(clock clockwork.Clock) Opt {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithCheckpoints enables resuming interrupted walks.
func WithCheckpoints(store checkpointStore) Opt {
	return func(s *Session) {
		s.checkpoints = store
	}
}

// WithID overrides the random session id.
func WithID(id string) Opt {
	return func(s *Session) {
		s.id = id
	}
}

// Session reconciles the configured cores of a target index with a source
// index. A session is used for a single run and must not be shared between
// goroutines.
type Session struct {
	id          string
	cfg         Config
	source      index
	target      index
	checkpoints checkpointStore
	clock       clockwork.Clock
	logger      *zap.Logger

	walker   *Walker
	repairer *Repairer

	// dirty is set once any write was issued to the target.
	dirty bool
}

// New creates a session. The target is the only index that is written.
func New(source, target index, cfg Config, opts ...Opt) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	s := &Session{
		id:     uuid.NewString(),
		cfg:    cfg,
		source: source,
		target: target,
		clock:  clockwork.NewRealClock(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	ladder, err := types.ParseLadder(cfg.Granularities)
	if err != nil {
		return nil, err
	}
	cmp, err := newComparator(source, target, cfg.SourceCacheSize, s.logger)
	if err != nil {
		return nil, err
	}
	s.walker = &Walker{cmp: cmp, ladder: ladder, logger: s.logger}
	s.repairer = NewRepairer(source, target, cfg.BatchSize, cfg.Fixups, s.logger)
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

// Dirty reports whether the session wrote to the target.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Sync localizes and repairs divergence for every core, then commits and
// optimizes the target if anything was repaired. A session that finds
// every core in sync does not write at all.
func (s *Session) Sync(ctx context.Context) (*Report, error) {
	if s.cfg.Start != 0 || s.cfg.MaxRecords != 0 {
		s.logger.Warn("start and max records apply to migrate and harvest, sync copies whole windows",
			zap.Int("start", s.cfg.Start),
			zap.Int("max_records", s.cfg.MaxRecords),
		)
	}
	return s.run(ctx, ModeSync, s.syncCore)
}

// Check compares every core over all time without writing. With localize
// set, divergent cores are also partitioned and their divergent leaf windows
// counted.
func (s *Session) Check(ctx context.Context, localize bool) (*Report, error) {
	return s.run(ctx, ModeCheck, func(ctx context.Context, cr *CoreReport) error {
		return s.checkCore(ctx, cr, localize)
	})
}

// Migrate copies every record matching the query without comparing
// signatures and without deleting target records.
func (s *Session) Migrate(ctx context.Context) (*Report, error) {
	return s.run(ctx, ModeMigrate, s.migrateCore)
}

// Harvest copies every record of each core in rounds of RecordsPerSession
// records, committing after each round.
func (s *Session) Harvest(ctx context.Context) (*Report, error) {
	return s.run(ctx, ModeHarvest, s.harvestCore)
}

func (s *Session) run(ctx context.Context, mode string, fn func(context.Context, *CoreReport) error) (*Report, error) {
	ctx = log.WithSessionID(ctx, s.id)
	report := &Report{ID: s.id, Mode: mode, Started: s.clock.Now()}
	s.logger.Info("session started",
		log.ZContext(ctx),
		zap.String("mode", mode),
		zap.Strings("cores", s.cfg.Cores),
		zap.String("query", s.cfg.Query),
	)
	err := s.runCores(ctx, report, fn)
	if err == nil && s.dirty {
		err = s.finalize(ctx)
	}
	report.Finished = s.clock.Now()
	report.Dirty = s.dirty
	sessionDuration.Observe(report.Finished.Sub(report.Started).Seconds())
	if err != nil {
		sessionFail.Inc()
		report.Error = err.Error()
		s.logger.Error("session failed",
			log.ZContext(ctx),
			zap.String("mode", mode),
			zap.Bool("dirty", s.dirty),
			zap.Error(err),
		)
		return report, err
	}
	sessionSuccess.Inc()
	for _, cr := range report.Cores {
		s.logger.Info("core finished", log.ZContext(ctx), zap.Object("report", cr))
	}
	s.logger.Info("session finished",
		log.ZContext(ctx),
		zap.String("mode", mode),
		zap.Bool("in_sync", report.InSync()),
		zap.Int("migrated", report.Migrated()),
		zap.Int("skipped", report.Skipped()),
		zap.Duration("duration", report.Finished.Sub(report.Started)),
	)
	return report, nil
}

func (s *Session) runCores(ctx context.Context, report *Report, fn func(context.Context, *CoreReport) error) error {
	for _, core := range s.cfg.Cores {
		if err := ctx.Err(); err != nil {
			return err
		}
		cr := &CoreReport{Core: core}
		report.Cores = append(report.Cores, cr)
		if err := fn(ctx, cr); err != nil {
			return fmt.Errorf("core %s: %w", core, err)
		}
	}
	return nil
}

// finalize commits and optimizes every core once.
func (s *Session) finalize(ctx context.Context) error {
	for _, core := range s.cfg.Cores {
		if err := s.repairer.commit(ctx, core); err != nil {
			return err
		}
		if !s.cfg.Optimize {
			continue
		}
		if err := s.repairer.optimize(ctx, core); err != nil {
			return err
		}
	}
	s.logger.Info("target committed",
		log.ZContext(ctx),
		zap.Strings("cores", s.cfg.Cores),
		zap.Bool("optimized", s.cfg.Optimize),
	)
	return nil
}

func (s *Session) query(core string) types.Query {
	return types.Query{Core: core, Filter: s.cfg.Query}
}

func (s *Session) syncCore(ctx context.Context, cr *CoreReport) error {
	q := s.query(cr.Core)
	var resumeAt time.Time
	if s.checkpoints != nil && s.cfg.Resume {
		boundary, ok, err := s.checkpoints.Load(q.Core, q.Filter)
		if err != nil {
			return fmt.Errorf("load checkpoint: %w", err)
		}
		if ok {
			resumeAt = boundary
			cr.Resumed = true
			s.logger.Info("resuming walk", log.ZContext(ctx), log.Core(q.Core), zap.Time("boundary", boundary))
		}
	}

	// a repaired window is always copied in full, Start and MaxRecords bound migrations only
	res, err := s.walker.Walk(ctx, q, resumeAt, func(ctx context.Context, w types.TimeWindow) error {
		s.dirty = true
		rr, err := s.repairer.Repair(ctx, q.In(w), CopyOptions{})
		cr.Migrated += rr.Migrated
		cr.Skipped += rr.Skipped
		if err != nil {
			return err
		}
		cr.WindowsRepaired++
		if s.checkpoints != nil {
			if err := s.checkpoints.Save(q.Core, q.Filter, w.Start, cr.WindowsRepaired); err != nil {
				return fmt.Errorf("save checkpoint: %w", err)
			}
		}
		return nil
	})
	cr.WindowsExamined = res.Examined
	if err != nil {
		return err
	}

	final := res.Initial
	if !final.InSync() {
		if final, err = s.walker.cmp.compare(ctx, q); err != nil {
			return err
		}
	}
	cr.Source, cr.Target, cr.InSync = final.Source, final.Target, final.InSync()
	s.logger.Info("final verdict",
		log.ZContext(ctx),
		log.Core(q.Core),
		zap.Bool("in_sync", cr.InSync),
		zap.Int("leaves", len(res.Leaves)),
		zap.Int("rechecks", res.Rechecks),
		zap.Int("resumed", res.Resumed),
		log.Signature("source", final.Source),
		log.Signature("target", final.Target),
	)
	if s.checkpoints != nil {
		if err := s.checkpoints.Clear(q.Core, q.Filter); err != nil {
			return fmt.Errorf("clear checkpoint: %w", err)
		}
	}
	return nil
}

func (s *Session) checkCore(ctx context.Context, cr *CoreReport, localize bool) error {
	q := s.query(cr.Core)
	cmp, err := s.walker.cmp.compare(ctx, q)
	if err != nil {
		return err
	}
	cr.Source, cr.Target, cr.InSync = cmp.Source, cmp.Target, cmp.InSync()
	if cr.InSync || !localize {
		return nil
	}
	res, err := s.walker.Walk(ctx, q, time.Time{}, nil)
	cr.WindowsExamined = res.Examined
	cr.Divergent = len(res.Leaves)
	return err
}

func (s *Session) migrateCore(ctx context.Context, cr *CoreReport) error {
	q := s.query(cr.Core)
	res, err := s.copy(ctx, q, CopyOptions{Start: s.cfg.Start, MaxRecords: s.cfg.MaxRecords}, cr)
	if err != nil {
		return err
	}
	s.logger.Info("core migrated",
		log.ZContext(ctx),
		log.Core(q.Core),
		zap.Int("migrated", res.Migrated),
		zap.Int("skipped", res.Skipped),
		zap.Int64("num_found", res.NumFound),
	)
	return s.verdict(ctx, q, cr)
}

func (s *Session) harvestCore(ctx context.Context, cr *CoreReport) error {
	q := s.query(cr.Core)
	var total RepairResult
	total.Cursor = s.cfg.Start
	for round := 1; ; round++ {
		opts := CopyOptions{Start: total.Cursor, MaxRecords: s.cfg.RecordsPerSession}
		if s.cfg.MaxRecords > 0 {
			remaining := s.cfg.MaxRecords - total.Examined
			if remaining <= 0 {
				break
			}
			if opts.MaxRecords == 0 || remaining < opts.MaxRecords {
				opts.MaxRecords = remaining
			}
		}
		res, err := s.copy(ctx, q, opts, cr)
		if err != nil {
			return err
		}
		total.add(res)
		s.logger.Info("harvest round finished",
			log.ZContext(ctx),
			log.Core(q.Core),
			zap.Int("round", round),
			zap.Int("cursor", total.Cursor),
			zap.Int64("num_found", total.NumFound),
			zap.Int("migrated", total.Migrated),
		)
		if res.Examined == 0 || int64(total.Cursor) >= total.NumFound {
			break
		}
	}
	return s.verdict(ctx, q, cr)
}

// copy runs one paged copy and commits it.
func (s *Session) copy(ctx context.Context, q types.Query, opts CopyOptions, cr *CoreReport) (RepairResult, error) {
	res, err := s.repairer.Copy(ctx, q, opts)
	cr.Migrated += res.Migrated
	cr.Skipped += res.Skipped
	if res.Examined > 0 {
		s.dirty = true
	}
	if err != nil {
		return res, err
	}
	if res.Examined > 0 {
		if err := s.repairer.commit(ctx, q.Core); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (s *Session) verdict(ctx context.Context, q types.Query, cr *CoreReport) error {
	cmp, err := s.walker.cmp.compare(ctx, q)
	if err != nil {
		return err
	}
	cr.Source, cr.Target, cr.InSync = cmp.Source, cmp.Target, cmp.InSync()
	return nil
}
