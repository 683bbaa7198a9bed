package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/esgf/solrsync/common/types"
	"github.com/esgf/solrsync/log"
)

// RepairResult counts the work done on one window.
// Examined always equals Migrated plus Skipped.
type RepairResult struct {
	Examined int
	Migrated int
	Skipped  int
	Pages    int
	// Cursor is the source offset after the last written page.
	Cursor int
	// NumFound is the number of source records matching the query when the
	// last page was read.
	NumFound int64
}

func (r *RepairResult) add(o RepairResult) {
	r.Examined += o.Examined
	r.Migrated += o.Migrated
	r.Skipped += o.Skipped
	r.Pages += o.Pages
	r.Cursor = o.Cursor
	r.NumFound = o.NumFound
}

// CopyOptions bound a paged copy.
type CopyOptions struct {
	// Start is the source offset of the first page.
	Start int
	// MaxRecords caps the number of records read. Zero means no limit.
	MaxRecords int
}

// Repairer makes a target window a copy of the same source window.
type Repairer struct {
	source    index
	target    index
	batchSize int
	fix       *fixer
	logger    *zap.Logger
}

// NewRepairer creates a repairer copying from source to target in pages of batchSize.
func NewRepairer(source, target index, batchSize int, fixups FixupConfig, logger *zap.Logger) *Repairer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repairer{
		source:    source,
		target:    target,
		batchSize: max(batchSize, 1),
		fix:       newFixer(fixups),
		logger:    logger,
	}
}

// Repair deletes the target records matching q, copies the source records
// matching q and commits the target core once. The delete is not committed
// on its own, so the target keeps its previous content until the commit.
// When opts.Start is not zero the earlier pages are assumed to be written
// already and the delete is not issued.
func (r *Repairer) Repair(ctx context.Context, q types.Query, opts CopyOptions) (RepairResult, error) {
	if opts.Start == 0 {
		if err := r.target.DeleteByQuery(ctx, q, false); err != nil {
			return RepairResult{}, fmt.Errorf("delete %s %s: %w", q.Core, q.Window, writeError(err))
		}
	}
	res, err := r.Copy(ctx, q, opts)
	if err != nil {
		return res, err
	}
	if err := r.commit(ctx, q.Core); err != nil {
		return res, err
	}
	windowsRepaired.WithLabelValues(q.Core).Inc()
	r.logger.Info("window repaired",
		log.ZContext(ctx),
		log.Core(q.Core),
		log.Window(q.Window),
		zap.Int("migrated", res.Migrated),
		zap.Int("skipped", res.Skipped),
		zap.Int("pages", res.Pages),
	)
	return res, nil
}

// Copy pages through the source and writes every page to the target without
// committing. The cursor advances by the number of records read, so a copy
// interrupted after a page can be continued with Start set to Cursor.
func (r *Repairer) Copy(ctx context.Context, q types.Query, opts CopyOptions) (RepairResult, error) {
	res := RepairResult{Cursor: opts.Start}
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rows := r.batchSize
		if opts.MaxRecords > 0 {
			rows = min(rows, opts.MaxRecords-res.Examined)
		}
		if rows <= 0 {
			return res, nil
		}
		page, err := r.source.Fetch(ctx, q, res.Cursor, rows)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			return res, fmt.Errorf("%w: fetch %s %s at %d: %w", ErrProbeUnavailable, q.Core, q.Window, res.Cursor, err)
		}
		res.NumFound = page.NumFound
		if len(page.Records) == 0 {
			return res, nil
		}
		for i := range page.Records {
			r.fix.apply(q.Core, &page.Records[i])
		}
		out, err := r.writeBatch(ctx, q.Core, page.Records)
		if err != nil {
			return res, err
		}
		res.Pages++
		res.Examined += len(page.Records)
		res.Migrated += out.Written
		res.Skipped += out.Skipped
		res.Cursor += len(page.Records)
		r.logger.Debug("page copied",
			log.Core(q.Core),
			log.Window(q.Window),
			zap.Int("cursor", res.Cursor),
			zap.Int64("num_found", page.NumFound),
			zap.Int("written", out.Written),
			zap.Int("skipped", out.Skipped),
			zap.Bool("fallback", out.Fallback),
		)
		if int64(res.Cursor) >= page.NumFound {
			return res, nil
		}
	}
}

// writeBatch writes records in one request and falls back to one request
// per record if that fails. A record rejected for its revision is written
// once more without it. Records still failing are skipped.
func (r *Repairer) writeBatch(ctx context.Context, core string, records []types.Record) (Outcome, error) {
	err := writeError(r.target.BulkWrite(ctx, core, records, false))
	if err == nil {
		recordsMigrated.WithLabelValues(core).Add(float64(len(records)))
		return Outcome{Written: len(records)}, nil
	}
	if Classify(err) == KindFatal {
		return Outcome{}, err
	}
	r.logger.Warn("batch write failed, writing records one by one",
		log.Core(core),
		zap.Int("batch", len(records)),
		zap.Error(err),
	)
	batchFallbacks.WithLabelValues(core).Inc()
	if errors.Is(err, ErrWriteConflict) {
		writeConflicts.WithLabelValues(core).Inc()
	}

	out := Outcome{Fallback: true}
	for _, rec := range records {
		err := r.writeRecord(ctx, core, rec)
		switch Classify(err) {
		case KindNone:
			out.Written++
			recordsMigrated.WithLabelValues(core).Inc()
		case KindFatal:
			return out, err
		default:
			out.Skipped++
			recordsSkipped.WithLabelValues(core).Inc()
			r.logger.Warn("record skipped",
				log.Core(core),
				zap.String("id", rec.ID),
				zap.Error(fmt.Errorf("%w: %w", ErrRecordSkipped, err)),
			)
		}
	}
	return out, nil
}

func (r *Repairer) writeRecord(ctx context.Context, core string, rec types.Record) error {
	err := writeError(r.target.BulkWrite(ctx, core, []types.Record{rec}, false))
	if !errors.Is(err, ErrWriteConflict) {
		return err
	}
	writeConflicts.WithLabelValues(core).Inc()
	r.logger.Debug("write conflict, retrying without revision",
		log.Core(core),
		zap.String("id", rec.ID),
		zap.Error(err),
	)
	rec = rec.Clone()
	r.fix.stripVersions(&rec)
	return writeError(r.target.BulkWrite(ctx, core, []types.Record{rec}, false))
}

func (r *Repairer) commit(ctx context.Context, core string) error {
	if err := r.target.Commit(ctx, core); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: commit %s: %w", ErrCommitFailure, core, err)
	}
	return nil
}

func (r *Repairer) optimize(ctx context.Context, core string) error {
	if err := r.target.Optimize(ctx, core); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: optimize %s: %w", ErrCommitFailure, core, err)
	}
	return nil
}
