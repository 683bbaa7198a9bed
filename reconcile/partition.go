package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/esgf/solrsync/common/types"
	"github.com/esgf/solrsync/log"
)

// LeafFunc repairs one divergent leaf window.
type LeafFunc func(ctx context.Context, w types.TimeWindow) error

// WalkResult describes one walk over a core.
type WalkResult struct {
	// Initial compares both indexes over all time.
	Initial Comparison
	// Outer is the window that was partitioned. It is zero when the initial
	// comparison was in sync.
	Outer types.TimeWindow
	// Examined is the number of sub-windows compared.
	Examined int
	// Rechecks is the number of enclosing windows compared again after repairs.
	Rechecks int
	// Resumed is the number of sub-windows skipped because they were repaired
	// by an earlier run.
	Resumed int
	// Leaves are the divergent finest windows, latest first.
	Leaves []types.TimeWindow
}

type frame struct {
	win types.TimeWindow
	// level indexes the ladder granularity used to split win.
	level    int
	subs     []types.TimeWindow
	next     int
	repaired bool
}

// Walker localizes divergence between two indexes by partitioning time
// windows from coarse to fine granularity.
type Walker struct {
	cmp    *comparator
	ladder []types.Granularity
	logger *zap.Logger
}

func (w *Walker) newFrame(win types.TimeWindow, level int) *frame {
	subs := win.Split(w.ladder[level])
	return &frame{win: win, level: level, subs: subs, next: len(subs) - 1}
}

// Walk compares q over all time and, if the indexes diverge, walks the outer
// window backward from its end, descending into divergent sub-windows until
// the finest granularity. Every divergent leaf is passed to onLeaf. After a
// repair the enclosing windows are compared again and dropped from the walk
// once they are in sync.
//
// With a nil onLeaf the walk is read-only and returns all divergent leaves.
// Sub-windows starting at or after resumeAt are skipped.
func (w *Walker) Walk(ctx context.Context, q types.Query, resumeAt time.Time, onLeaf LeafFunc) (WalkResult, error) {
	var res WalkResult
	initial, err := w.cmp.compare(ctx, q.In(types.Unbounded))
	if err != nil {
		return res, err
	}
	res.Initial = initial
	if initial.InSync() {
		return res, nil
	}
	outer, ok := initial.outer(w.ladder[0])
	if !ok {
		w.logger.Warn("signatures differ but no record has a timestamp",
			log.Core(q.Core),
			log.Signature("source", initial.Source),
			log.Signature("target", initial.Target),
		)
		return res, nil
	}
	res.Outer = outer
	w.logger.Info("partitioning divergent range",
		log.ZContext(ctx),
		log.Core(q.Core),
		log.Window(outer),
		zap.Timep("resume_at", nonZero(resumeAt)),
	)

	stack := []*frame{w.newFrame(outer, 0)}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		top := stack[len(stack)-1]
		if top.next < 0 {
			stack = stack[:len(stack)-1]
			if top.repaired && len(stack) > 0 {
				stack[len(stack)-1].repaired = true
				if stack, err = w.settle(ctx, q, stack, &res); err != nil {
					return res, err
				}
			}
			continue
		}
		sub := top.subs[top.next]
		top.next--
		if !resumeAt.IsZero() && !sub.Start.Before(resumeAt) {
			res.Resumed++
			continue
		}

		g := w.ladder[top.level]
		cmp, err := w.cmp.compare(ctx, q.In(sub))
		if err != nil {
			return res, err
		}
		res.Examined++
		windowsExamined.WithLabelValues(q.Core, g.String()).Inc()
		if cmp.InSync() {
			continue
		}
		if top.level+1 < len(w.ladder) {
			stack = append(stack, w.newFrame(sub, top.level+1))
			continue
		}

		res.Leaves = append(res.Leaves, sub)
		if onLeaf == nil {
			continue
		}
		if err := onLeaf(ctx, sub); err != nil {
			return res, err
		}
		top.repaired = true
		if stack, err = w.settle(ctx, q, stack, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// settle compares the windows of repaired frames again, innermost first, and
// pops every frame that is back in sync.
func (w *Walker) settle(ctx context.Context, q types.Query, stack []*frame, res *WalkResult) ([]*frame, error) {
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if !top.repaired {
			return stack, nil
		}
		cmp, err := w.cmp.compare(ctx, q.In(top.win))
		if err != nil {
			return stack, err
		}
		res.Rechecks++
		if !cmp.InSync() {
			return stack, nil
		}
		w.logger.Debug("window converged",
			log.Core(q.Core),
			log.Window(top.win),
			zap.Int("skipped_steps", top.next+1),
		)
		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			stack[len(stack)-1].repaired = true
		}
	}
	return stack, nil
}

func nonZero(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
