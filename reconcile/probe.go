package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/esgf/solrsync/common/types"
	"github.com/esgf/solrsync/log"
)

// Probe reads the signature of the records of idx matching q. Any failure
// other than cancellation is reported as ErrProbeUnavailable. Probe does not
// retry.
func Probe(ctx context.Context, idx index, q types.Query) (types.Signature, error) {
	sig, err := idx.Stats(ctx, q)
	if err != nil {
		if ctx.Err() != nil {
			return types.Signature{}, ctx.Err()
		}
		return types.Signature{}, fmt.Errorf("%w: %s %s: %w", ErrProbeUnavailable, q.Core, q.Window, err)
	}
	return sig, nil
}

// InSync is the divergence detector: two record sets are considered equal
// when their signatures are equal. It trusts count, min, max and mean of the
// timestamp field and does not compare content.
func InSync(source, target types.Signature) bool {
	return source.Equal(target)
}

// Comparison holds both signatures of a window.
type Comparison struct {
	Source types.Signature
	Target types.Signature
}

func (c Comparison) InSync() bool {
	return InSync(c.Source, c.Target)
}

type prober struct {
	index   index
	latency prometheus.Observer
	// cache is only set for indexes that are not written during a session.
	cache *simplelru.LRU[types.Query, types.Signature]
}

func (p *prober) probe(ctx context.Context, q types.Query) (types.Signature, error) {
	if p.cache != nil {
		if sig, ok := p.cache.Get(q); ok {
			cacheHit.Inc()
			return sig, nil
		}
		cacheMiss.Inc()
	}
	start := time.Now()
	sig, err := Probe(ctx, p.index, q)
	p.latency.Observe(time.Since(start).Seconds())
	if err != nil {
		return sig, err
	}
	if p.cache != nil {
		p.cache.Add(q, sig)
	}
	return sig, nil
}

// comparator probes both indexes for the same query.
type comparator struct {
	source *prober
	target *prober
	logger *zap.Logger
}

func newComparator(source, target index, cacheSize int, logger *zap.Logger) (*comparator, error) {
	c := &comparator{
		source: &prober{index: source, latency: sourceProbeLatency},
		target: &prober{index: target, latency: targetProbeLatency},
		logger: logger,
	}
	if cacheSize > 0 {
		cache, err := simplelru.NewLRU[types.Query, types.Signature](cacheSize, nil)
		if err != nil {
			return nil, fmt.Errorf("create source cache: %w", err)
		}
		c.source.cache = cache
	}
	return c, nil
}

func (c *comparator) compare(ctx context.Context, q types.Query) (Comparison, error) {
	var (
		cmp Comparison
		err error
	)
	if cmp.Source, err = c.source.probe(ctx, q); err != nil {
		return cmp, fmt.Errorf("source: %w", err)
	}
	if cmp.Target, err = c.target.probe(ctx, q); err != nil {
		return cmp, fmt.Errorf("target: %w", err)
	}
	c.logger.Debug("compared",
		log.Core(q.Core),
		log.Window(q.Window),
		zap.Bool("in_sync", cmp.InSync()),
		log.Signature("source", cmp.Source),
		log.Signature("target", cmp.Target),
	)
	return cmp, nil
}

// outer returns the union of both observed timestamp ranges rounded outward to g.
// It returns false when neither side has timestamped records.
func (c Comparison) outer(g types.Granularity) (types.TimeWindow, bool) {
	var lo, hi *time.Time
	for _, sig := range []types.Signature{c.Source, c.Target} {
		if sig.Min != nil && (lo == nil || sig.Min.Before(*lo)) {
			lo = sig.Min
		}
		if sig.Max != nil && (hi == nil || sig.Max.After(*hi)) {
			hi = sig.Max
		}
	}
	if lo == nil || hi == nil {
		return types.TimeWindow{}, false
	}
	return types.OuterWindow(*lo, *hi, g), true
}
