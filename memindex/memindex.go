// Package memindex is an in-memory document index with Solr commit
// semantics: writes and deletes are staged and become visible on commit.
package memindex

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/esgf/solrsync/common/types"
	"github.com/esgf/solrsync/solr"
)

// VersionField is the optimistic concurrency field assigned on every write.
const VersionField = "_version_"

// Hooks inject failures. A nil hook never fails.
type Hooks struct {
	Stats    func(q types.Query) error
	Write    func(core string, records []types.Record) error
	Delete   func(q types.Query) error
	Commit   func(core string) error
	Optimize func(core string) error
}

// Counters counts calls per operation.
type Counters struct {
	Stats     int
	Fetches   int
	Writes    int
	Deletes   int
	Commits   int
	Optimizes int
}

type op struct {
	add    *types.Record
	delete *types.Query
}

type core struct {
	committed map[string]types.Record
	pending   []op
}

type Opt func(*Index)

// WithTimestampField overrides the default _timestamp field.
func WithTimestampField(field string) Opt {
	return func(idx *Index) {
		idx.field = field
	}
}

// WithHooks installs failure hooks.
func WithHooks(h Hooks) Opt {
	return func(idx *Index) {
		idx.hooks = h
	}
}

// New creates an empty index.
func New(opts ...Opt) *Index {
	idx := &Index{
		field: solr.DefaultTimestampField,
		cores: map[string]*core{},
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Index is safe for concurrent use.
type Index struct {
	mu       sync.Mutex
	field    string
	cores    map[string]*core
	hooks    Hooks
	counters Counters
	version  int64
}

func (idx *Index) core(name string) *core {
	c, ok := idx.cores[name]
	if !ok {
		c = &core{committed: map[string]types.Record{}}
		idx.cores[name] = c
	}
	return c
}

// SetHooks replaces the failure hooks.
func (idx *Index) SetHooks(h Hooks) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.hooks = h
}

// Load stores committed records directly, bypassing hooks and counters.
func (idx *Index) Load(coreName string, records ...types.Record) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	c := idx.core(coreName)
	for _, r := range records {
		c.committed[r.ID] = r.Clone()
	}
}

// Records returns the committed records of a core sorted by id.
func (idx *Index) Records(coreName string) []types.Record {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	c := idx.core(coreName)
	ids := slices.Sorted(maps.Keys(c.committed))
	out := make([]types.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.committed[id].Clone())
	}
	return out
}

// Pending returns the number of staged operations of a core.
func (idx *Index) Pending(coreName string) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.core(coreName).pending)
}

// Counters returns a snapshot of the call counters.
func (idx *Index) Counters() Counters {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.counters
}

// ResetCounters zeroes the call counters.
func (idx *Index) ResetCounters() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.counters = Counters{}
}

func (idx *Index) selectCommitted(q types.Query) ([]types.Record, error) {
	m, err := compile(q.Filter)
	if err != nil {
		return nil, err
	}
	c := idx.core(q.Core)
	var out []types.Record
	for _, r := range c.committed {
		if !m(r) || !idx.inWindow(r, q.Window) {
			continue
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b types.Record) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Stats computes the signature over committed records.
func (idx *Index) Stats(ctx context.Context, q types.Query) (types.Signature, error) {
	if err := ctx.Err(); err != nil {
		return types.Signature{}, err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.counters.Stats++
	if idx.hooks.Stats != nil {
		if err := idx.hooks.Stats(q); err != nil {
			return types.Signature{}, err
		}
	}
	records, err := idx.selectCommitted(q)
	if err != nil {
		return types.Signature{}, err
	}
	sig := types.Signature{Count: int64(len(records))}
	var (
		sum    int64
		lo, hi time.Time
		n      int64
	)
	for _, r := range records {
		ts, ok := timestamp(r, idx.field)
		if !ok {
			continue
		}
		if n == 0 || ts.Before(lo) {
			lo = ts
		}
		if n == 0 || ts.After(hi) {
			hi = ts
		}
		sum += ts.UnixMilli()
		n++
	}
	if n > 0 {
		mean := time.UnixMilli(sum / n).UTC()
		sig.Min, sig.Max, sig.Mean = &lo, &hi, &mean
	}
	return sig, nil
}

// Fetch pages over committed records sorted by id.
func (idx *Index) Fetch(ctx context.Context, q types.Query, start, rows int) (types.Page, error) {
	if err := ctx.Err(); err != nil {
		return types.Page{}, err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.counters.Fetches++
	records, err := idx.selectCommitted(q)
	if err != nil {
		return types.Page{}, err
	}
	page := types.Page{NumFound: int64(len(records))}
	if start >= len(records) {
		return page, nil
	}
	end := min(start+rows, len(records))
	for _, r := range records[start:end] {
		page.Records = append(page.Records, r.Clone())
	}
	return page, nil
}

// BulkWrite stages records. A record carrying a _version_ that does not
// match the stored one fails the whole batch with solr.ErrConflict.
func (idx *Index) BulkWrite(ctx context.Context, coreName string, records []types.Record, commit bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.counters.Writes++
	if idx.hooks.Write != nil {
		if err := idx.hooks.Write(coreName, records); err != nil {
			return err
		}
	}
	c := idx.core(coreName)
	for _, r := range records {
		v, ok := r.Get(VersionField)
		if !ok {
			continue
		}
		stored, exists := c.committed[r.ID]
		if !exists || fmt.Sprint(v) != fmt.Sprint(first(stored, VersionField)) {
			return fmt.Errorf("%w: record %s version %v", solr.ErrConflict, r.ID, v)
		}
	}
	for _, r := range records {
		cp := r.Clone()
		idx.version++
		cp.Set(VersionField, json.Number(fmt.Sprint(idx.version)))
		c.pending = append(c.pending, op{add: &cp})
	}
	if commit {
		idx.apply(c)
	}
	return nil
}

// DeleteByQuery stages removal of the matching records.
func (idx *Index) DeleteByQuery(ctx context.Context, q types.Query, commit bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := compile(q.Filter); err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.counters.Deletes++
	if idx.hooks.Delete != nil {
		if err := idx.hooks.Delete(q); err != nil {
			return err
		}
	}
	c := idx.core(q.Core)
	c.pending = append(c.pending, op{delete: &q})
	if commit {
		idx.apply(c)
	}
	return nil
}

// Commit applies staged operations in order.
func (idx *Index) Commit(ctx context.Context, coreName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.counters.Commits++
	if idx.hooks.Commit != nil {
		if err := idx.hooks.Commit(coreName); err != nil {
			return err
		}
	}
	idx.apply(idx.core(coreName))
	return nil
}

// Optimize has no effect on data.
func (idx *Index) Optimize(ctx context.Context, coreName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.counters.Optimizes++
	if idx.hooks.Optimize != nil {
		return idx.hooks.Optimize(coreName)
	}
	return nil
}

func (idx *Index) apply(c *core) {
	for _, o := range c.pending {
		switch {
		case o.add != nil:
			c.committed[o.add.ID] = *o.add
		case o.delete != nil:
			// filters were validated when the delete was staged
			m, _ := compile(o.delete.Filter)
			for id, r := range c.committed {
				if m(r) && idx.inWindow(r, o.delete.Window) {
					delete(c.committed, id)
				}
			}
		}
	}
	c.pending = nil
}

// inWindow matches like a Solr range on the timestamp field: records
// without a timestamp are outside every window, the unbounded one included.
func (idx *Index) inWindow(r types.Record, w types.TimeWindow) bool {
	ts, ok := timestamp(r, idx.field)
	return ok && w.Contains(ts)
}

func first(r types.Record, field string) any {
	v, _ := r.Get(field)
	return v
}

func timestamp(r types.Record, field string) (time.Time, bool) {
	v, ok := r.Get(field)
	if !ok {
		return time.Time{}, false
	}
	switch v := v.(type) {
	case time.Time:
		return v.UTC(), true
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	}
	return time.Time{}, false
}
