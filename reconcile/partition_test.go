package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/esgf/solrsync/common/types"
	"github.com/esgf/solrsync/log/logtest"
	"github.com/esgf/solrsync/memindex"
)

func newTestWalker(tb testing.TB, source, target index, ladder ...types.Granularity) *Walker {
	tb.Helper()
	if len(ladder) == 0 {
		ladder = types.DefaultLadder
	}
	logger := logtest.New(tb)
	c, err := newComparator(source, target, 0, logger)
	require.NoError(tb, err)
	return &Walker{cmp: c, ladder: ladder, logger: logger}
}

func hour(t time.Time) types.TimeWindow {
	return types.NewWindow(t, t.Add(time.Hour))
}

func TestWalkInSync(t *testing.T) {
	source, target := memindex.New(), memindex.New()
	source.Load("datasets", records("r", base, 5)...)
	target.Load("datasets", records("r", base, 5)...)

	res, err := newTestWalker(t, source, target).Walk(context.Background(),
		types.Query{Core: "datasets", Filter: types.DefaultFilter}, time.Time{}, nil)
	require.NoError(t, err)
	require.True(t, res.Initial.InSync())
	require.Zero(t, res.Examined)
	require.Empty(t, res.Leaves)
	require.True(t, res.Outer.IsUnbounded())
}

func TestWalkFindsDivergentLeaves(t *testing.T) {
	source, target := memindex.New(), memindex.New()
	feb := time.Date(2016, 2, 29, 23, 0, 0, 0, time.UTC)
	apr := time.Date(2016, 4, 1, 0, 0, 0, 0, time.UTC)
	source.Load("datasets", records("a", feb, 3)...)
	source.Load("datasets", records("b", base, 3)...)
	source.Load("datasets", records("c", apr, 3)...)
	// the hour in between is equal on both sides
	target.Load("datasets", records("b", base, 3)...)
	target.Load("datasets", records("z", base.Add(time.Hour), 2)...)
	source.Load("datasets", records("z", base.Add(time.Hour), 2)...)

	res, err := newTestWalker(t, source, target).Walk(context.Background(),
		types.Query{Core: "datasets", Filter: types.DefaultFilter}, time.Time{}, nil)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(types.NewWindow(time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC)), res.Outer))
	// latest first
	require.Empty(t, cmp.Diff([]types.TimeWindow{hour(apr), hour(feb)}, res.Leaves))
	require.Zero(t, res.Rechecks)
}

func TestWalkLeavesAreDisjointAndCoverDivergence(t *testing.T) {
	source, target := memindex.New(), memindex.New()
	var divergent []time.Time
	for i := range 12 {
		at := base.Add(time.Duration(i*37) * time.Hour)
		source.Load("files", records(at.Format("2006010215"), at, i+1)...)
		if i%3 == 0 {
			target.Load("files", records(at.Format("2006010215"), at, i+1)...)
			continue
		}
		divergent = append(divergent, at)
	}

	res, err := newTestWalker(t, source, target).Walk(context.Background(),
		types.Query{Core: "files", Filter: types.DefaultFilter}, time.Time{}, nil)
	require.NoError(t, err)
	require.Len(t, res.Leaves, len(divergent))
	for i, leaf := range res.Leaves {
		require.True(t, res.Outer.Covers(leaf))
		if i > 0 {
			require.False(t, leaf.Stop.After(res.Leaves[i-1].Start), "leaves overlap: %s %s", leaf, res.Leaves[i-1])
		}
	}
	for _, at := range divergent {
		found := false
		for _, leaf := range res.Leaves {
			found = found || leaf.Contains(at)
		}
		require.True(t, found, "divergent hour %s not localized", at)
	}
}

func TestWalkRechecksAfterRepair(t *testing.T) {
	source, target := memindex.New(), memindex.New()
	source.Load("datasets", records("r", base, 4)...)
	w := newTestWalker(t, source, target)
	repairer := NewRepairer(source, target, 10, FixupConfig{}, logtest.New(t))

	q := types.Query{Core: "datasets", Filter: types.DefaultFilter}
	var repaired []types.TimeWindow
	res, err := w.Walk(context.Background(), q, time.Time{}, func(ctx context.Context, win types.TimeWindow) error {
		repaired = append(repaired, win)
		_, err := repairer.Repair(ctx, q.In(win), CopyOptions{})
		return err
	})
	require.NoError(t, err)
	require.Empty(t, cmp.Diff([]types.TimeWindow{hour(base)}, repaired))
	// day, month and the outer window converge without visiting their remaining windows
	require.Equal(t, 3, res.Rechecks)
	// one month, days 31 to 17 and hours 23 to 13
	require.Equal(t, 1+15+11, res.Examined)
}

func TestWalkResume(t *testing.T) {
	source, target := memindex.New(), memindex.New()
	source.Load("datasets", records("a", base, 2)...)
	source.Load("datasets", records("b", base.Add(3*time.Hour), 2)...)

	res, err := newTestWalker(t, source, target).Walk(context.Background(),
		types.Query{Core: "datasets", Filter: types.DefaultFilter}, base.Add(2*time.Hour), nil)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff([]types.TimeWindow{hour(base)}, res.Leaves))
	require.Positive(t, res.Resumed)
}

func TestWalkCustomLadder(t *testing.T) {
	source, target := memindex.New(), memindex.New()
	source.Load("datasets", records("a", base, 2)...)

	res, err := newTestWalker(t, source, target, types.Month, types.Day).Walk(context.Background(),
		types.Query{Core: "datasets", Filter: types.DefaultFilter}, time.Time{}, nil)
	require.NoError(t, err)
	day := types.Day.Truncate(base)
	require.Empty(t, cmp.Diff([]types.TimeWindow{types.NewWindow(day, day.AddDate(0, 0, 1))}, res.Leaves))
}

func TestWalkIgnoresRecordsWithoutTimestamp(t *testing.T) {
	source, target := memindex.New(), memindex.New()
	source.Load("datasets", types.NewRecord("untimed", map[string]any{"project": "CMIP6"}))
	source.Load("datasets", record("r-000", base))
	target.Load("datasets", record("r-000", base))

	res, err := newTestWalker(t, source, target).Walk(context.Background(),
		types.Query{Core: "datasets", Filter: types.DefaultFilter}, time.Time{}, nil)
	require.NoError(t, err)
	require.True(t, res.Initial.InSync())
	require.EqualValues(t, 1, res.Initial.Source.Count)
	require.Empty(t, res.Leaves)
}
