package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/esgf/solrsync/common/types"
	"github.com/esgf/solrsync/log/logtest"
	"github.com/esgf/solrsync/memindex"
	"github.com/esgf/solrsync/solr"
)

func TestRepairPages(t *testing.T) {
	source, target := memindex.New(), memindex.New()
	source.Load("datasets", records("r", base, 120)...)
	target.Load("datasets", record("stale", base))

	r := NewRepairer(source, target, 50, DefaultFixupConfig(), logtest.New(t))
	res, err := r.Repair(context.Background(), types.Query{Core: "datasets", Filter: types.DefaultFilter}.In(hour(base)), CopyOptions{})
	require.NoError(t, err)
	require.Equal(t, RepairResult{Examined: 120, Migrated: 120, Pages: 3, Cursor: 120, NumFound: 120}, res)
	require.Equal(t, memindex.Counters{Writes: 3, Deletes: 1, Commits: 1}, target.Counters())
	require.NotContains(t, content(target, "datasets"), "stale")
	require.Len(t, target.Records("datasets"), 120)
}

func TestRepairEmptySourceWindow(t *testing.T) {
	source, target := memindex.New(), memindex.New()
	target.Load("datasets", record("stale", base))

	r := NewRepairer(source, target, 50, DefaultFixupConfig(), logtest.New(t))
	res, err := r.Repair(context.Background(), types.Query{Core: "datasets", Filter: types.DefaultFilter}.In(hour(base)), CopyOptions{})
	require.NoError(t, err)
	require.Zero(t, res.Examined)
	require.Empty(t, target.Records("datasets"))
	require.Zero(t, target.Counters().Writes)
}

func TestRepairConservation(t *testing.T) {
	for _, tc := range []struct {
		desc    string
		failing map[string]bool
		batch   int
	}{
		{desc: "no failures", batch: 7},
		{desc: "single failure", batch: 7, failing: map[string]bool{"r-003": true}},
		{desc: "failures across pages", batch: 4, failing: map[string]bool{"r-000": true, "r-005": true, "r-019": true}},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			source, target := memindex.New(), memindex.New()
			source.Load("datasets", records("r", base, 20)...)
			target.SetHooks(memindex.Hooks{
				Write: func(_ string, batch []types.Record) error {
					for _, rec := range batch {
						if tc.failing[rec.ID] {
							return fmt.Errorf("%w: %s", solr.ErrBadRequest, rec.ID)
						}
					}
					return nil
				},
			})
			r := NewRepairer(source, target, tc.batch, FixupConfig{}, logtest.New(t))
			res, err := r.Copy(context.Background(), types.Query{Core: "datasets", Filter: types.DefaultFilter}, CopyOptions{})
			require.NoError(t, err)
			require.Equal(t, 20, res.Examined)
			require.Equal(t, res.Examined, res.Migrated+res.Skipped)
			require.Equal(t, len(tc.failing), res.Skipped)
			require.Equal(t, len(tc.failing) > 0, target.Pending("datasets") < 20)
		})
	}
}

func TestRepairConflictRetriedWithoutVersion(t *testing.T) {
	source, target := memindex.New(), memindex.New()
	rec := record("r-000", base)
	rec.Set(memindex.VersionField, "17")
	source.Load("datasets", rec, record("r-001", base))

	// version fields are kept, so the target rejects the stale revision once
	r := NewRepairer(source, target, 10, FixupConfig{}, logtest.New(t))
	res, err := r.Copy(context.Background(), types.Query{Core: "datasets", Filter: types.DefaultFilter}, CopyOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, res.Migrated)
	require.Zero(t, res.Skipped)
	// batch, two records, one retry
	require.Equal(t, 4, target.Counters().Writes)
}

func TestRepairConflictSkippedAfterRetry(t *testing.T) {
	source, target := memindex.New(), memindex.New()
	source.Load("datasets", records("r", base, 3)...)
	var retried []types.Record
	target.SetHooks(memindex.Hooks{
		Write: func(_ string, batch []types.Record) error {
			if len(batch) > 1 || batch[0].ID == "r-001" {
				if len(batch) == 1 {
					retried = append(retried, batch[0])
				}
				return fmt.Errorf("%w: version conflict", solr.ErrConflict)
			}
			return nil
		},
	})

	cfg := FixupConfig{VersionFields: []string{"revision"}}
	r := NewRepairer(source, target, 10, cfg, logtest.New(t))
	res, err := r.Copy(context.Background(), types.Query{Core: "datasets", Filter: types.DefaultFilter}, CopyOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, res.Migrated)
	require.Equal(t, 1, res.Skipped)
	require.Len(t, retried, 2)
}

func TestRepairDeleteFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	source, target := NewMockindex(ctrl), NewMockindex(ctrl)
	q := types.Query{Core: "datasets", Filter: types.DefaultFilter}.In(hour(base))
	target.EXPECT().DeleteByQuery(gomock.Any(), q, false).Return(errors.New("service unavailable"))

	r := NewRepairer(source, target, 10, FixupConfig{}, logtest.New(t))
	_, err := r.Repair(context.Background(), q, CopyOptions{})
	require.ErrorContains(t, err, "service unavailable")
	require.Equal(t, KindRetryable, Classify(err))
}

func TestRepairFetchFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	source, target := NewMockindex(ctrl), NewMockindex(ctrl)
	q := types.Query{Core: "files", Filter: types.DefaultFilter}.In(hour(base))
	target.EXPECT().DeleteByQuery(gomock.Any(), q, false).Return(nil)
	source.EXPECT().Fetch(gomock.Any(), q, 0, 10).Return(types.Page{}, errors.New("read timeout"))

	r := NewRepairer(source, target, 10, FixupConfig{}, logtest.New(t))
	_, err := r.Repair(context.Background(), q, CopyOptions{})
	require.ErrorIs(t, err, ErrProbeUnavailable)
	require.Equal(t, KindFatal, Classify(err))
}

func TestRepairWritesWithoutCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	source, target := NewMockindex(ctrl), NewMockindex(ctrl)
	q := types.Query{Core: "files", Filter: types.DefaultFilter}.In(hour(base))
	page := records("f", base, 3)

	gomock.InOrder(
		target.EXPECT().DeleteByQuery(gomock.Any(), q, false).Return(nil),
		source.EXPECT().Fetch(gomock.Any(), q, 0, 10).Return(types.Page{NumFound: 3, Records: page}, nil),
		target.EXPECT().BulkWrite(gomock.Any(), "files", gomock.Len(3), false).Return(nil),
		target.EXPECT().Commit(gomock.Any(), "files").Return(nil),
	)

	r := NewRepairer(source, target, 10, FixupConfig{}, logtest.New(t))
	res, err := r.Repair(context.Background(), q, CopyOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, res.Migrated)
	require.Equal(t, 1, res.Pages)
}

func TestCopyMaxRecords(t *testing.T) {
	source, target := memindex.New(), memindex.New()
	source.Load("files", records("f", base, 30)...)

	r := NewRepairer(source, target, 8, FixupConfig{}, logtest.New(t))
	res, err := r.Copy(context.Background(), types.Query{Core: "files", Filter: types.DefaultFilter}, CopyOptions{Start: 3, MaxRecords: 20})
	require.NoError(t, err)
	require.Equal(t, 20, res.Examined)
	require.Equal(t, 23, res.Cursor)
	require.Equal(t, 3, res.Pages)
	require.Equal(t, 3, source.Counters().Fetches)
}
