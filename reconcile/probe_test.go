package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/esgf/solrsync/common/types"
	"github.com/esgf/solrsync/log/logtest"
)

func sig(count int64, times ...time.Time) types.Signature {
	s := types.Signature{Count: count}
	if len(times) == 3 {
		s.Min, s.Max, s.Mean = &times[0], &times[1], &times[2]
	}
	return s
}

func TestInSync(t *testing.T) {
	a, b := base, base.Add(time.Hour)
	require.True(t, InSync(sig(0), sig(0)))
	require.True(t, InSync(sig(2, a, b, a), sig(2, a, b, a)))
	require.False(t, InSync(sig(2, a, b, a), sig(3, a, b, a)))
	require.False(t, InSync(sig(2, a, b, a), sig(2, a, b, b)))
	require.False(t, InSync(sig(1), sig(1, a, a, a)))
}

func TestProbeWrapsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	idx := NewMockindex(ctrl)
	q := types.Query{Core: "datasets", Filter: types.DefaultFilter}
	idx.EXPECT().Stats(gomock.Any(), q).Return(types.Signature{}, errors.New("502 bad gateway"))

	_, err := Probe(context.Background(), idx, q)
	require.ErrorIs(t, err, ErrProbeUnavailable)
}

func TestProbeCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	idx := NewMockindex(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	idx.EXPECT().Stats(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, types.Query) (types.Signature, error) {
			cancel()
			return types.Signature{}, errors.New("request aborted")
		})

	_, err := Probe(ctx, idx, types.Query{Core: "datasets"})
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrProbeUnavailable)
}

func TestComparatorCachesSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	source, target := NewMockindex(ctrl), NewMockindex(ctrl)
	q := types.Query{Core: "datasets", Filter: types.DefaultFilter}.In(hour(base))
	source.EXPECT().Stats(gomock.Any(), q).Return(sig(4, base, base, base), nil).Times(1)
	target.EXPECT().Stats(gomock.Any(), q).Return(sig(0), nil).Times(1)
	target.EXPECT().Stats(gomock.Any(), q).Return(sig(4, base, base, base), nil).Times(1)

	c, err := newComparator(source, target, 8, logtest.New(t))
	require.NoError(t, err)
	first, err := c.compare(context.Background(), q)
	require.NoError(t, err)
	require.False(t, first.InSync())
	second, err := c.compare(context.Background(), q)
	require.NoError(t, err)
	require.True(t, second.InSync())
}

func TestComparisonOuter(t *testing.T) {
	apr := time.Date(2016, 4, 2, 0, 0, 0, 0, time.UTC)
	cmp := Comparison{Source: sig(1, base, base, base), Target: sig(1, apr, apr, apr)}
	outer, ok := cmp.outer(types.Month)
	require.True(t, ok)
	require.True(t, outer.Start.Equal(time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.True(t, outer.Stop.Equal(time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC)))

	_, ok = Comparison{Source: sig(3), Target: sig(0)}.outer(types.Month)
	require.False(t, ok)
}
