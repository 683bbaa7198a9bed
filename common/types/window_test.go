package types

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestGranularityTruncate(t *testing.T) {
	at := ts("2016-03-17T13:45:12Z")
	for _, tc := range []struct {
		g    Granularity
		want string
	}{
		{Hour, "2016-03-17T13:00:00Z"},
		{Day, "2016-03-17T00:00:00Z"},
		{Month, "2016-03-01T00:00:00Z"},
	} {
		t.Run(tc.g.String(), func(t *testing.T) {
			require.Equal(t, ts(tc.want), tc.g.Truncate(at))
		})
	}
}

func TestParseLadder(t *testing.T) {
	ladder, err := ParseLadder([]string{"month", "Day", "hour"})
	require.NoError(t, err)
	require.Equal(t, DefaultLadder, ladder)

	_, err = ParseLadder([]string{"day", "month"})
	require.Error(t, err)
	_, err = ParseLadder([]string{"week"})
	require.Error(t, err)
	_, err = ParseLadder(nil)
	require.Error(t, err)
}

func TestOuterWindow(t *testing.T) {
	w := OuterWindow(ts("2016-01-31T23:10:00Z"), ts("2016-03-01T00:00:00Z"), Month)
	require.Equal(t, ts("2016-01-01T00:00:00Z"), w.Start)
	require.Equal(t, ts("2016-04-01T00:00:00Z"), w.Stop)
	require.True(t, w.Contains(ts("2016-03-01T00:00:00Z")))
	require.False(t, w.Contains(w.Stop))
}

func TestSplitTilesWindow(t *testing.T) {
	outer := NewWindow(ts("2015-12-01T00:00:00Z"), ts("2016-03-01T00:00:00Z"))
	for _, g := range DefaultLadder {
		t.Run(g.String(), func(t *testing.T) {
			subs := outer.Split(g)
			require.NotEmpty(t, subs)
			require.Equal(t, outer.Start, subs[0].Start)
			require.Equal(t, outer.Stop, subs[len(subs)-1].Stop)
			for i := 1; i < len(subs); i++ {
				require.Equal(t, subs[i-1].Stop, subs[i].Start, "gap or overlap at %d", i)
			}
			for _, sub := range subs {
				require.True(t, outer.Covers(sub))
				require.False(t, sub.Empty())
			}
		})
	}
	require.Len(t, outer.Split(Month), 3)
	require.Len(t, outer.Split(Day), 31+31+29)
}

func TestSplitClipsUnaligned(t *testing.T) {
	w := NewWindow(ts("2016-02-10T12:30:00Z"), ts("2016-02-10T14:15:00Z"))
	want := []TimeWindow{
		NewWindow(ts("2016-02-10T12:30:00Z"), ts("2016-02-10T13:00:00Z")),
		NewWindow(ts("2016-02-10T13:00:00Z"), ts("2016-02-10T14:00:00Z")),
		NewWindow(ts("2016-02-10T14:00:00Z"), ts("2016-02-10T14:15:00Z")),
	}
	if diff := cmp.Diff(want, w.Split(Hour)); diff != "" {
		t.Errorf("split mismatch (-want +got):\n%s", diff)
	}
	require.Nil(t, Unbounded.Split(Hour))
}

func TestSignatureEqual(t *testing.T) {
	a, b := ts("2016-01-01T00:00:00Z"), ts("2016-01-02T00:00:00Z")
	mean := ts("2016-01-01T12:00:00Z")
	full := Signature{Count: 2, Min: &a, Max: &b, Mean: &mean}

	require.True(t, Signature{}.Equal(Signature{}))
	require.True(t, full.Equal(full))

	other := full
	other.Count = 3
	require.False(t, full.Equal(other))

	shifted := mean.Add(time.Millisecond)
	other = full
	other.Mean = &shifted
	require.False(t, full.Equal(other))

	other = full
	other.Max = nil
	require.False(t, full.Equal(other))
	require.False(t, other.Equal(full))
}
