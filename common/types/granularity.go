package types

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is a calendar unit used to carve time windows.
// All arithmetic is done in UTC.
type Granularity uint8

const (
	// Hour is the finest granularity.
	Hour Granularity = iota + 1
	Day
	Month
)

// DefaultLadder is the ordered list of granularities, coarsest first.
var DefaultLadder = []Granularity{Month, Day, Hour}

func (g Granularity) String() string {
	switch g {
	case Hour:
		return "hour"
	case Day:
		return "day"
	case Month:
		return "month"
	}
	return fmt.Sprintf("granularity(%d)", uint8(g))
}

// ParseGranularity parses a granularity name as printed by String.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hour":
		return Hour, nil
	case "day":
		return Day, nil
	case "month":
		return Month, nil
	}
	return 0, fmt.Errorf("unknown granularity %q", s)
}

// ParseLadder parses a list of granularity names and checks that they are
// strictly decreasing in size.
func ParseLadder(names []string) ([]Granularity, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("empty granularity ladder")
	}
	ladder := make([]Granularity, 0, len(names))
	for i, name := range names {
		g, err := ParseGranularity(name)
		if err != nil {
			return nil, err
		}
		if i > 0 && g >= ladder[i-1] {
			return nil, fmt.Errorf("granularity %s must be finer than %s", g, ladder[i-1])
		}
		ladder = append(ladder, g)
	}
	return ladder, nil
}

// Truncate rounds t down to the start of its unit.
func (g Granularity) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch g {
	case Hour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
	case Day:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case Month:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	panic(fmt.Sprintf("truncate with %s", g))
}

// Add moves t by n units. Month arithmetic expects t to be truncated,
// otherwise time.Date normalization may skip a month.
func (g Granularity) Add(t time.Time, n int) time.Time {
	switch g {
	case Hour:
		return t.Add(time.Duration(n) * time.Hour)
	case Day:
		return t.AddDate(0, 0, n)
	case Month:
		return t.AddDate(0, n, 0)
	}
	panic(fmt.Sprintf("add with %s", g))
}
