package solr

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/esgf/solrsync/common/types"
)

// DefaultTimestampField is the indexing timestamp maintained by the publisher.
const DefaultTimestampField = "_timestamp"

const solrTimeLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(solrTimeLayout)
}

// WindowClause renders w as a half-open range query on field.
func WindowClause(field string, w types.TimeWindow) string {
	if w.IsUnbounded() {
		return field + ":[* TO *]"
	}
	return fmt.Sprintf("%s:[%s TO %s}", field, formatTime(w.Start), formatTime(w.Stop))
}

func filterOrDefault(filter string) string {
	if strings.TrimSpace(filter) == "" {
		return types.DefaultFilter
	}
	return filter
}

// DeleteQuery combines the filter and the window clause into one query.
func DeleteQuery(field string, q types.Query) string {
	return fmt.Sprintf("(%s)AND(%s)", filterOrDefault(q.Filter), WindowClause(field, q.Window))
}

type selectResponse struct {
	Response struct {
		NumFound int64          `json:"numFound"`
		Docs     []types.Record `json:"docs"`
	} `json:"response"`
	Stats struct {
		Fields map[string]*fieldStats `json:"stats_fields"`
	} `json:"stats"`
}

// fieldStats holds the stats component output for a date field.
// Depending on the server version mean is a date string or milliseconds.
type fieldStats struct {
	Count json.Number     `json:"count"`
	Min   json.RawMessage `json:"min"`
	Max   json.RawMessage `json:"max"`
	Mean  json.RawMessage `json:"mean"`
}

func (r *selectResponse) signature(field string) (types.Signature, error) {
	sig := types.Signature{Count: r.Response.NumFound}
	st := r.Stats.Fields[field]
	if st == nil {
		return sig, nil
	}
	var err error
	if sig.Min, err = parseStatTime(st.Min); err != nil {
		return sig, fmt.Errorf("min: %w", err)
	}
	if sig.Max, err = parseStatTime(st.Max); err != nil {
		return sig, fmt.Errorf("max: %w", err)
	}
	if sig.Mean, err = parseStatTime(st.Mean); err != nil {
		return sig, fmt.Errorf("mean: %w", err)
	}
	return sig, nil
}

func parseStatTime(raw json.RawMessage) (*time.Time, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return nil, err
		}
		t = t.UTC()
		return &t, nil
	}
	ms, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	t := time.UnixMilli(int64(ms)).UTC()
	return &t, nil
}
