package memindex

import (
	"fmt"
	"strings"

	"github.com/esgf/solrsync/common/types"
)

type matcher func(types.Record) bool

// compile supports the subset of the query syntax used by sync filters:
// "*:*", "field:value", "field:*" and conjunctions joined with AND.
func compile(filter string) (matcher, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == types.DefaultFilter {
		return func(types.Record) bool { return true }, nil
	}
	var terms []matcher
	for _, term := range strings.Split(filter, " AND ") {
		term = strings.Trim(strings.TrimSpace(term), "()")
		field, value, ok := strings.Cut(term, ":")
		if !ok || field == "" || value == "" {
			return nil, fmt.Errorf("unsupported filter term %q", term)
		}
		value = strings.Trim(value, `"`)
		terms = append(terms, termMatcher(field, value))
	}
	return func(r types.Record) bool {
		for _, m := range terms {
			if !m(r) {
				return false
			}
		}
		return true
	}, nil
}

func termMatcher(field, value string) matcher {
	return func(r types.Record) bool {
		if field == types.IDField {
			return value == "*" || r.ID == value
		}
		vals, ok := r.Fields[field]
		if !ok || len(vals) == 0 {
			return false
		}
		if value == "*" {
			return true
		}
		for _, v := range vals {
			if fmt.Sprint(v) == value {
				return true
			}
		}
		return false
	}
}
