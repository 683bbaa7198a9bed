package reconcile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/esgf/solrsync/common/types"
)

// Replacement substitutes Old with New in string values.
type Replacement struct {
	Old string `mapstructure:"old"`
	New string `mapstructure:"new"`
}

// ParseReplacements parses "old1:new1,old2:new2".
func ParseReplacements(s string) ([]Replacement, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []Replacement
	for _, pair := range strings.Split(s, ",") {
		old, repl, ok := strings.Cut(pair, ":")
		if !ok || old == "" {
			return nil, fmt.Errorf("invalid replacement %q, expected old:new", pair)
		}
		out = append(out, Replacement{Old: old, New: repl})
	}
	return out, nil
}

// FixupConfig controls how records are rewritten before they are written to the target.
type FixupConfig struct {
	// CoerceFloat lists, per core, fields whose values are converted to floats.
	// Values that do not parse become 0.
	CoerceFloat map[string][]string `mapstructure:"coerce-float"`
	// VersionFields are server assigned revision markers removed before writing.
	VersionFields []string `mapstructure:"version-fields"`
	// Suffix is appended to every record id.
	Suffix string `mapstructure:"suffix"`
	// Replacements are applied to every string value, the id included.
	Replacements []Replacement `mapstructure:"replacements"`
}

// defaultVersionField is the revision marker Solr assigns to every document.
const defaultVersionField = "_version_"

func DefaultFixupConfig() FixupConfig {
	return FixupConfig{
		CoerceFloat: map[string][]string{
			"datasets": {"height_bottom", "height_top"},
		},
		VersionFields: []string{defaultVersionField},
	}
}

type fixer struct {
	cfg      FixupConfig
	replacer *strings.Replacer
}

func newFixer(cfg FixupConfig) *fixer {
	f := &fixer{cfg: cfg}
	if len(cfg.Replacements) > 0 {
		pairs := make([]string, 0, 2*len(cfg.Replacements))
		for _, r := range cfg.Replacements {
			pairs = append(pairs, r.Old, r.New)
		}
		f.replacer = strings.NewReplacer(pairs...)
	}
	return f
}

// apply rewrites r in place.
func (f *fixer) apply(core string, r *types.Record) {
	for _, field := range f.cfg.VersionFields {
		delete(r.Fields, field)
		delete(r.Multi, field)
	}
	for _, field := range f.cfg.CoerceFloat[core] {
		vals, ok := r.Fields[field]
		if !ok {
			continue
		}
		for i, v := range vals {
			if empty(v) {
				continue
			}
			vals[i] = toFloat(v)
		}
	}
	if f.replacer != nil {
		r.ID = f.replacer.Replace(r.ID)
		for _, vals := range r.Fields {
			for i, v := range vals {
				if s, ok := v.(string); ok {
					vals[i] = f.replacer.Replace(s)
				}
			}
		}
	}
	r.ID += f.cfg.Suffix
}

// stripVersions removes the revision markers from r, falling back to the
// Solr one when none are configured.
func (f *fixer) stripVersions(r *types.Record) {
	fields := f.cfg.VersionFields
	if len(fields) == 0 {
		fields = []string{defaultVersionField}
	}
	for _, field := range fields {
		delete(r.Fields, field)
		delete(r.Multi, field)
	}
}

func empty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}

func toFloat(v any) float64 {
	switch v := v.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}
