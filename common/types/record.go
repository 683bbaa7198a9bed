package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// IDField is the unique key field of every record.
const IDField = "id"

// Record is a single document. Values are kept as ordered lists;
// Multi marks fields that were multi-valued on read so that single-valued
// fields are written back as scalars.
type Record struct {
	ID     string
	Fields map[string][]any
	Multi  map[string]bool
}

// NewRecord creates a record with the given single-valued fields.
func NewRecord(id string, fields map[string]any) Record {
	r := Record{ID: id, Fields: make(map[string][]any, len(fields))}
	for k, v := range fields {
		r.Set(k, v)
	}
	return r
}

// Get returns the first value of the field.
func (r Record) Get(name string) (any, bool) {
	vals := r.Fields[name]
	if len(vals) == 0 {
		return nil, false
	}
	return vals[0], true
}

// Set replaces the field with a single value.
func (r *Record) Set(name string, v any) {
	if r.Fields == nil {
		r.Fields = map[string][]any{}
	}
	r.Fields[name] = []any{v}
	delete(r.Multi, name)
}

// Clone returns a deep copy of the field maps. Values are shared.
func (r Record) Clone() Record {
	c := Record{ID: r.ID, Fields: make(map[string][]any, len(r.Fields))}
	for k, v := range r.Fields {
		c.Fields[k] = slices.Clone(v)
	}
	if r.Multi != nil {
		c.Multi = maps.Clone(r.Multi)
	}
	return c
}

// MarshalJSON encodes the record as a flat document.
func (r Record) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(r.Fields)+1)
	for k, vals := range r.Fields {
		if len(vals) == 1 && !r.Multi[k] {
			doc[k] = vals[0]
		} else {
			doc[k] = vals
		}
	}
	doc[IDField] = r.ID
	return json.Marshal(doc)
}

// UnmarshalJSON decodes a flat document. Numbers are kept as json.Number.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	*r = Record{Fields: make(map[string][]any, len(doc))}
	for k, v := range doc {
		if k == IDField {
			r.ID = fmt.Sprint(v)
			continue
		}
		if list, ok := v.([]any); ok {
			if r.Multi == nil {
				r.Multi = map[string]bool{}
			}
			r.Fields[k] = list
			r.Multi[k] = true
			continue
		}
		r.Fields[k] = []any{v}
	}
	if r.ID == "" {
		return fmt.Errorf("record without %q field", IDField)
	}
	return nil
}

// Page is one slice of a paged read.
type Page struct {
	NumFound int64
	Records  []Record
}

// Query selects records of one core: Filter is passed to the index
// unmodified, Window restricts the timestamp field.
type Query struct {
	Core   string
	Filter string
	Window TimeWindow
}

// DefaultFilter matches every record.
const DefaultFilter = "*:*"

// In returns a copy of the query restricted to w.
func (q Query) In(w TimeWindow) Query {
	q.Window = w
	return q
}
