// Package flags contains pflag values for options that are not plain types.
package flags

import (
	"fmt"
	"strings"

	"github.com/esgf/solrsync/reconcile"
)

// ReplacementsValue parses "old1:new1,old2:new2".
type ReplacementsValue struct {
	value *[]reconcile.Replacement
}

func NewReplacementsValue(p *[]reconcile.Replacement) *ReplacementsValue {
	return &ReplacementsValue{value: p}
}

func (v *ReplacementsValue) Set(s string) error {
	repl, err := reconcile.ParseReplacements(s)
	if err != nil {
		return err
	}
	*v.value = repl
	return nil
}

func (v *ReplacementsValue) String() string {
	if v.value == nil {
		return ""
	}
	pairs := make([]string, 0, len(*v.value))
	for _, r := range *v.value {
		pairs = append(pairs, r.Old+":"+r.New)
	}
	return strings.Join(pairs, ",")
}

func (v *ReplacementsValue) Type() string {
	return "old:new,..."
}

// FuncValue calls set for every value. String reports the last value set.
type FuncValue struct {
	value string
	typ   string
	set   func(string) error
}

func NewFuncValue(typ, initial string, set func(string) error) *FuncValue {
	return &FuncValue{value: initial, typ: typ, set: set}
}

func (v *FuncValue) Set(s string) error {
	if err := v.set(s); err != nil {
		return fmt.Errorf("invalid %s %q: %w", v.typ, s, err)
	}
	v.value = s
	return nil
}

func (v *FuncValue) String() string {
	return v.value
}

func (v *FuncValue) Type() string {
	return v.typ
}
