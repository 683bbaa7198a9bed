// Package mapstructureutil contains decode hooks for config values.
package mapstructureutil

import (
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/esgf/solrsync/reconcile"
)

// ReplacementsDecodeFunc decodes "old1:new1,old2:new2" into []reconcile.Replacement.
// Lists of tables are left to the default decoder.
func ReplacementsDecodeFunc() mapstructure.DecodeHookFuncType {
	return func(f, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf([]reconcile.Replacement{}) {
			return data, nil
		}
		return reconcile.ParseReplacements(data.(string))
	}
}
