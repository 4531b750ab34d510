package resolve

import (
	"strings"

	"github.com/pythagonacci/trak/pkg/types"
)

// primaryAliases are row keys that always bind to a table's primary field,
// regardless of what the primary field is actually called.
var primaryAliases = map[string]bool{
	"name":  true,
	"title": true,
	"state": true,
	"label": true,
	"item":  true,
}

// FieldByName matches a free-form row key to a table field. Exact
// case-insensitive match wins; absent that, prefix, then substring. Primary
// aliases short-circuit to the primary field.
func FieldByName(table types.Table, key string) (types.Field, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return types.Field{}, false
	}

	if primaryAliases[k] {
		if pf, ok := table.PrimaryField(); ok {
			return pf, true
		}
	}

	for _, f := range table.Fields {
		if strings.EqualFold(f.Name, k) {
			return f, true
		}
	}
	for _, f := range table.Fields {
		if strings.HasPrefix(strings.ToLower(f.Name), k) {
			return f, true
		}
	}
	for _, f := range table.Fields {
		if strings.Contains(strings.ToLower(f.Name), k) {
			return f, true
		}
	}
	return types.Field{}, false
}

// MapRowKeys translates a free-form row (human field names) into a cell map
// keyed by field id. Unmatched keys are returned separately; the caller is
// responsible for surfacing them, not dropping them silently.
func MapRowKeys(table types.Table, row map[string]any) (cells map[string]any, unmatched []string) {
	cells = make(map[string]any, len(row))
	for k, v := range row {
		// Keys that are already field ids pass through.
		if _, ok := table.FieldByID(k); ok {
			cells[k] = v
			continue
		}
		f, ok := FieldByName(table, k)
		if !ok {
			unmatched = append(unmatched, k)
			continue
		}
		cells[f.ID] = v
	}
	return cells, unmatched
}
