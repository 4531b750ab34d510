package engine

import (
	"context"
	"strings"
	"time"

	"github.com/pythagonacci/trak/pkg/actions"
	"github.com/pythagonacci/trak/pkg/resolve"
	"github.com/pythagonacci/trak/pkg/schema"
	"github.com/pythagonacci/trak/pkg/types"
)

// Filter matching for field-name-keyed row predicates. Supports
// eq | gte | lte | contains over scalar, array (multi-select) and {id,name}
// relation cell shapes, normalizing both sides before comparing.

type cond struct {
	op    string
	value any
}

type rowFilter struct {
	conds map[string]cond // keyed by field id
}

// parseFilter resolves filter keys (human field names) to fields and
// normalizes the condition shape: a bare value means eq, an
// {"op":..., "value":...} object picks the operator.
func parseFilter(table types.Table, raw map[string]any) (rowFilter, error) {
	f := rowFilter{conds: make(map[string]cond, len(raw))}
	for key, v := range raw {
		field, ok := resolve.FieldByName(table, key)
		if !ok {
			return rowFilter{}, validationf("filter: table %q has no field matching %q", table.Name, key)
		}
		c := cond{op: "eq", value: v}
		if m, ok := v.(map[string]any); ok {
			if op, ok := m["op"].(string); ok {
				op = strings.ToLower(strings.TrimSpace(op))
				switch op {
				case "eq", "gte", "lte", "contains":
					c = cond{op: op, value: m["value"]}
				default:
					return rowFilter{}, validationf("filter: unsupported operator %q for %q", op, key)
				}
			}
		}
		f.conds[field.ID] = c
	}
	return f, nil
}

func (f rowFilter) empty() bool { return len(f.conds) == 0 }

// match reports whether every condition holds for the row. An empty filter
// matches everything.
func (f rowFilter) match(table types.Table, row types.Row) bool {
	for fieldID, c := range f.conds {
		field, _ := table.FieldByID(fieldID)
		if !matchCell(field, row.Cells[fieldID], c) {
			return false
		}
	}
	return true
}

func matchCell(field types.Field, cell any, c cond) bool {
	switch c.op {
	case "gte", "lte":
		return matchOrdered(cell, c)
	case "contains":
		return matchContains(field, cell, c.value)
	default:
		return matchEq(field, cell, c.value)
	}
}

// matchEq compares one cell against one wanted value. Arrays match when any
// element matches; select-like cells compare by option id or label; relation
// cells compare by id or name.
func matchEq(field types.Field, cell, want any) bool {
	switch cv := cell.(type) {
	case nil:
		return want == nil
	case []any:
		for _, e := range cv {
			if matchEq(field, e, want) {
				return true
			}
		}
		return false
	case map[string]any:
		ws, ok := want.(string)
		if !ok {
			return false
		}
		id, _ := cv["id"].(string)
		name, _ := cv["name"].(string)
		return id == ws || strings.EqualFold(name, ws)
	}

	if cn, ok := schema.ParseNumber(cell); ok {
		if wn, ok := schema.ParseNumber(want); ok {
			return cn == wn
		}
	}

	cs, cok := cell.(string)
	ws, wok := want.(string)
	if !cok || !wok {
		return false
	}

	// Select-like cells may store either the option id or its label; the
	// wanted side may be either too. Normalize both through the option set.
	if field.Type.SelectLike() {
		co, cfound := field.OptionByValue(cs)
		wo, wfound := field.OptionByValue(ws)
		if cfound && wfound {
			return co.ID == wo.ID
		}
	}
	return strings.EqualFold(cs, ws)
}

// matchOrdered handles gte/lte for numbers (with human suffixes on either
// side) and ISO dates.
func matchOrdered(cell any, c cond) bool {
	if cn, ok := schema.ParseNumber(cell); ok {
		wn, ok := schema.ParseNumber(c.value)
		if !ok {
			return false
		}
		if c.op == "gte" {
			return cn >= wn
		}
		return cn <= wn
	}

	cs, cok := cell.(string)
	ws, wok := c.value.(string)
	if cok && wok {
		ct, cerr := time.Parse("2006-01-02", strings.TrimSpace(cs))
		wt, werr := time.Parse("2006-01-02", strings.TrimSpace(ws))
		if cerr == nil && werr == nil {
			if c.op == "gte" {
				return !ct.Before(wt)
			}
			return !ct.After(wt)
		}
	}
	return false
}

func matchContains(field types.Field, cell, want any) bool {
	switch cv := cell.(type) {
	case []any:
		for _, e := range cv {
			if matchEq(field, e, want) {
				return true
			}
		}
		return false
	case map[string]any:
		name, _ := cv["name"].(string)
		ws, _ := want.(string)
		return ws != "" && strings.Contains(strings.ToLower(name), strings.ToLower(ws))
	case string:
		ws, ok := want.(string)
		if !ok {
			return false
		}
		// Resolve option ids to labels so "contains: pro" hits "In Progress"
		// stored as an option id.
		cs := cv
		if field.Type.SelectLike() {
			if opt, ok := field.OptionByValue(cv); ok {
				cs = opt.Label
			}
		}
		return strings.Contains(strings.ToLower(cs), strings.ToLower(ws))
	}
	return false
}

// filterRows fetches every row of the table (page by page) and returns those
// matching the filter. Shared by find/update/delete/undo-capture paths so
// they all agree on what "matching" means.
func (e *Engine) filterRows(ctx context.Context, table types.Table, f rowFilter) ([]types.Row, error) {
	var out []types.Row
	offset := 0
	for {
		page, err := e.store.FetchRows(ctx, table.ID, actions.Page{Limit: e.pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, r := range page.Rows {
			if f.empty() || f.match(table, r) {
				out = append(out, r)
			}
		}
		if !page.HasMore {
			return out, nil
		}
		offset += len(page.Rows)
	}
}
