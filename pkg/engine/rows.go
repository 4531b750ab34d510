package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pythagonacci/trak/pkg/actions"
	"github.com/pythagonacci/trak/pkg/resolve"
	"github.com/pythagonacci/trak/pkg/schema"
	"github.com/pythagonacci/trak/pkg/types"
	"github.com/pythagonacci/trak/pkg/undo"
)

func (e *Engine) registerRowHandlers() {
	e.register("insert_rows", handleInsertRows)
	e.register("update_rows", handleUpdateRows)
	e.register("update_row", handleUpdateRow)
	e.register("delete_rows", handleDeleteRows)
	e.register("find_rows", handleFindRows)
	e.register("count_rows", handleCountRows)
	e.register("clear_table", handleClearTable)
	e.register("get_row", handleGetRow)
}

// normalizeCells converts mapped cell values into the stored shapes: option
// ids for select-like fields, floats for numbers, {id,name} relations for
// person fields. Values that cannot be normalized pass through untouched.
func (rc *runContext) normalizeCells(ctx context.Context, table types.Table, cells map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(cells))
	for id, v := range cells {
		f, ok := table.FieldByID(id)
		if !ok {
			out[id] = v
			continue
		}
		nv, err := rc.normalizeCell(ctx, f, v)
		if err != nil {
			return nil, err
		}
		out[id] = nv
	}
	return out, nil
}

func (rc *runContext) normalizeCell(ctx context.Context, f types.Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch f.Type {
	case types.FieldNumber:
		if n, ok := schema.ParseNumber(v); ok {
			return n, nil
		}
	case types.FieldSelect, types.FieldStatus, types.FieldPriority:
		if s, ok := v.(string); ok {
			if opt, found := f.OptionByValue(s); found {
				return opt.ID, nil
			}
		}
	case types.FieldMultiSelect:
		switch vv := v.(type) {
		case []any:
			out := make([]any, 0, len(vv))
			for _, e := range vv {
				if s, ok := e.(string); ok {
					if opt, found := f.OptionByValue(s); found {
						out = append(out, opt.ID)
						continue
					}
				}
				out = append(out, e)
			}
			return out, nil
		case string:
			if opt, found := f.OptionByValue(vv); found {
				return []any{opt.ID}, nil
			}
			return []any{vv}, nil
		}
	case types.FieldPerson:
		switch vv := v.(type) {
		case map[string]any:
			return vv, nil
		case string:
			a, err := rc.resolveAssignee(ctx, vv)
			if err != nil {
				return nil, err
			}
			rel := map[string]any{}
			if a.ID != "" {
				rel["id"] = a.ID
			}
			if a.Name != "" {
				rel["name"] = a.Name
			}
			return rel, nil
		}
	}
	return v, nil
}

// ensureFieldConfigs upgrades fields that lack usable configuration from the
// values about to land in them: untouched placeholder columns get a full
// inference pass, select-like fields with no options get an option set. The
// upgraded table is returned.
func (rc *runContext) ensureFieldConfigs(ctx context.Context, table types.Table, samples map[string][]any) (types.Table, error) {
	changed := false
	for fieldID, vals := range samples {
		f, ok := table.FieldByID(fieldID)
		if !ok || len(vals) == 0 {
			continue
		}
		switch {
		// The primary column is the row title; it never changes type from
		// value shape alone.
		case f.Auto && f.Type == types.FieldText && !f.Primary:
			inf := schema.Infer(f.Name, vals)
			if inf.Type == types.FieldText && len(inf.Options) == 0 {
				continue
			}
			patch := map[string]any{"type": string(inf.Type), "auto": false}
			if len(inf.Options) > 0 {
				patch["options"] = inf.Options
			}
			if _, err := rc.engine.store.UpdateField(ctx, table.ID, fieldID, patch); err != nil {
				return table, err
			}
			changed = true
		case f.Type.SelectLike() && len(f.Config.Options) == 0:
			opts := schema.OptionsFromValues(f.Type, vals)
			if len(opts) == 0 {
				continue
			}
			if _, err := rc.engine.store.UpdateField(ctx, table.ID, fieldID, map[string]any{"options": opts}); err != nil {
				return table, err
			}
			changed = true
		}
	}
	if !changed {
		return table, nil
	}
	return rc.engine.store.GetTable(ctx, table.ID)
}

// warnUnmatched turns per-key miss counts into actionable warnings naming the
// fields the table actually has.
func (rc *runContext) warnUnmatched(table types.Table, misses map[string]int) {
	if len(misses) == 0 {
		return
	}
	keys := make([]string, 0, len(misses))
	for k := range misses {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	names := make([]string, 0, len(table.Fields))
	for _, f := range table.Fields {
		names = append(names, f.Name)
	}
	for _, k := range keys {
		rc.warnf("row key %q matched no field in %d row(s); fields are: %s",
			k, misses[k], strings.Join(names, ", "))
	}
}

func normPrimary(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(vv))
	default:
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", vv)))
	}
}

// getRowByID pages through the table until the row turns up.
func (e *Engine) getRowByID(ctx context.Context, tableID, rowID string) (types.Row, error) {
	offset := 0
	for {
		page, err := e.store.FetchRows(ctx, tableID, actions.Page{Limit: e.pageSize, Offset: offset})
		if err != nil {
			return types.Row{}, err
		}
		for _, r := range page.Rows {
			if r.ID == rowID {
				return r, nil
			}
		}
		if !page.HasMore {
			return types.Row{}, validationf("no row %s in table %s", rowID, tableID)
		}
		offset += len(page.Rows)
	}
}

func handleInsertRows(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	table, err := rc.resolveTableRef(ctx, args)
	if err != nil {
		return nil, err
	}
	rowsIn := argMapSlice(args, "rows")
	if len(rowsIn) == 0 {
		return nil, validationf("insert_rows: rows must be a non-empty array of objects")
	}

	mapped := make([]map[string]any, 0, len(rowsIn))
	misses := make(map[string]int)
	samples := make(map[string][]any)
	for _, raw := range rowsIn {
		cells, unmatched := resolve.MapRowKeys(table, raw)
		for _, k := range unmatched {
			misses[k]++
		}
		for id, v := range cells {
			samples[id] = append(samples[id], v)
		}
		mapped = append(mapped, cells)
	}
	rc.warnUnmatched(table, misses)

	table, err = rc.ensureFieldConfigs(ctx, table, samples)
	if err != nil {
		return nil, err
	}
	for i := range mapped {
		if mapped[i], err = rc.normalizeCells(ctx, table, mapped[i]); err != nil {
			return nil, err
		}
	}

	// Duplicate guard: when every incoming primary value is already present,
	// treat the call as a replay and insert nothing. Only trusted when the
	// whole table fit in one fetch.
	if pf, ok := table.PrimaryField(); ok {
		page, err := rc.engine.store.FetchRows(ctx, table.ID, actions.Page{Limit: rc.engine.pageSize})
		if err == nil && !page.HasMore && len(page.Rows) > 0 {
			existing := make(map[string]bool, len(page.Rows))
			for _, r := range page.Rows {
				if k := normPrimary(r.Cells[pf.ID]); k != "" {
					existing[k] = true
				}
			}
			all := true
			for _, cells := range mapped {
				k := normPrimary(cells[pf.ID])
				if k == "" || !existing[k] {
					all = false
					break
				}
			}
			if all {
				rc.warnf("all %d row(s) already exist in %q by primary value; nothing inserted", len(mapped), table.Name)
				rc.skipUndo()
				return map[string]any{"inserted": 0, "row_ids": []string{}}, nil
			}
		}
	}

	inserted, err := rc.engine.store.InsertRows(ctx, table.ID, mapped)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(inserted))
	for _, r := range inserted {
		ids = append(ids, r.ID)
	}
	rc.queueUndo(undo.DeleteCreated("rows", ids...))
	return map[string]any{"inserted": len(inserted), "row_ids": ids, "rows": inserted}, nil
}

// parseSetCells maps and normalizes the "set" payload shared by the row
// update operations.
func (rc *runContext) parseSetCells(ctx context.Context, table types.Table, set map[string]any) (map[string]any, error) {
	cells, unmatched := resolve.MapRowKeys(table, set)
	if len(cells) == 0 {
		return nil, validationf("no key in set matched a field of %q", table.Name)
	}
	misses := make(map[string]int, len(unmatched))
	for _, k := range unmatched {
		misses[k]++
	}
	rc.warnUnmatched(table, misses)
	return rc.normalizeCells(ctx, table, cells)
}

func handleUpdateRows(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	table, err := rc.resolveTableRef(ctx, args)
	if err != nil {
		return nil, err
	}
	cells, err := rc.parseSetCells(ctx, table, argMap(args, "set"))
	if err != nil {
		return nil, err
	}
	f, err := parseFilter(table, argMap(args, "filter"))
	if err != nil {
		return nil, err
	}
	rows, err := rc.engine.filterRows(ctx, table, f)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		rc.skipUndo()
		return map[string]any{"updated": 0}, nil
	}

	pres := make([]map[string]any, 0, len(rows))
	updated := make([]types.Row, 0, len(rows))
	for _, r := range rows {
		pre := undo.RowPreImage(r)
		after, err := rc.engine.store.UpdateRow(ctx, table.ID, r.ID, cells)
		if err != nil {
			// Partial failure: keep what succeeded reversible.
			rc.queueUndo(undo.UpsertPreImages("rows", pres...))
			return nil, err
		}
		pres = append(pres, pre)
		updated = append(updated, after)
	}
	rc.queueUndo(undo.UpsertPreImages("rows", pres...))
	return map[string]any{"updated": len(updated), "rows": updated}, nil
}

func handleUpdateRow(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	rowID := argString(args, "row_id")
	if err := requireID("row_id", rowID); err != nil {
		return nil, err
	}
	table, err := rc.resolveTableRef(ctx, args)
	if err != nil {
		return nil, err
	}
	cells, err := rc.parseSetCells(ctx, table, argMap(args, "set"))
	if err != nil {
		return nil, err
	}
	before, err := rc.engine.getRowByID(ctx, table.ID, rowID)
	if err != nil {
		return nil, err
	}
	after, err := rc.engine.store.UpdateRow(ctx, table.ID, rowID, cells)
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("rows", undo.RowPreImage(before)))
	return after, nil
}

func handleDeleteRows(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	table, err := rc.resolveTableRef(ctx, args)
	if err != nil {
		return nil, err
	}

	ids := argStringSlice(args, "row_ids")
	var doomed []types.Row
	if len(ids) > 0 {
		all, err := rc.engine.filterRows(ctx, table, rowFilter{})
		if err != nil {
			return nil, err
		}
		byID := make(map[string]types.Row, len(all))
		for _, r := range all {
			byID[r.ID] = r
		}
		for _, id := range ids {
			r, ok := byID[id]
			if !ok {
				return nil, validationf("no row %s in table %s", id, table.ID)
			}
			doomed = append(doomed, r)
		}
	} else {
		raw := argMap(args, "filter")
		if len(raw) == 0 {
			return nil, validationf("delete_rows: row_ids or filter is required")
		}
		f, err := parseFilter(table, raw)
		if err != nil {
			return nil, err
		}
		if doomed, err = rc.engine.filterRows(ctx, table, f); err != nil {
			return nil, err
		}
	}

	if len(doomed) == 0 {
		rc.skipUndo()
		return map[string]any{"deleted": 0}, nil
	}
	delIDs := make([]string, 0, len(doomed))
	pres := make([]map[string]any, 0, len(doomed))
	for _, r := range doomed {
		delIDs = append(delIDs, r.ID)
		pres = append(pres, undo.RowPreImage(r))
	}
	if err := rc.engine.store.DeleteRows(ctx, table.ID, delIDs); err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("rows", pres...))
	return map[string]any{"deleted": len(delIDs), "row_ids": delIDs}, nil
}

func handleFindRows(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	table, err := rc.resolveTableRef(ctx, args)
	if err != nil {
		return nil, err
	}
	f, err := parseFilter(table, argMap(args, "filter"))
	if err != nil {
		return nil, err
	}
	rows, err := rc.engine.filterRows(ctx, table, f)
	if err != nil {
		return nil, err
	}
	if limit, ok := argInt(args, "limit"); ok && limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return map[string]any{"rows": rows, "count": len(rows)}, nil
}

func handleCountRows(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	table, err := rc.resolveTableRef(ctx, args)
	if err != nil {
		return nil, err
	}
	f, err := parseFilter(table, argMap(args, "filter"))
	if err != nil {
		return nil, err
	}
	rows, err := rc.engine.filterRows(ctx, table, f)
	if err != nil {
		return nil, err
	}
	return map[string]any{"count": len(rows)}, nil
}

func handleClearTable(ctx context.Context, rc *runContext) (any, error) {
	table, err := rc.resolveTableRef(ctx, rc.call.Arguments)
	if err != nil {
		return nil, err
	}
	rows, err := rc.engine.filterRows(ctx, table, rowFilter{})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		rc.skipUndo()
		return map[string]any{"deleted": 0}, nil
	}
	ids := make([]string, 0, len(rows))
	pres := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
		pres = append(pres, undo.RowPreImage(r))
	}
	if err := rc.engine.store.DeleteRows(ctx, table.ID, ids); err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("rows", pres...))
	return map[string]any{"deleted": len(ids)}, nil
}

func handleGetRow(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	rowID := argString(args, "row_id")
	if err := requireID("row_id", rowID); err != nil {
		return nil, err
	}
	table, err := rc.resolveTableRef(ctx, args)
	if err != nil {
		return nil, err
	}
	return rc.engine.getRowByID(ctx, table.ID, rowID)
}
