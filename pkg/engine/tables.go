package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/pythagonacci/trak/pkg/actions"
	"github.com/pythagonacci/trak/pkg/resolve"
	"github.com/pythagonacci/trak/pkg/schema"
	"github.com/pythagonacci/trak/pkg/types"
	"github.com/pythagonacci/trak/pkg/undo"
)

func (e *Engine) registerTableHandlers() {
	e.register("create_table", handleCreateTable)
	e.register("rename_table", handleRenameTable)
	e.register("delete_table", handleDeleteTable)
	e.register("get_table", handleGetTable)
	e.register("list_tables", handleListTables)
	e.register("search_tables", handleSearchTables)

	e.register("create_field", handleCreateField)
	e.register("update_field", handleUpdateField)
	e.register("delete_field", handleDeleteField)
	e.register("add_field_option", handleAddFieldOption)
}

// buildTableFields turns field definitions plus initial rows into a concrete
// field list with pre-generated ids. When no definitions are given the row
// keys define the columns; types and options are inferred from the values
// under each key. The first field is primary.
func buildTableFields(defs []map[string]any, rows []map[string]any) []types.Field {
	if len(defs) == 0 {
		for _, name := range rowKeyOrder(rows) {
			defs = append(defs, map[string]any{"name": name})
		}
	}

	fields := make([]types.Field, 0, len(defs))
	for i, def := range defs {
		name := argString(def, "name")
		if name == "" {
			continue
		}
		samples := samplesForKey(rows, name)

		t := types.FieldType(argString(def, "type"))
		labels := argStringSlice(def, "options")

		f := types.Field{
			ID:      types.GenerateFieldID(),
			Name:    name,
			Primary: i == 0,
		}
		if t == "" {
			inf := schema.Infer(name, samples)
			f.Type = inf.Type
			f.Config.Options = inf.Options
		} else {
			f.Type = t
			if t.SelectLike() {
				if len(labels) > 0 {
					f.Config.Options = schema.BuildOptions(t, labels)
				} else {
					f.Config.Options = schema.OptionsFromValues(t, samples)
				}
			}
		}
		fields = append(fields, f)
	}
	return fields
}

// rowKeyOrder returns the union of row keys, first-seen order across rows and
// sorted within each row for determinism.
func rowKeyOrder(rows []map[string]any) []string {
	var order []string
	seen := make(map[string]bool)
	for _, r := range rows {
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			low := strings.ToLower(k)
			if !seen[low] {
				seen[low] = true
				order = append(order, k)
			}
		}
	}
	return order
}

func samplesForKey(rows []map[string]any, name string) []any {
	var out []any
	for _, r := range rows {
		for k, v := range r {
			if strings.EqualFold(k, name) {
				out = append(out, v)
			}
		}
	}
	return out
}

func handleCreateTable(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	name := argString(args, "name")
	tabID := argString(args, "tab_id")
	if tabID == "" {
		tabID = rc.exec.CurrentTabID
	}
	rowsIn := argMapSlice(args, "rows")
	fields := buildTableFields(argMapSlice(args, "fields"), rowsIn)

	// The atomic RPC wants rows keyed by field id; the saga path re-maps by
	// name after fields land, since repurposed placeholder columns keep their
	// own ids.
	spec := types.Table{Fields: fields}
	atomicCells := make([]map[string]any, 0, len(rowsIn))
	for _, raw := range rowsIn {
		cells, unmatched := resolve.MapRowKeys(spec, raw)
		for _, k := range unmatched {
			rc.warnf("row key %q matched no field", k)
		}
		norm, err := rc.normalizeCells(ctx, spec, cells)
		if err != nil {
			return nil, err
		}
		atomicCells = append(atomicCells, norm)
	}

	var (
		table  types.Table
		block  types.Block
		rowIDs []string
	)
	store := rc.engine.store

	_, err := rc.engine.runStrategy(ctx, rc.call.Name, strategy{
		atomic: func(ctx context.Context) (any, error) {
			specFields := fields
			if len(specFields) == 0 {
				// Match the scaffold an empty table gets on the granular path.
				specFields = []types.Field{
					{ID: types.GenerateFieldID(), Name: "Name", Type: types.FieldText, Primary: true, Auto: true},
					{ID: types.GenerateFieldID(), Name: "Column 2", Type: types.FieldText, Auto: true},
					{ID: types.GenerateFieldID(), Name: "Column 3", Type: types.FieldText, Auto: true},
				}
			}
			res, err := store.CreateTableFull(ctx, rc.exec.WorkspaceID, actions.TableFullSpec{
				Name:   name,
				TabID:  tabID,
				Fields: specFields,
				Rows:   atomicCells,
			})
			if err != nil {
				return nil, err
			}
			table, block, rowIDs = res.Table, res.Block, res.RowIDs
			return nil, nil
		},
		steps: []sagaStep{
			{
				name: "create table",
				run: func(ctx context.Context) error {
					t, err := store.CreateTable(ctx, rc.exec.WorkspaceID, name)
					if err != nil {
						return err
					}
					table = t
					return nil
				},
				compensate: func(ctx context.Context) error {
					return store.DeleteTable(ctx, table.ID)
				},
			},
			{
				name: "apply fields",
				run: func(ctx context.Context) error {
					return rc.applyFieldsToNewTable(ctx, table.ID, fields)
				},
			},
			{
				name: "insert rows",
				run: func(ctx context.Context) error {
					if len(rowsIn) == 0 {
						return nil
					}
					t, err := store.GetTable(ctx, table.ID)
					if err != nil {
						return err
					}
					cells := make([]map[string]any, 0, len(rowsIn))
					for _, raw := range rowsIn {
						mapped, _ := resolve.MapRowKeys(t, raw)
						norm, err := rc.normalizeCells(ctx, t, mapped)
						if err != nil {
							return err
						}
						cells = append(cells, norm)
					}
					rows, err := store.InsertRows(ctx, table.ID, cells)
					if err != nil {
						return err
					}
					for _, r := range rows {
						rowIDs = append(rowIDs, r.ID)
					}
					return nil
				},
			},
			{
				name: "create block",
				run: func(ctx context.Context) error {
					if tabID == "" {
						return nil
					}
					b, err := store.CreateBlock(ctx, types.Block{
						WorkspaceID: rc.exec.WorkspaceID,
						TabID:       tabID,
						Type:        "table",
						RefID:       table.ID,
						Title:       name,
					})
					if err != nil {
						return err
					}
					block = b
					return nil
				},
			},
		},
		result: func(ctx context.Context) (any, error) { return nil, nil },
	})
	if err != nil {
		return nil, err
	}

	full, err := store.GetTable(ctx, table.ID)
	if err == nil {
		table = full
	}

	rc.queueUndo(undo.DeleteCreated("tables", table.ID))
	if block.ID != "" {
		rc.queueUndo(undo.DeleteCreated("blocks", block.ID))
	}

	out := map[string]any{"table": table, "row_ids": rowIDs}
	if block.ID != "" {
		out["block"] = block
	}
	return out, nil
}

// applyFieldsToNewTable shapes a freshly scaffolded table into the desired
// field list: the first desired field takes over the primary placeholder, the
// rest flow through the usual slot-reuse-or-create path.
func (rc *runContext) applyFieldsToNewTable(ctx context.Context, tableID string, fields []types.Field) error {
	table, err := rc.engine.store.GetTable(ctx, tableID)
	if err != nil {
		return err
	}
	for i, desired := range fields {
		if i == 0 {
			if pf, ok := table.PrimaryField(); ok && pf.Auto {
				if _, err := rc.engine.store.UpdateField(ctx, tableID, pf.ID, fieldPatch(desired)); err != nil {
					return err
				}
				rc.markSlotConsumed(tableID, pf.ID)
				continue
			}
		}
		if _, _, err := rc.applyField(ctx, table, desired); err != nil {
			return err
		}
		table, err = rc.engine.store.GetTable(ctx, tableID)
		if err != nil {
			return err
		}
	}
	return nil
}

func fieldPatch(f types.Field) map[string]any {
	return map[string]any{
		"name":    f.Name,
		"type":    string(f.Type),
		"options": f.Config.Options,
		"auto":    false,
	}
}

func fieldPreImage(tableID string, f types.Field) map[string]any {
	return map[string]any{
		"id":       f.ID,
		"table_id": tableID,
		"name":     f.Name,
		"type":     string(f.Type),
		"options":  f.Config.Options,
		"primary":  f.Primary,
		"auto":     f.Auto,
	}
}

func (rc *runContext) markSlotConsumed(tableID, fieldID string) {
	if rc.consumedSlots[tableID] == nil {
		rc.consumedSlots[tableID] = make(map[string]bool)
	}
	rc.consumedSlots[tableID][fieldID] = true
}

// tableIsFresh reports whether a table still looks untouched: at most three
// rows and not a single populated cell. Only a fresh table's placeholder
// columns are eligible for repurposing.
func (rc *runContext) tableIsFresh(ctx context.Context, table types.Table) bool {
	page, err := rc.engine.store.FetchRows(ctx, table.ID, actions.Page{Limit: 4})
	if err != nil {
		return false
	}
	if page.Total > 3 {
		return false
	}
	for _, r := range page.Rows {
		for _, v := range r.Cells {
			if !missingArg(v) {
				return false
			}
		}
	}
	return true
}

// applyField adds one field to a table, repurposing an auto placeholder
// column when the table is fresh. Secondary placeholders go first; the
// primary slot is taken only by a text-leaning field once no secondary slot
// remains. reused reports whether a placeholder was consumed.
func (rc *runContext) applyField(ctx context.Context, table types.Table, desired types.Field) (types.Field, bool, error) {
	if rc.tableIsFresh(ctx, table) {
		consumed := rc.consumedSlots[table.ID]
		var primarySlot *types.Field
		for i := range table.Fields {
			f := table.Fields[i]
			if !f.Auto || consumed[f.ID] {
				continue
			}
			if f.Primary {
				primarySlot = &table.Fields[i]
				continue
			}
			updated, err := rc.engine.store.UpdateField(ctx, table.ID, f.ID, fieldPatch(desired))
			if err != nil {
				return types.Field{}, false, err
			}
			rc.markSlotConsumed(table.ID, f.ID)
			return updated, true, nil
		}
		if primarySlot != nil && desired.Type.TextLeaning() {
			updated, err := rc.engine.store.UpdateField(ctx, table.ID, primarySlot.ID, fieldPatch(desired))
			if err != nil {
				return types.Field{}, false, err
			}
			rc.markSlotConsumed(table.ID, primarySlot.ID)
			return updated, true, nil
		}
	}

	created, err := rc.engine.store.CreateField(ctx, table.ID, desired)
	if err != nil {
		return types.Field{}, false, err
	}
	return created, false, nil
}

func handleRenameTable(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	table, err := rc.resolveTableRef(ctx, args)
	if err != nil {
		return nil, err
	}
	renamed, err := rc.engine.store.RenameTable(ctx, table.ID, argString(args, "name"))
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("tables", map[string]any{
		"id":           table.ID,
		"workspace_id": table.WorkspaceID,
		"name":         table.Name,
	}))
	return renamed, nil
}

func handleDeleteTable(ctx context.Context, rc *runContext) (any, error) {
	id := argString(rc.call.Arguments, "table_id")
	if err := requireID("table_id", id); err != nil {
		return nil, err
	}
	table, err := rc.engine.store.GetTable(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := rc.engine.filterRows(ctx, table, rowFilter{})
	if err != nil {
		return nil, err
	}
	if err := rc.engine.store.DeleteTable(ctx, id); err != nil {
		return nil, err
	}

	rc.queueUndo(undo.UpsertPreImages("tables", map[string]any{
		"id":           table.ID,
		"workspace_id": table.WorkspaceID,
		"name":         table.Name,
		"fields":       table.Fields,
	}))
	if len(rows) > 0 {
		pres := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			pres = append(pres, undo.RowPreImage(r))
		}
		rc.queueUndo(undo.UpsertPreImages("rows", pres...))
	}
	return map[string]any{"deleted": id, "rows_deleted": len(rows)}, nil
}

func handleGetTable(ctx context.Context, rc *runContext) (any, error) {
	return rc.resolveTableRef(ctx, rc.call.Arguments)
}

func handleListTables(ctx context.Context, rc *runContext) (any, error) {
	return rc.engine.store.ListTables(ctx, rc.exec.WorkspaceID)
}

func handleSearchTables(ctx context.Context, rc *runContext) (any, error) {
	return rc.engine.store.SearchTables(ctx, rc.exec.WorkspaceID, argString(rc.call.Arguments, "query"))
}

// Fields

// resolveFieldRef matches the "field" argument, an id or a free-form name,
// against the table.
func resolveFieldRef(table types.Table, ref string) (types.Field, error) {
	if f, ok := table.FieldByID(ref); ok {
		return f, nil
	}
	if f, ok := resolve.FieldByName(table, ref); ok {
		return f, nil
	}
	return types.Field{}, validationf("table %q has no field matching %q", table.Name, ref)
}

func handleCreateField(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	table, err := rc.resolveTableRef(ctx, args)
	if err != nil {
		return nil, err
	}

	name := argString(args, "name")
	t := types.FieldType(argString(args, "type"))
	labels := argStringSlice(args, "options")
	samples := argAnySlice(args, "samples")

	desired := types.Field{Name: name, Type: t}
	if t == "" {
		inf := schema.Infer(name, samples)
		desired.Type = inf.Type
		desired.Config.Options = inf.Options
	}
	if desired.Type.SelectLike() && len(desired.Config.Options) == 0 {
		if len(labels) > 0 {
			desired.Config.Options = schema.BuildOptions(desired.Type, labels)
		} else {
			desired.Config.Options = schema.OptionsFromValues(desired.Type, samples)
		}
	}

	field, reused, err := rc.applyField(ctx, table, desired)
	if err != nil {
		return nil, err
	}
	if reused {
		rc.warnf("repurposed placeholder column for %q instead of adding a new one", name)
		rc.queueUndo(undo.UpsertPreImages("fields", fieldPreImage(table.ID, field)))
	} else {
		rc.queueUndo(undo.DeleteCreated("fields", field.ID))
	}
	return map[string]any{"field": field, "reused": reused}, nil
}

func handleUpdateField(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	table, err := rc.resolveTableRef(ctx, args)
	if err != nil {
		return nil, err
	}
	field, err := resolveFieldRef(table, argString(args, "field"))
	if err != nil {
		return nil, err
	}

	patch := map[string]any{}
	newType := field.Type
	if _, present := args["type"]; present {
		newType = types.FieldType(argString(args, "type"))
		patch["type"] = string(newType)
	}
	if _, present := args["name"]; present {
		patch["name"] = argString(args, "name")
	}
	if _, present := args["options"]; present {
		patch["options"] = schema.BuildOptions(newType, argStringSlice(args, "options"))
	}
	if len(patch) == 0 {
		return nil, validationf("update_field: nothing to update")
	}

	updated, err := rc.engine.store.UpdateField(ctx, table.ID, field.ID, patch)
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("fields", fieldPreImage(table.ID, field)))
	return updated, nil
}

func handleDeleteField(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	table, err := rc.resolveTableRef(ctx, args)
	if err != nil {
		return nil, err
	}
	field, err := resolveFieldRef(table, argString(args, "field"))
	if err != nil {
		return nil, err
	}
	if field.Primary {
		return nil, validationf("cannot delete the primary field %q", field.Name)
	}
	if err := rc.engine.store.DeleteField(ctx, table.ID, field.ID); err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("fields", fieldPreImage(table.ID, field)))
	return map[string]any{"deleted": field.ID}, nil
}

func handleAddFieldOption(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	table, err := rc.resolveTableRef(ctx, args)
	if err != nil {
		return nil, err
	}
	field, err := resolveFieldRef(table, argString(args, "field"))
	if err != nil {
		return nil, err
	}
	if !field.Type.SelectLike() {
		return nil, validationf("field %q is %s; options apply only to select-like fields", field.Name, field.Type)
	}

	labels := argStringSlice(args, "options")
	merged := schema.AppendOptions(field.Type, field.Config.Options, labels)
	if len(merged) == len(field.Config.Options) {
		rc.warnf("all options already present on %q", field.Name)
		rc.skipUndo()
		updated := field
		return updated, nil
	}

	updated, err := rc.engine.store.UpdateField(ctx, table.ID, field.ID, map[string]any{"options": merged})
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("fields", fieldPreImage(table.ID, field)))
	return updated, nil
}
