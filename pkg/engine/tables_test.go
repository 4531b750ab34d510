package engine

import (
	"context"
	"testing"

	"github.com/pythagonacci/trak/pkg/actions"
	"github.com/pythagonacci/trak/pkg/types"
)

func fieldByName(t *testing.T, table types.Table, name string) types.Field {
	t.Helper()
	for _, f := range table.Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("table %q has no field named %q: %+v", table.Name, name, table.Fields)
	return types.Field{}
}

func TestCreateFieldReusesPlaceholderColumns(t *testing.T) {
	e, store, execCtx, _ := newTestEngine(t)
	table, err := store.CreateTable(context.Background(), "ws_test", "Deals")
	if err != nil {
		t.Fatalf("seed table: %v", err)
	}
	execCtx.ContextTableID = table.ID

	createField := func(args map[string]any) (types.Field, bool) {
		t.Helper()
		res := e.Execute(context.Background(), types.ToolCall{Name: "create_field", Arguments: args}, execCtx)
		if !res.Success {
			t.Fatalf("create_field failed: %s", res.Error)
		}
		data := res.Data.(map[string]any)
		return data["field"].(types.Field), data["reused"].(bool)
	}

	// The two secondary placeholders absorb the first two fields regardless
	// of type.
	f1, reused := createField(map[string]any{"table_id": table.ID, "name": "Stage", "type": "select", "options": []any{"New", "Won"}})
	if !reused {
		t.Fatalf("first field should repurpose a placeholder")
	}
	if f1.Name != "Stage" || len(f1.Config.Options) != 2 {
		t.Fatalf("repurposed field wrong: %+v", f1)
	}

	_, reused = createField(map[string]any{"table_id": table.ID, "name": "Points", "type": "number"})
	if !reused {
		t.Fatalf("second field should repurpose the remaining placeholder")
	}

	// No secondary slot is left and person is not text-shaped, so the primary
	// placeholder stays and a real column is added.
	f3, reused := createField(map[string]any{"table_id": table.ID, "name": "Owner", "type": "person"})
	if reused {
		t.Fatalf("person field must not take the primary slot")
	}
	if f3.Name != "Owner" {
		t.Fatalf("created field wrong: %+v", f3)
	}

	// A text field may still claim the primary placeholder.
	f4, reused := createField(map[string]any{"table_id": table.ID, "name": "Deal", "type": "text"})
	if !reused || !f4.Primary {
		t.Fatalf("text field should take over the primary placeholder: reused=%v field=%+v", reused, f4)
	}

	final, err := store.GetTable(context.Background(), table.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(final.Fields) != 4 {
		t.Fatalf("expected 4 fields after 2 reuses, 1 create and a primary takeover, got %d", len(final.Fields))
	}
}

func TestCreateFieldSkipsReuseOnPopulatedTable(t *testing.T) {
	e, store, execCtx, _ := newTestEngine(t)
	table, _ := store.CreateTable(context.Background(), "ws_test", "Deals")
	pf, _ := table.PrimaryField()
	if _, err := store.InsertRows(context.Background(), table.ID, []map[string]any{{pf.ID: "Acme"}}); err != nil {
		t.Fatalf("seed row: %v", err)
	}

	res := e.Execute(context.Background(), types.ToolCall{
		Name:      "create_field",
		Arguments: map[string]any{"table_id": table.ID, "name": "Stage", "type": "select"},
	}, execCtx)
	if !res.Success {
		t.Fatalf("create_field failed: %s", res.Error)
	}
	if res.Data.(map[string]any)["reused"].(bool) {
		t.Fatalf("populated table must not have placeholders repurposed")
	}
}

func TestCreateTableAtomic(t *testing.T) {
	e, store, execCtx, tracker := newTestEngine(t)
	tab, _ := store.CreateTab(context.Background(), types.Tab{WorkspaceID: "ws_test", Name: "Sales"})

	res := e.Execute(context.Background(), types.ToolCall{
		Name: "create_table",
		Arguments: map[string]any{
			"name":   "Pipeline",
			"tab_id": tab.ID,
			"fields": []any{
				map[string]any{"name": "Deal"},
				map[string]any{"name": "Stage", "type": "select", "options": []any{"New", "Won"}},
				map[string]any{"name": "Amount", "type": "number"},
			},
			"rows": []any{
				map[string]any{"Deal": "Acme renewal", "Stage": "New", "Amount": "10k"},
			},
		},
	}, execCtx)
	if !res.Success {
		t.Fatalf("create_table failed: %s", res.Error)
	}

	data := res.Data.(map[string]any)
	table := data["table"].(types.Table)
	if len(table.Fields) != 3 {
		t.Fatalf("field count = %d", len(table.Fields))
	}
	if pf, _ := table.PrimaryField(); pf.Name != "Deal" {
		t.Errorf("primary = %q", pf.Name)
	}

	block, ok := data["block"].(types.Block)
	if !ok || block.TabID != tab.ID || block.RefID != table.ID {
		t.Fatalf("block not created on the tab: %+v", data["block"])
	}

	rowIDs := data["row_ids"].([]string)
	if len(rowIDs) != 1 {
		t.Fatalf("row_ids = %v", rowIDs)
	}

	// Cell values are normalized on the way in: labels become option ids,
	// shorthand numbers become floats.
	stage := fieldByName(t, table, "Stage")
	amount := fieldByName(t, table, "Amount")
	page, err := store.FetchRows(context.Background(), table.ID, actions.Page{})
	if err != nil || len(page.Rows) != 1 {
		t.Fatalf("fetch rows: %v (%d rows)", err, len(page.Rows))
	}
	cells := page.Rows[0].Cells
	opt, ok := stage.OptionByValue("New")
	if !ok {
		t.Fatalf("stage has no option for New: %+v", stage.Config.Options)
	}
	if cells[stage.ID] != opt.ID {
		t.Errorf("stage cell = %v, want option id %s", cells[stage.ID], opt.ID)
	}
	if cells[amount.ID] != 10000.0 {
		t.Errorf("amount cell = %v, want 10000", cells[amount.ID])
	}

	steps := tracker.Steps()
	if len(steps) != 2 || steps[0].Table != "tables" || steps[1].Table != "blocks" {
		t.Fatalf("undo steps = %+v", steps)
	}
}

func TestCreateTableSagaRepurposesPlaceholders(t *testing.T) {
	e, store, execCtx, _ := newTestEngine(t)
	store.DisableFullRPC = true

	res := e.Execute(context.Background(), types.ToolCall{
		Name: "create_table",
		Arguments: map[string]any{
			"name": "Pipeline",
			"fields": []any{
				map[string]any{"name": "Deal"},
				map[string]any{"name": "Stage", "type": "select", "options": []any{"New", "Won"}},
				map[string]any{"name": "Amount", "type": "number"},
			},
			"rows": []any{
				map[string]any{"Deal": "Acme renewal", "Stage": "Won", "Amount": "2.5m"},
			},
		},
	}, execCtx)
	if !res.Success {
		t.Fatalf("create_table failed: %s", res.Error)
	}

	table := res.Data.(map[string]any)["table"].(types.Table)
	// The three desired columns land in the three scaffolded placeholders;
	// nothing extra is created.
	if len(table.Fields) != 3 {
		t.Fatalf("field count = %d: %+v", len(table.Fields), table.Fields)
	}
	if pf, _ := table.PrimaryField(); pf.Name != "Deal" || pf.Auto {
		t.Errorf("primary placeholder not repurposed: %+v", pf)
	}

	amount := fieldByName(t, table, "Amount")
	page, _ := store.FetchRows(context.Background(), table.ID, actions.Page{})
	if len(page.Rows) != 1 {
		t.Fatalf("saga inserted %d rows", len(page.Rows))
	}
	if page.Rows[0].Cells[amount.ID] != 2_500_000.0 {
		t.Errorf("amount cell = %v", page.Rows[0].Cells[amount.ID])
	}
}

func TestDeleteTableCapturesRowPreImages(t *testing.T) {
	e, store, execCtx, tracker := newTestEngine(t)
	table, _ := store.CreateTable(context.Background(), "ws_test", "Deals")
	pf, _ := table.PrimaryField()
	store.InsertRows(context.Background(), table.ID, []map[string]any{{pf.ID: "a"}, {pf.ID: "b"}})

	res := e.Execute(context.Background(), types.ToolCall{
		Name:      "delete_table",
		Arguments: map[string]any{"table_id": table.ID},
	}, execCtx)
	if !res.Success {
		t.Fatalf("delete_table failed: %s", res.Error)
	}

	steps := tracker.Steps()
	if len(steps) != 2 {
		t.Fatalf("undo steps = %+v", steps)
	}
	if steps[0].Table != "tables" || steps[0].Action != types.UndoUpsert {
		t.Errorf("table pre-image wrong: %+v", steps[0])
	}
	if steps[1].Table != "rows" || len(steps[1].Rows) != 2 {
		t.Errorf("row pre-images wrong: %+v", steps[1])
	}
}

func TestAddFieldOptionNoChangeSkipsUndo(t *testing.T) {
	e, store, execCtx, tracker := newTestEngine(t)
	table, _ := store.CreateTable(context.Background(), "ws_test", "Deals")
	execCtx.ContextTableID = table.ID

	res := e.Execute(context.Background(), types.ToolCall{
		Name:      "create_field",
		Arguments: map[string]any{"table_id": table.ID, "name": "Stage", "type": "select", "options": []any{"New"}},
	}, execCtx)
	if !res.Success {
		t.Fatalf("create_field: %s", res.Error)
	}

	before := len(tracker.Steps())
	res = e.Execute(context.Background(), types.ToolCall{
		Name:      "add_field_option",
		Arguments: map[string]any{"table_id": table.ID, "field": "Stage", "options": []any{"new"}},
	}, execCtx)
	if !res.Success {
		t.Fatalf("add_field_option: %s", res.Error)
	}
	if len(res.Warnings) == 0 {
		t.Errorf("duplicate option should warn")
	}
	if len(tracker.Steps()) != before {
		t.Errorf("no-op must not queue undo steps")
	}
	if len(tracker.Skipped()) == 0 {
		t.Errorf("no-op should be recorded as skipped")
	}
}
