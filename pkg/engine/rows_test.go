package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/pythagonacci/trak/pkg/actions"
	"github.com/pythagonacci/trak/pkg/types"
)

// seedDealsTable builds a table with Deal (primary text), Stage (select) and
// Amount (number) through the engine, returning the reloaded table.
func seedDealsTable(t *testing.T, e *Engine, store rowStore, execCtx types.ExecutionContext) types.Table {
	t.Helper()
	res := e.Execute(context.Background(), types.ToolCall{
		Name: "create_table",
		Arguments: map[string]any{
			"name": "Pipeline",
			"fields": []any{
				map[string]any{"name": "Deal"},
				map[string]any{"name": "Stage", "type": "select", "options": []any{"New", "Won", "Lost"}},
				map[string]any{"name": "Amount", "type": "number"},
			},
		},
	}, execCtx)
	if !res.Success {
		t.Fatalf("seed table: %s", res.Error)
	}
	table := res.Data.(map[string]any)["table"].(types.Table)
	full, err := store.GetTable(context.Background(), table.ID)
	if err != nil {
		t.Fatalf("reload table: %v", err)
	}
	return full
}

type rowStore interface {
	GetTable(ctx context.Context, id string) (types.Table, error)
	FetchRows(ctx context.Context, tableID string, page actions.Page) (actions.RowPage, error)
}

func TestInsertRowsWarnsOnUnmatchedKeys(t *testing.T) {
	e, store, execCtx, _ := newTestEngine(t)
	table := seedDealsTable(t, e, store, execCtx)

	res := e.Execute(context.Background(), types.ToolCall{
		Name: "insert_rows",
		Arguments: map[string]any{
			"table_id": table.ID,
			"rows": []any{
				map[string]any{"Deal": "Acme", "Stage": "New", "Bogus": "x"},
				map[string]any{"Deal": "Globex", "Bogus": "y"},
			},
		},
	}, execCtx)
	if !res.Success {
		t.Fatalf("insert failed: %s", res.Error)
	}
	data := res.Data.(map[string]any)
	if data["inserted"] != 2 {
		t.Fatalf("inserted = %v", data["inserted"])
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v", res.Warnings)
	}
	w := res.Warnings[0]
	if !strings.Contains(w, `"Bogus"`) || !strings.Contains(w, "2 row(s)") || !strings.Contains(w, "Stage") {
		t.Errorf("warning not actionable: %s", w)
	}
}

func TestInsertRowsDuplicateGuard(t *testing.T) {
	e, store, execCtx, tracker := newTestEngine(t)
	table := seedDealsTable(t, e, store, execCtx)

	rows := []any{
		map[string]any{"Deal": "Acme", "Stage": "New", "Amount": "10k"},
		map[string]any{"Deal": "Globex", "Stage": "Won", "Amount": "2.5m"},
	}
	insert := func() *types.ToolCallResult {
		return e.Execute(context.Background(), types.ToolCall{
			Name:      "insert_rows",
			Arguments: map[string]any{"table_id": table.ID, "rows": rows},
		}, execCtx)
	}

	first := insert()
	if !first.Success || first.Data.(map[string]any)["inserted"] != 2 {
		t.Fatalf("first insert: %+v", first)
	}
	stepsAfterFirst := len(tracker.Steps())

	// Replaying the same payload must be a no-op, matched case-insensitively
	// on the primary value.
	second := insert()
	if !second.Success {
		t.Fatalf("replay failed: %s", second.Error)
	}
	data := second.Data.(map[string]any)
	if data["inserted"] != 0 {
		t.Fatalf("replay inserted %v rows", data["inserted"])
	}
	if len(second.Warnings) == 0 {
		t.Errorf("replay should warn")
	}
	if len(tracker.Steps()) != stepsAfterFirst {
		t.Errorf("replay must not queue undo steps")
	}

	page, _ := store.FetchRows(context.Background(), table.ID, actions.Page{})
	if page.Total != 2 {
		t.Fatalf("table has %d rows after replay", page.Total)
	}

	// A partially fresh payload still inserts everything it carries.
	rows = []any{
		map[string]any{"Deal": "acme"},
		map[string]any{"Deal": "Initech"},
	}
	third := insert()
	if !third.Success || third.Data.(map[string]any)["inserted"] != 2 {
		t.Fatalf("mixed payload: %+v", third)
	}
}

func TestFindRowsMatchesLabelsAndSuffixNumbers(t *testing.T) {
	e, store, execCtx, _ := newTestEngine(t)
	table := seedDealsTable(t, e, store, execCtx)

	res := e.Execute(context.Background(), types.ToolCall{
		Name: "insert_rows",
		Arguments: map[string]any{
			"table_id": table.ID,
			"rows": []any{
				map[string]any{"Deal": "Acme", "Stage": "New", "Amount": "5k"},
				map[string]any{"Deal": "Globex", "Stage": "New", "Amount": "25k"},
				map[string]any{"Deal": "Initech", "Stage": "Won", "Amount": "100k"},
			},
		},
	}, execCtx)
	if !res.Success {
		t.Fatalf("insert: %s", res.Error)
	}

	find := func(filter map[string]any) []types.Row {
		t.Helper()
		res := e.Execute(context.Background(), types.ToolCall{
			Name:      "find_rows",
			Arguments: map[string]any{"table_id": table.ID, "filter": filter},
		}, execCtx)
		if !res.Success {
			t.Fatalf("find_rows: %s", res.Error)
		}
		return res.Data.(map[string]any)["rows"].([]types.Row)
	}

	// Stage cells store option ids; filtering by label must still hit them.
	if got := find(map[string]any{"Stage": "New"}); len(got) != 2 {
		t.Errorf("label filter matched %d rows", len(got))
	}
	// Comparisons parse human suffixes on both sides.
	if got := find(map[string]any{"amount": map[string]any{"op": "gte", "value": "10k"}}); len(got) != 2 {
		t.Errorf("gte filter matched %d rows", len(got))
	}
	if got := find(map[string]any{"Stage": "Won", "amount": map[string]any{"op": "lte", "value": "1m"}}); len(got) != 1 {
		t.Errorf("combined filter matched %d rows", len(got))
	}

	bad := e.Execute(context.Background(), types.ToolCall{
		Name:      "find_rows",
		Arguments: map[string]any{"table_id": table.ID, "filter": map[string]any{"Nope": 1}},
	}, execCtx)
	if bad.Success {
		t.Fatalf("unknown filter key must fail")
	}
}

func TestUpdateRowsCapturesPreImages(t *testing.T) {
	e, store, execCtx, tracker := newTestEngine(t)
	table := seedDealsTable(t, e, store, execCtx)

	res := e.Execute(context.Background(), types.ToolCall{
		Name: "insert_rows",
		Arguments: map[string]any{
			"table_id": table.ID,
			"rows": []any{
				map[string]any{"Deal": "Acme", "Stage": "New"},
				map[string]any{"Deal": "Globex", "Stage": "New"},
				map[string]any{"Deal": "Initech", "Stage": "Won"},
			},
		},
	}, execCtx)
	if !res.Success {
		t.Fatalf("insert: %s", res.Error)
	}
	before := len(tracker.Steps())

	res = e.Execute(context.Background(), types.ToolCall{
		Name: "update_rows",
		Arguments: map[string]any{
			"table_id": table.ID,
			"filter":   map[string]any{"Stage": "New"},
			"set":      map[string]any{"Stage": "Lost"},
		},
	}, execCtx)
	if !res.Success {
		t.Fatalf("update_rows: %s", res.Error)
	}
	if res.Data.(map[string]any)["updated"] != 2 {
		t.Fatalf("updated = %v", res.Data.(map[string]any)["updated"])
	}

	steps := tracker.Steps()
	if len(steps) != before+1 {
		t.Fatalf("undo steps = %+v", steps)
	}
	last := steps[len(steps)-1]
	if last.Action != types.UndoUpsert || last.Table != "rows" || len(last.Rows) != 2 {
		t.Fatalf("pre-image step wrong: %+v", last)
	}

	stage := fieldByName(t, mustGetTable(t, store, table.ID), "Stage")
	lost, _ := stage.OptionByValue("Lost")
	for _, pre := range last.Rows {
		cells := pre["cells"].(map[string]any)
		if cells[stage.ID] == lost.ID {
			t.Errorf("pre-image captured post-update state: %v", pre)
		}
	}
}

func TestUpdateRowsNoMatchSkipsUndo(t *testing.T) {
	e, store, execCtx, tracker := newTestEngine(t)
	table := seedDealsTable(t, e, store, execCtx)

	res := e.Execute(context.Background(), types.ToolCall{
		Name: "update_rows",
		Arguments: map[string]any{
			"table_id": table.ID,
			"filter":   map[string]any{"Stage": "Won"},
			"set":      map[string]any{"Stage": "Lost"},
		},
	}, execCtx)
	if !res.Success {
		t.Fatalf("update_rows: %s", res.Error)
	}
	if res.Data.(map[string]any)["updated"] != 0 {
		t.Fatalf("updated = %v", res.Data)
	}
	if len(tracker.Skipped()) == 0 {
		t.Errorf("zero-match update should be recorded as skipped")
	}
}

func TestDeleteRowsRequiresSelector(t *testing.T) {
	e, store, execCtx, _ := newTestEngine(t)
	table := seedDealsTable(t, e, store, execCtx)

	res := e.Execute(context.Background(), types.ToolCall{
		Name:      "delete_rows",
		Arguments: map[string]any{"table_id": table.ID},
	}, execCtx)
	if res.Success || !strings.Contains(res.Error, "row_ids or filter") {
		t.Fatalf("selector-less delete result: %+v", res)
	}
}

func TestDeleteRowsByFilter(t *testing.T) {
	e, store, execCtx, tracker := newTestEngine(t)
	table := seedDealsTable(t, e, store, execCtx)

	e.Execute(context.Background(), types.ToolCall{
		Name: "insert_rows",
		Arguments: map[string]any{
			"table_id": table.ID,
			"rows": []any{
				map[string]any{"Deal": "Acme", "Stage": "Lost"},
				map[string]any{"Deal": "Globex", "Stage": "Won"},
			},
		},
	}, execCtx)
	before := len(tracker.Steps())

	res := e.Execute(context.Background(), types.ToolCall{
		Name:      "delete_rows",
		Arguments: map[string]any{"table_id": table.ID, "filter": map[string]any{"Stage": "Lost"}},
	}, execCtx)
	if !res.Success {
		t.Fatalf("delete_rows: %s", res.Error)
	}
	if res.Data.(map[string]any)["deleted"] != 1 {
		t.Fatalf("deleted = %v", res.Data)
	}

	steps := tracker.Steps()
	if len(steps) != before+1 || steps[len(steps)-1].Action != types.UndoUpsert {
		t.Fatalf("deleted rows must leave upsert pre-images: %+v", steps)
	}

	page, _ := store.FetchRows(context.Background(), table.ID, actions.Page{})
	if page.Total != 1 {
		t.Fatalf("table has %d rows after delete", page.Total)
	}
}

func TestInsertRowsInfersPlaceholderTypes(t *testing.T) {
	e, store, execCtx, _ := newTestEngine(t)
	table, err := store.CreateTable(context.Background(), "ws_test", "Imports")
	if err != nil {
		t.Fatalf("seed table: %v", err)
	}

	res := e.Execute(context.Background(), types.ToolCall{
		Name: "insert_rows",
		Arguments: map[string]any{
			"table_id": table.ID,
			"rows": []any{
				map[string]any{"Name": "Acme", "Column 2": "High", "Column 3": "$1,200"},
				map[string]any{"Name": "Globex", "Column 2": "Low", "Column 3": "9k"},
			},
		},
	}, execCtx)
	if !res.Success {
		t.Fatalf("insert: %s", res.Error)
	}

	after := mustGetTable(t, store, table.ID)
	if f := after.Fields[1]; f.Type != types.FieldPriority || len(f.Config.Options) != 2 {
		t.Errorf("placeholder not upgraded from values: %+v", f)
	}
	if f := after.Fields[2]; f.Type != types.FieldNumber {
		t.Errorf("number column not inferred: %+v", f)
	}
}

func mustGetTable(t *testing.T, store rowStore, id string) types.Table {
	t.Helper()
	table, err := store.GetTable(context.Background(), id)
	if err != nil {
		t.Fatalf("get table: %v", err)
	}
	return table
}
