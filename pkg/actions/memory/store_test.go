package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/pythagonacci/trak/pkg/actions"
	"github.com/pythagonacci/trak/pkg/types"
)

func TestTaskCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	created, err := s.CreateTask(ctx, types.Task{WorkspaceID: "ws", Title: "Ship it"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || !types.WellFormedID(created.ID) {
		t.Fatalf("bad id %q", created.ID)
	}

	updated, err := s.UpdateTask(ctx, created.ID, map[string]any{"status": "done", "add_tags": []string{"q3", "Q3"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != "done" {
		t.Errorf("status = %q", updated.Status)
	}
	if len(updated.Tags) != 1 {
		t.Errorf("add_tags must dedupe case-insensitively: %v", updated.Tags)
	}

	found, err := s.SearchTasks(ctx, "ws", actions.TaskQuery{Status: "DONE"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("status search found %d", len(found))
	}

	if err := s.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTask(ctx, created.ID); err == nil {
		t.Fatalf("deleted task still readable")
	}
}

func TestCreateTableScaffoldsPlaceholders(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tbl, err := s.CreateTable(ctx, "ws", "Deals")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(tbl.Fields) != 3 {
		t.Fatalf("expected 3 placeholder fields, got %d", len(tbl.Fields))
	}
	pf, ok := tbl.PrimaryField()
	if !ok || pf.Name != "Name" || !pf.Auto {
		t.Fatalf("primary placeholder wrong: %+v", pf)
	}
}

func TestFetchRowsPaging(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	tbl, _ := s.CreateTable(ctx, "ws", "Deals")

	cells := make([]map[string]any, 5)
	for i := range cells {
		cells[i] = map[string]any{"k": i}
	}
	if _, err := s.InsertRows(ctx, tbl.ID, cells); err != nil {
		t.Fatalf("insert: %v", err)
	}

	page, err := s.FetchRows(ctx, tbl.ID, actions.Page{Limit: 2})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(page.Rows) != 2 || page.Total != 5 || !page.HasMore {
		t.Fatalf("first page wrong: rows=%d total=%d more=%v", len(page.Rows), page.Total, page.HasMore)
	}

	last, err := s.FetchRows(ctx, tbl.ID, actions.Page{Limit: 10, Offset: 4})
	if err != nil {
		t.Fatalf("fetch last: %v", err)
	}
	if len(last.Rows) != 1 || last.HasMore {
		t.Fatalf("last page wrong: rows=%d more=%v", len(last.Rows), last.HasMore)
	}
}

func TestCreateTableFull(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	fields := []types.Field{
		{ID: types.GenerateFieldID(), Name: "Deal", Type: types.FieldText, Primary: true},
		{ID: types.GenerateFieldID(), Name: "Stage", Type: types.FieldSelect},
	}
	tab, _ := s.CreateTab(ctx, types.Tab{WorkspaceID: "ws", Name: "Sales"})

	res, err := s.CreateTableFull(ctx, "ws", actions.TableFullSpec{
		Name:   "Pipeline",
		TabID:  tab.ID,
		Fields: fields,
		Rows:   []map[string]any{{fields[0].ID: "Acme"}},
	})
	if err != nil {
		t.Fatalf("full create: %v", err)
	}
	if len(res.Table.Fields) != 2 {
		t.Fatalf("spec fields not honored: %d", len(res.Table.Fields))
	}
	if res.Block.ID == "" || res.Block.RefID != res.Table.ID {
		t.Fatalf("block not attached: %+v", res.Block)
	}
	if len(res.RowIDs) != 1 {
		t.Fatalf("row ids = %v", res.RowIDs)
	}
}

func TestDisableFullRPC(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.DisableFullRPC = true

	if _, err := s.CreateTaskFull(ctx, types.Task{Title: "x"}); !errors.Is(err, actions.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if _, err := s.CreateTableFull(ctx, "ws", actions.TableFullSpec{Name: "x"}); !errors.Is(err, actions.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestDeleteTableCascadesRows(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	tbl, _ := s.CreateTable(ctx, "ws", "Deals")
	rows, _ := s.InsertRows(ctx, tbl.ID, []map[string]any{{"a": 1}, {"a": 2}})

	if err := s.DeleteTable(ctx, tbl.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.FetchRows(ctx, tbl.ID, actions.Page{}); err == nil {
		t.Fatalf("rows of deleted table still fetchable")
	}
	_ = rows
}

func TestDocAppend(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	doc, _ := s.CreateDoc(ctx, types.Doc{WorkspaceID: "ws", Title: "Notes", Content: "one"})

	updated, err := s.UpdateDoc(ctx, doc.ID, map[string]any{"append_content": "two"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if updated.Content != "one\ntwo" && updated.Content != "onetwo" {
		t.Fatalf("append produced %q", updated.Content)
	}
}
