package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/pythagonacci/trak/pkg/types"
)

func TestCreateBlockUsesContextTab(t *testing.T) {
	e, store, execCtx, _ := newTestEngine(t)
	tab, _ := store.CreateTab(context.Background(), types.Tab{WorkspaceID: "ws_test", Name: "Home"})
	execCtx.CurrentTabID = tab.ID

	res := e.Execute(context.Background(), types.ToolCall{
		Name:      "create_block",
		Arguments: map[string]any{"type": "doc", "title": "Notes"},
	}, execCtx)
	if !res.Success {
		t.Fatalf("create_block: %s", res.Error)
	}
	b := res.Data.(types.Block)
	if b.TabID != tab.ID || b.Position != 0 {
		t.Errorf("block = %+v", b)
	}

	// The next block on the same tab lands after the first.
	res = e.Execute(context.Background(), types.ToolCall{
		Name:      "create_block",
		Arguments: map[string]any{"type": "timeline"},
	}, execCtx)
	if !res.Success {
		t.Fatalf("second create_block: %s", res.Error)
	}
	if res.Data.(types.Block).Position != 1 {
		t.Errorf("position = %d", res.Data.(types.Block).Position)
	}

	bad := e.Execute(context.Background(), types.ToolCall{
		Name:      "create_block",
		Arguments: map[string]any{"type": "spreadsheet"},
	}, execCtx)
	if bad.Success || !strings.Contains(bad.Error, "block type") {
		t.Fatalf("bad type result: %+v", bad)
	}
}

func TestCreateBlockWithoutTabFails(t *testing.T) {
	e, _, execCtx, _ := newTestEngine(t)
	res := e.Execute(context.Background(), types.ToolCall{
		Name:      "create_block",
		Arguments: map[string]any{"type": "doc"},
	}, execCtx)
	if res.Success || !strings.Contains(res.Error, "tab") {
		t.Fatalf("result: %+v", res)
	}
}

func TestRenameTabByName(t *testing.T) {
	e, store, execCtx, tracker := newTestEngine(t)
	store.CreateTab(context.Background(), types.Tab{WorkspaceID: "ws_test", Name: "Home"})

	res := e.Execute(context.Background(), types.ToolCall{
		Name:      "rename_tab",
		Arguments: map[string]any{"tab": "home", "name": "Dashboard"},
	}, execCtx)
	if !res.Success {
		t.Fatalf("rename_tab: %s", res.Error)
	}
	if res.Data.(types.Tab).Name != "Dashboard" {
		t.Errorf("tab = %+v", res.Data)
	}

	steps := tracker.Steps()
	if len(steps) != 1 || steps[0].Table != "tabs" || steps[0].Rows[0]["name"] != "Home" {
		t.Fatalf("pre-image wrong: %+v", steps)
	}
}

func TestTimelineEntryValidation(t *testing.T) {
	e, _, execCtx, _ := newTestEngine(t)

	res := e.Execute(context.Background(), types.ToolCall{
		Name:      "add_timeline_entry",
		Arguments: map[string]any{"title": "Kickoff", "start_date": "not-a-date"},
	}, execCtx)
	if res.Success || !strings.Contains(res.Error, "YYYY-MM-DD") {
		t.Fatalf("bad start result: %+v", res)
	}

	res = e.Execute(context.Background(), types.ToolCall{
		Name: "add_timeline_entry",
		Arguments: map[string]any{
			"title":      "Kickoff",
			"start_date": "2026-09-10",
			"end_date":   "2026-09-01",
		},
	}, execCtx)
	if res.Success || !strings.Contains(res.Error, "before start_date") {
		t.Fatalf("inverted range result: %+v", res)
	}

	res = e.Execute(context.Background(), types.ToolCall{
		Name: "add_timeline_entry",
		Arguments: map[string]any{
			"title":      "Kickoff",
			"start_date": "2026-09-01",
			"end_date":   "2026-09-10",
		},
	}, execCtx)
	if !res.Success {
		t.Fatalf("add_timeline_entry: %s", res.Error)
	}
	entry := res.Data.(types.TimelineEntry)
	if entry.StartDate != "2026-09-01" || entry.EndDate != "2026-09-10" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestWorkspaceSummary(t *testing.T) {
	e, store, execCtx, _ := newTestEngine(t)
	ctx := context.Background()

	store.CreateProject(ctx, types.Project{WorkspaceID: "ws_test", Name: "Launch"})
	store.CreateTask(ctx, types.Task{WorkspaceID: "ws_test", Title: "A", Status: "open"})
	store.CreateTask(ctx, types.Task{WorkspaceID: "ws_test", Title: "B", Status: "done"})
	store.CreateTable(ctx, "ws_test", "Deals")
	store.CreateTab(ctx, types.Tab{WorkspaceID: "ws_test", Name: "Home"})
	store.SeedMember(types.Member{Name: "Joanna Reyes"})

	res := e.Execute(ctx, types.ToolCall{Name: "workspace_summary"}, execCtx)
	if !res.Success {
		t.Fatalf("workspace_summary: %s", res.Error)
	}
	sum := res.Data.(map[string]any)
	checks := map[string]int{
		"projects":   1,
		"tasks":      2,
		"open_tasks": 1,
		"done_tasks": 1,
		"tables":     1,
		"tabs":       1,
		"members":    1,
	}
	for key, want := range checks {
		if sum[key] != want {
			t.Errorf("%s = %v, want %d", key, sum[key], want)
		}
	}
}

func TestProjectArchiveAndList(t *testing.T) {
	e, store, execCtx, _ := newTestEngine(t)
	ctx := context.Background()
	p, _ := store.CreateProject(ctx, types.Project{WorkspaceID: "ws_test", Name: "Launch"})
	store.CreateProject(ctx, types.Project{WorkspaceID: "ws_test", Name: "Ops"})

	res := e.Execute(ctx, types.ToolCall{
		Name:      "archive_project",
		Arguments: map[string]any{"project_id": p.ID},
	}, execCtx)
	if !res.Success {
		t.Fatalf("archive_project: %s", res.Error)
	}

	res = e.Execute(ctx, types.ToolCall{Name: "list_projects"}, execCtx)
	if !res.Success {
		t.Fatalf("list_projects: %s", res.Error)
	}
	if got := len(res.Data.([]types.Project)); got != 1 {
		t.Errorf("active projects = %d", got)
	}

	res = e.Execute(ctx, types.ToolCall{
		Name:      "list_projects",
		Arguments: map[string]any{"include_archived": true},
	}, execCtx)
	if got := len(res.Data.([]types.Project)); got != 2 {
		t.Errorf("all projects = %d", got)
	}
}

func TestDocLifecycle(t *testing.T) {
	e, _, execCtx, tracker := newTestEngine(t)
	ctx := context.Background()

	res := e.Execute(ctx, types.ToolCall{
		Name:      "create_doc",
		Arguments: map[string]any{"title": "Launch notes", "content": "one"},
	}, execCtx)
	if !res.Success {
		t.Fatalf("create_doc: %s", res.Error)
	}
	doc := res.Data.(types.Doc)

	res = e.Execute(ctx, types.ToolCall{
		Name:      "append_doc",
		Arguments: map[string]any{"doc_id": doc.ID, "content": "two"},
	}, execCtx)
	if !res.Success {
		t.Fatalf("append_doc: %s", res.Error)
	}
	after := res.Data.(types.Doc)
	if !strings.Contains(after.Content, "one") || !strings.Contains(after.Content, "two") {
		t.Errorf("append produced %q", after.Content)
	}

	steps := tracker.Steps()
	if len(steps) != 2 {
		t.Fatalf("undo steps = %+v", steps)
	}
	if steps[1].Rows[0]["content"] != "one" {
		t.Errorf("append pre-image should hold the prior content: %v", steps[1].Rows[0])
	}

	res = e.Execute(ctx, types.ToolCall{
		Name:      "delete_doc",
		Arguments: map[string]any{"doc_id": doc.ID},
	}, execCtx)
	if !res.Success {
		t.Fatalf("delete_doc: %s", res.Error)
	}
	res = e.Execute(ctx, types.ToolCall{
		Name:      "get_doc",
		Arguments: map[string]any{"doc_id": doc.ID},
	}, execCtx)
	if res.Success {
		t.Fatalf("deleted doc still readable")
	}
}

func TestClientResolutionOnProjectCreate(t *testing.T) {
	e, store, execCtx, _ := newTestEngine(t)
	ctx := context.Background()
	c, _ := store.CreateClient(ctx, types.Client{WorkspaceID: "ws_test", Name: "Globex Corp"})

	res := e.Execute(ctx, types.ToolCall{
		Name:      "create_project",
		Arguments: map[string]any{"name": "Globex rollout", "client": "globex"},
	}, execCtx)
	if !res.Success {
		t.Fatalf("create_project: %s", res.Error)
	}
	if res.Data.(types.Project).ClientID != c.ID {
		t.Errorf("client not linked: %+v", res.Data)
	}

	bad := e.Execute(ctx, types.ToolCall{
		Name:      "create_project",
		Arguments: map[string]any{"name": "Mystery", "client": "nonexistent"},
	}, execCtx)
	if bad.Success {
		t.Fatalf("unknown client must fail project creation")
	}
}
