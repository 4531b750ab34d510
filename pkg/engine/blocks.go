package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pythagonacci/trak/pkg/actions"
	"github.com/pythagonacci/trak/pkg/resolve"
	"github.com/pythagonacci/trak/pkg/types"
	"github.com/pythagonacci/trak/pkg/undo"
)

func (e *Engine) registerBlockHandlers() {
	e.register("create_block", handleCreateBlock)
	e.register("move_block", handleMoveBlock)
	e.register("delete_block", handleDeleteBlock)
	e.register("list_blocks", handleListBlocks)
	e.register("get_block", handleGetBlock)

	e.register("create_tab", handleCreateTab)
	e.register("rename_tab", handleRenameTab)
	e.register("list_tabs", handleListTabs)

	e.register("add_timeline_entry", handleAddTimelineEntry)
	e.register("update_timeline_entry", handleUpdateTimelineEntry)
	e.register("delete_timeline_entry", handleDeleteTimelineEntry)
	e.register("list_timeline_entries", handleListTimelineEntries)

	e.register("list_members", handleListMembers)
	e.register("search_members", handleSearchMembers)
	e.register("workspace_summary", handleWorkspaceSummary)
}

// Blocks

func (rc *runContext) currentTab(args map[string]any) (string, error) {
	if id := argString(args, "tab_id"); id != "" {
		return id, nil
	}
	if rc.exec.CurrentTabID != "" {
		return rc.exec.CurrentTabID, nil
	}
	return "", validationf("no tab in context; pass tab_id")
}

func blockPreImage(b types.Block) map[string]any {
	return map[string]any{
		"id":           b.ID,
		"workspace_id": b.WorkspaceID,
		"tab_id":       b.TabID,
		"type":         b.Type,
		"ref_id":       b.RefID,
		"title":        b.Title,
		"position":     b.Position,
	}
}

func handleCreateBlock(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	tabID, err := rc.currentTab(args)
	if err != nil {
		return nil, err
	}
	blockType := argString(args, "type")
	switch blockType {
	case "table", "doc", "timeline":
	default:
		return nil, validationf("unknown block type %q", blockType)
	}

	existing, err := rc.engine.store.ListBlocks(ctx, tabID)
	if err != nil {
		return nil, err
	}
	created, err := rc.engine.store.CreateBlock(ctx, types.Block{
		WorkspaceID: rc.exec.WorkspaceID,
		TabID:       tabID,
		Type:        blockType,
		RefID:       argString(args, "ref_id"),
		Title:       argString(args, "title"),
		Position:    len(existing),
	})
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.DeleteCreated("blocks", created.ID))
	return created, nil
}

func handleMoveBlock(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	id := argString(args, "block_id")
	if id == "" {
		id = rc.exec.ContextBlockID
	}
	if err := requireID("block_id", id); err != nil {
		return nil, err
	}
	before, err := rc.engine.store.GetBlock(ctx, id)
	if err != nil {
		return nil, err
	}
	pos, ok := argInt(args, "position")
	if !ok {
		pos = before.Position
	}
	moved, err := rc.engine.store.MoveBlock(ctx, id, argString(args, "tab_id"), pos)
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("blocks", blockPreImage(before)))
	return moved, nil
}

func handleDeleteBlock(ctx context.Context, rc *runContext) (any, error) {
	id := argString(rc.call.Arguments, "block_id")
	if err := requireID("block_id", id); err != nil {
		return nil, err
	}
	before, err := rc.engine.store.GetBlock(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rc.engine.store.DeleteBlock(ctx, id); err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("blocks", blockPreImage(before)))
	return map[string]any{"deleted": id}, nil
}

func handleListBlocks(ctx context.Context, rc *runContext) (any, error) {
	tabID, err := rc.currentTab(rc.call.Arguments)
	if err != nil {
		return nil, err
	}
	return rc.engine.store.ListBlocks(ctx, tabID)
}

func handleGetBlock(ctx context.Context, rc *runContext) (any, error) {
	id := argString(rc.call.Arguments, "block_id")
	if err := requireID("block_id", id); err != nil {
		return nil, err
	}
	return rc.engine.store.GetBlock(ctx, id)
}

// Tabs

func handleCreateTab(ctx context.Context, rc *runContext) (any, error) {
	created, err := rc.engine.store.CreateTab(ctx, types.Tab{
		WorkspaceID: rc.exec.WorkspaceID,
		Name:        argString(rc.call.Arguments, "name"),
	})
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.DeleteCreated("tabs", created.ID))
	return created, nil
}

func handleRenameTab(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	id := argString(args, "tab_id")
	if id == "" {
		ref := argString(args, "tab")
		if ref == "" {
			return nil, validationf("rename_tab: tab_id or tab is required")
		}
		res, err := resolve.Tab(ctx, rc.engine.store, rc.exec.WorkspaceID, ref)
		if err != nil {
			return nil, err
		}
		switch res.Kind {
		case resolve.KindResolved:
			id = res.ID
		case resolve.KindAmbiguous:
			return nil, &ambiguityError{input: ref, matches: res.Matches}
		default:
			return nil, validationf("no tab named %q", ref)
		}
	}

	var before *types.Tab
	if tabs, err := rc.engine.store.ListTabs(ctx, rc.exec.WorkspaceID); err == nil {
		for i := range tabs {
			if tabs[i].ID == id {
				before = &tabs[i]
				break
			}
		}
	}
	renamed, err := rc.engine.store.RenameTab(ctx, id, argString(args, "name"))
	if err != nil {
		return nil, err
	}
	if before != nil {
		rc.queueUndo(undo.UpsertPreImages("tabs", map[string]any{
			"id":           before.ID,
			"workspace_id": before.WorkspaceID,
			"name":         before.Name,
		}))
	} else {
		rc.skipUndo()
	}
	return renamed, nil
}

func handleListTabs(ctx context.Context, rc *runContext) (any, error) {
	return rc.engine.store.ListTabs(ctx, rc.exec.WorkspaceID)
}

// Timeline

func validISODate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func handleAddTimelineEntry(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	start := argString(args, "start_date")
	if !validISODate(start) {
		return nil, validationf("start_date must be YYYY-MM-DD, got %q", start)
	}
	end := argString(args, "end_date")
	if end != "" {
		if !validISODate(end) {
			return nil, validationf("end_date must be YYYY-MM-DD, got %q", end)
		}
		if end < start {
			return nil, validationf("end_date %s is before start_date %s", end, start)
		}
	}
	projectID, err := rc.resolveProjectRef(ctx, argString(args, "project_id"))
	if err != nil {
		return nil, err
	}
	created, err := rc.engine.store.CreateTimelineEntry(ctx, types.TimelineEntry{
		WorkspaceID: rc.exec.WorkspaceID,
		ProjectID:   projectID,
		Title:       argString(args, "title"),
		StartDate:   start,
		EndDate:     end,
		Color:       argString(args, "color"),
	})
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.DeleteCreated("timeline_entries", created.ID))
	return created, nil
}

func timelinePreImage(e types.TimelineEntry) map[string]any {
	return map[string]any{
		"id":           e.ID,
		"workspace_id": e.WorkspaceID,
		"project_id":   e.ProjectID,
		"title":        e.Title,
		"start_date":   e.StartDate,
		"end_date":     e.EndDate,
		"color":        e.Color,
	}
}

func (rc *runContext) timelineEntry(ctx context.Context, id string) (types.TimelineEntry, error) {
	entries, err := rc.engine.store.ListTimelineEntries(ctx, rc.exec.WorkspaceID)
	if err != nil {
		return types.TimelineEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return types.TimelineEntry{}, validationf("no timeline entry %s", id)
}

func handleUpdateTimelineEntry(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	id := argString(args, "entry_id")
	if err := requireID("entry_id", id); err != nil {
		return nil, err
	}
	patch := map[string]any{}
	for _, key := range []string{"title", "start_date", "end_date", "color"} {
		if _, present := args[key]; present {
			v := argString(args, key)
			if (key == "start_date" || key == "end_date") && v != "" && !validISODate(v) {
				return nil, validationf("%s must be YYYY-MM-DD, got %q", key, v)
			}
			patch[key] = v
		}
	}
	if len(patch) == 0 {
		return nil, validationf("update_timeline_entry: nothing to update")
	}
	before, err := rc.timelineEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := rc.engine.store.UpdateTimelineEntry(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("timeline_entries", timelinePreImage(before)))
	return updated, nil
}

func handleDeleteTimelineEntry(ctx context.Context, rc *runContext) (any, error) {
	id := argString(rc.call.Arguments, "entry_id")
	if err := requireID("entry_id", id); err != nil {
		return nil, err
	}
	before, err := rc.timelineEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rc.engine.store.DeleteTimelineEntry(ctx, id); err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("timeline_entries", timelinePreImage(before)))
	return map[string]any{"deleted": id}, nil
}

func handleListTimelineEntries(ctx context.Context, rc *runContext) (any, error) {
	return rc.engine.store.ListTimelineEntries(ctx, rc.exec.WorkspaceID)
}

// Workspace

func handleListMembers(ctx context.Context, rc *runContext) (any, error) {
	return rc.engine.store.SearchMembers(ctx, rc.exec.WorkspaceID, "")
}

func handleSearchMembers(ctx context.Context, rc *runContext) (any, error) {
	return rc.engine.store.SearchMembers(ctx, rc.exec.WorkspaceID, argString(rc.call.Arguments, "query"))
}

func handleWorkspaceSummary(ctx context.Context, rc *runContext) (any, error) {
	store := rc.engine.store
	ws := rc.exec.WorkspaceID

	var (
		projects []types.Project
		tasks    []types.Task
		tables   []types.Table
		docs     []types.Doc
		clients  []types.Client
		members  []types.Member
		tabs     []types.Tab
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { projects, err = store.ListProjects(gctx, ws); return })
	g.Go(func() (err error) { tasks, err = store.SearchTasks(gctx, ws, actions.TaskQuery{}); return })
	g.Go(func() (err error) { tables, err = store.ListTables(gctx, ws); return })
	g.Go(func() (err error) { docs, err = store.SearchDocs(gctx, ws, ""); return })
	g.Go(func() (err error) { clients, err = store.SearchClients(gctx, ws, ""); return })
	g.Go(func() (err error) { members, err = store.SearchMembers(gctx, ws, ""); return })
	g.Go(func() (err error) { tabs, err = store.ListTabs(gctx, ws); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	open, done := 0, 0
	for _, t := range tasks {
		if t.CompletedAt != nil || t.Status == "done" {
			done++
		} else {
			open++
		}
	}
	return map[string]any{
		"projects":   len(projects),
		"tasks":      len(tasks),
		"open_tasks": open,
		"done_tasks": done,
		"tables":     len(tables),
		"docs":       len(docs),
		"clients":    len(clients),
		"members":    len(members),
		"tabs":       len(tabs),
	}, nil
}
