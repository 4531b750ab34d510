package resolve

import (
	"context"

	"github.com/pythagonacci/trak/pkg/actions"
	"github.com/pythagonacci/trak/pkg/types"
)

// Containers fills in ambient container defaults for operations that omit
// them. It memoizes the "default table for this tab" lookup within a single
// execution run; the memo is scoped to this value and never shared across
// calls.
type Containers struct {
	store actions.Store
	memo  map[string]string // tab id -> table id resolved during this run
}

func NewContainers(store actions.Store) *Containers {
	return &Containers{store: store, memo: make(map[string]string)}
}

// DefaultTable resolves the table an operation should act on when no table
// id was given. Order: explicit context table, the current tab's first table
// block, any table in the workspace, then a freshly created one. created
// reports whether a new table had to be made.
func (c *Containers) DefaultTable(ctx context.Context, execCtx types.ExecutionContext) (table types.Table, created bool, err error) {
	if execCtx.ContextTableID != "" {
		t, err := c.store.GetTable(ctx, execCtx.ContextTableID)
		return t, false, err
	}

	if execCtx.CurrentTabID != "" {
		if id, ok := c.memo[execCtx.CurrentTabID]; ok {
			t, err := c.store.GetTable(ctx, id)
			return t, false, err
		}
		blocks, err := c.store.ListBlocks(ctx, execCtx.CurrentTabID)
		if err == nil {
			for _, b := range blocks {
				if b.Type != "table" || b.RefID == "" {
					continue
				}
				t, err := c.store.GetTable(ctx, b.RefID)
				if err != nil {
					continue
				}
				c.memo[execCtx.CurrentTabID] = t.ID
				return t, false, nil
			}
		}
		// Current-tab lookup failed; fall through to the workspace-wide scan.
	}

	tables, err := c.store.ListTables(ctx, execCtx.WorkspaceID)
	if err != nil {
		return types.Table{}, false, err
	}
	if len(tables) > 0 {
		return tables[0], false, nil
	}

	t, err := c.store.CreateTable(ctx, execCtx.WorkspaceID, "Untitled table")
	if err != nil {
		return types.Table{}, false, err
	}
	if execCtx.CurrentTabID != "" {
		if _, err := c.store.CreateBlock(ctx, types.Block{
			WorkspaceID: execCtx.WorkspaceID,
			TabID:       execCtx.CurrentTabID,
			Type:        "table",
			RefID:       t.ID,
			Title:       t.Name,
		}); err == nil {
			c.memo[execCtx.CurrentTabID] = t.ID
		}
	}
	return t, true, nil
}

// DefaultProject resolves the project an operation should act on when no
// project id was given: the context project, else any project, else nothing
// (tasks may live outside projects).
func (c *Containers) DefaultProject(ctx context.Context, execCtx types.ExecutionContext) (string, error) {
	if execCtx.CurrentProjectID != "" {
		return execCtx.CurrentProjectID, nil
	}
	projects, err := c.store.ListProjects(ctx, execCtx.WorkspaceID)
	if err != nil {
		return "", err
	}
	if len(projects) > 0 {
		return projects[0].ID, nil
	}
	return "", nil
}
