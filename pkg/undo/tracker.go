// Package undo records best-effort reversible steps for executed tool calls.
// Pre-images are captured before a mutation touches existing rows; delete
// steps are derived from created ids after the fact. The journal is
// append-only: the engine writes steps and never reads them back.
package undo

import (
	"log/slog"
	"sync"

	"github.com/pythagonacci/trak/pkg/types"
)

// Tracker collects reversible steps for one logical user action (which may
// span several tool calls). It satisfies types.UndoSink.
type Tracker struct {
	mu      sync.Mutex
	steps   []types.UndoStep
	skipped []string
	log     *slog.Logger
}

var _ types.UndoSink = (*Tracker)(nil)

func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{log: logger}
}

// Queue appends steps to the journal. Steps must only be queued once the
// underlying call succeeded; they are never mutated afterwards.
func (t *Tracker) Queue(steps ...types.UndoStep) {
	if len(steps) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, steps...)
}

// Skip records that a tool ran without an identifiable reversible state,
// instead of queueing an empty, misleading entry.
func (t *Tracker) Skip(toolName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.skipped = append(t.skipped, toolName)
	t.log.Debug("undo capture skipped", "tool", toolName)
}

// Steps returns a copy of the queued steps in capture order.
func (t *Tracker) Steps() []types.UndoStep {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]types.UndoStep, len(t.steps))
	copy(out, t.steps)
	return out
}

// Drain returns the queued steps in reverse capture order, newest first, and
// clears the journal. Reversing means applying the drained steps front to
// back unwinds the calls in the opposite order they ran.
func (t *Tracker) Drain() []types.UndoStep {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]types.UndoStep, 0, len(t.steps))
	for i := len(t.steps) - 1; i >= 0; i-- {
		out = append(out, t.steps[i])
	}
	t.steps = nil
	t.skipped = nil
	return out
}

// Skipped returns the tool names that ran without capturable state.
func (t *Tracker) Skipped() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.skipped))
	copy(out, t.skipped)
	return out
}

// DeleteCreated builds the compensating step for a create: delete the new
// ids from the given storage table.
func DeleteCreated(table string, ids ...string) types.UndoStep {
	return types.UndoStep{Action: types.UndoDelete, Table: table, IDs: ids}
}

// UpsertPreImages builds the restoring step for an update or delete: upsert
// the captured pre-images back, keyed on id.
func UpsertPreImages(table string, rows ...map[string]any) types.UndoStep {
	return types.UndoStep{Action: types.UndoUpsert, Table: table, Rows: rows, OnConflict: "id"}
}

// RowPreImage snapshots a table row into an upsert payload.
func RowPreImage(r types.Row) map[string]any {
	cells := make(map[string]any, len(r.Cells))
	for k, v := range r.Cells {
		cells[k] = v
	}
	return map[string]any{
		"id":       r.ID,
		"table_id": r.TableID,
		"cells":    cells,
	}
}

// TaskPreImage snapshots a task into an upsert payload.
func TaskPreImage(t types.Task) map[string]any {
	return map[string]any{
		"id":            t.ID,
		"workspace_id":  t.WorkspaceID,
		"project_id":    t.ProjectID,
		"title":         t.Title,
		"description":   t.Description,
		"status":        t.Status,
		"priority":      t.Priority,
		"assignee_id":   t.AssigneeID,
		"assignee_name": t.AssigneeName,
		"due_date":      t.DueDate,
		"tags":          append([]string(nil), t.Tags...),
	}
}
