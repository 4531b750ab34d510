package undo

import (
	"testing"

	"github.com/pythagonacci/trak/pkg/types"
)

func TestTrackerQueueAndDrain(t *testing.T) {
	tr := NewTracker(nil)
	tr.Queue(DeleteCreated("tasks", "tsk_1"))
	tr.Queue(UpsertPreImages("rows", map[string]any{"id": "row_1"}))

	steps := tr.Steps()
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].Action != types.UndoDelete || steps[0].Table != "tasks" {
		t.Fatalf("first step wrong: %+v", steps[0])
	}
	if steps[1].Action != types.UndoUpsert || steps[1].OnConflict != "id" {
		t.Fatalf("second step wrong: %+v", steps[1])
	}

	drained := tr.Drain()
	if len(drained) != 2 {
		t.Fatalf("drain returned %d steps", len(drained))
	}
	if drained[0].Table != "rows" || drained[1].Table != "tasks" {
		t.Fatalf("drain must reverse capture order: %+v", drained)
	}
	if len(tr.Steps()) != 0 {
		t.Fatalf("journal not cleared after drain")
	}
}

func TestTrackerSkip(t *testing.T) {
	tr := NewTracker(nil)
	tr.Skip("list_tasks")
	tr.Queue() // no-op

	if len(tr.Steps()) != 0 {
		t.Fatalf("empty queue must not record steps")
	}
	skipped := tr.Skipped()
	if len(skipped) != 1 || skipped[0] != "list_tasks" {
		t.Fatalf("skip not recorded: %v", skipped)
	}
}

func TestPreImageHelpers(t *testing.T) {
	row := types.Row{ID: "row_1", TableID: "tbl_1", Cells: map[string]any{"fld_1": "x"}}
	pre := RowPreImage(row)
	if pre["id"] != "row_1" || pre["table_id"] != "tbl_1" {
		t.Fatalf("row pre-image wrong: %v", pre)
	}
	// The snapshot must not alias the live cell map.
	row.Cells["fld_1"] = "mutated"
	if pre["cells"].(map[string]any)["fld_1"] != "x" {
		t.Fatalf("pre-image aliased live cells")
	}

	task := types.Task{ID: "tsk_1", Title: "T", Tags: []string{"a"}}
	tp := TaskPreImage(task)
	if tp["id"] != "tsk_1" || tp["title"] != "T" {
		t.Fatalf("task pre-image wrong: %v", tp)
	}
}
