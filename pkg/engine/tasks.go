package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pythagonacci/trak/pkg/actions"
	"github.com/pythagonacci/trak/pkg/types"
	"github.com/pythagonacci/trak/pkg/undo"
)

func (e *Engine) registerTaskHandlers() {
	e.register("create_task", handleCreateTask)
	e.register("update_task", handleUpdateTask)
	e.register("get_task", handleGetTask)
	e.register("delete_task", handleDeleteTask)
	e.register("complete_task", handleCompleteTask)
	e.register("assign_task", handleAssignTask)
	e.register("unassign_task", handleUnassignTask)
	e.register("set_task_due_date", handleSetTaskDueDate)
	e.register("set_task_priority", handleSetTaskPriority)
	e.register("set_task_status", handleSetTaskStatus)
	e.register("set_task_description", handleSetTaskDescription)
	e.register("add_task_tag", handleAddTaskTag)
	e.register("remove_task_tag", handleRemoveTaskTag)
	e.register("move_task", handleMoveTask)
	e.register("duplicate_task", handleDuplicateTask)
	e.register("bulk_update_tasks", handleBulkUpdateTasks)
	e.register("list_tasks", handleListTasks)
	e.register("search_tasks", handleSearchTasks)
}

func handleCreateTask(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments

	assigneeInput, err := parseAssigneeArg(args["assignee"])
	if err != nil {
		return nil, err
	}

	// Assignee and project resolution are independent; issue them together
	// and await both.
	var assignee resolvedAssignee
	var projectID string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assignee, err = rc.resolveAssignee(gctx, assigneeInput)
		return err
	})
	g.Go(func() error {
		var err error
		projectID, err = rc.resolveProjectRef(gctx, argString(args, "project_id"))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	task := types.Task{
		WorkspaceID:  rc.exec.WorkspaceID,
		ProjectID:    projectID,
		Title:        argString(args, "title"),
		Description:  argString(args, "description"),
		Status:       argString(args, "status"),
		Priority:     argString(args, "priority"),
		DueDate:      argString(args, "due_date"),
		Tags:         argStringSlice(args, "tags"),
		AssigneeID:   assignee.ID,
		AssigneeName: assignee.Name,
	}

	var created types.Task
	data, err := rc.engine.runStrategy(ctx, "create_task", strategy{
		atomic: func(ctx context.Context) (any, error) {
			t, err := rc.engine.store.CreateTaskFull(ctx, task)
			if err != nil {
				return nil, err
			}
			created = t
			return t, nil
		},
		steps: []sagaStep{
			{
				name: "create",
				run: func(ctx context.Context) error {
					bare := task
					bare.AssigneeID, bare.AssigneeName, bare.Tags = "", "", nil
					t, err := rc.engine.store.CreateTask(ctx, bare)
					if err != nil {
						return err
					}
					created = t
					return nil
				},
				compensate: func(ctx context.Context) error {
					if created.ID == "" {
						return nil
					}
					return rc.engine.store.DeleteTask(ctx, created.ID)
				},
			},
			{
				name: "assign",
				run: func(ctx context.Context) error {
					if assignee.empty() {
						return nil
					}
					t, err := rc.engine.store.UpdateTask(ctx, created.ID, map[string]any{
						"assignee_id":   assignee.ID,
						"assignee_name": assignee.Name,
					})
					if err != nil {
						return err
					}
					created = t
					return nil
				},
			},
			{
				name: "tag",
				run: func(ctx context.Context) error {
					if len(task.Tags) == 0 {
						return nil
					}
					t, err := rc.engine.store.UpdateTask(ctx, created.ID, map[string]any{
						"add_tags": task.Tags,
					})
					if err != nil {
						return err
					}
					created = t
					return nil
				},
			},
		},
		result: func(ctx context.Context) (any, error) {
			return created, nil
		},
	})
	if err != nil {
		return nil, err
	}

	rc.queueUndo(undo.DeleteCreated("tasks", created.ID))
	if assignee.ID == "" && assignee.Name != "" {
		rc.hint = fmt.Sprintf("%q is not a workspace member; kept as an external assignee", assignee.Name)
	}
	return data, nil
}

// patchTask captures a pre-image, applies the patch and queues the undo
// step; the shared shape of every single-task mutation.
func patchTask(ctx context.Context, rc *runContext, taskID string, patch map[string]any) (any, error) {
	if err := requireID("task_id", taskID); err != nil {
		return nil, err
	}
	before, err := rc.engine.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	after, err := rc.engine.store.UpdateTask(ctx, taskID, patch)
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("tasks", undo.TaskPreImage(before)))
	return after, nil
}

func handleUpdateTask(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	patch := map[string]any{}
	for _, key := range []string{"title", "description", "status", "priority", "due_date"} {
		if _, present := args[key]; present {
			patch[key] = argString(args, key)
		}
	}
	if len(patch) == 0 {
		return nil, validationf("update_task: nothing to update")
	}
	return patchTask(ctx, rc, argString(args, "task_id"), patch)
}

func handleGetTask(ctx context.Context, rc *runContext) (any, error) {
	id := argString(rc.call.Arguments, "task_id")
	if err := requireID("task_id", id); err != nil {
		return nil, err
	}
	return rc.engine.store.GetTask(ctx, id)
}

func handleDeleteTask(ctx context.Context, rc *runContext) (any, error) {
	id := argString(rc.call.Arguments, "task_id")
	if err := requireID("task_id", id); err != nil {
		return nil, err
	}
	before, err := rc.engine.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rc.engine.store.DeleteTask(ctx, id); err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("tasks", undo.TaskPreImage(before)))
	return map[string]any{"deleted": id}, nil
}

func handleCompleteTask(ctx context.Context, rc *runContext) (any, error) {
	return patchTask(ctx, rc, argString(rc.call.Arguments, "task_id"), map[string]any{"status": "done"})
}

func handleAssignTask(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	input, err := parseAssigneeArg(args["assignee"])
	if err != nil {
		return nil, err
	}
	assignee, err := rc.resolveAssignee(ctx, input)
	if err != nil {
		return nil, err
	}
	if assignee.empty() {
		return nil, validationf("assign_task: assignee is required")
	}
	data, err := patchTask(ctx, rc, argString(args, "task_id"), map[string]any{
		"assignee_id":   assignee.ID,
		"assignee_name": assignee.Name,
	})
	if err != nil {
		return nil, err
	}
	if assignee.ID == "" {
		rc.hint = fmt.Sprintf("%q is not a workspace member; kept as an external assignee", assignee.Name)
	}
	return data, nil
}

func handleUnassignTask(ctx context.Context, rc *runContext) (any, error) {
	return patchTask(ctx, rc, argString(rc.call.Arguments, "task_id"), map[string]any{
		"assignee_id":   "",
		"assignee_name": "",
	})
}

func handleSetTaskDueDate(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	due := argString(args, "due_date")
	if due != "" {
		if _, err := time.Parse("2006-01-02", due); err != nil {
			return nil, validationf("set_task_due_date: %q is not a YYYY-MM-DD date", due)
		}
	}
	return patchTask(ctx, rc, argString(args, "task_id"), map[string]any{"due_date": due})
}

func handleSetTaskPriority(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	return patchTask(ctx, rc, argString(args, "task_id"), map[string]any{"priority": argString(args, "priority")})
}

func handleSetTaskStatus(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	return patchTask(ctx, rc, argString(args, "task_id"), map[string]any{"status": argString(args, "status")})
}

func handleSetTaskDescription(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	return patchTask(ctx, rc, argString(args, "task_id"), map[string]any{"description": argString(args, "description")})
}

func handleAddTaskTag(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	return patchTask(ctx, rc, argString(args, "task_id"), map[string]any{"add_tags": argStringSlice(args, "tags")})
}

func handleRemoveTaskTag(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	taskID := argString(args, "task_id")
	if err := requireID("task_id", taskID); err != nil {
		return nil, err
	}
	remove := argStringSlice(args, "tags")
	before, err := rc.engine.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	var kept []string
	for _, t := range before.Tags {
		drop := false
		for _, r := range remove {
			if strings.EqualFold(t, r) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, t)
		}
	}
	after, err := rc.engine.store.UpdateTask(ctx, taskID, map[string]any{"tags": kept})
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("tasks", undo.TaskPreImage(before)))
	return after, nil
}

func handleMoveTask(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	dest := argString(args, "project_id")
	if dest == "" {
		dest = argString(args, "project")
	}
	if dest == "" {
		return nil, validationf("move_task: destination project is required")
	}
	projectID, err := rc.resolveProjectRef(ctx, dest)
	if err != nil {
		return nil, err
	}
	return patchTask(ctx, rc, argString(args, "task_id"), map[string]any{"project_id": projectID})
}

func handleDuplicateTask(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	id := argString(args, "task_id")
	if err := requireID("task_id", id); err != nil {
		return nil, err
	}
	src, err := rc.engine.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	copyTask := src
	copyTask.ID = ""
	copyTask.CreatedAt = time.Time{}
	copyTask.CompletedAt = nil
	copyTask.Tags = append([]string(nil), src.Tags...)
	if title := argString(args, "title"); title != "" {
		copyTask.Title = title
	}
	if dest := argString(args, "project_id"); dest != "" {
		projectID, err := rc.resolveProjectRef(ctx, dest)
		if err != nil {
			return nil, err
		}
		copyTask.ProjectID = projectID
	}
	created, err := rc.engine.store.CreateTask(ctx, copyTask)
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.DeleteCreated("tasks", created.ID))
	return created, nil
}

func handleBulkUpdateTasks(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments

	q := actions.TaskQuery{
		ProjectID: argString(args, "project_id"),
		Status:    argString(args, "status"),
	}
	if input, err := parseAssigneeArg(args["assignee"]); err != nil {
		return nil, err
	} else if input != "" {
		a, err := rc.resolveAssignee(ctx, input)
		if err != nil {
			return nil, err
		}
		if a.ID == "" {
			return nil, validationf("bulk_update_tasks: %q is not a workspace member", input)
		}
		q.AssigneeID = a.ID
	}

	set := argMap(args, "set")
	patch := map[string]any{}
	for _, key := range []string{"title", "description", "status", "priority", "due_date"} {
		if v, present := set[key]; present {
			patch[key], _ = v.(string)
		}
	}
	// A shared assignee in the patch resolves once and applies to every
	// matched task.
	if raw, present := set["assignee"]; present {
		input, err := parseAssigneeArg(raw)
		if err != nil {
			return nil, err
		}
		a, err := rc.resolveAssignee(ctx, input)
		if err != nil {
			return nil, err
		}
		patch["assignee_id"] = a.ID
		patch["assignee_name"] = a.Name
	}
	if len(patch) == 0 {
		return nil, validationf("bulk_update_tasks: set carries nothing to update")
	}

	matched, err := rc.engine.store.SearchTasks(ctx, rc.exec.WorkspaceID, q)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		rc.skipUndo()
		return map[string]any{"updated": 0}, nil
	}

	preImages := make([]map[string]any, 0, len(matched))
	updated := make([]types.Task, 0, len(matched))
	for _, t := range matched {
		preImages = append(preImages, undo.TaskPreImage(t))
		after, err := rc.engine.store.UpdateTask(ctx, t.ID, patch)
		if err != nil {
			// Partial failure: keep what succeeded reversible.
			rc.queueUndo(undo.UpsertPreImages("tasks", preImages[:len(updated)]...))
			return nil, err
		}
		updated = append(updated, after)
	}
	rc.queueUndo(undo.UpsertPreImages("tasks", preImages...))
	return map[string]any{"updated": len(updated), "tasks": updated}, nil
}

func handleListTasks(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	q := actions.TaskQuery{
		ProjectID: argString(args, "project_id"),
		Status:    argString(args, "status"),
	}
	if input, err := parseAssigneeArg(args["assignee"]); err != nil {
		return nil, err
	} else if input != "" {
		a, err := rc.resolveAssignee(ctx, input)
		if err != nil {
			return nil, err
		}
		q.AssigneeID = a.ID
	}
	return rc.engine.store.SearchTasks(ctx, rc.exec.WorkspaceID, q)
}

func handleSearchTasks(ctx context.Context, rc *runContext) (any, error) {
	return rc.engine.store.SearchTasks(ctx, rc.exec.WorkspaceID, actions.TaskQuery{
		Text: argString(rc.call.Arguments, "query"),
	})
}
