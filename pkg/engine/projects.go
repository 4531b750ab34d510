package engine

import (
	"context"

	"github.com/pythagonacci/trak/pkg/types"
	"github.com/pythagonacci/trak/pkg/undo"
)

func (e *Engine) registerProjectHandlers() {
	e.register("create_project", handleCreateProject)
	e.register("update_project", handleUpdateProject)
	e.register("rename_project", handleRenameProject)
	e.register("get_project", handleGetProject)
	e.register("delete_project", handleDeleteProject)
	e.register("archive_project", handleArchiveProject)
	e.register("unarchive_project", handleUnarchiveProject)
	e.register("list_projects", handleListProjects)
	e.register("link_client", handleLinkClient)

	e.register("create_client", handleCreateClient)
	e.register("update_client", handleUpdateClient)
	e.register("delete_client", handleDeleteClient)
	e.register("get_client", handleGetClient)
	e.register("list_clients", handleListClients)
	e.register("search_clients", handleSearchClients)

	e.register("create_doc", handleCreateDoc)
	e.register("update_doc", handleUpdateDoc)
	e.register("rename_doc", handleRenameDoc)
	e.register("append_doc", handleAppendDoc)
	e.register("delete_doc", handleDeleteDoc)
	e.register("get_doc", handleGetDoc)
	e.register("list_docs", handleListDocs)
	e.register("search_docs", handleSearchDocs)
}

// Projects

func handleCreateProject(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	p := types.Project{
		WorkspaceID: rc.exec.WorkspaceID,
		Name:        argString(args, "name"),
		Description: argString(args, "description"),
	}
	if client := argString(args, "client"); client != "" {
		id, err := rc.resolveClientRef(ctx, client)
		if err != nil {
			return nil, err
		}
		p.ClientID = id
	}
	created, err := rc.engine.store.CreateProject(ctx, p)
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.DeleteCreated("projects", created.ID))
	return created, nil
}

func projectPreImage(p types.Project) map[string]any {
	return map[string]any{
		"id":           p.ID,
		"workspace_id": p.WorkspaceID,
		"name":         p.Name,
		"description":  p.Description,
		"client_id":    p.ClientID,
		"archived":     p.Archived,
	}
}

func patchProject(ctx context.Context, rc *runContext, id string, patch map[string]any) (any, error) {
	if err := requireID("project_id", id); err != nil {
		return nil, err
	}
	before, err := rc.engine.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	after, err := rc.engine.store.UpdateProject(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("projects", projectPreImage(before)))
	return after, nil
}

func handleUpdateProject(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	patch := map[string]any{}
	for _, key := range []string{"name", "description"} {
		if _, present := args[key]; present {
			patch[key] = argString(args, key)
		}
	}
	if len(patch) == 0 {
		return nil, validationf("update_project: nothing to update")
	}
	return patchProject(ctx, rc, argString(args, "project_id"), patch)
}

func handleRenameProject(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	return patchProject(ctx, rc, argString(args, "project_id"), map[string]any{"name": argString(args, "name")})
}

func handleGetProject(ctx context.Context, rc *runContext) (any, error) {
	id := argString(rc.call.Arguments, "project_id")
	if err := requireID("project_id", id); err != nil {
		return nil, err
	}
	return rc.engine.store.GetProject(ctx, id)
}

func handleDeleteProject(ctx context.Context, rc *runContext) (any, error) {
	id := argString(rc.call.Arguments, "project_id")
	if err := requireID("project_id", id); err != nil {
		return nil, err
	}
	before, err := rc.engine.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rc.engine.store.DeleteProject(ctx, id); err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("projects", projectPreImage(before)))
	return map[string]any{"deleted": id}, nil
}

func handleArchiveProject(ctx context.Context, rc *runContext) (any, error) {
	return patchProject(ctx, rc, argString(rc.call.Arguments, "project_id"), map[string]any{"archived": true})
}

func handleUnarchiveProject(ctx context.Context, rc *runContext) (any, error) {
	return patchProject(ctx, rc, argString(rc.call.Arguments, "project_id"), map[string]any{"archived": false})
}

func handleListProjects(ctx context.Context, rc *runContext) (any, error) {
	projects, err := rc.engine.store.ListProjects(ctx, rc.exec.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if argBool(rc.call.Arguments, "include_archived") {
		return projects, nil
	}
	var active []types.Project
	for _, p := range projects {
		if !p.Archived {
			active = append(active, p)
		}
	}
	return active, nil
}

func handleLinkClient(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	clientID, err := rc.resolveClientRef(ctx, argString(args, "client"))
	if err != nil {
		return nil, err
	}
	return patchProject(ctx, rc, argString(args, "project_id"), map[string]any{"client_id": clientID})
}

// Clients

func handleCreateClient(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	created, err := rc.engine.store.CreateClient(ctx, types.Client{
		WorkspaceID: rc.exec.WorkspaceID,
		Name:        argString(args, "name"),
		Email:       argString(args, "email"),
		Company:     argString(args, "company"),
	})
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.DeleteCreated("clients", created.ID))
	return created, nil
}

func handleUpdateClient(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	id := argString(args, "client_id")
	if err := requireID("client_id", id); err != nil {
		return nil, err
	}
	patch := map[string]any{}
	for _, key := range []string{"name", "email", "company"} {
		if _, present := args[key]; present {
			patch[key] = argString(args, key)
		}
	}
	if len(patch) == 0 {
		return nil, validationf("update_client: nothing to update")
	}
	// Clients have no single-get primitive; resolve the pre-image from
	// search by id.
	var before *types.Client
	all, err := rc.engine.store.SearchClients(ctx, rc.exec.WorkspaceID, "")
	if err == nil {
		for i := range all {
			if all[i].ID == id {
				before = &all[i]
				break
			}
		}
	}
	after, err := rc.engine.store.UpdateClient(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if before != nil {
		rc.queueUndo(undo.UpsertPreImages("clients", map[string]any{
			"id":           before.ID,
			"workspace_id": before.WorkspaceID,
			"name":         before.Name,
			"email":        before.Email,
			"company":      before.Company,
		}))
	} else {
		rc.skipUndo()
	}
	return after, nil
}

func handleDeleteClient(ctx context.Context, rc *runContext) (any, error) {
	id := argString(rc.call.Arguments, "client_id")
	if err := requireID("client_id", id); err != nil {
		return nil, err
	}
	var before *types.Client
	all, err := rc.engine.store.SearchClients(ctx, rc.exec.WorkspaceID, "")
	if err == nil {
		for i := range all {
			if all[i].ID == id {
				before = &all[i]
				break
			}
		}
	}
	if err := rc.engine.store.DeleteClient(ctx, id); err != nil {
		return nil, err
	}
	if before != nil {
		rc.queueUndo(undo.UpsertPreImages("clients", map[string]any{
			"id":           before.ID,
			"workspace_id": before.WorkspaceID,
			"name":         before.Name,
			"email":        before.Email,
			"company":      before.Company,
		}))
	} else {
		rc.skipUndo()
	}
	return map[string]any{"deleted": id}, nil
}

func handleGetClient(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	ref := argString(args, "client_id")
	if ref == "" {
		ref = argString(args, "client")
	}
	if ref == "" {
		return nil, validationf("get_client: client_id or client is required")
	}
	id, err := rc.resolveClientRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	all, err := rc.engine.store.SearchClients(ctx, rc.exec.WorkspaceID, "")
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, validationf("no client %s", id)
}

func handleListClients(ctx context.Context, rc *runContext) (any, error) {
	return rc.engine.store.SearchClients(ctx, rc.exec.WorkspaceID, "")
}

func handleSearchClients(ctx context.Context, rc *runContext) (any, error) {
	return rc.engine.store.SearchClients(ctx, rc.exec.WorkspaceID, argString(rc.call.Arguments, "query"))
}

// Docs

func handleCreateDoc(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	projectID, err := rc.resolveProjectRef(ctx, argString(args, "project_id"))
	if err != nil {
		return nil, err
	}
	created, err := rc.engine.store.CreateDoc(ctx, types.Doc{
		WorkspaceID: rc.exec.WorkspaceID,
		ProjectID:   projectID,
		Title:       argString(args, "title"),
		Content:     argString(args, "content"),
	})
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.DeleteCreated("docs", created.ID))
	return created, nil
}

func docPreImage(d types.Doc) map[string]any {
	return map[string]any{
		"id":           d.ID,
		"workspace_id": d.WorkspaceID,
		"project_id":   d.ProjectID,
		"title":        d.Title,
		"content":      d.Content,
	}
}

func patchDoc(ctx context.Context, rc *runContext, id string, patch map[string]any) (any, error) {
	if err := requireID("doc_id", id); err != nil {
		return nil, err
	}
	before, err := rc.engine.store.GetDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	after, err := rc.engine.store.UpdateDoc(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("docs", docPreImage(before)))
	return after, nil
}

func handleUpdateDoc(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	patch := map[string]any{}
	for _, key := range []string{"title", "content"} {
		if _, present := args[key]; present {
			patch[key] = argString(args, key)
		}
	}
	if len(patch) == 0 {
		return nil, validationf("update_doc: nothing to update")
	}
	return patchDoc(ctx, rc, argString(args, "doc_id"), patch)
}

func handleRenameDoc(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	return patchDoc(ctx, rc, argString(args, "doc_id"), map[string]any{"title": argString(args, "title")})
}

func handleAppendDoc(ctx context.Context, rc *runContext) (any, error) {
	args := rc.call.Arguments
	return patchDoc(ctx, rc, argString(args, "doc_id"), map[string]any{"append_content": argString(args, "content")})
}

func handleDeleteDoc(ctx context.Context, rc *runContext) (any, error) {
	id := argString(rc.call.Arguments, "doc_id")
	if err := requireID("doc_id", id); err != nil {
		return nil, err
	}
	before, err := rc.engine.store.GetDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rc.engine.store.DeleteDoc(ctx, id); err != nil {
		return nil, err
	}
	rc.queueUndo(undo.UpsertPreImages("docs", docPreImage(before)))
	return map[string]any{"deleted": id}, nil
}

func handleGetDoc(ctx context.Context, rc *runContext) (any, error) {
	id := argString(rc.call.Arguments, "doc_id")
	if err := requireID("doc_id", id); err != nil {
		return nil, err
	}
	return rc.engine.store.GetDoc(ctx, id)
}

func handleListDocs(ctx context.Context, rc *runContext) (any, error) {
	return rc.engine.store.SearchDocs(ctx, rc.exec.WorkspaceID, "")
}

func handleSearchDocs(ctx context.Context, rc *runContext) (any, error) {
	return rc.engine.store.SearchDocs(ctx, rc.exec.WorkspaceID, argString(rc.call.Arguments, "query"))
}
