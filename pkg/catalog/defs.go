package catalog

// Schema fragment helpers. The builtin list is long; raw map literals for
// every property would triple it.

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func num(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

func boolean(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}

func enum(desc string, values ...string) map[string]any {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return map[string]any{"type": "string", "description": desc, "enum": vals}
}

func arr(desc string, items map[string]any) map[string]any {
	return map[string]any{"type": "array", "description": desc, "items": items}
}

func obj(desc string, props map[string]any) map[string]any {
	return map[string]any{"type": "object", "description": desc, "properties": props}
}

func freeObj(desc string) map[string]any {
	return map[string]any{"type": "object", "description": desc}
}

// assigneeProp is shared by every operation that names a person: either a
// member id or free text to resolve.
func assigneeProp() map[string]any {
	return str("Assignee: a member id, or a name/email to resolve against workspace members")
}

// filterProp is the shared shape for field-name-keyed row filters.
func filterProp() map[string]any {
	return freeObj("Filter keyed by field name. Values are matched with eq by default, " +
		`or {"op": "eq"|"gte"|"lte"|"contains", "value": ...}. Numeric values accept "10k"/"2.5m"/"1b" suffixes.`)
}

func fieldSpecProp() map[string]any {
	return obj("Field definition", map[string]any{
		"name":    str("Field name"),
		"type":    enum("Field type; inferred from sample values when omitted", "text", "number", "date", "select", "multi_select", "status", "priority", "email", "url", "phone", "person"),
		"options": arr("Option labels for select-like fields; inferred from row values when omitted", str("Option label")),
	})
}

func builtinSpecs() []Spec {
	var specs []Spec

	// Tasks
	specs = append(specs,
		Spec{
			Name:        "create_task",
			Description: "Create a task, optionally assigning it and tagging it in the same operation",
			Category:    "task",
			Atomic:      true,
			Parameters: map[string]any{
				"title":       str("Task title"),
				"description": str("Task description"),
				"project_id":  str("Project to create the task in; defaults to the current project"),
				"assignee":    assigneeProp(),
				"status":      str("Initial status"),
				"priority":    enum("Priority level", "urgent", "high", "medium", "low"),
				"due_date":    str("Due date, YYYY-MM-DD"),
				"tags":        arr("Tags to attach", str("Tag")),
			},
			Required: []string{"title"},
		},
		Spec{
			Name:        "update_task",
			Description: "Update fields of an existing task",
			Category:    "task",
			Parameters: map[string]any{
				"task_id":     str("Task id"),
				"title":       str("New title"),
				"description": str("New description"),
				"status":      str("New status"),
				"priority":    enum("New priority", "urgent", "high", "medium", "low"),
				"due_date":    str("New due date, YYYY-MM-DD"),
			},
			Required: []string{"task_id"},
		},
		Spec{
			Name:        "get_task",
			Description: "Fetch a single task by id",
			Category:    "task",
			Parameters:  map[string]any{"task_id": str("Task id")},
			Required:    []string{"task_id"},
		},
		Spec{
			Name:        "delete_task",
			Description: "Delete a task",
			Category:    "task",
			Parameters:  map[string]any{"task_id": str("Task id")},
			Required:    []string{"task_id"},
		},
		Spec{
			Name:        "complete_task",
			Description: "Mark a task done",
			Category:    "task",
			Parameters:  map[string]any{"task_id": str("Task id")},
			Required:    []string{"task_id"},
		},
		Spec{
			Name:        "assign_task",
			Description: "Assign a task to a person by id, name or email",
			Category:    "task",
			Parameters: map[string]any{
				"task_id":  str("Task id"),
				"assignee": assigneeProp(),
			},
			Required: []string{"task_id", "assignee"},
		},
		Spec{
			Name:        "unassign_task",
			Description: "Remove a task's assignee",
			Category:    "task",
			Parameters:  map[string]any{"task_id": str("Task id")},
			Required:    []string{"task_id"},
		},
		Spec{
			Name:        "set_task_due_date",
			Description: "Set or clear a task's due date",
			Category:    "task",
			Parameters: map[string]any{
				"task_id":  str("Task id"),
				"due_date": str("Due date, YYYY-MM-DD; empty clears it"),
			},
			Required: []string{"task_id"},
		},
		Spec{
			Name:        "set_task_priority",
			Description: "Set a task's priority",
			Category:    "task",
			Parameters: map[string]any{
				"task_id":  str("Task id"),
				"priority": enum("Priority level", "urgent", "high", "medium", "low"),
			},
			Required: []string{"task_id", "priority"},
		},
		Spec{
			Name:        "set_task_status",
			Description: "Set a task's status",
			Category:    "task",
			Parameters: map[string]any{
				"task_id": str("Task id"),
				"status":  str("New status"),
			},
			Required: []string{"task_id", "status"},
		},
		Spec{
			Name:        "add_task_tag",
			Description: "Attach tags to a task",
			Category:    "task",
			Parameters: map[string]any{
				"task_id": str("Task id"),
				"tags":    arr("Tags to attach", str("Tag")),
			},
			Required: []string{"task_id", "tags"},
		},
		Spec{
			Name:        "remove_task_tag",
			Description: "Remove tags from a task",
			Category:    "task",
			Parameters: map[string]any{
				"task_id": str("Task id"),
				"tags":    arr("Tags to remove", str("Tag")),
			},
			Required: []string{"task_id", "tags"},
		},
		Spec{
			Name:        "move_task",
			Description: "Move a task into a different project",
			Category:    "task",
			Parameters: map[string]any{
				"task_id":    str("Task id"),
				"project_id": str("Destination project id"),
				"project":    str("Destination project name, resolved when project_id is omitted"),
			},
			Required: []string{"task_id"},
		},
		Spec{
			Name:        "bulk_update_tasks",
			Description: "Update every task matching a filter, sharing one resolved assignee across all of them",
			Category:    "task",
			Parameters: map[string]any{
				"project_id": str("Limit to one project"),
				"status":     str("Limit to tasks currently in this status"),
				"assignee":   assigneeProp(),
				"set":        freeObj("Patch applied to each matched task (title/status/priority/due_date/assignee)"),
			},
			Required: []string{"set"},
		},
		Spec{
			Name:        "list_tasks",
			Description: "List tasks, optionally narrowed by project, status or assignee",
			Category:    "task",
			Parameters: map[string]any{
				"project_id": str("Limit to one project"),
				"status":     str("Limit to one status"),
				"assignee":   assigneeProp(),
			},
		},
		Spec{
			Name:        "search_tasks",
			Description: "Search tasks by free text over title and description",
			Category:    "task",
			Parameters:  map[string]any{"query": str("Search text")},
			Required:    []string{"query"},
		},
	)

	// Projects
	specs = append(specs,
		Spec{
			Name:        "create_project",
			Description: "Create a project, optionally linked to a client",
			Category:    "project",
			Parameters: map[string]any{
				"name":        str("Project name"),
				"description": str("Project description"),
				"client":      str("Client: an id, or a name to resolve"),
			},
			Required: []string{"name"},
		},
		Spec{
			Name:        "update_project",
			Description: "Update a project's name or description",
			Category:    "project",
			Parameters: map[string]any{
				"project_id":  str("Project id"),
				"name":        str("New name"),
				"description": str("New description"),
			},
			Required: []string{"project_id"},
		},
		Spec{
			Name:        "get_project",
			Description: "Fetch a single project by id",
			Category:    "project",
			Parameters:  map[string]any{"project_id": str("Project id")},
			Required:    []string{"project_id"},
		},
		Spec{
			Name:        "delete_project",
			Description: "Delete a project",
			Category:    "project",
			Parameters:  map[string]any{"project_id": str("Project id")},
			Required:    []string{"project_id"},
		},
		Spec{
			Name:        "archive_project",
			Description: "Archive a project",
			Category:    "project",
			Parameters:  map[string]any{"project_id": str("Project id")},
			Required:    []string{"project_id"},
		},
		Spec{
			Name:        "unarchive_project",
			Description: "Restore an archived project",
			Category:    "project",
			Parameters:  map[string]any{"project_id": str("Project id")},
			Required:    []string{"project_id"},
		},
		Spec{
			Name:        "list_projects",
			Description: "List the workspace's projects",
			Category:    "project",
			Parameters:  map[string]any{"include_archived": boolean("Include archived projects")},
		},
		Spec{
			Name:        "link_client",
			Description: "Link a project to a client, resolving the client by name when needed",
			Category:    "project",
			Parameters: map[string]any{
				"project_id": str("Project id"),
				"client":     str("Client: an id, or a name to resolve"),
			},
			Required: []string{"project_id", "client"},
		},
	)

	// Tables
	specs = append(specs,
		Spec{
			Name:        "create_table",
			Description: "Create a table with fields and initial rows, attached to a tab as a block",
			Category:    "table",
			Atomic:      true,
			Parameters: map[string]any{
				"name":   str("Table name"),
				"tab_id": str("Tab to attach the table block to; defaults to the current tab"),
				"fields": arr("Field definitions; types and options are inferred from rows when omitted", fieldSpecProp()),
				"rows":   arr("Initial rows keyed by field name", freeObj("Row keyed by field name")),
			},
			Required: []string{"name"},
		},
		Spec{
			Name:        "rename_table",
			Description: "Rename a table",
			Category:    "table",
			Parameters: map[string]any{
				"table_id": str("Table id; defaults to the table in context"),
				"name":     str("New name"),
			},
			Required: []string{"name"},
		},
		Spec{
			Name:        "delete_table",
			Description: "Delete a table and its rows",
			Category:    "table",
			Parameters:  map[string]any{"table_id": str("Table id")},
			Required:    []string{"table_id"},
		},
		Spec{
			Name:        "get_table",
			Description: "Fetch a table's schema by id or name",
			Category:    "table",
			Parameters: map[string]any{
				"table_id": str("Table id"),
				"table":    str("Table name, resolved when table_id is omitted"),
			},
		},
		Spec{
			Name:        "list_tables",
			Description: "List the workspace's tables",
			Category:    "table",
			Parameters:  map[string]any{},
		},
	)

	// Fields
	specs = append(specs,
		Spec{
			Name:        "create_field",
			Description: "Add a field to a table; on a brand-new table a placeholder column is repurposed instead",
			Category:    "field",
			Parameters: map[string]any{
				"table_id": str("Table id; defaults to the table in context"),
				"name":     str("Field name"),
				"type":     enum("Field type; inferred from samples when omitted", "text", "number", "date", "select", "multi_select", "status", "priority", "email", "url", "phone", "person"),
				"options":  arr("Option labels for select-like fields", str("Option label")),
				"samples":  arr("Sample values used to infer type and options", freeObj("Sample value")),
			},
			Required: []string{"name"},
		},
		Spec{
			Name:        "update_field",
			Description: "Change a field's name, type or options",
			Category:    "field",
			Parameters: map[string]any{
				"table_id": str("Table id; defaults to the table in context"),
				"field":    str("Field id or name"),
				"name":     str("New name"),
				"type":     enum("New type", "text", "number", "date", "select", "multi_select", "status", "priority", "email", "url", "phone", "person"),
				"options":  arr("Replacement option labels", str("Option label")),
			},
			Required: []string{"field"},
		},
		Spec{
			Name:        "delete_field",
			Description: "Delete a field from a table",
			Category:    "field",
			Parameters: map[string]any{
				"table_id": str("Table id; defaults to the table in context"),
				"field":    str("Field id or name"),
			},
			Required: []string{"field"},
		},
		Spec{
			Name:        "add_field_option",
			Description: "Append options to a select-like field",
			Category:    "field",
			Parameters: map[string]any{
				"table_id": str("Table id; defaults to the table in context"),
				"field":    str("Field id or name"),
				"options":  arr("Option labels to append", str("Option label")),
			},
			Required: []string{"field", "options"},
		},
	)

	// Rows
	specs = append(specs,
		Spec{
			Name:        "insert_rows",
			Description: "Insert rows keyed by field name; unknown keys are reported, duplicate inserts are skipped",
			Category:    "row",
			Parameters: map[string]any{
				"table_id": str("Table id; defaults to the table in context"),
				"table":    str("Table name, resolved when table_id is omitted"),
				"rows":     arr("Rows keyed by field name", freeObj("Row keyed by field name")),
			},
			Required: []string{"rows"},
		},
		Spec{
			Name:        "update_rows",
			Description: "Update every row matching a filter",
			Category:    "row",
			Parameters: map[string]any{
				"table_id": str("Table id; defaults to the table in context"),
				"filter":   filterProp(),
				"set":      freeObj("Cell values to write, keyed by field name"),
			},
			Required: []string{"set"},
		},
		Spec{
			Name:        "update_row",
			Description: "Update a single row by id",
			Category:    "row",
			Parameters: map[string]any{
				"table_id": str("Table id; defaults to the table in context"),
				"row_id":   str("Row id"),
				"set":      freeObj("Cell values to write, keyed by field name"),
			},
			Required: []string{"row_id", "set"},
		},
		Spec{
			Name:        "delete_rows",
			Description: "Delete rows by id or by filter",
			Category:    "row",
			Parameters: map[string]any{
				"table_id": str("Table id; defaults to the table in context"),
				"row_ids":  arr("Row ids to delete", str("Row id")),
				"filter":   filterProp(),
			},
		},
		Spec{
			Name:        "find_rows",
			Description: "Return rows matching a filter",
			Category:    "row",
			Parameters: map[string]any{
				"table_id": str("Table id; defaults to the table in context"),
				"table":    str("Table name, resolved when table_id is omitted"),
				"filter":   filterProp(),
				"limit":    num("Maximum rows to return"),
			},
		},
		Spec{
			Name:        "count_rows",
			Description: "Count rows matching a filter",
			Category:    "row",
			Parameters: map[string]any{
				"table_id": str("Table id; defaults to the table in context"),
				"filter":   filterProp(),
			},
		},
	)

	// Docs
	specs = append(specs,
		Spec{
			Name:        "create_doc",
			Description: "Create a document",
			Category:    "doc",
			Parameters: map[string]any{
				"title":      str("Document title"),
				"content":    str("Initial content"),
				"project_id": str("Project to file the doc under; defaults to the current project"),
			},
			Required: []string{"title"},
		},
		Spec{
			Name:        "update_doc",
			Description: "Replace a document's title or content",
			Category:    "doc",
			Parameters: map[string]any{
				"doc_id":  str("Document id"),
				"title":   str("New title"),
				"content": str("Replacement content"),
			},
			Required: []string{"doc_id"},
		},
		Spec{
			Name:        "append_doc",
			Description: "Append content to a document",
			Category:    "doc",
			Parameters: map[string]any{
				"doc_id":  str("Document id"),
				"content": str("Content to append"),
			},
			Required: []string{"doc_id", "content"},
		},
		Spec{
			Name:        "delete_doc",
			Description: "Delete a document",
			Category:    "doc",
			Parameters:  map[string]any{"doc_id": str("Document id")},
			Required:    []string{"doc_id"},
		},
		Spec{
			Name:        "search_docs",
			Description: "Search documents by title",
			Category:    "doc",
			Parameters:  map[string]any{"query": str("Search text")},
			Required:    []string{"query"},
		},
	)

	// Clients
	specs = append(specs,
		Spec{
			Name:        "create_client",
			Description: "Create a client",
			Category:    "client",
			Parameters: map[string]any{
				"name":    str("Client name"),
				"email":   str("Client email"),
				"company": str("Company name"),
			},
			Required: []string{"name"},
		},
		Spec{
			Name:        "update_client",
			Description: "Update a client's details",
			Category:    "client",
			Parameters: map[string]any{
				"client_id": str("Client id"),
				"name":      str("New name"),
				"email":     str("New email"),
				"company":   str("New company"),
			},
			Required: []string{"client_id"},
		},
		Spec{
			Name:        "delete_client",
			Description: "Delete a client",
			Category:    "client",
			Parameters:  map[string]any{"client_id": str("Client id")},
			Required:    []string{"client_id"},
		},
		Spec{
			Name:        "search_clients",
			Description: "Search clients by name or company",
			Category:    "client",
			Parameters:  map[string]any{"query": str("Search text")},
			Required:    []string{"query"},
		},
	)

	// Blocks & tabs
	specs = append(specs,
		Spec{
			Name:        "create_block",
			Description: "Attach a block to a tab",
			Category:    "block",
			Parameters: map[string]any{
				"tab_id": str("Tab id; defaults to the current tab"),
				"type":   enum("Block type", "table", "doc", "timeline"),
				"ref_id": str("Id of the entity the block renders"),
				"title":  str("Block title"),
			},
			Required: []string{"type"},
		},
		Spec{
			Name:        "move_block",
			Description: "Move a block to another tab or position",
			Category:    "block",
			Parameters: map[string]any{
				"block_id": str("Block id; defaults to the block in context"),
				"tab_id":   str("Destination tab id"),
				"position": num("Destination position"),
			},
		},
		Spec{
			Name:        "delete_block",
			Description: "Remove a block from its tab",
			Category:    "block",
			Parameters:  map[string]any{"block_id": str("Block id")},
			Required:    []string{"block_id"},
		},
		Spec{
			Name:        "list_blocks",
			Description: "List the blocks on a tab",
			Category:    "block",
			Parameters:  map[string]any{"tab_id": str("Tab id; defaults to the current tab")},
		},
		Spec{
			Name:        "create_tab",
			Description: "Create a tab",
			Category:    "tab",
			Parameters:  map[string]any{"name": str("Tab name")},
			Required:    []string{"name"},
		},
		Spec{
			Name:        "rename_tab",
			Description: "Rename a tab, resolving it by name when no id is given",
			Category:    "tab",
			Parameters: map[string]any{
				"tab_id": str("Tab id"),
				"tab":    str("Tab name, resolved when tab_id is omitted"),
				"name":   str("New name"),
			},
			Required: []string{"name"},
		},
		Spec{
			Name:        "list_tabs",
			Description: "List the workspace's tabs",
			Category:    "tab",
			Parameters:  map[string]any{},
		},
	)

	// Timeline & workspace
	specs = append(specs,
		Spec{
			Name:        "add_timeline_entry",
			Description: "Add a dated entry to the timeline",
			Category:    "timeline",
			Parameters: map[string]any{
				"title":      str("Entry title"),
				"start_date": str("Start date, YYYY-MM-DD"),
				"end_date":   str("End date, YYYY-MM-DD"),
				"project_id": str("Project the entry belongs to; defaults to the current project"),
				"color":      str("Display color"),
			},
			Required: []string{"title", "start_date"},
		},
		Spec{
			Name:        "update_timeline_entry",
			Description: "Update a timeline entry",
			Category:    "timeline",
			Parameters: map[string]any{
				"entry_id":   str("Entry id"),
				"title":      str("New title"),
				"start_date": str("New start date"),
				"end_date":   str("New end date"),
				"color":      str("New color"),
			},
			Required: []string{"entry_id"},
		},
		Spec{
			Name:        "delete_timeline_entry",
			Description: "Delete a timeline entry",
			Category:    "timeline",
			Parameters:  map[string]any{"entry_id": str("Entry id")},
			Required:    []string{"entry_id"},
		},
		Spec{
			Name:        "list_timeline_entries",
			Description: "List the workspace's timeline entries",
			Category:    "timeline",
			Parameters:  map[string]any{},
		},
		Spec{
			Name:        "list_members",
			Description: "List workspace members",
			Category:    "workspace",
			Parameters:  map[string]any{},
		},
		Spec{
			Name:        "search_members",
			Description: "Search workspace members by name or email",
			Category:    "workspace",
			Parameters:  map[string]any{"query": str("Search text")},
			Required:    []string{"query"},
		},
		Spec{
			Name:        "workspace_summary",
			Description: "Summarize the workspace: counts of projects, tasks, tables, docs and clients",
			Category:    "workspace",
			Parameters:  map[string]any{},
		},
	)

	// Convenience variants the assistant layer emits often enough to deserve
	// first-class names.
	specs = append(specs,
		Spec{
			Name:        "duplicate_task",
			Description: "Copy a task, optionally into another project",
			Category:    "task",
			Parameters: map[string]any{
				"task_id":    str("Task to copy"),
				"project_id": str("Destination project; defaults to the source task's project"),
				"title":      str("Title for the copy; defaults to the source title"),
			},
			Required: []string{"task_id"},
		},
		Spec{
			Name:        "set_task_description",
			Description: "Replace a task's description",
			Category:    "task",
			Parameters: map[string]any{
				"task_id":     str("Task id"),
				"description": str("New description"),
			},
			Required: []string{"task_id", "description"},
		},
		Spec{
			Name:        "rename_project",
			Description: "Rename a project",
			Category:    "project",
			Parameters: map[string]any{
				"project_id": str("Project id"),
				"name":       str("New name"),
			},
			Required: []string{"project_id", "name"},
		},
		Spec{
			Name:        "search_tables",
			Description: "Search tables by name",
			Category:    "table",
			Parameters:  map[string]any{"query": str("Search text")},
			Required:    []string{"query"},
		},
		Spec{
			Name:        "clear_table",
			Description: "Delete every row of a table, keeping its schema",
			Category:    "row",
			Parameters:  map[string]any{"table_id": str("Table id; defaults to the table in context")},
		},
		Spec{
			Name:        "get_row",
			Description: "Fetch a single row by id",
			Category:    "row",
			Parameters: map[string]any{
				"table_id": str("Table id; defaults to the table in context"),
				"row_id":   str("Row id"),
			},
			Required: []string{"row_id"},
		},
		Spec{
			Name:        "get_doc",
			Description: "Fetch a document by id",
			Category:    "doc",
			Parameters:  map[string]any{"doc_id": str("Document id")},
			Required:    []string{"doc_id"},
		},
		Spec{
			Name:        "rename_doc",
			Description: "Rename a document",
			Category:    "doc",
			Parameters: map[string]any{
				"doc_id": str("Document id"),
				"title":  str("New title"),
			},
			Required: []string{"doc_id", "title"},
		},
		Spec{
			Name:        "list_docs",
			Description: "List the workspace's documents",
			Category:    "doc",
			Parameters:  map[string]any{},
		},
		Spec{
			Name:        "get_client",
			Description: "Fetch a client by id or name",
			Category:    "client",
			Parameters: map[string]any{
				"client_id": str("Client id"),
				"client":    str("Client name, resolved when client_id is omitted"),
			},
		},
		Spec{
			Name:        "list_clients",
			Description: "List the workspace's clients",
			Category:    "client",
			Parameters:  map[string]any{},
		},
		Spec{
			Name:        "get_block",
			Description: "Fetch a block by id",
			Category:    "block",
			Parameters:  map[string]any{"block_id": str("Block id")},
			Required:    []string{"block_id"},
		},
	)

	return specs
}
