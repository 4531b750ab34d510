package types

import "time"

// Member is a workspace member that tasks can be assigned to.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Task is a unit of work inside a project.
type Task struct {
	ID           string     `json:"id"`
	WorkspaceID  string     `json:"workspace_id"`
	ProjectID    string     `json:"project_id,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status,omitempty"`
	Priority     string     `json:"priority,omitempty"`
	AssigneeID   string     `json:"assignee_id,omitempty"`
	AssigneeName string     `json:"assignee_name,omitempty"` // kept for external (non-member) assignees
	DueDate      string     `json:"due_date,omitempty"`      // ISO date, YYYY-MM-DD
	Tags         []string   `json:"tags,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Project groups tasks, docs and tables, optionally bound to a client.
type Project struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ClientID    string    `json:"client_id,omitempty"`
	Archived    bool      `json:"archived,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Client is an external party a project is delivered to.
type Client struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Company     string    `json:"company,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Doc is a rich-text document.
type Doc struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	ProjectID   string    `json:"project_id,omitempty"`
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Tab is a page of the workspace UI that blocks attach to.
type Tab struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
}

// Block is a UI surface on a tab referencing an underlying entity
// (table, doc, timeline).
type Block struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	TabID       string `json:"tab_id"`
	Type        string `json:"type"` // "table" | "doc" | "timeline"
	RefID       string `json:"ref_id,omitempty"`
	Title       string `json:"title,omitempty"`
	Position    int    `json:"position"`
}

// TimelineEntry is a dated span rendered on a timeline block.
type TimelineEntry struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	ProjectID   string `json:"project_id,omitempty"`
	Title       string `json:"title"`
	StartDate   string `json:"start_date"` // ISO date
	EndDate     string `json:"end_date,omitempty"`
	Color       string `json:"color,omitempty"`
}
