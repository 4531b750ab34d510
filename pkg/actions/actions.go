// Package actions declares the external data primitives the execution engine
// calls into: one search/create/update/delete per entity kind, plus optional
// composite "full" RPC variants for composite operations. Implementations own
// persistence; the engine owns nothing but the call ordering.
package actions

import (
	"context"
	"errors"

	"github.com/pythagonacci/trak/pkg/types"
)

// ErrUnsupported signals that a backend does not expose a composite atomic
// RPC; the engine falls back to the step-by-step path without surfacing this
// to the caller.
var ErrUnsupported = errors.New("actions: atomic variant not supported")

// Page is a fetch window for row pagination.
type Page struct {
	Limit  int
	Offset int
}

// RowPage is one page of rows. HasMore is what the duplicate-insert guard
// keys on: the guard only trusts a primary-value comparison when the whole
// table fit in one fetch.
type RowPage struct {
	Rows    []types.Row
	Total   int
	HasMore bool
}

// TaskQuery narrows a task search. Zero fields are ignored.
type TaskQuery struct {
	Text       string
	ProjectID  string
	Status     string
	AssigneeID string
}

type MemberActions interface {
	// SearchMembers returns members whose name or email matches the free-text
	// query. An empty query returns all members.
	SearchMembers(ctx context.Context, workspaceID, query string) ([]types.Member, error)
}

type TaskActions interface {
	CreateTask(ctx context.Context, t types.Task) (types.Task, error)
	UpdateTask(ctx context.Context, id string, patch map[string]any) (types.Task, error)
	DeleteTask(ctx context.Context, id string) error
	GetTask(ctx context.Context, id string) (types.Task, error)
	SearchTasks(ctx context.Context, workspaceID string, q TaskQuery) ([]types.Task, error)

	// CreateTaskFull is the optional atomic variant covering create + assign +
	// tag in one RPC. May return ErrUnsupported.
	CreateTaskFull(ctx context.Context, t types.Task) (types.Task, error)
}

type ProjectActions interface {
	CreateProject(ctx context.Context, p types.Project) (types.Project, error)
	UpdateProject(ctx context.Context, id string, patch map[string]any) (types.Project, error)
	DeleteProject(ctx context.Context, id string) error
	GetProject(ctx context.Context, id string) (types.Project, error)
	ListProjects(ctx context.Context, workspaceID string) ([]types.Project, error)
	SearchProjects(ctx context.Context, workspaceID, query string) ([]types.Project, error)
}

type ClientActions interface {
	CreateClient(ctx context.Context, c types.Client) (types.Client, error)
	UpdateClient(ctx context.Context, id string, patch map[string]any) (types.Client, error)
	DeleteClient(ctx context.Context, id string) error
	SearchClients(ctx context.Context, workspaceID, query string) ([]types.Client, error)
}

type DocActions interface {
	CreateDoc(ctx context.Context, d types.Doc) (types.Doc, error)
	UpdateDoc(ctx context.Context, id string, patch map[string]any) (types.Doc, error)
	DeleteDoc(ctx context.Context, id string) error
	GetDoc(ctx context.Context, id string) (types.Doc, error)
	SearchDocs(ctx context.Context, workspaceID, query string) ([]types.Doc, error)
}

// TableFullSpec is the payload of the atomic create-table RPC.
type TableFullSpec struct {
	Name   string
	TabID  string
	Fields []types.Field
	Rows   []map[string]any // keyed by field id
}

// TableFullResult aggregates what the atomic RPC created.
type TableFullResult struct {
	Table  types.Table
	Block  types.Block
	RowIDs []string
}

type TableActions interface {
	CreateTable(ctx context.Context, workspaceID, name string) (types.Table, error)
	GetTable(ctx context.Context, id string) (types.Table, error)
	RenameTable(ctx context.Context, id, name string) (types.Table, error)
	DeleteTable(ctx context.Context, id string) error
	ListTables(ctx context.Context, workspaceID string) ([]types.Table, error)
	SearchTables(ctx context.Context, workspaceID, query string) ([]types.Table, error)

	CreateField(ctx context.Context, tableID string, f types.Field) (types.Field, error)
	UpdateField(ctx context.Context, tableID, fieldID string, patch map[string]any) (types.Field, error)
	DeleteField(ctx context.Context, tableID, fieldID string) error

	// CreateTableFull is the optional atomic variant creating the table, its
	// fields, its rows and its UI block in one RPC. May return ErrUnsupported.
	CreateTableFull(ctx context.Context, workspaceID string, spec TableFullSpec) (TableFullResult, error)
}

type RowActions interface {
	InsertRows(ctx context.Context, tableID string, cells []map[string]any) ([]types.Row, error)
	UpdateRow(ctx context.Context, tableID, rowID string, cells map[string]any) (types.Row, error)
	DeleteRows(ctx context.Context, tableID string, ids []string) error
	FetchRows(ctx context.Context, tableID string, page Page) (RowPage, error)
}

type BlockActions interface {
	CreateBlock(ctx context.Context, b types.Block) (types.Block, error)
	MoveBlock(ctx context.Context, id, tabID string, position int) (types.Block, error)
	DeleteBlock(ctx context.Context, id string) error
	ListBlocks(ctx context.Context, tabID string) ([]types.Block, error)
	GetBlock(ctx context.Context, id string) (types.Block, error)
}

type TabActions interface {
	CreateTab(ctx context.Context, t types.Tab) (types.Tab, error)
	RenameTab(ctx context.Context, id, name string) (types.Tab, error)
	ListTabs(ctx context.Context, workspaceID string) ([]types.Tab, error)
	SearchTabs(ctx context.Context, workspaceID, query string) ([]types.Tab, error)
}

type TimelineActions interface {
	CreateTimelineEntry(ctx context.Context, e types.TimelineEntry) (types.TimelineEntry, error)
	UpdateTimelineEntry(ctx context.Context, id string, patch map[string]any) (types.TimelineEntry, error)
	DeleteTimelineEntry(ctx context.Context, id string) error
	ListTimelineEntries(ctx context.Context, workspaceID string) ([]types.TimelineEntry, error)
}

// Store is the full set of external data actions the engine depends on.
type Store interface {
	MemberActions
	TaskActions
	ProjectActions
	ClientActions
	DocActions
	TableActions
	RowActions
	BlockActions
	TabActions
	TimelineActions
}
