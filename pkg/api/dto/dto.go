// Package dto defines the request and response shapes of the HTTP API.
package dto

import "github.com/pythagonacci/trak/pkg/types"

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// CallContext carries the ambient defaults of a request. WorkspaceID is
// optional; the server's configured workspace is used when it is empty.
type CallContext struct {
	WorkspaceID      string `json:"workspace_id,omitempty"`
	UserID           string `json:"user_id,omitempty"`
	CurrentTabID     string `json:"current_tab_id,omitempty"`
	CurrentProjectID string `json:"current_project_id,omitempty"`
	ContextTableID   string `json:"context_table_id,omitempty"`
	ContextBlockID   string `json:"context_block_id,omitempty"`
}

// ExecuteRequest executes a single tool call.
type ExecuteRequest struct {
	Call    types.ToolCall `json:"call"`
	Context CallContext    `json:"context"`
}

// ExecuteResponse is the outcome of one call plus the undo steps it captured.
type ExecuteResponse struct {
	Result  *types.ToolCallResult `json:"result"`
	Undo    []types.UndoStep      `json:"undo,omitempty"`
	Skipped []string              `json:"undo_skipped,omitempty"`
}

// BatchRequest executes several tool calls, sequentially by default.
type BatchRequest struct {
	Calls    []types.ToolCall `json:"calls"`
	Parallel bool             `json:"parallel,omitempty"`
	Context  CallContext      `json:"context"`
}

// BatchResponse is positionally aligned with the request's calls.
type BatchResponse struct {
	Results []*types.ToolCallResult `json:"results"`
	Undo    []types.UndoStep        `json:"undo,omitempty"`
	Skipped []string                `json:"undo_skipped,omitempty"`
}

// UndoResponse drains the server's undo journal, newest step first.
type UndoResponse struct {
	Steps []types.UndoStep `json:"steps"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
