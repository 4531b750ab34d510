package types

// ToolCall represents an invocation request from the assistant layer.
// Arguments are unvalidated until dispatch.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolCallResult is the outcome of executing a single tool call.
// Exactly one of Data/Error is meaningful depending on Success; Warnings may
// accompany a successful result to flag partial data loss.
type ToolCallResult struct {
	Success  bool     `json:"success"`
	Data     any      `json:"data,omitempty"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Hint     string   `json:"hint,omitempty"`
}

// OK builds a successful result.
func OK(data any) *ToolCallResult {
	return &ToolCallResult{Success: true, Data: data}
}

// Fail builds a failed result.
func Fail(msg string) *ToolCallResult {
	return &ToolCallResult{Success: false, Error: msg}
}

// ExecutionContext carries ambient defaults used to fill gaps in a tool
// call's arguments. It is created per invocation and passed by value; the
// engine never stores it.
type ExecutionContext struct {
	WorkspaceID      string `json:"workspace_id"`
	UserID           string `json:"user_id,omitempty"`
	CurrentTabID     string `json:"current_tab_id,omitempty"`
	CurrentProjectID string `json:"current_project_id,omitempty"`
	ContextTableID   string `json:"context_table_id,omitempty"`
	ContextBlockID   string `json:"context_block_id,omitempty"`

	// Undo, when non-nil, receives reversible steps for successful calls.
	Undo UndoSink `json:"-"`
}
