package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pythagonacci/trak/pkg/api/dto"
	"github.com/pythagonacci/trak/pkg/engine"
	"github.com/pythagonacci/trak/pkg/types"
	"github.com/pythagonacci/trak/pkg/undo"
)

// ExecuteHandler runs tool calls against the engine. Each request gets its
// own undo tracker; captured steps ride back in the response and are also
// appended to the server's journal for the undo endpoint.
type ExecuteHandler struct {
	engine      *engine.Engine
	workspaceID string
	journal     *undo.Tracker
	log         *slog.Logger
}

func NewExecuteHandler(eng *engine.Engine, workspaceID string, journal *undo.Tracker, log *slog.Logger) *ExecuteHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ExecuteHandler{engine: eng, workspaceID: workspaceID, journal: journal, log: log}
}

func (h *ExecuteHandler) execContext(cc dto.CallContext, sink types.UndoSink) types.ExecutionContext {
	ws := cc.WorkspaceID
	if ws == "" {
		ws = h.workspaceID
	}
	return types.ExecutionContext{
		WorkspaceID:      ws,
		UserID:           cc.UserID,
		CurrentTabID:     cc.CurrentTabID,
		CurrentProjectID: cc.CurrentProjectID,
		ContextTableID:   cc.ContextTableID,
		ContextBlockID:   cc.ContextBlockID,
		Undo:             sink,
	}
}

// Execute runs one tool call.
func (h *ExecuteHandler) Execute(c *gin.Context) {
	var req dto.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if req.Call.Name == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "call.name is required"})
		return
	}

	tracker := undo.NewTracker(h.log)
	result := h.engine.Execute(c.Request.Context(), req.Call, h.execContext(req.Context, tracker))

	steps := tracker.Steps()
	h.journal.Queue(steps...)
	c.JSON(http.StatusOK, dto.ExecuteResponse{
		Result:  result,
		Undo:    steps,
		Skipped: tracker.Skipped(),
	})
}

// Batch runs several tool calls, sequentially (continue on error) or in
// parallel when requested.
func (h *ExecuteHandler) Batch(c *gin.Context) {
	var req dto.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if len(req.Calls) == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "calls must be a non-empty array"})
		return
	}

	tracker := undo.NewTracker(h.log)
	execCtx := h.execContext(req.Context, tracker)

	var results []*types.ToolCallResult
	if req.Parallel {
		results = h.engine.ExecuteParallel(c.Request.Context(), req.Calls, execCtx)
	} else {
		results = h.engine.ExecuteAll(c.Request.Context(), req.Calls, execCtx)
	}

	steps := tracker.Steps()
	h.journal.Queue(steps...)
	c.JSON(http.StatusOK, dto.BatchResponse{
		Results: results,
		Undo:    steps,
		Skipped: tracker.Skipped(),
	})
}

// Undo drains the server's undo journal, newest step first.
func (h *ExecuteHandler) Undo(c *gin.Context) {
	c.JSON(http.StatusOK, dto.UndoResponse{Steps: h.journal.Drain()})
}
