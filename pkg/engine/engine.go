// Package engine dispatches assistant tool calls against the workspace:
// argument validation, entity/context resolution, atomic-vs-saga strategy
// selection, dynamic schema inference and undo capture.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pythagonacci/trak/pkg/actions"
	"github.com/pythagonacci/trak/pkg/catalog"
	"github.com/pythagonacci/trak/pkg/resolve"
	"github.com/pythagonacci/trak/pkg/types"
)

// DefaultPageSize bounds one row fetch. The duplicate-insert guard only
// trusts comparisons when a table fits in a single page.
const DefaultPageSize = 500

type handlerFunc func(ctx context.Context, rc *runContext) (any, error)

// Engine executes tool calls. It holds no per-call state; everything
// call-scoped lives in a runContext created inside Execute.
type Engine struct {
	store    actions.Store
	catalog  *catalog.Catalog
	log      *slog.Logger
	pageSize int
	handlers map[string]handlerFunc
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

func New(store actions.Store, cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		catalog:  cat,
		log:      slog.Default(),
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.handlers = make(map[string]handlerFunc)
	e.registerTaskHandlers()
	e.registerProjectHandlers()
	e.registerTableHandlers()
	e.registerRowHandlers()
	e.registerBlockHandlers()
	return e
}

func (e *Engine) register(name string, h handlerFunc) {
	if _, dup := e.handlers[name]; dup {
		panic(fmt.Sprintf("engine: duplicate handler for %s", name))
	}
	e.handlers[name] = h
}

// runContext is the call-scoped arena: arguments, ambient context, collected
// warnings and per-run resolution caches. It is discarded when Execute
// returns.
type runContext struct {
	engine     *Engine
	call       types.ToolCall
	exec       types.ExecutionContext
	containers *resolve.Containers

	// consumedSlots tracks placeholder columns already repurposed during this
	// call, so batched field creates never collide on the same slot.
	consumedSlots map[string]map[string]bool

	warnings []string
	hint     string
}

func (rc *runContext) warnf(format string, a ...any) {
	rc.warnings = append(rc.warnings, fmt.Sprintf(format, a...))
}

func (rc *runContext) queueUndo(steps ...types.UndoStep) {
	if rc.exec.Undo != nil {
		rc.exec.Undo.Queue(steps...)
	}
}

func (rc *runContext) skipUndo() {
	if rc.exec.Undo != nil {
		rc.exec.Undo.Skip(rc.call.Name)
	}
}

// Execute runs one tool call to completion and never panics across the
// boundary: every outcome is a ToolCallResult.
func (e *Engine) Execute(ctx context.Context, call types.ToolCall, execCtx types.ExecutionContext) *types.ToolCallResult {
	spec, ok := e.catalog.Get(call.Name)
	if !ok {
		return types.Fail(fmt.Sprintf("unknown operation %q", call.Name))
	}

	if call.Arguments == nil {
		call.Arguments = map[string]any{}
	}
	for _, req := range spec.Required {
		if missingArg(call.Arguments[req]) {
			return types.Fail(fmt.Sprintf("%s: missing required parameter %q", call.Name, req))
		}
	}

	h := e.handlers[call.Name]
	if h == nil {
		return types.Fail(fmt.Sprintf("no handler for operation %q", call.Name))
	}

	rc := &runContext{
		engine:        e,
		call:          call,
		exec:          execCtx,
		containers:    resolve.NewContainers(e.store),
		consumedSlots: make(map[string]map[string]bool),
	}

	data, err := h(ctx, rc)
	if err != nil {
		e.log.Info("tool call failed", "tool", call.Name, "error", err)
		res := types.Fail(err.Error())
		res.Warnings = rc.warnings
		return res
	}

	res := types.OK(data)
	res.Warnings = rc.warnings
	res.Hint = rc.hint
	return res
}

// ExecuteAll runs calls strictly in order, continuing past failures. The
// result slice is positionally aligned with calls.
func (e *Engine) ExecuteAll(ctx context.Context, calls []types.ToolCall, execCtx types.ExecutionContext) []*types.ToolCallResult {
	out := make([]*types.ToolCallResult, len(calls))
	for i, call := range calls {
		out[i] = e.Execute(ctx, call, execCtx)
	}
	return out
}

// ExecuteParallel runs calls concurrently with no cross-call ordering or
// mutual exclusion; calls touching the same row race at the store's native
// write semantics.
func (e *Engine) ExecuteParallel(ctx context.Context, calls []types.ToolCall, execCtx types.ExecutionContext) []*types.ToolCallResult {
	out := make([]*types.ToolCallResult, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call types.ToolCall) {
			defer wg.Done()
			out[i] = e.Execute(ctx, call, execCtx)
		}(i, call)
	}
	wg.Wait()
	return out
}

// Error variants. Validation and ambiguity failures are ordinary errors with
// recognizable shapes so Execute can report them without string parsing.

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func validationf(format string, a ...any) error {
	return &validationError{msg: fmt.Sprintf(format, a...)}
}

// ambiguityError is the deliberate refusal to guess: the full candidate list
// rides along so the caller can re-prompt.
type ambiguityError struct {
	input   string
	matches []resolve.Candidate
}

func (e *ambiguityError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q matches %d entries; be more specific: ", e.input, len(e.matches))
	for i, m := range e.matches {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "id=%s name=%s", m.ID, m.Name)
		if m.Email != "" {
			fmt.Fprintf(&b, " email=%s", m.Email)
		}
	}
	return b.String()
}
