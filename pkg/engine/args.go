package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/pythagonacci/trak/pkg/resolve"
	"github.com/pythagonacci/trak/pkg/schema"
	"github.com/pythagonacci/trak/pkg/types"
)

// Loose argument coercion. Assistant-produced argument bags arrive as
// decoded JSON; numbers are float64, ids may be quoted numbers, arrays may
// mix shapes. These helpers normalize without being precious about it.

func missingArg(v any) bool {
	switch vv := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(vv) == ""
	case []any:
		return len(vv) == 0
	case map[string]any:
		return len(vv) == 0
	}
	return false
}

func argString(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func argBool(args map[string]any, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	}
	return false
}

func argInt(args map[string]any, key string) (int, bool) {
	f, ok := schema.ParseNumber(args[key])
	if !ok {
		return 0, false
	}
	return int(f), true
}

func argStringSlice(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{strings.TrimSpace(v)}
	}
	return nil
}

func argMap(args map[string]any, key string) map[string]any {
	m, _ := args[key].(map[string]any)
	return m
}

func argMapSlice(args map[string]any, key string) []map[string]any {
	raw, ok := args[key].([]any)
	if !ok {
		if one, ok := args[key].(map[string]any); ok {
			return []map[string]any{one}
		}
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func argAnySlice(args map[string]any, key string) []any {
	v, _ := args[key].([]any)
	return v
}

// requireID validates id-shaped arguments before any mutation happens.
func requireID(param, v string) error {
	if !types.WellFormedID(v) {
		return validationf("%s: %q is not a well-formed id", param, v)
	}
	return nil
}

// resolvedAssignee is either a bound member or a name-only external
// placeholder.
type resolvedAssignee struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

func (a resolvedAssignee) empty() bool { return a.ID == "" && a.Name == "" }

// parseAssigneeArg accepts the two accepted shapes: a bare string (id, name
// or email) or an {id,name} object carrying at least one of the two.
func parseAssigneeArg(v any) (string, error) {
	switch vv := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(vv), nil
	case map[string]any:
		id, _ := vv["id"].(string)
		name, _ := vv["name"].(string)
		if strings.TrimSpace(id) == "" && strings.TrimSpace(name) == "" {
			return "", validationf("assignee must carry at least one of id/name")
		}
		if strings.TrimSpace(id) != "" {
			return strings.TrimSpace(id), nil
		}
		return strings.TrimSpace(name), nil
	}
	return "", validationf("assignee must be a string or an {id,name} object")
}

// resolveAssignee turns a free-text person reference into a bound member or
// an external placeholder. More than one match aborts the whole call.
func (rc *runContext) resolveAssignee(ctx context.Context, input string) (resolvedAssignee, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return resolvedAssignee{}, nil
	}
	if types.WellFormedID(input) {
		return resolvedAssignee{ID: input}, nil
	}
	res, err := resolve.Assignee(ctx, rc.engine.store, rc.exec.WorkspaceID, input)
	if err != nil {
		return resolvedAssignee{}, err
	}
	switch res.Kind {
	case resolve.KindResolved:
		return resolvedAssignee{ID: res.ID, Name: res.Name}, nil
	case resolve.KindAmbiguous:
		return resolvedAssignee{}, &ambiguityError{input: input, matches: res.Matches}
	default:
		return resolvedAssignee{Name: res.Name}, nil
	}
}

// resolveProjectRef accepts a project id or name; empty input falls back to
// the ambient default project.
func (rc *runContext) resolveProjectRef(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return rc.containers.DefaultProject(ctx, rc.exec)
	}
	if types.WellFormedID(input) {
		return input, nil
	}
	res, err := resolve.Project(ctx, rc.engine.store, rc.exec.WorkspaceID, input)
	if err != nil {
		return "", err
	}
	switch res.Kind {
	case resolve.KindResolved:
		return res.ID, nil
	case resolve.KindAmbiguous:
		return "", &ambiguityError{input: input, matches: res.Matches}
	default:
		return "", validationf("no project named %q", input)
	}
}

// resolveClientRef accepts a client id or name. Unlike assignees, clients
// have no external-placeholder form: an unmatched name is an error.
func (rc *runContext) resolveClientRef(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if types.WellFormedID(input) {
		return input, nil
	}
	res, err := resolve.Client(ctx, rc.engine.store, rc.exec.WorkspaceID, input)
	if err != nil {
		return "", err
	}
	switch res.Kind {
	case resolve.KindResolved:
		return res.ID, nil
	case resolve.KindAmbiguous:
		return "", &ambiguityError{input: input, matches: res.Matches}
	default:
		return "", validationf("no client named %q", input)
	}
}

// resolveTableRef resolves the table an operation acts on: explicit id, then
// name lookup, then the ambient default container chain.
func (rc *runContext) resolveTableRef(ctx context.Context, args map[string]any) (types.Table, error) {
	if id := argString(args, "table_id"); id != "" {
		if err := requireID("table_id", id); err != nil {
			return types.Table{}, err
		}
		return rc.engine.store.GetTable(ctx, id)
	}
	if name := argString(args, "table"); name != "" {
		res, err := resolve.Table(ctx, rc.engine.store, rc.exec.WorkspaceID, name)
		if err != nil {
			return types.Table{}, err
		}
		switch res.Kind {
		case resolve.KindResolved:
			return rc.engine.store.GetTable(ctx, res.ID)
		case resolve.KindAmbiguous:
			return types.Table{}, &ambiguityError{input: name, matches: res.Matches}
		default:
			return types.Table{}, validationf("no table named %q", name)
		}
	}
	t, created, err := rc.containers.DefaultTable(ctx, rc.exec)
	if err != nil {
		return types.Table{}, err
	}
	if created {
		rc.warnf("no table in context; created %q (%s)", t.Name, t.ID)
	}
	return t, nil
}
