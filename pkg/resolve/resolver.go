// Package resolve turns free-text names (assignees, tables, tabs, clients,
// fields) into identifiers, classifying every outcome as resolved, external
// or ambiguous. The engine never guesses among multiple matches.
package resolve

import (
	"context"
	"strings"

	"github.com/pythagonacci/trak/pkg/actions"
)

// Candidate is one possible match surfaced when a name is ambiguous.
type Candidate struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Kind classifies a resolution outcome.
type Kind int

const (
	// KindResolved means exactly one entity matched and is bound.
	KindResolved Kind = iota
	// KindExternal means nothing matched; the name is kept as-is as a
	// placeholder (valid for assignees, where external people are allowed).
	KindExternal
	// KindAmbiguous means more than one entity matched; the caller must not
	// pick one silently.
	KindAmbiguous
)

// Resolution is the tagged outcome of a name lookup.
type Resolution struct {
	Kind    Kind
	ID      string
	Name    string
	Matches []Candidate // populated for KindAmbiguous
}

// narrow applies the exact -> prefix -> substring tiers over candidates whose
// names already matched loosely. Emails participate at every tier so a query
// like "acme" still binds the member whose only hit is alice@acme.io. The
// first tier with any hit wins.
func narrow(query string, cands []Candidate) []Candidate {
	q := strings.ToLower(strings.TrimSpace(query))
	var exact, prefix, substr []Candidate
	for _, c := range cands {
		n := strings.ToLower(c.Name)
		e := strings.ToLower(c.Email)
		switch {
		case n == q || (e != "" && e == q):
			exact = append(exact, c)
		case strings.HasPrefix(n, q) || (e != "" && strings.HasPrefix(e, q)):
			prefix = append(prefix, c)
		case strings.Contains(n, q) || (e != "" && strings.Contains(e, q)):
			substr = append(substr, c)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	if len(prefix) > 0 {
		return prefix
	}
	return substr
}

func classify(input string, cands []Candidate) Resolution {
	switch len(cands) {
	case 0:
		return Resolution{Kind: KindExternal, Name: strings.TrimSpace(input)}
	case 1:
		return Resolution{Kind: KindResolved, ID: cands[0].ID, Name: cands[0].Name}
	default:
		return Resolution{Kind: KindAmbiguous, Name: input, Matches: cands}
	}
}

// Assignee resolves a free-text person reference against workspace members.
// Zero matches is not an error: the result is an external placeholder.
func Assignee(ctx context.Context, members actions.MemberActions, workspaceID, input string) (Resolution, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Resolution{Kind: KindExternal}, nil
	}
	found, err := members.SearchMembers(ctx, workspaceID, input)
	if err != nil {
		return Resolution{}, err
	}
	cands := make([]Candidate, 0, len(found))
	for _, m := range found {
		// Email hits count as exact so "jo@acme.io" binds even when two
		// members are both named Jo.
		if strings.EqualFold(m.Email, input) {
			return Resolution{Kind: KindResolved, ID: m.ID, Name: m.Name}, nil
		}
		cands = append(cands, Candidate{ID: m.ID, Name: m.Name, Email: m.Email})
	}
	return classify(input, narrow(input, cands)), nil
}

// Assignees resolves a batch of person references, deduplicating inputs so
// repeated names share one resolved value. The returned map is keyed by the
// trimmed input.
func Assignees(ctx context.Context, members actions.MemberActions, workspaceID string, inputs []string) (map[string]Resolution, error) {
	out := make(map[string]Resolution, len(inputs))
	for _, in := range inputs {
		key := strings.TrimSpace(in)
		if _, done := out[key]; done {
			continue
		}
		res, err := Assignee(ctx, members, workspaceID, key)
		if err != nil {
			return nil, err
		}
		out[key] = res
	}
	return out, nil
}

// Table resolves a table name within a workspace.
func Table(ctx context.Context, tables actions.TableActions, workspaceID, input string) (Resolution, error) {
	found, err := tables.SearchTables(ctx, workspaceID, input)
	if err != nil {
		return Resolution{}, err
	}
	cands := make([]Candidate, 0, len(found))
	for _, t := range found {
		cands = append(cands, Candidate{ID: t.ID, Name: t.Name})
	}
	return classify(input, narrow(input, cands)), nil
}

// Tab resolves a tab name within a workspace.
func Tab(ctx context.Context, tabs actions.TabActions, workspaceID, input string) (Resolution, error) {
	found, err := tabs.SearchTabs(ctx, workspaceID, input)
	if err != nil {
		return Resolution{}, err
	}
	cands := make([]Candidate, 0, len(found))
	for _, t := range found {
		cands = append(cands, Candidate{ID: t.ID, Name: t.Name})
	}
	return classify(input, narrow(input, cands)), nil
}

// Client resolves a client name within a workspace.
func Client(ctx context.Context, clients actions.ClientActions, workspaceID, input string) (Resolution, error) {
	found, err := clients.SearchClients(ctx, workspaceID, input)
	if err != nil {
		return Resolution{}, err
	}
	cands := make([]Candidate, 0, len(found))
	for _, c := range found {
		cands = append(cands, Candidate{ID: c.ID, Name: c.Name, Email: c.Email})
	}
	return classify(input, narrow(input, cands)), nil
}

// Project resolves a project name within a workspace.
func Project(ctx context.Context, projects actions.ProjectActions, workspaceID, input string) (Resolution, error) {
	found, err := projects.SearchProjects(ctx, workspaceID, input)
	if err != nil {
		return Resolution{}, err
	}
	cands := make([]Candidate, 0, len(found))
	for _, p := range found {
		cands = append(cands, Candidate{ID: p.ID, Name: p.Name})
	}
	return classify(input, narrow(input, cands)), nil
}
