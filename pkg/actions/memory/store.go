// Package memory implements actions.Store against in-process maps. It backs
// the test suites and the demo server; it is not a durable store.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pythagonacci/trak/pkg/actions"
	"github.com/pythagonacci/trak/pkg/types"
)

// Store keeps every entity in memory, guarded by one RWMutex. Paged row
// fetches and the composite "full" RPCs mirror what the production backend
// exposes so the engine exercises both strategy paths.
type Store struct {
	mu sync.RWMutex

	// DisableFullRPC makes the composite atomic variants return
	// actions.ErrUnsupported, forcing the engine onto the saga path.
	DisableFullRPC bool

	members   map[string]types.Member
	tasks     map[string]types.Task
	projects  map[string]types.Project
	clients   map[string]types.Client
	docs      map[string]types.Doc
	tables    map[string]types.Table
	rows      map[string]types.Row
	rowOrder  map[string][]string // tableID -> row ids in insertion order
	blocks    map[string]types.Block
	tabs      map[string]types.Tab
	timeline  map[string]types.TimelineEntry
	taskOrder []string
}

func NewStore() *Store {
	return &Store{
		members:  make(map[string]types.Member),
		tasks:    make(map[string]types.Task),
		projects: make(map[string]types.Project),
		clients:  make(map[string]types.Client),
		docs:     make(map[string]types.Doc),
		tables:   make(map[string]types.Table),
		rows:     make(map[string]types.Row),
		rowOrder: make(map[string][]string),
		blocks:   make(map[string]types.Block),
		tabs:     make(map[string]types.Tab),
		timeline: make(map[string]types.TimelineEntry),
	}
}

var _ actions.Store = (*Store)(nil)

// SeedMember registers a workspace member directly; test and demo setup only.
func (s *Store) SeedMember(m types.Member) types.Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = types.GenerateMemberID()
	}
	s.members[m.ID] = m
	return m
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Members

func (s *Store) SearchMembers(ctx context.Context, workspaceID, query string) ([]types.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Member
	for _, m := range s.members {
		if query == "" || containsFold(m.Name, query) || containsFold(m.Email, query) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Tasks

func (s *Store) CreateTask(ctx context.Context, t types.Task) (types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = types.GenerateTaskID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	s.tasks[t.ID] = t
	s.taskOrder = append(s.taskOrder, t.ID)
	return t, nil
}

func (s *Store) CreateTaskFull(ctx context.Context, t types.Task) (types.Task, error) {
	if s.DisableFullRPC {
		return types.Task{}, actions.ErrUnsupported
	}
	return s.CreateTask(ctx, t)
}

func (s *Store) UpdateTask(ctx context.Context, id string, patch map[string]any) (types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return types.Task{}, fmt.Errorf("task %s not found", id)
	}
	applyTaskPatch(&t, patch)
	s.tasks[id] = t
	return t, nil
}

func applyTaskPatch(t *types.Task, patch map[string]any) {
	for k, v := range patch {
		switch k {
		case "title":
			t.Title, _ = v.(string)
		case "description":
			t.Description, _ = v.(string)
		case "status":
			t.Status, _ = v.(string)
		case "priority":
			t.Priority, _ = v.(string)
		case "assignee_id":
			t.AssigneeID, _ = v.(string)
		case "assignee_name":
			t.AssigneeName, _ = v.(string)
		case "due_date":
			t.DueDate, _ = v.(string)
		case "project_id":
			t.ProjectID, _ = v.(string)
		case "tags":
			t.Tags = toStringSlice(v)
		case "add_tags":
			t.Tags = appendUnique(t.Tags, toStringSlice(v))
		}
	}
}

func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func appendUnique(dst, add []string) []string {
	for _, a := range add {
		dup := false
		for _, d := range dst {
			if strings.EqualFold(d, a) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, a)
		}
	}
	return dst
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("task %s not found", id)
	}
	delete(s.tasks, id)
	return nil
}

func (s *Store) GetTask(ctx context.Context, id string) (types.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return types.Task{}, fmt.Errorf("task %s not found", id)
	}
	return t, nil
}

func (s *Store) SearchTasks(ctx context.Context, workspaceID string, q actions.TaskQuery) ([]types.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Task
	for _, id := range s.taskOrder {
		t, ok := s.tasks[id]
		if !ok || t.WorkspaceID != workspaceID {
			continue
		}
		if q.Text != "" && !containsFold(t.Title, q.Text) && !containsFold(t.Description, q.Text) {
			continue
		}
		if q.ProjectID != "" && t.ProjectID != q.ProjectID {
			continue
		}
		if q.Status != "" && !strings.EqualFold(t.Status, q.Status) {
			continue
		}
		if q.AssigneeID != "" && t.AssigneeID != q.AssigneeID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Projects

func (s *Store) CreateProject(ctx context.Context, p types.Project) (types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = types.GenerateProjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.projects[p.ID] = p
	return p, nil
}

func (s *Store) UpdateProject(ctx context.Context, id string, patch map[string]any) (types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return types.Project{}, fmt.Errorf("project %s not found", id)
	}
	for k, v := range patch {
		switch k {
		case "name":
			p.Name, _ = v.(string)
		case "description":
			p.Description, _ = v.(string)
		case "client_id":
			p.ClientID, _ = v.(string)
		case "archived":
			p.Archived, _ = v.(bool)
		}
	}
	s.projects[id] = p
	return p, nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return fmt.Errorf("project %s not found", id)
	}
	delete(s.projects, id)
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return types.Project{}, fmt.Errorf("project %s not found", id)
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context, workspaceID string) ([]types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Project
	for _, p := range s.projects {
		if p.WorkspaceID == workspaceID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) SearchProjects(ctx context.Context, workspaceID, query string) ([]types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Project
	for _, p := range s.projects {
		if p.WorkspaceID == workspaceID && (query == "" || containsFold(p.Name, query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Clients

func (s *Store) CreateClient(ctx context.Context, c types.Client) (types.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = types.GenerateClientID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.clients[c.ID] = c
	return c, nil
}

func (s *Store) UpdateClient(ctx context.Context, id string, patch map[string]any) (types.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return types.Client{}, fmt.Errorf("client %s not found", id)
	}
	for k, v := range patch {
		switch k {
		case "name":
			c.Name, _ = v.(string)
		case "email":
			c.Email, _ = v.(string)
		case "company":
			c.Company, _ = v.(string)
		}
	}
	s.clients[id] = c
	return c, nil
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return fmt.Errorf("client %s not found", id)
	}
	delete(s.clients, id)
	return nil
}

func (s *Store) SearchClients(ctx context.Context, workspaceID, query string) ([]types.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Client
	for _, c := range s.clients {
		if c.WorkspaceID != workspaceID {
			continue
		}
		if query == "" || containsFold(c.Name, query) || containsFold(c.Company, query) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Docs

func (s *Store) CreateDoc(ctx context.Context, d types.Doc) (types.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = types.GenerateDocID()
	}
	now := time.Now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	s.docs[d.ID] = d
	return d, nil
}

func (s *Store) UpdateDoc(ctx context.Context, id string, patch map[string]any) (types.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return types.Doc{}, fmt.Errorf("doc %s not found", id)
	}
	for k, v := range patch {
		switch k {
		case "title":
			d.Title, _ = v.(string)
		case "content":
			d.Content, _ = v.(string)
		case "append_content":
			if str, ok := v.(string); ok {
				d.Content += str
			}
		case "project_id":
			d.ProjectID, _ = v.(string)
		}
	}
	d.UpdatedAt = time.Now()
	s.docs[id] = d
	return d, nil
}

func (s *Store) DeleteDoc(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("doc %s not found", id)
	}
	delete(s.docs, id)
	return nil
}

func (s *Store) GetDoc(ctx context.Context, id string) (types.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return types.Doc{}, fmt.Errorf("doc %s not found", id)
	}
	return d, nil
}

func (s *Store) SearchDocs(ctx context.Context, workspaceID, query string) ([]types.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Doc
	for _, d := range s.docs {
		if d.WorkspaceID == workspaceID && (query == "" || containsFold(d.Title, query)) {
			out = append(out, d)
		}
	}
	return out, nil
}
