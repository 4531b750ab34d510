package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/pythagonacci/trak/pkg/actions"
	"github.com/pythagonacci/trak/pkg/types"
)

// defaultFields are the placeholder columns every newly created table starts
// with, matching what the workspace UI scaffolds.
func defaultFields() []types.Field {
	return []types.Field{
		{ID: types.GenerateFieldID(), Name: "Name", Type: types.FieldText, Primary: true, Auto: true},
		{ID: types.GenerateFieldID(), Name: "Column 2", Type: types.FieldText, Auto: true},
		{ID: types.GenerateFieldID(), Name: "Column 3", Type: types.FieldText, Auto: true},
	}
}

func (s *Store) CreateTable(ctx context.Context, workspaceID, name string) (types.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := types.Table{
		ID:          types.GenerateTableID(),
		WorkspaceID: workspaceID,
		Name:        name,
		Fields:      defaultFields(),
		CreatedAt:   time.Now(),
	}
	s.tables[t.ID] = t
	return t, nil
}

func (s *Store) GetTable(ctx context.Context, id string) (types.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[id]
	if !ok {
		return types.Table{}, fmt.Errorf("table %s not found", id)
	}
	return t, nil
}

func (s *Store) RenameTable(ctx context.Context, id, name string) (types.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok {
		return types.Table{}, fmt.Errorf("table %s not found", id)
	}
	t.Name = name
	s.tables[id] = t
	return t, nil
}

func (s *Store) DeleteTable(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[id]; !ok {
		return fmt.Errorf("table %s not found", id)
	}
	delete(s.tables, id)
	for _, rid := range s.rowOrder[id] {
		delete(s.rows, rid)
	}
	delete(s.rowOrder, id)
	return nil
}

func (s *Store) ListTables(ctx context.Context, workspaceID string) ([]types.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Table
	for _, t := range s.tables {
		if t.WorkspaceID == workspaceID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) SearchTables(ctx context.Context, workspaceID, query string) ([]types.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Table
	for _, t := range s.tables {
		if t.WorkspaceID == workspaceID && (query == "" || containsFold(t.Name, query)) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Fields

func (s *Store) CreateField(ctx context.Context, tableID string, f types.Field) (types.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok {
		return types.Field{}, fmt.Errorf("table %s not found", tableID)
	}
	if f.ID == "" {
		f.ID = types.GenerateFieldID()
	}
	t.Fields = append(t.Fields, f)
	s.tables[tableID] = t
	return f, nil
}

func (s *Store) UpdateField(ctx context.Context, tableID, fieldID string, patch map[string]any) (types.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok {
		return types.Field{}, fmt.Errorf("table %s not found", tableID)
	}
	for i, f := range t.Fields {
		if f.ID != fieldID {
			continue
		}
		for k, v := range patch {
			switch k {
			case "name":
				f.Name, _ = v.(string)
			case "type":
				if str, ok := v.(string); ok {
					f.Type = types.FieldType(str)
				}
			case "options":
				if opts, ok := v.([]types.FieldOption); ok {
					f.Config.Options = opts
				}
			case "auto":
				f.Auto, _ = v.(bool)
			}
		}
		t.Fields[i] = f
		s.tables[tableID] = t
		return f, nil
	}
	return types.Field{}, fmt.Errorf("field %s not found in table %s", fieldID, tableID)
}

func (s *Store) DeleteField(ctx context.Context, tableID, fieldID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok {
		return fmt.Errorf("table %s not found", tableID)
	}
	for i, f := range t.Fields {
		if f.ID == fieldID {
			t.Fields = append(t.Fields[:i], t.Fields[i+1:]...)
			s.tables[tableID] = t
			return nil
		}
	}
	return fmt.Errorf("field %s not found in table %s", fieldID, tableID)
}

func (s *Store) CreateTableFull(ctx context.Context, workspaceID string, spec actions.TableFullSpec) (actions.TableFullResult, error) {
	if s.DisableFullRPC {
		return actions.TableFullResult{}, actions.ErrUnsupported
	}

	fields := make([]types.Field, len(spec.Fields))
	copy(fields, spec.Fields)
	hasPrimary := false
	for i := range fields {
		if fields[i].ID == "" {
			fields[i].ID = types.GenerateFieldID()
		}
		hasPrimary = hasPrimary || fields[i].Primary
	}
	if !hasPrimary && len(fields) > 0 {
		fields[0].Primary = true
	}

	t := types.Table{
		ID:          types.GenerateTableID(),
		WorkspaceID: workspaceID,
		Name:        spec.Name,
		Fields:      fields,
		CreatedAt:   time.Now(),
	}
	s.mu.Lock()
	s.tables[t.ID] = t
	s.mu.Unlock()

	rows, err := s.InsertRows(ctx, t.ID, spec.Rows)
	if err != nil {
		return actions.TableFullResult{}, err
	}
	var blk types.Block
	if spec.TabID != "" {
		blk, err = s.CreateBlock(ctx, types.Block{
			WorkspaceID: workspaceID,
			TabID:       spec.TabID,
			Type:        "table",
			RefID:       t.ID,
			Title:       spec.Name,
		})
		if err != nil {
			return actions.TableFullResult{}, err
		}
	}
	full, err := s.GetTable(ctx, t.ID)
	if err != nil {
		return actions.TableFullResult{}, err
	}
	res := actions.TableFullResult{Table: full, Block: blk}
	for _, r := range rows {
		res.RowIDs = append(res.RowIDs, r.ID)
	}
	return res, nil
}

// Rows

func (s *Store) InsertRows(ctx context.Context, tableID string, cells []map[string]any) ([]types.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[tableID]; !ok {
		return nil, fmt.Errorf("table %s not found", tableID)
	}
	out := make([]types.Row, 0, len(cells))
	for _, c := range cells {
		r := types.Row{
			ID:        types.GenerateRowID(),
			TableID:   tableID,
			Cells:     c,
			CreatedAt: time.Now(),
		}
		if r.Cells == nil {
			r.Cells = make(map[string]any)
		}
		s.rows[r.ID] = r
		s.rowOrder[tableID] = append(s.rowOrder[tableID], r.ID)
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) UpdateRow(ctx context.Context, tableID, rowID string, cells map[string]any) (types.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[rowID]
	if !ok || r.TableID != tableID {
		return types.Row{}, fmt.Errorf("row %s not found in table %s", rowID, tableID)
	}
	// Copy on write: rows handed out by FetchRows must not change under the
	// caller.
	next := make(map[string]any, len(r.Cells)+len(cells))
	for k, v := range r.Cells {
		next[k] = v
	}
	for k, v := range cells {
		next[k] = v
	}
	r.Cells = next
	s.rows[rowID] = r
	return r, nil
}

func (s *Store) DeleteRows(ctx context.Context, tableID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		r, ok := s.rows[id]
		if !ok || r.TableID != tableID {
			return fmt.Errorf("row %s not found in table %s", id, tableID)
		}
		delete(s.rows, id)
	}
	order := s.rowOrder[tableID][:0]
	for _, rid := range s.rowOrder[tableID] {
		if _, ok := s.rows[rid]; ok {
			order = append(order, rid)
		}
	}
	s.rowOrder[tableID] = order
	return nil
}

func (s *Store) FetchRows(ctx context.Context, tableID string, page actions.Page) (actions.RowPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.tables[tableID]; !ok {
		return actions.RowPage{}, fmt.Errorf("table %s not found", tableID)
	}
	order := s.rowOrder[tableID]
	total := len(order)

	offset := page.Offset
	if offset > total {
		offset = total
	}
	end := total
	if page.Limit > 0 && offset+page.Limit < total {
		end = offset + page.Limit
	}

	out := make([]types.Row, 0, end-offset)
	for _, rid := range order[offset:end] {
		out = append(out, s.rows[rid])
	}
	return actions.RowPage{Rows: out, Total: total, HasMore: end < total}, nil
}

// Blocks

func (s *Store) CreateBlock(ctx context.Context, b types.Block) (types.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = types.GenerateBlockID()
	}
	s.blocks[b.ID] = b
	return b, nil
}

func (s *Store) MoveBlock(ctx context.Context, id, tabID string, position int) (types.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocks[id]
	if !ok {
		return types.Block{}, fmt.Errorf("block %s not found", id)
	}
	if tabID != "" {
		b.TabID = tabID
	}
	b.Position = position
	s.blocks[id] = b
	return b, nil
}

func (s *Store) DeleteBlock(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blocks[id]; !ok {
		return fmt.Errorf("block %s not found", id)
	}
	delete(s.blocks, id)
	return nil
}

func (s *Store) ListBlocks(ctx context.Context, tabID string) ([]types.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Block
	for _, b := range s.blocks {
		if b.TabID == tabID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) GetBlock(ctx context.Context, id string) (types.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[id]
	if !ok {
		return types.Block{}, fmt.Errorf("block %s not found", id)
	}
	return b, nil
}

// Tabs

func (s *Store) CreateTab(ctx context.Context, t types.Tab) (types.Tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = types.GenerateTabID()
	}
	s.tabs[t.ID] = t
	return t, nil
}

func (s *Store) RenameTab(ctx context.Context, id, name string) (types.Tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tabs[id]
	if !ok {
		return types.Tab{}, fmt.Errorf("tab %s not found", id)
	}
	t.Name = name
	s.tabs[id] = t
	return t, nil
}

func (s *Store) ListTabs(ctx context.Context, workspaceID string) ([]types.Tab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Tab
	for _, t := range s.tabs {
		if t.WorkspaceID == workspaceID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) SearchTabs(ctx context.Context, workspaceID, query string) ([]types.Tab, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Tab
	for _, t := range s.tabs {
		if t.WorkspaceID == workspaceID && (query == "" || containsFold(t.Name, query)) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Timeline

func (s *Store) CreateTimelineEntry(ctx context.Context, e types.TimelineEntry) (types.TimelineEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = types.GenerateTimelineID()
	}
	s.timeline[e.ID] = e
	return e, nil
}

func (s *Store) UpdateTimelineEntry(ctx context.Context, id string, patch map[string]any) (types.TimelineEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.timeline[id]
	if !ok {
		return types.TimelineEntry{}, fmt.Errorf("timeline entry %s not found", id)
	}
	for k, v := range patch {
		switch k {
		case "title":
			e.Title, _ = v.(string)
		case "start_date":
			e.StartDate, _ = v.(string)
		case "end_date":
			e.EndDate, _ = v.(string)
		case "color":
			e.Color, _ = v.(string)
		case "project_id":
			e.ProjectID, _ = v.(string)
		}
	}
	s.timeline[id] = e
	return e, nil
}

func (s *Store) DeleteTimelineEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timeline[id]; !ok {
		return fmt.Errorf("timeline entry %s not found", id)
	}
	delete(s.timeline, id)
	return nil
}

func (s *Store) ListTimelineEntries(ctx context.Context, workspaceID string) ([]types.TimelineEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.TimelineEntry
	for _, e := range s.timeline {
		if e.WorkspaceID == workspaceID {
			out = append(out, e)
		}
	}
	return out, nil
}
