package types

import (
	"strings"
	"time"
)

// FieldType is the semantic type of a table column.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldDate        FieldType = "date"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multi_select"
	FieldStatus      FieldType = "status"
	FieldPriority    FieldType = "priority"
	FieldEmail       FieldType = "email"
	FieldURL         FieldType = "url"
	FieldPhone       FieldType = "phone"
	FieldPerson      FieldType = "person"
)

// SelectLike reports whether values of this type are drawn from a configured
// option set.
func (t FieldType) SelectLike() bool {
	switch t {
	case FieldSelect, FieldMultiSelect, FieldStatus, FieldPriority:
		return true
	}
	return false
}

// TextLeaning reports whether the type is stored as free text rather than a
// structured value. Used when picking a placeholder column to repurpose.
func (t FieldType) TextLeaning() bool {
	switch t {
	case FieldText, FieldEmail, FieldURL, FieldPhone:
		return true
	}
	return false
}

// FieldOption is one entry of a select-like field's option set.
type FieldOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
	Order int    `json:"order"`
}

// FieldConfig holds type-specific configuration. For select-like fields the
// Options list is ordered; labels are case-insensitively unique.
type FieldConfig struct {
	Options []FieldOption `json:"options,omitempty"`
}

// Field is one column of a dynamic table.
type Field struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Type    FieldType   `json:"type"`
	Config  FieldConfig `json:"config,omitempty"`
	Primary bool        `json:"primary,omitempty"`
	Auto    bool        `json:"auto,omitempty"` // auto-generated placeholder, eligible for reuse
}

// OptionByValue finds an option matching v by id or case-insensitive label.
func (f Field) OptionByValue(v string) (FieldOption, bool) {
	for _, o := range f.Config.Options {
		if o.ID == v || strings.EqualFold(o.Label, v) {
			return o, true
		}
	}
	return FieldOption{}, false
}

// Table is a dynamic-schema grid of rows.
type Table struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	Fields      []Field   `json:"fields"`
	CreatedAt   time.Time `json:"created_at"`
}

// PrimaryField returns the table's primary field, falling back to the first
// field when none is flagged.
func (t Table) PrimaryField() (Field, bool) {
	for _, f := range t.Fields {
		if f.Primary {
			return f, true
		}
	}
	if len(t.Fields) > 0 {
		return t.Fields[0], true
	}
	return Field{}, false
}

// FieldByID looks a field up by identifier.
func (t Table) FieldByID(id string) (Field, bool) {
	for _, f := range t.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Row is one record of a table. Cells is keyed by field id; cell values are
// scalars, arrays (multi-select) or {id,name} relation objects.
type Row struct {
	ID        string         `json:"id"`
	TableID   string         `json:"table_id"`
	Cells     map[string]any `json:"cells"`
	CreatedAt time.Time      `json:"created_at"`
}
