package schema

import (
	"testing"

	"github.com/pythagonacci/trak/pkg/types"
)

func TestInferFromFieldName(t *testing.T) {
	cases := []struct {
		name string
		want types.FieldType
	}{
		{"Priority", types.FieldPriority},
		{"Status", types.FieldStatus},
		{"Due date", types.FieldDate},
		{"Contact email", types.FieldEmail},
		{"Website URL", types.FieldURL},
		{"Phone", types.FieldPhone},
		{"Deal amount", types.FieldNumber},
		{"Tags", types.FieldMultiSelect},
	}
	for _, c := range cases {
		inf := Infer(c.name, nil)
		if inf.Type != c.want {
			t.Errorf("Infer(%q) = %s, want %s", c.name, inf.Type, c.want)
		}
	}
}

func TestInferFromValues(t *testing.T) {
	cases := []struct {
		label   string
		samples []any
		want    types.FieldType
	}{
		{"numbers", []any{"10k", "$1,200", "42"}, types.FieldNumber},
		{"dates", []any{"2026-01-02", "01/15/2026"}, types.FieldDate},
		{"emails", []any{"a@x.io", "b@y.io"}, types.FieldEmail},
		{"urls", []any{"https://x.io", "www.y.io"}, types.FieldURL},
		{"priorities", []any{"High", "Low", "high"}, types.FieldPriority},
		{"statuses", []any{"Todo", "In Progress", "Done"}, types.FieldStatus},
		{"repeated shorts", []any{"Red", "Blue", "Red", "Blue"}, types.FieldSelect},
		{"arrays", []any{[]any{"a", "b"}, []any{"c"}}, types.FieldMultiSelect},
		{"unique prose", []any{"alpha", "beta", "gamma", "delta"}, types.FieldText},
		{"empty", nil, types.FieldText},
	}
	for _, c := range cases {
		inf := Infer("", c.samples)
		if inf.Type != c.want {
			t.Errorf("%s: got %s, want %s", c.label, inf.Type, c.want)
		}
	}
}

func TestBuildOptionsDedupeAndColors(t *testing.T) {
	opts := BuildOptions(types.FieldPriority, []string{"High", "high", "Low", "HIGH", "Medium"})
	if len(opts) != 3 {
		t.Fatalf("expected 3 deduplicated options, got %d", len(opts))
	}
	if opts[0].Label != "High" {
		t.Errorf("first occurrence casing should win, got %q", opts[0].Label)
	}
	byLabel := map[string]types.FieldOption{}
	for _, o := range opts {
		byLabel[o.Label] = o
		if o.ID == "" {
			t.Errorf("option %q has no id", o.Label)
		}
	}
	if byLabel["High"].Color != "orange" || byLabel["Low"].Color != "gray" || byLabel["Medium"].Color != "yellow" {
		t.Errorf("fixed priority colors not applied: %+v", opts)
	}
}

func TestBuildOptionsPaletteRotation(t *testing.T) {
	opts := BuildOptions(types.FieldSelect, []string{"One", "Two", "Three"})
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}
	seen := map[string]bool{}
	for i, o := range opts {
		if o.Color == "" {
			t.Fatalf("option %q has no color", o.Label)
		}
		if o.Order != i {
			t.Errorf("option %q order = %d, want %d", o.Label, o.Order, i)
		}
		if seen[o.Color] {
			t.Errorf("palette repeated color %q too early", o.Color)
		}
		seen[o.Color] = true
	}
}

func TestAppendOptionsSkipsExistingLabels(t *testing.T) {
	existing := BuildOptions(types.FieldStatus, []string{"Todo", "Done"})
	merged := AppendOptions(types.FieldStatus, existing, []string{"todo", "Blocked", "DONE", "Blocked"})
	if len(merged) != 3 {
		t.Fatalf("expected 3 options after merge, got %d", len(merged))
	}
	if merged[2].Label != "Blocked" || merged[2].Color != "red" {
		t.Errorf("appended option wrong: %+v", merged[2])
	}
	if merged[0].ID != existing[0].ID {
		t.Errorf("existing option ids must be preserved")
	}
}

func TestParseNumberSuffixes(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{"10k", 10_000},
		{"2.5m", 2_500_000},
		{"1b", 1_000_000_000},
		{"$1,200", 1200},
		{"42", 42},
		{42.0, 42},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		if !ok {
			t.Fatalf("ParseNumber(%v) failed", c.in)
		}
		if got != c.want {
			t.Errorf("ParseNumber(%v) = %v, want %v", c.in, got, c.want)
		}
	}
	if _, ok := ParseNumber("not a number"); ok {
		t.Fatalf("garbage should not parse")
	}
	if _, ok := ParseNumber(nil); ok {
		t.Fatalf("nil should not parse")
	}
}
