package resolve

import (
	"testing"

	"github.com/pythagonacci/trak/pkg/types"
)

func demoTable() types.Table {
	return types.Table{
		ID:   "tbl_01HZDEMO00000000000000AAAA",
		Name: "Deals",
		Fields: []types.Field{
			{ID: "fld_1", Name: "Deal", Type: types.FieldText, Primary: true},
			{ID: "fld_2", Name: "Stage", Type: types.FieldSelect},
			{ID: "fld_3", Name: "Contract value", Type: types.FieldNumber},
		},
	}
}

func TestFieldByNameTiers(t *testing.T) {
	table := demoTable()

	cases := []struct {
		key  string
		want string
	}{
		{"Deal", "fld_1"},  // exact
		{"stage", "fld_2"}, // exact, case-insensitive
		{"contract", "fld_3"}, // prefix
		{"value", "fld_3"},    // substring
		{"title", "fld_1"},    // primary alias
		{"name", "fld_1"},     // primary alias
	}
	for _, c := range cases {
		f, ok := FieldByName(table, c.key)
		if !ok {
			t.Fatalf("key %q matched nothing", c.key)
		}
		if f.ID != c.want {
			t.Errorf("key %q bound %s, want %s", c.key, f.ID, c.want)
		}
	}

	if _, ok := FieldByName(table, "owner"); ok {
		t.Fatalf("key with no match should not bind")
	}
}

func TestMapRowKeys(t *testing.T) {
	table := demoTable()

	cells, unmatched := MapRowKeys(table, map[string]any{
		"name":    "Acme renewal",
		"Stage":   "Open",
		"bogus":   "x",
		"fld_3":   1200.0, // already a field id
	})
	if len(unmatched) != 1 || unmatched[0] != "bogus" {
		t.Fatalf("unmatched = %v", unmatched)
	}
	if cells["fld_1"] != "Acme renewal" {
		t.Errorf("primary alias did not map: %v", cells)
	}
	if cells["fld_2"] != "Open" {
		t.Errorf("exact name did not map: %v", cells)
	}
	if cells["fld_3"] != 1200.0 {
		t.Errorf("field id key should pass through: %v", cells)
	}
}
