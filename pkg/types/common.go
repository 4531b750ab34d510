package types

import (
	"regexp"

	"github.com/oklog/ulid/v2"
)

// JSONSchema represents a JSON Schema definition.
type JSONSchema map[string]any

// ID Generation Helpers

func GenerateID(prefix string) string {
	return prefix + "_" + ulid.Make().String()
}

func GenerateTaskID() string     { return GenerateID("tsk") }
func GenerateProjectID() string  { return GenerateID("prj") }
func GenerateTableID() string    { return GenerateID("tbl") }
func GenerateFieldID() string    { return GenerateID("fld") }
func GenerateRowID() string      { return GenerateID("row") }
func GenerateOptionID() string   { return GenerateID("opt") }
func GenerateDocID() string      { return GenerateID("doc") }
func GenerateClientID() string   { return GenerateID("cli") }
func GenerateBlockID() string    { return GenerateID("blk") }
func GenerateTabID() string      { return GenerateID("tab") }
func GenerateMemberID() string   { return GenerateID("usr") }
func GenerateTimelineID() string { return GenerateID("tml") }

// idPattern matches the prefix_ULID shape produced by GenerateID.
var idPattern = regexp.MustCompile(`^[a-z]{3}_[0-9A-HJKMNP-TV-Z]{26}$`)

// WellFormedID reports whether s looks like an identifier this system issued.
// Used to reject free text accidentally passed where an id is required.
func WellFormedID(s string) bool {
	return idPattern.MatchString(s)
}
