package types

// UndoAction says how a step is replayed.
type UndoAction string

const (
	UndoUpsert UndoAction = "upsert"
	UndoDelete UndoAction = "delete"
)

// UndoStep is a reversible unit keyed to one underlying storage table.
// Steps are appended to an external journal owned by the caller and never
// mutated after being queued.
type UndoStep struct {
	Action     UndoAction       `json:"action"`
	Table      string           `json:"table"`
	Rows       []map[string]any `json:"rows,omitempty"`        // for upsert: full pre-images
	IDs        []string         `json:"ids,omitempty"`         // for delete: created ids
	OnConflict string           `json:"on_conflict,omitempty"` // upsert conflict key
	Where      map[string]any   `json:"where,omitempty"`       // delete predicate
}

// UndoSink receives reversible steps for successful mutating calls. A call
// that could not identify a reversible state records itself as skipped
// instead of queueing an empty, misleading entry.
type UndoSink interface {
	Queue(steps ...UndoStep)
	Skip(toolName string)
}
