package model

import "time"

// ImportRun records one ingestion of a source file: the schema that was
// inferred for it, the semantic roles that matched, and the salvage
// counters. Kept for diagnostics only; the loaded rows do not reference it.
type ImportRun struct {
	CreatedAt time.Time
	Roles     RoleMap
	ID        string
	Source    string
	Columns   []string
	Stored    int
	Adjusted  int
	Failed    int
}
