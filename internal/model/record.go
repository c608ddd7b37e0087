package model

import "time"

// FieldValue is one (column, value) pair of an imported row, in schema order.
type FieldValue struct {
	Name  string
	Value string
}

// WorkingRecord is one imported transaction row in the mutable staging store.
// Date, Description, Vendor and Amount are filled from the semantic role map
// where a role matched; Fields always carries the complete row.
type WorkingRecord struct {
	CreatedAt   time.Time
	ID          string
	Date        string
	Description string
	Vendor      string
	Amount      string
	Fields      []FieldValue
}

// HistoryRecord is an immutable, promoted copy of a working record plus the
// tag that applied at promotion time.
type HistoryRecord struct {
	PromotedAt  time.Time
	Date        string
	Description string
	Vendor      string
	Amount      string
	Tag         string
	ID          int64
}
