package model

import "time"

// TagSource indicates how a tag rule was created.
type TagSource string

const (
	// TagSourceManual indicates the rule was set explicitly via CLI command.
	TagSourceManual TagSource = "MANUAL"
	// TagSourceAuto indicates the rule was created by auto-tag propagation.
	TagSourceAuto TagSource = "AUTO"
	// TagSourceBulk indicates the rule was created by a tag-all search action.
	TagSourceBulk TagSource = "BULK"
	// TagSourceImport indicates the rule was loaded from a tags CSV file.
	TagSourceImport TagSource = "IMPORT"
)

// TagRule maps a transaction description to a tag. Description is the
// unique key; reapplying the same pair is a no-op.
type TagRule struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Description string
	Tag         string
	Source      TagSource
}
