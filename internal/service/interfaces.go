// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/tagwise/tagwise/internal/model"
)

// LoadStats reports the outcome of one row-loading pass. Counters combine
// with plain addition, so partial stats from concurrent loaders can be
// merged safely.
type LoadStats struct {
	Stored   int
	Adjusted int
	Failed   int
}

// Add returns the element-wise sum of two stat sets.
func (s LoadStats) Add(other LoadStats) LoadStats {
	return LoadStats{
		Stored:   s.Stored + other.Stored,
		Adjusted: s.Adjusted + other.Adjusted,
		Failed:   s.Failed + other.Failed,
	}
}

// WorkingStats summarizes the current tagging state for user-facing output.
type WorkingStats struct {
	TotalRecords         int
	DistinctDescriptions int
	TaggedDescriptions   int
	TaggedRecords        int
	HistoryRecords       int
	HistoryTags          int
}

// TagSummaryRow is one line of a per-tag spending summary.
type TagSummaryRow struct {
	Tag   string
	Total float64
	Count int
}

// MonthSummary groups per-tag totals under one calendar month (YYYY-MM).
type MonthSummary struct {
	Month string
	Rows  []TagSummaryRow
	Total float64
}

// RetryOptions configures retry behavior for transient failures.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Working record operations
	SaveWorkingRecord(ctx context.Context, record *model.WorkingRecord) error
	GetUntaggedDescriptions(ctx context.Context) ([]string, error)
	GetDistinctDescriptions(ctx context.Context, search string) ([]string, error)
	GetWorkingStats(ctx context.Context) (*WorkingStats, error)
	ClearWorkingRecords(ctx context.Context) error

	// Tag rule operations. GetTagRule returns common.ErrNotFound when no
	// rule exists for the description.
	GetTagRule(ctx context.Context, description string) (*model.TagRule, error)
	SaveTagRule(ctx context.Context, rule *model.TagRule) error
	GetAllTagRules(ctx context.Context) ([]model.TagRule, error)
	ClearTagRules(ctx context.Context) error

	// History operations
	InsertTaggedIntoHistory(ctx context.Context, promotedAt time.Time) (int, error)
	DeleteTaggedWorkingRecords(ctx context.Context) (int, error)
	GetHistoryRecords(ctx context.Context) ([]model.HistoryRecord, error)
	SaveHistoryRecord(ctx context.Context, record *model.HistoryRecord) (bool, error)
	ClearHistory(ctx context.Context) error

	// Import run diagnostics
	SaveImportRun(ctx context.Context, run *model.ImportRun) error
	GetImportRuns(ctx context.Context, limit int) ([]model.ImportRun, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}
