package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tagwise/tagwise/internal/model"
	"github.com/tagwise/tagwise/internal/service"
)

// SaveWorkingRecord stores a single imported row. Each row is its own store
// attempt so the loader can isolate per-row failures.
func (s *SQLiteStorage) SaveWorkingRecord(ctx context.Context, record *model.WorkingRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateWorkingRecord(record); err != nil {
		return err
	}
	return s.saveWorkingRecordTx(ctx, s.db, record)
}

func (s *SQLiteStorage) saveWorkingRecordTx(ctx context.Context, q queryable, record *model.WorkingRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	fieldsJSON, err := json.Marshal(record.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode record fields: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO working_records (id, date, description, vendor, amount, fields, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.Date, record.Description, record.Vendor, record.Amount, string(fieldsJSON), record.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save working record %s: %w", record.ID, err)
	}
	return nil
}

// GetUntaggedDescriptions returns the distinct non-empty descriptions in the
// working set that have no tag rule yet.
func (s *SQLiteStorage) GetUntaggedDescriptions(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getUntaggedDescriptionsTx(ctx, s.db)
}

func (s *SQLiteStorage) getUntaggedDescriptionsTx(ctx context.Context, q queryable) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT DISTINCT w.description
		FROM working_records w
		LEFT JOIN tag_rules t ON w.description = t.description
		WHERE t.description IS NULL AND w.description != ''
		ORDER BY w.description
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query untagged descriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanStrings(rows)
}

// GetDistinctDescriptions returns distinct non-empty working descriptions,
// optionally filtered by a case-insensitive substring search.
func (s *SQLiteStorage) GetDistinctDescriptions(ctx context.Context, search string) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getDistinctDescriptionsTx(ctx, s.db, search)
}

func (s *SQLiteStorage) getDistinctDescriptionsTx(ctx context.Context, q queryable, search string) ([]string, error) {
	query := `
		SELECT DISTINCT description FROM working_records
		WHERE description != ''
	`
	var args []any
	if search != "" {
		query += ` AND description LIKE '%' || ? || '%' ESCAPE '\'`
		args = append(args, escapeLike(search))
	}
	query += ` ORDER BY description`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query descriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanStrings(rows)
}

// GetWorkingStats gathers the counters shown in user-facing summaries.
func (s *SQLiteStorage) GetWorkingStats(ctx context.Context) (*service.WorkingStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getWorkingStatsTx(ctx, s.db)
}

func (s *SQLiteStorage) getWorkingStatsTx(ctx context.Context, q queryable) (*service.WorkingStats, error) {
	stats := &service.WorkingStats{}

	counts := []struct {
		dest  *int
		query string
	}{
		{&stats.TotalRecords, `SELECT COUNT(*) FROM working_records`},
		{&stats.DistinctDescriptions, `SELECT COUNT(DISTINCT description) FROM working_records`},
		{&stats.TaggedDescriptions, `
			SELECT COUNT(*) FROM tag_rules t
			WHERE EXISTS (SELECT 1 FROM working_records w WHERE w.description = t.description)`},
		{&stats.TaggedRecords, `
			SELECT COUNT(*) FROM working_records w
			JOIN tag_rules t ON w.description = t.description`},
		{&stats.HistoryRecords, `SELECT COUNT(*) FROM history_records`},
		{&stats.HistoryTags, `SELECT COUNT(DISTINCT tag) FROM history_records`},
	}

	for _, c := range counts {
		if err := q.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to gather stats: %w", err)
		}
	}
	return stats, nil
}

// ClearWorkingRecords deletes every row in the working set.
func (s *SQLiteStorage) ClearWorkingRecords(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.clearTableTx(ctx, s.db, "working_records")
}

func (s *SQLiteStorage) clearTableTx(ctx context.Context, q queryable, table string) error {
	switch table {
	case "working_records", "tag_rules", "history_records", "import_runs":
		// Known tables only; the name is interpolated below.
	default:
		return fmt.Errorf("refusing to clear unknown table %q", table)
	}
	if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	return nil
}

// scanStrings collects a single-column string result set.
func scanStrings(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// escapeLike escapes LIKE wildcards so a search term is matched literally.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}
