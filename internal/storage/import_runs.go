package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tagwise/tagwise/internal/model"
)

// SaveImportRun persists the diagnostics of one ingestion run.
func (s *SQLiteStorage) SaveImportRun(ctx context.Context, run *model.ImportRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateImportRun(run); err != nil {
		return err
	}
	return s.saveImportRunTx(ctx, s.db, run)
}

func (s *SQLiteStorage) saveImportRunTx(ctx context.Context, q queryable, run *model.ImportRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	columnsJSON, err := json.Marshal(run.Columns)
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}
	rolesJSON, err := json.Marshal(run.Roles)
	if err != nil {
		return fmt.Errorf("failed to encode roles: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO import_runs (id, source, columns, roles, stored, adjusted, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Source, string(columnsJSON), string(rolesJSON),
		run.Stored, run.Adjusted, run.Failed, run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save import run: %w", err)
	}
	return nil
}

// GetImportRuns retrieves the most recent import runs, newest first.
// A non-positive limit returns all runs.
func (s *SQLiteStorage) GetImportRuns(ctx context.Context, limit int) ([]model.ImportRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getImportRunsTx(ctx, s.db, limit)
}

func (s *SQLiteStorage) getImportRunsTx(ctx context.Context, q queryable, limit int) ([]model.ImportRun, error) {
	query := `
		SELECT id, source, columns, roles, stored, adjusted, failed, created_at
		FROM import_runs
		ORDER BY created_at DESC
	`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query import runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.ImportRun
	for rows.Next() {
		var run model.ImportRun
		var columnsJSON, rolesJSON string
		err := rows.Scan(
			&run.ID,
			&run.Source,
			&columnsJSON,
			&rolesJSON,
			&run.Stored,
			&run.Adjusted,
			&run.Failed,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		if err := json.Unmarshal([]byte(columnsJSON), &run.Columns); err != nil {
			return nil, fmt.Errorf("failed to decode columns for run %s: %w", run.ID, err)
		}
		if err := json.Unmarshal([]byte(rolesJSON), &run.Roles); err != nil {
			return nil, fmt.Errorf("failed to decode roles for run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
