package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/tagwise/tagwise/internal/model"
)

// InsertTaggedIntoHistory copies every tagged working record into history,
// skipping rows whose (date, description, vendor, amount) tuple already
// exists there. Returns the number of rows inserted.
func (s *SQLiteStorage) InsertTaggedIntoHistory(ctx context.Context, promotedAt time.Time) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.insertTaggedIntoHistoryTx(ctx, s.db, promotedAt)
}

func (s *SQLiteStorage) insertTaggedIntoHistoryTx(ctx context.Context, q queryable, promotedAt time.Time) (int, error) {
	result, err := q.ExecContext(ctx, `
		INSERT INTO history_records (date, description, vendor, amount, tag, promoted_at)
		SELECT w.date, w.description, w.vendor, w.amount, t.tag, ?
		FROM working_records w
		JOIN tag_rules t ON w.description = t.description
		WHERE NOT EXISTS (
			SELECT 1 FROM history_records h
			WHERE h.date = w.date
			  AND h.description = w.description
			  AND h.vendor = w.vendor
			  AND h.amount = w.amount
		)
	`, promotedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert tagged records into history: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count inserted history rows: %w", err)
	}
	return int(inserted), nil
}

// DeleteTaggedWorkingRecords removes every working record whose description
// has a tag rule, regardless of whether its copy was inserted into history.
func (s *SQLiteStorage) DeleteTaggedWorkingRecords(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.deleteTaggedWorkingRecordsTx(ctx, s.db)
}

func (s *SQLiteStorage) deleteTaggedWorkingRecordsTx(ctx context.Context, q queryable) (int, error) {
	result, err := q.ExecContext(ctx, `
		DELETE FROM working_records
		WHERE description IN (SELECT description FROM tag_rules)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tagged working records: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted working rows: %w", err)
	}
	return int(deleted), nil
}

// GetHistoryRecords retrieves every promoted record ordered by date.
func (s *SQLiteStorage) GetHistoryRecords(ctx context.Context) ([]model.HistoryRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getHistoryRecordsTx(ctx, s.db)
}

func (s *SQLiteStorage) getHistoryRecordsTx(ctx context.Context, q queryable) ([]model.HistoryRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, date, description, vendor, amount, tag, promoted_at
		FROM history_records
		ORDER BY date, description
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.HistoryRecord
	for rows.Next() {
		var record model.HistoryRecord
		err := rows.Scan(
			&record.ID,
			&record.Date,
			&record.Description,
			&record.Vendor,
			&record.Amount,
			&record.Tag,
			&record.PromotedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// SaveHistoryRecord inserts one history record unless its natural key
// already exists. Reports whether a row was actually written.
func (s *SQLiteStorage) SaveHistoryRecord(ctx context.Context, record *model.HistoryRecord) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateHistoryRecord(record); err != nil {
		return false, err
	}
	return s.saveHistoryRecordTx(ctx, s.db, record)
}

func (s *SQLiteStorage) saveHistoryRecordTx(ctx context.Context, q queryable, record *model.HistoryRecord) (bool, error) {
	if record.PromotedAt.IsZero() {
		record.PromotedAt = time.Now().UTC()
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO history_records (date, description, vendor, amount, tag, promoted_at)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM history_records h
			WHERE h.date = ? AND h.description = ? AND h.vendor = ? AND h.amount = ?
		)
	`, record.Date, record.Description, record.Vendor, record.Amount, record.Tag, record.PromotedAt,
		record.Date, record.Description, record.Vendor, record.Amount)
	if err != nil {
		return false, fmt.Errorf("failed to save history record: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check history insert: %w", err)
	}
	return inserted > 0, nil
}

// ClearHistory deletes every history record.
func (s *SQLiteStorage) ClearHistory(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.clearTableTx(ctx, s.db, "history_records")
}
