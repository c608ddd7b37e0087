package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tagwise/tagwise/internal/common"
	"github.com/tagwise/tagwise/internal/model"
	"github.com/tagwise/tagwise/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// queryable abstracts over *sql.DB and *sql.Tx so the same query helpers
// can run inside or outside a transaction.
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// A busy or locked database file is worth a few attempts before
	// giving up; callers own any longer-lived retry policy.
	pingErr := common.WithRetry(context.Background(), func() error {
		return db.Ping()
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: 200 * time.Millisecond})
	if pingErr != nil {
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Storage methods delegate to the shared helpers with the transaction.
func (t *sqliteTransaction) SaveWorkingRecord(ctx context.Context, record *model.WorkingRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateWorkingRecord(record); err != nil {
		return err
	}
	return t.storage.saveWorkingRecordTx(ctx, t.tx, record)
}

func (t *sqliteTransaction) GetUntaggedDescriptions(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getUntaggedDescriptionsTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetDistinctDescriptions(ctx context.Context, search string) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getDistinctDescriptionsTx(ctx, t.tx, search)
}

func (t *sqliteTransaction) GetWorkingStats(ctx context.Context) (*service.WorkingStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getWorkingStatsTx(ctx, t.tx)
}

func (t *sqliteTransaction) ClearWorkingRecords(ctx context.Context) error {
	return t.storage.clearTableTx(ctx, t.tx, "working_records")
}

func (t *sqliteTransaction) GetTagRule(ctx context.Context, description string) (*model.TagRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(description, "description"); err != nil {
		return nil, err
	}
	return t.storage.getTagRuleTx(ctx, t.tx, description)
}

func (t *sqliteTransaction) SaveTagRule(ctx context.Context, rule *model.TagRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTagRule(rule); err != nil {
		return err
	}
	return t.storage.saveTagRuleTx(ctx, t.tx, rule)
}

func (t *sqliteTransaction) GetAllTagRules(ctx context.Context) ([]model.TagRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getAllTagRulesTx(ctx, t.tx)
}

func (t *sqliteTransaction) ClearTagRules(ctx context.Context) error {
	return t.storage.clearTableTx(ctx, t.tx, "tag_rules")
}

func (t *sqliteTransaction) InsertTaggedIntoHistory(ctx context.Context, promotedAt time.Time) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return t.storage.insertTaggedIntoHistoryTx(ctx, t.tx, promotedAt)
}

func (t *sqliteTransaction) DeleteTaggedWorkingRecords(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return t.storage.deleteTaggedWorkingRecordsTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetHistoryRecords(ctx context.Context) ([]model.HistoryRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getHistoryRecordsTx(ctx, t.tx)
}

func (t *sqliteTransaction) SaveHistoryRecord(ctx context.Context, record *model.HistoryRecord) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateHistoryRecord(record); err != nil {
		return false, err
	}
	return t.storage.saveHistoryRecordTx(ctx, t.tx, record)
}

func (t *sqliteTransaction) ClearHistory(ctx context.Context) error {
	return t.storage.clearTableTx(ctx, t.tx, "history_records")
}

func (t *sqliteTransaction) SaveImportRun(ctx context.Context, run *model.ImportRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateImportRun(run); err != nil {
		return err
	}
	return t.storage.saveImportRunTx(ctx, t.tx, run)
}

func (t *sqliteTransaction) GetImportRuns(ctx context.Context, limit int) ([]model.ImportRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getImportRunsTx(ctx, t.tx, limit)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
