package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tagwise/tagwise/internal/common"
	"github.com/tagwise/tagwise/internal/model"
)

// GetTagRule retrieves a tag rule by its description key.
func (s *SQLiteStorage) GetTagRule(ctx context.Context, description string) (*model.TagRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(description, "description"); err != nil {
		return nil, err
	}
	return s.getTagRuleTx(ctx, s.db, description)
}

func (s *SQLiteStorage) getTagRuleTx(ctx context.Context, q queryable, description string) (*model.TagRule, error) {
	var rule model.TagRule

	err := q.QueryRowContext(ctx, `
		SELECT description, tag, source, created_at, updated_at
		FROM tag_rules
		WHERE description = ?
	`, description).Scan(
		&rule.Description,
		&rule.Tag,
		&rule.Source,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag rule: %w", err)
	}

	return &rule, nil
}

// SaveTagRule upserts a tag rule. Saving the same (description, tag) pair
// again leaves a single rule in place.
func (s *SQLiteStorage) SaveTagRule(ctx context.Context, rule *model.TagRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTagRule(rule); err != nil {
		return err
	}
	return s.saveTagRuleTx(ctx, s.db, rule)
}

func (s *SQLiteStorage) saveTagRuleTx(ctx context.Context, q queryable, rule *model.TagRule) error {
	if rule.Source == "" {
		rule.Source = model.TagSourceManual
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO tag_rules (description, tag, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(description) DO UPDATE SET
			tag = excluded.tag,
			source = excluded.source,
			updated_at = excluded.updated_at
	`, rule.Description, rule.Tag, string(rule.Source), rule.CreatedAt, rule.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to save tag rule: %w", err)
	}
	return nil
}

// GetAllTagRules retrieves every tag rule ordered by tag then description.
func (s *SQLiteStorage) GetAllTagRules(ctx context.Context) ([]model.TagRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAllTagRulesTx(ctx, s.db)
}

func (s *SQLiteStorage) getAllTagRulesTx(ctx context.Context, q queryable) ([]model.TagRule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT description, tag, source, created_at, updated_at
		FROM tag_rules
		ORDER BY tag, description
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tag rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.TagRule
	for rows.Next() {
		var rule model.TagRule
		err := rows.Scan(
			&rule.Description,
			&rule.Tag,
			&rule.Source,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag rule: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// ClearTagRules deletes every tag rule.
func (s *SQLiteStorage) ClearTagRules(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.clearTableTx(ctx, s.db, "tag_rules")
}
