// Package storage provides the data persistence layer for the tagwise application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tagwise/tagwise/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidRecord    = errors.New("invalid working record")
	ErrInvalidTagRule   = errors.New("invalid tag rule")
	ErrInvalidHistory   = errors.New("invalid history record")
	ErrInvalidImportRun = errors.New("invalid import run")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateWorkingRecord validates a single working record.
func validateWorkingRecord(record *model.WorkingRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if record.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecord)
	}
	if len(record.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalidRecord)
	}
	return nil
}

// validateTagRule validates a tag rule.
func validateTagRule(rule *model.TagRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if strings.TrimSpace(rule.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidTagRule)
	}
	if strings.TrimSpace(rule.Tag) == "" {
		return fmt.Errorf("%w: missing tag", ErrInvalidTagRule)
	}
	switch rule.Source {
	case model.TagSourceManual, model.TagSourceAuto, model.TagSourceBulk, model.TagSourceImport:
		// Valid source
	case "":
		// Defaulted to MANUAL at save time
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidTagRule, rule.Source)
	}
	return nil
}

// validateHistoryRecord validates a history record before insertion.
func validateHistoryRecord(record *model.HistoryRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if strings.TrimSpace(record.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidHistory)
	}
	if strings.TrimSpace(record.Tag) == "" {
		return fmt.Errorf("%w: missing tag", ErrInvalidHistory)
	}
	return nil
}

// validateImportRun validates an import run before persisting.
func validateImportRun(run *model.ImportRun) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if run.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidImportRun)
	}
	if len(run.Columns) == 0 {
		return fmt.Errorf("%w: no columns", ErrInvalidImportRun)
	}
	return nil
}
