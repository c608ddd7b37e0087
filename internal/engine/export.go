package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tagwise/tagwise/internal/ingest"
	"github.com/tagwise/tagwise/internal/model"
)

// Timestamp layout used in history exports.
const exportTimeLayout = "2006-01-02 15:04:05"

// ExportTags writes every tag rule as delimited text. Every field is
// quoted and embedded quotes are doubled, so the output re-imports exactly.
func (e *Engine) ExportTags(ctx context.Context, w io.Writer) error {
	rules, err := e.storage.GetAllTagRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tag rules: %w", err)
	}

	if err := ingest.WriteRow(w, []string{"description", "tag"}); err != nil {
		return err
	}
	for _, rule := range rules {
		if err := ingest.WriteRow(w, []string{rule.Description, rule.Tag}); err != nil {
			return err
		}
	}
	return nil
}

// ImportTags reads delimited (description, tag) pairs and upserts each as a
// rule. The first line is treated as a header. Returns the number of rules
// imported; short or blank lines are skipped.
func (e *Engine) ImportTags(ctx context.Context, r io.Reader) (int, error) {
	src := ingest.NewSource(r)

	imported := 0
	header := true
	for {
		line, ok := src.Next()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if header {
			header = false
			continue
		}

		fields := ingest.SplitFields(line)
		if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
			slog.Warn("Skipping malformed tag line", "line", src.Line())
			continue
		}

		rule := &model.TagRule{
			Description: fields[0],
			Tag:         fields[1],
			Source:      model.TagSourceImport,
		}
		if err := e.storage.SaveTagRule(ctx, rule); err != nil {
			return imported, fmt.Errorf("failed to import tag for %q: %w", fields[0], err)
		}
		imported++
	}

	if err := src.Err(); err != nil {
		return imported, err
	}
	return imported, nil
}

// ExportHistory writes the full history ledger as delimited text using the
// same quoting rules as ExportTags.
func (e *Engine) ExportHistory(ctx context.Context, w io.Writer) error {
	records, err := e.storage.GetHistoryRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if err := ingest.WriteRow(w, []string{"date", "description", "vendor", "amount", "tag", "promoted_at"}); err != nil {
		return err
	}
	for _, record := range records {
		row := []string{
			record.Date,
			record.Description,
			record.Vendor,
			record.Amount,
			record.Tag,
			record.PromotedAt.UTC().Format(exportTimeLayout),
		}
		if err := ingest.WriteRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

// ImportHistory reads previously exported history rows back into the
// ledger, skipping rows whose natural key already exists. Returns the
// number of rows actually inserted.
func (e *Engine) ImportHistory(ctx context.Context, r io.Reader) (int, error) {
	src := ingest.NewSource(r)

	imported := 0
	header := true
	for {
		line, ok := src.Next()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if header {
			header = false
			continue
		}

		fields := ingest.SplitFields(line)
		if len(fields) < 5 {
			slog.Warn("Skipping malformed history line", "line", src.Line())
			continue
		}

		record := &model.HistoryRecord{
			Date:        fields[0],
			Description: fields[1],
			Vendor:      fields[2],
			Amount:      fields[3],
			Tag:         fields[4],
		}
		if len(fields) > 5 && fields[5] != "" {
			if ts, err := time.Parse(exportTimeLayout, fields[5]); err == nil {
				record.PromotedAt = ts.UTC()
			}
		}

		inserted, err := e.storage.SaveHistoryRecord(ctx, record)
		if err != nil {
			slog.Warn("Failed to import history row, skipping",
				"line", src.Line(),
				"error", err)
			continue
		}
		if inserted {
			imported++
		}
	}

	if err := src.Err(); err != nil {
		return imported, err
	}
	return imported, nil
}
