package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tagwise/tagwise/internal/model"
	"github.com/tagwise/tagwise/internal/service"
)

// RecordWriter is the narrow storage surface the loader needs. Each row is
// stored independently so one bad row never aborts the run.
type RecordWriter interface {
	SaveWorkingRecord(ctx context.Context, record *model.WorkingRecord) error
}

// LoadRows reads every remaining data line from the source and stores one
// working record per line. Ragged rows are salvaged rather than rejected:
// missing trailing fields are padded with empty values and extra trailing
// fields are truncated, counted as adjusted. Rows that fail to store are
// counted as failed and skipped. Loading itself only fails if the
// underlying stream does.
func LoadRows(ctx context.Context, src *Source, schema model.Schema, roles model.RoleMap, store RecordWriter) (service.LoadStats, error) {
	var stats service.LoadStats
	want := schema.Columns()

	for {
		line, ok := src.Next()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		values := SplitFields(line)
		if len(values) != want {
			values = adjustFieldCount(values, want)
			stats.Adjusted++
			slog.Debug("Adjusted ragged row",
				"line", src.Line(),
				"expected_fields", want)
		}

		record := buildRecord(schema, roles, values)
		if err := store.SaveWorkingRecord(ctx, record); err != nil {
			stats.Failed++
			slog.Warn("Failed to store row, skipping",
				"line", src.Line(),
				"error", err)
			continue
		}
		stats.Stored++

		if err := ctx.Err(); err != nil {
			return stats, err
		}
	}

	if err := src.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// adjustFieldCount pads missing trailing fields with empty values and
// truncates extras down to the expected count.
func adjustFieldCount(values []string, want int) []string {
	if len(values) > want {
		return values[:want]
	}
	for len(values) < want {
		values = append(values, "")
	}
	return values
}

// buildRecord aligns the raw values to the schema and fills the role-mapped
// columns. The category role maps to the vendor column.
func buildRecord(schema model.Schema, roles model.RoleMap, values []string) *model.WorkingRecord {
	record := &model.WorkingRecord{
		ID:     uuid.NewString(),
		Fields: make([]model.FieldValue, len(schema.Fields)),
	}

	byName := make(map[string]string, len(schema.Fields))
	for i, field := range schema.Fields {
		record.Fields[i] = model.FieldValue{Name: field.Name, Value: values[i]}
		byName[field.Name] = values[i]
	}

	if name, ok := roles[model.RoleDate]; ok {
		record.Date = byName[name]
	}
	if name, ok := roles[model.RoleDescription]; ok {
		record.Description = byName[name]
	}
	if name, ok := roles[model.RoleCategory]; ok {
		record.Vendor = byName[name]
	}
	if name, ok := roles[model.RoleAmount]; ok {
		record.Amount = byName[name]
	}

	return record
}

// RunStore is the storage surface Run needs: row storage plus import run
// diagnostics.
type RunStore interface {
	RecordWriter
	SaveImportRun(ctx context.Context, run *model.ImportRun) error
}

// Run ingests one stream end to end: infer the schema, detect semantic
// roles, load all rows, and persist the run diagnostics. The returned
// ImportRun carries the salvage counters.
func Run(ctx context.Context, src *Source, source string, store RunStore) (*model.ImportRun, error) {
	schema, err := InferSchema(src)
	if err != nil {
		return nil, err
	}
	roles := InferRoles(schema)

	stats, err := LoadRows(ctx, src, schema, roles, store)
	if err != nil {
		return nil, err
	}

	run := &model.ImportRun{
		ID:       uuid.NewString(),
		Source:   filepath.Base(source),
		Columns:  schema.Names(),
		Roles:    roles,
		Stored:   stats.Stored,
		Adjusted: stats.Adjusted,
		Failed:   stats.Failed,
	}
	if err := store.SaveImportRun(ctx, run); err != nil {
		return nil, err
	}

	slog.Info("Ingestion complete",
		"source", run.Source,
		"stored", run.Stored,
		"adjusted", run.Adjusted,
		"failed", run.Failed)

	return run, nil
}
