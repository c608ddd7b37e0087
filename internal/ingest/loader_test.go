package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagwise/tagwise/internal/model"
	"github.com/tagwise/tagwise/internal/service"
)

// fakeStore captures saved records and can fail on demand.
type fakeStore struct {
	failOn  map[string]error
	records []*model.WorkingRecord
	runs    []*model.ImportRun
}

func (f *fakeStore) SaveWorkingRecord(_ context.Context, record *model.WorkingRecord) error {
	if err, ok := f.failOn[record.Description]; ok {
		return err
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeStore) SaveImportRun(_ context.Context, run *model.ImportRun) error {
	f.runs = append(f.runs, run)
	return nil
}

func loadFixture(t *testing.T, input string, store RecordWriter) service.LoadStats {
	t.Helper()

	src := NewSource(strings.NewReader(input))
	schema, err := InferSchema(src)
	require.NoError(t, err)
	roles := InferRoles(schema)

	stats, err := LoadRows(context.Background(), src, schema, roles, store)
	require.NoError(t, err)
	return stats
}

func TestLoadRows(t *testing.T) {
	store := &fakeStore{}
	input := "date,description,vendor,amount\n" +
		"2024-01-15,STARBUCKS #123,Starbucks,-5.40\n" +
		"2024-01-16,\"AMAZON.COM, INC\",Amazon,-31.99\n"

	stats := loadFixture(t, input, store)

	assert.Equal(t, service.LoadStats{Stored: 2}, stats)
	require.Len(t, store.records, 2)

	first := store.records[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "2024-01-15", first.Date)
	assert.Equal(t, "STARBUCKS #123", first.Description)
	assert.Equal(t, "Starbucks", first.Vendor)
	assert.Equal(t, "-5.40", first.Amount)
	require.Len(t, first.Fields, 4)
	assert.Equal(t, model.FieldValue{Name: "description", Value: "STARBUCKS #123"}, first.Fields[1])

	assert.Equal(t, "AMAZON.COM, INC", store.records[1].Description)
}

func TestLoadRowsSalvagesRaggedRows(t *testing.T) {
	store := &fakeStore{}
	input := "date,description,amount\n" +
		"2024-01-15,SHORT ROW\n" + // missing amount, padded
		"2024-01-16,LONG ROW,-3.00,extra,fields\n" + // extras truncated
		"2024-01-17,NORMAL,-4.00\n"

	stats := loadFixture(t, input, store)

	assert.Equal(t, service.LoadStats{Stored: 3, Adjusted: 2}, stats)
	require.Len(t, store.records, 3)

	assert.Equal(t, "", store.records[0].Amount)
	assert.Equal(t, "-3.00", store.records[1].Amount)
	require.Len(t, store.records[1].Fields, 3)
}

func TestLoadRowsSkipsBlankLines(t *testing.T) {
	store := &fakeStore{}
	input := "date,amount\n\n2024-01-15,-5.40\n   \n2024-01-16,-6.10\n"

	stats := loadFixture(t, input, store)
	assert.Equal(t, service.LoadStats{Stored: 2}, stats)
}

func TestLoadRowsIsolatesStoreFailures(t *testing.T) {
	store := &fakeStore{failOn: map[string]error{"BAD ROW": errors.New("disk full")}}
	input := "date,description,amount\n" +
		"2024-01-15,GOOD ROW,-1.00\n" +
		"2024-01-16,BAD ROW,-2.00\n" +
		"2024-01-17,ANOTHER GOOD ROW,-3.00\n"

	stats := loadFixture(t, input, store)

	assert.Equal(t, service.LoadStats{Stored: 2, Failed: 1}, stats)
	require.Len(t, store.records, 2)
	assert.Equal(t, "ANOTHER GOOD ROW", store.records[1].Description)
}

func TestLoadRowsHeaderlessInput(t *testing.T) {
	store := &fakeStore{}
	input := "2024-01-15,-5.40\n2024-01-16,-6.10\n"

	src := NewSource(strings.NewReader(input))
	schema, err := InferSchema(src)
	require.NoError(t, err)
	require.False(t, schema.HasHeader)

	stats, err := LoadRows(context.Background(), src, schema, InferRoles(schema), store)
	require.NoError(t, err)

	// The first line is data, not a header, so both rows load.
	assert.Equal(t, service.LoadStats{Stored: 2}, stats)
	require.Len(t, store.records, 2)
	assert.Equal(t, model.FieldValue{Name: "col1", Value: "2024-01-15"}, store.records[0].Fields[0])
}

func TestLoadRowsCanceledContext(t *testing.T) {
	store := &fakeStore{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewSource(strings.NewReader("date,amount\n2024-01-15,-5.40\n2024-01-16,-6.10\n"))
	schema, err := InferSchema(src)
	require.NoError(t, err)

	_, err = LoadRows(ctx, src, schema, InferRoles(schema), store)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun(t *testing.T) {
	store := &fakeStore{}
	input := "date,description,amount\n" +
		"2024-01-15,STARBUCKS #123,-5.40\n" +
		"2024-01-16,SHORT\n"

	run, err := Run(context.Background(), NewSource(strings.NewReader(input)), "/exports/january.csv", store)
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "january.csv", run.Source)
	assert.Equal(t, []string{"date", "description", "amount"}, run.Columns)
	assert.Equal(t, "date", run.Roles[model.RoleDate])
	assert.Equal(t, 2, run.Stored)
	assert.Equal(t, 1, run.Adjusted)
	assert.Equal(t, 0, run.Failed)

	require.Len(t, store.runs, 1)
	assert.Equal(t, run, store.runs[0])
}
