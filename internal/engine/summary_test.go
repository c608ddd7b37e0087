package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagwise/tagwise/internal/model"
	"github.com/tagwise/tagwise/internal/service"
)

func saveHistory(t *testing.T, store service.Storage, date, description, amount, tag string) {
	t.Helper()

	inserted, err := store.SaveHistoryRecord(context.Background(), &model.HistoryRecord{
		Date:        date,
		Description: description,
		Amount:      amount,
		Tag:         tag,
	})
	require.NoError(t, err)
	require.True(t, inserted)
}

func TestEngine_TagSummary(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	saveHistory(t, store, "2024-01-15", "STARBUCKS #123", "-5.40", "coffee")
	saveHistory(t, store, "2024-01-16", "STARBUCKS #456", "-6.10", "coffee")
	saveHistory(t, store, "2024-01-17", "AMAZON.COM", "-31.99", "shopping")
	saveHistory(t, store, "2024-01-31", "PAYCHECK", "2500.00", "income")

	rows, err := eng.TagSummary(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Largest outflow first, income last.
	assert.Equal(t, "shopping", rows[0].Tag)
	assert.InDelta(t, -31.99, rows[0].Total, 0.001)
	assert.Equal(t, 1, rows[0].Count)

	assert.Equal(t, "coffee", rows[1].Tag)
	assert.InDelta(t, -11.50, rows[1].Total, 0.001)
	assert.Equal(t, 2, rows[1].Count)

	assert.Equal(t, "income", rows[2].Tag)
	assert.InDelta(t, 2500.00, rows[2].Total, 0.001)
}

func TestEngine_TagSummaryEmptyHistory(t *testing.T) {
	eng, _ := newTestEngine(t)

	rows, err := eng.TagSummary(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestEngine_MonthlySummary(t *testing.T) {
	eng, store := newTestEngine(t)
	ctx := context.Background()

	saveHistory(t, store, "2024-01-15", "STARBUCKS #123", "-5.40", "coffee")
	saveHistory(t, store, "2024-01-17", "AMAZON.COM", "-31.99", "shopping")
	saveHistory(t, store, "2024-02-02", "STARBUCKS #456", "-6.10", "coffee")
	saveHistory(t, store, "not-a-date", "CASH DEPOSIT", "100.00", "misc")

	months, err := eng.MonthlySummary(ctx)
	require.NoError(t, err)
	require.Len(t, months, 3)

	// Newest month first; the unparseable date groups under "unknown",
	// which sorts after numeric months in the reversed order.
	assert.Equal(t, "unknown", months[0].Month)
	assert.Equal(t, "2024-02", months[1].Month)
	assert.Equal(t, "2024-01", months[2].Month)

	january := months[2]
	assert.InDelta(t, -37.39, january.Total, 0.001)
	require.Len(t, january.Rows, 2)
	assert.Equal(t, "shopping", january.Rows[0].Tag)
	assert.Equal(t, "coffee", january.Rows[1].Tag)

	february := months[1]
	assert.InDelta(t, -6.10, february.Total, 0.001)
	require.Len(t, february.Rows, 1)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{name: "plain negative", raw: "-5.40", want: -5.40},
		{name: "currency symbol", raw: "$12.00", want: 12.00},
		{name: "thousands separator", raw: "1,234.56", want: 1234.56},
		{name: "symbol and separator", raw: "-$2,500.00", want: -2500.00},
		{name: "accounting negative", raw: "(45.00)", want: -45.00},
		{name: "surrounding whitespace", raw: "  7.25  ", want: 7.25},
		{name: "empty", raw: "", want: 0},
		{name: "unparseable", raw: "pending", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, parseAmount(tt.raw), 0.0001)
		})
	}
}
