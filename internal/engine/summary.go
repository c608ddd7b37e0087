package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tagwise/tagwise/internal/service"
)

// TagSummary aggregates history spending per tag, ordered by total
// ascending so the largest outflows (most negative) come first.
func (e *Engine) TagSummary(ctx context.Context) ([]service.TagSummaryRow, error) {
	records, err := e.storage.GetHistoryRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	totals := make(map[string]*service.TagSummaryRow)
	for _, record := range records {
		row, ok := totals[record.Tag]
		if !ok {
			row = &service.TagSummaryRow{Tag: record.Tag}
			totals[record.Tag] = row
		}
		row.Total += parseAmount(record.Amount)
		row.Count++
	}

	rows := make([]service.TagSummaryRow, 0, len(totals))
	for _, row := range totals {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total < rows[j].Total
		}
		return rows[i].Tag < rows[j].Tag
	})
	return rows, nil
}

// MonthlySummary aggregates history spending per calendar month and tag.
// The month is the YYYY-MM prefix of the stored date; records whose date
// does not start with one are grouped under "unknown". Months are returned
// newest first.
func (e *Engine) MonthlySummary(ctx context.Context) ([]service.MonthSummary, error) {
	records, err := e.storage.GetHistoryRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	type tagKey struct {
		month string
		tag   string
	}
	totals := make(map[tagKey]*service.TagSummaryRow)
	monthTotals := make(map[string]float64)

	for _, record := range records {
		month := monthOf(record.Date)
		amount := parseAmount(record.Amount)

		key := tagKey{month: month, tag: record.Tag}
		row, ok := totals[key]
		if !ok {
			row = &service.TagSummaryRow{Tag: record.Tag}
			totals[key] = row
		}
		row.Total += amount
		row.Count++
		monthTotals[month] += amount
	}

	byMonth := make(map[string][]service.TagSummaryRow)
	for key, row := range totals {
		byMonth[key.month] = append(byMonth[key.month], *row)
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	summaries := make([]service.MonthSummary, 0, len(months))
	for _, month := range months {
		rows := byMonth[month]
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Total != rows[j].Total {
				return rows[i].Total < rows[j].Total
			}
			return rows[i].Tag < rows[j].Tag
		})
		summaries = append(summaries, service.MonthSummary{
			Month: month,
			Rows:  rows,
			Total: monthTotals[month],
		})
	}
	return summaries, nil
}

// monthOf extracts a YYYY-MM prefix from a stored date string.
func monthOf(date string) string {
	if len(date) >= 7 && date[4] == '-' {
		return date[:7]
	}
	return "unknown"
}

// parseAmount leniently parses a stored amount. Currency symbols and
// thousands separators are stripped; anything unparseable contributes 0.
func parseAmount(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0
	}
	// Accounting-style negatives: (12.34)
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}
