package ingest

import (
	"fmt"
	"io"
	"strings"
)

// SplitFields splits one comma-delimited line into raw field values.
// Commas inside quoted sections do not split; a doubled quote inside a
// quoted section unescapes to a single quote. Surrounding whitespace and
// wrapping quotes are trimmed. Malformed quoting never fails: an unclosed
// quote simply runs to the end of the line.
func SplitFields(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))

	return fields
}

// WriteRow writes one delimited row with every field quoted and embedded
// quotes doubled. This is the wire format both export paths emit and
// SplitFields reads back, so exported data round-trips exactly.
func WriteRow(w io.Writer, fields []string) error {
	var sb strings.Builder
	for i, field := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(field, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	return nil
}
