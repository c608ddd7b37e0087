package ingest

import (
	"fmt"
	"strings"

	"github.com/tagwise/tagwise/internal/common"
	"github.com/tagwise/tagwise/internal/model"
)

// InferSchema determines the column layout of an import from its first line.
// A first line containing at least one alphabetic character is consumed as a
// header; otherwise synthetic column names are generated and the line is
// pushed back to be loaded as data.
func InferSchema(src *Source) (model.Schema, error) {
	if src == nil {
		return model.Schema{}, fmt.Errorf("%w: nil source", common.ErrSchemaInference)
	}

	first, ok := src.Next()
	// Leading blank lines carry no structure either way.
	for ok && strings.TrimSpace(first) == "" {
		first, ok = src.Next()
	}
	if !ok {
		if err := src.Err(); err != nil {
			return model.Schema{}, fmt.Errorf("%w: %v", common.ErrSchemaInference, err)
		}
		return model.Schema{}, fmt.Errorf("%w: empty input", common.ErrSchemaInference)
	}

	fields := SplitFields(first)

	if !hasAlpha(first) {
		// Purely numeric first line: data, not a header.
		src.Unread(first)
		schema := model.Schema{HasHeader: false}
		for i := range fields {
			schema.Fields = append(schema.Fields, model.Field{
				Name: fmt.Sprintf("col%d", i+1),
				Kind: model.FieldText,
			})
		}
		return schema, nil
	}

	schema := model.Schema{HasHeader: true}
	seen := make(map[string]bool, len(fields))
	for i, raw := range fields {
		name := normalizeName(raw)
		if name == "" {
			name = fmt.Sprintf("col%d", i+1)
		}
		// Positional suffix keeps colliding names distinct.
		base := name
		for n := 2; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[name] = true
		schema.Fields = append(schema.Fields, model.Field{
			Name: name,
			Kind: model.FieldText,
		})
	}

	return schema, nil
}

// normalizeName lowers a raw header label and maps every character outside
// [a-z0-9_] to an underscore.
func normalizeName(raw string) string {
	raw = strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	if raw == "" {
		return ""
	}

	var sb strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// hasAlpha reports whether the line contains at least one ASCII letter.
func hasAlpha(line string) bool {
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
			return true
		}
	}
	return false
}
