package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagwise/tagwise/internal/common"
)

func TestInferSchema(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantNames  []string
		wantHeader bool
	}{
		{
			name:       "simple header",
			input:      "Date,Description,Amount\n2024-01-15,STARBUCKS,-5.40\n",
			wantNames:  []string{"date", "description", "amount"},
			wantHeader: true,
		},
		{
			name:       "header normalization",
			input:      `"Posted Date","Merchant Name!","Amount ($)"` + "\n",
			wantNames:  []string{"posted_date", "merchant_name_", "amount____"},
			wantHeader: true,
		},
		{
			name:       "colliding names get positional suffixes",
			input:      "name,name,name\n",
			wantNames:  []string{"name", "name_2", "name_3"},
			wantHeader: true,
		},
		{
			name:       "collision with explicit suffix in header",
			input:      "name,name_2,name\n",
			wantNames:  []string{"name", "name_2", "name_3"},
			wantHeader: true,
		},
		{
			name:       "empty header labels get synthetic names",
			input:      "date,,amount\n",
			wantNames:  []string{"date", "col2", "amount"},
			wantHeader: true,
		},
		{
			name:       "numeric first line is data",
			input:      "2024-01-15,123,-5.40\n2024-01-16,456,-6.10\n",
			wantNames:  []string{"col1", "col2", "col3"},
			wantHeader: false,
		},
		{
			name:       "leading blank lines skipped",
			input:      "\n\nDate,Amount\n",
			wantNames:  []string{"date", "amount"},
			wantHeader: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := InferSchema(NewSource(strings.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, schema.Names())
			assert.Equal(t, tt.wantHeader, schema.HasHeader)
		})
	}
}

func TestInferSchemaEmptyInput(t *testing.T) {
	for _, input := range []string{"", "\n\n\n", "   \n  \n"} {
		_, err := InferSchema(NewSource(strings.NewReader(input)))
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrSchemaInference)
	}
}

func TestInferSchemaHeaderlessKeepsFirstRow(t *testing.T) {
	src := NewSource(strings.NewReader("2024-01-15,-5.40\n2024-01-16,-6.10\n"))

	schema, err := InferSchema(src)
	require.NoError(t, err)
	assert.False(t, schema.HasHeader)

	// The inspected line must come back as the first data row.
	line, ok := src.Next()
	require.True(t, ok)
	assert.Equal(t, "2024-01-15,-5.40", line)
}
