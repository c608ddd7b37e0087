// Package model defines the core domain types shared across the application.
package model

// FieldKind is the storage kind of an inferred column. Type refinement is
// deliberately deferred; every column is imported as text.
type FieldKind string

// FieldText is the only kind currently produced by schema inference.
const FieldText FieldKind = "TEXT"

// Field is one column of an inferred schema.
type Field struct {
	Name string
	Kind FieldKind
}

// Schema is the column layout inferred from the first line of an import.
// It is created once per ingestion run and never modified afterwards.
type Schema struct {
	Fields    []Field
	HasHeader bool
}

// Columns returns the number of fields in the schema.
func (s Schema) Columns() int {
	return len(s.Fields)
}

// Names returns the ordered storage identifiers of all fields.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Role is a semantic column role consumed by reporting.
type Role string

const (
	// RoleDate marks the column holding the transaction date.
	RoleDate Role = "date"
	// RoleAmount marks the column holding the transaction amount.
	RoleAmount Role = "amount"
	// RoleCategory marks the column holding a source-provided category or vendor.
	RoleCategory Role = "category"
	// RoleDescription marks the column holding the transaction description.
	RoleDescription Role = "description"
)

// RoleMap maps semantic roles to schema field names. A missing role means
// the feature depending on it is disabled, never an error.
type RoleMap map[Role]string
