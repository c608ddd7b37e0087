package ingest

import (
	"strings"

	"github.com/tagwise/tagwise/internal/model"
)

// Candidate field names per semantic role, in priority order. The first
// schema field matching a candidate wins the role; later candidates and
// later fields are ignored. A role with no match stays absent, which
// disables the reporting that depends on it.
var (
	dateCandidates        = []string{"date", "transaction_date", "posted_date", "post_date", "posting_date", "trans_date"}
	amountCandidates      = []string{"amount", "price", "cost", "value", "total", "debit", "credit", "charge"}
	categoryCandidates    = []string{"category", "vendor", "merchant", "payee", "type"}
	descriptionCandidates = []string{"description", "memo", "narrative", "details", "name", "reference"}
)

// InferRoles classifies at most one schema field into each semantic role by
// candidate-name matching. Never fails; unmatched roles are simply omitted.
func InferRoles(schema model.Schema) model.RoleMap {
	roles := make(model.RoleMap)

	assign := func(role model.Role, candidates []string) {
		for _, candidate := range candidates {
			for _, field := range schema.Fields {
				if matchesCandidate(field.Name, candidate) {
					roles[role] = field.Name
					return
				}
			}
		}
	}

	assign(model.RoleDate, dateCandidates)
	assign(model.RoleAmount, amountCandidates)
	assign(model.RoleCategory, categoryCandidates)
	assign(model.RoleDescription, descriptionCandidates)

	return roles
}

// matchesCandidate accepts exact matches and suffixed variants produced by
// collision handling (e.g. amount_2), plus candidate-prefixed compounds
// like transaction_amount.
func matchesCandidate(fieldName, candidate string) bool {
	if fieldName == candidate {
		return true
	}
	if strings.HasPrefix(fieldName, candidate+"_") {
		return true
	}
	if strings.HasSuffix(fieldName, "_"+candidate) {
		return true
	}
	return false
}
