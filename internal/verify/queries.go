package verify

import (
	"strings"

	"github.com/claimsift/claimsift/internal/claims"
)

const (
	// maxPrimaryQueryLen truncates claim text used as the primary query.
	maxPrimaryQueryLen = 100
	// maxQueriesPerClaim caps derived queries regardless of configuration.
	maxQueriesPerClaim = 3
)

// BuildQueries derives up to limit high-impact search queries for a
// claim: the claim text itself, a fact-check query around the lead
// entity, and a keyword query flavored with the claim type.
func BuildQueries(claim claims.Claim, limit int) []string {
	if limit <= 0 || limit > maxQueriesPerClaim {
		limit = maxQueriesPerClaim
	}

	var queries []string
	seen := make(map[string]struct{})
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" {
			return
		}
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		queries = append(queries, q)
	}

	primary := claim.Text
	if len(primary) > maxPrimaryQueryLen {
		primary = primary[:maxPrimaryQueryLen]
	}
	add(primary)

	if len(claim.Entities) > 0 {
		add("fact check " + claim.Entities[0] + " " + string(claim.Type))
	}

	if len(claim.Keywords) > 0 {
		kws := claim.Keywords
		if len(kws) > 3 {
			kws = kws[:3]
		}
		query := strings.Join(kws, " ")
		if claim.Type != claims.ClaimTypeGeneral && claim.Type != "" {
			query += " " + string(claim.Type)
		}
		add(query)
	}

	if len(queries) > limit {
		queries = queries[:limit]
	}
	return queries
}
