// Package query builds the natural-language probe set for a brand.
// Ordering is deterministic: category-generic probes first, then the
// fixed brand templates. Determinism matters because the quota gate
// truncates the set, so reordering would change which probes consume
// the remaining quota.
package query

import (
	"fmt"
	"strings"
)

// Build returns the ordered probe queries for a brand. categoryHint is
// optional; when present, generic discovery queries for that category
// lead the set.
func Build(brandName, categoryHint string) []string {
	brandName = strings.TrimSpace(brandName)
	categoryHint = strings.TrimSpace(categoryHint)

	queries := []string{}
	if categoryHint != "" {
		queries = append(queries,
			fmt.Sprintf("What are the best %s products to buy?", categoryHint),
			fmt.Sprintf("Which online stores sell good %s?", categoryHint),
			fmt.Sprintf("Top rated %s brands", categoryHint),
		)
	}

	queries = append(queries,
		fmt.Sprintf("What do you know about %s?", brandName),
		fmt.Sprintf("Is %s a good brand to buy from?", brandName),
		fmt.Sprintf("%s reviews and alternatives", brandName),
	)

	return queries
}
