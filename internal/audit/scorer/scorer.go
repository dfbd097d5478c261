// Package scorer converts catalog item metadata into a 0-100 AEO
// readiness score plus a categorized issue list. Scoring is a pure,
// total function: absent or empty fields lower the score, they never
// produce an error, and an unchanged item always scores identically.
package scorer

import (
	"fmt"
	"strings"

	"github.com/davidlhotte/surfaced/internal/audit/domain"
	catalogdomain "github.com/davidlhotte/surfaced/internal/catalog/domain"
	"github.com/davidlhotte/surfaced/internal/config"
)

// Result is the scoring outcome before persistence identity is attached.
type Result struct {
	Score             int
	Issues            []domain.Issue
	HasImages         bool
	HasDescription    bool
	HasMetafields     bool
	DescriptionLength int
}

// Score starts at 100 and applies the weight table in a fixed order.
// Order does not affect the sum but determines issue ordering.
func Score(item *catalogdomain.CatalogItem, cfg config.ScoringConfig) Result {
	score := 100
	issues := []domain.Issue{}

	description := strings.TrimSpace(item.Description)
	descLen := len(description)

	switch {
	case descLen == 0:
		score -= cfg.Penalties.NoDescription
		issues = append(issues, domain.Issue{
			Severity: domain.SeverityCritical,
			Code:     domain.CodeNoDescription,
			Message:  "Product has no description. Answer engines have nothing to summarize.",
			Field:    "description",
		})
	case descLen < 50:
		score -= cfg.Penalties.ShortDescription
		issues = append(issues, domain.Issue{
			Severity: domain.SeverityCritical,
			Code:     domain.CodeShortDescription,
			Message:  fmt.Sprintf("Description is only %d characters. Aim for at least 150.", descLen),
			Field:    "description",
		})
	case descLen < 150:
		score -= cfg.Penalties.BriefDescription
		issues = append(issues, domain.Issue{
			Severity: domain.SeverityWarning,
			Code:     domain.CodeBriefDescription,
			Message:  fmt.Sprintf("Description is %d characters. Longer descriptions surface more often.", descLen),
			Field:    "description",
		})
	}

	if len(item.Images) == 0 {
		score -= cfg.Penalties.NoImages
		issues = append(issues, domain.Issue{
			Severity: domain.SeverityCritical,
			Code:     domain.CodeNoImages,
			Message:  "Product has no images.",
			Field:    "images",
		})
	} else {
		missingAlt := 0
		for _, image := range item.Images {
			if strings.TrimSpace(image.AltText) == "" {
				missingAlt++
			}
		}
		if missingAlt > 0 {
			capped := missingAlt
			if capped > cfg.Penalties.MissingAltCap {
				capped = cfg.Penalties.MissingAltCap
			}
			score -= capped * cfg.Penalties.MissingAltText
			issues = append(issues, domain.Issue{
				Severity: domain.SeverityWarning,
				Code:     domain.CodeMissingAltText,
				Message:  fmt.Sprintf("%d image(s) are missing alt text.", missingAlt),
				Field:    "images",
			})
		}
	}

	if strings.TrimSpace(item.SEOTitle) == "" {
		score -= cfg.Penalties.NoSEOTitle
		issues = append(issues, domain.Issue{
			Severity: domain.SeverityWarning,
			Code:     domain.CodeNoSEOTitle,
			Message:  "No SEO title set.",
			Field:    "seo_title",
		})
	}

	if strings.TrimSpace(item.SEODescription) == "" {
		score -= cfg.Penalties.NoSEODescription
		issues = append(issues, domain.Issue{
			Severity: domain.SeverityWarning,
			Code:     domain.CodeNoSEODescription,
			Message:  "No SEO description set.",
			Field:    "seo_description",
		})
	}

	if strings.TrimSpace(item.ProductType) == "" {
		score -= cfg.Penalties.NoProductType
		issues = append(issues, domain.Issue{
			Severity: domain.SeverityWarning,
			Code:     domain.CodeNoProductType,
			Message:  "No product type or category assigned.",
			Field:    "product_type",
		})
	}

	if len(item.Tags) == 0 {
		score -= cfg.Penalties.NoTags
		issues = append(issues, domain.Issue{
			Severity: domain.SeverityWarning,
			Code:     domain.CodeNoTags,
			Message:  "No tags assigned.",
			Field:    "tags",
		})
	}

	if item.MetafieldCount == 0 {
		score -= cfg.Penalties.NoMetafields
		issues = append(issues, domain.Issue{
			Severity: domain.SeverityInfo,
			Code:     domain.CodeNoMetafields,
			Message:  "No metafields present. Structured attributes improve machine readability.",
			Field:    "metafields",
		})
	}

	if strings.TrimSpace(item.Vendor) == "" {
		score -= cfg.Penalties.NoVendor
		issues = append(issues, domain.Issue{
			Severity: domain.SeverityInfo,
			Code:     domain.CodeNoVendor,
			Message:  "No vendor or brand attribution.",
			Field:    "vendor",
		})
	}

	// Bonuses carry no issue entry.
	if descLen >= 300 {
		score += cfg.Bonuses.LongDescription
	}
	if len(item.Images) >= 3 {
		score += cfg.Bonuses.ManyImages
	}
	if len(item.Tags) >= 5 {
		score += cfg.Bonuses.ManyTags
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Result{
		Score:             score,
		Issues:            issues,
		HasImages:         len(item.Images) > 0,
		HasDescription:    descLen > 0,
		HasMetafields:     item.MetafieldCount > 0,
		DescriptionLength: descLen,
	}
}
