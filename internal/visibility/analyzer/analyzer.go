// Package analyzer extracts structured visibility signals from a raw
// answer-engine response: whether the brand is mentioned, the snippet
// around the first mention, an estimated list position, competitor
// mentions, and a coarse quality classification. Analysis is pure and
// case-insensitive.
package analyzer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/davidlhotte/surfaced/internal/visibility/domain"
)

const (
	contextBefore = 100
	contextAfter  = 200
)

var listMarkerRe = regexp.MustCompile(`\d+\.`)

// Analyze inspects a raw response for the brand. A blank brand name
// would trivially match everything, so it yields the zero Analysis
// instead; callers resolve the brand name before probing.
func Analyze(raw, brandName, brandDomain string, competitors, positive []string) domain.Analysis {
	brandName = strings.TrimSpace(brandName)
	if brandName == "" {
		return domain.Analysis{Quality: domain.QualityNone}
	}

	lowered := strings.ToLower(raw)
	matchIdx := earliestMatch(raw, candidates(brandName, brandDomain))
	if matchIdx < 0 {
		return domain.Analysis{
			Quality:     domain.QualityNone,
			Competitors: findCompetitors(lowered, brandName, brandDomain, competitors),
		}
	}

	analysis := domain.Analysis{
		Mentioned:   true,
		Quality:     domain.QualityPartial,
		Competitors: findCompetitors(lowered, brandName, brandDomain, competitors),
	}

	start := matchIdx - contextBefore
	if start < 0 {
		start = 0
	}
	end := matchIdx + contextAfter
	if end > len(raw) {
		end = len(raw)
	}
	snippet := strings.TrimSpace(raw[start:end])
	analysis.MentionContext = &snippet

	// Numbered markers before the mention approximate its rank. The
	// pattern matches any numeral-dot sequence, so prices or years
	// preceding the mention inflate the estimate; kept as the product's
	// documented heuristic.
	if markers := listMarkerRe.FindAllStringIndex(raw[:matchIdx], -1); len(markers) > 0 {
		position := len(markers)
		analysis.Position = &position
	}

	for _, phrase := range positive {
		if phrase == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			analysis.Quality = domain.QualityGood
			break
		}
	}

	return analysis
}

// candidates are the strings that count as a brand mention: the name,
// the domain with its suffix stripped, and the full domain.
func candidates(brandName, brandDomain string) []string {
	out := []string{strings.ToLower(brandName)}
	brandDomain = strings.ToLower(strings.TrimSpace(brandDomain))
	if brandDomain != "" {
		if idx := strings.Index(brandDomain, "."); idx > 0 {
			out = append(out, brandDomain[:idx])
		}
		out = append(out, brandDomain)
	}
	return out
}

func earliestMatch(raw string, needles []string) int {
	earliest := -1
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		idx := indexFold(raw, needle)
		if idx < 0 {
			continue
		}
		if earliest < 0 || idx < earliest {
			earliest = idx
		}
	}
	return earliest
}

// indexFold reports the byte offset in s of the first case-insensitive
// occurrence of needle, or -1. Offsets refer to s itself, so they stay
// valid for slicing even when case conversion changes byte lengths.
func indexFold(s, needle string) int {
	if needle == "" {
		return -1
	}
	for i := range s {
		if hasFoldPrefix(s[i:], needle) {
			return i
		}
	}
	return -1
}

func hasFoldPrefix(s, prefix string) bool {
	for _, pr := range prefix {
		if s == "" {
			return false
		}
		sr, size := utf8.DecodeRuneInString(s)
		if unicode.ToLower(sr) != unicode.ToLower(pr) {
			return false
		}
		s = s[size:]
	}
	return true
}

func findCompetitors(lowered, brandName, brandDomain string, vocabulary []string) []string {
	found := []string{}
	brandLower := strings.ToLower(strings.TrimSpace(brandName))
	domainLower := strings.ToLower(strings.TrimSpace(brandDomain))
	for _, name := range vocabulary {
		nameLower := strings.ToLower(strings.TrimSpace(name))
		if nameLower == "" {
			continue
		}
		if nameLower == brandLower {
			continue
		}
		if domainLower != "" && strings.Contains(domainLower, nameLower) {
			continue
		}
		if strings.Contains(lowered, nameLower) {
			found = append(found, name)
		}
	}
	return found
}
