package scorer

import (
	"strings"
	"testing"

	"github.com/davidlhotte/surfaced/internal/audit/domain"
	catalogdomain "github.com/davidlhotte/surfaced/internal/catalog/domain"
	"github.com/davidlhotte/surfaced/internal/config"
	"github.com/stretchr/testify/assert"
)

func completeItem() *catalogdomain.CatalogItem {
	return &catalogdomain.CatalogItem{
		Handle:      "trail-runner-2",
		Title:       "Trail Runner 2",
		Description: strings.Repeat("A durable trail running shoe with a grippy outsole. ", 7),
		Images: []catalogdomain.Image{
			{URL: "https://cdn.example.com/1.jpg", AltText: "side view"},
			{URL: "https://cdn.example.com/2.jpg", AltText: "top view"},
			{URL: "https://cdn.example.com/3.jpg", AltText: "sole detail"},
		},
		ProductType:    "Running Shoes",
		Vendor:         "Acme",
		Tags:           []string{"running", "trail", "shoes", "outdoor", "unisex"},
		SEOTitle:       "Trail Runner 2 | Acme",
		SEODescription: "Lightweight trail running shoe.",
		MetafieldCount: 4,
	}
}

func issueCodes(issues []domain.Issue) []string {
	codes := make([]string, 0, len(issues))
	for _, issue := range issues {
		codes = append(codes, issue.Code)
	}
	return codes
}

func TestScore_CompleteItemIsPerfect(t *testing.T) {
	cfg := config.DefaultScoringConfig()

	result := Score(completeItem(), cfg)

	assert.Equal(t, 100, result.Score)
	assert.Empty(t, result.Issues)
	assert.True(t, result.HasImages)
	assert.True(t, result.HasDescription)
	assert.True(t, result.HasMetafields)
}

func TestScore_EmptyItem(t *testing.T) {
	cfg := config.DefaultScoringConfig()

	result := Score(&catalogdomain.CatalogItem{}, cfg)

	// Every default penalty fires except the description-length and
	// alt-text ones: 100 - (40+30+5+5+5+5+2+2) = 6.
	assert.Equal(t, 6, result.Score)
	assert.Contains(t, issueCodes(result.Issues), domain.CodeNoDescription)
	assert.Contains(t, issueCodes(result.Issues), domain.CodeNoImages)
	assert.False(t, result.HasImages)
	assert.False(t, result.HasDescription)
}

func TestScore_ClampsAtZeroWhenPenaltiesExceedHundred(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	cfg.Penalties.NoDescription = 80
	cfg.Penalties.NoImages = 80

	result := Score(&catalogdomain.CatalogItem{}, cfg)

	assert.Equal(t, 0, result.Score)
}

func TestScore_TwoCriticalsDropBelowWarningBand(t *testing.T) {
	cfg := config.DefaultScoringConfig()

	item := completeItem()
	item.Description = ""
	item.Images = nil
	item.Tags = []string{"running", "trail", "shoes"}

	result := Score(item, cfg)

	// -40 for the description and -30 for images from 100.
	assert.Equal(t, 30, result.Score)
	assert.Equal(t, domain.BandCritical, domain.BandForScore(result.Score))

	criticals := 0
	for _, issue := range result.Issues {
		if issue.Severity == domain.SeverityCritical {
			criticals++
		}
	}
	assert.Equal(t, 2, criticals)
}

func TestScore_DescriptionLengthThresholds(t *testing.T) {
	cfg := config.DefaultScoringConfig()

	tests := []struct {
		name     string
		length   int
		wantCode string
	}{
		{name: "short", length: 30, wantCode: domain.CodeShortDescription},
		{name: "brief", length: 100, wantCode: domain.CodeBriefDescription},
		{name: "boundary at 50 is brief", length: 50, wantCode: domain.CodeBriefDescription},
		{name: "adequate", length: 150, wantCode: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item := completeItem()
			item.Description = strings.Repeat("x", tc.length)

			result := Score(item, cfg)

			codes := issueCodes(result.Issues)
			if tc.wantCode == "" {
				assert.NotContains(t, codes, domain.CodeShortDescription)
				assert.NotContains(t, codes, domain.CodeBriefDescription)
			} else {
				assert.Contains(t, codes, tc.wantCode)
			}
			assert.Equal(t, tc.length, result.DescriptionLength)
		})
	}
}

func TestScore_MissingAltTextPenaltyIsCapped(t *testing.T) {
	cfg := config.DefaultScoringConfig()

	item := completeItem()
	item.Images = []catalogdomain.Image{
		{URL: "a.jpg"}, {URL: "b.jpg"}, {URL: "c.jpg"}, {URL: "d.jpg"}, {URL: "e.jpg"},
	}

	result := Score(item, cfg)

	// Five missing alts penalize as three, then the description, image
	// count and tag bonuses add back ten: 100 - 3*5 + 10 = 95.
	assert.Equal(t, 95, result.Score)
	assert.Contains(t, issueCodes(result.Issues), domain.CodeMissingAltText)
}

func TestScore_BonusesNeverExceedHundred(t *testing.T) {
	cfg := config.DefaultScoringConfig()

	item := completeItem()
	item.Description = strings.Repeat("Long description text. ", 20)

	result := Score(item, cfg)

	assert.Equal(t, 100, result.Score)
}

func TestScore_Deterministic(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	item := completeItem()
	item.SEOTitle = ""
	item.MetafieldCount = 0

	first := Score(item, cfg)
	second := Score(item, cfg)

	assert.Equal(t, first, second)
}

func TestScore_RemovingAnIssueNeverLowersScore(t *testing.T) {
	cfg := config.DefaultScoringConfig()

	degraded := completeItem()
	degraded.SEOTitle = ""
	degraded.Vendor = ""

	fixed := completeItem()
	fixed.Vendor = ""

	assert.GreaterOrEqual(t, Score(fixed, cfg).Score, Score(degraded, cfg).Score)
}

func TestScore_AddingDescriptionStrictlyImproves(t *testing.T) {
	cfg := config.DefaultScoringConfig()

	without := completeItem()
	without.Description = ""

	assert.Greater(t, Score(completeItem(), cfg).Score, Score(without, cfg).Score)
}

func TestBandForScore(t *testing.T) {
	assert.Equal(t, domain.BandCritical, domain.BandForScore(0))
	assert.Equal(t, domain.BandCritical, domain.BandForScore(39))
	assert.Equal(t, domain.BandWarning, domain.BandForScore(40))
	assert.Equal(t, domain.BandWarning, domain.BandForScore(69))
	assert.Equal(t, domain.BandInfo, domain.BandForScore(70))
	assert.Equal(t, domain.BandInfo, domain.BandForScore(89))
	assert.Equal(t, domain.BandGood, domain.BandForScore(90))
	assert.Equal(t, domain.BandGood, domain.BandForScore(100))
}
