package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Platform identifies one supported answer engine.
type Platform string

const (
	PlatformOpenAI     Platform = "openai"
	PlatformPerplexity Platform = "perplexity"
)

// Quality classifies how favorably a response presents the brand.
type Quality string

const (
	QualityNone    Quality = "none"
	QualityPartial Quality = "partial"
	QualityGood    Quality = "good"
)

// CheckResult is one probe outcome. Append-only: rows are never mutated
// after creation, and the monthly quota is derived by counting them.
type CheckResult struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	Platform Platform     `gorm:"not null" json:"platform"`
	Query    string       `gorm:"not null" json:"query"`

	IsMentioned     bool                        `gorm:"not null" json:"is_mentioned"`
	MentionContext  *string                     `json:"mention_context,omitempty"`
	Position        *int                        `json:"position,omitempty"`
	Competitors     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"competitors_found"`
	ResponseQuality Quality                     `gorm:"not null;default:'none'" json:"response_quality"`
	RawResponse     string                      `gorm:"type:text" json:"raw_response"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (CheckResult) TableName() string {
	return "visibility_check_results"
}

// Analysis is the analyzer's verdict on one raw response, before
// platform/query/raw text are attached.
type Analysis struct {
	Mentioned      bool
	MentionContext *string
	Position       *int
	Competitors    []string
	Quality        Quality
}

// CheckSummary aggregates one run.
type CheckSummary struct {
	TenantID          snowflake.ID `json:"tenant_id"`
	TotalChecks       int          `json:"total_checks"`
	MentionedCount    int          `json:"mentioned_count"`
	NotMentionedCount int          `json:"not_mentioned_count"`
	Competitors       []string     `json:"competitors_found"`
	GeneratedAt       time.Time    `json:"generated_at"`
}
