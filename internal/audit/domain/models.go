package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Severity labels one issue found during scoring. Distinct from the
// ScoreBand vocabulary, which classifies the aggregate score.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Issue codes are stable identifiers consumed by dashboards and reports.
const (
	CodeNoDescription    = "NO_DESCRIPTION"
	CodeShortDescription = "SHORT_DESCRIPTION"
	CodeBriefDescription = "BRIEF_DESCRIPTION"
	CodeNoImages         = "NO_IMAGES"
	CodeMissingAltText   = "MISSING_ALT_TEXT"
	CodeNoSEOTitle       = "NO_SEO_TITLE"
	CodeNoSEODescription = "NO_SEO_DESCRIPTION"
	CodeNoProductType    = "NO_PRODUCT_TYPE"
	CodeNoTags           = "NO_TAGS"
	CodeNoMetafields     = "NO_METAFIELDS"
	CodeNoVendor         = "NO_VENDOR"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Field    string   `json:"field,omitempty"`
}

// AuditResult is one scored catalog item, keyed by (tenant, item) so
// reruns upsert rather than duplicate.
type AuditResult struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID snowflake.ID `gorm:"not null;uniqueIndex:idx_audit_tenant_item" json:"tenant_id"`
	ItemID   snowflake.ID `gorm:"not null;uniqueIndex:idx_audit_tenant_item" json:"item_id"`
	Title    string       `json:"title"`
	Handle   string       `json:"handle"`

	Score  int                        `gorm:"not null" json:"score"`
	Issues datatypes.JSONSlice[Issue] `gorm:"type:jsonb" json:"issues"`

	HasImages         bool `gorm:"not null" json:"has_images"`
	HasDescription    bool `gorm:"not null" json:"has_description"`
	HasMetafields     bool `gorm:"not null" json:"has_metafields"`
	DescriptionLength int  `gorm:"not null" json:"description_length"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (AuditResult) TableName() string {
	return "audit_results"
}

// ScoreBand classifies an aggregate score for reporting. This is a
// separate vocabulary from per-issue Severity labels.
type ScoreBand string

const (
	BandCritical ScoreBand = "critical" // score < 40
	BandWarning  ScoreBand = "warning"  // 40-69
	BandInfo     ScoreBand = "info"     // 70-89
	BandGood     ScoreBand = "good"     // >= 90
)

func BandForScore(score int) ScoreBand {
	switch {
	case score < 40:
		return BandCritical
	case score < 70:
		return BandWarning
	case score < 90:
		return BandInfo
	default:
		return BandGood
	}
}

// TenantAuditSummary is recomputed wholesale on each run.
type TenantAuditSummary struct {
	TenantID      snowflake.ID `json:"tenant_id"`
	TotalItems    int          `json:"total_items"`
	AuditedItems  int          `json:"audited_items"`
	AverageScore  int          `json:"average_score"`
	CriticalCount int          `json:"critical_count"`
	WarningCount  int          `json:"warning_count"`
	InfoCount     int          `json:"info_count"`
	GeneratedAt   time.Time    `json:"generated_at"`
}
