package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Image is one catalog item image with optional alt text.
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

// CatalogItem is the read-only product contract the scoring core consumes.
// The catalog sync pipeline owns these rows.
type CatalogItem struct {
	ID             snowflake.ID                `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID                `gorm:"not null;index" json:"tenant_id"`
	Handle         string                      `gorm:"not null" json:"handle"`
	Title          string                      `gorm:"not null" json:"title"`
	Description    string                      `json:"description"`
	Images         datatypes.JSONSlice[Image]  `gorm:"type:jsonb" json:"images"`
	ProductType    string                      `json:"product_type"`
	Vendor         string                      `json:"vendor"`
	Tags           datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"tags"`
	SEOTitle       string                      `gorm:"column:seo_title" json:"seo_title"`
	SEODescription string                      `gorm:"column:seo_description" json:"seo_description"`
	MetafieldCount int                         `gorm:"not null;default:0" json:"metafield_count"`
	CreatedAt      time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CatalogItem) TableName() string {
	return "catalog_items"
}
