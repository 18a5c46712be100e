package models

import (
	"time"

	dbtypes "github.com/mediafolio/catalog-backend/pkg/db/types"
)

// Item is one uploaded media record. Categories are not stored separately:
// they are derived by grouping items on CategoryID, so every member row
// carries the denormalized display name.
type Item struct {
	PublicID       string             `gorm:"column:public_id;primaryKey" json:"public_id"`
	CategoryID     string             `gorm:"column:category_id;not null;index" json:"category_id"`
	CategoryName   string             `gorm:"column:category_name;not null" json:"category_name"`
	Tags           dbtypes.StringList `gorm:"column:tags;type:text" json:"tags"`
	URL            string             `gorm:"column:url;not null" json:"url"`
	OptimizedURL   string             `gorm:"column:optimized_url" json:"optimized_url"`
	Format         string             `gorm:"column:format" json:"format"`
	IsFeatureImage bool               `gorm:"column:is_feature_image;not null;default:false" json:"is_feature_image"`
	ViewNumber     int64              `gorm:"column:view_number;not null;default:0" json:"view_number"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName pins the table name used by the goose migrations.
func (Item) TableName() string { return "items" }
