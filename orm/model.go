package orm

import (
	"time"

	"gorm.io/datatypes"
)

type AssetRecord struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	Name     string `gorm:"size:255;not null"  json:"name"`
	MimeType string `gorm:"size:120"           json:"mimeType"`
	// PreviewID is validated against the live index, not by a database
	// constraint, so a dangling reference never blocks a load.
	PreviewID  *string `gorm:"size:36"                          json:"previewId,omitempty"`
	Owner      string  `gorm:"size:255;index"                   json:"owner"`
	Visibility string  `gorm:"size:16;not null;default:private" json:"visibility"`

	UserMetadata datatypes.JSONMap `json:"userMetadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`

	// Reverse relationship to tags with cascading deletion
	Tags []AssetTag `gorm:"foreignKey:AssetID;references:ID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
}

type AssetTag struct {
	// Composite primary key that also serves as foreign key to AssetRecord
	AssetID string `gorm:"primaryKey;size:36"  json:"assetId"`
	TagName string `gorm:"primaryKey;size:255" json:"tagName"`
}
