package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DeepfakeMeta holds file details for deepfake reports that were
// submitted with evidence. At most one row per report.
type DeepfakeMeta struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"report_id"`
	FileURL   string         `gorm:"size:512;not null" json:"file_url"`
	FileName  string         `gorm:"size:255" json:"file_name"`
	FileSize  int64          `json:"file_size"`
	FileType  string         `gorm:"size:100" json:"file_type"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}
