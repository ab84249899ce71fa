package models

import (
	"time"

	"github.com/google/uuid"
)

// Lookup entity types.
const (
	EntityEmail   = "email"
	EntityPhone   = "phone"
	EntityWebsite = "website"
)

// LookupEntity is a contact point (email, phone number or website)
// associated with a report, indexed for cross-report fraud lookups.
// Rows are created alongside the report and never updated in place;
// entity edits delete all rows for the report and re-insert.
type LookupEntity struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID    uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`
	EntityType  string    `gorm:"size:20;not null;index" json:"entity_type"`
	EntityValue string    `gorm:"size:255;not null" json:"entity_value"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	Report      Report    `gorm:"foreignKey:ReportID" json:"-"`
}

func ValidEntityType(t string) bool {
	return t == EntityEmail || t == EntityPhone || t == EntityWebsite
}
