package models

import (
	"time"

	"github.com/google/uuid"
)

// Report categories accepted at submission time.
const (
	CategoryFraud      = "fraud"
	CategoryPhishing   = "phishing"
	CategoryHarassment = "harassment"
	CategoryDeepfake   = "deepfake"
)

// Report statuses. New reports always start as pending.
const (
	StatusPending       = "pending"
	StatusInvestigating = "investigating"
	StatusResolved      = "resolved"
)

var Categories = []string{CategoryFraud, CategoryPhishing, CategoryHarassment, CategoryDeepfake}

// Report is one submitted cybercrime incident. SubmitterID is nil for
// anonymous submissions, which have no owner and can never be edited or
// deleted afterwards. ReferenceID is the only identifier shown to end
// users.
type Report struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReferenceID  string         `gorm:"size:24;not null;uniqueIndex" json:"reference_id"`
	SubmitterID  *uuid.UUID     `gorm:"type:uuid;index" json:"submitter_id"`
	Category     string         `gorm:"size:20;not null;index" json:"category"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	Location     string         `gorm:"size:255" json:"location,omitempty"`
	IncidentDate *time.Time     `json:"incident_date,omitempty"`
	EvidenceURL  string         `gorm:"size:512" json:"evidence_url,omitempty"`
	Status       string         `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Entities     []LookupEntity `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"entities,omitempty"`
	DeepfakeMeta *DeepfakeMeta  `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"deepfake_meta,omitempty"`
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInvestigating || s == StatusResolved
}
