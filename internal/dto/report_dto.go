package dto

import (
	"time"

	"github.com/scamwall/scamwall-backend/internal/entity"
)

// SubmitReportRequest is the non-file part of a report submission. The
// evidence file, when present, travels as the "evidence" multipart
// field alongside these values.
type SubmitReportRequest struct {
	Category     string         `json:"category" form:"category"`
	Title        string         `json:"title" form:"title"`
	Description  string         `json:"description" form:"description"`
	Location     string         `json:"location" form:"location"`
	IncidentDate *time.Time     `json:"incident_date" form:"incident_date"`
	Anonymous    bool           `json:"anonymous" form:"anonymous"`
	Entities     []entity.Input `json:"entities"`
}

// EvidenceFile is the decoded multipart upload handed to the report
// service after the pre-upload size check.
type EvidenceFile struct {
	Name        string
	Size        int64
	ContentType string
	Data        []byte
}

// SubmitReportResponse carries the created report plus a non-fatal
// warning when a dependent step (evidence upload, entity indexing)
// failed after the report row was created.
type SubmitReportResponse struct {
	Report  interface{} `json:"report"`
	Warning string      `json:"warning,omitempty"`
}

// UpdateReportRequest is an owner-only partial edit. Nil fields are
// left untouched; a non-nil Entities replaces the full entity set.
type UpdateReportRequest struct {
	Title        *string         `json:"title"`
	Description  *string         `json:"description"`
	Category     *string         `json:"category"`
	Status       *string         `json:"status"`
	Location     *string         `json:"location"`
	IncidentDate *time.Time      `json:"incident_date"`
	Entities     *[]entity.Input `json:"entities"`
}
