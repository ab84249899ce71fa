package dto

import (
	"time"

	"github.com/google/uuid"
)

// LookupResult pairs one matched entity with enough of its parent
// report to render a result card without a second round trip.
type LookupResult struct {
	ID          uuid.UUID     `json:"id"`
	EntityType  string        `json:"entity_type"`
	EntityValue string        `json:"entity_value"`
	ReportedAt  time.Time     `json:"reported_at"`
	Report      ReportSummary `json:"report"`
}

type ReportSummary struct {
	ReferenceID string    `json:"reference_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
