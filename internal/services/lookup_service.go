package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/scamwall/scamwall-backend/internal/dto"
	"github.com/scamwall/scamwall-backend/internal/models"
)

// ErrLookup means the query layer failed. Distinct from zero matches,
// which is a successful empty result.
var ErrLookup = errors.New("lookup query failed")

// lookupLimit keeps unreported "clean" queries within interactive
// latency.
const lookupLimit = 100

type LookupService struct {
	db *gorm.DB
}

func NewLookupService(db *gorm.DB) *LookupService {
	return &LookupService{db: db}
}

// FindReports answers "has this entity been reported before": a
// case-insensitive unanchored substring match on entity_value,
// restricted to one entity type, newest first. Each match embeds its
// parent report summary so a result card needs no second round trip.
// An empty slice means no reports, never an error.
func (s *LookupService) FindReports(entityType, query string) ([]dto.LookupResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || !models.ValidEntityType(entityType) {
		return []dto.LookupResult{}, nil
	}

	var rows []models.LookupEntity
	err := s.db.Preload("Report").
		Where("entity_type = ?", entityType).
		Where("LOWER(entity_value) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("created_at DESC").
		Limit(lookupLimit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookup, err)
	}

	results := make([]dto.LookupResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, dto.LookupResult{
			ID:          row.ID,
			EntityType:  row.EntityType,
			EntityValue: row.EntityValue,
			ReportedAt:  row.CreatedAt,
			Report: dto.ReportSummary{
				ReferenceID: row.Report.ReferenceID,
				Title:       row.Report.Title,
				Category:    row.Report.Category,
				Location:    row.Report.Location,
				CreatedAt:   row.Report.CreatedAt,
			},
		})
	}
	return results, nil
}
