package services

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scamwall/scamwall-backend/internal/entity"
	"github.com/scamwall/scamwall-backend/internal/models"
)

// CorrelationService persists lookup entities linked to a report so
// later fraud lookups can find them.
type CorrelationService struct {
	db *gorm.DB
}

func NewCorrelationService(db *gorm.DB) *CorrelationService {
	return &CorrelationService{db: db}
}

// Index inserts one LookupEntity row per normalized input. Rows are
// independent: a failed insert is logged and skipped without rolling
// back the report or the rows already written. Returns how many rows
// were persisted.
func (s *CorrelationService) Index(reportID uuid.UUID, inputs []entity.Input) int {
	inserted := 0
	for _, in := range entity.NormalizeAll(inputs) {
		row := models.LookupEntity{
			ID:          uuid.New(),
			ReportID:    reportID,
			EntityType:  in.Type,
			EntityValue: in.Value,
			CreatedAt:   time.Now(),
		}
		if err := s.db.Create(&row).Error; err != nil {
			slog.Error("failed to index lookup entity",
				"report_id", reportID, "entity_type", in.Type, "error", err)
			continue
		}
		inserted++
	}
	return inserted
}

// Replace models entity edits as delete-all-for-report then re-insert;
// rows are never updated in place.
func (s *CorrelationService) Replace(reportID uuid.UUID, inputs []entity.Input) error {
	if err := s.db.Where("report_id = ?", reportID).Delete(&models.LookupEntity{}).Error; err != nil {
		return err
	}
	s.Index(reportID, inputs)
	return nil
}
