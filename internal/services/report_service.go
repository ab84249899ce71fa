package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/scamwall/scamwall-backend/internal/dto"
	"github.com/scamwall/scamwall-backend/internal/entity"
	"github.com/scamwall/scamwall-backend/internal/evidence"
	"github.com/scamwall/scamwall-backend/internal/feed"
	"github.com/scamwall/scamwall-backend/internal/models"
	"github.com/scamwall/scamwall-backend/internal/refid"
)

var (
	// ErrAuthorizationRequired means an unauthenticated submission did
	// not opt in to anonymous reporting.
	ErrAuthorizationRequired = errors.New("sign in or choose anonymous reporting")
	// ErrStorage means the report row itself could not be created.
	ErrStorage        = errors.New("failed to store report")
	ErrReportNotFound = errors.New("report not found")
	ErrNotOwner       = errors.New("report not found or not owned by you")
)

// ValidationError names the submission fields that were missing or
// invalid. Recoverable by the user; no partial state is created.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid submission: " + strings.Join(e.Fields, ", ")
}

// referenceIDAttempts bounds the retry loop when a freshly generated
// reference id collides with an existing one.
const referenceIDAttempts = 3

const defaultFeedLimit = 50

// ReportService assembles and persists report records. Everything
// after the report row exists is best-effort: evidence upload, deepfake
// metadata and entity indexing failures leave the report in place and
// are surfaced as warnings, never as submission failures.
type ReportService struct {
	db          *gorm.DB
	correlation *CorrelationService
	store       evidence.Store
	broker      *feed.Broker

	// Generated server-side so collisions can be caught and retried at
	// the storage layer.
	newReferenceID func(time.Time) string
}

func NewReportService(db *gorm.DB, correlation *CorrelationService, store evidence.Store, broker *feed.Broker) *ReportService {
	return &ReportService{
		db:             db,
		correlation:    correlation,
		store:          store,
		broker:         broker,
		newReferenceID: refid.New,
	}
}

// Submit creates a report for the given identity (nil with
// anonymousOptIn=false is rejected), uploads evidence when present,
// indexes lookup entities and announces the report on the feed. The
// returned warning is non-empty when a post-creation step failed.
func (s *ReportService) Submit(ctx context.Context, req *dto.SubmitReportRequest, submitter *uuid.UUID, file *dto.EvidenceFile) (*models.Report, string, error) {
	if err := validateSubmission(req); err != nil {
		return nil, "", err
	}

	if submitter == nil && !req.Anonymous {
		return nil, "", ErrAuthorizationRequired
	}

	if file != nil && file.Size > evidence.MaxFileSize {
		return nil, "", &ValidationError{Fields: []string{"evidence"}}
	}

	report, err := s.createReportRow(req, submitter)
	if err != nil {
		return nil, "", err
	}

	var warning string

	// Two-phase evidence attach: the storage path is keyed by the
	// report id, so the row has to exist first. A failed upload or
	// follow-up update leaves the report without a linked file; that
	// partial result is tolerated, not rolled back.
	if file != nil {
		fileURL, upErr := s.attachEvidence(ctx, report, file)
		if upErr != nil {
			slog.Error("evidence upload failed",
				"report_id", report.ID, "reference_id", report.ReferenceID, "error", upErr)
			warning = "report created, but the evidence file could not be stored"
		}

		if report.Category == models.CategoryDeepfake {
			s.createDeepfakeMeta(report.ID, fileURL, file)
		}
	}

	// Empty or unknown-typed entries are dropped by normalization and
	// are not failures; only rows that should have persisted count.
	normalized := entity.NormalizeAll(req.Entities)
	if inserted := s.correlation.Index(report.ID, normalized); inserted < len(normalized) && warning == "" {
		warning = "report created, but some lookup entities could not be indexed"
	}

	if s.broker != nil {
		if err := s.broker.Publish(report); err != nil {
			slog.Error("feed publish failed", "report_id", report.ID, "error", err)
		}
	}

	return report, warning, nil
}

func validateSubmission(req *dto.SubmitReportRequest) error {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Description) == "" {
		missing = append(missing, "description")
	}
	if !models.ValidCategory(req.Category) {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// createReportRow persists the report, regenerating the reference id
// and retrying when it collides with an existing one.
func (s *ReportService) createReportRow(req *dto.SubmitReportRequest, submitter *uuid.UUID) (*models.Report, error) {
	for attempt := 0; attempt < referenceIDAttempts; attempt++ {
		report := &models.Report{
			ID:           uuid.New(),
			ReferenceID:  s.newReferenceID(time.Now()),
			SubmitterID:  submitter,
			Category:     req.Category,
			Title:        strings.TrimSpace(req.Title),
			Description:  strings.TrimSpace(req.Description),
			Location:     strings.TrimSpace(req.Location),
			IncidentDate: req.IncidentDate,
			Status:       models.StatusPending,
		}

		err := s.db.Create(report).Error
		if err == nil {
			return report, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			slog.Warn("reference id collision, retrying",
				"reference_id", report.ReferenceID, "attempt", attempt+1)
			continue
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil, fmt.Errorf("%w: reference id collisions exhausted retries", ErrStorage)
}

func (s *ReportService) attachEvidence(ctx context.Context, report *models.Report, file *dto.EvidenceFile) (string, error) {
	path := evidence.ObjectPath(report.ID.String(), file.Name)

	fileURL, err := s.store.Put(ctx, path, file.Data, file.ContentType)
	if err != nil {
		return "", err
	}

	if err := s.db.Model(report).Update("evidence_url", fileURL).Error; err != nil {
		// The file is stored but the report row does not point at it.
		// Tolerated; a later read can detect the missing link.
		slog.Error("evidence url update failed after upload",
			"report_id", report.ID, "url", fileURL, "error", err)
		return fileURL, nil
	}
	report.EvidenceURL = fileURL
	return fileURL, nil
}

func (s *ReportService) createDeepfakeMeta(reportID uuid.UUID, fileURL string, file *dto.EvidenceFile) {
	metadata, _ := json.Marshal(map[string]interface{}{
		"uploadDate":   time.Now().UTC().Format(time.RFC3339),
		"originalName": file.Name,
	})

	meta := models.DeepfakeMeta{
		ID:       uuid.New(),
		ReportID: reportID,
		FileURL:  fileURL,
		FileName: file.Name,
		FileSize: file.Size,
		FileType: file.ContentType,
		Metadata: datatypes.JSON(metadata),
	}
	if err := s.db.Create(&meta).Error; err != nil {
		slog.Error("failed to create deepfake metadata", "report_id", reportID, "error", err)
	}
}

// Recent returns the newest reports for the feed's history load,
// optionally restricted to one category.
func (s *ReportService) Recent(category string, limit int) ([]models.Report, error) {
	if limit <= 0 || limit > defaultFeedLimit {
		limit = defaultFeedLimit
	}

	query := s.db.Order("created_at DESC").Limit(limit)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var reports []models.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return reports, nil
}

// GetByReference resolves the public tracking code handed to the
// submitter.
func (s *ReportService) GetByReference(ref string) (*models.Report, error) {
	var report models.Report
	err := s.db.Preload("Entities").Where("reference_id = ?", strings.TrimSpace(ref)).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &report, nil
}

// ListMine returns the caller's own reports, newest first.
func (s *ReportService) ListMine(userID uuid.UUID, page, limit int) ([]models.Report, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var total int64
	query := s.db.Model(&models.Report{}).Where("submitter_id = ?", userID)
	query.Count(&total)

	var reports []models.Report
	err := query.Preload("Entities").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return reports, total, nil
}

// Update applies an owner-only edit. Anonymous reports have no owner,
// so no caller can ever match them here. Entity edits replace the full
// set; rows are never updated in place.
func (s *ReportService) Update(userID, reportID uuid.UUID, req *dto.UpdateReportRequest) (*models.Report, error) {
	report, err := s.ownedReport(userID, reportID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		if !models.ValidCategory(*req.Category) {
			return nil, &ValidationError{Fields: []string{"category"}}
		}
		updates["category"] = *req.Category
	}
	if req.Status != nil {
		if !models.ValidStatus(*req.Status) {
			return nil, &ValidationError{Fields: []string{"status"}}
		}
		updates["status"] = *req.Status
	}
	if req.Location != nil {
		updates["location"] = strings.TrimSpace(*req.Location)
	}
	if req.IncidentDate != nil {
		updates["incident_date"] = *req.IncidentDate
	}

	if len(updates) > 0 {
		if err := s.db.Model(report).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}

	if req.Entities != nil {
		if err := s.correlation.Replace(report.ID, *req.Entities); err != nil {
			slog.Error("failed to replace lookup entities", "report_id", report.ID, "error", err)
		}
	}

	return s.reload(report.ID)
}

// Delete removes an owned report; lookup entities and deepfake
// metadata go with it.
func (s *ReportService) Delete(userID, reportID uuid.UUID) error {
	report, err := s.ownedReport(userID, reportID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", report.ID).Delete(&models.LookupEntity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", report.ID).Delete(&models.DeepfakeMeta{}).Error; err != nil {
			return err
		}
		return tx.Delete(report).Error
	})
}

func (s *ReportService) ownedReport(userID, reportID uuid.UUID) (*models.Report, error) {
	var report models.Report
	err := s.db.Where("id = ? AND submitter_id = ?", reportID, userID).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotOwner
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &report, nil
}

func (s *ReportService) reload(reportID uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := s.db.Preload("Entities").First(&report, "id = ?", reportID).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &report, nil
}
