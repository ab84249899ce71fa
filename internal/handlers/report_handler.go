package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/scamwall/scamwall-backend/internal/dto"
	"github.com/scamwall/scamwall-backend/internal/entity"
	"github.com/scamwall/scamwall-backend/internal/evidence"
	"github.com/scamwall/scamwall-backend/internal/middleware"
	"github.com/scamwall/scamwall-backend/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Submit accepts either a JSON body or multipart/form-data with an
// optional "evidence" file field. Oversize evidence is rejected here,
// before anything touches storage.
func (h *ReportHandler) Submit(c *fiber.Ctx) error {
	req, file, err := parseSubmission(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	report, warning, err := h.reportService.Submit(c.Context(), req, middleware.MaybeUserID(c), file)
	if err != nil {
		var vErr *services.ValidationError
		switch {
		case errors.As(err, &vErr):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: vErr.Error(),
			})
		case errors.Is(err, services.ErrAuthorizationRequired):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to submit report",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SubmitReportResponse{
		Report:  report,
		Warning: warning,
	})
}

func parseSubmission(c *fiber.Ctx) (*dto.SubmitReportRequest, *dto.EvidenceFile, error) {
	contentType := string(c.Request().Header.ContentType())
	if !strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		var req dto.SubmitReportRequest
		if err := c.BodyParser(&req); err != nil {
			return nil, nil, errors.New("invalid request body")
		}
		return &req, nil, nil
	}

	req := &dto.SubmitReportRequest{
		Category:    c.FormValue("category"),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Location:    c.FormValue("location"),
		Anonymous:   c.FormValue("anonymous") == "true",
	}

	if v := c.FormValue("incident_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, nil, errors.New("incident_date must be YYYY-MM-DD")
		}
		req.IncidentDate = &d
	}

	if v := c.FormValue("entities"); v != "" {
		var ents []entity.Input
		if err := json.Unmarshal([]byte(v), &ents); err != nil {
			return nil, nil, errors.New("entities must be a JSON array of {type, value}")
		}
		req.Entities = ents
	}

	fh, err := c.FormFile("evidence")
	if err != nil {
		// No evidence file attached.
		return req, nil, nil
	}

	if fh.Size > evidence.MaxFileSize {
		return nil, nil, errors.New("evidence file must be smaller than 10MB")
	}

	file, err := readEvidence(fh)
	if err != nil {
		return nil, nil, errors.New("failed to read evidence file")
	}
	return req, file, nil
}

func readEvidence(fh *multipart.FileHeader) (*dto.EvidenceFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &dto.EvidenceFile{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// Recent serves the feed's history load: newest reports, optionally
// filtered by category.
func (h *ReportHandler) Recent(c *fiber.Ctx) error {
	category := c.Query("category", "")
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	reports, err := h.reportService.Recent(category, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}

	return c.JSON(fiber.Map{"reports": reports})
}

func (h *ReportHandler) GetByReference(c *fiber.Ctx) error {
	report, err := h.reportService.GetByReference(c.Params("ref"))
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch report",
		})
	}

	return c.JSON(report)
}

func (h *ReportHandler) ListMine(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	reports, total, err := h.reportService.ListMine(userID, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

func (h *ReportHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	var req dto.UpdateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.reportService.Update(userID, reportID, &req)
	if err != nil {
		var vErr *services.ValidationError
		switch {
		case errors.Is(err, services.ErrNotOwner):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.As(err, &vErr):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: vErr.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to update report",
			})
		}
	}

	return c.JSON(report)
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	if err := h.reportService.Delete(userID, reportID); err != nil {
		if errors.Is(err, services.ErrNotOwner) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete report",
		})
	}

	return c.JSON(fiber.Map{"message": "Report deleted"})
}
