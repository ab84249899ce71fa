package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/scamwall/scamwall-backend/internal/dto"
	"github.com/scamwall/scamwall-backend/internal/services"
)

type LookupHandler struct {
	lookupService *services.LookupService
}

func NewLookupHandler(lookupService *services.LookupService) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

// Find answers GET /api/lookup?type=email&q=scam@. Zero matches is a
// 200 with an empty list; only a query-layer failure is an error.
func (h *LookupHandler) Find(c *fiber.Ctx) error {
	entityType := c.Query("type")
	query := c.Query("q")

	results, err := h.lookupService.FindReports(entityType, query)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Lookup failed, please try again",
		})
	}

	return c.JSON(fiber.Map{
		"results": results,
		"count":   len(results),
	})
}
