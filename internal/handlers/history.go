package handlers

import (
	"errors"

	"remit/internal/middleware"
	"remit/internal/services/history"
	"remit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// HistoryHandler exposes the read-only statement endpoint.
type HistoryHandler struct {
	service history.Service
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(s history.Service) *HistoryHandler {
	return &HistoryHandler{service: s}
}

// GetHistory handles GET /api/history requests for the calling account.
func (h *HistoryHandler) GetHistory(c *fiber.Ctx) error {
	accountID := c.Locals(middleware.AccountIDKey).(uint)

	statement, err := h.service.GetHistory(c.Context(), accountID)
	if err != nil {
		if errors.Is(err, history.ErrUnknownAccount) {
			return response.NotFound(c, err.Error())
		}
		return response.ServerError(c, "failed to load history")
	}
	return response.Success(c, "history", statement)
}
