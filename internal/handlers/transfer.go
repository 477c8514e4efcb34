package handlers

import (
	"errors"

	"remit/internal/middleware"
	"remit/internal/services/transfer"
	"remit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TransferHandler exposes the money-transfer endpoint.
type TransferHandler struct {
	service transfer.Service
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(s transfer.Service) *TransferHandler {
	return &TransferHandler{service: s}
}

// Transfer handles POST /api/transfer requests.
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	senderID := c.Locals(middleware.AccountIDKey).(uint)

	var req struct {
		ReceiverID uint            `json:"receiver_id"`
		Amount     decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, transfer.ErrInvalidAmount.Error())
	}

	result, err := h.service.Transfer(c.Context(), senderID, req.ReceiverID, req.Amount)
	if err != nil {
		return transferError(c, err)
	}
	return response.Success(c, "transfer completed", result)
}

// transferError maps engine errors onto HTTP responses. Validation and
// business errors carry their own message; fatal errors stay generic.
func transferError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, transfer.ErrInvalidAmount),
		errors.Is(err, transfer.ErrSelfTransfer),
		errors.Is(err, transfer.ErrInsufficientFunds):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, transfer.ErrUnknownSender),
		errors.Is(err, transfer.ErrUnknownReceiver):
		return response.NotFound(c, err.Error())
	case errors.Is(err, transfer.ErrConcurrencyConflict):
		return response.Error(c, fiber.StatusConflict, err.Error())
	default:
		return response.ServerError(c, "transfer failed, please try again")
	}
}
