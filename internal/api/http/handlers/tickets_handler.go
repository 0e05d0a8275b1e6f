package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report-service/internal/api/dto"
	"github.com/spec-kit/civic-report-service/internal/service"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// TicketsHandler exposes ticket read and lifecycle endpoints.
type TicketsHandler struct {
	lifecycle *service.LifecycleService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(lifecycle *service.LifecycleService) *TicketsHandler {
	return &TicketsHandler{lifecycle: lifecycle}
}

// GetTicket GET /tickets/:ticket_id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticketID := strings.TrimSpace(c.Params("ticket_id"))
	if ticketID == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}
	ticket, err := h.lifecycle.GetTicket(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.lifecycle.ListTickets(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateStatus PATCH /tickets/:ticket_id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	ticketID := strings.TrimSpace(c.Params("ticket_id"))
	if ticketID == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}
	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	change, err := h.lifecycle.UpdateStatus(c.UserContext(), ticketID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatusChangeResponse{
		TicketID:     change.TicketID,
		OldStatus:    change.OldStatus,
		NewStatus:    change.NewStatus,
		UpdatedAt:    change.UpdatedAt,
		InProgressAt: change.InProgressAt,
		CompletedAt:  change.CompletedAt,
	}})
}
