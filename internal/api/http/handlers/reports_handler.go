package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report-service/internal/api/dto"
	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/service"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// ReportsHandler exposes the voice-channel intake endpoint.
type ReportsHandler struct {
	intake *service.IntakeService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(intake *service.IntakeService) *ReportsHandler {
	return &ReportsHandler{intake: intake}
}

// SubmitIssue POST /issues.
func (h *ReportsHandler) SubmitIssue(c *fiber.Ctx) error {
	var req dto.SubmitIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	report := domain.Report{
		Text:     req.Text,
		Reporter: req.Email,
		Name:     req.Name,
		Photo:    req.Photo,
		Source:   domain.ReportSourceVoice,
	}
	if req.Location != nil {
		report.Location = &domain.Location{
			Longitude: req.Location.Longitude,
			Latitude:  req.Location.Latitude,
		}
	}

	ticket, created, err := h.intake.Submit(c.UserContext(), report)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"data":      ticketResponse(ticket),
		"duplicate": !created,
	})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	resp := dto.TicketResponse{
		TicketID:        ticket.TicketID,
		Category:        ticket.Category,
		Title:           ticket.Title,
		Description:     ticket.Description,
		Address:         ticket.Address,
		Photo:           ticket.Photo,
		Urgency:         ticket.Urgency,
		Status:          ticket.Status,
		Reporters:       ticket.Reporters,
		OccurrenceCount: ticket.OccurrenceCount,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
		InProgressAt:    ticket.InProgressAt,
		CompletedAt:     ticket.CompletedAt,
	}
	if ticket.Location != nil {
		resp.Location = &dto.LocationDTO{
			Longitude: ticket.Location.Longitude,
			Latitude:  ticket.Location.Latitude,
		}
	}
	return resp
}
