package handlers

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report-service/internal/api/dto"
	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/service"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// WebhooksHandler receives inbound SMS deliveries from the two gateway
// channels and feeds them into intake.
type WebhooksHandler struct {
	intake        *service.IntakeService
	webhookSecret string
}

// NewWebhooksHandler constructs handler.
func NewWebhooksHandler(intake *service.IntakeService, webhookSecret string) *WebhooksHandler {
	return &WebhooksHandler{intake: intake, webhookSecret: webhookSecret}
}

// Telerivet POST /webhooks/sms/telerivet.
//
// The shared secret is checked before the payload is processed in any
// way; a bad secret means nothing touches the store.
func (h *WebhooksHandler) Telerivet(c *fiber.Ctx) error {
	var req dto.TelerivetWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if h.webhookSecret == "" || subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.webhookSecret)) != 1 {
		return apperrors.NewUnauthorized("invalid webhook secret")
	}

	text := strings.TrimSpace(req.MessageText())
	if text == "" {
		return apperrors.NewValidationError("message text required", nil)
	}

	report := domain.Report{
		Text:     text,
		Reporter: req.Phone(),
		Source:   domain.ReportSourceSMS,
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

// Gateway POST /webhooks/sms/gateway.
func (h *WebhooksHandler) Gateway(c *fiber.Ctx) error {
	var req dto.GatewayWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	text := strings.TrimSpace(req.Body)
	if text == "" {
		return apperrors.NewValidationError("message body required", nil)
	}

	report := domain.Report{
		Text:     text,
		Reporter: strings.TrimSpace(req.From),
		Source:   domain.ReportSourceSMS,
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
