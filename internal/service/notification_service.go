package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/events"
	"github.com/spec-kit/civic-report-service/internal/notify"
)

// NotificationService listens for ticket events and pushes updates to
// reporters over email or SMS, depending on the reporter handle.
// Delivery is best-effort: failures are logged and never surfaced.
type NotificationService struct {
	email  notify.EmailSender
	sms    notify.SMSSender
	logger *zap.Logger
}

// NotificationDependencies holds constructor inputs.
type NotificationDependencies struct {
	Email  notify.EmailSender
	SMS    notify.SMSSender
	Logger *zap.Logger
}

// NewNotificationService builds the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		email:  deps.Email,
		sms:    deps.SMS,
		logger: deps.Logger,
	}
}

// RegisterHandlers subscribes the service to ticket events.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.handleTicketCreated)
	dispatcher.Subscribe(events.EventDuplicateMerged, s.handleDuplicateMerged)
	dispatcher.Subscribe(events.EventStatusChanged, s.handleStatusChanged)
}

func (s *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		s.logger.Warn("unexpected payload for ticket_created", zap.String("ticket_id", event.TicketID))
		return nil
	}
	ticket := payload.Ticket

	subject := fmt.Sprintf("Complaint Registered - %s", ticket.TicketID)
	body := fmt.Sprintf(
		"Your complaint has been registered.\nTicket ID: %s\nCategory: %s\nTitle: %s\nStatus: %s\nWe will keep you updated on its progress.",
		ticket.TicketID, ticket.Category, ticket.Title, ticket.Status)
	smsBody := fmt.Sprintf("Complaint registered. Ticket %s (%s). Status: %s.",
		ticket.TicketID, ticket.Category, ticket.Status)

	for _, reporter := range ticket.Reporters {
		s.deliver(ctx, reporter, subject, body, smsBody)
	}
	return nil
}

func (s *NotificationService) handleDuplicateMerged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.DuplicateMergedPayload)
	if !ok {
		s.logger.Warn("unexpected payload for duplicate_merged", zap.String("ticket_id", event.TicketID))
		return nil
	}
	if payload.Reporter == "" {
		return nil
	}
	ticket := payload.Ticket

	subject := fmt.Sprintf("Complaint Already Registered - %s", ticket.TicketID)
	body := fmt.Sprintf(
		"This issue was already reported and is being tracked.\nTicket ID: %s\nTitle: %s\nCurrent status: %s\nReports for this issue: %d",
		ticket.TicketID, ticket.Title, ticket.Status, ticket.OccurrenceCount)
	smsBody := fmt.Sprintf("This issue is already tracked as ticket %s. Status: %s.",
		ticket.TicketID, ticket.Status)

	s.deliver(ctx, payload.Reporter, subject, body, smsBody)
	return nil
}

func (s *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		s.logger.Warn("unexpected payload for status_changed", zap.String("ticket_id", event.TicketID))
		return nil
	}

	subject := fmt.Sprintf("Complaint Update - %s", event.TicketID)
	body := fmt.Sprintf(
		"Your complaint has a status update.\nTicket ID: %s\nStatus: %s (was %s)\nUpdated at: %s",
		event.TicketID, statusLabel(payload.NewStatus), statusLabel(payload.OldStatus), payload.UpdatedAt)
	smsBody := fmt.Sprintf("Ticket %s is now %s.", event.TicketID, statusLabel(payload.NewStatus))

	for _, reporter := range payload.Reporters {
		s.deliver(ctx, reporter, subject, body, smsBody)
	}
	return nil
}

// deliver routes one message to a single reporter handle. Handles with
// an "@" are treated as email addresses, everything else as a phone
// number.
func (s *NotificationService) deliver(ctx context.Context, reporter, subject, body, smsBody string) {
	reporter = strings.TrimSpace(reporter)
	if reporter == "" {
		return
	}

	var err error
	if strings.Contains(reporter, "@") {
		htmlBody := "<p>" + strings.ReplaceAll(body, "\n", "<br>") + "</p>"
		err = s.email.Send(ctx, reporter, subject, body, htmlBody)
	} else {
		err = s.sms.Send(ctx, reporter, smsBody)
	}
	if err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("reporter", reporter),
			zap.Error(err))
	}
}

func statusLabel(status domain.TicketStatus) string {
	return strings.ReplaceAll(string(status), "_", " ")
}
