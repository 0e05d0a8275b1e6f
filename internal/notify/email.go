// Package notify holds the outbound channels the notification service
// delivers through. Both senders are config-gated: with no credentials
// they log and skip, so development setups never fail on delivery.
package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-report-service/internal/config"
)

// EmailSender delivers a single HTML email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, plainBody, htmlBody string) error
}

// sendgridSender sends via the SendGrid v3 API.
type sendgridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *zap.Logger
}

// NewEmailSender builds the SendGrid-backed sender. Without an API key
// it degrades to a logging no-op.
func NewEmailSender(cfg config.EmailConfig, logger *zap.Logger) EmailSender {
	if cfg.SendGridAPIKey == "" {
		logger.Warn("sendgrid not configured, email notifications disabled")
		return &noopEmailSender{logger: logger}
	}
	return &sendgridSender{
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

func (s *sendgridSender) Send(ctx context.Context, to, subject, plainBody, htmlBody string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), plainBody, htmlBody)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned %d", resp.StatusCode)
	}
	s.logger.Debug("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

type noopEmailSender struct {
	logger *zap.Logger
}

func (s *noopEmailSender) Send(ctx context.Context, to, subject, plainBody, htmlBody string) error {
	s.logger.Debug("email skipped (sender not configured)",
		zap.String("to", to), zap.String("subject", subject))
	return nil
}
