package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/civic-report-service/internal/config"
)

// SMSSender delivers a single SMS message.
type SMSSender interface {
	Send(ctx context.Context, toPhone, message string) error
}

// telerivetSender sends via the Telerivet REST API, which authenticates
// with the API key as HTTP basic-auth username.
type telerivetSender struct {
	apiKey    string
	projectID string
	phoneID   string
	baseURL   string
	client    *http.Client
	logger    *zap.Logger
}

// NewSMSSender builds the gateway-backed sender. Without credentials it
// degrades to a logging no-op.
func NewSMSSender(cfg config.SMSConfig, logger *zap.Logger) SMSSender {
	if cfg.APIKey == "" || cfg.ProjectID == "" {
		logger.Warn("sms gateway not configured, sms notifications disabled")
		return &noopSMSSender{logger: logger}
	}
	return &telerivetSender{
		apiKey:    cfg.APIKey,
		projectID: cfg.ProjectID,
		phoneID:   cfg.PhoneID,
		baseURL:   cfg.BaseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

func (s *telerivetSender) Send(ctx context.Context, toPhone, message string) error {
	payload := map[string]string{
		"to_number": toPhone,
		"content":   message,
	}
	if s.phoneID != "" {
		payload["phone_id"] = s.phoneID
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/projects/%s/messages/send", s.baseURL, s.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.apiKey, "")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, string(data))
	}
	s.logger.Debug("sms sent", zap.String("to", toPhone))
	return nil
}

type noopSMSSender struct {
	logger *zap.Logger
}

func (s *noopSMSSender) Send(ctx context.Context, toPhone, message string) error {
	s.logger.Debug("sms skipped (sender not configured)", zap.String("to", toPhone))
	return nil
}
