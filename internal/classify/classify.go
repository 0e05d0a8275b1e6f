// Package classify turns free-text municipal reports into structured
// issue fields. The adapter wraps a remote text-understanding provider
// with a bounded timeout and falls back to a deterministic rule-based
// classifier whenever the provider is unavailable, slow, or returns an
// unusable response. Classification always yields a result; failure is
// absorbed here and never surfaced to callers.
package classify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// Source tags how a result was produced so callers never have to
// branch on untyped provider output.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Result is a structured classification of a report.
type Result struct {
	Category    domain.Category
	Title       string
	Description string
	Address     string
	Urgency     domain.Urgency
	Source      Source
}

// Analysis is the raw field set a provider returns. The adapter
// validates it before trusting it.
type Analysis struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Urgency     string `json:"urgency"`
}

// Provider is the remote text-understanding call.
type Provider interface {
	Analyze(ctx context.Context, text string) (*Analysis, error)
}

// Adapter is the classification entry point used by the intake flow.
type Adapter struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
}

// NewAdapter builds an adapter. A nil provider is valid and means
// every classification uses the rule-based fallback.
func NewAdapter(provider Provider, timeout time.Duration, logger *zap.Logger) *Adapter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{provider: provider, timeout: timeout, logger: logger}
}

// Classify returns structured issue fields for the text. It never
// fails: provider errors, timeouts and malformed responses all degrade
// to the deterministic fallback. When the report carried coordinates
// and no address could be derived from the text, the hint location
// fills the address.
func (a *Adapter) Classify(ctx context.Context, text string, hint *domain.Location) Result {
	if a.provider == nil {
		return fallbackWithHint(text, hint)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	analysis, err := a.provider.Analyze(ctx, text)
	if err != nil {
		a.logger.Warn("classifier provider unavailable, using fallback", zap.Error(err))
		return fallbackWithHint(text, hint)
	}

	result, ok := a.validate(analysis)
	if !ok {
		a.logger.Warn("classifier response incomplete, using fallback")
		return fallbackWithHint(text, hint)
	}
	if result.Address == defaultAddress && hint != nil {
		result.Address = coordinateAddress(hint)
	}
	return result
}

// validate checks required fields at the adapter boundary. Anything
// missing or outside the enums rejects the whole response.
func (a *Adapter) validate(analysis *Analysis) (Result, bool) {
	if analysis == nil {
		return Result{}, false
	}
	category := domain.Category(analysis.Category)
	if !domain.ValidCategory(category) {
		return Result{}, false
	}
	if analysis.Title == "" || analysis.Description == "" {
		return Result{}, false
	}
	urgency := domain.Urgency(analysis.Urgency)
	if !domain.ValidUrgency(urgency) {
		urgency = domain.UrgencyMedium
	}
	address := analysis.Address
	if address == "" {
		address = defaultAddress
	}
	return Result{
		Category:    category,
		Title:       analysis.Title,
		Description: analysis.Description,
		Address:     address,
		Urgency:     urgency,
		Source:      SourceModel,
	}, true
}
