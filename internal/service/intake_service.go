package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-report-service/internal/classify"
	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/events"
	"github.com/spec-kit/civic-report-service/internal/store"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// Classifier produces structured fields from report text. It never
// fails; degraded classification falls back internally.
type Classifier interface {
	Classify(ctx context.Context, text string, hint *domain.Location) classify.Result
}

// Fingerprinter derives the deduplication key for report content.
type Fingerprinter interface {
	Key(text string, loc *domain.Location) string
}

// IntakeService turns raw reports into tickets: it classifies the
// text, computes the dedup fingerprint, and either creates a new
// ticket or merges the report into the existing one.
type IntakeService struct {
	classifier   Classifier
	fingerprints Fingerprinter
	tickets      store.TicketStore
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	retries      int
}

// IntakeDependencies bundles collaborators for the intake service.
type IntakeDependencies struct {
	Classifier   Classifier
	Fingerprints Fingerprinter
	TicketStore  store.TicketStore
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	StoreRetries int
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeService{
		classifier:   deps.Classifier,
		fingerprints: deps.Fingerprints,
		tickets:      deps.TicketStore,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
		retries:      deps.StoreRetries,
	}
}

// Submit processes one inbound report. It returns the ticket the
// report landed on and whether that ticket was created by this call.
// Classification failure never surfaces; persistence failure does,
// after the retry budget, and the caller may retry safely: the
// deterministic fingerprint plus the store's conditional insert make
// resubmission idempotent with respect to ticket creation.
func (s *IntakeService) Submit(ctx context.Context, report domain.Report) (*domain.Ticket, bool, error) {
	text := strings.TrimSpace(report.Text)
	if text == "" {
		return nil, false, apperrors.NewValidationError("report text required", nil)
	}

	result := s.classifier.Classify(ctx, text, report.Location)
	fp := s.fingerprints.Key(text, report.Location)

	// The loop covers the create/merge race: losing the conditional
	// insert to a concurrent creation re-enters the merge path.
	maxIterations := s.retries + 2
	if maxIterations < 3 {
		maxIterations = 3
	}
	var lastErr error
	for i := 0; i < maxIterations; i++ {
		_, err := s.findByFingerprint(ctx, fp)
		switch {
		case err == nil:
			merged, mergeErr := s.merge(ctx, fp, report)
			if mergeErr != nil {
				if errors.Is(mergeErr, store.ErrTicketNotFound) {
					// Ticket vanished between lookup and merge; retry
					// from the top.
					lastErr = mergeErr
					continue
				}
				return nil, false, apperrors.NewStoreUnavailable(mergeErr)
			}
			s.publish(ctx, events.Event{
				Type:     events.EventDuplicateMerged,
				TicketID: merged.TicketID,
				Payload:  events.DuplicateMergedPayload{Ticket: *merged, Reporter: report.Reporter},
			})
			s.logger.Info("duplicate report merged",
				zap.String("ticket_id", merged.TicketID),
				zap.Int("occurrence_count", merged.OccurrenceCount))
			return merged, false, nil

		case errors.Is(err, store.ErrTicketNotFound):
			ticket := s.newTicket(fp, text, report, result)
			insertErr := retryTransient(s.retries, func() error {
				return s.tickets.Insert(ctx, ticket)
			})
			if insertErr != nil {
				if errors.Is(insertErr, store.ErrFingerprintConflict) {
					// A concurrent submission created the ticket first.
					lastErr = insertErr
					continue
				}
				return nil, false, apperrors.NewStoreUnavailable(insertErr)
			}
			s.publish(ctx, events.Event{
				Type:     events.EventTicketCreated,
				TicketID: ticket.TicketID,
				Payload:  events.TicketCreatedPayload{Ticket: *ticket},
			})
			s.logger.Info("ticket created",
				zap.String("ticket_id", ticket.TicketID),
				zap.String("category", string(ticket.Category)),
				zap.String("classification", string(result.Source)))
			return ticket, true, nil

		default:
			return nil, false, apperrors.NewStoreUnavailable(err)
		}
	}
	return nil, false, apperrors.NewStoreUnavailable(lastErr)
}

func (s *IntakeService) findByFingerprint(ctx context.Context, fp string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := retryTransient(s.retries, func() error {
		found, err := s.tickets.FindByFingerprint(ctx, fp)
		if err != nil {
			return err
		}
		ticket = found
		return nil
	})
	return ticket, err
}

func (s *IntakeService) merge(ctx context.Context, fp string, report domain.Report) (*domain.Ticket, error) {
	var merged *domain.Ticket
	err := retryTransient(s.retries, func() error {
		ticket, err := s.tickets.Merge(ctx, fp, store.MergePatch{
			Reporter: report.Reporter,
			Location: report.Location,
		})
		if err != nil {
			return err
		}
		merged = ticket
		return nil
	})
	return merged, err
}

func (s *IntakeService) newTicket(fp, text string, report domain.Report, result classify.Result) *domain.Ticket {
	reporters := []string{}
	if report.Reporter != "" {
		reporters = append(reporters, report.Reporter)
	}
	return &domain.Ticket{
		TicketID:        generateTicketID(),
		Fingerprint:     fp,
		Category:        result.Category,
		Title:           result.Title,
		Description:     result.Description,
		Address:         result.Address,
		Location:        report.Location,
		Photo:           report.Photo,
		Urgency:         result.Urgency,
		Status:          domain.TicketStatusNew,
		Reporters:       reporters,
		OccurrenceCount: 1,
		OriginalText:    text,
		CreatedAt:       domain.FormatTime(time.Now()),
	}
}

func (s *IntakeService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketID() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
