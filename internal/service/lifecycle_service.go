package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/events"
	"github.com/spec-kit/civic-report-service/internal/store"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// StatusChange is the effective before/after state of a lifecycle
// transition.
type StatusChange struct {
	TicketID     string
	OldStatus    domain.TicketStatus
	NewStatus    domain.TicketStatus
	UpdatedAt    string
	InProgressAt *string
	CompletedAt  *string
}

// LifecycleService applies status transitions to tickets, enforcing
// the set-once timestamp invariants, and serves ticket reads.
type LifecycleService struct {
	tickets    store.TicketStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	retries    int
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	TicketStore  store.TicketStore
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	StoreRetries int
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{
		tickets:    deps.TicketStore,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		retries:    deps.StoreRetries,
	}
}

// UpdateStatus moves the ticket to the requested status. Any member of
// the status enum is accepted, including backward transitions; the
// set-once timestamps are only written on the first entry into their
// state and never overwritten on later re-entries.
func (s *LifecycleService) UpdateStatus(ctx context.Context, ticketID, rawStatus string) (*StatusChange, error) {
	status, ok := domain.NormalizeStatus(rawStatus)
	if !ok {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{
			"status":  rawStatus,
			"allowed": []domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusInProgress, domain.TicketStatusCompleted},
		})
	}

	ticket, err := s.getByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	oldStatus := ticket.Status

	now := domain.FormatTime(time.Now())
	patch := store.StatusPatch{Status: status, UpdatedAt: now}
	if status == domain.TicketStatusInProgress && ticket.InProgressAt == nil {
		patch.InProgressAt = &now
	}
	if status == domain.TicketStatusCompleted && ticket.CompletedAt == nil {
		patch.CompletedAt = &now
	}

	var updated *domain.Ticket
	err = retryTransient(s.retries, func() error {
		applied, err := s.tickets.UpdateStatus(ctx, ticketID, patch)
		if err != nil {
			return err
		}
		updated = applied
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventStatusChanged,
		TicketID: ticketID,
		Payload: events.StatusChangedPayload{
			Reporters:    updated.Reporters,
			OldStatus:    oldStatus,
			NewStatus:    updated.Status,
			UpdatedAt:    now,
			InProgressAt: updated.InProgressAt,
			CompletedAt:  updated.CompletedAt,
		},
	})
	s.logger.Info("ticket status updated",
		zap.String("ticket_id", ticketID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(updated.Status)))

	return &StatusChange{
		TicketID:     ticketID,
		OldStatus:    oldStatus,
		NewStatus:    updated.Status,
		UpdatedAt:    now,
		InProgressAt: updated.InProgressAt,
		CompletedAt:  updated.CompletedAt,
	}, nil
}

// GetTicket returns the ticket with the given external id.
func (s *LifecycleService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.getByID(ctx, ticketID)
}

// ListTickets returns every ticket in the store.
func (s *LifecycleService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	err := retryTransient(s.retries, func() error {
		all, err := s.tickets.List(ctx)
		if err != nil {
			return err
		}
		tickets = all
		return nil
	})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return tickets, nil
}

func (s *LifecycleService) getByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := retryTransient(s.retries, func() error {
		found, err := s.tickets.GetByTicketID(ctx, ticketID)
		if err != nil {
			return err
		}
		ticket = found
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return ticket, nil
}

func (s *LifecycleService) publish(ctx context.Context, event events.Event) {
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
