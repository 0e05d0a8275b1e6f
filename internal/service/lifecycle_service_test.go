package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/events"
	"github.com/spec-kit/civic-report-service/internal/store"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

func seedTicket(t *testing.T, tickets store.TicketStore) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		TicketID:        "TKT-AB12CD34",
		Fingerprint:     "fp-1",
		Category:        domain.CategoryRoads,
		Title:           "Pothole in Sector 4",
		Description:     "Deep pothole near the gate.",
		Address:         "Sector 4",
		Urgency:         domain.UrgencyMedium,
		Status:          domain.TicketStatusNew,
		Reporters:       []string{"citizen@example.com"},
		OccurrenceCount: 1,
		CreatedAt:       "10:00 01-06-2026",
	}
	if err := tickets.Insert(context.Background(), ticket); err != nil {
		t.Fatalf("seed Insert: %v", err)
	}
	return ticket
}

func newLifecycleForTest(tickets store.TicketStore, dispatcher events.Dispatcher) *LifecycleService {
	return NewLifecycleService(LifecycleDependencies{
		TicketStore:  tickets,
		Dispatcher:   dispatcher,
		StoreRetries: 2,
	})
}

func TestUpdateStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	tickets := store.NewMemoryTicketStore()
	dispatcher := &recordingDispatcher{}
	svc := newLifecycleForTest(tickets, dispatcher)
	seedTicket(t, tickets)

	change, err := svc.UpdateStatus(ctx, "TKT-AB12CD34", "In Progress")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if change.OldStatus != domain.TicketStatusNew || change.NewStatus != domain.TicketStatusInProgress {
		t.Fatalf("transition %q -> %q, want new -> in_progress", change.OldStatus, change.NewStatus)
	}
	if change.InProgressAt == nil {
		t.Fatalf("first entry into in_progress must set in_progress_at")
	}
	firstInProgress := *change.InProgressAt

	// Repeating the same status keeps the original timestamp.
	change, err = svc.UpdateStatus(ctx, "TKT-AB12CD34", "in_progress")
	if err != nil {
		t.Fatalf("UpdateStatus repeat: %v", err)
	}
	if change.OldStatus != domain.TicketStatusInProgress {
		t.Fatalf("OldStatus = %q, want in_progress", change.OldStatus)
	}
	if change.InProgressAt == nil || *change.InProgressAt != firstInProgress {
		t.Fatalf("in_progress_at must not change on re-entry")
	}

	change, err = svc.UpdateStatus(ctx, "TKT-AB12CD34", "COMPLETED")
	if err != nil {
		t.Fatalf("UpdateStatus completed: %v", err)
	}
	if change.CompletedAt == nil {
		t.Fatalf("first entry into completed must set completed_at")
	}
	if change.InProgressAt == nil || *change.InProgressAt != firstInProgress {
		t.Fatalf("completing must leave in_progress_at intact")
	}

	if got := dispatcher.byType(events.EventStatusChanged); len(got) != 3 {
		t.Fatalf("status_changed events = %d, want 3", len(got))
	}
}

func TestUpdateStatusBackwardTransition(t *testing.T) {
	ctx := context.Background()
	tickets := store.NewMemoryTicketStore()
	svc := newLifecycleForTest(tickets, nil)
	seedTicket(t, tickets)

	if _, err := svc.UpdateStatus(ctx, "TKT-AB12CD34", "completed"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	change, err := svc.UpdateStatus(ctx, "TKT-AB12CD34", "new")
	if err != nil {
		t.Fatalf("backward transition rejected: %v", err)
	}
	if change.NewStatus != domain.TicketStatusNew {
		t.Fatalf("NewStatus = %q, want new", change.NewStatus)
	}
	if change.CompletedAt == nil {
		t.Fatalf("moving backward must not clear completed_at")
	}
}

func TestUpdateStatusSpellingVariants(t *testing.T) {
	ctx := context.Background()
	tickets := store.NewMemoryTicketStore()
	svc := newLifecycleForTest(tickets, nil)
	seedTicket(t, tickets)

	for _, raw := range []string{"in-progress", "In Progress", "IN_PROGRESS", " in_progress "} {
		change, err := svc.UpdateStatus(ctx, "TKT-AB12CD34", raw)
		if err != nil {
			t.Fatalf("UpdateStatus(%q): %v", raw, err)
		}
		if change.NewStatus != domain.TicketStatusInProgress {
			t.Fatalf("UpdateStatus(%q) = %q, want in_progress", raw, change.NewStatus)
		}
	}
}

func TestUpdateStatusUnknown(t *testing.T) {
	tickets := store.NewMemoryTicketStore()
	svc := newLifecycleForTest(tickets, nil)
	seedTicket(t, tickets)

	_, err := svc.UpdateStatus(context.Background(), "TKT-AB12CD34", "solved")
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("unknown status: %v, want VALIDATION_FAILED", err)
	}
}

func TestUpdateStatusMissingTicket(t *testing.T) {
	svc := newLifecycleForTest(store.NewMemoryTicketStore(), nil)

	_, err := svc.UpdateStatus(context.Background(), "TKT-MISSING1", "completed")
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "NOT_FOUND" {
		t.Fatalf("missing ticket: %v, want NOT_FOUND", err)
	}
}

func TestUpdateStatusStoreFailure(t *testing.T) {
	svc := newLifecycleForTest(&failingTicketStore{err: errors.New("io timeout")}, nil)

	_, err := svc.UpdateStatus(context.Background(), "TKT-AB12CD34", "completed")
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "STORE_UNAVAILABLE" {
		t.Fatalf("store failure: %v, want STORE_UNAVAILABLE", err)
	}
}

func TestGetTicketAndList(t *testing.T) {
	ctx := context.Background()
	tickets := store.NewMemoryTicketStore()
	svc := newLifecycleForTest(tickets, nil)
	seedTicket(t, tickets)

	ticket, err := svc.GetTicket(ctx, "TKT-AB12CD34")
	if err != nil {
		t.Fatalf("GetTicket: %v", err)
	}
	if ticket.Title != "Pothole in Sector 4" {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}

	if _, err := svc.GetTicket(ctx, "TKT-MISSING1"); apperrors.ToDomainError(err).Code != "NOT_FOUND" {
		t.Fatalf("GetTicket missing: %v, want NOT_FOUND", err)
	}

	all, err := svc.ListTickets(ctx)
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("ListTickets = %d, want 1", len(all))
	}
}
