package store

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

func newTicket(ticketID, fp string) *domain.Ticket {
	return &domain.Ticket{
		TicketID:        ticketID,
		Fingerprint:     fp,
		Category:        domain.CategoryRoads,
		Title:           "Pothole in Sector 4",
		Description:     "Deep pothole near the gate.",
		Address:         "Sector 4",
		Urgency:         domain.UrgencyMedium,
		Status:          domain.TicketStatusNew,
		Reporters:       []string{"user@example.com"},
		OccurrenceCount: 1,
		OriginalText:    "pothole near the gate",
		CreatedAt:       "10:00 01-06-2026",
	}
}

func TestMemoryInsertAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTicketStore()

	ticket := newTicket("TKT-1", "fp-1")
	if err := s.Insert(ctx, ticket); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	found, err := s.FindByFingerprint(ctx, "fp-1")
	if err != nil {
		t.Fatalf("FindByFingerprint: %v", err)
	}
	if found.TicketID != "TKT-1" {
		t.Fatalf("found ticket %q, want TKT-1", found.TicketID)
	}

	byID, err := s.GetByTicketID(ctx, "TKT-1")
	if err != nil {
		t.Fatalf("GetByTicketID: %v", err)
	}
	if byID.Fingerprint != "fp-1" {
		t.Fatalf("fingerprint mismatch: %q", byID.Fingerprint)
	}
}

func TestMemoryInsertConflict(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTicketStore()

	if err := s.Insert(ctx, newTicket("TKT-1", "fp-1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := s.Insert(ctx, newTicket("TKT-2", "fp-1"))
	if !errors.Is(err, ErrFingerprintConflict) {
		t.Fatalf("second insert with same fingerprint: %v, want ErrFingerprintConflict", err)
	}
}

func TestMemoryFindMissing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTicketStore()

	if _, err := s.FindByFingerprint(ctx, "nope"); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("FindByFingerprint: %v, want ErrTicketNotFound", err)
	}
	if _, err := s.GetByTicketID(ctx, "nope"); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("GetByTicketID: %v, want ErrTicketNotFound", err)
	}
}

func TestMemoryMerge(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTicketStore()
	if err := s.Insert(ctx, newTicket("TKT-1", "fp-1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	loc := &domain.Location{Longitude: 77.209, Latitude: 28.614}
	merged, err := s.Merge(ctx, "fp-1", MergePatch{Reporter: "+919900112233", Location: loc})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.OccurrenceCount != 2 {
		t.Fatalf("OccurrenceCount = %d, want 2", merged.OccurrenceCount)
	}
	if len(merged.Reporters) != 2 {
		t.Fatalf("Reporters = %v, want two entries", merged.Reporters)
	}
	if merged.Location == nil || merged.Location.Longitude != 77.209 {
		t.Fatalf("Location not applied: %+v", merged.Location)
	}

	// First-writer-wins fields are untouched by the merge path.
	if merged.Title != "Pothole in Sector 4" || merged.Category != domain.CategoryRoads {
		t.Fatalf("merge must not change classification fields: %+v", merged)
	}
}

func TestMemoryMergeDuplicateReporter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTicketStore()
	if err := s.Insert(ctx, newTicket("TKT-1", "fp-1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	merged, err := s.Merge(ctx, "fp-1", MergePatch{Reporter: "user@example.com"})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(merged.Reporters) != 1 {
		t.Fatalf("reporter set must not hold duplicates: %v", merged.Reporters)
	}
	if merged.OccurrenceCount != 2 {
		t.Fatalf("occurrence count still increments on repeat reporter, got %d", merged.OccurrenceCount)
	}
}

func TestMemoryMergeMissing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTicketStore()
	if _, err := s.Merge(ctx, "nope", MergePatch{}); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("Merge on missing fingerprint: %v, want ErrTicketNotFound", err)
	}
}

func TestMemoryUpdateStatusSetOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTicketStore()
	if err := s.Insert(ctx, newTicket("TKT-1", "fp-1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	first := "11:00 01-06-2026"
	updated, err := s.UpdateStatus(ctx, "TKT-1", StatusPatch{
		Status:       domain.TicketStatusInProgress,
		UpdatedAt:    first,
		InProgressAt: &first,
	})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.InProgressAt == nil || *updated.InProgressAt != first {
		t.Fatalf("InProgressAt = %v, want %q", updated.InProgressAt, first)
	}

	later := "12:00 01-06-2026"
	updated, err = s.UpdateStatus(ctx, "TKT-1", StatusPatch{
		Status:       domain.TicketStatusInProgress,
		UpdatedAt:    later,
		InProgressAt: &later,
	})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if *updated.InProgressAt != first {
		t.Fatalf("InProgressAt overwritten to %q, want preserved %q", *updated.InProgressAt, first)
	}
	if updated.UpdatedAt == nil || *updated.UpdatedAt != later {
		t.Fatalf("UpdatedAt = %v, want %q", updated.UpdatedAt, later)
	}
}

func TestMemoryCloneIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTicketStore()
	if err := s.Insert(ctx, newTicket("TKT-1", "fp-1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	found, _ := s.FindByFingerprint(ctx, "fp-1")
	found.Title = "mutated"
	found.Reporters[0] = "mutated"

	again, _ := s.FindByFingerprint(ctx, "fp-1")
	if again.Title != "Pothole in Sector 4" || again.Reporters[0] != "user@example.com" {
		t.Fatalf("store state leaked through returned ticket: %+v", again)
	}
}

func TestMemoryList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTicketStore()
	_ = s.Insert(ctx, newTicket("TKT-1", "fp-1"))
	_ = s.Insert(ctx, newTicket("TKT-2", "fp-2"))

	tickets, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("List returned %d tickets, want 2", len(tickets))
	}
}

func TestMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()

	user := &domain.User{ID: "u-1", Email: "Admin@Example.com", Role: domain.RoleAdmin}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := s.CreateUser(ctx, &domain.User{ID: "u-2", Email: "admin@example.com"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate email: %v, want ErrEmailTaken", err)
	}

	found, err := s.GetUserByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if found.ID != "u-1" {
		t.Fatalf("found user %q, want u-1", found.ID)
	}

	if _, err := s.GetUserByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("GetUserByID: %v, want ErrUserNotFound", err)
	}
}
