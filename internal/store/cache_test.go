package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

func TestNewCachedTicketStoreNilClientUnwraps(t *testing.T) {
	inner := NewMemoryTicketStore()
	wrapped := NewCachedTicketStore(inner, nil, time.Minute, nil)
	if wrapped != inner {
		t.Fatalf("nil client must return the inner store unchanged")
	}
}

// An unreachable Redis must not break any ticket operation; every
// cache failure degrades to the wrapped store.
func TestCachedTicketStoreDegradesWithoutRedis(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	inner := NewMemoryTicketStore()
	cached := NewCachedTicketStore(inner, client, time.Minute, nil)

	ticket := &domain.Ticket{
		TicketID:        "TKT-11AA22BB",
		Fingerprint:     "fp-cache",
		Category:        domain.CategoryWater,
		Title:           "Water Leak",
		Description:     "Pipe leaking.",
		Status:          domain.TicketStatusNew,
		Reporters:       []string{"a@example.com"},
		OccurrenceCount: 1,
		CreatedAt:       "10:00 01-06-2026",
	}
	if err := cached.Insert(ctx, ticket); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := cached.GetByTicketID(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("GetByTicketID: %v", err)
	}
	if got.TicketID != ticket.TicketID || got.Title != ticket.Title {
		t.Fatalf("GetByTicketID = %+v", got)
	}

	if _, err := cached.FindByFingerprint(ctx, "fp-cache"); err != nil {
		t.Fatalf("FindByFingerprint: %v", err)
	}

	merged, err := cached.Merge(ctx, "fp-cache", MergePatch{Reporter: "b@example.com"})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.OccurrenceCount != 2 {
		t.Fatalf("OccurrenceCount = %d, want 2", merged.OccurrenceCount)
	}

	now := "11:00 01-06-2026"
	updated, err := cached.UpdateStatus(ctx, ticket.TicketID, StatusPatch{
		Status:       domain.TicketStatusInProgress,
		UpdatedAt:    now,
		InProgressAt: &now,
	})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Fatalf("Status = %q, want in_progress", updated.Status)
	}

	// Reads after writes see the store's state, not a stale cache.
	fresh, err := cached.GetByTicketID(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("GetByTicketID after update: %v", err)
	}
	if fresh.Status != domain.TicketStatusInProgress || fresh.OccurrenceCount != 2 {
		t.Fatalf("post-write read = status %q count %d", fresh.Status, fresh.OccurrenceCount)
	}

	all, err := cached.List(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("List = %d tickets err %v, want 1", len(all), err)
	}
}
