// Package store provides the persistence abstraction for tickets and
// users. Two ticket store implementations exist: an in-memory map for
// development and a MongoDB-backed document store, selected at startup
// via configuration, never by runtime type inspection.
package store

import (
	"context"
	"errors"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

var (
	// ErrTicketNotFound is returned when no ticket matches the lookup key.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrFingerprintConflict is returned by Insert when another ticket
	// already owns the fingerprint; callers should fall back to the
	// merge path.
	ErrFingerprintConflict = errors.New("fingerprint already exists")

	// ErrUserNotFound is returned when no user matches the lookup key.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering an already-known email.
	ErrEmailTaken = errors.New("email already registered")
)

// MergePatch is the narrow mutation surface for duplicate reports.
// Nothing on this path can touch category, title, description,
// address, urgency, status or any timestamp; the store adds the
// reporter set-wise, increments occurrence_count and records the
// latest location reading.
type MergePatch struct {
	Reporter string
	Location *domain.Location
}

// StatusPatch carries a status transition. InProgressAt / CompletedAt
// are only honored when the stored field is still absent, keeping the
// set-once invariant even if two updates race.
type StatusPatch struct {
	Status       domain.TicketStatus
	UpdatedAt    string
	InProgressAt *string
	CompletedAt  *string
}

// TicketStore is the key-value persistence abstraction over tickets,
// keyed by ticket id and by fingerprint. Creation (Insert) is a wider
// capability than Merge: first-write-wins fields are only reachable
// through Insert.
type TicketStore interface {
	// Insert persists a brand-new ticket. Fails with
	// ErrFingerprintConflict if a concurrent creation won the race for
	// the same fingerprint.
	Insert(ctx context.Context, ticket *domain.Ticket) error

	// FindByFingerprint returns the ticket owning the fingerprint, or
	// ErrTicketNotFound.
	FindByFingerprint(ctx context.Context, fingerprint string) (*domain.Ticket, error)

	// GetByTicketID returns the ticket with the given external id, or
	// ErrTicketNotFound.
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error)

	// Merge folds a duplicate report into the ticket owning the
	// fingerprint and returns the updated ticket.
	Merge(ctx context.Context, fingerprint string, patch MergePatch) (*domain.Ticket, error)

	// UpdateStatus applies a status transition atomically for the
	// ticket id and returns the updated ticket.
	UpdateStatus(ctx context.Context, ticketID string, patch StatusPatch) (*domain.Ticket, error)

	// List returns all tickets.
	List(ctx context.Context) ([]domain.Ticket, error)
}

// UserStore persists registered accounts.
type UserStore interface {
	// CreateUser persists a new account; ErrEmailTaken when the email
	// is already registered.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUserByEmail returns the account, or ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetUserByID returns the account, or ErrUserNotFound.
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}
