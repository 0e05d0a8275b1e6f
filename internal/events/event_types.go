package events

import (
	"time"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventDuplicateMerged EventType = "duplicate_merged"
	EventStatusChanged   EventType = "status_changed"
)

// Event represents a domain event emitted after successful
// persistence. Each logical event is published at most once.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload carries the freshly created ticket.
type TicketCreatedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
}

// DuplicateMergedPayload carries the ticket after a duplicate report
// was folded in, plus the reporter the duplicate arrived from.
type DuplicateMergedPayload struct {
	Ticket   domain.Ticket `json:"ticket"`
	Reporter string        `json:"reporter,omitempty"`
}

// StatusChangedPayload carries the effective before/after state of a
// lifecycle transition.
type StatusChangedPayload struct {
	Reporters    []string            `json:"reporters"`
	OldStatus    domain.TicketStatus `json:"old_status"`
	NewStatus    domain.TicketStatus `json:"new_status"`
	UpdatedAt    string              `json:"updated_at"`
	InProgressAt *string             `json:"in_progress_at,omitempty"`
	CompletedAt  *string             `json:"completed_at,omitempty"`
}
