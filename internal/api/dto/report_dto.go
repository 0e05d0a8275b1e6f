package dto

import (
	"github.com/spec-kit/civic-report-service/internal/domain"
)

// LocationDTO is a geographic point on the wire.
type LocationDTO struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// SubmitIssueRequest is the voice-channel intake payload.
type SubmitIssueRequest struct {
	Text     string       `json:"text"`
	Email    string       `json:"email"`
	Name     string       `json:"name"`
	Location *LocationDTO `json:"location"`
	Photo    string       `json:"photo"`
}

// TicketResponse is the full ticket view returned by intake and read
// endpoints.
type TicketResponse struct {
	TicketID        string              `json:"ticket_id"`
	Category        domain.Category     `json:"category"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Address         string              `json:"address"`
	Location        *LocationDTO        `json:"location,omitempty"`
	Photo           string              `json:"photo,omitempty"`
	Urgency         domain.Urgency      `json:"urgency"`
	Status          domain.TicketStatus `json:"status"`
	Reporters       []string            `json:"reporters"`
	OccurrenceCount int                 `json:"occurrence_count"`
	CreatedAt       string              `json:"created_at"`
	UpdatedAt       *string             `json:"updated_at,omitempty"`
	InProgressAt    *string             `json:"in_progress_at,omitempty"`
	CompletedAt     *string             `json:"completed_at,omitempty"`
}

// StatusUpdateRequest payload for lifecycle transitions.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// StatusChangeResponse reports the effective transition.
type StatusChangeResponse struct {
	TicketID     string              `json:"ticket_id"`
	OldStatus    domain.TicketStatus `json:"old_status"`
	NewStatus    domain.TicketStatus `json:"new_status"`
	UpdatedAt    string              `json:"updated_at"`
	InProgressAt *string             `json:"in_progress_at,omitempty"`
	CompletedAt  *string             `json:"completed_at,omitempty"`
}
