package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for reported issues.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusCompleted  TicketStatus = "completed"
)

// NormalizeStatus canonicalizes user-supplied status spellings
// ("In Progress", "in-progress" and "IN_PROGRESS" all map to the same
// state). The second return reports whether the value belongs to the
// status enum at all.
func NormalizeStatus(raw string) (TicketStatus, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	status := TicketStatus(s)
	switch status {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusCompleted:
		return status, true
	}
	return "", false
}

// Urgency enumerates severity levels assigned at classification time.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ValidUrgency reports whether the value belongs to the urgency enum.
func ValidUrgency(u Urgency) bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// Category enumerates the fixed set of municipal issue categories.
type Category string

const (
	CategoryRoads       Category = "Roads & Transport"
	CategoryWater       Category = "Water & Drainage"
	CategoryElectricity Category = "Electricity & Streetlights"
	CategorySanitation  Category = "Sanitation & Waste"
	CategoryHealth      Category = "Public Health & Safety"
	CategoryEnvironment Category = "Environment & Parks"
	CategoryBuilding    Category = "Building & Infrastructure"
	CategoryTaxes       Category = "Taxes & Documentation"
	CategoryEmergency   Category = "Emergency Services"
	CategoryAnimalCare  Category = "Animal Care & Control"
	CategoryOther       Category = "Other"
)

// Categories lists every known category.
var Categories = []Category{
	CategoryRoads,
	CategoryWater,
	CategoryElectricity,
	CategorySanitation,
	CategoryHealth,
	CategoryEnvironment,
	CategoryBuilding,
	CategoryTaxes,
	CategoryEmergency,
	CategoryAnimalCare,
	CategoryOther,
}

// ValidCategory reports whether the value belongs to the category enum.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Location is a geographic point attached to a report or ticket.
type Location struct {
	Longitude float64 `bson:"longitude" json:"longitude"`
	Latitude  float64 `bson:"latitude" json:"latitude"`
}

// TimeLayout is the presentation layout for all persisted ticket
// timestamps (hh:mm dd-mm-yyyy). Chosen for operator readability; it
// is not lexicographically sortable by date.
const TimeLayout = "15:04 02-01-2006"

// FormatTime renders a time in the persisted presentation layout.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// Ticket is the durable record of a reported municipal issue.
//
// Category, title, description, address and urgency are written once at
// creation and never touched by the duplicate-merge path. The
// in_progress_at / completed_at timestamps are set exactly once, the
// first time the status enters the corresponding state, and are never
// cleared afterwards.
type Ticket struct {
	TicketID        string       `bson:"ticket_id"`
	Fingerprint     string       `bson:"fingerprint"`
	Category        Category     `bson:"category"`
	Title           string       `bson:"title"`
	Description     string       `bson:"description"`
	Address         string       `bson:"address"`
	Location        *Location    `bson:"location,omitempty"`
	Photo           string       `bson:"photo,omitempty"`
	Urgency         Urgency      `bson:"urgency"`
	Status          TicketStatus `bson:"status"`
	Reporters       []string     `bson:"reporters"`
	OccurrenceCount int          `bson:"occurrence_count"`
	OriginalText    string       `bson:"original_text"`
	CreatedAt       string       `bson:"created_at"`
	UpdatedAt       *string      `bson:"updated_at,omitempty"`
	InProgressAt    *string      `bson:"in_progress_at,omitempty"`
	CompletedAt     *string      `bson:"completed_at,omitempty"`
}

// HasReporter reports membership in the reporter set.
func (t *Ticket) HasReporter(id string) bool {
	for _, r := range t.Reporters {
		if r == id {
			return true
		}
	}
	return false
}

// AddReporter inserts the identifier into the reporter set; the set
// never shrinks and never holds duplicates.
func (t *Ticket) AddReporter(id string) {
	if id == "" || t.HasReporter(id) {
		return
	}
	t.Reporters = append(t.Reporters, id)
}

// Clone returns a deep copy so callers cannot alias store-owned state.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	copied := *t
	copied.Reporters = append([]string(nil), t.Reporters...)
	if t.Location != nil {
		loc := *t.Location
		copied.Location = &loc
	}
	copied.UpdatedAt = cloneString(t.UpdatedAt)
	copied.InProgressAt = cloneString(t.InProgressAt)
	copied.CompletedAt = cloneString(t.CompletedAt)
	return &copied
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
