package store

import (
	"context"
	"strings"
	"sync"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// memoryTicketStore keeps tickets in process memory, guarded by a
// single mutex. The lock spans every read-modify-write, which gives
// the per-fingerprint atomicity the intake flow relies on. Intended
// for development and tests.
type memoryTicketStore struct {
	mu            sync.Mutex
	byFingerprint map[string]*domain.Ticket
	byTicketID    map[string]*domain.Ticket
}

// NewMemoryTicketStore builds an empty in-memory ticket store.
func NewMemoryTicketStore() TicketStore {
	return &memoryTicketStore{
		byFingerprint: make(map[string]*domain.Ticket),
		byTicketID:    make(map[string]*domain.Ticket),
	}
}

func (s *memoryTicketStore) Insert(ctx context.Context, ticket *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byFingerprint[ticket.Fingerprint]; exists {
		return ErrFingerprintConflict
	}
	stored := ticket.Clone()
	s.byFingerprint[stored.Fingerprint] = stored
	s.byTicketID[stored.TicketID] = stored
	return nil
}

func (s *memoryTicketStore) FindByFingerprint(ctx context.Context, fingerprint string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.byFingerprint[fingerprint]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return ticket.Clone(), nil
}

func (s *memoryTicketStore) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.byTicketID[ticketID]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return ticket.Clone(), nil
}

func (s *memoryTicketStore) Merge(ctx context.Context, fingerprint string, patch MergePatch) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.byFingerprint[fingerprint]
	if !ok {
		return nil, ErrTicketNotFound
	}
	ticket.AddReporter(patch.Reporter)
	ticket.OccurrenceCount++
	if patch.Location != nil {
		loc := *patch.Location
		ticket.Location = &loc
	}
	return ticket.Clone(), nil
}

func (s *memoryTicketStore) UpdateStatus(ctx context.Context, ticketID string, patch StatusPatch) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.byTicketID[ticketID]
	if !ok {
		return nil, ErrTicketNotFound
	}
	ticket.Status = patch.Status
	updatedAt := patch.UpdatedAt
	ticket.UpdatedAt = &updatedAt
	if patch.InProgressAt != nil && ticket.InProgressAt == nil {
		v := *patch.InProgressAt
		ticket.InProgressAt = &v
	}
	if patch.CompletedAt != nil && ticket.CompletedAt == nil {
		v := *patch.CompletedAt
		ticket.CompletedAt = &v
	}
	return ticket.Clone(), nil
}

func (s *memoryTicketStore) List(ctx context.Context) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tickets := make([]domain.Ticket, 0, len(s.byTicketID))
	for _, ticket := range s.byTicketID {
		tickets = append(tickets, *ticket.Clone())
	}
	return tickets, nil
}

// memoryUserStore is the in-memory UserStore counterpart.
type memoryUserStore struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
}

// NewMemoryUserStore builds an empty in-memory user store.
func NewMemoryUserStore() UserStore {
	return &memoryUserStore{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
	}
}

func (s *memoryUserStore) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return ErrEmailTaken
	}
	stored := *user
	s.byEmail[key] = &stored
	s.byID[stored.ID] = &stored
	return nil
}

func (s *memoryUserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *memoryUserStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}
