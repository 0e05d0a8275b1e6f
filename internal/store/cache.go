package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-report-service/internal/domain"
)

// cachedTicketStore decorates a TicketStore with a Redis read-through
// cache for ticket-by-id lookups, which back the public status-check
// endpoint. Every write path invalidates the cached entry. Cache
// failures degrade to the underlying store and are only logged.
type cachedTicketStore struct {
	inner  TicketStore
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedTicketStore wraps the store; a nil client returns the store
// unwrapped.
func NewCachedTicketStore(inner TicketStore, client *redis.Client, ttl time.Duration, logger *zap.Logger) TicketStore {
	if client == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedTicketStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func cacheKey(ticketID string) string {
	return "ticket:" + ticketID
}

func (s *cachedTicketStore) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	data, err := s.client.Get(ctx, cacheKey(ticketID)).Bytes()
	if err == nil {
		var ticket domain.Ticket
		if err := json.Unmarshal(data, &ticket); err == nil {
			return &ticket, nil
		}
		// fall through on corrupt entry
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Debug("ticket cache read failed", zap.Error(err))
	}

	ticket, err := s.inner.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(ticket); err == nil {
		if err := s.client.Set(ctx, cacheKey(ticketID), payload, s.ttl).Err(); err != nil {
			s.logger.Debug("ticket cache write failed", zap.Error(err))
		}
	}
	return ticket, nil
}

func (s *cachedTicketStore) Insert(ctx context.Context, ticket *domain.Ticket) error {
	return s.inner.Insert(ctx, ticket)
}

func (s *cachedTicketStore) FindByFingerprint(ctx context.Context, fingerprint string) (*domain.Ticket, error) {
	return s.inner.FindByFingerprint(ctx, fingerprint)
}

func (s *cachedTicketStore) Merge(ctx context.Context, fingerprint string, patch MergePatch) (*domain.Ticket, error) {
	ticket, err := s.inner.Merge(ctx, fingerprint, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, ticket.TicketID)
	return ticket, nil
}

func (s *cachedTicketStore) UpdateStatus(ctx context.Context, ticketID string, patch StatusPatch) (*domain.Ticket, error) {
	ticket, err := s.inner.UpdateStatus(ctx, ticketID, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, ticketID)
	return ticket, nil
}

func (s *cachedTicketStore) List(ctx context.Context) ([]domain.Ticket, error) {
	return s.inner.List(ctx)
}

func (s *cachedTicketStore) invalidate(ctx context.Context, ticketID string) {
	if err := s.client.Del(ctx, cacheKey(ticketID)).Err(); err != nil {
		s.logger.Debug("ticket cache invalidation failed", zap.Error(err))
	}
}
