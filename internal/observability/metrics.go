package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics keeps in-memory counters for HTTP traffic and ticket
// outcomes. Counters are keyed by route and by event type so log
// scraping is not the only way to see intake volume.
type Metrics struct {
	mu       sync.Mutex
	requests map[string]int64
	errors   map[string]int64
	tickets  map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[string]int64),
		errors:   make(map[string]int64),
		tickets:  make(map[string]int64),
	}
}

// RecordRequest counts one handled request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := routeKey(path, method) + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[key]++
}

// RecordError counts one request that resolved to a domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := routeKey(path, method) + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[key]++
}

// RecordTicket counts one ticket outcome by event type, such as
// ticket_created or duplicate_merged.
func (m *Metrics) RecordTicket(eventType string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[eventType]++
}

// TicketCount reports the counter for one ticket event type.
func (m *Metrics) TicketCount(eventType string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tickets[eventType]
}

func routeKey(path, method string) string {
	return method + " " + path
}
