package memory

import (
	"context"
	"sort"
	"sync"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/storage"
)

// IssuanceEventStore is an in-memory implementation of storage.IssuanceEventStore.
type IssuanceEventStore struct {
	mu     sync.RWMutex
	events map[string]*domain.IssuanceEvent // keyed by event_id
}

// NewIssuanceEventStore creates a new in-memory issuance event store.
func NewIssuanceEventStore() *IssuanceEventStore {
	return &IssuanceEventStore{
		events: make(map[string]*domain.IssuanceEvent),
	}
}

// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
func (s *IssuanceEventStore) Insert(_ context.Context, e *domain.IssuanceEvent) error {
	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[e.EventID]; exists {
		return storage.ErrDuplicateKey
	}

	eventCopy := *e
	s.events[e.EventID] = &eventCopy
	return nil
}

// ListByMint retrieves all events for a mint, ordered by occurred_at ASC.
func (s *IssuanceEventStore) ListByMint(_ context.Context, mint string) ([]*domain.IssuanceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.IssuanceEvent
	for _, e := range s.events {
		if e.Mint == mint {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].OccurredAt == result[j].OccurredAt {
			return result[i].EventID < result[j].EventID
		}
		return result[i].OccurredAt < result[j].OccurredAt
	})
	return result, nil
}

// CountByOutcome counts events with occurred_at within [start, end] (inclusive).
func (s *IssuanceEventStore) CountByOutcome(_ context.Context, start, end int64) (map[domain.Outcome]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.Outcome]int64)
	for _, e := range s.events {
		if e.OccurredAt >= start && e.OccurredAt <= end {
			counts[e.Outcome]++
		}
	}
	return counts, nil
}

var _ storage.IssuanceEventStore = (*IssuanceEventStore)(nil)
