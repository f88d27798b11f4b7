package memory

import (
	"context"
	"sync"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/storage"
)

// DisclosureStore is an in-memory implementation of storage.DisclosureStore.
type DisclosureStore struct {
	mu      sync.RWMutex
	records map[domain.Address]*domain.DisclosureRecord
}

// NewDisclosureStore creates a new in-memory disclosure store.
func NewDisclosureStore() *DisclosureStore {
	return &DisclosureStore{
		records: make(map[domain.Address]*domain.DisclosureRecord),
	}
}

// Create stores a new record. Returns ErrDuplicateKey if a record exists at rec.Address.
func (s *DisclosureStore) Create(_ context.Context, rec *domain.DisclosureRecord) error {
	if rec == nil || rec.Address.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.Address]; exists {
		return storage.ErrDuplicateKey
	}

	recCopy := *rec
	s.records[rec.Address] = &recCopy
	return nil
}

// Get retrieves the record at address. Returns ErrNotFound if not exists.
func (s *DisclosureStore) Get(_ context.Context, address domain.Address) (*domain.DisclosureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.records[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recCopy := *rec
	return &recCopy, nil
}

// Update replaces the record if its stored version equals expectedVersion.
func (s *DisclosureStore) Update(_ context.Context, rec *domain.DisclosureRecord, expectedVersion uint32) error {
	if rec == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.records[rec.Address]
	if !exists {
		return storage.ErrNotFound
	}
	if current.Version != expectedVersion {
		return storage.ErrVersionConflict
	}

	recCopy := *rec
	s.records[rec.Address] = &recCopy
	return nil
}

var _ storage.DisclosureStore = (*DisclosureStore)(nil)
