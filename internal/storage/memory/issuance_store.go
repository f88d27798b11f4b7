package memory

import (
	"context"
	"sort"
	"sync"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/storage"
)

// IssuanceStore is an in-memory implementation of storage.IssuanceStore.
type IssuanceStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.AssetHandle         // keyed by issuance_id
	byMint map[domain.Address]*domain.AssetHandle // keyed by mint (unique)
}

// NewIssuanceStore creates a new in-memory issuance store.
func NewIssuanceStore() *IssuanceStore {
	return &IssuanceStore{
		byID:   make(map[string]*domain.AssetHandle),
		byMint: make(map[domain.Address]*domain.AssetHandle),
	}
}

// Insert adds a new issuance. Returns ErrDuplicateKey if issuance_id or mint exists.
func (s *IssuanceStore) Insert(_ context.Context, h *domain.AssetHandle) error {
	if h == nil || h.IssuanceID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[h.IssuanceID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.byMint[h.Mint]; exists {
		return storage.ErrDuplicateKey
	}

	handleCopy := *h
	s.byID[h.IssuanceID] = &handleCopy
	s.byMint[h.Mint] = &handleCopy
	return nil
}

// GetByMint retrieves the issuance of a mint. Returns ErrNotFound if not exists.
func (s *IssuanceStore) GetByMint(_ context.Context, mint domain.Address) (*domain.AssetHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, exists := s.byMint[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}

	handleCopy := *h
	return &handleCopy, nil
}

// ListByPayer retrieves all issuances funded by payer, ordered by issued_at ASC.
func (s *IssuanceStore) ListByPayer(_ context.Context, payer domain.Address) ([]*domain.AssetHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AssetHandle
	for _, h := range s.byID {
		if h.Payer == payer {
			handleCopy := *h
			result = append(result, &handleCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].IssuedAt.Equal(result[j].IssuedAt) {
			return result[i].IssuanceID < result[j].IssuanceID
		}
		return result[i].IssuedAt.Before(result[j].IssuedAt)
	})
	return result, nil
}

var _ storage.IssuanceStore = (*IssuanceStore)(nil)
