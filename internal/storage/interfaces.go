package storage

import (
	"context"

	"solana-token-forge/internal/domain"
)

// DisclosureStore provides access to governance disclosure records.
type DisclosureStore interface {
	// Create stores a new record. Returns ErrDuplicateKey if a record exists at rec.Address.
	Create(ctx context.Context, rec *domain.DisclosureRecord) error

	// Get retrieves the record at address. Returns ErrNotFound if not exists.
	Get(ctx context.Context, address domain.Address) (*domain.DisclosureRecord, error)

	// Update replaces the record if its stored version equals expectedVersion.
	// Returns ErrNotFound if not exists, ErrVersionConflict if another update won.
	Update(ctx context.Context, rec *domain.DisclosureRecord, expectedVersion uint32) error
}

// IssuanceStore provides access to the journal of successful issuances.
type IssuanceStore interface {
	// Insert adds a new issuance. Returns ErrDuplicateKey if issuance_id or mint exists.
	Insert(ctx context.Context, h *domain.AssetHandle) error

	// GetByMint retrieves the issuance of a mint. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint domain.Address) (*domain.AssetHandle, error)

	// ListByPayer retrieves all issuances funded by payer, ordered by issued_at ASC.
	ListByPayer(ctx context.Context, payer domain.Address) ([]*domain.AssetHandle, error)
}

// IssuanceEventStore provides access to the issuance event log.
type IssuanceEventStore interface {
	// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
	Insert(ctx context.Context, e *domain.IssuanceEvent) error

	// ListByMint retrieves all events for a mint, ordered by occurred_at ASC.
	ListByMint(ctx context.Context, mint string) ([]*domain.IssuanceEvent, error)

	// CountByOutcome counts events with occurred_at within [start, end] (inclusive).
	CountByOutcome(ctx context.Context, start, end int64) (map[domain.Outcome]int64, error)
}
