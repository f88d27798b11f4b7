// Package governance keeps the admin-published disclosure record of the
// issuing program.
package governance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"solana-token-forge/internal/config"
	"solana-token-forge/internal/derive"
	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/storage"
)

// MaxContentBytes bounds the disclosure text.
const MaxContentBytes = 1000

// DefaultContent is published by Initialize until the admin replaces it.
const DefaultContent = "Contact: support@swapforge.app\n" +
	"Website: https://swapforge.app/\n" +
	"Twitter: https://x.com/SwapForgeApp\n" +
	"Policy: https://swapforge.app/security\n" +
	"Encryption: https://swapforge.app/pgp-key.txt"

// maxUpdateAttempts bounds retries after losing a compare-and-set race.
const maxUpdateAttempts = 8

// Ledger manages the disclosure record at the governance address.
type Ledger struct {
	address        domain.Address
	store          storage.DisclosureStore
	now            func() time.Time
	defaultContent string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the update timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithDefaultContent overrides the text published by Initialize.
func WithDefaultContent(content string) Option {
	return func(l *Ledger) { l.defaultContent = content }
}

// NewLedger creates a Ledger for the governance address of p.
func NewLedger(p config.Protocol, store storage.DisclosureStore, opts ...Option) (*Ledger, error) {
	addr, err := derive.GovernanceAddress(p)
	if err != nil {
		return nil, fmt.Errorf("derive governance address: %w", err)
	}
	l := &Ledger{
		address:        addr.Address,
		store:          store,
		now:            time.Now,
		defaultContent: DefaultContent,
	}
	for _, opt := range opts {
		opt(l)
	}
	if len(l.defaultContent) > MaxContentBytes {
		return nil, fmt.Errorf("default content: %w", ErrContentTooLong)
	}
	return l, nil
}

// Address returns the governance address the record lives at.
func (l *Ledger) Address() domain.Address {
	return l.address
}

// Initialize creates the record with caller as admin. It succeeds once.
func (l *Ledger) Initialize(ctx context.Context, caller domain.Address) (*domain.DisclosureRecord, error) {
	if caller.IsZero() {
		return nil, fmt.Errorf("%w: zero address cannot be admin", ErrUnauthorizedSigner)
	}

	rec := &domain.DisclosureRecord{
		Address:   l.address,
		Admin:     caller,
		Content:   l.defaultContent,
		Version:   0,
		UpdatedAt: l.stamp(),
	}
	if err := l.store.Create(ctx, rec); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, ErrAlreadyInitialized
		}
		return nil, fmt.Errorf("create disclosure: %w", err)
	}
	return rec, nil
}

// Update replaces the content and bumps the version by one. Only the admin may
// update. Concurrent updates are serialized by the store's version check.
func (l *Ledger) Update(ctx context.Context, caller domain.Address, content string) (*domain.DisclosureRecord, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		current, err := l.Get(ctx)
		if err != nil {
			return nil, err
		}
		if current.Admin != caller {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorizedSigner, caller)
		}
		if len(content) > MaxContentBytes {
			return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrContentTooLong, len(content), MaxContentBytes)
		}
		if current.Version == math.MaxUint32 {
			return nil, ErrVersionOverflow
		}

		next := *current
		next.Content = content
		next.Version = current.Version + 1
		next.UpdatedAt = l.stamp()

		err = l.store.Update(ctx, &next, current.Version)
		switch {
		case err == nil:
			return &next, nil
		case errors.Is(err, storage.ErrVersionConflict):
			continue
		default:
			return nil, fmt.Errorf("update disclosure: %w", err)
		}
	}
	return nil, ErrConcurrentUpdate
}

// Get returns the current record.
func (l *Ledger) Get(ctx context.Context) (*domain.DisclosureRecord, error) {
	rec, err := l.store.Get(ctx, l.address)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("get disclosure: %w", err)
	}
	return rec, nil
}

// stamp truncates to seconds, the resolution of the on-chain record.
func (l *Ledger) stamp() time.Time {
	return l.now().UTC().Truncate(time.Second)
}
