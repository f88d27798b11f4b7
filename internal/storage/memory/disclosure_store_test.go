package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/storage"
)

func testAddress(b byte) domain.Address {
	var a domain.Address
	a[31] = b
	return a
}

func TestDisclosureStore_CreateAndGet(t *testing.T) {
	store := NewDisclosureStore()
	ctx := context.Background()

	rec := &domain.DisclosureRecord{
		Address:   testAddress(1),
		Admin:     testAddress(2),
		Content:   "contact: security@example.com",
		UpdatedAt: time.Unix(1704067200, 0).UTC(),
	}
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Get(ctx, testAddress(1))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Admin != testAddress(2) {
		t.Errorf("Admin mismatch: got %s, want %s", got.Admin, testAddress(2))
	}

	// Mutating the returned copy must not change the stored record
	got.Content = "changed"
	again, _ := store.Get(ctx, testAddress(1))
	if again.Content != rec.Content {
		t.Errorf("store leaked internal pointer: content = %q", again.Content)
	}
}

func TestDisclosureStore_DuplicateCreate(t *testing.T) {
	store := NewDisclosureStore()
	ctx := context.Background()

	rec := &domain.DisclosureRecord{Address: testAddress(1), Admin: testAddress(2)}
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	other := &domain.DisclosureRecord{Address: testAddress(1), Admin: testAddress(3)}
	if err := store.Create(ctx, other); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	got, _ := store.Get(ctx, testAddress(1))
	if got.Admin != testAddress(2) {
		t.Errorf("first admin overwritten: %s", got.Admin)
	}
}

func TestDisclosureStore_UpdateVersionCheck(t *testing.T) {
	store := NewDisclosureStore()
	ctx := context.Background()

	rec := &domain.DisclosureRecord{Address: testAddress(1), Admin: testAddress(2), Version: 0}
	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	next := *rec
	next.Version = 1
	next.Content = "v1"
	if err := store.Update(ctx, &next, 0); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stale := *rec
	stale.Version = 1
	stale.Content = "stale"
	if err := store.Update(ctx, &stale, 0); !errors.Is(err, storage.ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict, got %v", err)
	}

	got, _ := store.Get(ctx, testAddress(1))
	if got.Content != "v1" || got.Version != 1 {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestDisclosureStore_NotFound(t *testing.T) {
	store := NewDisclosureStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, testAddress(9)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	rec := &domain.DisclosureRecord{Address: testAddress(9)}
	if err := store.Update(ctx, rec, 0); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Create(ctx, &domain.DisclosureRecord{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
