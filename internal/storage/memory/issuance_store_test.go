package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/storage"
)

func testHandle(id string, payer, mint byte, issuedAt int64) *domain.AssetHandle {
	return &domain.AssetHandle{
		IssuanceID:    id,
		Payer:         testAddress(payer),
		Mint:          testAddress(mint),
		Name:          "Demo",
		Symbol:        "DEMO",
		Decimals:      6,
		InitialSupply: 1_000_000,
		Minted:        1_000_000_000_000,
		Fee:           10_000_000,
		IssuedAt:      time.UnixMilli(issuedAt).UTC(),
	}
}

func TestIssuanceStore_InsertAndGetByMint(t *testing.T) {
	store := NewIssuanceStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testHandle("iss1", 1, 10, 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByMint(ctx, testAddress(10))
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if got.IssuanceID != "iss1" {
		t.Errorf("IssuanceID mismatch: got %s, want iss1", got.IssuanceID)
	}

	if _, err := store.GetByMint(ctx, testAddress(11)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIssuanceStore_Duplicates(t *testing.T) {
	store := NewIssuanceStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testHandle("iss1", 1, 10, 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, testHandle("iss1", 1, 11, 1000)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("duplicate id: expected ErrDuplicateKey, got %v", err)
	}
	if err := store.Insert(ctx, testHandle("iss2", 2, 10, 1000)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("duplicate mint: expected ErrDuplicateKey, got %v", err)
	}
}

func TestIssuanceStore_ListByPayerOrdered(t *testing.T) {
	store := NewIssuanceStore()
	ctx := context.Background()

	for _, h := range []*domain.AssetHandle{
		testHandle("c", 1, 12, 3000),
		testHandle("a", 1, 10, 1000),
		testHandle("b", 1, 11, 2000),
		testHandle("x", 2, 13, 500),
	} {
		if err := store.Insert(ctx, h); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.ListByPayer(ctx, testAddress(1))
	if err != nil {
		t.Fatalf("ListByPayer failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 issuances, got %d", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].IssuanceID != want {
			t.Errorf("position %d: got %s, want %s", i, got[i].IssuanceID, want)
		}
	}
}
