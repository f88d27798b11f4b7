package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/storage"
)

func testAddress(b byte) domain.Address {
	var a domain.Address
	a[31] = b
	return a
}

func TestDisclosureStore_CreateAndGet(t *testing.T) {
	pool := setupTestDB(t)

	store := NewDisclosureStore(pool)
	ctx := context.Background()

	rec := &domain.DisclosureRecord{
		Address:   testAddress(1),
		Admin:     testAddress(2),
		Content:   "contact: security@example.com",
		Version:   0,
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Create(ctx, rec))

	got, err := store.Get(ctx, rec.Address)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	err = store.Create(ctx, rec)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.Get(ctx, testAddress(3))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDisclosureStore_UpdateCompareAndSet(t *testing.T) {
	pool := setupTestDB(t)

	store := NewDisclosureStore(pool)
	ctx := context.Background()

	rec := &domain.DisclosureRecord{
		Address:   testAddress(1),
		Admin:     testAddress(2),
		Content:   "v0",
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Create(ctx, rec))

	// Ten writers race from version 0; exactly one wins.
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			next := *rec
			next.Version = 1
			next.Content = "writer"
			err := store.Update(ctx, &next, 0)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case assert.ErrorIs(t, err, storage.ErrVersionConflict):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 9, conflicts)

	got, err := store.Get(ctx, rec.Address)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), got.Version)

	missing := &domain.DisclosureRecord{Address: testAddress(7)}
	assert.ErrorIs(t, store.Update(ctx, missing, 0), storage.ErrNotFound)
}
