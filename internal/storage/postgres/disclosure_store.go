package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/storage"
)

// DisclosureStore implements storage.DisclosureStore using PostgreSQL.
type DisclosureStore struct {
	pool *Pool
}

// NewDisclosureStore creates a new DisclosureStore.
func NewDisclosureStore(pool *Pool) *DisclosureStore {
	return &DisclosureStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DisclosureStore = (*DisclosureStore)(nil)

// Create stores a new record. Returns ErrDuplicateKey if a record exists at rec.Address.
func (s *DisclosureStore) Create(ctx context.Context, rec *domain.DisclosureRecord) error {
	if rec == nil || rec.Address.IsZero() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO disclosures (address, admin, content, version, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		rec.Address.String(),
		rec.Admin.String(),
		rec.Content,
		int64(rec.Version),
		rec.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert disclosure: %w", err)
	}
	return nil
}

// Get retrieves the record at address. Returns ErrNotFound if not exists.
func (s *DisclosureStore) Get(ctx context.Context, address domain.Address) (*domain.DisclosureRecord, error) {
	query := `
		SELECT address, admin, content, version, updated_at
		FROM disclosures
		WHERE address = $1
	`

	row := s.pool.QueryRow(ctx, query, address.String())
	rec, err := scanDisclosure(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get disclosure: %w", err)
	}
	return rec, nil
}

// Update replaces the record if its stored version equals expectedVersion.
// The version predicate makes concurrent updates compare-and-set.
func (s *DisclosureStore) Update(ctx context.Context, rec *domain.DisclosureRecord, expectedVersion uint32) error {
	if rec == nil {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE disclosures
		SET admin = $2, content = $3, version = $4, updated_at = $5
		WHERE address = $1 AND version = $6
	`

	tag, err := s.pool.Exec(ctx, query,
		rec.Address.String(),
		rec.Admin.String(),
		rec.Content,
		int64(rec.Version),
		rec.UpdatedAt,
		int64(expectedVersion),
	)
	if err != nil {
		return fmt.Errorf("update disclosure: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing updated: either the record is missing or the version moved.
	if _, err := s.Get(ctx, rec.Address); err != nil {
		return err
	}
	return storage.ErrVersionConflict
}

// scanDisclosure scans a single row into DisclosureRecord.
func scanDisclosure(row pgx.Row) (*domain.DisclosureRecord, error) {
	var (
		rec            domain.DisclosureRecord
		address, admin string
		version        int64
	)

	if err := row.Scan(&address, &admin, &rec.Content, &version, &rec.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if rec.Address, err = domain.ParseAddress(address); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	if rec.Admin, err = domain.ParseAddress(admin); err != nil {
		return nil, fmt.Errorf("decode admin: %w", err)
	}
	rec.Version = uint32(version)
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}
