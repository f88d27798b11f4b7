package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/storage"
)

// IssuanceStore implements storage.IssuanceStore using PostgreSQL.
// Supplies are uint64 and stored as NUMERIC(20,0) through their decimal text.
type IssuanceStore struct {
	pool *Pool
}

// NewIssuanceStore creates a new IssuanceStore.
func NewIssuanceStore(pool *Pool) *IssuanceStore {
	return &IssuanceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.IssuanceStore = (*IssuanceStore)(nil)

const issuanceColumns = `
	issuance_id, payer, mint, metadata, holding, holding_bump,
	name, symbol, uri, decimals, initial_supply::text, minted::text, fee,
	revoke_mint, revoke_freeze, revoke_update, authorities, issued_at
`

// Insert adds a new issuance. Returns ErrDuplicateKey if issuance_id or mint exists.
func (s *IssuanceStore) Insert(ctx context.Context, h *domain.AssetHandle) error {
	if h == nil || h.IssuanceID == "" {
		return storage.ErrInvalidInput
	}

	authorities, err := json.Marshal(h.Authorities)
	if err != nil {
		return fmt.Errorf("encode authorities: %w", err)
	}

	query := `
		INSERT INTO issuances (
			issuance_id, payer, mint, metadata, holding, holding_bump,
			name, symbol, uri, decimals, initial_supply, minted, fee,
			revoke_mint, revoke_freeze, revoke_update, authorities, issued_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11::numeric, $12::numeric, $13,
			$14, $15, $16, $17::jsonb, $18
		)
	`

	_, err = s.pool.Exec(ctx, query,
		h.IssuanceID,
		h.Payer.String(),
		h.Mint.String(),
		h.Metadata.String(),
		h.Holding.String(),
		int16(h.HoldingBump),
		h.Name,
		h.Symbol,
		h.URI,
		int16(h.Decimals),
		strconv.FormatUint(h.InitialSupply, 10),
		strconv.FormatUint(h.Minted, 10),
		int64(h.Fee),
		h.Revoked.Mint,
		h.Revoked.Freeze,
		h.Revoked.Update,
		string(authorities),
		h.IssuedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert issuance: %w", err)
	}
	return nil
}

// GetByMint retrieves the issuance of a mint. Returns ErrNotFound if not exists.
func (s *IssuanceStore) GetByMint(ctx context.Context, mint domain.Address) (*domain.AssetHandle, error) {
	query := `SELECT ` + issuanceColumns + ` FROM issuances WHERE mint = $1`

	row := s.pool.QueryRow(ctx, query, mint.String())
	h, err := scanIssuance(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get issuance by mint: %w", err)
	}
	return h, nil
}

// ListByPayer retrieves all issuances funded by payer, ordered by issued_at ASC.
func (s *IssuanceStore) ListByPayer(ctx context.Context, payer domain.Address) ([]*domain.AssetHandle, error) {
	query := `SELECT ` + issuanceColumns + `
		FROM issuances
		WHERE payer = $1
		ORDER BY issued_at ASC, issuance_id ASC
	`

	rows, err := s.pool.Query(ctx, query, payer.String())
	if err != nil {
		return nil, fmt.Errorf("query issuances by payer: %w", err)
	}
	defer rows.Close()

	var result []*domain.AssetHandle
	for rows.Next() {
		h, err := scanIssuance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issuance: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issuances: %w", err)
	}
	return result, nil
}

// scanIssuance scans a single row into AssetHandle.
func scanIssuance(row pgx.Row) (*domain.AssetHandle, error) {
	var (
		h                              domain.AssetHandle
		payer, mint, metadata, holding string
		bump, decimals                 int16
		initialSupply, minted          string
		fee                            int64
		authorities                    []byte
	)

	err := row.Scan(
		&h.IssuanceID,
		&payer,
		&mint,
		&metadata,
		&holding,
		&bump,
		&h.Name,
		&h.Symbol,
		&h.URI,
		&decimals,
		&initialSupply,
		&minted,
		&fee,
		&h.Revoked.Mint,
		&h.Revoked.Freeze,
		&h.Revoked.Update,
		&authorities,
		&h.IssuedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		dst *domain.Address
		src string
	}{
		{&h.Payer, payer},
		{&h.Mint, mint},
		{&h.Metadata, metadata},
		{&h.Holding, holding},
	} {
		if *f.dst, err = domain.ParseAddress(f.src); err != nil {
			return nil, fmt.Errorf("decode address %q: %w", f.src, err)
		}
	}
	if h.InitialSupply, err = strconv.ParseUint(initialSupply, 10, 64); err != nil {
		return nil, fmt.Errorf("decode initial supply: %w", err)
	}
	if h.Minted, err = strconv.ParseUint(minted, 10, 64); err != nil {
		return nil, fmt.Errorf("decode minted: %w", err)
	}
	if err := json.Unmarshal(authorities, &h.Authorities); err != nil {
		return nil, fmt.Errorf("decode authorities: %w", err)
	}

	h.HoldingBump = uint8(bump)
	h.Decimals = uint8(decimals)
	h.Fee = uint64(fee)
	h.IssuedAt = h.IssuedAt.UTC()
	return &h, nil
}
