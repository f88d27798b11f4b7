package clickhouse

import (
	"context"
	"fmt"
	"time"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/storage"
)

// IssuanceEventStore implements storage.IssuanceEventStore using ClickHouse.
type IssuanceEventStore struct {
	conn *Conn
}

// NewIssuanceEventStore creates a new IssuanceEventStore.
func NewIssuanceEventStore(conn *Conn) *IssuanceEventStore {
	return &IssuanceEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.IssuanceEventStore = (*IssuanceEventStore)(nil)

// Insert adds a new event. Returns ErrDuplicateKey if event_id exists.
func (s *IssuanceEventStore) Insert(ctx context.Context, e *domain.IssuanceEvent) (err error) {
	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { s.conn.record("insert", start, err) }(time.Now())

	// Check if exists (ReplacingMergeTree will replace, but we want append-only semantics)
	exists, err := s.exists(ctx, e.EventID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO issuance_events (
			event_id, source, outcome, error_kind,
			payer, mint, fee,
			revoke_mint, revoke_freeze, revoke_update,
			signature, slot, occurred_at
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?,
			?, ?, ?,
			?, ?, ?
		)
	`

	err = s.conn.Exec(ctx, query,
		e.EventID, string(e.Source), string(e.Outcome), e.ErrorKind,
		e.Payer, e.Mint, e.Fee,
		e.Revoked.Mint, e.Revoked.Freeze, e.Revoked.Update,
		e.Signature, e.Slot, e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert issuance event: %w", err)
	}
	return nil
}

// ListByMint retrieves all events for a mint, ordered by occurred_at ASC.
func (s *IssuanceEventStore) ListByMint(ctx context.Context, mint string) (_ []*domain.IssuanceEvent, err error) {
	defer func(start time.Time) { s.conn.record("select", start, err) }(time.Now())

	query := `
		SELECT
			event_id, source, outcome, error_kind,
			payer, mint, fee,
			revoke_mint, revoke_freeze, revoke_update,
			signature, slot, occurred_at
		FROM issuance_events FINAL
		WHERE mint = ?
		ORDER BY occurred_at ASC, event_id ASC
	`

	rows, err := s.conn.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query issuance events: %w", err)
	}
	defer rows.Close()

	var result []*domain.IssuanceEvent
	for rows.Next() {
		var (
			e               domain.IssuanceEvent
			source, outcome string
		)
		err := rows.Scan(
			&e.EventID, &source, &outcome, &e.ErrorKind,
			&e.Payer, &e.Mint, &e.Fee,
			&e.Revoked.Mint, &e.Revoked.Freeze, &e.Revoked.Update,
			&e.Signature, &e.Slot, &e.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan issuance event: %w", err)
		}
		e.Source = domain.EventSource(source)
		e.Outcome = domain.Outcome(outcome)
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issuance events: %w", err)
	}
	return result, nil
}

// CountByOutcome counts events with occurred_at within [start, end] (inclusive).
func (s *IssuanceEventStore) CountByOutcome(ctx context.Context, start, end int64) (_ map[domain.Outcome]int64, err error) {
	defer func(began time.Time) { s.conn.record("count", began, err) }(time.Now())

	query := `
		SELECT outcome, count() AS n
		FROM issuance_events FINAL
		WHERE occurred_at >= ? AND occurred_at <= ?
		GROUP BY outcome
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("count issuance events: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Outcome]int64)
	for rows.Next() {
		var (
			outcome string
			n       uint64
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[domain.Outcome(outcome)] = int64(n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

func (s *IssuanceEventStore) exists(ctx context.Context, eventID string) (bool, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, `SELECT count() FROM issuance_events WHERE event_id = ?`, eventID)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
