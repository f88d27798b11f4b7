package migrations

import (
	"context"
	"fmt"

	"solana-token-forge/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded postgres scripts in order.
// Every script uses IF NOT EXISTS, so reruns are harmless.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	list, err := scripts(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	for _, s := range list {
		// pgx runs a multi-statement string through the simple protocol.
		if _, err := pool.Exec(ctx, s.body); err != nil {
			return fmt.Errorf("apply migration %s: %w", s.name, err)
		}
	}
	return nil
}
