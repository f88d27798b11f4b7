package main

import (
	"errors"

	"github.com/spf13/cobra"

	"solana-token-forge/internal/config"
	"solana-token-forge/internal/observability"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded postgres and clickhouse migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if cfg.Storage.Backend != config.BackendPostgres && cfg.Storage.ClickhouseDSN == "" {
		return errors.New("nothing to migrate: configure storage.postgres_dsn or storage.clickhouse_dsn")
	}

	// openStores migrates every backend it connects to.
	st, err := openStores(cmd.Context(), cfg, log, observability.NewMetrics(""))
	if err != nil {
		return err
	}
	st.Close()
	log.Info().Msg("migrations applied")
	return nil
}
