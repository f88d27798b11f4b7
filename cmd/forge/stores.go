package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"solana-token-forge/internal/config"
	"solana-token-forge/internal/observability"
	"solana-token-forge/internal/storage"
	chstore "solana-token-forge/internal/storage/clickhouse"
	"solana-token-forge/internal/storage/memory"
	"solana-token-forge/internal/storage/migrations"
	pgstore "solana-token-forge/internal/storage/postgres"
)

// stores holds the storage implementations selected by config.
type stores struct {
	disclosures storage.DisclosureStore
	issuances   storage.IssuanceStore
	events      storage.IssuanceEventStore
	closers     []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores connects and migrates the configured backends. Query timings
// of the database backends go to metrics.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger, metrics *observability.Metrics) (*stores, error) {
	s := &stores{}

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN,
			pgstore.WithMaxConns(cfg.Storage.MaxConns),
			pgstore.WithQueryObserver(metrics),
		)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			s.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		s.disclosures = pgstore.NewDisclosureStore(pool)
		s.issuances = pgstore.NewIssuanceStore(pool)
		log.Info().Msg("using postgres storage")
	default:
		s.disclosures = memory.NewDisclosureStore()
		s.issuances = memory.NewIssuanceStore()
		log.Info().Msg("using in-memory storage")
	}

	events, closeEvents, err := openEvents(ctx, cfg, log, metrics)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.events = events
	s.closers = append(s.closers, closeEvents)
	return s, nil
}

// openEvents returns the ClickHouse event log when a DSN is set, otherwise memory.
func openEvents(ctx context.Context, cfg *config.Config, log zerolog.Logger, metrics *observability.Metrics) (storage.IssuanceEventStore, func(), error) {
	if cfg.Storage.ClickhouseDSN == "" {
		return memory.NewIssuanceEventStore(), func() {}, nil
	}
	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
	}
	conn.Observe(metrics)
	log.Info().Msg("recording issuance events to clickhouse")
	return chstore.NewIssuanceEventStore(conn), func() { conn.Close() }, nil
}
