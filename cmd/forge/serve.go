package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"solana-token-forge/internal/api"
	"solana-token-forge/internal/ledger"
	"solana-token-forge/internal/observability"
	"solana-token-forge/internal/orchestrator"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API over the in-process sandbox ledger",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "HTTP listen address (overrides server.addr)")
	if err := v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	p, err := cfg.Protocol.Resolve()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	metrics := observability.NewMetrics("")
	st, err := openStores(ctx, cfg, log, metrics)
	if err != nil {
		return err
	}
	defer st.Close()

	sandbox := ledger.New(p, log.With().Str("component", "ledger").Logger())

	svc, err := orchestrator.New(orchestrator.Options{
		Protocol:    p,
		Executor:    orchestrator.Sandbox(sandbox),
		Disclosures: st.disclosures,
		Issuances:   st.issuances,
		Events:      st.events,
		Metrics:     metrics,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.New(api.Options{
			Service: svc,
			Sandbox: sandbox,
			Metrics: metrics,
			Logger:  log,
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Stringer("program", p.ProgramID).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
