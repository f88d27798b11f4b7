package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"solana-token-forge/internal/ledger"
	"solana-token-forge/internal/observability"
	"solana-token-forge/internal/orchestrator"
	"solana-token-forge/internal/solana"
)

var watchFlags struct {
	Commitment string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Record on-chain issuances observed in program logs into the event log",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchFlags.Commitment, "commitment", solana.CommitmentConfirmed, "Commitment level (processed, confirmed, finalized)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
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

	// The watcher never issues; the sandbox only satisfies the executor.
	svc, err := orchestrator.New(orchestrator.Options{
		Protocol:    p,
		Executor:    orchestrator.Sandbox(ledger.New(p, log)),
		Disclosures: st.disclosures,
		Issuances:   st.issuances,
		Events:      st.events,
		Metrics:     metrics,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	wsCfg := solana.DefaultWSConfig()
	wsCfg.Logger = log
	ws, err := solana.NewWSClient(ctx, cfg.Solana.WSEndpoint, &wsCfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	w, err := svc.NewWatcher(ws, solana.NewHTTPClient(cfg.Solana.RPCEndpoint, solana.WithLatencyObserver(metrics)))
	if err != nil {
		return err
	}
	if err := w.Run(ctx, watchFlags.Commitment); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
