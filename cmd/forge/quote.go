package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"solana-token-forge/internal/config"
	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/fee"
	"solana-token-forge/internal/solana"
)

var quoteFlags struct {
	Flags domain.RevokeFlags
	Payer string
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Print the issuance fee, optionally checking a payer balance over RPC",
	Args:  cobra.NoArgs,
	RunE:  runQuote,
}

func init() {
	f := quoteCmd.Flags()
	f.BoolVar(&quoteFlags.Flags.Mint, "revoke-mint", false, "Revoke the mint capability")
	f.BoolVar(&quoteFlags.Flags.Freeze, "revoke-freeze", false, "Revoke the freeze capability")
	f.BoolVar(&quoteFlags.Flags.Update, "revoke-update", false, "Revoke the metadata update capability")
	f.StringVar(&quoteFlags.Payer, "payer", "", "Payer to preflight against the RPC endpoint")
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	p, err := cfg.Protocol.Resolve()
	if err != nil {
		return err
	}

	charged, err := fee.NewSchedule(p).Compute(quoteFlags.Flags)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "fee:      %s\n", formatLamports(charged))
	fmt.Fprintf(out, "treasury: %s\n", p.Treasury)

	if quoteFlags.Payer == "" {
		return nil
	}
	payer, err := domain.ParseAddress(quoteFlags.Payer)
	if err != nil {
		return err
	}
	rpc := solana.NewHTTPClient(cfg.Solana.RPCEndpoint)
	return preflight(cmd.Context(), out, rpc, payer, charged)
}

func preflight(ctx context.Context, out io.Writer, rpc solana.RPCClient, payer domain.Address, charged uint64) error {
	balance, err := rpc.GetBalance(ctx, payer.String())
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}
	fmt.Fprintf(out, "balance:  %s\n", formatLamports(balance))
	if balance < charged {
		return fmt.Errorf("payer %s cannot cover the fee: short by %s", payer, formatLamports(charged-balance))
	}
	fmt.Fprintln(out, "payer can cover the fee")
	return nil
}

// formatLamports renders "10,000,000 lamports (0.01 SOL)".
func formatLamports(l uint64) string {
	sol := float64(l) / float64(config.LamportsPerSOL)
	return fmt.Sprintf("%s lamports (%s SOL)", humanize.Comma(int64(l)), humanize.FtoaWithDigits(sol, 9))
}
