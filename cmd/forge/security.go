package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"solana-token-forge/internal/derive"
	"solana-token-forge/internal/governance"
	"solana-token-forge/internal/solana"
)

var securityCmd = &cobra.Command{
	Use:   "security",
	Short: "Inspect the governance disclosure record",
}

var securityShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Fetch and decode the on-chain disclosure record over RPC",
	Args:  cobra.NoArgs,
	RunE:  runSecurityShow,
}

func init() {
	securityCmd.AddCommand(securityShowCmd)
}

func runSecurityShow(cmd *cobra.Command, _ []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	p, err := cfg.Protocol.Resolve()
	if err != nil {
		return err
	}
	addr, err := derive.GovernanceAddress(p)
	if err != nil {
		return err
	}

	rpc := solana.NewHTTPClient(cfg.Solana.RPCEndpoint)
	rec, err := governance.FetchAccount(cmd.Context(), rpc, addr.Address)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "address: %s\n", rec.Address)
	fmt.Fprintf(out, "admin:   %s\n", rec.Admin)
	fmt.Fprintf(out, "version: %d\n", rec.Version)
	fmt.Fprintf(out, "updated: %s (%s)\n", rec.UpdatedAt.Format(time.RFC3339), humanize.Time(rec.UpdatedAt))
	fmt.Fprintf(out, "\n%s\n", rec.Content)
	return nil
}
