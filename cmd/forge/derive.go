package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"solana-token-forge/internal/derive"
	"solana-token-forge/internal/domain"
)

var deriveFlags struct {
	Payer string
	Mint  string
}

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Print the metadata, holding and governance addresses for a payer and mint",
	Args:  cobra.NoArgs,
	RunE:  runDerive,
}

func init() {
	deriveCmd.Flags().StringVar(&deriveFlags.Payer, "payer", "", "Payer address")
	deriveCmd.Flags().StringVar(&deriveFlags.Mint, "mint", "", "Mint address")
	deriveCmd.MarkFlagRequired("payer")
	deriveCmd.MarkFlagRequired("mint")
}

func runDerive(cmd *cobra.Command, _ []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	p, err := cfg.Protocol.Resolve()
	if err != nil {
		return err
	}
	payer, err := domain.ParseAddress(deriveFlags.Payer)
	if err != nil {
		return fmt.Errorf("payer: %w", err)
	}
	mint, err := domain.ParseAddress(deriveFlags.Mint)
	if err != nil {
		return fmt.Errorf("mint: %w", err)
	}

	md, err := derive.MetadataAddress(p, mint)
	if err != nil {
		return err
	}
	holding, err := derive.HoldingAddress(p, payer, mint)
	if err != nil {
		return err
	}
	gov, err := derive.GovernanceAddress(p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "metadata: %s (bump %d)\n", md.Address, md.Bump)
	fmt.Fprintf(out, "holding:  %s (bump %d)\n", holding.Address, holding.Bump)
	fmt.Fprintf(out, "security: %s (bump %d)\n", gov.Address, gov.Bump)
	return nil
}
