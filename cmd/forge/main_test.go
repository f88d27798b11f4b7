package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/solana/stub"
)

func TestFormatLamports(t *testing.T) {
	assert.Equal(t, "10,000,000 lamports (0.01 SOL)", formatLamports(10_000_000))
	assert.Equal(t, "0 lamports (0 SOL)", formatLamports(0))
}

func TestPreflight(t *testing.T) {
	payer := domain.Address(types.NewAccount().PublicKey)
	rpc := stub.NewRPCClient()
	rpc.SetBalance(payer.String(), 5_000_000)

	var out bytes.Buffer
	err := preflight(context.Background(), &out, rpc, payer, 4_000_000)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "payer can cover the fee")

	out.Reset()
	err = preflight(context.Background(), &out, rpc, payer, 10_000_000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5,000,000 lamports")
}

func TestDeriveCommand(t *testing.T) {
	payer := types.NewAccount().PublicKey.ToBase58()
	mint := types.NewAccount().PublicKey.ToBase58()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"derive", "--env-file", "", "--payer", payer, "--mint", mint})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "metadata: ")
	assert.Contains(t, out.String(), "holding:  ")
	assert.Contains(t, out.String(), "security: ")
}

func TestQuoteCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"quote", "--env-file", "", "--revoke-mint", "--revoke-freeze", "--revoke-update"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "4,000,000 lamports (0.004 SOL)")
}
