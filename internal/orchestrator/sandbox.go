package orchestrator

import (
	"context"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/issuance"
	"solana-token-forge/internal/ledger"
)

// Sandbox adapts the in-process ledger to Executor.
func Sandbox(l *ledger.Ledger) Executor {
	return sandbox{l: l}
}

type sandbox struct {
	l *ledger.Ledger
}

func (s sandbox) Run(ctx context.Context, signers []domain.Address, fn func(context.Context, issuance.Runtime) error) error {
	return s.l.Execute(ctx, signers, func(ctx context.Context, u *ledger.Unit) error {
		return fn(ctx, u)
	})
}
