package issuance

import (
	"context"
	"fmt"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/instruction"
)

// Revoker gives up capabilities of an issued asset. Each capability moves
// Held -> Revoked exactly once.
type Revoker struct {
	build instruction.Builder
}

// NewRevoker returns a Revoker emitting calls built by b.
func NewRevoker(b instruction.Builder) *Revoker {
	return &Revoker{build: b}
}

// Revoke revokes the kind capability of h on rt and records it in h.
// The call is signed by the current holder. Revoking twice returns
// domain.ErrAlreadyRevoked without invoking anything.
func (r *Revoker) Revoke(ctx context.Context, rt Runtime, h *domain.AssetHandle, kind domain.CapabilityKind) error {
	current := h.Authorities.Get(kind)
	holder, held := current.Holder()
	revoked, err := current.Revoke()
	if err != nil || !held {
		return fmt.Errorf("revoke %s authority: %w", kind, domain.ErrAlreadyRevoked)
	}

	var call instruction.Call
	switch kind {
	case domain.CapabilityMint:
		call = r.build.RevokeMintAuthority(h.Mint, holder)
	case domain.CapabilityFreeze:
		call = r.build.RevokeFreezeAuthority(h.Mint, holder)
	case domain.CapabilityUpdate:
		call = r.build.RevokeUpdateAuthority(h.Metadata, holder)
	default:
		return fmt.Errorf("revoke: unknown capability %q", kind)
	}

	if err := rt.Invoke(ctx, call); err != nil {
		return fmt.Errorf("revoke %s authority: %w", kind, err)
	}
	h.Authorities.Set(kind, revoked)
	return nil
}
