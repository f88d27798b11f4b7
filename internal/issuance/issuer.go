// Package issuance composes one asset issuance unit out of calls into the
// system, asset-ledger and metadata programs.
package issuance

import (
	"context"
	"fmt"
	"time"

	"solana-token-forge/internal/config"
	"solana-token-forge/internal/derive"
	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/fee"
	"solana-token-forge/internal/idhash"
	"solana-token-forge/internal/instruction"
	"solana-token-forge/internal/validation"
)

// Runtime executes calls inside the current unit. A failed call aborts the
// unit and the runtime discards every effect of it.
type Runtime interface {
	Invoke(ctx context.Context, call instruction.Call) error
	Balance(ctx context.Context, addr domain.Address) (uint64, error)
}

// Request carries the parameters of one issuance.
type Request struct {
	Payer    domain.Address
	Mint     domain.Address // fresh key, signs the unit
	Metadata domain.Address // must equal the derived metadata address
	// Treasury and Holding are optional client assertions. When set they
	// must match the configured treasury and the derived holding address.
	Treasury *domain.Address
	Holding  *domain.Address

	Name          string
	Symbol        string
	URI           string
	Decimals      uint8
	InitialSupply uint64
	Revoke        domain.RevokeFlags
}

// Issuer runs issuance units for one protocol configuration.
type Issuer struct {
	p         config.Protocol
	fees      fee.Schedule
	validator *validation.Validator
	build     instruction.Builder
	revoker   *Revoker
	now       func() time.Time
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock overrides the issuance timestamp source.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer creates an Issuer for p.
func NewIssuer(p config.Protocol, opts ...Option) (*Issuer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	v, err := validation.New()
	if err != nil {
		return nil, err
	}
	build := instruction.NewBuilder(p)
	i := &Issuer{
		p:         p,
		fees:      fee.NewSchedule(p),
		validator: v,
		build:     build,
		revoker:   NewRevoker(build),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Quote returns the fee for flags without touching any account.
func (i *Issuer) Quote(flags domain.RevokeFlags) (uint64, error) {
	return i.fees.Compute(flags)
}

// Issue runs the ordered issuance steps on rt. Any error aborts the unit.
func (i *Issuer) Issue(ctx context.Context, rt Runtime, req Request) (*domain.AssetHandle, error) {
	// 1. parameters
	if err := i.validator.Validate(validation.Input{
		Name:          req.Name,
		Symbol:        req.Symbol,
		URI:           req.URI,
		Decimals:      req.Decimals,
		InitialSupply: req.InitialSupply,
	}); err != nil {
		return nil, err
	}

	// 2. fee
	charged, err := i.fees.Compute(req.Revoke)
	if err != nil {
		return nil, err
	}

	// 3. treasury and balance
	if req.Treasury != nil && *req.Treasury != i.p.Treasury {
		return nil, fmt.Errorf("%w: got %s", ErrTreasuryMismatch, *req.Treasury)
	}
	balance, err := rt.Balance(ctx, req.Payer)
	if err != nil {
		return nil, fmt.Errorf("payer balance: %w", err)
	}
	if balance < charged {
		return nil, fmt.Errorf("%w: balance %d, fee %d", ErrInsufficientFunds, balance, charged)
	}

	// 4. collect fee
	if err := rt.Invoke(ctx, i.build.Transfer(req.Payer, i.p.Treasury, charged)); err != nil {
		return nil, fmt.Errorf("collect fee: %w", err)
	}

	// 5. metadata address
	metadata, err := derive.MetadataAddress(i.p, req.Mint)
	if err != nil {
		return nil, fmt.Errorf("derive metadata: %w", err)
	}
	if metadata.Address != req.Metadata {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrInvalidMetadataAccount, req.Metadata, metadata.Address)
	}

	// 6. allocate holding account; an occupied address stops a resubmission here
	holding, err := derive.HoldingAddress(i.p, req.Payer, req.Mint)
	if err != nil {
		return nil, fmt.Errorf("derive holding: %w", err)
	}
	if req.Holding != nil && *req.Holding != holding.Address {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrInvalidHoldingAccount, *req.Holding, holding.Address)
	}
	if err := rt.Invoke(ctx, i.build.CreateAccount(
		req.Payer, holding.Address, i.p.TokenProgram, instruction.HoldingAccountSize, holding.SignerSeeds(),
	)); err != nil {
		return nil, fmt.Errorf("allocate holding account: %w", err)
	}

	// 7. asset record
	if err := rt.Invoke(ctx, i.build.CreateAccount(
		req.Payer, req.Mint, i.p.TokenProgram, instruction.MintAccountSize, nil,
	)); err != nil {
		return nil, fmt.Errorf("allocate mint: %w", err)
	}
	if err := rt.Invoke(ctx, i.build.InitializeMint(req.Mint, req.Payer, req.Decimals)); err != nil {
		return nil, fmt.Errorf("initialize mint: %w", err)
	}

	// 8. metadata record
	if err := rt.Invoke(ctx, i.build.CreateMetadata(instruction.MetadataParams{
		Metadata:        metadata.Address,
		Mint:            req.Mint,
		MintAuthority:   req.Payer,
		Payer:           req.Payer,
		UpdateAuthority: req.Payer,
		Name:            req.Name,
		Symbol:          req.Symbol,
		URI:             req.URI,
		IsMutable:       !req.Revoke.Update,
	})); err != nil {
		return nil, fmt.Errorf("create metadata: %w", err)
	}

	// 9. holding account
	if err := rt.Invoke(ctx, i.build.InitializeAccount(holding.Address, req.Mint, req.Payer)); err != nil {
		return nil, fmt.Errorf("initialize holding account: %w", err)
	}

	// 10. initial supply
	amount, err := validation.ScaleSupply(req.InitialSupply, req.Decimals)
	if err != nil {
		return nil, err
	}
	if err := rt.Invoke(ctx, i.build.MintTo(req.Mint, holding.Address, req.Payer, amount)); err != nil {
		return nil, fmt.Errorf("mint initial supply: %w", err)
	}

	handle := &domain.AssetHandle{
		IssuanceID:    idhash.ComputeIssuanceID(req.Payer, req.Mint, holding.Address, i.p.ProgramID),
		Payer:         req.Payer,
		Mint:          req.Mint,
		Metadata:      metadata.Address,
		Holding:       holding.Address,
		HoldingBump:   holding.Bump,
		Name:          req.Name,
		Symbol:        req.Symbol,
		URI:           req.URI,
		Decimals:      req.Decimals,
		InitialSupply: req.InitialSupply,
		Minted:        amount,
		Fee:           charged,
		Revoked:       req.Revoke,
		Authorities: domain.Authorities{
			Mint:   domain.Held(req.Payer),
			Freeze: domain.Held(req.Payer),
			Update: domain.Held(req.Payer),
		},
	}

	// 11-13. revocations, update authority first
	for _, kind := range requestedRevocations(req.Revoke) {
		if err := i.revoker.Revoke(ctx, rt, handle, kind); err != nil {
			return nil, err
		}
	}

	handle.IssuedAt = i.now().UTC()
	return handle, nil
}

func requestedRevocations(flags domain.RevokeFlags) []domain.CapabilityKind {
	var kinds []domain.CapabilityKind
	if flags.Update {
		kinds = append(kinds, domain.CapabilityUpdate)
	}
	if flags.Mint {
		kinds = append(kinds, domain.CapabilityMint)
	}
	if flags.Freeze {
		kinds = append(kinds, domain.CapabilityFreeze)
	}
	return kinds
}
