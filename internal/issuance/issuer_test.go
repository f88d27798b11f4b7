package issuance

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-forge/internal/config"
	"solana-token-forge/internal/derive"
	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/fee"
	"solana-token-forge/internal/instruction"
	"solana-token-forge/internal/ledger"
	"solana-token-forge/internal/validation"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newKey() domain.Address {
	return domain.Address(types.NewAccount().PublicKey)
}

type fixture struct {
	p      config.Protocol
	ledger *ledger.Ledger
	issuer *Issuer
	payer  domain.Address
}

func newFixture(t *testing.T, p config.Protocol) *fixture {
	t.Helper()
	issuer, err := NewIssuer(p, WithClock(func() time.Time { return fixedTime }))
	require.NoError(t, err)

	f := &fixture{p: p, ledger: ledger.New(p, zerolog.Nop()), issuer: issuer, payer: newKey()}
	_, err = f.ledger.Airdrop(f.payer, config.LamportsPerSOL)
	require.NoError(t, err)
	return f
}

func (f *fixture) request(t *testing.T, flags domain.RevokeFlags) Request {
	t.Helper()
	mint := newKey()
	md, err := derive.MetadataAddress(f.p, mint)
	require.NoError(t, err)
	return Request{
		Payer:         f.payer,
		Mint:          mint,
		Metadata:      md.Address,
		Name:          "Demo",
		Symbol:        "DEMO",
		URI:           "https://example.com/demo.json",
		Decimals:      6,
		InitialSupply: 1_000_000,
		Revoke:        flags,
	}
}

func (f *fixture) issue(req Request) (*domain.AssetHandle, error) {
	var handle *domain.AssetHandle
	err := f.ledger.Execute(context.Background(), []domain.Address{req.Payer, req.Mint}, func(ctx context.Context, u *ledger.Unit) error {
		h, err := f.issuer.Issue(ctx, u, req)
		handle = h
		return err
	})
	return handle, err
}

func (f *fixture) balance(addr domain.Address) uint64 {
	acct, _ := f.ledger.Account(addr)
	return acct.Lamports
}

func TestIssue_NoRevocations(t *testing.T) {
	f := newFixture(t, config.DefaultProtocol())
	req := f.request(t, domain.RevokeFlags{})
	before := f.balance(f.p.Treasury)

	h, err := f.issue(req)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultBaseFee, h.Fee)
	assert.Equal(t, before+config.DefaultBaseFee, f.balance(f.p.Treasury))
	assert.Equal(t, uint64(1_000_000_000_000), h.Minted)
	assert.Equal(t, fixedTime, h.IssuedAt)
	assert.Len(t, h.IssuanceID, 64)

	holding, ok := f.ledger.Account(h.Holding)
	require.True(t, ok)
	require.NotNil(t, holding.Holding)
	assert.Equal(t, uint64(1_000_000*1_000_000), holding.Holding.Amount)
	assert.Equal(t, req.Mint, holding.Holding.Mint)
	assert.Equal(t, f.payer, holding.Holding.Owner)

	mint, _ := f.ledger.Account(req.Mint)
	require.NotNil(t, mint.Mint)
	assert.Equal(t, uint8(6), mint.Mint.Decimals)
	require.NotNil(t, mint.Mint.MintAuthority)
	require.NotNil(t, mint.Mint.FreezeAuthority)
	assert.Equal(t, f.payer, *mint.Mint.MintAuthority)
	assert.Equal(t, f.payer, *mint.Mint.FreezeAuthority)

	md, _ := f.ledger.Account(h.Metadata)
	require.NotNil(t, md.Metadata)
	assert.Equal(t, f.payer, md.Metadata.UpdateAuthority)
	assert.True(t, md.Metadata.IsMutable)
	assert.Equal(t, "Demo", md.Metadata.Name)

	for _, kind := range []domain.CapabilityKind{domain.CapabilityMint, domain.CapabilityFreeze, domain.CapabilityUpdate} {
		assert.True(t, h.Authorities.Get(kind).IsHeldBy(f.payer), kind)
	}
}

func TestIssue_RevokeAll(t *testing.T) {
	f := newFixture(t, config.DefaultProtocol())
	req := f.request(t, domain.RevokeFlags{Mint: true, Freeze: true, Update: true})

	h, err := f.issue(req)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultBaseFee-3*config.DefaultRevokeDiscount, h.Fee)

	mint, _ := f.ledger.Account(req.Mint)
	assert.Nil(t, mint.Mint.MintAuthority)
	assert.Nil(t, mint.Mint.FreezeAuthority)

	md, _ := f.ledger.Account(h.Metadata)
	assert.Equal(t, domain.ZeroAddress, md.Metadata.UpdateAuthority)
	assert.False(t, md.Metadata.IsMutable)

	for _, kind := range []domain.CapabilityKind{domain.CapabilityMint, domain.CapabilityFreeze, domain.CapabilityUpdate} {
		assert.True(t, h.Authorities.Get(kind).IsRevoked(), kind)
	}

	// Revoked capabilities cannot be exercised or revoked again.
	err = f.ledger.Execute(context.Background(), []domain.Address{f.payer}, func(ctx context.Context, u *ledger.Unit) error {
		return u.Invoke(ctx, instruction.NewBuilder(f.p).MintTo(req.Mint, h.Holding, f.payer, 1))
	})
	assert.ErrorIs(t, err, ledger.ErrAuthorityRevoked)

	err = f.ledger.Execute(context.Background(), []domain.Address{f.payer}, func(ctx context.Context, u *ledger.Unit) error {
		return NewRevoker(instruction.NewBuilder(f.p)).Revoke(ctx, u, h, domain.CapabilityMint)
	})
	assert.ErrorIs(t, err, ErrAlreadyRevoked)
}

func TestIssue_FeePerFlagCombination(t *testing.T) {
	f := newFixture(t, config.DefaultProtocol())
	for _, flags := range domain.AllRevokeFlags() {
		h, err := f.issue(f.request(t, flags))
		require.NoError(t, err, flags)
		want := config.DefaultBaseFee - uint64(flags.Count())*config.DefaultRevokeDiscount
		assert.Equal(t, want, h.Fee, flags)

		mint, _ := f.ledger.Account(h.Mint)
		assert.Equal(t, flags.Mint, mint.Mint.MintAuthority == nil, flags)
		assert.Equal(t, flags.Freeze, mint.Mint.FreezeAuthority == nil, flags)
	}
}

func TestIssue_Resubmission(t *testing.T) {
	f := newFixture(t, config.DefaultProtocol())
	req := f.request(t, domain.RevokeFlags{})

	_, err := f.issue(req)
	require.NoError(t, err)
	treasury := f.balance(f.p.Treasury)
	payer := f.balance(f.payer)

	_, err = f.issue(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrAccountAlreadyInUse)
	assert.Contains(t, err.Error(), "allocate holding account")
	assert.Equal(t, KindExternal, Kind(err))

	// The fee transfer of the failed unit was rolled back.
	assert.Equal(t, treasury, f.balance(f.p.Treasury))
	assert.Equal(t, payer, f.balance(f.payer))
}

func TestIssue_ValidationLeavesNoTrace(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Request)
		want   error
	}{
		{"decimals 19", func(r *Request) { r.Decimals = 19 }, ErrInvalidDecimals},
		{"supply overflow", func(r *Request) { r.Decimals = 18; r.InitialSupply = math.MaxUint64/1_000_000_000_000_000_000 + 1 }, ErrInvalidInitialSupply},
		{"zero supply", func(r *Request) { r.InitialSupply = 0 }, ErrInvalidInitialSupply},
		{"empty name", func(r *Request) { r.Name = "" }, ErrInvalidTokenName},
		{"long symbol", func(r *Request) { r.Symbol = "ABCDEFGHIJK" }, ErrInvalidTokenSymbol},
		{"empty uri", func(r *Request) { r.URI = "" }, ErrInvalidUri},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, config.DefaultProtocol())
			req := f.request(t, domain.RevokeFlags{})
			tt.modify(&req)
			slot := f.ledger.Slot()

			_, err := f.issue(req)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, KindValidation, Kind(err))
			assert.Equal(t, slot, f.ledger.Slot())

			_, minted := f.ledger.Account(req.Mint)
			assert.False(t, minted)
			assert.Equal(t, config.LamportsPerSOL, f.balance(f.payer))
		})
	}
}

func TestIssue_InsufficientFunds(t *testing.T) {
	f := newFixture(t, config.DefaultProtocol())
	req := f.request(t, domain.RevokeFlags{})
	req.Payer = newKey()
	_, err := f.ledger.Airdrop(req.Payer, config.DefaultBaseFee-1)
	require.NoError(t, err)

	_, err = f.issue(req)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, KindResource, Kind(err))
}

func TestIssue_TreasuryMismatch(t *testing.T) {
	f := newFixture(t, config.DefaultProtocol())
	req := f.request(t, domain.RevokeFlags{})
	other := newKey()
	req.Treasury = &other

	_, err := f.issue(req)
	assert.ErrorIs(t, err, ErrTreasuryMismatch)
	assert.Equal(t, KindAuthorization, Kind(err))

	configured := f.p.Treasury
	req.Treasury = &configured
	_, err = f.issue(req)
	assert.NoError(t, err)
}

func TestIssue_AlternateTreasury(t *testing.T) {
	treasury := newKey()
	f := newFixture(t, config.DefaultProtocol().WithTreasury(treasury).WithFees(5_000, 1_000))

	h, err := f.issue(f.request(t, domain.RevokeFlags{Freeze: true}))
	require.NoError(t, err)
	assert.Equal(t, uint64(4_000), h.Fee)
	assert.Equal(t, uint64(4_000), f.balance(treasury))
}

func TestIssue_DerivationMismatch(t *testing.T) {
	f := newFixture(t, config.DefaultProtocol())

	req := f.request(t, domain.RevokeFlags{})
	req.Metadata = newKey()
	_, err := f.issue(req)
	assert.ErrorIs(t, err, ErrInvalidMetadataAccount)
	assert.Equal(t, KindDerivation, Kind(err))

	req = f.request(t, domain.RevokeFlags{})
	wrong := newKey()
	req.Holding = &wrong
	_, err = f.issue(req)
	assert.ErrorIs(t, err, ErrInvalidHoldingAccount)
	assert.Equal(t, config.LamportsPerSOL, f.balance(f.payer))
}

func TestIssue_FeeUnderflow(t *testing.T) {
	f := newFixture(t, config.DefaultProtocol().WithFees(5, 2))

	_, err := f.issue(f.request(t, domain.RevokeFlags{Mint: true, Freeze: true, Update: true}))
	assert.ErrorIs(t, err, fee.ErrInvalidFeeCalculation)
	assert.Equal(t, KindResource, Kind(err))
}

// recorder is a Runtime that records calls and fails on a chosen op.
type recorder struct {
	balance uint64
	failOn  instruction.Op
	ops     []instruction.Op
	calls   []instruction.Call
}

func (r *recorder) Invoke(_ context.Context, call instruction.Call) error {
	r.ops = append(r.ops, call.Op)
	r.calls = append(r.calls, call)
	if call.Op == r.failOn {
		return errors.New("rejected by program")
	}
	return nil
}

func (r *recorder) Balance(context.Context, domain.Address) (uint64, error) {
	return r.balance, nil
}

func TestIssue_CallOrder(t *testing.T) {
	p := config.DefaultProtocol()
	issuer, err := NewIssuer(p)
	require.NoError(t, err)
	f := &fixture{p: p, payer: newKey()}
	req := f.request(t, domain.RevokeFlags{Mint: true, Freeze: true, Update: true})

	rt := &recorder{balance: config.LamportsPerSOL}
	_, err = issuer.Issue(context.Background(), rt, req)
	require.NoError(t, err)

	assert.Equal(t, []instruction.Op{
		instruction.OpTransfer,
		instruction.OpCreateAccount, // holding
		instruction.OpCreateAccount, // mint
		instruction.OpInitializeMint,
		instruction.OpCreateMetadata,
		instruction.OpInitializeAccount,
		instruction.OpMintTo,
		instruction.OpUpdateMetadataAuth,
		instruction.OpSetAuthority,
		instruction.OpSetAuthority,
	}, rt.ops)
}

func TestIssue_SupplyAtPrecisionLimit(t *testing.T) {
	p := config.DefaultProtocol()
	issuer, err := NewIssuer(p)
	require.NoError(t, err)
	f := &fixture{p: p, payer: newKey()}

	// 18 * 10^18 fits in uint64, 19 * 10^18 does not.
	amount, err := validation.ScaleSupply(18, validation.MaxDecimals)
	require.NoError(t, err)
	assert.Equal(t, uint64(18_000_000_000_000_000_000), amount)
	_, err = validation.ScaleSupply(19, validation.MaxDecimals)
	assert.ErrorIs(t, err, ErrInvalidInitialSupply)

	req := f.request(t, domain.RevokeFlags{})
	req.Decimals = validation.MaxDecimals
	req.InitialSupply = 18

	rt := &recorder{balance: config.LamportsPerSOL}
	h, err := issuer.Issue(context.Background(), rt, req)
	require.NoError(t, err)
	assert.Equal(t, amount, h.Minted)

	var minted []uint64
	for _, call := range rt.calls {
		if call.Op != instruction.OpMintTo {
			continue
		}
		in, err := instruction.DecodeToken(call.Data)
		require.NoError(t, err)
		minted = append(minted, in.Amount)
	}
	assert.Equal(t, []uint64{amount}, minted)

	req.InitialSupply = 19
	rt = &recorder{balance: config.LamportsPerSOL}
	_, err = issuer.Issue(context.Background(), rt, req)
	assert.ErrorIs(t, err, ErrInvalidInitialSupply)
	assert.Equal(t, KindValidation, Kind(err))
	assert.Empty(t, rt.ops)
}

func TestIssue_ExternalErrorPropagates(t *testing.T) {
	p := config.DefaultProtocol()
	issuer, err := NewIssuer(p)
	require.NoError(t, err)
	f := &fixture{p: p, payer: newKey()}

	rt := &recorder{balance: config.LamportsPerSOL, failOn: instruction.OpCreateMetadata}
	_, err = issuer.Issue(context.Background(), rt, f.request(t, domain.RevokeFlags{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected by program")
	assert.Equal(t, KindExternal, Kind(err))
	assert.Equal(t, instruction.OpCreateMetadata, rt.ops[len(rt.ops)-1])
}

func TestQuote(t *testing.T) {
	issuer, err := NewIssuer(config.DefaultProtocol())
	require.NoError(t, err)

	got, err := issuer.Quote(domain.RevokeFlags{Update: true})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBaseFee-config.DefaultRevokeDiscount, got)
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindNone, Kind(nil))
	assert.Equal(t, KindCanceled, Kind(context.Canceled))
	assert.Equal(t, KindExternal, Kind(errors.New("other")))
	assert.Equal(t, KindDerivation, Kind(derive.ErrNoViableBump))
}
