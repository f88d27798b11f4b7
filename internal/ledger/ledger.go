// Package ledger is an in-process execution sandbox for issuance units.
//
// A unit runs against a copy-on-write overlay of the account set while the
// ledger lock is held. The overlay is committed only when the unit returns
// nil, so a failing unit leaves no trace: not the fee transfer, not the
// allocated accounts.
package ledger

import (
	"context"
	"fmt"
	"math/bits"
	"sync"

	"github.com/rs/zerolog"

	"solana-token-forge/internal/config"
	"solana-token-forge/internal/derive"
	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/instruction"
)

// Ledger holds committed account state.
type Ledger struct {
	mu       sync.Mutex
	p        config.Protocol
	accounts map[domain.Address]Account
	slot     uint64
	log      zerolog.Logger
}

// New creates an empty ledger for protocol p.
func New(p config.Protocol, log zerolog.Logger) *Ledger {
	return &Ledger{
		p:        p,
		accounts: make(map[domain.Address]Account),
		log:      log.With().Str("component", "ledger").Logger(),
	}
}

// Protocol returns the protocol the ledger executes under.
func (l *Ledger) Protocol() config.Protocol {
	return l.p
}

// Airdrop credits lamports to addr and returns the new balance.
func (l *Ledger) Airdrop(addr domain.Address, lamports uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[addr]
	if !ok {
		acct = Account{Address: addr, Owner: l.p.SystemProgram}
	}
	sum, carry := bits.Add64(acct.Lamports, lamports, 0)
	if carry != 0 {
		return acct.Lamports, fmt.Errorf("airdrop to %s: %w", addr, ErrArithmeticOverflow)
	}
	acct.Lamports = sum
	l.accounts[addr] = acct
	l.slot++
	return sum, nil
}

// Account returns a copy of the committed account at addr.
func (l *Ledger) Account(addr domain.Address) (Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[addr]
	if !ok {
		return Account{}, false
	}
	return acct.clone(), true
}

// Slot returns the number of committed state changes.
func (l *Ledger) Slot() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slot
}

// Execute runs fn as one atomic unit signed by signers.
// Units are serialized; a unit observes every unit committed before it.
func (l *Ledger) Execute(ctx context.Context, signers []domain.Address, fn func(context.Context, *Unit) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	u := &Unit{
		l:       l,
		overlay: make(map[domain.Address]Account),
		signers: make(map[domain.Address]struct{}, len(signers)),
	}
	for _, s := range signers {
		u.signers[s] = struct{}{}
	}

	if err := fn(ctx, u); err != nil {
		l.log.Debug().Err(err).Int("calls", len(u.ops)).Msg("unit rolled back")
		return err
	}

	for addr, acct := range u.overlay {
		l.accounts[addr] = acct
	}
	l.slot++
	l.log.Debug().Int("calls", len(u.ops)).Int("accounts", len(u.overlay)).Uint64("slot", l.slot).Msg("unit committed")
	return nil
}

// Unit is the execution context of one atomic unit. It is only valid inside
// the function passed to Execute.
type Unit struct {
	l       *Ledger
	overlay map[domain.Address]Account
	signers map[domain.Address]struct{}
	ops     []instruction.Op
}

// Invoke executes call against the unit's overlay.
func (u *Unit) Invoke(ctx context.Context, call instruction.Call) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := u.checkSigners(call); err != nil {
		return fmt.Errorf("%s: %w", call.Op, err)
	}

	var err error
	switch call.Program {
	case u.l.p.SystemProgram:
		err = u.executeSystem(call)
	case u.l.p.TokenProgram:
		err = u.executeToken(call)
	case u.l.p.MetadataProgram:
		err = u.executeMetadata(call)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownProgram, call.Program)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", call.Op, err)
	}
	u.ops = append(u.ops, call.Op)
	return nil
}

// Balance returns the lamports of addr as seen by this unit.
func (u *Unit) Balance(_ context.Context, addr domain.Address) (uint64, error) {
	acct, _ := u.load(addr)
	return acct.Lamports, nil
}

// Account returns the account at addr as seen by this unit.
func (u *Unit) Account(addr domain.Address) (Account, bool) {
	return u.load(addr)
}

// Ops returns the operations executed so far, in order.
func (u *Unit) Ops() []instruction.Op {
	out := make([]instruction.Op, len(u.ops))
	copy(out, u.ops)
	return out
}

// checkSigners verifies that every account flagged as signer either signed
// the unit or is the issuing program's address derived from call.SignerSeeds.
func (u *Unit) checkSigners(call instruction.Call) error {
	var programSigner *domain.Address
	if len(call.SignerSeeds) > 0 {
		addr, err := derive.CreateProgramAddress(call.SignerSeeds, u.l.p.ProgramID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
		}
		programSigner = &addr
	}

	for _, meta := range call.Accounts {
		if !meta.IsSigner {
			continue
		}
		if _, ok := u.signers[meta.Address]; ok {
			continue
		}
		if programSigner != nil && *programSigner == meta.Address {
			continue
		}
		return fmt.Errorf("%w: %s", ErrMissingSigner, meta.Address)
	}
	return nil
}

// load returns a private copy of the account at addr. Missing accounts are
// returned as empty system-owned accounts.
func (u *Unit) load(addr domain.Address) (Account, bool) {
	if acct, ok := u.overlay[addr]; ok {
		return acct.clone(), true
	}
	if acct, ok := u.l.accounts[addr]; ok {
		return acct.clone(), true
	}
	return Account{Address: addr, Owner: u.l.p.SystemProgram}, false
}

func (u *Unit) store(acct Account) {
	u.overlay[acct.Address] = acct
}

func debit(acct *Account, lamports uint64) error {
	if acct.Lamports < lamports {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientLamports, acct.Address, acct.Lamports, lamports)
	}
	acct.Lamports -= lamports
	return nil
}

func credit(acct *Account, lamports uint64) error {
	sum, carry := bits.Add64(acct.Lamports, lamports, 0)
	if carry != 0 {
		return ErrArithmeticOverflow
	}
	acct.Lamports = sum
	return nil
}

func requireAccounts(call instruction.Call, n int) error {
	if len(call.Accounts) < n {
		return fmt.Errorf("%w: want %d, got %d", ErrMissingAccount, n, len(call.Accounts))
	}
	return nil
}
