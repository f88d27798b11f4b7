package ledger

import (
	"fmt"
	"math/bits"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/instruction"
)

func (u *Unit) executeToken(call instruction.Call) error {
	in, err := instruction.DecodeToken(call.Data)
	if err != nil {
		return err
	}

	switch in.Kind {
	case instruction.TokenInitializeMint:
		return u.initializeMint(call, in)
	case instruction.TokenInitializeAccount:
		return u.initializeAccount(call)
	case instruction.TokenMintTo:
		return u.mintTo(call, in)
	case instruction.TokenSetAuthority:
		return u.setAuthority(call, in)
	default:
		return fmt.Errorf("%w: token instruction %d", instruction.ErrInvalidInstructionData, in.Kind)
	}
}

// tokenAccount loads an allocated, not yet initialized account owned by the
// token program with at least size bytes and a rent-exempt balance.
func (u *Unit) tokenAccount(addr domain.Address, size uint64) (Account, error) {
	acct, ok := u.load(addr)
	if !ok || acct.Owner != u.l.p.TokenProgram {
		return acct, fmt.Errorf("%w: %s", ErrInvalidAccountOwner, addr)
	}
	if acct.initialized() {
		return acct, fmt.Errorf("%w: %s", ErrAlreadyInitialized, addr)
	}
	if acct.Space < size || acct.Lamports < instruction.RentExempt(acct.Space) {
		return acct, fmt.Errorf("%w: %s", ErrNotRentExempt, addr)
	}
	return acct, nil
}

func (u *Unit) mint(addr domain.Address) (Account, error) {
	acct, ok := u.load(addr)
	if !ok || acct.Owner != u.l.p.TokenProgram {
		return acct, fmt.Errorf("%w: mint %s", ErrInvalidAccountOwner, addr)
	}
	if acct.Mint == nil {
		return acct, fmt.Errorf("%w: mint %s", ErrUninitialized, addr)
	}
	return acct, nil
}

// initializeMint accounts: [mint (writable), rent sysvar]
func (u *Unit) initializeMint(call instruction.Call, in instruction.TokenInstruction) error {
	if err := requireAccounts(call, 1); err != nil {
		return err
	}
	acct, err := u.tokenAccount(call.Account(0), instruction.MintAccountSize)
	if err != nil {
		return err
	}
	mintAuth := in.MintAuthority
	acct.Mint = &MintState{
		Decimals:        in.Decimals,
		MintAuthority:   &mintAuth,
		FreezeAuthority: cloneAddr(in.FreezeAuthority),
	}
	u.store(acct)
	return nil
}

// initializeAccount accounts: [account (writable), mint, owner, rent sysvar]
func (u *Unit) initializeAccount(call instruction.Call) error {
	if err := requireAccounts(call, 3); err != nil {
		return err
	}
	acct, err := u.tokenAccount(call.Account(0), instruction.HoldingAccountSize)
	if err != nil {
		return err
	}
	if _, err := u.mint(call.Account(1)); err != nil {
		return err
	}
	acct.Holding = &HoldingState{Mint: call.Account(1), Owner: call.Account(2)}
	u.store(acct)
	return nil
}

// mintTo accounts: [mint (writable), destination (writable), authority (signer)]
func (u *Unit) mintTo(call instruction.Call, in instruction.TokenInstruction) error {
	if err := requireAccounts(call, 3); err != nil {
		return err
	}
	mint, err := u.mint(call.Account(0))
	if err != nil {
		return err
	}
	if err := checkAuthority(mint.Mint.MintAuthority, call.Account(2)); err != nil {
		return err
	}

	dest, _ := u.load(call.Account(1))
	if dest.Holding == nil {
		return fmt.Errorf("%w: destination %s", ErrUninitialized, dest.Address)
	}
	if dest.Holding.Mint != mint.Address {
		return ErrMintMismatch
	}

	supply, carry := bits.Add64(mint.Mint.Supply, in.Amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: supply", ErrArithmeticOverflow)
	}
	// Holding amount never exceeds supply, so it cannot overflow either.
	mint.Mint.Supply = supply
	dest.Holding.Amount += in.Amount

	u.store(mint)
	u.store(dest)
	return nil
}

// setAuthority accounts: [mint (writable), current authority (signer)]
func (u *Unit) setAuthority(call instruction.Call, in instruction.TokenInstruction) error {
	if err := requireAccounts(call, 2); err != nil {
		return err
	}
	mint, err := u.mint(call.Account(0))
	if err != nil {
		return err
	}

	var slot **domain.Address
	switch in.AuthorityType {
	case instruction.AuthorityMintTokens:
		slot = &mint.Mint.MintAuthority
	case instruction.AuthorityFreezeAccount:
		slot = &mint.Mint.FreezeAuthority
	default:
		return fmt.Errorf("%w: authority type %d", instruction.ErrInvalidInstructionData, in.AuthorityType)
	}
	if err := checkAuthority(*slot, call.Account(1)); err != nil {
		return err
	}
	*slot = cloneAddr(in.NewAuthority)

	u.store(mint)
	return nil
}

func checkAuthority(current *domain.Address, signer domain.Address) error {
	if current == nil {
		return ErrAuthorityRevoked
	}
	if *current != signer {
		return fmt.Errorf("%w: %s", ErrAuthorityMismatch, signer)
	}
	return nil
}
