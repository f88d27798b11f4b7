package ledger

import (
	"fmt"

	"solana-token-forge/internal/derive"
	"solana-token-forge/internal/instruction"
)

// Registry limits, in bytes.
const (
	metadataAccountSize = 679
	maxNameLength       = 32
	maxSymbolLength     = 10
	maxURILength        = 200
)

func (u *Unit) executeMetadata(call instruction.Call) error {
	in, err := instruction.DecodeMetadata(call.Data)
	if err != nil {
		return err
	}

	switch in.Kind {
	case instruction.MetadataCreateV3:
		return u.createMetadata(call, in)
	case instruction.MetadataUpdateV2:
		return u.updateMetadata(call, in)
	default:
		return fmt.Errorf("%w: metadata instruction %d", instruction.ErrInvalidInstructionData, in.Kind)
	}
}

// createMetadata accounts: [metadata (writable), mint, mint authority (signer),
// payer (signer, writable), update authority, system program, rent sysvar]
func (u *Unit) createMetadata(call instruction.Call, in instruction.MetadataInstruction) error {
	if err := requireAccounts(call, 5); err != nil {
		return err
	}
	if len(in.Name) > maxNameLength || len(in.Symbol) > maxSymbolLength || len(in.URI) > maxURILength {
		return ErrInvalidMetadata
	}

	mintAddr := call.Account(1)
	expected, err := derive.MetadataAddress(u.l.p, mintAddr)
	if err != nil {
		return err
	}
	if expected.Address != call.Account(0) {
		return fmt.Errorf("%w: metadata %s is not derived from mint %s", ErrInvalidSeeds, call.Account(0), mintAddr)
	}

	mint, err := u.mint(mintAddr)
	if err != nil {
		return err
	}
	if err := checkAuthority(mint.Mint.MintAuthority, call.Account(2)); err != nil {
		return err
	}

	record, _ := u.load(call.Account(0))
	if record.inUse() {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyInUse, record.Address)
	}

	payer, _ := u.load(call.Account(3))
	rent := instruction.RentExempt(metadataAccountSize)
	if err := debit(&payer, rent); err != nil {
		return err
	}
	u.store(payer)

	record.Lamports = rent
	record.Space = metadataAccountSize
	record.Owner = u.l.p.MetadataProgram
	record.Metadata = &MetadataState{
		Mint:            mintAddr,
		UpdateAuthority: call.Account(4),
		Name:            in.Name,
		Symbol:          in.Symbol,
		URI:             in.URI,
		IsMutable:       in.IsMutable,
	}
	u.store(record)
	return nil
}

// updateMetadata accounts: [metadata (writable), update authority (signer)]
//
// An immutable record rejects new data but still allows its update
// authority to be reassigned.
func (u *Unit) updateMetadata(call instruction.Call, in instruction.MetadataInstruction) error {
	if err := requireAccounts(call, 2); err != nil {
		return err
	}
	record, ok := u.load(call.Account(0))
	if !ok || record.Metadata == nil {
		return fmt.Errorf("%w: metadata %s", ErrUninitialized, call.Account(0))
	}
	md := record.Metadata
	if md.UpdateAuthority != call.Account(1) {
		return fmt.Errorf("%w: %s", ErrAuthorityMismatch, call.Account(1))
	}

	if in.DataChanged {
		if !md.IsMutable {
			return ErrImmutable
		}
		if len(in.Name) > maxNameLength || len(in.Symbol) > maxSymbolLength || len(in.URI) > maxURILength {
			return ErrInvalidMetadata
		}
		md.Name, md.Symbol, md.URI = in.Name, in.Symbol, in.URI
	}
	if in.NewIsMutable != nil {
		if *in.NewIsMutable && !md.IsMutable {
			return ErrImmutable
		}
		md.IsMutable = *in.NewIsMutable
	}
	if in.NewUpdateAuthority != nil {
		md.UpdateAuthority = *in.NewUpdateAuthority
	}

	u.store(record)
	return nil
}
