package ledger

import (
	"fmt"

	"solana-token-forge/internal/instruction"
)

func (u *Unit) executeSystem(call instruction.Call) error {
	in, err := instruction.DecodeSystem(call.Data)
	if err != nil {
		return err
	}

	switch in.Kind {
	case instruction.SystemTransfer:
		return u.transfer(call, in)
	case instruction.SystemCreateAccount:
		return u.createAccount(call, in)
	default:
		return fmt.Errorf("%w: system instruction %d", instruction.ErrInvalidInstructionData, in.Kind)
	}
}

// transfer accounts: [from (signer, writable), to (writable)]
func (u *Unit) transfer(call instruction.Call, in instruction.SystemInstruction) error {
	if err := requireAccounts(call, 2); err != nil {
		return err
	}
	from, _ := u.load(call.Account(0))
	if from.Owner != u.l.p.SystemProgram || from.initialized() {
		return fmt.Errorf("%w: transfer source %s", ErrInvalidAccountOwner, from.Address)
	}
	if err := debit(&from, in.Lamports); err != nil {
		return err
	}
	u.store(from)

	to, _ := u.load(call.Account(1))
	if err := credit(&to, in.Lamports); err != nil {
		return err
	}
	u.store(to)
	return nil
}

// createAccount accounts: [payer (signer, writable), new (signer, writable)]
func (u *Unit) createAccount(call instruction.Call, in instruction.SystemInstruction) error {
	if err := requireAccounts(call, 2); err != nil {
		return err
	}
	target, _ := u.load(call.Account(1))
	if target.inUse() {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyInUse, target.Address)
	}

	payer, _ := u.load(call.Account(0))
	if err := debit(&payer, in.Lamports); err != nil {
		return err
	}
	u.store(payer)

	target.Lamports = in.Lamports
	target.Space = in.Space
	target.Owner = in.Owner
	u.store(target)
	return nil
}
