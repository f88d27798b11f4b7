// Package instruction builds immutable descriptions of calls into external
// programs. Builders return values; nothing here talks to a ledger.
package instruction

import (
	"github.com/blocto/solana-go-sdk/types"

	"solana-token-forge/internal/domain"
)

// AccountMeta is one account referenced by a call.
type AccountMeta struct {
	Address    domain.Address
	IsSigner   bool
	IsWritable bool
}

// Call is a cross-program invocation: target program, accounts, payload.
type Call struct {
	Op       Op
	Program  domain.Address
	Accounts []AccountMeta
	Data     []byte
	// SignerSeeds are set when the issuing program signs for a derived
	// address in this call. Empty for plain invocations.
	SignerSeeds [][]byte
}

// Account returns the address at index i, or the zero address when absent.
func (c Call) Account(i int) domain.Address {
	if i < 0 || i >= len(c.Accounts) {
		return domain.Address{}
	}
	return c.Accounts[i].Address
}

// Op names the operation a call performs, for logs and metrics.
type Op string

const (
	OpTransfer           Op = "system.transfer"
	OpCreateAccount      Op = "system.create_account"
	OpInitializeMint     Op = "token.initialize_mint"
	OpInitializeAccount  Op = "token.initialize_account"
	OpMintTo             Op = "token.mint_to"
	OpSetAuthority       Op = "token.set_authority"
	OpCreateMetadata     Op = "metadata.create"
	OpUpdateMetadataAuth Op = "metadata.update_authority"
)

func fromSDK(op Op, program domain.Address, ix types.Instruction) Call {
	accounts := make([]AccountMeta, len(ix.Accounts))
	for i, a := range ix.Accounts {
		accounts[i] = AccountMeta{
			Address:    domain.Address(a.PubKey),
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		}
	}
	data := make([]byte, len(ix.Data))
	copy(data, ix.Data)

	return Call{
		Op:       op,
		Program:  program,
		Accounts: accounts,
		Data:     data,
	}
}
