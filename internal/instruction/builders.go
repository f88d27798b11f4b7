package instruction

import (
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"

	"solana-token-forge/internal/config"
	"solana-token-forge/internal/domain"
)

// Account sizes of the asset-ledger program's records.
const (
	MintAccountSize    = token.MintAccountSize
	HoldingAccountSize = token.TokenAccountSize
)

// Rent exemption parameters of the ledger: lamports per byte-year, two years
// of prepaid rent, 128 bytes of per-account overhead.
const (
	lamportsPerByteYear    = 3480
	exemptionYears         = 2
	accountStorageOverhead = 128
)

// RentExempt returns the minimum balance that keeps an account of size bytes alive.
func RentExempt(size uint64) uint64 {
	return (accountStorageOverhead + size) * lamportsPerByteYear * exemptionYears
}

// Builder constructs calls addressed to the programs of one protocol configuration.
type Builder struct {
	p config.Protocol
}

// NewBuilder returns a Builder for p.
func NewBuilder(p config.Protocol) Builder {
	return Builder{p: p}
}

// Transfer moves lamports between system accounts.
func (b Builder) Transfer(from, to domain.Address, lamports uint64) Call {
	ix := system.Transfer(system.TransferParam{
		From:   common.PublicKey(from),
		To:     common.PublicKey(to),
		Amount: lamports,
	})
	return fromSDK(OpTransfer, b.p.SystemProgram, ix)
}

// CreateAccount allocates a new account of space bytes owned by owner.
// signerSeeds is non-nil when newAccount is a derived address of the issuing program.
func (b Builder) CreateAccount(payer, newAccount, owner domain.Address, space uint64, signerSeeds [][]byte) Call {
	ix := system.CreateAccount(system.CreateAccountParam{
		From:     common.PublicKey(payer),
		New:      common.PublicKey(newAccount),
		Owner:    common.PublicKey(owner),
		Lamports: RentExempt(space),
		Space:    space,
	})
	call := fromSDK(OpCreateAccount, b.p.SystemProgram, ix)
	call.SignerSeeds = signerSeeds
	return call
}

// InitializeMint turns an allocated account into an asset record with
// mint and freeze capabilities held by authority.
func (b Builder) InitializeMint(mint, authority domain.Address, decimals uint8) Call {
	freeze := common.PublicKey(authority)
	ix := token.InitializeMint(token.InitializeMintParam{
		Decimals:   decimals,
		Mint:       common.PublicKey(mint),
		MintAuth:   common.PublicKey(authority),
		FreezeAuth: &freeze,
	})
	return fromSDK(OpInitializeMint, b.p.TokenProgram, ix)
}

// InitializeAccount turns an allocated account into a balance holder for mint.
func (b Builder) InitializeAccount(account, mint, owner domain.Address) Call {
	ix := token.InitializeAccount(token.InitializeAccountParam{
		Account: common.PublicKey(account),
		Mint:    common.PublicKey(mint),
		Owner:   common.PublicKey(owner),
	})
	return fromSDK(OpInitializeAccount, b.p.TokenProgram, ix)
}

// MintTo mints amount base units of mint into account.
func (b Builder) MintTo(mint, account, authority domain.Address, amount uint64) Call {
	ix := token.MintTo(token.MintToParam{
		Mint:   common.PublicKey(mint),
		To:     common.PublicKey(account),
		Auth:   common.PublicKey(authority),
		Amount: amount,
	})
	return fromSDK(OpMintTo, b.p.TokenProgram, ix)
}

// RevokeMintAuthority hands the mint capability to nobody.
func (b Builder) RevokeMintAuthority(mint, current domain.Address) Call {
	return b.clearAuthority(mint, current, token.AuthorityTypeMintTokens)
}

// RevokeFreezeAuthority hands the freeze capability to nobody.
func (b Builder) RevokeFreezeAuthority(mint, current domain.Address) Call {
	return b.clearAuthority(mint, current, token.AuthorityTypeFreezeAccount)
}

func (b Builder) clearAuthority(mint, current domain.Address, kind token.AuthorityType) Call {
	ix := token.SetAuthority(token.SetAuthorityParam{
		Account:  common.PublicKey(mint),
		NewAuth:  nil,
		AuthType: kind,
		Auth:     common.PublicKey(current),
	})
	return fromSDK(OpSetAuthority, b.p.TokenProgram, ix)
}

// MetadataParams describes a new metadata record.
type MetadataParams struct {
	Metadata        domain.Address
	Mint            domain.Address
	MintAuthority   domain.Address
	Payer           domain.Address
	UpdateAuthority domain.Address
	Name            string
	Symbol          string
	URI             string
	IsMutable       bool
}

// CreateMetadata creates the descriptive record of an asset in the registry.
func (b Builder) CreateMetadata(mp MetadataParams) Call {
	ix := token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
		Metadata:                common.PublicKey(mp.Metadata),
		Mint:                    common.PublicKey(mp.Mint),
		MintAuthority:           common.PublicKey(mp.MintAuthority),
		Payer:                   common.PublicKey(mp.Payer),
		UpdateAuthority:         common.PublicKey(mp.UpdateAuthority),
		UpdateAuthorityIsSigner: true,
		IsMutable:               mp.IsMutable,
		Data: token_metadata.DataV2{
			Name:                 mp.Name,
			Symbol:               mp.Symbol,
			Uri:                  mp.URI,
			SellerFeeBasisPoints: 0,
		},
	})
	return fromSDK(OpCreateMetadata, b.p.MetadataProgram, ix)
}

// RevokeUpdateAuthority reassigns the metadata update authority to the null sentinel.
func (b Builder) RevokeUpdateAuthority(metadata, current domain.Address) Call {
	sentinel := common.PublicKey(domain.ZeroAddress)
	ix := token_metadata.UpdateMetadataAccountV2(token_metadata.UpdateMetadataAccountV2Param{
		MetadataAccount:    common.PublicKey(metadata),
		UpdateAuthority:    common.PublicKey(current),
		NewUpdateAuthority: &sentinel,
	})
	return fromSDK(OpUpdateMetadataAuth, b.p.MetadataProgram, ix)
}
