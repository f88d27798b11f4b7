package ledger

import "solana-token-forge/internal/domain"

// Account is the sandbox view of one ledger account. Exactly one of Mint,
// Holding and Metadata is set once the owning program initializes it.
type Account struct {
	Address  domain.Address `json:"address"`
	Lamports uint64         `json:"lamports"`
	Owner    domain.Address `json:"owner"`
	Space    uint64         `json:"space"`
	Mint     *MintState     `json:"mint,omitempty"`
	Holding  *HoldingState  `json:"holding,omitempty"`
	Metadata *MetadataState `json:"metadata,omitempty"`
}

// MintState is an initialized asset record. Nil authorities are revoked.
type MintState struct {
	Decimals        uint8           `json:"decimals"`
	Supply          uint64          `json:"supply"`
	MintAuthority   *domain.Address `json:"mint_authority"`
	FreezeAuthority *domain.Address `json:"freeze_authority"`
}

// HoldingState is an initialized balance holder.
type HoldingState struct {
	Mint   domain.Address `json:"mint"`
	Owner  domain.Address `json:"owner"`
	Amount uint64         `json:"amount"`
}

// MetadataState is a descriptive record in the metadata registry.
type MetadataState struct {
	Mint            domain.Address `json:"mint"`
	UpdateAuthority domain.Address `json:"update_authority"`
	Name            string         `json:"name"`
	Symbol          string         `json:"symbol"`
	URI             string         `json:"uri"`
	IsMutable       bool           `json:"is_mutable"`
}

func (a Account) initialized() bool {
	return a.Mint != nil || a.Holding != nil || a.Metadata != nil
}

func (a Account) inUse() bool {
	return a.Lamports > 0 || a.Space > 0 || a.initialized()
}

func (a Account) clone() Account {
	out := a
	if a.Mint != nil {
		m := *a.Mint
		m.MintAuthority = cloneAddr(a.Mint.MintAuthority)
		m.FreezeAuthority = cloneAddr(a.Mint.FreezeAuthority)
		out.Mint = &m
	}
	if a.Holding != nil {
		h := *a.Holding
		out.Holding = &h
	}
	if a.Metadata != nil {
		md := *a.Metadata
		out.Metadata = &md
	}
	return out
}

func cloneAddr(a *domain.Address) *domain.Address {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
