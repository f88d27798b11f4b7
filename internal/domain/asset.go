package domain

import "time"

// RevokeFlags selects which capabilities are revoked at issuance.
type RevokeFlags struct {
	Mint   bool `json:"revoke_mint"`
	Freeze bool `json:"revoke_freeze"`
	Update bool `json:"revoke_update"`
}

// Count returns how many capabilities are requested for revocation.
func (f RevokeFlags) Count() int {
	n := 0
	for _, set := range []bool{f.Mint, f.Freeze, f.Update} {
		if set {
			n++
		}
	}
	return n
}

// AllRevokeFlags enumerates the eight flag combinations, none-set first.
func AllRevokeFlags() []RevokeFlags {
	out := make([]RevokeFlags, 0, 8)
	for i := 0; i < 8; i++ {
		out = append(out, RevokeFlags{
			Mint:   i&1 != 0,
			Freeze: i&2 != 0,
			Update: i&4 != 0,
		})
	}
	return out
}

// AssetHandle describes an asset produced by one successful issuance unit.
type AssetHandle struct {
	IssuanceID    string      `json:"issuance_id"`
	Payer         Address     `json:"payer"`
	Mint          Address     `json:"mint"`
	Metadata      Address     `json:"metadata"`
	Holding       Address     `json:"holding"`
	HoldingBump   uint8       `json:"holding_bump"`
	Name          string      `json:"name"`
	Symbol        string      `json:"symbol"`
	URI           string      `json:"uri"`
	Decimals      uint8       `json:"decimals"`
	InitialSupply uint64      `json:"initial_supply"`
	Minted        uint64      `json:"minted"` // base units: InitialSupply * 10^Decimals
	Fee           uint64      `json:"fee"`
	Revoked       RevokeFlags `json:"revoked"`
	Authorities   Authorities `json:"authorities"`
	IssuedAt      time.Time   `json:"issued_at"`
}
