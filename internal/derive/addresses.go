package derive

import (
	"solana-token-forge/internal/config"
	"solana-token-forge/internal/domain"
)

// Derived is a program-derived address with the seeds that produced it.
type Derived struct {
	Address domain.Address
	Bump    uint8
	Seeds   [][]byte // without the bump
	Program domain.Address
}

// SignerSeeds returns the seeds with the bump appended.
func (d Derived) SignerSeeds() [][]byte {
	return SignerSeeds(d.Seeds, d.Bump)
}

func find(program domain.Address, seeds ...[]byte) (Derived, error) {
	addr, bump, err := FindProgramAddress(seeds, program)
	if err != nil {
		return Derived{}, err
	}
	return Derived{Address: addr, Bump: bump, Seeds: seeds, Program: program}, nil
}

// HoldingAddress derives the account that custodies the issuer's initial
// balance: [holding tag, payer, mint] under the issuing program.
func HoldingAddress(p config.Protocol, payer, mint domain.Address) (Derived, error) {
	return find(p.ProgramID, []byte(p.HoldingSeed), payer.Bytes(), mint.Bytes())
}

// MetadataAddress derives the metadata record of mint:
// [metadata tag, metadata program, mint] under the metadata program.
func MetadataAddress(p config.Protocol, mint domain.Address) (Derived, error) {
	return find(p.MetadataProgram, []byte(p.MetadataSeed), p.MetadataProgram.Bytes(), mint.Bytes())
}

// GovernanceAddress derives the well-known disclosure record address.
func GovernanceAddress(p config.Protocol) (Derived, error) {
	return find(p.ProgramID, []byte(p.GovernanceSeed))
}
