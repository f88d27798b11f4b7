// Package config holds the protocol constants and the service configuration.
package config

import (
	"fmt"

	"solana-token-forge/internal/domain"
)

// Publicly known protocol constants. Clients reproduce fees and derived
// addresses from these values before submitting an issuance.
const (
	DefaultBaseFee        uint64 = 10_000_000 // 0.01 SOL
	DefaultRevokeDiscount uint64 = 2_000_000  // per revoked capability

	DefaultProgramID         = "AkugdJHDjDvBaxUGC6pjyrfqEpDfJ4Z9Ji9NED6Lmddg"
	DefaultTreasury          = "6oKdNekVDKYPeBLeCs33DttaMaVwzxeHJBfroPZeWwGk"
	DefaultMetadataProgramID = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	DefaultTokenProgramID    = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	DefaultSystemProgramID   = "11111111111111111111111111111111"

	HoldingSeed    = "token-account"
	MetadataSeed   = "metadata"
	GovernanceSeed = "program-security"

	LamportsPerSOL uint64 = 1_000_000_000
)

// Protocol is the immutable set of values an issuance unit depends on.
// It is passed by value into every component that needs it.
type Protocol struct {
	BaseFee         uint64
	RevokeDiscount  uint64
	ProgramID       domain.Address // the issuing program; owns holding and governance addresses
	Treasury        domain.Address
	MetadataProgram domain.Address
	TokenProgram    domain.Address
	SystemProgram   domain.Address
	HoldingSeed     string
	MetadataSeed    string
	GovernanceSeed  string
}

// DefaultProtocol returns the production constants.
func DefaultProtocol() Protocol {
	return Protocol{
		BaseFee:         DefaultBaseFee,
		RevokeDiscount:  DefaultRevokeDiscount,
		ProgramID:       domain.MustParseAddress(DefaultProgramID),
		Treasury:        domain.MustParseAddress(DefaultTreasury),
		MetadataProgram: domain.MustParseAddress(DefaultMetadataProgramID),
		TokenProgram:    domain.MustParseAddress(DefaultTokenProgramID),
		SystemProgram:   domain.MustParseAddress(DefaultSystemProgramID),
		HoldingSeed:     HoldingSeed,
		MetadataSeed:    MetadataSeed,
		GovernanceSeed:  GovernanceSeed,
	}
}

// WithTreasury returns a copy of p paying fees to treasury.
func (p Protocol) WithTreasury(treasury domain.Address) Protocol {
	p.Treasury = treasury
	return p
}

// WithFees returns a copy of p with a different fee schedule.
func (p Protocol) WithFees(base, discount uint64) Protocol {
	p.BaseFee = base
	p.RevokeDiscount = discount
	return p
}

// Validate checks that the protocol values are usable.
func (p Protocol) Validate() error {
	if p.BaseFee == 0 {
		return fmt.Errorf("protocol: base fee must be positive")
	}
	if p.ProgramID.IsZero() {
		return fmt.Errorf("protocol: program id is required")
	}
	if p.Treasury.IsZero() {
		return fmt.Errorf("protocol: treasury is required")
	}
	if p.MetadataProgram.IsZero() || p.TokenProgram.IsZero() {
		return fmt.Errorf("protocol: metadata and token program ids are required")
	}
	if p.HoldingSeed == "" || p.MetadataSeed == "" || p.GovernanceSeed == "" {
		return fmt.Errorf("protocol: seed tags must not be empty")
	}
	return nil
}
