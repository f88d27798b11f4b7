// Package fee computes the issuance fee from the revocation flags.
package fee

import (
	"errors"
	"fmt"

	"solana-token-forge/internal/config"
	"solana-token-forge/internal/domain"
)

// DiscountWhenRevoked fixes the discount direction: a flag that requests
// revocation earns one discount. A fully locked-down asset is the cheapest.
const DiscountWhenRevoked = true

// ErrInvalidFeeCalculation is returned when the discounts exceed the base fee.
var ErrInvalidFeeCalculation = errors.New("invalid fee calculation")

// Schedule is the fee schedule of one protocol configuration.
type Schedule struct {
	base     uint64
	discount uint64
}

// NewSchedule builds a schedule from protocol constants.
func NewSchedule(p config.Protocol) Schedule {
	return Schedule{base: p.BaseFee, discount: p.RevokeDiscount}
}

// Base returns the undiscounted fee.
func (s Schedule) Base() uint64 {
	return s.base
}

// Discount returns the per-capability discount.
func (s Schedule) Discount() uint64 {
	return s.discount
}

// Compute returns the fee in lamports for the given flags.
// Subtraction is checked; an underflow is an error, never clamped to zero.
func (s Schedule) Compute(flags domain.RevokeFlags) (uint64, error) {
	fee := s.base
	for _, discounted := range discountedFlags(flags) {
		if !discounted {
			continue
		}
		if fee < s.discount {
			return 0, fmt.Errorf("%w: discount %d exceeds remaining fee %d", ErrInvalidFeeCalculation, s.discount, fee)
		}
		fee -= s.discount
	}
	return fee, nil
}

func discountedFlags(flags domain.RevokeFlags) [3]bool {
	set := [3]bool{flags.Mint, flags.Freeze, flags.Update}
	if !DiscountWhenRevoked {
		for i := range set {
			set[i] = !set[i]
		}
	}
	return set
}
