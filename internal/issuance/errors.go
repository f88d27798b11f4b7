package issuance

import (
	"context"
	"errors"

	"solana-token-forge/internal/derive"
	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/fee"
	"solana-token-forge/internal/validation"
)

var (
	// ErrInsufficientFunds is returned when the payer cannot cover the fee.
	ErrInsufficientFunds = errors.New("insufficient funds for issuance fee")
	// ErrTreasuryMismatch is returned when a request names a treasury other than the configured one.
	ErrTreasuryMismatch = errors.New("treasury does not match configured treasury")
	// ErrInvalidMetadataAccount is returned when the supplied metadata address is not the derived one.
	ErrInvalidMetadataAccount = errors.New("metadata account does not match derivation")
	// ErrInvalidHoldingAccount is returned when a supplied holding address is not the derived one.
	ErrInvalidHoldingAccount = errors.New("holding account does not match derivation")
)

// Re-exported so callers need a single import to match issuance failures.
var (
	ErrInvalidTokenName      = validation.ErrInvalidTokenName
	ErrInvalidTokenSymbol    = validation.ErrInvalidTokenSymbol
	ErrInvalidDecimals       = validation.ErrInvalidDecimals
	ErrInvalidUri            = validation.ErrInvalidUri
	ErrInvalidInitialSupply  = validation.ErrInvalidInitialSupply
	ErrInvalidFeeCalculation = fee.ErrInvalidFeeCalculation
	ErrAlreadyRevoked        = domain.ErrAlreadyRevoked
)

// ErrorKind groups failures by how a caller should react to them.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindResource      ErrorKind = "resource"
	KindExternal      ErrorKind = "external"
	KindDerivation    ErrorKind = "derivation"
	KindCanceled      ErrorKind = "canceled"
)

// Kind classifies err. Errors not raised by issuance itself are treated as
// rejections by an external program.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrInvalidTokenName),
		errors.Is(err, ErrInvalidTokenSymbol),
		errors.Is(err, ErrInvalidDecimals),
		errors.Is(err, ErrInvalidUri),
		errors.Is(err, ErrInvalidInitialSupply):
		return KindValidation
	case errors.Is(err, ErrTreasuryMismatch):
		return KindAuthorization
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrInvalidFeeCalculation):
		return KindResource
	case errors.Is(err, ErrInvalidMetadataAccount),
		errors.Is(err, ErrInvalidHoldingAccount),
		errors.Is(err, derive.ErrNoViableBump),
		errors.Is(err, derive.ErrMaxSeedLength):
		return KindDerivation
	default:
		return KindExternal
	}
}
