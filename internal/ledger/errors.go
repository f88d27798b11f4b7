package ledger

import "errors"

var (
	ErrUnknownProgram       = errors.New("unknown program")
	ErrMissingAccount       = errors.New("call is missing a required account")
	ErrMissingSigner        = errors.New("required signature missing")
	ErrAccountAlreadyInUse  = errors.New("account already in use")
	ErrInsufficientLamports = errors.New("insufficient lamports")
	ErrInvalidAccountOwner  = errors.New("account has the wrong owner")
	ErrAlreadyInitialized   = errors.New("account already initialized")
	ErrUninitialized        = errors.New("account not initialized")
	ErrNotRentExempt        = errors.New("account is not rent exempt")
	ErrMintMismatch         = errors.New("holding account belongs to another mint")
	ErrAuthorityMismatch    = errors.New("signer does not hold the authority")
	ErrAuthorityRevoked     = errors.New("authority has been revoked")
	ErrImmutable            = errors.New("metadata record is immutable")
	ErrInvalidMetadata      = errors.New("metadata exceeds registry limits")
	ErrInvalidSeeds         = errors.New("signer seeds do not derive the account")
	ErrArithmeticOverflow   = errors.New("arithmetic overflow")
)
