package governance

import "errors"

var (
	ErrAlreadyInitialized = errors.New("disclosure record already initialized")
	ErrNotInitialized     = errors.New("disclosure record not initialized")
	ErrUnauthorizedSigner = errors.New("signer does not have admin privileges")
	ErrContentTooLong     = errors.New("disclosure content too long")
	ErrVersionOverflow    = errors.New("disclosure version overflow")
	ErrInvalidAccountData = errors.New("invalid disclosure account data")
	ErrConcurrentUpdate   = errors.New("disclosure updated concurrently, retries exhausted")
)
