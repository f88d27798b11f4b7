package orchestrator

import (
	"errors"

	"solana-token-forge/internal/governance"
	"solana-token-forge/internal/issuance"
	"solana-token-forge/internal/storage"
)

// ErrorKind classifies errors from every operation of the service.
func ErrorKind(err error) issuance.ErrorKind {
	switch {
	case err == nil:
		return issuance.KindNone
	case errors.Is(err, governance.ErrUnauthorizedSigner):
		return issuance.KindAuthorization
	case errors.Is(err, governance.ErrContentTooLong):
		return issuance.KindValidation
	case errors.Is(err, governance.ErrAlreadyInitialized),
		errors.Is(err, governance.ErrNotInitialized),
		errors.Is(err, governance.ErrVersionOverflow),
		errors.Is(err, governance.ErrConcurrentUpdate),
		errors.Is(err, storage.ErrNotFound):
		return issuance.KindResource
	default:
		return issuance.Kind(err)
	}
}
