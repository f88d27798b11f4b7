package domain

import "errors"

var (
	// ErrInvalidAddress is returned when a key is not 32 bytes of base58.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrAlreadyRevoked is returned when a revoked capability is revoked again.
	ErrAlreadyRevoked = errors.New("capability already revoked")
)
