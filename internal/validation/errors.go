package validation

import "errors"

// Input validation errors. Each maps to one malformed issuance parameter.
var (
	ErrInvalidTokenName     = errors.New("invalid token name")
	ErrInvalidTokenSymbol   = errors.New("invalid token symbol")
	ErrInvalidDecimals      = errors.New("invalid decimals")
	ErrInvalidUri           = errors.New("invalid uri")
	ErrInvalidInitialSupply = errors.New("invalid initial supply")
)
