// Package derive computes program-derived addresses: deterministic account
// keys that lie off the ed25519 curve, so only the owning program can sign for them.
package derive

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"

	"solana-token-forge/internal/domain"
)

const (
	// MaxSeeds is the most seeds one derivation accepts, bump included.
	MaxSeeds = 16
	// MaxSeedLength is the longest single seed in bytes.
	MaxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	// ErrMaxSeedLength is returned for too many or too long seeds.
	ErrMaxSeedLength = errors.New("seed length exceeds limit")
	// ErrOnCurve is returned when a candidate hash is a valid curve point.
	ErrOnCurve = errors.New("derived address is on the ed25519 curve")
	// ErrNoViableBump is returned when every bump from 255 down to 1 lands on the curve.
	ErrNoViableBump = errors.New("no viable bump seed")
)

// CreateProgramAddress hashes seeds and programID into an address. The seeds
// must already include the bump. Returns ErrOnCurve if the result is a curve point.
func CreateProgramAddress(seeds [][]byte, programID domain.Address) (domain.Address, error) {
	if len(seeds) > MaxSeeds {
		return domain.Address{}, fmt.Errorf("%w: %d seeds", ErrMaxSeedLength, len(seeds))
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return domain.Address{}, fmt.Errorf("%w: seed of %d bytes", ErrMaxSeedLength, len(seed))
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var addr domain.Address
	copy(addr[:], h.Sum(nil))

	if isOnCurve(addr[:]) {
		return domain.Address{}, ErrOnCurve
	}
	return addr, nil
}

// FindProgramAddress searches bumps from 255 down to 1 and returns the first
// off-curve address together with its bump.
func FindProgramAddress(seeds [][]byte, programID domain.Address) (domain.Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return domain.Address{}, 0, fmt.Errorf("%w: %d seeds leave no room for the bump", ErrMaxSeedLength, len(seeds))
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return domain.Address{}, 0, err
		}
	}

	return domain.Address{}, 0, ErrNoViableBump
}

// SignerSeeds returns seeds with the bump appended, as used when the owning
// program signs for the derived address.
func SignerSeeds(seeds [][]byte, bump uint8) [][]byte {
	out := make([][]byte, 0, len(seeds)+1)
	out = append(out, seeds...)
	return append(out, []byte{bump})
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
