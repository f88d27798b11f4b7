// Package idhash computes deterministic identifiers for journal rows.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"solana-token-forge/internal/domain"
)

// ComputeIssuanceID computes a deterministic issuance_id using SHA256.
// Formula: SHA256(payer|mint|holding|program)
// (payer, mint) can be issued at most once, so the id is unique per asset.
func ComputeIssuanceID(payer, mint, holding, program domain.Address) string {
	data := fmt.Sprintf("%s|%s|%s|%s",
		payer,
		mint,
		holding,
		program,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
