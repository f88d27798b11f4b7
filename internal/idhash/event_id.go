package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"solana-token-forge/internal/domain"
)

// ComputeEventID computes a deterministic event_id using SHA256.
// Formula: SHA256(source|signature|payer|mint|outcome|occurred_at)
// Chain events are keyed by signature; sandbox events by payer, mint and time.
func ComputeEventID(
	source domain.EventSource,
	signature string,
	payer string,
	mint string,
	outcome domain.Outcome,
	occurredAt int64,
) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s|%d",
		string(source),
		signature,
		payer,
		mint,
		string(outcome),
		occurredAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
