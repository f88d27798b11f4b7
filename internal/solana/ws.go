package solana

import "context"

// WSClient defines the Solana WebSocket subscription interface.
type WSClient interface {
	// SubscribeLogs subscribes to program logs matching the filter.
	SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error)

	// Close closes the WebSocket connection and every subscription channel.
	Close() error
}

// Commitment levels accepted by logsSubscribe.
const (
	CommitmentProcessed = "processed"
	CommitmentConfirmed = "confirmed"
	CommitmentFinalized = "finalized"
)

// LogsFilter defines subscription filter for logs.
type LogsFilter struct {
	// Mentions filters logs that mention any of these program IDs.
	// Empty subscribes to all transactions.
	Mentions []string
	// Commitment defaults to confirmed.
	Commitment string
}

// LogNotification represents a logs subscription message.
type LogNotification struct {
	Signature string
	Slot      int64
	Logs      []string
	Err       interface{} // nil when the transaction succeeded
}

func (f LogsFilter) params() []interface{} {
	mentions := make(map[string]interface{})
	if len(f.Mentions) > 0 {
		mentions["mentions"] = f.Mentions
	} else {
		mentions["all"] = nil
	}
	commitment := f.Commitment
	if commitment == "" {
		commitment = CommitmentConfirmed
	}
	return []interface{}{mentions, map[string]string{"commitment": commitment}}
}
