package solana

import "context"

// RPCClient defines the Solana RPC HTTP methods the forge reads.
type RPCClient interface {
	// GetBalance returns an account's lamports; unknown accounts hold zero.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetAccountInfo returns nil when the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetSlot retrieves the current slot.
	GetSlot(ctx context.Context) (int64, error)

	// GetTransaction retrieves a transaction by signature. Returns nil if not found.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)
}

// Transaction represents a Solana transaction.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta contains transaction metadata.
type TransactionMeta struct {
	Err         interface{}
	Fee         uint64
	LogMessages []string
}

// TransactionMessage contains parsed transaction message.
type TransactionMessage struct {
	// AccountKeys lists signers first; index 0 is the fee payer.
	AccountKeys []string
}

// FeePayer returns the first account key or "" when unknown.
func (t *Transaction) FeePayer() string {
	if t == nil || t.Message == nil || len(t.Message.AccountKeys) == 0 {
		return ""
	}
	return t.Message.AccountKeys[0]
}
