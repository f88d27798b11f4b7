// Package stub provides an in-memory solana.RPCClient for tests and offline runs.
package stub

import (
	"context"
	"sync"

	"solana-token-forge/internal/solana"
)

// RPCClient implements solana.RPCClient over maps.
type RPCClient struct {
	mu           sync.RWMutex
	Balances     map[string]uint64
	Accounts     map[string]*solana.AccountInfo
	Transactions map[string]*solana.Transaction
	Slot         int64
	// Err, when set, is returned by every call.
	Err error
}

var _ solana.RPCClient = (*RPCClient)(nil)

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Balances:     make(map[string]uint64),
		Accounts:     make(map[string]*solana.AccountInfo),
		Transactions: make(map[string]*solana.Transaction),
	}
}

// GetBalance returns zero for unknown accounts, matching the node.
func (c *RPCClient) GetBalance(_ context.Context, pubkey string) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Err != nil {
		return 0, c.Err
	}
	return c.Balances[pubkey], nil
}

// GetAccountInfo returns nil for unknown accounts.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Accounts[pubkey], nil
}

// GetSlot returns the configured slot.
func (c *RPCClient) GetSlot(context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Err != nil {
		return 0, c.Err
	}
	return c.Slot, nil
}

// GetTransaction returns nil for unknown signatures.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Transactions[signature], nil
}

// AddTransaction adds a transaction to the stub store.
func (c *RPCClient) AddTransaction(tx *solana.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Transactions[tx.Signature] = tx
}

// SetBalance records lamports for pubkey.
func (c *RPCClient) SetBalance(pubkey string, lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Balances[pubkey] = lamports
}

// SetAccount records account info for pubkey.
func (c *RPCClient) SetAccount(pubkey string, info *solana.AccountInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[pubkey] = info
}
