package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

var _ RPCClient = (*HTTPClient)(nil)

// LatencyObserver receives the wall time of every RPC method call,
// retries included.
type LatencyObserver interface {
	RecordRPCLatency(method string, elapsed time.Duration)
}

// HTTPClient implements RPCClient over HTTP JSON-RPC 2.0.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	observer    LatencyObserver
	requestID   atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) { c.client.Timeout = d }
}

// WithMaxRetries sets how many times a transport failure is retried.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) { c.maxRetries = n }
}

// WithRetryDelay sets the first backoff delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) { c.retryDelay = d }
}

// WithMaxDelay caps the backoff delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) { c.maxDelay = d }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) { c.client = client }
}

// WithLatencyObserver reports call latency, typically to observability.Metrics.
func WithLatencyObserver(o LatencyObserver) ClientOption {
	return func(c *HTTPClient) { c.observer = o }
}

// NewHTTPClient creates a client for the JSON-RPC endpoint.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError is an error object returned by the node. It is final, never retried.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// errRetryable marks transport failures worth another attempt.
var errRetryable = errors.New("retryable")

// call performs method with exponential backoff between failed attempts.
func (c *HTTPClient) call(ctx context.Context, method string, params []any, result any) error {
	if c.observer != nil {
		defer func(start time.Time) { c.observer.RecordRPCLatency(method, time.Since(start)) }(time.Now())
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	delay := c.retryDelay
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			delay = min(time.Duration(float64(delay)*c.backoffMult), c.maxDelay)
		}

		raw, err := c.post(ctx, body)
		if err == nil {
			return decodeResult(method, raw, result)
		}
		if !errors.Is(err, errRetryable) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%s: max retries exceeded: %w", method, lastErr)
}

// post sends one attempt and returns the raw result. Transport failures,
// throttling and non-200 statuses wrap errRetryable.
func (c *HTTPClient) post(ctx context.Context, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: http request: %v", errRetryable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", errRetryable, err)
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: rate limited", errRetryable)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d: %s", errRetryable, resp.StatusCode, data)
	}

	var out rpcResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", errRetryable, err)
	}
	if out.Error != nil {
		return nil, out.Error
	}
	return out.Result, nil
}

func decodeResult(method string, raw json.RawMessage, result any) error {
	if result == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("unmarshal %s result: %w", method, err)
	}
	return nil
}

type commitmentConfig struct {
	Commitment string `json:"commitment,omitempty"`
	Encoding   string `json:"encoding,omitempty"`
	// Only set for getTransaction.
	MaxSupportedTransactionVersion *int `json:"maxSupportedTransactionVersion,omitempty"`
}

// GetTransaction fetches a confirmed transaction by signature.
func (c *HTTPClient) GetTransaction(ctx context.Context, signature string) (*Transaction, error) {
	version := 0
	cfg := commitmentConfig{
		Commitment:                     CommitmentConfirmed,
		Encoding:                       "json",
		MaxSupportedTransactionVersion: &version,
	}

	var raw *txResult
	if err := c.call(ctx, "getTransaction", []any{signature, cfg}, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	tx := &Transaction{Slot: raw.Slot, Signature: signature}
	if raw.BlockTime != nil {
		tx.BlockTime = *raw.BlockTime
	}
	if raw.Meta != nil {
		tx.Meta = &TransactionMeta{Err: raw.Meta.Err, Fee: raw.Meta.Fee, LogMessages: raw.Meta.LogMessages}
	}
	if raw.Transaction.Message.AccountKeys != nil {
		tx.Message = &TransactionMessage{AccountKeys: raw.Transaction.Message.AccountKeys}
	}
	return tx, nil
}

type txResult struct {
	Slot      int64  `json:"slot"`
	BlockTime *int64 `json:"blockTime"`
	Meta      *struct {
		Err         interface{} `json:"err"`
		Fee         uint64      `json:"fee"`
		LogMessages []string    `json:"logMessages"`
	} `json:"meta"`
	Transaction struct {
		Message struct {
			AccountKeys []string `json:"accountKeys"`
		} `json:"message"`
	} `json:"transaction"`
}

// AccountInfo is an account as reported by getAccountInfo.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// GetAccountInfo fetches an account with base64 data. Returns nil when the
// account does not exist.
func (c *HTTPClient) GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error) {
	var raw struct {
		Value *struct {
			Lamports   uint64   `json:"lamports"`
			Owner      string   `json:"owner"`
			Data       []string `json:"data"` // [payload, encoding]
			Executable bool     `json:"executable"`
			RentEpoch  uint64   `json:"rentEpoch"`
		} `json:"value"`
	}
	cfg := commitmentConfig{Commitment: CommitmentConfirmed, Encoding: "base64"}
	if err := c.call(ctx, "getAccountInfo", []any{pubkey, cfg}, &raw); err != nil {
		return nil, err
	}
	if raw.Value == nil {
		return nil, nil
	}

	info := &AccountInfo{
		Lamports:   raw.Value.Lamports,
		Owner:      raw.Value.Owner,
		Executable: raw.Value.Executable,
		RentEpoch:  raw.Value.RentEpoch,
	}
	if len(raw.Value.Data) > 0 {
		info.Data = raw.Value.Data[0]
	}
	return info, nil
}

// GetSlot returns the current slot.
func (c *HTTPClient) GetSlot(ctx context.Context) (int64, error) {
	var slot int64
	if err := c.call(ctx, "getSlot", nil, &slot); err != nil {
		return 0, err
	}
	return slot, nil
}

// GetBalance returns the lamports held by pubkey.
func (c *HTTPClient) GetBalance(ctx context.Context, pubkey string) (uint64, error) {
	var raw struct {
		Value uint64 `json:"value"`
	}
	cfg := commitmentConfig{Commitment: CommitmentConfirmed}
	if err := c.call(ctx, "getBalance", []any{pubkey, cfg}, &raw); err != nil {
		return 0, err
	}
	return raw.Value, nil
}
