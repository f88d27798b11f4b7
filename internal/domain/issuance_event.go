package domain

// Outcome is the result of one issuance attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// EventSource tells where an issuance attempt was observed.
type EventSource string

const (
	// EventSourceSandbox marks units executed by the in-process runtime.
	EventSourceSandbox EventSource = "sandbox"
	// EventSourceChain marks issuances observed in on-chain program logs.
	EventSourceChain EventSource = "chain"
)

// IssuanceEvent is one row of the issuance event log.
type IssuanceEvent struct {
	EventID    string      // deterministic, see idhash.ComputeEventID
	Source     EventSource // sandbox or chain
	Outcome    Outcome
	ErrorKind  string // empty on success
	Payer      string // base58, may be empty for chain events
	Mint       string // base58, may be empty for chain events
	Fee        uint64
	Revoked    RevokeFlags
	Signature  string // chain events only
	Slot       int64  // chain events only
	OccurredAt int64  // unix ms
}
