package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/idhash"
	"solana-token-forge/internal/issuance"
	"solana-token-forge/internal/solana"
	"solana-token-forge/internal/storage"
)

// Program log lines emitted by the issuing program.
const (
	createTokenLog = "Program log: Instruction: CreateToken"
	errorCodeTag   = "Error Code: "
)

// programErrorKinds maps program error codes to kinds.
var programErrorKinds = map[string]issuance.ErrorKind{
	"Unauthorized":       issuance.KindAuthorization,
	"InsufficientFunds":  issuance.KindResource,
	"AlreadyInitialized": issuance.KindResource,
	"ConstraintSeeds":    issuance.KindDerivation,
}

// Watcher records issuances observed in on-chain program logs.
type Watcher struct {
	svc *Service
	ws  solana.WSClient
	rpc solana.RPCClient // optional, resolves the fee payer
}

// NewWatcher creates a Watcher. rpc may be nil.
func (s *Service) NewWatcher(ws solana.WSClient, rpc solana.RPCClient) (*Watcher, error) {
	if s.events == nil {
		return nil, errors.New("watch: an issuance event store is required")
	}
	return &Watcher{svc: s, ws: ws, rpc: rpc}, nil
}

// Run consumes log notifications until ctx is done or the stream closes.
func (w *Watcher) Run(ctx context.Context, commitment string) error {
	ch, err := w.ws.SubscribeLogs(ctx, solana.LogsFilter{
		Mentions:   []string{w.svc.p.ProgramID.String()},
		Commitment: commitment,
	})
	if err != nil {
		return fmt.Errorf("subscribe logs: %w", err)
	}

	log := w.svc.log.With().Str("component", "watch").Logger()
	log.Info().Stringer("program", w.svc.p.ProgramID).Msg("watching program logs")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case notif, ok := <-ch:
			if !ok {
				return nil
			}
			e, err := w.Ingest(ctx, notif)
			if err != nil {
				log.Error().Err(err).Str("signature", notif.Signature).Msg("ingest log notification")
				continue
			}
			if e != nil {
				log.Info().Str("signature", e.Signature).Str("outcome", string(e.Outcome)).Str("kind", e.ErrorKind).Int64("slot", e.Slot).Msg("observed issuance")
			}
		}
	}
}

// Ingest turns one notification into an issuance event. Notifications that
// are not issuances return nil. Redelivered signatures are ignored.
func (w *Watcher) Ingest(ctx context.Context, notif solana.LogNotification) (*domain.IssuanceEvent, error) {
	if !isIssuance(notif.Logs) {
		return nil, nil
	}

	outcome := domain.OutcomeSuccess
	kind := issuance.KindNone
	if notif.Err != nil {
		outcome = domain.OutcomeFailure
		kind = programErrorKind(notif.Logs)
	}

	e := &domain.IssuanceEvent{
		Source:     domain.EventSourceChain,
		Outcome:    outcome,
		ErrorKind:  string(kind),
		Signature:  notif.Signature,
		Slot:       notif.Slot,
		OccurredAt: w.svc.now().UnixMilli(),
	}

	if w.rpc != nil {
		tx, err := w.rpc.GetTransaction(ctx, notif.Signature)
		if err != nil {
			w.svc.log.Debug().Err(err).Str("signature", notif.Signature).Msg("transaction lookup failed")
		} else if tx != nil {
			e.Payer = tx.FeePayer()
			if tx.BlockTime > 0 {
				e.OccurredAt = tx.BlockTime * 1000
			}
		}
	}

	// Keyed by signature alone so redelivery after a reconnect dedupes.
	e.EventID = idhash.ComputeEventID(e.Source, e.Signature, "", "", e.Outcome, 0)

	if w.svc.metrics != nil {
		w.svc.metrics.RecordChainEvent(outcome, notif.Slot)
	}
	if err := w.svc.events.Insert(ctx, e); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

func isIssuance(logs []string) bool {
	for _, line := range logs {
		if line == createTokenLog {
			return true
		}
	}
	return false
}

// programErrorKind reads the error code from an error log line such as
// "Program log: AnchorError ... Error Code: Unauthorized. Error Number: 6000. ...".
func programErrorKind(logs []string) issuance.ErrorKind {
	for _, line := range logs {
		i := strings.Index(line, errorCodeTag)
		if i < 0 {
			continue
		}
		code := line[i+len(errorCodeTag):]
		if j := strings.IndexByte(code, '.'); j >= 0 {
			code = code[:j]
		}
		if kind, ok := programErrorKinds[code]; ok {
			return kind
		}
		return issuance.KindExternal
	}
	return issuance.KindExternal
}
