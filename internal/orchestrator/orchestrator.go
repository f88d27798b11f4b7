// Package orchestrator coordinates issuance units, the disclosure record and
// the journals around them. Each unit's outcome is recorded before a
// successful handle is journaled.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"solana-token-forge/internal/config"
	"solana-token-forge/internal/derive"
	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/governance"
	"solana-token-forge/internal/idhash"
	"solana-token-forge/internal/issuance"
	"solana-token-forge/internal/observability"
	"solana-token-forge/internal/storage"
)

// Executor runs fn as one all-or-nothing unit signed by signers.
type Executor interface {
	Run(ctx context.Context, signers []domain.Address, fn func(context.Context, issuance.Runtime) error) error
}

// Service coordinates issuance and governance.
type Service struct {
	p        config.Protocol
	exec     Executor
	issuer   *issuance.Issuer
	security *governance.Ledger

	issuances storage.IssuanceStore
	events    storage.IssuanceEventStore // optional

	metrics *observability.Metrics // optional
	log     zerolog.Logger
	now     func() time.Time
}

// Options for creating Service.
type Options struct {
	Protocol config.Protocol
	Executor Executor

	// Required stores
	Disclosures storage.DisclosureStore
	Issuances   storage.IssuanceStore

	// Events is the optional issuance event log.
	Events  storage.IssuanceEventStore
	Metrics *observability.Metrics
	Logger  zerolog.Logger
	Clock   func() time.Time
}

// New creates a new Service.
func New(opts Options) (*Service, error) {
	if opts.Executor == nil {
		return nil, errors.New("orchestrator: executor is required")
	}
	if opts.Disclosures == nil || opts.Issuances == nil {
		return nil, errors.New("orchestrator: disclosure and issuance stores are required")
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	issuer, err := issuance.NewIssuer(opts.Protocol, issuance.WithClock(now))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	security, err := governance.NewLedger(opts.Protocol, opts.Disclosures, governance.WithClock(now))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	return &Service{
		p:         opts.Protocol,
		exec:      opts.Executor,
		issuer:    issuer,
		security:  security,
		issuances: opts.Issuances,
		events:    opts.Events,
		metrics:   opts.Metrics,
		log:       opts.Logger.With().Str("component", "orchestrator").Logger(),
		now:       now,
	}, nil
}

// Protocol returns the constants the service was built with.
func (s *Service) Protocol() config.Protocol {
	return s.p
}

// Quote returns the fee for flags.
func (s *Service) Quote(flags domain.RevokeFlags) (uint64, error) {
	return s.issuer.Quote(flags)
}

// Addresses are the derived accounts of one (payer, mint) pair.
type Addresses struct {
	Metadata    domain.Address `json:"metadata"`
	Holding     domain.Address `json:"holding"`
	HoldingBump uint8          `json:"holding_bump"`
	Security    domain.Address `json:"security"`
}

// Derive computes the addresses a client must pass to CreateToken.
func (s *Service) Derive(payer, mint domain.Address) (*Addresses, error) {
	md, err := derive.MetadataAddress(s.p, mint)
	if err != nil {
		return nil, fmt.Errorf("derive metadata: %w", err)
	}
	holding, err := derive.HoldingAddress(s.p, payer, mint)
	if err != nil {
		return nil, fmt.Errorf("derive holding: %w", err)
	}
	return &Addresses{
		Metadata:    md.Address,
		Holding:     holding.Address,
		HoldingBump: holding.Bump,
		Security:    s.security.Address(),
	}, nil
}

// CreateToken runs one issuance unit signed by the payer and the mint key.
// The journal is written only after the unit committed; a journal failure
// is logged and does not undo the issuance.
func (s *Service) CreateToken(ctx context.Context, req issuance.Request) (*domain.AssetHandle, error) {
	started := s.now()

	var handle *domain.AssetHandle
	err := s.exec.Run(ctx, []domain.Address{req.Payer, req.Mint}, func(ctx context.Context, rt issuance.Runtime) error {
		h, err := s.issuer.Issue(ctx, rt, req)
		if err != nil {
			return err
		}
		handle = h
		return nil
	})

	kind := issuance.Kind(err)
	var fee uint64
	if err == nil {
		fee = handle.Fee
	}
	if s.metrics != nil {
		s.metrics.RecordIssuance(string(kind), fee, req.Revoke, s.now().Sub(started))
	}
	s.recordEvent(ctx, req, kind, fee)

	logEvent := s.log.Info()
	if err != nil {
		logEvent = s.log.Warn().Err(err)
	}
	logEvent.
		Stringer("payer", req.Payer).
		Stringer("mint", req.Mint).
		Uint64("fee", fee).
		Bool("revoke_mint", req.Revoke.Mint).
		Bool("revoke_freeze", req.Revoke.Freeze).
		Bool("revoke_update", req.Revoke.Update).
		Str("kind", string(kind)).
		Msg("issuance unit finished")

	if err != nil {
		return nil, err
	}

	if jerr := s.issuances.Insert(ctx, handle); jerr != nil {
		s.log.Error().Err(jerr).Str("issuance_id", handle.IssuanceID).Msg("journal issuance")
	}
	return handle, nil
}

func (s *Service) recordEvent(ctx context.Context, req issuance.Request, kind issuance.ErrorKind, fee uint64) {
	if s.events == nil {
		return
	}

	outcome := domain.OutcomeSuccess
	if kind != issuance.KindNone {
		outcome = domain.OutcomeFailure
	}
	occurredAt := s.now().UnixMilli()
	payer, mint := req.Payer.String(), req.Mint.String()

	e := &domain.IssuanceEvent{
		EventID:    idhash.ComputeEventID(domain.EventSourceSandbox, "", payer, mint, outcome, occurredAt),
		Source:     domain.EventSourceSandbox,
		Outcome:    outcome,
		ErrorKind:  string(kind),
		Payer:      payer,
		Mint:       mint,
		Fee:        fee,
		Revoked:    req.Revoke,
		OccurredAt: occurredAt,
	}
	// Same payer, mint and millisecond collapse into one row.
	if err := s.events.Insert(ctx, e); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		s.log.Error().Err(err).Str("event_id", e.EventID).Msg("record issuance event")
	}
}

// Issuance returns the journaled issuance of mint.
func (s *Service) Issuance(ctx context.Context, mint domain.Address) (*domain.AssetHandle, error) {
	return s.issuances.GetByMint(ctx, mint)
}

// IssuancesByPayer returns every journaled issuance funded by payer.
func (s *Service) IssuancesByPayer(ctx context.Context, payer domain.Address) ([]*domain.AssetHandle, error) {
	return s.issuances.ListByPayer(ctx, payer)
}

// EventCounts counts logged attempts by outcome in [start, end] unix ms.
func (s *Service) EventCounts(ctx context.Context, start, end int64) (map[domain.Outcome]int64, error) {
	if s.events == nil {
		return map[domain.Outcome]int64{}, nil
	}
	return s.events.CountByOutcome(ctx, start, end)
}
