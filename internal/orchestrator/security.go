package orchestrator

import (
	"context"

	"solana-token-forge/internal/domain"
)

// InitializeSecurity creates the disclosure record with caller as admin.
func (s *Service) InitializeSecurity(ctx context.Context, caller domain.Address) (*domain.DisclosureRecord, error) {
	rec, err := s.security.Initialize(ctx, caller)
	s.recordGovernance("initialize", caller, rec, err)
	return rec, err
}

// UpdateSecurity replaces the disclosure text. Only the admin may call it.
func (s *Service) UpdateSecurity(ctx context.Context, caller domain.Address, content string) (*domain.DisclosureRecord, error) {
	rec, err := s.security.Update(ctx, caller, content)
	s.recordGovernance("update", caller, rec, err)
	return rec, err
}

// GetSecurity reads the disclosure record.
func (s *Service) GetSecurity(ctx context.Context) (*domain.DisclosureRecord, error) {
	return s.security.Get(ctx)
}

// SecurityAddress returns the governance address of the disclosure record.
func (s *Service) SecurityAddress() domain.Address {
	return s.security.Address()
}

func (s *Service) recordGovernance(op string, caller domain.Address, rec *domain.DisclosureRecord, err error) {
	var version uint32
	if rec != nil {
		version = rec.Version
	}
	if s.metrics != nil {
		s.metrics.RecordGovernance(op, version, err)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("op", op).Stringer("caller", caller).Str("kind", string(ErrorKind(err))).Msg("disclosure operation rejected")
		return
	}
	s.log.Info().Str("op", op).Stringer("caller", caller).Uint32("version", version).Msg("disclosure written")
}
