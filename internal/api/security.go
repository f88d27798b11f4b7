package api

import (
	"net/http"

	"solana-token-forge/internal/domain"
)

// SecurityRequest is the body of the disclosure write endpoints. Caller is
// trusted as the signer; the sandbox performs no signature verification.
type SecurityRequest struct {
	Caller  domain.Address `json:"caller"`
	Content string         `json:"content,omitempty"`
}

func (s *Server) handleInitSecurity(w http.ResponseWriter, r *http.Request) {
	var body SecurityRequest
	if err := decodeJSON(w, r, &body); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	rec, err := s.svc.InitializeSecurity(r.Context(), body.Caller)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateSecurity(w http.ResponseWriter, r *http.Request) {
	var body SecurityRequest
	if err := decodeJSON(w, r, &body); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	rec, err := s.svc.UpdateSecurity(r.Context(), body.Caller, body.Content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetSecurity(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.GetSecurity(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
