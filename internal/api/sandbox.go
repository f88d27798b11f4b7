package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"solana-token-forge/internal/domain"
)

// AirdropRequest is the body of POST /v1/sandbox/airdrop.
type AirdropRequest struct {
	Address  domain.Address `json:"address"`
	Lamports uint64         `json:"lamports"`
}

// AirdropResponse reports the new balance.
type AirdropResponse struct {
	Address  domain.Address `json:"address"`
	Lamports uint64         `json:"lamports"`
}

func (s *Server) handleAirdrop(w http.ResponseWriter, r *http.Request) {
	var body AirdropRequest
	if err := decodeJSON(w, r, &body); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if body.Lamports == 0 {
		badRequest(w, "lamports must be positive")
		return
	}
	balance, err := s.sandbox.Airdrop(body.Address, body.Lamports)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AirdropResponse{Address: body.Address, Lamports: balance})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	acct, ok := s.sandbox.Account(addr)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "account not found", Kind: "resource"})
		return
	}
	writeJSON(w, http.StatusOK, acct)
}
