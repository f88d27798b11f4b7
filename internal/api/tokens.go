package api

import (
	"net/http"
	"strconv"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/go-chi/chi/v5"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/issuance"
)

// CreateTokenRequest is the body of POST /v1/tokens. Mint may be omitted in
// sandbox mode, in which case a fresh key is generated.
type CreateTokenRequest struct {
	Payer         domain.Address  `json:"payer"`
	Mint          *domain.Address `json:"mint,omitempty"`
	Metadata      *domain.Address `json:"metadata,omitempty"`
	Holding       *domain.Address `json:"holding,omitempty"`
	Treasury      *domain.Address `json:"treasury,omitempty"`
	Name          string          `json:"name"`
	Symbol        string          `json:"symbol"`
	URI           string          `json:"uri"`
	Decimals      uint8           `json:"decimals"`
	InitialSupply uint64          `json:"initial_supply"`
	RevokeMint    bool            `json:"revoke_mint"`
	RevokeFreeze  bool            `json:"revoke_freeze"`
	RevokeUpdate  bool            `json:"revoke_update"`
}

func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	var body CreateTokenRequest
	if err := decodeJSON(w, r, &body); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if body.Payer.IsZero() {
		badRequest(w, "payer is required")
		return
	}

	var mint domain.Address
	switch {
	case body.Mint != nil:
		mint = *body.Mint
	case s.sandbox != nil:
		mint = domain.Address(types.NewAccount().PublicKey)
	default:
		badRequest(w, "mint is required")
		return
	}

	req := issuance.Request{
		Payer:         body.Payer,
		Mint:          mint,
		Holding:       body.Holding,
		Treasury:      body.Treasury,
		Name:          body.Name,
		Symbol:        body.Symbol,
		URI:           body.URI,
		Decimals:      body.Decimals,
		InitialSupply: body.InitialSupply,
		Revoke: domain.RevokeFlags{
			Mint:   body.RevokeMint,
			Freeze: body.RevokeFreeze,
			Update: body.RevokeUpdate,
		},
	}
	if body.Metadata != nil {
		req.Metadata = *body.Metadata
	} else {
		addrs, err := s.svc.Derive(body.Payer, mint)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		req.Metadata = addrs.Metadata
	}

	h, err := s.svc.CreateToken(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	mint, err := domain.ParseAddress(chi.URLParam(r, "mint"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	h, err := s.svc.Issuance(r.Context(), mint)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	payer, err := domain.ParseAddress(r.URL.Query().Get("payer"))
	if err != nil {
		badRequest(w, "payer: "+err.Error())
		return
	}
	list, err := s.svc.IssuancesByPayer(r.Context(), payer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*domain.AssetHandle{}
	}
	writeJSON(w, http.StatusOK, list)
}

// QuoteResponse is the body of GET /v1/fees.
type QuoteResponse struct {
	Fee      uint64             `json:"fee"`
	BaseFee  uint64             `json:"base_fee"`
	Discount uint64             `json:"revoke_discount"`
	Revoke   domain.RevokeFlags `json:"revoke"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	flags, err := parseFlags(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	fee, err := s.svc.Quote(flags)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p := s.svc.Protocol()
	writeJSON(w, http.StatusOK, QuoteResponse{
		Fee:      fee,
		BaseFee:  p.BaseFee,
		Discount: p.RevokeDiscount,
		Revoke:   flags,
	})
}

func parseFlags(r *http.Request) (domain.RevokeFlags, error) {
	var flags domain.RevokeFlags
	q := r.URL.Query()
	for _, f := range []struct {
		name string
		dst  *bool
	}{
		{"revoke_mint", &flags.Mint},
		{"revoke_freeze", &flags.Freeze},
		{"revoke_update", &flags.Update},
	} {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return flags, err
		}
		*f.dst = b
	}
	return flags, nil
}

// AddressResponse is the body of the pre-derivation endpoints.
type AddressResponse struct {
	Address domain.Address `json:"address"`
	Bump    uint8          `json:"bump,omitempty"`
}

func (s *Server) handleHoldingAddress(w http.ResponseWriter, r *http.Request) {
	payer, mint, ok := payerAndMint(w, r)
	if !ok {
		return
	}
	addrs, err := s.svc.Derive(payer, mint)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AddressResponse{Address: addrs.Holding, Bump: addrs.HoldingBump})
}

func (s *Server) handleMetadataAddress(w http.ResponseWriter, r *http.Request) {
	mint, err := domain.ParseAddress(r.URL.Query().Get("mint"))
	if err != nil {
		badRequest(w, "mint: "+err.Error())
		return
	}
	// Metadata does not depend on the payer.
	addrs, err := s.svc.Derive(domain.ZeroAddress, mint)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AddressResponse{Address: addrs.Metadata})
}

func payerAndMint(w http.ResponseWriter, r *http.Request) (domain.Address, domain.Address, bool) {
	q := r.URL.Query()
	payer, err := domain.ParseAddress(q.Get("payer"))
	if err != nil {
		badRequest(w, "payer: "+err.Error())
		return domain.Address{}, domain.Address{}, false
	}
	mint, err := domain.ParseAddress(q.Get("mint"))
	if err != nil {
		badRequest(w, "mint: "+err.Error())
		return domain.Address{}, domain.Address{}, false
	}
	return payer, mint, true
}

func (s *Server) handleEventCounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := strconv.ParseInt(q.Get("start"), 10, 64)
	if err != nil {
		badRequest(w, "start: expected unix milliseconds")
		return
	}
	end, err := strconv.ParseInt(q.Get("end"), 10, 64)
	if err != nil {
		badRequest(w, "end: expected unix milliseconds")
		return
	}
	counts, err := s.svc.EventCounts(r.Context(), start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
