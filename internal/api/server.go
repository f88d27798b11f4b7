// Package api exposes the forge over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"solana-token-forge/internal/ledger"
	"solana-token-forge/internal/observability"
	"solana-token-forge/internal/orchestrator"
)

// Options configures Server.
type Options struct {
	Service *orchestrator.Service
	// Sandbox enables the airdrop and account endpoints. Nil disables them.
	Sandbox *ledger.Ledger
	Metrics *observability.Metrics
	Logger  zerolog.Logger
}

// Server routes HTTP requests to the service.
type Server struct {
	svc     *orchestrator.Service
	sandbox *ledger.Ledger
	metrics *observability.Metrics
	log     zerolog.Logger
	started time.Time
	router  chi.Router
}

// New creates a Server with every route registered.
func New(opts Options) *Server {
	s := &Server{
		svc:     opts.Service,
		sandbox: opts.Sandbox,
		metrics: opts.Metrics,
		log:     opts.Logger.With().Str("component", "api").Logger(),
		started: time.Now(),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/status", s.handleStatus)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/fees", s.handleQuote)
		r.Get("/addresses/holding", s.handleHoldingAddress)
		r.Get("/addresses/metadata", s.handleMetadataAddress)

		r.Post("/tokens", s.handleCreateToken)
		r.Get("/tokens", s.handleListTokens)
		r.Get("/tokens/{mint}", s.handleGetToken)
		r.Get("/events/counts", s.handleEventCounts)

		r.Post("/security/init", s.handleInitSecurity)
		r.Put("/security", s.handleUpdateSecurity)
		r.Get("/security", s.handleGetSecurity)

		if s.sandbox != nil {
			r.Post("/sandbox/airdrop", s.handleAirdrop)
			r.Get("/sandbox/accounts/{address}", s.handleGetAccount)
		}
	})
	return r
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	ProgramID string `json:"program_id"`
	Treasury  string `json:"treasury"`
	Sandbox   bool   `json:"sandbox"`
	Slot      uint64 `json:"slot,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	p := s.svc.Protocol()
	resp := StatusResponse{
		Status:    "running",
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		ProgramID: p.ProgramID.String(),
		Treasury:  p.Treasury.String(),
		Sandbox:   s.sandbox != nil,
	}
	if s.sandbox != nil {
		resp.Slot = s.sandbox.Slot()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
