package api

import (
	"errors"
	"net/http"

	"solana-token-forge/internal/governance"
	"solana-token-forge/internal/issuance"
	"solana-token-forge/internal/orchestrator"
	"solana-token-forge/internal/storage"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

var kindStatus = map[issuance.ErrorKind]int{
	issuance.KindValidation:    http.StatusBadRequest,
	issuance.KindAuthorization: http.StatusForbidden,
	issuance.KindResource:      http.StatusConflict,
	issuance.KindDerivation:    http.StatusUnprocessableEntity,
	issuance.KindExternal:      http.StatusUnprocessableEntity,
	issuance.KindCanceled:      http.StatusServiceUnavailable,
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := orchestrator.ErrorKind(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, governance.ErrNotInitialized) {
		status = http.StatusNotFound
	}
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: string(kind)})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Kind: string(issuance.KindValidation)})
}
