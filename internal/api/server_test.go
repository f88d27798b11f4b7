package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-forge/internal/config"
	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/governance"
	"solana-token-forge/internal/ledger"
	"solana-token-forge/internal/observability"
	"solana-token-forge/internal/orchestrator"
	"solana-token-forge/internal/storage/memory"
)

type testServer struct {
	*httptest.Server
	ledger *ledger.Ledger
}

func newTestServer(t *testing.T, sandbox bool) *testServer {
	t.Helper()
	p := config.DefaultProtocol()
	l := ledger.New(p, zerolog.Nop())
	metrics := observability.NewMetrics("test")

	svc, err := orchestrator.New(orchestrator.Options{
		Protocol:    p,
		Executor:    orchestrator.Sandbox(l),
		Disclosures: memory.NewDisclosureStore(),
		Issuances:   memory.NewIssuanceStore(),
		Events:      memory.NewIssuanceEventStore(),
		Metrics:     metrics,
		Logger:      zerolog.Nop(),
	})
	require.NoError(t, err)

	opts := Options{Service: svc, Metrics: metrics, Logger: zerolog.Nop()}
	if sandbox {
		opts.Sandbox = l
	}
	srv := httptest.NewServer(New(opts).Handler())
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, ledger: l}
}

func newKey() domain.Address {
	return domain.Address(types.NewAccount().PublicKey)
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealthAndRequestID(t *testing.T) {
	ts := newTestServer(t, false)

	resp := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	req.Header.Set(RequestIDHeader, "6f1c8a0e-2b7d-4a44-9a43-0f5a3a7f4f11")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, "6f1c8a0e-2b7d-4a44-9a43-0f5a3a7f4f11", resp2.Header.Get(RequestIDHeader))
}

func TestQuote(t *testing.T) {
	ts := newTestServer(t, false)

	resp := ts.do(t, http.MethodGet, "/v1/fees?revoke_mint=true&revoke_update=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var q QuoteResponse
	decode(t, resp, &q)
	assert.Equal(t, uint64(6_000_000), q.Fee)
	assert.Equal(t, config.DefaultBaseFee, q.BaseFee)

	resp = ts.do(t, http.MethodGet, "/v1/fees?revoke_mint=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateTokenFlow(t *testing.T) {
	ts := newTestServer(t, true)
	payer := newKey()

	resp := ts.do(t, http.MethodPost, "/v1/sandbox/airdrop", AirdropRequest{Address: payer, Lamports: config.LamportsPerSOL})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/v1/tokens", CreateTokenRequest{
		Payer:         payer,
		Name:          "Forge",
		Symbol:        "FRG",
		URI:           "https://example.com/frg.json",
		Decimals:      6,
		InitialSupply: 500,
		RevokeFreeze:  true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var h domain.AssetHandle
	decode(t, resp, &h)
	assert.Equal(t, uint64(8_000_000), h.Fee)
	assert.Equal(t, uint64(500_000_000), h.Minted)
	assert.True(t, h.Authorities.Freeze.IsRevoked())

	resp = ts.do(t, http.MethodGet, "/v1/tokens/"+h.Mint.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/v1/tokens?payer="+payer.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []domain.AssetHandle
	decode(t, resp, &list)
	assert.Len(t, list, 1)

	resp = ts.do(t, http.MethodGet, "/v1/sandbox/accounts/"+h.Holding.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var acct ledger.Account
	decode(t, resp, &acct)
	require.NotNil(t, acct.Holding)
	assert.Equal(t, uint64(500_000_000), acct.Holding.Amount)

	resp = ts.do(t, http.MethodGet, "/v1/sandbox/accounts/"+payer.String(), nil)
	decode(t, resp, &acct)
	assert.Less(t, acct.Lamports, config.LamportsPerSOL-8_000_000)
}

func TestCreateTokenErrors(t *testing.T) {
	ts := newTestServer(t, true)
	payer := newKey()
	_, err := ts.ledger.Airdrop(payer, config.LamportsPerSOL)
	require.NoError(t, err)

	tests := []struct {
		name   string
		body   interface{}
		status int
		kind   string
	}{
		{
			name:   "bad decimals",
			body:   CreateTokenRequest{Payer: payer, Name: "A", Symbol: "A", URI: "u", Decimals: 19, InitialSupply: 1},
			status: http.StatusBadRequest,
			kind:   "validation",
		},
		{
			name:   "unfunded payer",
			body:   CreateTokenRequest{Payer: newKey(), Name: "A", Symbol: "A", URI: "u", InitialSupply: 1},
			status: http.StatusConflict,
			kind:   "resource",
		},
		{
			name:   "foreign treasury",
			body:   CreateTokenRequest{Payer: payer, Treasury: ptr(newKey()), Name: "A", Symbol: "A", URI: "u", InitialSupply: 1},
			status: http.StatusForbidden,
			kind:   "authorization",
		},
		{
			name:   "wrong metadata",
			body:   CreateTokenRequest{Payer: payer, Metadata: ptr(newKey()), Name: "A", Symbol: "A", URI: "u", InitialSupply: 1},
			status: http.StatusUnprocessableEntity,
			kind:   "derivation",
		},
		{
			name:   "unknown field",
			body:   map[string]interface{}{"payer": payer.String(), "color": "red"},
			status: http.StatusBadRequest,
			kind:   "validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodPost, "/v1/tokens", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			var e ErrorResponse
			decode(t, resp, &e)
			assert.Equal(t, tt.kind, e.Kind)
		})
	}
}

func TestCreateToken_MintRequiredWithoutSandbox(t *testing.T) {
	ts := newTestServer(t, false)
	resp := ts.do(t, http.MethodPost, "/v1/tokens", CreateTokenRequest{Payer: newKey(), Name: "A", Symbol: "A", URI: "u", InitialSupply: 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/v1/sandbox/airdrop", AirdropRequest{Address: newKey(), Lamports: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddresses(t *testing.T) {
	ts := newTestServer(t, false)
	payer, mint := newKey(), newKey()

	resp := ts.do(t, http.MethodGet, "/v1/addresses/holding?payer="+payer.String()+"&mint="+mint.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var holding AddressResponse
	decode(t, resp, &holding)
	assert.False(t, holding.Address.IsZero())

	resp = ts.do(t, http.MethodGet, "/v1/addresses/metadata?mint="+mint.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var md AddressResponse
	decode(t, resp, &md)
	assert.NotEqual(t, holding.Address, md.Address)

	resp = ts.do(t, http.MethodGet, "/v1/addresses/holding?payer=nope&mint="+mint.String(), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSecurityEndpoints(t *testing.T) {
	ts := newTestServer(t, false)
	admin := newKey()

	resp := ts.do(t, http.MethodGet, "/v1/security", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/v1/security/init", SecurityRequest{Caller: admin})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rec domain.DisclosureRecord
	decode(t, resp, &rec)
	assert.Equal(t, governance.DefaultContent, rec.Content)

	resp = ts.do(t, http.MethodPost, "/v1/security/init", SecurityRequest{Caller: admin})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(t, http.MethodPut, "/v1/security", SecurityRequest{Caller: newKey(), Content: "x"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodPut, "/v1/security", SecurityRequest{Caller: admin, Content: strings.Repeat("a", 1001)})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodPut, "/v1/security", SecurityRequest{Caller: admin, Content: "Contact: sec@example.org"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &rec)
	assert.Equal(t, uint32(1), rec.Version)
}

func TestStatusAndMetrics(t *testing.T) {
	ts := newTestServer(t, true)

	resp := ts.do(t, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st StatusResponse
	decode(t, resp, &st)
	assert.True(t, st.Sandbox)
	assert.Equal(t, config.DefaultProgramID, st.ProgramID)

	resp = ts.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func ptr(a domain.Address) *domain.Address {
	return &a
}
