package restapi

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"time_dividends/internal/app/port/porttest"
	"time_dividends/internal/app/service"
	"time_dividends/internal/domain/entity"
	moralis "time_dividends/internal/entity"
	"time_dividends/internal/infrastructure/abiloader"
	"time_dividends/internal/infrastructure/configloader"
	"time_dividends/internal/infrastructure/eventhub"
	networkdefinition "time_dividends/internal/infrastructure/network/definition"
	"time_dividends/internal/infrastructure/wallet"
	"time_dividends/internal/pkg/logger"
	"time_dividends/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	router *gin.Engine
	hub    *eventhub.Hub
	pulse  *porttest.ContractClient
	signer *wallet.KeySigner
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	networks, err := networkdefinition.NewNetworkDefinitionProvider(log, nil, "")
	require.NoError(t, err)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer, err := wallet.NewKeySigner(hex.EncodeToString(crypto.FromECDSA(key)))
	require.NoError(t, err)

	ten18 := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	pulse := porttest.NewContractClient(networkdefinition.PulseChain)
	pulse.Reads[abiloader.MethodDecimals] = func([]interface{}) ([]interface{}, error) { return []interface{}{uint8(18)}, nil }
	pulse.Reads[abiloader.MethodClaimableDividendOf] = func([]interface{}) ([]interface{}, error) {
		return []interface{}{new(big.Int).Mul(big.NewInt(3), ten18)}, nil
	}
	pulse.Reads[abiloader.MethodCumulativeDividendClaimed] = porttest.Uint(0)
	pulse.Reads[abiloader.MethodBalanceOf] = func([]interface{}) ([]interface{}, error) {
		return []interface{}{new(big.Int).Mul(big.NewInt(100), ten18)}, nil
	}
	clients := porttest.NewClientProvider(pulse, porttest.NewContractClient(networkdefinition.Ethereum))

	price := 0.25
	indexer := &porttest.IndexingClient{Initialized: true, Balances: &moralis.WalletTokenBalances{
		TokenBalances: []moralis.TokenBalance{{
			TokenAddress: networkdefinition.PulseChainTimeToken,
			Symbol:       "TIME",
			Decimals:     18,
			Balance:      "100000000000000000000",
			UsdPrice:     &price,
		}},
	}}

	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewPrometheusRecorder("test", reg)
	require.NoError(t, err)

	contractABI := abiloader.DefaultABI()
	walletAdapter := wallet.NewAdapter(time.Hour, "project-x", signer, networks, clients, log)
	hub := eventhub.New(4, log)
	prices := service.NewTokenPriceService(indexer, networks, log, time.Minute, 1)
	balances := service.NewBalanceService(indexer, prices, log, recorder)
	dividends := service.NewDividendService(clients, contractABI, log, recorder)
	selector := service.NewNetworkSelector(networks, walletAdapter, log)
	coordinator := service.NewFetchCoordinator(selector, balances, dividends, hub, log, recorder)

	handler := NewHandler(Deps{
		Config:       &configloader.Config{Server: configloader.ServerConfig{AllowedOrigins: []string{"*"}}},
		Networks:     networks,
		Wallet:       walletAdapter,
		Indexer:      indexer,
		Selector:     selector,
		Coordinator:  coordinator,
		Transactions: service.NewTransactionOrchestrator(walletAdapter, networks, clients, contractABI, coordinator, log, recorder, time.Second),
		Balances:     balances,
		Dividends:    dividends,
		Estimator:    service.NewEarningsEstimator(networks, prices, log),
		Reports:      service.NewReportService(staticWallets{}, networks, dividends, log, 1),
		Hub:          hub,
		Logger:       log,
	})
	return &testAPI{router: SetupRouter(handler, reg), hub: hub, pulse: pulse, signer: signer}
}

type staticWallets struct{}

func (staticWallets) GetWallets() ([]entity.Wallet, error) {
	return []entity.Wallet{{Address: "0x1111111111111111111111111111111111111111"}}, nil
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	return envelope.Data
}

func (a *testAPI) connect(t *testing.T, body string) entity.WalletSession {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/sessions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[sessionResponse](t, w).Session
}

func TestHealthAndNetworks(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/v1/networks", "")
	require.Equal(t, http.StatusOK, w.Code)
	networks := decode[[]entity.NetworkDescriptor](t, w)
	require.Len(t, networks, 7)
	assert.Equal(t, "ethereum", networks[0].ID)

	w = api.do(t, http.MethodGet, "/api/v1/config", "")
	require.Equal(t, http.StatusOK, w.Code)
	cfg := decode[clientConfigResponse](t, w)
	assert.Equal(t, "project-x", cfg.WalletConnectProjectID)
	assert.True(t, cfg.IndexerAvailable)
}

func TestSessionFlow(t *testing.T) {
	api := newTestAPI(t)
	session := api.connect(t, "")
	assert.Equal(t, api.signer.Address().Hex(), session.Address)
	assert.Equal(t, uint64(1), session.ChainID)

	w := api.do(t, http.MethodPost, "/api/v1/sessions/"+session.ID+"/network", `{"network":"pulsechain"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	switched := decode[networkSwitchResponse](t, w)
	assert.Equal(t, entity.ViewDividends, switched.Resolution.View)
	require.NotNil(t, switched.State)
	assert.Equal(t, "3", switched.State.DividendDisplay.ClaimableAmount)
	assert.Equal(t, "100.000000", switched.State.BalanceDisplay.Amount)
	assert.Equal(t, "$25.00", switched.State.BalanceDisplay.Value)

	w = api.do(t, http.MethodPost, "/api/v1/sessions/"+session.ID+"/claim", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	outcome := decode[entity.TransactionOutcome](t, w)
	assert.True(t, outcome.Success)
	assert.Equal(t, api.pulse.TxHash, outcome.TxHash)

	w = api.do(t, http.MethodGet, "/api/v1/sessions/"+session.ID+"/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[entity.ViewState](t, w)
	assert.Equal(t, uint64(2), state.Generation, "claim refreshes the session")

	w = api.do(t, http.MethodDelete, "/api/v1/sessions/"+session.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(t, http.MethodGet, "/api/v1/sessions/"+session.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnsupportedChainPrompt(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodPost, "/api/v1/sessions", `{"chainId":250}`)
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[sessionResponse](t, w)
	assert.Equal(t, service.UnsupportedNetworkPrompt, resp.Resolution.Prompt)
	assert.Equal(t, "ethereum", resp.Resolution.Network.ID)

	w = api.do(t, http.MethodPost, "/api/v1/sessions/"+resp.Session.ID+"/claim", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), service.MsgUnsupportedNetwork)
}

func TestNetworkSwitchFailure(t *testing.T) {
	api := newTestAPI(t)
	session := api.connect(t, "")
	api.pulse.ServedChainID = 1

	w := api.do(t, http.MethodPost, "/api/v1/sessions/"+session.ID+"/network", `{"network":"pulsechain"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to switch to PulseChain. Please try again from your wallet.")
}

func TestClaimWithoutSession(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodPost, "/api/v1/sessions/nope/claim", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), service.MsgWalletNotConnected)
}

func TestAddressLookups(t *testing.T) {
	api := newTestAPI(t)
	addr := "0x1111111111111111111111111111111111111111"

	w := api.do(t, http.MethodGet, "/api/v1/balances/"+addr+"?network=pulsechain", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	balance := decode[balanceResponse](t, w)
	assert.Equal(t, "100.000000", balance.Display.Amount)

	w = api.do(t, http.MethodGet, "/api/v1/dividends/"+addr+"?network=pulsechain", "")
	require.Equal(t, http.StatusOK, w.Code)
	dividends := decode[dividendResponse](t, w)
	assert.True(t, dividends.Display.HasDividends)

	w = api.do(t, http.MethodGet, "/api/v1/dividends/"+addr+"?network=ethereum", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "TIME contract not deployed on ethereum")

	w = api.do(t, http.MethodGet, "/api/v1/balances/"+addr+"?network=fantom", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEstimateEndpoint(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/v1/estimate?network=pulsechain&timeAmount=1000&dailyVolume=1000000&period=monthly", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	est := decode[entity.EarningsEstimate](t, w)
	assert.Equal(t, entity.PeriodMonthly, est.Period)
	assert.InDelta(t, 0.0001, est.FeeRate, 1e-12)

	w = api.do(t, http.MethodGet, "/api/v1/estimate?network=pulsechain&timeAmount=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), string(entity.KindInvalidInput))
}

func TestReportEndpoint(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodGet, "/api/v1/report?network=pulsechain", "")
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[reportResponse](t, w)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "3", report.Rows[0].Display.ClaimableAmount)
	assert.Empty(t, report.FailedWallets)
}

func TestReportEndpointListsFailedWallets(t *testing.T) {
	api := newTestAPI(t)
	api.pulse.Reads[abiloader.MethodClaimableDividendOf] = func([]interface{}) ([]interface{}, error) {
		return nil, entity.Errorf(entity.KindNetworkUnreachable, "read", "rpc down")
	}

	w := api.do(t, http.MethodGet, "/api/v1/report?network=pulsechain", "")
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[reportResponse](t, w)
	assert.Empty(t, report.Rows)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, []string{"0x1111111111111111111111111111111111111111"}, report.FailedWallets)
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	api.do(t, http.MethodGet, "/api/v1/dividends/0x1111111111111111111111111111111111111111?network=pulsechain", "")

	w := api.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_fetch_total")
}

func TestEventsStream(t *testing.T) {
	api := newTestAPI(t)
	srv := httptest.NewServer(api.router)
	defer srv.Close()

	session := api.connect(t, `{"chainId":369}`)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/sessions/" + session.ID + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return api.hub.Subscribers(session.ID) == 1 }, 5*time.Second, 10*time.Millisecond)

	w := api.do(t, http.MethodPost, "/api/v1/sessions/"+session.ID+"/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var state entity.ViewState
	require.NoError(t, json.Unmarshal(payload, &state))

	assert.Equal(t, session.ID, state.SessionID)
	assert.Equal(t, "pulsechain", state.NetworkID)
}

func TestUnknownSessionEvents(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(t, http.MethodGet, "/api/v1/sessions/nope/events", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
